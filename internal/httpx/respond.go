package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/adimasruri/go-workshop-orders/internal/workshop"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, log *logrus.Logger, err error) {
	switch {
	case errors.Is(err, workshop.ErrValidation):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, workshop.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	case errors.Is(err, workshop.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, workshop.ErrInsufficientStock):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "insufficient stock"})
	default:
		log.WithError(err).Error("request failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

// actorID resolves the acting identity. Session handling lives upstream; the
// identity provider hands us an opaque actor id per request.
func actorID(r *http.Request) (uuid.UUID, error) {
	raw := r.Header.Get("X-Actor-Id")
	if raw == "" {
		return uuid.Nil, workshop.ErrUnauthorized
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, workshop.ErrUnauthorized
	}
	return id, nil
}

func pathUUID(raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	return id, err == nil
}
