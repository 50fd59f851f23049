package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/adimasruri/go-workshop-orders/internal/engine"
	kafkax "github.com/adimasruri/go-workshop-orders/internal/kafka"
	"github.com/adimasruri/go-workshop-orders/internal/redisx"
	"github.com/adimasruri/go-workshop-orders/internal/workshop"
)

// OrdersHandler is the thin request surface over the engine: decode, build
// the command, invoke, map the result. No invariant lives here.
type OrdersHandler struct {
	Engine *engine.Service
	Redis  *redis.Client
	Log    *logrus.Logger
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Post("/workorders", h.intake)
	r.Get("/workorders/{id}", h.getOrder)
	r.Delete("/workorders/{id}", h.deleteOrder)
	r.Post("/workorders/{id}/items", h.addItem)
	r.Delete("/workorders/{id}/items/{itemID}", h.removeItem)
	r.Post("/workorders/{id}/status", h.changeStatus)
}

func requestCtx(r *http.Request) (context.Context, context.CancelFunc) {
	ctx := engine.WithTraceID(r.Context(), middleware.GetReqID(r.Context()))
	return context.WithTimeout(ctx, 5*time.Second)
}

func (h *OrdersHandler) intake(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	var cmd workshop.IntakeOrderCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := requestCtx(r)
	defer cancel()

	res, err := h.Engine.IntakeOrder(ctx, actor, cmd)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	code := http.StatusCreated
	if res.Idempotent {
		code = http.StatusOK
	}
	writeJSON(w, code, res)
}

func (h *OrdersHandler) addItem(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	orderID, ok := pathUUID(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return
	}
	var cmd workshop.AddItemCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	cmd.OrderID = orderID

	ctx, cancel := requestCtx(r)
	defer cancel()

	res, err := h.Engine.AddItem(ctx, actor, cmd)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *OrdersHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	orderID, ok := pathUUID(chi.URLParam(r, "id"))
	itemID, ok2 := pathUUID(chi.URLParam(r, "itemID"))
	if !ok || !ok2 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	ctx, cancel := requestCtx(r)
	defer cancel()

	totals, err := h.Engine.RemoveItem(ctx, actor, workshop.RemoveItemCommand{OrderID: orderID, ItemID: itemID})
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, totals)
}

func (h *OrdersHandler) changeStatus(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	orderID, ok := pathUUID(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return
	}
	var cmd workshop.ChangeStatusCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	cmd.OrderID = orderID

	ctx, cancel := requestCtx(r)
	defer cancel()

	order, err := h.Engine.ChangeStatus(ctx, actor, cmd)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *OrdersHandler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	orderID, ok := pathUUID(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return
	}

	ctx, cancel := requestCtx(r)
	defer cancel()

	if err := h.Engine.DeleteOrder(ctx, actor, orderID); err != nil {
		writeError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	orderID, ok := pathUUID(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return
	}

	ctx, cancel := requestCtx(r)
	defer cancel()

	summary, err := h.Engine.GetOrder(ctx, actor, orderID)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	// refresh the materialized summary view for dependent readers
	if h.Redis != nil {
		key := fmt.Sprintf(redisx.KeyOrderSummary, orderID)
		_ = h.Redis.Set(ctx, key, kafkax.MustMarshal(summary), redisx.TTLSummaryCache).Err()
	}
	writeJSON(w, http.StatusOK, summary)
}
