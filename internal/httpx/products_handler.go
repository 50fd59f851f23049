package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/adimasruri/go-workshop-orders/internal/engine"
	"github.com/adimasruri/go-workshop-orders/internal/workshop"
)

type ProductsHandler struct {
	Engine *engine.Service
	Log    *logrus.Logger
}

func (h *ProductsHandler) Register(r *chi.Mux) {
	r.Post("/products", h.create)
	r.Put("/products/{id}", h.update)
	r.Delete("/products/{id}", h.delete)
	r.Post("/products/{id}/stock", h.adjustStock)
	r.Get("/tenants/{id}/products", h.list)
	r.Put("/tenants/{id}/tax-rate", h.setTaxRate)
}

func (h *ProductsHandler) create(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	var cmd workshop.CreateProductCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := requestCtx(r)
	defer cancel()

	p, err := h.Engine.CreateProduct(ctx, actor, cmd)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *ProductsHandler) update(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	productID, ok := pathUUID(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid product id"})
		return
	}
	var cmd workshop.UpdateProductCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	cmd.ProductID = productID

	ctx, cancel := requestCtx(r)
	defer cancel()

	p, err := h.Engine.UpdateProduct(ctx, actor, cmd)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductsHandler) delete(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	productID, ok := pathUUID(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid product id"})
		return
	}

	ctx, cancel := requestCtx(r)
	defer cancel()

	if err := h.Engine.DeleteProduct(ctx, actor, productID); err != nil {
		writeError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProductsHandler) adjustStock(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	productID, ok := pathUUID(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid product id"})
		return
	}
	var cmd workshop.AdjustStockCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	cmd.ProductID = productID

	ctx, cancel := requestCtx(r)
	defer cancel()

	p, err := h.Engine.AdjustStock(ctx, actor, cmd)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductsHandler) list(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	tenantID, ok := pathUUID(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid tenant id"})
		return
	}

	ctx, cancel := requestCtx(r)
	defer cancel()

	ps, err := h.Engine.ListProducts(ctx, actor, tenantID)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *ProductsHandler) setTaxRate(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	tenantID, ok := pathUUID(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid tenant id"})
		return
	}
	var cmd workshop.SetTaxRateCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	cmd.TenantID = tenantID

	ctx, cancel := requestCtx(r)
	defer cancel()

	if err := h.Engine.SetTaxRate(ctx, actor, cmd); err != nil {
		writeError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
