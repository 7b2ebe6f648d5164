package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/diewo77/kfz-werkstatt/httpx"
	"github.com/diewo77/kfz-werkstatt/internal/services"
)

// CatalogHandler serves the labor services.
type CatalogHandler struct {
	svc *services.CatalogService
}

func NewCatalogHandler(svc *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) error {
	list, err := h.svc.List(r.Context())
	return reply(w, http.StatusOK, list, err)
}

func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request, id uint) error {
	s, err := h.svc.Get(r.Context(), id)
	return reply(w, http.StatusOK, s, err)
}

func (h *CatalogHandler) Create(w http.ResponseWriter, r *http.Request) error {
	var in services.ServiceInput
	if err := httpx.Decode(r, &in); err != nil {
		return err
	}
	s, err := h.svc.Create(r.Context(), in)
	return reply(w, http.StatusCreated, s, err)
}

func (h *CatalogHandler) Update(w http.ResponseWriter, r *http.Request, id uint) error {
	var in services.ServiceInput
	if err := httpx.Decode(r, &in); err != nil {
		return err
	}
	s, err := h.svc.Update(r.Context(), id, in)
	return reply(w, http.StatusOK, s, err)
}

func (h *CatalogHandler) Delete(w http.ResponseWriter, r *http.Request, id uint) error {
	err := h.svc.Delete(r.Context(), id)
	return reply(w, http.StatusOK, Message{Message: "Service deaktiviert"}, err)
}

func (h *CatalogHandler) Activate(w http.ResponseWriter, r *http.Request, id uint) error {
	s, err := h.svc.Activate(r.Context(), id)
	return reply(w, http.StatusOK, s, err)
}

func (h *CatalogHandler) Categories(w http.ResponseWriter, r *http.Request) error {
	cats, err := h.svc.Categories(r.Context())
	return reply(w, http.StatusOK, cats, err)
}

func (h *CatalogHandler) ByCategory(w http.ResponseWriter, r *http.Request) error {
	list, err := h.svc.ByCategory(r.Context(), chi.URLParam(r, "category"))
	return reply(w, http.StatusOK, list, err)
}
