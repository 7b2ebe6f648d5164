package handlers

import (
	"net/http"

	"github.com/diewo77/kfz-werkstatt/httpx"
	"github.com/diewo77/kfz-werkstatt/internal/services"
)

type CustomerHandler struct {
	svc *services.CustomerService
}

func NewCustomerHandler(svc *services.CustomerService) *CustomerHandler {
	return &CustomerHandler{svc: svc}
}

func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) error {
	list, err := h.svc.List(r.Context(), r.URL.Query().Get("search"))
	return reply(w, http.StatusOK, list, err)
}

func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request, id uint) error {
	c, err := h.svc.Get(r.Context(), id)
	return reply(w, http.StatusOK, c, err)
}

func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) error {
	var in services.CustomerInput
	if err := httpx.Decode(r, &in); err != nil {
		return err
	}
	c, err := h.svc.Create(r.Context(), in)
	return reply(w, http.StatusCreated, c, err)
}

func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request, id uint) error {
	var in services.CustomerInput
	if err := httpx.Decode(r, &in); err != nil {
		return err
	}
	c, err := h.svc.Update(r.Context(), id, in)
	return reply(w, http.StatusOK, c, err)
}

func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request, id uint) error {
	err := h.svc.Delete(r.Context(), id)
	return reply(w, http.StatusOK, Message{Message: "Kunde gelöscht"}, err)
}
