package handlers

import (
	"net/http"

	"github.com/diewo77/kfz-werkstatt/httpx"
	"github.com/diewo77/kfz-werkstatt/internal/services"
)

type InvoiceHandler struct {
	svc *services.InvoiceService
}

func NewInvoiceHandler(svc *services.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{svc: svc}
}

func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) error {
	customerID, err := queryUint(r, "customer_id")
	if err != nil {
		return err
	}
	q := r.URL.Query()
	list, err := h.svc.List(r.Context(), services.InvoiceFilter{
		Status:     q.Get("status"),
		CustomerID: customerID,
		Search:     q.Get("search"),
	})
	return reply(w, http.StatusOK, list, err)
}

func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request, id uint) error {
	inv, err := h.svc.Get(r.Context(), id)
	return reply(w, http.StatusOK, inv, err)
}

func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) error {
	var in services.InvoiceInput
	if err := httpx.Decode(r, &in); err != nil {
		return err
	}
	inv, err := h.svc.Create(r.Context(), in)
	return reply(w, http.StatusCreated, inv, err)
}

func (h *InvoiceHandler) Update(w http.ResponseWriter, r *http.Request, id uint) error {
	var in services.InvoiceInput
	if err := httpx.Decode(r, &in); err != nil {
		return err
	}
	inv, err := h.svc.Update(r.Context(), id, in)
	return reply(w, http.StatusOK, inv, err)
}

func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request, id uint) error {
	err := h.svc.Delete(r.Context(), id)
	return reply(w, http.StatusOK, Message{Message: "Rechnung gelöscht"}, err)
}

func (h *InvoiceHandler) MarkPaid(w http.ResponseWriter, r *http.Request, id uint) error {
	inv, err := h.svc.MarkPaid(r.Context(), id)
	return reply(w, http.StatusOK, inv, err)
}
