package handlers

import (
	"net/http"

	"github.com/diewo77/kfz-werkstatt/httpx"
	"github.com/diewo77/kfz-werkstatt/internal/services"
)

// EstimateHandler serves estimates, status changes and conversion.
type EstimateHandler struct {
	svc *services.EstimateService
}

func NewEstimateHandler(svc *services.EstimateService) *EstimateHandler {
	return &EstimateHandler{svc: svc}
}

// StatusRequest is the body of the status endpoint.
type StatusRequest struct {
	Status string `json:"status"`
}

func (h *EstimateHandler) List(w http.ResponseWriter, r *http.Request) error {
	customerID, err := queryUint(r, "customer_id")
	if err != nil {
		return err
	}
	q := r.URL.Query()
	list, err := h.svc.List(r.Context(), services.EstimateFilter{
		Status:     q.Get("status"),
		CustomerID: customerID,
		Search:     q.Get("search"),
	})
	return reply(w, http.StatusOK, list, err)
}

func (h *EstimateHandler) Get(w http.ResponseWriter, r *http.Request, id uint) error {
	e, err := h.svc.Get(r.Context(), id)
	return reply(w, http.StatusOK, e, err)
}

func (h *EstimateHandler) Create(w http.ResponseWriter, r *http.Request) error {
	var in services.EstimateInput
	if err := httpx.Decode(r, &in); err != nil {
		return err
	}
	e, err := h.svc.Create(r.Context(), in)
	return reply(w, http.StatusCreated, e, err)
}

func (h *EstimateHandler) Update(w http.ResponseWriter, r *http.Request, id uint) error {
	var in services.EstimateInput
	if err := httpx.Decode(r, &in); err != nil {
		return err
	}
	e, err := h.svc.Update(r.Context(), id, in)
	return reply(w, http.StatusOK, e, err)
}

func (h *EstimateHandler) Delete(w http.ResponseWriter, r *http.Request, id uint) error {
	err := h.svc.Delete(r.Context(), id)
	return reply(w, http.StatusOK, Message{Message: "Kostenvoranschlag gelöscht"}, err)
}

func (h *EstimateHandler) SetStatus(w http.ResponseWriter, r *http.Request, id uint) error {
	var req StatusRequest
	if err := httpx.Decode(r, &req); err != nil {
		return err
	}
	e, err := h.svc.Transition(r.Context(), id, req.Status)
	return reply(w, http.StatusOK, e, err)
}

func (h *EstimateHandler) Convert(w http.ResponseWriter, r *http.Request, id uint) error {
	conv, err := h.svc.ConvertToInvoice(r.Context(), id)
	return reply(w, http.StatusCreated, conv, err)
}
