package handlers

import (
	"net/http"

	"github.com/diewo77/kfz-werkstatt/httpx"
	"github.com/diewo77/kfz-werkstatt/internal/services"
)

type VehicleHandler struct {
	svc *services.VehicleService
}

func NewVehicleHandler(svc *services.VehicleService) *VehicleHandler {
	return &VehicleHandler{svc: svc}
}

func (h *VehicleHandler) List(w http.ResponseWriter, r *http.Request) error {
	customerID, err := queryUint(r, "customer_id")
	if err != nil {
		return err
	}
	q := r.URL.Query()
	list, err := h.svc.List(r.Context(), services.VehicleFilter{
		Status:     q.Get("status"),
		CustomerID: customerID,
		Search:     q.Get("search"),
	})
	return reply(w, http.StatusOK, list, err)
}

func (h *VehicleHandler) Get(w http.ResponseWriter, r *http.Request, id uint) error {
	v, err := h.svc.Get(r.Context(), id)
	return reply(w, http.StatusOK, v, err)
}

func (h *VehicleHandler) Create(w http.ResponseWriter, r *http.Request) error {
	var in services.VehicleInput
	if err := httpx.Decode(r, &in); err != nil {
		return err
	}
	v, err := h.svc.Create(r.Context(), in)
	return reply(w, http.StatusCreated, v, err)
}

func (h *VehicleHandler) Update(w http.ResponseWriter, r *http.Request, id uint) error {
	var in services.VehicleInput
	if err := httpx.Decode(r, &in); err != nil {
		return err
	}
	v, err := h.svc.Update(r.Context(), id, in)
	return reply(w, http.StatusOK, v, err)
}

func (h *VehicleHandler) Delete(w http.ResponseWriter, r *http.Request, id uint) error {
	err := h.svc.Delete(r.Context(), id)
	return reply(w, http.StatusOK, Message{Message: "Fahrzeug gelöscht"}, err)
}

func (h *VehicleHandler) Sell(w http.ResponseWriter, r *http.Request, id uint) error {
	var in services.SaleInput
	if err := httpx.Decode(r, &in); err != nil {
		return err
	}
	v, err := h.svc.Sell(r.Context(), id, in)
	return reply(w, http.StatusOK, v, err)
}

func (h *VehicleHandler) Stats(w http.ResponseWriter, r *http.Request) error {
	st, err := h.svc.Stats(r.Context())
	return reply(w, http.StatusOK, st, err)
}

func (h *VehicleHandler) MostProfitable(w http.ResponseWriter, r *http.Request) error {
	limit, err := queryInt(r, "limit", 10)
	if err != nil {
		return err
	}
	list, err := h.svc.MostProfitable(r.Context(), limit)
	return reply(w, http.StatusOK, list, err)
}
