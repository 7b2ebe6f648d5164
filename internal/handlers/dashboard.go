package handlers

import (
	"net/http"

	"github.com/diewo77/kfz-werkstatt/internal/services"
)

// DashboardHandler serves the overview counters.
type DashboardHandler struct {
	dash *services.Dashboard
}

func NewDashboardHandler(d *services.Dashboard) *DashboardHandler {
	return &DashboardHandler{dash: d}
}

func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) error {
	threshold, err := queryInt(r, "threshold", 0)
	if err != nil {
		return err
	}
	st, err := h.dash.Stats(r.Context(), threshold)
	return reply(w, http.StatusOK, st, err)
}
