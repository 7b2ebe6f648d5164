package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/diewo77/kfz-werkstatt/internal/apperr"
	"github.com/diewo77/kfz-werkstatt/internal/document"
	"github.com/diewo77/kfz-werkstatt/internal/services"
)

// DocumentHandler serves printable invoices and estimates.
type DocumentHandler struct {
	svc *services.DocumentService
}

func NewDocumentHandler(svc *services.DocumentService) *DocumentHandler {
	return &DocumentHandler{svc: svc}
}

func (h *DocumentHandler) Render(w http.ResponseWriter, r *http.Request, id uint) error {
	kind, err := document.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		return apperr.NewBadRequestError(err.Error())
	}
	doc, err := h.svc.Render(r.Context(), kind, id)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", doc.ContentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc.Body)
	return nil
}
