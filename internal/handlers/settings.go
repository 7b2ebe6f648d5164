package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/diewo77/kfz-werkstatt/httpx"
	"github.com/diewo77/kfz-werkstatt/internal/apperr"
	"github.com/diewo77/kfz-werkstatt/internal/document"
	"github.com/diewo77/kfz-werkstatt/internal/settings"
)

type SettingsHandler struct {
	reg *settings.Registry
}

func NewSettingsHandler(reg *settings.Registry) *SettingsHandler {
	return &SettingsHandler{reg: reg}
}

// ValueRequest is the body of a single setting update.
type ValueRequest struct {
	Value *string `json:"value"`
}

// BatchResult reports a successful batch update.
type BatchResult struct {
	Message string `json:"message"`
	Updated int    `json:"updated"`
}

func (h *SettingsHandler) All(w http.ResponseWriter, r *http.Request) error {
	all, err := h.reg.GetAll(r.Context())
	return reply(w, http.StatusOK, all, err)
}

func (h *SettingsHandler) Category(w http.ResponseWriter, r *http.Request) error {
	cat, err := h.reg.GetCategory(r.Context(), chi.URLParam(r, "category"))
	return reply(w, http.StatusOK, cat, err)
}

func (h *SettingsHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) error {
	var values map[string]string
	if err := httpx.Decode(r, &values); err != nil {
		return err
	}
	if len(values) == 0 {
		return apperr.NewBadRequestError("no settings given")
	}
	n, err := h.reg.SetMany(r.Context(), chi.URLParam(r, "category"), values)
	return reply(w, http.StatusOK, BatchResult{Message: "Einstellungen gespeichert", Updated: n}, err)
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) error {
	e, err := h.reg.Get(r.Context(), chi.URLParam(r, "category"), chi.URLParam(r, "key"))
	return reply(w, http.StatusOK, e, err)
}

func (h *SettingsHandler) Set(w http.ResponseWriter, r *http.Request) error {
	var req ValueRequest
	if err := httpx.Decode(r, &req); err != nil {
		return err
	}
	if req.Value == nil {
		return apperr.NewFieldError("value", "required")
	}
	category, key := chi.URLParam(r, "category"), chi.URLParam(r, "key")
	if err := h.reg.SetOne(r.Context(), category, key, *req.Value); err != nil {
		return err
	}
	e, err := h.reg.Get(r.Context(), category, key)
	return reply(w, http.StatusOK, e, err)
}

func (h *SettingsHandler) Template(w http.ResponseWriter, r *http.Request) error {
	kind, err := document.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		return apperr.NewBadRequestError(err.Error())
	}
	httpx.JSON(w, http.StatusOK, h.reg.GetTemplate(r.Context(), kind))
	return nil
}

func (h *SettingsHandler) SetTemplate(w http.ResponseWriter, r *http.Request) error {
	kind, err := document.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		return apperr.NewBadRequestError(err.Error())
	}
	var tpl document.Template
	if err := httpx.Decode(r, &tpl); err != nil {
		return err
	}
	saved, err := h.reg.SetTemplate(r.Context(), kind, tpl)
	return reply(w, http.StatusOK, saved, err)
}
