package handlers

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/diewo77/kfz-werkstatt/httpx"
	"github.com/diewo77/kfz-werkstatt/internal/apperr"
	"github.com/diewo77/kfz-werkstatt/internal/export"
	"github.com/diewo77/kfz-werkstatt/internal/models"
	"github.com/diewo77/kfz-werkstatt/internal/services"
)

const maxUploadBytes = 10 << 20

type ProductHandler struct {
	svc *services.ProductService
}

func NewProductHandler(svc *services.ProductService) *ProductHandler {
	return &ProductHandler{svc: svc}
}

// ProductList is the list response with the catalog figures.
type ProductList struct {
	Products []models.Product       `json:"products"`
	Stats    *services.ProductStats `json:"stats"`
}

// StockRequest is the body of the stock endpoint.
type StockRequest struct {
	Stock     *int   `json:"stock"`
	Operation string `json:"operation"`
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()
	list, err := h.svc.List(r.Context(), services.ProductFilter{
		Category: q.Get("category"),
		Search:   q.Get("search"),
		SortBy:   q.Get("sortBy"),
		Order:    q.Get("order"),
	})
	if err != nil {
		return err
	}
	st, err := h.svc.Stats(r.Context(), models.DefaultLowStockThreshold)
	return reply(w, http.StatusOK, ProductList{Products: list, Stats: st}, err)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request, id uint) error {
	p, err := h.svc.Get(r.Context(), id)
	return reply(w, http.StatusOK, p, err)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) error {
	var in services.ProductInput
	if err := httpx.Decode(r, &in); err != nil {
		return err
	}
	p, err := h.svc.Create(r.Context(), in)
	return reply(w, http.StatusCreated, p, err)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request, id uint) error {
	var in services.ProductInput
	if err := httpx.Decode(r, &in); err != nil {
		return err
	}
	p, err := h.svc.Update(r.Context(), id, in)
	return reply(w, http.StatusOK, p, err)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request, id uint) error {
	err := h.svc.Delete(r.Context(), id)
	return reply(w, http.StatusOK, Message{Message: "Produkt gelöscht"}, err)
}

func (h *ProductHandler) AdjustStock(w http.ResponseWriter, r *http.Request, id uint) error {
	var req StockRequest
	if err := httpx.Decode(r, &req); err != nil {
		return err
	}
	if req.Stock == nil {
		return apperr.NewFieldError("stock", "required")
	}
	p, err := h.svc.AdjustStock(r.Context(), id, req.Operation, *req.Stock)
	return reply(w, http.StatusOK, p, err)
}

func (h *ProductHandler) Stats(w http.ResponseWriter, r *http.Request) error {
	threshold, err := queryInt(r, "threshold", models.DefaultLowStockThreshold)
	if err != nil {
		return err
	}
	st, err := h.svc.Stats(r.Context(), threshold)
	return reply(w, http.StatusOK, st, err)
}

func (h *ProductHandler) Categories(w http.ResponseWriter, r *http.Request) error {
	cats, err := h.svc.Categories(r.Context())
	return reply(w, http.StatusOK, cats, err)
}

// LowStock serves /lowstock and /lowstock/{threshold}. A missing or invalid
// threshold means the default.
func (h *ProductHandler) LowStock(w http.ResponseWriter, r *http.Request) error {
	threshold, err := strconv.Atoi(chi.URLParam(r, "threshold"))
	if err != nil || threshold <= 0 {
		threshold = models.DefaultLowStockThreshold
	}
	list, err := h.svc.LowStock(r.Context(), threshold)
	return reply(w, http.StatusOK, map[string]any{"threshold": threshold, "products": list}, err)
}

func (h *ProductHandler) Export(w http.ResponseWriter, r *http.Request) error {
	list, err := h.svc.List(r.Context(), services.ProductFilter{Category: r.URL.Query().Get("category")})
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := export.WriteProducts(&buf, list); err != nil {
		return apperr.NewInfrastructureError("export products", err)
	}
	w.Header().Set("Content-Type", export.ContentTypeXLSX)
	w.Header().Set("Content-Disposition", `attachment; filename="produkte.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
	return nil
}

// Import accepts the workbook as multipart field "file" or as the raw body.
func (h *ProductHandler) Import(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	body := r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, err := r.FormFile("file")
		if err != nil {
			return apperr.NewBadRequestError("multipart field file is missing")
		}
		defer file.Close()
		body = file
	}
	res, err := export.ImportProducts(r.Context(), h.svc, body)
	return reply(w, http.StatusOK, res, err)
}
