package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strconv"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/diewo77/kfz-werkstatt/httpx"
	"github.com/diewo77/kfz-werkstatt/internal/db/dbtest"
	"github.com/diewo77/kfz-werkstatt/internal/render"
	"github.com/diewo77/kfz-werkstatt/internal/settings"
	"github.com/diewo77/kfz-werkstatt/internal/store"
)

type api struct {
	t      *testing.T
	router chi.Router
}

func newAPI(t *testing.T) *api {
	t.Helper()
	st := store.New(dbtest.New(t))
	reg := settings.New(st, nil)
	_, err := reg.SeedDefaults(context.Background())
	require.NoError(t, err)
	renderer, err := render.NewHTMLRenderer()
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(Recoverer)
	r.Use(CORS("*"))
	NewRouterConfig(st, reg, renderer).Mount(r)
	return &api{t: t, router: r}
}

func (a *api) do(method, path string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

type idBody struct {
	ID uint `json:"id"`
}

func (a *api) create(path string, body any) uint {
	a.t.Helper()
	rr := a.do(http.MethodPost, path, body)
	require.Equal(a.t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[idBody](a.t, rr).ID
}

func TestHealth(t *testing.T) {
	a := newAPI(t)
	rr := a.do(http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"OK","message":"KFZ-Werkstatt API is running"}`, rr.Body.String())
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSPreflight(t *testing.T) {
	a := newAPI(t)
	rr := a.do(http.MethodOptions, "/api/customers", nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Contains(t, rr.Header().Get("Access-Control-Allow-Methods"), "PATCH")
}

func TestRecovererWritesJSON(t *testing.T) {
	h := Recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "internal server error", decode[httpx.ErrorResponse](t, rr).Error)
}

func TestCustomerRoutes(t *testing.T) {
	a := newAPI(t)
	id := a.create("/api/customers", map[string]any{"name": "Erika Musterfrau", "email": "erika@example.de"})

	rr := a.do(http.MethodGet, "/api/customers/"+itoa(id), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Erika Musterfrau", decode[map[string]any](t, rr)["name"])

	rr = a.do(http.MethodPut, "/api/customers/"+itoa(id), map[string]any{"name": "Erika M.", "email": ""})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = a.do(http.MethodGet, "/api/customers?search=erika", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]map[string]any](t, rr), 1)

	rr = a.do(http.MethodDelete, "/api/customers/"+itoa(id), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	rr = a.do(http.MethodGet, "/api/customers/"+itoa(id), nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "NOT_FOUND", decode[httpx.ErrorResponse](t, rr).Error)
}

func TestErrorMapping(t *testing.T) {
	a := newAPI(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"invalid id", http.MethodGet, "/api/customers/abc", nil, http.StatusBadRequest, "BAD_REQUEST"},
		{"zero id", http.MethodGet, "/api/vehicles/0", nil, http.StatusBadRequest, "BAD_REQUEST"},
		{"validation", http.MethodPost, "/api/customers", map[string]any{"email": "nope"}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"unknown kind", http.MethodGet, "/api/pdf/receipt/1", nil, http.StatusBadRequest, "BAD_REQUEST"},
		{"missing document", http.MethodGet, "/api/pdf/invoice/99", nil, http.StatusNotFound, "NOT_FOUND"},
		{"bad customer filter", http.MethodGet, "/api/invoices?customer_id=x", nil, http.StatusBadRequest, "BAD_REQUEST"},
		{"missing stock", http.MethodPatch, "/api/products/1/stock", map[string]any{}, http.StatusBadRequest, "VALIDATION_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := a.do(tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rr.Code, rr.Body.String())
			assert.Equal(t, tt.code, decode[httpx.ErrorResponse](t, rr).Error)
		})
	}
}

func TestValidationDetails(t *testing.T) {
	a := newAPI(t)
	rr := a.do(http.MethodPost, "/api/vehicles", map[string]any{"year": 1800})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	details := decode[struct {
		Details map[string]string `json:"details"`
	}](t, rr).Details
	assert.Equal(t, "required", details["brand"])
	assert.Equal(t, "required", details["model"])
	assert.Contains(t, details, "year")
}

func TestEstimateConversionFlow(t *testing.T) {
	a := newAPI(t)
	customerID := a.create("/api/customers", map[string]any{"name": "Max Mustermann"})
	productID := a.create("/api/products", map[string]any{"name": "Bremsbelag", "price": 40, "stock": 4, "category": "Bremsen"})
	serviceID := a.create("/api/services", map[string]any{"name": "Bremsen wechseln", "category": "Bremsen", "price": 80})

	rr := a.do(http.MethodPost, "/api/estimates", map[string]any{
		"customer_id": customerID,
		"items": []map[string]any{
			{"product_id": productID, "quantity": 2, "unit_price": 40},
			{"service_id": serviceID, "quantity": 1, "unit_price": 80},
		},
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	est := decode[map[string]any](t, rr)
	estimateID := uint(est["id"].(float64))
	assert.Regexp(t, regexp.MustCompile(`^KV-\d{4}-000001$`), est["estimate_number"])
	assert.Equal(t, 160.0, est["total_amount"])
	assert.Equal(t, "draft", est["status"])

	path := "/api/estimates/" + itoa(estimateID)
	rr = a.do(http.MethodPost, path+"/convert", nil)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "INVALID_STATE_TRANSITION", decode[httpx.ErrorResponse](t, rr).Error)

	rr = a.do(http.MethodPatch, path+"/status", map[string]any{"status": "accepted"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = a.do(http.MethodPost, path+"/convert", nil)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	conv := decode[map[string]any](t, rr)
	assert.Regexp(t, regexp.MustCompile(`^RE-\d{4}-000001$`), conv["invoice_number"])
	invoiceID := uint(conv["invoice_id"].(float64))

	rr = a.do(http.MethodPost, path+"/convert", nil)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = a.do(http.MethodGet, "/api/invoices/"+itoa(invoiceID), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	inv := decode[map[string]any](t, rr)
	assert.Equal(t, 160.0, inv["amount"])
	assert.Equal(t, "Max Mustermann", inv["customer_name"])
	assert.Len(t, inv["items"], 2)

	rr = a.do(http.MethodPatch, "/api/invoices/"+itoa(invoiceID)+"/paid", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "paid", decode[map[string]any](t, rr)["status"])

	rr = a.do(http.MethodGet, "/api/pdf/invoice/"+itoa(invoiceID), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, render.ContentTypeHTML, rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Body.String(), "Bremsbelag")

	rr = a.do(http.MethodGet, "/api/dashboard", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	stats := decode[map[string]any](t, rr)
	assert.Equal(t, 160.0, stats["totalRevenue"])
	assert.Equal(t, 1.0, stats["customerCount"])
	assert.Equal(t, 1.0, stats["lowStockProducts"])
}

func TestVehicleSaleRoutes(t *testing.T) {
	a := newAPI(t)
	id := a.create("/api/vehicles", map[string]any{"brand": "Opel", "model": "Astra", "year": 2015, "purchase_price": 5000})

	rr := a.do(http.MethodPatch, "/api/vehicles/"+itoa(id)+"/sell", map[string]any{"sale_price": 6500, "sale_date": "2025-05-01"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "sold", decode[map[string]any](t, rr)["status"])

	rr = a.do(http.MethodPatch, "/api/vehicles/"+itoa(id)+"/sell", map[string]any{"sale_price": 7000})
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = a.do(http.MethodGet, "/api/vehicles/stats/overview", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	stats := decode[map[string]any](t, rr)
	assert.Equal(t, 1500.0, stats["total_profit"])
	assert.Equal(t, 1.0, stats["sold_count"])

	rr = a.do(http.MethodGet, "/api/vehicles/stats/profitable", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]map[string]any](t, rr), 1)
}

func TestProductRoutes(t *testing.T) {
	a := newAPI(t)
	id := a.create("/api/products", map[string]any{"name": "Luftfilter", "price": 12.5, "stock": 3, "category": "Filter"})
	a.create("/api/products", map[string]any{"name": "Zündkerze", "price": 8, "stock": 20, "category": "Motor"})

	rr := a.do(http.MethodPost, "/api/products", map[string]any{"name": "Luftfilter", "price": 1, "category": "Filter"})
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = a.do(http.MethodPatch, "/api/products/"+itoa(id)+"/stock", map[string]any{"stock": 5, "operation": "subtract"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, 0.0, decode[map[string]any](t, rr)["stock"])

	rr = a.do(http.MethodGet, "/api/products?sortBy=price&order=desc", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	list := decode[struct {
		Products []map[string]any `json:"products"`
	}](t, rr).Products
	require.Len(t, list, 2)
	assert.Equal(t, "Luftfilter", list[0]["name"])
	assert.Equal(t, "Zündkerze", list[1]["name"])

	rr = a.do(http.MethodGet, "/api/products/lowstock/10", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	low := decode[struct {
		Threshold int              `json:"threshold"`
		Products  []map[string]any `json:"products"`
	}](t, rr)
	assert.Equal(t, 10, low.Threshold)
	assert.Len(t, low.Products, 1)

	rr = a.do(http.MethodGet, "/api/products/categories/all", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]map[string]any](t, rr), 2)
}

func TestProductExportImport(t *testing.T) {
	a := newAPI(t)
	a.create("/api/products", map[string]any{"name": "Ölfilter", "price": 9.9, "stock": 7, "category": "Filter"})

	rr := a.do(http.MethodGet, "/api/products/export.xlsx", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "attachment")
	workbook := rr.Body.Bytes()

	f, err := excelize.OpenReader(bytes.NewReader(workbook))
	require.NoError(t, err)
	rows, err := f.GetRows(f.GetSheetList()[0])
	require.NoError(t, err)
	require.Len(t, rows, 2)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "produkte.xlsx")
	require.NoError(t, err)
	_, err = part.Write(workbook)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/products/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[map[string]any](t, rec)
	assert.Equal(t, 0.0, res["created"])
	assert.Equal(t, 1.0, res["updated"])
}

func TestServiceRoutes(t *testing.T) {
	a := newAPI(t)
	id := a.create("/api/services", map[string]any{"name": "Reifenwechsel", "category": "Reifen", "price": 30})

	rr := a.do(http.MethodDelete, "/api/services/"+itoa(id), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	rr = a.do(http.MethodGet, "/api/services", nil)
	assert.Len(t, decode[[]map[string]any](t, rr), 0)

	rr = a.do(http.MethodPatch, "/api/services/"+itoa(id)+"/activate", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	rr = a.do(http.MethodGet, "/api/services/category/Reifen", nil)
	assert.Len(t, decode[[]map[string]any](t, rr), 1)
	rr = a.do(http.MethodGet, "/api/services/categories", nil)
	assert.Equal(t, []string{"Reifen"}, decode[[]string](t, rr))
}

func TestSettingsRoutes(t *testing.T) {
	a := newAPI(t)

	rr := a.do(http.MethodGet, "/api/settings/invoice/number_prefix", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "RE", decode[settings.Entry](t, rr).Value)

	rr = a.do(http.MethodPut, "/api/settings/invoice/number_prefix", map[string]any{"value": "WR"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "WR", decode[settings.Entry](t, rr).Value)

	rr = a.do(http.MethodPut, "/api/settings/invoice/number_prefix", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = a.do(http.MethodPut, "/api/settings/company", map[string]string{"name": "Autohaus Nord", "address_city": "24103 Kiel"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, 2.0, decode[map[string]any](t, rr)["updated"])

	rr = a.do(http.MethodGet, "/api/settings/company", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Autohaus Nord", decode[map[string]settings.Entry](t, rr)["name"].Value)

	rr = a.do(http.MethodGet, "/api/settings", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, decode[map[string]any](t, rr), "invoice")

	rr = a.do(http.MethodGet, "/api/settings/templates/estimate", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	tpl := decode[map[string]any](t, rr)
	tpl["header"].(map[string]any)["layout"] = "minimal"
	rr = a.do(http.MethodPut, "/api/settings/templates/estimate", tpl)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	rr = a.do(http.MethodGet, "/api/settings/templates/estimate", nil)
	saved := decode[map[string]any](t, rr)
	assert.Equal(t, "minimal", saved["header"].(map[string]any)["layout"])
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
