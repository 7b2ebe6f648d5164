package handlers

import (
	"github.com/go-chi/chi/v5"

	"github.com/diewo77/kfz-werkstatt/internal/render"
	"github.com/diewo77/kfz-werkstatt/internal/services"
	"github.com/diewo77/kfz-werkstatt/internal/settings"
	"github.com/diewo77/kfz-werkstatt/internal/store"
)

// RouterConfig holds the configured handlers of the API.
type RouterConfig struct {
	Customers *CustomerHandler
	Vehicles  *VehicleHandler
	Products  *ProductHandler
	Services  *CatalogHandler
	Invoices  *InvoiceHandler
	Estimates *EstimateHandler
	Dashboard *DashboardHandler
	Settings  *SettingsHandler
	Documents *DocumentHandler
}

// NewRouterConfig wires services and handlers over one store.
func NewRouterConfig(st *store.Store, reg *settings.Registry, renderer render.Renderer) *RouterConfig {
	return &RouterConfig{
		Customers: NewCustomerHandler(services.NewCustomerService(st)),
		Vehicles:  NewVehicleHandler(services.NewVehicleService(st)),
		Products:  NewProductHandler(services.NewProductService(st)),
		Services:  NewCatalogHandler(services.NewCatalogService(st)),
		Invoices:  NewInvoiceHandler(services.NewInvoiceService(st, reg)),
		Estimates: NewEstimateHandler(services.NewEstimateService(st, reg)),
		Dashboard: NewDashboardHandler(services.NewDashboard(st)),
		Settings:  NewSettingsHandler(reg),
		Documents: NewDocumentHandler(services.NewDocumentService(st, reg, renderer)),
	}
}

// Mount registers every /api route on r.
func (c *RouterConfig) Mount(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", Health)

		r.Route("/customers", func(r chi.Router) {
			h := c.Customers
			r.Get("/", handle(h.List))
			r.Post("/", handle(h.Create))
			r.Get("/{id}", withID(h.Get))
			r.Put("/{id}", withID(h.Update))
			r.Delete("/{id}", withID(h.Delete))
		})

		r.Route("/vehicles", func(r chi.Router) {
			h := c.Vehicles
			r.Get("/", handle(h.List))
			r.Post("/", handle(h.Create))
			r.Get("/stats/overview", handle(h.Stats))
			r.Get("/stats/profitable", handle(h.MostProfitable))
			r.Get("/{id}", withID(h.Get))
			r.Put("/{id}", withID(h.Update))
			r.Delete("/{id}", withID(h.Delete))
			r.Patch("/{id}/sell", withID(h.Sell))
		})

		r.Route("/products", func(r chi.Router) {
			h := c.Products
			r.Get("/", handle(h.List))
			r.Post("/", handle(h.Create))
			r.Get("/stats/overview", handle(h.Stats))
			r.Get("/categories/all", handle(h.Categories))
			r.Get("/lowstock", handle(h.LowStock))
			r.Get("/lowstock/{threshold}", handle(h.LowStock))
			r.Get("/export.xlsx", handle(h.Export))
			r.Post("/import", handle(h.Import))
			r.Get("/{id}", withID(h.Get))
			r.Put("/{id}", withID(h.Update))
			r.Delete("/{id}", withID(h.Delete))
			r.Patch("/{id}/stock", withID(h.AdjustStock))
		})

		r.Route("/services", func(r chi.Router) {
			h := c.Services
			r.Get("/", handle(h.List))
			r.Post("/", handle(h.Create))
			r.Get("/categories", handle(h.Categories))
			r.Get("/category/{category}", handle(h.ByCategory))
			r.Get("/{id}", withID(h.Get))
			r.Put("/{id}", withID(h.Update))
			r.Delete("/{id}", withID(h.Delete))
			r.Patch("/{id}/activate", withID(h.Activate))
		})

		r.Route("/invoices", func(r chi.Router) {
			h := c.Invoices
			r.Get("/", handle(h.List))
			r.Post("/", handle(h.Create))
			r.Get("/{id}", withID(h.Get))
			r.Put("/{id}", withID(h.Update))
			r.Delete("/{id}", withID(h.Delete))
			r.Patch("/{id}/paid", withID(h.MarkPaid))
		})

		r.Route("/estimates", func(r chi.Router) {
			h := c.Estimates
			r.Get("/", handle(h.List))
			r.Post("/", handle(h.Create))
			r.Get("/{id}", withID(h.Get))
			r.Put("/{id}", withID(h.Update))
			r.Delete("/{id}", withID(h.Delete))
			r.Patch("/{id}/status", withID(h.SetStatus))
			r.Post("/{id}/convert", withID(h.Convert))
		})

		r.Get("/dashboard", handle(c.Dashboard.Stats))

		r.Route("/settings", func(r chi.Router) {
			h := c.Settings
			r.Get("/", handle(h.All))
			r.Get("/templates/{kind}", handle(h.Template))
			r.Put("/templates/{kind}", handle(h.SetTemplate))
			r.Get("/{category}", handle(h.Category))
			r.Put("/{category}", handle(h.UpdateCategory))
			r.Get("/{category}/{key}", handle(h.Get))
			r.Put("/{category}/{key}", handle(h.Set))
		})

		r.Get("/pdf/{kind}/{id}", withID(c.Documents.Render))
	})
}
