package services

import (
	"context"

	"github.com/diewo77/kfz-werkstatt/internal/models"
	"github.com/diewo77/kfz-werkstatt/internal/store"
)

// DashboardStats are the headline figures of the start page.
type DashboardStats struct {
	CustomerCount     int64   `json:"customerCount"`
	VehicleCount      int64   `json:"vehicleCount"`
	TotalRevenue      float64 `json:"totalRevenue"`
	PendingInvoices   int64   `json:"pendingInvoices"`
	TotalEstimates    int64   `json:"totalEstimates"`
	PendingEstimates  int64   `json:"pendingEstimates"`
	ProductCount      int64   `json:"productCount"`
	LowStockProducts  int64   `json:"lowStockProducts"`
	TotalProductValue float64 `json:"totalProductValue"`
	ServiceCount      int64   `json:"serviceCount"`
}

// Dashboard computes the overview counters on every call.
type Dashboard struct {
	store *store.Store
}

func NewDashboard(s *store.Store) *Dashboard {
	return &Dashboard{store: s}
}

// Stats computes the figures from the current data. Products at or below
// threshold count as low stock; zero means the default threshold.
func (d *Dashboard) Stats(ctx context.Context, threshold int) (*DashboardStats, error) {
	if threshold <= 0 {
		threshold = models.DefaultLowStockThreshold
	}
	customers := store.For[models.Customer](d.store, "customer")
	vehicles := store.For[models.Vehicle](d.store, "vehicle")
	invoices := store.For[models.Invoice](d.store, "invoice")
	estimates := store.For[models.Estimate](d.store, "estimate")
	products := store.For[models.Product](d.store, "product")
	services := store.For[models.Service](d.store, "service")

	var st DashboardStats
	steps := []func() error{
		func() (err error) { st.CustomerCount, err = customers.Count(ctx, ""); return },
		func() (err error) { st.VehicleCount, err = vehicles.Count(ctx, ""); return },
		func() (err error) { st.TotalRevenue, err = invoices.Sum(ctx, "amount", ""); return },
		func() (err error) {
			st.PendingInvoices, err = invoices.Count(ctx, "status = ?", models.InvoiceStatusPending)
			return
		},
		func() (err error) { st.TotalEstimates, err = estimates.Count(ctx, ""); return },
		func() (err error) {
			st.PendingEstimates, err = estimates.Count(ctx, "status = ?", models.EstimateStatusSent)
			return
		},
		func() (err error) { st.ProductCount, err = products.Count(ctx, ""); return },
		func() (err error) { st.LowStockProducts, err = products.Count(ctx, "stock <= ?", threshold); return },
		func() (err error) { st.TotalProductValue, err = products.Sum(ctx, "price * stock", ""); return },
		func() (err error) { st.ServiceCount, err = services.Count(ctx, "is_active = ?", true); return },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}
	st.TotalRevenue = models.RoundCents(st.TotalRevenue)
	st.TotalProductValue = models.RoundCents(st.TotalProductValue)
	return &st, nil
}

// LowStock lists the products at or below threshold.
func (d *Dashboard) LowStock(ctx context.Context, threshold int) ([]models.Product, error) {
	return NewProductService(d.store).LowStock(ctx, threshold)
}
