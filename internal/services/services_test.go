package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/diewo77/kfz-werkstatt/internal/db/dbtest"
	"github.com/diewo77/kfz-werkstatt/internal/models"
	"github.com/diewo77/kfz-werkstatt/internal/settings"
	"github.com/diewo77/kfz-werkstatt/internal/store"
)

var fixedNow = time.Date(2025, time.March, 14, 10, 30, 0, 0, time.UTC)

type fixture struct {
	store     *store.Store
	settings  *settings.Registry
	customers *CustomerService
	vehicles  *VehicleService
	products  *ProductService
	catalog   *CatalogService
	estimates *EstimateService
	invoices  *InvoiceService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := store.New(dbtest.New(t))
	reg := settings.New(s, nil)
	_, err := reg.SeedDefaults(context.Background())
	require.NoError(t, err)

	clock := func() time.Time { return fixedNow }
	f := &fixture{
		store:     s,
		settings:  reg,
		customers: NewCustomerService(s),
		vehicles:  NewVehicleService(s),
		products:  NewProductService(s),
		catalog:   NewCatalogService(s),
		estimates: NewEstimateService(s, reg),
		invoices:  NewInvoiceService(s, reg),
	}
	f.vehicles.now = clock
	f.estimates.now = clock
	f.invoices.now = clock
	return f
}

func (f *fixture) customer(t *testing.T, name string) *models.Customer {
	t.Helper()
	c, err := f.customers.Create(context.Background(), CustomerInput{Name: name, Email: "kunde@example.de"})
	require.NoError(t, err)
	return c
}

func (f *fixture) vehicle(t *testing.T, customerID *uint) *VehicleView {
	t.Helper()
	v, err := f.vehicles.Create(context.Background(), VehicleInput{
		CustomerID:   customerID,
		Brand:        "VW",
		Model:        "Golf",
		Year:         2018,
		LicensePlate: "b-ab 123",
		Mileage:      84000,
	})
	require.NoError(t, err)
	return v
}

func (f *fixture) product(t *testing.T, name string, price float64, stock int) *models.Product {
	t.Helper()
	p, err := f.products.Create(context.Background(), ProductInput{Name: name, Price: price, Stock: stock, Category: "Motor"})
	require.NoError(t, err)
	return p
}

func (f *fixture) service(t *testing.T, name string, price float64) *models.Service {
	t.Helper()
	s, err := f.catalog.Create(context.Background(), ServiceInput{Name: name, Category: "Wartung", Price: price})
	require.NoError(t, err)
	return s
}

func ptr[T any](v T) *T { return &v }
