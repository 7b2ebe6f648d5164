package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/diewo77/kfz-werkstatt/internal/models"
	"github.com/diewo77/kfz-werkstatt/internal/store"
	"github.com/diewo77/kfz-werkstatt/validation"
)

type VehicleInput struct {
	CustomerID    *uint   `json:"customer_id"`
	Brand         string  `json:"brand"`
	Model         string  `json:"model"`
	Year          int     `json:"year"`
	LicensePlate  string  `json:"license_plate"`
	VIN           string  `json:"vin"`
	Mileage       int     `json:"mileage"`
	PurchasePrice float64 `json:"purchase_price"`
	SalePrice     float64 `json:"sale_price"`
	PurchaseDate  string  `json:"purchase_date"`
	SaleDate      string  `json:"sale_date"`
	Status        string  `json:"status"`
	Notes         string  `json:"notes"`
}

// SaleInput marks a vehicle as sold.
type SaleInput struct {
	SalePrice  float64 `json:"sale_price"`
	SaleDate   string  `json:"sale_date"`
	CustomerID *uint   `json:"customer_id"`
	Notes      string  `json:"notes"`
}

type VehicleView struct {
	models.Vehicle
	CustomerName string  `json:"customer_name,omitempty"`
	Profit       float64 `json:"profit"`
}

type VehicleFilter struct {
	Status     string
	CustomerID uint
	Search     string
}

type VehicleStats struct {
	Total          int64   `json:"total_vehicles"`
	InventoryCount int64   `json:"inventory_count"`
	SoldCount      int64   `json:"sold_count"`
	InventoryValue float64 `json:"inventory_value"`
	TotalProfit    float64 `json:"total_profit"`
	AvgProfit      float64 `json:"avg_profit"`
	TotalSales     float64 `json:"total_sales"`
	TotalInvested  float64 `json:"total_invested"`
	ProfitMargin   float64 `json:"profit_margin"`
}

// ProfitableVehicle is a sold vehicle ranked by profit.
type ProfitableVehicle struct {
	ID               uint    `json:"id"`
	Brand            string  `json:"brand"`
	Model            string  `json:"model"`
	Year             int     `json:"year,omitempty"`
	LicensePlate     string  `json:"license_plate,omitempty"`
	PurchasePrice    float64 `json:"purchase_price"`
	SalePrice        float64 `json:"sale_price"`
	SaleDate         string  `json:"sale_date,omitempty"`
	Profit           float64 `json:"profit"`
	ProfitPercentage float64 `json:"profit_percentage"`
}

type VehicleService struct {
	store *store.Store
	now   Clock
}

func NewVehicleService(s *store.Store) *VehicleService {
	return &VehicleService{store: s, now: time.Now}
}

func (s *VehicleService) repo(st *store.Store) store.Repo[models.Vehicle] {
	return store.For[models.Vehicle](st, "vehicle")
}

func (s *VehicleService) List(ctx context.Context, f VehicleFilter) ([]VehicleView, error) {
	where, args := filterWhere(map[string]any{"status": f.Status, "customer_id": f.CustomerID})
	rows, err := s.repo(s.store).List(ctx, store.Query{
		Where:        where,
		Args:         args,
		Search:       f.Search,
		SearchFields: []string{"brand", "model", "license_plate", "vin"},
		OrderBy:      "brand",
		Preload:      []string{"Customer"},
	})
	if err != nil {
		return nil, err
	}
	out := make([]VehicleView, len(rows))
	for i := range rows {
		out[i] = vehicleView(rows[i])
	}
	return out, nil
}

func (s *VehicleService) Get(ctx context.Context, id uint) (*VehicleView, error) {
	v, err := s.repo(s.store).Find(ctx, id, "Customer")
	if err != nil {
		return nil, err
	}
	view := vehicleView(*v)
	return &view, nil
}

func (s *VehicleService) validate(ctx context.Context, in *VehicleInput) error {
	v := make(validation.Violations)
	validation.Required("brand", in.Brand, v)
	validation.Required("model", in.Model, v)
	if in.Year != 0 {
		validation.RangeFloat("year", float64(in.Year), 1900, float64(s.now().Year()+1), v)
	}
	validation.NonNegativeInt("mileage", in.Mileage, v)
	validation.NonNegativeFloat("purchase_price", in.PurchasePrice, v)
	validation.NonNegativeFloat("sale_price", in.SalePrice, v)
	validation.OneOf("status", in.Status, models.VehicleStatuses, v)
	checkDate("purchase_date", in.PurchaseDate, v)
	checkDate("sale_date", in.SaleDate, v)
	if len(in.VIN) > 17 {
		v["vin"] = "too_long"
	}
	if in.CustomerID != nil {
		ok, err := store.For[models.Customer](s.store, "customer").Exists(ctx, *in.CustomerID)
		if err != nil {
			return err
		}
		if !ok {
			v["customer_id"] = "not_found"
		}
	}
	return v.Err()
}

func (in VehicleInput) model() models.Vehicle {
	status := models.VehicleStatus(in.Status)
	if status == "" {
		status = models.VehicleStatusInventory
	}
	return models.Vehicle{
		CustomerID:    in.CustomerID,
		Brand:         strings.TrimSpace(in.Brand),
		Model:         strings.TrimSpace(in.Model),
		Year:          in.Year,
		LicensePlate:  strings.ToUpper(strings.TrimSpace(in.LicensePlate)),
		VIN:           strings.ToUpper(strings.TrimSpace(in.VIN)),
		Mileage:       in.Mileage,
		PurchasePrice: models.RoundCents(in.PurchasePrice),
		SalePrice:     models.RoundCents(in.SalePrice),
		PurchaseDate:  normalizeDate(in.PurchaseDate),
		SaleDate:      normalizeDate(in.SaleDate),
		Status:        status,
		Notes:         in.Notes,
	}
}

func (s *VehicleService) Create(ctx context.Context, in VehicleInput) (*VehicleView, error) {
	if err := s.validate(ctx, &in); err != nil {
		return nil, err
	}
	veh := in.model()
	if err := s.repo(s.store).Insert(ctx, &veh); err != nil {
		return nil, err
	}
	return s.Get(ctx, veh.ID)
}

func (s *VehicleService) Update(ctx context.Context, id uint, in VehicleInput) (*VehicleView, error) {
	if err := s.validate(ctx, &in); err != nil {
		return nil, err
	}
	veh := in.model()
	if err := s.repo(s.store).Update(ctx, id, &veh); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes a vehicle. Documents that referenced it keep their data but
// lose the link.
func (s *VehicleService) Delete(ctx context.Context, id uint) error {
	return s.store.Transaction(ctx, func(tx *store.Store) error {
		for _, m := range []any{&models.Estimate{}, &models.Invoice{}} {
			if err := tx.DB(ctx).Model(m).Where("vehicle_id = ?", id).Update("vehicle_id", nil).Error; err != nil {
				return store.Translate("unlink vehicle", "vehicle", err)
			}
		}
		return s.repo(tx).Delete(ctx, id)
	})
}

// Sell records the sale and sets the status to sold. The sale date defaults
// to today.
func (s *VehicleService) Sell(ctx context.Context, id uint, in SaleInput) (*VehicleView, error) {
	v := make(validation.Violations)
	validation.PositiveFloat("sale_price", in.SalePrice, v)
	checkDate("sale_date", in.SaleDate, v)
	if err := v.Err(); err != nil {
		return nil, err
	}
	cur, err := s.repo(s.store).Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if cur.IsSold() {
		return nil, invalidState("vehicle", cur.Status, models.VehicleStatusSold)
	}
	date := normalizeDate(in.SaleDate)
	if date == "" {
		date = models.Today(s.now())
	}
	fields := map[string]any{
		"status":     models.VehicleStatusSold,
		"sale_price": models.RoundCents(in.SalePrice),
		"sale_date":  date,
	}
	if in.CustomerID != nil {
		ok, err := store.For[models.Customer](s.store, "customer").Exists(ctx, *in.CustomerID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, validation.Violations{"customer_id": "not_found"}.Err()
		}
		fields["customer_id"] = *in.CustomerID
	}
	if in.Notes != "" {
		fields["notes"] = in.Notes
	}
	if err := s.repo(s.store).Patch(ctx, id, fields); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Stats aggregates the trading stock.
func (s *VehicleService) Stats(ctx context.Context) (*VehicleStats, error) {
	var st VehicleStats
	err := s.store.DB(ctx).Model(&models.Vehicle{}).Select(`
		COUNT(*) AS total,
		COUNT(CASE WHEN status = 'inventory' THEN 1 END) AS inventory_count,
		COUNT(CASE WHEN status = 'sold' THEN 1 END) AS sold_count,
		COALESCE(SUM(CASE WHEN status = 'inventory' THEN purchase_price END), 0) AS inventory_value,
		COALESCE(SUM(CASE WHEN status = 'sold' THEN sale_price - purchase_price END), 0) AS total_profit,
		COALESCE(AVG(CASE WHEN status = 'sold' THEN sale_price - purchase_price END), 0) AS avg_profit,
		COALESCE(SUM(CASE WHEN status = 'sold' THEN sale_price END), 0) AS total_sales,
		COALESCE(SUM(purchase_price), 0) AS total_invested`).
		Scan(&st).Error
	if err != nil {
		return nil, store.Translate("vehicle stats", "vehicle", err)
	}
	st.InventoryValue = models.RoundCents(st.InventoryValue)
	st.TotalProfit = models.RoundCents(st.TotalProfit)
	st.AvgProfit = models.RoundCents(st.AvgProfit)
	st.TotalSales = models.RoundCents(st.TotalSales)
	st.TotalInvested = models.RoundCents(st.TotalInvested)
	if st.TotalSales > 0 {
		st.ProfitMargin = decimal.NewFromFloat(st.TotalProfit).
			Div(decimal.NewFromFloat(st.TotalSales)).
			Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
	}
	return &st, nil
}

// MostProfitable returns up to limit sold vehicles ordered by profit.
func (s *VehicleService) MostProfitable(ctx context.Context, limit int) ([]ProfitableVehicle, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.repo(s.store).List(ctx, store.Query{
		Where: "status = ? AND sale_price > 0",
		Args:  []any{models.VehicleStatusSold},
	})
	if err != nil {
		return nil, err
	}
	out := make([]ProfitableVehicle, 0, len(rows))
	for i := range rows {
		v := &rows[i]
		p := ProfitableVehicle{
			ID:            v.ID,
			Brand:         v.Brand,
			Model:         v.Model,
			Year:          v.Year,
			LicensePlate:  v.LicensePlate,
			PurchasePrice: v.PurchasePrice,
			SalePrice:     v.SalePrice,
			SaleDate:      v.SaleDate,
			Profit:        v.Profit(),
		}
		if v.PurchasePrice > 0 {
			p.ProfitPercentage = decimal.NewFromFloat(p.Profit).
				Div(decimal.NewFromFloat(v.PurchasePrice)).
				Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Profit > out[j].Profit })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func vehicleView(v models.Vehicle) VehicleView {
	view := VehicleView{Vehicle: v, Profit: v.Profit()}
	if v.Customer != nil {
		view.CustomerName = v.Customer.Name
	}
	return view
}
