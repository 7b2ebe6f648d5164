package models

import (
	"testing"
	"time"
)

func TestRoundCents(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{48.195, 48.20},
		{7.695, 7.70},
		{40.5, 40.5},
		{0.004, 0},
		{0.005, 0.01},
		{-1.005, -1.01},
	}
	for _, tt := range tests {
		if got := RoundCents(tt.in); got != tt.want {
			t.Errorf("RoundCents(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestVehicle_Profit(t *testing.T) {
	tests := []struct {
		name    string
		vehicle Vehicle
		want    float64
	}{
		{"sold with price", Vehicle{Status: VehicleStatusSold, PurchasePrice: 8000, SalePrice: 9500.5}, 1500.5},
		{"sold at a loss", Vehicle{Status: VehicleStatusSold, PurchasePrice: 5000, SalePrice: 4200}, -800},
		{"sold without price", Vehicle{Status: VehicleStatusSold, PurchasePrice: 5000}, 0},
		{"still in stock", Vehicle{Status: VehicleStatusInventory, PurchasePrice: 5000, SalePrice: 7000}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.vehicle.Profit(); got != tt.want {
				t.Errorf("Profit() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVehicle_Info(t *testing.T) {
	v := Vehicle{Brand: "BMW", Model: "320i", LicensePlate: "M-AB 123"}
	if got := v.Info(); got != "BMW 320i (M-AB 123)" {
		t.Errorf("Info() = %q", got)
	}
	v.LicensePlate = ""
	if got := v.Info(); got != "BMW 320i" {
		t.Errorf("Info() without plate = %q", got)
	}
}

func TestProduct_StockValueAndLowStock(t *testing.T) {
	p := Product{Price: 12.5, Stock: 3}
	if got := p.StockValue(); got != 37.5 {
		t.Errorf("StockValue() = %v, want 37.5", got)
	}
	if !p.IsLowStock(DefaultLowStockThreshold) {
		t.Errorf("stock 3 should be low at threshold 5")
	}
	p.Stock = 10
	if p.IsLowStock(DefaultLowStockThreshold) {
		t.Errorf("stock 10 should not be low at threshold 5")
	}
}

func TestLine_Normalize(t *testing.T) {
	svc := uint(4)
	tests := []struct {
		name      string
		line      Line
		wantOK    bool
		wantTotal float64
		wantType  string
	}{
		{"computed when missing", Line{ServiceID: &svc, Quantity: 1, UnitPrice: 89}, true, 89, ItemTypeService},
		{"matching total", Line{Quantity: 3, UnitPrice: 3.33, TotalPrice: 9.99}, true, 9.99, ItemTypeCustom},
		{"cent tolerance", Line{Quantity: 1.5, UnitPrice: 33.33, TotalPrice: 49.99}, true, 50.0, ItemTypeCustom},
		{"wrong total", Line{Quantity: 2, UnitPrice: 10, TotalPrice: 25}, false, 20, ItemTypeCustom},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := tt.line
			if ok := l.Normalize(); ok != tt.wantOK {
				t.Fatalf("Normalize() = %v, want %v", ok, tt.wantOK)
			}
			if l.TotalPrice != tt.wantTotal {
				t.Errorf("TotalPrice = %v, want %v", l.TotalPrice, tt.wantTotal)
			}
			if l.ItemType != tt.wantType {
				t.Errorf("ItemType = %q, want %q", l.ItemType, tt.wantType)
			}
		})
	}
}

func TestSumLines(t *testing.T) {
	lines := []Line{{TotalPrice: 10}, {TotalPrice: 25.5}, {TotalPrice: 5}}
	if got := SumLines(lines); got != 40.5 {
		t.Errorf("SumLines() = %v, want 40.5", got)
	}
}

func TestParseDate(t *testing.T) {
	for _, in := range []string{"2024-03-01", "2024-03-01T10:00:00Z", "2024-03-01 08:00:00"} {
		d, ok := ParseDate(in)
		if !ok || d.Format(DateLayout) != "2024-03-01" {
			t.Errorf("ParseDate(%q) = %v, %v", in, d, ok)
		}
	}
	if _, ok := ParseDate("01.03.2024"); ok {
		t.Errorf("expected German format to be rejected")
	}
	if got := Today(time.Date(2025, 1, 2, 23, 0, 0, 0, time.UTC)); got != "2025-01-02" {
		t.Errorf("Today() = %q", got)
	}
}
