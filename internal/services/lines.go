package services

import (
	"context"
	"fmt"
	"time"

	"github.com/diewo77/kfz-werkstatt/internal/apperr"
	"github.com/diewo77/kfz-werkstatt/internal/models"
	"github.com/diewo77/kfz-werkstatt/internal/store"
	"github.com/diewo77/kfz-werkstatt/validation"
)

// Clock returns the current time. Tests replace it to pin dates.
type Clock func() time.Time

// prepareLines validates document lines, checks their catalog references and
// fills the derived columns. Violations are keyed like items[0].quantity.
func prepareLines(ctx context.Context, s *store.Store, lines []models.Line, v validation.Violations) ([]models.Line, error) {
	products := store.For[models.Product](s, "product")
	services := store.For[models.Service](s, "service")
	out := make([]models.Line, len(lines))
	for i, l := range lines {
		field := func(name string) string { return fmt.Sprintf("items[%d].%s", i, name) }
		validation.PositiveFloat(field("quantity"), l.Quantity, v)
		validation.NonNegativeFloat(field("unit_price"), l.UnitPrice, v)
		if l.ProductID != nil && l.ServiceID != nil {
			v[field("product_id")] = "product_xor_service"
		}
		if l.ProductID != nil {
			ok, err := products.Exists(ctx, *l.ProductID)
			if err != nil {
				return nil, err
			}
			if !ok {
				v[field("product_id")] = "not_found"
			}
		}
		if l.ServiceID != nil {
			ok, err := services.Exists(ctx, *l.ServiceID)
			if err != nil {
				return nil, err
			}
			if !ok {
				v[field("service_id")] = "not_found"
			}
		}
		if !l.Normalize() {
			v[field("total_price")] = "total_mismatch"
		}
		out[i] = l
	}
	return out, nil
}

// checkParties verifies that the referenced customer and vehicle exist.
func checkParties(ctx context.Context, s *store.Store, customerID uint, vehicleID *uint, v validation.Violations) error {
	if customerID == 0 {
		v["customer_id"] = "required"
	} else {
		ok, err := store.For[models.Customer](s, "customer").Exists(ctx, customerID)
		if err != nil {
			return err
		}
		if !ok {
			v["customer_id"] = "not_found"
		}
	}
	if vehicleID != nil {
		ok, err := store.For[models.Vehicle](s, "vehicle").Exists(ctx, *vehicleID)
		if err != nil {
			return err
		}
		if !ok {
			v["vehicle_id"] = "not_found"
		}
	}
	return nil
}

func checkDate(field, value string, v validation.Violations) {
	if value == "" {
		return
	}
	if _, ok := models.ParseDate(value); !ok {
		v[field] = "invalid_date"
	}
}

// normalizeDate stores dates as YYYY-MM-DD.
func normalizeDate(value string) string {
	if t, ok := models.ParseDate(value); ok {
		return t.Format(models.DateLayout)
	}
	return value
}

// documentTotal is the sum of the line totals, or the given amount when the
// document has no lines.
func documentTotal(lines []models.Line, amount float64) float64 {
	if len(lines) > 0 {
		return models.SumLines(lines)
	}
	return models.RoundCents(amount)
}

func invalidState(resource string, from, to any) error {
	return apperr.NewInvalidStateTransitionError(resource, fmt.Sprint(from), fmt.Sprint(to))
}
