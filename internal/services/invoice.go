package services

import (
	"context"
	"time"

	"github.com/diewo77/kfz-werkstatt/internal/document"
	"github.com/diewo77/kfz-werkstatt/internal/models"
	"github.com/diewo77/kfz-werkstatt/internal/store"
	"github.com/diewo77/kfz-werkstatt/validation"
)

// InvoiceInput is the writable part of an invoice.
type InvoiceInput struct {
	CustomerID    uint          `json:"customer_id"`
	VehicleID     *uint         `json:"vehicle_id"`
	InvoiceNumber string        `json:"invoice_number"`
	Date          string        `json:"date"`
	Amount        float64       `json:"amount"`
	Status        string        `json:"status"`
	Description   string        `json:"description"`
	Items         []models.Line `json:"items"`
}

// InvoiceView is an invoice joined with its customer and vehicle.
type InvoiceView struct {
	models.Invoice
	CustomerName string `json:"customer_name"`
	VehicleInfo  string `json:"vehicle_info,omitempty"`
}

type InvoiceFilter struct {
	Status     string
	CustomerID uint
	Search     string
}

type InvoiceService struct {
	store    *store.Store
	settings NumberSettings
	seq      Sequencer
	now      Clock
}

func NewInvoiceService(s *store.Store, settings NumberSettings) *InvoiceService {
	return &InvoiceService{store: s, settings: settings, now: time.Now}
}

func (s *InvoiceService) repo(st *store.Store) store.Repo[models.Invoice] {
	return store.For[models.Invoice](st, "invoice")
}

func (s *InvoiceService) List(ctx context.Context, f InvoiceFilter) ([]InvoiceView, error) {
	where, args := filterWhere(map[string]any{"status": f.Status, "customer_id": f.CustomerID})
	rows, err := s.repo(s.store).List(ctx, store.Query{
		Where:        where,
		Args:         args,
		Search:       f.Search,
		SearchFields: []string{"invoice_number", "description"},
		OrderBy:      "created_at",
		Desc:         true,
		Preload:      []string{"Customer", "Vehicle"},
	})
	if err != nil {
		return nil, err
	}
	out := make([]InvoiceView, len(rows))
	for i := range rows {
		out[i] = invoiceView(rows[i])
	}
	return out, nil
}

func (s *InvoiceService) Get(ctx context.Context, id uint) (*InvoiceView, error) {
	inv, err := s.repo(s.store).Find(ctx, id, "Items", "Customer", "Vehicle")
	if err != nil {
		return nil, err
	}
	v := invoiceView(*inv)
	return &v, nil
}

func (s *InvoiceService) validate(ctx context.Context, in *InvoiceInput) ([]models.Line, error) {
	v := make(validation.Violations)
	validation.NonNegativeFloat("amount", in.Amount, v)
	validation.OneOf("status", in.Status, models.InvoiceStatuses, v)
	checkDate("date", in.Date, v)
	if err := checkParties(ctx, s.store, in.CustomerID, in.VehicleID, v); err != nil {
		return nil, err
	}
	var lines []models.Line
	if in.Items != nil {
		var err error
		if lines, err = prepareLines(ctx, s.store, in.Items, v); err != nil {
			return nil, err
		}
	}
	return lines, v.Err()
}

func (s *InvoiceService) Create(ctx context.Context, in InvoiceInput) (*InvoiceView, error) {
	lines, err := s.validate(ctx, &in)
	if err != nil {
		return nil, err
	}
	date := normalizeDate(in.Date)
	if date == "" {
		date = models.Today(s.now())
	}
	status := models.InvoiceStatus(in.Status)
	if status == "" {
		status = models.InvoiceStatusPending
	}
	prefix := s.settings.NumberPrefix(ctx, document.KindInvoice)

	inv := models.Invoice{
		CustomerID:    in.CustomerID,
		VehicleID:     in.VehicleID,
		InvoiceNumber: in.InvoiceNumber,
		Date:          date,
		Amount:        documentTotal(lines, in.Amount),
		Status:        status,
		Description:   in.Description,
		Items:         invoiceItems(lines),
	}
	err = s.store.Transaction(ctx, func(tx *store.Store) error {
		if inv.InvoiceNumber == "" {
			d, _ := models.ParseDate(date)
			number, err := nextFree[models.Invoice](ctx, tx, s.seq, prefix, d.Year(), "invoice_number")
			if err != nil {
				return err
			}
			inv.InvoiceNumber = number
		}
		return s.repo(tx).Insert(ctx, &inv)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, inv.ID)
}

// Update replaces the invoice's fields. Items are replaced when given.
func (s *InvoiceService) Update(ctx context.Context, id uint, in InvoiceInput) (*InvoiceView, error) {
	cur, err := s.repo(s.store).Find(ctx, id, "Items")
	if err != nil {
		return nil, err
	}
	lines, err := s.validate(ctx, &in)
	if err != nil {
		return nil, err
	}

	next := *cur
	next.Items = nil
	next.CustomerID = in.CustomerID
	next.VehicleID = in.VehicleID
	if in.InvoiceNumber != "" {
		next.InvoiceNumber = in.InvoiceNumber
	}
	if in.Date != "" {
		next.Date = normalizeDate(in.Date)
	}
	if in.Status != "" {
		next.Status = models.InvoiceStatus(in.Status)
	}
	next.Description = in.Description
	if in.Items != nil {
		next.Amount = documentTotal(lines, in.Amount)
	} else {
		next.Amount = documentTotal(cur.Lines(), in.Amount)
	}

	err = s.store.Transaction(ctx, func(tx *store.Store) error {
		if err := s.repo(tx).Update(ctx, id, &next); err != nil {
			return err
		}
		if in.Items == nil {
			return nil
		}
		if err := tx.DB(ctx).Where("invoice_id = ?", id).Delete(&models.InvoiceItem{}).Error; err != nil {
			return store.Translate("replace invoice items", "invoice item", err)
		}
		items := invoiceItems(lines)
		for i := range items {
			items[i].InvoiceID = id
			if err := store.For[models.InvoiceItem](tx, "invoice item").Insert(ctx, &items[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// MarkPaid sets the invoice status to paid. Paying twice is a no-op.
func (s *InvoiceService) MarkPaid(ctx context.Context, id uint) (*InvoiceView, error) {
	if err := s.repo(s.store).Patch(ctx, id, map[string]any{"status": models.InvoiceStatusPaid}); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *InvoiceService) Delete(ctx context.Context, id uint) error {
	return s.store.Transaction(ctx, func(tx *store.Store) error {
		if err := tx.DB(ctx).Where("invoice_id = ?", id).Delete(&models.InvoiceItem{}).Error; err != nil {
			return store.Translate("delete invoice items", "invoice item", err)
		}
		return s.repo(tx).Delete(ctx, id)
	})
}

func invoiceView(inv models.Invoice) InvoiceView {
	v := InvoiceView{Invoice: inv}
	if inv.Customer != nil {
		v.CustomerName = inv.Customer.Name
	}
	if inv.Vehicle != nil {
		v.VehicleInfo = inv.Vehicle.Info()
	}
	return v
}
