package services

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/diewo77/kfz-werkstatt/internal/apperr"
	"github.com/diewo77/kfz-werkstatt/internal/document"
	"github.com/diewo77/kfz-werkstatt/internal/logging"
	"github.com/diewo77/kfz-werkstatt/internal/models"
	"github.com/diewo77/kfz-werkstatt/internal/store"
	"github.com/diewo77/kfz-werkstatt/validation"
)

// NumberSettings supplies the configured numbering and validity values.
type NumberSettings interface {
	NumberPrefix(ctx context.Context, kind document.Kind) string
	ValidityDays(ctx context.Context) int
}

// estimateTransitions lists the status changes a user may request. The change
// to converted is reserved for ConvertToInvoice.
var estimateTransitions = map[models.EstimateStatus][]models.EstimateStatus{
	models.EstimateStatusDraft:    {models.EstimateStatusSent, models.EstimateStatusAccepted, models.EstimateStatusRejected},
	models.EstimateStatusSent:     {models.EstimateStatusAccepted, models.EstimateStatusRejected},
	models.EstimateStatusRejected: {models.EstimateStatusDraft},
}

// CanTransition reports whether an estimate may move from one status to another.
func CanTransition(from, to models.EstimateStatus) bool {
	for _, s := range estimateTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// EstimateInput is the writable part of an estimate.
type EstimateInput struct {
	CustomerID     uint          `json:"customer_id"`
	VehicleID      *uint         `json:"vehicle_id"`
	EstimateNumber string        `json:"estimate_number"`
	Date           string        `json:"date"`
	ValidUntil     string        `json:"valid_until"`
	Status         string        `json:"status"`
	TotalAmount    float64       `json:"total_amount"`
	Description    string        `json:"description"`
	Notes          string        `json:"notes"`
	Items          []models.Line `json:"items"`
}

// EstimateView is an estimate joined with its customer and vehicle.
type EstimateView struct {
	models.Estimate
	CustomerName string `json:"customer_name"`
	VehicleInfo  string `json:"vehicle_info,omitempty"`
}

// EstimateFilter narrows List.
type EstimateFilter struct {
	Status     string
	CustomerID uint
	Search     string
}

// Conversion is the result of turning an estimate into an invoice.
type Conversion struct {
	EstimateID    uint   `json:"estimate_id"`
	InvoiceID     uint   `json:"invoice_id"`
	InvoiceNumber string `json:"invoice_number"`
}

// EstimateService manages estimates and their conversion into invoices.
type EstimateService struct {
	store    *store.Store
	settings NumberSettings
	seq      Sequencer
	now      Clock

	// afterInvoiceInsert runs inside the conversion transaction between the
	// invoice insert and the estimate status update.
	afterInvoiceInsert func(ctx context.Context, tx *store.Store, inv *models.Invoice) error
}

func NewEstimateService(s *store.Store, settings NumberSettings) *EstimateService {
	return &EstimateService{store: s, settings: settings, now: time.Now}
}

func (s *EstimateService) repo(st *store.Store) store.Repo[models.Estimate] {
	return store.For[models.Estimate](st, "estimate")
}

func (s *EstimateService) List(ctx context.Context, f EstimateFilter) ([]EstimateView, error) {
	q := store.Query{
		Search:       f.Search,
		SearchFields: []string{"estimate_number", "description"},
		OrderBy:      "created_at",
		Desc:         true,
		Preload:      []string{"Customer", "Vehicle"},
	}
	where, args := filterWhere(map[string]any{"status": f.Status, "customer_id": f.CustomerID})
	q.Where, q.Args = where, args
	rows, err := s.repo(s.store).List(ctx, q)
	if err != nil {
		return nil, err
	}
	out := make([]EstimateView, len(rows))
	for i := range rows {
		out[i] = estimateView(rows[i])
	}
	return out, nil
}

func (s *EstimateService) Get(ctx context.Context, id uint) (*EstimateView, error) {
	e, err := s.repo(s.store).Find(ctx, id, "Items", "Customer", "Vehicle")
	if err != nil {
		return nil, err
	}
	v := estimateView(*e)
	return &v, nil
}

func (s *EstimateService) validate(ctx context.Context, in *EstimateInput, v validation.Violations) ([]models.Line, error) {
	validation.NonNegativeFloat("total_amount", in.TotalAmount, v)
	checkDate("date", in.Date, v)
	checkDate("valid_until", in.ValidUntil, v)
	if err := checkParties(ctx, s.store, in.CustomerID, in.VehicleID, v); err != nil {
		return nil, err
	}
	if in.Items == nil {
		return nil, nil
	}
	return prepareLines(ctx, s.store, in.Items, v)
}

func (s *EstimateService) Create(ctx context.Context, in EstimateInput) (*EstimateView, error) {
	v := make(validation.Violations)
	status := models.EstimateStatus(in.Status)
	if status == "" {
		status = models.EstimateStatusDraft
	}
	if status == models.EstimateStatusConverted {
		v["status"] = "invalid_choice"
	}
	validation.OneOf("status", string(status), models.EstimateStatuses, v)
	lines, err := s.validate(ctx, &in, v)
	if err != nil {
		return nil, err
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	now := s.now()
	date := normalizeDate(in.Date)
	if date == "" {
		date = models.Today(now)
	}
	validUntil := normalizeDate(in.ValidUntil)
	if validUntil == "" {
		d, _ := models.ParseDate(date)
		validUntil = d.AddDate(0, 0, s.settings.ValidityDays(ctx)).Format(models.DateLayout)
	}
	prefix := s.settings.NumberPrefix(ctx, document.KindEstimate)

	est := models.Estimate{
		CustomerID:     in.CustomerID,
		VehicleID:      in.VehicleID,
		EstimateNumber: in.EstimateNumber,
		Date:           date,
		ValidUntil:     validUntil,
		Status:         status,
		TotalAmount:    documentTotal(lines, in.TotalAmount),
		Description:    in.Description,
		Notes:          in.Notes,
		Items:          estimateItems(lines),
	}
	err = s.store.Transaction(ctx, func(tx *store.Store) error {
		if est.EstimateNumber == "" {
			d, _ := models.ParseDate(date)
			number, err := nextFree[models.Estimate](ctx, tx, s.seq, prefix, d.Year(), "estimate_number")
			if err != nil {
				return err
			}
			est.EstimateNumber = number
		}
		return s.repo(tx).Insert(ctx, &est)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, est.ID)
}

// Update replaces the estimate's fields. Items are replaced when given. A
// status change must be an allowed transition; converted estimates are frozen.
func (s *EstimateService) Update(ctx context.Context, id uint, in EstimateInput) (*EstimateView, error) {
	cur, err := s.repo(s.store).Find(ctx, id, "Items")
	if err != nil {
		return nil, err
	}
	status := models.EstimateStatus(in.Status)
	if status == "" {
		status = cur.Status
	}
	if cur.IsConverted() {
		return nil, invalidState("estimate", cur.Status, status)
	}
	v := make(validation.Violations)
	validation.OneOf("status", string(status), models.EstimateStatuses, v)
	lines, err := s.validate(ctx, &in, v)
	if err != nil {
		return nil, err
	}
	if err := v.Err(); err != nil {
		return nil, err
	}
	if status != cur.Status && !CanTransition(cur.Status, status) {
		return nil, invalidState("estimate", cur.Status, status)
	}

	next := *cur
	next.Items = nil
	next.CustomerID = in.CustomerID
	next.VehicleID = in.VehicleID
	if in.EstimateNumber != "" {
		next.EstimateNumber = in.EstimateNumber
	}
	if in.Date != "" {
		next.Date = normalizeDate(in.Date)
	}
	if in.ValidUntil != "" {
		next.ValidUntil = normalizeDate(in.ValidUntil)
	}
	next.Status = status
	next.Description = in.Description
	next.Notes = in.Notes
	if in.Items != nil {
		next.TotalAmount = documentTotal(lines, in.TotalAmount)
	} else {
		next.TotalAmount = documentTotal(cur.Lines(), in.TotalAmount)
	}

	err = s.store.Transaction(ctx, func(tx *store.Store) error {
		if err := s.repo(tx).Update(ctx, id, &next); err != nil {
			return err
		}
		if in.Items == nil {
			return nil
		}
		if err := tx.DB(ctx).Where("estimate_id = ?", id).Delete(&models.EstimateItem{}).Error; err != nil {
			return store.Translate("replace estimate items", "estimate item", err)
		}
		items := estimateItems(lines)
		for i := range items {
			items[i].EstimateID = id
			if err := store.For[models.EstimateItem](tx, "estimate item").Insert(ctx, &items[i]); err != nil {
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

// Transition moves an estimate to another status.
func (s *EstimateService) Transition(ctx context.Context, id uint, to string) (*EstimateView, error) {
	target := models.EstimateStatus(to)
	v := make(validation.Violations)
	validation.Required("status", to, v)
	validation.OneOf("status", to, models.EstimateStatuses, v)
	if err := v.Err(); err != nil {
		return nil, err
	}
	cur, err := s.repo(s.store).Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if cur.Status == target && !cur.IsConverted() {
		return s.Get(ctx, id)
	}
	if !CanTransition(cur.Status, target) {
		return nil, invalidState("estimate", cur.Status, target)
	}
	res := s.store.DB(ctx).Model(&models.Estimate{}).
		Where("id = ? AND status = ?", id, cur.Status).
		Update("status", target)
	if res.Error != nil {
		return nil, store.Translate("update estimate status", "estimate", res.Error, id)
	}
	if res.RowsAffected == 0 {
		return nil, invalidState("estimate", cur.Status, target)
	}
	return s.Get(ctx, id)
}

func (s *EstimateService) Delete(ctx context.Context, id uint) error {
	return s.store.Transaction(ctx, func(tx *store.Store) error {
		if err := tx.DB(ctx).Where("estimate_id = ?", id).Delete(&models.EstimateItem{}).Error; err != nil {
			return store.Translate("delete estimate items", "estimate item", err)
		}
		return s.repo(tx).Delete(ctx, id)
	})
}

// ConvertToInvoice creates a pending invoice from an accepted estimate, copies
// its items and marks the estimate converted, all in one transaction.
func (s *EstimateService) ConvertToInvoice(ctx context.Context, id uint) (*Conversion, error) {
	prefix := s.settings.NumberPrefix(ctx, document.KindInvoice)
	now := s.now()

	var result Conversion
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		est, err := s.repo(tx).Find(ctx, id, "Items")
		if err != nil {
			return err
		}
		if est.Status != models.EstimateStatusAccepted {
			return invalidState("estimate", est.Status, models.EstimateStatusConverted)
		}
		number, err := nextFree[models.Invoice](ctx, tx, s.seq, prefix, now.Year(), "invoice_number")
		if err != nil {
			return err
		}
		inv := models.Invoice{
			CustomerID:    est.CustomerID,
			VehicleID:     est.VehicleID,
			EstimateID:    &est.ID,
			InvoiceNumber: number,
			Date:          models.Today(now),
			Amount:        est.TotalAmount,
			Status:        models.InvoiceStatusPending,
			Description:   est.Description,
			Items:         invoiceItems(est.Lines()),
		}
		if err := store.For[models.Invoice](tx, "invoice").Insert(ctx, &inv); err != nil {
			return err
		}
		if s.afterInvoiceInsert != nil {
			if err := s.afterInvoiceInsert(ctx, tx, &inv); err != nil {
				return err
			}
		}
		res := tx.DB(ctx).Model(&models.Estimate{}).
			Where("id = ? AND status = ?", id, models.EstimateStatusAccepted).
			Update("status", models.EstimateStatusConverted)
		if res.Error != nil {
			return store.Translate("mark estimate converted", "estimate", res.Error, id)
		}
		if res.RowsAffected == 0 {
			return invalidState("estimate", est.Status, models.EstimateStatusConverted)
		}
		result = Conversion{EstimateID: est.ID, InvoiceID: inv.ID, InvoiceNumber: inv.InvoiceNumber}
		return nil
	})
	if err != nil {
		if !apperr.IsInvalidState(err) && !apperr.IsNotFound(err) {
			logging.FromContext(ctx).Error("estimate conversion rolled back", zap.Uint("estimate_id", id), zap.Error(err))
		}
		return nil, err
	}
	logging.FromContext(ctx).Info("estimate converted",
		zap.Uint("estimate_id", id),
		zap.Uint("invoice_id", result.InvoiceID),
		zap.String("invoice_number", result.InvoiceNumber))
	return &result, nil
}

func estimateView(e models.Estimate) EstimateView {
	v := EstimateView{Estimate: e}
	if e.Customer != nil {
		v.CustomerName = e.Customer.Name
	}
	if e.Vehicle != nil {
		v.VehicleInfo = e.Vehicle.Info()
	}
	return v
}

func estimateItems(lines []models.Line) []models.EstimateItem {
	items := make([]models.EstimateItem, len(lines))
	for i, l := range lines {
		items[i] = models.EstimateItem{Line: l}
	}
	return items
}

func invoiceItems(lines []models.Line) []models.InvoiceItem {
	items := make([]models.InvoiceItem, len(lines))
	for i, l := range lines {
		items[i] = models.InvoiceItem{Line: l}
	}
	return items
}

// filterWhere builds an AND clause from the non-zero values, in key order.
func filterWhere(filters map[string]any) (string, []any) {
	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var where string
	var args []any
	for _, k := range keys {
		switch val := filters[k].(type) {
		case string:
			if val == "" {
				continue
			}
		case uint:
			if val == 0 {
				continue
			}
		case nil:
			continue
		}
		if where != "" {
			where += " AND "
		}
		where += k + " = ?"
		args = append(args, filters[k])
	}
	return where, args
}
