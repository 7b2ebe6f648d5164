// Package settings stores the typed configuration values grouped by category.
package settings

import (
	"context"
	"encoding/json"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/diewo77/kfz-werkstatt/internal/apperr"
	"github.com/diewo77/kfz-werkstatt/internal/document"
	"github.com/diewo77/kfz-werkstatt/internal/models"
	"github.com/diewo77/kfz-werkstatt/internal/render"
	"github.com/diewo77/kfz-werkstatt/internal/store"
	"github.com/diewo77/kfz-werkstatt/validation"
)

const whereCategoryKey = `category = ? AND "key" = ?`

var defaultVATRate = decimal.NewFromInt(19)

// Entry is the public view of one setting.
type Entry struct {
	Value       string `json:"value"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Registry reads and writes settings through the store.
type Registry struct {
	store *store.Store
	log   *zap.Logger
}

func New(s *store.Store, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{store: s, log: log}
}

func (r *Registry) repo(s *store.Store) store.Repo[models.Setting] {
	return store.For[models.Setting](s, "setting")
}

// GetAll returns every setting grouped by category.
func (r *Registry) GetAll(ctx context.Context) (map[string]map[string]Entry, error) {
	rows, err := r.repo(r.store).List(ctx, store.Query{OrderBy: "category"})
	if err != nil {
		return nil, err
	}
	out := make(map[string]map[string]Entry)
	for _, s := range rows {
		if out[s.Category] == nil {
			out[s.Category] = make(map[string]Entry)
		}
		out[s.Category][s.Key] = entry(s)
	}
	return out, nil
}

// GetCategory returns the settings of one category. Unknown categories yield
// an empty map.
func (r *Registry) GetCategory(ctx context.Context, category string) (map[string]Entry, error) {
	rows, err := r.repo(r.store).List(ctx, store.Query{Where: "category = ?", Args: []any{category}})
	if err != nil {
		return nil, err
	}
	out := make(map[string]Entry, len(rows))
	for _, s := range rows {
		out[s.Key] = entry(s)
	}
	return out, nil
}

// Get returns a single setting or a ConfigurationError.
func (r *Registry) Get(ctx context.Context, category, key string) (Entry, error) {
	s, err := r.find(ctx, r.store, category, key)
	if err != nil {
		return Entry{}, err
	}
	return entry(*s), nil
}

// SetOne updates an existing setting. Unknown pairs are never created.
func (r *Registry) SetOne(ctx context.Context, category, key, value string) error {
	return r.set(ctx, r.store, category, key, value)
}

// SetMany updates several settings of a category in one transaction. If any
// key fails, nothing is written and a BatchUpdateError lists the failed keys.
func (r *Registry) SetMany(ctx context.Context, category string, values map[string]string) (int, error) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	updated := 0
	err := r.store.Transaction(ctx, func(tx *store.Store) error {
		failed := make(map[string]string)
		for _, k := range keys {
			err := r.set(ctx, tx, category, k, values[k])
			if err == nil {
				updated++
				continue
			}
			ae, ok := apperr.As(err)
			if !ok || ae.Code() == apperr.CodeInfrastructure {
				return err
			}
			failed[k] = ae.Code()
		}
		if len(failed) > 0 {
			return apperr.NewBatchUpdateError(category, failed)
		}
		return nil
	})
	if err != nil {
		r.log.Warn("settings batch update rolled back", zap.String("category", category), zap.Error(err))
		return 0, err
	}
	return updated, nil
}

func (r *Registry) find(ctx context.Context, s *store.Store, category, key string) (*models.Setting, error) {
	row, err := r.repo(s).FindBy(ctx, whereCategoryKey, category, key)
	if apperr.IsNotFound(err) {
		return nil, apperr.NewConfigurationError(category, key)
	}
	return row, err
}

func (r *Registry) set(ctx context.Context, s *store.Store, category, key, value string) error {
	row, err := r.find(ctx, s, category, key)
	if err != nil {
		return err
	}
	normalized, ok := checkValue(row.Type, value)
	if !ok {
		return apperr.NewFieldError(key, "invalid_"+row.Type)
	}
	return r.repo(s).Patch(ctx, row.ID, map[string]any{"value": normalized})
}

// checkValue validates value against the declared type and returns the form
// that is stored.
func checkValue(typ, value string) (string, bool) {
	v := strings.TrimSpace(value)
	switch typ {
	case models.SettingTypeNumber:
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return value, false
		}
		return v, true
	case models.SettingTypeBoolean:
		switch strings.ToLower(v) {
		case "true", "false":
			return strings.ToLower(v), true
		}
		return value, false
	case models.SettingTypeEmail:
		vs := make(validation.Violations)
		validation.Email("value", v, vs)
		return v, vs.Empty()
	case models.SettingTypeURL:
		return v, validURL(v)
	case models.SettingTypeJSON:
		return value, json.Valid([]byte(value))
	}
	return value, true
}

// validURL accepts absolute URLs and bare host names such as "www.example.de".
func validURL(v string) bool {
	if v == "" {
		return true
	}
	if strings.ContainsAny(v, " \t\n") {
		return false
	}
	if !strings.Contains(v, "://") {
		v = "http://" + v
	}
	u, err := url.Parse(v)
	return err == nil && u.Host != ""
}

// GetTemplate returns the stored template of kind merged over its default.
// It never fails: missing rows, store errors and broken JSON yield the default.
func (r *Registry) GetTemplate(ctx context.Context, kind document.Kind) document.Template {
	row, err := r.find(ctx, r.store, CategoryTemplates, kind.SettingKey())
	if err != nil {
		r.log.Warn("using default document template", zap.String("kind", string(kind)), zap.Error(err))
		return document.Default(kind)
	}
	if !json.Valid([]byte(row.Value)) {
		r.log.Warn("stored document template is not valid JSON, using default", zap.String("kind", string(kind)))
	}
	return document.FromJSON(kind, []byte(row.Value))
}

// SetTemplate normalises and stores the template of kind.
func (r *Registry) SetTemplate(ctx context.Context, kind document.Kind, tpl document.Template) (document.Template, error) {
	tpl = tpl.Normalize(kind)
	raw, err := tpl.JSON()
	if err != nil {
		return tpl, apperr.NewInfrastructureError("encode template", err)
	}
	return tpl, r.SetOne(ctx, CategoryTemplates, kind.SettingKey(), raw)
}

// SeedDefaults inserts every predefined setting that does not exist yet. Values
// already present are never overwritten. It returns the number of inserted rows.
func (r *Registry) SeedDefaults(ctx context.Context) (int64, error) {
	n, err := r.repo(r.store).InsertMissing(ctx, Defaults(), "category", "key")
	if err != nil {
		return 0, err
	}
	if n > 0 {
		r.log.Info("seeded default settings", zap.Int64("inserted", n))
	}
	return n, nil
}

// value returns the stored value or fallback when the setting is missing.
func (r *Registry) value(ctx context.Context, category, key, fallback string) string {
	e, err := r.Get(ctx, category, key)
	if err != nil {
		if !apperr.HasCode(err, apperr.CodeConfiguration) {
			r.log.Warn("reading setting failed", zap.String("category", category), zap.String("key", key), zap.Error(err))
		}
		return fallback
	}
	return e.Value
}

// VATRate returns invoice.vat_rate in percent, 19 when absent or invalid.
func (r *Registry) VATRate(ctx context.Context) decimal.Decimal {
	raw := r.value(ctx, CategoryInvoice, "vat_rate", "")
	rate, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || rate.IsNegative() {
		return defaultVATRate
	}
	return rate
}

// NumberPrefix returns the configured document number prefix of kind.
func (r *Registry) NumberPrefix(ctx context.Context, kind document.Kind) string {
	if kind == document.KindEstimate {
		return r.value(ctx, CategoryEstimate, "number_prefix", "KV")
	}
	return r.value(ctx, CategoryInvoice, "number_prefix", "RE")
}

// ValidityDays returns estimate.validity_days, 30 when absent or invalid.
func (r *Registry) ValidityDays(ctx context.Context) int {
	days, err := strconv.Atoi(strings.TrimSpace(r.value(ctx, CategoryEstimate, "validity_days", "30")))
	if err != nil || days < 0 {
		return 30
	}
	return days
}

// Company returns the company category as printed on documents.
func (r *Registry) Company(ctx context.Context) (render.Company, error) {
	c, err := r.GetCategory(ctx, CategoryCompany)
	if err != nil {
		return render.Company{}, err
	}
	return render.Company{
		Name:      c["name"].Value,
		Street:    c["address_street"].Value,
		City:      c["address_city"].Value,
		Phone:     c["phone"].Value,
		Email:     c["email"].Value,
		Website:   c["website"].Value,
		TaxNumber: c["tax_number"].Value,
		VATID:     c["vat_id"].Value,
		IBAN:      c["iban"].Value,
		BIC:       c["bic"].Value,
		BankName:  c["bank_name"].Value,
		LogoURL:   c["logo_url"].Value,
	}, nil
}

// DocumentSettings returns the values the renderer needs besides the company.
func (r *Registry) DocumentSettings(ctx context.Context) render.Settings {
	return render.Settings{
		PaymentTerms: r.value(ctx, CategoryInvoice, "payment_terms", "14 Tage netto"),
		VATRate:      r.VATRate(ctx),
		Currency:     r.value(ctx, CategoryInvoice, "default_currency", "EUR"),
		ValidityDays: r.ValidityDays(ctx),
	}
}

func entry(s models.Setting) Entry {
	return Entry{Value: s.Value, Type: s.Type, Description: s.Description}
}
