package settings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/diewo77/kfz-werkstatt/internal/apperr"
	"github.com/diewo77/kfz-werkstatt/internal/db/dbtest"
	"github.com/diewo77/kfz-werkstatt/internal/document"
	"github.com/diewo77/kfz-werkstatt/internal/store"
)

func newRegistry(t *testing.T) (*Registry, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	return New(store.New(dbtest.New(t)), zap.New(core)), logs
}

func seeded(t *testing.T) (*Registry, *observer.ObservedLogs) {
	t.Helper()
	r, logs := newRegistry(t)
	_, err := r.SeedDefaults(context.Background())
	require.NoError(t, err)
	return r, logs
}

func TestGetAll_EmptyStore(t *testing.T) {
	r, _ := newRegistry(t)
	all, err := r.GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)

	cat, err := r.GetCategory(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, cat)
}

func TestSeedDefaults_Idempotent(t *testing.T) {
	ctx := context.Background()
	r, _ := newRegistry(t)

	n, err := r.SeedDefaults(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, len(Defaults()), n)

	require.NoError(t, r.SetOne(ctx, CategoryCompany, "name", "Werkstatt Schmidt"))
	first, err := r.GetAll(ctx)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		n, err = r.SeedDefaults(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	}
	again, err := r.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, again)
	assert.Equal(t, "Werkstatt Schmidt", again[CategoryCompany]["name"].Value)
}

func TestGetAll_GroupsByCategory(t *testing.T) {
	r, _ := seeded(t)
	all, err := r.GetAll(context.Background())
	require.NoError(t, err)
	for _, cat := range []string{CategoryCompany, CategoryInvoice, CategoryEstimate, CategoryTemplates, CategoryPrint, CategorySystem} {
		assert.NotEmpty(t, all[cat], cat)
	}
	vat := all[CategoryInvoice]["vat_rate"]
	assert.Equal(t, Entry{Value: "19", Type: "number", Description: "Mehrwertsteuersatz in %"}, vat)
}

func TestSetOne(t *testing.T) {
	ctx := context.Background()
	r, _ := seeded(t)

	require.NoError(t, r.SetOne(ctx, CategoryInvoice, "payment_terms", "30 Tage netto"))
	e, err := r.Get(ctx, CategoryInvoice, "payment_terms")
	require.NoError(t, err)
	assert.Equal(t, "30 Tage netto", e.Value)

	err = r.SetOne(ctx, CategoryInvoice, "does_not_exist", "x")
	assert.True(t, apperr.HasCode(err, apperr.CodeConfiguration), "got %v", err)
	_, err = r.Get(ctx, CategoryInvoice, "does_not_exist")
	assert.True(t, apperr.HasCode(err, apperr.CodeConfiguration))

	all, err := r.GetCategory(ctx, CategoryInvoice)
	require.NoError(t, err)
	_, created := all["does_not_exist"]
	assert.False(t, created, "unknown keys must not be created")
}

func TestSetOne_TypeChecks(t *testing.T) {
	ctx := context.Background()
	r, _ := seeded(t)

	tests := []struct {
		category, key, value string
		ok                   bool
	}{
		{CategoryInvoice, "vat_rate", "7", true},
		{CategoryInvoice, "vat_rate", "sieben", false},
		{CategoryEstimate, "auto_convert", "TRUE", true},
		{CategoryEstimate, "auto_convert", "ja", false},
		{CategoryCompany, "email", "kontakt@werkstatt.de", true},
		{CategoryCompany, "email", "kein-at-zeichen", false},
		{CategoryCompany, "website", "https://werkstatt.de", true},
		{CategoryCompany, "website", "www.werkstatt.de", true},
		{CategoryCompany, "website", "nicht eine url", false},
		{CategoryTemplates, "invoice_template", `{"styling":{"colorScheme":"red"}}`, true},
		{CategoryTemplates, "invoice_template", `{broken`, false},
		{CategoryCompany, "name", "", true},
	}
	for _, tt := range tests {
		err := r.SetOne(ctx, tt.category, tt.key, tt.value)
		if tt.ok {
			assert.NoError(t, err, "%s.%s=%q", tt.category, tt.key, tt.value)
		} else {
			assert.True(t, apperr.IsValidation(err), "%s.%s=%q: got %v", tt.category, tt.key, tt.value, err)
		}
	}

	e, err := r.Get(ctx, CategoryEstimate, "auto_convert")
	require.NoError(t, err)
	assert.Equal(t, "true", e.Value)
}

func TestSetMany_AllOrNothing(t *testing.T) {
	ctx := context.Background()
	r, logs := seeded(t)

	n, err := r.SetMany(ctx, CategoryCompany, map[string]string{"name": "Neu GmbH", "phone": "0800 123"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = r.SetMany(ctx, CategoryCompany, map[string]string{
		"name":    "Sollte nicht landen",
		"unknown": "x",
		"email":   "kaputt",
	})
	var batch *apperr.BatchUpdateError
	require.ErrorAs(t, err, &batch)
	assert.Equal(t, []string{"email", "unknown"}, batch.FailedKeys())

	e, err := r.Get(ctx, CategoryCompany, "name")
	require.NoError(t, err)
	assert.Equal(t, "Neu GmbH", e.Value, "rollback must undo the successful keys")
	assert.Equal(t, 1, logs.FilterMessage("settings batch update rolled back").Len())
}

func TestGetTemplate_FallsBackToDefault(t *testing.T) {
	ctx := context.Background()
	r, logs := newRegistry(t)

	assert.Equal(t, document.Default(document.KindEstimate), r.GetTemplate(ctx, document.KindEstimate))
	assert.Equal(t, 1, logs.FilterMessage("using default document template").Len())

	_, err := r.SeedDefaults(ctx)
	require.NoError(t, err)
	inv := r.GetTemplate(ctx, document.KindInvoice)
	assert.Equal(t, "Vielen Dank für Ihr Vertrauen!", inv.Footer.CustomText)
	assert.Equal(t, document.ColorBlue, inv.Styling.ColorScheme)

	require.NoError(t, r.store.DB(ctx).
		Exec(`UPDATE settings SET value = ? WHERE category = ? AND "key" = ?`, "{kaputt", CategoryTemplates, "estimate_template").Error)
	assert.Equal(t, document.Default(document.KindEstimate), r.GetTemplate(ctx, document.KindEstimate))
	assert.Equal(t, 1, logs.FilterMessage("stored document template is not valid JSON, using default").Len())
}

func TestSetTemplate_Normalises(t *testing.T) {
	ctx := context.Background()
	r, _ := seeded(t)

	tpl := document.Default(document.KindInvoice)
	tpl.Styling.ColorScheme = "orange"
	tpl.Content.ShowQuantity = false
	saved, err := r.SetTemplate(ctx, document.KindInvoice, tpl)
	require.NoError(t, err)
	assert.Equal(t, document.ColorBlue, saved.Styling.ColorScheme)
	assert.Equal(t, saved, r.GetTemplate(ctx, document.KindInvoice))
}

func TestVATRate(t *testing.T) {
	ctx := context.Background()
	r, _ := newRegistry(t)
	assert.Equal(t, "19", r.VATRate(ctx).String(), "absent setting")

	_, err := r.SeedDefaults(ctx)
	require.NoError(t, err)
	require.NoError(t, r.SetOne(ctx, CategoryInvoice, "vat_rate", "7"))
	assert.Equal(t, "7", r.VATRate(ctx).String())
}

func TestCompanyAndDocumentSettings(t *testing.T) {
	ctx := context.Background()
	r, _ := seeded(t)

	c, err := r.Company(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Mustermann KFZ-Werkstatt", c.Name)
	assert.Equal(t, "DEUTDEFF", c.BIC)
	assert.Equal(t, "Deutsche Bank", c.BankName)

	ds := r.DocumentSettings(ctx)
	assert.Equal(t, "14 Tage netto", ds.PaymentTerms)
	assert.Equal(t, "EUR", ds.Currency)
	assert.Equal(t, 30, ds.ValidityDays)
	assert.Equal(t, "19", ds.VATRate.String())

	assert.Equal(t, "RE", r.NumberPrefix(ctx, document.KindInvoice))
	assert.Equal(t, "KV", r.NumberPrefix(ctx, document.KindEstimate))
}
