// Package render turns a hydrated invoice or estimate into a styled document.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/shopspring/decimal"

	"github.com/diewo77/kfz-werkstatt/internal/document"
	"github.com/diewo77/kfz-werkstatt/internal/models"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

// ContentTypeHTML is the content type of HTMLRenderer output.
const ContentTypeHTML = "text/html; charset=utf-8"

// Company holds the company settings printed on documents.
type Company struct {
	Name      string
	Street    string
	City      string
	Phone     string
	Email     string
	Website   string
	TaxNumber string
	VATID     string
	IBAN      string
	BIC       string
	BankName  string
	LogoURL   string
}

// Settings are the document-related values of the invoice and estimate categories.
type Settings struct {
	PaymentTerms string
	VATRate      decimal.Decimal
	Currency     string
	ValidityDays int
}

// Item is one position as printed, joined with its catalog entry.
type Item struct {
	Name        string
	Description string
	Category    string
	ItemType    string
	Quantity    float64
	UnitPrice   float64
	TotalPrice  float64
}

// Input is everything a document shows.
type Input struct {
	Kind        document.Kind
	Number      string
	Date        string
	ValidUntil  string
	CustomerID  uint
	Customer    *models.Customer
	Vehicle     *models.Vehicle
	Description string
	Items       []Item
	Company     Company
	Settings    Settings
	Template    document.Template
}

// Totals are the computed sums of a document.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
	Labor    decimal.Decimal `json:"labor"`
	Parts    decimal.Decimal `json:"parts"`
}

// Document is a rendered document.
type Document struct {
	ContentType string
	Body        []byte
	Totals      Totals
}

// Renderer produces a document from an input.
type Renderer interface {
	Render(in Input) (Document, error)
}

// ComputeTotals sums the stored item totals and applies the VAT rate (in
// percent). Tax is rounded half away from zero to cents.
func ComputeTotals(items []Item, vatRate decimal.Decimal) Totals {
	var t Totals
	for _, it := range items {
		amount := decimal.NewFromFloat(it.TotalPrice)
		t.Subtotal = t.Subtotal.Add(amount)
		switch it.ItemType {
		case models.ItemTypeService:
			t.Labor = t.Labor.Add(amount)
		case models.ItemTypeProduct:
			t.Parts = t.Parts.Add(amount)
		}
	}
	t.Subtotal = t.Subtotal.Round(2)
	t.Tax = t.Subtotal.Mul(vatRate).Div(decimal.NewFromInt(100)).Round(2)
	t.Total = t.Subtotal.Add(t.Tax)
	return t
}

// HTMLRenderer renders with html/template.
type HTMLRenderer struct {
	tmpl *template.Template
}

func NewHTMLRenderer() (*HTMLRenderer, error) {
	tmpl, err := template.New("document.html.tmpl").Funcs(funcs).ParseFS(templateFS, "templates/*.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse document template: %w", err)
	}
	return &HTMLRenderer{tmpl: tmpl}, nil
}

type row struct {
	Pos int
	Item
}

type group struct {
	Category string
	Rows     []row
}

type page struct {
	Input
	Labels     document.Labels
	Palette    document.Palette
	FontPx     int
	SpacingPx  int
	Currency   string
	VATPercent string
	Columns    int
	Groups     []group
	Totals     Totals
	IsEstimate bool
}

func (r *HTMLRenderer) Render(in Input) (Document, error) {
	if in.Kind == "" {
		in.Kind = document.KindInvoice
	}
	vat := in.Settings.VATRate
	currency := in.Settings.Currency
	if currency == "" {
		currency = "EUR"
	}
	tpl := in.Template.Normalize(in.Kind)
	in.Template = tpl

	p := page{
		Input:      in,
		Labels:     document.LabelsFor(in.Kind),
		Palette:    tpl.Palette(in.Kind),
		FontPx:     tpl.FontSizePx(),
		SpacingPx:  tpl.SpacingPx(),
		Currency:   currency,
		VATPercent: vat.String(),
		Columns:    columns(tpl.Content),
		Groups:     groupItems(in.Items, tpl.Content.GroupByCategory),
		Totals:     ComputeTotals(in.Items, vat),
		IsEstimate: in.Kind == document.KindEstimate,
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, p); err != nil {
		return Document{}, fmt.Errorf("render %s %s: %w", in.Kind, in.Number, err)
	}
	return Document{ContentType: ContentTypeHTML, Body: buf.Bytes(), Totals: p.Totals}, nil
}

// groupItems numbers the items and, when grouping, collects them under their
// category in first-seen order.
func groupItems(items []Item, byCategory bool) []group {
	if !byCategory {
		g := group{Rows: make([]row, len(items))}
		for i, it := range items {
			g.Rows[i] = row{Pos: i + 1, Item: it}
		}
		return []group{g}
	}
	var groups []group
	index := map[string]int{}
	for _, it := range items {
		cat := it.Category
		if cat == "" {
			cat = "Sonstiges"
		}
		i, ok := index[cat]
		if !ok {
			i = len(groups)
			index[cat] = i
			groups = append(groups, group{Category: cat})
		}
		groups[i].Rows = append(groups[i].Rows, row{Item: it})
	}
	pos := 1
	for gi := range groups {
		for ri := range groups[gi].Rows {
			groups[gi].Rows[ri].Pos = pos
			pos++
		}
	}
	return groups
}

func columns(c document.Content) int {
	n := 1
	for _, on := range []bool{c.ShowItemNumbers, c.ShowQuantity, c.ShowUnitPrice, c.ShowTotalPrice} {
		if on {
			n++
		}
	}
	return n
}
