package render

import (
	"html/template"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/diewo77/kfz-werkstatt/internal/models"
)

var funcs = template.FuncMap{
	"formatMoney":    formatMoney,
	"formatDate":     formatDate,
	"formatQuantity": formatQuantity,
}

// formatMoney renders an amount the German way, e.g. "1.234,56 €".
func formatMoney(v any, currency string) string {
	var d decimal.Decimal
	switch x := v.(type) {
	case decimal.Decimal:
		d = x
	case float64:
		d = decimal.NewFromFloat(x)
	case int:
		d = decimal.NewFromInt(int64(x))
	}
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	b.WriteByte(',')
	b.WriteString(frac)
	b.WriteByte(' ')
	b.WriteString(currencySymbol(currency))
	return b.String()
}

func currencySymbol(code string) string {
	switch strings.ToUpper(code) {
	case "", "EUR":
		return "€"
	case "USD":
		return "$"
	case "GBP":
		return "£"
	case "CHF":
		return "CHF"
	}
	return strings.ToUpper(code)
}

// formatDate turns a stored date into DD.MM.YYYY. Unparsable input is returned as is.
func formatDate(s string) string {
	t, ok := models.ParseDate(s)
	if !ok {
		return s
	}
	return t.Format("02.01.2006")
}

// formatQuantity prints whole numbers without decimals and fractions with a
// decimal comma.
func formatQuantity(q float64) string {
	s := decimal.NewFromFloat(q).Round(3).String()
	return strings.Replace(s, ".", ",", 1)
}
