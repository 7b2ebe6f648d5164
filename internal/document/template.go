// Package document describes what a generated invoice or estimate shows and
// how it is styled.
package document

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Kind selects the document type.
type Kind string

const (
	KindInvoice  Kind = "invoice"
	KindEstimate Kind = "estimate"
)

// ParseKind accepts "invoice" or "estimate" in any case.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindInvoice:
		return KindInvoice, nil
	case KindEstimate:
		return KindEstimate, nil
	}
	return "", fmt.Errorf("unknown document kind %q", s)
}

// SettingKey is the key of the kind's template in the templates category.
func (k Kind) SettingKey() string {
	return string(k) + "_template"
}

// Enumerations of the styling block.
const (
	ColorBlue   = "blue"
	ColorGreen  = "green"
	ColorRed    = "red"
	ColorPurple = "purple"

	SizeSmall  = "small"
	SizeNormal = "normal"
	SizeLarge  = "large"

	SpacingCompact  = "compact"
	SpacingNormal   = "normal"
	SpacingSpacious = "spacious"

	LayoutStandard = "standard"
	LayoutMinimal  = "minimal"
	LayoutDetailed = "detailed"
)

// Header controls the top of the document.
type Header struct {
	ShowLogo         bool   `json:"showLogo"`
	ShowCompanyInfo  bool   `json:"showCompanyInfo"`
	ShowCustomerInfo bool   `json:"showCustomerInfo"`
	ShowValidUntil   bool   `json:"showValidUntil"`
	Layout           string `json:"layout"`
}

// Content controls the item table.
type Content struct {
	ShowItemNumbers  bool `json:"showItemNumbers"`
	ShowDescriptions bool `json:"showDescriptions"`
	ShowQuantity     bool `json:"showQuantity"`
	ShowUnitPrice    bool `json:"showUnitPrice"`
	ShowTotalPrice   bool `json:"showTotalPrice"`
	ShowLabor        bool `json:"showLabor"`
	ShowParts        bool `json:"showParts"`
	GroupByCategory  bool `json:"groupByCategory"`
}

// Footer controls the closing blocks.
type Footer struct {
	ShowTerms        bool   `json:"showTerms"`
	ShowPaymentInfo  bool   `json:"showPaymentInfo"`
	ShowTaxInfo      bool   `json:"showTaxInfo"`
	ShowValidityNote bool   `json:"showValidityNote"`
	CustomText       string `json:"customText"`
}

// Styling selects colours and sizes by name.
type Styling struct {
	ColorScheme string `json:"colorScheme"`
	FontSize    string `json:"fontSize"`
	Spacing     string `json:"spacing"`
}

// Template is the layout descriptor stored as JSON in the settings. The JSON
// field names are part of the persisted format.
type Template struct {
	Header  Header  `json:"header"`
	Content Content `json:"content"`
	Footer  Footer  `json:"footer"`
	Styling Styling `json:"styling"`
}

// Default returns the built-in template of kind.
func Default(kind Kind) Template {
	if kind == KindEstimate {
		return Template{
			Header: Header{
				ShowLogo:         true,
				ShowCompanyInfo:  true,
				ShowCustomerInfo: true,
				ShowValidUntil:   true,
				Layout:           LayoutStandard,
			},
			Content: Content{
				ShowItemNumbers:  true,
				ShowDescriptions: true,
				ShowQuantity:     true,
				ShowUnitPrice:    true,
				ShowTotalPrice:   true,
				ShowLabor:        true,
				ShowParts:        true,
				GroupByCategory:  true,
			},
			Footer: Footer{
				ShowTerms:        true,
				ShowValidityNote: true,
				CustomText:       "Dieses Angebot ist freibleibend und unverbindlich.",
			},
			Styling: Styling{ColorScheme: ColorGreen, FontSize: SizeNormal, Spacing: SpacingNormal},
		}
	}
	return Template{
		Header: Header{
			ShowLogo:         true,
			ShowCompanyInfo:  true,
			ShowCustomerInfo: true,
			Layout:           LayoutStandard,
		},
		Content: Content{
			ShowItemNumbers:  true,
			ShowDescriptions: true,
			ShowQuantity:     true,
			ShowUnitPrice:    true,
			ShowTotalPrice:   true,
		},
		Footer: Footer{
			ShowTerms:       true,
			ShowPaymentInfo: true,
			ShowTaxInfo:     true,
		},
		Styling: Styling{ColorScheme: ColorBlue, FontSize: SizeNormal, Spacing: SpacingNormal},
	}
}

// FromJSON merges raw over the default of kind field by field. Missing,
// unknown or wrongly typed fields keep their default; it never fails.
func FromJSON(kind Kind, raw []byte) Template {
	t := Default(kind)
	var sections map[string]json.RawMessage
	if err := json.Unmarshal(raw, &sections); err != nil {
		return t
	}

	if h := fields(sections["header"]); h != nil {
		mergeBool(h, "showLogo", &t.Header.ShowLogo)
		mergeBool(h, "showCompanyInfo", &t.Header.ShowCompanyInfo)
		mergeBool(h, "showCustomerInfo", &t.Header.ShowCustomerInfo)
		mergeBool(h, "showValidUntil", &t.Header.ShowValidUntil)
		mergeString(h, "layout", &t.Header.Layout)
	}
	if c := fields(sections["content"]); c != nil {
		mergeBool(c, "showItemNumbers", &t.Content.ShowItemNumbers)
		mergeBool(c, "showDescriptions", &t.Content.ShowDescriptions)
		mergeBool(c, "showQuantity", &t.Content.ShowQuantity)
		mergeBool(c, "showUnitPrice", &t.Content.ShowUnitPrice)
		mergeBool(c, "showTotalPrice", &t.Content.ShowTotalPrice)
		mergeBool(c, "showLabor", &t.Content.ShowLabor)
		mergeBool(c, "showParts", &t.Content.ShowParts)
		mergeBool(c, "groupByCategory", &t.Content.GroupByCategory)
	}
	if f := fields(sections["footer"]); f != nil {
		mergeBool(f, "showTerms", &t.Footer.ShowTerms)
		mergeBool(f, "showPaymentInfo", &t.Footer.ShowPaymentInfo)
		mergeBool(f, "showTaxInfo", &t.Footer.ShowTaxInfo)
		mergeBool(f, "showValidityNote", &t.Footer.ShowValidityNote)
		mergeString(f, "customText", &t.Footer.CustomText)
	}
	if s := fields(sections["styling"]); s != nil {
		mergeString(s, "colorScheme", &t.Styling.ColorScheme)
		mergeString(s, "fontSize", &t.Styling.FontSize)
		mergeString(s, "spacing", &t.Styling.Spacing)
	}
	return t.Normalize(kind)
}

// Normalize replaces unknown enum values with the defaults of kind.
func (t Template) Normalize(kind Kind) Template {
	if _, ok := palettes[t.Styling.ColorScheme]; !ok {
		t.Styling.ColorScheme = Default(kind).Styling.ColorScheme
	}
	if _, ok := fontSizes[t.Styling.FontSize]; !ok {
		t.Styling.FontSize = SizeNormal
	}
	if _, ok := spacings[t.Styling.Spacing]; !ok {
		t.Styling.Spacing = SpacingNormal
	}
	switch t.Header.Layout {
	case LayoutStandard, LayoutMinimal, LayoutDetailed:
	default:
		t.Header.Layout = LayoutStandard
	}
	return t
}

// JSON returns the persisted form.
func (t Template) JSON() (string, error) {
	b, err := json.Marshal(t)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func fields(raw json.RawMessage) map[string]json.RawMessage {
	if len(raw) == 0 {
		return nil
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return m
}

func mergeBool(m map[string]json.RawMessage, key string, dst *bool) {
	raw, ok := m[key]
	if !ok {
		return
	}
	var v *bool
	if err := json.Unmarshal(raw, &v); err == nil && v != nil {
		*dst = *v
	}
}

func mergeString(m map[string]json.RawMessage, key string, dst *string) {
	raw, ok := m[key]
	if !ok {
		return
	}
	var v *string
	if err := json.Unmarshal(raw, &v); err == nil && v != nil {
		*dst = *v
	}
}
