package document

import (
	"testing"
)

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{"invoice": KindInvoice, " Estimate ": KindEstimate} {
		got, err := ParseKind(in)
		if err != nil || got != want {
			t.Errorf("ParseKind(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseKind("offer"); err == nil {
		t.Errorf("expected error for unknown kind")
	}
}

func TestDefaults(t *testing.T) {
	inv := Default(KindInvoice)
	if inv.Styling.ColorScheme != ColorBlue || inv.Header.ShowValidUntil || inv.Footer.CustomText != "" {
		t.Errorf("unexpected invoice default: %+v", inv)
	}
	est := Default(KindEstimate)
	if est.Styling.ColorScheme != ColorGreen || !est.Header.ShowValidUntil || !est.Footer.ShowValidityNote {
		t.Errorf("unexpected estimate default: %+v", est)
	}
	if est.Footer.CustomText != "Dieses Angebot ist freibleibend und unverbindlich." {
		t.Errorf("estimate custom text = %q", est.Footer.CustomText)
	}
}

func TestFromJSON_NeverFails(t *testing.T) {
	inputs := []string{
		``,
		`null`,
		`{}`,
		`[]`,
		`not json`,
		`{"header":null,"content":null,"footer":null,"styling":null}`,
		`{"header":"x","styling":42}`,
		`{"header":{"showLogo":"yes","layout":7}}`,
		`{"styling":{"colorScheme":"orange","fontSize":"huge","spacing":null}}`,
		`{"footer":{"customText":null},"extra":{"a":1}}`,
	}
	for _, kind := range []Kind{KindInvoice, KindEstimate} {
		def := Default(kind)
		for _, in := range inputs {
			got := FromJSON(kind, []byte(in))
			if got != def {
				t.Errorf("FromJSON(%s, %q) = %+v, want default", kind, in, got)
			}
		}
	}
}

func TestFromJSON_MergesFieldByField(t *testing.T) {
	raw := `{"header":{"showLogo":false},"content":{"showQuantity":false,"groupByCategory":true},` +
		`"footer":{"customText":"Danke!"},"styling":{"colorScheme":"purple","fontSize":"large"}}`
	got := FromJSON(KindInvoice, []byte(raw))

	if got.Header.ShowLogo {
		t.Errorf("showLogo should be overridden")
	}
	if !got.Header.ShowCompanyInfo {
		t.Errorf("showCompanyInfo should keep default")
	}
	if got.Content.ShowQuantity || !got.Content.GroupByCategory || !got.Content.ShowUnitPrice {
		t.Errorf("content merge wrong: %+v", got.Content)
	}
	if got.Footer.CustomText != "Danke!" || !got.Footer.ShowTerms {
		t.Errorf("footer merge wrong: %+v", got.Footer)
	}
	if got.Styling != (Styling{ColorScheme: ColorPurple, FontSize: SizeLarge, Spacing: SpacingNormal}) {
		t.Errorf("styling merge wrong: %+v", got.Styling)
	}
}

func TestFromJSON_UnknownSchemeFallsBackToKindDefault(t *testing.T) {
	raw := []byte(`{"styling":{"colorScheme":"orange"}}`)
	if got := FromJSON(KindEstimate, raw).Styling.ColorScheme; got != ColorGreen {
		t.Errorf("estimate scheme = %q, want green", got)
	}
	if got := FromJSON(KindInvoice, raw).Styling.ColorScheme; got != ColorBlue {
		t.Errorf("invoice scheme = %q, want blue", got)
	}
}

func TestJSONRoundTripKeepsFalseFlags(t *testing.T) {
	tpl := Default(KindEstimate)
	tpl.Header.ShowValidUntil = false
	tpl.Content.ShowParts = false
	raw, err := tpl.JSON()
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}
	if got := FromJSON(KindEstimate, []byte(raw)); got != tpl {
		t.Errorf("round trip = %+v, want %+v", got, tpl)
	}
}

func TestStyleLookups(t *testing.T) {
	tpl := Default(KindInvoice)
	tpl.Styling = Styling{ColorScheme: ColorRed, FontSize: SizeSmall, Spacing: SpacingSpacious}
	if p := tpl.Palette(KindInvoice); p.Primary != "#EF4444" || p.Secondary != "#DC2626" || p.Accent != "#FEF2F2" {
		t.Errorf("red palette = %+v", p)
	}
	if tpl.FontSizePx() != 12 || tpl.SpacingPx() != 40 {
		t.Errorf("sizes = %d/%d", tpl.FontSizePx(), tpl.SpacingPx())
	}

	tpl.Styling = Styling{ColorScheme: "?", FontSize: "?", Spacing: "?"}
	if p := tpl.Palette(KindEstimate); p.Primary != "#10B981" {
		t.Errorf("fallback palette = %+v", p)
	}
	if tpl.FontSizePx() != 14 || tpl.SpacingPx() != 30 {
		t.Errorf("fallback sizes = %d/%d", tpl.FontSizePx(), tpl.SpacingPx())
	}
}

func TestLabelsFor(t *testing.T) {
	inv, est := LabelsFor(KindInvoice), LabelsFor(KindEstimate)
	if inv.Title != "Rechnung" || inv.AddressHeading != "Rechnungsadresse" || inv.TotalLabel != "Gesamtbetrag" {
		t.Errorf("invoice labels = %+v", inv)
	}
	if est.Title != "Kostenvoranschlag" || est.AddressHeading != "Kundenadresse" || est.TotalLabel != "Geschätzter Gesamtbetrag" {
		t.Errorf("estimate labels = %+v", est)
	}
}
