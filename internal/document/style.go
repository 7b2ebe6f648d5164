package document

// Palette is the colour triple of a colour scheme.
type Palette struct {
	Primary   string
	Secondary string
	Accent    string
}

var palettes = map[string]Palette{
	ColorBlue:   {Primary: "#3B82F6", Secondary: "#1E40AF", Accent: "#EFF6FF"},
	ColorGreen:  {Primary: "#10B981", Secondary: "#047857", Accent: "#ECFDF5"},
	ColorRed:    {Primary: "#EF4444", Secondary: "#DC2626", Accent: "#FEF2F2"},
	ColorPurple: {Primary: "#8B5CF6", Secondary: "#7C3AED", Accent: "#F5F3FF"},
}

var fontSizes = map[string]int{
	SizeSmall:  12,
	SizeNormal: 14,
	SizeLarge:  16,
}

var spacings = map[string]int{
	SpacingCompact:  20,
	SpacingNormal:   30,
	SpacingSpacious: 40,
}

// ColorSchemes lists the accepted colour scheme names.
var ColorSchemes = []string{ColorBlue, ColorGreen, ColorRed, ColorPurple}

// Palette returns the colours of the template's scheme, falling back to the
// default scheme of kind.
func (t Template) Palette(kind Kind) Palette {
	if p, ok := palettes[t.Styling.ColorScheme]; ok {
		return p
	}
	return palettes[Default(kind).Styling.ColorScheme]
}

// FontSizePx returns the base font size in pixels.
func (t Template) FontSizePx() int {
	if px, ok := fontSizes[t.Styling.FontSize]; ok {
		return px
	}
	return fontSizes[SizeNormal]
}

// SpacingPx returns the page padding in pixels.
func (t Template) SpacingPx() int {
	if px, ok := spacings[t.Styling.Spacing]; ok {
		return px
	}
	return spacings[SpacingNormal]
}

// Labels is the terminology of one document kind.
type Labels struct {
	Title          string
	NumberLabel    string
	AddressHeading string
	TotalLabel     string
}

// LabelsFor returns the wording used when rendering kind.
func LabelsFor(kind Kind) Labels {
	if kind == KindEstimate {
		return Labels{
			Title:          "Kostenvoranschlag",
			NumberLabel:    "KV-Nr.",
			AddressHeading: "Kundenadresse",
			TotalLabel:     "Geschätzter Gesamtbetrag",
		}
	}
	return Labels{
		Title:          "Rechnung",
		NumberLabel:    "Rechnungs-Nr.",
		AddressHeading: "Rechnungsadresse",
		TotalLabel:     "Gesamtbetrag",
	}
}
