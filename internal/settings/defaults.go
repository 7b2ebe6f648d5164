package settings

import (
	"github.com/diewo77/kfz-werkstatt/internal/document"
	"github.com/diewo77/kfz-werkstatt/internal/models"
)

// Setting categories.
const (
	CategoryCompany   = "company"
	CategoryInvoice   = "invoice"
	CategoryEstimate  = "estimate"
	CategoryTemplates = "templates"
	CategoryPrint     = "print"
	CategorySystem    = "system"
)

func def(category, key, value, typ, description string) models.Setting {
	return models.Setting{Category: category, Key: key, Value: value, Type: typ, Description: description}
}

// Defaults returns the predefined settings inserted by SeedDefaults.
func Defaults() []models.Setting {
	invoiceTpl := document.Default(document.KindInvoice)
	invoiceTpl.Footer.CustomText = "Vielen Dank für Ihr Vertrauen!"
	invoiceJSON, _ := invoiceTpl.JSON()
	estimateJSON, _ := document.Default(document.KindEstimate).JSON()

	const (
		str  = models.SettingTypeString
		num  = models.SettingTypeNumber
		boo  = models.SettingTypeBoolean
		mail = models.SettingTypeEmail
		url  = models.SettingTypeURL
		js   = models.SettingTypeJSON
	)

	return []models.Setting{
		def(CategoryCompany, "name", "Mustermann KFZ-Werkstatt", str, "Firmenname"),
		def(CategoryCompany, "address_street", "Musterstraße 123", str, "Straße und Hausnummer"),
		def(CategoryCompany, "address_city", "12345 Musterstadt", str, "PLZ und Ort"),
		def(CategoryCompany, "phone", "+49 123 456789", str, "Telefonnummer"),
		def(CategoryCompany, "email", "info@mustermann-kfz.de", mail, "E-Mail-Adresse"),
		def(CategoryCompany, "website", "www.mustermann-kfz.de", url, "Website"),
		def(CategoryCompany, "tax_number", "DE123456789", str, "Steuernummer"),
		def(CategoryCompany, "vat_id", "DE123456789", str, "Umsatzsteuer-Identifikationsnummer"),
		def(CategoryCompany, "iban", "DE89 1234 5678 9012 3456 78", str, "IBAN"),
		def(CategoryCompany, "bic", "DEUTDEFF", str, "BIC"),
		def(CategoryCompany, "bank_name", "Deutsche Bank", str, "Name der Bank"),
		def(CategoryCompany, "logo_url", "/assets/logo.png", str, "Pfad zum Firmenlogo"),

		def(CategoryInvoice, "number_prefix", "RE", str, "Präfix für Rechnungsnummern"),
		def(CategoryInvoice, "payment_terms", "14 Tage netto", str, "Zahlungsbedingungen"),
		def(CategoryInvoice, "late_fee", "5.00", num, "Mahngebühr in Euro"),
		def(CategoryInvoice, "vat_rate", "19", num, "Mehrwertsteuersatz in %"),
		def(CategoryInvoice, "default_currency", "EUR", str, "Standardwährung"),
		def(CategoryInvoice, "language", "de", str, "Sprache der Rechnungen"),

		def(CategoryEstimate, "number_prefix", "KV", str, "Präfix für Kostenvoranschläge"),
		def(CategoryEstimate, "validity_days", "30", num, "Gültigkeitsdauer in Tagen"),
		def(CategoryEstimate, "auto_convert", "false", boo, "Automatische Umwandlung in Rechnung"),
		def(CategoryEstimate, "include_labor", "true", boo, "Arbeitskosten einbeziehen"),

		def(CategoryTemplates, document.KindInvoice.SettingKey(), invoiceJSON, js, "Rechnungsvorlage"),
		def(CategoryTemplates, document.KindEstimate.SettingKey(), estimateJSON, js, "Kostenvoranschlagsvorlage"),

		def(CategoryPrint, "page_size", "A4", str, "Seitenformat"),
		def(CategoryPrint, "orientation", "portrait", str, "Ausrichtung"),
		def(CategoryPrint, "margin_top", "20", num, "Oberer Rand in mm"),
		def(CategoryPrint, "margin_bottom", "20", num, "Unterer Rand in mm"),
		def(CategoryPrint, "margin_left", "15", num, "Linker Rand in mm"),
		def(CategoryPrint, "margin_right", "15", num, "Rechter Rand in mm"),
		def(CategoryPrint, "header_height", "80", num, "Kopfzeilenhöhe in px"),
		def(CategoryPrint, "footer_height", "40", num, "Fußzeilenhöhe in px"),

		def(CategorySystem, "backup_enabled", "true", boo, "Automatische Backups aktiviert"),
		def(CategorySystem, "notification_email", "admin@mustermann-kfz.de", mail, "E-Mail für Benachrichtigungen"),
		def(CategorySystem, "date_format", "DD.MM.YYYY", str, "Datumsformat"),
		def(CategorySystem, "time_format", "24h", str, "Zeitformat"),
		def(CategorySystem, "timezone", "Europe/Berlin", str, "Zeitzone"),
	}
}
