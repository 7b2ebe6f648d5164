// Package export moves the product catalog in and out of XLSX workbooks.
package export

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/diewo77/kfz-werkstatt/internal/apperr"
	"github.com/diewo77/kfz-werkstatt/internal/models"
	"github.com/diewo77/kfz-werkstatt/internal/services"
)

// ContentTypeXLSX is the media type of the exported workbook.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const sheetName = "Produkte"

var header = []string{"Name", "Preis", "Bestand", "Kategorie", "Beschreibung"}

var headerAliases = map[string]string{
	"name":         "name",
	"produkt":      "name",
	"product":      "name",
	"bezeichnung":  "name",
	"preis":        "price",
	"price":        "price",
	"bestand":      "stock",
	"lagerbestand": "stock",
	"stock":        "stock",
	"kategorie":    "category",
	"category":     "category",
	"beschreibung": "description",
	"description":  "description",
}

// WriteProducts writes the products as a single sheet workbook.
func WriteProducts(w io.Writer, products []models.Product) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, p := range products {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{p.Name, p.Price, p.Stock, p.Category, p.Description}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// RowError describes a row that could not be imported. Row is 1-based as
// shown by spreadsheet programs.
type RowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

// Result summarises an import.
type Result struct {
	Created int        `json:"created"`
	Updated int        `json:"updated"`
	Errors  []RowError `json:"errors"`
}

// Upserter stores one imported product.
type Upserter interface {
	Upsert(ctx context.Context, in services.ProductInput) (bool, error)
}

// Row is a parsed product with its 1-based sheet row.
type Row struct {
	Number  int
	Product services.ProductInput
}

// ParseProducts reads the first sheet. Rows with unreadable numbers are
// reported and skipped; the header must name at least name and price.
func ParseProducts(r io.Reader) ([]Row, []RowError, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, apperr.NewBadRequestError("file is not a readable XLSX workbook")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, apperr.NewBadRequestError("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil, apperr.NewBadRequestError("workbook is empty")
	}
	cols := mapColumns(rows[0])
	for _, required := range []string{"name", "price"} {
		if _, ok := cols[required]; !ok {
			return nil, nil, apperr.NewBadRequestError("missing column: " + required)
		}
	}

	var out []Row
	var rowErrs []RowError
	for i := 1; i < len(rows); i++ {
		cells := rows[i]
		name := strings.TrimSpace(cell(cells, cols, "name"))
		if name == "" {
			continue
		}
		price, err := parseNumber(cell(cells, cols, "price"))
		if err != nil {
			rowErrs = append(rowErrs, RowError{Row: i + 1, Error: "price: " + err.Error()})
			continue
		}
		stock := 0
		if raw := strings.TrimSpace(cell(cells, cols, "stock")); raw != "" {
			n, err := parseNumber(raw)
			if err != nil || n != float64(int(n)) {
				rowErrs = append(rowErrs, RowError{Row: i + 1, Error: "stock: must be an integer"})
				continue
			}
			stock = int(n)
		}
		out = append(out, Row{Number: i + 1, Product: services.ProductInput{
			Name:        name,
			Price:       price,
			Stock:       stock,
			Category:    strings.TrimSpace(cell(cells, cols, "category")),
			Description: strings.TrimSpace(cell(cells, cols, "description")),
		}})
	}
	return out, rowErrs, nil
}

// ImportProducts parses the workbook and upserts every row by product name.
// Rows that fail validation are reported in the result, the rest is stored.
func ImportProducts(ctx context.Context, dst Upserter, r io.Reader) (*Result, error) {
	rows, rowErrs, err := ParseProducts(r)
	if err != nil {
		return nil, err
	}
	res := &Result{Errors: rowErrs}
	for _, row := range rows {
		created, err := dst.Upsert(ctx, row.Product)
		if err != nil {
			if _, ok := apperr.As(err); !ok || apperr.HasCode(err, apperr.CodeInfrastructure) {
				return nil, err
			}
			res.Errors = append(res.Errors, RowError{Row: row.Number, Error: err.Error()})
			continue
		}
		if created {
			res.Created++
		} else {
			res.Updated++
		}
	}
	if res.Errors == nil {
		res.Errors = []RowError{}
	}
	return res, nil
}

func mapColumns(header []string) map[string]int {
	out := make(map[string]int)
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if canonical, ok := headerAliases[key]; ok {
			if _, seen := out[canonical]; !seen {
				out[canonical] = i
			}
		}
	}
	return out
}

func cell(cells []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(cells) {
		return ""
	}
	return cells[idx]
}

// parseNumber accepts "1234.5", "1.234,50" and "12,5".
func parseNumber(raw string) (float64, error) {
	v := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), "€"))
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, fmt.Errorf("value is empty")
	}
	if strings.Contains(v, ",") {
		v = strings.ReplaceAll(v, ".", "")
		v = strings.ReplaceAll(v, ",", ".")
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number")
	}
	return n, nil
}
