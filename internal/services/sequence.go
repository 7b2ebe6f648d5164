package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/diewo77/kfz-werkstatt/internal/models"
	"github.com/diewo77/kfz-werkstatt/internal/store"
)

// Sequencer hands out per-year document numbers such as RE-2025-000001.
type Sequencer struct{}

// Next increments the counter of (prefix, year) and returns the formatted
// number. tx must be a transaction so the counter and the document that uses
// it are committed together.
func (Sequencer) Next(ctx context.Context, tx *store.Store, prefix string, year int) (string, error) {
	seqs := store.For[models.NumberSequence](tx, "number sequence")
	if _, err := seqs.InsertMissing(ctx, []models.NumberSequence{{Prefix: prefix, Year: year}}, "prefix", "year"); err != nil {
		return "", err
	}
	res := tx.DB(ctx).Model(&models.NumberSequence{}).
		Where("prefix = ? AND year = ?", prefix, year).
		Update("last", gorm.Expr(`"last" + 1`))
	if res.Error != nil {
		return "", store.Translate("advance number sequence", "number sequence", res.Error)
	}
	seq, err := seqs.FindBy(ctx, "prefix = ? AND year = ?", prefix, year)
	if err != nil {
		return "", err
	}
	return FormatNumber(prefix, year, seq.Last), nil
}

// FormatNumber renders a document number with a six digit sequence.
func FormatNumber(prefix string, year int, n int64) string {
	return fmt.Sprintf("%s-%d-%06d", prefix, year, n)
}

// nextFree draws numbers until one is not taken by a manually numbered document.
func nextFree[T any](ctx context.Context, tx *store.Store, seq Sequencer, prefix string, year int, column string) (string, error) {
	docs := store.For[T](tx, "document")
	for i := 0; i < 100; i++ {
		number, err := seq.Next(ctx, tx, prefix, year)
		if err != nil {
			return "", err
		}
		n, err := docs.Count(ctx, column+" = ?", number)
		if err != nil {
			return "", err
		}
		if n == 0 {
			return number, nil
		}
	}
	return "", fmt.Errorf("no free %s number for %d", prefix, year)
}
