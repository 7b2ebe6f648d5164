// Package store is the entity store used by the services: typed CRUD,
// aggregates and transactions over gorm.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/diewo77/kfz-werkstatt/internal/apperr"
)

// Store wraps a gorm handle. Inside Transaction the handle is the transaction.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB returns the handle bound to ctx for queries the repositories do not cover.
func (s *Store) DB(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// Transaction runs fn in one database transaction. Any error returned by fn
// rolls back every write made through tx.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	err := s.db.WithContext(ctx).Transaction(func(gtx *gorm.DB) error {
		return fn(&Store{db: gtx})
	})
	if err == nil {
		return nil
	}
	if _, ok := apperr.As(err); ok {
		return err
	}
	return Translate("transaction", "", err)
}

// Query describes a list request.
type Query struct {
	Where        string
	Args         []any
	Search       string
	SearchFields []string
	OrderBy      string
	Desc         bool
	Preload      []string
	Limit        int
}

// Repo provides CRUD for one model type.
type Repo[T any] struct {
	s        *Store
	resource string
}

// For returns the repository of T. resource names the entity in errors.
func For[T any](s *Store, resource string) Repo[T] {
	return Repo[T]{s: s, resource: resource}
}

func (r Repo[T]) Find(ctx context.Context, id uint, preload ...string) (*T, error) {
	q := r.s.DB(ctx)
	for _, p := range preload {
		q = q.Preload(p)
	}
	var v T
	if err := q.First(&v, id).Error; err != nil {
		return nil, Translate("find "+r.resource, r.resource, err, id)
	}
	return &v, nil
}

// FindBy returns the first row matching where, ordered by id.
func (r Repo[T]) FindBy(ctx context.Context, where string, args ...any) (*T, error) {
	var v T
	if err := r.s.DB(ctx).Where(where, args...).Order("id").Take(&v).Error; err != nil {
		return nil, Translate("find "+r.resource, r.resource, err)
	}
	return &v, nil
}

func (r Repo[T]) List(ctx context.Context, q Query) ([]T, error) {
	db := r.s.DB(ctx).Model(new(T))
	if q.Where != "" {
		db = db.Where(q.Where, q.Args...)
	}
	if term := strings.TrimSpace(q.Search); term != "" && len(q.SearchFields) > 0 {
		pattern := "%" + strings.ToLower(term) + "%"
		parts := make([]string, len(q.SearchFields))
		args := make([]any, len(q.SearchFields))
		for i, f := range q.SearchFields {
			parts[i] = "LOWER(" + f + ") LIKE ?"
			args[i] = pattern
		}
		db = db.Where("("+strings.Join(parts, " OR ")+")", args...)
	}
	for _, p := range q.Preload {
		db = db.Preload(p)
	}
	if q.OrderBy != "" {
		db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: q.OrderBy}, Desc: q.Desc})
	}
	db = db.Order("id")
	if q.Limit > 0 {
		db = db.Limit(q.Limit)
	}
	var out []T
	if err := db.Find(&out).Error; err != nil {
		return nil, Translate("list "+r.resource, r.resource, err)
	}
	return out, nil
}

func (r Repo[T]) Insert(ctx context.Context, v *T) error {
	if err := r.s.DB(ctx).Create(v).Error; err != nil {
		return Translate("insert "+r.resource, r.resource, err)
	}
	return nil
}

// InsertMissing inserts rows whose conflict columns are not yet taken and
// skips the others. It returns the number of inserted rows.
func (r Repo[T]) InsertMissing(ctx context.Context, rows []T, conflict ...string) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	cols := make([]clause.Column, len(conflict))
	for i, c := range conflict {
		cols[i] = clause.Column{Name: c}
	}
	res := r.s.DB(ctx).Clauses(clause.OnConflict{Columns: cols, DoNothing: true}).Create(&rows)
	if res.Error != nil {
		return 0, Translate("insert "+r.resource, r.resource, res.Error)
	}
	return res.RowsAffected, nil
}

// Update overwrites every scalar column of the row with the values of v.
// Associations are left untouched.
func (r Repo[T]) Update(ctx context.Context, id uint, v *T) error {
	res := r.s.DB(ctx).Model(new(T)).Where("id = ?", id).
		Select("*").Omit("id", "created_at", clause.Associations).
		Updates(v)
	if res.Error != nil {
		return Translate("update "+r.resource, r.resource, res.Error, id)
	}
	if res.RowsAffected == 0 {
		return apperr.NewNotFoundError(r.resource, id)
	}
	return nil
}

// Patch updates only the given columns.
func (r Repo[T]) Patch(ctx context.Context, id uint, fields map[string]any) error {
	res := r.s.DB(ctx).Model(new(T)).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return Translate("update "+r.resource, r.resource, res.Error, id)
	}
	if res.RowsAffected == 0 {
		return apperr.NewNotFoundError(r.resource, id)
	}
	return nil
}

func (r Repo[T]) Delete(ctx context.Context, id uint) error {
	res := r.s.DB(ctx).Delete(new(T), id)
	if res.Error != nil {
		return Translate("delete "+r.resource, r.resource, res.Error, id)
	}
	if res.RowsAffected == 0 {
		return apperr.NewNotFoundError(r.resource, id)
	}
	return nil
}

// Exists reports whether a row with id exists.
func (r Repo[T]) Exists(ctx context.Context, id uint) (bool, error) {
	n, err := r.Count(ctx, "id = ?", id)
	return n > 0, err
}

// Count counts the rows matching where; an empty where counts all rows.
func (r Repo[T]) Count(ctx context.Context, where string, args ...any) (int64, error) {
	db := r.s.DB(ctx).Model(new(T))
	if where != "" {
		db = db.Where(where, args...)
	}
	var n int64
	if err := db.Count(&n).Error; err != nil {
		return 0, Translate("count "+r.resource, r.resource, err)
	}
	return n, nil
}

// Sum adds up expr over the rows matching where. Empty tables sum to zero.
func (r Repo[T]) Sum(ctx context.Context, expr, where string, args ...any) (float64, error) {
	db := r.s.DB(ctx).Model(new(T)).Select("COALESCE(SUM(" + expr + "), 0)")
	if where != "" {
		db = db.Where(where, args...)
	}
	var sum float64
	if err := db.Scan(&sum).Error; err != nil {
		return 0, Translate("sum "+r.resource, r.resource, err)
	}
	return sum, nil
}

// Translate maps gorm and driver errors to application errors.
func Translate(op, resource string, err error, id ...any) error {
	if err == nil {
		return nil
	}
	if _, ok := apperr.As(err); ok {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		var ref any
		if len(id) > 0 {
			ref = id[0]
		}
		return apperr.NewNotFoundError(resource, ref)
	case errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err):
		return apperr.NewConflictError(resource, fmt.Sprintf("%s violates a unique constraint", resource))
	case errors.Is(err, gorm.ErrForeignKeyViolated) || isForeignKeyViolation(err):
		return apperr.NewConflictError(resource, fmt.Sprintf("%s references a missing or still used record", resource))
	}
	return apperr.NewInfrastructureError(op, err)
}

func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key value")
}

func isForeignKeyViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "FOREIGN KEY constraint failed") || strings.Contains(msg, "violates foreign key constraint")
}
