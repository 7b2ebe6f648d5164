package services

import (
	"context"
	"strings"

	"github.com/diewo77/kfz-werkstatt/internal/apperr"
	"github.com/diewo77/kfz-werkstatt/internal/models"
	"github.com/diewo77/kfz-werkstatt/internal/store"
	"github.com/diewo77/kfz-werkstatt/validation"
)

// Stock operations accepted by AdjustStock.
const (
	StockSet      = "set"
	StockAdd      = "add"
	StockSubtract = "subtract"
)

var (
	productSortColumns = []string{"name", "price", "stock", "category", "created_at"}
	stockOperations    = []string{StockSet, StockAdd, StockSubtract}
)

type ProductInput struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
}

type ProductFilter struct {
	Category string
	Search   string
	SortBy   string
	Order    string
}

type ProductStats struct {
	Total      int64   `json:"total"`
	TotalValue float64 `json:"total_value"`
	LowStock   int64   `json:"low_stock"`
	Categories int64   `json:"categories"`
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

type ProductService struct {
	store *store.Store
}

func NewProductService(s *store.Store) *ProductService {
	return &ProductService{store: s}
}

func (s *ProductService) repo(st *store.Store) store.Repo[models.Product] {
	return store.For[models.Product](st, "product")
}

// List filters by category and search term. Unknown sort columns or orders
// fall back to name ascending.
func (s *ProductService) List(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	q := store.Query{
		Search:       f.Search,
		SearchFields: []string{"name", "description"},
		OrderBy:      "name",
	}
	if f.Category != "" {
		q.Where, q.Args = "category = ?", []any{f.Category}
	}
	order := strings.ToUpper(f.Order)
	if contains(productSortColumns, f.SortBy) && (order == "ASC" || order == "DESC") {
		q.OrderBy = f.SortBy
		q.Desc = order == "DESC"
	}
	return s.repo(s.store).List(ctx, q)
}

func (s *ProductService) Get(ctx context.Context, id uint) (*models.Product, error) {
	return s.repo(s.store).Find(ctx, id)
}

func (in ProductInput) Validate() error {
	v := make(validation.Violations)
	validation.Required("name", in.Name, v)
	validation.PositiveFloat("price", in.Price, v)
	validation.NonNegativeInt("stock", in.Stock, v)
	validation.Required("category", in.Category, v)
	return v.Err()
}

func (in ProductInput) model() models.Product {
	return models.Product{
		Name:        strings.TrimSpace(in.Name),
		Price:       models.RoundCents(in.Price),
		Stock:       in.Stock,
		Category:    strings.TrimSpace(in.Category),
		Description: in.Description,
	}
}

// Create inserts a product. A name that is already taken yields a ConflictError.
func (s *ProductService) Create(ctx context.Context, in ProductInput) (*models.Product, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	p := in.model()
	if err := s.repo(s.store).Insert(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *ProductService) Update(ctx context.Context, id uint, in ProductInput) (*models.Product, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	p := in.model()
	if err := s.repo(s.store).Update(ctx, id, &p); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Upsert creates the product or updates the one with the same name. It
// reports whether a new row was created.
func (s *ProductService) Upsert(ctx context.Context, in ProductInput) (bool, error) {
	if err := in.Validate(); err != nil {
		return false, err
	}
	p := in.model()
	created := false
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		cur, err := s.repo(tx).FindBy(ctx, "name = ?", p.Name)
		switch {
		case apperr.IsNotFound(err):
			created = true
			return s.repo(tx).Insert(ctx, &p)
		case err != nil:
			return err
		}
		return s.repo(tx).Update(ctx, cur.ID, &p)
	})
	return created, err
}

// Delete refuses products that are still used by estimate or invoice items.
func (s *ProductService) Delete(ctx context.Context, id uint) error {
	return s.store.Transaction(ctx, func(tx *store.Store) error {
		if _, err := s.repo(tx).Find(ctx, id); err != nil {
			return err
		}
		inEstimates, err := store.For[models.EstimateItem](tx, "estimate item").Count(ctx, "product_id = ?", id)
		if err != nil {
			return err
		}
		inInvoices, err := store.For[models.InvoiceItem](tx, "invoice item").Count(ctx, "product_id = ?", id)
		if err != nil {
			return err
		}
		if inEstimates+inInvoices > 0 {
			return apperr.NewConflictError("product", "product is used by estimate or invoice items")
		}
		return s.repo(tx).Delete(ctx, id)
	})
}

// AdjustStock sets, adds or subtracts qty. Subtracting never goes below zero.
func (s *ProductService) AdjustStock(ctx context.Context, id uint, op string, qty int) (*models.Product, error) {
	if op == "" {
		op = StockSet
	}
	v := make(validation.Violations)
	validation.OneOf("operation", op, stockOperations, v)
	validation.NonNegativeInt("stock", qty, v)
	if err := v.Err(); err != nil {
		return nil, err
	}
	var out *models.Product
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		p, err := s.repo(tx).Find(ctx, id)
		if err != nil {
			return err
		}
		switch op {
		case StockAdd:
			p.Stock += qty
		case StockSubtract:
			p.Stock = max(0, p.Stock-qty)
		default:
			p.Stock = qty
		}
		if err := s.repo(tx).Patch(ctx, id, map[string]any{"stock": p.Stock}); err != nil {
			return err
		}
		out = p
		return nil
	})
	return out, err
}

// Stats summarises the catalog. Products at or below threshold count as low stock.
func (s *ProductService) Stats(ctx context.Context, threshold int) (*ProductStats, error) {
	repo := s.repo(s.store)
	var st ProductStats
	var err error
	if st.Total, err = repo.Count(ctx, ""); err != nil {
		return nil, err
	}
	if st.TotalValue, err = repo.Sum(ctx, "price * stock", ""); err != nil {
		return nil, err
	}
	st.TotalValue = models.RoundCents(st.TotalValue)
	if st.LowStock, err = repo.Count(ctx, "stock <= ?", threshold); err != nil {
		return nil, err
	}
	if err := s.store.DB(ctx).Model(&models.Product{}).Distinct("category").Count(&st.Categories).Error; err != nil {
		return nil, store.Translate("count categories", "product", err)
	}
	return &st, nil
}

// Categories returns every category with its product count, sorted by name.
func (s *ProductService) Categories(ctx context.Context) ([]CategoryCount, error) {
	var out []CategoryCount
	err := s.store.DB(ctx).Model(&models.Product{}).
		Select("category, COUNT(*) AS count").
		Group("category").Order("category").
		Scan(&out).Error
	if err != nil {
		return nil, store.Translate("list categories", "product", err)
	}
	return out, nil
}

// LowStock lists products with stock at or below threshold, lowest first.
func (s *ProductService) LowStock(ctx context.Context, threshold int) ([]models.Product, error) {
	if threshold <= 0 {
		threshold = models.DefaultLowStockThreshold
	}
	return s.repo(s.store).List(ctx, store.Query{
		Where:   "stock <= ?",
		Args:    []any{threshold},
		OrderBy: "stock",
	})
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
