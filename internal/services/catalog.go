package services

import (
	"context"
	"strings"

	"github.com/diewo77/kfz-werkstatt/internal/models"
	"github.com/diewo77/kfz-werkstatt/internal/store"
	"github.com/diewo77/kfz-werkstatt/validation"
)

// ServiceInput is the writable part of a labor service. IsActive defaults to true.
type ServiceInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Duration    int     `json:"duration"`
	LaborRate   float64 `json:"labor_rate"`
	IsActive    *bool   `json:"is_active"`
}

// CatalogService manages the labor services. Deleting one deactivates it so
// documents keep their references.
type CatalogService struct {
	store *store.Store
}

func NewCatalogService(s *store.Store) *CatalogService {
	return &CatalogService{store: s}
}

func (s *CatalogService) repo(st *store.Store) store.Repo[models.Service] {
	return store.For[models.Service](st, "service")
}

// List returns the active services ordered by category and name.
func (s *CatalogService) List(ctx context.Context) ([]models.Service, error) {
	return s.active(ctx, "")
}

// ByCategory returns the active services of one category.
func (s *CatalogService) ByCategory(ctx context.Context, category string) ([]models.Service, error) {
	return s.active(ctx, category)
}

func (s *CatalogService) active(ctx context.Context, category string) ([]models.Service, error) {
	q := s.store.DB(ctx).Where("is_active = ?", true)
	if category != "" {
		q = q.Where("category = ?", category)
	}
	var out []models.Service
	if err := q.Order("category").Order("name").Order("id").Find(&out).Error; err != nil {
		return nil, store.Translate("list services", "service", err)
	}
	return out, nil
}

// Get returns a service whether it is active or not.
func (s *CatalogService) Get(ctx context.Context, id uint) (*models.Service, error) {
	return s.repo(s.store).Find(ctx, id)
}

func (in ServiceInput) Validate() error {
	v := make(validation.Violations)
	validation.Required("name", in.Name, v)
	validation.Required("category", in.Category, v)
	validation.PositiveFloat("price", in.Price, v)
	validation.NonNegativeInt("duration", in.Duration, v)
	validation.NonNegativeFloat("labor_rate", in.LaborRate, v)
	return v.Err()
}

func (in ServiceInput) model() models.Service {
	svc := models.Service{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Category:    strings.TrimSpace(in.Category),
		Price:       models.RoundCents(in.Price),
		Duration:    in.Duration,
		LaborRate:   models.RoundCents(in.LaborRate),
		IsActive:    in.IsActive == nil || *in.IsActive,
	}
	if svc.Duration == 0 {
		svc.Duration = models.DefaultServiceDuration
	}
	return svc
}

func (s *CatalogService) Create(ctx context.Context, in ServiceInput) (*models.Service, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	svc := in.model()
	// gorm skips false for a column with a database default and writes the
	// default back into svc, so the requested state is read before Insert.
	active := svc.IsActive
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		if err := s.repo(tx).Insert(ctx, &svc); err != nil {
			return err
		}
		if !active {
			return s.setActive(ctx, tx, svc.ID, false)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, svc.ID)
}

func (s *CatalogService) Update(ctx context.Context, id uint, in ServiceInput) (*models.Service, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	svc := in.model()
	if err := s.repo(s.store).Update(ctx, id, &svc); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete deactivates the service.
func (s *CatalogService) Delete(ctx context.Context, id uint) error {
	return s.setActive(ctx, s.store, id, false)
}

func (s *CatalogService) Activate(ctx context.Context, id uint) (*models.Service, error) {
	if err := s.setActive(ctx, s.store, id, true); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *CatalogService) setActive(ctx context.Context, st *store.Store, id uint, active bool) error {
	return s.repo(st).Patch(ctx, id, map[string]any{"is_active": active})
}

// Categories returns the distinct categories of the active services.
func (s *CatalogService) Categories(ctx context.Context) ([]string, error) {
	var out []string
	err := s.store.DB(ctx).Model(&models.Service{}).
		Where("is_active = ?", true).
		Distinct().Order("category").
		Pluck("category", &out).Error
	if err != nil {
		return nil, store.Translate("list service categories", "service", err)
	}
	return out, nil
}
