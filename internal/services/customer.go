package services

import (
	"context"
	"strings"

	"github.com/diewo77/kfz-werkstatt/internal/apperr"
	"github.com/diewo77/kfz-werkstatt/internal/models"
	"github.com/diewo77/kfz-werkstatt/internal/store"
	"github.com/diewo77/kfz-werkstatt/validation"
)

type CustomerInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type CustomerService struct {
	store *store.Store
}

func NewCustomerService(s *store.Store) *CustomerService {
	return &CustomerService{store: s}
}

func (s *CustomerService) repo(st *store.Store) store.Repo[models.Customer] {
	return store.For[models.Customer](st, "customer")
}

// List returns the customers sorted by name, optionally filtered by a search
// term over name, email and phone.
func (s *CustomerService) List(ctx context.Context, search string) ([]models.Customer, error) {
	return s.repo(s.store).List(ctx, store.Query{
		Search:       search,
		SearchFields: []string{"name", "email", "phone"},
		OrderBy:      "name",
	})
}

func (s *CustomerService) Get(ctx context.Context, id uint) (*models.Customer, error) {
	return s.repo(s.store).Find(ctx, id)
}

func (in CustomerInput) validate() error {
	v := make(validation.Violations)
	validation.Required("name", in.Name, v)
	validation.Email("email", in.Email, v)
	return v.Err()
}

func (in CustomerInput) model() models.Customer {
	return models.Customer{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.TrimSpace(in.Email),
		Phone:   strings.TrimSpace(in.Phone),
		Address: strings.TrimSpace(in.Address),
	}
}

func (s *CustomerService) Create(ctx context.Context, in CustomerInput) (*models.Customer, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	c := in.model()
	if err := s.repo(s.store).Insert(ctx, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CustomerService) Update(ctx context.Context, id uint, in CustomerInput) (*models.Customer, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	c := in.model()
	if err := s.repo(s.store).Update(ctx, id, &c); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes a customer without documents. Their vehicles stay in the
// stock without an owner.
func (s *CustomerService) Delete(ctx context.Context, id uint) error {
	return s.store.Transaction(ctx, func(tx *store.Store) error {
		if _, err := s.repo(tx).Find(ctx, id); err != nil {
			return err
		}
		estimates, err := store.For[models.Estimate](tx, "estimate").Count(ctx, "customer_id = ?", id)
		if err != nil {
			return err
		}
		invoices, err := store.For[models.Invoice](tx, "invoice").Count(ctx, "customer_id = ?", id)
		if err != nil {
			return err
		}
		if estimates+invoices > 0 {
			return apperr.NewConflictError("customer", "customer is referenced by estimates or invoices")
		}
		if err := tx.DB(ctx).Model(&models.Vehicle{}).Where("customer_id = ?", id).
			Update("customer_id", nil).Error; err != nil {
			return store.Translate("unlink vehicles", "vehicle", err)
		}
		return s.repo(tx).Delete(ctx, id)
	})
}
