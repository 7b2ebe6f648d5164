package services

import (
	"context"

	"github.com/diewo77/kfz-werkstatt/internal/document"
	"github.com/diewo77/kfz-werkstatt/internal/models"
	"github.com/diewo77/kfz-werkstatt/internal/render"
	"github.com/diewo77/kfz-werkstatt/internal/store"
)

// DocumentSource supplies the settings printed on a document.
type DocumentSource interface {
	Company(ctx context.Context) (render.Company, error)
	DocumentSettings(ctx context.Context) render.Settings
	GetTemplate(ctx context.Context, kind document.Kind) document.Template
}

// DocumentService loads an invoice or estimate with everything it shows and
// hands it to a renderer.
type DocumentService struct {
	store    *store.Store
	source   DocumentSource
	renderer render.Renderer
}

func NewDocumentService(s *store.Store, source DocumentSource, r render.Renderer) *DocumentService {
	return &DocumentService{store: s, source: source, renderer: r}
}

// Render produces the document of kind with the given id.
func (s *DocumentService) Render(ctx context.Context, kind document.Kind, id uint) (render.Document, error) {
	in, err := s.Input(ctx, kind, id)
	if err != nil {
		return render.Document{}, err
	}
	return s.renderer.Render(in)
}

// Input hydrates the renderer input of a stored document.
func (s *DocumentService) Input(ctx context.Context, kind document.Kind, id uint) (render.Input, error) {
	in := render.Input{Kind: kind}
	var lines []models.Line
	switch kind {
	case document.KindEstimate:
		e, err := store.For[models.Estimate](s.store, "estimate").Find(ctx, id, "Items", "Customer", "Vehicle")
		if err != nil {
			return in, err
		}
		in.Number, in.Date, in.ValidUntil = e.EstimateNumber, e.Date, e.ValidUntil
		in.CustomerID, in.Customer, in.Vehicle = e.CustomerID, e.Customer, e.Vehicle
		in.Description = e.Description
		lines = e.Lines()
	default:
		inv, err := store.For[models.Invoice](s.store, "invoice").Find(ctx, id, "Items", "Customer", "Vehicle")
		if err != nil {
			return in, err
		}
		in.Number, in.Date = inv.InvoiceNumber, inv.Date
		in.CustomerID, in.Customer, in.Vehicle = inv.CustomerID, inv.Customer, inv.Vehicle
		in.Description = inv.Description
		lines = inv.Lines()
	}

	items, err := s.items(ctx, lines)
	if err != nil {
		return in, err
	}
	in.Items = items
	if in.Company, err = s.source.Company(ctx); err != nil {
		return in, err
	}
	in.Settings = s.source.DocumentSettings(ctx)
	in.Template = s.source.GetTemplate(ctx, kind)
	return in, nil
}

// items joins the lines with their products and services for name and category.
func (s *DocumentService) items(ctx context.Context, lines []models.Line) ([]render.Item, error) {
	var productIDs, serviceIDs []uint
	for _, l := range lines {
		if l.ProductID != nil {
			productIDs = append(productIDs, *l.ProductID)
		}
		if l.ServiceID != nil {
			serviceIDs = append(serviceIDs, *l.ServiceID)
		}
	}
	products := make(map[uint]models.Product)
	if len(productIDs) > 0 {
		rows, err := store.For[models.Product](s.store, "product").List(ctx, store.Query{Where: "id IN ?", Args: []any{productIDs}})
		if err != nil {
			return nil, err
		}
		for _, p := range rows {
			products[p.ID] = p
		}
	}
	services := make(map[uint]models.Service)
	if len(serviceIDs) > 0 {
		rows, err := store.For[models.Service](s.store, "service").List(ctx, store.Query{Where: "id IN ?", Args: []any{serviceIDs}})
		if err != nil {
			return nil, err
		}
		for _, svc := range rows {
			services[svc.ID] = svc
		}
	}

	out := make([]render.Item, len(lines))
	for i, l := range lines {
		item := render.Item{
			Description: l.Description,
			ItemType:    l.Kind(),
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			TotalPrice:  l.TotalPrice,
		}
		switch {
		case l.ProductID != nil && products[*l.ProductID].ID != 0:
			p := products[*l.ProductID]
			item.Name, item.Category = p.Name, p.Category
			if item.Description == "" {
				item.Description = p.Description
			}
		case l.ServiceID != nil && services[*l.ServiceID].ID != 0:
			svc := services[*l.ServiceID]
			item.Name, item.Category = svc.Name, svc.Category
			if item.Description == "" {
				item.Description = svc.Description
			}
		}
		if item.Name == "" {
			item.Name = l.Description
			item.Description = ""
		}
		if item.Name == "" {
			item.Name = "Artikel"
		}
		out[i] = item
	}
	return out, nil
}
