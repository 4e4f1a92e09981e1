package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/vente_shop/pkg/events"
	"github.com/Skotchmaster/vente_shop/pkg/logging"
	"github.com/Skotchmaster/vente_shop/pkg/metrics"
	"github.com/Skotchmaster/vente_shop/services/catalog/internal/models"
	"github.com/Skotchmaster/vente_shop/services/catalog/internal/repo"
	"github.com/Skotchmaster/vente_shop/services/catalog/internal/transport"
)

// SearchIndex is the full text index kept next to the database.
type SearchIndex interface {
	Put(ctx context.Context, doc models.Document) error
	Remove(ctx context.Context, kind string, id uint) error
	Search(ctx context.Context, query string, limit int) ([]models.Document, error)
}

type CatalogService struct {
	Repo   *repo.GormRepo
	Index  SearchIndex
	Events events.Publisher
}

func notFound(err error, what string) error {
	if errors.Is(err, repo.ErrNotFound) {
		return fmt.Errorf("%w: %s not found", ErrNotFound, what)
	}
	return err
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	return p, notFound(err, "product")
}

func (s *CatalogService) GetProducts(ctx context.Context, f repo.ListFilter) (int64, []models.Product, error) {
	return s.Repo.GetProducts(ctx, f)
}

func validPrice(p decimal.Decimal) error {
	if p.IsNegative() {
		return fmt.Errorf("%w: price cannot be negative", ErrValidation)
	}
	if !p.Equal(p.Round(2)) {
		return fmt.Errorf("%w: price has more than two decimal places", ErrValidation)
	}
	return nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, req transport.CreateProductRequest) (*models.Product, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if err := validPrice(req.Price); err != nil {
		return nil, err
	}
	if req.Stock < 0 {
		return nil, fmt.Errorf("%w: stock cannot be negative", ErrValidation)
	}
	if err := s.checkProductCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	prod := &models.Product{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		CategoryID:  req.CategoryID,
		ImageURL:    req.ImageURL,
	}
	if err := s.Repo.CreateProduct(ctx, prod); err != nil {
		return nil, err
	}

	s.afterProductWrite(ctx, "product_created", prod)
	return prod, nil
}

func (s *CatalogService) PatchProduct(ctx context.Context, id uint, req transport.PatchProductRequest) (*models.Product, error) {
	prod, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, notFound(err, "product")
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrValidation)
		}
		prod.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		prod.Description = *req.Description
	}
	if req.Price != nil {
		if err := validPrice(*req.Price); err != nil {
			return nil, err
		}
		prod.Price = *req.Price
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return nil, fmt.Errorf("%w: stock cannot be negative", ErrValidation)
		}
		prod.Stock = *req.Stock
	}
	if req.CategoryID != nil {
		if err := s.checkProductCategory(ctx, req.CategoryID); err != nil {
			return nil, err
		}
		prod.CategoryID = req.CategoryID
		prod.Category = nil
	}
	if req.ImageURL != nil {
		prod.ImageURL = *req.ImageURL
	}

	if err := s.Repo.SaveProduct(ctx, prod); err != nil {
		return nil, err
	}

	s.afterProductWrite(ctx, "product_updated", prod)
	return prod, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		return notFound(err, "product")
	}
	s.afterDelete(ctx, models.KindProduct, id)
	return nil
}

func (s *CatalogService) checkProductCategory(ctx context.Context, id *uint) error {
	if id == nil {
		return nil
	}
	ok, err := s.Repo.ProductCategoryExists(ctx, *id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: category not found", ErrValidation)
	}
	return nil
}

func (s *CatalogService) afterProductWrite(ctx context.Context, eventType string, p *models.Product) {
	s.publish(ctx, eventType, models.KindProduct, p.ID, map[string]any{
		"product_id": p.ID,
		"name":       p.Name,
		"price":      p.Price,
		"stock":      p.Stock,
	})
	s.index(ctx, models.ProductDocument(p))
}

func (s *CatalogService) afterDelete(ctx context.Context, kind string, id uint) {
	s.publish(ctx, kind+"_deleted", kind, id, map[string]any{kind + "_id": id})
	if s.Index == nil {
		return
	}
	if err := s.Index.Remove(ctx, kind, id); err != nil {
		metrics.SideEffectErrorsTotal.WithLabelValues("index").Inc()
		logging.FromContext(ctx).Warn("unindex_failed", "kind", kind, "id", id, "error", err)
	}
}

func (s *CatalogService) index(ctx context.Context, doc models.Document) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Put(ctx, doc); err != nil {
		metrics.SideEffectErrorsTotal.WithLabelValues("index").Inc()
		logging.FromContext(ctx).Warn("index_failed", "doc", doc.DocID(), "error", err)
	}
}

func (s *CatalogService) publish(ctx context.Context, eventType, kind string, id uint, payload any) {
	if s.Events == nil {
		return
	}
	key := kind + "-" + strconv.FormatUint(uint64(id), 10)
	if err := s.Events.Publish(ctx, events.TopicCatalog, key, eventType, payload); err != nil {
		metrics.SideEffectErrorsTotal.WithLabelValues("event").Inc()
		logging.FromContext(ctx).Warn("publish_event_failed", "event", eventType, "error", err)
	}
}

func (s *CatalogService) ListCategories(ctx context.Context, kind string) (any, error) {
	switch kind {
	case models.KindProduct:
		return s.Repo.ListProductCategories(ctx)
	case models.KindEquipment:
		return s.Repo.ListEquipmentCategories(ctx)
	default:
		return nil, fmt.Errorf("%w: kind must be product or equipment", ErrValidation)
	}
}

// CreateCategory derives the slug from the name.
func (s *CatalogService) CreateCategory(ctx context.Context, req transport.CreateCategoryRequest) (any, error) {
	name := strings.TrimSpace(req.Name)
	sl := slug.Make(name)
	if sl == "" {
		return nil, fmt.Errorf("%w: name must contain letters or digits", ErrValidation)
	}

	var (
		created any
		err     error
	)
	switch req.Kind {
	case models.KindProduct:
		c := &models.ProductCategory{Name: name, Slug: sl, Description: req.Description}
		created = c
		err = s.Repo.CreateProductCategory(ctx, c)
	case models.KindEquipment:
		c := &models.EquipmentCategory{Name: name, Slug: sl, Description: req.Description}
		created = c
		err = s.Repo.CreateEquipmentCategory(ctx, c)
	default:
		return nil, fmt.Errorf("%w: kind must be product or equipment", ErrValidation)
	}
	if errors.Is(err, repo.ErrDuplicate) {
		return nil, fmt.Errorf("%w: category %q already exists", ErrConflict, sl)
	}
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, kind string, id uint) error {
	var err error
	switch kind {
	case models.KindProduct:
		err = s.Repo.DeleteProductCategory(ctx, id)
	case models.KindEquipment:
		err = s.Repo.DeleteEquipmentCategory(ctx, id)
	default:
		return fmt.Errorf("%w: kind must be product or equipment", ErrValidation)
	}
	return notFound(err, "category")
}
