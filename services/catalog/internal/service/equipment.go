package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Skotchmaster/vente_shop/services/catalog/internal/models"
	"github.com/Skotchmaster/vente_shop/services/catalog/internal/repo"
	"github.com/Skotchmaster/vente_shop/services/catalog/internal/transport"
)

func (s *CatalogService) GetEquipment(ctx context.Context, id uint) (*models.Equipment, error) {
	eq, err := s.Repo.GetEquipment(ctx, id)
	return eq, notFound(err, "equipment")
}

func (s *CatalogService) ListEquipment(ctx context.Context, f repo.ListFilter) (int64, []models.Equipment, error) {
	return s.Repo.ListEquipment(ctx, f)
}

func (s *CatalogService) CreateEquipment(ctx context.Context, req transport.CreateEquipmentRequest) (*models.Equipment, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if err := validPrice(req.RentalPricePerDay); err != nil {
		return nil, err
	}
	if err := s.checkEquipmentCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	available := true
	if req.Available != nil {
		available = *req.Available
	}
	eq := &models.Equipment{
		Name:              strings.TrimSpace(req.Name),
		Description:       req.Description,
		RentalPricePerDay: req.RentalPricePerDay,
		Available:         available,
		CategoryID:        req.CategoryID,
		ImageURL:          req.ImageURL,
	}
	if err := s.Repo.CreateEquipment(ctx, eq); err != nil {
		return nil, err
	}
	// default:true on the column swallows an explicit false on insert.
	if !available {
		eq.Available = false
		if err := s.Repo.SaveEquipment(ctx, eq); err != nil {
			return nil, err
		}
	}

	s.afterEquipmentWrite(ctx, "equipment_created", eq)
	return eq, nil
}

func (s *CatalogService) PatchEquipment(ctx context.Context, id uint, req transport.PatchEquipmentRequest) (*models.Equipment, error) {
	eq, err := s.Repo.GetEquipment(ctx, id)
	if err != nil {
		return nil, notFound(err, "equipment")
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrValidation)
		}
		eq.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		eq.Description = *req.Description
	}
	if req.RentalPricePerDay != nil {
		if err := validPrice(*req.RentalPricePerDay); err != nil {
			return nil, err
		}
		eq.RentalPricePerDay = *req.RentalPricePerDay
	}
	if req.Available != nil {
		eq.Available = *req.Available
	}
	if req.CategoryID != nil {
		if err := s.checkEquipmentCategory(ctx, req.CategoryID); err != nil {
			return nil, err
		}
		eq.CategoryID = req.CategoryID
		eq.Category = nil
	}
	if req.ImageURL != nil {
		eq.ImageURL = *req.ImageURL
	}

	if err := s.Repo.SaveEquipment(ctx, eq); err != nil {
		return nil, err
	}

	s.afterEquipmentWrite(ctx, "equipment_updated", eq)
	return eq, nil
}

func (s *CatalogService) DeleteEquipment(ctx context.Context, id uint) error {
	if err := s.Repo.DeleteEquipment(ctx, id); err != nil {
		return notFound(err, "equipment")
	}
	s.afterDelete(ctx, models.KindEquipment, id)
	return nil
}

func (s *CatalogService) checkEquipmentCategory(ctx context.Context, id *uint) error {
	if id == nil {
		return nil
	}
	ok, err := s.Repo.EquipmentCategoryExists(ctx, *id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: category not found", ErrValidation)
	}
	return nil
}

func (s *CatalogService) afterEquipmentWrite(ctx context.Context, eventType string, eq *models.Equipment) {
	s.publish(ctx, eventType, models.KindEquipment, eq.ID, map[string]any{
		"equipment_id":         eq.ID,
		"name":                 eq.Name,
		"rental_price_per_day": eq.RentalPricePerDay,
		"available":            eq.Available,
	})
	s.index(ctx, models.EquipmentDocument(eq))
}
