package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/vente_shop/services/catalog/internal/models"
)

func (r *GormRepo) ListProductCategories(ctx context.Context) ([]models.ProductCategory, error) {
	var out []models.ProductCategory
	err := r.DB.WithContext(ctx).Order("name ASC").Find(&out).Error
	return out, err
}

func (r *GormRepo) ListEquipmentCategories(ctx context.Context) ([]models.EquipmentCategory, error) {
	var out []models.EquipmentCategory
	err := r.DB.WithContext(ctx).Order("name ASC").Find(&out).Error
	return out, err
}

func (r *GormRepo) CreateProductCategory(ctx context.Context, c *models.ProductCategory) error {
	return translate(r.DB.WithContext(ctx).Create(c).Error)
}

func (r *GormRepo) CreateEquipmentCategory(ctx context.Context, c *models.EquipmentCategory) error {
	return translate(r.DB.WithContext(ctx).Create(c).Error)
}

func (r *GormRepo) ProductCategoryExists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.ProductCategory{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *GormRepo) EquipmentCategoryExists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.EquipmentCategory{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// DeleteProductCategory detaches the products of the category before removing it.
func (r *GormRepo) DeleteProductCategory(ctx context.Context, id uint) error {
	return r.deleteCategory(ctx, &models.ProductCategory{}, &models.Product{}, id)
}

func (r *GormRepo) DeleteEquipmentCategory(ctx context.Context, id uint) error {
	return r.deleteCategory(ctx, &models.EquipmentCategory{}, &models.Equipment{}, id)
}

func (r *GormRepo) deleteCategory(ctx context.Context, category, item any, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(item).Where("category_id = ?", id).Update("category_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(category, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
