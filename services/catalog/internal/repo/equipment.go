package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/vente_shop/services/catalog/internal/models"
)

func (r *GormRepo) GetEquipment(ctx context.Context, id uint) (*models.Equipment, error) {
	eq := models.Equipment{}
	if err := r.DB.WithContext(ctx).Preload("Category").Where("id = ?", id).First(&eq).Error; err != nil {
		return nil, translate(err)
	}
	return &eq, nil
}

func (r *GormRepo) ListEquipment(ctx context.Context, f ListFilter) (int64, []models.Equipment, error) {
	q := r.DB.WithContext(ctx).Model(&models.Equipment{})
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.Available != nil {
		q = q.Where("available = ?", *f.Available)
	}

	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.Equipment, 0, f.Limit)
	if err := q.Preload("Category").Order("id ASC").Offset(f.Offset).Limit(f.Limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) CreateEquipment(ctx context.Context, eq *models.Equipment) error {
	return translate(r.DB.WithContext(ctx).Create(eq).Error)
}

func (r *GormRepo) SaveEquipment(ctx context.Context, eq *models.Equipment) error {
	return translate(r.DB.WithContext(ctx).Omit("Category").Save(eq).Error)
}

func (r *GormRepo) DeleteEquipment(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.Equipment{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepo) SearchEquipment(ctx context.Context, q string, limit int) ([]models.Equipment, error) {
	pattern := likePattern(q)
	items := make([]models.Equipment, 0, limit)
	err := r.DB.WithContext(ctx).
		Where(`LOWER(name) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\'`, pattern, pattern).
		Order("id ASC").
		Limit(limit).
		Find(&items).Error
	return items, err
}
