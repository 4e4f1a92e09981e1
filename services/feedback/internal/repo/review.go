package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/vente_shop/services/feedback/internal/models"
)

func (r *GormRepo) CreateReview(ctx context.Context, rev *models.Review) error {
	return r.DB.WithContext(ctx).Create(rev).Error
}

func (r *GormRepo) GetReview(ctx context.Context, id uint) (*models.Review, error) {
	var rev models.Review
	if err := r.DB.WithContext(ctx).First(&rev, id).Error; err != nil {
		return nil, translate(err)
	}
	return &rev, nil
}

// ListReviews orders approved reviews best first and the moderation queue newest first.
func (r *GormRepo) ListReviews(ctx context.Context, f ReviewFilter) (int64, []models.Review, error) {
	q := r.DB.WithContext(ctx).Model(&models.Review{})
	order := "created_at DESC, id DESC"
	if f.ApprovedOnly {
		q = q.Where("is_approved = ?", true)
		order = "rating DESC, created_at DESC, id DESC"
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.Review, 0, f.Limit)
	if err := q.Order(order).Offset(f.Offset).Limit(f.Limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) ApproveReview(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Model(&models.Review{}).Where("id = ?", id).Update("is_approved", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepo) DeleteReview(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.Review{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
