package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/vente_shop/services/feedback/internal/models"
)

func (r *GormRepo) CreateMessage(ctx context.Context, msg *models.ContactMessage) error {
	return r.DB.WithContext(ctx).Create(msg).Error
}

func (r *GormRepo) GetMessage(ctx context.Context, id uint) (*models.ContactMessage, error) {
	var msg models.ContactMessage
	if err := r.DB.WithContext(ctx).First(&msg, id).Error; err != nil {
		return nil, translate(err)
	}
	return &msg, nil
}

// ListMessages returns newest first.
func (r *GormRepo) ListMessages(ctx context.Context, f MessageFilter) (int64, []models.ContactMessage, error) {
	q := r.DB.WithContext(ctx).Model(&models.ContactMessage{})
	if f.Responded != nil {
		q = q.Where("responded = ?", *f.Responded)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.ContactMessage, 0, f.Limit)
	if err := q.Order("created_at DESC, id DESC").Offset(f.Offset).Limit(f.Limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) RespondMessage(ctx context.Context, id uint, text string, at time.Time) error {
	res := r.DB.WithContext(ctx).Model(&models.ContactMessage{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"admin_response": text,
			"responded":      true,
			"responded_at":   at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
