package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Skotchmaster/vente_shop/services/order/internal/models"
)

type ListFilter struct {
	UserID *uint
	Status models.Status
	Offset int
	Limit  int
}

// CreateOrder inserts the order together with its items.
func (r *GormRepo) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.DB.WithContext(ctx).Create(order).Error
}

func (r *GormRepo) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := r.DB.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&order, id).Error; err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

func (r *GormRepo) ListOrders(ctx context.Context, f ListFilter) (int64, []models.Order, error) {
	q := r.DB.WithContext(ctx).Model(&models.Order{})
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var orders []models.Order
	if err := q.Preload("Items").
		Order("created_at DESC").Order("id DESC").
		Offset(f.Offset).Limit(f.Limit).
		Find(&orders).Error; err != nil {
		return 0, nil, err
	}
	return total, orders, nil
}

// SetStatus moves the order from one status to another. ErrStale means
// the order was no longer in status from.
func (r *GormRepo) SetStatus(ctx context.Context, id uint, from, to models.Status) error {
	res := r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStale
	}
	return nil
}

// MarkPaid records the payment and confirms a pending order. It reports
// whether the status moved to CONFIRMED. Other statuses are left alone so a
// late webhook never drags a shipped or rejected order back to CONFIRMED.
func (r *GormRepo) MarkPaid(ctx context.Context, id uint, sessionID, intentID string) (bool, error) {
	confirmed := false
	err := r.Transaction(ctx, func(tx *GormRepo) error {
		updates := map[string]any{"payment_status": models.PaymentPaid}
		if sessionID != "" {
			updates["payment_session_id"] = sessionID
		}
		if intentID != "" {
			updates["payment_intent_id"] = intentID
		}

		res := tx.DB.Model(&models.Order{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}

		err := tx.SetStatus(ctx, id, models.StatusPending, models.StatusConfirmed)
		switch {
		case err == nil:
			confirmed = true
		case !errors.Is(err, ErrStale):
			return err
		}
		return nil
	})
	return confirmed, err
}

// MarkPaymentFailed flips a pending payment to FAILED. It reports whether a row changed.
func (r *GormRepo) MarkPaymentFailed(ctx context.Context, id uint) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND payment_status = ?", id, models.PaymentPending).
		Update("payment_status", models.PaymentFailed)
	return res.RowsAffected > 0, res.Error
}

func (r *GormRepo) SetPaymentSession(ctx context.Context, id uint, sessionID string) error {
	res := r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", id).
		Update("payment_session_id", sessionID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
