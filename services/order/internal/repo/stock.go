package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/vente_shop/services/order/internal/models"
)

func (r *GormRepo) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := r.DB.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *GormRepo) GetEquipment(ctx context.Context, id uint) (*models.Equipment, error) {
	var e models.Equipment
	if err := r.DB.WithContext(ctx).First(&e, id).Error; err != nil {
		return nil, translate(err)
	}
	return &e, nil
}

// ReserveProduct decrements stock only while enough is left.
func (r *GormRepo) ReserveProduct(ctx context.Context, id uint, quantity int) error {
	res := r.DB.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND stock >= ?", id, quantity).
		Update("stock", gorm.Expr("stock - ?", quantity))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}

// ReserveEquipment takes the unit only while it is still available.
func (r *GormRepo) ReserveEquipment(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Model(&models.Equipment{}).
		Where("id = ? AND available = ?", id, true).
		Update("available", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}

// Release returns what the item reserved. Deleted catalog rows are skipped.
func (r *GormRepo) Release(ctx context.Context, item models.OrderItem) error {
	db := r.DB.WithContext(ctx)
	switch {
	case item.ProductID != nil:
		return db.Model(&models.Product{}).
			Where("id = ?", *item.ProductID).
			Update("stock", gorm.Expr("stock + ?", item.Quantity)).Error
	case item.EquipmentID != nil:
		return db.Model(&models.Equipment{}).
			Where("id = ?", *item.EquipmentID).
			Update("available", true).Error
	}
	return nil
}
