package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Skotchmaster/vente_shop/services/order/internal/models"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrStale means the row changed between read and conditional write.
	ErrStale = errors.New("stale")
)

type GormRepo struct {
	DB *gorm.DB
}

// Migrate creates the order tables. Catalog tables belong to the catalog service.
func (r *GormRepo) Migrate() error {
	return r.DB.AutoMigrate(&models.Order{}, &models.OrderItem{})
}

// Transaction runs fn against a repo bound to one database transaction.
func (r *GormRepo) Transaction(ctx context.Context, fn func(tx *GormRepo) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormRepo{DB: tx})
	})
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
