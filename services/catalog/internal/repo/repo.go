package repo

import (
	"errors"

	"gorm.io/gorm"

	"github.com/Skotchmaster/vente_shop/services/catalog/internal/models"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate")
)

type GormRepo struct {
	DB *gorm.DB
}

func (r *GormRepo) Migrate() error {
	return r.DB.AutoMigrate(
		&models.ProductCategory{},
		&models.EquipmentCategory{},
		&models.Product{},
		&models.Equipment{},
	)
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}

type ListFilter struct {
	CategoryID *uint
	Available  *bool
	Offset     int
	Limit      int
}
