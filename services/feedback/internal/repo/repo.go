package repo

import (
	"errors"

	"gorm.io/gorm"

	"github.com/Skotchmaster/vente_shop/services/feedback/internal/models"
)

var ErrNotFound = errors.New("not found")

type GormRepo struct {
	DB *gorm.DB
}

// Migrate creates the feedback tables only.
func (r *GormRepo) Migrate() error {
	return r.DB.AutoMigrate(&models.ContactMessage{}, &models.Review{})
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

type MessageFilter struct {
	Responded *bool
	Offset    int
	Limit     int
}

type ReviewFilter struct {
	ApprovedOnly bool
	Offset       int
	Limit        int
}
