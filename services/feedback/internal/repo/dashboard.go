package repo

import (
	"context"

	"github.com/Skotchmaster/vente_shop/services/feedback/internal/models"
)

// Tables owned by other services, counted read-only.
const (
	productsTable  = "products"
	equipmentTable = "equipment"
	ordersTable    = "orders"
)

func (r *GormRepo) Dashboard(ctx context.Context) (models.Dashboard, error) {
	var d models.Dashboard
	db := r.DB.WithContext(ctx)

	counts := []struct {
		table string
		dst   *int64
	}{
		{productsTable, &d.TotalProducts},
		{equipmentTable, &d.TotalEquipment},
		{ordersTable, &d.TotalOrders},
	}
	for _, c := range counts {
		if err := db.Table(c.table).Count(c.dst).Error; err != nil {
			return d, err
		}
	}

	if err := db.Model(&models.ContactMessage{}).Where("responded = ?", false).Count(&d.PendingMessages).Error; err != nil {
		return d, err
	}
	return d, nil
}
