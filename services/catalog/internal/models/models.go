package models

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

const (
	KindProduct   = "product"
	KindEquipment = "equipment"
)

type ProductCategory struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:100;not null" json:"name"`
	Slug        string `gorm:"size:120;uniqueIndex;not null" json:"slug"`
	Description string `json:"description"`
}

type EquipmentCategory struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:100;not null" json:"name"`
	Slug        string `gorm:"size:120;uniqueIndex;not null" json:"slug"`
	Description string `json:"description"`
}

type Product struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	Name        string           `gorm:"size:200;not null" json:"name"`
	Description string           `json:"description"`
	Price       decimal.Decimal  `gorm:"type:decimal(10,2);not null" json:"price"`
	Stock       int              `gorm:"not null;default:0;check:stock >= 0" json:"stock"`
	CategoryID  *uint            `gorm:"index" json:"category_id,omitempty"`
	Category    *ProductCategory `json:"category,omitempty"`
	ImageURL    string           `json:"image_url,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

type Equipment struct {
	ID                uint               `gorm:"primaryKey" json:"id"`
	Name              string             `gorm:"size:200;not null" json:"name"`
	Description       string             `json:"description"`
	RentalPricePerDay decimal.Decimal    `gorm:"type:decimal(10,2);not null" json:"rental_price_per_day"`
	Available         bool               `gorm:"not null;default:true" json:"available"`
	CategoryID        *uint              `gorm:"index" json:"category_id,omitempty"`
	Category          *EquipmentCategory `json:"category,omitempty"`
	ImageURL          string             `json:"image_url,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
}

func (Equipment) TableName() string { return "equipment" }

// Document is the search index representation shared by both kinds.
type Document struct {
	Kind        string          `json:"kind"`
	ID          uint            `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Available   bool            `json:"available"`
}

func (d Document) DocID() string {
	return d.Kind + "-" + strconv.FormatUint(uint64(d.ID), 10)
}

func ProductDocument(p *Product) Document {
	return Document{
		Kind:        KindProduct,
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Available:   p.Stock > 0,
	}
}

func EquipmentDocument(e *Equipment) Document {
	return Document{
		Kind:        KindEquipment,
		ID:          e.ID,
		Name:        e.Name,
		Description: e.Description,
		Price:       e.RentalPricePerDay,
		Available:   e.Available,
	}
}
