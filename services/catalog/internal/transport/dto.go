package transport

import "github.com/shopspring/decimal"

type CreateProductRequest struct {
	Name        string          `json:"name" validate:"required,max=200"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock" validate:"gte=0"`
	CategoryID  *uint           `json:"category_id"`
	ImageURL    string          `json:"image_url" validate:"omitempty,url"`
}

type PatchProductRequest struct {
	Name        *string          `json:"name" validate:"omitempty,max=200"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock" validate:"omitempty,gte=0"`
	CategoryID  *uint            `json:"category_id"`
	ImageURL    *string          `json:"image_url" validate:"omitempty,url"`
}

type CreateEquipmentRequest struct {
	Name              string          `json:"name" validate:"required,max=200"`
	Description       string          `json:"description"`
	RentalPricePerDay decimal.Decimal `json:"rental_price_per_day"`
	Available         *bool           `json:"available"`
	CategoryID        *uint           `json:"category_id"`
	ImageURL          string          `json:"image_url" validate:"omitempty,url"`
}

type PatchEquipmentRequest struct {
	Name              *string          `json:"name" validate:"omitempty,max=200"`
	Description       *string          `json:"description"`
	RentalPricePerDay *decimal.Decimal `json:"rental_price_per_day"`
	Available         *bool            `json:"available"`
	CategoryID        *uint            `json:"category_id"`
	ImageURL          *string          `json:"image_url" validate:"omitempty,url"`
}

type CreateCategoryRequest struct {
	Kind        string `json:"kind" validate:"required,oneof=product equipment"`
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
}
