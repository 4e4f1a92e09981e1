package transport

type AddItemRequest struct {
	Type     string `json:"type" validate:"required,oneof=product equipment"`
	ID       uint   `json:"id" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,gt=0"`
	Days     int    `json:"days" validate:"gte=0"`
}

type UpdateItemRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
	Days     int `json:"days" validate:"gte=0"`
}
