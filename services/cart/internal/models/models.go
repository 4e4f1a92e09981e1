package models

import (
	"fmt"
	"strconv"
)

const (
	TypeProduct   = "product"
	TypeEquipment = "equipment"
)

// Line is one cart entry. Days is 0 for products.
type Line struct {
	Type     string `json:"type"`
	ID       uint   `json:"id"`
	Quantity int    `json:"quantity"`
	Days     int    `json:"days"`
}

func (l Line) Field() string {
	return Field(l.Type, l.ID)
}

func Field(itemType string, id uint) string {
	return itemType + ":" + strconv.FormatUint(uint64(id), 10)
}

// Owner identifies whose cart is addressed: a signed-in user or an anonymous session.
type Owner struct {
	UserID    uint
	SessionID string
}

func (o Owner) Authenticated() bool {
	return o.UserID != 0
}

func (o Owner) Key() string {
	if o.UserID != 0 {
		return fmt.Sprintf("cart:user:%d", o.UserID)
	}
	return "cart:session:" + o.SessionID
}
