package models

import "time"

type ContactMessage struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	UserID        *uint      `gorm:"index" json:"user_id,omitempty"`
	Name          string     `gorm:"size:100;not null" json:"name"`
	Email         string     `gorm:"size:254;not null" json:"email"`
	Subject       string     `gorm:"size:200;not null" json:"subject"`
	Message       string     `gorm:"type:text;not null" json:"message"`
	CreatedAt     time.Time  `json:"created_at"`
	Responded     bool       `gorm:"not null;index" json:"responded"`
	AdminResponse string     `gorm:"type:text" json:"admin_response,omitempty"`
	RespondedAt   *time.Time `json:"responded_at,omitempty"`
}

const (
	MinRating = 1
	MaxRating = 5
)

type Review struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     *uint     `gorm:"index" json:"user_id,omitempty"`
	Name       string    `gorm:"size:100;not null" json:"name"`
	Email      string    `gorm:"size:254;not null" json:"email"`
	Company    string    `gorm:"size:100" json:"company,omitempty"`
	Rating     int       `gorm:"not null;check:rating BETWEEN 1 AND 5" json:"rating"`
	Comment    string    `gorm:"type:text;not null" json:"comment"`
	IsApproved bool      `gorm:"not null;index" json:"is_approved"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Dashboard is the admin overview. Products, equipment and orders are counted
// in the tables owned by the catalog and order services.
type Dashboard struct {
	TotalProducts   int64 `json:"total_products"`
	TotalEquipment  int64 `json:"total_equipment"`
	TotalOrders     int64 `json:"total_orders"`
	PendingMessages int64 `json:"pending_messages"`
}
