package models

import "time"

const (
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
	OrderStatusExpired   = "expired"
	OrderStatusFailed    = "failed"
	OrderStatusCancelled = "cancelled"
)

// Order is a B2C storefront order. The OrderID column carries the
// merchant-assigned reference ("rio-order-...") that the payment gateway
// echoes back as external_id on invoice callbacks.
type Order struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	OrderID       string    `gorm:"type:varchar(191);not null;uniqueIndex" json:"order_id"`
	UserID        string    `gorm:"type:varchar(191);not null;index" json:"user_id"`
	Status        string    `gorm:"type:varchar(32);not null;default:'pending';index" json:"status"`
	GatewayStatus string    `gorm:"type:varchar(64);not null;default:''" json:"gateway_status"`
	ItemsJSON     string    `gorm:"type:longtext" json:"items_json"`
	TotalAmount   int64     `gorm:"not null;default:0" json:"total_amount"`
	Currency      string    `gorm:"type:varchar(8);not null;default:'IDR'" json:"currency"`
	CreatedAt     time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
