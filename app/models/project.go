package models

import "time"

const (
	ProjectStatusDraft           = "Draft"
	ProjectStatusAwaitingPayment = "Awaiting Payment"
	ProjectStatusInProgress      = "In Progress"
	ProjectStatusCompleted       = "Completed"
	ProjectStatusCancelled       = "Cancelled"
)

// Project is the delivery project linked to a SalesInvoice. Its status is
// advanced to "In Progress" once the linked invoice is confirmed paid.
// CustomerEmail may be empty; notification is skipped in that case.
type Project struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ProjectID      string    `gorm:"type:varchar(191);not null;uniqueIndex" json:"project_id"`
	SalesInvoiceID string    `gorm:"type:varchar(191);not null;index" json:"sales_invoice_id"`
	Name           string    `gorm:"type:varchar(191);not null;default:''" json:"name"`
	Status         string    `gorm:"type:varchar(32);not null;default:'Draft';index" json:"status"`
	CustomerName   string    `gorm:"type:varchar(191);not null;default:''" json:"customer_name"`
	CustomerEmail  string    `gorm:"type:varchar(191);not null;default:''" json:"customer_email"`
	CreatedAt      time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
