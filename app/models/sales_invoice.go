package models

import "time"

const (
	InvoicePaymentStatusUnpaid    = "Unpaid"
	InvoicePaymentStatusPaid      = "Paid"
	InvoicePaymentStatusOverdue   = "Overdue"
	InvoicePaymentStatusCancelled = "Cancelled"
)

// SalesInvoice is a B2B invoice raised out-of-band by the back office.
// InvoiceID carries the "SINV-..." reference used as external_id on the
// gateway invoice; GatewayInvoiceID is the gateway's own invoice id.
type SalesInvoice struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	InvoiceID        string    `gorm:"type:varchar(191);not null;uniqueIndex" json:"invoice_id"`
	GatewayInvoiceID string    `gorm:"type:varchar(191);not null;default:'';index" json:"gateway_invoice_id"`
	CustomerName     string    `gorm:"type:varchar(191);not null;default:''" json:"customer_name"`
	PaymentStatus    string    `gorm:"type:varchar(32);not null;default:'Unpaid';index" json:"payment_status"`
	PaymentMethod    string    `gorm:"type:varchar(64);not null;default:''" json:"payment_method"`
	GrandTotal       int64     `gorm:"not null;default:0" json:"grand_total"`
	Currency         string    `gorm:"type:varchar(8);not null;default:'IDR'" json:"currency"`
	CreatedAt        time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
