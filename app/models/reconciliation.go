package models

import "time"

const (
	ReconciliationStatePending         = "pending"
	ReconciliationStateInvoicePaid     = "invoice_paid"
	ReconciliationStateProjectAdvanced = "project_advanced"
	ReconciliationStateCompleted       = "completed"
	ReconciliationStateFailed          = "failed"
)

// Reconciliation is the durable record of a B2B payment reconciliation.
// A paid gateway event creates one row per invoice; the service drives it
// through invoice_paid -> project_advanced -> completed. Rows that stall in
// a non-terminal state are re-driven by the background reaper until
// AttemptCount reaches its cap.
type Reconciliation struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	InvoiceID        string     `gorm:"type:varchar(191);not null;uniqueIndex" json:"invoice_id"`
	State            string     `gorm:"type:varchar(32);not null;default:'pending';index" json:"state"`
	PaymentMethod    string     `gorm:"type:varchar(64);not null;default:''" json:"payment_method"`
	GatewayInvoiceID string     `gorm:"type:varchar(191);not null;default:''" json:"gateway_invoice_id"`
	AttemptCount     int        `gorm:"not null;default:0" json:"attempt_count"`
	LastError        string     `gorm:"type:text" json:"last_error"`
	NextRetryAt      *time.Time `gorm:"type:timestamp;default:null;index" json:"next_retry_at,omitempty"`
	CompletedAt      *time.Time `gorm:"type:timestamp;default:null" json:"completed_at,omitempty"`
	CreatedAt        time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsTerminal reports whether the reconciliation needs no further driving.
func (r *Reconciliation) IsTerminal() bool {
	return r.State == ReconciliationStateCompleted || r.State == ReconciliationStateFailed
}
