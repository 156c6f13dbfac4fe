package payments

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rizal-mmpp/flarebee-payments/app/models"
)

// Repository provides DB operations used by the payments service.
type Repository interface {
	GetOrderByOrderID(orderID string) (*models.Order, error)
	UpdateOrderStatus(orderID, status, gatewayStatus string) error
	MarkInvoicePaid(invoiceID, paymentMethod, gatewayInvoiceID string) error
	GetProjectByInvoiceID(invoiceID string) (*models.Project, error)
	UpdateProjectStatus(projectID, status string) error
	CreateWebhookEventIfNotExists(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error)
	MarkWebhookProcessed(id uint, processingError string) error
	GetOrCreateReconciliation(invoiceID, paymentMethod, gatewayInvoiceID string) (*models.Reconciliation, error)
	SaveReconciliation(rec *models.Reconciliation) error
	ListDueReconciliations(now time.Time, maxAttempts, limit int) ([]models.Reconciliation, error)
	ListIncompleteReconciliations(limit int) ([]models.Reconciliation, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a payments repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) GetOrderByOrderID(orderID string) (*models.Order, error) {
	var order models.Order
	if err := r.db.Where("order_id = ?", orderID).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *gormRepository) UpdateOrderStatus(orderID, status, gatewayStatus string) error {
	tx := r.db.Model(&models.Order{}).
		Where("order_id = ?", orderID).
		Updates(map[string]interface{}{
			"status":         status,
			"gateway_status": gatewayStatus,
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *gormRepository) MarkInvoicePaid(invoiceID, paymentMethod, gatewayInvoiceID string) error {
	updates := map[string]interface{}{
		"payment_status": models.InvoicePaymentStatusPaid,
		"payment_method": paymentMethod,
	}
	if gatewayInvoiceID != "" {
		updates["gateway_invoice_id"] = gatewayInvoiceID
	}
	tx := r.db.Model(&models.SalesInvoice{}).
		Where("invoice_id = ?", invoiceID).
		Updates(updates)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *gormRepository) GetProjectByInvoiceID(invoiceID string) (*models.Project, error) {
	var project models.Project
	if err := r.db.Where("sales_invoice_id = ?", invoiceID).First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *gormRepository) UpdateProjectStatus(projectID, status string) error {
	tx := r.db.Model(&models.Project{}).
		Where("project_id = ?", projectID).
		Update("status", status)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *gormRepository) CreateWebhookEventIfNotExists(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider"},
			{Name: "provider_event_id"},
		},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.PaymentWebhookEvent
	if err := r.db.Where("provider = ? AND provider_event_id = ?", event.Provider, event.ProviderEventID).
		First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

func (r *gormRepository) MarkWebhookProcessed(id uint, processingError string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"processed_at":     &now,
		"processing_error": processingError,
	}
	return r.db.Model(&models.PaymentWebhookEvent{}).Where("id = ?", id).Updates(updates).Error
}

func (r *gormRepository) GetOrCreateReconciliation(invoiceID, paymentMethod, gatewayInvoiceID string) (*models.Reconciliation, error) {
	rec := &models.Reconciliation{
		InvoiceID:        invoiceID,
		State:            models.ReconciliationStatePending,
		PaymentMethod:    paymentMethod,
		GatewayInvoiceID: gatewayInvoiceID,
	}
	if err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "invoice_id"}},
		DoNothing: true,
	}).Create(rec).Error; err != nil {
		return nil, err
	}

	var stored models.Reconciliation
	if err := r.db.Where("invoice_id = ?", invoiceID).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *gormRepository) SaveReconciliation(rec *models.Reconciliation) error {
	return r.db.Save(rec).Error
}

func (r *gormRepository) ListDueReconciliations(now time.Time, maxAttempts, limit int) ([]models.Reconciliation, error) {
	var recs []models.Reconciliation
	err := r.db.
		Where("state NOT IN ?", []string{models.ReconciliationStateCompleted, models.ReconciliationStateFailed}).
		Where("attempt_count < ?", maxAttempts).
		Where("next_retry_at IS NULL OR next_retry_at <= ?", now).
		Order("id").
		Limit(limit).
		Find(&recs).Error
	return recs, err
}

func (r *gormRepository) ListIncompleteReconciliations(limit int) ([]models.Reconciliation, error) {
	var recs []models.Reconciliation
	err := r.db.
		Where("state <> ?", models.ReconciliationStateCompleted).
		Order("id").
		Limit(limit).
		Find(&recs).Error
	return recs, err
}
