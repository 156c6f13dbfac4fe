package payments

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/rizal-mmpp/flarebee-payments/app/models"
)

// Service reconciles local order/invoice/project state against authoritative
// payment-gateway notifications.
type Service struct {
	repo     Repository
	notifier Notifier
	cfg      Config
}

// NewService creates a payments service from injected collaborators.
func NewService(repo Repository, notifier Notifier, cfg Config) *Service {
	return &Service{repo: repo, notifier: notifier, cfg: cfg}
}

// NewServiceFromDB creates a payments service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB, notifier Notifier, cfg Config) *Service {
	return NewService(NewRepository(db), notifier, cfg)
}

// Config returns the configuration the service was built with.
func (s *Service) Config() Config {
	return s.cfg
}

// RecordWebhookEvent persists webhook payloads idempotently. The second
// delivery of the same provider event id reports created=false and must not
// trigger any reconciliation work.
func (s *Service) RecordWebhookEvent(ctx context.Context, in WebhookEventInput) (bool, *models.PaymentWebhookEvent, error) {
	_ = ctx
	provider := strings.ToLower(strings.TrimSpace(in.Provider))
	if provider == "" {
		return false, nil, errors.New("provider is required")
	}
	eventID := strings.TrimSpace(in.ProviderEventID)
	if eventID == "" {
		sum := sha256.Sum256([]byte(in.PayloadJSON))
		eventID = "hash:" + hex.EncodeToString(sum[:])
	}

	event := &models.PaymentWebhookEvent{
		Provider:        provider,
		ProviderEventID: eventID,
		ExternalID:      strings.TrimSpace(in.ExternalID),
		GatewayStatus:   normalizeGatewayStatus(in.GatewayStatus),
		PayloadJSON:     in.PayloadJSON,
		TokenValid:      in.TokenValid,
	}
	return s.repo.CreateWebhookEventIfNotExists(event)
}

// MarkWebhookProcessed marks an event as processed and stores an optional error.
func (s *Service) MarkWebhookProcessed(ctx context.Context, webhookEventID uint, processingErr error) error {
	_ = ctx
	if webhookEventID == 0 {
		return errors.New("webhook_event_id is required")
	}
	errMsg := ""
	if processingErr != nil {
		errMsg = processingErr.Error()
	}
	return s.repo.MarkWebhookProcessed(webhookEventID, errMsg)
}

// ReconcileOrder applies a gateway status notification to a B2C order.
// A missing order and an unmapped status are benign; the only write happens
// when the stored state actually changes.
func (s *Service) ReconcileOrder(ctx context.Context, orderID, gatewayStatus string) error {
	_ = ctx
	raw := normalizeGatewayStatus(gatewayStatus)

	order, err := s.repo.GetOrderByOrderID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warnf("[Payments] Order %s not found for gateway status %s, skipping", orderID, raw)
			return nil
		}
		return fmt.Errorf("order lookup failed for %s: %w", orderID, err)
	}

	status, mapped := MapGatewayStatus(raw)
	if !mapped {
		// Unhandled gateway status: keep the internal status but persist the
		// raw status so operators can see what the gateway last reported.
		if order.GatewayStatus == raw {
			return nil
		}
		log.Infof("[Payments] Order %s: unhandled gateway status %s recorded, internal status stays %s", orderID, raw, order.Status)
		return s.repo.UpdateOrderStatus(orderID, order.Status, raw)
	}

	if order.Status == status && order.GatewayStatus == raw {
		log.Debugf("[Payments] Order %s already up to date (status=%s)", orderID, status)
		return nil
	}

	if err := s.repo.UpdateOrderStatus(orderID, status, raw); err != nil {
		return fmt.Errorf("order %s status update failed: %w", orderID, err)
	}
	log.Infof("[Payments] Order %s: %s -> %s (gateway %s)", orderID, order.Status, status, raw)
	return nil
}

// ReconcileInvoice handles a gateway notification for a B2B sales invoice.
// Anything other than a paid status is a no-op. A paid status creates (or
// resumes) the durable reconciliation record and drives it forward.
func (s *Service) ReconcileInvoice(ctx context.Context, invoiceID, gatewayStatus, paymentMethod, gatewayInvoiceID string) error {
	raw := normalizeGatewayStatus(gatewayStatus)
	if !IsPaidStatus(raw) {
		log.Infof("[Payments] Invoice %s: gateway status %s requires no action", invoiceID, raw)
		return nil
	}

	rec, err := s.repo.GetOrCreateReconciliation(invoiceID, paymentMethod, gatewayInvoiceID)
	if err != nil {
		return fmt.Errorf("reconciliation record for %s: %w", invoiceID, err)
	}
	return s.driveReconciliation(ctx, rec)
}

// DriveReconciliation re-drives an existing reconciliation, resuming from
// its recorded state. Used by the background worker.
func (s *Service) DriveReconciliation(ctx context.Context, invoiceID string) error {
	rec, err := s.repo.GetOrCreateReconciliation(invoiceID, "", "")
	if err != nil {
		return fmt.Errorf("reconciliation record for %s: %w", invoiceID, err)
	}
	return s.driveReconciliation(ctx, rec)
}

// DueReconciliations lists reconciliations ready for a re-drive.
func (s *Service) DueReconciliations(limit int) ([]models.Reconciliation, error) {
	return s.repo.ListDueReconciliations(time.Now(), s.cfg.MaxReconcileAttempts, limit)
}

// IncompleteReconciliations lists every reconciliation that has not
// completed, including permanently failed ones awaiting manual follow-up.
func (s *Service) IncompleteReconciliations(limit int) ([]models.Reconciliation, error) {
	return s.repo.ListIncompleteReconciliations(limit)
}

func (s *Service) driveReconciliation(ctx context.Context, rec *models.Reconciliation) error {
	if rec.IsTerminal() {
		return nil
	}

	if rec.State == models.ReconciliationStatePending {
		if err := s.repo.MarkInvoicePaid(rec.InvoiceID, rec.PaymentMethod, rec.GatewayInvoiceID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Nothing to retry against; park it and let the error
				// propagate so the handler's policy decides the response.
				cause := fmt.Errorf("sales invoice %s not found", rec.InvoiceID)
				if ferr := s.failReconciliation(rec, cause); ferr != nil {
					return ferr
				}
				return cause
			}
			return s.deferReconciliation(rec, fmt.Errorf("mark invoice %s paid: %w", rec.InvoiceID, err))
		}
		log.Infof("[Payments] Invoice %s marked paid (method=%s)", rec.InvoiceID, rec.PaymentMethod)
		rec.State = models.ReconciliationStateInvoicePaid
		if err := s.repo.SaveReconciliation(rec); err != nil {
			return err
		}
	}

	var project *models.Project
	if rec.State == models.ReconciliationStateInvoicePaid {
		p, err := s.repo.GetProjectByInvoiceID(rec.InvoiceID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Invoice is paid but there is nothing to advance. This needs
				// manual follow-up, so the record is parked as failed.
				log.Errorf("[Payments] No project linked to invoice %s, reconciliation parked for manual follow-up", rec.InvoiceID)
				return s.failReconciliation(rec, fmt.Errorf("no project linked to invoice %s", rec.InvoiceID))
			}
			return s.deferReconciliation(rec, fmt.Errorf("project lookup for invoice %s: %w", rec.InvoiceID, err))
		}
		if err := s.repo.UpdateProjectStatus(p.ProjectID, models.ProjectStatusInProgress); err != nil {
			return s.deferReconciliation(rec, fmt.Errorf("advance project %s: %w", p.ProjectID, err))
		}
		log.Infof("[Payments] Project %s advanced to %q", p.ProjectID, models.ProjectStatusInProgress)
		project = p
		rec.State = models.ReconciliationStateProjectAdvanced
		if err := s.repo.SaveReconciliation(rec); err != nil {
			return err
		}
	}

	if rec.State == models.ReconciliationStateProjectAdvanced {
		if project == nil {
			p, err := s.repo.GetProjectByInvoiceID(rec.InvoiceID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					log.Warnf("[Payments] Project for invoice %s disappeared before notification", rec.InvoiceID)
					return s.completeReconciliation(rec)
				}
				return s.deferReconciliation(rec, fmt.Errorf("project lookup for invoice %s: %w", rec.InvoiceID, err))
			}
			project = p
		}
		if project.CustomerEmail == "" {
			log.Warnf("[Payments] Project %s has no customer email, skipping payment confirmation", project.ProjectID)
			return s.completeReconciliation(rec)
		}
		if err := s.notifier.SendPaymentConfirmation(ctx, PaymentConfirmation{
			To:            project.CustomerEmail,
			CustomerName:  project.CustomerName,
			ProjectName:   project.Name,
			InvoiceID:     rec.InvoiceID,
			PaymentMethod: rec.PaymentMethod,
		}); err != nil {
			// Notification is best-effort at the webhook boundary; the reaper
			// retries delivery without re-running the earlier steps.
			log.Errorf("[Payments] Payment confirmation for invoice %s failed: %v", rec.InvoiceID, err)
			if derr := s.deferReconciliation(rec, fmt.Errorf("send payment confirmation: %w", err)); derr != nil && !errors.Is(derr, err) {
				return derr
			}
			return nil
		}
		log.Infof("[Payments] Payment confirmation for invoice %s sent to %s", rec.InvoiceID, project.CustomerEmail)
		return s.completeReconciliation(rec)
	}

	return nil
}

// deferReconciliation records a transient failure and schedules a re-drive,
// or parks the record as failed once the attempt limit is reached. It returns
// the causing error so the caller's error policy can decide the response.
func (s *Service) deferReconciliation(rec *models.Reconciliation, cause error) error {
	rec.AttemptCount++
	rec.LastError = cause.Error()
	if rec.AttemptCount >= s.cfg.MaxReconcileAttempts {
		rec.State = models.ReconciliationStateFailed
		rec.NextRetryAt = nil
		log.Errorf("[Payments] Reconciliation for invoice %s failed permanently after %d attempts: %v", rec.InvoiceID, rec.AttemptCount, cause)
	} else {
		next := time.Now().Add(s.cfg.RetryDelay * time.Duration(rec.AttemptCount))
		rec.NextRetryAt = &next
		log.Warnf("[Payments] Reconciliation for invoice %s deferred (attempt %d/%d): %v", rec.InvoiceID, rec.AttemptCount, s.cfg.MaxReconcileAttempts, cause)
	}
	if err := s.repo.SaveReconciliation(rec); err != nil {
		return err
	}
	return cause
}

// failReconciliation parks a record that cannot make progress without manual
// intervention. Call sites decide whether the cause propagates.
func (s *Service) failReconciliation(rec *models.Reconciliation, cause error) error {
	rec.AttemptCount++
	rec.State = models.ReconciliationStateFailed
	rec.LastError = cause.Error()
	rec.NextRetryAt = nil
	return s.repo.SaveReconciliation(rec)
}

func (s *Service) completeReconciliation(rec *models.Reconciliation) error {
	now := time.Now()
	rec.State = models.ReconciliationStateCompleted
	rec.LastError = ""
	rec.NextRetryAt = nil
	rec.CompletedAt = &now
	return s.repo.SaveReconciliation(rec)
}
