package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/rizal-mmpp/flarebee-payments/internal/pkg/metrics/counter"
	"github.com/rizal-mmpp/flarebee-payments/internal/pkg/payments"
)

// WebhookController handles inbound payment-gateway callbacks. Each request
// walks Received -> Authenticated -> Classified -> Reconciled -> Acknowledged;
// how a downstream reconciliation error is answered depends on the configured
// error policy.
type WebhookController struct {
	svc      *payments.Service
	validate *validator.Validate
}

// NewWebhookController wires the controller with its service dependency.
func NewWebhookController(svc *payments.Service) *WebhookController {
	return &WebhookController{
		svc:      svc,
		validate: validator.New(),
	}
}

// HandleXenditWebhook processes a gateway invoice callback.
func (wc *WebhookController) HandleXenditWebhook(c *fiber.Ctx) error {
	_ = counter.AddWebhookOutcome(counter.OutcomeReceived)
	rawBody := append([]byte(nil), c.BodyRaw()...)

	cfg := wc.svc.Config()
	if err := payments.VerifyCallbackToken(c.Get("x-callback-token"), cfg.CallbackToken); err != nil {
		_ = counter.AddWebhookOutcome(counter.OutcomeRejected)
		if errors.Is(err, payments.ErrCallbackTokenNotConfigured) {
			log.Error("[Webhook] Callback verification token is not configured")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "callback_token_not_configured"})
		}
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid_callback_token"})
	}

	var payload payments.InvoiceCallback
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		_ = counter.AddWebhookOutcome(counter.OutcomeMalformed)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload"})
	}
	if strings.TrimSpace(payload.ExternalID) == "" {
		_ = counter.AddWebhookOutcome(counter.OutcomeMalformed)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing_external_id"})
	}
	if err := wc.validate.Struct(payload); err != nil {
		_ = counter.AddWebhookOutcome(counter.OutcomeMalformed)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload", "detail": err.Error()})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	eventID := firstHeaderValue(c, "webhook-id", "x-webhook-id")
	if eventID == "" {
		// The gateway retries the same invoice event with the same id+status,
		// which makes this pair a stable dedup key.
		eventID = payload.ID + ":" + strings.ToUpper(strings.TrimSpace(payload.Status))
	}
	created, stored, err := wc.svc.RecordWebhookEvent(ctx, payments.WebhookEventInput{
		Provider:        payments.ProviderXendit,
		ProviderEventID: eventID,
		ExternalID:      payload.ExternalID,
		GatewayStatus:   payload.Status,
		PayloadJSON:     string(rawBody),
		TokenValid:      true,
	})
	if err != nil {
		log.Errorf("[Webhook] Failed to persist webhook event %s: %v", eventID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "webhook_persist_failed"})
	}
	if !created {
		_ = counter.AddWebhookOutcome(counter.OutcomeDuplicate)
		log.Infof("[Webhook] Duplicate delivery of event %s, skipping reconciliation", eventID)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "duplicate": true})
	}

	ref := payments.ClassifyExternalRef(payload.ExternalID)
	var reconcileErr error
	switch ref.Kind {
	case payments.RefKindOrder:
		reconcileErr = wc.svc.ReconcileOrder(ctx, ref.ID, payload.Status)
	case payments.RefKindInvoice:
		reconcileErr = wc.svc.ReconcileInvoice(ctx, ref.ID, payload.Status, payload.PaymentReference(), payload.ID)
	default:
		log.Warnf("[Webhook] Unrecognized external_id %q, acknowledging without action", payload.ExternalID)
		_ = wc.svc.MarkWebhookProcessed(ctx, stored.ID, nil)
		_ = counter.AddWebhookOutcome(counter.OutcomeIgnored)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "ignored": true})
	}

	_ = wc.svc.MarkWebhookProcessed(ctx, stored.ID, reconcileErr)
	if reconcileErr != nil {
		_ = counter.AddWebhookOutcome(counter.OutcomeFailed)
		log.Errorf("[Webhook] Reconciliation for %s failed: %v", payload.ExternalID, reconcileErr)
		if cfg.ErrorPolicy == payments.ErrorPolicySurface {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "reconciliation_failed"})
		}
		// Acknowledge so the gateway stops retrying; the background worker
		// re-drives anything the reconciliation record left unfinished.
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": false, "error": "reconciliation_failed"})
	}

	_ = counter.AddWebhookOutcome(counter.OutcomeReconciled)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
}

func firstHeaderValue(c *fiber.Ctx, keys ...string) string {
	for _, k := range keys {
		v := strings.TrimSpace(c.Get(k))
		if v != "" {
			return v
		}
	}
	return ""
}
