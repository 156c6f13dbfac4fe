package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/rizal-mmpp/flarebee-payments/app/models"
	"github.com/rizal-mmpp/flarebee-payments/internal/pkg/payments"
)

// memRepo is an in-memory payments.Repository for handler tests.
type memRepo struct {
	orders       map[string]*models.Order
	events       map[string]*models.PaymentWebhookEvent
	orderUpdates int
	orderErr     error
	nextEventID  uint
}

func newMemRepo() *memRepo {
	return &memRepo{
		orders: map[string]*models.Order{},
		events: map[string]*models.PaymentWebhookEvent{},
	}
}

func (m *memRepo) GetOrderByOrderID(orderID string) (*models.Order, error) {
	if m.orderErr != nil {
		return nil, m.orderErr
	}
	order, ok := m.orders[orderID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *order
	return &cp, nil
}

func (m *memRepo) UpdateOrderStatus(orderID, status, gatewayStatus string) error {
	order, ok := m.orders[orderID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	order.Status = status
	order.GatewayStatus = gatewayStatus
	m.orderUpdates++
	return nil
}

func (m *memRepo) MarkInvoicePaid(invoiceID, paymentMethod, gatewayInvoiceID string) error {
	return gorm.ErrRecordNotFound
}

func (m *memRepo) GetProjectByInvoiceID(invoiceID string) (*models.Project, error) {
	return nil, gorm.ErrRecordNotFound
}

func (m *memRepo) UpdateProjectStatus(projectID, status string) error {
	return gorm.ErrRecordNotFound
}

func (m *memRepo) CreateWebhookEventIfNotExists(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error) {
	key := event.Provider + "|" + event.ProviderEventID
	if stored, ok := m.events[key]; ok {
		cp := *stored
		return false, &cp, nil
	}
	m.nextEventID++
	event.ID = m.nextEventID
	cp := *event
	m.events[key] = &cp
	out := cp
	return true, &out, nil
}

func (m *memRepo) MarkWebhookProcessed(id uint, processingError string) error {
	for _, ev := range m.events {
		if ev.ID == id {
			now := time.Now()
			ev.ProcessedAt = &now
			ev.ProcessingError = processingError
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *memRepo) GetOrCreateReconciliation(invoiceID, paymentMethod, gatewayInvoiceID string) (*models.Reconciliation, error) {
	return &models.Reconciliation{
		InvoiceID:        invoiceID,
		State:            models.ReconciliationStatePending,
		PaymentMethod:    paymentMethod,
		GatewayInvoiceID: gatewayInvoiceID,
	}, nil
}

func (m *memRepo) SaveReconciliation(rec *models.Reconciliation) error { return nil }

func (m *memRepo) ListDueReconciliations(now time.Time, maxAttempts, limit int) ([]models.Reconciliation, error) {
	return nil, nil
}

func (m *memRepo) ListIncompleteReconciliations(limit int) ([]models.Reconciliation, error) {
	return nil, nil
}

type noopNotifier struct{}

func (noopNotifier) SendPaymentConfirmation(context.Context, payments.PaymentConfirmation) error {
	return nil
}

func newWebhookTestApp(repo payments.Repository, cfg payments.Config) *fiber.App {
	svc := payments.NewService(repo, noopNotifier{}, cfg)
	wc := NewWebhookController(svc)
	app := fiber.New()
	app.Post("/api/webhooks/xendit", wc.HandleXenditWebhook)
	return app
}

func postWebhook(t *testing.T, app *fiber.App, token, body string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/webhooks/xendit", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("x-callback-token", token)
	}
	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var parsed map[string]interface{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &parsed))
	}
	return resp.StatusCode, parsed
}

func testCfg() payments.Config {
	return payments.Config{
		CallbackToken:        "top-secret",
		ErrorPolicy:          payments.ErrorPolicyAcknowledge,
		MaxReconcileAttempts: 3,
		RetryDelay:           time.Minute,
	}
}

func TestHandleXenditWebhook_TokenNotConfigured(t *testing.T) {
	cfg := testCfg()
	cfg.CallbackToken = ""
	app := newWebhookTestApp(newMemRepo(), cfg)

	status, body := postWebhook(t, app, "anything", `{"id":"x","external_id":"rio-order-1","status":"PAID"}`)
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "callback_token_not_configured", body["error"])
}

func TestHandleXenditWebhook_InvalidToken(t *testing.T) {
	app := newWebhookTestApp(newMemRepo(), testCfg())

	status, body := postWebhook(t, app, "wrong", `{"id":"x","external_id":"rio-order-1","status":"PAID"}`)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "invalid_callback_token", body["error"])

	status, _ = postWebhook(t, app, "", `{"id":"x","external_id":"rio-order-1","status":"PAID"}`)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestHandleXenditWebhook_MissingExternalID(t *testing.T) {
	app := newWebhookTestApp(newMemRepo(), testCfg())

	status, body := postWebhook(t, app, "top-secret", `{"id":"x","status":"PAID"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "missing_external_id", body["error"])
}

func TestHandleXenditWebhook_MalformedBody(t *testing.T) {
	app := newWebhookTestApp(newMemRepo(), testCfg())

	status, body := postWebhook(t, app, "top-secret", `{"id":`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "invalid_payload", body["error"])
}

func TestHandleXenditWebhook_UnknownPrefixAcknowledged(t *testing.T) {
	repo := newMemRepo()
	app := newWebhookTestApp(repo, testCfg())

	status, body := postWebhook(t, app, "top-secret", `{"id":"x","external_id":"something-else","status":"PAID"}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["ignored"])
	assert.Zero(t, repo.orderUpdates)
}

func TestHandleXenditWebhook_B2COrderReconciled(t *testing.T) {
	repo := newMemRepo()
	repo.orders["rio-order-123"] = &models.Order{OrderID: "rio-order-123", Status: models.OrderStatusPending}
	app := newWebhookTestApp(repo, testCfg())

	status, body := postWebhook(t, app, "top-secret", `{"id":"xnd-1","external_id":"rio-order-123","status":"PAID"}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, 1, repo.orderUpdates)
	assert.Equal(t, models.OrderStatusCompleted, repo.orders["rio-order-123"].Status)

	// The recorded event carries the processing outcome
	require.Len(t, repo.events, 1)
	for _, ev := range repo.events {
		assert.True(t, ev.TokenValid)
		assert.NotNil(t, ev.ProcessedAt)
		assert.Empty(t, ev.ProcessingError)
	}
}

func TestHandleXenditWebhook_DuplicateDelivery(t *testing.T) {
	repo := newMemRepo()
	repo.orders["rio-order-123"] = &models.Order{OrderID: "rio-order-123", Status: models.OrderStatusPending}
	app := newWebhookTestApp(repo, testCfg())

	payload := `{"id":"xnd-1","external_id":"rio-order-123","status":"PAID"}`
	status, _ := postWebhook(t, app, "top-secret", payload)
	assert.Equal(t, fiber.StatusOK, status)

	status, body := postWebhook(t, app, "top-secret", payload)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["duplicate"])
	assert.Equal(t, 1, repo.orderUpdates, "duplicate delivery must not write")
}

func TestHandleXenditWebhook_ErrorPolicy(t *testing.T) {
	// Default policy: acknowledge downstream failures with 200
	repo := newMemRepo()
	repo.orders["rio-order-9"] = &models.Order{OrderID: "rio-order-9", Status: models.OrderStatusPending}
	repo.orderErr = errors.New("firestore timeout")
	app := newWebhookTestApp(repo, testCfg())

	status, body := postWebhook(t, app, "top-secret", `{"id":"e1","external_id":"rio-order-9","status":"PAID"}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, false, body["ok"])
	assert.Equal(t, "reconciliation_failed", body["error"])

	// Surface policy: same failure answers 500
	repo2 := newMemRepo()
	repo2.orderErr = errors.New("firestore timeout")
	cfg := testCfg()
	cfg.ErrorPolicy = payments.ErrorPolicySurface
	app2 := newWebhookTestApp(repo2, cfg)

	status, body = postWebhook(t, app2, "top-secret", `{"id":"e2","external_id":"rio-order-9","status":"PAID"}`)
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "reconciliation_failed", body["error"])
}

func TestHandleXenditWebhook_B2BPaidEvent(t *testing.T) {
	// memRepo has no invoices, so the B2B path parks the reconciliation;
	// the handler still answers by policy.
	repo := newMemRepo()
	app := newWebhookTestApp(repo, testCfg())

	status, _ := postWebhook(t, app, "top-secret", `{"id":"xnd-2","external_id":"SINV-2024-01","status":"PAID","payment_channel":"BCA VA"}`)
	assert.Equal(t, fiber.StatusOK, status)
}
