package payments

import (
	"strings"

	"github.com/rizal-mmpp/flarebee-payments/app/models"
)

// Gateway invoice statuses as sent on callbacks.
const (
	GatewayStatusPaid    = "PAID"
	GatewayStatusExpired = "EXPIRED"
	GatewayStatusFailed  = "FAILED"
)

func normalizeGatewayStatus(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// MapGatewayStatus maps a raw gateway status to the internal order status.
// The mapping is fixed and case-insensitive; anything outside the table maps
// to no transition (ok=false).
func MapGatewayStatus(raw string) (string, bool) {
	switch normalizeGatewayStatus(raw) {
	case GatewayStatusPaid:
		return models.OrderStatusCompleted, true
	case GatewayStatusExpired:
		return models.OrderStatusExpired, true
	case GatewayStatusFailed:
		return models.OrderStatusFailed, true
	default:
		return "", false
	}
}

// IsPaidStatus reports whether a raw gateway status confirms payment.
func IsPaidStatus(raw string) bool {
	return normalizeGatewayStatus(raw) == GatewayStatusPaid
}
