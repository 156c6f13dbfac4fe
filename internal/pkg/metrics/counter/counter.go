package counter

import (
	"context"
	"strconv"

	"github.com/rizal-mmpp/flarebee-payments/internal/pkg/cache"
)

const webhookOutcomesKey = "webhook:counters:outcomes"

// Webhook outcome fields tracked in the Redis hash.
const (
	OutcomeReceived   = "received"
	OutcomeDuplicate  = "duplicate"
	OutcomeRejected   = "rejected"
	OutcomeMalformed  = "malformed"
	OutcomeIgnored    = "ignored"
	OutcomeReconciled = "reconciled"
	OutcomeFailed     = "failed"
)

// AddWebhookOutcome increments the counter for one webhook outcome.
// Counting is best-effort; a cache failure never affects request handling.
func AddWebhookOutcome(outcome string) error {
	ctx := context.Background()
	return cache.GetClient().HIncrBy(ctx, webhookOutcomesKey, outcome, 1).Err()
}

// WebhookStats returns the current outcome counters.
func WebhookStats() (map[string]int64, error) {
	ctx := context.Background()
	raw, err := cache.GetClient().HGetAll(ctx, webhookOutcomesKey).Result()
	if err != nil {
		return nil, err
	}
	stats := make(map[string]int64, len(raw))
	for field, val := range raw {
		n, perr := strconv.ParseInt(val, 10, 64)
		if perr != nil {
			continue
		}
		stats[field] = n
	}
	return stats, nil
}
