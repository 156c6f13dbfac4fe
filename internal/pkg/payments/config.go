package payments

import (
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/rizal-mmpp/flarebee-payments/internal/pkg/env"
)

// ProviderXendit is the provider tag stored alongside webhook events.
const ProviderXendit = "xendit"

// ErrorPolicy controls how the webhook handler answers when reconciliation
// fails downstream: "acknowledge" swallows the failure into a 200 so the
// gateway stops retrying, "surface" returns a 500.
type ErrorPolicy string

const (
	ErrorPolicyAcknowledge ErrorPolicy = "acknowledge"
	ErrorPolicySurface     ErrorPolicy = "surface"
)

// Config carries all settings the payments core needs. It is loaded once at
// startup and injected at construction; the core never reads the process
// environment at call time.
type Config struct {
	CallbackToken        string
	ErrorPolicy          ErrorPolicy   `validate:"required,oneof=acknowledge surface"`
	MaxReconcileAttempts int           `validate:"gte=1"`
	RetryDelay           time.Duration `validate:"gt=0"`
}

// LoadConfigFromEnv builds a Config from the environment. The callback token
// may be empty: the handler answers per-request with a configuration error so
// that a misconfigured deployment is visible in gateway logs, not a crash.
func LoadConfigFromEnv() (Config, error) {
	cfg := Config{
		CallbackToken:        env.GetEnv("XENDIT_CALLBACK_VERIFICATION_TOKEN", ""),
		ErrorPolicy:          ErrorPolicy(env.GetEnv("WEBHOOK_ERROR_POLICY", string(ErrorPolicyAcknowledge))),
		MaxReconcileAttempts: 5,
		RetryDelay:           2 * time.Minute,
	}

	if raw := env.GetEnv("RECONCILE_MAX_ATTEMPTS", ""); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid RECONCILE_MAX_ATTEMPTS %q: %w", raw, err)
		}
		cfg.MaxReconcileAttempts = n
	}
	if raw := env.GetEnv("RECONCILE_RETRY_DELAY", ""); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid RECONCILE_RETRY_DELAY %q: %w", raw, err)
		}
		cfg.RetryDelay = d
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid payments config: %w", err)
	}
	return cfg, nil
}
