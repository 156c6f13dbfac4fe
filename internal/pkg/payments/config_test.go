package payments

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromEnv_Defaults(t *testing.T) {
	cfg, err := LoadConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, ErrorPolicyAcknowledge, cfg.ErrorPolicy)
	assert.Equal(t, 5, cfg.MaxReconcileAttempts)
	assert.Equal(t, 2*time.Minute, cfg.RetryDelay)
	assert.Empty(t, cfg.CallbackToken)
}

func TestLoadConfigFromEnv_Overrides(t *testing.T) {
	t.Setenv("XENDIT_CALLBACK_VERIFICATION_TOKEN", "top-secret")
	t.Setenv("WEBHOOK_ERROR_POLICY", "surface")
	t.Setenv("RECONCILE_MAX_ATTEMPTS", "8")
	t.Setenv("RECONCILE_RETRY_DELAY", "30s")

	cfg, err := LoadConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "top-secret", cfg.CallbackToken)
	assert.Equal(t, ErrorPolicySurface, cfg.ErrorPolicy)
	assert.Equal(t, 8, cfg.MaxReconcileAttempts)
	assert.Equal(t, 30*time.Second, cfg.RetryDelay)
}

func TestLoadConfigFromEnv_Invalid(t *testing.T) {
	t.Setenv("WEBHOOK_ERROR_POLICY", "swallow")
	_, err := LoadConfigFromEnv()
	assert.Error(t, err)

	t.Setenv("WEBHOOK_ERROR_POLICY", "acknowledge")
	t.Setenv("RECONCILE_MAX_ATTEMPTS", "not-a-number")
	_, err = LoadConfigFromEnv()
	assert.Error(t, err)
}
