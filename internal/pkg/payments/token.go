package payments

import (
	"crypto/hmac"
	"errors"
	"strings"
)

var (
	// ErrCallbackTokenNotConfigured means the server has no verification
	// token set; no caller can be authenticated until it is.
	ErrCallbackTokenNotConfigured = errors.New("callback verification token is not configured")
	// ErrCallbackTokenMismatch means the caller-supplied token did not match.
	ErrCallbackTokenMismatch = errors.New("invalid callback token")
)

// VerifyCallbackToken checks the caller-supplied x-callback-token against the
// configured secret. Comparison is constant time.
func VerifyCallbackToken(got, want string) error {
	if strings.TrimSpace(want) == "" {
		return ErrCallbackTokenNotConfigured
	}
	if !hmac.Equal([]byte(strings.TrimSpace(got)), []byte(want)) {
		return ErrCallbackTokenMismatch
	}
	return nil
}
