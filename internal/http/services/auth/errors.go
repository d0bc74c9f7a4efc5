package auth

import (
	"errors"
	"fmt"

	"github.com/dropDatabas3/lockerbridge/internal/provider/digilocker"
	"github.com/dropDatabas3/lockerbridge/internal/security/cipher"
)

var (
	ErrInvalidState           = errors.New("invalid or expired state")
	ErrMissingVerifier        = errors.New("state has no pkce verifier")
	ErrMissingCode            = errors.New("authorization code is required")
	ErrInvalidCallbackURL     = errors.New("frontend callback must be an absolute http(s) url")
	ErrStateUnavailable       = errors.New("state store unavailable")
	ErrProviderExchangeFailed = errors.New("provider code exchange failed")
	ErrProviderTimeout        = errors.New("provider request timed out")
	ErrUserInfoFailed         = errors.New("failed to fetch user info")
	ErrDecryptionFailed       = cipher.ErrDecryptionFailed
)

// exchangeFailure envuelve un error del proveedor; un timeout conserva su
// propio sentinel además de ErrProviderExchangeFailed.
func exchangeFailure(err error) error {
	if errors.Is(err, digilocker.ErrTimeout) {
		return fmt.Errorf("%w: %w", ErrProviderExchangeFailed, ErrProviderTimeout)
	}
	return fmt.Errorf("%w: %v", ErrProviderExchangeFailed, err)
}
