package registration

import (
	"context"

	"github.com/gwillem/signal-go/internal/kbs"
)

// KBSPinHelper adapts a *kbs.Helper to the registration package's PinHelper
// boundary, converting between the two packages' Credentials types.
type KBSPinHelper struct {
	Helper *kbs.Helper
}

func (h *KBSPinHelper) DeriveRegistrationLock(ctx context.Context, creds Credentials, pin string) ([]byte, string, error) {
	return h.Helper.DeriveRegistrationLock(ctx, kbs.Credentials{
		Username: creds.Username,
		Password: creds.Password,
	}, pin)
}
