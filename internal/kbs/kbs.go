// Package kbs implements the PinHelper: deriving a registration-lock token
// from a user PIN by exchanging it for the account's backed-up master key
// with the Key Backup Service enclave.
package kbs

import (
	"context"
	"fmt"

	"github.com/gwillem/signal-go/internal/signalcrypto"
)

// Credentials are the backup credentials carried by a LockedException from
// the verify endpoint, used to authenticate to the enclave.
type Credentials struct {
	Username string
	Password string
}

// NoDataError signals that the server believes the account has no KBS
// backup at all. Surfaced by the caller as an I/O-class error.
type NoDataError struct{}

func (NoDataError) Error() string { return "kbs: account has no backup data" }

// PinError signals a wrong PIN. TriesRemaining is the number of further
// attempts the enclave will accept before the backup is destroyed.
type PinError struct {
	TriesRemaining int
}

func (e PinError) Error() string {
	return fmt.Sprintf("kbs: incorrect pin, %d tries remaining", e.TriesRemaining)
}

// EnclaveClient exchanges a PIN for the master key backed up under it. It
// abstracts the channel to the SGX enclave (pinned MRENCLAVE, service id).
// HTTPEnclaveClient, the implementation in this package, performs no
// remote-attestation handshake.
type EnclaveClient interface {
	// RestoreMasterKey exchanges pin for the master key on file under
	// creds. Returns NoDataError or PinError on the corresponding enclave
	// responses.
	RestoreMasterKey(ctx context.Context, creds Credentials, pin string) ([]byte, error)
}

// Helper derives registration-lock tokens from a user PIN via the enclave.
type Helper struct {
	enclave EnclaveClient
}

// NewHelper creates a PinHelper backed by the given enclave client.
func NewHelper(enclave EnclaveClient) *Helper {
	return &Helper{enclave: enclave}
}

// DeriveRegistrationLock exchanges pin for the account's master key via the
// enclave, then derives the registration-lock token from it. Returns the
// raw master key alongside the token so the caller can persist both after a
// successful pin-locked verification.
func (h *Helper) DeriveRegistrationLock(ctx context.Context, creds Credentials, pin string) (masterKey []byte, token string, err error) {
	masterKey, err = h.enclave.RestoreMasterKey(ctx, creds, pin)
	if err != nil {
		return nil, "", err
	}

	token, err = signalcrypto.DeriveRegistrationLock(masterKey)
	if err != nil {
		return nil, "", fmt.Errorf("kbs: derive registration lock: %w", err)
	}
	return masterKey, token, nil
}
