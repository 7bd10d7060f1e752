package registration

import (
	"context"
	"fmt"

	"github.com/gwillem/signal-go/internal/signalservice"
)

// HTTPTransport implements Transport against the Signal service REST API,
// tracking the verification session id created by RequestCode across the
// subsequent VerifyCode call.
//
// requestTemplate carries the account attributes and freshly generated
// identity/pre-key material for both the ACI and PNI identities; the
// caller (which owns key generation, per keygen.go) fills it in once
// before registration begins. VerifyCode only ever overwrites its
// SessionID and RecoveryPassword fields.
type HTTPTransport struct {
	client          *signalservice.HTTPClient
	number          string
	registrationID  int
	auth            signalservice.BasicAuth
	requestTemplate signalservice.PrimaryRegistrationRequest

	sessionID string
}

// NewHTTPTransport creates a Transport for number, authenticating requests
// (post-session) with auth and submitting reqTemplate (pre-populated with
// key material) on successful verification.
func NewHTTPTransport(client *signalservice.HTTPClient, number string, registrationID int, auth signalservice.BasicAuth, reqTemplate signalservice.PrimaryRegistrationRequest) *HTTPTransport {
	return &HTTPTransport{client: client, number: number, registrationID: registrationID, auth: auth, requestTemplate: reqTemplate}
}

func (t *HTTPTransport) RequestCode(ctx context.Context, voice bool, captcha string) error {
	session, err := t.client.CreateVerificationSession(ctx, t.number)
	if err != nil {
		return fmt.Errorf("registration: create session: %w", err)
	}
	t.sessionID = session.ID

	if !session.AllowedToRequestCode {
		for _, need := range session.RequestedInformation {
			if need == "captcha" {
				if captcha == "" {
					return &CaptchaRequiredError{Message: "server requires a captcha token"}
				}
				updated, err := t.client.UpdateSession(ctx, t.sessionID, &signalservice.UpdateSessionRequest{Captcha: captcha})
				if err != nil {
					return fmt.Errorf("registration: submit captcha: %w", err)
				}
				session = updated
			}
		}
	}

	transport := "sms"
	if voice {
		transport = "voice"
	}
	if _, err := t.client.RequestVerificationCode(ctx, t.sessionID, transport); err != nil {
		return fmt.Errorf("registration: request code: %w", err)
	}
	return nil
}

func (t *HTTPTransport) VerifyCode(ctx context.Context, code, registrationLock string) (VerifyResult, error) {
	session, err := t.client.SubmitVerificationCode(ctx, t.sessionID, code)
	if err != nil {
		return VerifyResult{}, fmt.Errorf("registration: submit code: %w", err)
	}
	if !session.Verified {
		return VerifyResult{}, fmt.Errorf("registration: session not verified")
	}

	req := t.requestTemplate
	req.SessionID = t.sessionID
	req.RecoveryPassword = registrationLock

	resp, locked, err := t.client.RegisterPrimaryDevice(ctx, &req, t.auth)
	if err != nil {
		return VerifyResult{}, fmt.Errorf("registration: register: %w", err)
	}
	if locked != nil {
		return VerifyResult{}, &LockedError{
			TimeRemainingSeconds: locked.TimeRemainingSeconds,
			BackupCredentials: Credentials{
				Username: locked.SVR2Username,
				Password: locked.SVR2Password,
			},
		}
	}

	return VerifyResult{ACI: resp.UUID, PNI: resp.PNI, StorageCapable: resp.StorageCapable}, nil
}

func (t *HTTPTransport) ReactivateAccount(ctx context.Context, acct *Account) error {
	attrs := t.requestTemplate.AccountAttributes
	return t.client.SetAccountAttributes(ctx, &attrs, t.auth)
}
