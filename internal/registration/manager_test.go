package registration

import (
	"context"
	"testing"

	"github.com/gwillem/signal-go/internal/kbs"
)

type fakeTransport struct {
	requestCodeErr error
	captchaSeen    string

	verifyErr    error
	verifyResult VerifyResult
	locked       *LockedError
	lockedOnce   bool // not read by VerifyCode: locked is returned on every call without a lock token

	reactivateErr error
	reactivated   bool
}

func (t *fakeTransport) RequestCode(ctx context.Context, voice bool, captcha string) error {
	t.captchaSeen = captcha
	return t.requestCodeErr
}

func (t *fakeTransport) VerifyCode(ctx context.Context, code, registrationLock string) (VerifyResult, error) {
	if t.locked != nil && registrationLock == "" {
		return VerifyResult{}, t.locked
	}
	if t.verifyErr != nil {
		return VerifyResult{}, t.verifyErr
	}
	return t.verifyResult, nil
}

func (t *fakeTransport) ReactivateAccount(ctx context.Context, acct *Account) error {
	t.reactivated = true
	return t.reactivateErr
}

type fakePinHelper struct {
	masterKey []byte
	token     string
	err       error
	gotPin    string
}

func (h *fakePinHelper) DeriveRegistrationLock(ctx context.Context, creds Credentials, pin string) ([]byte, string, error) {
	h.gotPin = pin
	return h.masterKey, h.token, h.err
}

type fakeManager struct {
	refreshErr  error
	storageErr  error
	profileErr  error
	refreshedAt int
	account     *Account
}

func (m *fakeManager) RefreshPreKeys(ctx context.Context) error       { return m.refreshErr }
func (m *fakeManager) RetrieveRemoteStorage(ctx context.Context) error { return m.storageErr }
func (m *fakeManager) SetEmptyProfile(ctx context.Context) error      { return m.profileErr }

func TestRegisterAndVerifyHappyPath(t *testing.T) {
	transport := &fakeTransport{verifyResult: VerifyResult{ACI: "aci-1", PNI: "pni-1"}}
	var built *fakeManager
	acct := &Account{Number: "+15551234567"}

	rm := New(acct, transport, nil, func(finished *Account) (Manager, error) {
		built = &fakeManager{account: finished}
		return built, nil
	}, nil)

	if err := rm.Register(context.Background(), false, ""); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if rm.State() != CodeRequested {
		t.Fatalf("state after Register: got %s, want CODE_REQUESTED", rm.State())
	}

	if err := rm.VerifyAccount(context.Background(), "123-456", ""); err != nil {
		t.Fatalf("VerifyAccount: %v", err)
	}
	if rm.State() != Registered {
		t.Fatalf("state after VerifyAccount: got %s, want REGISTERED", rm.State())
	}
	if built == nil {
		t.Fatal("manager was never built")
	}
	if built.account.ACI != "aci-1" || built.account.PNI != "pni-1" {
		t.Fatalf("account not populated: %+v", built.account)
	}
	if rm.account != nil {
		t.Fatal("account reference should be released after handoff")
	}
}

func TestRegisterCaptchaRequired(t *testing.T) {
	transport := &fakeTransport{requestCodeErr: &CaptchaRequiredError{Message: "needed"}}
	acct := &Account{Number: "+15551234567"}
	rm := New(acct, transport, nil, func(*Account) (Manager, error) { return &fakeManager{}, nil }, nil)

	err := rm.Register(context.Background(), false, "")
	if _, ok := err.(*CaptchaRequiredError); !ok {
		t.Fatalf("expected *CaptchaRequiredError, got %v", err)
	}
	if rm.State() != Idle {
		t.Fatalf("state should remain IDLE after captcha rejection, got %s", rm.State())
	}
}

func TestVerifyAccountPinLockedWithoutPin(t *testing.T) {
	transport := &fakeTransport{locked: &LockedError{TimeRemainingSeconds: 300}}
	acct := &Account{Number: "+15551234567"}
	rm := New(acct, transport, nil, func(*Account) (Manager, error) { return &fakeManager{}, nil }, nil)
	rm.state = CodeRequested

	err := rm.VerifyAccount(context.Background(), "123456", "")
	locked, ok := err.(*PinLockedError)
	if !ok {
		t.Fatalf("expected *PinLockedError, got %v", err)
	}
	if locked.TimeRemainingSeconds != 300 {
		t.Fatalf("TimeRemainingSeconds: got %d, want 300", locked.TimeRemainingSeconds)
	}
	if rm.State() != CodeRequested {
		t.Fatalf("state should remain CODE_REQUESTED, got %s", rm.State())
	}
}

func TestVerifyAccountPinLockedThenUnlocked(t *testing.T) {
	transport := &fakeTransport{
		locked: &LockedError{
			TimeRemainingSeconds: 300,
			BackupCredentials:    Credentials{Username: "backup-user", Password: "backup-pass"},
		},
		verifyResult: VerifyResult{ACI: "aci-2", PNI: "pni-2"},
	}
	pinHelper := &fakePinHelper{masterKey: []byte("master-key-32-bytes-padding-000"), token: "lock-token"}
	var built *fakeManager
	acct := &Account{Number: "+15551234567"}
	rm := New(acct, transport, pinHelper, func(finished *Account) (Manager, error) {
		built = &fakeManager{account: finished}
		return built, nil
	}, nil)
	rm.state = CodeRequested

	if err := rm.VerifyAccount(context.Background(), "123456", "1234"); err != nil {
		t.Fatalf("VerifyAccount: %v", err)
	}
	if pinHelper.gotPin != "1234" {
		t.Fatalf("pin passed to helper: got %q, want %q", pinHelper.gotPin, "1234")
	}
	if built == nil {
		t.Fatal("manager was never built")
	}
	if string(built.account.PinMasterKey) != "master-key-32-bytes-padding-000" {
		t.Fatalf("master key not carried onto account")
	}
	if built.account.Pin != "1234" {
		t.Fatalf("pin not carried onto account")
	}
}

func TestVerifyAccountIncorrectPin(t *testing.T) {
	transport := &fakeTransport{locked: &LockedError{TimeRemainingSeconds: 300}}
	pinHelper := &fakePinHelper{err: kbs.PinError{TriesRemaining: 4}}
	acct := &Account{Number: "+15551234567"}
	rm := New(acct, transport, pinHelper, func(*Account) (Manager, error) { return &fakeManager{}, nil }, nil)
	rm.state = CodeRequested

	err := rm.VerifyAccount(context.Background(), "123456", "0000")
	incorrect, ok := err.(*IncorrectPinError)
	if !ok {
		t.Fatalf("expected *IncorrectPinError, got %v", err)
	}
	if incorrect.TriesRemaining != 4 {
		t.Fatalf("TriesRemaining: got %d, want 4", incorrect.TriesRemaining)
	}
	if rm.State() != CodeRequested {
		t.Fatalf("state should remain CODE_REQUESTED after a wrong pin, got %s", rm.State())
	}
}

func TestVerifyAccountKBSNoData(t *testing.T) {
	transport := &fakeTransport{locked: &LockedError{TimeRemainingSeconds: 300}}
	pinHelper := &fakePinHelper{err: kbs.NoDataError{}}
	acct := &Account{Number: "+15551234567"}
	rm := New(acct, transport, pinHelper, func(*Account) (Manager, error) { return &fakeManager{}, nil }, nil)
	rm.state = CodeRequested

	err := rm.VerifyAccount(context.Background(), "123456", "0000")
	if _, ok := err.(kbs.NoDataError); !ok {
		t.Fatalf("expected kbs.NoDataError to surface as-is, got %v (%T)", err, err)
	}
}

func TestRegisterReactivatesExistingAccount(t *testing.T) {
	transport := &fakeTransport{}
	var built *fakeManager
	acct := &Account{Number: "+15551234567", ACI: "aci-prior"}
	rm := New(acct, transport, nil, func(finished *Account) (Manager, error) {
		built = &fakeManager{account: finished}
		return built, nil
	}, nil)

	if err := rm.Register(context.Background(), false, ""); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if !transport.reactivated {
		t.Fatal("expected ReactivateAccount to be called")
	}
	if rm.State() != Reactivated {
		t.Fatalf("state: got %s, want REACTIVATED", rm.State())
	}
	if built == nil {
		t.Fatal("manager was never built")
	}
}

func TestOperationsFailAfterOwnershipTransferred(t *testing.T) {
	transport := &fakeTransport{verifyResult: VerifyResult{ACI: "aci-1"}}
	acct := &Account{Number: "+15551234567"}
	rm := New(acct, transport, nil, func(*Account) (Manager, error) { return &fakeManager{}, nil }, nil)

	if err := rm.Register(context.Background(), false, ""); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := rm.VerifyAccount(context.Background(), "123456", ""); err != nil {
		t.Fatalf("VerifyAccount: %v", err)
	}

	if err := rm.VerifyAccount(context.Background(), "123456", ""); err == nil {
		t.Fatal("expected error calling VerifyAccount after ownership transferred")
	}
	if err := rm.Register(context.Background(), false, ""); err == nil {
		t.Fatal("expected error calling Register after ownership transferred")
	}
}
