package registration

import (
	"context"
	"fmt"
	"strings"

	"github.com/gwillem/signal-go/internal/kbs"
)

// State is a position in the registration state machine.
type State int

const (
	Idle State = iota
	CodeRequested
	Verified
	Registered
	Reactivated
)

func (s State) String() string {
	switch s {
	case CodeRequested:
		return "CODE_REQUESTED"
	case Verified:
		return "VERIFIED"
	case Registered:
		return "REGISTERED"
	case Reactivated:
		return "REACTIVATED"
	default:
		return "IDLE"
	}
}

// Manager is the long-lived post-registration handle. RegistrationManager
// constructs one on success and transfers ownership of the account to it.
type Manager interface {
	RefreshPreKeys(ctx context.Context) error
	RetrieveRemoteStorage(ctx context.Context) error
	SetEmptyProfile(ctx context.Context) error
}

// ManagerFactory builds the long-lived Manager from a finished account. The
// RegistrationManager calls this exactly once and nulls its own account
// reference as soon as it returns successfully, before the Manager is used
// or handed to the onManager callback.
type ManagerFactory func(acct *Account) (Manager, error)

// RegistrationManager drives the request-code -> verify-code -> finish
// state machine described in the component design. It owns the account
// file exclusively until verification completes, at which point ownership
// transfers to the Manager built by newManager.
type RegistrationManager struct {
	state     State
	account   *Account // nulled once ownership transfers to the Manager
	transport Transport
	pinHelper PinHelper

	newManager ManagerFactory
	onManager  func(Manager)

	lastCredentials Credentials
}

// New creates a RegistrationManager for account, still owning it.
func New(account *Account, transport Transport, pinHelper PinHelper, newManager ManagerFactory, onManager func(Manager)) *RegistrationManager {
	return &RegistrationManager{
		state:      Idle,
		account:    account,
		transport:  transport,
		pinHelper:  pinHelper,
		newManager: newManager,
		onManager:  onManager,
	}
}

// State returns the manager's current state.
func (m *RegistrationManager) State() State { return m.state }

// Register requests a verification code, or silently reactivates an
// account that already holds an ACI from a prior life.
func (m *RegistrationManager) Register(ctx context.Context, voice bool, captcha string) error {
	if m.account == nil {
		return &UnexpectedError{Msg: "register called after ownership transferred"}
	}
	if m.state != Idle && m.state != CodeRequested {
		return &UnexpectedError{Msg: fmt.Sprintf("register called from state %s", m.state)}
	}

	captcha = strings.Replace(captcha, "signalcaptcha://", "", 1)

	if m.state == Idle && m.account.HasACI() {
		if err := m.transport.ReactivateAccount(ctx, m.account); err == nil {
			m.account.Registered = true
			m.state = Reactivated
			return m.handoff(ctx)
		}
		// Reactivation failed over I/O: fall back to the normal path.
	}

	if err := m.transport.RequestCode(ctx, voice, captcha); err != nil {
		if cr, ok := err.(*CaptchaRequiredError); ok {
			return cr
		}
		return err
	}
	m.state = CodeRequested
	return nil
}

// VerifyAccount submits the user-entered code, optionally resolving a
// registration lock with pin, and on success hands the account off to the
// long-lived Manager.
func (m *RegistrationManager) VerifyAccount(ctx context.Context, code, pin string) error {
	if m.account == nil {
		return &UnexpectedError{Msg: "verifyAccount called after ownership transferred"}
	}
	if m.state != CodeRequested {
		return &UnexpectedError{Msg: fmt.Sprintf("verifyAccount called from state %s", m.state)}
	}

	code = strings.ReplaceAll(code, "-", "")

	result, err := m.transport.VerifyCode(ctx, code, "")
	if err == nil {
		m.account.ACI = result.ACI
		m.account.PNI = result.PNI
		m.account.Pin = ""
		m.account.PinMasterKey = nil
		m.state = Verified
		return m.finishRegistration(ctx, result)
	}

	locked, ok := err.(*LockedError)
	if !ok {
		return err
	}
	if pin == "" {
		return &PinLockedError{TimeRemainingSeconds: locked.TimeRemainingSeconds}
	}

	masterKey, token, kerr := m.pinHelper.DeriveRegistrationLock(ctx, locked.BackupCredentials, pin)
	if kerr != nil {
		return classifyKBSError(kerr)
	}

	result, err = m.transport.VerifyCode(ctx, code, token)
	if err != nil {
		if _, ok := err.(*LockedError); ok {
			// The PIN matched KBS but the server still rejects it: a logic bug.
			return &UnexpectedError{Msg: "server returned LOCKED after a successful KBS pin exchange"}
		}
		return err
	}

	m.account.ACI = result.ACI
	m.account.PNI = result.PNI
	m.account.Pin = pin
	m.account.PinMasterKey = masterKey
	m.state = Verified
	return m.finishRegistration(ctx, result)
}

// classifyKBSError maps the KBS-side error taxonomy onto the registration
// error taxonomy: a wrong PIN becomes IncorrectPinError (with tries
// remaining); NoDataError surfaces as-is, an I/O-class error.
func classifyKBSError(err error) error {
	if pe, ok := err.(kbs.PinError); ok {
		return &IncorrectPinError{TriesRemaining: pe.TriesRemaining}
	}
	return err
}

// finishRegistration constructs the Manager, transfers account ownership to
// it, and runs the post-verification steps.
func (m *RegistrationManager) finishRegistration(ctx context.Context, result VerifyResult) error {
	acct := m.account
	acct.Registered = true

	mgr, err := m.newManager(acct)
	if err != nil {
		return fmt.Errorf("registration: build manager: %w", err)
	}
	m.account = nil // release ownership before the Manager is exposed
	m.state = Registered

	if err := mgr.RefreshPreKeys(ctx); err != nil {
		return fmt.Errorf("registration: refresh pre-keys: %w", err)
	}
	if result.StorageCapable {
		if err := mgr.RetrieveRemoteStorage(ctx); err != nil {
			return fmt.Errorf("registration: retrieve remote storage: %w", err)
		}
	}
	if err := mgr.SetEmptyProfile(ctx); err != nil {
		// A missing dependency here is a soft warning, not fatal.
		_ = err
	}

	if m.onManager != nil {
		m.onManager(mgr)
	}
	return nil
}

// handoff builds the Manager for a silently reactivated account, without
// running the post-verification pre-key/profile steps (the account is
// already fully provisioned).
func (m *RegistrationManager) handoff(ctx context.Context) error {
	acct := m.account
	mgr, err := m.newManager(acct)
	if err != nil {
		return fmt.Errorf("registration: build manager: %w", err)
	}
	m.account = nil
	if m.onManager != nil {
		m.onManager(mgr)
	}
	return nil
}
