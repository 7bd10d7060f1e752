// Package signal provides a high-level client for the identity, recipient
// resolution, and registration core of the Signal messenger protocol.
package signal

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/gwillem/signal-go/internal/kbs"
	"github.com/gwillem/signal-go/internal/libsignal"
	"github.com/gwillem/signal-go/internal/recipient"
	"github.com/gwillem/signal-go/internal/registration"
	"github.com/gwillem/signal-go/internal/signalcrypto"
	"github.com/gwillem/signal-go/internal/signalservice"
	"github.com/gwillem/signal-go/internal/store"
)

const defaultAPIURL = "https://chat.signal.org"

// Client is the main entry point for interacting with Signal's identity and
// registration APIs.
type Client struct {
	apiURL            string
	tlsConfig         *tls.Config
	dbPath            string
	debugDir          string
	logger            *log.Logger
	store             *store.Store
	deviceID          int
	aci               string
	pni               string
	password          string
	number            string
	registrationID    int
	pniRegistrationID int
	service           *signalservice.Service
}

// initService creates the Service after credentials are known.
func (c *Client) initService() {
	c.service = signalservice.NewService(signalservice.ServiceConfig{
		APIURL:        c.apiURL,
		TLSConfig:     c.tlsConfig,
		Store:         c.store,
		Auth:          c.auth(),
		LocalACI:      c.aci,
		LocalDeviceID: c.deviceID,
		Logger:        c.logger,
		DebugDir:      c.debugDir,
	})
}

// logf logs a message if the logger is non-nil.
func logf(logger *log.Logger, format string, args ...any) {
	if logger != nil {
		logger.Printf(format, args...)
	}
}

// auth returns the BasicAuth credentials for API requests.
func (c *Client) auth() signalservice.BasicAuth {
	return signalservice.BasicAuth{
		Username: fmt.Sprintf("%s.%d", c.aci, c.deviceID),
		Password: c.password,
	}
}

// storeSignedPreKeyFromBytes deserializes to extract the ID, then stores the raw bytes.
func (c *Client) storeSignedPreKeyFromBytes(data []byte, label string) error {
	if len(data) == 0 {
		return nil
	}
	rec, err := libsignal.DeserializeSignedPreKeyRecord(data)
	if err != nil {
		return fmt.Errorf("deserialize %s signed pre-key: %w", label, err)
	}
	defer rec.Destroy()
	id, err := rec.ID()
	if err != nil {
		return fmt.Errorf("%s signed pre-key ID: %w", label, err)
	}
	if err := c.store.StoreSignedPreKey(id, data); err != nil {
		return fmt.Errorf("store %s signed pre-key: %w", label, err)
	}
	return nil
}

// storeKyberPreKeyFromBytes deserializes to extract the ID, then stores the raw bytes.
func (c *Client) storeKyberPreKeyFromBytes(data []byte, label string) error {
	if len(data) == 0 {
		return nil
	}
	rec, err := libsignal.DeserializeKyberPreKeyRecord(data)
	if err != nil {
		return fmt.Errorf("deserialize %s Kyber pre-key: %w", label, err)
	}
	defer rec.Destroy()
	id, err := rec.ID()
	if err != nil {
		return fmt.Errorf("%s Kyber pre-key ID: %w", label, err)
	}
	if err := c.store.StoreKyberPreKey(id, data); err != nil {
		return fmt.Errorf("store %s Kyber pre-key: %w", label, err)
	}
	return nil
}

func (c *Client) storePreKeysForIdentities(aciSPK, aciKPK, pniSPK, pniKPK []byte) error {
	if err := c.storeSignedPreKeyFromBytes(aciSPK, "ACI"); err != nil {
		return err
	}
	if err := c.storeKyberPreKeyFromBytes(aciKPK, "ACI"); err != nil {
		return err
	}
	if err := c.storeSignedPreKeyFromBytes(pniSPK, "PNI"); err != nil {
		return err
	}
	return c.storeKyberPreKeyFromBytes(pniKPK, "PNI")
}

// Option configures a Client.
type Option func(*Client)

// WithAPIURL overrides the default REST API URL.
func WithAPIURL(url string) Option {
	return func(c *Client) { c.apiURL = url }
}

// WithTLSConfig overrides the TLS configuration used for connections.
// If nil (the default), Signal's pinned CA certificate is used.
func WithTLSConfig(tc *tls.Config) Option {
	return func(c *Client) { c.tlsConfig = tc }
}

// WithDBPath overrides the database path for persistent storage.
// If not set, defaults to $XDG_DATA_HOME/signal-go/<aci>.db after registration.
func WithDBPath(path string) Option {
	return func(c *Client) { c.dbPath = path }
}

// WithLogger sets the logger for verbose output.
// If not set, logging is disabled.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithDebugDir sets a debug directory that is passed on to the service
// configuration. Nothing in this module writes to it; no envelopes or
// request bodies are dumped there.
func WithDebugDir(path string) Option {
	return func(c *Client) { c.debugDir = path }
}

// NewClient creates a new Signal client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		apiURL:    defaultAPIURL,
		tlsConfig: signalservice.TLSConfig(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Open opens an existing account by phone number (e.g. "+31647272794").
// It finds the database in the default data directory, opens it, and loads credentials.
func Open(number string, opts ...Option) (*Client, error) {
	dbPath, err := DiscoverDBByNumber(number)
	if err != nil {
		return nil, err
	}
	c := NewClient(append(opts, WithDBPath(dbPath))...)
	if err := c.Load(); err != nil {
		return nil, err
	}
	return c, nil
}

// RegisterOptions configures interactive callbacks for Register.
type RegisterOptions struct {
	// Voice requests a voice call verification code instead of SMS.
	Voice bool
	// GetCode is called to prompt the user for the SMS/voice verification code.
	GetCode func() (string, error)
	// GetCaptcha is called if the server demands a CAPTCHA solution before it
	// will send a verification code. Returns the token from the
	// signalcaptcha:// redirect URL.
	GetCaptcha func() (string, error)
	// GetPin is called if the account carries a registration lock PIN.
	// May be nil if the caller has no way to prompt for a PIN, in which case
	// a locked account fails registration with a PinLockedError.
	GetPin func() (string, error)
}

// Register registers a new Signal account as a primary device, driving the
// request-code -> verify-code -> pin-unlock state machine to completion.
func (c *Client) Register(ctx context.Context, number string, opts RegisterOptions) error {
	material, err := signalservice.GenerateRegistrationMaterial()
	if err != nil {
		return fmt.Errorf("client: generate registration material: %w", err)
	}

	httpClient := signalservice.NewHTTPClient(c.apiURL, c.tlsConfig, c.logger)
	auth := signalservice.BasicAuth{Username: number, Password: material.Password}
	transport := registration.NewHTTPTransport(httpClient, number, material.RegistrationID, auth, material.Request)
	pinHelper := &registration.KBSPinHelper{Helper: kbs.NewHelper(kbs.NewHTTPEnclaveClient(c.apiURL, "backup", c.tlsConfig))}

	acct := &registration.Account{Number: number, Password: material.Password, RegistrationID: material.RegistrationID}
	rm := registration.New(acct, transport, pinHelper,
		func(finished *registration.Account) (registration.Manager, error) {
			return c.finishRegistration(number, material, finished)
		},
		nil,
	)

	captcha := ""
	for {
		err := rm.Register(ctx, opts.Voice, captcha)
		if err == nil {
			break
		}
		var cr *registration.CaptchaRequiredError
		if errors.As(err, &cr) {
			if opts.GetCaptcha == nil {
				return fmt.Errorf("client: register: %w", err)
			}
			token, cerr := opts.GetCaptcha()
			if cerr != nil {
				return cerr
			}
			captcha = token
			continue
		}
		return fmt.Errorf("client: register: %w", err)
	}

	if opts.GetCode == nil {
		return fmt.Errorf("client: register: no verification code callback provided")
	}
	code, err := opts.GetCode()
	if err != nil {
		return err
	}

	pin := ""
	for {
		err := rm.VerifyAccount(ctx, code, pin)
		if err == nil {
			return nil
		}
		var locked *registration.PinLockedError
		var incorrect *registration.IncorrectPinError
		switch {
		case errors.As(err, &locked):
			if opts.GetPin == nil {
				return fmt.Errorf("client: verify account: %w", err)
			}
			p, perr := opts.GetPin()
			if perr != nil {
				return perr
			}
			pin = p
		case errors.As(err, &incorrect):
			if opts.GetPin == nil {
				return fmt.Errorf("client: verify account: %w", err)
			}
			p, perr := opts.GetPin()
			if perr != nil {
				return perr
			}
			pin = p
		default:
			return fmt.Errorf("client: verify account: %w", err)
		}
	}
}

// finishRegistration builds the local store and identity state for a
// newly-verified account. It is invoked by the registration state machine
// exactly once, after ownership of the account has transferred to it.
func (c *Client) finishRegistration(number string, material *signalservice.RegistrationMaterial, acct *registration.Account) (registration.Manager, error) {
	c.number = number
	c.aci = acct.ACI
	c.pni = acct.PNI
	c.password = material.Password
	c.deviceID = 1
	c.registrationID = material.RegistrationID
	c.pniRegistrationID = material.PNIRegistrationID

	if err := c.openStore(); err != nil {
		return nil, fmt.Errorf("client: open store: %w", err)
	}

	if err := c.storePreKeysForIdentities(material.ACISignedPreKey, material.ACIKyberPreKey, material.PNISignedPreKey, material.PNIKyberPreKey); err != nil {
		return nil, fmt.Errorf("client: store pre-keys: %w", err)
	}

	aciPriv, err := libsignal.DeserializePrivateKey(material.ACIIdentityKeyPrivate)
	if err != nil {
		return nil, fmt.Errorf("client: deserialize ACI identity key: %w", err)
	}
	c.store.SetIdentity(aciPriv, uint32(material.RegistrationID))

	pniPriv, err := libsignal.DeserializePrivateKey(material.PNIIdentityKeyPrivate)
	if err != nil {
		return nil, fmt.Errorf("client: deserialize PNI identity key: %w", err)
	}
	c.store.SetPNIIdentity(pniPriv, uint32(material.PNIRegistrationID))

	storeAcct := &store.Account{
		Number:                number,
		ACI:                   acct.ACI,
		PNI:                   acct.PNI,
		Password:              material.Password,
		DeviceID:              1,
		RegistrationID:        material.RegistrationID,
		PNIRegistrationID:     material.PNIRegistrationID,
		ACIIdentityKeyPrivate: material.ACIIdentityKeyPrivate,
		ACIIdentityKeyPublic:  material.ACIIdentityKeyPublic,
		PNIIdentityKeyPrivate: material.PNIIdentityKeyPrivate,
		PNIIdentityKeyPublic:  material.PNIIdentityKeyPublic,
		ProfileKey:            material.ProfileKey,
		MasterKey:             acct.PinMasterKey,
	}
	if err := c.store.SaveAccount(storeAcct); err != nil {
		return nil, fmt.Errorf("client: save account: %w", err)
	}

	c.initService()
	return &registeredManager{client: c}, nil
}

// registeredManager adapts Client to registration.Manager, the collaborator
// the registration state machine drives once an account is verified.
type registeredManager struct {
	client *Client
}

func (m *registeredManager) RefreshPreKeys(ctx context.Context) error {
	return m.client.service.RefreshPreKeys(ctx)
}

// RetrieveRemoteStorage would pull group and configuration state from the
// Storage Service for a storage-capable account. Full storage manifest sync
// is not implemented; this is a soft no-op so registration still completes.
func (m *registeredManager) RetrieveRemoteStorage(ctx context.Context) error {
	return nil
}

func (m *registeredManager) SetEmptyProfile(ctx context.Context) error {
	acct, err := m.client.store.LoadAccount()
	if err != nil {
		return err
	}
	if acct == nil || len(acct.ProfileKey) == 0 {
		return fmt.Errorf("client: no profile key on file")
	}
	return m.client.service.SetProfile(ctx, acct.ACI, acct.ProfileKey, &signalservice.ProfileOptions{})
}

// Load opens an existing database and loads credentials without re-registering.
// If no explicit DB path is set, it discovers the most recent account database
// in the default data directory.
func (c *Client) Load() error {
	if c.dbPath == "" {
		discovered, err := DiscoverDB()
		if err != nil {
			return fmt.Errorf("client: %w", err)
		}
		c.dbPath = discovered
	}
	logf(c.logger, "opening database path=%s", c.dbPath)
	if err := c.openStore(); err != nil {
		return fmt.Errorf("client: open store: %w", err)
	}

	acct, err := c.store.LoadAccount()
	if err != nil {
		return fmt.Errorf("client: load account: %w", err)
	}
	if acct == nil {
		return fmt.Errorf("client: no account found in database")
	}

	c.number = acct.Number
	c.aci = acct.ACI
	c.pni = acct.PNI
	c.password = acct.Password
	c.deviceID = acct.DeviceID
	c.registrationID = acct.RegistrationID
	c.pniRegistrationID = acct.PNIRegistrationID

	identityPriv, err := libsignal.DeserializePrivateKey(acct.ACIIdentityKeyPrivate)
	if err != nil {
		return fmt.Errorf("client: deserialize identity key: %w", err)
	}
	c.store.SetIdentity(identityPriv, uint32(acct.RegistrationID))

	if len(acct.PNIIdentityKeyPrivate) > 0 {
		pniPriv, err := libsignal.DeserializePrivateKey(acct.PNIIdentityKeyPrivate)
		if err != nil {
			return fmt.Errorf("client: deserialize PNI identity key: %w", err)
		}
		c.store.SetPNIIdentity(pniPriv, uint32(acct.PNIRegistrationID))
	}

	c.initService()
	return nil
}

// Close closes the client's database connection.
func (c *Client) Close() error {
	if c.store != nil {
		return c.store.Close()
	}
	return nil
}

// Number returns the phone number associated with the account.
func (c *Client) Number() string { return c.number }

// DeviceID returns the device ID assigned during registration.
func (c *Client) DeviceID() int { return c.deviceID }

// ACI returns the Account Identity UUID.
func (c *Client) ACI() string { return c.aci }

// PNI returns the Phone Number Identity UUID.
func (c *Client) PNI() string { return c.pni }

// Store returns the underlying persistent store, for callers that need
// direct access to recipient resolution or protocol state.
func (c *Client) Store() *store.Store { return c.store }

// IdentityKey returns our public identity key bytes.
func (c *Client) IdentityKey() ([]byte, error) {
	if c.store == nil {
		return nil, fmt.Errorf("client: not loaded")
	}
	priv, err := c.store.GetIdentityKeyPair()
	if err != nil {
		return nil, err
	}
	pub, err := priv.PublicKey()
	priv.Destroy()
	if err != nil {
		return nil, err
	}
	defer pub.Destroy()
	return pub.Serialize()
}

// GetIdentityKey returns the stored identity key for a remote party,
// identified by ACI UUID.
func (c *Client) GetIdentityKey(theirUUID string) ([]byte, error) {
	if c.store == nil {
		return nil, fmt.Errorf("client: not loaded")
	}
	addr, err := libsignal.NewAddress(theirUUID, 1)
	if err != nil {
		return nil, err
	}
	defer addr.Destroy()

	pub, err := c.store.GetIdentityKey(addr)
	if err != nil {
		return nil, err
	}
	if pub == nil {
		return nil, fmt.Errorf("no identity key stored for %s", theirUUID)
	}
	defer pub.Destroy()
	return pub.Serialize()
}

// ResolveRecipient resolves an address to a stable recipient id, creating a
// new recipient or merging with an existing one as needed. highTrust should
// be true when the address comes from an authenticated source (e.g. an
// envelope's sender certificate), false for unauthenticated hints (e.g. a
// locally-typed phone number).
func (c *Client) ResolveRecipient(addr recipient.Address, highTrust bool) (recipient.ID, error) {
	if c.store == nil {
		return 0, fmt.Errorf("client: not loaded")
	}
	rs := c.store.Recipients()
	if rs == nil {
		return 0, fmt.Errorf("client: recipient store not attached")
	}
	return rs.Resolve(addr, highTrust)
}

// DeviceInfo is the public type for device information.
type DeviceInfo = signalservice.DeviceInfo

// Devices returns the list of registered devices for this account.
func (c *Client) Devices(ctx context.Context) ([]DeviceInfo, error) {
	if c.service == nil {
		return nil, fmt.Errorf("client: not loaded")
	}
	return c.service.GetDevices(ctx)
}

// UpdateAttributes updates account attributes on the Signal server.
func (c *Client) UpdateAttributes(ctx context.Context) error {
	if c.store == nil {
		return fmt.Errorf("client: not loaded")
	}
	acct, err := c.store.LoadAccount()
	if err != nil {
		return fmt.Errorf("client: load account: %w", err)
	}
	if acct == nil {
		return fmt.Errorf("client: no account found")
	}

	attrs, err := buildAccountAttributes(acct)
	if err != nil {
		return err
	}
	return c.service.SetAccountAttributes(ctx, attrs)
}

// AccountSettings contains configurable account settings.
type AccountSettings struct {
	// DiscoverableByPhoneNumber controls whether your number can be found via Contact Discovery.
	DiscoverableByPhoneNumber *bool
	// UnrestrictedUnidentifiedAccess allows anyone to send you sealed sender messages.
	UnrestrictedUnidentifiedAccess *bool
}

// UpdateAccountSettings updates account attributes on the server.
// Only non-nil fields in settings are updated.
func (c *Client) UpdateAccountSettings(ctx context.Context, settings *AccountSettings) error {
	if c.store == nil {
		return fmt.Errorf("client: not loaded")
	}
	acct, err := c.store.LoadAccount()
	if err != nil {
		return fmt.Errorf("client: load account: %w", err)
	}
	if acct == nil {
		return fmt.Errorf("client: no account found")
	}

	if len(acct.ProfileKey) == 0 {
		logf(c.logger, "generating new profile key for account")
		acct.ProfileKey = signalcrypto.GenerateProfileKey()
		if err := c.store.SaveAccount(acct); err != nil {
			return fmt.Errorf("client: save account with profile key: %w", err)
		}
	}

	if settings.DiscoverableByPhoneNumber == nil && settings.UnrestrictedUnidentifiedAccess == nil {
		return nil
	}

	attrs, err := buildAccountAttributes(acct)
	if err != nil {
		return err
	}
	if settings.DiscoverableByPhoneNumber != nil {
		attrs.DiscoverableByPhoneNumber = settings.DiscoverableByPhoneNumber
	}
	if settings.UnrestrictedUnidentifiedAccess != nil {
		attrs.UnrestrictedUnidentifiedAccess = *settings.UnrestrictedUnidentifiedAccess
	}

	return c.service.SetAccountAttributes(ctx, attrs)
}

// buildAccountAttributes creates the base AccountAttributes from an account,
// including the derived unidentified access key.
func buildAccountAttributes(acct *store.Account) (*signalservice.AccountAttributes, error) {
	attrs := &signalservice.AccountAttributes{
		RegistrationID:    acct.RegistrationID,
		PNIRegistrationID: acct.PNIRegistrationID,
		Voice:             true,
		Video:             true,
		FetchesMessages:   true,
		Capabilities: signalservice.Capabilities{
			Storage:                  true,
			VersionedExpirationTimer: true,
			AttachmentBackfill:       true,
		},
	}

	if len(acct.ProfileKey) > 0 {
		uak, err := signalcrypto.DeriveAccessKey(acct.ProfileKey)
		if err != nil {
			return nil, fmt.Errorf("client: derive access key: %w", err)
		}
		attrs.UnidentifiedAccessKey = base64.StdEncoding.EncodeToString(uak)
	}

	return attrs, nil
}

// RefreshPreKeys re-uploads local pre-keys to the server.
func (c *Client) RefreshPreKeys(ctx context.Context) error {
	if c.store == nil {
		return fmt.Errorf("client: not loaded")
	}
	return c.service.RefreshPreKeys(ctx)
}

func (c *Client) openStore() error {
	dbPath := c.dbPath
	if dbPath == "" {
		name := "default"
		if c.aci != "" {
			name = c.aci
		}
		dbPath = filepath.Join(store.DefaultDataDir(), name+".db")
	}

	s, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open store %s: %w", dbPath, err)
	}

	recipientPath := strings.TrimSuffix(dbPath, filepath.Ext(dbPath)) + ".recipients.json"
	rs, err := recipient.Load(recipientPath, recipient.MergeSinkFunc(s.MergeRecipients))
	if err != nil {
		s.Close()
		return fmt.Errorf("open recipient store %s: %w", recipientPath, err)
	}
	s.AttachRecipientStore(rs)

	c.store = s
	return nil
}

// ProfileInfo contains basic profile information for display.
type ProfileInfo struct {
	Number     string
	ACI        string
	PNI        string
	DeviceID   int
	ProfileKey []byte
}

// ServerProfile contains decrypted profile data from the server.
type ServerProfile struct {
	Name       string
	About      string
	AboutEmoji string
	Avatar     string // CDN path, empty if no avatar
}

// ProfileInfo returns the current account's profile information.
func (c *Client) ProfileInfo() (*ProfileInfo, error) {
	if c.store == nil {
		return nil, fmt.Errorf("client not loaded")
	}

	acct, err := c.store.LoadAccount()
	if err != nil {
		return nil, fmt.Errorf("load account: %w", err)
	}
	if acct == nil {
		return nil, fmt.Errorf("no account found")
	}

	return &ProfileInfo{
		Number:     acct.Number,
		ACI:        acct.ACI,
		PNI:        acct.PNI,
		DeviceID:   acct.DeviceID,
		ProfileKey: acct.ProfileKey,
	}, nil
}

// GetServerProfile fetches and decrypts the user's profile from the server.
func (c *Client) GetServerProfile(ctx context.Context) (*ServerProfile, error) {
	if c.store == nil {
		return nil, fmt.Errorf("client not loaded")
	}

	acct, err := c.store.LoadAccount()
	if err != nil {
		return nil, fmt.Errorf("load account: %w", err)
	}
	if acct == nil {
		return nil, fmt.Errorf("no account found")
	}
	if len(acct.ProfileKey) == 0 {
		return nil, fmt.Errorf("no profile key available")
	}

	resp, err := c.service.GetProfile(ctx, acct.ACI, acct.ProfileKey)
	if err != nil {
		return nil, err
	}

	cipher, err := signalcrypto.NewProfileCipher(acct.ProfileKey)
	if err != nil {
		return nil, fmt.Errorf("create profile cipher: %w", err)
	}

	name, _ := decryptProfileField(resp.Name, cipher)
	about, _ := decryptProfileField(resp.About, cipher)
	aboutEmoji, _ := decryptProfileField(resp.AboutEmoji, cipher)

	return &ServerProfile{
		Avatar:     resp.Avatar,
		Name:       name,
		About:      about,
		AboutEmoji: aboutEmoji,
	}, nil
}

// decryptProfileField decodes base64 and decrypts a profile field.
// Returns ("", nil) for empty input, or an error if decode/decrypt fails.
func decryptProfileField(encoded string, cipher *signalcrypto.ProfileCipher) (string, error) {
	if encoded == "" {
		return "", nil
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("decode profile field: %w", err)
	}
	return cipher.DecryptString(data)
}

// SetProfileName sets the profile name on the Signal server.
func (c *Client) SetProfileName(ctx context.Context, name string) error {
	return c.SetProfile(ctx, name, nil)
}

// SetProfile updates profile settings on the Signal server.
// If the account doesn't have a profile key, one is generated and saved.
func (c *Client) SetProfile(ctx context.Context, name string, numberSharing *bool) error {
	if c.store == nil {
		return fmt.Errorf("client not loaded")
	}

	acct, err := c.store.LoadAccount()
	if err != nil {
		return fmt.Errorf("load account: %w", err)
	}
	if acct == nil {
		return fmt.Errorf("no account found")
	}

	if len(acct.ProfileKey) == 0 {
		logf(c.logger, "generating new profile key for account")
		acct.ProfileKey = signalcrypto.GenerateProfileKey()
		if err := c.store.SaveAccount(acct); err != nil {
			return fmt.Errorf("save account with profile key: %w", err)
		}
	}

	var profileName *string
	if name != "" {
		profileName = &name
	} else if resp, err := c.service.GetProfile(ctx, acct.ACI, acct.ProfileKey); err == nil && resp.Name != "" {
		if cipher, cerr := signalcrypto.NewProfileCipher(acct.ProfileKey); cerr == nil {
			if currentName, derr := decryptProfileField(resp.Name, cipher); derr == nil && currentName != "" {
				profileName = &currentName
			}
		}
	}

	opts := &signalservice.ProfileOptions{
		Name:               profileName,
		PhoneNumberSharing: numberSharing,
	}
	return c.service.SetProfile(ctx, acct.ACI, acct.ProfileKey, opts)
}

// DiscoverDB finds the .db file in the default data directory.
// Returns an error if no database files exist or if multiple exist (ambiguous).
func DiscoverDB() (string, error) {
	dbFiles, err := listDBFiles()
	if err != nil {
		return "", err
	}

	if len(dbFiles) == 0 {
		return "", fmt.Errorf("no account database found in %s (run 'sgnl register' first)", store.DefaultDataDir())
	}
	if len(dbFiles) > 1 {
		var lines []string
		for _, path := range dbFiles {
			if number := getAccountNumber(path); number != "" {
				lines = append(lines, fmt.Sprintf("%s (%s)", number, filepath.Base(path)))
			} else {
				lines = append(lines, filepath.Base(path))
			}
		}
		return "", fmt.Errorf("multiple accounts found, specify which one with --account <number> or --db <path>:\n  %s",
			strings.Join(lines, "\n  "))
	}
	return dbFiles[0], nil
}

// DiscoverDBByNumber finds a database file by phone number.
func DiscoverDBByNumber(number string) (string, error) {
	if !strings.HasPrefix(number, "+") {
		number = "+" + number
	}

	dbFiles, err := listDBFiles()
	if err != nil {
		return "", err
	}

	for _, path := range dbFiles {
		if getAccountNumber(path) == number {
			return path, nil
		}
	}
	return "", fmt.Errorf("no account found for number %s", number)
}

// listDBFiles returns all .db files in the default data directory.
func listDBFiles() ([]string, error) {
	dir := store.DefaultDataDir()
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read data dir %s: %w", dir, err)
	}

	var dbFiles []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".db" {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, "-wal") || strings.HasSuffix(name, "-shm") {
			continue
		}
		dbFiles = append(dbFiles, filepath.Join(dir, name))
	}
	return dbFiles, nil
}

// getAccountNumber opens a database and returns the phone number, or empty string on error.
func getAccountNumber(dbPath string) string {
	s, err := store.Open(dbPath)
	if err != nil {
		return ""
	}
	defer s.Close()

	acct, err := s.LoadAccount()
	if err != nil || acct == nil {
		return ""
	}
	return acct.Number
}
