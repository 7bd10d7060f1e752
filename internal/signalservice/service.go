package signalservice

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/gwillem/signal-go/internal/libsignal"
	"github.com/gwillem/signal-go/internal/signalcrypto"
	"github.com/gwillem/signal-go/internal/store"
)

// Service provides high-level access to the Signal API.
// It owns the transport, store, and authentication credentials.
type Service struct {
	transport     *Transport
	store         *store.Store
	auth          BasicAuth
	localACI      string
	localDeviceID int
	tlsConfig     *tls.Config
	logger        *log.Logger
	debugDir      string
}

// ServiceConfig holds configuration for creating a Service.
type ServiceConfig struct {
	APIURL        string
	TLSConfig     *tls.Config
	Store         *store.Store
	Auth          BasicAuth
	LocalACI      string
	LocalDeviceID int
	Logger        *log.Logger
	DebugDir      string
}

// NewService creates a new Signal API service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		transport:     NewTransport(cfg.APIURL, cfg.TLSConfig, cfg.Logger),
		store:         cfg.Store,
		auth:          cfg.Auth,
		localACI:      cfg.LocalACI,
		localDeviceID: cfg.LocalDeviceID,
		tlsConfig:     cfg.TLSConfig,
		logger:        cfg.Logger,
		debugDir:      cfg.DebugDir,
	}
}

// --- Keys API ---

// GetPreKeys fetches a recipient's pre-key bundle.
func (s *Service) GetPreKeys(ctx context.Context, destination string, deviceID int) (*PreKeyResponse, error) {
	path := fmt.Sprintf("/v2/keys/%s/%d", destination, deviceID)
	body, status, err := s.transport.Get(ctx, path, &s.auth)
	if err != nil {
		return nil, fmt.Errorf("get pre-keys: %w", err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("get pre-keys: status %d: %s", status, body)
	}

	var result PreKeyResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("unmarshal pre-keys: %w", err)
	}
	return &result, nil
}

// RefreshPreKeys loads stored pre-keys and re-uploads them to the server.
func (s *Service) RefreshPreKeys(ctx context.Context) error {
	if err := s.uploadStoredPreKeys(ctx, "aci", 1); err != nil {
		return fmt.Errorf("refresh ACI pre-keys: %w", err)
	}
	if err := s.uploadStoredPreKeys(ctx, "pni", 0x01000001); err != nil {
		return fmt.Errorf("refresh PNI pre-keys: %w", err)
	}
	return nil
}

// uploadStoredPreKeys loads a signed pre-key and Kyber pre-key from the store,
// converts them to upload entities, and uploads them to the server.
func (s *Service) uploadStoredPreKeys(ctx context.Context, identity string, keyID uint32) error {
	spk, err := s.store.LoadSignedPreKey(keyID)
	if err != nil {
		return fmt.Errorf("load signed pre-key %d: %w", keyID, err)
	}
	if spk == nil {
		return fmt.Errorf("signed pre-key %d not found", keyID)
	}
	defer spk.Destroy()

	kpk, err := s.store.LoadKyberPreKey(keyID)
	if err != nil {
		return fmt.Errorf("load Kyber pre-key %d: %w", keyID, err)
	}
	if kpk == nil {
		return fmt.Errorf("Kyber pre-key %d not found", keyID)
	}
	defer kpk.Destroy()

	spkEntity, err := signedPreKeyToEntity(spk)
	if err != nil {
		return fmt.Errorf("convert signed pre-key: %w", err)
	}
	kpkEntity, err := kyberPreKeyToEntity(kpk)
	if err != nil {
		return fmt.Errorf("convert Kyber pre-key: %w", err)
	}

	return s.UploadPreKeys(ctx, identity, &PreKeyUpload{
		SignedPreKey:    spkEntity,
		PqLastResortKey: kpkEntity,
	})
}

// UploadPreKeys uploads pre-keys to the server.
func (s *Service) UploadPreKeys(ctx context.Context, identity string, keys *PreKeyUpload) error {
	body, err := json.Marshal(keys)
	if err != nil {
		return fmt.Errorf("marshal pre-keys: %w", err)
	}

	respBody, status, err := s.transport.Put(ctx, "/v2/keys?identity="+identity, body, &s.auth)
	if err != nil {
		return fmt.Errorf("upload keys: %w", err)
	}
	if status != http.StatusOK && status != http.StatusNoContent {
		return fmt.Errorf("upload keys: status %d: %s", status, respBody)
	}
	return nil
}

// --- Account API ---

// GetDevices returns the list of registered devices for this account.
func (s *Service) GetDevices(ctx context.Context) ([]DeviceInfo, error) {
	body, status, err := s.transport.Get(ctx, "/v1/devices/", &s.auth)
	if err != nil {
		return nil, fmt.Errorf("get devices: %w", err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("get devices: status %d: %s", status, body)
	}

	var result DeviceListResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("unmarshal devices: %w", err)
	}
	return result.Devices, nil
}

// SetAccountAttributes updates account attributes on the server.
func (s *Service) SetAccountAttributes(ctx context.Context, attrs *AccountAttributes) error {
	body, err := json.Marshal(attrs)
	if err != nil {
		return fmt.Errorf("marshal attributes: %w", err)
	}

	respBody, status, err := s.transport.Put(ctx, "/v1/accounts/attributes/", body, &s.auth)
	if err != nil {
		return fmt.Errorf("set attributes: %w", err)
	}
	if status != http.StatusOK && status != http.StatusNoContent {
		return fmt.Errorf("set attributes: status %d: %s", status, respBody)
	}
	return nil
}

// decodeBase64 decodes a base64 string (with or without padding).
func decodeBase64(s string) ([]byte, error) {
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return base64.RawStdEncoding.DecodeString(s)
}

// --- Profile API ---

// ProfileOptions configures which profile fields to update.
type ProfileOptions struct {
	Name               *string
	PhoneNumberSharing *bool
}

// getProfileKeyVersion wraps libsignal's profile key version derivation.
func getProfileKeyVersion(profileKey []byte, aci string) (string, error) {
	return libsignal.ProfileKeyGetVersion(profileKey, aci)
}

// getProfileKeyCommitment wraps libsignal's profile key commitment derivation.
func getProfileKeyCommitment(profileKey []byte, aci string) ([]byte, error) {
	return libsignal.ProfileKeyGetCommitment(profileKey, aci)
}

// GetProfile fetches a user's profile from the server.
func (s *Service) GetProfile(ctx context.Context, aci string, profileKey []byte) (*ProfileResponse, error) {
	version, err := getProfileKeyVersion(profileKey, aci)
	if err != nil {
		return nil, fmt.Errorf("get profile key version: %w", err)
	}

	path := fmt.Sprintf("/v1/profile/%s/%s", aci, version)
	logf(s.logger, "fetching profile: aci=%s version=%s", aci, version)

	body, status, err := s.transport.Get(ctx, path, &s.auth)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("get profile: status %d: %s", status, body)
	}

	var profile ProfileResponse
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, fmt.Errorf("unmarshal profile: %w", err)
	}
	return &profile, nil
}

// SetProfile updates the user's profile on the server.
func (s *Service) SetProfile(ctx context.Context, aci string, profileKey []byte, opts *ProfileOptions) error {
	cipher, err := signalcrypto.NewProfileCipher(profileKey)
	if err != nil {
		return fmt.Errorf("create profile cipher: %w", err)
	}

	name := ""
	if opts != nil && opts.Name != nil {
		name = *opts.Name
	}
	encryptedName, err := cipher.EncryptString(name, signalcrypto.GetTargetNameLength(name))
	if err != nil {
		return fmt.Errorf("encrypt name: %w", err)
	}

	encryptedAbout, err := cipher.EncryptString("", signalcrypto.GetTargetAboutLength(""))
	if err != nil {
		return fmt.Errorf("encrypt about: %w", err)
	}

	encryptedEmoji, err := cipher.EncryptString("", 32)
	if err != nil {
		return fmt.Errorf("encrypt emoji: %w", err)
	}

	phoneSharing := false
	if opts != nil && opts.PhoneNumberSharing != nil {
		phoneSharing = *opts.PhoneNumberSharing
	}
	encryptedPhoneSharing, err := cipher.EncryptBoolean(phoneSharing)
	if err != nil {
		return fmt.Errorf("encrypt phone sharing: %w", err)
	}

	version, err := getProfileKeyVersion(profileKey, aci)
	if err != nil {
		return fmt.Errorf("get profile key version: %w", err)
	}

	commitment, err := getProfileKeyCommitment(profileKey, aci)
	if err != nil {
		return fmt.Errorf("get profile key commitment: %w", err)
	}

	write := &ProfileWrite{
		Version:            version,
		Name:               encryptedName,
		About:              encryptedAbout,
		AboutEmoji:         encryptedEmoji,
		PhoneNumberSharing: encryptedPhoneSharing,
		Avatar:             false,
		SameAvatar:         true,
		Commitment:         commitment,
		BadgeIDs:           []string{},
	}

	body, err := json.Marshal(write)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}

	logf(s.logger, "setting profile: version=%s name=%q", version, name)

	respBody, status, err := s.transport.Put(ctx, "/v1/profile", body, &s.auth)
	if err != nil {
		return fmt.Errorf("set profile: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("set profile: status %d: %s", status, respBody)
	}

	logf(s.logger, "profile set successfully")
	return nil
}
