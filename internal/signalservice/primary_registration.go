package signalservice

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"math/big"

	"github.com/gwillem/signal-go/internal/libsignal"
	"github.com/gwillem/signal-go/internal/signalcrypto"
)

// generateRegistrationID returns a random registration id in [1, 16383], the
// range the server accepts.
func generateRegistrationID() int {
	n, _ := rand.Int(rand.Reader, big.NewInt(16383))
	return int(n.Int64()) + 1
}

// generatePassword returns a random base64 password for HTTP Basic auth
// against the account, matching the length signal-cli's Java client uses.
func generatePassword() string {
	buf := make([]byte, 18)
	_, _ = rand.Read(buf)
	return base64.RawStdEncoding.EncodeToString(buf)
}

// RegistrationMaterial holds everything generated locally before a primary
// device registers: identity keys, pre-keys, and the account attributes
// template. It carries no network state — the verification session and
// code exchange live in the registration package's state machine.
type RegistrationMaterial struct {
	Password          string
	RegistrationID    int
	PNIRegistrationID int
	ProfileKey        []byte

	ACIIdentityKeyPrivate []byte
	ACIIdentityKeyPublic  []byte
	PNIIdentityKeyPrivate []byte
	PNIIdentityKeyPublic  []byte

	ACISignedPreKey []byte // serialized SignedPreKeyRecord, for local storage
	ACIKyberPreKey  []byte // serialized KyberPreKeyRecord, for local storage
	PNISignedPreKey []byte
	PNIKyberPreKey  []byte

	// Request is the PrimaryRegistrationRequest template; SessionID and
	// RecoveryPassword are filled in per attempt by the caller.
	Request PrimaryRegistrationRequest
}

// GenerateRegistrationMaterial generates fresh identity keys and pre-keys for
// a new primary device and assembles the registration request template.
// It performs no network calls.
func GenerateRegistrationMaterial() (*RegistrationMaterial, error) {
	aciIdentity, err := libsignal.GenerateIdentityKeyPair()
	if err != nil {
		return nil, fmt.Errorf("registration material: generate ACI identity: %w", err)
	}
	defer aciIdentity.PrivateKey.Destroy()
	defer aciIdentity.PublicKey.Destroy()

	pniIdentity, err := libsignal.GenerateIdentityKeyPair()
	if err != nil {
		return nil, fmt.Errorf("registration material: generate PNI identity: %w", err)
	}
	defer pniIdentity.PrivateKey.Destroy()
	defer pniIdentity.PublicKey.Destroy()

	aciPrivBytes, err := aciIdentity.PrivateKey.Serialize()
	if err != nil {
		return nil, fmt.Errorf("registration material: serialize ACI private key: %w", err)
	}
	aciPubBytes, err := aciIdentity.PublicKey.Serialize()
	if err != nil {
		return nil, fmt.Errorf("registration material: serialize ACI public key: %w", err)
	}
	pniPrivBytes, err := pniIdentity.PrivateKey.Serialize()
	if err != nil {
		return nil, fmt.Errorf("registration material: serialize PNI private key: %w", err)
	}
	pniPubBytes, err := pniIdentity.PublicKey.Serialize()
	if err != nil {
		return nil, fmt.Errorf("registration material: serialize PNI public key: %w", err)
	}

	registrationID := generateRegistrationID()
	pniRegistrationID := generateRegistrationID()

	aciKeys, err := GeneratePreKeySet(aciIdentity.PrivateKey, 1, 1)
	if err != nil {
		return nil, fmt.Errorf("registration material: generate ACI keys: %w", err)
	}
	defer aciKeys.SignedPreKey.Destroy()
	defer aciKeys.KyberLastResort.Destroy()

	pniKeys, err := GeneratePreKeySet(pniIdentity.PrivateKey, 0x01000001, 0x01000001)
	if err != nil {
		return nil, fmt.Errorf("registration material: generate PNI keys: %w", err)
	}
	defer pniKeys.SignedPreKey.Destroy()
	defer pniKeys.KyberLastResort.Destroy()

	aciSPK, err := signedPreKeyEntity(aciKeys.SignedPreKey)
	if err != nil {
		return nil, fmt.Errorf("registration material: ACI signed pre-key entity: %w", err)
	}
	pniSPK, err := signedPreKeyEntity(pniKeys.SignedPreKey)
	if err != nil {
		return nil, fmt.Errorf("registration material: PNI signed pre-key entity: %w", err)
	}
	aciKPK, err := kyberPreKeyEntity(aciKeys.KyberLastResort)
	if err != nil {
		return nil, fmt.Errorf("registration material: ACI Kyber entity: %w", err)
	}
	pniKPK, err := kyberPreKeyEntity(pniKeys.KyberLastResort)
	if err != nil {
		return nil, fmt.Errorf("registration material: PNI Kyber entity: %w", err)
	}

	aciSPKBytes, err := aciKeys.SignedPreKey.Serialize()
	if err != nil {
		return nil, fmt.Errorf("registration material: serialize ACI signed pre-key: %w", err)
	}
	aciKPKBytes, err := aciKeys.KyberLastResort.Serialize()
	if err != nil {
		return nil, fmt.Errorf("registration material: serialize ACI Kyber pre-key: %w", err)
	}
	pniSPKBytes, err := pniKeys.SignedPreKey.Serialize()
	if err != nil {
		return nil, fmt.Errorf("registration material: serialize PNI signed pre-key: %w", err)
	}
	pniKPKBytes, err := pniKeys.KyberLastResort.Serialize()
	if err != nil {
		return nil, fmt.Errorf("registration material: serialize PNI Kyber pre-key: %w", err)
	}

	profileKey := signalcrypto.GenerateProfileKey()
	uak, err := signalcrypto.DeriveAccessKey(profileKey)
	if err != nil {
		return nil, fmt.Errorf("registration material: derive access key: %w", err)
	}

	discoverable := true
	req := PrimaryRegistrationRequest{
		AccountAttributes: AccountAttributes{
			RegistrationID:            registrationID,
			PNIRegistrationID:         pniRegistrationID,
			Voice:                     true,
			Video:                     true,
			FetchesMessages:           true,
			DiscoverableByPhoneNumber: &discoverable,
			UnidentifiedAccessKey:     base64.StdEncoding.EncodeToString(uak),
			Capabilities: Capabilities{
				Storage:                  true,
				VersionedExpirationTimer: true,
				AttachmentBackfill:       true,
			},
		},
		ACIIdentityKey:        base64.StdEncoding.EncodeToString(aciPubBytes),
		PNIIdentityKey:        base64.StdEncoding.EncodeToString(pniPubBytes),
		ACISignedPreKey:       *aciSPK,
		PNISignedPreKey:       *pniSPK,
		ACIPqLastResortPreKey: *aciKPK,
		PNIPqLastResortPreKey: *pniKPK,
		SkipDeviceTransfer:    true,
	}

	return &RegistrationMaterial{
		Password:              generatePassword(),
		RegistrationID:        registrationID,
		PNIRegistrationID:     pniRegistrationID,
		ProfileKey:            profileKey,
		ACIIdentityKeyPrivate: aciPrivBytes,
		ACIIdentityKeyPublic:  aciPubBytes,
		PNIIdentityKeyPrivate: pniPrivBytes,
		PNIIdentityKeyPublic:  pniPubBytes,
		ACISignedPreKey:       aciSPKBytes,
		ACIKyberPreKey:        aciKPKBytes,
		PNISignedPreKey:       pniSPKBytes,
		PNIKyberPreKey:        pniKPKBytes,
		Request:               req,
	}, nil
}
