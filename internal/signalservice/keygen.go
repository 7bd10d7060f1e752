package signalservice

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/gwillem/signal-go/internal/libsignal"
)

// preKeySet holds the keys generated for one identity (ACI or PNI).
type preKeySet struct {
	SignedPreKey   *libsignal.SignedPreKeyRecord
	KyberLastResort *libsignal.KyberPreKeyRecord
}

// GeneratePreKeySet generates a signed pre-key and Kyber last-resort pre-key,
// both signed by the given identity private key.
func GeneratePreKeySet(identityPriv *libsignal.PrivateKey, signedPreKeyID, kyberPreKeyID uint32) (*preKeySet, error) {
	return generatePreKeySet(identityPriv, signedPreKeyID, kyberPreKeyID)
}

// generatePreKeySet generates a signed pre-key and Kyber last-resort pre-key,
// both signed by the given identity private key.
func generatePreKeySet(identityPriv *libsignal.PrivateKey, signedPreKeyID, kyberPreKeyID uint32) (*preKeySet, error) {
	now := uint64(time.Now().UnixMilli())

	// Generate signed EC pre-key.
	ecPriv, err := libsignal.GeneratePrivateKey()
	if err != nil {
		return nil, fmt.Errorf("keygen: generate EC key: %w", err)
	}
	defer ecPriv.Destroy()

	ecPub, err := ecPriv.PublicKey()
	if err != nil {
		return nil, fmt.Errorf("keygen: EC public key: %w", err)
	}
	defer ecPub.Destroy()

	ecPubBytes, err := ecPub.Serialize()
	if err != nil {
		return nil, fmt.Errorf("keygen: serialize EC pub: %w", err)
	}

	ecSig, err := identityPriv.Sign(ecPubBytes)
	if err != nil {
		return nil, fmt.Errorf("keygen: sign EC key: %w", err)
	}

	signedPreKey, err := libsignal.NewSignedPreKeyRecord(signedPreKeyID, now, ecPub, ecPriv, ecSig)
	if err != nil {
		return nil, fmt.Errorf("keygen: new signed pre-key: %w", err)
	}

	// Generate Kyber last-resort pre-key.
	kyberKP, err := libsignal.GenerateKyberKeyPair()
	if err != nil {
		signedPreKey.Destroy()
		return nil, fmt.Errorf("keygen: generate Kyber key: %w", err)
	}
	defer kyberKP.Destroy()

	kyberPub, err := kyberKP.PublicKey()
	if err != nil {
		signedPreKey.Destroy()
		return nil, fmt.Errorf("keygen: Kyber public key: %w", err)
	}
	defer kyberPub.Destroy()

	kyberPubBytes, err := kyberPub.Serialize()
	if err != nil {
		signedPreKey.Destroy()
		return nil, fmt.Errorf("keygen: serialize Kyber pub: %w", err)
	}

	kyberSig, err := identityPriv.Sign(kyberPubBytes)
	if err != nil {
		signedPreKey.Destroy()
		return nil, fmt.Errorf("keygen: sign Kyber key: %w", err)
	}

	kyberPreKey, err := libsignal.NewKyberPreKeyRecord(kyberPreKeyID, now, kyberKP, kyberSig)
	if err != nil {
		signedPreKey.Destroy()
		return nil, fmt.Errorf("keygen: new Kyber pre-key: %w", err)
	}

	return &preKeySet{
		SignedPreKey:   signedPreKey,
		KyberLastResort: kyberPreKey,
	}, nil
}

// signedPreKeyEntity converts a signed pre-key record into its wire representation.
func signedPreKeyEntity(rec *libsignal.SignedPreKeyRecord) (*SignedPreKeyEntity, error) {
	id, err := rec.ID()
	if err != nil {
		return nil, fmt.Errorf("keygen: signed pre-key id: %w", err)
	}
	pub, err := rec.PublicKey()
	if err != nil {
		return nil, fmt.Errorf("keygen: signed pre-key public key: %w", err)
	}
	defer pub.Destroy()
	pubBytes, err := pub.Serialize()
	if err != nil {
		return nil, fmt.Errorf("keygen: serialize signed pre-key public key: %w", err)
	}
	sig, err := rec.Signature()
	if err != nil {
		return nil, fmt.Errorf("keygen: signed pre-key signature: %w", err)
	}
	return &SignedPreKeyEntity{
		KeyID:     int(id),
		PublicKey: base64.RawStdEncoding.EncodeToString(pubBytes),
		Signature: base64.RawStdEncoding.EncodeToString(sig),
	}, nil
}

// kyberPreKeyEntity converts a Kyber pre-key record into its wire representation.
func kyberPreKeyEntity(rec *libsignal.KyberPreKeyRecord) (*KyberPreKeyEntity, error) {
	id, err := rec.ID()
	if err != nil {
		return nil, fmt.Errorf("keygen: kyber pre-key id: %w", err)
	}
	pub, err := rec.PublicKey()
	if err != nil {
		return nil, fmt.Errorf("keygen: kyber pre-key public key: %w", err)
	}
	defer pub.Destroy()
	pubBytes, err := pub.Serialize()
	if err != nil {
		return nil, fmt.Errorf("keygen: serialize kyber pre-key public key: %w", err)
	}
	sig, err := rec.Signature()
	if err != nil {
		return nil, fmt.Errorf("keygen: kyber pre-key signature: %w", err)
	}
	return &KyberPreKeyEntity{
		KeyID:     int(id),
		PublicKey: base64.RawStdEncoding.EncodeToString(pubBytes),
		Signature: base64.RawStdEncoding.EncodeToString(sig),
	}, nil
}

// signedPreKeyToEntity is an alias for signedPreKeyEntity used when re-uploading
// a stored pre-key rather than one freshly generated.
func signedPreKeyToEntity(rec *libsignal.SignedPreKeyRecord) (*SignedPreKeyEntity, error) {
	return signedPreKeyEntity(rec)
}

// kyberPreKeyToEntity is an alias for kyberPreKeyEntity used when re-uploading
// a stored pre-key rather than one freshly generated.
func kyberPreKeyToEntity(rec *libsignal.KyberPreKeyRecord) (*KyberPreKeyEntity, error) {
	return kyberPreKeyEntity(rec)
}
