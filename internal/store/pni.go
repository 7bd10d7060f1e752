package store

import (
	"fmt"

	"github.com/gwillem/signal-go/internal/libsignal"
)

// PNIIdentityStore wraps a Store to return PNI identity for
// GetIdentityKeyPair and GetLocalRegistrationID. All other
// IdentityKeyStore methods delegate to the embedded Store.
type PNIIdentityStore struct{ *Store }

// PNI returns a PNIIdentityStore that overrides identity methods
// to return the PNI key pair and registration ID.
func (s *Store) PNI() libsignal.IdentityKeyStore { return &PNIIdentityStore{s} }

// GetIdentityKeyPair returns the PNI identity key pair.
func (p *PNIIdentityStore) GetIdentityKeyPair() (*libsignal.PrivateKey, error) {
	if p.pniKeyPair == nil {
		return nil, fmt.Errorf("store: PNI identity key pair not set")
	}
	data, err := p.pniKeyPair.Serialize()
	if err != nil {
		return nil, err
	}
	return libsignal.DeserializePrivateKey(data)
}

// GetLocalRegistrationID returns the PNI registration ID.
func (p *PNIIdentityStore) GetLocalRegistrationID() (uint32, error) {
	return p.pniRegID, nil
}
