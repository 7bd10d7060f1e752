package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gwillem/signal-go/internal/libsignal"
	"github.com/gwillem/signal-go/internal/recipient"
)

// UntrustedIdentityError signals that a remote party's identity key does
// not match the key already on file (or the key the caller expected),
// e.g. a server-reported identity key diverging from the locally stored
// one. Callers at the CLI boundary surface this as exit code 4.
type UntrustedIdentityError struct {
	Recipient string
}

func (e *UntrustedIdentityError) Error() string {
	return fmt.Sprintf("store: untrusted identity key for %s", e.Recipient)
}

// TrustLevel describes how much a remote identity key is trusted.
type TrustLevel int

const (
	TrustUnverified TrustLevel = iota
	TrustUnverifiedTrusted
	TrustVerified
)

func (t TrustLevel) String() string {
	switch t {
	case TrustUnverifiedTrusted:
		return "TRUSTED_UNVERIFIED"
	case TrustVerified:
		return "TRUSTED_VERIFIED"
	default:
		return "UNTRUSTED"
	}
}

// IdentityInfo is the persisted record for one remote identity key.
type IdentityInfo struct {
	RecipientID     recipient.ID
	IdentityKey     []byte
	Trust           TrustLevel
	AddedTimestamp  int64
}

// GetIdentityKeyPair returns the local identity key pair (ACI or PNI based on UsePNI setting).
func (s *Store) GetIdentityKeyPair() (*libsignal.PrivateKey, error) {
	keyPair := s.identityKeyPair
	if s.usePNI {
		keyPair = s.pniKeyPair
	}
	if keyPair == nil {
		if s.usePNI {
			return nil, fmt.Errorf("store: PNI identity key pair not set")
		}
		return nil, fmt.Errorf("store: identity key pair not set")
	}
	// Return a clone via serialize/deserialize.
	data, err := keyPair.Serialize()
	if err != nil {
		return nil, err
	}
	return libsignal.DeserializePrivateKey(data)
}

// GetLocalRegistrationID returns the local registration ID (ACI or PNI based on UsePNI setting).
func (s *Store) GetLocalRegistrationID() (uint32, error) {
	if s.usePNI {
		return s.pniRegID, nil
	}
	return s.registrationID, nil
}

// resolveAddress maps a libsignal.Address's name (a uuid string or an E.164
// number) onto a recipient id, routing every identity/session lookup
// through the RecipientStore so a later merge reroutes the keys stored here
// to the surviving recipient.
func (s *Store) resolveAddress(address *libsignal.Address) (recipient.ID, error) {
	name, err := address.Name()
	if err != nil {
		return 0, fmt.Errorf("store: address name: %w", err)
	}
	if s.recipients == nil {
		// No RecipientStore was wired in (e.g. a bare protocol-store test);
		// fall back to an unpersisted one so identity/session lookups still
		// have stable ids to key on.
		s.recipients = recipient.New("", nil)
	}

	var addr recipient.Address
	if id, uerr := recipient.NewAddress(name, ""); uerr == nil {
		addr = id
	} else {
		addr = recipient.FromNumber(name)
	}
	return s.recipients.Resolve(addr, false)
}

// SaveIdentityKey stores a remote identity key for the given address.
//
// Storing a key that differs from the one already on file downgrades trust
// to UNTRUSTED and returns true so the caller may warn. An identical replay
// returns false and leaves trust untouched.
func (s *Store) SaveIdentityKey(address *libsignal.Address, key *libsignal.PublicKey) (bool, error) {
	rid, err := s.resolveAddress(address)
	if err != nil {
		return false, err
	}

	data, err := key.Serialize()
	if err != nil {
		return false, fmt.Errorf("store: serialize identity key: %w", err)
	}

	existing, err := s.loadIdentityRow(rid)
	if err != nil {
		return false, err
	}

	now := time.Now().Unix()

	if existing == nil {
		return false, s.upsertIdentityRow(rid, data, TrustUnverifiedTrusted, now)
	}

	if bytesEqual(existing.IdentityKey, data) {
		return false, nil
	}

	// Key changed: downgrade trust.
	if err := s.upsertIdentityRow(rid, data, TrustUnverified, now); err != nil {
		return false, err
	}
	return true, nil
}

// GetIdentityKey loads a remote identity key for the given address.
// Returns nil, nil if no identity key exists for this address.
func (s *Store) GetIdentityKey(address *libsignal.Address) (*libsignal.PublicKey, error) {
	rid, err := s.resolveAddress(address)
	if err != nil {
		return nil, err
	}
	row, err := s.loadIdentityRow(rid)
	if err != nil || row == nil {
		return nil, err
	}
	return libsignal.DeserializePublicKey(row.IdentityKey)
}

// SetIdentityTrustLevel explicitly elevates or lowers trust for a recipient's
// stored identity key.
func (s *Store) SetIdentityTrustLevel(rid recipient.ID, trust TrustLevel) error {
	row, err := s.loadIdentityRow(rid)
	if err != nil {
		return err
	}
	if row == nil {
		return fmt.Errorf("store: no identity key on file for recipient %d", rid)
	}
	return s.upsertIdentityRow(rid, row.IdentityKey, trust, row.AddedTimestamp)
}

// IsTrustedIdentity checks whether a remote identity key is trusted.
// Unknown identities are trusted on first use. A key that matches the one
// on file is always trusted; a key that differs is never trusted,
// regardless of the stored trust level — SaveIdentityKey separately
// downgrades trust to UNTRUSTED when the caller proceeds anyway.
func (s *Store) IsTrustedIdentity(address *libsignal.Address, key *libsignal.PublicKey, direction uint) (bool, error) {
	rid, err := s.resolveAddress(address)
	if err != nil {
		return false, err
	}
	row, err := s.loadIdentityRow(rid)
	if err != nil {
		return false, err
	}
	if row == nil {
		return true, nil
	}

	data, err := key.Serialize()
	if err != nil {
		return false, err
	}
	return bytesEqual(row.IdentityKey, data), nil
}

func (s *Store) loadIdentityRow(rid recipient.ID) (*IdentityInfo, error) {
	var key []byte
	var trust int
	var added int64
	err := s.db.QueryRow(
		"SELECT public_key, trust_level, added_timestamp FROM identity WHERE recipient_id = ?",
		int64(rid),
	).Scan(&key, &trust, &added)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: load identity: %w", err)
	}
	return &IdentityInfo{RecipientID: rid, IdentityKey: key, Trust: TrustLevel(trust), AddedTimestamp: added}, nil
}

func (s *Store) upsertIdentityRow(rid recipient.ID, key []byte, trust TrustLevel, added int64) error {
	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO identity (recipient_id, public_key, trust_level, added_timestamp) VALUES (?, ?, ?, ?)",
		int64(rid), key, int(trust), added,
	)
	if err != nil {
		return fmt.Errorf("store: save identity key: %w", err)
	}
	return nil
}

// MergeRecipients implements recipient.MergeSink: it rewrites the identity
// row and every session row for a merged recipient onto its surviving id,
// so that a subsequent lookup under either the surviving uuid or number
// finds the same identity and sessions. Fired outside the RecipientStore's
// mutex; serialized here against concurrent writers by the database's own
// locking.
func (s *Store) MergeRecipients(dst, src recipient.ID) {
	if srcRow, err := s.loadIdentityRow(src); err == nil && srcRow != nil {
		if dstRow, err := s.loadIdentityRow(dst); err == nil && dstRow == nil {
			_ = s.upsertIdentityRow(dst, srcRow.IdentityKey, srcRow.Trust, srcRow.AddedTimestamp)
		}
		_, _ = s.db.Exec("DELETE FROM identity WHERE recipient_id = ?", int64(src))
	}

	// Reroute every session keyed to src onto dst. Where dst already holds
	// a session for the same device id, dst's copy wins and the src row is
	// dropped rather than overwritten, since dst is the surviving identity.
	_, _ = s.db.Exec(
		`DELETE FROM session WHERE recipient_id = ? AND device_id IN (
			SELECT device_id FROM session WHERE recipient_id = ?
		)`,
		int64(src), int64(dst),
	)
	_, _ = s.db.Exec("UPDATE session SET recipient_id = ? WHERE recipient_id = ?", int64(dst), int64(src))
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
