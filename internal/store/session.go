package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/gwillem/signal-go/internal/libsignal"
)

// LoadSession loads the current session record for the given address.
// Returns nil, nil if no current session exists.
func (s *Store) LoadSession(address *libsignal.Address) (*libsignal.SessionRecord, error) {
	rid, err := s.resolveAddress(address)
	if err != nil {
		return nil, err
	}
	devID, err := address.DeviceID()
	if err != nil {
		return nil, fmt.Errorf("store: session address device id: %w", err)
	}

	var record []byte
	err = s.db.QueryRow(
		"SELECT record FROM session WHERE recipient_id = ? AND device_id = ? AND current = 1",
		int64(rid), devID,
	).Scan(&record)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: load session: %w", err)
	}

	return libsignal.DeserializeSessionRecord(record)
}

// StoreSession stores a session record for the given address as the current
// session, superseding any prior current record for the same address. The
// address name is resolved through the RecipientStore before the write, so
// a later merge of the underlying recipient reroutes this row along with
// the recipient's identity key.
func (s *Store) StoreSession(address *libsignal.Address, record *libsignal.SessionRecord) error {
	rid, err := s.resolveAddress(address)
	if err != nil {
		return err
	}
	devID, err := address.DeviceID()
	if err != nil {
		return fmt.Errorf("store: session address device id: %w", err)
	}

	data, err := record.Serialize()
	if err != nil {
		return fmt.Errorf("store: serialize session: %w", err)
	}

	_, err = s.db.Exec(
		"INSERT OR REPLACE INTO session (recipient_id, device_id, record, current) VALUES (?, ?, ?, 1)",
		int64(rid), devID, data,
	)
	if err != nil {
		return fmt.Errorf("store: store session: %w", err)
	}
	return nil
}

// ArchiveSession marks the session for the given address and device id as
// non-current, retaining the record so it can still be inspected, but
// forcing the next outbound message to establish a fresh session via
// pre-key fetch.
func (s *Store) ArchiveSession(address *libsignal.Address, deviceID uint32) error {
	rid, err := s.resolveAddress(address)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		"UPDATE session SET current = 0 WHERE recipient_id = ? AND device_id = ?",
		int64(rid), deviceID,
	)
	if err != nil {
		return fmt.Errorf("store: archive session: %w", err)
	}
	return nil
}
