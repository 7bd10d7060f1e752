package recipient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// MergeSink receives notification when two recipients are merged, so that
// sibling stores (protocol sessions, contact lookups) can rewrite their own
// keys from src to dst. Fired outside the store's mutex; implementations
// must serialize their own writes.
type MergeSink interface {
	MergeRecipients(dst, src ID)
}

// MergeSinkFunc adapts a plain function to MergeSink.
type MergeSinkFunc func(dst, src ID)

func (f MergeSinkFunc) MergeRecipients(dst, src ID) { f(dst, src) }

// Store assigns stable ids to recipient addresses, indexes them by uuid and
// number, and performs the merge protocol described in the resolution
// algorithm below. It persists its full state to a single JSON file after
// every mutation.
type Store struct {
	mu sync.Mutex

	path string
	sink MergeSink

	lastID     ID
	byID       map[ID]*Recipient
	byUUID     map[string]ID // uuid string -> live id
	byNumber   map[string]ID // number -> live id
	redirected map[ID]ID     // merged id -> surviving id
}

// New creates an empty store backed by path, with sink notified of merges.
// sink may be nil.
func New(path string, sink MergeSink) *Store {
	return &Store{
		path:       path,
		sink:       sink,
		byID:       map[ID]*Recipient{},
		byUUID:     map[string]ID{},
		byNumber:   map[string]ID{},
		redirected: map[ID]ID{},
	}
}

// Load reads the store from its JSON file. A missing file is equivalent to
// an empty store.
func Load(path string, sink MergeSink) (*Store, error) {
	s := New(path, sink)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("recipient: read store: %w", err)
	}

	var doc fileFormat
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("recipient: parse store: %w", err)
	}

	s.lastID = ID(doc.LastID)
	for _, rr := range doc.Recipients {
		rec, err := rr.toRecipient()
		if err != nil {
			return nil, fmt.Errorf("recipient: decode recipient %d: %w", rr.ID, err)
		}
		s.byID[rec.ID] = rec
		if rec.Address.HasUUID() {
			s.byUUID[rec.Address.UUID.UUID.String()] = rec.ID
		}
		if rec.Address.HasNumber() {
			s.byNumber[rec.Address.Number] = rec.ID
		}
	}
	return s, nil
}

// actualIDLocked walks the redirection chain to the surviving id. Callers
// must hold s.mu.
func (s *Store) actualIDLocked(id ID) ID {
	for {
		next, ok := s.redirected[id]
		if !ok {
			return id
		}
		id = next
	}
}

// ActualID resolves a possibly-merged id to the live id it now identifies.
func (s *Store) ActualID(id ID) ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.actualIDLocked(id)
}

// Get returns a copy of the recipient for id (following redirection), or
// nil if no such recipient exists.
func (s *Store) Get(id ID) *Recipient {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.byID[s.actualIDLocked(id)]
	return rec.clone()
}

// Resolve implements the resolution algorithm from the store's design: it
// returns the id for addr, creating or merging recipients as needed.
// highTrust must be true only when addr comes from an authenticated source
// (server response, sync message) that may legitimately link a uuid and a
// number together.
func (s *Store) Resolve(addr Address, highTrust bool) (ID, error) {
	if !addr.HasUUID() && !addr.HasNumber() {
		return 0, fmt.Errorf("recipient: address needs a uuid or a number")
	}

	s.mu.Lock()

	var ru, rn ID
	var hasRU, hasRN bool
	if addr.HasUUID() {
		ru, hasRU = s.byUUID[addr.UUID.UUID.String()]
	}
	if addr.HasNumber() {
		rn, hasRN = s.byNumber[addr.Number]
	}

	var (
		resultID ID
		mergeDst ID
		mergeSrc ID
		didMerge bool
		changed  bool
	)

	switch {
	case !hasRU && !hasRN:
		// Branch 1: no record exists.
		var toCreate Address
		if highTrust || !addr.HasUUID() || !addr.HasNumber() {
			toCreate = addr
		} else {
			// Low trust, both fields present: bind the uuid alone.
			toCreate = FromUUID(addr.UUID.UUID)
		}
		resultID = s.createLocked(toCreate)
		changed = true

	case hasRU && hasRN && ru == rn:
		// Branch 2: already linked.
		resultID = ru

	case !highTrust:
		// Branch 3: low trust, do not modify.
		if hasRU {
			resultID = ru
		} else {
			resultID = rn
		}

	case hasRU && !hasRN:
		// Branch 4: attach the number to R_u, overwriting any stale number.
		rec := s.byID[ru]
		if rec.Address.HasNumber() {
			delete(s.byNumber, rec.Address.Number)
		}
		rec.Address = rec.Address.withNumber(addr.Number)
		s.byNumber[addr.Number] = ru
		resultID = ru
		changed = true

	case !hasRU && hasRN:
		// Branch 5.
		nRec := s.byID[rn]
		if nRec.Address.HasUUID() && nRec.Address.UUID.UUID != addr.UUID.UUID {
			// R_n already carries a different uuid: strip its number and
			// create a new recipient for addr. Uuids are authoritative.
			delete(s.byNumber, nRec.Address.Number)
			nRec.Address = nRec.Address.withNumber("")
			resultID = s.createLocked(addr)
		} else {
			// R_n has no uuid: attach the uuid to it.
			nRec.Address = nRec.Address.withUUID(addr.UUID)
			s.byUUID[addr.UUID.UUID.String()] = rn
			resultID = rn
		}
		changed = true

	default:
		// Branch 6: R_u != R_n, both present.
		nRec := s.byID[rn]
		if nRec.Address.HasUUID() && nRec.Address.UUID.UUID != addr.UUID.UUID {
			delete(s.byNumber, nRec.Address.Number)
			nRec.Address = nRec.Address.withNumber("")
			uRec := s.byID[ru]
			if uRec.Address.HasNumber() {
				delete(s.byNumber, uRec.Address.Number)
			}
			uRec.Address = uRec.Address.withNumber(addr.Number)
			s.byNumber[addr.Number] = ru
			resultID = ru
		} else {
			// Attach addr's number to the surviving recipient before the
			// merge: mergeLocked reindexes src's fields onto dst but never
			// touches dst.Address itself, so without this dst would end up
			// merged but still numberless.
			uRec := s.byID[ru]
			if uRec.Address.HasNumber() && uRec.Address.Number != addr.Number {
				delete(s.byNumber, uRec.Address.Number)
			}
			uRec.Address = uRec.Address.withNumber(addr.Number)
			s.mergeLocked(ru, rn)
			mergeDst, mergeSrc, didMerge = ru, rn, true
			resultID = ru
		}
		changed = true
	}

	if changed {
		if err := s.saveLocked(); err != nil {
			s.mu.Unlock()
			return 0, err
		}
	}
	s.mu.Unlock()

	if didMerge && s.sink != nil {
		s.sink.MergeRecipients(mergeDst, mergeSrc)
	}
	return resultID, nil
}

// createLocked allocates a new id for addr and indexes it. Caller holds s.mu.
func (s *Store) createLocked(addr Address) ID {
	s.lastID++
	id := s.lastID
	s.byID[id] = &Recipient{ID: id, Address: addr}
	if addr.HasUUID() {
		s.byUUID[addr.UUID.UUID.String()] = id
	}
	if addr.HasNumber() {
		s.byNumber[addr.Number] = id
	}
	return id
}

// mergeLocked merges src into dst: dst's address is preserved, its unset
// fields fall back to src's, src is removed from the live map, and
// src -> dst is recorded in the redirection map. Caller holds s.mu.
func (s *Store) mergeLocked(dst, src ID) {
	dstRec := s.byID[dst]
	srcRec := s.byID[src]

	mergeFrom(dstRec, srcRec)

	if srcRec.Address.HasUUID() {
		s.byUUID[srcRec.Address.UUID.UUID.String()] = dst
	}
	if srcRec.Address.HasNumber() {
		s.byNumber[srcRec.Address.Number] = dst
	}

	delete(s.byID, src)
	s.redirected[src] = dst
}

// UpdateContact sets the contact metadata for id.
func (s *Store) UpdateContact(id ID, c *Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.byID[s.actualIDLocked(id)]
	if !ok {
		return fmt.Errorf("recipient: unknown id %d", id)
	}
	rec.Contact = c
	return s.saveLocked()
}

// UpdateProfileKey sets the profile key for id.
func (s *Store) UpdateProfileKey(id ID, key []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.byID[s.actualIDLocked(id)]
	if !ok {
		return fmt.Errorf("recipient: unknown id %d", id)
	}
	rec.ProfileKey = key
	rec.ProfileKeyCredential = nil // stale once the key changes
	return s.saveLocked()
}

// UpdateProfile sets the server-sourced profile for id.
func (s *Store) UpdateProfile(id ID, p *Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.byID[s.actualIDLocked(id)]
	if !ok {
		return fmt.Errorf("recipient: unknown id %d", id)
	}
	rec.Profile = p
	return s.saveLocked()
}

// All returns a snapshot of every live recipient.
func (s *Store) All() []*Recipient {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Recipient, 0, len(s.byID))
	for _, r := range s.byID {
		out = append(out, r.clone())
	}
	return out
}

// saveLocked serializes the store to an in-memory buffer first, then writes
// the buffer to the file in a single pass, so a marshal error never
// truncates the existing file. Caller holds s.mu.
func (s *Store) saveLocked() error {
	if s.path == "" {
		return nil
	}

	doc := fileFormat{LastID: uint64(s.lastID)}
	for _, r := range s.byID {
		doc.Recipients = append(doc.Recipients, fromRecipient(r))
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("recipient: marshal store: %w", err)
	}

	if err := os.WriteFile(s.path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("recipient: write store: %w", err)
	}
	return nil
}
