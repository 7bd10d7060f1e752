// Package recipient implements identity reconciliation for Signal addresses:
// resolving and merging the two identifiers a contact may be known by (a
// stable service UUID and an E.164 phone number) into a single internal id.
package recipient

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Address is a value type pairing an optional service UUID with an optional
// E.164 phone number. At least one field must be present.
type Address struct {
	UUID   uuid.NullUUID
	Number string // empty means absent
}

// NewAddress builds an Address from raw strings. Either may be empty, but
// not both.
func NewAddress(rawUUID, number string) (Address, error) {
	addr := Address{Number: number}
	if rawUUID != "" {
		id, err := uuid.Parse(rawUUID)
		if err != nil {
			return Address{}, fmt.Errorf("recipient: invalid uuid %q: %w", rawUUID, err)
		}
		addr.UUID = uuid.NullUUID{UUID: id, Valid: true}
	}
	if !addr.UUID.Valid && addr.Number == "" {
		return Address{}, fmt.Errorf("recipient: address needs a uuid or a number")
	}
	return addr, nil
}

// FromUUID builds a uuid-only address.
func FromUUID(id uuid.UUID) Address {
	return Address{UUID: uuid.NullUUID{UUID: id, Valid: true}}
}

// FromNumber builds a number-only address.
func FromNumber(number string) Address {
	return Address{Number: number}
}

// HasUUID reports whether the address carries a uuid.
func (a Address) HasUUID() bool { return a.UUID.Valid }

// HasNumber reports whether the address carries a phone number.
func (a Address) HasNumber() bool { return a.Number != "" }

// String renders the address for logging: "uuid/number", with either half
// omitted when absent.
func (a Address) String() string {
	var parts []string
	if a.UUID.Valid {
		parts = append(parts, a.UUID.UUID.String())
	}
	if a.Number != "" {
		parts = append(parts, a.Number)
	}
	return strings.Join(parts, "/")
}

// Compatible reports whether two addresses agree on every field present in
// both. Addresses with no overlapping fields are trivially compatible.
func (a Address) Compatible(b Address) bool {
	if a.UUID.Valid && b.UUID.Valid && a.UUID.UUID != b.UUID.UUID {
		return false
	}
	if a.Number != "" && b.Number != "" && a.Number != b.Number {
		return false
	}
	return true
}

// withUUID returns a copy of a with the uuid replaced.
func (a Address) withUUID(id uuid.NullUUID) Address {
	a.UUID = id
	return a
}

// withNumber returns a copy of a with the number replaced.
func (a Address) withNumber(number string) Address {
	a.Number = number
	return a
}

// isE164 reports whether s looks like an E.164 phone number: a leading '+'
// followed by 1-15 digits.
func isE164(s string) bool {
	if len(s) < 2 || s[0] != '+' {
		return false
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s)-1 <= 15
}
