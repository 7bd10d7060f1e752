package recipient

import (
	"encoding/base64"
	"fmt"

	"github.com/google/uuid"
)

// fileFormat is the on-disk JSON shape of the recipient store.
type fileFormat struct {
	LastID     uint64           `json:"lastId"`
	Recipients []recipientEntry `json:"recipients"`
}

type recipientEntry struct {
	ID                   uint64        `json:"id"`
	Number               *string       `json:"number"`
	UUID                 *string       `json:"uuid"`
	ProfileKey           *string       `json:"profileKey"`
	ProfileKeyCredential *string       `json:"profileKeyCredential"`
	Contact              *contactEntry `json:"contact"`
	Profile              *profileEntry `json:"profile"`
}

type contactEntry struct {
	Name                  string  `json:"name"`
	Color                 *string `json:"color"`
	MessageExpirationTime uint32  `json:"messageExpirationTime"`
	Blocked               bool    `json:"blocked"`
	Archived              bool    `json:"archived"`
}

type profileEntry struct {
	LastUpdateTimestamp    uint64   `json:"lastUpdateTimestamp"`
	GivenName              *string  `json:"givenName"`
	FamilyName             *string  `json:"familyName"`
	About                  *string  `json:"about"`
	AboutEmoji             *string  `json:"aboutEmoji"`
	AvatarURLPath          *string  `json:"avatarUrlPath"`
	UnidentifiedAccessMode string   `json:"unidentifiedAccessMode"`
	Capabilities           []string `json:"capabilities"`
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// fromRecipient converts an in-memory Recipient into its wire form.
func fromRecipient(r *Recipient) recipientEntry {
	e := recipientEntry{ID: uint64(r.ID)}
	if r.Address.HasNumber() {
		e.Number = strPtr(r.Address.Number)
	}
	if r.Address.HasUUID() {
		e.UUID = strPtr(r.Address.UUID.UUID.String())
	}
	if len(r.ProfileKey) > 0 {
		e.ProfileKey = strPtr(base64.StdEncoding.EncodeToString(r.ProfileKey))
	}
	if len(r.ProfileKeyCredential) > 0 {
		e.ProfileKeyCredential = strPtr(base64.StdEncoding.EncodeToString(r.ProfileKeyCredential))
	}
	if r.Contact != nil {
		e.Contact = &contactEntry{
			Name:                  r.Contact.Name,
			Color:                 strPtr(r.Contact.Color),
			MessageExpirationTime: r.Contact.MessageExpirationTime,
			Blocked:               r.Contact.Blocked,
			Archived:              r.Contact.Archived,
		}
	}
	if r.Profile != nil {
		e.Profile = &profileEntry{
			LastUpdateTimestamp:    r.Profile.LastUpdateTimestamp,
			GivenName:              strPtr(r.Profile.GivenName),
			FamilyName:             strPtr(r.Profile.FamilyName),
			About:                  strPtr(r.Profile.About),
			AboutEmoji:             strPtr(r.Profile.AboutEmoji),
			AvatarURLPath:          strPtr(r.Profile.AvatarURLPath),
			UnidentifiedAccessMode: r.Profile.UnidentifiedAccessMode.String(),
			Capabilities:           r.Profile.Capabilities,
		}
	}
	return e
}

// knownCapabilities lists the capability names understood by this build.
// Unknown names are silently dropped on load per the store's persistence
// contract.
var knownCapabilities = map[string]bool{
	"GV2":            true,
	"STORAGE":        true,
	"GV1_MIGRATION":  true,
	"SENDER_KEY":     true,
	"ANNOUNCEMENT_GROUP": true,
	"CHANGE_NUMBER":  true,
	"PNI":            true,
}

// toRecipient converts a wire entry back into an in-memory Recipient.
func (e recipientEntry) toRecipient() (*Recipient, error) {
	r := &Recipient{ID: ID(e.ID)}

	switch {
	case e.UUID != nil && e.Number != nil:
		id, err := uuid.Parse(*e.UUID)
		if err != nil {
			return nil, fmt.Errorf("uuid: %w", err)
		}
		r.Address = Address{UUID: uuid.NullUUID{UUID: id, Valid: true}, Number: *e.Number}
	case e.UUID != nil:
		id, err := uuid.Parse(*e.UUID)
		if err != nil {
			return nil, fmt.Errorf("uuid: %w", err)
		}
		r.Address = FromUUID(id)
	case e.Number != nil:
		r.Address = FromNumber(*e.Number)
	default:
		return nil, fmt.Errorf("recipient has neither uuid nor number")
	}

	if e.ProfileKey != nil {
		key, err := base64.StdEncoding.DecodeString(*e.ProfileKey)
		if err != nil {
			return nil, fmt.Errorf("profileKey: %w", err)
		}
		r.ProfileKey = key
	}
	if e.ProfileKeyCredential != nil {
		cred, err := base64.StdEncoding.DecodeString(*e.ProfileKeyCredential)
		if err != nil {
			return nil, fmt.Errorf("profileKeyCredential: %w", err)
		}
		r.ProfileKeyCredential = cred
	}
	if e.Contact != nil {
		r.Contact = &Contact{
			Name:                  e.Contact.Name,
			Color:                 deref(e.Contact.Color),
			MessageExpirationTime: e.Contact.MessageExpirationTime,
			Blocked:               e.Contact.Blocked,
			Archived:              e.Contact.Archived,
		}
	}
	if e.Profile != nil {
		var caps []string
		for _, c := range e.Profile.Capabilities {
			if knownCapabilities[c] {
				caps = append(caps, c)
			}
		}
		r.Profile = &Profile{
			LastUpdateTimestamp:    e.Profile.LastUpdateTimestamp,
			GivenName:              deref(e.Profile.GivenName),
			FamilyName:             deref(e.Profile.FamilyName),
			About:                  deref(e.Profile.About),
			AboutEmoji:             deref(e.Profile.AboutEmoji),
			AvatarURLPath:          deref(e.Profile.AvatarURLPath),
			UnidentifiedAccessMode: parseAccessMode(e.Profile.UnidentifiedAccessMode),
			Capabilities:           caps,
		}
	}
	return r, nil
}
