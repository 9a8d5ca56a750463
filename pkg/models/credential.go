package models

import (
	"time"

	"github.com/google/uuid"
)

// Credential is a row of the api_keys table. It is either a service API key
// (KeyValue set, Email nil) or a user account (Email set, KeyValue added later
// from the dashboard). Email holds the salted SHA3-512 hash, never plaintext.
type Credential struct {
	ID                uuid.UUID  `db:"id"                 json:"id"`
	KeyValue          *string    `db:"key_value"          json:"-"`
	Email             *string    `db:"email"              json:"-"`
	Password          *string    `db:"password"           json:"-"`
	IsActive          bool       `db:"is_active"          json:"is_active"`
	EmailVerified     bool       `db:"email_verified"     json:"email_verified"`
	VerificationToken *string    `db:"verification_token" json:"-"`
	UsageCount        int64      `db:"usage_count"        json:"usage_count"`
	LastUsedAt        *time.Time `db:"last_used_at"       json:"last_used_at,omitempty"`
	LastConnection    *time.Time `db:"last_connection"    json:"last_connection,omitempty"`
	CreatedAt         time.Time  `db:"created_at"         json:"created_at"`
}

// HasKey reports whether an API key value has been issued for the record.
func (c *Credential) HasKey() bool {
	return c.KeyValue != nil && *c.KeyValue != ""
}

// Key returns the key value, or "" when none was issued.
func (c *Credential) Key() string {
	if c.KeyValue == nil {
		return ""
	}
	return *c.KeyValue
}

// MaskedKey returns the first eight characters of the key followed by an ellipsis.
func (c *Credential) MaskedKey() string {
	k := c.Key()
	if len(k) <= 8 {
		return k
	}
	return k[:8] + "..."
}
