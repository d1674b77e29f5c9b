package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/lib/pq"
)

// KeyPrefix leads every issued key so secrets are recognizable in
// scanners and support tickets without storing them.
const KeyPrefix = "hel_"

// APIKey authenticates server-to-server callers for one organization.
// Only the SHA-256 of the secret is stored.
type APIKey struct {
	ID         snowflake.ID   `gorm:"primaryKey" json:"id"`
	OrgID      snowflake.ID   `gorm:"not null;index:idx_api_keys_org" json:"org_id"`
	Name       string         `gorm:"type:text;not null" json:"name"`
	KeyHash    string         `gorm:"column:key_hash;not null;uniqueIndex:ux_api_keys_hash" json:"-"`
	Scopes     pq.StringArray `gorm:"type:text[]" json:"scopes"`
	LastUsedAt *time.Time     `gorm:"column:last_used_at" json:"last_used_at,omitempty"`
	RevokedAt  *time.Time     `gorm:"column:revoked_at" json:"revoked_at,omitempty"`
	CreatedAt  time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (APIKey) TableName() string { return "api_keys" }

// Active reports whether the key may still authenticate requests.
func (k APIKey) Active() bool { return k.RevokedAt == nil }

// HasScope reports whether the key carries the scope. A key with no
// scopes is unrestricted.
func (k APIKey) HasScope(scope string) bool {
	if len(k.Scopes) == 0 {
		return true
	}
	for _, s := range k.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// HashAPIKey returns the hex SHA-256 digest stored and looked up in
// place of the raw secret.
func HashAPIKey(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
