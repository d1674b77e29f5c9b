package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type DocumentKind string

const (
	KindQuote DocumentKind = "quote"
)

// Document is a generated file kept for sharing with the customer.
// ShareToken is an unguessable UUID used for public download links.
type Document struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID       snowflake.ID `gorm:"not null;index:idx_documents_org" json:"org_id"`
	ProjectID   snowflake.ID `gorm:"not null;index" json:"project_id"`
	Kind        DocumentKind `gorm:"type:text;not null" json:"kind"`
	Filename    string       `gorm:"type:text;not null" json:"filename"`
	ContentType string       `gorm:"column:content_type;not null" json:"content_type"`
	Content     []byte       `gorm:"type:bytea" json:"-"`
	ShareToken  string       `gorm:"column:share_token;not null;uniqueIndex:ux_documents_token" json:"share_token"`
	ExpiresAt   *time.Time   `gorm:"column:expires_at" json:"expires_at,omitempty"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Document) TableName() string { return "documents" }

// Expired reports whether the share link is no longer valid.
func (d Document) Expired(now time.Time) bool {
	return d.ExpiresAt != nil && now.After(*d.ExpiresAt)
}
