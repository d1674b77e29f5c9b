package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// ApplicationStatus tracks a grant application with the administration.
type ApplicationStatus string

const (
	StatusDraft     ApplicationStatus = "draft"
	StatusSubmitted ApplicationStatus = "submitted"
	StatusApproved  ApplicationStatus = "approved"
	StatusRejected  ApplicationStatus = "rejected"
	StatusPaid      ApplicationStatus = "paid"
)

// Valid reports whether s is a known status.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusApproved, StatusRejected, StatusPaid:
		return true
	}
	return false
}

var allowedTransitions = map[ApplicationStatus][]ApplicationStatus{
	StatusDraft:     {StatusSubmitted},
	StatusSubmitted: {StatusApproved, StatusRejected},
	StatusApproved:  {StatusPaid},
}

// CanMoveTo reports whether the application may move to target.
// Rejected and paid are terminal.
func (s ApplicationStatus) CanMoveTo(target ApplicationStatus) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Application is one subsidy request filed for a project.
type Application struct {
	ID          snowflake.ID      `gorm:"primaryKey" json:"id"`
	OrgID       snowflake.ID      `gorm:"not null;index:idx_subsidy_applications_org" json:"org_id"`
	ProjectID   snowflake.ID      `gorm:"not null;index" json:"project_id"`
	Program     string            `gorm:"type:text;not null" json:"program"`
	GrantType   string            `gorm:"column:grant_type;type:text" json:"grant_type"`
	Amount      float64           `gorm:"not null" json:"amount"`
	Status      ApplicationStatus `gorm:"type:text;not null;default:'draft'" json:"status"`
	Reference   string            `gorm:"type:text" json:"reference"`
	Notes       string            `gorm:"type:text" json:"notes"`
	Snapshot    datatypes.JSONMap `gorm:"type:jsonb" json:"snapshot,omitempty"`
	SubmittedAt *time.Time        `json:"submitted_at,omitempty"`
	ResolvedAt  *time.Time        `json:"resolved_at,omitempty"`
	CreatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Application) TableName() string { return "subsidy_applications" }
