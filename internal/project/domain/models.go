package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Status tracks an installation project through delivery.
type Status string

const (
	StatusDraft        Status = "draft"
	StatusApproved     Status = "approved"
	StatusInstalling   Status = "installing"
	StatusCommissioned Status = "commissioned"
	StatusClosed       Status = "closed"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusApproved, StatusInstalling, StatusCommissioned, StatusClosed:
		return true
	}
	return false
}

var nextStatus = map[Status]Status{
	StatusDraft:        StatusApproved,
	StatusApproved:     StatusInstalling,
	StatusInstalling:   StatusCommissioned,
	StatusCommissioned: StatusClosed,
}

// CanMoveTo reports whether the project may advance to target. Projects
// move strictly forward; closed is terminal.
func (s Status) CanMoveTo(target Status) bool {
	return target.Valid() && nextStatus[s] == target
}

// Project is one installation job for a customer, carrying the sizing
// and grant snapshots the quote was built from.
type Project struct {
	ID            snowflake.ID      `gorm:"primaryKey" json:"id"`
	OrgID         snowflake.ID      `gorm:"not null;index:idx_projects_org" json:"org_id"`
	CustomerID    snowflake.ID      `gorm:"not null;index" json:"customer_id"`
	Name          string            `gorm:"type:text;not null" json:"name"`
	Status        Status            `gorm:"type:text;not null;default:'draft';index:idx_projects_status" json:"status"`
	SystemSizeKwp float64           `gorm:"column:system_size_kwp" json:"system_size_kwp"`
	PanelCount    int               `gorm:"column:panel_count" json:"panel_count"`
	TotalCost     float64           `gorm:"column:total_cost" json:"total_cost"`
	Calculation   datatypes.JSONMap `gorm:"type:jsonb" json:"calculation,omitempty"`
	Grants        datatypes.JSONMap `gorm:"type:jsonb" json:"grants,omitempty"`
	Notes         string            `gorm:"type:text" json:"notes"`
	CreatedAt     time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Project) TableName() string { return "projects" }
