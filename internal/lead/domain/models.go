package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Stage is a lead's position on the sales Kanban board.
type Stage string

const (
	StageNew       Stage = "new"
	StageContacted Stage = "contacted"
	StageQualified Stage = "qualified"
	StageProposal  Stage = "proposal"
	StageWon       Stage = "won"
	StageLost      Stage = "lost"
)

// Valid reports whether s is a known stage.
func (s Stage) Valid() bool {
	switch s {
	case StageNew, StageContacted, StageQualified, StageProposal, StageWon, StageLost:
		return true
	}
	return false
}

// Terminal reports whether the lead can no longer move.
func (s Stage) Terminal() bool {
	return s == StageWon || s == StageLost
}

// forward transitions only; any active lead may also drop to lost.
var nextStage = map[Stage]Stage{
	StageNew:       StageContacted,
	StageContacted: StageQualified,
	StageQualified: StageProposal,
	StageProposal:  StageWon,
}

// CanMoveTo reports whether a lead at stage s may move to target.
func (s Stage) CanMoveTo(target Stage) bool {
	if s.Terminal() || !target.Valid() || target == s {
		return false
	}
	if target == StageLost {
		return true
	}
	return nextStage[s] == target
}

// Lead is a sales prospect moving through the pipeline.
type Lead struct {
	ID               snowflake.ID      `gorm:"primaryKey" json:"id"`
	OrgID            snowflake.ID      `gorm:"not null;index:idx_leads_org" json:"org_id"`
	CustomerID       *snowflake.ID     `gorm:"index" json:"customer_id,omitempty"`
	Name             string            `gorm:"type:text;not null" json:"name"`
	Email            string            `gorm:"type:text" json:"email"`
	Phone            string            `gorm:"type:text" json:"phone"`
	Address          string            `gorm:"type:text" json:"address"`
	City             string            `gorm:"type:text" json:"city"`
	Province         string            `gorm:"type:text" json:"province"`
	Stage            Stage             `gorm:"type:text;not null;default:'new';index:idx_leads_stage" json:"stage"`
	Position         int               `gorm:"not null;default:0" json:"position"`
	Source           string            `gorm:"type:text" json:"source"`
	EstimatedSizeKwp float64           `gorm:"column:estimated_size_kwp" json:"estimated_size_kwp"`
	Notes            string            `gorm:"type:text" json:"notes"`
	Metadata         datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata"`
	CreatedAt        time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Lead) TableName() string { return "leads" }
