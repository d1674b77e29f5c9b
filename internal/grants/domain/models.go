package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// GrantType classifies Spanish solar incentives.
type GrantType string

const (
	GrantIRPF   GrantType = "IRPF"
	GrantIBI    GrantType = "IBI"
	GrantICIO   GrantType = "ICIO"
	GrantDirect GrantType = "SUBVENCION_DIRECTA"
)

// GrantRule is one incentive rule scoped to a jurisdiction, a power band
// and a validity window. Rules are shared reference data, not tenant data.
type GrantRule struct {
	ID                  snowflake.ID `gorm:"primaryKey" json:"id"`
	GrantType           GrantType    `gorm:"type:text;not null;index" json:"grant_type"`
	AutonomousCommunity string       `gorm:"type:text;not null;index" json:"autonomous_community"`
	Province            string       `gorm:"type:text" json:"province,omitempty"`
	Municipality        string       `gorm:"type:text" json:"municipality,omitempty"`

	MinPowerKwp float64  `gorm:"not null;default:0" json:"min_power_kwp"`
	MaxPowerKwp *float64 `json:"max_power_kwp,omitempty"`

	ValidFrom time.Time  `gorm:"not null" json:"valid_from"`
	ValidTo   *time.Time `json:"valid_to,omitempty"`

	IRPFPercentage float64 `json:"irpf_percentage,omitempty"`
	IRPFMaxAmount  float64 `json:"irpf_max_amount,omitempty"`

	IBIPercentage    float64 `json:"ibi_percentage,omitempty"`
	IBIDurationYears int     `json:"ibi_duration_years,omitempty"`

	ICIOPercentage float64 `json:"icio_percentage,omitempty"`

	DirectGrantAmount     float64 `json:"direct_grant_amount,omitempty"`
	DirectGrantPercentage float64 `json:"direct_grant_percentage,omitempty"`

	Description             string `gorm:"type:text" json:"description,omitempty"`
	RequiresPreRegistration bool   `json:"requires_pre_registration"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (GrantRule) TableName() string { return "grant_rules" }

// IRPFResult is the income-tax deduction block of a calculation.
type IRPFResult struct {
	Applicable         bool    `json:"applicable"`
	Percentage         float64 `json:"percentage"`
	MaxAmount          float64 `json:"max_amount"`
	MaxBase            float64 `json:"max_base"`
	EstimatedDeduction float64 `json:"estimated_deduction"`
}

// IBIResult is the property-tax relief block.
type IBIResult struct {
	Applicable    bool    `json:"applicable"`
	Percentage    float64 `json:"percentage"`
	DurationYears int     `json:"duration_years"`
	AnnualSavings float64 `json:"annual_savings"`
	TotalSavings  float64 `json:"total_savings"`
}

// ICIOResult is the construction-tax relief block.
type ICIOResult struct {
	Applicable       bool    `json:"applicable"`
	Percentage       float64 `json:"percentage"`
	EstimatedSavings float64 `json:"estimated_savings"`
}

// DirectGrant is one flat incentive from a matching direct-grant rule.
type DirectGrant struct {
	Type                    string  `json:"type"`
	Amount                  float64 `json:"amount"`
	Percentage              float64 `json:"percentage"`
	Description             string  `json:"description"`
	RequiresPreRegistration bool    `json:"requires_pre_registration"`
}

// GrantCalculation is the full incentive summary for one system.
type GrantCalculation struct {
	IRPF         IRPFResult    `json:"irpf"`
	IBI          IBIResult     `json:"ibi"`
	ICIO         ICIOResult    `json:"icio"`
	DirectGrants []DirectGrant `json:"direct_grants"`

	TotalSavings float64 `json:"total_savings"`
	TotalGrants  float64 `json:"total_grants"`
	NetCost      float64 `json:"net_cost"`

	AutonomousCommunity string `json:"autonomous_community"`
	Province            string `json:"province,omitempty"`
	Municipality        string `json:"municipality,omitempty"`

	// Degraded marks a best-effort result produced after a failed rules
	// lookup: all blocks not applicable, all amounts zero.
	Degraded       bool      `json:"degraded,omitempty"`
	DegradedReason string    `json:"degraded_reason,omitempty"`
	CalculatedAt   time.Time `json:"calculated_at"`
}
