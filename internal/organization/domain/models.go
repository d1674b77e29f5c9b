// Package domain contains persistence models for the org service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// SubscriptionPlan gates access to business-tier features.
type SubscriptionPlan string

const (
	PlanStarter SubscriptionPlan = "starter"
	PlanPro     SubscriptionPlan = "pro"
)

// Organization represents a tenant: one solar installation company.
type Organization struct {
	ID               snowflake.ID      `gorm:"primaryKey" json:"id"`
	Name             string            `gorm:"type:text;not null" json:"name"`
	Slug             string            `gorm:"type:text;not null;uniqueIndex:ux_organizations_slug" json:"slug"`
	SubscriptionPlan SubscriptionPlan  `gorm:"type:text;not null;default:'starter'" json:"subscription_plan"`
	GodMode          bool              `gorm:"column:god_mode;not null;default:false" json:"god_mode"`
	SupportEmail     string            `gorm:"type:text;column:support_email" json:"support_email"`
	CountryCode      string            `gorm:"column:country_code" json:"country_code"`
	Metadata         datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata"`
	CreatedAt        time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Organization) TableName() string { return "organizations" }

// EntitledToCalculator reports whether the org may use the solar
// calculator: pro plan or the god-mode override.
func (o Organization) EntitledToCalculator() bool {
	return o.SubscriptionPlan == PlanPro || o.GodMode
}

// OrganizationMember represents membership of a user in an organization.
type OrganizationMember struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID     snowflake.ID `gorm:"not null;index;uniqueIndex:ux_org_user,priority:1" json:"org_id"`
	UserID    snowflake.ID `gorm:"not null;index;uniqueIndex:ux_org_user,priority:2" json:"user_id"`
	Role      string       `gorm:"type:text;not null" json:"role"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (OrganizationMember) TableName() string { return "organization_members" }
