package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Customer is an installation company's end client.
type Customer struct {
	ID         snowflake.ID      `gorm:"primaryKey" json:"id"`
	OrgID      snowflake.ID      `gorm:"not null;index:idx_customers_org" json:"org_id"`
	Name       string            `gorm:"type:text;not null" json:"name"`
	Email      string            `gorm:"type:text" json:"email"`
	Phone      string            `gorm:"type:text" json:"phone"`
	Address    string            `gorm:"type:text" json:"address"`
	City       string            `gorm:"type:text" json:"city"`
	Province   string            `gorm:"type:text" json:"province"`
	PostalCode string            `gorm:"column:postal_code" json:"postal_code"`
	Notes      string            `gorm:"type:text" json:"notes"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata"`
	CreatedAt  time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP;index:idx_customers_cursor,priority:1" json:"created_at"`
	UpdatedAt  time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Customer) TableName() string { return "customers" }
