package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type TicketStatus string

const (
	StatusOpen       TicketStatus = "open"
	StatusInProgress TicketStatus = "in_progress"
	StatusClosed     TicketStatus = "closed"
)

// Valid reports whether s is a known status.
func (s TicketStatus) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusClosed:
		return true
	}
	return false
}

type TicketPriority string

const (
	PriorityLow    TicketPriority = "low"
	PriorityNormal TicketPriority = "normal"
	PriorityHigh   TicketPriority = "high"
)

// Valid reports whether p is a known priority.
func (p TicketPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh:
		return true
	}
	return false
}

// Ticket is a post-sale support request, usually tied to a customer.
type Ticket struct {
	ID         snowflake.ID   `gorm:"primaryKey" json:"id"`
	OrgID      snowflake.ID   `gorm:"not null;index:idx_tickets_org" json:"org_id"`
	CustomerID *snowflake.ID  `gorm:"index" json:"customer_id,omitempty"`
	ProjectID  *snowflake.ID  `gorm:"index" json:"project_id,omitempty"`
	Subject    string         `gorm:"type:text;not null" json:"subject"`
	Body       string         `gorm:"type:text" json:"body"`
	Status     TicketStatus   `gorm:"type:text;not null;default:'open'" json:"status"`
	Priority   TicketPriority `gorm:"type:text;not null;default:'normal'" json:"priority"`
	ClosedAt   *time.Time     `json:"closed_at,omitempty"`
	CreatedAt  time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Ticket) TableName() string { return "tickets" }
