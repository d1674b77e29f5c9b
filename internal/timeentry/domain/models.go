package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// TimeEntry records one worked interval for a field technician. An
// entry with a nil ClockOut is still open.
type TimeEntry struct {
	ID        snowflake.ID  `gorm:"primaryKey" json:"id"`
	OrgID     snowflake.ID  `gorm:"not null;index:idx_time_entries_org" json:"org_id"`
	UserID    snowflake.ID  `gorm:"not null;index:idx_time_entries_user" json:"user_id"`
	ProjectID *snowflake.ID `gorm:"index" json:"project_id,omitempty"`
	ClockIn   time.Time     `gorm:"column:clock_in;not null" json:"clock_in"`
	ClockOut  *time.Time    `gorm:"column:clock_out" json:"clock_out,omitempty"`
	Notes     string        `gorm:"type:text" json:"notes"`
	CreatedAt time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (TimeEntry) TableName() string { return "time_entries" }

// Open reports whether the entry has not been clocked out yet.
func (e TimeEntry) Open() bool { return e.ClockOut == nil }

// Duration returns the worked duration, zero while the entry is open.
func (e TimeEntry) Duration() time.Duration {
	if e.ClockOut == nil {
		return 0
	}
	return e.ClockOut.Sub(e.ClockIn)
}
