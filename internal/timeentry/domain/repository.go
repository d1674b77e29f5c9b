package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/helioscrm/helios/pkg/db/option"
	"gorm.io/gorm"
)

type EntryQuery struct {
	OrgID     snowflake.ID
	UserID    snowflake.ID
	ProjectID snowflake.ID
	From      time.Time
	To        time.Time
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *TimeEntry) error
	FindOpen(ctx context.Context, db *gorm.DB, orgID, userID snowflake.ID) (*TimeEntry, error)
	Find(ctx context.Context, db *gorm.DB, query EntryQuery, opts ...option.Option) ([]TimeEntry, error)
	Update(ctx context.Context, db *gorm.DB, entry *TimeEntry) error
}
