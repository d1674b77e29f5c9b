package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/helioscrm/helios/pkg/db/pagination"
)

type ClockInRequest struct {
	ProjectID *snowflake.ID `json:"project_id,omitempty"`
	Notes     string        `json:"notes,omitempty"`
}

type ClockOutRequest struct {
	Notes string `json:"notes,omitempty"`
}

type ListEntriesRequest struct {
	UserID     snowflake.ID
	ProjectID  snowflake.ID
	From       time.Time
	To         time.Time
	Pagination pagination.Pagination
}

type ListEntriesResponse struct {
	Entries      []TimeEntry         `json:"entries"`
	TotalMinutes int64               `json:"total_minutes"`
	PageInfo     pagination.PageInfo `json:"page_info"`
}

type Service interface {
	// ClockIn opens an entry for the calling user. A user may have at
	// most one open entry.
	ClockIn(ctx context.Context, req ClockInRequest) (TimeEntry, error)
	// ClockOut closes the calling user's open entry.
	ClockOut(ctx context.Context, req ClockOutRequest) (TimeEntry, error)
	// Active returns the calling user's open entry, if any.
	Active(ctx context.Context) (*TimeEntry, error)
	List(ctx context.Context, req ListEntriesRequest) (ListEntriesResponse, error)
}

var (
	ErrAlreadyClockedIn = errors.New("already_clocked_in")
	ErrNotClockedIn     = errors.New("not_clocked_in")
	ErrMissingUser      = errors.New("missing_user")
	ErrNotFound         = errors.New("not_found")
)
