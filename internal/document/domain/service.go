package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type GenerateQuoteRequest struct {
	ProjectID snowflake.ID `json:"project_id,string"`
	// ValidDays caps how long the share link works; 0 means 30 days.
	ValidDays int `json:"valid_days,omitempty"`
}

type Service interface {
	// GenerateQuote renders a quote PDF from the project's stored
	// calculation and keeps it for sharing.
	GenerateQuote(ctx context.Context, req GenerateQuoteRequest) (Document, error)
	GetByID(ctx context.Context, id snowflake.ID) (Document, error)
	// GetByShareToken serves the public, unauthenticated download path.
	GetByShareToken(ctx context.Context, token string) (Document, error)
	ListByProject(ctx context.Context, projectID snowflake.ID) ([]Document, error)
}

var (
	ErrInvalidProject = errors.New("invalid_project")
	ErrNotFound       = errors.New("not_found")
	ErrLinkExpired    = errors.New("link_expired")
)
