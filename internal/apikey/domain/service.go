package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type IssueKeyRequest struct {
	OrgID  snowflake.ID `json:"org_id,string"`
	Name   string       `json:"name"`
	Scopes []string     `json:"scopes,omitempty"`
}

// IssueKeyResponse carries the plaintext secret exactly once.
type IssueKeyResponse struct {
	Key    APIKey `json:"key"`
	Secret string `json:"secret"`
}

type Service interface {
	Issue(ctx context.Context, req IssueKeyRequest) (IssueKeyResponse, error)
	// Resolve authenticates a raw bearer secret and returns the active
	// key it belongs to, updating its last-used timestamp.
	Resolve(ctx context.Context, raw string) (APIKey, error)
	Revoke(ctx context.Context, id snowflake.ID) error
}

var (
	ErrInvalidName = errors.New("invalid_name")
	ErrInvalidOrg  = errors.New("invalid_org")
	ErrInvalidKey  = errors.New("invalid_key")
	ErrNotFound    = errors.New("not_found")
)
