package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/helioscrm/helios/pkg/db/pagination"
)

type CreateLeadRequest struct {
	Name             string  `json:"name"`
	Email            string  `json:"email,omitempty"`
	Phone            string  `json:"phone,omitempty"`
	Address          string  `json:"address,omitempty"`
	City             string  `json:"city,omitempty"`
	Province         string  `json:"province,omitempty"`
	Source           string  `json:"source,omitempty"`
	EstimatedSizeKwp float64 `json:"estimated_size_kwp,omitempty"`
	Notes            string  `json:"notes,omitempty"`
}

type MoveLeadRequest struct {
	Stage Stage `json:"stage"`
	// Position is the target slot in the destination column; nil appends
	// to the end.
	Position *int `json:"position,omitempty"`
}

type ListLeadsRequest struct {
	Stage      Stage
	Pagination pagination.Pagination
}

type ListLeadsResponse struct {
	Leads    []Lead              `json:"leads"`
	PageInfo pagination.PageInfo `json:"page_info"`
}

// ConvertResult carries the customer created from a won lead.
type ConvertResult struct {
	Lead       Lead         `json:"lead"`
	CustomerID snowflake.ID `json:"customer_id"`
}

type Service interface {
	Create(ctx context.Context, req CreateLeadRequest) (Lead, error)
	GetByID(ctx context.Context, id snowflake.ID) (Lead, error)
	List(ctx context.Context, req ListLeadsRequest) (ListLeadsResponse, error)
	// Move transitions the lead along the pipeline. Only the next stage
	// forward, or lost, is reachable from any active stage. Moving within
	// the current stage reorders the board column; crossing stages closes
	// the gap in the source column and opens one at the target position.
	Move(ctx context.Context, id snowflake.ID, req MoveLeadRequest) (Lead, error)
	// Convert marks the lead won and creates a customer from its
	// contact details. Converting an already converted lead fails.
	Convert(ctx context.Context, id snowflake.ID) (ConvertResult, error)
	Delete(ctx context.Context, id snowflake.ID) error
}

var (
	ErrInvalidName       = errors.New("invalid_name")
	ErrInvalidStage      = errors.New("invalid_stage")
	ErrInvalidTransition = errors.New("invalid_transition")
	ErrAlreadyConverted  = errors.New("already_converted")
	ErrNotFound          = errors.New("not_found")
)
