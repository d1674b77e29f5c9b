package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/helioscrm/helios/pkg/db/pagination"
	"gorm.io/datatypes"
)

type CreateApplicationRequest struct {
	ProjectID snowflake.ID      `json:"project_id,string"`
	Program   string            `json:"program"`
	GrantType string            `json:"grant_type,omitempty"`
	Amount    float64           `json:"amount"`
	Notes     string            `json:"notes,omitempty"`
	Snapshot  datatypes.JSONMap `json:"snapshot,omitempty"`
}

type TransitionRequest struct {
	Status    ApplicationStatus `json:"status"`
	Reference string            `json:"reference,omitempty"`
	Notes     string            `json:"notes,omitempty"`
}

type ListApplicationsRequest struct {
	ProjectID  snowflake.ID
	Status     ApplicationStatus
	Pagination pagination.Pagination
}

type ListApplicationsResponse struct {
	Applications []Application       `json:"applications"`
	PageInfo     pagination.PageInfo `json:"page_info"`
}

type Service interface {
	Create(ctx context.Context, req CreateApplicationRequest) (Application, error)
	GetByID(ctx context.Context, id snowflake.ID) (Application, error)
	List(ctx context.Context, req ListApplicationsRequest) (ListApplicationsResponse, error)
	Transition(ctx context.Context, id snowflake.ID, req TransitionRequest) (Application, error)
	Delete(ctx context.Context, id snowflake.ID) error
}

var (
	ErrInvalidProgram    = errors.New("invalid_program")
	ErrInvalidProject    = errors.New("invalid_project")
	ErrInvalidAmount     = errors.New("invalid_amount")
	ErrInvalidStatus     = errors.New("invalid_status")
	ErrInvalidTransition = errors.New("invalid_transition")
	ErrNotFound          = errors.New("not_found")
)
