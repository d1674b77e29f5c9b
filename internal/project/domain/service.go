package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/helioscrm/helios/pkg/db/pagination"
	"gorm.io/datatypes"
)

type CreateProjectRequest struct {
	CustomerID    snowflake.ID `json:"customer_id,string"`
	Name          string       `json:"name"`
	SystemSizeKwp float64      `json:"system_size_kwp,omitempty"`
	PanelCount    int          `json:"panel_count,omitempty"`
	TotalCost     float64      `json:"total_cost,omitempty"`
	Notes         string       `json:"notes,omitempty"`
}

type UpdateStatusRequest struct {
	Status Status `json:"status"`
}

// AttachCalculationRequest stores the calculator and grant outputs the
// customer signed off on, so later recalculations don't change the quote.
type AttachCalculationRequest struct {
	Calculation datatypes.JSONMap `json:"calculation"`
	Grants      datatypes.JSONMap `json:"grants,omitempty"`
}

type ListProjectsRequest struct {
	Status     Status
	CustomerID snowflake.ID
	Pagination pagination.Pagination
}

type ListProjectsResponse struct {
	Projects []Project           `json:"projects"`
	PageInfo pagination.PageInfo `json:"page_info"`
}

type Service interface {
	Create(ctx context.Context, req CreateProjectRequest) (Project, error)
	GetByID(ctx context.Context, id snowflake.ID) (Project, error)
	List(ctx context.Context, req ListProjectsRequest) (ListProjectsResponse, error)
	UpdateStatus(ctx context.Context, id snowflake.ID, req UpdateStatusRequest) (Project, error)
	AttachCalculation(ctx context.Context, id snowflake.ID, req AttachCalculationRequest) (Project, error)
	Delete(ctx context.Context, id snowflake.ID) error
}

var (
	ErrInvalidName       = errors.New("invalid_name")
	ErrInvalidCustomer   = errors.New("invalid_customer")
	ErrInvalidStatus     = errors.New("invalid_status")
	ErrInvalidTransition = errors.New("invalid_transition")
	ErrNotFound          = errors.New("not_found")
)
