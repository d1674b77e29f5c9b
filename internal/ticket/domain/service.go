package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/helioscrm/helios/pkg/db/pagination"
)

type CreateTicketRequest struct {
	CustomerID *snowflake.ID  `json:"customer_id,omitempty"`
	ProjectID  *snowflake.ID  `json:"project_id,omitempty"`
	Subject    string         `json:"subject"`
	Body       string         `json:"body,omitempty"`
	Priority   TicketPriority `json:"priority,omitempty"`
}

type UpdateTicketRequest struct {
	Status   TicketStatus   `json:"status,omitempty"`
	Priority TicketPriority `json:"priority,omitempty"`
	Body     string         `json:"body,omitempty"`
}

type ListTicketsRequest struct {
	Status     TicketStatus
	CustomerID snowflake.ID
	Pagination pagination.Pagination
}

type ListTicketsResponse struct {
	Tickets  []Ticket            `json:"tickets"`
	PageInfo pagination.PageInfo `json:"page_info"`
}

type Service interface {
	Create(ctx context.Context, req CreateTicketRequest) (Ticket, error)
	GetByID(ctx context.Context, id snowflake.ID) (Ticket, error)
	List(ctx context.Context, req ListTicketsRequest) (ListTicketsResponse, error)
	Update(ctx context.Context, id snowflake.ID, req UpdateTicketRequest) (Ticket, error)
}

var (
	ErrInvalidSubject  = errors.New("invalid_subject")
	ErrInvalidStatus   = errors.New("invalid_status")
	ErrInvalidPriority = errors.New("invalid_priority")
	ErrNotFound        = errors.New("not_found")
)
