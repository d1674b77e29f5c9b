package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/helioscrm/helios/internal/orgcontext"
	"github.com/helioscrm/helios/internal/ticket/domain"
	"github.com/helioscrm/helios/pkg/db/option"
	"github.com/helioscrm/helios/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("ticket.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateTicketRequest) (domain.Ticket, error) {
	subject := strings.TrimSpace(req.Subject)
	if subject == "" {
		return domain.Ticket{}, domain.ErrInvalidSubject
	}

	priority := req.Priority
	if priority == "" {
		priority = domain.PriorityNormal
	}
	if !priority.Valid() {
		return domain.Ticket{}, domain.ErrInvalidPriority
	}

	now := time.Now().UTC()
	ticket := domain.Ticket{
		ID:         s.genID.Generate(),
		OrgID:      orgcontext.OrgIDFromContext(ctx),
		CustomerID: req.CustomerID,
		ProjectID:  req.ProjectID,
		Subject:    subject,
		Body:       req.Body,
		Status:     domain.StatusOpen,
		Priority:   priority,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Insert(ctx, s.db, &ticket); err != nil {
		return domain.Ticket{}, err
	}

	return ticket, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (domain.Ticket, error) {
	ticket, err := s.repo.FindByID(ctx, s.db, orgcontext.OrgIDFromContext(ctx), id)
	if err != nil {
		return domain.Ticket{}, err
	}
	if ticket == nil {
		return domain.Ticket{}, domain.ErrNotFound
	}
	return *ticket, nil
}

func (s *Service) List(ctx context.Context, req domain.ListTicketsRequest) (domain.ListTicketsResponse, error) {
	if req.Status != "" && !req.Status.Valid() {
		return domain.ListTicketsResponse{}, domain.ErrInvalidStatus
	}

	size := req.Pagination.PageSize
	if size <= 0 {
		size = 10
	}

	query := domain.TicketQuery{
		OrgID:      orgcontext.OrgIDFromContext(ctx),
		CustomerID: req.CustomerID,
		Status:     req.Status,
	}

	tickets, err := s.repo.Find(ctx, s.db, query, option.ApplyPagination(req.Pagination))
	if err != nil {
		return domain.ListTicketsResponse{}, err
	}

	pageInfo := pagination.PageInfo{}
	if len(tickets) > size {
		tickets = tickets[:size]
		pageInfo.HasMore = true

		last := tickets[len(tickets)-1]
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        last.ID.String(),
			CreatedAt: last.CreatedAt.UTC().Format(time.RFC3339),
		})
		if err != nil {
			return domain.ListTicketsResponse{}, err
		}
		pageInfo.NextPageToken = token
	}

	return domain.ListTicketsResponse{
		Tickets:  tickets,
		PageInfo: pageInfo,
	}, nil
}

func (s *Service) Update(ctx context.Context, id snowflake.ID, req domain.UpdateTicketRequest) (domain.Ticket, error) {
	ticket, err := s.repo.FindByID(ctx, s.db, orgcontext.OrgIDFromContext(ctx), id)
	if err != nil {
		return domain.Ticket{}, err
	}
	if ticket == nil {
		return domain.Ticket{}, domain.ErrNotFound
	}

	now := time.Now().UTC()
	if req.Status != "" {
		if !req.Status.Valid() {
			return domain.Ticket{}, domain.ErrInvalidStatus
		}
		ticket.Status = req.Status
		if req.Status == domain.StatusClosed {
			ticket.ClosedAt = &now
		} else {
			ticket.ClosedAt = nil
		}
	}
	if req.Priority != "" {
		if !req.Priority.Valid() {
			return domain.Ticket{}, domain.ErrInvalidPriority
		}
		ticket.Priority = req.Priority
	}
	if req.Body != "" {
		ticket.Body = req.Body
	}

	ticket.UpdatedAt = now
	if err := s.repo.Update(ctx, s.db, ticket); err != nil {
		return domain.Ticket{}, err
	}

	return *ticket, nil
}
