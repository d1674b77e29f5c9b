package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/helioscrm/helios/internal/orgcontext"
	projectdomain "github.com/helioscrm/helios/internal/project/domain"
	"github.com/helioscrm/helios/internal/subsidy/domain"
	"github.com/helioscrm/helios/pkg/db/option"
	"github.com/helioscrm/helios/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     domain.Repository
	Projects projectdomain.Service
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	repo     domain.Repository
	projects projectdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("subsidy.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		projects: p.Projects,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateApplicationRequest) (domain.Application, error) {
	program := strings.TrimSpace(req.Program)
	if program == "" {
		return domain.Application{}, domain.ErrInvalidProgram
	}
	if req.Amount < 0 {
		return domain.Application{}, domain.ErrInvalidAmount
	}
	if req.ProjectID == 0 {
		return domain.Application{}, domain.ErrInvalidProject
	}

	if _, err := s.projects.GetByID(ctx, req.ProjectID); err != nil {
		if errors.Is(err, projectdomain.ErrNotFound) {
			return domain.Application{}, domain.ErrInvalidProject
		}
		return domain.Application{}, err
	}

	now := time.Now().UTC()
	app := domain.Application{
		ID:        s.genID.Generate(),
		OrgID:     orgcontext.OrgIDFromContext(ctx),
		ProjectID: req.ProjectID,
		Program:   program,
		GrantType: strings.TrimSpace(req.GrantType),
		Amount:    req.Amount,
		Status:    domain.StatusDraft,
		Notes:     req.Notes,
		Snapshot:  req.Snapshot,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, s.db, &app); err != nil {
		return domain.Application{}, err
	}

	return app, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (domain.Application, error) {
	app, err := s.repo.FindByID(ctx, s.db, orgcontext.OrgIDFromContext(ctx), id)
	if err != nil {
		return domain.Application{}, err
	}
	if app == nil {
		return domain.Application{}, domain.ErrNotFound
	}
	return *app, nil
}

func (s *Service) List(ctx context.Context, req domain.ListApplicationsRequest) (domain.ListApplicationsResponse, error) {
	if req.Status != "" && !req.Status.Valid() {
		return domain.ListApplicationsResponse{}, domain.ErrInvalidStatus
	}

	size := req.Pagination.PageSize
	if size <= 0 {
		size = 10
	}

	query := domain.ApplicationQuery{
		OrgID:     orgcontext.OrgIDFromContext(ctx),
		ProjectID: req.ProjectID,
		Status:    req.Status,
	}

	apps, err := s.repo.Find(ctx, s.db, query, option.ApplyPagination(req.Pagination))
	if err != nil {
		return domain.ListApplicationsResponse{}, err
	}

	pageInfo := pagination.PageInfo{}
	if len(apps) > size {
		apps = apps[:size]
		pageInfo.HasMore = true

		last := apps[len(apps)-1]
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        last.ID.String(),
			CreatedAt: last.CreatedAt.UTC().Format(time.RFC3339),
		})
		if err != nil {
			return domain.ListApplicationsResponse{}, err
		}
		pageInfo.NextPageToken = token
	}

	return domain.ListApplicationsResponse{
		Applications: apps,
		PageInfo:     pageInfo,
	}, nil
}

func (s *Service) Transition(ctx context.Context, id snowflake.ID, req domain.TransitionRequest) (domain.Application, error) {
	if !req.Status.Valid() {
		return domain.Application{}, domain.ErrInvalidStatus
	}

	app, err := s.repo.FindByID(ctx, s.db, orgcontext.OrgIDFromContext(ctx), id)
	if err != nil {
		return domain.Application{}, err
	}
	if app == nil {
		return domain.Application{}, domain.ErrNotFound
	}

	if !app.Status.CanMoveTo(req.Status) {
		return domain.Application{}, domain.ErrInvalidTransition
	}

	now := time.Now().UTC()
	app.Status = req.Status
	if req.Reference != "" {
		app.Reference = strings.TrimSpace(req.Reference)
	}
	if req.Notes != "" {
		app.Notes = req.Notes
	}

	switch req.Status {
	case domain.StatusSubmitted:
		app.SubmittedAt = &now
	case domain.StatusApproved, domain.StatusRejected:
		app.ResolvedAt = &now
	}

	app.UpdatedAt = now
	if err := s.repo.Update(ctx, s.db, app); err != nil {
		return domain.Application{}, err
	}

	s.log.Info("subsidy application transitioned",
		zap.String("application_id", app.ID.String()),
		zap.String("status", string(app.Status)),
	)

	return *app, nil
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	orgID := orgcontext.OrgIDFromContext(ctx)
	app, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return err
	}
	if app == nil {
		return domain.ErrNotFound
	}
	return s.repo.Delete(ctx, s.db, orgID, id)
}
