package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	customerdomain "github.com/helioscrm/helios/internal/customer/domain"
	"github.com/helioscrm/helios/internal/orgcontext"
	"github.com/helioscrm/helios/internal/project/domain"
	"github.com/helioscrm/helios/pkg/db/option"
	"github.com/helioscrm/helios/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Repo      domain.Repository
	Customers customerdomain.Service
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	repo      domain.Repository
	customers customerdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("project.service"),
		genID:     p.GenID,
		repo:      p.Repo,
		customers: p.Customers,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateProjectRequest) (domain.Project, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Project{}, domain.ErrInvalidName
	}
	if req.CustomerID == 0 {
		return domain.Project{}, domain.ErrInvalidCustomer
	}

	// The customer must belong to the caller's org.
	if _, err := s.customers.GetByID(ctx, req.CustomerID); err != nil {
		if errors.Is(err, customerdomain.ErrNotFound) {
			return domain.Project{}, domain.ErrInvalidCustomer
		}
		return domain.Project{}, err
	}

	now := time.Now().UTC()
	project := domain.Project{
		ID:            s.genID.Generate(),
		OrgID:         orgcontext.OrgIDFromContext(ctx),
		CustomerID:    req.CustomerID,
		Name:          name,
		Status:        domain.StatusDraft,
		SystemSizeKwp: req.SystemSizeKwp,
		PanelCount:    req.PanelCount,
		TotalCost:     req.TotalCost,
		Notes:         req.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Insert(ctx, s.db, &project); err != nil {
		return domain.Project{}, err
	}

	return project, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (domain.Project, error) {
	project, err := s.repo.FindByID(ctx, s.db, orgcontext.OrgIDFromContext(ctx), id)
	if err != nil {
		return domain.Project{}, err
	}
	if project == nil {
		return domain.Project{}, domain.ErrNotFound
	}
	return *project, nil
}

func (s *Service) List(ctx context.Context, req domain.ListProjectsRequest) (domain.ListProjectsResponse, error) {
	if req.Status != "" && !req.Status.Valid() {
		return domain.ListProjectsResponse{}, domain.ErrInvalidStatus
	}

	size := req.Pagination.PageSize
	if size <= 0 {
		size = 10
	}

	query := domain.ProjectQuery{
		OrgID:      orgcontext.OrgIDFromContext(ctx),
		CustomerID: req.CustomerID,
		Status:     req.Status,
	}

	projects, err := s.repo.Find(ctx, s.db, query, option.ApplyPagination(req.Pagination))
	if err != nil {
		return domain.ListProjectsResponse{}, err
	}

	pageInfo := pagination.PageInfo{}
	if len(projects) > size {
		projects = projects[:size]
		pageInfo.HasMore = true

		last := projects[len(projects)-1]
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        last.ID.String(),
			CreatedAt: last.CreatedAt.UTC().Format(time.RFC3339),
		})
		if err != nil {
			return domain.ListProjectsResponse{}, err
		}
		pageInfo.NextPageToken = token
	}

	return domain.ListProjectsResponse{
		Projects: projects,
		PageInfo: pageInfo,
	}, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id snowflake.ID, req domain.UpdateStatusRequest) (domain.Project, error) {
	if !req.Status.Valid() {
		return domain.Project{}, domain.ErrInvalidStatus
	}

	project, err := s.repo.FindByID(ctx, s.db, orgcontext.OrgIDFromContext(ctx), id)
	if err != nil {
		return domain.Project{}, err
	}
	if project == nil {
		return domain.Project{}, domain.ErrNotFound
	}

	if !project.Status.CanMoveTo(req.Status) {
		return domain.Project{}, domain.ErrInvalidTransition
	}

	project.Status = req.Status
	project.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, project); err != nil {
		return domain.Project{}, err
	}

	s.log.Info("project status changed",
		zap.String("project_id", project.ID.String()),
		zap.String("status", string(project.Status)),
	)

	return *project, nil
}

func (s *Service) AttachCalculation(ctx context.Context, id snowflake.ID, req domain.AttachCalculationRequest) (domain.Project, error) {
	project, err := s.repo.FindByID(ctx, s.db, orgcontext.OrgIDFromContext(ctx), id)
	if err != nil {
		return domain.Project{}, err
	}
	if project == nil {
		return domain.Project{}, domain.ErrNotFound
	}

	project.Calculation = req.Calculation
	if req.Grants != nil {
		project.Grants = req.Grants
	}

	// Mirror the headline figures into queryable columns.
	if v, ok := req.Calculation["systemSize"].(float64); ok {
		project.SystemSizeKwp = v
	}
	if v, ok := req.Calculation["panels"].(float64); ok {
		project.PanelCount = int(v)
	}
	if v, ok := req.Calculation["cost"].(float64); ok {
		project.TotalCost = v
	}

	project.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, project); err != nil {
		return domain.Project{}, err
	}

	return *project, nil
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	orgID := orgcontext.OrgIDFromContext(ctx)
	project, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return err
	}
	if project == nil {
		return domain.ErrNotFound
	}
	return s.repo.Delete(ctx, s.db, orgID, id)
}
