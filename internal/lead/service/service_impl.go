package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	customerdomain "github.com/helioscrm/helios/internal/customer/domain"
	"github.com/helioscrm/helios/internal/lead/domain"
	"github.com/helioscrm/helios/internal/orgcontext"
	"github.com/helioscrm/helios/pkg/db/option"
	"github.com/helioscrm/helios/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
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
		log:       p.Log.Named("lead.service"),
		genID:     p.GenID,
		repo:      p.Repo,
		customers: p.Customers,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateLeadRequest) (domain.Lead, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Lead{}, domain.ErrInvalidName
	}

	orgID := orgcontext.OrgIDFromContext(ctx)
	max, err := s.repo.MaxPosition(ctx, s.db, orgID, domain.StageNew)
	if err != nil {
		return domain.Lead{}, err
	}

	now := time.Now().UTC()
	lead := domain.Lead{
		ID:               s.genID.Generate(),
		OrgID:            orgID,
		Name:             name,
		Email:            strings.TrimSpace(req.Email),
		Phone:            strings.TrimSpace(req.Phone),
		Address:          strings.TrimSpace(req.Address),
		City:             strings.TrimSpace(req.City),
		Province:         strings.TrimSpace(req.Province),
		Stage:            domain.StageNew,
		Position:         max + 1,
		Source:           strings.TrimSpace(req.Source),
		EstimatedSizeKwp: req.EstimatedSizeKwp,
		Notes:            req.Notes,
		Metadata:         datatypes.JSONMap{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.Insert(ctx, s.db, &lead); err != nil {
		return domain.Lead{}, err
	}

	return lead, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (domain.Lead, error) {
	lead, err := s.repo.FindByID(ctx, s.db, orgcontext.OrgIDFromContext(ctx), id)
	if err != nil {
		return domain.Lead{}, err
	}
	if lead == nil {
		return domain.Lead{}, domain.ErrNotFound
	}
	return *lead, nil
}

func (s *Service) List(ctx context.Context, req domain.ListLeadsRequest) (domain.ListLeadsResponse, error) {
	if req.Stage != "" && !req.Stage.Valid() {
		return domain.ListLeadsResponse{}, domain.ErrInvalidStage
	}

	size := req.Pagination.PageSize
	if size <= 0 {
		size = 10
	}

	query := domain.LeadQuery{
		OrgID: orgcontext.OrgIDFromContext(ctx),
		Stage: req.Stage,
	}

	leads, err := s.repo.Find(ctx, s.db, query, option.ApplyPagination(req.Pagination))
	if err != nil {
		return domain.ListLeadsResponse{}, err
	}

	pageInfo := pagination.PageInfo{}
	if len(leads) > size {
		leads = leads[:size]
		pageInfo.HasMore = true

		last := leads[len(leads)-1]
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        last.ID.String(),
			CreatedAt: last.CreatedAt.UTC().Format(time.RFC3339),
		})
		if err != nil {
			return domain.ListLeadsResponse{}, err
		}
		pageInfo.NextPageToken = token
	}

	return domain.ListLeadsResponse{
		Leads:    leads,
		PageInfo: pageInfo,
	}, nil
}

func (s *Service) Move(ctx context.Context, id snowflake.ID, req domain.MoveLeadRequest) (domain.Lead, error) {
	if !req.Stage.Valid() {
		return domain.Lead{}, domain.ErrInvalidStage
	}

	orgID := orgcontext.OrgIDFromContext(ctx)
	lead, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return domain.Lead{}, err
	}
	if lead == nil {
		return domain.Lead{}, domain.ErrNotFound
	}

	if req.Stage == lead.Stage {
		if req.Position == nil || *req.Position == lead.Position {
			return *lead, nil
		}
		if err := s.reorderColumn(ctx, lead, *req.Position); err != nil {
			return domain.Lead{}, err
		}
		return *lead, nil
	}

	if !lead.Stage.CanMoveTo(req.Stage) {
		return domain.Lead{}, domain.ErrInvalidTransition
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Close the gap the lead leaves behind.
		if err := s.repo.ShiftPositions(ctx, tx, orgID, lead.Stage, lead.Position+1, -1, -1); err != nil {
			return err
		}

		max, err := s.repo.MaxPosition(ctx, tx, orgID, req.Stage)
		if err != nil {
			return err
		}
		target := max + 1
		if req.Position != nil && *req.Position >= 0 && *req.Position <= max {
			target = *req.Position
			if err := s.repo.ShiftPositions(ctx, tx, orgID, req.Stage, target, -1, 1); err != nil {
				return err
			}
		}

		lead.Stage = req.Stage
		lead.Position = target
		lead.UpdatedAt = time.Now().UTC()
		return s.repo.Update(ctx, tx, lead)
	})
	if err != nil {
		return domain.Lead{}, err
	}

	return *lead, nil
}

// reorderColumn moves a lead to another slot of its current column,
// shifting the leads in between by one.
func (s *Service) reorderColumn(ctx context.Context, lead *domain.Lead, target int) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		max, err := s.repo.MaxPosition(ctx, tx, lead.OrgID, lead.Stage)
		if err != nil {
			return err
		}
		if target < 0 {
			target = 0
		}
		if target > max {
			target = max
		}
		if target == lead.Position {
			return nil
		}

		if target < lead.Position {
			err = s.repo.ShiftPositions(ctx, tx, lead.OrgID, lead.Stage, target, lead.Position-1, 1)
		} else {
			err = s.repo.ShiftPositions(ctx, tx, lead.OrgID, lead.Stage, lead.Position+1, target, -1)
		}
		if err != nil {
			return err
		}

		lead.Position = target
		lead.UpdatedAt = time.Now().UTC()
		return s.repo.Update(ctx, tx, lead)
	})
}

func (s *Service) Convert(ctx context.Context, id snowflake.ID) (domain.ConvertResult, error) {
	orgID := orgcontext.OrgIDFromContext(ctx)
	lead, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return domain.ConvertResult{}, err
	}
	if lead == nil {
		return domain.ConvertResult{}, domain.ErrNotFound
	}
	if lead.CustomerID != nil {
		return domain.ConvertResult{}, domain.ErrAlreadyConverted
	}
	if lead.Stage == domain.StageLost {
		return domain.ConvertResult{}, domain.ErrInvalidTransition
	}

	customer, err := s.customers.Create(ctx, customerdomain.CreateCustomerRequest{
		Name:     lead.Name,
		Email:    lead.Email,
		Phone:    lead.Phone,
		Address:  lead.Address,
		City:     lead.City,
		Province: lead.Province,
		Notes:    lead.Notes,
	})
	if err != nil {
		return domain.ConvertResult{}, err
	}

	customerID := customer.ID
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.ShiftPositions(ctx, tx, orgID, lead.Stage, lead.Position+1, -1, -1); err != nil {
			return err
		}
		max, err := s.repo.MaxPosition(ctx, tx, orgID, domain.StageWon)
		if err != nil {
			return err
		}

		lead.CustomerID = &customerID
		lead.Stage = domain.StageWon
		lead.Position = max + 1
		lead.UpdatedAt = time.Now().UTC()
		return s.repo.Update(ctx, tx, lead)
	})
	if err != nil {
		return domain.ConvertResult{}, err
	}

	s.log.Info("lead converted",
		zap.String("lead_id", lead.ID.String()),
		zap.String("customer_id", customerID.String()),
	)

	return domain.ConvertResult{Lead: *lead, CustomerID: customerID}, nil
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	orgID := orgcontext.OrgIDFromContext(ctx)
	lead, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return err
	}
	if lead == nil {
		return domain.ErrNotFound
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Delete(ctx, tx, orgID, id); err != nil {
			return err
		}
		return s.repo.ShiftPositions(ctx, tx, orgID, lead.Stage, lead.Position+1, -1, -1)
	})
}
