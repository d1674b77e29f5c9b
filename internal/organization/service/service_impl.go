package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/helioscrm/helios/internal/organization/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
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
		log:   p.Log.Named("organization.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateOrganizationRequest) (domain.Organization, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Organization{}, domain.ErrInvalidName
	}

	plan := req.SubscriptionPlan
	if plan == "" {
		plan = domain.PlanStarter
	}
	if plan != domain.PlanStarter && plan != domain.PlanPro {
		return domain.Organization{}, domain.ErrInvalidPlan
	}

	now := time.Now().UTC()
	org := domain.Organization{
		ID:               s.genID.Generate(),
		Name:             name,
		Slug:             slug.Make(name),
		SubscriptionPlan: plan,
		SupportEmail:     strings.TrimSpace(req.SupportEmail),
		CountryCode:      strings.ToUpper(strings.TrimSpace(req.CountryCode)),
		Metadata:         datatypes.JSONMap{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.Insert(ctx, s.db, &org); err != nil {
		return domain.Organization{}, err
	}

	return org, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (domain.Organization, error) {
	org, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Organization{}, err
	}
	if org == nil {
		return domain.Organization{}, domain.ErrNotFound
	}
	return *org, nil
}

func (s *Service) UpdatePlan(ctx context.Context, req domain.UpdatePlanRequest) (domain.Organization, error) {
	if req.Plan != domain.PlanStarter && req.Plan != domain.PlanPro {
		return domain.Organization{}, domain.ErrInvalidPlan
	}

	org, err := s.repo.FindByID(ctx, s.db, req.OrgID)
	if err != nil {
		return domain.Organization{}, err
	}
	if org == nil {
		return domain.Organization{}, domain.ErrNotFound
	}

	org.SubscriptionPlan = req.Plan
	org.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, org); err != nil {
		return domain.Organization{}, err
	}

	return *org, nil
}

func (s *Service) EntitledToCalculator(ctx context.Context, id snowflake.ID) (bool, error) {
	org, err := s.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return org.EntitledToCalculator(), nil
}
