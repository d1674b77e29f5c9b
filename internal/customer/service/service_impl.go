package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/helioscrm/helios/internal/customer/domain"
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
		log:   p.Log.Named("customer.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateCustomerRequest) (domain.Customer, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Customer{}, domain.ErrInvalidName
	}

	now := time.Now().UTC()
	customer := domain.Customer{
		ID:         s.genID.Generate(),
		OrgID:      orgcontext.OrgIDFromContext(ctx),
		Name:       name,
		Email:      strings.TrimSpace(req.Email),
		Phone:      strings.TrimSpace(req.Phone),
		Address:    strings.TrimSpace(req.Address),
		City:       strings.TrimSpace(req.City),
		Province:   strings.TrimSpace(req.Province),
		PostalCode: strings.TrimSpace(req.PostalCode),
		Notes:      req.Notes,
		Metadata:   datatypes.JSONMap{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Insert(ctx, s.db, &customer); err != nil {
		return domain.Customer{}, err
	}

	return customer, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (domain.Customer, error) {
	customer, err := s.repo.FindByID(ctx, s.db, orgcontext.OrgIDFromContext(ctx), id)
	if err != nil {
		return domain.Customer{}, err
	}
	if customer == nil {
		return domain.Customer{}, domain.ErrNotFound
	}
	return *customer, nil
}

func (s *Service) List(ctx context.Context, req domain.ListCustomersRequest) (domain.ListCustomersResponse, error) {
	size := req.Pagination.PageSize
	if size <= 0 {
		size = 10
	}

	query := domain.CustomerQuery{
		OrgID:  orgcontext.OrgIDFromContext(ctx),
		Search: strings.TrimSpace(req.Search),
	}

	customers, err := s.repo.Find(ctx, s.db, query, option.ApplyPagination(req.Pagination))
	if err != nil {
		return domain.ListCustomersResponse{}, err
	}

	pageInfo := pagination.PageInfo{}
	if len(customers) > size {
		customers = customers[:size]
		pageInfo.HasMore = true

		last := customers[len(customers)-1]
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        last.ID.String(),
			CreatedAt: last.CreatedAt.UTC().Format(time.RFC3339),
		})
		if err != nil {
			return domain.ListCustomersResponse{}, err
		}
		pageInfo.NextPageToken = token
	}

	return domain.ListCustomersResponse{
		Customers: customers,
		PageInfo:  pageInfo,
	}, nil
}

func (s *Service) Update(ctx context.Context, id snowflake.ID, req domain.UpdateCustomerRequest) (domain.Customer, error) {
	customer, err := s.repo.FindByID(ctx, s.db, orgcontext.OrgIDFromContext(ctx), id)
	if err != nil {
		return domain.Customer{}, err
	}
	if customer == nil {
		return domain.Customer{}, domain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Customer{}, domain.ErrInvalidName
		}
		customer.Name = name
	}
	if req.Email != nil {
		customer.Email = strings.TrimSpace(*req.Email)
	}
	if req.Phone != nil {
		customer.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Address != nil {
		customer.Address = strings.TrimSpace(*req.Address)
	}
	if req.City != nil {
		customer.City = strings.TrimSpace(*req.City)
	}
	if req.Province != nil {
		customer.Province = strings.TrimSpace(*req.Province)
	}
	if req.PostalCode != nil {
		customer.PostalCode = strings.TrimSpace(*req.PostalCode)
	}
	if req.Notes != nil {
		customer.Notes = *req.Notes
	}

	customer.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, customer); err != nil {
		return domain.Customer{}, err
	}

	return *customer, nil
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	orgID := orgcontext.OrgIDFromContext(ctx)
	customer, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return err
	}
	if customer == nil {
		return domain.ErrNotFound
	}
	return s.repo.Delete(ctx, s.db, orgID, id)
}
