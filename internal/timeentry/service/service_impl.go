package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/helioscrm/helios/internal/orgcontext"
	"github.com/helioscrm/helios/internal/timeentry/domain"
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
		log:   p.Log.Named("timeentry.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) ClockIn(ctx context.Context, req domain.ClockInRequest) (domain.TimeEntry, error) {
	orgID := orgcontext.OrgIDFromContext(ctx)
	userID := orgcontext.UserIDFromContext(ctx)
	if userID == 0 {
		return domain.TimeEntry{}, domain.ErrMissingUser
	}

	open, err := s.repo.FindOpen(ctx, s.db, orgID, userID)
	if err != nil {
		return domain.TimeEntry{}, err
	}
	if open != nil {
		return domain.TimeEntry{}, domain.ErrAlreadyClockedIn
	}

	now := time.Now().UTC()
	entry := domain.TimeEntry{
		ID:        s.genID.Generate(),
		OrgID:     orgID,
		UserID:    userID,
		ProjectID: req.ProjectID,
		ClockIn:   now,
		Notes:     req.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, s.db, &entry); err != nil {
		return domain.TimeEntry{}, err
	}

	return entry, nil
}

func (s *Service) ClockOut(ctx context.Context, req domain.ClockOutRequest) (domain.TimeEntry, error) {
	orgID := orgcontext.OrgIDFromContext(ctx)
	userID := orgcontext.UserIDFromContext(ctx)
	if userID == 0 {
		return domain.TimeEntry{}, domain.ErrMissingUser
	}

	entry, err := s.repo.FindOpen(ctx, s.db, orgID, userID)
	if err != nil {
		return domain.TimeEntry{}, err
	}
	if entry == nil {
		return domain.TimeEntry{}, domain.ErrNotClockedIn
	}

	now := time.Now().UTC()
	entry.ClockOut = &now
	if req.Notes != "" {
		entry.Notes = req.Notes
	}
	entry.UpdatedAt = now

	if err := s.repo.Update(ctx, s.db, entry); err != nil {
		return domain.TimeEntry{}, err
	}

	return *entry, nil
}

func (s *Service) Active(ctx context.Context) (*domain.TimeEntry, error) {
	userID := orgcontext.UserIDFromContext(ctx)
	if userID == 0 {
		return nil, domain.ErrMissingUser
	}
	return s.repo.FindOpen(ctx, s.db, orgcontext.OrgIDFromContext(ctx), userID)
}

func (s *Service) List(ctx context.Context, req domain.ListEntriesRequest) (domain.ListEntriesResponse, error) {
	size := req.Pagination.PageSize
	if size <= 0 {
		size = 10
	}

	query := domain.EntryQuery{
		OrgID:     orgcontext.OrgIDFromContext(ctx),
		UserID:    req.UserID,
		ProjectID: req.ProjectID,
		From:      req.From,
		To:        req.To,
	}

	entries, err := s.repo.Find(ctx, s.db, query, option.ApplyPagination(req.Pagination))
	if err != nil {
		return domain.ListEntriesResponse{}, err
	}

	pageInfo := pagination.PageInfo{}
	if len(entries) > size {
		entries = entries[:size]
		pageInfo.HasMore = true

		last := entries[len(entries)-1]
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        last.ID.String(),
			CreatedAt: last.CreatedAt.UTC().Format(time.RFC3339),
		})
		if err != nil {
			return domain.ListEntriesResponse{}, err
		}
		pageInfo.NextPageToken = token
	}

	var total time.Duration
	for _, e := range entries {
		total += e.Duration()
	}

	return domain.ListEntriesResponse{
		Entries:      entries,
		TotalMinutes: int64(total.Minutes()),
		PageInfo:     pageInfo,
	}, nil
}
