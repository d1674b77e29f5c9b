package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/helioscrm/helios/internal/timeentry/domain"
	"github.com/helioscrm/helios/pkg/db/option"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, entry *domain.TimeEntry) error {
	return db.WithContext(ctx).Create(entry).Error
}

func (r *repo) FindOpen(ctx context.Context, db *gorm.DB, orgID, userID snowflake.ID) (*domain.TimeEntry, error) {
	var entry domain.TimeEntry
	err := db.WithContext(ctx).
		Where("org_id = ? AND user_id = ? AND clock_out IS NULL", orgID, userID).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (r *repo) Find(ctx context.Context, db *gorm.DB, query domain.EntryQuery, opts ...option.Option) ([]domain.TimeEntry, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.TimeEntry{}).
		Where("org_id = ?", query.OrgID)

	if query.UserID != 0 {
		stmt = stmt.Where("user_id = ?", query.UserID)
	}
	if query.ProjectID != 0 {
		stmt = stmt.Where("project_id = ?", query.ProjectID)
	}
	if !query.From.IsZero() {
		stmt = stmt.Where("clock_in >= ?", query.From)
	}
	if !query.To.IsZero() {
		stmt = stmt.Where("clock_in < ?", query.To)
	}

	for _, opt := range opts {
		stmt = opt.Apply(stmt)
	}

	var entries []domain.TimeEntry
	if err := stmt.Order("created_at DESC, id DESC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, entry *domain.TimeEntry) error {
	return db.WithContext(ctx).Save(entry).Error
}
