package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/helioscrm/helios/internal/lead/domain"
	"github.com/helioscrm/helios/pkg/db/option"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, lead *domain.Lead) error {
	return db.WithContext(ctx).Create(lead).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.Lead, error) {
	var lead domain.Lead
	err := db.WithContext(ctx).
		First(&lead, "org_id = ? AND id = ?", orgID, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &lead, nil
}

func (r *repo) Find(ctx context.Context, db *gorm.DB, query domain.LeadQuery, opts ...option.Option) ([]domain.Lead, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Lead{}).
		Where("org_id = ?", query.OrgID)

	if query.Stage != "" {
		stmt = stmt.Where("stage = ?", query.Stage)
	}

	for _, opt := range opts {
		stmt = opt.Apply(stmt)
	}

	// A stage-filtered query is a board column; return it in board order.
	order := "created_at DESC, id DESC"
	if query.Stage != "" {
		order = "position ASC, id ASC"
	}

	var leads []domain.Lead
	if err := stmt.Order(order).Find(&leads).Error; err != nil {
		return nil, err
	}
	return leads, nil
}

func (r *repo) MaxPosition(ctx context.Context, db *gorm.DB, orgID snowflake.ID, stage domain.Stage) (int, error) {
	var max sql.NullInt64
	err := db.WithContext(ctx).
		Model(&domain.Lead{}).
		Where("org_id = ? AND stage = ?", orgID, stage).
		Select("MAX(position)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if !max.Valid {
		return -1, nil
	}
	return int(max.Int64), nil
}

func (r *repo) ShiftPositions(ctx context.Context, db *gorm.DB, orgID snowflake.ID, stage domain.Stage, from, to, delta int) error {
	stmt := db.WithContext(ctx).
		Model(&domain.Lead{}).
		Where("org_id = ? AND stage = ? AND position >= ?", orgID, stage, from)
	if to >= 0 {
		stmt = stmt.Where("position <= ?", to)
	}
	return stmt.UpdateColumn("position", gorm.Expr("position + ?", delta)).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, lead *domain.Lead) error {
	return db.WithContext(ctx).Save(lead).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) error {
	return db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		Delete(&domain.Lead{}).Error
}
