package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/helioscrm/helios/internal/subsidy/domain"
	"github.com/helioscrm/helios/pkg/db/option"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, app *domain.Application) error {
	return db.WithContext(ctx).Create(app).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.Application, error) {
	var app domain.Application
	err := db.WithContext(ctx).
		First(&app, "org_id = ? AND id = ?", orgID, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &app, nil
}

func (r *repo) Find(ctx context.Context, db *gorm.DB, query domain.ApplicationQuery, opts ...option.Option) ([]domain.Application, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Application{}).
		Where("org_id = ?", query.OrgID)

	if query.ProjectID != 0 {
		stmt = stmt.Where("project_id = ?", query.ProjectID)
	}
	if query.Status != "" {
		stmt = stmt.Where("status = ?", query.Status)
	}

	for _, opt := range opts {
		stmt = opt.Apply(stmt)
	}

	var apps []domain.Application
	if err := stmt.Order("created_at DESC, id DESC").Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, app *domain.Application) error {
	return db.WithContext(ctx).Save(app).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) error {
	return db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		Delete(&domain.Application{}).Error
}
