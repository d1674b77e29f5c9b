package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/helioscrm/helios/internal/project/domain"
	"github.com/helioscrm/helios/pkg/db/option"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, project *domain.Project) error {
	return db.WithContext(ctx).Create(project).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.Project, error) {
	var project domain.Project
	err := db.WithContext(ctx).
		First(&project, "org_id = ? AND id = ?", orgID, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &project, nil
}

func (r *repo) Find(ctx context.Context, db *gorm.DB, query domain.ProjectQuery, opts ...option.Option) ([]domain.Project, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Project{}).
		Where("org_id = ?", query.OrgID)

	if query.CustomerID != 0 {
		stmt = stmt.Where("customer_id = ?", query.CustomerID)
	}
	if query.Status != "" {
		stmt = stmt.Where("status = ?", query.Status)
	}

	for _, opt := range opts {
		stmt = opt.Apply(stmt)
	}

	var projects []domain.Project
	if err := stmt.Order("created_at DESC, id DESC").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, project *domain.Project) error {
	return db.WithContext(ctx).Save(project).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) error {
	return db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		Delete(&domain.Project{}).Error
}
