package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/helioscrm/helios/internal/customer/domain"
	"github.com/helioscrm/helios/pkg/db/option"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, customer *domain.Customer) error {
	return db.WithContext(ctx).Create(customer).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.Customer, error) {
	var customer domain.Customer
	err := db.WithContext(ctx).
		First(&customer, "org_id = ? AND id = ?", orgID, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &customer, nil
}

func (r *repo) Find(ctx context.Context, db *gorm.DB, query domain.CustomerQuery, opts ...option.Option) ([]domain.Customer, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Customer{}).
		Where("org_id = ?", query.OrgID)

	if query.Search != "" {
		like := "%" + query.Search + "%"
		stmt = stmt.Where("name LIKE ? OR email LIKE ? OR phone LIKE ?", like, like, like)
	}

	for _, opt := range opts {
		stmt = opt.Apply(stmt)
	}

	var customers []domain.Customer
	if err := stmt.Order("created_at DESC, id DESC").Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, customer *domain.Customer) error {
	return db.WithContext(ctx).Save(customer).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) error {
	return db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		Delete(&domain.Customer{}).Error
}
