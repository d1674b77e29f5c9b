package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/helioscrm/helios/internal/ticket/domain"
	"github.com/helioscrm/helios/pkg/db/option"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, ticket *domain.Ticket) error {
	return db.WithContext(ctx).Create(ticket).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.Ticket, error) {
	var ticket domain.Ticket
	err := db.WithContext(ctx).
		First(&ticket, "org_id = ? AND id = ?", orgID, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ticket, nil
}

func (r *repo) Find(ctx context.Context, db *gorm.DB, query domain.TicketQuery, opts ...option.Option) ([]domain.Ticket, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Ticket{}).
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

	var tickets []domain.Ticket
	if err := stmt.Order("created_at DESC, id DESC").Find(&tickets).Error; err != nil {
		return nil, err
	}
	return tickets, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, ticket *domain.Ticket) error {
	return db.WithContext(ctx).Save(ticket).Error
}
