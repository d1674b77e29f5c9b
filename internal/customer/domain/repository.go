package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/helioscrm/helios/pkg/db/option"
	"gorm.io/gorm"
)

type CustomerQuery struct {
	OrgID  snowflake.ID
	Search string
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, customer *Customer) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*Customer, error)
	Find(ctx context.Context, db *gorm.DB, query CustomerQuery, opts ...option.Option) ([]Customer, error)
	Update(ctx context.Context, db *gorm.DB, customer *Customer) error
	Delete(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) error
}
