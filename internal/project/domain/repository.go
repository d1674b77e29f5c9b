package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/helioscrm/helios/pkg/db/option"
	"gorm.io/gorm"
)

type ProjectQuery struct {
	OrgID      snowflake.ID
	CustomerID snowflake.ID
	Status     Status
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, project *Project) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*Project, error)
	Find(ctx context.Context, db *gorm.DB, query ProjectQuery, opts ...option.Option) ([]Project, error)
	Update(ctx context.Context, db *gorm.DB, project *Project) error
	Delete(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) error
}
