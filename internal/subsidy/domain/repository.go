package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/helioscrm/helios/pkg/db/option"
	"gorm.io/gorm"
)

type ApplicationQuery struct {
	OrgID     snowflake.ID
	ProjectID snowflake.ID
	Status    ApplicationStatus
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, app *Application) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*Application, error)
	Find(ctx context.Context, db *gorm.DB, query ApplicationQuery, opts ...option.Option) ([]Application, error)
	Update(ctx context.Context, db *gorm.DB, app *Application) error
	Delete(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) error
}
