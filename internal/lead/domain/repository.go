package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/helioscrm/helios/pkg/db/option"
	"gorm.io/gorm"
)

type LeadQuery struct {
	OrgID snowflake.ID
	Stage Stage
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, lead *Lead) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*Lead, error)
	Find(ctx context.Context, db *gorm.DB, query LeadQuery, opts ...option.Option) ([]Lead, error)
	Update(ctx context.Context, db *gorm.DB, lead *Lead) error
	Delete(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) error
	// MaxPosition returns the highest position in a board column, -1 for
	// an empty column.
	MaxPosition(ctx context.Context, db *gorm.DB, orgID snowflake.ID, stage Stage) (int, error)
	// ShiftPositions adds delta to every position in [from, to] of a
	// column; to < 0 leaves the range unbounded above.
	ShiftPositions(ctx context.Context, db *gorm.DB, orgID snowflake.ID, stage Stage, from, to, delta int) error
}
