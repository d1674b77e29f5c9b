package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, doc *Document) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*Document, error)
	FindByShareToken(ctx context.Context, db *gorm.DB, token string) (*Document, error)
	FindByProject(ctx context.Context, db *gorm.DB, orgID, projectID snowflake.ID) ([]Document, error)
}
