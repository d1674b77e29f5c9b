package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/helioscrm/helios/pkg/db/option"
	"gorm.io/gorm"
)

type TicketQuery struct {
	OrgID      snowflake.ID
	CustomerID snowflake.ID
	Status     TicketStatus
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, ticket *Ticket) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*Ticket, error)
	Find(ctx context.Context, db *gorm.DB, query TicketQuery, opts ...option.Option) ([]Ticket, error)
	Update(ctx context.Context, db *gorm.DB, ticket *Ticket) error
}
