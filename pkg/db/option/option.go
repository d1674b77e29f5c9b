package option

import (
	"time"

	"github.com/helioscrm/helios/pkg/db/pagination"
	"gorm.io/gorm"
)

// Option narrows a gorm statement; options compose left to right.
type Option interface {
	Apply(*gorm.DB) *gorm.DB
}

type optionFunc func(*gorm.DB) *gorm.DB

func (f optionFunc) Apply(stmt *gorm.DB) *gorm.DB { return f(stmt) }

// ApplyPagination applies cursor pagination: fetch one row past the page
// size so the caller can detect whether more rows exist.
func ApplyPagination(page pagination.Pagination) Option {
	return optionFunc(func(stmt *gorm.DB) *gorm.DB {
		size := page.PageSize
		if size <= 0 {
			size = 10
		}

		if page.PageToken != "" {
			cursor, err := pagination.DecodeCursor(page.PageToken)
			if err == nil && cursor != nil && cursor.CreatedAt != "" {
				if ts, err := time.Parse(time.RFC3339, cursor.CreatedAt); err == nil {
					stmt = stmt.Where("(created_at, id) < (?, ?)", ts, cursor.ID)
				}
			}
		}

		return stmt.Limit(size + 1)
	})
}
