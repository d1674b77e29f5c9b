package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// RuleQuery narrows applicable rules to a jurisdiction, power and date.
type RuleQuery struct {
	AutonomousCommunity string
	Province            string
	Municipality        string
	PowerKwp            float64
	ReferenceDate       time.Time
}

type Repository interface {
	FindApplicable(ctx context.Context, db *gorm.DB, query RuleQuery) ([]GrantRule, error)
}
