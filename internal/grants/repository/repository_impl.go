package repository

import (
	"context"

	"github.com/helioscrm/helios/internal/grants/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindApplicable(ctx context.Context, db *gorm.DB, query domain.RuleQuery) ([]domain.GrantRule, error) {
	var rules []domain.GrantRule

	stmt := db.WithContext(ctx).
		Model(&domain.GrantRule{}).
		Where("autonomous_community = ?", query.AutonomousCommunity).
		Where("(province = '' OR province IS NULL OR province = ?)", query.Province).
		Where("(municipality = '' OR municipality IS NULL OR municipality = ?)", query.Municipality).
		Where("min_power_kwp <= ?", query.PowerKwp).
		Where("(max_power_kwp IS NULL OR max_power_kwp >= ?)", query.PowerKwp).
		Where("valid_from <= ?", query.ReferenceDate).
		Where("(valid_to IS NULL OR valid_to >= ?)", query.ReferenceDate)

	err := stmt.
		Order("grant_type asc, irpf_percentage asc, id asc").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}
