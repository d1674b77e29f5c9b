package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	grantsdomain "github.com/helioscrm/helios/internal/grants/domain"
	orgdomain "github.com/helioscrm/helios/internal/organization/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	defaultOrgName = "Main"
	defaultOrgSlug = "main"
)

// EnsureMainOrg seeds the default organization for startup bootstrap.
func EnsureMainOrg(db *gorm.DB) error {
	return ensureMainOrg(db, 0)
}

// EnsureMainOrgWithID seeds the default organization under a fixed id so
// self-hosted deployments keep stable references across restores.
func EnsureMainOrgWithID(db *gorm.DB, id int64) error {
	return ensureMainOrg(db, id)
}

func ensureMainOrg(db *gorm.DB, fixedID int64) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var org orgdomain.Organization
		err := tx.Where("slug = ?", defaultOrgSlug).First(&org).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		id := node.Generate()
		if fixedID != 0 {
			id = snowflake.ID(fixedID)
		}

		now := time.Now().UTC()
		org = orgdomain.Organization{
			ID:               id,
			Name:             defaultOrgName,
			Slug:             defaultOrgSlug,
			SubscriptionPlan: orgdomain.PlanStarter,
			// Self-hosted installs get the full feature set.
			GodMode:     true,
			CountryCode: "ES",
			Metadata:    datatypes.JSONMap{},
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		return tx.Create(&org).Error
	})
}

// EnsureSpanishGrantRules seeds the national IRPF deduction plus a
// baseline of municipal IBI and ICIO rules so grant calculations return
// useful numbers before an operator curates the rule table.
func EnsureSpanishGrantRules(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(2)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&grantsdomain.GrantRule{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		validFrom := time.Date(2021, time.October, 6, 0, 0, 0, 0, time.UTC)
		maxPower := 10.0
		now := time.Now().UTC()

		rules := []grantsdomain.GrantRule{
			// Royal Decree-Law 19/2021 IRPF tiers apply nationwide; the
			// community column still scopes them so regional overrides win.
			{
				GrantType:           grantsdomain.GrantIRPF,
				AutonomousCommunity: "Madrid",
				MinPowerKwp:         0,
				ValidFrom:           validFrom,
				IRPFPercentage:      20,
				IRPFMaxAmount:       1000,
				Description:         "Deduccion IRPF 20% por mejora de eficiencia energetica",
			},
			{
				GrantType:           grantsdomain.GrantIRPF,
				AutonomousCommunity: "Madrid",
				MinPowerKwp:         0,
				ValidFrom:           validFrom,
				IRPFPercentage:      40,
				IRPFMaxAmount:       3000,
				Description:         "Deduccion IRPF 40% por reduccion de demanda",
			},
			{
				GrantType:           grantsdomain.GrantIBI,
				AutonomousCommunity: "Madrid",
				Municipality:        "Madrid",
				MinPowerKwp:         0,
				MaxPowerKwp:         &maxPower,
				ValidFrom:           validFrom,
				IBIPercentage:       50,
				IBIDurationYears:    3,
				Description:         "Bonificacion IBI 50% durante 3 anos",
			},
			{
				GrantType:           grantsdomain.GrantICIO,
				AutonomousCommunity: "Madrid",
				Municipality:        "Madrid",
				MinPowerKwp:         0,
				ValidFrom:           validFrom,
				ICIOPercentage:      95,
				Description:         "Bonificacion ICIO 95% para autoconsumo",
			},
		}

		for i := range rules {
			rules[i].ID = node.Generate()
			rules[i].CreatedAt = now
			rules[i].UpdatedAt = now
			if err := tx.Create(&rules[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
