package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/helioscrm/helios/internal/grants/domain"
	grantsrepo "github.com/helioscrm/helios/internal/grants/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.GrantRule{}))
	return db
}

func seedMadridRules(t *testing.T, db *gorm.DB, node *snowflake.Node) {
	t.Helper()
	validFrom := time.Now().UTC().AddDate(-1, 0, 0)

	rules := []domain.GrantRule{
		// IRPF tiers: 20% up to 5000, 40% up to 7500.
		{ID: node.Generate(), GrantType: domain.GrantIRPF, AutonomousCommunity: "Madrid", ValidFrom: validFrom, IRPFPercentage: 20, IRPFMaxAmount: 1000},
		{ID: node.Generate(), GrantType: domain.GrantIRPF, AutonomousCommunity: "Madrid", ValidFrom: validFrom, IRPFPercentage: 40, IRPFMaxAmount: 3000},
		{ID: node.Generate(), GrantType: domain.GrantIBI, AutonomousCommunity: "Madrid", Municipality: "Madrid", ValidFrom: validFrom, IBIPercentage: 50, IBIDurationYears: 3},
		{ID: node.Generate(), GrantType: domain.GrantICIO, AutonomousCommunity: "Madrid", Municipality: "Madrid", ValidFrom: validFrom, ICIOPercentage: 95},
		{ID: node.Generate(), GrantType: domain.GrantDirect, AutonomousCommunity: "Madrid", ValidFrom: validFrom, DirectGrantAmount: 600, Description: "Residential self-consumption aid"},
	}
	for i := range rules {
		require.NoError(t, db.Create(&rules[i]).Error)
	}
}

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	svc := New(Params{
		DB:   db,
		Log:  zap.NewNop(),
		Repo: grantsrepo.Provide(),
	})
	return svc.(*Service), db
}

func TestCalculate_FullIncentiveStack(t *testing.T) {
	svc, db := newTestService(t)
	node, _ := snowflake.NewNode(1)
	seedMadridRules(t, db, node)

	result, err := svc.Calculate(context.Background(), domain.CalculationRequest{
		AutonomousCommunity: "Madrid",
		Municipality:        "Madrid",
		SystemSizeKwp:       4.4,
		TotalCost:           6000,
		CurrentAnnualIBI:    400,
	})
	require.NoError(t, err)
	assert.False(t, result.Degraded)

	// 6000 exceeds the 20% tier base (1000*100/20 = 5000) but fits the
	// 40% tier base (3000*100/40 = 7500).
	assert.True(t, result.IRPF.Applicable)
	assert.Equal(t, 40.0, result.IRPF.Percentage)
	assert.Equal(t, 7500.0, result.IRPF.MaxBase)
	assert.Equal(t, 2400.0, result.IRPF.EstimatedDeduction) // 6000 * 40%

	assert.True(t, result.IBI.Applicable)
	assert.Equal(t, 200.0, result.IBI.AnnualSavings) // 400 * 50%
	assert.Equal(t, 600.0, result.IBI.TotalSavings)  // 3 years

	assert.True(t, result.ICIO.Applicable)
	assert.Equal(t, 228.0, result.ICIO.EstimatedSavings) // 6000*0.04*95%

	require.Len(t, result.DirectGrants, 1)
	assert.Equal(t, 600.0, result.DirectGrants[0].Amount)

	assert.Equal(t, 828.0, result.TotalSavings)         // IBI 600 + ICIO 228
	assert.Equal(t, 3000.0, result.TotalGrants)         // IRPF 2400 + direct 600
	assert.Equal(t, 2772.0, result.NetCost)             // 6000 - 3000 - 228
}

func TestCalculate_FirstTierWhenCostFitsBase(t *testing.T) {
	svc, db := newTestService(t)
	node, _ := snowflake.NewNode(1)
	seedMadridRules(t, db, node)

	result, err := svc.Calculate(context.Background(), domain.CalculationRequest{
		AutonomousCommunity: "Madrid",
		SystemSizeKwp:       2.5,
		TotalCost:           3000,
	})
	require.NoError(t, err)

	assert.Equal(t, 20.0, result.IRPF.Percentage)
	assert.Equal(t, 600.0, result.IRPF.EstimatedDeduction) // 3000 * 20%
}

func TestCalculate_NoRulesForJurisdiction(t *testing.T) {
	svc, db := newTestService(t)
	node, _ := snowflake.NewNode(1)
	seedMadridRules(t, db, node)

	result, err := svc.Calculate(context.Background(), domain.CalculationRequest{
		AutonomousCommunity: "Cantabria",
		SystemSizeKwp:       3,
		TotalCost:           4000,
	})
	require.NoError(t, err)

	assert.False(t, result.Degraded)
	assert.False(t, result.IRPF.Applicable)
	assert.False(t, result.IBI.Applicable)
	assert.False(t, result.ICIO.Applicable)
	assert.Empty(t, result.DirectGrants)
	assert.Equal(t, 0.0, result.TotalGrants)
	assert.Equal(t, 4000.0, result.NetCost)
}

func TestCalculate_ExpiredRulesExcluded(t *testing.T) {
	svc, db := newTestService(t)
	node, _ := snowflake.NewNode(1)

	expired := time.Now().UTC().AddDate(-1, 0, 0)
	rule := domain.GrantRule{
		ID: node.Generate(), GrantType: domain.GrantIRPF,
		AutonomousCommunity: "Madrid",
		ValidFrom:           expired.AddDate(-1, 0, 0),
		ValidTo:             &expired,
		IRPFPercentage:      60, IRPFMaxAmount: 5000,
	}
	require.NoError(t, db.Create(&rule).Error)

	result, err := svc.Calculate(context.Background(), domain.CalculationRequest{
		AutonomousCommunity: "Madrid",
		SystemSizeKwp:       3,
		TotalCost:           4000,
	})
	require.NoError(t, err)
	assert.False(t, result.IRPF.Applicable)
}

type failingRepo struct{}

func (failingRepo) FindApplicable(ctx context.Context, db *gorm.DB, query domain.RuleQuery) ([]domain.GrantRule, error) {
	return nil, errors.New("rules source unavailable")
}

func TestCalculate_LookupFailureDegradesInsteadOfFailing(t *testing.T) {
	db := newTestDB(t)
	svc := New(Params{DB: db, Log: zap.NewNop(), Repo: failingRepo{}})

	result, err := svc.Calculate(context.Background(), domain.CalculationRequest{
		AutonomousCommunity: "Madrid",
		SystemSizeKwp:       3,
		TotalCost:           4000,
	})
	require.NoError(t, err)

	assert.True(t, result.Degraded)
	assert.False(t, result.IRPF.Applicable)
	assert.False(t, result.IBI.Applicable)
	assert.False(t, result.ICIO.Applicable)
	assert.Equal(t, 0.0, result.TotalGrants)
	assert.Equal(t, 4000.0, result.NetCost)
}

func TestCalculate_InputValidation(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Calculate(context.Background(), domain.CalculationRequest{SystemSizeKwp: 3, TotalCost: 4000})
	assert.ErrorIs(t, err, domain.ErrInvalidRegion)

	_, err = svc.Calculate(context.Background(), domain.CalculationRequest{AutonomousCommunity: "Madrid", TotalCost: 4000})
	assert.ErrorIs(t, err, domain.ErrInvalidSystemSize)

	_, err = svc.Calculate(context.Background(), domain.CalculationRequest{AutonomousCommunity: "Madrid", SystemSizeKwp: 3})
	assert.ErrorIs(t, err, domain.ErrInvalidTotalCost)
}
