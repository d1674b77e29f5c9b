package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	customerdomain "github.com/helioscrm/helios/internal/customer/domain"
	customerrepo "github.com/helioscrm/helios/internal/customer/repository"
	customersvc "github.com/helioscrm/helios/internal/customer/service"
	"github.com/helioscrm/helios/internal/lead/domain"
	"github.com/helioscrm/helios/internal/lead/repository"
	"github.com/helioscrm/helios/internal/orgcontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&domain.Lead{}, &customerdomain.Customer{}))
	return db
}

func newTestService(t *testing.T) (domain.Service, customerdomain.Service, context.Context) {
	t.Helper()

	db := newTestDB(t)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	customers := customersvc.New(customersvc.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  customerrepo.Provide(),
	})

	leads := New(Params{
		DB:        db,
		Log:       zap.NewNop(),
		GenID:     node,
		Repo:      repository.Provide(),
		Customers: customers,
	})

	ctx := orgcontext.WithOrgID(context.Background(), node.Generate())
	return leads, customers, ctx
}

func intPtr(v int) *int { return &v }

func columnPositions(t *testing.T, svc domain.Service, ctx context.Context, stage domain.Stage) []string {
	t.Helper()
	resp, err := svc.List(ctx, domain.ListLeadsRequest{Stage: stage})
	require.NoError(t, err)

	names := make([]string, 0, len(resp.Leads))
	for i, lead := range resp.Leads {
		assert.Equal(t, i, lead.Position)
		names = append(names, lead.Name)
	}
	return names
}

func TestCreateAppendsToNewColumn(t *testing.T) {
	svc, _, ctx := newTestService(t)

	first, err := svc.Create(ctx, domain.CreateLeadRequest{Name: "Ana Ruiz"})
	require.NoError(t, err)
	second, err := svc.Create(ctx, domain.CreateLeadRequest{Name: "Luis Gil"})
	require.NoError(t, err)

	assert.Equal(t, 0, first.Position)
	assert.Equal(t, 1, second.Position)
}

func TestMoveReordersWithinColumn(t *testing.T) {
	svc, _, ctx := newTestService(t)

	for _, name := range []string{"Ana Ruiz", "Luis Gil", "Marta Vega"} {
		_, err := svc.Create(ctx, domain.CreateLeadRequest{Name: name})
		require.NoError(t, err)
	}
	resp, err := svc.List(ctx, domain.ListLeadsRequest{Stage: domain.StageNew})
	require.NoError(t, err)
	require.Len(t, resp.Leads, 3)

	moved, err := svc.Move(ctx, resp.Leads[2].ID, domain.MoveLeadRequest{
		Stage:    domain.StageNew,
		Position: intPtr(0),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, moved.Position)

	assert.Equal(t,
		[]string{"Marta Vega", "Ana Ruiz", "Luis Gil"},
		columnPositions(t, svc, ctx, domain.StageNew),
	)
}

func TestMoveAcrossStagesPlacesAndClosesGap(t *testing.T) {
	svc, _, ctx := newTestService(t)

	leads := make([]domain.Lead, 0, 3)
	for _, name := range []string{"Ana Ruiz", "Luis Gil", "Marta Vega"} {
		lead, err := svc.Create(ctx, domain.CreateLeadRequest{Name: name})
		require.NoError(t, err)
		leads = append(leads, lead)
	}

	moved, err := svc.Move(ctx, leads[1].ID, domain.MoveLeadRequest{Stage: domain.StageContacted})
	require.NoError(t, err)
	assert.Equal(t, domain.StageContacted, moved.Stage)
	assert.Equal(t, 0, moved.Position)

	// The source column closes the gap.
	assert.Equal(t,
		[]string{"Ana Ruiz", "Marta Vega"},
		columnPositions(t, svc, ctx, domain.StageNew),
	)

	// An explicit position inserts ahead of the resident lead.
	moved, err = svc.Move(ctx, leads[0].ID, domain.MoveLeadRequest{
		Stage:    domain.StageContacted,
		Position: intPtr(0),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, moved.Position)

	assert.Equal(t,
		[]string{"Ana Ruiz", "Luis Gil"},
		columnPositions(t, svc, ctx, domain.StageContacted),
	)
}

func TestMoveFollowsPipelineOrder(t *testing.T) {
	svc, _, ctx := newTestService(t)

	lead, err := svc.Create(ctx, domain.CreateLeadRequest{Name: "Ana Ruiz"})
	require.NoError(t, err)
	assert.Equal(t, domain.StageNew, lead.Stage)

	for _, stage := range []domain.Stage{
		domain.StageContacted,
		domain.StageQualified,
		domain.StageProposal,
		domain.StageWon,
	} {
		lead, err = svc.Move(ctx, lead.ID, domain.MoveLeadRequest{Stage: stage})
		require.NoError(t, err)
		assert.Equal(t, stage, lead.Stage)
	}
}

func TestMoveRejectsSkippingStages(t *testing.T) {
	svc, _, ctx := newTestService(t)

	lead, err := svc.Create(ctx, domain.CreateLeadRequest{Name: "Ana Ruiz"})
	require.NoError(t, err)

	_, err = svc.Move(ctx, lead.ID, domain.MoveLeadRequest{Stage: domain.StageProposal})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = svc.Move(ctx, lead.ID, domain.MoveLeadRequest{Stage: domain.StageWon})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestMoveToLostFromAnyActiveStage(t *testing.T) {
	svc, _, ctx := newTestService(t)

	lead, err := svc.Create(ctx, domain.CreateLeadRequest{Name: "Ana Ruiz"})
	require.NoError(t, err)

	lead, err = svc.Move(ctx, lead.ID, domain.MoveLeadRequest{Stage: domain.StageLost})
	require.NoError(t, err)
	assert.Equal(t, domain.StageLost, lead.Stage)

	_, err = svc.Move(ctx, lead.ID, domain.MoveLeadRequest{Stage: domain.StageContacted})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestMoveRejectsUnknownStage(t *testing.T) {
	svc, _, ctx := newTestService(t)

	lead, err := svc.Create(ctx, domain.CreateLeadRequest{Name: "Ana Ruiz"})
	require.NoError(t, err)

	_, err = svc.Move(ctx, lead.ID, domain.MoveLeadRequest{Stage: "archived"})
	assert.ErrorIs(t, err, domain.ErrInvalidStage)
}

func TestConvertCreatesCustomerAndMarksWon(t *testing.T) {
	svc, customers, ctx := newTestService(t)

	lead, err := svc.Create(ctx, domain.CreateLeadRequest{
		Name:     "Ana Ruiz",
		Email:    "ana@example.com",
		Phone:    "+34 600 000 000",
		Address:  "Calle Mayor 1",
		City:     "Madrid",
		Province: "Madrid",
	})
	require.NoError(t, err)

	result, err := svc.Convert(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StageWon, result.Lead.Stage)
	require.NotNil(t, result.Lead.CustomerID)
	assert.Equal(t, result.CustomerID, *result.Lead.CustomerID)

	customer, err := customers.GetByID(ctx, result.CustomerID)
	require.NoError(t, err)
	assert.Equal(t, "Ana Ruiz", customer.Name)
	assert.Equal(t, "ana@example.com", customer.Email)
	assert.Equal(t, "Madrid", customer.City)
}

func TestConvertTwiceFails(t *testing.T) {
	svc, _, ctx := newTestService(t)

	lead, err := svc.Create(ctx, domain.CreateLeadRequest{Name: "Ana Ruiz"})
	require.NoError(t, err)

	_, err = svc.Convert(ctx, lead.ID)
	require.NoError(t, err)

	_, err = svc.Convert(ctx, lead.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyConverted)
}

func TestConvertLostLeadFails(t *testing.T) {
	svc, _, ctx := newTestService(t)

	lead, err := svc.Create(ctx, domain.CreateLeadRequest{Name: "Ana Ruiz"})
	require.NoError(t, err)

	_, err = svc.Move(ctx, lead.ID, domain.MoveLeadRequest{Stage: domain.StageLost})
	require.NoError(t, err)

	_, err = svc.Convert(ctx, lead.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestLeadsAreScopedToOrganization(t *testing.T) {
	svc, _, ctx := newTestService(t)

	lead, err := svc.Create(ctx, domain.CreateLeadRequest{Name: "Ana Ruiz"})
	require.NoError(t, err)

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)
	otherCtx := orgcontext.WithOrgID(context.Background(), node.Generate())

	_, err = svc.GetByID(otherCtx, lead.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
