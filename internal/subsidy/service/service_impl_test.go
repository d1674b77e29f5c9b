package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/helioscrm/helios/internal/orgcontext"
	projectdomain "github.com/helioscrm/helios/internal/project/domain"
	"github.com/helioscrm/helios/internal/subsidy/domain"
	subsidyrepo "github.com/helioscrm/helios/internal/subsidy/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeProjectService struct {
	known map[snowflake.ID]projectdomain.Project
}

func (f *fakeProjectService) Create(ctx context.Context, req projectdomain.CreateProjectRequest) (projectdomain.Project, error) {
	_ = ctx
	_ = req
	return projectdomain.Project{}, nil
}

func (f *fakeProjectService) GetByID(ctx context.Context, id snowflake.ID) (projectdomain.Project, error) {
	_ = ctx
	if p, ok := f.known[id]; ok {
		return p, nil
	}
	return projectdomain.Project{}, projectdomain.ErrNotFound
}

func (f *fakeProjectService) List(ctx context.Context, req projectdomain.ListProjectsRequest) (projectdomain.ListProjectsResponse, error) {
	_ = ctx
	_ = req
	return projectdomain.ListProjectsResponse{}, nil
}

func (f *fakeProjectService) UpdateStatus(ctx context.Context, id snowflake.ID, req projectdomain.UpdateStatusRequest) (projectdomain.Project, error) {
	_ = ctx
	_ = id
	_ = req
	return projectdomain.Project{}, nil
}

func (f *fakeProjectService) AttachCalculation(ctx context.Context, id snowflake.ID, req projectdomain.AttachCalculationRequest) (projectdomain.Project, error) {
	_ = ctx
	_ = id
	_ = req
	return projectdomain.Project{}, nil
}

func (f *fakeProjectService) Delete(ctx context.Context, id snowflake.ID) error {
	_ = ctx
	_ = id
	return nil
}

func newTestService(t *testing.T) (*Service, *snowflake.Node, snowflake.ID) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Application{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	projectID := node.Generate()
	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  subsidyrepo.Provide(),
		Projects: &fakeProjectService{
			known: map[snowflake.ID]projectdomain.Project{
				projectID: {ID: projectID, Name: "Casa Perez 5 kWp"},
			},
		},
	})

	return svc.(*Service), node, projectID
}

func newDraft(t *testing.T, svc *Service, ctx context.Context, projectID snowflake.ID) domain.Application {
	t.Helper()
	app, err := svc.Create(ctx, domain.CreateApplicationRequest{
		ProjectID: projectID,
		Program:   "Next Generation EU",
		Amount:    1500,
	})
	require.NoError(t, err)
	require.Equal(t, domain.StatusDraft, app.Status)
	return app
}

func TestCreateRejectsUnknownProject(t *testing.T) {
	svc, node, _ := newTestService(t)
	ctx := orgcontext.WithOrgID(context.Background(), node.Generate())

	_, err := svc.Create(ctx, domain.CreateApplicationRequest{
		ProjectID: node.Generate(),
		Program:   "Next Generation EU",
		Amount:    1500,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidProject)
}

func TestTransitionLifecycle(t *testing.T) {
	svc, node, projectID := newTestService(t)
	ctx := orgcontext.WithOrgID(context.Background(), node.Generate())

	app := newDraft(t, svc, ctx, projectID)

	submitted, err := svc.Transition(ctx, app.ID, domain.TransitionRequest{
		Status:    domain.StatusSubmitted,
		Reference: "EXP-2026-0117",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSubmitted, submitted.Status)
	assert.Equal(t, "EXP-2026-0117", submitted.Reference)
	require.NotNil(t, submitted.SubmittedAt)

	approved, err := svc.Transition(ctx, app.ID, domain.TransitionRequest{Status: domain.StatusApproved})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, approved.Status)
	require.NotNil(t, approved.ResolvedAt)

	paid, err := svc.Transition(ctx, app.ID, domain.TransitionRequest{Status: domain.StatusPaid})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, paid.Status)
}

func TestTransitionRejectsSkippingSubmission(t *testing.T) {
	svc, node, projectID := newTestService(t)
	ctx := orgcontext.WithOrgID(context.Background(), node.Generate())

	app := newDraft(t, svc, ctx, projectID)

	_, err := svc.Transition(ctx, app.ID, domain.TransitionRequest{Status: domain.StatusApproved})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestTransitionRejectedIsTerminal(t *testing.T) {
	svc, node, projectID := newTestService(t)
	ctx := orgcontext.WithOrgID(context.Background(), node.Generate())

	app := newDraft(t, svc, ctx, projectID)

	_, err := svc.Transition(ctx, app.ID, domain.TransitionRequest{Status: domain.StatusSubmitted})
	require.NoError(t, err)
	_, err = svc.Transition(ctx, app.ID, domain.TransitionRequest{Status: domain.StatusRejected})
	require.NoError(t, err)

	_, err = svc.Transition(ctx, app.ID, domain.TransitionRequest{Status: domain.StatusPaid})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestApplicationsAreOrgScoped(t *testing.T) {
	svc, node, projectID := newTestService(t)
	ctxA := orgcontext.WithOrgID(context.Background(), node.Generate())
	ctxB := orgcontext.WithOrgID(context.Background(), node.Generate())

	app := newDraft(t, svc, ctxA, projectID)

	_, err := svc.GetByID(ctxB, app.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
