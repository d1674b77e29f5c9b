package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/helioscrm/helios/internal/orgcontext"
	"github.com/helioscrm/helios/internal/timeentry/domain"
	timeentryrepo "github.com/helioscrm/helios/internal/timeentry/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*Service, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.TimeEntry{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  timeentryrepo.Provide(),
	})

	return svc.(*Service), node
}

func TestClockInRequiresUser(t *testing.T) {
	svc, node := newTestService(t)
	ctx := orgcontext.WithOrgID(context.Background(), node.Generate())

	_, err := svc.ClockIn(ctx, domain.ClockInRequest{})
	assert.ErrorIs(t, err, domain.ErrMissingUser)
}

func TestClockInGuardsOpenEntry(t *testing.T) {
	svc, node := newTestService(t)
	ctx := orgcontext.WithOrgID(context.Background(), node.Generate())
	ctx = orgcontext.WithUserID(ctx, node.Generate())

	entry, err := svc.ClockIn(ctx, domain.ClockInRequest{Notes: "roof prep"})
	require.NoError(t, err)
	assert.True(t, entry.Open())

	_, err = svc.ClockIn(ctx, domain.ClockInRequest{})
	assert.ErrorIs(t, err, domain.ErrAlreadyClockedIn)
}

func TestClockOutClosesEntry(t *testing.T) {
	svc, node := newTestService(t)
	ctx := orgcontext.WithOrgID(context.Background(), node.Generate())
	ctx = orgcontext.WithUserID(ctx, node.Generate())

	_, err := svc.ClockIn(ctx, domain.ClockInRequest{})
	require.NoError(t, err)

	closed, err := svc.ClockOut(ctx, domain.ClockOutRequest{Notes: "done"})
	require.NoError(t, err)
	require.NotNil(t, closed.ClockOut)
	assert.Equal(t, "done", closed.Notes)

	_, err = svc.ClockOut(ctx, domain.ClockOutRequest{})
	assert.ErrorIs(t, err, domain.ErrNotClockedIn)
}

func TestListDayRangeAndTotals(t *testing.T) {
	svc, node := newTestService(t)
	orgID := node.Generate()
	userID := node.Generate()
	ctx := orgcontext.WithOrgID(context.Background(), orgID)

	repo := timeentryrepo.Provide()
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	insert := func(clockIn time.Time, worked time.Duration) {
		out := clockIn.Add(worked)
		require.NoError(t, repo.Insert(ctx, svc.db, &domain.TimeEntry{
			ID:        node.Generate(),
			OrgID:     orgID,
			UserID:    userID,
			ClockIn:   clockIn,
			ClockOut:  &out,
			CreatedAt: clockIn,
			UpdatedAt: out,
		}))
	}

	insert(day.Add(8*time.Hour), 90*time.Minute)
	insert(day.Add(14*time.Hour), 30*time.Minute)
	insert(day.AddDate(0, 0, 3), 8*time.Hour)

	resp, err := svc.List(ctx, domain.ListEntriesRequest{
		UserID: userID,
		From:   day,
		To:     day.AddDate(0, 0, 1),
	})
	require.NoError(t, err)
	assert.Len(t, resp.Entries, 2)
	assert.Equal(t, int64(120), resp.TotalMinutes)
}
