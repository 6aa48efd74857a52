package service

import (
	"context"
	"testing"
	"time"

	"alcyxob/coaching-app/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestPlannerPlaceConfirms(t *testing.T) {
	env := newSchedulerEnv(t)
	ctx := context.Background()
	monday := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	planner := NewWeekPlanner(env.scheduler, env.client.ID, monday)
	require.NoError(t, planner.Refresh(ctx))

	created, err := planner.Place(ctx, env.coach.ID, env.template.ID, monday.AddDate(0, 0, 2))
	require.NoError(t, err)

	cards := planner.Day(2)
	require.Len(t, cards, 1)
	assert.False(t, cards[0].Pending)
	assert.Equal(t, created.ID, cards[0].Assignment.ID)
}

func TestPlannerPlaceRollsBackOnRejection(t *testing.T) {
	env := newSchedulerEnv(t)
	ctx := context.Background()
	monday := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	planner := NewWeekPlanner(env.scheduler, env.client.ID, monday)
	require.NoError(t, planner.Refresh(ctx))

	// The store rejects every create from here on.
	env.store.FailCreates = true

	_, err := planner.Place(ctx, env.coach.ID, env.template.ID, monday)
	require.Error(t, err)

	// No phantom card survives the rejection.
	for i := 0; i < DaysPerWeek; i++ {
		assert.Empty(t, planner.Day(i), "day %d", i)
	}
}

func TestPlannerPlaceOutsideVisibleWeek(t *testing.T) {
	env := newSchedulerEnv(t)
	ctx := context.Background()
	monday := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	planner := NewWeekPlanner(env.scheduler, env.client.ID, monday)

	// Dropping on next week's Monday persists but renders nothing locally.
	created, err := planner.Place(ctx, env.coach.ID, env.template.ID, monday.AddDate(0, 0, 7))
	require.NoError(t, err)
	assert.NotEqual(t, primitive.NilObjectID, created.ID)
	for i := 0; i < DaysPerWeek; i++ {
		assert.Empty(t, planner.Day(i))
	}
}

func TestPlannerRemoveRestoresOnFailure(t *testing.T) {
	env := newSchedulerEnv(t)
	ctx := context.Background()
	monday := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	planner := NewWeekPlanner(env.scheduler, env.client.ID, monday)
	created, err := planner.Place(ctx, env.coach.ID, env.template.ID, monday)
	require.NoError(t, err)

	// Delete it behind the planner's back so the removal call fails.
	require.NoError(t, env.scheduler.RemoveAssignment(ctx, created.ID))

	err = planner.Remove(ctx, created.ID)
	require.Error(t, err)

	// The card is restored; the view still shows what the store call refused
	// to delete, and the next Refresh reconciles.
	assert.Len(t, planner.Day(0), 1)

	require.NoError(t, planner.Refresh(ctx))
	assert.Empty(t, planner.Day(0))
}

func TestPlannerRemove(t *testing.T) {
	env := newSchedulerEnv(t)
	ctx := context.Background()
	monday := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	planner := NewWeekPlanner(env.scheduler, env.client.ID, monday)
	created, err := planner.Place(ctx, env.coach.ID, env.template.ID, monday)
	require.NoError(t, err)

	require.NoError(t, planner.Remove(ctx, created.ID))
	assert.Empty(t, planner.Day(0))

	_, err = env.store.Assignments().GetByID(ctx, created.ID)
	assert.Error(t, err)
}

func TestPlannerNavigation(t *testing.T) {
	env := newSchedulerEnv(t)
	monday := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	planner := NewWeekPlanner(env.scheduler, env.client.ID, monday.AddDate(0, 0, 3))
	assert.Equal(t, monday, planner.WeekStart())

	planner.NextWeek()
	assert.Equal(t, monday.AddDate(0, 0, 7), planner.WeekStart())

	planner.PreviousWeek()
	planner.PreviousWeek()
	assert.Equal(t, monday.AddDate(0, 0, -7), planner.WeekStart())

	planner.Today(monday.AddDate(0, 0, 4))
	assert.Equal(t, monday, planner.WeekStart())
}

func TestPlannerRefreshLoadsExisting(t *testing.T) {
	env := newSchedulerEnv(t)
	ctx := context.Background()
	monday := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	_, err := env.scheduler.PlaceAssignment(ctx, env.coach.ID, env.template.ID, env.client.ID, monday.AddDate(0, 0, 5))
	require.NoError(t, err)

	planner := NewWeekPlanner(env.scheduler, env.client.ID, monday)
	require.NoError(t, planner.Refresh(ctx))

	require.Len(t, planner.Day(5), 1)
	assert.Equal(t, domain.StatusPending, planner.Day(5)[0].Assignment.Status)
}
