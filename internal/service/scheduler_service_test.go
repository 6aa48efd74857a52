package service

import (
	"context"
	"testing"
	"time"

	"alcyxob/coaching-app/internal/domain"
	"alcyxob/coaching-app/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type schedulerEnv struct {
	store     *memory.Store
	scheduler SchedulerService
	coach     domain.User
	client    domain.User
	template  domain.WorkoutTemplate
}

func newSchedulerEnv(t *testing.T) *schedulerEnv {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	coach := domain.User{Name: "Coach", Email: "coach@test.local", Role: domain.RoleCoach}
	_, err := store.Users().Create(ctx, &coach)
	require.NoError(t, err)

	client := domain.User{Name: "Client", Email: "client@test.local", Role: domain.RoleClient}
	_, err = store.Users().Create(ctx, &client)
	require.NoError(t, err)

	template := domain.WorkoutTemplate{
		CoachID:    coach.ID,
		Name:       "Push Day",
		IsTemplate: true,
		Entries: []domain.ExerciseEntry{
			{
				ExerciseID: primitive.NewObjectID(),
				Category:   domain.CategoryStrength,
				Rep:        &domain.RepScheme{Sets: 3, Reps: 10, RestSeconds: 60},
			},
		},
	}
	_, err = store.Templates().Create(ctx, &template)
	require.NoError(t, err)

	return &schedulerEnv{
		store:     store,
		scheduler: NewSchedulerService(store.Assignments(), store.Templates(), store.Users()),
		coach:     coach,
		client:    client,
		template:  template,
	}
}

func TestPlaceAssignment(t *testing.T) {
	env := newSchedulerEnv(t)
	ctx := context.Background()
	date := time.Date(2024, 6, 12, 16, 30, 0, 0, time.UTC) // Wednesday afternoon

	assignment, err := env.scheduler.PlaceAssignment(ctx, env.coach.ID, env.template.ID, env.client.ID, date)
	require.NoError(t, err)

	assert.Equal(t, env.template.ID, assignment.WorkoutID)
	assert.Equal(t, env.client.ID, assignment.ClientID)
	assert.Equal(t, domain.StatusPending, assignment.Status)
	// The due date is normalized to the start of the day.
	assert.Equal(t, time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC), assignment.DueDate)
}

func TestPlaceAssignmentMissingTemplate(t *testing.T) {
	env := newSchedulerEnv(t)

	_, err := env.scheduler.PlaceAssignment(context.Background(), env.coach.ID, primitive.NewObjectID(), env.client.ID, time.Now())
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestPlaceAssignmentMissingClient(t *testing.T) {
	env := newSchedulerEnv(t)

	_, err := env.scheduler.PlaceAssignment(context.Background(), env.coach.ID, env.template.ID, primitive.NewObjectID(), time.Now())
	assert.ErrorIs(t, err, ErrClientNotFound)
}

func TestPlaceAssignmentRejectsNonClient(t *testing.T) {
	env := newSchedulerEnv(t)

	// Targeting the coach's own account is a role mismatch, not a crash.
	_, err := env.scheduler.PlaceAssignment(context.Background(), env.coach.ID, env.template.ID, env.coach.ID, time.Now())
	assert.ErrorIs(t, err, ErrClientNotRole)
}

func TestPlaceAssignmentAllowsRepeats(t *testing.T) {
	env := newSchedulerEnv(t)
	ctx := context.Background()
	date := time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC)

	first, err := env.scheduler.PlaceAssignment(ctx, env.coach.ID, env.template.ID, env.client.ID, date)
	require.NoError(t, err)
	second, err := env.scheduler.PlaceAssignment(ctx, env.coach.ID, env.template.ID, env.client.ID, date)
	require.NoError(t, err)

	// Same template, same day: two independent assignments.
	assert.NotEqual(t, first.ID, second.ID)

	days, err := env.scheduler.ListWeek(ctx, env.client.ID, date)
	require.NoError(t, err)
	assert.Len(t, days[2].Assignments, 2) // Wednesday
}

func TestListWeekShape(t *testing.T) {
	env := newSchedulerEnv(t)
	ctx := context.Background()
	monday := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	days, err := env.scheduler.ListWeek(ctx, env.client.ID, monday.AddDate(0, 0, 3))
	require.NoError(t, err)

	// Always exactly seven days, Monday first, empty slices not nil.
	require.Len(t, days, DaysPerWeek)
	for i, day := range days {
		assert.Equal(t, monday.AddDate(0, 0, i), day.Date)
		assert.NotNil(t, day.Assignments)
		assert.Empty(t, day.Assignments)
	}
}

func TestListWeekBucketsAssignments(t *testing.T) {
	env := newSchedulerEnv(t)
	ctx := context.Background()
	monday := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	_, err := env.scheduler.PlaceAssignment(ctx, env.coach.ID, env.template.ID, env.client.ID, monday)
	require.NoError(t, err)
	_, err = env.scheduler.PlaceAssignment(ctx, env.coach.ID, env.template.ID, env.client.ID, monday.AddDate(0, 0, 6))
	require.NoError(t, err)
	// Next Monday lands outside the rendered week.
	_, err = env.scheduler.PlaceAssignment(ctx, env.coach.ID, env.template.ID, env.client.ID, monday.AddDate(0, 0, 7))
	require.NoError(t, err)

	days, err := env.scheduler.ListWeek(ctx, env.client.ID, monday)
	require.NoError(t, err)

	assert.Len(t, days[0].Assignments, 1)
	assert.Len(t, days[6].Assignments, 1)
	for i := 1; i < 6; i++ {
		assert.Empty(t, days[i].Assignments)
	}
}

func TestRemoveAssignmentKeepsTemplate(t *testing.T) {
	env := newSchedulerEnv(t)
	ctx := context.Background()

	assignment, err := env.scheduler.PlaceAssignment(ctx, env.coach.ID, env.template.ID, env.client.ID, time.Now())
	require.NoError(t, err)

	require.NoError(t, env.scheduler.RemoveAssignment(ctx, assignment.ID))

	_, err = env.store.Assignments().GetByID(ctx, assignment.ID)
	assert.Error(t, err)

	// The template is untouched by assignment removal.
	tmpl, err := env.store.Templates().GetByID(ctx, env.template.ID)
	require.NoError(t, err)
	assert.Equal(t, env.template.Name, tmpl.Name)
}

func TestRemoveAssignmentNotFound(t *testing.T) {
	env := newSchedulerEnv(t)
	err := env.scheduler.RemoveAssignment(context.Background(), primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrAssignmentNotFound)
}

func TestAdvanceStatusForwardOnly(t *testing.T) {
	env := newSchedulerEnv(t)
	ctx := context.Background()

	assignment, err := env.scheduler.PlaceAssignment(ctx, env.coach.ID, env.template.ID, env.client.ID, time.Now())
	require.NoError(t, err)

	updated, err := env.scheduler.AdvanceStatus(ctx, assignment.ID, domain.StatusActive)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, updated.Status)

	// Regression is refused and the stored status is untouched.
	_, err = env.scheduler.AdvanceStatus(ctx, assignment.ID, domain.StatusPending)
	assert.ErrorIs(t, err, ErrStatusRegression)

	stored, err := env.store.Assignments().GetByID(ctx, assignment.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, stored.Status)

	updated, err = env.scheduler.AdvanceStatus(ctx, assignment.ID, domain.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, updated.Status)

	// Completed is terminal.
	_, err = env.scheduler.AdvanceStatus(ctx, assignment.ID, domain.StatusActive)
	assert.ErrorIs(t, err, ErrStatusRegression)
}

func TestAdvanceStatusUnknown(t *testing.T) {
	env := newSchedulerEnv(t)
	_, err := env.scheduler.AdvanceStatus(context.Background(), primitive.NewObjectID(), domain.AssignmentStatus("archived"))
	assert.ErrorIs(t, err, ErrInvalidStatus)
}
