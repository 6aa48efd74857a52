package remote_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"alcyxob/coaching-app/internal/api"
	"alcyxob/coaching-app/internal/domain"
	"alcyxob/coaching-app/internal/remote"
	"alcyxob/coaching-app/internal/repository"
	"alcyxob/coaching-app/internal/repository/memory"
	"alcyxob/coaching-app/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testJWTSecret = "remote-client-test-secret"

// newTestServer boots the API over a memory store and returns a remote client
// authenticated as a freshly registered coach.
func newTestServer(t *testing.T) (*memory.Store, *remote.Client, primitive.ObjectID) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	router := gin.New()
	api.SetupRoutes(router, testJWTSecret,
		api.Services{
			Auth:      service.NewAuthService(store.Users(), testJWTSecret, time.Hour),
			Coach:     service.NewCoachService(store.Users()),
			Scheduler: service.NewSchedulerService(store.Assignments(), store.Templates(), store.Users()),
			Templates: service.NewTemplateService(store.Templates(), store.Assignments(), store.Users()),
			Exercises: service.NewExerciseService(store.Exercises()),
		},
		api.Repositories{
			Exercises:   store.Exercises(),
			Templates:   store.Templates(),
			Assignments: store.Assignments(),
			Sessions:    store.Sessions(),
			Logs:        store.ExerciseLogs(),
		},
	)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	register := map[string]string{
		"name":     "Coach",
		"email":    "coach@test.local",
		"password": "password123",
		"role":     "coach",
	}
	body, err := json.Marshal(register)
	require.NoError(t, err)
	resp, err := http.Post(srv.URL+"/api/v1/auth/register", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()
	coachID, err := primitive.ObjectIDFromHex(created.ID)
	require.NoError(t, err)

	login := map[string]string{"email": register["email"], "password": register["password"]}
	body, err = json.Marshal(login)
	require.NoError(t, err)
	resp, err = http.Post(srv.URL+"/api/v1/auth/login", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var loggedIn struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&loggedIn))
	resp.Body.Close()
	require.NotEmpty(t, loggedIn.Token)

	return store, remote.New(srv.URL+"/api/v1", loggedIn.Token), coachID
}

func TestRemoteExerciseRoundTrip(t *testing.T) {
	_, client, coachID := newTestServer(t)
	ctx := context.Background()
	repo := client.Exercises()

	exercise := &domain.Exercise{
		CoachID:      coachID,
		Name:         "Back Squat",
		Category:     domain.CategoryStrength,
		MuscleGroups: []string{"Legs"},
	}
	id, err := repo.Create(ctx, exercise)
	require.NoError(t, err)
	require.NotEqual(t, primitive.NilObjectID, id)

	loaded, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Back Squat", loaded.Name)
	assert.Equal(t, domain.CategoryStrength, loaded.Category)
	assert.Equal(t, coachID, loaded.CoachID)

	// The list endpoint uses the {items, count} envelope.
	all, err := repo.GetByCoachID(ctx, coachID)
	require.NoError(t, err)
	require.Len(t, all, 1)

	loaded.Description = "high bar"
	require.NoError(t, repo.Update(ctx, loaded))
	reloaded, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "high bar", reloaded.Description)

	require.NoError(t, repo.Delete(ctx, id, coachID))
	_, err = repo.GetByID(ctx, id)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRemoteTemplateCloneSemantics(t *testing.T) {
	_, client, coachID := newTestServer(t)
	ctx := context.Background()
	repo := client.Templates()

	source := &domain.WorkoutTemplate{
		CoachID:    coachID,
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
	_, err := repo.Create(ctx, source)
	require.NoError(t, err)

	// A personalized clone keeps its flags across the wire.
	clientID := primitive.NewObjectID()
	clone := &domain.WorkoutTemplate{
		CoachID:    coachID,
		Name:       "Push Day (Alice)",
		IsTemplate: false,
		ClientID:   &clientID,
		Entries:    source.Entries,
	}
	cloneID, err := repo.Create(ctx, clone)
	require.NoError(t, err)

	loaded, err := repo.GetByID(ctx, cloneID)
	require.NoError(t, err)
	assert.False(t, loaded.IsTemplate)
	require.NotNil(t, loaded.ClientID)
	assert.Equal(t, clientID, *loaded.ClientID)
	require.Len(t, loaded.Entries, 1)
	require.NotNil(t, loaded.Entries[0].Rep)
	assert.Equal(t, 3, loaded.Entries[0].Rep.Sets)
}

func TestRemoteAssignmentDateRange(t *testing.T) {
	_, client, coachID := newTestServer(t)
	ctx := context.Background()

	tmpl := &domain.WorkoutTemplate{
		CoachID:    coachID,
		Name:       "Intervals",
		IsTemplate: true,
		Entries: []domain.ExerciseEntry{
			{
				ExerciseID: primitive.NewObjectID(),
				Category:   domain.CategoryCardio,
				Timed:      &domain.TimedScheme{DurationSeconds: 1200, RestSeconds: 30},
			},
		},
	}
	_, err := client.Templates().Create(ctx, tmpl)
	require.NoError(t, err)

	clientID := primitive.NewObjectID()
	monday := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	repo := client.Assignments()

	for _, day := range []int{0, 3, 9} {
		a := &domain.Assignment{
			WorkoutID: tmpl.ID,
			ClientID:  clientID,
			CoachID:   coachID,
			DueDate:   monday.AddDate(0, 0, day),
			Status:    domain.StatusPending,
		}
		_, err := repo.Create(ctx, a)
		require.NoError(t, err)
	}

	// The list endpoint returns a bare array; the client decodes it the same
	// as an enveloped one.
	week, err := repo.GetByClientAndDateRange(ctx, clientID, monday, monday.AddDate(0, 0, 7))
	require.NoError(t, err)
	require.Len(t, week, 2)
	assert.Equal(t, monday, week[0].DueDate)
	assert.Equal(t, monday.AddDate(0, 0, 3), week[1].DueDate)

	byWorkout, err := repo.GetByWorkoutID(ctx, tmpl.ID)
	require.NoError(t, err)
	assert.Len(t, byWorkout, 3)
}

func TestRemoteSessionWriteOnceCompletion(t *testing.T) {
	_, client, coachID := newTestServer(t)
	ctx := context.Background()

	tmpl := &domain.WorkoutTemplate{
		CoachID:    coachID,
		Name:       "Leg Day",
		IsTemplate: true,
		Entries: []domain.ExerciseEntry{
			{
				ExerciseID: primitive.NewObjectID(),
				Category:   domain.CategoryStrength,
				Rep:        &domain.RepScheme{Sets: 3, Reps: 10, RestSeconds: 60},
			},
		},
	}
	_, err := client.Templates().Create(ctx, tmpl)
	require.NoError(t, err)

	clientID := primitive.NewObjectID()
	assignment := &domain.Assignment{
		WorkoutID: tmpl.ID,
		ClientID:  clientID,
		CoachID:   coachID,
		DueDate:   time.Now().UTC(),
		Status:    domain.StatusPending,
	}
	_, err = client.Assignments().Create(ctx, assignment)
	require.NoError(t, err)

	sessions := client.Sessions()
	session := &domain.Session{
		AssignmentID: assignment.ID,
		WorkoutID:    tmpl.ID,
		ClientID:     clientID,
		StartedAt:    time.Now().UTC().Truncate(time.Second),
	}
	sessionID, err := sessions.Create(ctx, session)
	require.NoError(t, err)

	logs := client.ExerciseLogs()
	reps := 10
	for set := 1; set <= 3; set++ {
		_, err := logs.Create(ctx, &domain.ExerciseLog{
			SessionID:     sessionID,
			ExerciseID:    tmpl.Entries[0].ExerciseID,
			SetNumber:     set,
			RepsCompleted: &reps,
		})
		require.NoError(t, err)
	}

	recorded, err := logs.GetBySessionID(ctx, sessionID)
	require.NoError(t, err)
	require.Len(t, recorded, 3)

	completed := time.Now().UTC().Truncate(time.Second)
	duration := int(completed.Sub(session.StartedAt).Seconds())
	session.CompletedAt = &completed
	session.DurationSeconds = &duration
	require.NoError(t, sessions.Update(ctx, session))

	closed, err := sessions.GetByID(ctx, sessionID)
	require.NoError(t, err)
	require.NotNil(t, closed.CompletedAt)

	// Completion is write-once; a second close is refused.
	err = sessions.Update(ctx, session)
	assert.Error(t, err)

	byAssignment, err := sessions.GetByAssignmentID(ctx, assignment.ID)
	require.NoError(t, err)
	assert.Len(t, byAssignment, 1)
}

func TestRemoteNotFoundMapping(t *testing.T) {
	_, client, _ := newTestServer(t)
	ctx := context.Background()

	_, err := client.Exercises().GetByID(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = client.Templates().GetByID(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = client.Assignments().GetByID(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = client.Sessions().GetByID(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRemoteUnauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := memory.NewStore()
	router := gin.New()
	api.SetupRoutes(router, testJWTSecret,
		api.Services{
			Auth:      service.NewAuthService(store.Users(), testJWTSecret, time.Hour),
			Coach:     service.NewCoachService(store.Users()),
			Scheduler: service.NewSchedulerService(store.Assignments(), store.Templates(), store.Users()),
			Templates: service.NewTemplateService(store.Templates(), store.Assignments(), store.Users()),
			Exercises: service.NewExerciseService(store.Exercises()),
		},
		api.Repositories{
			Exercises:   store.Exercises(),
			Templates:   store.Templates(),
			Assignments: store.Assignments(),
			Sessions:    store.Sessions(),
			Logs:        store.ExerciseLogs(),
		},
	)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	// No token: the data endpoints refuse, and the error carries the status.
	unauthenticated := remote.New(srv.URL+"/api/v1", "")
	_, err := unauthenticated.Exercises().GetByCoachID(context.Background(), primitive.NewObjectID())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
