package runtime

import (
	"context"
	"sync"
	"testing"
	"time"

	"alcyxob/coaching-app/internal/domain"
	"alcyxob/coaching-app/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type captureNotifier struct {
	mu  sync.Mutex
	ops []string
}

func (n *captureNotifier) NotifyError(op string, err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.ops = append(n.ops, op)
}

func (n *captureNotifier) Ops() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.ops...)
}

type runtimeEnv struct {
	store      *memory.Store
	assignment *domain.Assignment
	workout    *domain.WorkoutTemplate
	notifier   *captureNotifier
	rt         *Runtime
}

// newRuntimeEnv seeds a store with one assignment over the given entries and
// builds a runtime with a fast test timer.
func newRuntimeEnv(t *testing.T, entries []domain.ExerciseEntry) *runtimeEnv {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	coachID := primitive.NewObjectID()
	clientID := primitive.NewObjectID()

	workout := &domain.WorkoutTemplate{
		CoachID:    coachID,
		Name:       "Full Body",
		Entries:    entries,
		IsTemplate: true,
	}
	_, err := store.Templates().Create(ctx, workout)
	require.NoError(t, err)

	assignment := &domain.Assignment{
		WorkoutID: workout.ID,
		ClientID:  clientID,
		CoachID:   coachID,
		DueDate:   time.Now().UTC(),
		Status:    domain.StatusPending,
	}
	_, err = store.Assignments().Create(ctx, assignment)
	require.NoError(t, err)

	notifier := &captureNotifier{}
	rt := New(assignment, workout, store.Sessions(), store.ExerciseLogs(), store.Assignments(), notifier)
	// Fast enough to wait for expiry, slow enough that assertions made right
	// after a transition still observe the resting phase.
	rt.Timer().SetInterval(25 * time.Millisecond)

	return &runtimeEnv{
		store:      store,
		assignment: assignment,
		workout:    workout,
		notifier:   notifier,
		rt:         rt,
	}
}

func strengthEntries(sets, reps, rest int, weight float64) []domain.ExerciseEntry {
	return []domain.ExerciseEntry{
		{
			ExerciseID: primitive.NewObjectID(),
			Category:   domain.CategoryStrength,
			Rep:        &domain.RepScheme{Sets: sets, Reps: reps, RestSeconds: rest, WeightKg: &weight},
		},
	}
}

func waitPhase(t *testing.T, rt *Runtime, phase Phase) {
	t.Helper()
	require.Eventually(t, func() bool {
		return rt.Snapshot().Phase == phase
	}, 2*time.Second, time.Millisecond, "waiting for phase %s", phase)
}

func TestRuntimeThreeSetScenario(t *testing.T) {
	env := newRuntimeEnv(t, strengthEntries(3, 10, 2, 50))
	rt := env.rt
	ctx := context.Background()

	require.NoError(t, rt.Start(ctx))

	// Session exists remotely before any set is logged.
	session := rt.Session()
	require.NotNil(t, session)
	stored, err := env.store.Sessions().GetByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.CompletedAt)

	require.NoError(t, rt.SelectExercise(0))
	snap := rt.Snapshot()
	assert.Equal(t, PhaseIdle, snap.Phase)
	assert.Equal(t, 1, snap.CurrentSet)
	assert.Equal(t, 10, snap.Reps)
	assert.Equal(t, 50.0, snap.WeightKg)

	// Set 1: bump the reps, complete, land in rest.
	require.NoError(t, rt.BeginSet())
	require.NoError(t, rt.AdjustReps(2))
	require.NoError(t, rt.CompleteSet())
	snap = rt.Snapshot()
	assert.Equal(t, PhaseResting, snap.Phase)
	assert.Equal(t, 2, snap.CurrentSet)

	// Natural expiry returns to Working.
	waitPhase(t, rt, PhaseWorking)

	// Set 2: complete and skip the rest instead of waiting.
	require.NoError(t, rt.CompleteSet())
	assert.Equal(t, PhaseResting, rt.Snapshot().Phase)
	rt.SkipRest()
	assert.Equal(t, PhaseWorking, rt.Snapshot().Phase)

	// Set 3 is the last one: the exercise and the whole run complete.
	require.NoError(t, rt.CompleteSet())
	snap = rt.Snapshot()
	assert.True(t, snap.Finished)
	assert.Equal(t, -1, snap.ExerciseIndex)
	require.Len(t, snap.Completed, 1)
	assert.True(t, snap.Completed[0])

	rt.Flush()

	// Three logs, one per set, reps reflecting the set-1 adjustment.
	logs, err := env.store.ExerciseLogs().GetBySessionID(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, 1, logs[0].SetNumber)
	require.NotNil(t, logs[0].RepsCompleted)
	assert.Equal(t, 12, *logs[0].RepsCompleted)
	require.NotNil(t, logs[1].RepsCompleted)
	assert.Equal(t, 10, *logs[1].RepsCompleted)
	require.NotNil(t, logs[0].WeightKg)
	assert.Equal(t, 50.0, *logs[0].WeightKg)

	// The session is closed and the assignment completed.
	closed, err := env.store.Sessions().GetByID(ctx, session.ID)
	require.NoError(t, err)
	require.NotNil(t, closed.CompletedAt)
	require.NotNil(t, closed.DurationSeconds)

	final, err := env.store.Assignments().GetByID(ctx, env.assignment.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, final.Status)

	assert.Empty(t, env.notifier.Ops())
}

func TestRuntimeStartMovesAssignmentToActive(t *testing.T) {
	env := newRuntimeEnv(t, strengthEntries(3, 10, 60, 0))
	ctx := context.Background()

	require.NoError(t, env.rt.Start(ctx))
	env.rt.Flush()

	stored, err := env.store.Assignments().GetByID(ctx, env.assignment.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, stored.Status)
}

func TestRuntimeStartFailsWhenSessionRejected(t *testing.T) {
	env := newRuntimeEnv(t, strengthEntries(3, 10, 60, 0))
	env.store.FailCreates = true

	err := env.rt.Start(context.Background())
	require.Error(t, err)
	assert.Nil(t, env.rt.Session())

	// The assignment was not advanced.
	assert.Equal(t, domain.StatusPending, env.rt.Assignment().Status)
}

func TestRuntimeDoubleStart(t *testing.T) {
	env := newRuntimeEnv(t, strengthEntries(3, 10, 60, 0))
	ctx := context.Background()

	require.NoError(t, env.rt.Start(ctx))
	assert.ErrorIs(t, env.rt.Start(ctx), ErrAlreadyStarted)
}

func TestRuntimeGuardsBeforeStart(t *testing.T) {
	env := newRuntimeEnv(t, strengthEntries(3, 10, 60, 0))

	assert.ErrorIs(t, env.rt.SelectExercise(0), ErrNotStarted)
	assert.ErrorIs(t, env.rt.CompleteSet(), ErrNotStarted)
	assert.ErrorIs(t, env.rt.Finish(), ErrNotStarted)
}

func TestRuntimeNoExerciseSelected(t *testing.T) {
	env := newRuntimeEnv(t, strengthEntries(3, 10, 60, 0))
	require.NoError(t, env.rt.Start(context.Background()))

	assert.ErrorIs(t, env.rt.CompleteSet(), ErrNoExerciseSelected)
	assert.ErrorIs(t, env.rt.BeginSet(), ErrNoExerciseSelected)
	assert.Error(t, env.rt.SelectExercise(5))
}

func TestRuntimeAdjustmentFloors(t *testing.T) {
	env := newRuntimeEnv(t, strengthEntries(3, 2, 60, 1))
	rt := env.rt
	require.NoError(t, rt.Start(context.Background()))
	require.NoError(t, rt.SelectExercise(0))

	// Reps bottom out at 1, weight at 0; further decrements hold the floor.
	require.NoError(t, rt.AdjustReps(-10))
	assert.Equal(t, 1, rt.Snapshot().Reps)
	require.NoError(t, rt.AdjustReps(3))
	assert.Equal(t, 4, rt.Snapshot().Reps)

	require.NoError(t, rt.AdjustWeight(-100))
	assert.Equal(t, 0.0, rt.Snapshot().WeightKg)
	require.NoError(t, rt.AdjustWeight(2.5))
	assert.Equal(t, 2.5, rt.Snapshot().WeightKg)
}

func TestRuntimeAdjustDuringRest(t *testing.T) {
	env := newRuntimeEnv(t, strengthEntries(3, 10, 600, 0))
	rt := env.rt
	rt.Timer().SetInterval(time.Hour) // keep the rest pending for the whole test
	require.NoError(t, rt.Start(context.Background()))
	require.NoError(t, rt.SelectExercise(0))
	require.NoError(t, rt.CompleteSet())

	require.Equal(t, PhaseResting, rt.Snapshot().Phase)
	assert.ErrorIs(t, rt.AdjustReps(1), ErrRestInProgress)
	assert.ErrorIs(t, rt.AdjustWeight(1), ErrRestInProgress)
	assert.ErrorIs(t, rt.CompleteSet(), ErrRestInProgress)
	assert.ErrorIs(t, rt.BeginSet(), ErrRestInProgress)
}

func TestRuntimeRestPauseResume(t *testing.T) {
	env := newRuntimeEnv(t, strengthEntries(2, 10, 3, 0))
	rt := env.rt
	require.NoError(t, rt.Start(context.Background()))
	require.NoError(t, rt.SelectExercise(0))

	rt.Timer().SetInterval(time.Hour)
	require.NoError(t, rt.CompleteSet())
	require.Equal(t, PhaseResting, rt.Snapshot().Phase)

	rt.PauseRest()
	assert.True(t, rt.Timer().Paused())
	rt.ResumeRest()
	assert.False(t, rt.Timer().Paused())

	// Skipping ends the rest like an expiry would.
	rt.SkipRest()
	assert.Equal(t, PhaseWorking, rt.Snapshot().Phase)
}

func TestRuntimeSkipAndExpiryConverge(t *testing.T) {
	makeRun := func(t *testing.T) (*runtimeEnv, chan struct{}) {
		env := newRuntimeEnv(t, strengthEntries(2, 10, 2, 0))
		cue := make(chan struct{}, 1)
		env.rt.OnRestEnded = func() { cue <- struct{}{} }
		require.NoError(t, env.rt.Start(context.Background()))
		require.NoError(t, env.rt.SelectExercise(0))
		require.NoError(t, env.rt.CompleteSet())
		require.Equal(t, PhaseResting, env.rt.Snapshot().Phase)
		return env, cue
	}

	// Natural expiry.
	expired, expiredCue := makeRun(t)
	waitPhase(t, expired.rt, PhaseWorking)

	// Skip.
	skipped, skippedCue := makeRun(t)
	skipped.rt.SkipRest()

	// Both paths deliver exactly one cue and identical state.
	waitSignal(t, expiredCue, "expiry cue")
	waitSignal(t, skippedCue, "skip cue")

	expSnap := expired.rt.Snapshot()
	skipSnap := skipped.rt.Snapshot()
	assert.Equal(t, expSnap.Phase, skipSnap.Phase)
	assert.Equal(t, expSnap.CurrentSet, skipSnap.CurrentSet)
	assert.Equal(t, 0, skipSnap.RestSecondsLeft)
	assert.Equal(t, 0, expSnap.RestSecondsLeft)
}

func TestRuntimeTimeBasedSingleCompletion(t *testing.T) {
	distance := 2000.0
	entries := []domain.ExerciseEntry{
		{
			ExerciseID: primitive.NewObjectID(),
			Category:   domain.CategoryCardio,
			Timed:      &domain.TimedScheme{DurationSeconds: 600, DistanceMeters: &distance, RestSeconds: 30},
		},
	}
	env := newRuntimeEnv(t, entries)
	rt := env.rt
	ctx := context.Background()

	require.NoError(t, rt.Start(ctx))
	require.NoError(t, rt.SelectExercise(0))

	// Reps and weight do not apply to a timed segment.
	assert.Error(t, rt.AdjustReps(1))
	assert.Error(t, rt.AdjustWeight(1))

	// One action completes the exercise; no trailing rest countdown runs.
	require.NoError(t, rt.CompleteSet())
	snap := rt.Snapshot()
	assert.True(t, snap.Finished)
	assert.False(t, rt.Timer().Running())

	rt.Flush()

	logs, err := env.store.ExerciseLogs().GetBySessionID(ctx, rt.Session().ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Nil(t, logs[0].RepsCompleted)
	require.NotNil(t, logs[0].DurationSeconds)
	assert.Equal(t, 600, *logs[0].DurationSeconds)
	require.NotNil(t, logs[0].DistanceMeters)
	assert.Equal(t, 2000.0, *logs[0].DistanceMeters)
}

func TestRuntimeFinishEarly(t *testing.T) {
	weight := 0.0
	entries := []domain.ExerciseEntry{
		{
			ExerciseID: primitive.NewObjectID(),
			Category:   domain.CategoryStrength,
			Rep:        &domain.RepScheme{Sets: 1, Reps: 10, RestSeconds: 0, WeightKg: &weight},
		},
		{
			ExerciseID: primitive.NewObjectID(),
			Category:   domain.CategoryCooldown,
			Timed:      &domain.TimedScheme{DurationSeconds: 120, RestSeconds: 15},
		},
	}
	env := newRuntimeEnv(t, entries)
	rt := env.rt
	ctx := context.Background()

	require.NoError(t, rt.Start(ctx))

	// Nothing completed yet: finishing is refused.
	assert.ErrorIs(t, rt.Finish(), ErrNothingCompleted)

	require.NoError(t, rt.SelectExercise(0))
	require.NoError(t, rt.CompleteSet())

	require.NoError(t, rt.Finish())
	assert.True(t, rt.Snapshot().Finished)

	// Finishing again is a no-op, not an error.
	require.NoError(t, rt.Finish())

	rt.Flush()

	closed, err := env.store.Sessions().GetByID(ctx, rt.Session().ID)
	require.NoError(t, err)
	require.NotNil(t, closed.CompletedAt)

	final, err := env.store.Assignments().GetByID(ctx, env.assignment.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, final.Status)

	// Interaction after finish is rejected.
	assert.ErrorIs(t, rt.SelectExercise(1), ErrRunFinished)
}

func TestRuntimeSelectExerciseCancelsRest(t *testing.T) {
	weight := 0.0
	entries := []domain.ExerciseEntry{
		{
			ExerciseID: primitive.NewObjectID(),
			Category:   domain.CategoryStrength,
			Rep:        &domain.RepScheme{Sets: 3, Reps: 10, RestSeconds: 600, WeightKg: &weight},
		},
		{
			ExerciseID: primitive.NewObjectID(),
			Category:   domain.CategoryWarmup,
			Timed:      &domain.TimedScheme{DurationSeconds: 60, RestSeconds: 15},
		},
	}
	env := newRuntimeEnv(t, entries)
	rt := env.rt
	rt.Timer().SetInterval(time.Hour)

	require.NoError(t, rt.Start(context.Background()))
	require.NoError(t, rt.SelectExercise(0))
	require.NoError(t, rt.CompleteSet())
	require.Equal(t, PhaseResting, rt.Snapshot().Phase)

	// Switching exercises cancels the countdown without a rest-ended cue.
	require.NoError(t, rt.SelectExercise(1))
	assert.False(t, rt.Timer().Running())
	snap := rt.Snapshot()
	assert.Equal(t, PhaseIdle, snap.Phase)
	assert.Equal(t, 1, snap.ExerciseIndex)
	assert.Equal(t, 1, snap.CurrentSet)
}

func TestRuntimeLogFailureNotifiesWithoutRollback(t *testing.T) {
	env := newRuntimeEnv(t, strengthEntries(3, 10, 0, 0))
	rt := env.rt
	require.NoError(t, rt.Start(context.Background()))
	require.NoError(t, rt.SelectExercise(0))

	// Remote writes start failing mid-session.
	env.store.FailCreates = true

	require.NoError(t, rt.CompleteSet())
	rt.Flush()

	// Local progress stands; the failure surfaced as a notification.
	assert.Equal(t, 2, rt.Snapshot().CurrentSet)
	assert.Contains(t, env.notifier.Ops(), "log set")
}

func TestRuntimeDegradedMode(t *testing.T) {
	env := newRuntimeEnv(t, strengthEntries(3, 10, 60, 0))
	ctx := context.Background()

	// Delete the template after the env seeded it; the assignment now
	// dangles.
	require.NoError(t, env.store.Templates().Delete(ctx, env.workout.ID, env.workout.CoachID))

	rt, err := Load(ctx, env.assignment.ID,
		env.store.Assignments(), env.store.Templates(),
		env.store.Sessions(), env.store.ExerciseLogs(), env.notifier)
	require.NoError(t, err)

	assert.True(t, rt.Degraded())
	assert.Equal(t, FallbackWorkoutName, rt.WorkoutName())
	assert.ErrorIs(t, rt.Start(ctx), ErrWorkoutUnavailable)
}

func TestRuntimeLoad(t *testing.T) {
	env := newRuntimeEnv(t, strengthEntries(3, 10, 60, 0))
	ctx := context.Background()

	rt, err := Load(ctx, env.assignment.ID,
		env.store.Assignments(), env.store.Templates(),
		env.store.Sessions(), env.store.ExerciseLogs(), env.notifier)
	require.NoError(t, err)

	assert.False(t, rt.Degraded())
	assert.Equal(t, "Full Body", rt.WorkoutName())

	_, err = Load(ctx, primitive.NewObjectID(),
		env.store.Assignments(), env.store.Templates(),
		env.store.Sessions(), env.store.ExerciseLogs(), env.notifier)
	assert.Error(t, err)
}
