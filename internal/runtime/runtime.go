// Package runtime drives a client through one assignment's exercise list:
// set-by-set execution, rest countdowns, per-set logging, and session
// completion. One Runtime exists per run, owned by a single UI goroutine;
// the rest timer's tick loop is the only other mutator and re-enters through
// the runtime's lock.
package runtime

import (
	"context"
	"errors"
	"sync"
	"time"

	"alcyxob/coaching-app/internal/domain"
	"alcyxob/coaching-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Phase is the per-exercise execution phase.
type Phase string

const (
	PhaseIdle    Phase = "idle"    // exercise selected, set not started
	PhaseWorking Phase = "working" // client performing the current set/segment
	PhaseResting Phase = "resting" // countdown active between sets
)

// FallbackWorkoutName is shown when the assignment points at a template that
// no longer exists.
const FallbackWorkoutName = "Workout unavailable"

// --- Error Definitions ---
var (
	ErrWorkoutUnavailable = errors.New("workout template is unavailable for this assignment")
	ErrAlreadyStarted     = errors.New("session already started")
	ErrNotStarted         = errors.New("session not started")
	ErrRunFinished        = errors.New("session already finished")
	ErrNoExerciseSelected = errors.New("no exercise selected")
	ErrExerciseCompleted  = errors.New("exercise already completed")
	ErrRestInProgress     = errors.New("rest countdown in progress")
	ErrNothingCompleted   = errors.New("cannot finish: no exercise completed yet")
)

// remoteWriteTimeout bounds each fire-and-forget write.
const remoteWriteTimeout = 10 * time.Second

// State is a point-in-time snapshot for the host UI.
type State struct {
	Phase           Phase
	ExerciseIndex   int // -1 while the list view is shown
	CurrentSet      int
	Reps            int
	WeightKg        float64
	RestSecondsLeft int
	Completed       []bool
	Finished        bool
}

// Runtime is the session-execution state machine.
type Runtime struct {
	mu sync.Mutex

	assignment *domain.Assignment
	workout    *domain.WorkoutTemplate // nil in degraded mode
	session    *domain.Session

	sessionRepo    repository.SessionRepository
	logRepo        repository.ExerciseLogRepository
	assignmentRepo repository.AssignmentRepository
	notifier       Notifier

	timer *RestTimer
	now   func() time.Time
	wg    sync.WaitGroup // outstanding fire-and-forget writes

	cur           int // selected exercise, -1 = list view
	phase         Phase
	currentSet    int
	currentReps   int
	currentWeight float64
	done          []bool
	finished      bool

	// Host UI hooks, set before Start. OnRestEnded doubles as the
	// completion cue for both skip and natural expiry.
	OnRestTick  func(remaining int)
	OnRestEnded func()
}

// New creates a runtime for an assignment whose template is already loaded.
// A nil workout puts the runtime in degraded mode: the name falls back and
// execution is disabled.
func New(
	assignment *domain.Assignment,
	workout *domain.WorkoutTemplate,
	sessionRepo repository.SessionRepository,
	logRepo repository.ExerciseLogRepository,
	assignmentRepo repository.AssignmentRepository,
	notifier Notifier,
) *Runtime {
	if notifier == nil {
		notifier = NewLogNotifier()
	}
	r := &Runtime{
		assignment:     assignment,
		workout:        workout,
		sessionRepo:    sessionRepo,
		logRepo:        logRepo,
		assignmentRepo: assignmentRepo,
		notifier:       notifier,
		now:            time.Now,
		cur:            -1,
		phase:          PhaseIdle,
	}
	r.timer = NewRestTimer(r.forwardTick, r.restEnded)
	return r
}

// Load fetches the assignment and its template, degrading (not failing) when
// the template reference is stale.
func Load(
	ctx context.Context,
	assignmentID primitive.ObjectID,
	assignmentRepo repository.AssignmentRepository,
	templateRepo repository.TemplateRepository,
	sessionRepo repository.SessionRepository,
	logRepo repository.ExerciseLogRepository,
	notifier Notifier,
) (*Runtime, error) {
	assignment, err := assignmentRepo.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	workout, err := templateRepo.GetByID(ctx, assignment.WorkoutID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Assignment pointing at a deleted template: show the fallback
			// label and disable execution instead of crashing.
			return New(assignment, nil, sessionRepo, logRepo, assignmentRepo, notifier), nil
		}
		return nil, err
	}

	return New(assignment, workout, sessionRepo, logRepo, assignmentRepo, notifier), nil
}

// Degraded reports whether execution is disabled due to a stale template
// reference.
func (r *Runtime) Degraded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.workout == nil
}

// WorkoutName returns the template name, or the fallback label in degraded
// mode.
func (r *Runtime) WorkoutName() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.workout == nil {
		return FallbackWorkoutName
	}
	return r.workout.Name
}

// Start opens the session record and moves the assignment to active. The
// session create is the one remote write that is not fire-and-forget: every
// later log write needs its id, so a rejected create fails the start.
func (r *Runtime) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.workout == nil {
		return ErrWorkoutUnavailable
	}
	if r.session != nil {
		return ErrAlreadyStarted
	}

	session := &domain.Session{
		AssignmentID: r.assignment.ID,
		WorkoutID:    r.assignment.WorkoutID,
		ClientID:     r.assignment.ClientID,
		StartedAt:    r.now().UTC(),
	}
	id, err := r.sessionRepo.Create(ctx, session)
	if err != nil {
		return err
	}
	session.ID = id
	r.session = session

	r.done = make([]bool, len(r.workout.Entries))
	r.cur = -1
	r.phase = PhaseIdle
	r.finished = false

	// The client is now working out; advance pending -> active. Local state
	// leads, the store follows asynchronously.
	if r.assignment.Status.CanAdvanceTo(domain.StatusActive) {
		r.assignment.Status = domain.StatusActive
		r.writeAssignmentAsync(*r.assignment)
	}
	return nil
}

// SelectExercise shows exercise i and resets its per-set counters. Completed
// exercises stay completed; selecting one only changes what is displayed.
func (r *Runtime) SelectExercise(i int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.runnableLocked(); err != nil {
		return err
	}
	if i < 0 || i >= len(r.workout.Entries) {
		return errors.New("exercise index out of range")
	}

	// Switching exercises deterministically cancels the one active countdown.
	r.timer.Stop()

	r.cur = i
	r.currentSet = 1
	r.phase = PhaseIdle

	entry := r.workout.Entries[i]
	if entry.Rep != nil {
		r.currentReps = entry.Rep.Reps
		if entry.Rep.WeightKg != nil {
			r.currentWeight = *entry.Rep.WeightKg
		} else {
			r.currentWeight = 0
		}
	} else {
		r.currentReps = 0
		r.currentWeight = 0
	}
	return nil
}

// BeginSet moves the selected exercise from Idle to Working.
func (r *Runtime) BeginSet() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.selectedLocked(); err != nil {
		return err
	}
	if r.phase == PhaseResting {
		return ErrRestInProgress
	}
	r.phase = PhaseWorking
	return nil
}

// AdjustReps changes the rep target for the upcoming set, floored at 1.
// Allowed in Idle and Working, not mid-rest.
func (r *Runtime) AdjustReps(delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.adjustableLocked(); err != nil {
		return err
	}
	r.currentReps += delta
	if r.currentReps < 1 {
		r.currentReps = 1
	}
	return nil
}

// AdjustWeight changes the weight for the upcoming set, floored at 0.
func (r *Runtime) AdjustWeight(delta float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.adjustableLocked(); err != nil {
		return err
	}
	r.currentWeight += delta
	if r.currentWeight < 0 {
		r.currentWeight = 0
	}
	return nil
}

// CompleteSet records the current unit of work. Rep-based exercises log one
// set and either rest or complete; time-based exercises complete in a single
// action. The log write never blocks or rolls back the transition.
func (r *Runtime) CompleteSet() error {
	r.mu.Lock()

	if err := r.selectedLocked(); err != nil {
		r.mu.Unlock()
		return err
	}
	if r.phase == PhaseResting {
		r.mu.Unlock()
		return ErrRestInProgress
	}

	entry := r.workout.Entries[r.cur]
	record := &domain.ExerciseLog{
		SessionID:  r.session.ID,
		ExerciseID: entry.ExerciseID,
		SetNumber:  r.currentSet,
	}

	restSeconds := 0
	exerciseDone := false

	if entry.Rep != nil {
		reps := r.currentReps
		record.RepsCompleted = &reps
		if r.currentWeight > 0 {
			weight := r.currentWeight
			record.WeightKg = &weight
		}

		if r.currentSet < entry.Rep.Sets {
			r.currentSet++
			restSeconds = entry.Rep.RestSeconds
		} else {
			exerciseDone = true
		}
	} else {
		// Time-based: one action completes the whole segment, no trailing
		// rest on the final unit.
		duration := entry.Timed.DurationSeconds
		record.DurationSeconds = &duration
		record.DistanceMeters = entry.Timed.DistanceMeters
		exerciseDone = true
	}

	finishNow := false
	if exerciseDone {
		r.done[r.cur] = true
		r.cur = -1
		r.phase = PhaseIdle
		if r.allDoneLocked() {
			// Last exercise just completed; the whole run finishes.
			r.finishLocked()
			finishNow = true
		}
	} else if restSeconds > 0 {
		r.phase = PhaseResting
	} else {
		r.phase = PhaseWorking
	}

	r.mu.Unlock()

	r.writeLogAsync(record)
	if restSeconds > 0 {
		r.timer.Start(restSeconds)
	}
	if finishNow {
		r.writeCompletionAsync()
	}
	return nil
}

// PauseRest freezes the rest countdown.
func (r *Runtime) PauseRest() {
	r.timer.Pause()
}

// ResumeRest continues a paused rest countdown.
func (r *Runtime) ResumeRest() {
	r.timer.Resume()
}

// SkipRest forces the countdown to zero; the transition back to Working runs
// through the same path as a natural expiry.
func (r *Runtime) SkipRest() {
	r.timer.Skip()
}

// Finish ends the run early. At least one exercise must be completed; a
// second Finish is a no-op.
func (r *Runtime) Finish() error {
	r.mu.Lock()

	if r.finished {
		r.mu.Unlock()
		return nil
	}
	if r.session == nil {
		r.mu.Unlock()
		return ErrNotStarted
	}
	completed := 0
	for _, d := range r.done {
		if d {
			completed++
		}
	}
	if completed == 0 {
		r.mu.Unlock()
		return ErrNothingCompleted
	}

	r.finishLocked()
	r.mu.Unlock()

	r.writeCompletionAsync()
	return nil
}

// Flush waits for outstanding fire-and-forget writes. Called on navigation
// away so reported failures are not lost with the process.
func (r *Runtime) Flush() {
	r.wg.Wait()
}

// Snapshot returns the current UI-facing state.
func (r *Runtime) Snapshot() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	completed := append([]bool(nil), r.done...)
	return State{
		Phase:           r.phase,
		ExerciseIndex:   r.cur,
		CurrentSet:      r.currentSet,
		Reps:            r.currentReps,
		WeightKg:        r.currentWeight,
		RestSecondsLeft: r.timer.Remaining(),
		Completed:       completed,
		Finished:        r.finished,
	}
}

// Session returns a copy of the session record, or nil before Start.
func (r *Runtime) Session() *domain.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.session == nil {
		return nil
	}
	out := *r.session
	return &out
}

// Assignment returns a copy of the governing assignment.
func (r *Runtime) Assignment() domain.Assignment {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.assignment
}

// Timer exposes the rest timer, mainly so hosts can render its state.
func (r *Runtime) Timer() *RestTimer {
	return r.timer
}

// --- internals ---

func (r *Runtime) runnableLocked() error {
	if r.workout == nil {
		return ErrWorkoutUnavailable
	}
	if r.session == nil {
		return ErrNotStarted
	}
	if r.finished {
		return ErrRunFinished
	}
	return nil
}

func (r *Runtime) selectedLocked() error {
	if err := r.runnableLocked(); err != nil {
		return err
	}
	if r.cur < 0 {
		return ErrNoExerciseSelected
	}
	if r.done[r.cur] {
		return ErrExerciseCompleted
	}
	return nil
}

func (r *Runtime) adjustableLocked() error {
	if err := r.selectedLocked(); err != nil {
		return err
	}
	if r.phase == PhaseResting {
		return ErrRestInProgress
	}
	if r.workout.Entries[r.cur].Rep == nil {
		return errors.New("reps and weight only apply to rep-based exercises")
	}
	return nil
}

func (r *Runtime) allDoneLocked() bool {
	for _, d := range r.done {
		if !d {
			return false
		}
	}
	return len(r.done) > 0
}

// finishLocked closes the run locally: completion timestamp, duration, and
// the assignment's terminal status. Remote writes follow outside the lock.
func (r *Runtime) finishLocked() {
	r.finished = true
	r.timer.Stop()

	now := r.now().UTC()
	r.session.CompletedAt = &now
	duration := int(now.Sub(r.session.StartedAt).Seconds())
	r.session.DurationSeconds = &duration

	if r.assignment.Status.CanAdvanceTo(domain.StatusCompleted) {
		r.assignment.Status = domain.StatusCompleted
	}
}

// restEnded runs on the timer goroutine for both skip and natural expiry.
func (r *Runtime) restEnded() {
	r.mu.Lock()
	if r.finished || r.phase != PhaseResting {
		r.mu.Unlock()
		return
	}
	r.phase = PhaseWorking
	cue := r.OnRestEnded
	r.mu.Unlock()

	if cue != nil {
		cue()
	}
}

func (r *Runtime) forwardTick(remaining int) {
	r.mu.Lock()
	tick := r.OnRestTick
	r.mu.Unlock()
	if tick != nil {
		tick(remaining)
	}
}

// writeLogAsync appends one exercise log without blocking the state machine.
// A failed write is reported, never rolled back: the client already saw the
// counters advance.
func (r *Runtime) writeLogAsync(record *domain.ExerciseLog) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), remoteWriteTimeout)
		defer cancel()
		if _, err := r.logRepo.Create(ctx, record); err != nil {
			r.notifier.NotifyError("log set", err)
		}
	}()
}

func (r *Runtime) writeAssignmentAsync(assignment domain.Assignment) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), remoteWriteTimeout)
		defer cancel()
		if err := r.assignmentRepo.Update(ctx, &assignment); err != nil {
			r.notifier.NotifyError("advance assignment status", err)
		}
	}()
}

// writeCompletionAsync persists the closed session and the completed
// assignment status.
func (r *Runtime) writeCompletionAsync() {
	r.mu.Lock()
	session := *r.session
	assignment := *r.assignment
	r.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), remoteWriteTimeout)
		defer cancel()
		if err := r.sessionRepo.Update(ctx, &session); err != nil {
			r.notifier.NotifyError("close session", err)
		}
	}()
	r.writeAssignmentAsync(assignment)
}
