// Package memory provides map-backed implementations of the repository
// interfaces. They back the test suites and make the API server runnable
// without a MongoDB instance.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"alcyxob/coaching-app/internal/domain"
	"alcyxob/coaching-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store holds every collection behind one mutex and hands out repository
// implementations bound to it.
type Store struct {
	mu          sync.RWMutex
	users       map[primitive.ObjectID]domain.User
	exercises   map[primitive.ObjectID]domain.Exercise
	templates   map[primitive.ObjectID]domain.WorkoutTemplate
	assignments map[primitive.ObjectID]domain.Assignment
	sessions    map[primitive.ObjectID]domain.Session
	logs        map[primitive.ObjectID]domain.ExerciseLog

	// FailCreates makes every Create return an error; tests use it to
	// exercise rollback paths.
	FailCreates bool
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		users:       make(map[primitive.ObjectID]domain.User),
		exercises:   make(map[primitive.ObjectID]domain.Exercise),
		templates:   make(map[primitive.ObjectID]domain.WorkoutTemplate),
		assignments: make(map[primitive.ObjectID]domain.Assignment),
		sessions:    make(map[primitive.ObjectID]domain.Session),
		logs:        make(map[primitive.ObjectID]domain.ExerciseLog),
	}
}

var errCreateRejected = errors.New("create rejected by store")

func (s *Store) Users() repository.UserRepository               { return &userRepo{s} }
func (s *Store) Exercises() repository.ExerciseRepository       { return &exerciseRepo{s} }
func (s *Store) Templates() repository.TemplateRepository       { return &templateRepo{s} }
func (s *Store) Assignments() repository.AssignmentRepository   { return &assignmentRepo{s} }
func (s *Store) Sessions() repository.SessionRepository         { return &sessionRepo{s} }
func (s *Store) ExerciseLogs() repository.ExerciseLogRepository { return &logRepo{s} }

// --- users ---

type userRepo struct{ s *Store }

func (r *userRepo) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailCreates {
		return primitive.NilObjectID, errCreateRejected
	}
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return primitive.NilObjectID, errors.New("user with this email already exists")
		}
	}
	user.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.s.users[user.ID] = *user
	return user.ID, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := u
	return &out, nil
}

func (r *userRepo) AddClientIDToCoach(_ context.Context, coachID, clientID primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	coach, ok := r.s.users[coachID]
	if !ok || !coach.IsCoach() {
		return repository.ErrNotFound
	}
	for _, id := range coach.ClientIDs {
		if id == clientID {
			return nil
		}
	}
	coach.ClientIDs = append(coach.ClientIDs, clientID)
	coach.UpdatedAt = time.Now().UTC()
	r.s.users[coachID] = coach
	return nil
}

func (r *userRepo) GetClientsByCoachID(_ context.Context, coachID primitive.ObjectID) ([]domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	coach, ok := r.s.users[coachID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clients := []domain.User{}
	for _, id := range coach.ClientIDs {
		if c, ok := r.s.users[id]; ok {
			clients = append(clients, c)
		}
	}
	return clients, nil
}

func (r *userRepo) SetCoachForClient(_ context.Context, clientID, coachID primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	client, ok := r.s.users[clientID]
	if !ok || !client.IsClient() {
		return repository.ErrNotFound
	}
	client.CoachID = &coachID
	client.UpdatedAt = time.Now().UTC()
	r.s.users[clientID] = client
	return nil
}

// --- exercises ---

type exerciseRepo struct{ s *Store }

func (r *exerciseRepo) Create(_ context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailCreates {
		return primitive.NilObjectID, errCreateRejected
	}
	exercise.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	exercise.CreatedAt = now
	exercise.UpdatedAt = now
	r.s.exercises[exercise.ID] = *exercise
	return exercise.ID, nil
}

func (r *exerciseRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.exercises[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := e
	return &out, nil
}

func (r *exerciseRepo) GetByCoachID(_ context.Context, coachID primitive.ObjectID) ([]domain.Exercise, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.Exercise{}
	for _, e := range r.s.exercises {
		if e.CoachID == coachID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *exerciseRepo) Update(_ context.Context, exercise *domain.Exercise) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.exercises[exercise.ID]
	if !ok || existing.CoachID != exercise.CoachID {
		return repository.ErrNotFound
	}
	exercise.UpdatedAt = time.Now().UTC()
	r.s.exercises[exercise.ID] = *exercise
	return nil
}

func (r *exerciseRepo) Delete(_ context.Context, id, coachID primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.exercises[id]
	if !ok || existing.CoachID != coachID {
		return repository.ErrNotFound
	}
	delete(r.s.exercises, id)
	return nil
}

// --- templates ---

type templateRepo struct{ s *Store }

func (r *templateRepo) Create(_ context.Context, tmpl *domain.WorkoutTemplate) (primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailCreates {
		return primitive.NilObjectID, errCreateRejected
	}
	tmpl.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	tmpl.CreatedAt = now
	tmpl.UpdatedAt = now
	stored := *tmpl
	stored.Entries = append([]domain.ExerciseEntry(nil), tmpl.Entries...)
	r.s.templates[tmpl.ID] = stored
	return tmpl.ID, nil
}

func (r *templateRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.WorkoutTemplate, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.templates[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := t
	out.Entries = append([]domain.ExerciseEntry(nil), t.Entries...)
	return &out, nil
}

func (r *templateRepo) GetByCoachID(_ context.Context, coachID primitive.ObjectID) ([]domain.WorkoutTemplate, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.WorkoutTemplate{}
	for _, t := range r.s.templates {
		if t.CoachID == coachID {
			copied := t
			copied.Entries = append([]domain.ExerciseEntry(nil), t.Entries...)
			out = append(out, copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *templateRepo) Update(_ context.Context, tmpl *domain.WorkoutTemplate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.templates[tmpl.ID]; !ok {
		return repository.ErrNotFound
	}
	tmpl.UpdatedAt = time.Now().UTC()
	stored := *tmpl
	stored.Entries = append([]domain.ExerciseEntry(nil), tmpl.Entries...)
	r.s.templates[tmpl.ID] = stored
	return nil
}

func (r *templateRepo) Delete(_ context.Context, id, coachID primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.templates[id]
	if !ok || existing.CoachID != coachID {
		return repository.ErrNotFound
	}
	delete(r.s.templates, id)
	return nil
}

// --- assignments ---

type assignmentRepo struct{ s *Store }

func (r *assignmentRepo) Create(_ context.Context, assignment *domain.Assignment) (primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailCreates {
		return primitive.NilObjectID, errCreateRejected
	}
	// Placement fails when the referenced template is gone, mirroring the
	// backing store rejecting a dangling reference.
	if _, ok := r.s.templates[assignment.WorkoutID]; !ok {
		return primitive.NilObjectID, errCreateRejected
	}
	assignment.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	assignment.CreatedAt = now
	assignment.UpdatedAt = now
	if assignment.Status == "" {
		assignment.Status = domain.StatusPending
	}
	r.s.assignments[assignment.ID] = *assignment
	return assignment.ID, nil
}

func (r *assignmentRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Assignment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.assignments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := a
	return &out, nil
}

func (r *assignmentRepo) GetByClientAndDateRange(_ context.Context, clientID primitive.ObjectID, from, to time.Time) ([]domain.Assignment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.Assignment{}
	for _, a := range r.s.assignments {
		if a.ClientID == clientID && !a.DueDate.Before(from) && a.DueDate.Before(to) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DueDate.Equal(out[j].DueDate) {
			return out[i].DueDate.Before(out[j].DueDate)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *assignmentRepo) GetByWorkoutID(_ context.Context, workoutID primitive.ObjectID) ([]domain.Assignment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.Assignment{}
	for _, a := range r.s.assignments {
		if a.WorkoutID == workoutID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out, nil
}

func (r *assignmentRepo) Update(_ context.Context, assignment *domain.Assignment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.assignments[assignment.ID]; !ok {
		return repository.ErrNotFound
	}
	assignment.UpdatedAt = time.Now().UTC()
	r.s.assignments[assignment.ID] = *assignment
	return nil
}

func (r *assignmentRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.assignments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.assignments, id)
	return nil
}

// --- sessions ---

type sessionRepo struct{ s *Store }

func (r *sessionRepo) Create(_ context.Context, session *domain.Session) (primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailCreates {
		return primitive.NilObjectID, errCreateRejected
	}
	session.ID = primitive.NewObjectID()
	if session.StartedAt.IsZero() {
		session.StartedAt = time.Now().UTC()
	}
	r.s.sessions[session.ID] = *session
	return session.ID, nil
}

func (r *sessionRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Session, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sess, ok := r.s.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := sess
	return &out, nil
}

func (r *sessionRepo) GetByAssignmentID(_ context.Context, assignmentID primitive.ObjectID) ([]domain.Session, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.Session{}
	for _, sess := range r.s.sessions {
		if sess.AssignmentID == assignmentID {
			out = append(out, sess)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	return out, nil
}

func (r *sessionRepo) Update(_ context.Context, session *domain.Session) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.sessions[session.ID]
	if !ok {
		return repository.ErrNotFound
	}
	// CompletedAt is write-once.
	if existing.CompletedAt != nil {
		return repository.ErrUpdateFailed
	}
	r.s.sessions[session.ID] = *session
	return nil
}

// --- exercise logs ---

type logRepo struct{ s *Store }

func (r *logRepo) Create(_ context.Context, log *domain.ExerciseLog) (primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailCreates {
		return primitive.NilObjectID, errCreateRejected
	}
	log.ID = primitive.NewObjectID()
	log.CreatedAt = time.Now().UTC()
	r.s.logs[log.ID] = *log
	return log.ID, nil
}

func (r *logRepo) GetBySessionID(_ context.Context, sessionID primitive.ObjectID) ([]domain.ExerciseLog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.ExerciseLog{}
	for _, l := range r.s.logs {
		if l.SessionID == sessionID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ExerciseID != out[j].ExerciseID {
			return out[i].ExerciseID.Hex() < out[j].ExerciseID.Hex()
		}
		return out[i].SetNumber < out[j].SetNumber
	})
	return out, nil
}
