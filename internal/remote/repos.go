package remote

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"alcyxob/coaching-app/internal/domain"
	"alcyxob/coaching-app/internal/wire"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- exercises ---

type exerciseClient struct{ c *Client }

func (r *exerciseClient) Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	var out wire.Exercise
	if err := r.c.do(ctx, http.MethodPost, "/exercises", nil, wire.FromExercise(exercise), &out); err != nil {
		return primitive.NilObjectID, err
	}
	created, err := wire.ToExercise(out)
	if err != nil {
		return primitive.NilObjectID, err
	}
	*exercise = *created
	return created.ID, nil
}

func (r *exerciseClient) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	var out wire.Exercise
	if err := r.c.do(ctx, http.MethodGet, "/exercises/"+id.Hex(), nil, nil, &out); err != nil {
		return nil, err
	}
	return wire.ToExercise(out)
}

func (r *exerciseClient) GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.Exercise, error) {
	items, err := getList[wire.Exercise](ctx, r.c, "/exercises", idQuery("coach_id", coachID))
	if err != nil {
		return nil, err
	}
	exercises := make([]domain.Exercise, 0, len(items))
	for _, item := range items {
		e, err := wire.ToExercise(item)
		if err != nil {
			return nil, err
		}
		exercises = append(exercises, *e)
	}
	return exercises, nil
}

func (r *exerciseClient) Update(ctx context.Context, exercise *domain.Exercise) error {
	return r.c.do(ctx, http.MethodPut, "/exercises/"+exercise.ID.Hex(), nil, wire.FromExercise(exercise), nil)
}

func (r *exerciseClient) Delete(ctx context.Context, id, coachID primitive.ObjectID) error {
	return r.c.do(ctx, http.MethodDelete, "/exercises/"+id.Hex(), idQuery("coach_id", coachID), nil, nil)
}

// --- templates ---

type templateClient struct{ c *Client }

func (r *templateClient) Create(ctx context.Context, tmpl *domain.WorkoutTemplate) (primitive.ObjectID, error) {
	var out wire.Template
	if err := r.c.do(ctx, http.MethodPost, "/templates", nil, wire.FromTemplate(tmpl), &out); err != nil {
		return primitive.NilObjectID, err
	}
	created, err := wire.ToTemplate(out)
	if err != nil {
		return primitive.NilObjectID, err
	}
	*tmpl = *created
	return created.ID, nil
}

func (r *templateClient) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutTemplate, error) {
	var out wire.Template
	if err := r.c.do(ctx, http.MethodGet, "/templates/"+id.Hex(), nil, nil, &out); err != nil {
		return nil, err
	}
	return wire.ToTemplate(out)
}

func (r *templateClient) GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.WorkoutTemplate, error) {
	items, err := getList[wire.Template](ctx, r.c, "/templates", idQuery("coach_id", coachID))
	if err != nil {
		return nil, err
	}
	templates := make([]domain.WorkoutTemplate, 0, len(items))
	for _, item := range items {
		t, err := wire.ToTemplate(item)
		if err != nil {
			return nil, err
		}
		templates = append(templates, *t)
	}
	return templates, nil
}

func (r *templateClient) Update(ctx context.Context, tmpl *domain.WorkoutTemplate) error {
	return r.c.do(ctx, http.MethodPut, "/templates/"+tmpl.ID.Hex(), nil, wire.FromTemplate(tmpl), nil)
}

func (r *templateClient) Delete(ctx context.Context, id, coachID primitive.ObjectID) error {
	return r.c.do(ctx, http.MethodDelete, "/templates/"+id.Hex(), idQuery("coach_id", coachID), nil, nil)
}

// --- assignments ---

type assignmentClient struct{ c *Client }

func (r *assignmentClient) Create(ctx context.Context, assignment *domain.Assignment) (primitive.ObjectID, error) {
	var out wire.Assignment
	if err := r.c.do(ctx, http.MethodPost, "/assignments", nil, wire.FromAssignment(assignment), &out); err != nil {
		return primitive.NilObjectID, err
	}
	created, err := wire.ToAssignment(out)
	if err != nil {
		return primitive.NilObjectID, err
	}
	*assignment = *created
	return created.ID, nil
}

func (r *assignmentClient) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Assignment, error) {
	var out wire.Assignment
	if err := r.c.do(ctx, http.MethodGet, "/assignments/"+id.Hex(), nil, nil, &out); err != nil {
		return nil, err
	}
	return wire.ToAssignment(out)
}

func (r *assignmentClient) GetByClientAndDateRange(ctx context.Context, clientID primitive.ObjectID, from, to time.Time) ([]domain.Assignment, error) {
	q := url.Values{}
	q.Set("client_id", clientID.Hex())
	q.Set("from", from.UTC().Format(time.RFC3339))
	q.Set("to", to.UTC().Format(time.RFC3339))
	return r.list(ctx, q)
}

func (r *assignmentClient) GetByWorkoutID(ctx context.Context, workoutID primitive.ObjectID) ([]domain.Assignment, error) {
	return r.list(ctx, idQuery("workout_id", workoutID))
}

func (r *assignmentClient) list(ctx context.Context, q url.Values) ([]domain.Assignment, error) {
	items, err := getList[wire.Assignment](ctx, r.c, "/assignments", q)
	if err != nil {
		return nil, err
	}
	assignments := make([]domain.Assignment, 0, len(items))
	for _, item := range items {
		a, err := wire.ToAssignment(item)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, *a)
	}
	return assignments, nil
}

func (r *assignmentClient) Update(ctx context.Context, assignment *domain.Assignment) error {
	return r.c.do(ctx, http.MethodPut, "/assignments/"+assignment.ID.Hex(), nil, wire.FromAssignment(assignment), nil)
}

func (r *assignmentClient) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.c.do(ctx, http.MethodDelete, "/assignments/"+id.Hex(), nil, nil, nil)
}

// --- sessions ---

type sessionClient struct{ c *Client }

func (r *sessionClient) Create(ctx context.Context, session *domain.Session) (primitive.ObjectID, error) {
	var out wire.Session
	if err := r.c.do(ctx, http.MethodPost, "/sessions", nil, wire.FromSession(session), &out); err != nil {
		return primitive.NilObjectID, err
	}
	created, err := wire.ToSession(out)
	if err != nil {
		return primitive.NilObjectID, err
	}
	*session = *created
	return created.ID, nil
}

func (r *sessionClient) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Session, error) {
	var out wire.Session
	if err := r.c.do(ctx, http.MethodGet, "/sessions/"+id.Hex(), nil, nil, &out); err != nil {
		return nil, err
	}
	return wire.ToSession(out)
}

func (r *sessionClient) GetByAssignmentID(ctx context.Context, assignmentID primitive.ObjectID) ([]domain.Session, error) {
	items, err := getList[wire.Session](ctx, r.c, "/sessions", idQuery("assignment_id", assignmentID))
	if err != nil {
		return nil, err
	}
	sessions := make([]domain.Session, 0, len(items))
	for _, item := range items {
		s, err := wire.ToSession(item)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	return sessions, nil
}

func (r *sessionClient) Update(ctx context.Context, session *domain.Session) error {
	return r.c.do(ctx, http.MethodPut, "/sessions/"+session.ID.Hex(), nil, wire.FromSession(session), nil)
}

// --- exercise logs ---

type logClient struct{ c *Client }

func (r *logClient) Create(ctx context.Context, log *domain.ExerciseLog) (primitive.ObjectID, error) {
	var out wire.ExerciseLog
	if err := r.c.do(ctx, http.MethodPost, "/logs", nil, wire.FromLog(log), &out); err != nil {
		return primitive.NilObjectID, err
	}
	created, err := wire.ToLog(out)
	if err != nil {
		return primitive.NilObjectID, err
	}
	*log = *created
	return created.ID, nil
}

func (r *logClient) GetBySessionID(ctx context.Context, sessionID primitive.ObjectID) ([]domain.ExerciseLog, error) {
	items, err := getList[wire.ExerciseLog](ctx, r.c, "/logs", idQuery("session_id", sessionID))
	if err != nil {
		return nil, err
	}
	logs := make([]domain.ExerciseLog, 0, len(items))
	for _, item := range items {
		l, err := wire.ToLog(item)
		if err != nil {
			return nil, err
		}
		logs = append(logs, *l)
	}
	return logs, nil
}
