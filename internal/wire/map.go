package wire

import (
	"errors"
	"fmt"
	"time"

	"alcyxob/coaching-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrBadID is returned when a wire id is not a valid ObjectID hex string.
var ErrBadID = errors.New("invalid id on wire payload")

// ParseID converts a wire id to an ObjectID. Empty input maps to NilObjectID
// so optional references stay optional.
func ParseID(s string) (primitive.ObjectID, error) {
	if s == "" {
		return primitive.NilObjectID, nil
	}
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrBadID, s)
	}
	return id, nil
}

func formatID(id primitive.ObjectID) string {
	if id == primitive.NilObjectID {
		return ""
	}
	return id.Hex()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// ParseTime accepts RFC3339 timestamps and bare dates; calendar placement
// sends dates, everything else sends timestamps.
func ParseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("unparseable time %q", s)
	}
	return t.UTC(), nil
}

// --- exercises ---

// FromExercise maps a domain exercise to its wire form.
func FromExercise(e *domain.Exercise) Exercise {
	return Exercise{
		ID:           formatID(e.ID),
		CoachID:      formatID(e.CoachID),
		Name:         e.Name,
		Description:  e.Description,
		Category:     string(e.Category),
		MuscleGroups: e.MuscleGroups,
		CreatedAt:    formatTime(e.CreatedAt),
		UpdatedAt:    formatTime(e.UpdatedAt),
	}
}

// ToExercise maps a wire exercise to the domain model.
func ToExercise(w Exercise) (*domain.Exercise, error) {
	id, err := ParseID(w.ID)
	if err != nil {
		return nil, err
	}
	coachID, err := ParseID(w.CoachID)
	if err != nil {
		return nil, err
	}
	created, err := ParseTime(w.CreatedAt)
	if err != nil {
		return nil, err
	}
	updated, err := ParseTime(w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &domain.Exercise{
		ID:           id,
		CoachID:      coachID,
		Name:         w.Name,
		Description:  w.Description,
		Category:     domain.ExerciseCategory(w.Category),
		MuscleGroups: w.MuscleGroups,
		CreatedAt:    created,
		UpdatedAt:    updated,
	}, nil
}

// --- entries ---

// FromEntry maps a domain entry to the flattened wire form.
func FromEntry(e domain.ExerciseEntry) ExerciseEntry {
	out := ExerciseEntry{
		ExerciseID: formatID(e.ExerciseID),
		OrderIndex: e.OrderIndex,
		Category:   string(e.Category),
	}
	if e.Rep != nil {
		sets, reps, rest := e.Rep.Sets, e.Rep.Reps, e.Rep.RestSeconds
		out.Sets = &sets
		out.Reps = &reps
		out.RestSeconds = &rest
		out.WeightKg = e.Rep.WeightKg
	}
	if e.Timed != nil {
		dur, rest := e.Timed.DurationSeconds, e.Timed.RestSeconds
		out.DurationSeconds = &dur
		out.RestSeconds = &rest
		out.DistanceMeters = e.Timed.DistanceMeters
	}
	return out
}

// ToEntry maps a wire entry to the category-keyed domain variant, filling
// defaults for absent optional fields: rest_seconds gets the category
// default, sets and reps fall back to 1, duration to 0.
func ToEntry(w ExerciseEntry) (domain.ExerciseEntry, error) {
	exerciseID, err := ParseID(w.ExerciseID)
	if err != nil {
		return domain.ExerciseEntry{}, err
	}
	category := domain.ExerciseCategory(w.Category)
	entry := domain.ExerciseEntry{
		ExerciseID: exerciseID,
		OrderIndex: w.OrderIndex,
		Category:   category,
	}
	if !category.IsValid() {
		return entry, domain.ErrEntryBadCategory
	}

	rest := category.DefaultRestSeconds()
	if w.RestSeconds != nil {
		rest = *w.RestSeconds
	}

	if category.IsTimeBased() {
		timed := &domain.TimedScheme{RestSeconds: rest}
		if w.DurationSeconds != nil {
			timed.DurationSeconds = *w.DurationSeconds
		}
		timed.DistanceMeters = w.DistanceMeters
		entry.Timed = timed
		return entry, nil
	}

	rep := &domain.RepScheme{Sets: 1, Reps: 1, RestSeconds: rest}
	if w.Sets != nil {
		rep.Sets = *w.Sets
	}
	if w.Reps != nil {
		rep.Reps = *w.Reps
	}
	rep.WeightKg = w.WeightKg
	entry.Rep = rep
	return entry, nil
}

// ToEntries maps an edited wire entry list, preserving slice order.
func ToEntries(ws []ExerciseEntry) ([]domain.ExerciseEntry, error) {
	entries := make([]domain.ExerciseEntry, 0, len(ws))
	for _, w := range ws {
		entry, err := ToEntry(w)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// FromEntries maps a domain entry list to wire form.
func FromEntries(entries []domain.ExerciseEntry) []ExerciseEntry {
	out := make([]ExerciseEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, FromEntry(e))
	}
	return out
}

// --- templates ---

// FromTemplate maps a domain template to wire form.
func FromTemplate(t *domain.WorkoutTemplate) Template {
	isTemplate := t.IsTemplate
	out := Template{
		ID:          formatID(t.ID),
		CoachID:     formatID(t.CoachID),
		Name:        t.Name,
		Description: t.Description,
		Entries:     FromEntries(t.Entries),
		IsTemplate:  &isTemplate,
		CreatedAt:   formatTime(t.CreatedAt),
		UpdatedAt:   formatTime(t.UpdatedAt),
	}
	if t.ClientID != nil {
		out.ClientID = formatID(*t.ClientID)
	}
	return out
}

// ToTemplate maps a wire template to the domain model. A missing is_template
// defaults to true: the wire shape predates personalized clones.
func ToTemplate(w Template) (*domain.WorkoutTemplate, error) {
	id, err := ParseID(w.ID)
	if err != nil {
		return nil, err
	}
	coachID, err := ParseID(w.CoachID)
	if err != nil {
		return nil, err
	}
	entries, err := ToEntries(w.Entries)
	if err != nil {
		return nil, err
	}
	created, err := ParseTime(w.CreatedAt)
	if err != nil {
		return nil, err
	}
	updated, err := ParseTime(w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	tmpl := &domain.WorkoutTemplate{
		ID:          id,
		CoachID:     coachID,
		Name:        w.Name,
		Description: w.Description,
		Entries:     entries,
		IsTemplate:  true,
		CreatedAt:   created,
		UpdatedAt:   updated,
	}
	if w.IsTemplate != nil {
		tmpl.IsTemplate = *w.IsTemplate
	}
	if w.ClientID != "" {
		clientID, err := ParseID(w.ClientID)
		if err != nil {
			return nil, err
		}
		tmpl.ClientID = &clientID
	}
	return tmpl, nil
}

// --- assignments ---

// FromAssignment maps a domain assignment to wire form.
func FromAssignment(a *domain.Assignment) Assignment {
	return Assignment{
		ID:        formatID(a.ID),
		WorkoutID: formatID(a.WorkoutID),
		ClientID:  formatID(a.ClientID),
		CoachID:   formatID(a.CoachID),
		DueDate:   formatTime(a.DueDate),
		Status:    string(a.Status),
		Notes:     a.Notes,
		CreatedAt: formatTime(a.CreatedAt),
		UpdatedAt: formatTime(a.UpdatedAt),
	}
}

// ToAssignment maps a wire assignment to the domain model. A missing status
// defaults to pending.
func ToAssignment(w Assignment) (*domain.Assignment, error) {
	id, err := ParseID(w.ID)
	if err != nil {
		return nil, err
	}
	workoutID, err := ParseID(w.WorkoutID)
	if err != nil {
		return nil, err
	}
	clientID, err := ParseID(w.ClientID)
	if err != nil {
		return nil, err
	}
	coachID, err := ParseID(w.CoachID)
	if err != nil {
		return nil, err
	}
	due, err := ParseTime(w.DueDate)
	if err != nil {
		return nil, err
	}
	created, err := ParseTime(w.CreatedAt)
	if err != nil {
		return nil, err
	}
	updated, err := ParseTime(w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	status := domain.StatusPending
	if w.Status != "" {
		status = domain.AssignmentStatus(w.Status)
	}
	return &domain.Assignment{
		ID:        id,
		WorkoutID: workoutID,
		ClientID:  clientID,
		CoachID:   coachID,
		DueDate:   due,
		Status:    status,
		Notes:     w.Notes,
		CreatedAt: created,
		UpdatedAt: updated,
	}, nil
}

// --- sessions ---

// FromSession maps a domain session to wire form.
func FromSession(s *domain.Session) Session {
	out := Session{
		ID:              formatID(s.ID),
		AssignmentID:    formatID(s.AssignmentID),
		WorkoutID:       formatID(s.WorkoutID),
		ClientID:        formatID(s.ClientID),
		StartedAt:       formatTime(s.StartedAt),
		DurationSeconds: s.DurationSeconds,
	}
	if s.CompletedAt != nil {
		completed := formatTime(*s.CompletedAt)
		out.CompletedAt = &completed
	}
	return out
}

// ToSession maps a wire session to the domain model.
func ToSession(w Session) (*domain.Session, error) {
	id, err := ParseID(w.ID)
	if err != nil {
		return nil, err
	}
	assignmentID, err := ParseID(w.AssignmentID)
	if err != nil {
		return nil, err
	}
	workoutID, err := ParseID(w.WorkoutID)
	if err != nil {
		return nil, err
	}
	clientID, err := ParseID(w.ClientID)
	if err != nil {
		return nil, err
	}
	started, err := ParseTime(w.StartedAt)
	if err != nil {
		return nil, err
	}
	session := &domain.Session{
		ID:              id,
		AssignmentID:    assignmentID,
		WorkoutID:       workoutID,
		ClientID:        clientID,
		StartedAt:       started,
		DurationSeconds: w.DurationSeconds,
	}
	if w.CompletedAt != nil {
		completed, err := ParseTime(*w.CompletedAt)
		if err != nil {
			return nil, err
		}
		session.CompletedAt = &completed
	}
	return session, nil
}

// --- exercise logs ---

// FromLog maps a domain log to wire form.
func FromLog(l *domain.ExerciseLog) ExerciseLog {
	return ExerciseLog{
		ID:              formatID(l.ID),
		SessionID:       formatID(l.SessionID),
		ExerciseID:      formatID(l.ExerciseID),
		SetNumber:       l.SetNumber,
		RepsCompleted:   l.RepsCompleted,
		DurationSeconds: l.DurationSeconds,
		DistanceMeters:  l.DistanceMeters,
		WeightKg:        l.WeightKg,
		CreatedAt:       formatTime(l.CreatedAt),
	}
}

// ToLog maps a wire log to the domain model.
func ToLog(w ExerciseLog) (*domain.ExerciseLog, error) {
	id, err := ParseID(w.ID)
	if err != nil {
		return nil, err
	}
	sessionID, err := ParseID(w.SessionID)
	if err != nil {
		return nil, err
	}
	exerciseID, err := ParseID(w.ExerciseID)
	if err != nil {
		return nil, err
	}
	created, err := ParseTime(w.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &domain.ExerciseLog{
		ID:              id,
		SessionID:       sessionID,
		ExerciseID:      exerciseID,
		SetNumber:       w.SetNumber,
		RepsCompleted:   w.RepsCompleted,
		DurationSeconds: w.DurationSeconds,
		DistanceMeters:  w.DistanceMeters,
		WeightKg:        w.WeightKg,
		CreatedAt:       created,
	}, nil
}
