// Package wire defines the snake_case JSON shapes exchanged with the data
// service and maps them to and from the camelCase domain model. Both the API
// handlers and the remote client use these types, so the two sides cannot
// drift apart.
package wire

// Exercise is the wire form of domain.Exercise.
type Exercise struct {
	ID           string   `json:"id,omitempty"`
	CoachID      string   `json:"coach_id,omitempty"`
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	Category     string   `json:"category"`
	MuscleGroups []string `json:"muscle_groups,omitempty"`
	CreatedAt    string   `json:"created_at,omitempty"`
	UpdatedAt    string   `json:"updated_at,omitempty"`
}

// ExerciseEntry is the wire form of domain.ExerciseEntry. The rep/timed
// split is flattened: which fields are meaningful follows from category.
type ExerciseEntry struct {
	ExerciseID      string   `json:"exercise_id"`
	OrderIndex      int      `json:"order_index"`
	Category        string   `json:"category"`
	Sets            *int     `json:"sets,omitempty"`
	Reps            *int     `json:"reps,omitempty"`
	RestSeconds     *int     `json:"rest_seconds,omitempty"`
	WeightKg        *float64 `json:"weight_kg,omitempty"`
	DurationSeconds *int     `json:"duration_seconds,omitempty"`
	DistanceMeters  *float64 `json:"distance_meters,omitempty"`
}

// Template is the wire form of domain.WorkoutTemplate.
type Template struct {
	ID          string          `json:"id,omitempty"`
	CoachID     string          `json:"coach_id,omitempty"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Entries     []ExerciseEntry `json:"entries"`
	IsTemplate  *bool           `json:"is_template,omitempty"`
	ClientID    string          `json:"client_id,omitempty"`
	CreatedAt   string          `json:"created_at,omitempty"`
	UpdatedAt   string          `json:"updated_at,omitempty"`
}

// Assignment is the wire form of domain.Assignment.
type Assignment struct {
	ID        string `json:"id,omitempty"`
	WorkoutID string `json:"workout_id"`
	ClientID  string `json:"client_id"`
	CoachID   string `json:"coach_id,omitempty"`
	DueDate   string `json:"due_date"`
	Status    string `json:"status,omitempty"`
	Notes     string `json:"notes,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// Session is the wire form of domain.Session.
type Session struct {
	ID              string  `json:"id,omitempty"`
	AssignmentID    string  `json:"assignment_id"`
	WorkoutID       string  `json:"workout_id,omitempty"`
	ClientID        string  `json:"client_id"`
	StartedAt       string  `json:"started_at"`
	CompletedAt     *string `json:"completed_at,omitempty"`
	DurationSeconds *int    `json:"duration_seconds,omitempty"`
}

// ExerciseLog is the wire form of domain.ExerciseLog.
type ExerciseLog struct {
	ID              string   `json:"id,omitempty"`
	SessionID       string   `json:"session_id"`
	ExerciseID      string   `json:"exercise_id"`
	SetNumber       int      `json:"set_number"`
	RepsCompleted   *int     `json:"reps_completed,omitempty"`
	DurationSeconds *int     `json:"duration_seconds,omitempty"`
	DistanceMeters  *float64 `json:"distance_meters,omitempty"`
	WeightKg        *float64 `json:"weight_kg,omitempty"`
	CreatedAt       string   `json:"created_at,omitempty"`
}

// List is the enveloped list shape. Endpoints may also return a bare JSON
// array; see DecodeItems in the remote client.
type List[T any] struct {
	Items      []T    `json:"items"`
	Count      int    `json:"count"`
	NextCursor string `json:"next_cursor,omitempty"`
}
