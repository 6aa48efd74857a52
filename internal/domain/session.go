package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Session is one timed execution of an assignment. It is created when the
// client starts the run and completed exactly once; CompletedAt is immutable
// after that.
type Session struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AssignmentID    primitive.ObjectID `bson:"assignmentId" json:"assignmentId"`
	WorkoutID       primitive.ObjectID `bson:"workoutId" json:"workoutId"`
	ClientID        primitive.ObjectID `bson:"clientId" json:"clientId"`
	StartedAt       time.Time          `bson:"startedAt" json:"startedAt"`
	CompletedAt     *time.Time         `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	DurationSeconds *int               `bson:"durationSeconds,omitempty" json:"durationSeconds,omitempty"`
}

// Completed reports whether the session has been closed.
func (s *Session) Completed() bool {
	return s.CompletedAt != nil
}

// ExerciseLog records one completed unit of work: one set for rep-based
// exercises, the whole segment for time-based ones. Logs are append-only;
// the runtime never updates or deletes them.
type ExerciseLog struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID       primitive.ObjectID `bson:"sessionId" json:"sessionId"`
	ExerciseID      primitive.ObjectID `bson:"exerciseId" json:"exerciseId"`
	SetNumber       int                `bson:"setNumber" json:"setNumber"`
	RepsCompleted   *int               `bson:"repsCompleted,omitempty" json:"repsCompleted,omitempty"`
	DurationSeconds *int               `bson:"durationSeconds,omitempty" json:"durationSeconds,omitempty"`
	DistanceMeters  *float64           `bson:"distanceMeters,omitempty" json:"distanceMeters,omitempty"`
	WeightKg        *float64           `bson:"weightKg,omitempty" json:"weightKg,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
}
