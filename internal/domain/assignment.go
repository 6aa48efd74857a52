package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AssignmentStatus tracks the lifecycle of a scheduled workout.
type AssignmentStatus string

const (
	StatusPending   AssignmentStatus = "pending"   // placed on the calendar, not started
	StatusActive    AssignmentStatus = "active"    // client started a session
	StatusCompleted AssignmentStatus = "completed" // terminal
)

// statusRank orders statuses so transitions can only move forward.
var statusRank = map[AssignmentStatus]int{
	StatusPending:   0,
	StatusActive:    1,
	StatusCompleted: 2,
}

// IsValid reports whether s is a known status.
func (s AssignmentStatus) IsValid() bool {
	_, ok := statusRank[s]
	return ok
}

// CanAdvanceTo reports whether moving from s to next is a forward transition.
// Completed is terminal; a status never regresses.
func (s AssignmentStatus) CanAdvanceTo(next AssignmentStatus) bool {
	from, ok := statusRank[s]
	if !ok {
		return false
	}
	to, ok := statusRank[next]
	if !ok {
		return false
	}
	return to > from
}

// Assignment binds one template to one client on one calendar date. The
// WorkoutID may be re-pointed by the personalization cloner, never by the
// session runtime.
type Assignment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WorkoutID primitive.ObjectID `bson:"workoutId" json:"workoutId"`
	ClientID  primitive.ObjectID `bson:"clientId" json:"clientId"`
	CoachID   primitive.ObjectID `bson:"coachId" json:"coachId"` // denormalized for coach-side queries
	DueDate   time.Time          `bson:"dueDate" json:"dueDate"`
	Status    AssignmentStatus   `bson:"status" json:"status"`
	Notes     string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
