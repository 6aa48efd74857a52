package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExerciseCategory determines how an exercise is parameterized and executed.
type ExerciseCategory string

const (
	CategoryStrength    ExerciseCategory = "strength"
	CategoryCardio      ExerciseCategory = "cardio"
	CategoryWarmup      ExerciseCategory = "warmup"
	CategoryCooldown    ExerciseCategory = "cooldown"
	CategoryFlexibility ExerciseCategory = "flexibility"
)

// AllCategories lists every valid category, used for input validation.
var AllCategories = []ExerciseCategory{
	CategoryStrength,
	CategoryCardio,
	CategoryWarmup,
	CategoryCooldown,
	CategoryFlexibility,
}

// IsValid reports whether c is one of the known categories.
func (c ExerciseCategory) IsValid() bool {
	for _, known := range AllCategories {
		if c == known {
			return true
		}
	}
	return false
}

// IsTimeBased reports whether exercises of this category are executed as a
// single timed segment (duration, optional distance) rather than sets x reps.
// Strength is the only rep-based category.
func (c ExerciseCategory) IsTimeBased() bool {
	return c != CategoryStrength
}

// DefaultRestSeconds returns the rest applied when a wire payload omits one.
func (c ExerciseCategory) DefaultRestSeconds() int {
	switch c {
	case CategoryStrength:
		return 60
	case CategoryCardio:
		return 30
	default:
		return 15
	}
}

// Exercise is a single catalog entry owned by a coach. The scheduler and the
// session runtime only ever read it; mutation happens through the catalog
// endpoints.
type Exercise struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CoachID      primitive.ObjectID `bson:"coachId" json:"coachId"`
	Name         string             `bson:"name" json:"name"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	Category     ExerciseCategory   `bson:"category" json:"category"`
	MuscleGroups []string           `bson:"muscleGroups,omitempty" json:"muscleGroups,omitempty"` // e.g. "Chest", "Legs"
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}
