package domain

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Entry validation errors, returned before anything touches the store.
var (
	ErrEntryMissingParams  = errors.New("exercise entry has no parameters for its category")
	ErrEntryWrongParams    = errors.New("exercise entry parameters do not match its category")
	ErrEntryNegativeParams = errors.New("exercise entry parameters must not be negative")
	ErrEntryBadCategory    = errors.New("exercise entry has an unknown category")
)

// RepScheme parameterizes a rep-based (strength) entry.
type RepScheme struct {
	Sets        int      `bson:"sets" json:"sets"`
	Reps        int      `bson:"reps" json:"reps"`
	RestSeconds int      `bson:"restSeconds" json:"restSeconds"`
	WeightKg    *float64 `bson:"weightKg,omitempty" json:"weightKg,omitempty"`
}

// TimedScheme parameterizes a time-based entry. DistanceMeters is only
// meaningful for cardio.
type TimedScheme struct {
	DurationSeconds int      `bson:"durationSeconds" json:"durationSeconds"`
	DistanceMeters  *float64 `bson:"distanceMeters,omitempty" json:"distanceMeters,omitempty"`
	RestSeconds     int      `bson:"restSeconds" json:"restSeconds"`
}

// ExerciseEntry places one catalog exercise inside a template. Exactly one of
// Rep/Timed is set, keyed by Category: strength entries carry Rep, everything
// else carries Timed.
type ExerciseEntry struct {
	ExerciseID primitive.ObjectID `bson:"exerciseId" json:"exerciseId"`
	OrderIndex int                `bson:"orderIndex" json:"orderIndex"`
	Category   ExerciseCategory   `bson:"category" json:"category"`
	Rep        *RepScheme         `bson:"rep,omitempty" json:"rep,omitempty"`
	Timed      *TimedScheme       `bson:"timed,omitempty" json:"timed,omitempty"`
}

// RestSeconds returns the configured rest regardless of variant.
func (e *ExerciseEntry) RestSeconds() int {
	if e.Category.IsTimeBased() {
		if e.Timed != nil {
			return e.Timed.RestSeconds
		}
		return 0
	}
	if e.Rep != nil {
		return e.Rep.RestSeconds
	}
	return 0
}

// Validate checks the variant shape and parameter floors for one entry.
func (e *ExerciseEntry) Validate() error {
	if !e.Category.IsValid() {
		return ErrEntryBadCategory
	}
	if e.Category.IsTimeBased() {
		if e.Timed == nil {
			return ErrEntryMissingParams
		}
		if e.Rep != nil {
			return ErrEntryWrongParams
		}
		if e.Timed.DurationSeconds < 0 || e.Timed.RestSeconds < 0 {
			return ErrEntryNegativeParams
		}
		if e.Timed.DistanceMeters != nil {
			if e.Category != CategoryCardio {
				return ErrEntryWrongParams
			}
			if *e.Timed.DistanceMeters < 0 {
				return ErrEntryNegativeParams
			}
		}
		return nil
	}
	if e.Rep == nil {
		return ErrEntryMissingParams
	}
	if e.Timed != nil {
		return ErrEntryWrongParams
	}
	if e.Rep.Sets < 1 || e.Rep.Reps < 1 || e.Rep.RestSeconds < 0 {
		return ErrEntryNegativeParams
	}
	if e.Rep.WeightKg != nil && *e.Rep.WeightKg < 0 {
		return ErrEntryNegativeParams
	}
	return nil
}

// RenumberEntries rewrites OrderIndex as a dense 0..n-1 sequence in slice
// order. Every write path that touches a template's entry list goes through
// this, which keeps the density invariant without trusting callers.
func RenumberEntries(entries []ExerciseEntry) {
	for i := range entries {
		entries[i].OrderIndex = i
	}
}

// ValidateEntries validates each entry of an edited list.
func ValidateEntries(entries []ExerciseEntry) error {
	for i := range entries {
		if err := entries[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// WorkoutTemplate is an ordered exercise list owned by a coach. Reusable
// templates have IsTemplate=true and no ClientID; personalized clones
// produced by the cloner have IsTemplate=false and ClientID set.
type WorkoutTemplate struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	CoachID     primitive.ObjectID  `bson:"coachId" json:"coachId"`
	Name        string              `bson:"name" json:"name"`
	Description string              `bson:"description,omitempty" json:"description,omitempty"`
	Entries     []ExerciseEntry     `bson:"entries" json:"entries"`
	IsTemplate  bool                `bson:"isTemplate" json:"isTemplate"`
	ClientID    *primitive.ObjectID `bson:"clientId,omitempty" json:"clientId,omitempty"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt" json:"updatedAt"`
}
