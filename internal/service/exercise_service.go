package service

import (
	"context"
	"errors"

	"alcyxob/coaching-app/internal/domain"
	"alcyxob/coaching-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrExerciseNotFound     = errors.New("exercise not found")
	ErrExerciseAccessDenied = errors.New("access denied to modify this exercise")
	ErrValidationFailed     = errors.New("validation failed")
)

// ExerciseService manages the coach's exercise catalog. The scheduler and the
// session runtime treat the catalog as read-only.
type ExerciseService interface {
	CreateExercise(ctx context.Context, coachID primitive.ObjectID, name, description string, category domain.ExerciseCategory, muscleGroups []string) (*domain.Exercise, error)
	GetExercise(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	GetExercisesByCoach(ctx context.Context, coachID primitive.ObjectID) ([]domain.Exercise, error)
	DeleteExercise(ctx context.Context, coachID, exerciseID primitive.ObjectID) error
}

type exerciseService struct {
	exerciseRepo repository.ExerciseRepository
}

// NewExerciseService creates a new instance of exerciseService.
func NewExerciseService(exerciseRepo repository.ExerciseRepository) ExerciseService {
	return &exerciseService{exerciseRepo: exerciseRepo}
}

// CreateExercise adds a new catalog entry for the coach.
func (s *exerciseService) CreateExercise(ctx context.Context, coachID primitive.ObjectID, name, description string, category domain.ExerciseCategory, muscleGroups []string) (*domain.Exercise, error) {
	if coachID == primitive.NilObjectID || name == "" {
		return nil, ErrValidationFailed
	}
	if !category.IsValid() {
		return nil, ErrValidationFailed
	}

	exercise := &domain.Exercise{
		CoachID:      coachID,
		Name:         name,
		Description:  description,
		Category:     category,
		MuscleGroups: muscleGroups,
	}

	id, err := s.exerciseRepo.Create(ctx, exercise)
	if err != nil {
		return nil, err
	}
	exercise.ID = id
	return exercise, nil
}

// GetExercise retrieves one catalog entry.
func (s *exerciseService) GetExercise(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return exercise, nil
}

// GetExercisesByCoach retrieves the coach's whole catalog.
func (s *exerciseService) GetExercisesByCoach(ctx context.Context, coachID primitive.ObjectID) ([]domain.Exercise, error) {
	if coachID == primitive.NilObjectID {
		return nil, errors.New("coach ID is required")
	}
	return s.exerciseRepo.GetByCoachID(ctx, coachID)
}

// DeleteExercise removes a catalog entry owned by the coach.
func (s *exerciseService) DeleteExercise(ctx context.Context, coachID, exerciseID primitive.ObjectID) error {
	err := s.exerciseRepo.Delete(ctx, exerciseID, coachID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrExerciseNotFound
	}
	return err
}
