package service

import (
	"context"
	"errors"
	"fmt"

	"alcyxob/coaching-app/internal/domain"
	"alcyxob/coaching-app/internal/repository"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrTemplateAccessDenied = errors.New("access denied to modify this template")
	ErrEmptyExerciseList    = errors.New("a workout must reference at least one exercise")
)

// TemplateService manages workout templates and the personalization clone
// path. Cloning is the only way an already-assigned workout gets edited; the
// source template is read and copied from, never written to.
type TemplateService interface {
	CreateTemplate(ctx context.Context, coachID primitive.ObjectID, name, description string, entries []domain.ExerciseEntry) (*domain.WorkoutTemplate, error)
	GetTemplate(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutTemplate, error)
	GetTemplatesByCoach(ctx context.Context, coachID primitive.ObjectID) ([]domain.WorkoutTemplate, error)
	UpdateEntries(ctx context.Context, coachID, templateID primitive.ObjectID, entries []domain.ExerciseEntry) (*domain.WorkoutTemplate, error)
	DeleteTemplate(ctx context.Context, coachID, templateID primitive.ObjectID) error

	// PersonalizeAssignment creates a client-scoped clone of the assignment's
	// template containing the edited entries, re-points the assignment at the
	// clone, and returns the clone. Calling it again on the same assignment
	// creates another independent clone.
	PersonalizeAssignment(ctx context.Context, coachID, assignmentID primitive.ObjectID, entries []domain.ExerciseEntry) (*domain.WorkoutTemplate, error)
}

type templateService struct {
	templateRepo   repository.TemplateRepository
	assignmentRepo repository.AssignmentRepository
	userRepo       repository.UserRepository
	log            *logrus.Entry
}

// NewTemplateService creates a new instance of templateService.
func NewTemplateService(
	templateRepo repository.TemplateRepository,
	assignmentRepo repository.AssignmentRepository,
	userRepo repository.UserRepository,
) TemplateService {
	return &templateService{
		templateRepo:   templateRepo,
		assignmentRepo: assignmentRepo,
		userRepo:       userRepo,
		log:            logrus.WithField("component", "templates"),
	}
}

// validateEntryList rejects an edit before anything is written.
func validateEntryList(entries []domain.ExerciseEntry) error {
	if len(entries) == 0 {
		return ErrEmptyExerciseList
	}
	return domain.ValidateEntries(entries)
}

// CreateTemplate creates a reusable template owned by the coach.
func (s *templateService) CreateTemplate(ctx context.Context, coachID primitive.ObjectID, name, description string, entries []domain.ExerciseEntry) (*domain.WorkoutTemplate, error) {
	if coachID == primitive.NilObjectID || name == "" {
		return nil, errors.New("coach ID and template name are required")
	}
	if err := validateEntryList(entries); err != nil {
		return nil, err
	}
	domain.RenumberEntries(entries)

	tmpl := &domain.WorkoutTemplate{
		CoachID:     coachID,
		Name:        name,
		Description: description,
		Entries:     entries,
		IsTemplate:  true,
	}

	id, err := s.templateRepo.Create(ctx, tmpl)
	if err != nil {
		return nil, err
	}
	tmpl.ID = id
	return tmpl, nil
}

// GetTemplate retrieves one template.
func (s *templateService) GetTemplate(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutTemplate, error) {
	tmpl, err := s.templateRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	return tmpl, nil
}

// GetTemplatesByCoach retrieves all templates owned by the coach.
func (s *templateService) GetTemplatesByCoach(ctx context.Context, coachID primitive.ObjectID) ([]domain.WorkoutTemplate, error) {
	if coachID == primitive.NilObjectID {
		return nil, errors.New("coach ID is required")
	}
	return s.templateRepo.GetByCoachID(ctx, coachID)
}

// UpdateEntries replaces a template's exercise list. This is the edit path
// for the shared template itself, not for an assignment; assignment edits go
// through PersonalizeAssignment.
func (s *templateService) UpdateEntries(ctx context.Context, coachID, templateID primitive.ObjectID, entries []domain.ExerciseEntry) (*domain.WorkoutTemplate, error) {
	if err := validateEntryList(entries); err != nil {
		return nil, err
	}

	tmpl, err := s.templateRepo.GetByID(ctx, templateID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	if tmpl.CoachID != coachID {
		return nil, ErrTemplateAccessDenied
	}

	domain.RenumberEntries(entries)
	tmpl.Entries = entries
	if err := s.templateRepo.Update(ctx, tmpl); err != nil {
		return nil, err
	}
	return tmpl, nil
}

// DeleteTemplate removes a template and its embedded entries.
func (s *templateService) DeleteTemplate(ctx context.Context, coachID, templateID primitive.ObjectID) error {
	err := s.templateRepo.Delete(ctx, templateID, coachID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrTemplateNotFound
	}
	return err
}

// PersonalizeAssignment implements the clone-on-edit contract.
func (s *templateService) PersonalizeAssignment(ctx context.Context, coachID, assignmentID primitive.ObjectID, entries []domain.ExerciseEntry) (*domain.WorkoutTemplate, error) {
	// 1. Validate the edited list before any state mutation or remote call.
	if err := validateEntryList(entries); err != nil {
		return nil, err
	}

	// 2. Load the assignment and the source template.
	assignment, err := s.assignmentRepo.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}

	source, err := s.templateRepo.GetByID(ctx, assignment.WorkoutID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	if source.CoachID != coachID {
		return nil, ErrTemplateAccessDenied
	}

	// 3. Derive a label that keeps clones distinguishable. Fall back to the
	// client id when the user record is gone.
	clientLabel := assignment.ClientID.Hex()
	if client, err := s.userRepo.GetByID(ctx, assignment.ClientID); err == nil {
		clientLabel = client.Name
	}

	// 4. Build the clone. The source is never written to.
	domain.RenumberEntries(entries)
	clientID := assignment.ClientID
	clone := &domain.WorkoutTemplate{
		CoachID:     source.CoachID,
		Name:        fmt.Sprintf("%s (%s)", source.Name, clientLabel),
		Description: source.Description,
		Entries:     entries,
		IsTemplate:  false,
		ClientID:    &clientID,
	}

	cloneID, err := s.templateRepo.Create(ctx, clone)
	if err != nil {
		return nil, err
	}
	clone.ID = cloneID

	// 5. Re-point the assignment at the clone.
	assignment.WorkoutID = cloneID
	if err := s.assignmentRepo.Update(ctx, assignment); err != nil {
		// The clone exists but the assignment still points at the source;
		// surface the failure so the caller can retry.
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"assignment_id": assignmentID.Hex(),
		"source_id":     source.ID.Hex(),
		"clone_id":      cloneID.Hex(),
	}).Info("assignment personalized")

	return clone, nil
}
