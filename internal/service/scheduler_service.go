package service

import (
	"context"
	"errors"
	"time"

	"alcyxob/coaching-app/internal/domain"
	"alcyxob/coaching-app/internal/repository"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrTemplateNotFound   = errors.New("workout template not found")
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrClientNotFound     = errors.New("client user not found")
	ErrClientNotRole      = errors.New("user found but is not a client")
	ErrInvalidStatus      = errors.New("unknown assignment status")
	ErrStatusRegression   = errors.New("assignment status can only move forward")
)

// WeekDay is one rendered calendar day. Days with no assignments are still
// present with an empty slice; an empty day is a displayed state, not an
// error.
type WeekDay struct {
	Date        time.Time
	Assignments []domain.Assignment
}

// SchedulerService maintains the {template} x {client, date} -> assignment
// mapping behind the weekly calendar.
type SchedulerService interface {
	// ListWeek returns exactly DaysPerWeek days starting at the Monday of
	// the week containing ref, each with the client's assignments due that
	// day.
	ListWeek(ctx context.Context, clientID primitive.ObjectID, ref time.Time) ([]WeekDay, error)
	// PlaceAssignment creates a pending assignment for templateID on the
	// given date. Placing the same template twice on the same day creates
	// two independent assignments; repeats are a feature.
	PlaceAssignment(ctx context.Context, coachID, templateID, clientID primitive.ObjectID, date time.Time) (*domain.Assignment, error)
	// RemoveAssignment deletes the assignment only; the template survives.
	RemoveAssignment(ctx context.Context, assignmentID primitive.ObjectID) error
	// GetAssignment retrieves one assignment.
	GetAssignment(ctx context.Context, assignmentID primitive.ObjectID) (*domain.Assignment, error)
	// AdvanceStatus applies a forward-only status transition.
	AdvanceStatus(ctx context.Context, assignmentID primitive.ObjectID, next domain.AssignmentStatus) (*domain.Assignment, error)
}

type schedulerService struct {
	assignmentRepo repository.AssignmentRepository
	templateRepo   repository.TemplateRepository
	userRepo       repository.UserRepository
	log            *logrus.Entry
}

// NewSchedulerService creates a new instance of schedulerService.
func NewSchedulerService(
	assignmentRepo repository.AssignmentRepository,
	templateRepo repository.TemplateRepository,
	userRepo repository.UserRepository,
) SchedulerService {
	return &schedulerService{
		assignmentRepo: assignmentRepo,
		templateRepo:   templateRepo,
		userRepo:       userRepo,
		log:            logrus.WithField("component", "scheduler"),
	}
}

// ListWeek renders the 7-day calendar for a client.
func (s *schedulerService) ListWeek(ctx context.Context, clientID primitive.ObjectID, ref time.Time) ([]WeekDay, error) {
	if clientID == primitive.NilObjectID {
		return nil, errors.New("client ID is required")
	}

	weekStart := WeekStart(ref)
	weekEnd := weekStart.AddDate(0, 0, DaysPerWeek)

	assignments, err := s.assignmentRepo.GetByClientAndDateRange(ctx, clientID, weekStart, weekEnd)
	if err != nil {
		return nil, err
	}

	days := make([]WeekDay, DaysPerWeek)
	for i := range days {
		days[i] = WeekDay{
			Date:        weekStart.AddDate(0, 0, i),
			Assignments: []domain.Assignment{},
		}
	}
	for _, a := range assignments {
		idx := int(StartOfDay(a.DueDate).Sub(weekStart).Hours() / 24)
		if idx < 0 || idx >= DaysPerWeek {
			continue
		}
		days[idx].Assignments = append(days[idx].Assignments, a)
	}
	return days, nil
}

// PlaceAssignment validates both references, then creates the assignment.
func (s *schedulerService) PlaceAssignment(ctx context.Context, coachID, templateID, clientID primitive.ObjectID, date time.Time) (*domain.Assignment, error) {
	if templateID == primitive.NilObjectID || clientID == primitive.NilObjectID {
		return nil, errors.New("template ID and client ID are required")
	}

	if _, err := s.templateRepo.GetByID(ctx, templateID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}

	client, err := s.userRepo.GetByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	if !client.IsClient() {
		return nil, ErrClientNotRole
	}

	assignment := &domain.Assignment{
		WorkoutID: templateID,
		ClientID:  clientID,
		CoachID:   coachID,
		DueDate:   StartOfDay(date),
		Status:    domain.StatusPending,
	}

	assignmentID, err := s.assignmentRepo.Create(ctx, assignment)
	if err != nil {
		return nil, err
	}
	assignment.ID = assignmentID

	s.log.WithFields(logrus.Fields{
		"assignment_id": assignmentID.Hex(),
		"workout_id":    templateID.Hex(),
		"due_date":      assignment.DueDate.Format("2006-01-02"),
	}).Info("assignment placed")

	return assignment, nil
}

// RemoveAssignment deletes the assignment record.
func (s *schedulerService) RemoveAssignment(ctx context.Context, assignmentID primitive.ObjectID) error {
	if assignmentID == primitive.NilObjectID {
		return errors.New("assignment ID is required")
	}
	err := s.assignmentRepo.Delete(ctx, assignmentID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrAssignmentNotFound
	}
	return err
}

// GetAssignment retrieves one assignment.
func (s *schedulerService) GetAssignment(ctx context.Context, assignmentID primitive.ObjectID) (*domain.Assignment, error) {
	assignment, err := s.assignmentRepo.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}
	return assignment, nil
}

// AdvanceStatus validates the transition is forward-only before committing.
func (s *schedulerService) AdvanceStatus(ctx context.Context, assignmentID primitive.ObjectID, next domain.AssignmentStatus) (*domain.Assignment, error) {
	if !next.IsValid() {
		return nil, ErrInvalidStatus
	}

	assignment, err := s.assignmentRepo.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}

	if !assignment.Status.CanAdvanceTo(next) {
		return nil, ErrStatusRegression
	}

	assignment.Status = next
	if err := s.assignmentRepo.Update(ctx, assignment); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"assignment_id": assignmentID.Hex(),
		"status":        string(next),
	}).Info("assignment status advanced")

	return assignment, nil
}
