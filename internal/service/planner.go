package service

import (
	"context"
	"time"

	"alcyxob/coaching-app/internal/domain"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlannedAssignment is one calendar card in the planner's local state.
// Pending marks an optimistic placement the store has not confirmed yet; the
// correlation id lets a late failure revert exactly that card.
type PlannedAssignment struct {
	CorrelationID uuid.UUID
	Assignment    domain.Assignment
	Pending       bool
}

// WeekPlanner is the drag-and-place view model over SchedulerService. It
// keeps a local copy of the visible week, applies mutations optimistically,
// and rolls them back when the store rejects them.
//
// The planner belongs to a single UI goroutine (one logical thread of control
// per client session); it is not safe for concurrent use.
type WeekPlanner struct {
	scheduler SchedulerService
	clientID  primitive.ObjectID
	weekStart time.Time
	days      [DaysPerWeek][]PlannedAssignment
}

// NewWeekPlanner creates a planner showing the week containing ref.
func NewWeekPlanner(scheduler SchedulerService, clientID primitive.ObjectID, ref time.Time) *WeekPlanner {
	return &WeekPlanner{
		scheduler: scheduler,
		clientID:  clientID,
		weekStart: WeekStart(ref),
	}
}

// WeekStart returns the Monday the planner currently shows.
func (p *WeekPlanner) WeekStart() time.Time {
	return p.weekStart
}

// Day returns the local cards for day index 0..6 (Monday..Sunday).
func (p *WeekPlanner) Day(i int) []PlannedAssignment {
	if i < 0 || i >= DaysPerWeek {
		return nil
	}
	return p.days[i]
}

// Refresh reloads the visible week from the scheduler, replacing local state.
func (p *WeekPlanner) Refresh(ctx context.Context) error {
	week, err := p.scheduler.ListWeek(ctx, p.clientID, p.weekStart)
	if err != nil {
		return err
	}
	for i, day := range week {
		cards := make([]PlannedAssignment, 0, len(day.Assignments))
		for _, a := range day.Assignments {
			cards = append(cards, PlannedAssignment{CorrelationID: uuid.New(), Assignment: a})
		}
		p.days[i] = cards
	}
	return nil
}

// NextWeek moves the view one week forward. Pure view state; nothing is
// persisted until Refresh.
func (p *WeekPlanner) NextWeek() { p.weekStart = NextWeek(p.weekStart) }

// PreviousWeek moves the view one week back.
func (p *WeekPlanner) PreviousWeek() { p.weekStart = PreviousWeek(p.weekStart) }

// Today resets the view to the week containing now.
func (p *WeekPlanner) Today(now time.Time) { p.weekStart = WeekStart(now) }

// dayIndex maps a date to its column, or -1 when outside the visible week.
func (p *WeekPlanner) dayIndex(date time.Time) int {
	idx := int(StartOfDay(date).Sub(p.weekStart).Hours() / 24)
	if idx < 0 || idx >= DaysPerWeek {
		return -1
	}
	return idx
}

// Place handles a template dropped on a calendar day: the card appears
// immediately, then the store call either confirms it or rolls it back. No
// phantom assignment survives a rejected placement.
func (p *WeekPlanner) Place(ctx context.Context, coachID, templateID primitive.ObjectID, date time.Time) (*domain.Assignment, error) {
	idx := p.dayIndex(date)
	if idx < 0 {
		// Dropped outside the visible week; skip the optimistic insert and
		// let the store call decide.
		return p.scheduler.PlaceAssignment(ctx, coachID, templateID, p.clientID, date)
	}

	correlationID := uuid.New()
	p.days[idx] = append(p.days[idx], PlannedAssignment{
		CorrelationID: correlationID,
		Assignment: domain.Assignment{
			WorkoutID: templateID,
			ClientID:  p.clientID,
			CoachID:   coachID,
			DueDate:   StartOfDay(date),
			Status:    domain.StatusPending,
		},
		Pending: true,
	})

	created, err := p.scheduler.PlaceAssignment(ctx, coachID, templateID, p.clientID, date)
	if err != nil {
		p.revert(idx, correlationID)
		return nil, err
	}

	p.confirm(idx, correlationID, *created)
	return created, nil
}

// Remove drops a card locally, then deletes it; the card is restored when
// the store refuses.
func (p *WeekPlanner) Remove(ctx context.Context, assignmentID primitive.ObjectID) error {
	idx, pos := p.find(assignmentID)
	var removed PlannedAssignment
	if idx >= 0 {
		removed = p.days[idx][pos]
		p.days[idx] = append(p.days[idx][:pos], p.days[idx][pos+1:]...)
	}

	if err := p.scheduler.RemoveAssignment(ctx, assignmentID); err != nil {
		if idx >= 0 {
			p.days[idx] = append(p.days[idx], removed)
		}
		return err
	}
	return nil
}

func (p *WeekPlanner) find(assignmentID primitive.ObjectID) (day, pos int) {
	for i := range p.days {
		for j, card := range p.days[i] {
			if card.Assignment.ID == assignmentID {
				return i, j
			}
		}
	}
	return -1, -1
}

func (p *WeekPlanner) revert(idx int, correlationID uuid.UUID) {
	cards := p.days[idx]
	for i, card := range cards {
		if card.CorrelationID == correlationID {
			p.days[idx] = append(cards[:i], cards[i+1:]...)
			return
		}
	}
}

func (p *WeekPlanner) confirm(idx int, correlationID uuid.UUID, confirmed domain.Assignment) {
	cards := p.days[idx]
	for i, card := range cards {
		if card.CorrelationID == correlationID {
			cards[i].Assignment = confirmed
			cards[i].Pending = false
			return
		}
	}
}
