package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"alcyxob/coaching-app/internal/domain"
	"alcyxob/coaching-app/internal/service"
	"alcyxob/coaching-app/internal/wire"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CoachHandler serves the coach-side workflow: the client roster, the weekly
// schedule, template management and assignment personalization.
type CoachHandler struct {
	coachService     service.CoachService
	schedulerService service.SchedulerService
	templateService  service.TemplateService
	exerciseService  service.ExerciseService
}

// NewCoachHandler creates a new CoachHandler.
func NewCoachHandler(
	coachService service.CoachService,
	schedulerService service.SchedulerService,
	templateService service.TemplateService,
	exerciseService service.ExerciseService,
) *CoachHandler {
	return &CoachHandler{
		coachService:     coachService,
		schedulerService: schedulerService,
		templateService:  templateService,
		exerciseService:  exerciseService,
	}
}

// --- Request/Response Structs ---

type AddClientRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type PlaceAssignmentRequest struct {
	WorkoutID string `json:"workout_id" binding:"required"`
	ClientID  string `json:"client_id" binding:"required"`
	DueDate   string `json:"due_date" binding:"required"`
}

type AdvanceStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type EntriesRequest struct {
	Entries []wire.ExerciseEntry `json:"entries" binding:"required"`
}

type CreateTemplateRequest struct {
	Name        string               `json:"name" binding:"required"`
	Description string               `json:"description"`
	Entries     []wire.ExerciseEntry `json:"entries" binding:"required"`
}

type CreateExerciseRequest struct {
	Name         string   `json:"name" binding:"required"`
	Description  string   `json:"description"`
	Category     string   `json:"category" binding:"required"`
	MuscleGroups []string `json:"muscle_groups"`
}

// WeekDayResponse is one rendered calendar day.
type WeekDayResponse struct {
	Date        string            `json:"date"`
	Assignments []wire.Assignment `json:"assignments"`
}

// WeekResponse is the 7-day calendar, Monday first.
type WeekResponse struct {
	WeekStart string            `json:"week_start"`
	Days      []WeekDayResponse `json:"days"`
}

func mapWeekToResponse(weekStart time.Time, days []service.WeekDay) WeekResponse {
	resp := WeekResponse{
		WeekStart: weekStart.Format("2006-01-02"),
		Days:      make([]WeekDayResponse, 0, len(days)),
	}
	for _, day := range days {
		assignments := make([]wire.Assignment, 0, len(day.Assignments))
		for i := range day.Assignments {
			assignments = append(assignments, wire.FromAssignment(&day.Assignments[i]))
		}
		resp.Days = append(resp.Days, WeekDayResponse{
			Date:        day.Date.Format("2006-01-02"),
			Assignments: assignments,
		})
	}
	return resp
}

// --- Client Roster ---

// AddClientByEmail links an existing client account to the coach's roster.
func (h *CoachHandler) AddClientByEmail(c *gin.Context) {
	coachID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify coach")
		return
	}

	var req AddClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	client, err := h.coachService.AddClientByEmail(c.Request.Context(), coachID, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrClientNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrClientNotRole), errors.Is(err, service.ErrClientAlreadyAssigned):
			abortWithError(c, http.StatusConflict, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to add client")
		}
		return
	}

	c.JSON(http.StatusOK, MapUserToResponse(client))
}

// GetManagedClients lists the coach's clients.
func (h *CoachHandler) GetManagedClients(c *gin.Context) {
	coachID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify coach")
		return
	}

	clients, err := h.coachService.GetManagedClients(c.Request.Context(), coachID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list clients")
		return
	}

	resp := make([]UserResponse, 0, len(clients))
	for i := range clients {
		resp = append(resp, MapUserToResponse(&clients[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// --- Weekly Schedule ---

// GetClientSchedule renders a client's week. The week_of query selects which
// week; any date inside the week works, defaulting to today.
func (h *CoachHandler) GetClientSchedule(c *gin.Context) {
	clientID, err := primitive.ObjectIDFromHex(c.Param("clientId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid client ID format")
		return
	}

	ref := time.Now().UTC()
	if weekOf := c.Query("week_of"); weekOf != "" {
		ref, err = wire.ParseTime(weekOf)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid week_of date")
			return
		}
	}

	days, err := h.schedulerService.ListWeek(c.Request.Context(), clientID, ref)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load schedule")
		return
	}

	c.JSON(http.StatusOK, mapWeekToResponse(service.WeekStart(ref), days))
}

// PlaceAssignment drops a template onto a calendar day.
func (h *CoachHandler) PlaceAssignment(c *gin.Context) {
	coachID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify coach")
		return
	}

	var req PlaceAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	workoutID, err := wire.ParseID(req.WorkoutID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid workout ID format")
		return
	}
	clientID, err := wire.ParseID(req.ClientID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid client ID format")
		return
	}
	dueDate, err := wire.ParseTime(req.DueDate)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid due date")
		return
	}

	assignment, err := h.schedulerService.PlaceAssignment(c.Request.Context(), coachID, workoutID, clientID, dueDate)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTemplateNotFound), errors.Is(err, service.ErrClientNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrClientNotRole):
			abortWithError(c, http.StatusConflict, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to place assignment")
		}
		return
	}

	c.JSON(http.StatusCreated, wire.FromAssignment(assignment))
}

// RemoveAssignment deletes a scheduled assignment; the template survives.
func (h *CoachHandler) RemoveAssignment(c *gin.Context) {
	assignmentID, err := primitive.ObjectIDFromHex(c.Param("assignmentId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid assignment ID format")
		return
	}

	if err := h.schedulerService.RemoveAssignment(c.Request.Context(), assignmentID); err != nil {
		if errors.Is(err, service.ErrAssignmentNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to remove assignment")
		return
	}

	c.Status(http.StatusNoContent)
}

// PersonalizeAssignment clones the assignment's template with the edited
// exercise list and re-points the assignment at the clone.
func (h *CoachHandler) PersonalizeAssignment(c *gin.Context) {
	coachID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify coach")
		return
	}

	assignmentID, err := primitive.ObjectIDFromHex(c.Param("assignmentId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid assignment ID format")
		return
	}

	var req EntriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	entries, err := wire.ToEntries(req.Entries)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	clone, err := h.templateService.PersonalizeAssignment(c.Request.Context(), coachID, assignmentID, entries)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAssignmentNotFound), errors.Is(err, service.ErrTemplateNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrTemplateAccessDenied):
			abortWithError(c, http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrEmptyExerciseList),
			errors.Is(err, domain.ErrEntryMissingParams),
			errors.Is(err, domain.ErrEntryWrongParams),
			errors.Is(err, domain.ErrEntryNegativeParams),
			errors.Is(err, domain.ErrEntryBadCategory):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to personalize assignment")
		}
		return
	}

	c.JSON(http.StatusCreated, wire.FromTemplate(clone))
}

// --- Template Management ---

// CreateTemplate creates a reusable workout template.
func (h *CoachHandler) CreateTemplate(c *gin.Context) {
	coachID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify coach")
		return
	}

	var req CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	entries, err := wire.ToEntries(req.Entries)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	tmpl, err := h.templateService.CreateTemplate(c.Request.Context(), coachID, req.Name, req.Description, entries)
	if err != nil {
		if isEntryValidationError(err) {
			abortWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to create template")
		return
	}

	c.JSON(http.StatusCreated, wire.FromTemplate(tmpl))
}

// GetTemplates lists the coach's templates.
func (h *CoachHandler) GetTemplates(c *gin.Context) {
	coachID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify coach")
		return
	}

	templates, err := h.templateService.GetTemplatesByCoach(c.Request.Context(), coachID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list templates")
		return
	}

	items := make([]wire.Template, 0, len(templates))
	for i := range templates {
		items = append(items, wire.FromTemplate(&templates[i]))
	}
	c.JSON(http.StatusOK, wire.List[wire.Template]{Items: items, Count: len(items)})
}

// UpdateTemplateEntries replaces the exercise list of a shared template.
func (h *CoachHandler) UpdateTemplateEntries(c *gin.Context) {
	coachID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify coach")
		return
	}

	templateID, err := primitive.ObjectIDFromHex(c.Param("templateId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid template ID format")
		return
	}

	var req EntriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	entries, err := wire.ToEntries(req.Entries)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	tmpl, err := h.templateService.UpdateEntries(c.Request.Context(), coachID, templateID, entries)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTemplateNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrTemplateAccessDenied):
			abortWithError(c, http.StatusForbidden, err.Error())
		default:
			if isEntryValidationError(err) {
				abortWithError(c, http.StatusBadRequest, err.Error())
				return
			}
			abortWithError(c, http.StatusInternalServerError, "Failed to update template")
		}
		return
	}

	c.JSON(http.StatusOK, wire.FromTemplate(tmpl))
}

// DeleteTemplate removes a template and its embedded entries.
func (h *CoachHandler) DeleteTemplate(c *gin.Context) {
	coachID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify coach")
		return
	}

	templateID, err := primitive.ObjectIDFromHex(c.Param("templateId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid template ID format")
		return
	}

	if err := h.templateService.DeleteTemplate(c.Request.Context(), coachID, templateID); err != nil {
		if errors.Is(err, service.ErrTemplateNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to delete template")
		return
	}

	c.Status(http.StatusNoContent)
}

// --- Exercise Catalog ---

// CreateExercise adds a catalog entry.
func (h *CoachHandler) CreateExercise(c *gin.Context) {
	coachID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify coach")
		return
	}

	var req CreateExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	exercise, err := h.exerciseService.CreateExercise(
		c.Request.Context(), coachID, req.Name, req.Description,
		domain.ExerciseCategory(req.Category), req.MuscleGroups,
	)
	if err != nil {
		if errors.Is(err, service.ErrValidationFailed) {
			abortWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to create exercise")
		return
	}

	c.JSON(http.StatusCreated, wire.FromExercise(exercise))
}

// GetExercises lists the coach's catalog.
func (h *CoachHandler) GetExercises(c *gin.Context) {
	coachID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify coach")
		return
	}

	exercises, err := h.exerciseService.GetExercisesByCoach(c.Request.Context(), coachID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list exercises")
		return
	}

	items := make([]wire.Exercise, 0, len(exercises))
	for i := range exercises {
		items = append(items, wire.FromExercise(&exercises[i]))
	}
	c.JSON(http.StatusOK, wire.List[wire.Exercise]{Items: items, Count: len(items)})
}

// DeleteExercise removes a catalog entry owned by the coach.
func (h *CoachHandler) DeleteExercise(c *gin.Context) {
	coachID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify coach")
		return
	}

	exerciseID, err := primitive.ObjectIDFromHex(c.Param("exerciseId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exercise ID format")
		return
	}

	if err := h.exerciseService.DeleteExercise(c.Request.Context(), coachID, exerciseID); err != nil {
		if errors.Is(err, service.ErrExerciseNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to delete exercise")
		return
	}

	c.Status(http.StatusNoContent)
}

func isEntryValidationError(err error) bool {
	return errors.Is(err, service.ErrEmptyExerciseList) ||
		errors.Is(err, domain.ErrEntryMissingParams) ||
		errors.Is(err, domain.ErrEntryWrongParams) ||
		errors.Is(err, domain.ErrEntryNegativeParams) ||
		errors.Is(err, domain.ErrEntryBadCategory)
}
