package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"alcyxob/coaching-app/internal/domain"
	"alcyxob/coaching-app/internal/repository"
	"alcyxob/coaching-app/internal/wire"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DataHandler is the flat CRUD surface the remote repository clients talk to.
// It speaks wire DTOs straight to the repositories; workflow rules live in the
// coach and client handlers, which host shells use instead when they want the
// server to enforce them.
//
// List endpoints deliberately mix response shapes: newer ones return the
// {items, count} envelope, older ones a bare array. Clients must accept both.
type DataHandler struct {
	exerciseRepo   repository.ExerciseRepository
	templateRepo   repository.TemplateRepository
	assignmentRepo repository.AssignmentRepository
	sessionRepo    repository.SessionRepository
	logRepo        repository.ExerciseLogRepository
}

// NewDataHandler creates a new DataHandler.
func NewDataHandler(
	exerciseRepo repository.ExerciseRepository,
	templateRepo repository.TemplateRepository,
	assignmentRepo repository.AssignmentRepository,
	sessionRepo repository.SessionRepository,
	logRepo repository.ExerciseLogRepository,
) *DataHandler {
	return &DataHandler{
		exerciseRepo:   exerciseRepo,
		templateRepo:   templateRepo,
		assignmentRepo: assignmentRepo,
		sessionRepo:    sessionRepo,
		logRepo:        logRepo,
	}
}

func pathID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Invalid %s format", name))
		return primitive.NilObjectID, false
	}
	return id, true
}

func queryID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Query(name))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Invalid or missing %s", name))
		return primitive.NilObjectID, false
	}
	return id, true
}

func writeRepoError(c *gin.Context, err error, op string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		abortWithError(c, http.StatusNotFound, "not found")
	case errors.Is(err, repository.ErrUpdateFailed):
		abortWithError(c, http.StatusConflict, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, fmt.Sprintf("Failed to %s", op))
	}
}

// --- Exercises ---

func (h *DataHandler) CreateExercise(c *gin.Context) {
	var req wire.Exercise
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	exercise, err := wire.ToExercise(req)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := h.exerciseRepo.Create(c.Request.Context(), exercise); err != nil {
		writeRepoError(c, err, "create exercise")
		return
	}
	c.JSON(http.StatusCreated, wire.FromExercise(exercise))
}

func (h *DataHandler) GetExercise(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	exercise, err := h.exerciseRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		writeRepoError(c, err, "load exercise")
		return
	}
	c.JSON(http.StatusOK, wire.FromExercise(exercise))
}

func (h *DataHandler) ListExercises(c *gin.Context) {
	coachID, ok := queryID(c, "coach_id")
	if !ok {
		return
	}
	exercises, err := h.exerciseRepo.GetByCoachID(c.Request.Context(), coachID)
	if err != nil {
		writeRepoError(c, err, "list exercises")
		return
	}
	items := make([]wire.Exercise, 0, len(exercises))
	for i := range exercises {
		items = append(items, wire.FromExercise(&exercises[i]))
	}
	c.JSON(http.StatusOK, wire.List[wire.Exercise]{Items: items, Count: len(items)})
}

func (h *DataHandler) UpdateExercise(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req wire.Exercise
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	exercise, err := wire.ToExercise(req)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	exercise.ID = id
	if err := h.exerciseRepo.Update(c.Request.Context(), exercise); err != nil {
		writeRepoError(c, err, "update exercise")
		return
	}
	c.JSON(http.StatusOK, wire.FromExercise(exercise))
}

func (h *DataHandler) DeleteExercise(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	coachID, ok := queryID(c, "coach_id")
	if !ok {
		return
	}
	if err := h.exerciseRepo.Delete(c.Request.Context(), id, coachID); err != nil {
		writeRepoError(c, err, "delete exercise")
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Templates ---

func (h *DataHandler) CreateTemplate(c *gin.Context) {
	var req wire.Template
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	tmpl, err := wire.ToTemplate(req)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := h.templateRepo.Create(c.Request.Context(), tmpl); err != nil {
		writeRepoError(c, err, "create template")
		return
	}
	c.JSON(http.StatusCreated, wire.FromTemplate(tmpl))
}

func (h *DataHandler) GetTemplate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	tmpl, err := h.templateRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		writeRepoError(c, err, "load template")
		return
	}
	c.JSON(http.StatusOK, wire.FromTemplate(tmpl))
}

func (h *DataHandler) ListTemplates(c *gin.Context) {
	coachID, ok := queryID(c, "coach_id")
	if !ok {
		return
	}
	templates, err := h.templateRepo.GetByCoachID(c.Request.Context(), coachID)
	if err != nil {
		writeRepoError(c, err, "list templates")
		return
	}
	items := make([]wire.Template, 0, len(templates))
	for i := range templates {
		items = append(items, wire.FromTemplate(&templates[i]))
	}
	c.JSON(http.StatusOK, wire.List[wire.Template]{Items: items, Count: len(items)})
}

func (h *DataHandler) UpdateTemplate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req wire.Template
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	tmpl, err := wire.ToTemplate(req)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	tmpl.ID = id
	if err := h.templateRepo.Update(c.Request.Context(), tmpl); err != nil {
		writeRepoError(c, err, "update template")
		return
	}
	c.JSON(http.StatusOK, wire.FromTemplate(tmpl))
}

func (h *DataHandler) DeleteTemplate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	coachID, ok := queryID(c, "coach_id")
	if !ok {
		return
	}
	if err := h.templateRepo.Delete(c.Request.Context(), id, coachID); err != nil {
		writeRepoError(c, err, "delete template")
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Assignments ---

func (h *DataHandler) CreateAssignment(c *gin.Context) {
	var req wire.Assignment
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	assignment, err := wire.ToAssignment(req)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := h.assignmentRepo.Create(c.Request.Context(), assignment); err != nil {
		writeRepoError(c, err, "create assignment")
		return
	}
	c.JSON(http.StatusCreated, wire.FromAssignment(assignment))
}

func (h *DataHandler) GetAssignment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	assignment, err := h.assignmentRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		writeRepoError(c, err, "load assignment")
		return
	}
	c.JSON(http.StatusOK, wire.FromAssignment(assignment))
}

// ListAssignments filters either by workout or by client and date range.
// Responds with a bare array; this endpoint predates the list envelope.
func (h *DataHandler) ListAssignments(c *gin.Context) {
	ctx := c.Request.Context()

	if workoutHex := c.Query("workout_id"); workoutHex != "" {
		workoutID, ok := queryID(c, "workout_id")
		if !ok {
			return
		}
		assignments, err := h.assignmentRepo.GetByWorkoutID(ctx, workoutID)
		if err != nil {
			writeRepoError(c, err, "list assignments")
			return
		}
		c.JSON(http.StatusOK, mapAssignments(assignments))
		return
	}

	clientID, ok := queryID(c, "client_id")
	if !ok {
		return
	}
	from, err := wire.ParseTime(c.Query("from"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid from date")
		return
	}
	to, err := wire.ParseTime(c.Query("to"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid to date")
		return
	}
	if to.IsZero() {
		to = time.Now().UTC().AddDate(0, 0, 7)
	}

	assignments, err := h.assignmentRepo.GetByClientAndDateRange(ctx, clientID, from, to)
	if err != nil {
		writeRepoError(c, err, "list assignments")
		return
	}
	c.JSON(http.StatusOK, mapAssignments(assignments))
}

func (h *DataHandler) UpdateAssignment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req wire.Assignment
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	assignment, err := wire.ToAssignment(req)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	assignment.ID = id
	if err := h.assignmentRepo.Update(c.Request.Context(), assignment); err != nil {
		writeRepoError(c, err, "update assignment")
		return
	}
	c.JSON(http.StatusOK, wire.FromAssignment(assignment))
}

func (h *DataHandler) DeleteAssignment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.assignmentRepo.Delete(c.Request.Context(), id); err != nil {
		writeRepoError(c, err, "delete assignment")
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Sessions ---

func (h *DataHandler) CreateSession(c *gin.Context) {
	var req wire.Session
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	session, err := wire.ToSession(req)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := h.sessionRepo.Create(c.Request.Context(), session); err != nil {
		writeRepoError(c, err, "create session")
		return
	}
	c.JSON(http.StatusCreated, wire.FromSession(session))
}

func (h *DataHandler) GetSession(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	session, err := h.sessionRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		writeRepoError(c, err, "load session")
		return
	}
	c.JSON(http.StatusOK, wire.FromSession(session))
}

func (h *DataHandler) ListSessions(c *gin.Context) {
	assignmentID, ok := queryID(c, "assignment_id")
	if !ok {
		return
	}
	sessions, err := h.sessionRepo.GetByAssignmentID(c.Request.Context(), assignmentID)
	if err != nil {
		writeRepoError(c, err, "list sessions")
		return
	}
	items := make([]wire.Session, 0, len(sessions))
	for i := range sessions {
		items = append(items, wire.FromSession(&sessions[i]))
	}
	c.JSON(http.StatusOK, wire.List[wire.Session]{Items: items, Count: len(items)})
}

// UpdateSession records completion. The repository refuses to touch an
// already-completed session, which keeps the finish write idempotent.
func (h *DataHandler) UpdateSession(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req wire.Session
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	session, err := wire.ToSession(req)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	session.ID = id
	if err := h.sessionRepo.Update(c.Request.Context(), session); err != nil {
		writeRepoError(c, err, "update session")
		return
	}
	c.JSON(http.StatusOK, wire.FromSession(session))
}

// --- Exercise Logs ---

func (h *DataHandler) CreateLog(c *gin.Context) {
	var req wire.ExerciseLog
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	log, err := wire.ToLog(req)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := h.logRepo.Create(c.Request.Context(), log); err != nil {
		writeRepoError(c, err, "create log")
		return
	}
	c.JSON(http.StatusCreated, wire.FromLog(log))
}

// ListLogs returns a session's per-set records as a bare array, oldest first.
func (h *DataHandler) ListLogs(c *gin.Context) {
	sessionID, ok := queryID(c, "session_id")
	if !ok {
		return
	}
	logs, err := h.logRepo.GetBySessionID(c.Request.Context(), sessionID)
	if err != nil {
		writeRepoError(c, err, "list logs")
		return
	}
	items := make([]wire.ExerciseLog, 0, len(logs))
	for i := range logs {
		items = append(items, wire.FromLog(&logs[i]))
	}
	c.JSON(http.StatusOK, items)
}

func mapAssignments(assignments []domain.Assignment) []wire.Assignment {
	items := make([]wire.Assignment, 0, len(assignments))
	for i := range assignments {
		items = append(items, wire.FromAssignment(&assignments[i]))
	}
	return items
}
