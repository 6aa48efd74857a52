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

// ClientHandler serves the client-side workflow: the weekly schedule view and
// assignment status transitions. Session and log writes go through the data
// endpoints; the session runtime owns that traffic.
type ClientHandler struct {
	schedulerService service.SchedulerService
}

// NewClientHandler creates a new ClientHandler.
func NewClientHandler(schedulerService service.SchedulerService) *ClientHandler {
	return &ClientHandler{schedulerService: schedulerService}
}

// GetMySchedule renders the authenticated client's week.
func (h *ClientHandler) GetMySchedule(c *gin.Context) {
	clientID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify client")
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

// AdvanceAssignmentStatus applies a forward-only status transition, e.g.
// pending to active when a workout starts.
func (h *ClientHandler) AdvanceAssignmentStatus(c *gin.Context) {
	clientID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify client")
		return
	}

	assignmentID, err := primitive.ObjectIDFromHex(c.Param("assignmentId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid assignment ID format")
		return
	}

	var req AdvanceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	// A client may only move their own assignments.
	existing, err := h.schedulerService.GetAssignment(c.Request.Context(), assignmentID)
	if err != nil {
		if errors.Is(err, service.ErrAssignmentNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to load assignment")
		return
	}
	if existing.ClientID != clientID {
		abortWithError(c, http.StatusForbidden, "Assignment belongs to another client")
		return
	}

	assignment, err := h.schedulerService.AdvanceStatus(c.Request.Context(), assignmentID, domain.AssignmentStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAssignmentNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrInvalidStatus):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrStatusRegression):
			abortWithError(c, http.StatusConflict, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to advance status")
		}
		return
	}

	c.JSON(http.StatusOK, wire.FromAssignment(assignment))
}
