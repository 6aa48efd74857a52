package api

import (
	"net/http"

	"alcyxob/coaching-app/internal/domain"
	"alcyxob/coaching-app/internal/repository"
	"alcyxob/coaching-app/internal/service"

	"github.com/gin-gonic/gin"
)

// Repositories bundles the stores the data endpoints serve.
type Repositories struct {
	Exercises   repository.ExerciseRepository
	Templates   repository.TemplateRepository
	Assignments repository.AssignmentRepository
	Sessions    repository.SessionRepository
	Logs        repository.ExerciseLogRepository
}

// Services bundles the workflow services behind the coach and client routes.
type Services struct {
	Auth      service.AuthService
	Coach     service.CoachService
	Scheduler service.SchedulerService
	Templates service.TemplateService
	Exercises service.ExerciseService
}

func SetupRoutes(router *gin.Engine, jwtSecret string, services Services, repos Repositories) {
	authHandler := NewAuthHandler(services.Auth)
	coachHandler := NewCoachHandler(services.Coach, services.Scheduler, services.Templates, services.Exercises)
	clientHandler := NewClientHandler(services.Scheduler)
	dataHandler := NewDataHandler(repos.Exercises, repos.Templates, repos.Assignments, repos.Sessions, repos.Logs)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			userIDStr, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			role, _ := getUserRoleFromContext(c)
			c.JSON(http.StatusOK, gin.H{"userId": userIDStr, "role": role})
		})

		// --- Data endpoints (remote repository clients) ---
		// Flat CRUD over the stores. Host shells that embed the scheduling and
		// session logic locally read and write through these.
		{
			protected.POST("/exercises", dataHandler.CreateExercise)
			protected.GET("/exercises", dataHandler.ListExercises)
			protected.GET("/exercises/:id", dataHandler.GetExercise)
			protected.PUT("/exercises/:id", dataHandler.UpdateExercise)
			protected.DELETE("/exercises/:id", dataHandler.DeleteExercise)

			protected.POST("/templates", dataHandler.CreateTemplate)
			protected.GET("/templates", dataHandler.ListTemplates)
			protected.GET("/templates/:id", dataHandler.GetTemplate)
			protected.PUT("/templates/:id", dataHandler.UpdateTemplate)
			protected.DELETE("/templates/:id", dataHandler.DeleteTemplate)

			protected.POST("/assignments", dataHandler.CreateAssignment)
			protected.GET("/assignments", dataHandler.ListAssignments)
			protected.GET("/assignments/:id", dataHandler.GetAssignment)
			protected.PUT("/assignments/:id", dataHandler.UpdateAssignment)
			protected.DELETE("/assignments/:id", dataHandler.DeleteAssignment)

			protected.POST("/sessions", dataHandler.CreateSession)
			protected.GET("/sessions", dataHandler.ListSessions)
			protected.GET("/sessions/:id", dataHandler.GetSession)
			protected.PUT("/sessions/:id", dataHandler.UpdateSession)

			protected.POST("/logs", dataHandler.CreateLog)
			protected.GET("/logs", dataHandler.ListLogs)
		}

		// --- Coach workflow ---
		coachGroup := protected.Group("/coach")
		coachGroup.Use(RoleMiddleware(domain.RoleCoach))
		{
			coachGroup.POST("/clients", coachHandler.AddClientByEmail)
			coachGroup.GET("/clients", coachHandler.GetManagedClients)

			coachGroup.GET("/clients/:clientId/schedule", coachHandler.GetClientSchedule)
			coachGroup.POST("/schedule", coachHandler.PlaceAssignment)
			coachGroup.DELETE("/schedule/:assignmentId", coachHandler.RemoveAssignment)
			coachGroup.POST("/assignments/:assignmentId/personalize", coachHandler.PersonalizeAssignment)

			coachGroup.POST("/templates", coachHandler.CreateTemplate)
			coachGroup.GET("/templates", coachHandler.GetTemplates)
			coachGroup.PUT("/templates/:templateId/entries", coachHandler.UpdateTemplateEntries)
			coachGroup.DELETE("/templates/:templateId", coachHandler.DeleteTemplate)

			coachGroup.POST("/exercises", coachHandler.CreateExercise)
			coachGroup.GET("/exercises", coachHandler.GetExercises)
			coachGroup.DELETE("/exercises/:exerciseId", coachHandler.DeleteExercise)
		}

		// --- Client workflow ---
		clientGroup := protected.Group("/client")
		clientGroup.Use(RoleMiddleware(domain.RoleClient))
		{
			clientGroup.GET("/schedule", clientHandler.GetMySchedule)
			clientGroup.POST("/assignments/:assignmentId/status", clientHandler.AdvanceAssignmentStatus)
		}
	}
}
