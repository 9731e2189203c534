package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/kotoba-lab/learning-service/internal/auth"
	"github.com/kotoba-lab/learning-service/internal/services"
	"github.com/kotoba-lab/learning-service/internal/utils"
	"github.com/kotoba-lab/learning-service/internal/validator"
)

type HandlerManager struct {
	lessonHandler   *LessonHandler
	exerciseHandler *ExerciseHandler
	miniTestHandler *MiniTestHandler
	deckHandler     *DeckHandler
	userHandler     *UserHandler
	verifier        *auth.Verifier
}

func NewHandlerManager(
	serviceManager *services.ServiceManager,
	verifier *auth.Verifier,
	v *validator.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		lessonHandler:   NewLessonHandler(serviceManager.Lesson, serviceManager.ImportExport, v, logger),
		exerciseHandler: NewExerciseHandler(serviceManager.Exercise, v, logger),
		miniTestHandler: NewMiniTestHandler(serviceManager.MiniTest, serviceManager.ImportExport, v, logger),
		deckHandler:     NewDeckHandler(serviceManager.Deck, logger),
		userHandler:     NewUserHandler(serviceManager.User, v, logger),
		verifier:        verifier,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "learning-service",
		})
	})

	v1 := router.Group("/api/v1")
	v1.Use(hm.verifier.Middleware())
	{
		// Profile routes
		v1.GET("/me", hm.userHandler.GetMe)
		v1.PUT("/me", hm.userHandler.UpdateMe)
		v1.GET("/me/progress", hm.exerciseHandler.GetProgress)

		// Lesson routes
		lessons := v1.Group("/lessons")
		{
			lessons.GET("", hm.lessonHandler.ListLessons)
			lessons.GET("/grouped", hm.lessonHandler.ListLessonsGrouped)
			lessons.GET("/:id", hm.lessonHandler.GetLesson)

			// Learning flows
			lessons.POST("/:id/deck", hm.deckHandler.BuildDeck)
			lessons.POST("/:id/exercise", hm.exerciseHandler.SubmitExercise)
			lessons.POST("/:id/mini-test", hm.miniTestHandler.SubmitMiniTest)
		}

		// Deck hand-off
		v1.GET("/decks/:key", hm.deckHandler.GetDeck)

		// Submission routes
		submissions := v1.Group("/submissions")
		{
			submissions.GET("", hm.exerciseHandler.ListSubmissions)
			submissions.GET("/:id", hm.exerciseHandler.GetSubmission)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(auth.RequireAdmin())
		{
			admin.POST("/lessons", hm.lessonHandler.CreateLesson)
			admin.PUT("/lessons/:id", hm.lessonHandler.UpdateLesson)
			admin.DELETE("/lessons/:id", hm.lessonHandler.DeleteLesson)
			admin.GET("/lessons/:id/stats", hm.lessonHandler.GetLessonStats)
			admin.POST("/lessons/:id/words", hm.lessonHandler.AddWord)
			admin.POST("/lessons/:id/questions", hm.lessonHandler.AddQuestion)
			admin.POST("/lessons/:id/words/import", hm.lessonHandler.ImportWords)
			admin.POST("/lessons/:id/questions/import", hm.lessonHandler.ImportQuestions)

			admin.GET("/reviews/pending", hm.miniTestHandler.PendingReviews)
			admin.POST("/submissions/:id/review", hm.miniTestHandler.ReviewSubmission)
			admin.GET("/submissions/export", hm.miniTestHandler.ExportSubmissions)

			admin.GET("/users", hm.userHandler.ListUsers)
			admin.PUT("/users/:id/status", hm.userHandler.UpdateUserStatus)
		}
	}
}
