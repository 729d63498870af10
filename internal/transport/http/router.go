// Package http wires the application services to their REST and websocket
// surfaces with gin.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"eduplay-service/internal/domain"
	"eduplay-service/internal/platform/logger"
)

// RouterConfig carries everything NewRouter needs. All handlers are
// required; Log may be nil to skip request logging (tests).
type RouterConfig struct {
	Log         *logger.Logger
	Auth        *AuthMiddleware
	Accounts    *AuthHandler
	Games       *GameHandler
	Students    *StudentHandler
	Leaderboard *LeaderboardHandler
	Quizzes     *QuizHandler
	Assignments *AssignmentHandler
	Feed        *FeedHandler
}

// NewRouter builds the full route tree: public auth endpoints, the
// student and teacher API groups, and the live leaderboard feed.
func NewRouter(cfg RouterConfig) *gin.Engine {
	registerValidators()

	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Log != nil {
		r.Use(RequestLogger(cfg.Log))
	}
	r.Use(CORS())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	api.POST("/auth/students/register", cfg.Accounts.RegisterStudent)
	api.POST("/auth/students/login", cfg.Accounts.LoginStudent)
	api.POST("/auth/teachers/register", cfg.Accounts.RegisterTeacher)
	api.POST("/auth/teachers/login", cfg.Accounts.LoginTeacher)

	student := api.Group("/")
	student.Use(cfg.Auth.Require(domain.KindStudent))
	{
		student.GET("/games", cfg.Games.List)
		student.POST("/games/results", cfg.Games.SubmitResult)
		student.GET("/games/:id/rankings", cfg.Games.Rankings)

		student.GET("/students/me", cfg.Students.Me)
		student.GET("/students/me/progress", cfg.Students.Progress)
		student.GET("/students/me/sessions", cfg.Students.Sessions)
		student.GET("/students/me/dashboard", cfg.Students.Dashboard)

		student.GET("/leaderboard", cfg.Leaderboard.Top)
		student.GET("/leaderboard/me", cfg.Leaderboard.Me)

		student.GET("/quizzes", cfg.Quizzes.ListForStudent)
		student.GET("/quizzes/:id", cfg.Quizzes.GetForStudent)
		student.POST("/quizzes/:id/attempts", cfg.Quizzes.StartAttempt)
		student.POST("/quizzes/:id/submit", cfg.Quizzes.Submit)

		student.GET("/assignments", cfg.Assignments.ListForStudent)
		student.POST("/assignments/:id/complete", cfg.Assignments.Complete)
	}

	teacher := api.Group("/")
	teacher.Use(cfg.Auth.Require(domain.KindTeacher))
	{
		teacher.POST("/quizzes", cfg.Quizzes.Create)
		teacher.GET("/teachers/me/quizzes", cfg.Quizzes.ListByTeacher)
		teacher.POST("/assignments", cfg.Assignments.Create)
	}

	r.GET("/ws/leaderboard", cfg.Feed.ServeFeed)

	return r
}
