package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"eduplay-service/internal/app"
)

const defaultSessionLimit = 10

// StudentHandler serves the authenticated student's own views: profile,
// progress, session history, and the dashboard.
type StudentHandler struct {
	students *app.StudentService
	progress *app.ProgressService
	games    *app.GameService
}

func NewStudentHandler(students *app.StudentService, progress *app.ProgressService, games *app.GameService) *StudentHandler {
	return &StudentHandler{students: students, progress: progress, games: games}
}

func (h *StudentHandler) Me(c *gin.Context) {
	student, streak, err := h.students.Profile(c.Request.Context(), accountID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"student": student, "streak": streak})
}

// Progress lists per-topic progress, optionally filtered by subject.
func (h *StudentHandler) Progress(c *gin.Context) {
	rows, err := h.progress.List(c.Request.Context(), accountID(c), c.Query("subject"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"progress": rows})
}

func (h *StudentHandler) Sessions(c *gin.Context) {
	limit := queryInt(c, "limit", defaultSessionLimit)
	sessions, err := h.games.RecentSessions(c.Request.Context(), accountID(c), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

func (h *StudentHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.students.Dashboard(c.Request.Context(), accountID(c), defaultSessionLimit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}
