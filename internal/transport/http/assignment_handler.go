package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"eduplay-service/internal/app"
)

// AssignmentHandler serves assignment authoring, listing, and completion.
type AssignmentHandler struct {
	accounts    *app.AccountService
	assignments *app.AssignmentService
}

func NewAssignmentHandler(accounts *app.AccountService, assignments *app.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{accounts: accounts, assignments: assignments}
}

type assignmentDraftRequest struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	Subject     string    `json:"subject" binding:"required"`
	GradeLevel  int       `json:"gradeLevel" binding:"gradelevel"`
	DueDate     time.Time `json:"dueDate"`
}

func (h *AssignmentHandler) Create(c *gin.Context) {
	var req assignmentDraftRequest
	if !bindJSON(c, &req) {
		return
	}
	assignment, err := h.assignments.Create(c.Request.Context(), accountID(c), app.AssignmentDraft{
		Title:       req.Title,
		Description: req.Description,
		Subject:     req.Subject,
		GradeLevel:  req.GradeLevel,
		DueDate:     req.DueDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"assignment": assignment})
}

// ListForStudent returns the assignments visible at the student's grade
// with completion state.
func (h *AssignmentHandler) ListForStudent(c *gin.Context) {
	student, err := h.accounts.Student(c.Request.Context(), accountID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	assignments, err := h.assignments.ListForStudent(c.Request.Context(), student.ID, student.Grade)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assignments": assignments})
}

// Complete marks an assignment done. Completing twice is not an error;
// the second call answers 200 instead of 201.
func (h *AssignmentHandler) Complete(c *gin.Context) {
	assignmentID, ok := paramID(c, "id")
	if !ok {
		return
	}
	student, err := h.accounts.Student(c.Request.Context(), accountID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	already, err := h.assignments.Complete(c.Request.Context(), student.ID, student.Grade, assignmentID)
	if err != nil {
		respondError(c, err)
		return
	}
	status := http.StatusCreated
	if already {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{"completed": true, "alreadyCompleted": already})
}
