package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"eduplay-service/internal/app"
	"eduplay-service/internal/domain"
)

// QuizHandler serves quiz authoring, discovery, and the attempt/submit
// lifecycle. Question payloads never include answer keys; the domain
// model hides CorrectAnswer from JSON.
type QuizHandler struct {
	accounts *app.AccountService
	quizzes  *app.QuizService
	grading  *app.GradingService
}

func NewQuizHandler(accounts *app.AccountService, quizzes *app.QuizService, grading *app.GradingService) *QuizHandler {
	return &QuizHandler{accounts: accounts, quizzes: quizzes, grading: grading}
}

type questionDraftRequest struct {
	Question      string `json:"question" binding:"required"`
	OptionA       string `json:"optionA" binding:"required"`
	OptionB       string `json:"optionB" binding:"required"`
	OptionC       string `json:"optionC" binding:"required"`
	OptionD       string `json:"optionD" binding:"required"`
	CorrectAnswer string `json:"correctAnswer" binding:"required,optionletter"`
	Points        int    `json:"points" binding:"gte=0"`
}

type quizDraftRequest struct {
	Title      string                 `json:"title" binding:"required"`
	Subject    string                 `json:"subject" binding:"required"`
	GradeLevel int                    `json:"gradeLevel" binding:"gradelevel"`
	Questions  []questionDraftRequest `json:"questions" binding:"required,min=1,dive"`
}

type quizSubmissionRequest struct {
	AttemptID int64                     `json:"attemptId" binding:"required"`
	Answers   []domain.AnswerSubmission `json:"answers"`
}

// Create stores a quiz with its questions atomically.
func (h *QuizHandler) Create(c *gin.Context) {
	var req quizDraftRequest
	if !bindJSON(c, &req) {
		return
	}
	draft := app.QuizDraft{
		Title:      req.Title,
		Subject:    req.Subject,
		GradeLevel: req.GradeLevel,
		Questions:  make([]app.QuestionDraft, 0, len(req.Questions)),
	}
	for _, q := range req.Questions {
		draft.Questions = append(draft.Questions, app.QuestionDraft{
			Question:      q.Question,
			OptionA:       q.OptionA,
			OptionB:       q.OptionB,
			OptionC:       q.OptionC,
			OptionD:       q.OptionD,
			CorrectAnswer: q.CorrectAnswer,
			Points:        q.Points,
		})
	}
	quiz, err := h.quizzes.Create(c.Request.Context(), accountID(c), draft)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"quiz": quiz})
}

// ListByTeacher returns the quizzes authored by the calling teacher.
func (h *QuizHandler) ListByTeacher(c *gin.Context) {
	quizzes, err := h.quizzes.ListByTeacher(c.Request.Context(), accountID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quizzes": quizzes})
}

// ListForStudent returns the quizzes visible at the student's grade with
// their attempt state.
func (h *QuizHandler) ListForStudent(c *gin.Context) {
	student, err := h.accounts.Student(c.Request.Context(), accountID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	quizzes, err := h.quizzes.ListForStudent(c.Request.Context(), student.ID, student.Grade)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quizzes": quizzes})
}

// GetForStudent returns one quiz with its questions, sans answer keys.
func (h *QuizHandler) GetForStudent(c *gin.Context) {
	quizID, ok := paramID(c, "id")
	if !ok {
		return
	}
	student, err := h.accounts.Student(c.Request.Context(), accountID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	quiz, questions, err := h.quizzes.GetForStudent(c.Request.Context(), quizID, student.Grade)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quiz": quiz, "questions": questions})
}

// StartAttempt opens an attempt, or returns the existing open one so a
// student can resume. A completed attempt cannot be restarted.
func (h *QuizHandler) StartAttempt(c *gin.Context) {
	quizID, ok := paramID(c, "id")
	if !ok {
		return
	}
	student, err := h.accounts.Student(c.Request.Context(), accountID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	attempt, resumed, err := h.quizzes.StartAttempt(c.Request.Context(), student.ID, student.Grade, quizID)
	if err != nil {
		respondError(c, err)
		return
	}
	status := http.StatusCreated
	if resumed {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{"attempt": attempt, "resumed": resumed})
}

// Submit grades the open attempt and returns the result.
func (h *QuizHandler) Submit(c *gin.Context) {
	quizID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req quizSubmissionRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.grading.Grade(c.Request.Context(), accountID(c), quizID, req.AttemptID, req.Answers)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result})
}
