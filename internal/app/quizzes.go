package app

import (
	"context"
	"errors"
	"time"

	"eduplay-service/internal/domain"
)

// QuizStore is the slice of persistence the quiz flows need.
type QuizStore interface {
	CreateQuiz(ctx context.Context, quiz *domain.Quiz, questions []*domain.QuizQuestion) error
	ListQuizzesForGrade(ctx context.Context, grade int) ([]domain.Quiz, error)
	ListQuizzesByTeacher(ctx context.Context, teacherID int64) ([]domain.Quiz, error)
	QuestionsFor(ctx context.Context, quizID int64) ([]domain.QuizQuestion, error)
	AttemptFor(ctx context.Context, studentID, quizID int64) (domain.QuizAttempt, error)
	AttemptsForStudent(ctx context.Context, studentID int64) (map[int64]domain.QuizAttempt, error)
	CreateAttempt(ctx context.Context, attempt *domain.QuizAttempt) error
}

// QuizDraft is the input for authoring a quiz.
type QuizDraft struct {
	Title      string
	Subject    string
	GradeLevel int
	Questions  []QuestionDraft
}

// QuestionDraft is one authored question.
type QuestionDraft struct {
	Question      string
	OptionA       string
	OptionB       string
	OptionC       string
	OptionD       string
	CorrectAnswer string
	Points        int
}

// QuizOverview pairs a quiz with the student's attempt, when one exists.
type QuizOverview struct {
	Quiz    domain.Quiz         `json:"quiz"`
	Attempt *domain.QuizAttempt `json:"attempt,omitempty"`
}

// QuizService covers quiz authoring and the attempt lifecycle up to
// submission; grading itself lives in GradingService.
type QuizService struct {
	store   QuizStore
	catalog Catalog
	now     func() time.Time
}

func NewQuizService(store QuizStore, catalog Catalog) *QuizService {
	return &QuizService{store: store, catalog: catalog, now: time.Now}
}

// Create stores the quiz and its questions as one unit: either everything
// commits or nothing does. The quiz's total question count and maximum
// score are derived from the questions here.
func (s *QuizService) Create(ctx context.Context, teacherID int64, draft QuizDraft) (domain.Quiz, error) {
	maxScore := 0
	questions := make([]*domain.QuizQuestion, 0, len(draft.Questions))
	for _, q := range draft.Questions {
		points := q.Points
		if points == 0 {
			points = 10
		}
		maxScore += points
		questions = append(questions, &domain.QuizQuestion{
			Question:      q.Question,
			OptionA:       q.OptionA,
			OptionB:       q.OptionB,
			OptionC:       q.OptionC,
			OptionD:       q.OptionD,
			CorrectAnswer: q.CorrectAnswer,
			Points:        points,
		})
	}
	quiz := domain.Quiz{
		TeacherID:      teacherID,
		Title:          draft.Title,
		Subject:        draft.Subject,
		GradeLevel:     draft.GradeLevel,
		TotalQuestions: len(questions),
		MaxScore:       maxScore,
		CreatedAt:      s.now(),
	}
	if err := s.store.CreateQuiz(ctx, &quiz, questions); err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

// ListForStudent returns the quizzes visible to the student's grade, each
// with the student's attempt attached when they have one.
func (s *QuizService) ListForStudent(ctx context.Context, studentID int64, grade int) ([]QuizOverview, error) {
	quizzes, err := s.store.ListQuizzesForGrade(ctx, grade)
	if err != nil {
		return nil, err
	}
	attempts, err := s.store.AttemptsForStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	overviews := make([]QuizOverview, 0, len(quizzes))
	for _, quiz := range quizzes {
		overview := QuizOverview{Quiz: quiz}
		if attempt, ok := attempts[quiz.ID]; ok {
			a := attempt
			overview.Attempt = &a
		}
		overviews = append(overviews, overview)
	}
	return overviews, nil
}

// ListByTeacher returns the quizzes a teacher has authored.
func (s *QuizService) ListByTeacher(ctx context.Context, teacherID int64) ([]domain.Quiz, error) {
	return s.store.ListQuizzesByTeacher(ctx, teacherID)
}

// GetForStudent returns a visible quiz with its questions. The questions
// keep their answer keys out of the serialized form, so the rows can go to
// the client as-is. A quiz outside the student's grade does not exist for
// them.
func (s *QuizService) GetForStudent(ctx context.Context, quizID int64, grade int) (domain.Quiz, []domain.QuizQuestion, error) {
	quiz, err := s.catalog.QuizByID(ctx, quizID)
	if err != nil {
		return domain.Quiz{}, nil, err
	}
	if !quiz.VisibleTo(grade) {
		return domain.Quiz{}, nil, domain.ErrQuizNotFound
	}
	questions, err := s.store.QuestionsFor(ctx, quizID)
	if err != nil {
		return domain.Quiz{}, nil, err
	}
	return quiz, questions, nil
}

// StartAttempt opens the student's attempt at a quiz, or resumes the open
// one. Each student gets a single attempt per quiz: a terminal attempt
// cannot be restarted.
func (s *QuizService) StartAttempt(ctx context.Context, studentID int64, grade int, quizID int64) (attempt domain.QuizAttempt, resumed bool, err error) {
	quiz, err := s.catalog.QuizByID(ctx, quizID)
	if err != nil {
		return domain.QuizAttempt{}, false, err
	}
	if !quiz.VisibleTo(grade) {
		return domain.QuizAttempt{}, false, domain.ErrQuizNotFound
	}

	existing, err := s.store.AttemptFor(ctx, studentID, quizID)
	switch {
	case err == nil:
		if existing.Terminal() {
			return domain.QuizAttempt{}, false, domain.ErrAttemptCompleted
		}
		return existing, true, nil
	case errors.Is(err, domain.ErrAttemptNotFound):
		// first attempt, fall through to create
	default:
		return domain.QuizAttempt{}, false, err
	}

	attempt = domain.QuizAttempt{
		StudentID:      studentID,
		QuizID:         quizID,
		StartedAt:      s.now(),
		TotalQuestions: quiz.TotalQuestions,
	}
	if err := s.store.CreateAttempt(ctx, &attempt); err != nil {
		return domain.QuizAttempt{}, false, err
	}
	return attempt, false, nil
}
