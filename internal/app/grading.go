package app

import (
	"context"
	"time"

	"eduplay-service/internal/domain"
	"eduplay-service/internal/scoring"
)

// GradingStore is the slice of persistence the grader needs.
type GradingStore interface {
	AttemptByID(ctx context.Context, id int64) (domain.QuizAttempt, error)
	GradeAttempt(ctx context.Context, attempt *domain.QuizAttempt, answers []*domain.QuizAnswer) error
}

// Catalog resolves games and quiz content, usually through a cache in
// front of the store.
type Catalog interface {
	GameByName(ctx context.Context, name string) (domain.Game, error)
	QuizByID(ctx context.Context, id int64) (domain.Quiz, error)
	AnswerKeys(ctx context.Context, quizID int64) ([]domain.AnswerKey, error)
}

// GradingService scores submitted quiz attempts against the stored answer
// keys and finalizes the attempt.
type GradingService struct {
	store    GradingStore
	catalog  Catalog
	activity *ActivityService
	now      func() time.Time
}

func NewGradingService(store GradingStore, catalog Catalog, activity *ActivityService) *GradingService {
	return NewGradingServiceWithClock(store, catalog, activity, time.Now)
}

// NewGradingServiceWithClock is test-only for deterministic timestamps.
func NewGradingServiceWithClock(store GradingStore, catalog Catalog, activity *ActivityService, now func() time.Time) *GradingService {
	return &GradingService{store: store, catalog: catalog, activity: activity, now: now}
}

// Grade scores the submitted answers for the attempt and marks it
// terminal. Answers naming a question the quiz does not have are skipped.
// Option letters match case-sensitively. Points accrue only for correct
// answers, but every matched answer is recorded. The reported percentage
// measures the score against a flat 10 points per submitted answer no
// matter what the questions are actually worth, so it can exceed 100.
// A terminal attempt is rejected before anything is written. On success
// the progress/streak/leaderboard chain is scheduled with the quiz's
// subject under the fixed topic "Quiz".
func (s *GradingService) Grade(ctx context.Context, studentID, quizID, attemptID int64, answers []domain.AnswerSubmission) (domain.QuizResult, error) {
	attempt, err := s.store.AttemptByID(ctx, attemptID)
	if err != nil {
		return domain.QuizResult{}, err
	}
	// An attempt belonging to another student or quiz does not exist from
	// this caller's point of view.
	if attempt.StudentID != studentID || attempt.QuizID != quizID {
		return domain.QuizResult{}, domain.ErrAttemptNotFound
	}
	if attempt.Terminal() {
		return domain.QuizResult{}, domain.ErrAttemptCompleted
	}

	quiz, err := s.catalog.QuizByID(ctx, quizID)
	if err != nil {
		return domain.QuizResult{}, err
	}
	keys, err := s.catalog.AnswerKeys(ctx, quizID)
	if err != nil {
		return domain.QuizResult{}, err
	}
	keyByQuestion := make(map[int64]domain.AnswerKey, len(keys))
	for _, k := range keys {
		keyByQuestion[k.QuestionID] = k
	}

	var (
		rows         []*domain.QuizAnswer
		totalScore   int
		correctCount int
	)
	for _, a := range answers {
		key, ok := keyByQuestion[a.QuestionID]
		if !ok {
			continue
		}
		correct := a.SelectedAnswer == key.Correct
		if correct {
			correctCount++
			totalScore += key.Points
		}
		rows = append(rows, &domain.QuizAnswer{
			AttemptID:      attempt.ID,
			QuestionID:     a.QuestionID,
			SelectedAnswer: a.SelectedAnswer,
			IsCorrect:      correct,
		})
	}

	completedAt := s.now()
	attempt.CompletedAt = &completedAt
	attempt.TimeTaken = int(completedAt.Sub(attempt.StartedAt).Seconds())
	attempt.Score = totalScore
	attempt.CorrectAnswers = correctCount
	if err := s.store.GradeAttempt(ctx, &attempt, rows); err != nil {
		return domain.QuizResult{}, err
	}

	percentage := scoring.QuizPercentage(totalScore, len(answers))
	s.activity.RecordQuizActivity(studentID, quiz.Subject, percentage)

	return domain.QuizResult{
		Score:            totalScore,
		CorrectAnswers:   correctCount,
		TotalQuestions:   attempt.TotalQuestions,
		Percentage:       percentage,
		TimeTakenSeconds: attempt.TimeTaken,
	}, nil
}
