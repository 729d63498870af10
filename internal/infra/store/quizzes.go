package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"eduplay-service/internal/domain"
)

// CreateQuiz inserts the quiz and its questions atomically: a failure on
// any question insert rolls back the quiz as well.
func (s *Store) CreateQuiz(ctx context.Context, quiz *domain.Quiz, questions []*domain.QuizQuestion) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(quiz).Exec(ctx); err != nil {
			return fmt.Errorf("insert quiz: %w", err)
		}
		for _, q := range questions {
			q.QuizID = quiz.ID
		}
		if _, err := tx.NewInsert().Model(&questions).Exec(ctx); err != nil {
			return fmt.Errorf("insert questions: %w", err)
		}
		return nil
	})
}

func (s *Store) QuizByID(ctx context.Context, id int64) (domain.Quiz, error) {
	quiz := new(domain.Quiz)
	err := s.db.NewSelect().Model(quiz).Where("q.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}
	return *quiz, nil
}

func (s *Store) ListQuizzesForGrade(ctx context.Context, grade int) ([]domain.Quiz, error) {
	var quizzes []domain.Quiz
	err := s.db.NewSelect().
		Model(&quizzes).
		Where("grade_level = ? OR grade_level = 0", grade).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	return quizzes, nil
}

func (s *Store) ListQuizzesByTeacher(ctx context.Context, teacherID int64) ([]domain.Quiz, error) {
	var quizzes []domain.Quiz
	err := s.db.NewSelect().
		Model(&quizzes).
		Where("teacher_id = ?", teacherID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	return quizzes, nil
}

func (s *Store) QuestionsFor(ctx context.Context, quizID int64) ([]domain.QuizQuestion, error) {
	var questions []domain.QuizQuestion
	err := s.db.NewSelect().
		Model(&questions).
		Where("quiz_id = ?", quizID).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	return questions, nil
}

// AnswerKeys returns the grading projection of a quiz's questions.
func (s *Store) AnswerKeys(ctx context.Context, quizID int64) ([]domain.AnswerKey, error) {
	var keys []domain.AnswerKey
	err := s.db.NewSelect().
		Model((*domain.QuizQuestion)(nil)).
		ColumnExpr("qq.id AS question_id").
		ColumnExpr("qq.correct_answer AS correct").
		ColumnExpr("qq.points AS points").
		Where("quiz_id = ?", quizID).
		Scan(ctx, &keys)
	if err != nil {
		return nil, fmt.Errorf("load answer keys: %w", err)
	}
	return keys, nil
}

func (s *Store) AttemptByID(ctx context.Context, id int64) (domain.QuizAttempt, error) {
	attempt := new(domain.QuizAttempt)
	err := s.db.NewSelect().Model(attempt).Where("qa.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.QuizAttempt{}, domain.ErrAttemptNotFound
	}
	if err != nil {
		return domain.QuizAttempt{}, fmt.Errorf("load attempt: %w", err)
	}
	return *attempt, nil
}

func (s *Store) AttemptFor(ctx context.Context, studentID, quizID int64) (domain.QuizAttempt, error) {
	attempt := new(domain.QuizAttempt)
	err := s.db.NewSelect().
		Model(attempt).
		Where("student_id = ?", studentID).
		Where("quiz_id = ?", quizID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.QuizAttempt{}, domain.ErrAttemptNotFound
	}
	if err != nil {
		return domain.QuizAttempt{}, fmt.Errorf("load attempt: %w", err)
	}
	return *attempt, nil
}

// AttemptsForStudent returns the student's attempts keyed by quiz id.
func (s *Store) AttemptsForStudent(ctx context.Context, studentID int64) (map[int64]domain.QuizAttempt, error) {
	var attempts []domain.QuizAttempt
	err := s.db.NewSelect().
		Model(&attempts).
		Where("student_id = ?", studentID).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	byQuiz := make(map[int64]domain.QuizAttempt, len(attempts))
	for _, a := range attempts {
		byQuiz[a.QuizID] = a
	}
	return byQuiz, nil
}

func (s *Store) CreateAttempt(ctx context.Context, attempt *domain.QuizAttempt) error {
	if _, err := s.db.NewInsert().Model(attempt).Exec(ctx); err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

// GradeAttempt persists the grading outcome: the answer rows and the
// terminal update of the attempt run in one transaction. The update is
// guarded on completed_at still being unset, so a concurrent submission
// loses cleanly and leaves no answer rows behind.
func (s *Store) GradeAttempt(ctx context.Context, attempt *domain.QuizAttempt, answers []*domain.QuizAnswer) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if len(answers) > 0 {
			if _, err := tx.NewInsert().Model(&answers).Exec(ctx); err != nil {
				return fmt.Errorf("insert answers: %w", err)
			}
		}
		res, err := tx.NewUpdate().
			Model(attempt).
			Column("completed_at", "time_taken", "score", "correct_answers").
			WherePK().
			Where("completed_at IS NULL").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("complete attempt: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("complete attempt: %w", err)
		}
		if affected == 0 {
			return domain.ErrAttemptCompleted
		}
		return nil
	})
}

// AnswersForAttempt lists the graded answer rows of an attempt.
func (s *Store) AnswersForAttempt(ctx context.Context, attemptID int64) ([]domain.QuizAnswer, error) {
	var answers []domain.QuizAnswer
	err := s.db.NewSelect().
		Model(&answers).
		Where("attempt_id = ?", attemptID).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	return answers, nil
}
