// Package postgres is the pgx read path used when the store runs on
// Postgres: catalog lookups on the hot submit and grading paths go through
// a pooled connection instead of the ORM.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"eduplay-service/internal/domain"
)

// CatalogLoader loads catalog content from Postgres.
type CatalogLoader struct {
	pool *pgxpool.Pool
}

func NewCatalogLoader(pool *pgxpool.Pool) *CatalogLoader {
	return &CatalogLoader{pool: pool}
}

// Connect opens a pgx pool for the given DSN.
func Connect(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.Connect(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return pool, nil
}

func (l *CatalogLoader) GameByName(ctx context.Context, name string) (domain.Game, error) {
	var g domain.Game
	err := l.pool.QueryRow(ctx,
		`SELECT id, name, subject, topic, description, max_score, min_grade, max_grade
		 FROM games WHERE name = $1`, name).
		Scan(&g.ID, &g.Name, &g.Subject, &g.Topic, &g.Description, &g.MaxScore, &g.MinGrade, &g.MaxGrade)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Game{}, domain.ErrGameNotFound
	}
	if err != nil {
		return domain.Game{}, fmt.Errorf("load game: %w", err)
	}
	return g, nil
}

func (l *CatalogLoader) QuizByID(ctx context.Context, id int64) (domain.Quiz, error) {
	var q domain.Quiz
	err := l.pool.QueryRow(ctx,
		`SELECT id, teacher_id, title, subject, grade_level, total_questions, max_score, created_at
		 FROM quizzes WHERE id = $1`, id).
		Scan(&q.ID, &q.TeacherID, &q.Title, &q.Subject, &q.GradeLevel, &q.TotalQuestions, &q.MaxScore, &q.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}
	return q, nil
}

func (l *CatalogLoader) AnswerKeys(ctx context.Context, quizID int64) ([]domain.AnswerKey, error) {
	rows, err := l.pool.Query(ctx,
		`SELECT id, correct_answer, points
		 FROM quiz_questions WHERE quiz_id = $1 ORDER BY id`, quizID)
	if err != nil {
		return nil, fmt.Errorf("load answer keys: %w", err)
	}
	defer rows.Close()

	var keys []domain.AnswerKey
	for rows.Next() {
		var k domain.AnswerKey
		if err := rows.Scan(&k.QuestionID, &k.Correct, &k.Points); err != nil {
			return nil, fmt.Errorf("scan answer key: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load answer keys: %w", err)
	}
	return keys, nil
}
