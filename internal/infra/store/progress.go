package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"eduplay-service/internal/domain"
)

// ProgressFor returns the progress row for (student, subject, topic), or a
// zero-valued default when none exists yet. Rows are created lazily on the
// first activity in a topic.
func (s *Store) ProgressFor(ctx context.Context, studentID int64, subject, topic string) (domain.Progress, error) {
	p := new(domain.Progress)
	err := s.db.NewSelect().
		Model(p).
		Where("student_id = ?", studentID).
		Where("subject = ?", subject).
		Where("topic = ?", topic).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Progress{StudentID: studentID, Subject: subject, Topic: topic}, nil
	}
	if err != nil {
		return domain.Progress{}, fmt.Errorf("load progress: %w", err)
	}
	return *p, nil
}

// UpsertProgress writes the row back, inserting on first activity.
func (s *Store) UpsertProgress(ctx context.Context, p *domain.Progress) error {
	_, err := s.db.NewInsert().
		Model(p).
		On("CONFLICT (student_id, subject, topic) DO UPDATE").
		Set("completion_percentage = EXCLUDED.completion_percentage").
		Set("games_played = EXCLUDED.games_played").
		Set("total_score = EXCLUDED.total_score").
		Set("average_score = EXCLUDED.average_score").
		Set("last_played = EXCLUDED.last_played").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upsert progress: %w", err)
	}
	return nil
}

// ListProgress returns a student's progress rows, optionally filtered by
// subject.
func (s *Store) ListProgress(ctx context.Context, studentID int64, subject string) ([]domain.Progress, error) {
	var rows []domain.Progress
	q := s.db.NewSelect().
		Model(&rows).
		Where("student_id = ?", studentID)
	if subject != "" {
		q = q.Where("subject = ?", subject)
	}
	if err := q.Order("subject ASC", "topic ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	return rows, nil
}
