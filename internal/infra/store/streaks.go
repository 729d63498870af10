package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"eduplay-service/internal/domain"
)

// StreakFor returns the student's streak row, or a zero-valued default when
// the row is missing. Registration normally creates the row, so the default
// only covers students created outside the registration path.
func (s *Store) StreakFor(ctx context.Context, studentID int64) (domain.Streak, error) {
	st := new(domain.Streak)
	err := s.db.NewSelect().Model(st).Where("student_id = ?", studentID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Streak{StudentID: studentID}, nil
	}
	if err != nil {
		return domain.Streak{}, fmt.Errorf("load streak: %w", err)
	}
	return *st, nil
}

func (s *Store) UpsertStreak(ctx context.Context, st *domain.Streak) error {
	_, err := s.db.NewInsert().
		Model(st).
		On("CONFLICT (student_id) DO UPDATE").
		Set("current_streak = EXCLUDED.current_streak").
		Set("longest_streak = EXCLUDED.longest_streak").
		Set("last_activity_date = EXCLUDED.last_activity_date").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upsert streak: %w", err)
	}
	return nil
}
