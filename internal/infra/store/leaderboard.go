package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"eduplay-service/internal/domain"
)

// UpsertEntry replaces the student's leaderboard row wholesale. The row is
// always a full recompute, never a delta, so every column is overwritten.
func (s *Store) UpsertEntry(ctx context.Context, entry *domain.LeaderboardEntry) error {
	_, err := s.db.NewInsert().
		Model(entry).
		On("CONFLICT (student_id) DO UPDATE").
		Set("student_name = EXCLUDED.student_name").
		Set("total_score = EXCLUDED.total_score").
		Set("games_played = EXCLUDED.games_played").
		Set("average_score = EXCLUDED.average_score").
		Set("last_updated = EXCLUDED.last_updated").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upsert leaderboard entry: %w", err)
	}
	return nil
}

func (s *Store) EntryFor(ctx context.Context, studentID int64) (domain.LeaderboardEntry, error) {
	entry := new(domain.LeaderboardEntry)
	err := s.db.NewSelect().Model(entry).Where("student_id = ?", studentID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.LeaderboardEntry{}, domain.ErrNotRanked
	}
	if err != nil {
		return domain.LeaderboardEntry{}, fmt.Errorf("load leaderboard entry: %w", err)
	}
	return *entry, nil
}

func (s *Store) TopEntries(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	var entries []domain.LeaderboardEntry
	err := s.db.NewSelect().
		Model(&entries).
		OrderExpr("total_score DESC, student_name ASC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list leaderboard: %w", err)
	}
	return entries, nil
}

// EntriesByIDs loads leaderboard rows for the given students, returned in
// the order of ids. Unknown ids are skipped. Used to hydrate an ordered id
// list coming from the redis board.
func (s *Store) EntriesByIDs(ctx context.Context, ids []int64) ([]domain.LeaderboardEntry, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []domain.LeaderboardEntry
	err := s.db.NewSelect().
		Model(&rows).
		Where("student_id IN (?)", bun.In(ids)).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("load leaderboard entries: %w", err)
	}
	byID := make(map[int64]domain.LeaderboardEntry, len(rows))
	for _, row := range rows {
		byID[row.StudentID] = row
	}
	ordered := make([]domain.LeaderboardEntry, 0, len(ids))
	for _, id := range ids {
		if row, ok := byID[id]; ok {
			ordered = append(ordered, row)
		}
	}
	return ordered, nil
}

// AllEntries returns every leaderboard row. Used to rebuild the redis
// board at startup.
func (s *Store) AllEntries(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	var entries []domain.LeaderboardEntry
	if err := s.db.NewSelect().Model(&entries).Scan(ctx); err != nil {
		return nil, fmt.Errorf("list all leaderboard entries: %w", err)
	}
	return entries, nil
}

// CountBetterEntries counts leaderboard rows with a strictly greater total
// score. The global rank of a student is one plus this count, which makes
// tied totals share a rank.
func (s *Store) CountBetterEntries(ctx context.Context, totalScore int) (int, error) {
	n, err := s.db.NewSelect().
		Model((*domain.LeaderboardEntry)(nil)).
		Where("total_score > ?", totalScore).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count better entries: %w", err)
	}
	return n, nil
}
