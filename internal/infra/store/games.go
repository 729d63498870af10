package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"eduplay-service/internal/domain"
)

func (s *Store) ListGames(ctx context.Context) ([]domain.Game, error) {
	var games []domain.Game
	if err := s.db.NewSelect().Model(&games).Order("name ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	return games, nil
}

func (s *Store) GameByID(ctx context.Context, id int64) (domain.Game, error) {
	game := new(domain.Game)
	err := s.db.NewSelect().Model(game).Where("g.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Game{}, domain.ErrGameNotFound
	}
	if err != nil {
		return domain.Game{}, fmt.Errorf("load game: %w", err)
	}
	return *game, nil
}

// GameByName resolves a catalog entry; games are addressed by name on the
// submission path.
func (s *Store) GameByName(ctx context.Context, name string) (domain.Game, error) {
	game := new(domain.Game)
	err := s.db.NewSelect().Model(game).Where("name = ?", name).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Game{}, domain.ErrGameNotFound
	}
	if err != nil {
		return domain.Game{}, fmt.Errorf("load game: %w", err)
	}
	return *game, nil
}

// SeedGames inserts catalog entries, skipping names that already exist.
func (s *Store) SeedGames(ctx context.Context, games []domain.Game) error {
	if len(games) == 0 {
		return nil
	}
	_, err := s.db.NewInsert().
		Model(&games).
		On("CONFLICT (name) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("seed games: %w", err)
	}
	return nil
}

// InsertSession appends one immutable game session row.
func (s *Store) InsertSession(ctx context.Context, session *domain.GameSession) error {
	if _, err := s.db.NewInsert().Model(session).Exec(ctx); err != nil {
		return fmt.Errorf("insert game session: %w", err)
	}
	return nil
}

func (s *Store) RecentSessions(ctx context.Context, studentID int64, limit int) ([]domain.GameSession, error) {
	var sessions []domain.GameSession
	err := s.db.NewSelect().
		Model(&sessions).
		Where("student_id = ?", studentID).
		Order("played_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// SessionAggregate recomputes the sum, count, and rounded mean of the
// student's completed session scores. This feeds the leaderboard row.
func (s *Store) SessionAggregate(ctx context.Context, studentID int64) (domain.SessionAggregate, error) {
	var row struct {
		TotalScore   int     `bun:"total_score"`
		GamesPlayed  int     `bun:"games_played"`
		AverageScore float64 `bun:"average_score"`
	}
	err := s.db.NewSelect().
		Model((*domain.GameSession)(nil)).
		ColumnExpr("COALESCE(SUM(score), 0) AS total_score").
		ColumnExpr("COUNT(*) AS games_played").
		ColumnExpr("COALESCE(AVG(score), 0.0) AS average_score").
		Where("student_id = ?", studentID).
		Where("completed").
		Scan(ctx, &row)
	if err != nil {
		return domain.SessionAggregate{}, fmt.Errorf("aggregate sessions: %w", err)
	}
	return domain.SessionAggregate{
		TotalScore:   row.TotalScore,
		GamesPlayed:  row.GamesPlayed,
		AverageScore: int(math.Round(row.AverageScore)),
	}, nil
}

// GameRankRows returns, for every student with at least one completed
// session of the game, their best score and the earliest time they achieved
// it, ordered best score descending then earliest first. Rank numbers are
// assigned by the caller.
func (s *Store) GameRankRows(ctx context.Context, gameID int64) ([]domain.GameRank, error) {
	best := s.db.NewSelect().
		Model((*domain.GameSession)(nil)).
		ColumnExpr("student_id").
		ColumnExpr("MAX(score) AS best_score").
		Where("game_id = ?", gameID).
		Where("completed").
		GroupExpr("student_id")

	var rows []domain.GameRank
	err := s.db.NewSelect().
		TableExpr("(?) AS b", best).
		ColumnExpr("b.student_id AS student_id").
		ColumnExpr("st.name AS student_name").
		ColumnExpr("b.best_score AS best_score").
		ColumnExpr("MIN(gs.played_at) AS achieved_at").
		Join("JOIN game_sessions AS gs ON gs.student_id = b.student_id AND gs.game_id = ? AND gs.completed AND gs.score = b.best_score", gameID).
		Join("JOIN students AS st ON st.id = b.student_id").
		GroupExpr("b.student_id, st.name, b.best_score").
		OrderExpr("b.best_score DESC, achieved_at ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("rank sessions: %w", err)
	}
	return rows, nil
}
