package app

import (
	"context"

	"eduplay-service/internal/domain"
	"eduplay-service/internal/platform/logger"
)

// RankingStore is the slice of persistence the ranking queries need.
type RankingStore interface {
	GameByID(ctx context.Context, id int64) (domain.Game, error)
	EntryFor(ctx context.Context, studentID int64) (domain.LeaderboardEntry, error)
	CountBetterEntries(ctx context.Context, totalScore int) (int, error)
	GameRankRows(ctx context.Context, gameID int64) ([]domain.GameRank, error)
}

// RankingService computes global and per-game ranks. The two use different
// tie policies on purpose: the global rank is one plus the number of
// strictly better totals (ties share a rank, no gaps are tracked), while
// per-game ranks follow competition ranking where tied best scores share a
// rank and the next distinct score resumes at its list position.
type RankingService struct {
	store  RankingStore
	boards Boards
	log    *logger.Logger
}

func NewRankingService(store RankingStore, boards Boards, log *logger.Logger) *RankingService {
	return &RankingService{store: store, boards: boards, log: log}
}

// GlobalRank returns the student's position on the global leaderboard.
// Students without a leaderboard entry are not ranked.
func (s *RankingService) GlobalRank(ctx context.Context, studentID int64) (int, error) {
	entry, err := s.store.EntryFor(ctx, studentID)
	if err != nil {
		return 0, err
	}
	better, err := s.countBetter(ctx, entry.TotalScore)
	if err != nil {
		return 0, err
	}
	return better + 1, nil
}

// countBetter prefers the redis board and falls back to SQL. Both count
// totals strictly greater than the given one.
func (s *RankingService) countBetter(ctx context.Context, totalScore int) (int, error) {
	if s.boards != nil {
		n, err := s.boards.CountBetter(ctx, totalScore)
		if err == nil {
			return n, nil
		}
		s.log.Warn("board rank count failed, falling back to sql", "err", err)
	}
	return s.store.CountBetterEntries(ctx, totalScore)
}

// GameRank returns the ranked list for one game: every student with at
// least one completed session, ordered by best score descending and by who
// reached that best score first.
func (s *RankingService) GameRank(ctx context.Context, gameID int64) ([]domain.GameRank, error) {
	if _, err := s.store.GameByID(ctx, gameID); err != nil {
		return nil, err
	}
	rows, err := s.store.GameRankRows(ctx, gameID)
	if err != nil {
		return nil, err
	}
	assignCompetitionRanks(rows)
	return rows, nil
}

// assignCompetitionRanks numbers rows already sorted best-first. Equal
// scores share a rank; the next distinct score takes its 1-based position,
// leaving a gap after the tie.
func assignCompetitionRanks(rows []domain.GameRank) {
	for i := range rows {
		if i > 0 && rows[i].BestScore == rows[i-1].BestScore {
			rows[i].Rank = rows[i-1].Rank
			continue
		}
		rows[i].Rank = i + 1
	}
}
