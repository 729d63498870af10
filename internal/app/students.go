package app

import (
	"context"
	"errors"

	"eduplay-service/internal/domain"
)

// Dashboard is the aggregated home-screen view for one student.
type Dashboard struct {
	Streak         domain.Streak            `json:"streak"`
	GlobalRank     int                      `json:"globalRank"`
	Entry          *domain.LeaderboardEntry `json:"leaderboardEntry,omitempty"`
	Progress       []domain.Progress        `json:"progress"`
	RecentSessions []domain.GameSession     `json:"recentSessions"`
}

// StudentService assembles the read-side views of a student's state.
type StudentService struct {
	accounts    *AccountService
	streaks     *StreakService
	progress    *ProgressService
	games       *GameService
	leaderboard *LeaderboardService
	ranking     *RankingService
}

func NewStudentService(accounts *AccountService, streaks *StreakService, progress *ProgressService, games *GameService, leaderboard *LeaderboardService, ranking *RankingService) *StudentService {
	return &StudentService{
		accounts:    accounts,
		streaks:     streaks,
		progress:    progress,
		games:       games,
		leaderboard: leaderboard,
		ranking:     ranking,
	}
}

// Profile returns the student together with their streak state.
func (s *StudentService) Profile(ctx context.Context, studentID int64) (domain.Student, domain.Streak, error) {
	student, err := s.accounts.Student(ctx, studentID)
	if err != nil {
		return domain.Student{}, domain.Streak{}, err
	}
	streak, err := s.streaks.Current(ctx, studentID)
	if err != nil {
		return domain.Student{}, domain.Streak{}, err
	}
	return student, streak, nil
}

// Dashboard gathers streak, rank, leaderboard entry, progress, and recent
// sessions in one shot. A student who has not played yet gets rank 0 and
// no leaderboard entry rather than an error.
func (s *StudentService) Dashboard(ctx context.Context, studentID int64, recentLimit int) (Dashboard, error) {
	streak, err := s.streaks.Current(ctx, studentID)
	if err != nil {
		return Dashboard{}, err
	}

	dash := Dashboard{Streak: streak}
	entry, err := s.leaderboard.Entry(ctx, studentID)
	switch {
	case err == nil:
		dash.Entry = &entry
		rank, err := s.ranking.GlobalRank(ctx, studentID)
		if err != nil {
			return Dashboard{}, err
		}
		dash.GlobalRank = rank
	case errors.Is(err, domain.ErrNotRanked):
		// not on the board yet
	default:
		return Dashboard{}, err
	}

	if dash.Progress, err = s.progress.List(ctx, studentID, ""); err != nil {
		return Dashboard{}, err
	}
	if dash.RecentSessions, err = s.games.RecentSessions(ctx, studentID, recentLimit); err != nil {
		return Dashboard{}, err
	}
	return dash, nil
}
