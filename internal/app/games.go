package app

import (
	"context"
	"time"

	"eduplay-service/internal/domain"
	"eduplay-service/internal/scoring"
)

// GameStore is the slice of persistence the game flows need.
type GameStore interface {
	ListGames(ctx context.Context) ([]domain.Game, error)
	RecentSessions(ctx context.Context, studentID int64, limit int) ([]domain.GameSession, error)
}

// GameResult is a submitted play of a game. Score is the raw in-game
// value; normalization against the catalog maximum happens here.
type GameResult struct {
	Game      string
	Score     float64
	TimeTaken int
	Completed bool
}

// GameService lists the catalog and accepts game results.
type GameService struct {
	store    GameStore
	catalog  Catalog
	activity *ActivityService
	now      func() time.Time
}

func NewGameService(store GameStore, catalog Catalog, activity *ActivityService) *GameService {
	return &GameService{store: store, catalog: catalog, activity: activity, now: time.Now}
}

// List returns the catalog entries offered to a student in the given
// grade.
func (s *GameService) List(ctx context.Context, grade int) ([]domain.Game, error) {
	games, err := s.store.ListGames(ctx)
	if err != nil {
		return nil, err
	}
	visible := make([]domain.Game, 0, len(games))
	for _, g := range games {
		if g.VisibleTo(grade) {
			visible = append(visible, g)
		}
	}
	return visible, nil
}

// SubmitResult resolves the game, rescales the raw score to 0-100, and
// hands the session to the activity chain. The returned session carries
// the normalized score and the assigned id.
func (s *GameService) SubmitResult(ctx context.Context, studentID int64, in GameResult) (domain.GameSession, error) {
	game, err := s.catalog.GameByName(ctx, in.Game)
	if err != nil {
		return domain.GameSession{}, err
	}
	session := domain.GameSession{
		StudentID: studentID,
		GameID:    game.ID,
		Score:     scoring.Normalize(in.Score, game.MaxScore),
		TimeTaken: in.TimeTaken,
		Completed: in.Completed,
		PlayedAt:  s.now(),
	}
	if err := s.activity.RecordGameResult(ctx, &session, game.Subject, game.Topic); err != nil {
		return domain.GameSession{}, err
	}
	return session, nil
}

// RecentSessions lists a student's latest plays, newest first.
func (s *GameService) RecentSessions(ctx context.Context, studentID int64, limit int) ([]domain.GameSession, error) {
	return s.store.RecentSessions(ctx, studentID, limit)
}
