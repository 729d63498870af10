package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"eduplay-service/internal/app"
	"eduplay-service/internal/domain"
)

func TestSubmitResultNormalizesAgainstGameMax(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	student := newStudent(t, s, "Alice", "alice@school.test")
	game := newGame(t, s, "Word Builder", "Reading", "Vocabulary", 50)

	games := app.NewGameService(s, s, newActivityService(s))
	session, err := games.SubmitResult(ctx, student.ID, app.GameResult{
		Game:      "Word Builder",
		Score:     40,
		TimeTaken: 60,
		Completed: true,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	// 40 of 50 rescales to 80.
	if session.Score != 80 {
		t.Fatalf("score = %d, want 80", session.Score)
	}
	if session.ID == 0 || session.GameID != game.ID {
		t.Fatalf("session = %+v", session)
	}

	stored, err := s.RecentSessions(ctx, student.ID, 1)
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}
	if len(stored) != 1 || stored[0].Score != 80 {
		t.Fatalf("stored = %+v", stored)
	}
}

func TestSubmitResultClampsRunawayScores(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	student := newStudent(t, s, "Alice", "alice@school.test")
	newGame(t, s, "Word Builder", "Reading", "Vocabulary", 50)

	games := app.NewGameService(s, s, newActivityService(s))
	session, err := games.SubmitResult(ctx, student.ID, app.GameResult{
		Game: "Word Builder", Score: 75, Completed: true,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if session.Score != 100 {
		t.Fatalf("score = %d, want clamp to 100", session.Score)
	}

	session, err = games.SubmitResult(ctx, student.ID, app.GameResult{
		Game: "Word Builder", Score: -5, Completed: true,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if session.Score != 0 {
		t.Fatalf("score = %d, want clamp to 0", session.Score)
	}
}

func TestSubmitResultUnknownGame(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	student := newStudent(t, s, "Alice", "alice@school.test")

	games := app.NewGameService(s, s, newActivityService(s))
	_, err := games.SubmitResult(ctx, student.ID, app.GameResult{Game: "No Such Game", Score: 10})
	if !errors.Is(err, domain.ErrGameNotFound) {
		t.Fatalf("expected ErrGameNotFound, got %v", err)
	}
	sessions, err := s.RecentSessions(ctx, student.ID, 10)
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}
	if len(sessions) != 0 {
		t.Fatalf("no session should be written, got %d", len(sessions))
	}
}

func TestSubmitResultFeedsActivityChain(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	student := newStudent(t, s, "Alice", "alice@school.test")
	newGame(t, s, "Word Builder", "Reading", "Vocabulary", 100)

	activity := newActivityService(s)
	games := app.NewGameService(s, s, activity)
	if _, err := games.SubmitResult(ctx, student.ID, app.GameResult{
		Game: "Word Builder", Score: 90, Completed: true,
	}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	activity.Flush()

	p, err := s.ProgressFor(ctx, student.ID, "Reading", "Vocabulary")
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if p.GamesPlayed != 1 || p.TotalScore != 90 {
		t.Fatalf("progress = %+v", p)
	}
	entry, err := s.EntryFor(ctx, student.ID)
	if err != nil {
		t.Fatalf("entry: %v", err)
	}
	if entry.TotalScore != 90 {
		t.Fatalf("entry = %+v", entry)
	}
}

func TestListFiltersByGradeBand(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if err := s.SeedGames(ctx, []domain.Game{
		{Name: "Counting Farm", Subject: "Math", Topic: "Counting", MaxScore: 100, MinGrade: 1, MaxGrade: 3},
		{Name: "Algebra Arena", Subject: "Math", Topic: "Algebra", MaxScore: 100, MinGrade: 6, MaxGrade: 8},
		{Name: "Spelling Bee", Subject: "Reading", Topic: "Spelling", MaxScore: 100},
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	games := app.NewGameService(s, s, newActivityService(s))
	visible, err := games.List(ctx, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	names := map[string]bool{}
	for _, g := range visible {
		names[g.Name] = true
	}
	if !names["Counting Farm"] || !names["Spelling Bee"] || names["Algebra Arena"] {
		t.Fatalf("grade 2 sees %v", names)
	}

	visible, err = games.List(ctx, 7)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	names = map[string]bool{}
	for _, g := range visible {
		names[g.Name] = true
	}
	if names["Counting Farm"] || !names["Algebra Arena"] || !names["Spelling Bee"] {
		t.Fatalf("grade 7 sees %v", names)
	}
}

func TestRecentSessionsNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	student := newStudent(t, s, "Alice", "alice@school.test")
	game := newGame(t, s, "Word Builder", "Reading", "Vocabulary", 100)

	base := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	insertSessions(t, s, []domain.GameSession{
		{StudentID: student.ID, GameID: game.ID, Score: 10, Completed: true, PlayedAt: base},
		{StudentID: student.ID, GameID: game.ID, Score: 20, Completed: true, PlayedAt: base.Add(time.Hour)},
		{StudentID: student.ID, GameID: game.ID, Score: 30, Completed: true, PlayedAt: base.Add(2 * time.Hour)},
	})

	games := app.NewGameService(s, s, newActivityService(s))
	recent, err := games.RecentSessions(ctx, student.ID, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 2 || recent[0].Score != 30 || recent[1].Score != 20 {
		t.Fatalf("recent = %+v", recent)
	}
}
