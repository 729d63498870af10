package app_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"eduplay-service/internal/domain"
	"eduplay-service/internal/infra/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	db, err := store.OpenSQLite(filepath.Join(t.TempDir(), "eduplay_test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := store.Migrate(context.Background(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return store.New(db)
}

func newStudent(t *testing.T, s *store.Store, name, email string) domain.Student {
	t.Helper()
	student := domain.Student{
		Name:         name,
		Email:        email,
		PasswordHash: "x",
		Grade:        4,
		CreatedAt:    time.Now(),
	}
	if err := s.CreateStudent(context.Background(), &student); err != nil {
		t.Fatalf("create student: %v", err)
	}
	return student
}

func newTeacher(t *testing.T, s *store.Store, name, email string) domain.Teacher {
	t.Helper()
	teacher := domain.Teacher{
		Name:         name,
		Email:        email,
		PasswordHash: "x",
		Subject:      "Math",
		CreatedAt:    time.Now(),
	}
	if err := s.CreateTeacher(context.Background(), &teacher); err != nil {
		t.Fatalf("create teacher: %v", err)
	}
	return teacher
}

func newGame(t *testing.T, s *store.Store, name, subject, topic string, maxScore int) domain.Game {
	t.Helper()
	if err := s.SeedGames(context.Background(), []domain.Game{
		{Name: name, Subject: subject, Topic: topic, MaxScore: maxScore},
	}); err != nil {
		t.Fatalf("seed game: %v", err)
	}
	game, err := s.GameByName(context.Background(), name)
	if err != nil {
		t.Fatalf("load game: %v", err)
	}
	return game
}

func insertSessions(t *testing.T, s *store.Store, sessions []domain.GameSession) {
	t.Helper()
	for i := range sessions {
		if err := s.InsertSession(context.Background(), &sessions[i]); err != nil {
			t.Fatalf("insert session: %v", err)
		}
	}
}
