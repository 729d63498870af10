// Package migrations registers the schema for the single relational store.
// Tables are created from the bun models so the same migration set works on
// SQLite and Postgres.
package migrations

import (
	"github.com/uptrace/bun/migrate"

	"eduplay-service/internal/domain"
)

var Migrations = migrate.NewMigrations()

// tables in dependency order; dropped in reverse.
var models = []interface{}{
	(*domain.Student)(nil),
	(*domain.Teacher)(nil),
	(*domain.Game)(nil),
	(*domain.GameSession)(nil),
	(*domain.Progress)(nil),
	(*domain.Streak)(nil),
	(*domain.LeaderboardEntry)(nil),
	(*domain.Quiz)(nil),
	(*domain.QuizQuestion)(nil),
	(*domain.QuizAttempt)(nil),
	(*domain.QuizAnswer)(nil),
	(*domain.Assignment)(nil),
	(*domain.AssignmentCompletion)(nil),
}

type indexSpec struct {
	model   interface{}
	name    string
	columns []string
}

var indexes = []indexSpec{
	{(*domain.GameSession)(nil), "idx_game_sessions_student", []string{"student_id"}},
	{(*domain.GameSession)(nil), "idx_game_sessions_game", []string{"game_id", "score"}},
	{(*domain.QuizAnswer)(nil), "idx_quiz_answers_attempt", []string{"attempt_id"}},
	{(*domain.LeaderboardEntry)(nil), "idx_leaderboard_total", []string{"total_score"}},
}
