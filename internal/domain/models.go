package domain

import (
	"time"

	"github.com/uptrace/bun"
)

// AccountKind distinguishes the two fixed account types.
type AccountKind string

const (
	KindStudent AccountKind = "student"
	KindTeacher AccountKind = "teacher"
)

// Student is a learner account. Identity fields are immutable after
// registration; only the display profile (name, school) may change.
type Student struct {
	bun.BaseModel `bun:"table:students,alias:st"`

	ID           int64     `bun:"id,pk,autoincrement" json:"id"`
	Name         string    `bun:"name,notnull" json:"name"`
	Email        string    `bun:"email,notnull,unique" json:"email"`
	PasswordHash string    `bun:"password_hash,notnull" json:"-"`
	Grade        int       `bun:"grade,notnull" json:"grade"`
	School       string    `bun:"school" json:"school"`
	CreatedAt    time.Time `bun:"created_at,notnull" json:"createdAt"`
}

// Teacher is an educator account that authors quizzes and assignments.
type Teacher struct {
	bun.BaseModel `bun:"table:teachers,alias:t"`

	ID           int64     `bun:"id,pk,autoincrement" json:"id"`
	Name         string    `bun:"name,notnull" json:"name"`
	Email        string    `bun:"email,notnull,unique" json:"email"`
	PasswordHash string    `bun:"password_hash,notnull" json:"-"`
	Subject      string    `bun:"subject" json:"subject"`
	School       string    `bun:"school" json:"school"`
	CreatedAt    time.Time `bun:"created_at,notnull" json:"createdAt"`
}

// Game is a catalog entry for an educational mini-game. MaxScore is the
// raw-score ceiling used for normalization and must be positive; the seed
// data guarantees that precondition.
type Game struct {
	bun.BaseModel `bun:"table:games,alias:g"`

	ID          int64  `bun:"id,pk,autoincrement" json:"id"`
	Name        string `bun:"name,notnull,unique" json:"name"`
	Subject     string `bun:"subject,notnull" json:"subject"`
	Topic       string `bun:"topic,notnull" json:"topic"`
	Description string `bun:"description" json:"description"`
	MaxScore    int    `bun:"max_score,notnull" json:"maxScore"`
	MinGrade    int    `bun:"min_grade,notnull,default:0" json:"minGrade"`
	MaxGrade    int    `bun:"max_grade,notnull,default:0" json:"maxGrade"`
}

// VisibleTo reports whether the game is offered to a student in the given
// grade. A zero min/max pair means all grades.
func (g Game) VisibleTo(grade int) bool {
	if g.MinGrade == 0 && g.MaxGrade == 0 {
		return true
	}
	return grade >= g.MinGrade && grade <= g.MaxGrade
}

// GameSession is the immutable record of one play of a game. Score is the
// normalized 0-100 value; rows are append-only and never updated.
type GameSession struct {
	bun.BaseModel `bun:"table:game_sessions,alias:gs"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	StudentID int64     `bun:"student_id,notnull" json:"studentId"`
	GameID    int64     `bun:"game_id,notnull" json:"gameId"`
	Score     int       `bun:"score,notnull" json:"score"`
	TimeTaken int       `bun:"time_taken,notnull" json:"timeTaken"`
	Completed bool      `bun:"completed,notnull" json:"completed"`
	PlayedAt  time.Time `bun:"played_at,notnull" json:"playedAt"`
}

// Progress is the rolling per-(student, subject, topic) engagement record.
// CompletionPercentage advances by a fixed step per activity and never
// decreases; AverageScore is the incrementally maintained rounded mean.
type Progress struct {
	bun.BaseModel `bun:"table:progress,alias:p"`

	ID                   int64     `bun:"id,pk,autoincrement" json:"id"`
	StudentID            int64     `bun:"student_id,notnull,unique:progress_key" json:"studentId"`
	Subject              string    `bun:"subject,notnull,unique:progress_key" json:"subject"`
	Topic                string    `bun:"topic,notnull,unique:progress_key" json:"topic"`
	CompletionPercentage int       `bun:"completion_percentage,notnull" json:"completionPercentage"`
	GamesPlayed          int       `bun:"games_played,notnull" json:"gamesPlayed"`
	TotalScore           int       `bun:"total_score,notnull" json:"totalScore"`
	AverageScore         int       `bun:"average_score,notnull" json:"averageScore"`
	LastPlayed           time.Time `bun:"last_played,nullzero" json:"lastPlayed"`
}

// Streak tracks consecutive calendar days with qualifying activity.
// LastActivityDate carries a date only; the time of day is irrelevant.
type Streak struct {
	bun.BaseModel `bun:"table:streaks,alias:sk"`

	ID               int64      `bun:"id,pk,autoincrement" json:"id"`
	StudentID        int64      `bun:"student_id,notnull,unique" json:"studentId"`
	CurrentStreak    int        `bun:"current_streak,notnull" json:"currentStreak"`
	LongestStreak    int        `bun:"longest_streak,notnull" json:"longestStreak"`
	LastActivityDate *time.Time `bun:"last_activity_date,nullzero" json:"lastActivityDate,omitempty"`
}

// SessionAggregate is the full recompute over a student's completed game
// sessions that becomes their leaderboard row.
type SessionAggregate struct {
	TotalScore   int
	GamesPlayed  int
	AverageScore int
}

// LeaderboardEntry is the denormalized per-student summary used for global
// ranking. It is rebuilt from completed game sessions, never patched.
type LeaderboardEntry struct {
	bun.BaseModel `bun:"table:leaderboard,alias:lb"`

	ID           int64     `bun:"id,pk,autoincrement" json:"id"`
	StudentID    int64     `bun:"student_id,notnull,unique" json:"studentId"`
	StudentName  string    `bun:"student_name,notnull" json:"studentName"`
	TotalScore   int       `bun:"total_score,notnull" json:"totalScore"`
	GamesPlayed  int       `bun:"games_played,notnull" json:"gamesPlayed"`
	AverageScore int       `bun:"average_score,notnull" json:"averageScore"`
	LastUpdated  time.Time `bun:"last_updated,notnull" json:"lastUpdated"`
}

// Quiz is an authored set of questions. TotalQuestions and MaxScore are
// fixed at creation time together with the question rows (atomically).
type Quiz struct {
	bun.BaseModel `bun:"table:quizzes,alias:q"`

	ID             int64     `bun:"id,pk,autoincrement" json:"id"`
	TeacherID      int64     `bun:"teacher_id,notnull" json:"teacherId"`
	Title          string    `bun:"title,notnull" json:"title"`
	Subject        string    `bun:"subject,notnull" json:"subject"`
	GradeLevel     int       `bun:"grade_level,notnull" json:"gradeLevel"`
	TotalQuestions int       `bun:"total_questions,notnull" json:"totalQuestions"`
	MaxScore       int       `bun:"max_score,notnull" json:"maxScore"`
	CreatedAt      time.Time `bun:"created_at,notnull" json:"createdAt"`

	Questions []*QuizQuestion `bun:"rel:has-many,join:id=quiz_id" json:"questions,omitempty"`
}

// VisibleTo reports whether the quiz is offered to a student in the given
// grade. GradeLevel zero means all grades.
func (q Quiz) VisibleTo(grade int) bool {
	return q.GradeLevel == 0 || q.GradeLevel == grade
}

// QuizQuestion holds one multiple-choice question. CorrectAnswer is a
// single option letter A-D matched case-sensitively during grading.
type QuizQuestion struct {
	bun.BaseModel `bun:"table:quiz_questions,alias:qq"`

	ID            int64  `bun:"id,pk,autoincrement" json:"id"`
	QuizID        int64  `bun:"quiz_id,notnull" json:"quizId"`
	Question      string `bun:"question,notnull" json:"question"`
	OptionA       string `bun:"option_a,notnull" json:"optionA"`
	OptionB       string `bun:"option_b,notnull" json:"optionB"`
	OptionC       string `bun:"option_c,notnull" json:"optionC"`
	OptionD       string `bun:"option_d,notnull" json:"optionD"`
	CorrectAnswer string `bun:"correct_answer,notnull" json:"-"`
	Points        int    `bun:"points,notnull" json:"points"`
}

// Options returns the four choices in display order.
func (q QuizQuestion) Options() []string {
	return []string{q.OptionA, q.OptionB, q.OptionC, q.OptionD}
}

// AnswerKey is the grading projection of a question: the correct option
// letter and the points it is worth. This is what the catalog caches hold.
type AnswerKey struct {
	QuestionID int64  `json:"questionId"`
	Correct    string `json:"correct"`
	Points     int    `json:"points"`
}

// QuizAttempt is one student's run at a quiz, unique per (student, quiz).
// A set CompletedAt is the sole terminal marker: once present the attempt
// can never be restarted or regraded.
type QuizAttempt struct {
	bun.BaseModel `bun:"table:quiz_attempts,alias:qa"`

	ID             int64      `bun:"id,pk,autoincrement" json:"id"`
	StudentID      int64      `bun:"student_id,notnull,unique:attempt_key" json:"studentId"`
	QuizID         int64      `bun:"quiz_id,notnull,unique:attempt_key" json:"quizId"`
	StartedAt      time.Time  `bun:"started_at,notnull" json:"startedAt"`
	CompletedAt    *time.Time `bun:"completed_at,nullzero" json:"completedAt,omitempty"`
	TimeTaken      int        `bun:"time_taken,notnull" json:"timeTaken"`
	Score          int        `bun:"score,notnull" json:"score"`
	TotalQuestions int        `bun:"total_questions,notnull" json:"totalQuestions"`
	CorrectAnswers int        `bun:"correct_answers,notnull" json:"correctAnswers"`
}

// Terminal reports whether the attempt has been completed.
func (a QuizAttempt) Terminal() bool {
	return a.CompletedAt != nil
}

// QuizAnswer records one graded answer within an attempt. Append-only,
// written during grading.
type QuizAnswer struct {
	bun.BaseModel `bun:"table:quiz_answers,alias:qan"`

	ID             int64  `bun:"id,pk,autoincrement" json:"id"`
	AttemptID      int64  `bun:"attempt_id,notnull" json:"attemptId"`
	QuestionID     int64  `bun:"question_id,notnull" json:"questionId"`
	SelectedAnswer string `bun:"selected_answer,notnull" json:"selectedAnswer"`
	IsCorrect      bool   `bun:"is_correct,notnull" json:"isCorrect"`
}

// AnswerSubmission is one submitted answer within a quiz submission.
type AnswerSubmission struct {
	QuestionID     int64  `json:"questionId"`
	SelectedAnswer string `json:"selectedAnswer"`
}

// QuizResult summarizes a graded attempt for the submitting student.
type QuizResult struct {
	Score            int `json:"score"`
	CorrectAnswers   int `json:"correctAnswers"`
	TotalQuestions   int `json:"totalQuestions"`
	Percentage       int `json:"percentage"`
	TimeTakenSeconds int `json:"timeTakenSeconds"`
}

// GameRank is one row of a per-game ranking: a student's best score on the
// game and when they first achieved it. Rank numbers follow competition
// ranking, so tied scores share a rank and the next distinct score resumes
// at its list position.
type GameRank struct {
	Rank        int       `json:"rank"`
	StudentID   int64     `json:"studentId"`
	StudentName string    `json:"studentName"`
	BestScore   int       `json:"bestScore"`
	AchievedAt  time.Time `json:"achievedAt"`
}

// LeaderboardSnapshot is the ordered top-of-board view pushed to live
// feed subscribers after every refresh.
type LeaderboardSnapshot struct {
	Entries   []LeaderboardEntry `json:"entries"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// Assignment is teacher-authored work scoped to a grade level.
type Assignment struct {
	bun.BaseModel `bun:"table:assignments,alias:a"`

	ID          int64     `bun:"id,pk,autoincrement" json:"id"`
	TeacherID   int64     `bun:"teacher_id,notnull" json:"teacherId"`
	Title       string    `bun:"title,notnull" json:"title"`
	Description string    `bun:"description" json:"description"`
	Subject     string    `bun:"subject,notnull" json:"subject"`
	GradeLevel  int       `bun:"grade_level,notnull" json:"gradeLevel"`
	DueDate     time.Time `bun:"due_date,nullzero" json:"dueDate"`
	CreatedAt   time.Time `bun:"created_at,notnull" json:"createdAt"`
}

// VisibleTo reports whether the assignment is offered to a student in the
// given grade. GradeLevel zero means all grades.
func (a Assignment) VisibleTo(grade int) bool {
	return a.GradeLevel == 0 || a.GradeLevel == grade
}

// AssignmentCompletion marks an assignment done by a student, unique per
// (assignment, student).
type AssignmentCompletion struct {
	bun.BaseModel `bun:"table:assignment_completions,alias:ac"`

	ID           int64     `bun:"id,pk,autoincrement" json:"id"`
	AssignmentID int64     `bun:"assignment_id,notnull,unique:completion_key" json:"assignmentId"`
	StudentID    int64     `bun:"student_id,notnull,unique:completion_key" json:"studentId"`
	CompletedAt  time.Time `bun:"completed_at,notnull" json:"completedAt"`
}
