package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"eduplay-service/internal/app"
	"eduplay-service/internal/auth"
	"eduplay-service/internal/config"
	"eduplay-service/internal/domain"
	"eduplay-service/internal/infra/store"
)

const (
	demoTeacherEmail    = "demo.teacher@eduplay.local"
	demoTeacherPassword = "teachdemo1"
)

// NewSeedCmd loads the demo catalog, a demo teacher, and a starter quiz
// and assignment into the database.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed the game catalog and demo teacher content",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), *configPath)
		},
	}
}

// defaultGames is the built-in catalog. Names are stable keys: reseeding
// skips entries that already exist.
func defaultGames() []domain.Game {
	return []domain.Game{
		{Name: "Math Blaster", Subject: "Math", Topic: "Arithmetic", Description: "Race through addition and subtraction drills.", MaxScore: 100, MinGrade: 1, MaxGrade: 5},
		{Name: "Number Ninja", Subject: "Math", Topic: "Multiplication", Description: "Slice the right products before they hit the ground.", MaxScore: 150, MinGrade: 2, MaxGrade: 6},
		{Name: "Algebra Arena", Subject: "Math", Topic: "Algebra", Description: "Solve for x against the clock.", MaxScore: 200, MinGrade: 6, MaxGrade: 8},
		{Name: "Fraction Frenzy", Subject: "Math", Topic: "Fractions", Description: "Match equivalent fractions under pressure.", MaxScore: 120, MinGrade: 3, MaxGrade: 6},
		{Name: "Word Wizard", Subject: "English", Topic: "Vocabulary", Description: "Build words from falling letters.", MaxScore: 100, MinGrade: 1, MaxGrade: 5},
		{Name: "Spelling Bee", Subject: "English", Topic: "Spelling", Description: "Spell your way up the hive.", MaxScore: 80},
		{Name: "Grammar Galaxy", Subject: "English", Topic: "Grammar", Description: "Repair broken sentences across the galaxy.", MaxScore: 90, MinGrade: 4, MaxGrade: 8},
		{Name: "Science Quest", Subject: "Science", Topic: "Biology", Description: "Explore ecosystems and classify what you find.", MaxScore: 100, MinGrade: 3, MaxGrade: 8},
		{Name: "Lab Rats", Subject: "Science", Topic: "Chemistry", Description: "Mix safe reactions to earn points.", MaxScore: 140, MinGrade: 6, MaxGrade: 8},
		{Name: "Geo Explorer", Subject: "Geography", Topic: "Maps", Description: "Pin countries and capitals on the map.", MaxScore: 100},
	}
}

func runSeed(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := store.Migrate(ctx, db); err != nil {
		return err
	}
	s := store.New(db)

	if err := s.SeedGames(ctx, defaultGames()); err != nil {
		return err
	}
	fmt.Printf("seeded %d catalog games\n", len(defaultGames()))

	teacher, err := s.TeacherByEmail(ctx, demoTeacherEmail)
	switch {
	case errors.Is(err, domain.ErrTeacherNotFound):
		hash, err := auth.NewHasher().Hash(demoTeacherPassword)
		if err != nil {
			return err
		}
		teacher = domain.Teacher{
			Name:         "Demo Teacher",
			Email:        demoTeacherEmail,
			PasswordHash: hash,
			Subject:      "Math",
			School:       "Eduplay Demo School",
			CreatedAt:    time.Now(),
		}
		if err := s.CreateTeacher(ctx, &teacher); err != nil {
			return err
		}
		fmt.Printf("created demo teacher %s (password %q)\n", demoTeacherEmail, demoTeacherPassword)
	case err != nil:
		return err
	default:
		fmt.Println("demo teacher already present, keeping existing content")
		return nil
	}

	quizzes := app.NewQuizService(s, s)
	quiz, err := quizzes.Create(ctx, teacher.ID, app.QuizDraft{
		Title:      "Multiplication warm-up",
		Subject:    "Math",
		GradeLevel: 0,
		Questions: []app.QuestionDraft{
			{Question: "What is 6 x 7?", OptionA: "42", OptionB: "36", OptionC: "48", OptionD: "54", CorrectAnswer: "A"},
			{Question: "What is 9 x 9?", OptionA: "72", OptionB: "81", OptionC: "99", OptionD: "89", CorrectAnswer: "B"},
			{Question: "What is 12 x 5?", OptionA: "50", OptionB: "55", OptionC: "60", OptionD: "65", CorrectAnswer: "C", Points: 20},
		},
	})
	if err != nil {
		return err
	}
	fmt.Printf("created demo quiz %q (id %d)\n", quiz.Title, quiz.ID)

	assignment := domain.Assignment{
		TeacherID:   teacher.ID,
		Title:       "Times tables practice",
		Description: "Play Number Ninja twice and take the warm-up quiz.",
		Subject:     "Math",
		GradeLevel:  0,
		DueDate:     time.Now().AddDate(0, 0, 7),
		CreatedAt:   time.Now(),
	}
	if err := s.CreateAssignment(ctx, &assignment); err != nil {
		return err
	}
	fmt.Printf("created demo assignment %q (id %d)\n", assignment.Title, assignment.ID)
	return nil
}
