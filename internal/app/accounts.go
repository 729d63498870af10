package app

import (
	"context"
	"time"

	"eduplay-service/internal/auth"
	"eduplay-service/internal/domain"
	"eduplay-service/internal/platform/logger"
)

// AccountStore is the slice of persistence the account flows need.
type AccountStore interface {
	CreateStudent(ctx context.Context, student *domain.Student) error
	StudentByID(ctx context.Context, id int64) (domain.Student, error)
	StudentByEmail(ctx context.Context, email string) (domain.Student, error)
	CreateTeacher(ctx context.Context, teacher *domain.Teacher) error
	TeacherByID(ctx context.Context, id int64) (domain.Teacher, error)
	TeacherByEmail(ctx context.Context, email string) (domain.Teacher, error)
}

// StudentRegistration is the input for a new student account.
type StudentRegistration struct {
	Name     string
	Email    string
	Password string
	Grade    int
	School   string
}

// TeacherRegistration is the input for a new teacher account.
type TeacherRegistration struct {
	Name     string
	Email    string
	Password string
	Subject  string
	School   string
}

// StreakState is the streak summary returned on login.
type StreakState struct {
	Current int `json:"current"`
	Longest int `json:"longest"`
}

// AccountService handles registration and login for both account kinds.
// Password hashing and token issue are delegated to the auth package.
type AccountService struct {
	store    AccountStore
	hasher   *auth.Hasher
	tokens   *auth.TokenManager
	activity *ActivityService
	log      *logger.Logger
}

func NewAccountService(store AccountStore, hasher *auth.Hasher, tokens *auth.TokenManager, activity *ActivityService, log *logger.Logger) *AccountService {
	return &AccountService{store: store, hasher: hasher, tokens: tokens, activity: activity, log: log}
}

// RegisterStudent creates the account with its zeroed streak row and
// returns a signed token.
func (s *AccountService) RegisterStudent(ctx context.Context, in StudentRegistration) (domain.Student, string, error) {
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return domain.Student{}, "", err
	}
	student := domain.Student{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Grade:        in.Grade,
		School:       in.School,
		CreatedAt:    time.Now(),
	}
	if err := s.store.CreateStudent(ctx, &student); err != nil {
		return domain.Student{}, "", err
	}
	token, err := s.tokens.Issue(student.ID, domain.KindStudent)
	if err != nil {
		return domain.Student{}, "", err
	}
	return student, token, nil
}

// LoginStudent checks the credentials, touches the daily streak, and
// returns a signed token. A failed streak touch is logged but never fails
// the login.
func (s *AccountService) LoginStudent(ctx context.Context, email, password string) (domain.Student, StreakState, string, error) {
	student, err := s.store.StudentByEmail(ctx, email)
	if err != nil {
		return domain.Student{}, StreakState{}, "", domain.ErrInvalidCredentials
	}
	if err := s.hasher.Compare(student.PasswordHash, password); err != nil {
		return domain.Student{}, StreakState{}, "", domain.ErrInvalidCredentials
	}
	token, err := s.tokens.Issue(student.ID, domain.KindStudent)
	if err != nil {
		return domain.Student{}, StreakState{}, "", err
	}

	var streak StreakState
	current, longest, err := s.activity.TouchStreak(ctx, student.ID)
	if err != nil {
		s.log.Warn("login streak touch failed", "student_id", student.ID, "err", err)
	} else {
		streak = StreakState{Current: current, Longest: longest}
	}
	return student, streak, token, nil
}

// RegisterTeacher creates the teacher account and returns a signed token.
func (s *AccountService) RegisterTeacher(ctx context.Context, in TeacherRegistration) (domain.Teacher, string, error) {
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return domain.Teacher{}, "", err
	}
	teacher := domain.Teacher{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Subject:      in.Subject,
		School:       in.School,
		CreatedAt:    time.Now(),
	}
	if err := s.store.CreateTeacher(ctx, &teacher); err != nil {
		return domain.Teacher{}, "", err
	}
	token, err := s.tokens.Issue(teacher.ID, domain.KindTeacher)
	if err != nil {
		return domain.Teacher{}, "", err
	}
	return teacher, token, nil
}

// LoginTeacher checks the credentials and returns a signed token.
func (s *AccountService) LoginTeacher(ctx context.Context, email, password string) (domain.Teacher, string, error) {
	teacher, err := s.store.TeacherByEmail(ctx, email)
	if err != nil {
		return domain.Teacher{}, "", domain.ErrInvalidCredentials
	}
	if err := s.hasher.Compare(teacher.PasswordHash, password); err != nil {
		return domain.Teacher{}, "", domain.ErrInvalidCredentials
	}
	token, err := s.tokens.Issue(teacher.ID, domain.KindTeacher)
	if err != nil {
		return domain.Teacher{}, "", err
	}
	return teacher, token, nil
}

// Student loads a student account by id.
func (s *AccountService) Student(ctx context.Context, id int64) (domain.Student, error) {
	return s.store.StudentByID(ctx, id)
}

// Teacher loads a teacher account by id.
func (s *AccountService) Teacher(ctx context.Context, id int64) (domain.Teacher, error) {
	return s.store.TeacherByID(ctx, id)
}
