package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"eduplay-service/internal/domain"
)

// CreateStudent inserts the student together with their zeroed streak row.
// Registration is the only place a streak row is born.
func (s *Store) CreateStudent(ctx context.Context, student *domain.Student) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().
			Model((*domain.Student)(nil)).
			Where("email = ?", student.Email).
			Exists(ctx)
		if err != nil {
			return fmt.Errorf("check student email: %w", err)
		}
		if exists {
			return domain.ErrDuplicateEmail
		}
		if _, err := tx.NewInsert().Model(student).Exec(ctx); err != nil {
			return fmt.Errorf("insert student: %w", err)
		}
		streak := &domain.Streak{StudentID: student.ID}
		if _, err := tx.NewInsert().Model(streak).Exec(ctx); err != nil {
			return fmt.Errorf("insert streak: %w", err)
		}
		return nil
	})
}

func (s *Store) StudentByID(ctx context.Context, id int64) (domain.Student, error) {
	student := new(domain.Student)
	err := s.db.NewSelect().Model(student).Where("st.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Student{}, domain.ErrStudentNotFound
	}
	if err != nil {
		return domain.Student{}, fmt.Errorf("load student: %w", err)
	}
	return *student, nil
}

func (s *Store) StudentByEmail(ctx context.Context, email string) (domain.Student, error) {
	student := new(domain.Student)
	err := s.db.NewSelect().Model(student).Where("email = ?", email).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Student{}, domain.ErrStudentNotFound
	}
	if err != nil {
		return domain.Student{}, fmt.Errorf("load student: %w", err)
	}
	return *student, nil
}

func (s *Store) CreateTeacher(ctx context.Context, teacher *domain.Teacher) error {
	exists, err := s.db.NewSelect().
		Model((*domain.Teacher)(nil)).
		Where("email = ?", teacher.Email).
		Exists(ctx)
	if err != nil {
		return fmt.Errorf("check teacher email: %w", err)
	}
	if exists {
		return domain.ErrDuplicateEmail
	}
	if _, err := s.db.NewInsert().Model(teacher).Exec(ctx); err != nil {
		return fmt.Errorf("insert teacher: %w", err)
	}
	return nil
}

func (s *Store) TeacherByID(ctx context.Context, id int64) (domain.Teacher, error) {
	teacher := new(domain.Teacher)
	err := s.db.NewSelect().Model(teacher).Where("t.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Teacher{}, domain.ErrTeacherNotFound
	}
	if err != nil {
		return domain.Teacher{}, fmt.Errorf("load teacher: %w", err)
	}
	return *teacher, nil
}

func (s *Store) TeacherByEmail(ctx context.Context, email string) (domain.Teacher, error) {
	teacher := new(domain.Teacher)
	err := s.db.NewSelect().Model(teacher).Where("email = ?", email).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Teacher{}, domain.ErrTeacherNotFound
	}
	if err != nil {
		return domain.Teacher{}, fmt.Errorf("load teacher: %w", err)
	}
	return *teacher, nil
}
