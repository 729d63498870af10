package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"eduplay-service/internal/domain"
)

func (s *Store) CreateAssignment(ctx context.Context, a *domain.Assignment) error {
	if _, err := s.db.NewInsert().Model(a).Exec(ctx); err != nil {
		return fmt.Errorf("insert assignment: %w", err)
	}
	return nil
}

func (s *Store) AssignmentByID(ctx context.Context, id int64) (domain.Assignment, error) {
	a := new(domain.Assignment)
	err := s.db.NewSelect().Model(a).Where("a.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Assignment{}, domain.ErrAssignmentNotFound
	}
	if err != nil {
		return domain.Assignment{}, fmt.Errorf("load assignment: %w", err)
	}
	return *a, nil
}

func (s *Store) ListAssignmentsForGrade(ctx context.Context, grade int) ([]domain.Assignment, error) {
	var assignments []domain.Assignment
	err := s.db.NewSelect().
		Model(&assignments).
		Where("grade_level = ? OR grade_level = 0", grade).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return assignments, nil
}

// CompletionsForStudent returns the set of assignment ids the student has
// completed.
func (s *Store) CompletionsForStudent(ctx context.Context, studentID int64) (map[int64]bool, error) {
	var completions []domain.AssignmentCompletion
	err := s.db.NewSelect().
		Model(&completions).
		Where("student_id = ?", studentID).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}
	done := make(map[int64]bool, len(completions))
	for _, c := range completions {
		done[c.AssignmentID] = true
	}
	return done, nil
}

func (s *Store) CompletionExists(ctx context.Context, assignmentID, studentID int64) (bool, error) {
	exists, err := s.db.NewSelect().
		Model((*domain.AssignmentCompletion)(nil)).
		Where("assignment_id = ?", assignmentID).
		Where("student_id = ?", studentID).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("check completion: %w", err)
	}
	return exists, nil
}

func (s *Store) InsertCompletion(ctx context.Context, c *domain.AssignmentCompletion) error {
	if _, err := s.db.NewInsert().Model(c).Exec(ctx); err != nil {
		return fmt.Errorf("insert completion: %w", err)
	}
	return nil
}
