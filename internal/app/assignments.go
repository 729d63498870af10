package app

import (
	"context"
	"time"

	"eduplay-service/internal/domain"
)

// AssignmentStore is the slice of persistence the assignment flows need.
type AssignmentStore interface {
	CreateAssignment(ctx context.Context, a *domain.Assignment) error
	AssignmentByID(ctx context.Context, id int64) (domain.Assignment, error)
	ListAssignmentsForGrade(ctx context.Context, grade int) ([]domain.Assignment, error)
	CompletionsForStudent(ctx context.Context, studentID int64) (map[int64]bool, error)
	CompletionExists(ctx context.Context, assignmentID, studentID int64) (bool, error)
	InsertCompletion(ctx context.Context, c *domain.AssignmentCompletion) error
}

// AssignmentDraft is the input for authoring an assignment.
type AssignmentDraft struct {
	Title       string
	Description string
	Subject     string
	GradeLevel  int
	DueDate     time.Time
}

// AssignmentOverview pairs an assignment with the student's completion
// state.
type AssignmentOverview struct {
	Assignment domain.Assignment `json:"assignment"`
	Completed  bool              `json:"completed"`
}

// AssignmentService covers assignment authoring and completion tracking.
type AssignmentService struct {
	store AssignmentStore
	now   func() time.Time
}

func NewAssignmentService(store AssignmentStore) *AssignmentService {
	return &AssignmentService{store: store, now: time.Now}
}

// Create stores a new assignment.
func (s *AssignmentService) Create(ctx context.Context, teacherID int64, draft AssignmentDraft) (domain.Assignment, error) {
	a := domain.Assignment{
		TeacherID:   teacherID,
		Title:       draft.Title,
		Description: draft.Description,
		Subject:     draft.Subject,
		GradeLevel:  draft.GradeLevel,
		DueDate:     draft.DueDate,
		CreatedAt:   s.now(),
	}
	if err := s.store.CreateAssignment(ctx, &a); err != nil {
		return domain.Assignment{}, err
	}
	return a, nil
}

// ListForStudent returns the assignments visible to the student's grade
// with their completion flags.
func (s *AssignmentService) ListForStudent(ctx context.Context, studentID int64, grade int) ([]AssignmentOverview, error) {
	assignments, err := s.store.ListAssignmentsForGrade(ctx, grade)
	if err != nil {
		return nil, err
	}
	done, err := s.store.CompletionsForStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	overviews := make([]AssignmentOverview, 0, len(assignments))
	for _, a := range assignments {
		overviews = append(overviews, AssignmentOverview{Assignment: a, Completed: done[a.ID]})
	}
	return overviews, nil
}

// Complete marks the assignment done for the student. Completing an
// already-completed assignment reports already=true and changes nothing.
// An assignment outside the student's grade does not exist for them.
func (s *AssignmentService) Complete(ctx context.Context, studentID int64, grade int, assignmentID int64) (already bool, err error) {
	a, err := s.store.AssignmentByID(ctx, assignmentID)
	if err != nil {
		return false, err
	}
	if !a.VisibleTo(grade) {
		return false, domain.ErrAssignmentNotFound
	}
	exists, err := s.store.CompletionExists(ctx, assignmentID, studentID)
	if err != nil {
		return false, err
	}
	if exists {
		return true, nil
	}
	completion := domain.AssignmentCompletion{
		AssignmentID: assignmentID,
		StudentID:    studentID,
		CompletedAt:  s.now(),
	}
	if err := s.store.InsertCompletion(ctx, &completion); err != nil {
		return false, err
	}
	return false, nil
}
