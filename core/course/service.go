package course

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/academic"
	"github.com/trezcool/academia/core/school"
)

var (
	// errors
	ErrNotFound          = errors.New("course not found")
	ErrCourseExists      = errors.New("a course with this code already exists")
	ErrAlreadyRegistered = errors.New("course already registered for")
	ErrSemesterMismatch  = errors.New("semesters don't match")
)

type (
	Repository interface {
		CreateCourse(ctx context.Context, crs Course, exec ...core.DBExecutor) (Course, error)
		// QueryCourses applies AND operation on available QueryFilter fields, ordered by code.
		QueryCourses(ctx context.Context, filter *QueryFilter, page *core.Pagination, exec ...core.DBExecutor) ([]Course, error)
		GetCourse(ctx context.Context, code string, exec ...core.DBExecutor) (Course, error)
		UpdateCourse(ctx context.Context, crs Course, exec ...core.DBExecutor) (Course, error)
		DeleteCourse(ctx context.Context, code string, exec ...core.DBExecutor) error

		RegisterStudent(ctx context.Context, studentID, code string, exec ...core.DBExecutor) error
		IsRegistered(ctx context.Context, studentID, code string, exec ...core.DBExecutor) (bool, error)
		// StudentCourses lists a student's registered courses for a level and semester, ordered by code.
		StudentCourses(ctx context.Context, studentID string, level, semesterID int, exec ...core.DBExecutor) ([]Course, error)
		// LecturerCourses lists the courses assigned to a lecturer, ordered by name.
		LecturerCourses(ctx context.Context, lecturerID, search string, page *core.Pagination, exec ...core.DBExecutor) ([]Course, error)
	}

	Service interface {
		Create(ctx context.Context, nc NewCourse) (Course, error)
		Query(ctx context.Context, filter *QueryFilter, page *core.Pagination) ([]Course, error)
		GetByCode(ctx context.Context, code string) (Course, error)
		Update(ctx context.Context, code string, uc UpdateCourse) (Course, error)
		Delete(ctx context.Context, code string) error

		Register(ctx context.Context, studentID string, semesterID int, code string) error
		StudentCourses(ctx context.Context, studentID string, level, semesterID int) ([]Course, error)
		LecturerCourses(ctx context.Context, lecturerID, search string, page *core.Pagination) ([]Course, error)
	}

	service struct {
		repo     Repository
		schRepo  school.Repository
		acadRepo academic.Repository
	}
)

var _ Service = (*service)(nil) // interface compliance check

func NewService(repo Repository, schRepo school.Repository, acadRepo academic.Repository) Service {
	return &service{
		repo:     repo,
		schRepo:  schRepo,
		acadRepo: acadRepo,
	}
}

func (svc *service) Create(ctx context.Context, nc NewCourse) (Course, error) {
	if _, err := svc.repo.GetCourse(ctx, nc.Code); err == nil {
		return Course{}, core.NewConflictError(ErrCourseExists)
	} else if errors.Cause(err) != ErrNotFound {
		return Course{}, err
	}

	level := LevelFromCode(nc.Code)
	if !isValidLevel(level) {
		return Course{}, core.NewValidationError(nil, core.FieldError{Field: "code", Error: "code does not yield a valid level"})
	}
	if _, err := svc.schRepo.GetDepartment(ctx, nc.DeptID); err != nil {
		if errors.Cause(err) == school.ErrDeptNotFound {
			return Course{}, core.NewNotFoundError(err)
		}
		return Course{}, err
	}
	if _, err := svc.acadRepo.GetSemester(ctx, nc.SemesterID); err != nil {
		if errors.Cause(err) == academic.ErrSemesterNotFound {
			return Course{}, core.NewNotFoundError(err)
		}
		return Course{}, err
	}

	now := time.Now().UTC()
	return svc.repo.CreateCourse(ctx, Course{
		Code:        nc.Code,
		Name:        nc.Name,
		Description: nc.Description,
		Unit:        nc.Unit,
		Level:       level,
		DeptID:      nc.DeptID,
		SemesterID:  nc.SemesterID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, page *core.Pagination) ([]Course, error) {
	return svc.repo.QueryCourses(ctx, filter, page)
}

func (svc *service) GetByCode(ctx context.Context, code string) (Course, error) {
	crs, err := svc.repo.GetCourse(ctx, code)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Course{}, core.NewNotFoundError(err)
		}
		return Course{}, err
	}
	return crs, nil
}

func (svc *service) Update(ctx context.Context, code string, uc UpdateCourse) (Course, error) {
	crs, err := svc.GetByCode(ctx, code)
	if err != nil {
		return Course{}, err
	}
	if uc.DeptID != crs.DeptID {
		if _, err := svc.schRepo.GetDepartment(ctx, uc.DeptID); err != nil {
			if errors.Cause(err) == school.ErrDeptNotFound {
				return Course{}, core.NewNotFoundError(err)
			}
			return Course{}, err
		}
	}
	crs.Name = uc.Name
	crs.Description = uc.Description
	crs.Unit = uc.Unit
	crs.Level = uc.Level
	crs.DeptID = uc.DeptID
	crs.SemesterID = uc.SemesterID
	crs.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateCourse(ctx, crs)
}

func (svc *service) Delete(ctx context.Context, code string) error {
	if _, err := svc.GetByCode(ctx, code); err != nil {
		return err
	}
	return svc.repo.DeleteCourse(ctx, code)
}

// Register enrolls a student in a course for the given semester.
func (svc *service) Register(ctx context.Context, studentID string, semesterID int, code string) error {
	crs, err := svc.GetByCode(ctx, code)
	if err != nil {
		return err
	}
	if crs.SemesterID != semesterID {
		return core.NewInvalidInputError(ErrSemesterMismatch)
	}

	registered, err := svc.repo.IsRegistered(ctx, studentID, code)
	if err != nil {
		return err
	}
	if registered {
		return core.NewConflictError(ErrAlreadyRegistered)
	}
	return svc.repo.RegisterStudent(ctx, studentID, code)
}

func (svc *service) StudentCourses(ctx context.Context, studentID string, level, semesterID int) ([]Course, error) {
	return svc.repo.StudentCourses(ctx, studentID, level, semesterID)
}

func (svc *service) LecturerCourses(ctx context.Context, lecturerID, search string, page *core.Pagination) ([]Course, error) {
	return svc.repo.LecturerCourses(ctx, lecturerID, core.CleanString(search), page)
}

func isValidLevel(level int) bool {
	switch level {
	case 100, 200, 300, 400, 500, 600:
		return true
	}
	return false
}
