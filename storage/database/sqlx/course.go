package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/course"
)

const courseColumns = `code, name, description, unit, level, dept_id, semester_id, created_at, updated_at`

type courseRow struct {
	Code        string    `db:"code"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	Unit        int       `db:"unit"`
	Level       int       `db:"level"`
	DeptID      string    `db:"dept_id"`
	SemesterID  int       `db:"semester_id"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type courseRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *sqlx.DB) *courseRepository {
	return &courseRepository{db: db}
}

func (repo courseRepository) fromRows(rows []courseRow) []course.Course {
	courses := make([]course.Course, 0, len(rows))
	for _, r := range rows {
		courses = append(courses, course.Course(r))
	}
	return courses
}

func (repo courseRepository) CreateCourse(ctx context.Context, crs course.Course, exec ...core.DBExecutor) (course.Course, error) {
	query := `
INSERT INTO course (` + courseColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := getExec(repo.db, exec).ExecContext(ctx, query,
		crs.Code, crs.Name, crs.Description, crs.Unit, crs.Level, crs.DeptID, crs.SemesterID,
		crs.CreatedAt.UTC(), crs.UpdatedAt.UTC(),
	)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "inserting course")
	}
	return crs, nil
}

func (repo courseRepository) QueryCourses(ctx context.Context, filter *course.QueryFilter, page *core.Pagination, exec ...core.DBExecutor) ([]course.Course, error) {
	qb := new(queryBuilder)
	if filter != nil {
		if filter.Search != "" {
			qb.where("name ILIKE ?", "%"+filter.Search+"%")
		}
		if filter.Level != 0 {
			qb.where("level = ?", filter.Level)
		}
		if filter.DeptID != "" {
			qb.where("dept_id = ?", filter.DeptID)
		}
		if filter.Unit != 0 {
			qb.where("unit = ?", filter.Unit)
		}
		if filter.SemesterID != 0 {
			qb.where("semester_id = ?", filter.SemesterID)
		}
	}
	query := `SELECT ` + courseColumns + ` FROM course` + qb.clause() +
		` ORDER BY code` + paginationClause(qb, page)

	var rows []courseRow
	if err := sqlx.SelectContext(ctx, getExec(repo.db, exec), &rows, query, qb.args...); err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	return repo.fromRows(rows), nil
}

func (repo courseRepository) GetCourse(ctx context.Context, code string, exec ...core.DBExecutor) (course.Course, error) {
	var r courseRow
	query := `SELECT ` + courseColumns + ` FROM course WHERE code = $1`
	if err := sqlx.GetContext(ctx, getExec(repo.db, exec), &r, query, code); err != nil {
		if err == sql.ErrNoRows {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, errors.Wrap(err, "getting course")
	}
	return course.Course(r), nil
}

func (repo courseRepository) UpdateCourse(ctx context.Context, crs course.Course, exec ...core.DBExecutor) (course.Course, error) {
	query := `
UPDATE course
SET name = $2, description = $3, unit = $4, level = $5, dept_id = $6, semester_id = $7, updated_at = $8
WHERE code = $1`
	res, err := getExec(repo.db, exec).ExecContext(ctx, query,
		crs.Code, crs.Name, crs.Description, crs.Unit, crs.Level, crs.DeptID, crs.SemesterID, crs.UpdatedAt.UTC())
	if err != nil {
		return course.Course{}, errors.Wrap(err, "updating course")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return course.Course{}, course.ErrNotFound
	}
	return crs, nil
}

func (repo courseRepository) DeleteCourse(ctx context.Context, code string, exec ...core.DBExecutor) error {
	if _, err := getExec(repo.db, exec).ExecContext(ctx, `DELETE FROM course WHERE code = $1`, code); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return nil
}

func (repo courseRepository) RegisterStudent(ctx context.Context, studentID, code string, exec ...core.DBExecutor) error {
	query := `INSERT INTO registration (student_id, course_code) VALUES ($1, $2)`
	if _, err := getExec(repo.db, exec).ExecContext(ctx, query, studentID, code); err != nil {
		return errors.Wrap(err, "registering student")
	}
	return nil
}

func (repo courseRepository) IsRegistered(ctx context.Context, studentID, code string, exec ...core.DBExecutor) (bool, error) {
	var registered bool
	query := `SELECT EXISTS (SELECT 1 FROM registration WHERE student_id = $1 AND course_code = $2)`
	if err := sqlx.GetContext(ctx, getExec(repo.db, exec), &registered, query, studentID, code); err != nil {
		return false, errors.Wrap(err, "checking registration")
	}
	return registered, nil
}

func (repo courseRepository) StudentCourses(ctx context.Context, studentID string, level, semesterID int, exec ...core.DBExecutor) ([]course.Course, error) {
	qb := new(queryBuilder)
	qb.where("r.student_id = ?", studentID)
	if level != 0 {
		qb.where("c.level = ?", level)
	}
	if semesterID != 0 {
		qb.where("c.semester_id = ?", semesterID)
	}
	query := `
SELECT c.code, c.name, c.description, c.unit, c.level, c.dept_id, c.semester_id, c.created_at, c.updated_at
FROM course c
         JOIN registration r ON r.course_code = c.code` + qb.clause() + `
ORDER BY c.code`

	var rows []courseRow
	if err := sqlx.SelectContext(ctx, getExec(repo.db, exec), &rows, query, qb.args...); err != nil {
		return nil, errors.Wrap(err, "querying student courses")
	}
	return repo.fromRows(rows), nil
}

func (repo courseRepository) LecturerCourses(ctx context.Context, lecturerID, search string, page *core.Pagination, exec ...core.DBExecutor) ([]course.Course, error) {
	qb := new(queryBuilder)
	qb.where("lc.user_id = ?", lecturerID)
	if search != "" {
		qb.where("c.name ILIKE ?", "%"+search+"%")
	}
	query := `
SELECT c.code, c.name, c.description, c.unit, c.level, c.dept_id, c.semester_id, c.created_at, c.updated_at
FROM course c
         JOIN lecturer_course lc ON lc.course_code = c.code` + qb.clause() + `
ORDER BY c.name` + paginationClause(qb, page)

	var rows []courseRow
	if err := sqlx.SelectContext(ctx, getExec(repo.db, exec), &rows, query, qb.args...); err != nil {
		return nil, errors.Wrap(err, "querying lecturer courses")
	}
	return repo.fromRows(rows), nil
}
