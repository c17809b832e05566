package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/school"
)

type schoolRow struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type deptRow struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	SchoolID    string    `db:"school_id"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type schoolRepository struct {
	db *sqlx.DB
}

var _ school.Repository = (*schoolRepository)(nil) // interface compliance check

func NewSchoolRepository(db *sqlx.DB) *schoolRepository {
	return &schoolRepository{db: db}
}

func (repo schoolRepository) CreateSchool(ctx context.Context, sch school.School, exec ...core.DBExecutor) (school.School, error) {
	query := `
INSERT INTO school (id, name, description, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5)`
	_, err := getExec(repo.db, exec).ExecContext(ctx, query,
		sch.ID, sch.Name, sch.Description, sch.CreatedAt.UTC(), sch.UpdatedAt.UTC())
	if err != nil {
		return school.School{}, errors.Wrap(err, "inserting school")
	}
	return sch, nil
}

func (repo schoolRepository) QuerySchools(ctx context.Context, search string, page *core.Pagination, exec ...core.DBExecutor) ([]school.School, error) {
	qb := new(queryBuilder)
	if search != "" {
		pat := "%" + search + "%"
		qb.where("(id ILIKE ? OR name ILIKE ?)", pat, pat)
	}
	query := `SELECT id, name, description, created_at, updated_at FROM school` + qb.clause() +
		` ORDER BY id` + paginationClause(qb, page)

	var rows []schoolRow
	if err := sqlx.SelectContext(ctx, getExec(repo.db, exec), &rows, query, qb.args...); err != nil {
		return nil, errors.Wrap(err, "querying schools")
	}
	schools := make([]school.School, 0, len(rows))
	for _, r := range rows {
		schools = append(schools, school.School(r))
	}
	return schools, nil
}

func (repo schoolRepository) GetSchool(ctx context.Context, id string, exec ...core.DBExecutor) (school.School, error) {
	var r schoolRow
	query := `SELECT id, name, description, created_at, updated_at FROM school WHERE id = $1`
	if err := sqlx.GetContext(ctx, getExec(repo.db, exec), &r, query, id); err != nil {
		if err == sql.ErrNoRows {
			return school.School{}, school.ErrSchoolNotFound
		}
		return school.School{}, errors.Wrap(err, "getting school")
	}
	return school.School(r), nil
}

func (repo schoolRepository) UpdateSchool(ctx context.Context, sch school.School, exec ...core.DBExecutor) (school.School, error) {
	query := `UPDATE school SET name = $2, description = $3, updated_at = $4 WHERE id = $1`
	res, err := getExec(repo.db, exec).ExecContext(ctx, query, sch.ID, sch.Name, sch.Description, sch.UpdatedAt.UTC())
	if err != nil {
		return school.School{}, errors.Wrap(err, "updating school")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return school.School{}, school.ErrSchoolNotFound
	}
	return sch, nil
}

func (repo schoolRepository) DeleteSchool(ctx context.Context, id string, exec ...core.DBExecutor) error {
	if _, err := getExec(repo.db, exec).ExecContext(ctx, `DELETE FROM school WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting school")
	}
	return nil
}

func (repo schoolRepository) CreateDepartment(ctx context.Context, dept school.Department, exec ...core.DBExecutor) (school.Department, error) {
	query := `
INSERT INTO dept (id, name, description, school_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := getExec(repo.db, exec).ExecContext(ctx, query,
		dept.ID, dept.Name, dept.Description, dept.SchoolID, dept.CreatedAt.UTC(), dept.UpdatedAt.UTC())
	if err != nil {
		return school.Department{}, errors.Wrap(err, "inserting department")
	}
	return dept, nil
}

func (repo schoolRepository) QueryDepartments(ctx context.Context, filter *school.DeptFilter, page *core.Pagination, exec ...core.DBExecutor) ([]school.Department, error) {
	qb := new(queryBuilder)
	if filter != nil {
		if filter.Search != "" {
			pat := "%" + filter.Search + "%"
			qb.where("(id ILIKE ? OR name ILIKE ?)", pat, pat)
		}
		if filter.SchoolID != "" {
			qb.where("school_id = ?", filter.SchoolID)
		}
	}
	query := `SELECT id, name, description, school_id, created_at, updated_at FROM dept` + qb.clause() +
		` ORDER BY id` + paginationClause(qb, page)

	var rows []deptRow
	if err := sqlx.SelectContext(ctx, getExec(repo.db, exec), &rows, query, qb.args...); err != nil {
		return nil, errors.Wrap(err, "querying departments")
	}
	depts := make([]school.Department, 0, len(rows))
	for _, r := range rows {
		depts = append(depts, school.Department(r))
	}
	return depts, nil
}

func (repo schoolRepository) GetDepartment(ctx context.Context, id string, exec ...core.DBExecutor) (school.Department, error) {
	var r deptRow
	query := `SELECT id, name, description, school_id, created_at, updated_at FROM dept WHERE id = $1`
	if err := sqlx.GetContext(ctx, getExec(repo.db, exec), &r, query, id); err != nil {
		if err == sql.ErrNoRows {
			return school.Department{}, school.ErrDeptNotFound
		}
		return school.Department{}, errors.Wrap(err, "getting department")
	}
	return school.Department(r), nil
}

func (repo schoolRepository) UpdateDepartment(ctx context.Context, dept school.Department, exec ...core.DBExecutor) (school.Department, error) {
	query := `UPDATE dept SET name = $2, description = $3, school_id = $4, updated_at = $5 WHERE id = $1`
	res, err := getExec(repo.db, exec).ExecContext(ctx, query,
		dept.ID, dept.Name, dept.Description, dept.SchoolID, dept.UpdatedAt.UTC())
	if err != nil {
		return school.Department{}, errors.Wrap(err, "updating department")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return school.Department{}, school.ErrDeptNotFound
	}
	return dept, nil
}

func (repo schoolRepository) DeleteDepartment(ctx context.Context, id string, exec ...core.DBExecutor) error {
	if _, err := getExec(repo.db, exec).ExecContext(ctx, `DELETE FROM dept WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting department")
	}
	return nil
}
