package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/academic"
)

type sessionRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type academicRepository struct {
	db *sqlx.DB
}

var _ academic.Repository = (*academicRepository)(nil) // interface compliance check

func NewAcademicRepository(db *sqlx.DB) *academicRepository {
	return &academicRepository{db: db}
}

func (repo academicRepository) fromRow(r sessionRow) academic.Session {
	return academic.Session{
		ID:        r.ID,
		Name:      r.Name,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func (repo academicRepository) CreateSession(ctx context.Context, sess academic.Session, exec ...core.DBExecutor) (academic.Session, error) {
	query := `INSERT INTO session (id, name, created_at, updated_at) VALUES ($1, $2, $3, $4)`
	_, err := getExec(repo.db, exec).ExecContext(ctx, query, sess.ID, sess.Name, sess.CreatedAt.UTC(), sess.UpdatedAt.UTC())
	if err != nil {
		return academic.Session{}, errors.Wrap(err, "inserting session")
	}
	return sess, nil
}

func (repo academicRepository) QuerySessions(ctx context.Context, page *core.Pagination, exec ...core.DBExecutor) ([]academic.Session, error) {
	qb := new(queryBuilder)
	query := `SELECT id, name, created_at, updated_at FROM session ORDER BY id DESC` + paginationClause(qb, page)

	var rows []sessionRow
	if err := sqlx.SelectContext(ctx, getExec(repo.db, exec), &rows, query, qb.args...); err != nil {
		return nil, errors.Wrap(err, "querying sessions")
	}
	sessions := make([]academic.Session, 0, len(rows))
	for _, r := range rows {
		sessions = append(sessions, repo.fromRow(r))
	}
	return sessions, nil
}

func (repo academicRepository) GetSession(ctx context.Context, id string, exec ...core.DBExecutor) (academic.Session, error) {
	var r sessionRow
	query := `SELECT id, name, created_at, updated_at FROM session WHERE id = $1`
	if err := sqlx.GetContext(ctx, getExec(repo.db, exec), &r, query, id); err != nil {
		if err == sql.ErrNoRows {
			return academic.Session{}, academic.ErrSessionNotFound
		}
		return academic.Session{}, errors.Wrap(err, "getting session")
	}
	return repo.fromRow(r), nil
}

func (repo academicRepository) DeleteSession(ctx context.Context, id string, exec ...core.DBExecutor) error {
	if _, err := getExec(repo.db, exec).ExecContext(ctx, `DELETE FROM session WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting session")
	}
	return nil
}

func (repo academicRepository) CreateSemester(ctx context.Context, sem academic.Semester, exec ...core.DBExecutor) (academic.Semester, error) {
	query := `INSERT INTO semester (id, name) VALUES ($1, $2)`
	if _, err := getExec(repo.db, exec).ExecContext(ctx, query, sem.ID, sem.Name); err != nil {
		return academic.Semester{}, errors.Wrap(err, "inserting semester")
	}
	return sem, nil
}

func (repo academicRepository) QuerySemesters(ctx context.Context, exec ...core.DBExecutor) ([]academic.Semester, error) {
	var semesters []academic.Semester
	query := `SELECT id, name FROM semester ORDER BY id`
	rows, err := getExec(repo.db, exec).QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "querying semesters")
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var sem academic.Semester
		if err = rows.Scan(&sem.ID, &sem.Name); err != nil {
			return nil, errors.Wrap(err, "querying semesters")
		}
		semesters = append(semesters, sem)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "querying semesters")
	}
	return semesters, nil
}

func (repo academicRepository) GetSemester(ctx context.Context, id int, exec ...core.DBExecutor) (academic.Semester, error) {
	var sem academic.Semester
	query := `SELECT id, name FROM semester WHERE id = $1`
	if err := getExec(repo.db, exec).QueryRowxContext(ctx, query, id).Scan(&sem.ID, &sem.Name); err != nil {
		if err == sql.ErrNoRows {
			return academic.Semester{}, academic.ErrSemesterNotFound
		}
		return academic.Semester{}, errors.Wrap(err, "getting semester")
	}
	return sem, nil
}

func (repo academicRepository) DeleteSemester(ctx context.Context, id int, exec ...core.DBExecutor) error {
	if _, err := getExec(repo.db, exec).ExecContext(ctx, `DELETE FROM semester WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting semester")
	}
	return nil
}
