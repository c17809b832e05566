package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/user"
)

const userColumns = `id, first_name, last_name, email, role, is_active, dept_id, level, password_hash, created_at, updated_at, last_login`

type userRow struct {
	ID           string      `db:"id"`
	FirstName    string      `db:"first_name"`
	LastName     string      `db:"last_name"`
	Email        string      `db:"email"`
	Role         string      `db:"role"`
	IsActive     null.Bool   `db:"is_active"`
	DeptID       null.String `db:"dept_id"`
	Level        null.Int    `db:"level"`
	PasswordHash null.Bytes  `db:"password_hash"`
	CreatedAt    null.Time   `db:"created_at"`
	UpdatedAt    null.Time   `db:"updated_at"`
	LastLogin    null.Time   `db:"last_login"`
}

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

func (repo userRepository) toRow(usr user.User) userRow {
	return userRow{
		ID:           usr.ID,
		FirstName:    usr.FirstName,
		LastName:     usr.LastName,
		Email:        usr.Email,
		Role:         usr.Role,
		IsActive:     null.BoolFromPtr(usr.IsActive),
		DeptID:       null.NewString(usr.DeptID, usr.DeptID != ""),
		Level:        null.NewInt(usr.Level, usr.Level != 0),
		PasswordHash: null.BytesFrom(usr.PasswordHash),
		CreatedAt:    null.NewTime(usr.CreatedAt.UTC(), !usr.CreatedAt.IsZero()),
		UpdatedAt:    null.NewTime(usr.UpdatedAt.UTC(), !usr.UpdatedAt.IsZero()),
		LastLogin:    null.NewTime(usr.LastLogin.UTC(), !usr.LastLogin.IsZero()),
	}
}

func (repo userRepository) fromRow(r userRow) user.User {
	return user.User{
		ID:           r.ID,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		Email:        r.Email,
		Role:         r.Role,
		IsActive:     r.IsActive.Ptr(),
		DeptID:       r.DeptID.String,
		Level:        r.Level.Int,
		PasswordHash: r.PasswordHash.Bytes,
		CreatedAt:    r.CreatedAt.Time,
		UpdatedAt:    r.UpdatedAt.Time,
		LastLogin:    r.LastLogin.Time,
	}
}

func (repo userRepository) fromRows(rows []userRow) []user.User {
	users := make([]user.User, 0, len(rows))
	for _, r := range rows {
		users = append(users, repo.fromRow(r))
	}
	return users
}

// trapNoRowsErr maps psql "no rows" err to user.ErrNotFound
func (repo userRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo userRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedUsers []user.User, exec ...core.DBExecutor) error {
	qb := new(queryBuilder)
	qb.where("LOWER(email) = LOWER(?)", email)
	for _, u := range excludedUsers {
		qb.where("id <> ?", u.ID)
	}

	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM "user"` + qb.clause() + `)`
	if err := sqlx.GetContext(ctx, getExec(repo.db, exec), &exists, query, qb.args...); err != nil {
		return errors.Wrap(err, "checking user uniqueness")
	}
	if exists {
		return user.ErrUserExists
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	usr.ID = uuid.New().String()
	r := repo.toRow(usr)
	query := `
INSERT INTO "user" (` + userColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := getExec(repo.db, exec).ExecContext(ctx, query,
		r.ID, r.FirstName, r.LastName, r.Email, r.Role, r.IsActive, r.DeptID, r.Level, r.PasswordHash,
		r.CreatedAt, r.UpdatedAt, r.LastLogin,
	)
	if err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

// QueryUsers lists users without their lecturer assignments; GetUser loads those.
func (repo userRepository) QueryUsers(
	ctx context.Context,
	filter *user.QueryFilter,
	ordering []core.DBOrdering,
	page *core.Pagination,
	exec ...core.DBExecutor,
) ([]user.User, error) {
	qb := new(queryBuilder)
	if filter != nil {
		if filter.Search != "" {
			pat := "%" + filter.Search + "%"
			qb.where("(first_name ILIKE ? OR last_name ILIKE ? OR email ILIKE ?)", pat, pat, pat)
		}
		if filter.Role != "" {
			qb.where("role = ?", filter.Role)
		}
		if filter.DeptID != "" {
			qb.where("dept_id = ?", filter.DeptID)
		}
		if filter.IsActive != nil {
			qb.where("is_active = ?", *filter.IsActive)
		}
		if !filter.CreatedFrom.IsZero() {
			qb.where("created_at >= ?", filter.CreatedFrom.UTC())
		}
		if !filter.CreatedTo.IsZero() {
			qb.where("created_at <= ?", filter.CreatedTo.UTC())
		}
	}

	query := `SELECT ` + userColumns + ` FROM "user"` + qb.clause() +
		orderingClause(ordering, "created_at DESC") + paginationClause(qb, page)

	var rows []userRow
	if err := sqlx.SelectContext(ctx, getExec(repo.db, exec), &rows, query, qb.args...); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	return repo.fromRows(rows), nil
}

func (repo userRepository) GetUser(ctx context.Context, filter user.GetFilter, exec ...core.DBExecutor) (user.User, error) {
	qb := new(queryBuilder)
	switch {
	case filter.ID != "":
		qb.where("id = ?", filter.ID)
	case filter.Email != "":
		qb.where("LOWER(email) = LOWER(?)", filter.Email)
	default:
		return user.User{}, user.ErrNotFound
	}

	ext := getExec(repo.db, exec)
	var r userRow
	query := `SELECT ` + userColumns + ` FROM "user"` + qb.clause()
	if err := sqlx.GetContext(ctx, ext, &r, query, qb.args...); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "getting user")
	}

	usr := repo.fromRow(r)
	if usr.Role == user.RoleLecturer {
		if err := repo.loadAssignments(ctx, ext, &usr); err != nil {
			return user.User{}, err
		}
	}
	return usr, nil
}

func (repo userRepository) loadAssignments(ctx context.Context, ext sqlx.ExtContext, usr *user.User) error {
	if err := sqlx.SelectContext(ctx, ext, &usr.DeptIDs,
		`SELECT dept_id FROM lecturer_dept WHERE user_id = $1 ORDER BY dept_id`, usr.ID); err != nil {
		return errors.Wrap(err, "loading lecturer departments")
	}
	if err := sqlx.SelectContext(ctx, ext, &usr.CourseCodes,
		`SELECT course_code FROM lecturer_course WHERE user_id = $1 ORDER BY course_code`, usr.ID); err != nil {
		return errors.Wrap(err, "loading lecturer courses")
	}
	return nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	r := repo.toRow(usr)
	query := `
UPDATE "user"
SET first_name = $2, last_name = $3, email = $4, role = $5, is_active = $6, dept_id = $7, level = $8,
    password_hash = $9, updated_at = $10, last_login = $11
WHERE id = $1`
	res, err := getExec(repo.db, exec).ExecContext(ctx, query,
		r.ID, r.FirstName, r.LastName, r.Email, r.Role, r.IsActive, r.DeptID, r.Level, r.PasswordHash,
		r.UpdatedAt, r.LastLogin,
	)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}

func (repo userRepository) UpdateOrCreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	existing, err := repo.GetUser(ctx, user.GetFilter{Email: usr.Email}, exec...)
	if err != nil {
		if err == user.ErrNotFound {
			return repo.CreateUser(ctx, usr, exec...)
		}
		return user.User{}, err
	}
	usr.ID = existing.ID
	usr.CreatedAt = existing.CreatedAt
	return repo.UpdateUser(ctx, usr, exec...)
}

func (repo userRepository) SetLecturerAssignments(ctx context.Context, userID string, deptIDs, courseCodes []string, exec ...core.DBExecutor) error {
	ext := getExec(repo.db, exec)

	if _, err := ext.ExecContext(ctx, `DELETE FROM lecturer_dept WHERE user_id = $1`, userID); err != nil {
		return errors.Wrap(err, "clearing lecturer departments")
	}
	for _, deptID := range deptIDs {
		if _, err := ext.ExecContext(ctx,
			`INSERT INTO lecturer_dept (user_id, dept_id) VALUES ($1, $2)`, userID, deptID); err != nil {
			return errors.Wrap(err, "assigning lecturer department")
		}
	}

	if _, err := ext.ExecContext(ctx, `DELETE FROM lecturer_course WHERE user_id = $1`, userID); err != nil {
		return errors.Wrap(err, "clearing lecturer courses")
	}
	for _, code := range courseCodes {
		if _, err := ext.ExecContext(ctx,
			`INSERT INTO lecturer_course (user_id, course_code) VALUES ($1, $2)`, userID, code); err != nil {
			return errors.Wrap(err, "assigning lecturer course")
		}
	}
	return nil
}

func (repo userRepository) DeleteUsersByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query, args, err := sqlx.In(`DELETE FROM "user" WHERE id IN (?)`, ids)
	if err != nil {
		return 0, errors.Wrap(err, "deleting users")
	}
	ext := getExec(repo.db, exec)
	res, err := ext.ExecContext(ctx, ext.Rebind(query), args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting users")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "deleting users")
	}
	return int(n), nil
}
