package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/grade"
)

const (
	bandColumns  = `id, letter, lower_limit, upper_limit, grade_point, created_at, updated_at`
	scoreColumns = `id, student_id, course_code, session_id, semester_id, lecturer_id, value, band_id, created_at, updated_at`
)

type bandRow struct {
	ID         string    `db:"id"`
	Letter     string    `db:"letter"`
	LowerLimit int       `db:"lower_limit"`
	UpperLimit int       `db:"upper_limit"`
	GradePoint float64   `db:"grade_point"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

type scoreRow struct {
	ID         string      `db:"id"`
	StudentID  string      `db:"student_id"`
	CourseCode string      `db:"course_code"`
	SessionID  string      `db:"session_id"`
	SemesterID int         `db:"semester_id"`
	LecturerID string      `db:"lecturer_id"`
	Value      int         `db:"value"`
	BandID     null.String `db:"band_id"`
	CreatedAt  time.Time   `db:"created_at"`
	UpdatedAt  time.Time   `db:"updated_at"`
}

type studentScoreRow struct {
	scoreRow
	CourseUnit int          `db:"course_unit"`
	Letter     null.String  `db:"letter"`
	GradePoint null.Float64 `db:"grade_point"`
}

type gradeRepository struct {
	db *sqlx.DB
}

var _ grade.Repository = (*gradeRepository)(nil) // interface compliance check

func NewGradeRepository(db *sqlx.DB) *gradeRepository {
	return &gradeRepository{db: db}
}

func (repo gradeRepository) fromScoreRow(r scoreRow) grade.Score {
	return grade.Score{
		ID:         r.ID,
		StudentID:  r.StudentID,
		CourseCode: r.CourseCode,
		SessionID:  r.SessionID,
		SemesterID: r.SemesterID,
		LecturerID: r.LecturerID,
		Value:      r.Value,
		BandID:     r.BandID.String,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

func (repo gradeRepository) CreateBand(ctx context.Context, b grade.Band, exec ...core.DBExecutor) (grade.Band, error) {
	b.ID = uuid.New().String()
	query := `
INSERT INTO grade_band (` + bandColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := getExec(repo.db, exec).ExecContext(ctx, query,
		b.ID, b.Letter, b.LowerLimit, b.UpperLimit, b.GradePoint, b.CreatedAt.UTC(), b.UpdatedAt.UTC())
	if err != nil {
		return grade.Band{}, errors.Wrap(err, "inserting grade band")
	}
	return b, nil
}

func (repo gradeRepository) QueryBands(ctx context.Context, exec ...core.DBExecutor) ([]grade.Band, error) {
	query := `SELECT ` + bandColumns + ` FROM grade_band ORDER BY lower_limit`
	var rows []bandRow
	if err := sqlx.SelectContext(ctx, getExec(repo.db, exec), &rows, query); err != nil {
		return nil, errors.Wrap(err, "querying grade bands")
	}
	bands := make([]grade.Band, 0, len(rows))
	for _, r := range rows {
		bands = append(bands, grade.Band(r))
	}
	return bands, nil
}

func (repo gradeRepository) GetBand(ctx context.Context, id string, exec ...core.DBExecutor) (grade.Band, error) {
	var r bandRow
	query := `SELECT ` + bandColumns + ` FROM grade_band WHERE id = $1`
	if err := sqlx.GetContext(ctx, getExec(repo.db, exec), &r, query, id); err != nil {
		if err == sql.ErrNoRows {
			return grade.Band{}, grade.ErrBandNotFound
		}
		return grade.Band{}, errors.Wrap(err, "getting grade band")
	}
	return grade.Band(r), nil
}

func (repo gradeRepository) BandExists(ctx context.Context, letter string, lower, upper int, point float64, exec ...core.DBExecutor) (bool, error) {
	var exists bool
	query := `
SELECT EXISTS (
    SELECT 1 FROM grade_band
    WHERE letter = $1 AND lower_limit = $2 AND upper_limit = $3 AND grade_point = $4
)`
	if err := sqlx.GetContext(ctx, getExec(repo.db, exec), &exists, query, letter, lower, upper, point); err != nil {
		return false, errors.Wrap(err, "checking grade band")
	}
	return exists, nil
}

func (repo gradeRepository) UpdateBand(ctx context.Context, b grade.Band, exec ...core.DBExecutor) (grade.Band, error) {
	query := `
UPDATE grade_band
SET letter = $2, lower_limit = $3, upper_limit = $4, grade_point = $5, updated_at = $6
WHERE id = $1`
	res, err := getExec(repo.db, exec).ExecContext(ctx, query,
		b.ID, b.Letter, b.LowerLimit, b.UpperLimit, b.GradePoint, b.UpdatedAt.UTC())
	if err != nil {
		return grade.Band{}, errors.Wrap(err, "updating grade band")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return grade.Band{}, grade.ErrBandNotFound
	}
	return b, nil
}

func (repo gradeRepository) DeleteBand(ctx context.Context, id string, exec ...core.DBExecutor) error {
	if _, err := getExec(repo.db, exec).ExecContext(ctx, `DELETE FROM grade_band WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting grade band")
	}
	return nil
}

func (repo gradeRepository) CreateScore(ctx context.Context, sc grade.Score, exec ...core.DBExecutor) (grade.Score, error) {
	sc.ID = uuid.New().String()
	query := `
INSERT INTO score (` + scoreColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := getExec(repo.db, exec).ExecContext(ctx, query,
		sc.ID, sc.StudentID, sc.CourseCode, sc.SessionID, sc.SemesterID, sc.LecturerID, sc.Value,
		null.NewString(sc.BandID, sc.BandID != ""), sc.CreatedAt.UTC(), sc.UpdatedAt.UTC(),
	)
	if err != nil {
		return grade.Score{}, errors.Wrap(err, "inserting score")
	}
	return sc, nil
}

func (repo gradeRepository) GetScore(ctx context.Context, filter grade.ScoreFilter, exec ...core.DBExecutor) (grade.Score, error) {
	qb := new(queryBuilder)
	if filter.StudentID != "" {
		qb.where("student_id = ?", filter.StudentID)
	}
	if filter.CourseCode != "" {
		qb.where("course_code = ?", filter.CourseCode)
	}
	if filter.SessionID != "" {
		qb.where("session_id = ?", filter.SessionID)
	}
	if filter.SemesterID != 0 {
		qb.where("semester_id = ?", filter.SemesterID)
	}
	if len(qb.conds) == 0 {
		return grade.Score{}, grade.ErrScoreNotFound
	}

	var r scoreRow
	query := `SELECT ` + scoreColumns + ` FROM score` + qb.clause()
	if err := sqlx.GetContext(ctx, getExec(repo.db, exec), &r, query, qb.args...); err != nil {
		if err == sql.ErrNoRows {
			return grade.Score{}, grade.ErrScoreNotFound
		}
		return grade.Score{}, errors.Wrap(err, "getting score")
	}
	return repo.fromScoreRow(r), nil
}

func (repo gradeRepository) UpdateScore(ctx context.Context, sc grade.Score, exec ...core.DBExecutor) (grade.Score, error) {
	query := `UPDATE score SET value = $2, band_id = $3, lecturer_id = $4, updated_at = $5 WHERE id = $1`
	res, err := getExec(repo.db, exec).ExecContext(ctx, query,
		sc.ID, sc.Value, null.NewString(sc.BandID, sc.BandID != ""), sc.LecturerID, sc.UpdatedAt.UTC())
	if err != nil {
		return grade.Score{}, errors.Wrap(err, "updating score")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return grade.Score{}, grade.ErrScoreNotFound
	}
	return sc, nil
}

func (repo gradeRepository) StudentScores(ctx context.Context, studentID, sessionID string, semesterID int, exec ...core.DBExecutor) ([]grade.StudentScore, error) {
	query := `
SELECT s.id, s.student_id, s.course_code, s.session_id, s.semester_id, s.lecturer_id, s.value, s.band_id,
       s.created_at, s.updated_at,
       c.unit AS course_unit, b.letter, b.grade_point
FROM score s
         JOIN course c ON c.code = s.course_code
         LEFT JOIN grade_band b ON b.id = s.band_id
WHERE s.student_id = $1
  AND s.session_id = $2
  AND s.semester_id = $3
ORDER BY s.course_code`

	var rows []studentScoreRow
	if err := sqlx.SelectContext(ctx, getExec(repo.db, exec), &rows, query, studentID, sessionID, semesterID); err != nil {
		return nil, errors.Wrap(err, "querying student scores")
	}
	scores := make([]grade.StudentScore, 0, len(rows))
	for _, r := range rows {
		scores = append(scores, grade.StudentScore{
			Score:      repo.fromScoreRow(r.scoreRow),
			CourseUnit: r.CourseUnit,
			Letter:     r.Letter.String,
			GradePoint: r.GradePoint.Float64,
		})
	}
	return scores, nil
}

func (repo gradeRepository) LecturerScores(ctx context.Context, lecturerID string, exec ...core.DBExecutor) ([]grade.Score, error) {
	query := `SELECT ` + scoreColumns + ` FROM score WHERE lecturer_id = $1 ORDER BY updated_at DESC`
	var rows []scoreRow
	if err := sqlx.SelectContext(ctx, getExec(repo.db, exec), &rows, query, lecturerID); err != nil {
		return nil, errors.Wrap(err, "querying lecturer scores")
	}
	scores := make([]grade.Score, 0, len(rows))
	for _, r := range rows {
		scores = append(scores, repo.fromScoreRow(r))
	}
	return scores, nil
}

func (repo gradeRepository) UpsertGPA(ctx context.Context, g grade.GPA, exec ...core.DBExecutor) (grade.GPA, error) {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	query := `
INSERT INTO gpa (id, student_id, session_id, semester_id, value, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (student_id, session_id, semester_id)
    DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
	_, err := getExec(repo.db, exec).ExecContext(ctx, query,
		g.ID, g.StudentID, g.SessionID, g.SemesterID, g.Value, g.CreatedAt.UTC(), g.UpdatedAt.UTC())
	if err != nil {
		return grade.GPA{}, errors.Wrap(err, "upserting gpa")
	}
	return g, nil
}

func (repo gradeRepository) GetGPA(ctx context.Context, studentID, sessionID string, semesterID int, exec ...core.DBExecutor) (grade.GPA, error) {
	var g grade.GPA
	query := `
SELECT id, student_id, session_id, semester_id, value, created_at, updated_at
FROM gpa
WHERE student_id = $1 AND session_id = $2 AND semester_id = $3`
	err := getExec(repo.db, exec).QueryRowxContext(ctx, query, studentID, sessionID, semesterID).
		Scan(&g.ID, &g.StudentID, &g.SessionID, &g.SemesterID, &g.Value, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return grade.GPA{}, grade.ErrGPANotFound
		}
		return grade.GPA{}, errors.Wrap(err, "getting gpa")
	}
	return g, nil
}
