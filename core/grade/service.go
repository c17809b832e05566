package grade

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/course"
	"github.com/trezcool/academia/core/user"
)

var (
	// errors
	ErrBandNotFound         = errors.New("grade band not found")
	ErrBandExists           = errors.New("grade band exists already")
	ErrScoreNotFound        = errors.New("no score found for the specified parameters")
	ErrScoreExists          = errors.New("student already scored on this course")
	ErrGPANotFound          = errors.New("no GPA record found")
	ErrStudentNotRegistered = errors.New("student isn't registered for this course")
	ErrNotAuthorized        = errors.New("not authorized to grade this student")
	ErrWrongSemester        = errors.New("wrong semester for this course")

	errInvalidScore = "score must be between 0 and 100"
)

type (
	Repository interface {
		CreateBand(ctx context.Context, b Band, exec ...core.DBExecutor) (Band, error)
		// QueryBands returns all bands ordered by lower limit ascending.
		QueryBands(ctx context.Context, exec ...core.DBExecutor) ([]Band, error)
		GetBand(ctx context.Context, id string, exec ...core.DBExecutor) (Band, error)
		BandExists(ctx context.Context, letter string, lower, upper int, point float64, exec ...core.DBExecutor) (bool, error)
		UpdateBand(ctx context.Context, b Band, exec ...core.DBExecutor) (Band, error)
		DeleteBand(ctx context.Context, id string, exec ...core.DBExecutor) error

		CreateScore(ctx context.Context, sc Score, exec ...core.DBExecutor) (Score, error)
		// GetScore returns the single score matching all set ScoreFilter fields.
		GetScore(ctx context.Context, filter ScoreFilter, exec ...core.DBExecutor) (Score, error)
		UpdateScore(ctx context.Context, sc Score, exec ...core.DBExecutor) (Score, error)
		// StudentScores joins each score with its course unit and band grade point,
		// for one (student, session, semester).
		StudentScores(ctx context.Context, studentID, sessionID string, semesterID int, exec ...core.DBExecutor) ([]StudentScore, error)
		// LecturerScores lists all scores issued by a lecturer, most recent first.
		LecturerScores(ctx context.Context, lecturerID string, exec ...core.DBExecutor) ([]Score, error)

		UpsertGPA(ctx context.Context, g GPA, exec ...core.DBExecutor) (GPA, error)
		GetGPA(ctx context.Context, studentID, sessionID string, semesterID int, exec ...core.DBExecutor) (GPA, error)
	}

	Service interface {
		CreateBand(ctx context.Context, nb NewBand) (Band, error)
		QueryBands(ctx context.Context) ([]Band, error)
		GetBand(ctx context.Context, id string) (Band, error)
		UpdateBand(ctx context.Context, id string, ub UpdateBand) (Band, error)
		DeleteBand(ctx context.Context, id string) error

		RecordScore(ctx context.Context, lecturer user.User, sessionID string, semesterID int, ns NewScore) (Score, error)
		UpdateScore(ctx context.Context, lecturer user.User, sessionID string, semesterID int, ns NewScore) (Score, error)
		StudentScores(ctx context.Context, studentID, sessionID string, semesterID int) ([]StudentScore, error)
		LecturerScores(ctx context.Context, lecturerID string) ([]Score, error)
		StudentGPA(ctx context.Context, studentID, sessionID string, semesterID int) (GPA, error)
	}

	service struct {
		db      core.DB
		repo    Repository
		usrRepo user.Repository
		crsRepo course.Repository
	}
)

var _ Service = (*service)(nil) // interface compliance check

func NewService(db core.DB, repo Repository, usrRepo user.Repository, crsRepo course.Repository) Service {
	return &service{
		db:      db,
		repo:    repo,
		usrRepo: usrRepo,
		crsRepo: crsRepo,
	}
}

// Bands

func (svc *service) CreateBand(ctx context.Context, nb NewBand) (Band, error) {
	exists, err := svc.repo.BandExists(ctx, nb.Letter, nb.LowerLimit, nb.UpperLimit, nb.GradePoint)
	if err != nil {
		return Band{}, err
	}
	if exists {
		return Band{}, core.NewConflictError(ErrBandExists)
	}

	now := time.Now().UTC()
	return svc.repo.CreateBand(ctx, Band{
		Letter:     nb.Letter,
		LowerLimit: nb.LowerLimit,
		UpperLimit: nb.UpperLimit,
		GradePoint: nb.GradePoint,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
}

func (svc *service) QueryBands(ctx context.Context) ([]Band, error) {
	return svc.repo.QueryBands(ctx)
}

func (svc *service) GetBand(ctx context.Context, id string) (Band, error) {
	b, err := svc.repo.GetBand(ctx, id)
	if err != nil {
		if errors.Cause(err) == ErrBandNotFound {
			return Band{}, core.NewNotFoundError(err)
		}
		return Band{}, err
	}
	return b, nil
}

func (svc *service) UpdateBand(ctx context.Context, id string, ub UpdateBand) (Band, error) {
	b, err := svc.GetBand(ctx, id)
	if err != nil {
		return Band{}, err
	}
	b.Letter = ub.Letter
	b.LowerLimit = *ub.LowerLimit
	b.UpperLimit = *ub.UpperLimit
	b.GradePoint = *ub.GradePoint
	b.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateBand(ctx, b)
}

func (svc *service) DeleteBand(ctx context.Context, id string) error {
	if _, err := svc.GetBand(ctx, id); err != nil {
		return err
	}
	return svc.repo.DeleteBand(ctx, id)
}

// Score Ledger

// RecordScore writes a first score for a (student, course) pair.
// Preconditions run in a fixed order; nothing is written unless all pass.
func (svc *service) RecordScore(ctx context.Context, lecturer user.User, sessionID string, semesterID int, ns NewScore) (Score, error) {
	student, err := svc.getStudent(ctx, ns.StudentID)
	if err != nil {
		return Score{}, err
	}

	registered, err := svc.crsRepo.IsRegistered(ctx, ns.StudentID, ns.CourseCode)
	if err != nil {
		return Score{}, err
	}
	if !registered {
		return Score{}, core.NewInvalidInputError(ErrStudentNotRegistered)
	}

	crs, err := svc.getCourse(ctx, ns.CourseCode)
	if err != nil {
		return Score{}, err
	}

	// the lecturer must teach in both the student's and the course's department,
	// and be assigned the course itself
	if !lecturer.TeachesDept(student.DeptID) || !lecturer.TeachesDept(crs.DeptID) {
		return Score{}, core.NewForbiddenError(ErrNotAuthorized)
	}
	if !lecturer.TeachesCourse(ns.CourseCode) {
		return Score{}, core.NewForbiddenError(ErrNotAuthorized)
	}

	if crs.SemesterID != semesterID {
		return Score{}, core.NewForbiddenError(ErrWrongSemester)
	}

	// one score per (student, course), across all sessions
	if _, err = svc.repo.GetScore(ctx, ScoreFilter{StudentID: ns.StudentID, CourseCode: ns.CourseCode}); err == nil {
		return Score{}, core.NewConflictError(ErrScoreExists)
	} else if errors.Cause(err) != ErrScoreNotFound {
		return Score{}, err
	}

	if ns.Value < 0 || ns.Value > 100 {
		return Score{}, core.NewValidationError(nil, core.FieldError{Field: "score", Error: errInvalidScore})
	}

	band, err := svc.resolveBand(ctx, ns.Value)
	if err != nil {
		return Score{}, err
	}

	now := time.Now().UTC()
	sc := Score{
		StudentID:  ns.StudentID,
		CourseCode: ns.CourseCode,
		SessionID:  sessionID,
		SemesterID: semesterID,
		LecturerID: lecturer.ID,
		Value:      ns.Value,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if band != nil {
		sc.BandID = band.ID
	}

	// the score write and the GPA upsert commit together
	tx, err := svc.db.BeginTx(ctx, nil)
	if err != nil {
		return Score{}, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	if sc, err = svc.repo.CreateScore(ctx, sc, tx); err != nil {
		return Score{}, errors.Wrap(err, "creating score")
	}
	if err = svc.recomputeGPA(ctx, tx, ns.StudentID, sessionID, semesterID); err != nil {
		return Score{}, err
	}
	if err = tx.Commit(); err != nil {
		return Score{}, errors.Wrap(err, "committing score")
	}
	return sc, nil
}

// UpdateScore overwrites an existing score. The department authorization is
// deliberately laxer than RecordScore's: teaching in either the student's or
// the course's department suffices.
func (svc *service) UpdateScore(ctx context.Context, lecturer user.User, sessionID string, semesterID int, ns NewScore) (Score, error) {
	student, err := svc.getStudent(ctx, ns.StudentID)
	if err != nil {
		return Score{}, err
	}
	crs, err := svc.getCourse(ctx, ns.CourseCode)
	if err != nil {
		return Score{}, err
	}

	if !lecturer.TeachesDept(student.DeptID) && !lecturer.TeachesDept(crs.DeptID) {
		return Score{}, core.NewForbiddenError(ErrNotAuthorized)
	}
	if !lecturer.TeachesCourse(ns.CourseCode) {
		return Score{}, core.NewForbiddenError(ErrNotAuthorized)
	}

	if crs.SemesterID != semesterID {
		return Score{}, core.NewForbiddenError(ErrWrongSemester)
	}

	sc, err := svc.repo.GetScore(ctx, ScoreFilter{
		StudentID:  ns.StudentID,
		CourseCode: ns.CourseCode,
		SessionID:  sessionID,
		SemesterID: semesterID,
	})
	if err != nil {
		if errors.Cause(err) == ErrScoreNotFound {
			return Score{}, core.NewNotFoundError(err)
		}
		return Score{}, err
	}

	if ns.Value < 0 || ns.Value > 100 {
		return Score{}, core.NewValidationError(nil, core.FieldError{Field: "score", Error: errInvalidScore})
	}

	band, err := svc.resolveBand(ctx, ns.Value)
	if err != nil {
		return Score{}, err
	}

	sc.Value = ns.Value
	sc.BandID = ""
	if band != nil {
		sc.BandID = band.ID
	}
	sc.UpdatedAt = time.Now().UTC()

	tx, err := svc.db.BeginTx(ctx, nil)
	if err != nil {
		return Score{}, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	if sc, err = svc.repo.UpdateScore(ctx, sc, tx); err != nil {
		return Score{}, errors.Wrap(err, "updating score")
	}
	if err = svc.recomputeGPA(ctx, tx, ns.StudentID, sessionID, semesterID); err != nil {
		return Score{}, err
	}
	if err = tx.Commit(); err != nil {
		return Score{}, errors.Wrap(err, "committing score")
	}
	return sc, nil
}

func (svc *service) StudentScores(ctx context.Context, studentID, sessionID string, semesterID int) ([]StudentScore, error) {
	return svc.repo.StudentScores(ctx, studentID, sessionID, semesterID)
}

func (svc *service) LecturerScores(ctx context.Context, lecturerID string) ([]Score, error) {
	return svc.repo.LecturerScores(ctx, lecturerID)
}

func (svc *service) StudentGPA(ctx context.Context, studentID, sessionID string, semesterID int) (GPA, error) {
	gpa, err := svc.repo.GetGPA(ctx, studentID, sessionID, semesterID)
	if err != nil {
		if errors.Cause(err) == ErrGPANotFound {
			return GPA{}, core.NewNotFoundError(err)
		}
		return GPA{}, err
	}
	return gpa, nil
}

// GPA Aggregator

// recomputeGPA recalculates and upserts the GPA of a (student, session, semester)
// from all its scores: Σ(gradePoint × unit) / Σ(unit). A score whose band did not
// resolve contributes 0 grade points but its unit still counts.
func (svc *service) recomputeGPA(ctx context.Context, exec core.DBExecutor, studentID, sessionID string, semesterID int) error {
	scores, err := svc.repo.StudentScores(ctx, studentID, sessionID, semesterID, exec)
	if err != nil {
		return errors.Wrap(err, "fetching scores")
	}

	var value float64
	if len(scores) > 0 {
		var points float64
		var units int
		for _, sc := range scores {
			points += sc.GradePoint * float64(sc.CourseUnit)
			units += sc.CourseUnit
		}
		value = points / float64(units)
	}

	now := time.Now().UTC()
	_, err = svc.repo.UpsertGPA(ctx, GPA{
		StudentID:  studentID,
		SessionID:  sessionID,
		SemesterID: semesterID,
		Value:      value,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, exec)
	return errors.Wrap(err, "upserting GPA")
}

func (svc *service) getStudent(ctx context.Context, id string) (user.User, error) {
	student, err := svc.usrRepo.GetUser(ctx, user.GetFilter{ID: id})
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return user.User{}, core.NewNotFoundError(err)
		}
		return user.User{}, err
	}
	return student, nil
}

func (svc *service) getCourse(ctx context.Context, code string) (course.Course, error) {
	crs, err := svc.crsRepo.GetCourse(ctx, code)
	if err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return course.Course{}, core.NewNotFoundError(err)
		}
		return course.Course{}, err
	}
	return crs, nil
}

func (svc *service) resolveBand(ctx context.Context, score int) (*Band, error) {
	bands, err := svc.repo.QueryBands(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "fetching grade bands")
	}
	return Resolve(bands, score), nil
}
