package academic

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
)

var (
	// errors
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionExists    = errors.New("a session with this id already exists")
	ErrSemesterNotFound = errors.New("semester not found")
	ErrSemesterExists   = errors.New("a semester with this id already exists")
)

type (
	Repository interface {
		CreateSession(ctx context.Context, sess Session, exec ...core.DBExecutor) (Session, error)
		QuerySessions(ctx context.Context, page *core.Pagination, exec ...core.DBExecutor) ([]Session, error)
		GetSession(ctx context.Context, id string, exec ...core.DBExecutor) (Session, error)
		DeleteSession(ctx context.Context, id string, exec ...core.DBExecutor) error

		CreateSemester(ctx context.Context, sem Semester, exec ...core.DBExecutor) (Semester, error)
		QuerySemesters(ctx context.Context, exec ...core.DBExecutor) ([]Semester, error)
		GetSemester(ctx context.Context, id int, exec ...core.DBExecutor) (Semester, error)
		DeleteSemester(ctx context.Context, id int, exec ...core.DBExecutor) error
	}

	Service interface {
		CreateSession(ctx context.Context, ns NewSession) (Session, error)
		QuerySessions(ctx context.Context, page *core.Pagination) ([]Session, error)
		GetSession(ctx context.Context, id string) (Session, error)
		DeleteSession(ctx context.Context, id string) error

		CreateSemester(ctx context.Context, ns NewSemester) (Semester, error)
		QuerySemesters(ctx context.Context) ([]Semester, error)
		GetSemester(ctx context.Context, id int) (Semester, error)
		DeleteSemester(ctx context.Context, id int) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil) // interface compliance check

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) CreateSession(ctx context.Context, ns NewSession) (Session, error) {
	if _, err := svc.repo.GetSession(ctx, ns.ID); err == nil {
		return Session{}, core.NewConflictError(ErrSessionExists)
	} else if errors.Cause(err) != ErrSessionNotFound {
		return Session{}, err
	}

	now := time.Now().UTC()
	sess, err := svc.repo.CreateSession(ctx, Session{
		ID:        ns.ID,
		Name:      ns.Name,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return Session{}, err
	}
	// a session always spans the known semesters
	sess.Semesters, err = svc.repo.QuerySemesters(ctx)
	return sess, err
}

func (svc *service) QuerySessions(ctx context.Context, page *core.Pagination) ([]Session, error) {
	return svc.repo.QuerySessions(ctx, page)
}

func (svc *service) GetSession(ctx context.Context, id string) (Session, error) {
	sess, err := svc.repo.GetSession(ctx, id)
	if err != nil {
		if errors.Cause(err) == ErrSessionNotFound {
			return Session{}, core.NewNotFoundError(err)
		}
		return Session{}, err
	}
	return sess, nil
}

func (svc *service) DeleteSession(ctx context.Context, id string) error {
	if _, err := svc.GetSession(ctx, id); err != nil {
		return err
	}
	return svc.repo.DeleteSession(ctx, id)
}

func (svc *service) CreateSemester(ctx context.Context, ns NewSemester) (Semester, error) {
	if _, err := svc.repo.GetSemester(ctx, ns.ID); err == nil {
		return Semester{}, core.NewConflictError(ErrSemesterExists)
	} else if errors.Cause(err) != ErrSemesterNotFound {
		return Semester{}, err
	}
	return svc.repo.CreateSemester(ctx, Semester{ID: ns.ID, Name: ns.Name})
}

func (svc *service) QuerySemesters(ctx context.Context) ([]Semester, error) {
	return svc.repo.QuerySemesters(ctx)
}

func (svc *service) GetSemester(ctx context.Context, id int) (Semester, error) {
	sem, err := svc.repo.GetSemester(ctx, id)
	if err != nil {
		if errors.Cause(err) == ErrSemesterNotFound {
			return Semester{}, core.NewNotFoundError(err)
		}
		return Semester{}, err
	}
	return sem, nil
}

func (svc *service) DeleteSemester(ctx context.Context, id int) error {
	if _, err := svc.GetSemester(ctx, id); err != nil {
		return err
	}
	return svc.repo.DeleteSemester(ctx, id)
}
