package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/academic"
)

type academicRepository struct {
	db *academicTable
}

var _ academic.Repository = (*academicRepository)(nil) // interface compliance check

func NewAcademicRepository(db *DB) academic.Repository {
	return &academicRepository{db: db.academic}
}

func (repo *academicRepository) CreateSession(ctx context.Context, sess academic.Session, exec ...core.DBExecutor) (academic.Session, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	stored := sess
	stored.Semesters = nil
	repo.db.sessions[sess.ID] = &stored
	return sess, nil
}

func (repo *academicRepository) QuerySessions(ctx context.Context, page *core.Pagination, exec ...core.DBExecutor) ([]academic.Session, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	sessions := make([]academic.Session, 0, len(repo.db.sessions))
	for _, sess := range repo.db.sessions {
		sessions = append(sessions, *sess)
	}
	// latest academic year first
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].ID > sessions[j].ID })

	lo, hi := pageBounds(len(sessions), page)
	return sessions[lo:hi], nil
}

func (repo *academicRepository) GetSession(ctx context.Context, id string, exec ...core.DBExecutor) (academic.Session, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if sess, ok := repo.db.sessions[id]; ok {
		return *sess, nil
	}
	return academic.Session{}, academic.ErrSessionNotFound
}

func (repo *academicRepository) DeleteSession(ctx context.Context, id string, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	delete(repo.db.sessions, id)
	return nil
}

func (repo *academicRepository) CreateSemester(ctx context.Context, sem academic.Semester, exec ...core.DBExecutor) (academic.Semester, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.semesters[sem.ID] = &sem
	return sem, nil
}

func (repo *academicRepository) QuerySemesters(ctx context.Context, exec ...core.DBExecutor) ([]academic.Semester, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	semesters := make([]academic.Semester, 0, len(repo.db.semesters))
	for _, sem := range repo.db.semesters {
		semesters = append(semesters, *sem)
	}
	sort.Slice(semesters, func(i, j int) bool { return semesters[i].ID < semesters[j].ID })
	return semesters, nil
}

func (repo *academicRepository) GetSemester(ctx context.Context, id int, exec ...core.DBExecutor) (academic.Semester, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if sem, ok := repo.db.semesters[id]; ok {
		return *sem, nil
	}
	return academic.Semester{}, academic.ErrSemesterNotFound
}

func (repo *academicRepository) DeleteSemester(ctx context.Context, id int, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	delete(repo.db.semesters, id)
	return nil
}
