// Package dummydb provides in-memory repositories used by tests.
package dummydb

import (
	"context"
	"database/sql"
	"sync"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/academic"
	"github.com/trezcool/academia/core/course"
	"github.com/trezcool/academia/core/grade"
	"github.com/trezcool/academia/core/school"
	"github.com/trezcool/academia/core/user"
)

type (
	DB struct {
		executor

		user     *userTable
		school   *schoolTable
		academic *academicTable
		course   *courseTable
		grade    *gradeTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	schoolTable struct {
		sync.RWMutex
		schools map[string]*school.School
		depts   map[string]*school.Department
	}

	academicTable struct {
		sync.RWMutex
		sessions  map[string]*academic.Session
		semesters map[int]*academic.Semester
	}

	courseTable struct {
		sync.RWMutex
		courses map[string]*course.Course
		// registrations maps a student ID to the set of course codes they registered.
		registrations map[string]map[string]bool
	}

	gradeTable struct {
		sync.RWMutex
		bands  map[string]*grade.Band
		scores map[string]*grade.Score
		gpas   map[string]*grade.GPA // keyed by student|session|semester
	}
)

var _ core.DB = (*DB)(nil) // interface compliance check

func Open() (*DB, error) {
	db := &DB{
		user:     &userTable{table: make(map[string]*user.User)},
		school:   &schoolTable{schools: make(map[string]*school.School), depts: make(map[string]*school.Department)},
		academic: &academicTable{sessions: make(map[string]*academic.Session), semesters: make(map[int]*academic.Semester)},
		course:   &courseTable{courses: make(map[string]*course.Course), registrations: make(map[string]map[string]bool)},
		grade:    &gradeTable{bands: make(map[string]*grade.Band), scores: make(map[string]*grade.Score), gpas: make(map[string]*grade.GPA)},
	}
	return db, nil
}

// Reset empties all tables; tests call it to start from a clean slate.
func (db *DB) Reset() {
	db.user.Lock()
	db.user.table = make(map[string]*user.User)
	db.user.Unlock()

	db.school.Lock()
	db.school.schools = make(map[string]*school.School)
	db.school.depts = make(map[string]*school.Department)
	db.school.Unlock()

	db.academic.Lock()
	db.academic.sessions = make(map[string]*academic.Session)
	db.academic.semesters = make(map[int]*academic.Semester)
	db.academic.Unlock()

	db.course.Lock()
	db.course.courses = make(map[string]*course.Course)
	db.course.registrations = make(map[string]map[string]bool)
	db.course.Unlock()

	db.grade.Lock()
	db.grade.bands = make(map[string]*grade.Band)
	db.grade.scores = make(map[string]*grade.Score)
	db.grade.gpas = make(map[string]*grade.GPA)
	db.grade.Unlock()
}

// BeginTx hands out a no-op transactor; the repositories here do their own
// locking and ignore the executors they are passed.
func (db *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (core.DBTransactor, error) {
	return noopTx{}, nil
}

// executor satisfies core.DBExecutor; nothing here ever runs SQL.
type executor struct{}

func (executor) Exec(string, ...interface{}) (sql.Result, error) { return nil, nil }
func (executor) ExecContext(context.Context, string, ...interface{}) (sql.Result, error) {
	return nil, nil
}
func (executor) Query(string, ...interface{}) (*sql.Rows, error) { return nil, nil }
func (executor) QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error) {
	return nil, nil
}
func (executor) QueryRow(string, ...interface{}) *sql.Row                       { return nil }
func (executor) QueryRowContext(context.Context, string, ...interface{}) *sql.Row { return nil }

type noopTx struct{ executor }

func (noopTx) Commit() error   { return nil }
func (noopTx) Rollback() error { return nil }

// pageBounds clamps a page window to the slice length.
func pageBounds(n int, page *core.Pagination) (lo, hi int) {
	if page == nil {
		return 0, n
	}
	lo = page.Offset()
	if lo > n {
		lo = n
	}
	hi = lo + page.Limit()
	if hi > n {
		hi = n
	}
	return lo, hi
}
