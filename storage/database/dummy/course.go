package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/course"
)

type courseRepository struct {
	db    *courseTable
	users *userTable
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db.course, users: db.user}
}

func (repo *courseRepository) CreateCourse(ctx context.Context, crs course.Course, exec ...core.DBExecutor) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.courses[crs.Code] = &crs
	return crs, nil
}

func (repo *courseRepository) QueryCourses(ctx context.Context, filter *course.QueryFilter, page *core.Pagination, exec ...core.DBExecutor) ([]course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	courses := make([]course.Course, 0, len(repo.db.courses))
	for _, crs := range repo.db.courses {
		if filter != nil {
			if filter.Search != "" && !containsFold(crs.Name, filter.Search) {
				continue
			}
			if filter.Level != 0 && crs.Level != filter.Level {
				continue
			}
			if filter.DeptID != "" && crs.DeptID != filter.DeptID {
				continue
			}
			if filter.Unit != 0 && crs.Unit != filter.Unit {
				continue
			}
			if filter.SemesterID != 0 && crs.SemesterID != filter.SemesterID {
				continue
			}
		}
		courses = append(courses, *crs)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].Code < courses[j].Code })

	lo, hi := pageBounds(len(courses), page)
	return courses[lo:hi], nil
}

func (repo *courseRepository) GetCourse(ctx context.Context, code string, exec ...core.DBExecutor) (course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if crs, ok := repo.db.courses[code]; ok {
		return *crs, nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) UpdateCourse(ctx context.Context, crs course.Course, exec ...core.DBExecutor) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.courses[crs.Code]; !ok {
		return course.Course{}, course.ErrNotFound
	}
	repo.db.courses[crs.Code] = &crs
	return crs, nil
}

func (repo *courseRepository) DeleteCourse(ctx context.Context, code string, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	delete(repo.db.courses, code)
	for _, codes := range repo.db.registrations {
		delete(codes, code)
	}
	return nil
}

func (repo *courseRepository) RegisterStudent(ctx context.Context, studentID, code string, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	codes, ok := repo.db.registrations[studentID]
	if !ok {
		codes = make(map[string]bool)
		repo.db.registrations[studentID] = codes
	}
	codes[code] = true
	return nil
}

func (repo *courseRepository) IsRegistered(ctx context.Context, studentID, code string, exec ...core.DBExecutor) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	return repo.db.registrations[studentID][code], nil
}

func (repo *courseRepository) StudentCourses(ctx context.Context, studentID string, level, semesterID int, exec ...core.DBExecutor) ([]course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	courses := make([]course.Course, 0)
	for code := range repo.db.registrations[studentID] {
		crs, ok := repo.db.courses[code]
		if !ok {
			continue
		}
		if level != 0 && crs.Level != level {
			continue
		}
		if semesterID != 0 && crs.SemesterID != semesterID {
			continue
		}
		courses = append(courses, *crs)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].Code < courses[j].Code })
	return courses, nil
}

func (repo *courseRepository) LecturerCourses(ctx context.Context, lecturerID, search string, page *core.Pagination, exec ...core.DBExecutor) ([]course.Course, error) {
	repo.users.RLock()
	var codes []string
	if usr, ok := repo.users.table[lecturerID]; ok {
		codes = append(codes, usr.CourseCodes...)
	}
	repo.users.RUnlock()

	repo.db.RLock()
	defer repo.db.RUnlock()

	courses := make([]course.Course, 0, len(codes))
	for _, code := range codes {
		crs, ok := repo.db.courses[code]
		if !ok {
			continue
		}
		if search != "" && !containsFold(crs.Name, search) {
			continue
		}
		courses = append(courses, *crs)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].Name < courses[j].Name })

	lo, hi := pageBounds(len(courses), page)
	return courses[lo:hi], nil
}
