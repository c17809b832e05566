package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/school"
)

type schoolRepository struct {
	db *schoolTable
}

var _ school.Repository = (*schoolRepository)(nil) // interface compliance check

func NewSchoolRepository(db *DB) school.Repository {
	return &schoolRepository{db: db.school}
}

func (repo *schoolRepository) CreateSchool(ctx context.Context, sch school.School, exec ...core.DBExecutor) (school.School, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.schools[sch.ID] = &sch
	return sch, nil
}

func (repo *schoolRepository) QuerySchools(ctx context.Context, search string, page *core.Pagination, exec ...core.DBExecutor) ([]school.School, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	schools := make([]school.School, 0, len(repo.db.schools))
	for _, sch := range repo.db.schools {
		if search != "" && !(containsFold(sch.ID, search) || containsFold(sch.Name, search)) {
			continue
		}
		schools = append(schools, *sch)
	}
	sort.Slice(schools, func(i, j int) bool { return schools[i].ID < schools[j].ID })

	lo, hi := pageBounds(len(schools), page)
	return schools[lo:hi], nil
}

func (repo *schoolRepository) GetSchool(ctx context.Context, id string, exec ...core.DBExecutor) (school.School, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if sch, ok := repo.db.schools[id]; ok {
		return *sch, nil
	}
	return school.School{}, school.ErrSchoolNotFound
}

func (repo *schoolRepository) UpdateSchool(ctx context.Context, sch school.School, exec ...core.DBExecutor) (school.School, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.schools[sch.ID]; !ok {
		return school.School{}, school.ErrSchoolNotFound
	}
	repo.db.schools[sch.ID] = &sch
	return sch, nil
}

func (repo *schoolRepository) DeleteSchool(ctx context.Context, id string, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	delete(repo.db.schools, id)
	for deptID, dept := range repo.db.depts {
		if dept.SchoolID == id {
			delete(repo.db.depts, deptID)
		}
	}
	return nil
}

func (repo *schoolRepository) CreateDepartment(ctx context.Context, dept school.Department, exec ...core.DBExecutor) (school.Department, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.depts[dept.ID] = &dept
	return dept, nil
}

func (repo *schoolRepository) QueryDepartments(ctx context.Context, filter *school.DeptFilter, page *core.Pagination, exec ...core.DBExecutor) ([]school.Department, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	depts := make([]school.Department, 0, len(repo.db.depts))
	for _, dept := range repo.db.depts {
		if filter != nil {
			if filter.Search != "" && !(containsFold(dept.ID, filter.Search) || containsFold(dept.Name, filter.Search)) {
				continue
			}
			if filter.SchoolID != "" && dept.SchoolID != filter.SchoolID {
				continue
			}
		}
		depts = append(depts, *dept)
	}
	sort.Slice(depts, func(i, j int) bool { return depts[i].ID < depts[j].ID })

	lo, hi := pageBounds(len(depts), page)
	return depts[lo:hi], nil
}

func (repo *schoolRepository) GetDepartment(ctx context.Context, id string, exec ...core.DBExecutor) (school.Department, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if dept, ok := repo.db.depts[id]; ok {
		return *dept, nil
	}
	return school.Department{}, school.ErrDeptNotFound
}

func (repo *schoolRepository) UpdateDepartment(ctx context.Context, dept school.Department, exec ...core.DBExecutor) (school.Department, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.depts[dept.ID]; !ok {
		return school.Department{}, school.ErrDeptNotFound
	}
	repo.db.depts[dept.ID] = &dept
	return dept, nil
}

func (repo *schoolRepository) DeleteDepartment(ctx context.Context, id string, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	delete(repo.db.depts, id)
	return nil
}
