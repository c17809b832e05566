package school

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
)

var (
	// errors
	ErrSchoolNotFound = errors.New("school not found")
	ErrSchoolExists   = errors.New("a school with this id already exists")
	ErrDeptNotFound   = errors.New("department not found")
	ErrDeptExists     = errors.New("a department with this id already exists")
)

type (
	Repository interface {
		CreateSchool(ctx context.Context, sch School, exec ...core.DBExecutor) (School, error)
		// QuerySchools does a case-insensitive match of `search` on School.ID or School.Name.
		QuerySchools(ctx context.Context, search string, page *core.Pagination, exec ...core.DBExecutor) ([]School, error)
		GetSchool(ctx context.Context, id string, exec ...core.DBExecutor) (School, error)
		UpdateSchool(ctx context.Context, sch School, exec ...core.DBExecutor) (School, error)
		DeleteSchool(ctx context.Context, id string, exec ...core.DBExecutor) error

		CreateDepartment(ctx context.Context, dept Department, exec ...core.DBExecutor) (Department, error)
		QueryDepartments(ctx context.Context, filter *DeptFilter, page *core.Pagination, exec ...core.DBExecutor) ([]Department, error)
		GetDepartment(ctx context.Context, id string, exec ...core.DBExecutor) (Department, error)
		UpdateDepartment(ctx context.Context, dept Department, exec ...core.DBExecutor) (Department, error)
		DeleteDepartment(ctx context.Context, id string, exec ...core.DBExecutor) error
	}

	Service interface {
		CreateSchool(ctx context.Context, ns NewSchool) (School, error)
		QuerySchools(ctx context.Context, search string, page *core.Pagination) ([]School, error)
		GetSchool(ctx context.Context, id string) (School, error)
		UpdateSchool(ctx context.Context, id string, us UpdateSchool) (School, error)
		DeleteSchool(ctx context.Context, id string) error

		CreateDepartment(ctx context.Context, nd NewDepartment) (Department, error)
		QueryDepartments(ctx context.Context, filter *DeptFilter, page *core.Pagination) ([]Department, error)
		GetDepartment(ctx context.Context, id string) (Department, error)
		UpdateDepartment(ctx context.Context, id string, ud UpdateDepartment) (Department, error)
		DeleteDepartment(ctx context.Context, id string) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil) // interface compliance check

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) CreateSchool(ctx context.Context, ns NewSchool) (School, error) {
	if _, err := svc.repo.GetSchool(ctx, ns.ID); err == nil {
		return School{}, core.NewConflictError(ErrSchoolExists)
	} else if errors.Cause(err) != ErrSchoolNotFound {
		return School{}, err
	}

	now := time.Now().UTC()
	return svc.repo.CreateSchool(ctx, School{
		ID:          ns.ID,
		Name:        ns.Name,
		Description: ns.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func (svc *service) QuerySchools(ctx context.Context, search string, page *core.Pagination) ([]School, error) {
	return svc.repo.QuerySchools(ctx, core.CleanString(search), page)
}

func (svc *service) GetSchool(ctx context.Context, id string) (School, error) {
	sch, err := svc.repo.GetSchool(ctx, id)
	if err != nil {
		if errors.Cause(err) == ErrSchoolNotFound {
			return School{}, core.NewNotFoundError(err)
		}
		return School{}, err
	}
	return sch, nil
}

func (svc *service) UpdateSchool(ctx context.Context, id string, us UpdateSchool) (School, error) {
	sch, err := svc.GetSchool(ctx, id)
	if err != nil {
		return School{}, err
	}
	sch.Name = us.Name
	sch.Description = us.Description
	sch.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateSchool(ctx, sch)
}

func (svc *service) DeleteSchool(ctx context.Context, id string) error {
	if _, err := svc.GetSchool(ctx, id); err != nil {
		return err
	}
	return svc.repo.DeleteSchool(ctx, id)
}

func (svc *service) CreateDepartment(ctx context.Context, nd NewDepartment) (Department, error) {
	if _, err := svc.repo.GetDepartment(ctx, nd.ID); err == nil {
		return Department{}, core.NewConflictError(ErrDeptExists)
	} else if errors.Cause(err) != ErrDeptNotFound {
		return Department{}, err
	}
	// the parent school must exist
	if _, err := svc.GetSchool(ctx, nd.SchoolID); err != nil {
		return Department{}, err
	}

	now := time.Now().UTC()
	return svc.repo.CreateDepartment(ctx, Department{
		ID:          nd.ID,
		Name:        nd.Name,
		Description: nd.Description,
		SchoolID:    nd.SchoolID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func (svc *service) QueryDepartments(ctx context.Context, filter *DeptFilter, page *core.Pagination) ([]Department, error) {
	return svc.repo.QueryDepartments(ctx, filter, page)
}

func (svc *service) GetDepartment(ctx context.Context, id string) (Department, error) {
	dept, err := svc.repo.GetDepartment(ctx, id)
	if err != nil {
		if errors.Cause(err) == ErrDeptNotFound {
			return Department{}, core.NewNotFoundError(err)
		}
		return Department{}, err
	}
	return dept, nil
}

func (svc *service) UpdateDepartment(ctx context.Context, id string, ud UpdateDepartment) (Department, error) {
	dept, err := svc.GetDepartment(ctx, id)
	if err != nil {
		return Department{}, err
	}
	if ud.SchoolID != dept.SchoolID {
		if _, err := svc.GetSchool(ctx, ud.SchoolID); err != nil {
			return Department{}, err
		}
	}
	dept.Name = ud.Name
	dept.Description = ud.Description
	dept.SchoolID = ud.SchoolID
	dept.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateDepartment(ctx, dept)
}

func (svc *service) DeleteDepartment(ctx context.Context, id string) error {
	if _, err := svc.GetDepartment(ctx, id); err != nil {
		return err
	}
	return svc.repo.DeleteDepartment(ctx, id)
}
