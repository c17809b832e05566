package school

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/academia/core"
)

type School struct {
	ID          string    `json:"id"` // 4 uppercase letters
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

type Department struct {
	ID          string    `json:"id"` // 4 uppercase letters
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	SchoolID    string    `json:"school_id"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

// NewSchool contains information needed to create a new School.
type NewSchool struct {
	ID          string `json:"id" validate:"required,dept_id"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

func (ns *NewSchool) Validate(validate *validator.Validate) error {
	ns.ID = core.CleanString(ns.ID)
	ns.Name = core.CleanString(ns.Name)
	ns.Description = core.CleanString(ns.Description)
	return validate.Struct(ns)
}

type UpdateSchool struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (us *UpdateSchool) Validate(orig School, validate *validator.Validate) error {
	if name := core.CleanString(us.Name); name != "" {
		us.Name = name
	} else {
		us.Name = orig.Name
	}
	if desc := core.CleanString(us.Description); desc != "" {
		us.Description = desc
	} else {
		us.Description = orig.Description
	}
	return validate.Struct(us)
}

// NewDepartment contains information needed to create a new Department.
type NewDepartment struct {
	ID          string `json:"id" validate:"required,dept_id"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	SchoolID    string `json:"school_id" validate:"required,dept_id"`
}

func (nd *NewDepartment) Validate(validate *validator.Validate) error {
	nd.ID = core.CleanString(nd.ID)
	nd.Name = core.CleanString(nd.Name)
	nd.Description = core.CleanString(nd.Description)
	nd.SchoolID = core.CleanString(nd.SchoolID)
	return validate.Struct(nd)
}

type UpdateDepartment struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	SchoolID    string `json:"school_id" validate:"omitempty,dept_id"`
}

func (ud *UpdateDepartment) Validate(orig Department, validate *validator.Validate) error {
	if name := core.CleanString(ud.Name); name != "" {
		ud.Name = name
	} else {
		ud.Name = orig.Name
	}
	if desc := core.CleanString(ud.Description); desc != "" {
		ud.Description = desc
	} else {
		ud.Description = orig.Description
	}
	if id := core.CleanString(ud.SchoolID); id != "" {
		ud.SchoolID = id
	} else {
		ud.SchoolID = orig.SchoolID
	}
	return validate.Struct(ud)
}

// DeptFilter narrows department listings.
type DeptFilter struct {
	Search   string `query:"search"`
	SchoolID string `query:"school_id"`
}

func (df *DeptFilter) Clean() {
	df.Search = core.CleanString(df.Search)
	df.SchoolID = core.CleanString(df.SchoolID)
}
