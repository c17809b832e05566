package course

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/academia/core"
)

type Course struct {
	Code        string    `json:"code"` // 4 uppercase letters + 3 digits
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Unit        int       `json:"unit"`  // 1..6
	Level       int       `json:"level"` // 5th rune of Code × 100
	DeptID      string    `json:"dept_id"`
	SemesterID  int       `json:"semester_id"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

// LevelFromCode derives the study level from the course code's digit part.
func LevelFromCode(code string) int {
	if len(code) < 5 {
		return 0
	}
	return int(code[4]-'0') * 100
}

// NewCourse contains information needed to create a new Course.
// The level is not accepted as input; it derives from the code.
type NewCourse struct {
	Code        string `json:"code" validate:"required,course_code"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Unit        int    `json:"unit" validate:"required,min=1,max=6"`
	DeptID      string `json:"dept_id" validate:"required,dept_id"`
	SemesterID  int    `json:"semester_id" validate:"required,oneof=1 2"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Code = core.CleanString(nc.Code)
	nc.Name = core.CleanString(nc.Name)
	nc.Description = core.CleanString(nc.Description)
	nc.DeptID = core.CleanString(nc.DeptID)
	return validate.Struct(nc)
}

type UpdateCourse struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Unit        int    `json:"unit" validate:"omitempty,min=1,max=6"`
	Level       int    `json:"level" validate:"omitempty,level"`
	DeptID      string `json:"dept_id" validate:"omitempty,dept_id"`
	SemesterID  int    `json:"semester_id" validate:"omitempty,oneof=1 2"`
}

func (uc *UpdateCourse) Validate(orig Course, validate *validator.Validate) error {
	if name := core.CleanString(uc.Name); name != "" {
		uc.Name = name
	} else {
		uc.Name = orig.Name
	}
	if desc := core.CleanString(uc.Description); desc != "" {
		uc.Description = desc
	} else {
		uc.Description = orig.Description
	}
	if uc.Unit == 0 {
		uc.Unit = orig.Unit
	}
	if uc.Level == 0 {
		uc.Level = orig.Level
	}
	if id := core.CleanString(uc.DeptID); id != "" {
		uc.DeptID = id
	} else {
		uc.DeptID = orig.DeptID
	}
	if uc.SemesterID == 0 {
		uc.SemesterID = orig.SemesterID
	}
	return validate.Struct(uc)
}

// QueryFilter applies AND operation on its set fields.
type QueryFilter struct {
	Search     string `query:"search"` // case-insensitive match on Course.Name
	Level      int    `query:"level"`
	DeptID     string `query:"dept_id"`
	Unit       int    `query:"unit"`
	SemesterID int    `query:"semester_id"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Level == 0 && qf.DeptID == "" && qf.Unit == 0 && qf.SemesterID == 0
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.DeptID = core.CleanString(qf.DeptID)
}
