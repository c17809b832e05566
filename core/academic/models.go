package academic

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/academia/core"
)

// Session is an academic year, e.g "2021/2022".
type Session struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC

	Semesters []Semester `json:"semesters,omitempty"`
}

// Semester is one of the two halves of a Session.
type Semester struct {
	ID   int    `json:"id"` // 1 or 2
	Name string `json:"name,omitempty"`
}

type NewSession struct {
	ID   string `json:"id" validate:"required,session_id"`
	Name string `json:"name"`
}

func (ns *NewSession) Validate(validate *validator.Validate) error {
	ns.ID = core.CleanString(ns.ID)
	ns.Name = core.CleanString(ns.Name)
	return validate.Struct(ns)
}

type NewSemester struct {
	ID   int    `json:"id" validate:"required,oneof=1 2"`
	Name string `json:"name"`
}

func (ns *NewSemester) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	return validate.Struct(ns)
}
