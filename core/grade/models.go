package grade

import (
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/academia/core"
)

var (
	bandLimitsTag  = "bandlimits"
	bandLimitsText = "lower limit must be less than the upper limit"
)

// InitValidators registers this package's struct validations and translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(bandStructValidation, NewBand{})
	validate.RegisterStructValidation(bandStructValidation, UpdateBand{})
	core.RegisterCustomTranslation(validate, translator, bandLimitsTag, bandLimitsText)
}

// Band maps a score interval to a letter grade and its grade point.
type Band struct {
	ID         string    `json:"id"`
	Letter     string    `json:"letter"`      // A..F
	LowerLimit int       `json:"lower_limit"` // 0..70
	UpperLimit int       `json:"upper_limit"` // 39..100
	GradePoint float64   `json:"grade_point"` // 0..5
	CreatedAt  time.Time `json:"created_at"`  // UTC
	UpdatedAt  time.Time `json:"updated_at"`  // UTC
}

// Contains reports whether the score falls inside the band (inclusive).
func (b Band) Contains(score int) bool {
	return b.LowerLimit <= score && score <= b.UpperLimit
}

// Resolve returns the first band containing the score; bands are expected
// ordered by lower limit ascending. Nil when no band matches.
func Resolve(bands []Band, score int) *Band {
	for i := range bands {
		if bands[i].Contains(score) {
			return &bands[i]
		}
	}
	return nil
}

// NewBand contains information needed to create a new Band.
type NewBand struct {
	Letter     string  `json:"letter" validate:"required,oneof=A B C D E F"`
	LowerLimit int     `json:"lower_limit" validate:"min=0,max=70"`
	UpperLimit int     `json:"upper_limit" validate:"required,min=39,max=100"`
	GradePoint float64 `json:"grade_point" validate:"min=0,max=5"`
}

func (nb *NewBand) Validate(validate *validator.Validate) error {
	nb.Letter = core.CleanString(nb.Letter)
	return validate.Struct(nb)
}

type UpdateBand struct {
	Letter     string   `json:"letter" validate:"omitempty,oneof=A B C D E F"`
	LowerLimit *int     `json:"lower_limit" validate:"omitempty,min=0,max=70"`
	UpperLimit *int     `json:"upper_limit" validate:"omitempty,min=39,max=100"`
	GradePoint *float64 `json:"grade_point" validate:"omitempty,min=0,max=5"`
}

func (ub *UpdateBand) Validate(orig Band, validate *validator.Validate) error {
	if letter := core.CleanString(ub.Letter); letter != "" {
		ub.Letter = letter
	} else {
		ub.Letter = orig.Letter
	}
	if ub.LowerLimit == nil {
		ub.LowerLimit = &orig.LowerLimit
	}
	if ub.UpperLimit == nil {
		ub.UpperLimit = &orig.UpperLimit
	}
	if ub.GradePoint == nil {
		ub.GradePoint = &orig.GradePoint
	}
	return validate.Struct(ub)
}

// bandStructValidation checks the lower limit stays strictly below the upper limit.
func bandStructValidation(sl validator.StructLevel) {
	switch b := sl.Current().Interface().(type) {
	case NewBand:
		if b.LowerLimit >= b.UpperLimit {
			sl.ReportError(b.LowerLimit, "lower_limit", "LowerLimit", bandLimitsTag, "")
		}
	case UpdateBand:
		if b.LowerLimit != nil && b.UpperLimit != nil && *b.LowerLimit >= *b.UpperLimit {
			sl.ReportError(b.LowerLimit, "lower_limit", "LowerLimit", bandLimitsTag, "")
		}
	}
}

// Score is one lecturer-issued mark for a (student, course) pair.
type Score struct {
	ID         string    `json:"id"`
	StudentID  string    `json:"student_id"`
	CourseCode string    `json:"course_code"`
	SessionID  string    `json:"session_id"`
	SemesterID int       `json:"semester_id"`
	LecturerID string    `json:"lecturer_id"`
	Value      int       `json:"score"`
	BandID     string    `json:"band_id,omitempty"` // empty when no band matched
	CreatedAt  time.Time `json:"created_at"`        // UTC
	UpdatedAt  time.Time `json:"updated_at"`        // UTC
}

// StudentScore is a Score joined with the data its GPA contribution needs.
type StudentScore struct {
	Score
	CourseUnit int     `json:"course_unit"`
	Letter     string  `json:"letter,omitempty"`
	GradePoint float64 `json:"grade_point"` // 0 when no band matched
}

// NewScore contains information needed to record or update a Score.
// The value range is checked by the service, after its other preconditions.
type NewScore struct {
	StudentID  string `json:"student_id" validate:"required"`
	CourseCode string `json:"course_code" validate:"required,course_code"`
	Value      int    `json:"score"`
}

func (ns *NewScore) Validate(validate *validator.Validate) error {
	ns.StudentID = core.CleanString(ns.StudentID)
	ns.CourseCode = core.CleanString(ns.CourseCode)
	return validate.Struct(ns)
}

// GPA is the derived grade point average of a (student, session, semester).
type GPA struct {
	ID         string    `json:"id"`
	StudentID  string    `json:"student_id"`
	SessionID  string    `json:"session_id"`
	SemesterID int       `json:"semester_id"`
	Value      float64   `json:"value"`
	CreatedAt  time.Time `json:"created_at"` // UTC
	UpdatedAt  time.Time `json:"updated_at"` // UTC
}

// ScoreFilter selects scores; zero fields are ignored.
type ScoreFilter struct {
	StudentID  string
	CourseCode string
	SessionID  string
	SemesterID int
}
