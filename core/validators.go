package core

import (
	"reflect"
	"regexp"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	// custom validation tags & texts
	acadNameTag   = "acadname"
	acadNameText  = "only letters and hyphens are allowed"
	acadNameRegex = regexp.MustCompile(`^[a-zA-Z-]*$`)

	courseCodeTag   = "course_code"
	courseCodeText  = "must be 4 uppercase letters followed by 3 digits"
	courseCodeRegex = regexp.MustCompile(`^[A-Z]{4}[0-9]{3}$`)

	deptIDTag   = "dept_id"
	deptIDText  = "must be 4 uppercase letters"
	deptIDRegex = regexp.MustCompile(`^[A-Z]{4}$`)

	levelTag    = "level"
	levelText   = "must be one of 100, 200, 300, 400, 500 or 600"
	validLevels = []int64{100, 200, 300, 400, 500, 600}

	sessionIDTag   = "session_id"
	sessionIDText  = "must be two 4-digit years, e.g 2021/2022"
	sessionIDRegex = regexp.MustCompile(`^[0-9]{4}[./-][0-9]{4}$`)

	requiredTag     = "required"
	requiredWithTag = "required_with"
	requiredText    = "this field is required"
)

// InitValidators instantiates the validator for use.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// register custom validators
	_ = validate.RegisterValidation(acadNameTag, acadNameValidation)
	RegisterCustomTranslation(validate, translator, acadNameTag, acadNameText)

	_ = validate.RegisterValidation(courseCodeTag, courseCodeValidation)
	RegisterCustomTranslation(validate, translator, courseCodeTag, courseCodeText)

	_ = validate.RegisterValidation(deptIDTag, deptIDValidation)
	RegisterCustomTranslation(validate, translator, deptIDTag, deptIDText)

	_ = validate.RegisterValidation(levelTag, levelValidation)
	RegisterCustomTranslation(validate, translator, levelTag, levelText)

	_ = validate.RegisterValidation(sessionIDTag, sessionIDValidation)
	RegisterCustomTranslation(validate, translator, sessionIDTag, sessionIDText)

	RegisterCustomTranslation(validate, translator, requiredTag, requiredText, true)
	RegisterCustomTranslation(validate, translator, requiredWithTag, requiredText, true)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Custom Global Validators

// acadNameValidation only allows letters and hyphens in person names.
// An empty value passes; pair with `required` to reject it.
func acadNameValidation(fl validator.FieldLevel) bool {
	return acadNameRegex.MatchString(fl.Field().String())
}

// courseCodeValidation matches course codes of the form "CSCC101".
func courseCodeValidation(fl validator.FieldLevel) bool {
	return courseCodeRegex.MatchString(fl.Field().String())
}

// deptIDValidation matches school and department codes of the form "ENGG".
func deptIDValidation(fl validator.FieldLevel) bool {
	return deptIDRegex.MatchString(fl.Field().String())
}

// levelValidation matches the study levels of a 6-year programme.
func levelValidation(fl validator.FieldLevel) bool {
	lvl := fl.Field().Int()
	for _, valid := range validLevels {
		if lvl == valid {
			return true
		}
	}
	return false
}

// sessionIDValidation matches academic session ids of the form "2021/2022".
func sessionIDValidation(fl validator.FieldLevel) bool {
	return sessionIDRegex.MatchString(fl.Field().String())
}
