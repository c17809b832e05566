package user

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/academia/core"
)

// Roles
const (
	RoleAdmin    = "admin"
	RoleLecturer = "lect"
	RoleStudent  = "stud"
)

var (
	AllRoles = []string{RoleAdmin, RoleLecturer, RoleStudent}

	Roles = []Role{
		{Name: "Student", Value: RoleStudent},
		{Name: "Lecturer", Value: RoleLecturer},
		{Name: "Admin", Value: RoleAdmin},
	}
)

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type User struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	IsActive  *bool  `json:"is_active"`

	// student fields
	DeptID string `json:"dept_id,omitempty"`
	Level  int    `json:"level,omitempty"`

	// lecturer assignments
	DeptIDs     []string `json:"dept_ids,omitempty"`
	CourseCodes []string `json:"course_codes,omitempty"`

	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
	LastLogin    time.Time `json:"last_login"` // UTC
}

func (u *User) FullName() string {
	return core.CapitalizeName(strings.TrimSpace(u.FirstName + " " + u.LastName))
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) SetActive(active bool) { u.IsActive = &active }

func (u *User) IsAdmin() bool    { return u.Role == RoleAdmin }
func (u *User) IsLecturer() bool { return u.Role == RoleLecturer }
func (u *User) IsStudent() bool  { return u.Role == RoleStudent }

// TeachesDept reports whether the lecturer is assigned to the department.
func (u *User) TeachesDept(deptID string) bool {
	for _, id := range u.DeptIDs {
		if id == deptID {
			return true
		}
	}
	return false
}

// TeachesCourse reports whether the lecturer is assigned to the course.
func (u *User) TeachesCourse(code string) bool {
	for _, c := range u.CourseCodes {
		if c == code {
			return true
		}
	}
	return false
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	FirstName       string `json:"first_name" validate:"required,acadname"`
	LastName        string `json:"last_name" validate:"required,acadname"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	Role            string `json:"role" validate:"required,oneof=admin lect stud"`

	// student fields; required when Role is "stud" (struct-level check)
	DeptID string `json:"dept_id" validate:"omitempty,dept_id"`
	Level  int    `json:"level" validate:"omitempty,level"`
}

func (nu *NewUser) Validate(validate *validator.Validate, svc Service) error {
	nu.FirstName = core.CleanString(nu.FirstName)
	nu.LastName = core.CleanString(nu.LastName)
	nu.Email = core.CleanString(nu.Email, true /* lower */)

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckUniqueness(nu.Email)
}

// UpdateUser defines what information may be provided to modify an existing User.
type UpdateUser struct {
	FirstName       string `json:"first_name" validate:"omitempty,acadname"`
	LastName        string `json:"last_name" validate:"omitempty,acadname"`
	Email           string `json:"email" validate:"omitempty,email"`
	IsActive        *bool  `json:"is_active"`
	DeptID          string `json:"dept_id" validate:"omitempty,dept_id"`
	Level           int    `json:"level" validate:"omitempty,level"`
	Password        string `json:"password" validate:"omitempty"`
	PasswordConfirm string `json:"password_confirm" validate:"required_with=Password,eqfield=Password"`
}

func (uu *UpdateUser) Validate(origUsr User, validate *validator.Validate, svc Service) error {
	if name := core.CleanString(uu.FirstName); name != "" {
		uu.FirstName = name
	} else {
		uu.FirstName = origUsr.FirstName
	}
	if name := core.CleanString(uu.LastName); name != "" {
		uu.LastName = name
	} else {
		uu.LastName = origUsr.LastName
	}
	if email := core.CleanString(uu.Email, true /* lower */); email != "" {
		uu.Email = email
	} else {
		uu.Email = origUsr.Email
	}

	if err := validate.Struct(uu); err != nil {
		return err
	}
	return svc.CheckUniqueness(uu.Email, origUsr)
}

// LecturerAssignments sets the departments and courses a lecturer may score.
type LecturerAssignments struct {
	DeptIDs     []string `json:"dept_ids" validate:"dive,dept_id"`
	CourseCodes []string `json:"course_codes" validate:"dive,course_code"`
}

func (la *LecturerAssignments) Validate(validate *validator.Validate) error {
	for i, id := range la.DeptIDs {
		la.DeptIDs[i] = core.CleanString(id)
	}
	for i, code := range la.CourseCodes {
		la.CourseCodes[i] = core.CleanString(code)
	}
	return validate.Struct(la)
}

type ResetUserPassword struct {
	Token           string `json:"token,omitempty" validate:"required"`
	UID             string `json:"uid,omitempty" validate:"required"`
	Password        string `json:"password,omitempty" validate:"required"`
	PasswordConfirm string `json:"password_confirm,omitempty" validate:"required,eqfield=Password"`
}

func (rp ResetUserPassword) Validate(validate *validator.Validate) error {
	return validate.Struct(rp)
}

type QueryFilter struct {
	Search      string    `query:"search"`
	Role        string    `query:"role"`
	DeptID      string    `query:"dept_id"`
	IsActive    *bool     `query:"is_active"`
	CreatedFrom time.Time `query:"created_from"`
	CreatedTo   time.Time `query:"created_to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Role == "" && qf.DeptID == "" && qf.IsActive == nil &&
		qf.CreatedFrom.IsZero() && qf.CreatedTo.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Role = core.CleanString(qf.Role, true /* lower */)
	qf.DeptID = core.CleanString(qf.DeptID)
}

// GetFilter selects a single User; the first set field wins.
type GetFilter struct {
	ID    string
	Email string
}
