package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/trezcool/academia/core/academic"
	"github.com/trezcool/academia/core/course"
	"github.com/trezcool/academia/core/grade"
	"github.com/trezcool/academia/core/school"
	"github.com/trezcool/academia/core/user"
)

func CreateUser(
	t *testing.T,
	repo user.Repository,
	firstName, lastName, email, pwd, role string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Role:      role,
		IsActive:  &isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateStudent(
	t *testing.T,
	repo user.Repository,
	firstName, lastName, email, deptID string,
	level int,
) user.User {
	t.Helper()

	usr := CreateUser(t, repo, firstName, lastName, email, "", user.RoleStudent, true)
	usr.DeptID = deptID
	usr.Level = level
	usr, err := repo.UpdateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return usr
}

func CreateLecturer(
	t *testing.T,
	repo user.Repository,
	firstName, lastName, email string,
	deptIDs, courseCodes []string,
) user.User {
	t.Helper()

	usr := CreateUser(t, repo, firstName, lastName, email, "", user.RoleLecturer, true)
	if err := repo.SetLecturerAssignments(context.Background(), usr.ID, deptIDs, courseCodes); err != nil {
		t.Fatalf("CreateLecturer() failed: %v", err)
	}
	usr, err := repo.GetUser(context.Background(), user.GetFilter{ID: usr.ID})
	if err != nil {
		t.Fatalf("CreateLecturer() failed: %v", err)
	}
	return usr
}

func CreateSchool(t *testing.T, repo school.Repository, id, name string) school.School {
	t.Helper()

	now := time.Now().UTC()
	sch, err := repo.CreateSchool(context.Background(), school.School{ID: id, Name: name, CreatedAt: now, UpdatedAt: now})
	if err != nil {
		t.Fatalf("CreateSchool() failed: %v", err)
	}
	return sch
}

func CreateDepartment(t *testing.T, repo school.Repository, id, name, schoolID string) school.Department {
	t.Helper()

	now := time.Now().UTC()
	dept, err := repo.CreateDepartment(context.Background(), school.Department{
		ID: id, Name: name, SchoolID: schoolID, CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateDepartment() failed: %v", err)
	}
	return dept
}

func CreateSession(t *testing.T, repo academic.Repository, id string) academic.Session {
	t.Helper()

	now := time.Now().UTC()
	sess, err := repo.CreateSession(context.Background(), academic.Session{ID: id, CreatedAt: now, UpdatedAt: now})
	if err != nil {
		t.Fatalf("CreateSession() failed: %v", err)
	}
	return sess
}

func CreateSemester(t *testing.T, repo academic.Repository, id int, name string) academic.Semester {
	t.Helper()

	sem, err := repo.CreateSemester(context.Background(), academic.Semester{ID: id, Name: name})
	if err != nil {
		t.Fatalf("CreateSemester() failed: %v", err)
	}
	return sem
}

func CreateCourse(t *testing.T, repo course.Repository, code, name string, unit int, deptID string, semesterID int) course.Course {
	t.Helper()

	now := time.Now().UTC()
	crs, err := repo.CreateCourse(context.Background(), course.Course{
		Code:       code,
		Name:       name,
		Unit:       unit,
		Level:      course.LevelFromCode(code),
		DeptID:     deptID,
		SemesterID: semesterID,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return crs
}

func RegisterStudent(t *testing.T, repo course.Repository, studentID, code string) {
	t.Helper()

	if err := repo.RegisterStudent(context.Background(), studentID, code); err != nil {
		t.Fatalf("RegisterStudent() failed: %v", err)
	}
}

func CreateBand(t *testing.T, repo grade.Repository, letter string, lower, upper int, point float64) grade.Band {
	t.Helper()

	now := time.Now().UTC()
	b, err := repo.CreateBand(context.Background(), grade.Band{
		Letter:     letter,
		LowerLimit: lower,
		UpperLimit: upper,
		GradePoint: point,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		t.Fatalf("CreateBand() failed: %v", err)
	}
	return b
}
