package echoapi_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/trezcool/academia/core/course"
	"github.com/trezcool/academia/core/user"
	testutil "github.com/trezcool/academia/tests"
)

func Test_courseApi_crud(t *testing.T) {
	db.Reset()

	admin := testutil.CreateUser(t, usrRepo, "Admin", "Root", "admin@test.cd", "", user.RoleAdmin, true)
	student := testutil.CreateUser(t, usrRepo, "Stu", "Dent", "stu@test.cd", "", user.RoleStudent, true)
	adminToken := getToken(t, admin)

	sch := testutil.CreateSchool(t, schRepo, "SENG", "School of Engineering and Technology")
	dept := testutil.CreateDepartment(t, schRepo, "CSCE", "Computer Science", sch.ID)
	sem := testutil.CreateSemester(t, acadRepo, 1, "First Semester")

	body := marshallObj(t, map[string]interface{}{
		"code": "CSCE101", "name": "Intro to Computing", "unit": 3,
		"dept_id": dept.ID, "semester_id": sem.ID,
	})

	tests := []httpTest{
		{name: "Auth required", method: http.MethodPost, path: "/v1/courses", body: body,
			wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errMissingToken)},
		{name: "Admin required", method: http.MethodPost, path: "/v1/courses", body: body, token: getToken(t, student),
			wantCode: http.StatusForbidden, wantData: marshallObj(t, httpErr{Error: "permission denied"})},
		{name: "Created", method: http.MethodPost, path: "/v1/courses", body: body, token: adminToken,
			wantCode: http.StatusCreated},
		{name: "Duplicate code", method: http.MethodPost, path: "/v1/courses", body: body, token: adminToken,
			wantCode: http.StatusConflict},
		{name: "Bad code", method: http.MethodPost, path: "/v1/courses", token: adminToken,
			body: marshallObj(t, map[string]interface{}{
				"code": "101CSC", "name": "Backwards", "unit": 3, "dept_id": dept.ID, "semester_id": sem.ID,
			}),
			wantCode: http.StatusUnprocessableEntity},
		{name: "Unknown department", method: http.MethodPost, path: "/v1/courses", token: adminToken,
			body: marshallObj(t, map[string]interface{}{
				"code": "MATH101", "name": "Calculus", "unit": 2, "dept_id": "MATH", "semester_id": sem.ID,
			}),
			wantCode: http.StatusNotFound},
	}
	runHTTPTests(t, tests)

	crs, err := crsRepo.GetCourse(reqCtx(), "CSCE101")
	if err != nil {
		t.Fatalf("GetCourse(): %v", err)
	}
	// the level is derived from the course code
	if crs.Level != 100 {
		t.Errorf("Level = %v; want 100", crs.Level)
	}

	moreTests := []httpTest{
		{name: "Anyone reads", path: "/v1/courses/CSCE101", token: getToken(t, student), wantData: marshallObj(t, crs)},
		{name: "Unknown course", path: "/v1/courses/CSCE999", token: adminToken,
			wantCode: http.StatusNotFound, wantData: marshallObj(t, httpErr{Error: "course not found"})},
		{name: "Updated", method: http.MethodPut, path: "/v1/courses/CSCE101", token: adminToken,
			body: []byte(`{"name": "Introduction to Computing"}`), wantCode: http.StatusOK},
		{name: "Deleted", method: http.MethodDelete, path: "/v1/courses/CSCE101", token: adminToken,
			wantCode: http.StatusNoContent},
	}
	runHTTPTests(t, moreTests)
}

func Test_courseApi_studentRegistration(t *testing.T) {
	db.Reset()

	sch := testutil.CreateSchool(t, schRepo, "SENG", "School of Engineering and Technology")
	dept := testutil.CreateDepartment(t, schRepo, "CSCE", "Computer Science", sch.ID)
	sem := testutil.CreateSemester(t, acadRepo, 1, "First Semester")
	crs := testutil.CreateCourse(t, crsRepo, "CSCE101", "Intro to Computing", 3, dept.ID, sem.ID)
	crs2 := testutil.CreateCourse(t, crsRepo, "CSCE201", "Data Structures", 3, dept.ID, sem.ID)
	_ = crs2

	student := testutil.CreateStudent(t, usrRepo, "Stu", "Dent", "stu@test.cd", dept.ID, 100)
	lect := testutil.CreateLecturer(t, usrRepo, "Lec", "Turer", "lect@test.cd", []string{dept.ID}, []string{crs.Code})
	studentToken := getToken(t, student)

	registerPath := "/v1/student/semesters/1/courses/" + crs.Code + "/register"

	tests := []httpTest{
		{name: "Student required", method: http.MethodPost, path: registerPath, token: getToken(t, lect),
			wantCode: http.StatusForbidden, wantData: marshallObj(t, httpErr{Error: "permission denied"})},
		{name: "Registered", method: http.MethodPost, path: registerPath, token: studentToken,
			wantCode: http.StatusOK},
		{name: "Unknown course", method: http.MethodPost, path: "/v1/student/semesters/1/courses/CSCE999/register",
			token: studentToken, wantCode: http.StatusNotFound},
	}
	runHTTPTests(t, tests)

	registered, err := crsRepo.IsRegistered(reqCtx(), student.ID, crs.Code)
	if err != nil {
		t.Fatalf("IsRegistered(): %v", err)
	}
	if !registered {
		t.Error("expected student to be registered")
	}

	t.Run("Own courses", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/student/courses", studentToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
		}
		var courses []course.Course
		if err := json.Unmarshal(rec.Body.Bytes(), &courses); err != nil {
			t.Fatalf("unmarshalling courses: %v", err)
		}
		if len(courses) != 1 || courses[0].Code != crs.Code {
			t.Errorf("courses = %+v; want just %v", courses, crs.Code)
		}
	})
}

func Test_courseApi_lecturerCourses(t *testing.T) {
	db.Reset()

	sch := testutil.CreateSchool(t, schRepo, "SENG", "School of Engineering and Technology")
	dept := testutil.CreateDepartment(t, schRepo, "CSCE", "Computer Science", sch.ID)
	sem := testutil.CreateSemester(t, acadRepo, 1, "First Semester")
	crs1 := testutil.CreateCourse(t, crsRepo, "CSCE101", "Intro to Computing", 3, dept.ID, sem.ID)
	crs2 := testutil.CreateCourse(t, crsRepo, "CSCE201", "Data Structures", 3, dept.ID, sem.ID)

	lect := testutil.CreateLecturer(t, usrRepo, "Lec", "Turer", "lect@test.cd", []string{dept.ID}, []string{crs1.Code, crs2.Code})
	lectToken := getToken(t, lect)

	tests := []struct {
		name string
		path string
		want []string
	}{
		{name: "All assigned", path: "/v1/lecturer/courses", want: []string{crs2.Code, crs1.Code}},
		{name: "Search", path: "/v1/lecturer/courses?search=intro", want: []string{crs1.Code}},
		{name: "Search (unknown)", path: "/v1/lecturer/courses?search=zzz", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, lectToken)
			app.ServeHTTP(rec, req)
			if rec.Code != http.StatusOK {
				t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
			}
			var courses []course.Course
			if err := json.Unmarshal(rec.Body.Bytes(), &courses); err != nil {
				t.Fatalf("unmarshalling courses: %v", err)
			}
			if len(courses) != len(tt.want) {
				t.Fatalf("len(courses) = %v; want %v", len(courses), len(tt.want))
			}
			for i, code := range tt.want {
				if courses[i].Code != code {
					t.Errorf("courses[%d].Code = %v; want %v", i, courses[i].Code, code)
				}
			}
		})
	}
}
