package echoapi_test

import (
	"net/http"
	"testing"

	"github.com/trezcool/academia/core/user"
	testutil "github.com/trezcool/academia/tests"
)

func Test_schoolApi_crud(t *testing.T) {
	db.Reset()

	admin := testutil.CreateUser(t, usrRepo, "Admin", "Root", "admin@test.cd", "", user.RoleAdmin, true)
	student := testutil.CreateUser(t, usrRepo, "Stu", "Dent", "stu@test.cd", "", user.RoleStudent, true)
	adminToken := getToken(t, admin)

	body := []byte(`{"id": "SBMS", "name": "School of Basic Medical Sciences"}`)

	tests := []httpTest{
		{name: "Auth required", method: http.MethodPost, path: "/v1/schools", body: body,
			wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errMissingToken)},
		{name: "Admin required", method: http.MethodPost, path: "/v1/schools", body: body, token: getToken(t, student),
			wantCode: http.StatusForbidden, wantData: marshallObj(t, httpErr{Error: "permission denied"})},
		{name: "Created", method: http.MethodPost, path: "/v1/schools", body: body, token: adminToken,
			wantCode: http.StatusCreated},
		{name: "Duplicate id", method: http.MethodPost, path: "/v1/schools", body: body, token: adminToken,
			wantCode: http.StatusConflict},
		{name: "Lowercase id rejected", method: http.MethodPost, path: "/v1/schools", token: adminToken,
			body: []byte(`{"id": "sbms", "name": "nope"}`), wantCode: http.StatusUnprocessableEntity},
		{name: "Short id rejected", method: http.MethodPost, path: "/v1/schools", token: adminToken,
			body: []byte(`{"id": "SET", "name": "nope"}`), wantCode: http.StatusUnprocessableEntity},
	}
	runHTTPTests(t, tests)

	sch, err := schRepo.GetSchool(reqCtx(), "SBMS")
	if err != nil {
		t.Fatalf("GetSchool(): %v", err)
	}

	deptBody := []byte(`{"id": "ANAT", "name": "Anatomy", "school_id": "SBMS"}`)
	deptTests := []httpTest{
		{name: "Dept created", method: http.MethodPost, path: "/v1/departments", body: deptBody, token: adminToken,
			wantCode: http.StatusCreated},
		{name: "Dept unknown school", method: http.MethodPost, path: "/v1/departments", token: adminToken,
			body:     []byte(`{"id": "PHYS", "name": "Physiology", "school_id": "NOPE"}`),
			wantCode: http.StatusNotFound},
		{name: "Anyone reads school", path: "/v1/schools/SBMS", token: getToken(t, student),
			wantData: marshallObj(t, sch)},
		{name: "Unknown school", path: "/v1/schools/NOPE", token: adminToken, wantCode: http.StatusNotFound},
		{name: "School updated", method: http.MethodPut, path: "/v1/schools/SBMS", token: adminToken,
			body: []byte(`{"description": "Preclinical studies."}`), wantCode: http.StatusOK},
	}
	runHTTPTests(t, deptTests)

	t.Run("School departments", func(t *testing.T) {
		dept, err := schRepo.GetDepartment(reqCtx(), "ANAT")
		if err != nil {
			t.Fatalf("GetDepartment(): %v", err)
		}
		tt := httpTest{name: "list", path: "/v1/schools/SBMS/departments", token: adminToken,
			wantCode: http.StatusOK, wantData: marshallList(t, dept)}
		req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})
}

func Test_academicApi_sessionsAndSemesters(t *testing.T) {
	db.Reset()

	admin := testutil.CreateUser(t, usrRepo, "Admin", "Root", "admin@test.cd", "", user.RoleAdmin, true)
	adminToken := getToken(t, admin)

	tests := []httpTest{
		{name: "Session created", method: http.MethodPost, path: "/v1/sessions", token: adminToken,
			body: []byte(`{"id": "2021/2022"}`), wantCode: http.StatusCreated},
		{name: "Session conflict", method: http.MethodPost, path: "/v1/sessions", token: adminToken,
			body: []byte(`{"id": "2021/2022"}`), wantCode: http.StatusConflict},
		{name: "Bad session id", method: http.MethodPost, path: "/v1/sessions", token: adminToken,
			body: []byte(`{"id": "21/22"}`), wantCode: http.StatusUnprocessableEntity},
		{name: "Session retrieved", path: "/v1/sessions/2021-2022", token: adminToken, wantCode: http.StatusOK},
		{name: "Unknown session", path: "/v1/sessions/1999-2000", token: adminToken, wantCode: http.StatusNotFound},
		{name: "Semester created", method: http.MethodPost, path: "/v1/semesters", token: adminToken,
			body: []byte(`{"id": 1, "name": "First Semester"}`), wantCode: http.StatusCreated},
		{name: "Bad semester id", method: http.MethodPost, path: "/v1/semesters", token: adminToken,
			body: []byte(`{"id": 3, "name": "Third Semester"}`), wantCode: http.StatusUnprocessableEntity},
		{name: "Semester retrieved", path: "/v1/semesters/1", token: adminToken, wantCode: http.StatusOK},
		{name: "Semester deleted", method: http.MethodDelete, path: "/v1/semesters/1", token: adminToken,
			wantCode: http.StatusNoContent},
		{name: "Session deleted", method: http.MethodDelete, path: "/v1/sessions/2021-2022", token: adminToken,
			wantCode: http.StatusNoContent},
	}
	runHTTPTests(t, tests)
}
