package echoapi_test

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/trezcool/academia/core/user"
	emailsvc "github.com/trezcool/academia/services/email"
	testutil "github.com/trezcool/academia/tests"
)

func Test_userApi_login(t *testing.T) {
	db.Reset()

	usr := testutil.CreateUser(t, usrRepo, "Jane", "Doe", "jane@test.cd", "LeakedPwd???", user.RoleStudent, true)
	inactive := testutil.CreateUser(t, usrRepo, "Sleepy", "Head", "sleepy@test.cd", "LeakedPwd???", user.RoleStudent, false)
	_ = inactive

	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{name: "ok", body: `{"email": "jane@test.cd", "password": "LeakedPwd???"}`, wantCode: http.StatusOK},
		{name: "email case-insensitive", body: `{"email": "JANE@Test.CD", "password": "LeakedPwd???"}`, wantCode: http.StatusOK},
		{name: "wrong password", body: `{"email": "jane@test.cd", "password": "nope"}`, wantCode: http.StatusBadRequest},
		{name: "unknown email", body: `{"email": "who@test.cd", "password": "LeakedPwd???"}`, wantCode: http.StatusBadRequest},
		{name: "deactivated account", body: `{"email": "sleepy@test.cd", "password": "LeakedPwd???"}`, wantCode: http.StatusForbidden},
		{name: "missing fields", body: `{}`, wantCode: http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/login", []byte(tt.body))
			app.ServeHTTP(rec, req)
			if rec.Code != tt.wantCode {
				t.Fatalf("code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantCode != http.StatusOK {
				return
			}

			var resp LoginResponseBody
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshalling response: %v", err)
			}
			if resp.Token == "" {
				t.Error("expected a token")
			}
			if cookie := rec.Header().Get("Set-Cookie"); cookie == "" {
				t.Error("expected an auth cookie")
			}
		})
	}

	// a successful login records the time
	got, err := usrRepo.GetUser(reqCtx(), user.GetFilter{ID: usr.ID})
	if err != nil {
		t.Fatalf("GetUser(): %v", err)
	}
	if got.LastLogin.IsZero() {
		t.Error("expected LastLogin to be set")
	}
}

type LoginResponseBody struct {
	Token string `json:"token"`
}

func Test_userApi_register(t *testing.T) {
	db.Reset()

	admin := testutil.CreateUser(t, usrRepo, "Admin", "Root", "admin@test.cd", "", user.RoleAdmin, true)
	student := testutil.CreateUser(t, usrRepo, "Stu", "Dent", "stu@test.cd", "", user.RoleStudent, true)

	body := []byte(`{
		"first_name": "New", "last_name": "Guy", "email": "new@test.cd",
		"password": "V3ry$ecret!!", "password_confirm": "V3ry$ecret!!", "role": "lect"
	}`)

	tests := []httpTest{
		{name: "Auth required", method: http.MethodPost, path: "/v1/users/register", body: body,
			wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errMissingToken)},
		{name: "Admin required", method: http.MethodPost, path: "/v1/users/register", body: body, token: getToken(t, student),
			wantCode: http.StatusForbidden, wantData: marshallObj(t, httpErr{Error: "permission denied"})},
		{name: "Created", method: http.MethodPost, path: "/v1/users/register", body: body, token: getToken(t, admin),
			wantCode: http.StatusCreated},
		{name: "Duplicate email", method: http.MethodPost, path: "/v1/users/register", body: body, token: getToken(t, admin),
			wantCode: http.StatusUnprocessableEntity},
	}
	runHTTPTests(t, tests)

	usr, err := usrRepo.GetUser(reqCtx(), user.GetFilter{Email: "new@test.cd"})
	if err != nil {
		t.Fatalf("GetUser(): %v", err)
	}
	if usr.Role != user.RoleLecturer {
		t.Errorf("Role = %v; want %v", usr.Role, user.RoleLecturer)
	}
	tests = []httpTest{
		{name: "Student needs dept and level", method: http.MethodPost, path: "/v1/users/register",
			token: getToken(t, admin), wantCode: http.StatusUnprocessableEntity,
			body: []byte(`{
				"first_name": "Half", "last_name": "Baked", "email": "half@test.cd",
				"password": "V3ry$ecret!!", "password_confirm": "V3ry$ecret!!", "role": "stud"
			}`)},
	}
	runHTTPTests(t, tests)
}

func Test_userApi_userQuery(t *testing.T) {
	db.Reset()

	path := func(params url.Values) string { return "/v1/users?" + params.Encode() }

	now := time.Now()
	t1 := now.Add(-3 * time.Hour)
	t2 := now.Add(-2 * time.Hour)
	t3 := now.Add(-1 * time.Hour)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "Root", "admin@test.cd", "", user.RoleAdmin, true, t1)
	lect := testutil.CreateUser(t, usrRepo, "Lec", "Turer", "lect@test.cd", "", user.RoleLecturer, true, t2)
	student := testutil.CreateUser(t, usrRepo, "Stu", "Dent", "stu@test.cd", "", user.RoleStudent, false, t3)

	adminToken := getToken(t, admin)
	empty := marshallList(t, []interface{}{}...)

	tests := []httpTest{
		{name: "Auth required", path: "/v1/users", wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errMissingToken)},
		{name: "Admin required", path: "/v1/users", token: getToken(t, student),
			wantCode: http.StatusForbidden, wantData: marshallObj(t, httpErr{Error: "permission denied"})},
		{name: "Get all (most recent first)", path: "/v1/users", token: adminToken,
			wantData: marshallList(t, student, lect, admin)},
		{name: "search (unknown)", path: path(url.Values{"search": {"lol"}}), token: adminToken, wantData: empty},
		{name: "search=tur", path: path(url.Values{"search": {"tur"}}), token: adminToken, wantData: marshallList(t, lect)},
		{name: "role=stud", path: path(url.Values{"role": {user.RoleStudent}}), token: adminToken, wantData: marshallList(t, student)},
		{name: "is_active=false", path: path(url.Values{"is_active": {"false"}}), token: adminToken, wantData: marshallList(t, student)},
		{name: "ordering=created_at", path: path(url.Values{"ordering": {"created_at"}}), token: adminToken,
			wantData: marshallList(t, admin, lect, student)},
	}
	runHTTPTests(t, tests)
}

func Test_userApi_userRetrieveUpdate(t *testing.T) {
	db.Reset()

	admin := testutil.CreateUser(t, usrRepo, "Admin", "Root", "admin@test.cd", "", user.RoleAdmin, true)
	jane := testutil.CreateUser(t, usrRepo, "Jane", "Doe", "jane@test.cd", "", user.RoleStudent, true)
	john := testutil.CreateUser(t, usrRepo, "John", "Doe", "john@test.cd", "", user.RoleStudent, true)

	tests := []httpTest{
		{name: "Own account", path: "/v1/users/" + jane.ID, token: getToken(t, jane), wantData: marshallObj(t, jane)},
		{name: "Admin can read others", path: "/v1/users/" + jane.ID, token: getToken(t, admin), wantData: marshallObj(t, jane)},
		{name: "Others hidden", path: "/v1/users/" + john.ID, token: getToken(t, jane),
			wantCode: http.StatusNotFound, wantData: marshallObj(t, httpErr{Error: "not found"})},
		{name: "Unknown user", path: "/v1/users/oops", token: getToken(t, admin),
			wantCode: http.StatusNotFound, wantData: marshallObj(t, httpErr{Error: "not found"})},
		{name: "Self update", method: http.MethodPut, path: "/v1/users/" + jane.ID, token: getToken(t, jane),
			body: []byte(`{"first_name": "Janet"}`), wantCode: http.StatusOK},
		{name: "Self role escalation denied", method: http.MethodPut, path: "/v1/users/" + john.ID, token: getToken(t, john),
			body: []byte(`{"is_active": false}`), wantCode: http.StatusForbidden,
			wantData: marshallObj(t, httpErr{Error: "permission denied"})},
		{name: "Admin deactivates", method: http.MethodPut, path: "/v1/users/" + john.ID, token: getToken(t, admin),
			body: []byte(`{"is_active": false}`), wantCode: http.StatusOK},
	}
	runHTTPTests(t, tests)

	got, err := usrRepo.GetUser(reqCtx(), user.GetFilter{ID: jane.ID})
	if err != nil {
		t.Fatalf("GetUser(): %v", err)
	}
	if got.FirstName != "Janet" {
		t.Errorf("FirstName = %v; want Janet", got.FirstName)
	}

	got, err = usrRepo.GetUser(reqCtx(), user.GetFilter{ID: john.ID})
	if err != nil {
		t.Fatalf("GetUser(): %v", err)
	}
	if *got.IsActive {
		t.Error("expected john to be deactivated")
	}
}

func Test_userApi_lecturerAssignments(t *testing.T) {
	db.Reset()

	admin := testutil.CreateUser(t, usrRepo, "Admin", "Root", "admin@test.cd", "", user.RoleAdmin, true)
	lect := testutil.CreateUser(t, usrRepo, "Lec", "Turer", "lect@test.cd", "", user.RoleLecturer, true)
	student := testutil.CreateUser(t, usrRepo, "Stu", "Dent", "stu@test.cd", "", user.RoleStudent, true)

	sch := testutil.CreateSchool(t, schRepo, "SENG", "School of Engineering and Technology")
	dept := testutil.CreateDepartment(t, schRepo, "CSCE", "Computer Science", sch.ID)
	sem := testutil.CreateSemester(t, acadRepo, 1, "First Semester")
	crs := testutil.CreateCourse(t, crsRepo, "CSCE101", "Intro to Computing", 3, dept.ID, sem.ID)

	body := marshallObj(t, map[string]interface{}{"dept_ids": []string{dept.ID}, "course_codes": []string{crs.Code}})

	tests := []httpTest{
		{name: "Admin required", method: http.MethodPut, path: "/v1/users/" + lect.ID + "/assignments",
			token: getToken(t, lect), body: body, wantCode: http.StatusForbidden,
			wantData: marshallObj(t, httpErr{Error: "permission denied"})},
		{name: "Lecturer role required", method: http.MethodPut, path: "/v1/users/" + student.ID + "/assignments",
			token: getToken(t, admin), body: body, wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, httpErr{Error: "user is not a lecturer"})},
		{name: "Assigned", method: http.MethodPut, path: "/v1/users/" + lect.ID + "/assignments",
			token: getToken(t, admin), body: body, wantCode: http.StatusOK},
	}
	runHTTPTests(t, tests)

	got, err := usrRepo.GetUser(reqCtx(), user.GetFilter{ID: lect.ID})
	if err != nil {
		t.Fatalf("GetUser(): %v", err)
	}
	if len(got.DeptIDs) != 1 || got.DeptIDs[0] != dept.ID {
		t.Errorf("DeptIDs = %v; want [%v]", got.DeptIDs, dept.ID)
	}
	if len(got.CourseCodes) != 1 || got.CourseCodes[0] != crs.Code {
		t.Errorf("CourseCodes = %v; want [%v]", got.CourseCodes, crs.Code)
	}
}

func Test_userApi_passwordResetRoundTrip(t *testing.T) {
	db.Reset()
	emailsvc.SentMessages = emailsvc.SentMessages[:0]

	testutil.CreateUser(t, usrRepo, "Jane", "Doe", "jane@test.cd", "OldPwd!!123", user.RoleStudent, true)

	// requesting a reset always reports success, known account or not
	for _, email := range []string{"jane@test.cd", "unknown@test.cd"} {
		req, rec := newRequest(http.MethodPost, "/v1/users/password-reset", marshallObj(t, map[string]string{"email": email}))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
		}
	}

	// only the known account got a mail
	if len(emailsvc.SentMessages) != 1 {
		t.Fatalf("len(SentMessages) = %v; want 1", len(emailsvc.SentMessages))
	}
	creds, ok := emailsvc.SentMessages[0].TemplateData.(struct{ FullName, UID, Token string })
	if !ok {
		t.Fatalf("unexpected TemplateData: %+v", emailsvc.SentMessages[0].TemplateData)
	}

	body := marshallObj(t, map[string]string{
		"uid": creds.UID, "token": creds.Token,
		"password": "N3w$hinyPwd!", "password_confirm": "N3w$hinyPwd!",
	})
	req, rec := newRequest(http.MethodPost, "/v1/users/password-reset-confirm", body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
	}

	// a used token cannot be replayed
	req, rec = newRequest(http.MethodPost, "/v1/users/password-reset-confirm", body)
	app.ServeHTTP(rec, req)
	if rec.Code == http.StatusOK {
		t.Error("expected token replay to fail")
	}

	// the new password works
	req, rec = newRequest(http.MethodPost, "/v1/users/login", []byte(`{"email": "jane@test.cd", "password": "N3w$hinyPwd!"}`))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("login with new password failed: %v %s", rec.Code, rec.Body.String())
	}
}

func Test_userApi_userDestroy(t *testing.T) {
	db.Reset()

	admin := testutil.CreateUser(t, usrRepo, "Admin", "Root", "admin@test.cd", "", user.RoleAdmin, true)
	jane := testutil.CreateUser(t, usrRepo, "Jane", "Doe", "jane@test.cd", "", user.RoleStudent, true)
	adminToken := getToken(t, admin)

	tests := []httpTest{
		{name: "No self-delete", method: http.MethodDelete, path: "/v1/users/" + admin.ID, token: adminToken,
			wantCode: http.StatusForbidden, wantData: marshallObj(t, httpErr{Error: "permission denied"})},
		{name: "Deleted", method: http.MethodDelete, path: "/v1/users/" + jane.ID, token: adminToken,
			wantCode: http.StatusNoContent},
	}
	runHTTPTests(t, tests)

	if _, err := usrRepo.GetUser(reqCtx(), user.GetFilter{ID: jane.ID}); err == nil {
		t.Error("expected jane to be gone")
	}
}
