package grade_test

import (
	"context"
	"testing"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/course"
	"github.com/trezcool/academia/core/grade"
	"github.com/trezcool/academia/core/user"
	dummydb "github.com/trezcool/academia/storage/database/dummy"
	testutil "github.com/trezcool/academia/tests"
)

func TestResolve(t *testing.T) {
	bands := []grade.Band{
		{ID: "f", Letter: "F", LowerLimit: 0, UpperLimit: 39, GradePoint: 0},
		{ID: "d", Letter: "D", LowerLimit: 45, UpperLimit: 49, GradePoint: 2},
		{ID: "a", Letter: "A", LowerLimit: 70, UpperLimit: 100, GradePoint: 5},
	}

	tests := []struct {
		name   string
		score  int
		wantID string
	}{
		{name: "lower bound is inclusive", score: 0, wantID: "f"},
		{name: "upper bound is inclusive", score: 39, wantID: "f"},
		{name: "inside a band", score: 47, wantID: "d"},
		{name: "top of the scale", score: 100, wantID: "a"},
		{name: "gap between bands matches nothing", score: 42},
		{name: "gap above mid bands", score: 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := grade.Resolve(bands, tt.score)
			if tt.wantID == "" {
				if b != nil {
					t.Errorf("Resolve(%d) = %v, want nil", tt.score, b)
				}
				return
			}
			if b == nil {
				t.Fatalf("Resolve(%d) = nil, want band %q", tt.score, tt.wantID)
			}
			if b.ID != tt.wantID {
				t.Errorf("Resolve(%d) = band %q, want %q", tt.score, b.ID, tt.wantID)
			}
		})
	}
}

type gradeFixture struct {
	svc     grade.Service
	repo    grade.Repository
	usrRepo user.Repository
	crsRepo course.Repository
}

func newGradeFixture(t *testing.T) *gradeFixture {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	repo := dummydb.NewGradeRepository(db)
	usrRepo := dummydb.NewUserRepository(db)
	crsRepo := dummydb.NewCourseRepository(db)
	return &gradeFixture{
		svc:     grade.NewService(db, repo, usrRepo, crsRepo),
		repo:    repo,
		usrRepo: usrRepo,
		crsRepo: crsRepo,
	}
}

func (f *gradeFixture) seedBands(t *testing.T) {
	testutil.CreateBand(t, f.repo, "A", 70, 100, 5)
	testutil.CreateBand(t, f.repo, "B", 60, 69, 4)
	testutil.CreateBand(t, f.repo, "C", 50, 59, 3)
	testutil.CreateBand(t, f.repo, "D", 45, 49, 2)
	testutil.CreateBand(t, f.repo, "E", 40, 44, 1)
	testutil.CreateBand(t, f.repo, "F", 0, 39, 0)
}

func TestServiceCreateBand(t *testing.T) {
	f := newGradeFixture(t)
	ctx := context.Background()

	nb := grade.NewBand{Letter: "A", LowerLimit: 70, UpperLimit: 100, GradePoint: 5}
	if _, err := f.svc.CreateBand(ctx, nb); err != nil {
		t.Fatalf("CreateBand() failed: %v", err)
	}

	// same rule again conflicts
	if _, err := f.svc.CreateBand(ctx, nb); !core.IsConflict(err) {
		t.Errorf("CreateBand() dup err = %v, want conflict", err)
	}

	// same letter with different limits is fine
	nb2 := grade.NewBand{Letter: "A", LowerLimit: 75, UpperLimit: 100, GradePoint: 5}
	if _, err := f.svc.CreateBand(ctx, nb2); err != nil {
		t.Errorf("CreateBand() failed: %v", err)
	}
}

func TestServiceRecordScore(t *testing.T) {
	f := newGradeFixture(t)
	ctx := context.Background()
	f.seedBands(t)

	const session = "2021/2022"

	student := testutil.CreateStudent(t, f.usrRepo, "amina", "okafor", "amina@test.cd", "MATH", 100)
	outsider := testutil.CreateStudent(t, f.usrRepo, "paul", "irakoze", "paul@test.cd", "PHYS", 100)
	testutil.CreateCourse(t, f.crsRepo, "MATH101", "Algebra", 3, "MATH", 1)
	testutil.CreateCourse(t, f.crsRepo, "MATH102", "Calculus", 4, "MATH", 2)
	testutil.RegisterStudent(t, f.crsRepo, student.ID, "MATH101")
	testutil.RegisterStudent(t, f.crsRepo, student.ID, "MATH102")
	testutil.RegisterStudent(t, f.crsRepo, student.ID, "MATH103")
	testutil.RegisterStudent(t, f.crsRepo, outsider.ID, "MATH101")

	lecturer := testutil.CreateLecturer(t, f.usrRepo, "jean", "mutombo", "jean@test.cd",
		[]string{"MATH"}, []string{"MATH101", "MATH102"})
	mathOnlyLecturer := testutil.CreateLecturer(t, f.usrRepo, "grace", "kanza", "grace@test.cd",
		[]string{"PHYS"}, []string{"MATH101"})

	tests := []struct {
		name       string
		lecturer   user.User
		semesterID int
		ns         grade.NewScore
		wantErr    func(error) bool
		errDesc    string
	}{
		{
			name:       "unknown student",
			lecturer:   lecturer,
			semesterID: 1,
			ns:         grade.NewScore{StudentID: "nope", CourseCode: "MATH101", Value: 80},
			wantErr:    core.IsNotFound,
			errDesc:    "not found",
		},
		{
			name:       "student not registered for course",
			lecturer:   lecturer,
			semesterID: 2,
			ns:         grade.NewScore{StudentID: outsider.ID, CourseCode: "MATH102", Value: 80},
			wantErr:    core.IsInvalidInput,
			errDesc:    "invalid input",
		},
		{
			name:       "unknown course",
			lecturer:   lecturer,
			semesterID: 1,
			ns:         grade.NewScore{StudentID: student.ID, CourseCode: "MATH103", Value: 80},
			wantErr:    core.IsNotFound,
			errDesc:    "not found",
		},
		{
			name:       "lecturer outside student department",
			lecturer:   lecturer,
			semesterID: 1,
			ns:         grade.NewScore{StudentID: outsider.ID, CourseCode: "MATH101", Value: 80},
			wantErr:    core.IsForbidden,
			errDesc:    "forbidden",
		},
		{
			name:       "lecturer outside course department",
			lecturer:   mathOnlyLecturer,
			semesterID: 1,
			ns:         grade.NewScore{StudentID: student.ID, CourseCode: "MATH101", Value: 80},
			wantErr:    core.IsForbidden,
			errDesc:    "forbidden",
		},
		{
			name:       "course not assigned to lecturer",
			lecturer:   withoutCourses(lecturer),
			semesterID: 1,
			ns:         grade.NewScore{StudentID: student.ID, CourseCode: "MATH101", Value: 80},
			wantErr:    core.IsForbidden,
			errDesc:    "forbidden",
		},
		{
			name:       "wrong semester",
			lecturer:   lecturer,
			semesterID: 1,
			ns:         grade.NewScore{StudentID: student.ID, CourseCode: "MATH102", Value: 80},
			wantErr:    core.IsForbidden,
			errDesc:    "forbidden",
		},
		{
			name:       "score above range",
			lecturer:   lecturer,
			semesterID: 1,
			ns:         grade.NewScore{StudentID: student.ID, CourseCode: "MATH101", Value: 101},
			wantErr:    isValidationError,
			errDesc:    "validation error",
		},
		{
			name:       "negative score",
			lecturer:   lecturer,
			semesterID: 1,
			ns:         grade.NewScore{StudentID: student.ID, CourseCode: "MATH101", Value: -1},
			wantErr:    isValidationError,
			errDesc:    "validation error",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.RecordScore(ctx, tt.lecturer, session, tt.semesterID, tt.ns)
			if err == nil {
				t.Fatal("RecordScore() err = nil, want error")
			}
			if !tt.wantErr(err) {
				t.Errorf("RecordScore() err = %v, want %s", err, tt.errDesc)
			}
		})
	}

	// none of the failures above wrote a score or a GPA
	if _, err := f.repo.GetScore(ctx, grade.ScoreFilter{StudentID: student.ID}); err != grade.ErrScoreNotFound {
		t.Errorf("GetScore() after failures err = %v, want ErrScoreNotFound", err)
	}
	if _, err := f.repo.GetGPA(ctx, student.ID, session, 1); err != grade.ErrGPANotFound {
		t.Errorf("GetGPA() after failures err = %v, want ErrGPANotFound", err)
	}

	// the happy path writes the score with its resolved band
	sc, err := f.svc.RecordScore(ctx, lecturer, session, 1, grade.NewScore{
		StudentID: student.ID, CourseCode: "MATH101", Value: 80,
	})
	if err != nil {
		t.Fatalf("RecordScore() failed: %v", err)
	}
	if sc.ID == "" {
		t.Error("RecordScore() returned empty ID")
	}
	if sc.LecturerID != lecturer.ID {
		t.Errorf("RecordScore() LecturerID = %q, want %q", sc.LecturerID, lecturer.ID)
	}
	band, err := f.repo.GetBand(ctx, sc.BandID)
	if err != nil {
		t.Fatalf("GetBand() failed: %v", err)
	}
	if band.Letter != "A" {
		t.Errorf("resolved band = %q, want %q", band.Letter, "A")
	}

	// a second score for the same (student, course) conflicts, whatever the value
	if _, err = f.svc.RecordScore(ctx, lecturer, session, 1, grade.NewScore{
		StudentID: student.ID, CourseCode: "MATH101", Value: 50,
	}); !core.IsConflict(err) {
		t.Errorf("RecordScore() dup err = %v, want conflict", err)
	}

	// the GPA came along in the same commit: one A (gp 5) on a 3-unit course
	gpa, err := f.svc.StudentGPA(ctx, student.ID, session, 1)
	if err != nil {
		t.Fatalf("StudentGPA() failed: %v", err)
	}
	if want := 5.0; gpa.Value != want {
		t.Errorf("GPA = %v, want %v", gpa.Value, want)
	}
}

func withoutCourses(lect user.User) user.User {
	lect.CourseCodes = nil
	return lect
}

func isValidationError(err error) bool {
	_, ok := err.(*core.ValidationError)
	return ok
}

func TestServiceRecordScoreGPAWeighting(t *testing.T) {
	f := newGradeFixture(t)
	ctx := context.Background()
	f.seedBands(t)

	const session = "2021/2022"

	student := testutil.CreateStudent(t, f.usrRepo, "amina", "okafor", "amina@test.cd", "MATH", 100)
	testutil.CreateCourse(t, f.crsRepo, "MATH101", "Algebra", 3, "MATH", 1)
	testutil.CreateCourse(t, f.crsRepo, "MATH105", "Geometry", 4, "MATH", 1)
	testutil.RegisterStudent(t, f.crsRepo, student.ID, "MATH101")
	testutil.RegisterStudent(t, f.crsRepo, student.ID, "MATH105")
	lecturer := testutil.CreateLecturer(t, f.usrRepo, "jean", "mutombo", "jean@test.cd",
		[]string{"MATH"}, []string{"MATH101", "MATH105"})

	// A (gp 5) on 3 units, C (gp 3) on 4 units: (5×3 + 3×4) / 7
	if _, err := f.svc.RecordScore(ctx, lecturer, session, 1, grade.NewScore{
		StudentID: student.ID, CourseCode: "MATH101", Value: 85,
	}); err != nil {
		t.Fatalf("RecordScore() failed: %v", err)
	}
	if _, err := f.svc.RecordScore(ctx, lecturer, session, 1, grade.NewScore{
		StudentID: student.ID, CourseCode: "MATH105", Value: 55,
	}); err != nil {
		t.Fatalf("RecordScore() failed: %v", err)
	}

	gpa, err := f.svc.StudentGPA(ctx, student.ID, session, 1)
	if err != nil {
		t.Fatalf("StudentGPA() failed: %v", err)
	}
	if want := float64(5*3+3*4) / 7; gpa.Value != want {
		t.Errorf("GPA = %v, want %v", gpa.Value, want)
	}

	// recomputing over unchanged scores lands on the same record and value
	if _, err = f.svc.UpdateScore(ctx, lecturer, session, 1, grade.NewScore{
		StudentID: student.ID, CourseCode: "MATH105", Value: 55,
	}); err != nil {
		t.Fatalf("UpdateScore() failed: %v", err)
	}
	again, err := f.svc.StudentGPA(ctx, student.ID, session, 1)
	if err != nil {
		t.Fatalf("StudentGPA() failed: %v", err)
	}
	if again.ID != gpa.ID || again.Value != gpa.Value {
		t.Errorf("GPA after recompute = (%v, %v), want (%v, %v)", again.ID, again.Value, gpa.ID, gpa.Value)
	}
}

func TestServiceRecordScoreUnresolvedBand(t *testing.T) {
	f := newGradeFixture(t)
	ctx := context.Background()

	// a gapped scale: nothing covers 40..69
	testutil.CreateBand(t, f.repo, "A", 70, 100, 5)
	testutil.CreateBand(t, f.repo, "F", 0, 39, 0)

	const session = "2021/2022"

	student := testutil.CreateStudent(t, f.usrRepo, "amina", "okafor", "amina@test.cd", "MATH", 100)
	testutil.CreateCourse(t, f.crsRepo, "MATH101", "Algebra", 3, "MATH", 1)
	testutil.CreateCourse(t, f.crsRepo, "MATH105", "Geometry", 2, "MATH", 1)
	testutil.RegisterStudent(t, f.crsRepo, student.ID, "MATH101")
	testutil.RegisterStudent(t, f.crsRepo, student.ID, "MATH105")
	lecturer := testutil.CreateLecturer(t, f.usrRepo, "jean", "mutombo", "jean@test.cd",
		[]string{"MATH"}, []string{"MATH101", "MATH105"})

	sc, err := f.svc.RecordScore(ctx, lecturer, session, 1, grade.NewScore{
		StudentID: student.ID, CourseCode: "MATH105", Value: 55,
	})
	if err != nil {
		t.Fatalf("RecordScore() failed: %v", err)
	}
	if sc.BandID != "" {
		t.Errorf("BandID = %q, want empty", sc.BandID)
	}

	if _, err = f.svc.RecordScore(ctx, lecturer, session, 1, grade.NewScore{
		StudentID: student.ID, CourseCode: "MATH101", Value: 80,
	}); err != nil {
		t.Fatalf("RecordScore() failed: %v", err)
	}

	// the band-less score contributes 0 grade points but its units still count:
	// (0×2 + 5×3) / 5
	gpa, err := f.svc.StudentGPA(ctx, student.ID, session, 1)
	if err != nil {
		t.Fatalf("StudentGPA() failed: %v", err)
	}
	if want := float64(5*3) / 5; gpa.Value != want {
		t.Errorf("GPA = %v, want %v", gpa.Value, want)
	}
}

func TestServiceUpdateScore(t *testing.T) {
	f := newGradeFixture(t)
	ctx := context.Background()
	f.seedBands(t)

	const session = "2021/2022"

	student := testutil.CreateStudent(t, f.usrRepo, "amina", "okafor", "amina@test.cd", "MATH", 100)
	testutil.CreateCourse(t, f.crsRepo, "MATH101", "Algebra", 3, "MATH", 1)
	testutil.RegisterStudent(t, f.crsRepo, student.ID, "MATH101")
	lecturer := testutil.CreateLecturer(t, f.usrRepo, "jean", "mutombo", "jean@test.cd",
		[]string{"MATH"}, []string{"MATH101"})

	// no score yet
	if _, err := f.svc.UpdateScore(ctx, lecturer, session, 1, grade.NewScore{
		StudentID: student.ID, CourseCode: "MATH101", Value: 60,
	}); !core.IsNotFound(err) {
		t.Errorf("UpdateScore() err = %v, want not found", err)
	}

	orig, err := f.svc.RecordScore(ctx, lecturer, session, 1, grade.NewScore{
		StudentID: student.ID, CourseCode: "MATH101", Value: 80,
	})
	if err != nil {
		t.Fatalf("RecordScore() failed: %v", err)
	}

	// a lecturer covering only the course's department may still correct it
	courseDeptLecturer := testutil.CreateLecturer(t, f.usrRepo, "grace", "kanza", "grace@test.cd",
		[]string{"MATH"}, []string{"MATH101"})
	sc, err := f.svc.UpdateScore(ctx, courseDeptLecturer, session, 1, grade.NewScore{
		StudentID: student.ID, CourseCode: "MATH101", Value: 42,
	})
	if err != nil {
		t.Fatalf("UpdateScore() failed: %v", err)
	}
	if sc.ID != orig.ID {
		t.Errorf("UpdateScore() ID = %q, want %q (overwrite, not insert)", sc.ID, orig.ID)
	}
	if sc.Value != 42 {
		t.Errorf("UpdateScore() Value = %d, want 42", sc.Value)
	}
	band, err := f.repo.GetBand(ctx, sc.BandID)
	if err != nil {
		t.Fatalf("GetBand() failed: %v", err)
	}
	if band.Letter != "E" {
		t.Errorf("re-resolved band = %q, want %q", band.Letter, "E")
	}

	// the GPA followed the correction: one E (gp 1)
	gpa, err := f.svc.StudentGPA(ctx, student.ID, session, 1)
	if err != nil {
		t.Fatalf("StudentGPA() failed: %v", err)
	}
	if want := 1.0; gpa.Value != want {
		t.Errorf("GPA = %v, want %v", gpa.Value, want)
	}

	// but an unrelated lecturer may not
	stranger := testutil.CreateLecturer(t, f.usrRepo, "luc", "badibanga", "luc@test.cd",
		[]string{"PHYS"}, []string{"MATH101"})
	if _, err = f.svc.UpdateScore(ctx, stranger, session, 1, grade.NewScore{
		StudentID: student.ID, CourseCode: "MATH101", Value: 90,
	}); !core.IsForbidden(err) {
		t.Errorf("UpdateScore() err = %v, want forbidden", err)
	}
}

func TestServiceScoreAuthorizationAsymmetry(t *testing.T) {
	f := newGradeFixture(t)
	ctx := context.Background()
	f.seedBands(t)

	const session = "2021/2022"

	// a MATH student registered for a PHYS course
	student := testutil.CreateStudent(t, f.usrRepo, "amina", "okafor", "amina@test.cd", "MATH", 100)
	testutil.CreateCourse(t, f.crsRepo, "PHYS110", "Mechanics", 3, "PHYS", 1)
	testutil.RegisterStudent(t, f.crsRepo, student.ID, "PHYS110")

	broad := testutil.CreateLecturer(t, f.usrRepo, "jean", "mutombo", "jean@test.cd",
		[]string{"MATH", "PHYS"}, []string{"PHYS110"})
	// covers the student's department but not the course's
	narrow := testutil.CreateLecturer(t, f.usrRepo, "grace", "kanza", "grace@test.cd",
		[]string{"MATH"}, []string{"PHYS110"})

	// recording needs both departments
	if _, err := f.svc.RecordScore(ctx, narrow, session, 1, grade.NewScore{
		StudentID: student.ID, CourseCode: "PHYS110", Value: 80,
	}); !core.IsForbidden(err) {
		t.Errorf("RecordScore() err = %v, want forbidden", err)
	}

	orig, err := f.svc.RecordScore(ctx, broad, session, 1, grade.NewScore{
		StudentID: student.ID, CourseCode: "PHYS110", Value: 80,
	})
	if err != nil {
		t.Fatalf("RecordScore() failed: %v", err)
	}

	// correcting only needs one of them
	sc, err := f.svc.UpdateScore(ctx, narrow, session, 1, grade.NewScore{
		StudentID: student.ID, CourseCode: "PHYS110", Value: 65,
	})
	if err != nil {
		t.Fatalf("UpdateScore() failed: %v", err)
	}
	if sc.ID != orig.ID || sc.Value != 65 {
		t.Errorf("UpdateScore() = (%q, %d), want (%q, 65)", sc.ID, sc.Value, orig.ID)
	}
}

func TestServiceStudentGPANotFound(t *testing.T) {
	f := newGradeFixture(t)

	if _, err := f.svc.StudentGPA(context.Background(), "nobody", "2021/2022", 1); !core.IsNotFound(err) {
		t.Errorf("StudentGPA() err = %v, want not found", err)
	}
}
