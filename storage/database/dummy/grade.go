package dummydb

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/grade"
)

type gradeRepository struct {
	db      *gradeTable
	courses *courseTable
}

var _ grade.Repository = (*gradeRepository)(nil) // interface compliance check

func NewGradeRepository(db *DB) grade.Repository {
	return &gradeRepository{db: db.grade, courses: db.course}
}

func gpaKey(studentID, sessionID string, semesterID int) string {
	return fmt.Sprintf("%s|%s|%d", studentID, sessionID, semesterID)
}

func (repo *gradeRepository) CreateBand(ctx context.Context, b grade.Band, exec ...core.DBExecutor) (grade.Band, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	b.ID = uuid.New().String()
	repo.db.bands[b.ID] = &b
	return b, nil
}

func (repo *gradeRepository) QueryBands(ctx context.Context, exec ...core.DBExecutor) ([]grade.Band, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	bands := make([]grade.Band, 0, len(repo.db.bands))
	for _, b := range repo.db.bands {
		bands = append(bands, *b)
	}
	sort.Slice(bands, func(i, j int) bool { return bands[i].LowerLimit < bands[j].LowerLimit })
	return bands, nil
}

func (repo *gradeRepository) GetBand(ctx context.Context, id string, exec ...core.DBExecutor) (grade.Band, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if b, ok := repo.db.bands[id]; ok {
		return *b, nil
	}
	return grade.Band{}, grade.ErrBandNotFound
}

func (repo *gradeRepository) BandExists(ctx context.Context, letter string, lower, upper int, point float64, exec ...core.DBExecutor) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, b := range repo.db.bands {
		if b.Letter == letter && b.LowerLimit == lower && b.UpperLimit == upper && b.GradePoint == point {
			return true, nil
		}
	}
	return false, nil
}

func (repo *gradeRepository) UpdateBand(ctx context.Context, b grade.Band, exec ...core.DBExecutor) (grade.Band, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.bands[b.ID]; !ok {
		return grade.Band{}, grade.ErrBandNotFound
	}
	repo.db.bands[b.ID] = &b
	return b, nil
}

func (repo *gradeRepository) DeleteBand(ctx context.Context, id string, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	delete(repo.db.bands, id)
	for _, sc := range repo.db.scores {
		if sc.BandID == id {
			sc.BandID = ""
		}
	}
	return nil
}

func (repo *gradeRepository) CreateScore(ctx context.Context, sc grade.Score, exec ...core.DBExecutor) (grade.Score, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	sc.ID = uuid.New().String()
	repo.db.scores[sc.ID] = &sc
	return sc, nil
}

func scoreMatches(sc grade.Score, filter grade.ScoreFilter) bool {
	if filter.StudentID != "" && sc.StudentID != filter.StudentID {
		return false
	}
	if filter.CourseCode != "" && sc.CourseCode != filter.CourseCode {
		return false
	}
	if filter.SessionID != "" && sc.SessionID != filter.SessionID {
		return false
	}
	if filter.SemesterID != 0 && sc.SemesterID != filter.SemesterID {
		return false
	}
	return true
}

func (repo *gradeRepository) GetScore(ctx context.Context, filter grade.ScoreFilter, exec ...core.DBExecutor) (grade.Score, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if filter == (grade.ScoreFilter{}) {
		return grade.Score{}, grade.ErrScoreNotFound
	}
	for _, sc := range repo.db.scores {
		if scoreMatches(*sc, filter) {
			return *sc, nil
		}
	}
	return grade.Score{}, grade.ErrScoreNotFound
}

func (repo *gradeRepository) UpdateScore(ctx context.Context, sc grade.Score, exec ...core.DBExecutor) (grade.Score, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.scores[sc.ID]; !ok {
		return grade.Score{}, grade.ErrScoreNotFound
	}
	repo.db.scores[sc.ID] = &sc
	return sc, nil
}

func (repo *gradeRepository) StudentScores(ctx context.Context, studentID, sessionID string, semesterID int, exec ...core.DBExecutor) ([]grade.StudentScore, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	repo.courses.RLock()
	defer repo.courses.RUnlock()

	filter := grade.ScoreFilter{StudentID: studentID, SessionID: sessionID, SemesterID: semesterID}
	scores := make([]grade.StudentScore, 0)
	for _, sc := range repo.db.scores {
		if !scoreMatches(*sc, filter) {
			continue
		}
		ss := grade.StudentScore{Score: *sc}
		if crs, ok := repo.courses.courses[sc.CourseCode]; ok {
			ss.CourseUnit = crs.Unit
		}
		if b, ok := repo.db.bands[sc.BandID]; ok {
			ss.Letter = b.Letter
			ss.GradePoint = b.GradePoint
		}
		scores = append(scores, ss)
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i].CourseCode < scores[j].CourseCode })
	return scores, nil
}

func (repo *gradeRepository) LecturerScores(ctx context.Context, lecturerID string, exec ...core.DBExecutor) ([]grade.Score, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	scores := make([]grade.Score, 0)
	for _, sc := range repo.db.scores {
		if sc.LecturerID == lecturerID {
			scores = append(scores, *sc)
		}
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i].UpdatedAt.After(scores[j].UpdatedAt) })
	return scores, nil
}

func (repo *gradeRepository) UpsertGPA(ctx context.Context, g grade.GPA, exec ...core.DBExecutor) (grade.GPA, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	key := gpaKey(g.StudentID, g.SessionID, g.SemesterID)
	if existing, ok := repo.db.gpas[key]; ok {
		existing.Value = g.Value
		existing.UpdatedAt = g.UpdatedAt
		return *existing, nil
	}
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	repo.db.gpas[key] = &g
	return g, nil
}

func (repo *gradeRepository) GetGPA(ctx context.Context, studentID, sessionID string, semesterID int, exec ...core.DBExecutor) (grade.GPA, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if g, ok := repo.db.gpas[gpaKey(studentID, sessionID, semesterID)]; ok {
		return *g, nil
	}
	return grade.GPA{}, grade.ErrGPANotFound
}
