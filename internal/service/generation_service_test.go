package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/siddharth786s1/Project-Intelligencia-Scheduler/internal/models"
	"github.com/siddharth786s1/Project-Intelligencia-Scheduler/pkg/cache"
	appErrors "github.com/siddharth786s1/Project-Intelligencia-Scheduler/pkg/errors"
	"github.com/siddharth786s1/Project-Intelligencia-Scheduler/pkg/export"
)

type generationStoreStub struct {
	generations []models.ScheduleGeneration
	sessions    map[string][]models.ScheduledSession

	listCalls   int
	getCalls    int
	deleteCalls int
	deletedIDs  []string

	getErr    error
	deleteErr error
}

func (m *generationStoreStub) ListGenerations(_ context.Context, _ string, skip, limit int) ([]models.ScheduleGeneration, int, error) {
	m.listCalls++
	total := len(m.generations)
	if skip >= total {
		return nil, total, nil
	}
	end := skip + limit
	if end > total {
		end = total
	}
	return m.generations[skip:end], total, nil
}

func (m *generationStoreStub) Generation(_ context.Context, _ string, id string) (*models.ScheduleGeneration, error) {
	m.getCalls++
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, gen := range m.generations {
		if gen.ID == id {
			out := gen
			return &out, nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule generation not found")
}

func (m *generationStoreStub) GenerationSessions(_ context.Context, _ string, id string) ([]models.ScheduledSession, error) {
	return m.sessions[id], nil
}

func (m *generationStoreStub) DeleteGeneration(_ context.Context, _ string, id string) error {
	m.deleteCalls++
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deletedIDs = append(m.deletedIDs, id)
	return nil
}

func generationFixture() *generationStoreStub {
	return &generationStoreStub{
		generations: []models.ScheduleGeneration{
			{
				ID:            "gen-1",
				InstitutionID: "inst-1",
				Name:          "Fall draft",
				AcademicTerm:  "Fall 2026",
				StartDate:     "2026-09-01",
				EndDate:       "2026-12-20",
				Status:        models.GenerationCompleted,
				Algorithm:     "csp",
				Metrics:       models.SolutionMetrics{TotalSessions: 1, BatchSatisfactionScore: 100},
			},
			{ID: "gen-2", InstitutionID: "inst-1", Name: "Spring draft"},
		},
		sessions: map[string][]models.ScheduledSession{
			"gen-1": {
				{
					ID:              "sess-1",
					GenerationID:    "gen-1",
					Title:           "Algorithms - CS-A",
					SessionType:     models.SessionTypeLecture,
					BatchID:         "b1",
					SubjectID:       "s1",
					FacultyID:       "f1",
					ClassroomID:     "c1",
					TimeSlotID:      "t1",
					DurationMinutes: 60,
				},
			},
		},
	}
}

func newGenerationService(store *generationStoreStub) *GenerationService {
	// a store built on a nil client degrades to a cache that always misses
	return NewGenerationService(store, cache.NewStore(nil, zap.NewNop()), time.Minute, NewMetricsService(), zap.NewNop())
}

func TestGenerationListPaginates(t *testing.T) {
	store := generationFixture()
	s := newGenerationService(store)

	generations, total, err := s.List(context.Background(), "token", 0, 1)
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Len(t, generations, 1)
	require.Equal(t, "gen-1", generations[0].ID)

	generations, total, err = s.List(context.Background(), "token", 1, 10)
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Len(t, generations, 1)
	require.Equal(t, "gen-2", generations[0].ID)
}

func TestGenerationGetBundlesSessions(t *testing.T) {
	store := generationFixture()
	s := newGenerationService(store)

	summary, err := s.Get(context.Background(), "token", "inst-1", "gen-1")
	require.NoError(t, err)
	require.Equal(t, "gen-1", summary.ID)
	require.Equal(t, "Fall draft", summary.Name)
	require.Len(t, summary.Sessions, 1)
	require.Equal(t, "Algorithms - CS-A", summary.Sessions[0].Title)

	// without a live cache every read goes back to the store
	_, err = s.Get(context.Background(), "token", "inst-1", "gen-1")
	require.NoError(t, err)
	require.Equal(t, 2, store.getCalls)
}

func TestGenerationGetUnknownID(t *testing.T) {
	s := newGenerationService(generationFixture())

	_, err := s.Get(context.Background(), "token", "inst-1", "gen-404")
	require.Error(t, err)
	require.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestGenerationDelete(t *testing.T) {
	store := generationFixture()
	s := newGenerationService(store)

	require.NoError(t, s.Delete(context.Background(), "token", "inst-1", "gen-1"))
	require.Equal(t, []string{"gen-1"}, store.deletedIDs)
}

func TestGenerationDeletePropagatesStoreError(t *testing.T) {
	store := generationFixture()
	store.deleteErr = appErrors.Clone(appErrors.ErrNotFound, "schedule generation not found")
	s := newGenerationService(store)

	err := s.Delete(context.Background(), "token", "inst-1", "gen-404")
	require.Error(t, err)
	require.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestGenerationExportCSV(t *testing.T) {
	s := newGenerationService(generationFixture())

	file, err := s.Export(context.Background(), "token", "inst-1", "gen-1", "csv")
	require.NoError(t, err)
	require.Equal(t, export.ContentTypeCSV, file.ContentType)
	require.Equal(t, "timetable-gen-1.csv", file.Filename)

	content := string(file.Content)
	require.True(t, strings.HasPrefix(content, "Title,Session Type,Batch,Subject,Faculty,Classroom,Time Slot,Duration (min),Soft Violations"))
	require.Contains(t, content, "Algorithms - CS-A")
	require.Contains(t, content, "60")
}

func TestGenerationExportDefaultsToCSV(t *testing.T) {
	s := newGenerationService(generationFixture())

	file, err := s.Export(context.Background(), "token", "inst-1", "gen-1", "")
	require.NoError(t, err)
	require.Equal(t, export.ContentTypeCSV, file.ContentType)
}

func TestGenerationExportPDF(t *testing.T) {
	s := newGenerationService(generationFixture())

	file, err := s.Export(context.Background(), "token", "inst-1", "gen-1", "pdf")
	require.NoError(t, err)
	require.Equal(t, export.ContentTypePDF, file.ContentType)
	require.Equal(t, "timetable-gen-1.pdf", file.Filename)
	require.True(t, strings.HasPrefix(string(file.Content), "%PDF"))
}

func TestGenerationExportRejectsUnknownFormat(t *testing.T) {
	s := newGenerationService(generationFixture())

	_, err := s.Export(context.Background(), "token", "inst-1", "gen-1", "xlsx")
	require.Error(t, err)
	require.True(t, appErrors.Is(err, appErrors.ErrValidation))
	require.Contains(t, appErrors.FromError(err).Message, "xlsx")
}
