package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/siddharth786s1/Project-Intelligencia-Scheduler/internal/middleware"
	"github.com/siddharth786s1/Project-Intelligencia-Scheduler/internal/models"
	"github.com/siddharth786s1/Project-Intelligencia-Scheduler/internal/service"
	appErrors "github.com/siddharth786s1/Project-Intelligencia-Scheduler/pkg/errors"
	"github.com/siddharth786s1/Project-Intelligencia-Scheduler/pkg/export"
)

type generationMock struct {
	listSkip  int
	listLimit int
	deleted   []string

	getErr    error
	deleteErr error
	exportErr error
}

func (m *generationMock) List(_ context.Context, _ string, skip, limit int) ([]models.ScheduleGeneration, int, error) {
	m.listSkip = skip
	m.listLimit = limit
	return []models.ScheduleGeneration{{ID: "gen-1", Name: "Fall draft"}}, 7, nil
}

func (m *generationMock) Get(_ context.Context, _, _ string, id string) (*models.ScheduleGenerationSummary, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return &models.ScheduleGenerationSummary{
		ScheduleGeneration: models.ScheduleGeneration{ID: id, Name: "Fall draft"},
		Sessions:           []models.ScheduledSession{{ID: "sess-1", Title: "Algorithms - CS-A"}},
	}, nil
}

func (m *generationMock) Delete(_ context.Context, _, _ string, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *generationMock) Export(_ context.Context, _, _ string, id, format string) (*service.ExportFile, error) {
	if m.exportErr != nil {
		return nil, m.exportErr
	}
	return &service.ExportFile{
		Content:     []byte("Title,Batch\nAlgorithms - CS-A,b1\n"),
		ContentType: export.ContentTypeCSV,
		Filename:    "timetable-" + id + ".csv",
	}, nil
}

func TestListGenerationsPaginates(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &generationMock{}
	h := &GenerationHandler{generations: mock}

	req, _ := http.NewRequest(http.MethodGet, "/scheduler/generations?skip=3&limit=2", nil)
	w := httptest.NewRecorder()
	c, _ := adminContext(w, req)

	h.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 3, mock.listSkip)
	require.Equal(t, 2, mock.listLimit)
	require.Contains(t, w.Body.String(), `"total":7`)
	require.Contains(t, w.Body.String(), `"gen-1"`)
}

func TestListGenerationsDefaults(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &generationMock{}
	h := &GenerationHandler{generations: mock}

	req, _ := http.NewRequest(http.MethodGet, "/scheduler/generations", nil)
	w := httptest.NewRecorder()
	c, _ := adminContext(w, req)

	h.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Zero(t, mock.listSkip)
	require.Equal(t, 20, mock.listLimit)
}

func TestListGenerationsRejectsBadPaging(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := &GenerationHandler{generations: &generationMock{}}

	for _, query := range []string{"?skip=-1", "?limit=0", "?limit=abc"} {
		req, _ := http.NewRequest(http.MethodGet, "/scheduler/generations"+query, nil)
		w := httptest.NewRecorder()
		c, _ := adminContext(w, req)

		h.List(c)

		require.Equal(t, http.StatusBadRequest, w.Code, "query %s", query)
	}
}

func TestGetGenerationReturnsSummary(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := &GenerationHandler{generations: &generationMock{}}

	req, _ := http.NewRequest(http.MethodGet, "/scheduler/generations/gen-1", nil)
	w := httptest.NewRecorder()
	c, _ := adminContext(w, req)
	c.Params = gin.Params{{Key: "generation_id", Value: "gen-1"}}

	h.Get(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"gen-1"`)
	require.Contains(t, w.Body.String(), "Algorithms - CS-A")
}

func TestGetGenerationUnknownReturns404(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &generationMock{getErr: appErrors.Clone(appErrors.ErrNotFound, "schedule generation not found")}
	h := &GenerationHandler{generations: mock}

	req, _ := http.NewRequest(http.MethodGet, "/scheduler/generations/missing", nil)
	w := httptest.NewRecorder()
	c, _ := adminContext(w, req)
	c.Params = gin.Params{{Key: "generation_id", Value: "missing"}}

	h.Get(c)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteGenerationAnswersTrue(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &generationMock{}
	h := &GenerationHandler{generations: mock}

	req, _ := http.NewRequest(http.MethodDelete, "/scheduler/generations/gen-1", nil)
	w := httptest.NewRecorder()
	c, _ := adminContext(w, req)
	c.Params = gin.Params{{Key: "generation_id", Value: "gen-1"}}

	h.Delete(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"data":true`)
	require.Equal(t, []string{"gen-1"}, mock.deleted)
}

func TestExportGenerationServesAttachment(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := &GenerationHandler{generations: &generationMock{}}

	req, _ := http.NewRequest(http.MethodGet, "/scheduler/generations/gen-1/export?format=csv", nil)
	w := httptest.NewRecorder()
	c, _ := adminContext(w, req)
	c.Params = gin.Params{{Key: "generation_id", Value: "gen-1"}}

	h.Export(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, export.ContentTypeCSV, w.Header().Get("Content-Type"))
	require.Contains(t, w.Header().Get("Content-Disposition"), `timetable-gen-1.csv`)
	require.True(t, strings.HasPrefix(w.Body.String(), "Title,Batch"))
}

func TestExportGenerationRejectsUnknownFormat(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &generationMock{exportErr: appErrors.Clone(appErrors.ErrValidation, `unsupported export format "xlsx"`)}
	h := &GenerationHandler{generations: mock}

	req, _ := http.NewRequest(http.MethodGet, "/scheduler/generations/gen-1/export?format=xlsx", nil)
	w := httptest.NewRecorder()
	c, _ := adminContext(w, req)
	c.Params = gin.Params{{Key: "generation_id", Value: "gen-1"}}

	h.Export(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteGenerationForbiddenForNonAdmins(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := &GenerationHandler{generations: &generationMock{}}
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserKey, &models.JWTClaims{Role: models.RoleStudent, InstitutionID: "inst-1"})
		c.Next()
	})
	router.DELETE("/scheduler/generations/:generation_id", middleware.RBAC(models.RoleAdmin, models.RoleSuperAdmin), h.Delete)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodDelete, "/scheduler/generations/gen-1", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusForbidden, w.Code)
}
