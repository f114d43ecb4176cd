package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/siddharth786s1/Project-Intelligencia-Scheduler/internal/models"
	"github.com/siddharth786s1/Project-Intelligencia-Scheduler/pkg/cache"
	appErrors "github.com/siddharth786s1/Project-Intelligencia-Scheduler/pkg/errors"
	"github.com/siddharth786s1/Project-Intelligencia-Scheduler/pkg/export"
)

// GenerationStore describes the catalogue reads and deletes backing
// the generation endpoints.
type GenerationStore interface {
	ListGenerations(ctx context.Context, token string, skip, limit int) ([]models.ScheduleGeneration, int, error)
	Generation(ctx context.Context, token, id string) (*models.ScheduleGeneration, error)
	GenerationSessions(ctx context.Context, token, id string) ([]models.ScheduledSession, error)
	DeleteGeneration(ctx context.Context, token, id string) error
}

// GenerationService reads persisted schedule generations through a
// redis cache and renders timetable exports.
type GenerationService struct {
	store   GenerationStore
	cache   *cache.Store
	ttl     time.Duration
	metrics *MetricsService
	logger  *zap.Logger
}

// NewGenerationService constructs a generation service. The cache may
// be nil; reads then always go to the catalogue.
func NewGenerationService(store GenerationStore, cacheStore *cache.Store, ttl time.Duration, metrics *MetricsService, logger *zap.Logger) *GenerationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GenerationService{store: store, cache: cacheStore, ttl: ttl, metrics: metrics, logger: logger}
}

// List pages through generation headers, newest first per catalogue order.
func (s *GenerationService) List(ctx context.Context, token string, skip, limit int) ([]models.ScheduleGeneration, int, error) {
	start := time.Now()
	generations, total, err := s.store.ListGenerations(ctx, token, skip, limit)
	s.metrics.ObserveCatalogueCall("list_generations", time.Since(start))
	if err != nil {
		return nil, 0, err
	}
	return generations, total, nil
}

// Get returns one generation with its sessions, served from cache when
// possible.
func (s *GenerationService) Get(ctx context.Context, token, institutionID, id string) (*models.ScheduleGenerationSummary, error) {
	key := generationCacheKey(institutionID, id)
	if s.cache != nil {
		var cached models.ScheduleGenerationSummary
		lookupStart := time.Now()
		err := s.cache.Get(ctx, key, &cached)
		s.metrics.RecordCacheOperation(err == nil, time.Since(lookupStart))
		if err == nil {
			return &cached, nil
		}
		if !appErrors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("generation cache read failed", zap.String("generation_id", id), zap.Error(err))
		}
	}

	start := time.Now()
	generation, err := s.store.Generation(ctx, token, id)
	if err != nil {
		return nil, err
	}
	sessions, err := s.store.GenerationSessions(ctx, token, id)
	s.metrics.ObserveCatalogueCall("get_generation", time.Since(start))
	if err != nil {
		return nil, err
	}

	summary := &models.ScheduleGenerationSummary{ScheduleGeneration: *generation, Sessions: sessions}
	if s.cache != nil {
		writeStart := time.Now()
		if err := s.cache.Set(ctx, key, summary, s.ttl); err != nil {
			s.logger.Warn("generation cache write failed", zap.String("generation_id", id), zap.Error(err))
		}
		s.metrics.ObserveCacheWrite(time.Since(writeStart))
	}
	return summary, nil
}

// Delete removes a generation and its sessions from the catalogue and
// drops the cached copy.
func (s *GenerationService) Delete(ctx context.Context, token, institutionID, id string) error {
	start := time.Now()
	err := s.store.DeleteGeneration(ctx, token, id)
	s.metrics.ObserveCatalogueCall("delete_generation", time.Since(start))
	if err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, generationCacheKey(institutionID, id)); err != nil {
			s.logger.Warn("generation cache invalidation failed", zap.String("generation_id", id), zap.Error(err))
		}
	}
	s.logger.Info("schedule generation deleted", zap.String("generation_id", id), zap.String("institution_id", institutionID))
	return nil
}

// ExportFile is a rendered timetable download.
type ExportFile struct {
	Content     []byte
	ContentType string
	Filename    string
}

// Export renders a generation's timetable as CSV or PDF.
func (s *GenerationService) Export(ctx context.Context, token, institutionID, id, format string) (*ExportFile, error) {
	summary, err := s.Get(ctx, token, institutionID, id)
	if err != nil {
		return nil, err
	}

	dataset := sessionsDataset(summary.Sessions)
	switch format {
	case "", "csv":
		content, err := export.NewCSVExporter().Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return &ExportFile{
			Content:     content,
			ContentType: export.ContentTypeCSV,
			Filename:    fmt.Sprintf("timetable-%s.csv", id),
		}, nil
	case "pdf":
		subtitle := summary.AcademicTerm
		if summary.StartDate != "" && summary.EndDate != "" {
			subtitle = fmt.Sprintf("%s (%s to %s)", summary.AcademicTerm, summary.StartDate, summary.EndDate)
		}
		content, err := export.NewPDFExporter().Render(dataset, summary.Name, subtitle)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return &ExportFile{
			Content:     content,
			ContentType: export.ContentTypePDF,
			Filename:    fmt.Sprintf("timetable-%s.pdf", id),
		}, nil
	}
	return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
}

func sessionsDataset(sessions []models.ScheduledSession) export.Dataset {
	dataset := export.Dataset{
		Headers: []string{"Title", "Session Type", "Batch", "Subject", "Faculty", "Classroom", "Time Slot", "Duration (min)", "Soft Violations"},
	}
	for _, session := range sessions {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Title":           session.Title,
			"Session Type":    session.SessionType,
			"Batch":           session.BatchID,
			"Subject":         session.SubjectID,
			"Faculty":         session.FacultyID,
			"Classroom":       session.ClassroomID,
			"Time Slot":       session.TimeSlotID,
			"Duration (min)":  strconv.Itoa(session.DurationMinutes),
			"Soft Violations": strconv.Itoa(session.SoftViolationsCounted),
		})
	}
	return dataset
}

func generationCacheKey(institutionID, id string) string {
	return fmt.Sprintf("scheduler:generation:%s:%s", institutionID, id)
}
