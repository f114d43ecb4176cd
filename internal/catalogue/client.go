// Package catalogue talks to the institution data service that owns
// the entities scheduling reads and the sessions it writes back.
package catalogue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"go.uber.org/zap"

	"github.com/siddharth786s1/Project-Intelligencia-Scheduler/internal/models"
	"github.com/siddharth786s1/Project-Intelligencia-Scheduler/pkg/config"
	appErrors "github.com/siddharth786s1/Project-Intelligencia-Scheduler/pkg/errors"
	"github.com/siddharth786s1/Project-Intelligencia-Scheduler/pkg/middleware/requestid"
)

// maxPageSize is the page size used when loading whole entity sets for
// a solver run.
const maxPageSize = 1000

// Client is an HTTP client for the catalogue service. The caller's
// bearer token is forwarded on every request so the catalogue applies
// its own tenant checks.
type Client struct {
	baseURL   string
	http      *http.Client
	logger    *zap.Logger
	batchSize int
}

// NewClient builds a catalogue client from configuration.
func NewClient(cfg config.CatalogueConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	batch := cfg.SessionBatchSize
	if batch <= 0 {
		batch = 50
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		http:      &http.Client{Timeout: timeout},
		logger:    logger,
		batchSize: batch,
	}
}

type listEnvelope[T any] struct {
	Data  []T `json:"data"`
	Total int `json:"total"`
}

type itemEnvelope[T any] struct {
	Data T `json:"data"`
}

// Faculty lists the institution's teaching staff.
func (c *Client) Faculty(ctx context.Context, token string) ([]models.Faculty, error) {
	return fetchAll[models.Faculty](ctx, c, "/faculty", token)
}

// Batches lists the institution's student cohorts.
func (c *Client) Batches(ctx context.Context, token string) ([]models.Batch, error) {
	return fetchAll[models.Batch](ctx, c, "/batches", token)
}

// Subjects lists the institution's course units.
func (c *Client) Subjects(ctx context.Context, token string) ([]models.Subject, error) {
	return fetchAll[models.Subject](ctx, c, "/subjects", token)
}

// Classrooms lists the institution's bookable rooms.
func (c *Client) Classrooms(ctx context.Context, token string) ([]models.Classroom, error) {
	return fetchAll[models.Classroom](ctx, c, "/classrooms", token)
}

// TimeSlots lists the institution's weekly teaching periods.
func (c *Client) TimeSlots(ctx context.Context, token string) ([]models.TimeSlot, error) {
	return fetchAll[models.TimeSlot](ctx, c, "/time-slots", token)
}

// SchedulingConstraints lists the institution's authored rules.
func (c *Client) SchedulingConstraints(ctx context.Context, token string) ([]models.SchedulingConstraint, error) {
	return fetchAll[models.SchedulingConstraint](ctx, c, "/scheduling-constraints", token)
}

// BatchSubjects lists which subjects each batch must be taught.
func (c *Client) BatchSubjects(ctx context.Context, token string) ([]models.BatchSubject, error) {
	return fetchAll[models.BatchSubject](ctx, c, "/batch-subjects", token)
}

// AllPreferences fetches one faculty member's bundled preferences. The
// call is retried once; transient catalogue hiccups should not sink a
// whole solver run.
func (c *Client) AllPreferences(ctx context.Context, token, facultyID string) (*models.AllPreferences, error) {
	var env itemEnvelope[models.AllPreferences]
	err := retry.Do(
		func() error {
			env = itemEnvelope[models.AllPreferences]{}
			return c.do(ctx, http.MethodGet, "/faculty-preferences/"+facultyID+"/all-preferences", token, nil, nil, &env)
		},
		retry.Attempts(2),
		retry.Delay(200*time.Millisecond),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return !appErrors.Is(err, appErrors.ErrNotFound)
		}),
	)
	if err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// CreateGeneration persists a solver run's outcome record.
func (c *Client) CreateGeneration(ctx context.Context, token string, gen models.ScheduleGeneration) (*models.ScheduleGeneration, error) {
	var env itemEnvelope[models.ScheduleGeneration]
	if err := c.do(ctx, http.MethodPost, "/schedule-generations", token, nil, gen, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// CreateSessions persists scheduled sessions in catalogue-sized chunks.
func (c *Client) CreateSessions(ctx context.Context, token string, sessions []models.ScheduledSession) error {
	for start := 0; start < len(sessions); start += c.batchSize {
		end := start + c.batchSize
		if end > len(sessions) {
			end = len(sessions)
		}
		if err := c.do(ctx, http.MethodPost, "/scheduled-sessions/batch-create", token, nil, sessions[start:end], nil); err != nil {
			return err
		}
	}
	return nil
}

// ListGenerations pages through persisted generation records.
func (c *Client) ListGenerations(ctx context.Context, token string, skip, limit int) ([]models.ScheduleGeneration, int, error) {
	query := url.Values{}
	query.Set("skip", strconv.Itoa(skip))
	query.Set("limit", strconv.Itoa(limit))

	var env listEnvelope[models.ScheduleGeneration]
	if err := c.do(ctx, http.MethodGet, "/schedule-generations", token, query, nil, &env); err != nil {
		return nil, 0, err
	}
	return env.Data, env.Total, nil
}

// Generation fetches a single generation record.
func (c *Client) Generation(ctx context.Context, token, id string) (*models.ScheduleGeneration, error) {
	var env itemEnvelope[models.ScheduleGeneration]
	if err := c.do(ctx, http.MethodGet, "/schedule-generations/"+id, token, nil, nil, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// GenerationSessions fetches the sessions placed by a generation.
func (c *Client) GenerationSessions(ctx context.Context, token, id string) ([]models.ScheduledSession, error) {
	return fetchAll[models.ScheduledSession](ctx, c, "/scheduled-sessions/generations/"+id, token)
}

// DeleteGeneration removes a generation and its sessions.
func (c *Client) DeleteGeneration(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "/schedule-generations/"+id, token, nil, nil, nil)
}

func fetchAll[T any](ctx context.Context, c *Client, path, token string) ([]T, error) {
	query := url.Values{}
	query.Set("skip", "0")
	query.Set("limit", strconv.Itoa(maxPageSize))

	var env listEnvelope[T]
	if err := c.do(ctx, http.MethodGet, path, token, query, nil, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, query url.Values, body, out interface{}) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "encode catalogue payload")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "build catalogue request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if reqID := requestid.FromContext(ctx); reqID != "" {
		req.Header.Set("X-Request-ID", reqID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCatalogue.Code, appErrors.ErrCatalogue.Status, fmt.Sprintf("catalogue request %s %s failed", method, path))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return appErrors.Clone(appErrors.ErrNotFound, "catalogue resource not found")
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn("catalogue request rejected",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return appErrors.New(appErrors.ErrCatalogue.Code, appErrors.ErrCatalogue.Status,
			fmt.Sprintf("catalogue returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet))))
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return appErrors.Wrap(err, appErrors.ErrCatalogue.Code, appErrors.ErrCatalogue.Status, "decode catalogue response")
	}
	return nil
}
