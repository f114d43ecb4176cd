package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/siddharth786s1/Project-Intelligencia-Scheduler/internal/dto"
	"github.com/siddharth786s1/Project-Intelligencia-Scheduler/internal/models"
	"github.com/siddharth786s1/Project-Intelligencia-Scheduler/internal/solver"
	"github.com/siddharth786s1/Project-Intelligencia-Scheduler/pkg/config"
	appErrors "github.com/siddharth786s1/Project-Intelligencia-Scheduler/pkg/errors"
	"github.com/siddharth786s1/Project-Intelligencia-Scheduler/pkg/jobs"
	"github.com/siddharth786s1/Project-Intelligencia-Scheduler/pkg/middleware/requestid"
)

// CataloguePersister describes the catalogue writes the scheduler needs.
type CataloguePersister interface {
	CreateGeneration(ctx context.Context, token string, gen models.ScheduleGeneration) (*models.ScheduleGeneration, error)
	CreateSessions(ctx context.Context, token string, sessions []models.ScheduledSession) error
}

// SchedulerService owns the scheduling job lifecycle: submission onto
// the priority queue, background solving, status polling and
// cancellation. Job records live in memory for the process lifetime.
type SchedulerService struct {
	normalizer *Normalizer
	persister  CataloguePersister
	solverCfg  config.SolverConfig
	metrics    *MetricsService
	logger     *zap.Logger
	validator  *validator.Validate
	queue      *jobs.Queue

	mu      sync.Mutex
	records map[string]*jobRecord
}

type jobRecord struct {
	status    models.SchedulingJobStatus
	cancelled bool
	cancel    context.CancelFunc
}

type jobPayload struct {
	token         string
	institutionID string
	requestID     string
	request       dto.SchedulingRequest
}

// NewSchedulerService constructs the scheduler and its worker queue.
// Call Start before submitting and Stop on shutdown.
func NewSchedulerService(normalizer *Normalizer, persister CataloguePersister, cfg *config.Config, metrics *MetricsService, logger *zap.Logger) *SchedulerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &SchedulerService{
		normalizer: normalizer,
		persister:  persister,
		solverCfg:  cfg.Solver,
		metrics:    metrics,
		logger:     logger,
		validator:  validator.New(),
		records:    make(map[string]*jobRecord),
	}
	s.queue = jobs.NewQueue("scheduler", s.runJob, jobs.QueueConfig{
		Workers:  cfg.Worker.MaxWorkers,
		Capacity: cfg.Worker.QueueCapacity,
		Logger:   logger,
	})
	metrics.SetQueueDepthProvider(func() int { return s.queue.Snapshot().Pending })
	return s
}

// Start launches the background workers.
func (s *SchedulerService) Start(ctx context.Context) { s.queue.Start(ctx) }

// Stop drains in-flight jobs and refuses new submissions.
func (s *SchedulerService) Stop() { s.queue.Stop() }

// Submit validates a scheduling request and queues it. Higher priority
// jobs are dequeued first; equal priorities run in submission order.
func (s *SchedulerService) Submit(ctx context.Context, token string, claims *models.JWTClaims, req dto.SchedulingRequest, priority int) (*models.SchedulingJobStatus, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid scheduling request")
	}
	if _, err := solver.New(req.AlgorithmType); err != nil {
		return nil, err
	}
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start_date must be a YYYY-MM-DD date")
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_date must be a YYYY-MM-DD date")
	}
	if end.Before(start) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_date must not be before start_date")
	}

	record := &jobRecord{status: models.SchedulingJobStatus{
		JobID:     uuid.NewString(),
		Status:    models.StatusQueued,
		Progress:  0,
		Message:   "Job queued for processing",
		CreatedAt: time.Now().UTC(),
	}}
	jobID := record.status.JobID

	s.mu.Lock()
	s.records[jobID] = record
	s.mu.Unlock()

	err = s.queue.Enqueue(jobs.Job{
		ID:       jobID,
		Type:     "scheduling",
		Priority: priority,
		Payload: jobPayload{
			token:         token,
			institutionID: claims.InstitutionID,
			requestID:     requestid.FromContext(ctx),
			request:       req,
		},
	})
	if err != nil {
		s.mu.Lock()
		delete(s.records, jobID)
		s.mu.Unlock()
		if errors.Is(err, jobs.ErrQueueFull) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "scheduling queue is full, retry later")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue scheduling job")
	}

	s.logger.Info("scheduling job queued",
		zap.String("job_id", jobID),
		zap.String("institution_id", claims.InstitutionID),
		zap.String("algorithm", s.algorithmName(req.AlgorithmType)),
		zap.Int("priority", priority))

	status := record.status
	return &status, nil
}

// Status returns a copy of the job record.
func (s *SchedulerService) Status(jobID string) (*models.SchedulingJobStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[jobID]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "scheduling job not found")
	}
	status := record.status
	return &status, nil
}

// Cancel stops a job. Queued jobs are skipped at dequeue, running jobs
// have their results discarded before persistence. Jobs already in a
// terminal state report false.
func (s *SchedulerService) Cancel(jobID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[jobID]
	if !ok {
		return false, appErrors.Clone(appErrors.ErrNotFound, "scheduling job not found")
	}
	if record.status.Status.Terminal() {
		return false, nil
	}

	record.cancelled = true
	now := time.Now().UTC()
	record.status.Status = models.StatusCancelled
	record.status.Message = "Job cancelled"
	record.status.CompletedAt = &now
	if record.cancel != nil {
		record.cancel()
	}
	s.logger.Info("scheduling job cancelled", zap.String("job_id", jobID))
	return true, nil
}

// QueueStatus reports worker pool occupancy.
func (s *SchedulerService) QueueStatus() dto.QueueStatus {
	snap := s.queue.Snapshot()

	s.mu.Lock()
	active := 0
	for _, record := range s.records {
		if !record.status.Status.Terminal() {
			active++
		}
	}
	s.mu.Unlock()

	return dto.QueueStatus{
		QueueSize:         snap.Pending,
		RunningWorkers:    snap.Running,
		MaxWorkers:        snap.Workers,
		ActiveJobs:        active,
		WorkerTaskRunning: snap.Running > 0,
	}
}

// runJob is the queue handler driving one job through fetch, solve and
// persist. It never returns an error for domain failures; those land
// on the job record instead.
func (s *SchedulerService) runJob(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(jobPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", job.Payload)
	}
	if s.isCancelled(job.ID) {
		s.logger.Info("skipping cancelled job", zap.String("job_id", job.ID))
		return nil
	}

	jobCtx, cancel := context.WithCancel(requestid.NewContext(ctx, payload.requestID))
	defer cancel()
	s.attachCancel(job.ID, cancel)

	algorithm, err := solver.New(payload.request.AlgorithmType)
	if err != nil {
		s.fail(job.ID, "unknown", time.Now(), err)
		return nil
	}

	started := time.Now().UTC()
	s.update(job.ID, func(st *models.SchedulingJobStatus) {
		st.Status = models.StatusRunning
		st.Progress = 10
		st.Message = "Running scheduling algorithm"
		st.StartedAt = &started
	})

	fetchStart := time.Now()
	in, warnings, err := s.normalizer.BuildInput(jobCtx, payload.token, payload.institutionID, payload.request)
	s.metrics.ObserveCatalogueCall("normalize_input", time.Since(fetchStart))
	if err != nil {
		s.fail(job.ID, algorithm.Name(), started, err)
		return nil
	}
	if s.isCancelled(job.ID) {
		return nil
	}
	s.update(job.ID, func(st *models.SchedulingJobStatus) { st.Progress = 30 })

	result, err := s.solveSafely(jobCtx, algorithm, in, s.solveParams(algorithm.Name(), payload.request))
	if err != nil {
		s.fail(job.ID, algorithm.Name(), started, err)
		return nil
	}
	if s.isCancelled(job.ID) {
		s.logger.Info("discarding results of cancelled job", zap.String("job_id", job.ID))
		return nil
	}
	s.update(job.ID, func(st *models.SchedulingJobStatus) { st.Progress = 80 })

	if result.Status != solver.StatusSuccess {
		s.fail(job.ID, algorithm.Name(), started, appErrors.Clone(appErrors.ErrSolver, result.Message))
		return nil
	}

	generation, sessions := s.buildGeneration(in, payload, algorithm.Name(), result)
	persistStart := time.Now()
	if _, err := s.persister.CreateGeneration(jobCtx, payload.token, generation); err != nil {
		s.fail(job.ID, algorithm.Name(), started, err)
		return nil
	}
	if err := s.persister.CreateSessions(jobCtx, payload.token, sessions); err != nil {
		// the generation header may dangle; clients see the job as failed
		s.fail(job.ID, algorithm.Name(), started, err)
		return nil
	}
	s.metrics.ObserveCatalogueCall("persist_generation", time.Since(persistStart))

	now := time.Now().UTC()
	message := "Scheduling completed successfully"
	if len(warnings) > 0 {
		message = fmt.Sprintf("%s (%d warnings)", message, len(warnings))
	}
	applied := s.update(job.ID, func(st *models.SchedulingJobStatus) {
		st.Status = models.StatusCompleted
		st.Progress = 100
		st.Message = message
		st.CompletedAt = &now
		st.ScheduleGenerationID = lo.ToPtr(generation.ID)
		st.TotalSessions = lo.ToPtr(result.Metrics.TotalSessions)
		st.HardConstraintViolations = lo.ToPtr(result.Metrics.HardConstraintViolations)
		st.SoftConstraintViolations = lo.ToPtr(result.Metrics.SoftConstraintViolations)
		st.FacultySatisfactionScore = lo.ToPtr(result.Metrics.FacultySatisfactionScore)
		st.BatchSatisfactionScore = lo.ToPtr(result.Metrics.BatchSatisfactionScore)
		st.RoomUtilization = lo.ToPtr(result.Metrics.RoomUtilization)
	})
	if !applied {
		return nil
	}
	s.metrics.ObserveJob(algorithm.Name(), models.StatusCompleted, time.Since(started))
	s.metrics.AddSessionsPersisted(len(sessions))
	s.logger.Info("scheduling job completed",
		zap.String("job_id", job.ID),
		zap.String("generation_id", generation.ID),
		zap.Int("sessions", len(sessions)),
		zap.Int("hard_violations", result.Metrics.HardConstraintViolations))
	return nil
}

// solveSafely coerces solver panics into solver errors so a bad run
// never takes a worker down.
func (s *SchedulerService) solveSafely(ctx context.Context, algorithm solver.Algorithm, in *solver.Input, params solver.Params) (result *solver.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("solver panicked", zap.String("algorithm", algorithm.Name()), zap.Any("panic", r))
			result = nil
			err = appErrors.New(appErrors.ErrSolver.Code, appErrors.ErrSolver.Status, fmt.Sprintf("solver panic: %v", r))
		}
	}()
	return algorithm.Solve(ctx, in, params)
}

// solveParams maps engine configuration and the request's iteration
// override onto solver parameters. The CSP engine only consumes the
// time budget.
func (s *SchedulerService) solveParams(name string, req dto.SchedulingRequest) solver.Params {
	if name == solver.AlgorithmGenetic {
		params := solver.Params{
			TimeLimit:      s.solverCfg.Genetic.TimeLimit,
			PopulationSize: s.solverCfg.Genetic.PopulationSize,
			Generations:    s.solverCfg.Genetic.Generations,
			MutationRate:   s.solverCfg.Genetic.MutationRate,
			ElitismRate:    s.solverCfg.Genetic.ElitismRate,
			TournamentSize: s.solverCfg.Genetic.TournamentSize,
		}
		if req.MaxIterations != nil {
			params.Generations = *req.MaxIterations
		}
		return params
	}
	return solver.Params{TimeLimit: s.solverCfg.CSP.TimeLimit}
}

func (s *SchedulerService) buildGeneration(in *solver.Input, payload jobPayload, algorithmName string, result *solver.Result) (models.ScheduleGeneration, []models.ScheduledSession) {
	req := payload.request
	generation := models.ScheduleGeneration{
		ID:            uuid.NewString(),
		InstitutionID: payload.institutionID,
		Name:          req.Name,
		Description:   req.Description,
		AcademicTerm:  req.AcademicTerm,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		Status:        models.GenerationCompleted,
		Algorithm:     algorithmName,
		Metrics:       result.Metrics,
		CreatedAt:     time.Now().UTC(),
	}

	sessions := make([]models.ScheduledSession, 0, len(result.Sessions))
	for _, p := range result.Sessions {
		slot := in.TimeSlot(p.TimeSlotID)
		minutes, _ := models.SlotDurationMinutes(slot.StartTime, slot.EndTime)
		if minutes < models.MinSessionMinutes {
			minutes = models.MinSessionMinutes
		} else if minutes > models.MaxSessionMinutes {
			minutes = models.MaxSessionMinutes
		}
		sessions = append(sessions, models.ScheduledSession{
			ID:                    uuid.NewString(),
			GenerationID:          generation.ID,
			InstitutionID:         payload.institutionID,
			Title:                 fmt.Sprintf("%s - %s", in.Subject(p.SubjectID).Name, in.Batch(p.BatchID).Name),
			SessionType:           models.SessionTypeLecture,
			BatchID:               p.BatchID,
			SubjectID:             p.SubjectID,
			FacultyID:             p.FacultyID,
			ClassroomID:           p.ClassroomID,
			TimeSlotID:            p.TimeSlotID,
			DurationMinutes:       minutes,
			SoftViolationsCounted: p.SoftViolations,
		})
	}
	return generation, sessions
}

// update applies a mutation unless the job already reached a terminal
// state. Terminal states are sticky, so a cancelled job never flips to
// completed or failed afterwards.
func (s *SchedulerService) update(jobID string, fn func(*models.SchedulingJobStatus)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[jobID]
	if !ok || record.status.Status.Terminal() {
		return false
	}
	fn(&record.status)
	return true
}

func (s *SchedulerService) isCancelled(jobID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[jobID]
	return ok && record.cancelled
}

func (s *SchedulerService) attachCancel(jobID string, cancel context.CancelFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if record, ok := s.records[jobID]; ok {
		record.cancel = cancel
	}
}

func (s *SchedulerService) fail(jobID, algorithmName string, started time.Time, err error) {
	appErr := appErrors.FromError(err)
	now := time.Now().UTC()
	applied := s.update(jobID, func(st *models.SchedulingJobStatus) {
		st.Status = models.StatusFailed
		st.Message = "Scheduling failed"
		st.Error = appErr.Message
		st.CompletedAt = &now
	})
	if !applied {
		return
	}
	s.metrics.ObserveJob(algorithmName, models.StatusFailed, time.Since(started))
	s.logger.Warn("scheduling job failed", zap.String("job_id", jobID), zap.Error(err))
}

func (s *SchedulerService) algorithmName(requested string) string {
	if requested == "" {
		return solver.AlgorithmCSP
	}
	return requested
}
