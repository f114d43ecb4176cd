package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/siddharth786s1/Project-Intelligencia-Scheduler/internal/dto"
	"github.com/siddharth786s1/Project-Intelligencia-Scheduler/internal/models"
	"github.com/siddharth786s1/Project-Intelligencia-Scheduler/internal/service"
	appErrors "github.com/siddharth786s1/Project-Intelligencia-Scheduler/pkg/errors"
	"github.com/siddharth786s1/Project-Intelligencia-Scheduler/pkg/response"
)

type schedulerService interface {
	Submit(ctx context.Context, token string, claims *models.JWTClaims, req dto.SchedulingRequest, priority int) (*models.SchedulingJobStatus, error)
	Status(jobID string) (*models.SchedulingJobStatus, error)
	Cancel(jobID string) (bool, error)
	QueueStatus() dto.QueueStatus
}

// SchedulerHandler exposes the scheduling job endpoints.
type SchedulerHandler struct {
	scheduler schedulerService
}

// NewSchedulerHandler constructs the handler.
func NewSchedulerHandler(scheduler *service.SchedulerService) *SchedulerHandler {
	return &SchedulerHandler{scheduler: scheduler}
}

// Submit godoc
// @Summary Queue a timetable generation job
// @Description Validates the request and places it on the priority queue. Higher priority values are dispatched first.
// @Tags Scheduler
// @Accept json
// @Produce json
// @Param priority query int false "Job priority, defaults to 0"
// @Param payload body dto.SchedulingRequest true "Scheduling request"
// @Success 200 {object} response.Envelope
// @Router /scheduler/jobs [post]
func (h *SchedulerHandler) Submit(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	priority := 0
	if raw := c.Query("priority"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "priority must be an integer"))
			return
		}
		priority = parsed
	}

	var req dto.SchedulingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid scheduling request payload"))
		return
	}

	status, err := h.scheduler.Submit(c.Request.Context(), tokenFromContext(c), claims, req, priority)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, status, "Scheduling job queued")
}

// Status godoc
// @Summary Poll a scheduling job
// @Tags Scheduler
// @Produce json
// @Param job_id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /scheduler/jobs/{job_id} [get]
func (h *SchedulerHandler) Status(c *gin.Context) {
	status, err := h.scheduler.Status(c.Param("job_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, status, "Scheduling job status")
}

// Cancel godoc
// @Summary Cancel a scheduling job
// @Description Queued jobs are skipped before they start; running jobs have their results discarded. Jobs already in a terminal state report false.
// @Tags Scheduler
// @Produce json
// @Param job_id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /scheduler/jobs/{job_id} [delete]
func (h *SchedulerHandler) Cancel(c *gin.Context) {
	cancelled, err := h.scheduler.Cancel(c.Param("job_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	message := "Scheduling job cancelled"
	if !cancelled {
		message = "Scheduling job already finished"
	}
	response.OK(c, cancelled, message)
}

// Queue godoc
// @Summary Report worker queue occupancy
// @Tags Scheduler
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /scheduler/queue [get]
func (h *SchedulerHandler) Queue(c *gin.Context) {
	response.OK(c, h.scheduler.QueueStatus(), "Scheduler queue status")
}
