package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/siddharth786s1/Project-Intelligencia-Scheduler/internal/service"
)

// MetricsHandler exposes observability endpoints.
type MetricsHandler struct {
	metrics   *service.MetricsService
	scheduler schedulerService
}

// NewMetricsHandler constructs a metrics handler.
func NewMetricsHandler(metrics *service.MetricsService, scheduler *service.SchedulerService) *MetricsHandler {
	return &MetricsHandler{metrics: metrics, scheduler: scheduler}
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	if h.metrics == nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Health responds with a generic OK payload for liveness probes.
func (h *MetricsHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready reports readiness once the worker pool is up, including its
// occupancy so operators can see saturation at a glance.
func (h *MetricsHandler) Ready(c *gin.Context) {
	if h.scheduler == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "starting"})
		return
	}
	queue := h.scheduler.QueueStatus()
	c.JSON(http.StatusOK, gin.H{
		"status":          "ready",
		"workers":         queue.MaxWorkers,
		"running_workers": queue.RunningWorkers,
		"queue_size":      queue.QueueSize,
	})
}
