package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/siddharth786s1/Project-Intelligencia-Scheduler/internal/models"
	"github.com/siddharth786s1/Project-Intelligencia-Scheduler/internal/service"
	appErrors "github.com/siddharth786s1/Project-Intelligencia-Scheduler/pkg/errors"
	"github.com/siddharth786s1/Project-Intelligencia-Scheduler/pkg/response"
)

const (
	defaultListLimit = 20
	maxListLimit     = 500
)

type generationReader interface {
	List(ctx context.Context, token string, skip, limit int) ([]models.ScheduleGeneration, int, error)
	Get(ctx context.Context, token, institutionID, id string) (*models.ScheduleGenerationSummary, error)
	Delete(ctx context.Context, token, institutionID, id string) error
	Export(ctx context.Context, token, institutionID, id, format string) (*service.ExportFile, error)
}

// GenerationHandler exposes the persisted generation endpoints.
type GenerationHandler struct {
	generations generationReader
}

// NewGenerationHandler constructs the handler.
func NewGenerationHandler(generations *service.GenerationService) *GenerationHandler {
	return &GenerationHandler{generations: generations}
}

// List godoc
// @Summary List schedule generations
// @Tags Generations
// @Produce json
// @Param skip query int false "Rows to skip, defaults to 0"
// @Param limit query int false "Page size, defaults to 20, capped at 500"
// @Success 200 {object} response.Envelope
// @Router /scheduler/generations [get]
func (h *GenerationHandler) List(c *gin.Context) {
	skip, err := queryInt(c, "skip", 0)
	if err != nil {
		response.Error(c, err)
		return
	}
	limit, err := queryInt(c, "limit", defaultListLimit)
	if err != nil {
		response.Error(c, err)
		return
	}
	if skip < 0 || limit < 1 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "skip must be >= 0 and limit >= 1"))
		return
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	generations, total, err := h.generations.List(c.Request.Context(), tokenFromContext(c), skip, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, http.StatusOK, generations, "Schedule generations", &response.Pagination{
		Skip:  skip,
		Limit: limit,
		Total: total,
	})
}

// Get godoc
// @Summary Fetch one generation with its sessions
// @Tags Generations
// @Produce json
// @Param generation_id path string true "Generation ID"
// @Success 200 {object} response.Envelope
// @Router /scheduler/generations/{generation_id} [get]
func (h *GenerationHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	summary, err := h.generations.Get(c.Request.Context(), tokenFromContext(c), claims.InstitutionID, c.Param("generation_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, summary, "Schedule generation")
}

// Delete godoc
// @Summary Delete a generation and its sessions
// @Tags Generations
// @Produce json
// @Param generation_id path string true "Generation ID"
// @Success 200 {object} response.Envelope
// @Router /scheduler/generations/{generation_id} [delete]
func (h *GenerationHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.generations.Delete(c.Request.Context(), tokenFromContext(c), claims.InstitutionID, c.Param("generation_id")); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, true, "Schedule generation deleted")
}

// Export godoc
// @Summary Download a generation's timetable
// @Description Renders the generation's sessions as a CSV or PDF attachment.
// @Tags Generations
// @Produce text/csv
// @Param generation_id path string true "Generation ID"
// @Param format query string false "csv or pdf, defaults to csv"
// @Success 200 {file} binary
// @Router /scheduler/generations/{generation_id}/export [get]
func (h *GenerationHandler) Export(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	file, err := h.generations.Export(c.Request.Context(), tokenFromContext(c), claims.InstitutionID, c.Param("generation_id"), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Content)
}

func queryInt(c *gin.Context, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return 0, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s must be an integer", name))
	}
	return parsed, nil
}
