package handler

import (
	"net/http"
	"time"

	"github.com/Jaime0506/app-maestro-detail/internal/service"
	"github.com/Jaime0506/app-maestro-detail/pkg/response"

	"github.com/gin-gonic/gin"
)

type StatisticsHandler struct {
	statisticsService service.StatisticsService
	now               func() time.Time
}

func NewStatisticsHandler(statisticsService service.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{statisticsService: statisticsService, now: time.Now}
}

func (h *StatisticsHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/estadisticas", h.GetStatistics)
}

// @Summary      Get sales statistics
// @Description  Invoice counts and amounts per status and the best selling products in a date range.
// @Description  Defaults to the current month.
// @Tags         estadisticas
// @Security     BearerAuth
// @Produce      json
// @Param        fechaDesde  query     string  false  "RFC3339 or YYYY-MM-DD"
// @Param        fechaHasta  query     string  false  "RFC3339 or YYYY-MM-DD (inclusive)"
// @Success      200         {object}  response.Response{data=model.SalesStatistics}
// @Failure      400         {object}  response.Response  "Invalid date format"
// @Router       /api/estadisticas [get]
func (h *StatisticsHandler) GetStatistics(c *gin.Context) {
	from, to, err := dateRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	// Default to current month if no dates are provided
	now := h.now().UTC()
	startDate := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	endDate := now
	if from != nil {
		startDate = *from
	}
	if to != nil {
		endDate = *to
	}

	stats, err := h.statisticsService.GetStatistics(c.Request.Context(), startDate, endDate)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, stats))
}
