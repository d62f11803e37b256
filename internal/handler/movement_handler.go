package handler

import (
	"net/http"

	"github.com/Jaime0506/app-maestro-detail/internal/service"
	"github.com/Jaime0506/app-maestro-detail/pkg/pagination"
	"github.com/Jaime0506/app-maestro-detail/pkg/response"

	"github.com/gin-gonic/gin"
)

type MovementHandler struct {
	movementService service.MovementService
}

func NewMovementHandler(movementService service.MovementService) *MovementHandler {
	return &MovementHandler{movementService: movementService}
}

func (h *MovementHandler) RegisterRoutes(router *gin.RouterGroup) {
	movements := router.Group("/movimientos")
	{
		movements.GET("", h.ListMovements)
		movements.POST("", h.RecordMovement)
	}
}

// ListMovements returns the stock movement history, newest first
// @Summary      List movements
// @Tags         movimientos
// @Security     BearerAuth
// @Produce      json
// @Param        tipo        query     string  false  "venta, compra, ajuste or devolucion"
// @Param        cliente     query     string  false  "Case-insensitive client name search"
// @Param        facturaId   query     string  false  "Invoice ID"
// @Param        fechaDesde  query     string  false  "RFC3339 or YYYY-MM-DD"
// @Param        fechaHasta  query     string  false  "RFC3339 or YYYY-MM-DD (inclusive)"
// @Param        page        query     int     false  "Page number (default 1)"
// @Param        limit       query     int     false  "Items per page (default 20)"
// @Success      200         {object}  response.Response{data=[]model.Movement}
// @Failure      400         {object}  response.Response
// @Router       /api/movimientos [get]
func (h *MovementHandler) ListMovements(c *gin.Context) {
	p := pagination.Parse(c)
	from, to, err := dateRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	movements, total, err := h.movementService.ListMovements(c.Request.Context(), service.MovementQuery{
		Type:       c.Query("tipo"),
		ClientName: c.Query("cliente"),
		InvoiceID:  c.Query("facturaId"),
		From:       from,
		To:         to,
		Page:       p.Page,
		Limit:      p.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, movements, p.Page, p.Limit, total))
}

// RecordMovement records a compra, ajuste or devolucion and applies it to stock
// @Summary      Record stock movement
// @Tags         movimientos
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.RecordMovementRequest  true  "Movement"
// @Success      201      {object}  response.Response{data=model.Movement}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/movimientos [post]
func (h *MovementHandler) RecordMovement(c *gin.Context) {
	var req service.RecordMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	movement, err := h.movementService.RecordMovement(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, movement))
}
