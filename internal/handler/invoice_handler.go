package handler

import (
	"net/http"

	"github.com/Jaime0506/app-maestro-detail/internal/service"
	"github.com/Jaime0506/app-maestro-detail/pkg/pagination"
	"github.com/Jaime0506/app-maestro-detail/pkg/response"

	"github.com/gin-gonic/gin"
)

// IdempotencyKeyHeader overrides the idempotencyKey body field when present.
const IdempotencyKeyHeader = "Idempotency-Key"

type InvoiceHandler struct {
	invoiceService service.InvoiceService
	catalogService service.CatalogService
}

func NewInvoiceHandler(invoiceService service.InvoiceService, catalogService service.CatalogService) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		catalogService: catalogService,
	}
}

func (h *InvoiceHandler) RegisterRoutes(router *gin.RouterGroup) {
	invoices := router.Group("/facturas")
	{
		invoices.GET("", h.ListInvoices)
		invoices.POST("", h.CreateInvoice)
		invoices.GET("/opciones", h.GetInvoiceOptions)
		invoices.POST("/validar-stock", h.ValidateStock)
		invoices.GET("/:id", h.GetInvoice)
		invoices.POST("/:id/status/next", h.CycleStatus)
		invoices.PATCH("/:id/status", h.SetStatus)
		invoices.DELETE("/:id", h.CancelInvoice)
		invoices.DELETE("/:id/permanent", h.DeleteInvoicePermanently)
	}
}

// CreateInvoice stores an invoice, its sale movement and the stock decrements atomically
// @Summary      Create invoice
// @Description  Verifies the declared total and stock, then writes the invoice, its venta movement and
// @Description  the stock decrements in one transaction. Repeating a request with the same idempotency
// @Description  key returns the original ids with status 200.
// @Tags         facturas
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header    string                        false  "Idempotency key"
// @Param        payload          body      service.CreateInvoiceRequest  true   "Invoice draft"
// @Success      201              {object}  response.Response{data=service.CreateInvoiceResult}
// @Success      200              {object}  response.Response{data=service.CreateInvoiceResult}
// @Failure      400              {object}  response.Response
// @Failure      409              {object}  response.Response  "Insufficient stock or concurrent stock change"
// @Failure      422              {object}  response.Response  "Declared total does not match the items, or idempotency key reused for a different draft"
// @Router       /api/facturas [post]
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	var req service.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if key := c.GetHeader(IdempotencyKeyHeader); key != "" {
		req.IdempotencyKey = key
	}

	result, err := h.invoiceService.CreateInvoice(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	c.JSON(status, response.Success(status, result))
}

// ValidateStock checks the items against current stock without writing
// @Summary      Validate stock
// @Tags         facturas
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.ValidateStockRequest  true  "Items"
// @Success      200      {object}  response.Response{data=service.StockCheck}
// @Failure      400      {object}  response.Response
// @Router       /api/facturas/validar-stock [post]
func (h *InvoiceHandler) ValidateStock(c *gin.Context) {
	var req service.ValidateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	check, err := h.invoiceService.ValidateStock(c.Request.Context(), req.Items)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, check))
}

// GetInvoiceOptions returns the active clients and products for the invoice form
// @Summary      Invoice form options
// @Tags         facturas
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=service.InvoiceOptions}
// @Router       /api/facturas/opciones [get]
func (h *InvoiceHandler) GetInvoiceOptions(c *gin.Context) {
	opts, err := h.catalogService.LoadInvoiceOptions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, opts))
}

// ListInvoices returns a page of invoices, newest first
// @Summary      List invoices
// @Tags         facturas
// @Security     BearerAuth
// @Produce      json
// @Param        status      query     string  false  "pendiente, pagada or cancelada"
// @Param        clienteId   query     string  false  "Client ID"
// @Param        fechaDesde  query     string  false  "RFC3339 or YYYY-MM-DD"
// @Param        fechaHasta  query     string  false  "RFC3339 or YYYY-MM-DD (inclusive)"
// @Param        page        query     int     false  "Page number (default 1)"
// @Param        limit       query     int     false  "Items per page (default 20)"
// @Success      200         {object}  response.Response{data=[]model.Invoice}
// @Failure      400         {object}  response.Response
// @Router       /api/facturas [get]
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	p := pagination.Parse(c)
	from, to, err := dateRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	invoices, total, err := h.invoiceService.ListInvoices(c.Request.Context(), service.InvoiceQuery{
		Status:   c.Query("status"),
		ClientID: c.Query("clienteId"),
		From:     from,
		To:       to,
		Page:     p.Page,
		Limit:    p.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, invoices, p.Page, p.Limit, total))
}

// GetInvoice
// @Summary      Get invoice
// @Tags         facturas
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response{data=model.Invoice}
// @Failure      404  {object}  response.Response
// @Router       /api/facturas/{id} [get]
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoice))
}

// CycleStatus advances pendiente -> pagada -> cancelada -> pendiente
// @Summary      Advance invoice status
// @Tags         facturas
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response{data=model.Invoice}
// @Failure      404  {object}  response.Response
// @Router       /api/facturas/{id}/status/next [post]
func (h *InvoiceHandler) CycleStatus(c *gin.Context) {
	invoice, err := h.invoiceService.CycleStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoice))
}

// SetStatus
// @Summary      Set invoice status
// @Tags         facturas
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string         true  "Invoice ID"
// @Param        payload  body      StatusRequest  true  "Target status"
// @Success      200      {object}  response.Response{data=model.Invoice}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/facturas/{id}/status [patch]
func (h *InvoiceHandler) SetStatus(c *gin.Context) {
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	invoice, err := h.invoiceService.SetStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoice))
}

// CancelInvoice is the soft delete: the invoice is kept as cancelada
// @Summary      Cancel invoice
// @Tags         facturas
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response{data=model.Invoice}
// @Failure      404  {object}  response.Response
// @Router       /api/facturas/{id} [delete]
func (h *InvoiceHandler) CancelInvoice(c *gin.Context) {
	invoice, err := h.invoiceService.CancelInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoice))
}

// DeleteInvoicePermanently
// @Summary      Delete invoice permanently
// @Tags         facturas
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/facturas/{id}/permanent [delete]
func (h *InvoiceHandler) DeleteInvoicePermanently(c *gin.Context) {
	if err := h.invoiceService.DeleteInvoicePermanently(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": c.Param("id")}))
}
