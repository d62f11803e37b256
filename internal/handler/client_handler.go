package handler

import (
	"net/http"

	"github.com/Jaime0506/app-maestro-detail/internal/model"
	"github.com/Jaime0506/app-maestro-detail/internal/service"
	"github.com/Jaime0506/app-maestro-detail/pkg/pagination"
	"github.com/Jaime0506/app-maestro-detail/pkg/response"

	"github.com/gin-gonic/gin"
)

// StatusRequest sets an explicit status. An empty body toggles instead.
type StatusRequest struct {
	Status string `json:"status"`
}

type ClientHandler struct {
	clientService service.ClientService
}

func NewClientHandler(clientService service.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

func (h *ClientHandler) RegisterRoutes(router *gin.RouterGroup) {
	clients := router.Group("/clientes")
	{
		clients.GET("", h.ListClients)
		clients.POST("", h.CreateClient)
		clients.GET("/:id", h.GetClient)
		clients.PATCH("/:id", h.UpdateClient)
		clients.PATCH("/:id/status", h.UpdateClientStatus)
		clients.DELETE("/:id", h.DeactivateClient)
		clients.DELETE("/:id/permanent", h.DeleteClientPermanently)
	}
}

// ListClients returns a page of clients
// @Summary      List clients
// @Tags         clientes
// @Security     BearerAuth
// @Produce      json
// @Param        status  query     string  false  "activo or inactivo"
// @Param        nombre  query     string  false  "Case-insensitive name search"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Items per page (default 20)"
// @Success      200     {object}  response.Response{data=[]model.Client}
// @Failure      400     {object}  response.Response
// @Router       /api/clientes [get]
func (h *ClientHandler) ListClients(c *gin.Context) {
	p := pagination.Parse(c)

	clients, total, err := h.clientService.ListClients(c.Request.Context(), service.ClientQuery{
		Status: c.Query("status"),
		Name:   c.Query("nombre"),
		Page:   p.Page,
		Limit:  p.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, clients, p.Page, p.Limit, total))
}

// CreateClient registers a client with status activo
// @Summary      Create client
// @Tags         clientes
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateClientRequest  true  "Client"
// @Success      201      {object}  response.Response{data=model.Client}
// @Failure      400      {object}  response.Response
// @Router       /api/clientes [post]
func (h *ClientHandler) CreateClient(c *gin.Context) {
	var req service.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	client, err := h.clientService.CreateClient(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, client))
}

// GetClient
// @Summary      Get client
// @Tags         clientes
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Client ID"
// @Success      200  {object}  response.Response{data=model.Client}
// @Failure      404  {object}  response.Response
// @Router       /api/clientes/{id} [get]
func (h *ClientHandler) GetClient(c *gin.Context) {
	client, err := h.clientService.GetClient(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, client))
}

// UpdateClient merges the provided fields
// @Summary      Update client
// @Tags         clientes
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                       true  "Client ID"
// @Param        payload  body      service.UpdateClientRequest  true  "Fields to change"
// @Success      200      {object}  response.Response{data=model.Client}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/clientes/{id} [patch]
func (h *ClientHandler) UpdateClient(c *gin.Context) {
	var req service.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	client, err := h.clientService.UpdateClient(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, client))
}

// UpdateClientStatus sets or toggles the client status
// @Summary      Set or toggle client status
// @Tags         clientes
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string         true   "Client ID"
// @Param        payload  body      StatusRequest  false  "Target status; omit to toggle"
// @Success      200      {object}  response.Response{data=model.Client}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/clientes/{id}/status [patch]
func (h *ClientHandler) UpdateClientStatus(c *gin.Context) {
	var req StatusRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
	}

	var client *model.Client
	var err error
	if req.Status == "" {
		client, err = h.clientService.ToggleClientStatus(c.Request.Context(), c.Param("id"))
	} else {
		client, err = h.clientService.SetClientStatus(c.Request.Context(), c.Param("id"), req.Status)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, client))
}

// DeactivateClient is the soft delete
// @Summary      Deactivate client
// @Tags         clientes
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Client ID"
// @Success      200  {object}  response.Response{data=model.Client}
// @Failure      404  {object}  response.Response
// @Router       /api/clientes/{id} [delete]
func (h *ClientHandler) DeactivateClient(c *gin.Context) {
	client, err := h.clientService.SetClientStatus(c.Request.Context(), c.Param("id"), model.StatusInactive)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, client))
}

// DeleteClientPermanently
// @Summary      Delete client permanently
// @Tags         clientes
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Client ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/clientes/{id}/permanent [delete]
func (h *ClientHandler) DeleteClientPermanently(c *gin.Context) {
	if err := h.clientService.DeleteClientPermanently(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": c.Param("id")}))
}
