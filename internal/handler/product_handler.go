package handler

import (
	"net/http"

	"github.com/Jaime0506/app-maestro-detail/internal/model"
	"github.com/Jaime0506/app-maestro-detail/internal/service"
	"github.com/Jaime0506/app-maestro-detail/pkg/pagination"
	"github.com/Jaime0506/app-maestro-detail/pkg/response"

	"github.com/gin-gonic/gin"
)

type ProductHandler struct {
	productService service.ProductService
}

func NewProductHandler(productService service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

func (h *ProductHandler) RegisterRoutes(router *gin.RouterGroup) {
	products := router.Group("/productos")
	{
		products.GET("", h.ListProducts)
		products.POST("", h.CreateProduct)
		products.GET("/:id", h.GetProduct)
		products.PATCH("/:id", h.UpdateProduct)
		products.PATCH("/:id/status", h.UpdateProductStatus)
		products.DELETE("/:id", h.DeactivateProduct)
		products.DELETE("/:id/permanent", h.DeleteProductPermanently)
	}
}

// ListProducts returns a page of products
// @Summary      List products
// @Tags         productos
// @Security     BearerAuth
// @Produce      json
// @Param        status  query     string  false  "activo or inactivo"
// @Param        nombre  query     string  false  "Case-insensitive name search"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Items per page (default 20)"
// @Success      200     {object}  response.Response{data=[]model.Product}
// @Failure      400     {object}  response.Response
// @Router       /api/productos [get]
func (h *ProductHandler) ListProducts(c *gin.Context) {
	p := pagination.Parse(c)

	products, total, err := h.productService.ListProducts(c.Request.Context(), service.ProductQuery{
		Status: c.Query("status"),
		Name:   c.Query("nombre"),
		Page:   p.Page,
		Limit:  p.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, products, p.Page, p.Limit, total))
}

// CreateProduct registers a product with status activo and its initial stock
// @Summary      Create product
// @Tags         productos
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateProductRequest  true  "Product"
// @Success      201      {object}  response.Response{data=model.Product}
// @Failure      400      {object}  response.Response
// @Router       /api/productos [post]
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req service.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, product))
}

// GetProduct
// @Summary      Get product
// @Tags         productos
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Product ID"
// @Success      200  {object}  response.Response{data=model.Product}
// @Failure      404  {object}  response.Response
// @Router       /api/productos/{id} [get]
func (h *ProductHandler) GetProduct(c *gin.Context) {
	product, err := h.productService.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, product))
}

// UpdateProduct merges the provided fields
// @Summary      Update product
// @Tags         productos
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                       true  "Product ID"
// @Param        payload  body      service.UpdateProductRequest  true  "Fields to change"
// @Success      200      {object}  response.Response{data=model.Product}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/productos/{id} [patch]
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var req service.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, product))
}

// UpdateProductStatus sets or toggles the product status
// @Summary      Set or toggle product status
// @Tags         productos
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string         true   "Product ID"
// @Param        payload  body      StatusRequest  false  "Target status; omit to toggle"
// @Success      200      {object}  response.Response{data=model.Product}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/productos/{id}/status [patch]
func (h *ProductHandler) UpdateProductStatus(c *gin.Context) {
	var req StatusRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
	}

	var product *model.Product
	var err error
	if req.Status == "" {
		product, err = h.productService.ToggleProductStatus(c.Request.Context(), c.Param("id"))
	} else {
		product, err = h.productService.SetProductStatus(c.Request.Context(), c.Param("id"), req.Status)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, product))
}

// DeactivateProduct is the soft delete
// @Summary      Deactivate product
// @Tags         productos
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Product ID"
// @Success      200  {object}  response.Response{data=model.Product}
// @Failure      404  {object}  response.Response
// @Router       /api/productos/{id} [delete]
func (h *ProductHandler) DeactivateProduct(c *gin.Context) {
	product, err := h.productService.SetProductStatus(c.Request.Context(), c.Param("id"), model.StatusInactive)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, product))
}

// DeleteProductPermanently
// @Summary      Delete product permanently
// @Tags         productos
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Product ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/productos/{id}/permanent [delete]
func (h *ProductHandler) DeleteProductPermanently(c *gin.Context) {
	if err := h.productService.DeleteProductPermanently(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": c.Param("id")}))
}
