package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Jaime0506/app-maestro-detail/internal/logger"
	"github.com/Jaime0506/app-maestro-detail/internal/metrics"
	"github.com/Jaime0506/app-maestro-detail/internal/model"
	"github.com/Jaime0506/app-maestro-detail/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateProductRequest struct {
	Name        string          `json:"nombre" binding:"required"`
	Description string          `json:"descripcion"`
	Price       decimal.Decimal `json:"precio"`
	Quantity    int             `json:"cantidad" binding:"min=0"`
}

type UpdateProductRequest struct {
	Name        *string          `json:"nombre"`
	Description *string          `json:"descripcion"`
	Price       *decimal.Decimal `json:"precio"`
	Quantity    *int             `json:"cantidad"`
	Status      *string          `json:"status"`
}

type ProductQuery struct {
	Status string
	Name   string
	Page   int
	Limit  int
}

// --- Interface ---

type ProductService interface {
	CreateProduct(ctx context.Context, req CreateProductRequest) (*model.Product, error)
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	ListProducts(ctx context.Context, q ProductQuery) ([]model.Product, int64, error)
	UpdateProduct(ctx context.Context, id string, req UpdateProductRequest) (*model.Product, error)
	SetProductStatus(ctx context.Context, id, status string) (*model.Product, error)
	ToggleProductStatus(ctx context.Context, id string) (*model.Product, error)
	DeleteProductPermanently(ctx context.Context, id string) error
}

type productService struct {
	productRepo repository.ProductRepository
	notifier    Notifier
}

func NewProductService(productRepo repository.ProductRepository, notifier Notifier) ProductService {
	return &productService{productRepo: productRepo, notifier: notifierOrNop(notifier)}
}

func (s *productService) CreateProduct(ctx context.Context, req CreateProductRequest) (*model.Product, error) {
	product := &model.Product{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Price:       req.Price,
		Quantity:    req.Quantity,
		Status:      model.StatusActive,
	}

	errs := map[string]string{}
	if product.Name == "" {
		errs["nombre"] = "name is required"
	}
	if product.Price.IsNegative() {
		errs["precio"] = "price cannot be negative"
	}
	if product.Quantity < 0 {
		errs["cantidad"] = "quantity cannot be negative"
	}
	if len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	metrics.ProductStock.WithLabelValues(product.ID.String()).Set(float64(product.Quantity))
	logger.FromContext(ctx).Info("product created", zap.String("producto_id", product.ID.String()))
	s.notify(ctx, product)
	return product, nil
}

func (s *productService) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	productID, err := parseID(id, "product")
	if err != nil {
		return nil, err
	}
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, notFound(err, "product "+id)
	}
	return product, nil
}

func (s *productService) ListProducts(ctx context.Context, q ProductQuery) ([]model.Product, int64, error) {
	if q.Status != "" && !model.IsValidRecordStatus(q.Status) {
		return nil, 0, fmt.Errorf("%w: %q", ErrInvalidStatus, q.Status)
	}
	limit, offset := pageBounds(q.Page, q.Limit)

	products, total, err := s.productRepo.List(ctx, repository.ProductFilter{
		Status: q.Status,
		Name:   q.Name,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	return products, total, nil
}

// UpdateProduct merges the set fields. A new cantidad is an absolute stock
// value and bumps the version so in-flight invoices notice the change.
func (s *productService) UpdateProduct(ctx context.Context, id string, req UpdateProductRequest) (*model.Product, error) {
	productID, err := parseID(id, "product")
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	errs := map[string]string{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			errs["nombre"] = "name is required"
		}
		fields["nombre"] = name
	}
	if req.Description != nil {
		fields["descripcion"] = strings.TrimSpace(*req.Description)
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			errs["precio"] = "price cannot be negative"
		}
		fields["precio"] = *req.Price
	}
	if req.Quantity != nil {
		if *req.Quantity < 0 {
			errs["cantidad"] = "quantity cannot be negative"
		}
		fields["cantidad"] = *req.Quantity
		fields["version"] = gorm.Expr("version + 1")
	}
	if req.Status != nil {
		if !model.IsValidRecordStatus(*req.Status) {
			errs["status"] = "status must be activo or inactivo"
		}
		fields["status"] = *req.Status
	}
	if len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}
	if len(fields) == 0 {
		return s.GetProduct(ctx, id)
	}

	if err := s.productRepo.Update(ctx, productID, fields); err != nil {
		return nil, notFound(err, "product "+id)
	}

	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Quantity != nil {
		metrics.ProductStock.WithLabelValues(product.ID.String()).Set(float64(product.Quantity))
	}
	s.notify(ctx, product)
	return product, nil
}

func (s *productService) SetProductStatus(ctx context.Context, id, status string) (*model.Product, error) {
	return s.UpdateProduct(ctx, id, UpdateProductRequest{Status: &status})
}

func (s *productService) ToggleProductStatus(ctx context.Context, id string) (*model.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.SetProductStatus(ctx, id, model.ToggleRecordStatus(product.Status))
}

func (s *productService) DeleteProductPermanently(ctx context.Context, id string) error {
	productID, err := parseID(id, "product")
	if err != nil {
		return err
	}
	if err := s.productRepo.Delete(ctx, productID); err != nil {
		return notFound(err, "product "+id)
	}
	metrics.ProductStock.DeleteLabelValues(id)
	logger.FromContext(ctx).Info("product deleted permanently", zap.String("producto_id", id))
	return nil
}

func (s *productService) notify(ctx context.Context, product *model.Product) {
	s.notifier.Notify(ctx, Event{Event: EventProductChanged, Data: map[string]interface{}{
		"productoId": product.ID.String(),
		"cantidad":   product.Quantity,
		"status":     product.Status,
	}})
}
