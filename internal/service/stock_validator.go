package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Jaime0506/app-maestro-detail/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StockCheck reports whether every line item can be served from current stock.
type StockCheck struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}

// ProductReader is the point lookup the validator needs.
type ProductReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
}

type StockValidator struct {
	products ProductReader
}

func NewStockValidator(products ProductReader) *StockValidator {
	return &StockValidator{products: products}
}

// Check reads each referenced product and compares its stock with the
// requested quantity. Lines for the same product are added up. Only store
// failures are returned as errors.
func (v *StockValidator) Check(ctx context.Context, items []model.LineItem) (StockCheck, error) {
	check := StockCheck{IsValid: true, Errors: []string{}}

	for _, req := range groupByProduct(items) {
		product, err := v.products.FindByID(ctx, req.productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				check.IsValid = false
				check.Errors = append(check.Errors, fmt.Sprintf("product %s not found", req.name))
				continue
			}
			return StockCheck{}, fmt.Errorf("failed to read product %s: %w", req.productID, err)
		}

		if product.Quantity < req.quantity {
			check.IsValid = false
			check.Errors = append(check.Errors, shortfallMessage(product.Name, product.Quantity, req.quantity))
		}
	}

	return check, nil
}

func shortfallMessage(name string, available, requested int) string {
	return fmt.Sprintf("insufficient stock for %s: available %d, requested %d", name, available, requested)
}

type productRequest struct {
	productID uuid.UUID
	name      string
	quantity  int
}

// groupByProduct sums quantities per product, keeping first-seen order.
func groupByProduct(items []model.LineItem) []productRequest {
	index := make(map[uuid.UUID]int, len(items))
	var out []productRequest
	for _, item := range items {
		if i, ok := index[item.ProductID]; ok {
			out[i].quantity += item.Quantity
			continue
		}
		index[item.ProductID] = len(out)
		out = append(out, productRequest{productID: item.ProductID, name: item.ProductName, quantity: item.Quantity})
	}
	return out
}
