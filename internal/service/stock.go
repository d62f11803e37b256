package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Jaime0506/app-maestro-detail/internal/model"
	"github.com/Jaime0506/app-maestro-detail/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// stockWriter applies stock changes under a row lock with a version check.
// It must run inside a transaction started by the caller.
type stockWriter struct {
	products repository.ProductRepository
}

// apply locks the product, computes the new quantity with next and writes it
// back only if the row version is unchanged.
func (w stockWriter) apply(ctx context.Context, id uuid.UUID, name string, next func(p *model.Product) (int, error)) (*model.Product, error) {
	product, err := w.products.FindByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &StockError{Messages: []string{fmt.Sprintf("product %s not found", name)}}
		}
		return nil, fmt.Errorf("failed to lock product %s: %w", id, err)
	}

	quantity, err := next(product)
	if err != nil {
		return nil, err
	}

	if err := w.products.UpdateStock(ctx, product.ID, product.Version, quantity); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return nil, fmt.Errorf("%w: %s", ErrStockConflict, product.Name)
		}
		return nil, fmt.Errorf("failed to update stock for %s: %w", product.Name, err)
	}

	product.Quantity = quantity
	product.Version++
	return product, nil
}

func (w stockWriter) decrement(ctx context.Context, id uuid.UUID, name string, quantity int) (*model.Product, error) {
	return w.apply(ctx, id, name, func(p *model.Product) (int, error) {
		if p.Quantity < quantity {
			return 0, &StockError{Messages: []string{shortfallMessage(p.Name, p.Quantity, quantity)}}
		}
		return p.Quantity - quantity, nil
	})
}
