package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrValidation        = errors.New("validation failed")
	ErrEmptyItems        = errors.New("invoice must contain at least one item")
	ErrTotalMismatch     = errors.New("total mismatch")
	ErrInsufficientStock = errors.New("stock insufficient")
	ErrStockConflict     = errors.New("stock changed concurrently, retry the operation")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidMovement   = errors.New("invalid movement")

	ErrIdempotencyMismatch = errors.New("idempotency key already used for a different invoice")
)

// ValidationError carries field-level messages keyed by field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, ", ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func fieldError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// StockError lists every product short of stock.
type StockError struct {
	Messages []string
}

func (e *StockError) Error() string {
	return ErrInsufficientStock.Error() + ": " + strings.Join(e.Messages, "; ")
}

func (e *StockError) Unwrap() error {
	return ErrInsufficientStock
}

// notFound maps gorm's missing-row error onto ErrNotFound.
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("database error: %w", err)
}
