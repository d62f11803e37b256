package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Invoice status values. They form a cycle rather than a workflow.
const (
	InvoiceStatusPending  = "pendiente"
	InvoiceStatusPaid     = "pagada"
	InvoiceStatusCanceled = "cancelada"
)

var nextInvoiceStatus = map[string]string{
	InvoiceStatusPending:  InvoiceStatusPaid,
	InvoiceStatusPaid:     InvoiceStatusCanceled,
	InvoiceStatusCanceled: InvoiceStatusPending,
}

// LineItem is a product snapshot inside an invoice or movement.
type LineItem struct {
	ProductID   uuid.UUID       `json:"productoId"`
	ProductName string          `json:"productoNombre"`
	Quantity    int             `json:"cantidad"`
	UnitPrice   decimal.Decimal `json:"precioUnitario"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// NewLineItem snapshots the product's current price.
func NewLineItem(p Product, quantity int) LineItem {
	item := LineItem{
		ProductID:   p.ID,
		ProductName: p.Name,
		UnitPrice:   p.Price,
	}
	item.SetQuantity(quantity)
	return item
}

// SetQuantity overwrites the quantity and recomputes the subtotal.
func (li *LineItem) SetQuantity(quantity int) {
	li.Quantity = quantity
	li.Subtotal = li.UnitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// SumSubtotals returns the sum of the items' subtotals.
func SumSubtotals(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal)
	}
	return total
}

// Invoice (factura) is a sale to a client.
type Invoice struct {
	Base
	ClientID       uuid.UUID                     `gorm:"column:cliente_id;type:uuid;not null;index" json:"clienteId"`
	ClientName     string                        `gorm:"column:cliente_nombre;type:varchar(255);not null" json:"clienteNombre"`
	Items          datatypes.JSONSlice[LineItem] `gorm:"column:items;not null" json:"items"`
	Total          decimal.Decimal               `gorm:"column:total;type:decimal(18,2);not null" json:"total"`
	Date           time.Time                     `gorm:"column:fecha;not null;index" json:"fecha"`
	Status         string                        `gorm:"column:status;type:varchar(20);not null;index" json:"status"` // pendiente, pagada, cancelada
	IdempotencyKey *string                       `gorm:"column:idempotency_key;type:varchar(100);uniqueIndex" json:"idempotencyKey,omitempty"`
}

func (Invoice) TableName() string {
	return "facturas"
}

func IsValidInvoiceStatus(status string) bool {
	_, ok := nextInvoiceStatus[status]
	return ok
}

// NextInvoiceStatus returns the status following current in the cycle
// pendiente -> pagada -> cancelada -> pendiente.
func NextInvoiceStatus(current string) (string, error) {
	next, ok := nextInvoiceStatus[current]
	if !ok {
		return "", fmt.Errorf("unknown invoice status %q", current)
	}
	return next, nil
}
