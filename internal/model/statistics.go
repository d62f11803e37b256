package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalesStatistics aggregates invoices and sale movements over a date range.
type SalesStatistics struct {
	From         time.Time        `json:"fechaDesde"`
	To           time.Time        `json:"fechaHasta"`
	InvoiceCount int64            `json:"facturas"`
	ByStatus     []StatusSummary  `json:"porStatus"`
	SoldAmount   decimal.Decimal  `json:"totalVendido"` // excludes cancelada
	TopProducts  []ProductRanking `json:"productosTop"`
}

type StatusSummary struct {
	Status string          `json:"status"`
	Count  int64           `json:"cantidad"`
	Total  decimal.Decimal `json:"total"`
}

// ProductRanking represents a product ranked by sold units
type ProductRanking struct {
	ProductID     string          `json:"productoId"`
	ProductName   string          `json:"productoNombre"`
	TotalQuantity int             `json:"cantidad"`
	TotalValue    decimal.Decimal `json:"total"`
}
