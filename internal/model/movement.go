package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Movement kinds
const (
	MovementSale       = "venta"
	MovementPurchase   = "compra"
	MovementAdjustment = "ajuste"
	MovementReturn     = "devolucion"
)

// Movement (movimiento) is the stock audit trail. Sales mirror their invoice.
type Movement struct {
	Base
	Type        string                        `gorm:"column:tipo;type:varchar(20);not null;index" json:"tipo"`
	InvoiceID   *uuid.UUID                    `gorm:"column:factura_id;type:uuid;index" json:"facturaId,omitempty"`
	ClientID    *uuid.UUID                    `gorm:"column:cliente_id;type:uuid;index" json:"clienteId,omitempty"`
	ClientName  string                        `gorm:"column:cliente_nombre;type:varchar(255)" json:"clienteNombre,omitempty"`
	Items       datatypes.JSONSlice[LineItem] `gorm:"column:items;not null" json:"items"`
	Total       decimal.Decimal               `gorm:"column:total;type:decimal(18,2);not null" json:"total"`
	Description string                        `gorm:"column:descripcion;type:text" json:"descripcion"`
	Date        time.Time                     `gorm:"column:fecha;not null;index" json:"fecha"`
}

func (Movement) TableName() string {
	return "movimientos"
}

func IsValidMovementType(t string) bool {
	switch t {
	case MovementSale, MovementPurchase, MovementAdjustment, MovementReturn:
		return true
	}
	return false
}
