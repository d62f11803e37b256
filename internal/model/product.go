package model

import "github.com/shopspring/decimal"

// Product is a sellable item with its current stock.
type Product struct {
	Base
	Name        string          `gorm:"column:nombre;type:varchar(255);not null;index" json:"nombre"`
	Description string          `gorm:"column:descripcion;type:text" json:"descripcion"`
	Price       decimal.Decimal `gorm:"column:precio;type:decimal(18,2);not null" json:"precio"`
	Quantity    int             `gorm:"column:cantidad;type:int;not null" json:"cantidad"` // never negative
	Status      string          `gorm:"column:status;type:varchar(20);not null;index" json:"status"`
	Version     int64           `gorm:"column:version;not null" json:"version"` // bumped on every stock write
}

func (Product) TableName() string {
	return "productos"
}
