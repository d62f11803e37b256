package model

// Client is a customer invoices are issued to.
type Client struct {
	Base
	Name    string `gorm:"column:nombre;type:varchar(255);not null;index" json:"nombre"`
	Address string `gorm:"column:direccion;type:varchar(500)" json:"direccion"`
	Phone   string `gorm:"column:telefono;type:varchar(50)" json:"telefono"`
	Status  string `gorm:"column:status;type:varchar(20);not null;index" json:"status"` // activo, inactivo
}

func (Client) TableName() string {
	return "clientes"
}
