package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Record status shared by clientes and productos
const (
	StatusActive   = "activo"
	StatusInactive = "inactivo"
)

// Base carries the store-generated identity and timestamps of every collection.
type Base struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

func IsValidRecordStatus(status string) bool {
	return status == StatusActive || status == StatusInactive
}

// ToggleRecordStatus flips activo and inactivo.
func ToggleRecordStatus(status string) string {
	if status == StatusActive {
		return StatusInactive
	}
	return StatusActive
}
