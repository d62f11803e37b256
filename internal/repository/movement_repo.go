package repository

import (
	"context"

	"github.com/Jaime0506/app-maestro-detail/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=movement_repo.go -destination=mock_movement_repo.go -package=repository

type MovementRepository interface {
	Create(ctx context.Context, movement *model.Movement) error
	FindSaleByInvoiceID(ctx context.Context, invoiceID uuid.UUID) (*model.Movement, error)
	List(ctx context.Context, filter MovementFilter) ([]model.Movement, int64, error)
}

type movementRepository struct {
	db *gorm.DB
}

func NewMovementRepository(db *gorm.DB) MovementRepository {
	return &movementRepository{db: db}
}

func (r *movementRepository) Create(ctx context.Context, movement *model.Movement) error {
	return GetDB(ctx, r.db).Create(movement).Error
}

func (r *movementRepository) FindSaleByInvoiceID(ctx context.Context, invoiceID uuid.UUID) (*model.Movement, error) {
	var movement model.Movement
	err := GetDB(ctx, r.db).
		Where("factura_id = ? AND tipo = ?", invoiceID, model.MovementSale).
		First(&movement).Error
	if err != nil {
		return nil, err
	}
	return &movement, nil
}

func (r *movementRepository) List(ctx context.Context, filter MovementFilter) ([]model.Movement, int64, error) {
	var movements []model.Movement
	var total int64

	query := GetDB(ctx, r.db).Model(&model.Movement{})
	if filter.Type != "" {
		query = query.Where("tipo = ?", filter.Type)
	}
	if filter.InvoiceID != nil {
		query = query.Where("factura_id = ?", *filter.InvoiceID)
	}
	if filter.ExcludeInvoiceStatus != "" {
		query = query.Where("(factura_id IS NULL OR factura_id NOT IN (?))",
			GetDB(ctx, r.db).Model(&model.Invoice{}).Select("id").Where("status = ?", filter.ExcludeInvoiceStatus))
	}
	query = containsFold(query, "cliente_nombre", filter.ClientName)
	query = dateRange(query, "fecha", filter.From, filter.To)

	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := page(query.Order("created_at DESC"), filter.Limit, filter.Offset).Find(&movements).Error
	return movements, total, err
}
