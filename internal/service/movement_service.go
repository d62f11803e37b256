package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Jaime0506/app-maestro-detail/internal/logger"
	"github.com/Jaime0506/app-maestro-detail/internal/metrics"
	"github.com/Jaime0506/app-maestro-detail/internal/model"
	"github.com/Jaime0506/app-maestro-detail/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// --- DTOs ---

type StockMovementItem struct {
	ProductID string `json:"productoId" binding:"required"`
	Quantity  int    `json:"cantidad" binding:"min=0"`
}

// RecordMovementRequest describes a non-sale stock movement. For compra and
// devolucion Quantity is added to stock; for ajuste it is the new absolute stock.
type RecordMovementRequest struct {
	Type        string              `json:"tipo" binding:"required,oneof=compra ajuste devolucion"`
	InvoiceID   string              `json:"facturaId"`
	Items       []StockMovementItem `json:"items" binding:"required,min=1,dive"`
	Description string              `json:"descripcion"`
}

type MovementQuery struct {
	Type       string
	ClientName string
	InvoiceID  string
	From       *time.Time
	To         *time.Time
	Page       int
	Limit      int
}

// --- Interface ---

type MovementService interface {
	ListMovements(ctx context.Context, q MovementQuery) ([]model.Movement, int64, error)
	RecordMovement(ctx context.Context, req RecordMovementRequest) (*model.Movement, error)
}

type movementService struct {
	movementRepo repository.MovementRepository
	invoiceRepo  repository.InvoiceRepository
	txManager    repository.TransactionManager
	stock        stockWriter
	notifier     Notifier
}

func NewMovementService(
	movementRepo repository.MovementRepository,
	invoiceRepo repository.InvoiceRepository,
	productRepo repository.ProductRepository,
	txManager repository.TransactionManager,
	notifier Notifier,
) MovementService {
	return &movementService{
		movementRepo: movementRepo,
		invoiceRepo:  invoiceRepo,
		txManager:    txManager,
		stock:        stockWriter{products: productRepo},
		notifier:     notifierOrNop(notifier),
	}
}

func (s *movementService) ListMovements(ctx context.Context, q MovementQuery) ([]model.Movement, int64, error) {
	if q.Type != "" && !model.IsValidMovementType(q.Type) {
		return nil, 0, fieldError("tipo", fmt.Sprintf("unknown movement type %q", q.Type))
	}

	limit, offset := pageBounds(q.Page, q.Limit)
	filter := repository.MovementFilter{
		Type:       q.Type,
		ClientName: q.ClientName,
		From:       q.From,
		To:         q.To,
		Limit:      limit,
		Offset:     offset,
	}
	if q.InvoiceID != "" {
		invoiceID, err := parseID(q.InvoiceID, "invoice")
		if err != nil {
			return nil, 0, err
		}
		filter.InvoiceID = &invoiceID
	}

	movements, total, err := s.movementRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list movements: %w", err)
	}
	return movements, total, nil
}

// RecordMovement applies a compra, ajuste or devolucion to every listed product
// and stores the movement, all in one transaction. Sales are only recorded by
// invoice creation.
func (s *movementService) RecordMovement(ctx context.Context, req RecordMovementRequest) (*model.Movement, error) {
	if req.Type == model.MovementSale {
		return nil, fmt.Errorf("%w: sales are recorded through invoices", ErrInvalidMovement)
	}
	if !model.IsValidMovementType(req.Type) {
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidMovement, req.Type)
	}
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: at least one item is required", ErrInvalidMovement)
	}

	type parsedItem struct {
		id       uuid.UUID
		quantity int
	}
	parsed := make([]parsedItem, 0, len(req.Items))
	for i, item := range req.Items {
		id, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, fieldError("items", fmt.Sprintf("item %d: invalid product id", i+1))
		}
		if item.Quantity < 0 || (item.Quantity == 0 && req.Type != model.MovementAdjustment) {
			return nil, fieldError("items", fmt.Sprintf("item %d: quantity must be greater than 0", i+1))
		}
		parsed = append(parsed, parsedItem{id: id, quantity: item.Quantity})
	}

	var invoiceID *uuid.UUID
	if req.InvoiceID != "" {
		if req.Type != model.MovementReturn {
			return nil, fmt.Errorf("%w: only devolucion may reference an invoice", ErrInvalidMovement)
		}
		id, err := parseID(req.InvoiceID, "invoice")
		if err != nil {
			return nil, err
		}
		invoiceID = &id
	}

	movement := &model.Movement{
		Type:        req.Type,
		InvoiceID:   invoiceID,
		Description: strings.TrimSpace(req.Description),
		Date:        time.Now().UTC(),
	}
	var touched []model.Product

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if invoiceID != nil {
			invoice, err := s.invoiceRepo.FindByID(txCtx, *invoiceID)
			if err != nil {
				return notFound(err, "invoice "+req.InvoiceID)
			}
			movement.ClientID = &invoice.ClientID
			movement.ClientName = invoice.ClientName
		}

		items := make([]model.LineItem, 0, len(parsed))
		for _, p := range parsed {
			quantity := p.quantity
			product, err := s.stock.apply(txCtx, p.id, p.id.String(), func(current *model.Product) (int, error) {
				if req.Type == model.MovementAdjustment {
					return quantity, nil
				}
				return current.Quantity + quantity, nil
			})
			if err != nil {
				return err
			}
			touched = append(touched, *product)
			items = append(items, model.NewLineItem(*product, quantity))
		}

		movement.Items = datatypes.JSONSlice[model.LineItem](items)
		movement.Total = model.SumSubtotals(items)
		if movement.Description == "" {
			movement.Description = defaultMovementDescription(req.Type, len(items))
		}
		return s.movementRepo.Create(txCtx, movement)
	})
	if err != nil {
		return nil, err
	}

	metrics.StockMovements.WithLabelValues(req.Type).Inc()
	for _, p := range touched {
		metrics.ProductStock.WithLabelValues(p.ID.String()).Set(float64(p.Quantity))
		s.notifier.Notify(ctx, Event{Event: EventStockUpdated, Data: map[string]interface{}{
			"productoId": p.ID.String(),
			"cantidad":   p.Quantity,
		}})
	}
	s.notifier.Notify(ctx, Event{Event: EventMovementRecorded, Data: map[string]interface{}{
		"movimientoId": movement.ID.String(),
		"tipo":         movement.Type,
	}})
	logger.FromContext(ctx).Info("stock movement recorded",
		zap.String("movimiento_id", movement.ID.String()),
		zap.String("tipo", movement.Type),
		zap.Int("items", len(touched)),
	)
	return movement, nil
}

func defaultMovementDescription(tipo string, lines int) string {
	switch tipo {
	case model.MovementPurchase:
		return fmt.Sprintf("Compra - %d producto(s)", lines)
	case model.MovementReturn:
		return fmt.Sprintf("Devolución - %d producto(s)", lines)
	default:
		return fmt.Sprintf("Ajuste de inventario - %d producto(s)", lines)
	}
}
