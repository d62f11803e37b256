package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Jaime0506/app-maestro-detail/internal/logger"
	"github.com/Jaime0506/app-maestro-detail/internal/metrics"
	"github.com/Jaime0506/app-maestro-detail/internal/model"
	"github.com/Jaime0506/app-maestro-detail/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// totalTolerance is the largest accepted gap between a declared and a computed amount.
var totalTolerance = decimal.New(1, -2)

// --- DTOs ---

type LineItemRequest struct {
	ProductID   string          `json:"productoId" binding:"required"`
	ProductName string          `json:"productoNombre" binding:"required"`
	Quantity    int             `json:"cantidad" binding:"required,gt=0"`
	UnitPrice   decimal.Decimal `json:"precioUnitario"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type CreateInvoiceRequest struct {
	ClientID       string            `json:"clienteId" binding:"required"`
	ClientName     string            `json:"clienteNombre" binding:"required"`
	Items          []LineItemRequest `json:"items" binding:"dive"`
	Total          decimal.Decimal   `json:"total"`
	IdempotencyKey string            `json:"idempotencyKey" binding:"max=100"`
}

type ValidateStockRequest struct {
	Items []LineItemRequest `json:"items" binding:"required,min=1,dive"`
}

type CreateInvoiceResult struct {
	InvoiceID  uuid.UUID       `json:"facturaId"`
	MovementID uuid.UUID       `json:"movimientoId"`
	Total      decimal.Decimal `json:"total"`
	Replayed   bool            `json:"replayed"`
}

type InvoiceQuery struct {
	Status   string
	ClientID string
	From     *time.Time
	To       *time.Time
	Page     int
	Limit    int
}

// --- Interface ---

type InvoiceService interface {
	CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (CreateInvoiceResult, error)
	ValidateStock(ctx context.Context, items []LineItemRequest) (StockCheck, error)
	GetInvoice(ctx context.Context, id string) (*model.Invoice, error)
	ListInvoices(ctx context.Context, q InvoiceQuery) ([]model.Invoice, int64, error)
	CycleStatus(ctx context.Context, id string) (*model.Invoice, error)
	SetStatus(ctx context.Context, id, status string) (*model.Invoice, error)
	CancelInvoice(ctx context.Context, id string) (*model.Invoice, error)
	DeleteInvoicePermanently(ctx context.Context, id string) error
}

type invoiceService struct {
	invoiceRepo  repository.InvoiceRepository
	movementRepo repository.MovementRepository
	txManager    repository.TransactionManager
	validator    *StockValidator
	stock        stockWriter
	notifier     Notifier
}

func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	movementRepo repository.MovementRepository,
	productRepo repository.ProductRepository,
	txManager repository.TransactionManager,
	notifier Notifier,
) InvoiceService {
	return &invoiceService{
		invoiceRepo:  invoiceRepo,
		movementRepo: movementRepo,
		txManager:    txManager,
		validator:    NewStockValidator(productRepo),
		stock:        stockWriter{products: productRepo},
		notifier:     notifierOrNop(notifier),
	}
}

// --- Implementation ---

// CreateInvoice checks the draft, then inserts the invoice, its sale movement
// and every stock decrement in one transaction. A request whose idempotency
// key already produced an invoice returns that invoice's ids without writing.
func (s *invoiceService) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (CreateInvoiceResult, error) {
	log := logger.FromContext(ctx)

	if len(req.Items) == 0 {
		metrics.InvoiceRejections.WithLabelValues(metrics.ReasonEmpty).Inc()
		return CreateInvoiceResult{}, ErrEmptyItems
	}

	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		return CreateInvoiceResult{}, fieldError("clienteId", "invalid client id")
	}
	clientName := strings.TrimSpace(req.ClientName)

	items, err := toLineItems(req.Items)
	if err != nil {
		s.recordRejection(err)
		return CreateInvoiceResult{}, err
	}

	total := model.SumSubtotals(items)
	if req.Total.Sub(total).Abs().GreaterThan(totalTolerance) {
		metrics.InvoiceRejections.WithLabelValues(metrics.ReasonTotalMismatch).Inc()
		return CreateInvoiceResult{}, fmt.Errorf("%w: declared %s, computed %s",
			ErrTotalMismatch, req.Total.StringFixed(2), total.StringFixed(2))
	}

	key := strings.TrimSpace(req.IdempotencyKey)
	var keyPtr *string
	if key != "" {
		keyPtr = &key
	}

	var result CreateInvoiceResult
	var touched []model.Product

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if key != "" {
			replay, found, err := s.findReplay(txCtx, key, clientID, items)
			if err != nil {
				return err
			}
			if found {
				result = replay
				return nil
			}
		}

		check, err := s.validator.Check(txCtx, items)
		if err != nil {
			return err
		}
		if !check.IsValid {
			return &StockError{Messages: check.Errors}
		}

		now := time.Now().UTC()
		invoice := &model.Invoice{
			ClientID:       clientID,
			ClientName:     clientName,
			Items:          datatypes.JSONSlice[model.LineItem](items),
			Total:          total,
			Date:           now,
			Status:         model.InvoiceStatusPending,
			IdempotencyKey: keyPtr,
		}
		if err := s.invoiceRepo.Create(txCtx, invoice); err != nil {
			return fmt.Errorf("failed to create invoice: %w", err)
		}

		movement := &model.Movement{
			Type:        model.MovementSale,
			InvoiceID:   &invoice.ID,
			ClientID:    &clientID,
			ClientName:  clientName,
			Items:       datatypes.JSONSlice[model.LineItem](items),
			Total:       total,
			Description: saleDescription(clientName, len(items)),
			Date:        now,
		}
		if err := s.movementRepo.Create(txCtx, movement); err != nil {
			return fmt.Errorf("failed to create movement: %w", err)
		}

		for _, r := range groupByProduct(items) {
			product, err := s.stock.decrement(txCtx, r.productID, r.name, r.quantity)
			if err != nil {
				return err
			}
			touched = append(touched, *product)
		}

		result = CreateInvoiceResult{InvoiceID: invoice.ID, MovementID: movement.ID, Total: total}
		return nil
	})

	if err != nil {
		// A concurrent retry with the same key committed first.
		if key != "" && errors.Is(err, repository.ErrDuplicateKey) {
			replay, found, findErr := s.findReplay(ctx, key, clientID, items)
			if findErr == nil && found {
				metrics.InvoiceReplays.Inc()
				return replay, nil
			}
			if errors.Is(findErr, ErrIdempotencyMismatch) {
				err = findErr
			}
		}
		s.recordRejection(err)
		log.Warn("invoice rejected", zap.String("cliente_id", req.ClientID), zap.Error(err))
		return CreateInvoiceResult{}, err
	}

	if result.Replayed {
		metrics.InvoiceReplays.Inc()
		log.Info("invoice submission replayed", zap.String("factura_id", result.InvoiceID.String()), zap.String("idempotency_key", key))
		return result, nil
	}

	metrics.InvoicesCreated.Inc()
	amount, _ := total.Float64()
	metrics.InvoiceAmount.Observe(amount)
	metrics.StockMovements.WithLabelValues(model.MovementSale).Inc()

	for _, p := range touched {
		metrics.ProductStock.WithLabelValues(p.ID.String()).Set(float64(p.Quantity))
		s.notifier.Notify(ctx, Event{Event: EventStockUpdated, Data: map[string]interface{}{
			"productoId": p.ID.String(),
			"cantidad":   p.Quantity,
		}})
	}
	s.notifier.Notify(ctx, Event{Event: EventInvoiceCreated, Data: map[string]interface{}{
		"facturaId":     result.InvoiceID.String(),
		"movimientoId":  result.MovementID.String(),
		"clienteNombre": clientName,
		"total":         total.StringFixed(2),
	}})

	log.Info("invoice created",
		zap.String("factura_id", result.InvoiceID.String()),
		zap.String("movimiento_id", result.MovementID.String()),
		zap.String("total", total.StringFixed(2)),
		zap.Int("items", len(items)),
	)
	return result, nil
}

func (s *invoiceService) ValidateStock(ctx context.Context, reqs []LineItemRequest) (StockCheck, error) {
	items, err := toLineItems(reqs)
	if err != nil {
		return StockCheck{}, err
	}
	return s.validator.Check(ctx, items)
}

func (s *invoiceService) GetInvoice(ctx context.Context, id string) (*model.Invoice, error) {
	invoiceID, err := parseID(id, "invoice")
	if err != nil {
		return nil, err
	}
	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, notFound(err, "invoice "+id)
	}
	return invoice, nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, q InvoiceQuery) ([]model.Invoice, int64, error) {
	if q.Status != "" && !model.IsValidInvoiceStatus(q.Status) {
		return nil, 0, fmt.Errorf("%w: %q", ErrInvalidStatus, q.Status)
	}

	limit, offset := pageBounds(q.Page, q.Limit)
	filter := repository.InvoiceFilter{
		Status: q.Status,
		From:   q.From,
		To:     q.To,
		Limit:  limit,
		Offset: offset,
	}
	if q.ClientID != "" {
		clientID, err := parseID(q.ClientID, "client")
		if err != nil {
			return nil, 0, err
		}
		filter.ClientID = &clientID
	}

	invoices, total, err := s.invoiceRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list invoices: %w", err)
	}
	return invoices, total, nil
}

// CycleStatus advances pendiente -> pagada -> cancelada -> pendiente.
func (s *invoiceService) CycleStatus(ctx context.Context, id string) (*model.Invoice, error) {
	return s.changeStatus(ctx, id, func(current string) (string, error) {
		next, err := model.NextInvoiceStatus(current)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidStatus, err)
		}
		return next, nil
	})
}

func (s *invoiceService) SetStatus(ctx context.Context, id, status string) (*model.Invoice, error) {
	if !model.IsValidInvoiceStatus(status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return s.changeStatus(ctx, id, func(string) (string, error) { return status, nil })
}

// CancelInvoice is the soft delete: the invoice stays with status cancelada.
func (s *invoiceService) CancelInvoice(ctx context.Context, id string) (*model.Invoice, error) {
	return s.SetStatus(ctx, id, model.InvoiceStatusCanceled)
}

func (s *invoiceService) DeleteInvoicePermanently(ctx context.Context, id string) error {
	invoiceID, err := parseID(id, "invoice")
	if err != nil {
		return err
	}
	if err := s.invoiceRepo.Delete(ctx, invoiceID); err != nil {
		return notFound(err, "invoice "+id)
	}

	logger.FromContext(ctx).Info("invoice deleted permanently", zap.String("factura_id", id))
	s.notifier.Notify(ctx, Event{Event: EventInvoiceDeleted, Data: map[string]interface{}{"facturaId": id}})
	return nil
}

// --- Helpers ---

func (s *invoiceService) changeStatus(ctx context.Context, id string, next func(current string) (string, error)) (*model.Invoice, error) {
	invoiceID, err := parseID(id, "invoice")
	if err != nil {
		return nil, err
	}

	var invoice *model.Invoice
	var previous string
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		found, err := s.invoiceRepo.FindByID(txCtx, invoiceID)
		if err != nil {
			return notFound(err, "invoice "+id)
		}
		status, err := next(found.Status)
		if err != nil {
			return err
		}
		if err := s.invoiceRepo.UpdateStatus(txCtx, invoiceID, status); err != nil {
			return fmt.Errorf("failed to update invoice status: %w", err)
		}
		previous = found.Status
		found.Status = status
		invoice = found
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.InvoiceStatusChanges.WithLabelValues(invoice.Status).Inc()
	s.notifier.Notify(ctx, Event{Event: EventInvoiceStatusChanged, Data: map[string]interface{}{
		"facturaId": invoice.ID.String(),
		"anterior":  previous,
		"status":    invoice.Status,
	}})
	return invoice, nil
}

// findReplay returns the invoice an earlier request with the same key
// produced. A stored invoice whose client or lines differ from the request
// fails with ErrIdempotencyMismatch instead of being replayed.
func (s *invoiceService) findReplay(ctx context.Context, key string, clientID uuid.UUID, items []model.LineItem) (CreateInvoiceResult, bool, error) {
	invoice, err := s.invoiceRepo.FindByIdempotencyKey(ctx, key)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return CreateInvoiceResult{}, false, nil
	}
	if err != nil {
		return CreateInvoiceResult{}, false, fmt.Errorf("failed to look up idempotency key: %w", err)
	}
	if !samePayload(invoice, clientID, items) {
		return CreateInvoiceResult{}, false, fmt.Errorf("%w: key %s belongs to invoice %s", ErrIdempotencyMismatch, key, invoice.ID)
	}

	movement, err := s.movementRepo.FindSaleByInvoiceID(ctx, invoice.ID)
	if err != nil {
		return CreateInvoiceResult{}, false, fmt.Errorf("failed to look up movement of invoice %s: %w", invoice.ID, err)
	}

	return CreateInvoiceResult{
		InvoiceID:  invoice.ID,
		MovementID: movement.ID,
		Total:      invoice.Total,
		Replayed:   true,
	}, true, nil
}

// samePayload compares per-product quantities and the total, so a resubmission
// that only reorders or splits lines still replays.
func samePayload(invoice *model.Invoice, clientID uuid.UUID, items []model.LineItem) bool {
	if invoice.ClientID != clientID {
		return false
	}
	if invoice.Total.Sub(model.SumSubtotals(items)).Abs().GreaterThan(totalTolerance) {
		return false
	}

	stored := groupByProduct(invoice.Items)
	requested := groupByProduct(items)
	if len(stored) != len(requested) {
		return false
	}
	quantities := make(map[uuid.UUID]int, len(stored))
	for _, r := range stored {
		quantities[r.productID] = r.quantity
	}
	for _, r := range requested {
		if q, ok := quantities[r.productID]; !ok || q != r.quantity {
			return false
		}
	}
	return true
}

func (s *invoiceService) recordRejection(err error) {
	switch {
	case errors.Is(err, ErrTotalMismatch):
		metrics.InvoiceRejections.WithLabelValues(metrics.ReasonTotalMismatch).Inc()
	case errors.Is(err, ErrInsufficientStock):
		metrics.InvoiceRejections.WithLabelValues(metrics.ReasonStock).Inc()
	case errors.Is(err, ErrStockConflict):
		metrics.InvoiceRejections.WithLabelValues(metrics.ReasonConflict).Inc()
	case errors.Is(err, ErrIdempotencyMismatch):
		metrics.InvoiceRejections.WithLabelValues(metrics.ReasonIdempotency).Inc()
	}
}

// toLineItems parses the request lines and checks each subtotal against
// quantity times unit price.
func toLineItems(reqs []LineItemRequest) ([]model.LineItem, error) {
	items := make([]model.LineItem, 0, len(reqs))
	for i, r := range reqs {
		productID, err := uuid.Parse(r.ProductID)
		if err != nil {
			return nil, fieldError("items", fmt.Sprintf("item %d: invalid product id", i+1))
		}
		if r.Quantity <= 0 {
			return nil, fieldError("items", fmt.Sprintf("item %d: quantity must be greater than 0", i+1))
		}
		if r.UnitPrice.IsNegative() {
			return nil, fieldError("items", fmt.Sprintf("item %d: unit price cannot be negative", i+1))
		}

		item := model.LineItem{
			ProductID:   productID,
			ProductName: strings.TrimSpace(r.ProductName),
			UnitPrice:   r.UnitPrice,
		}
		item.SetQuantity(r.Quantity)

		if r.Subtotal.Sub(item.Subtotal).Abs().GreaterThan(totalTolerance) {
			return nil, fmt.Errorf("%w: item %s subtotal %s, expected %s",
				ErrTotalMismatch, item.ProductName, r.Subtotal.StringFixed(2), item.Subtotal.StringFixed(2))
		}
		items = append(items, item)
	}
	return items, nil
}

func saleDescription(clientName string, lines int) string {
	return fmt.Sprintf("Venta a %s - %d producto(s)", clientName, lines)
}
