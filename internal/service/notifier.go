package service

import (
	"context"

	"github.com/Jaime0506/app-maestro-detail/internal/logger"

	"go.uber.org/zap"
)

// Event names published through a Notifier.
const (
	EventInvoiceCreated       = "factura.creada"
	EventInvoiceStatusChanged = "factura.status"
	EventInvoiceDeleted       = "factura.eliminada"
	EventStockUpdated         = "stock.actualizado"
	EventMovementRecorded     = "movimiento.registrado"
	EventClientChanged        = "cliente.actualizado"
	EventProductChanged       = "producto.actualizado"
)

type Event struct {
	Event string                 `json:"event"`
	Data  map[string]interface{} `json:"data"`
}

// Notifier receives the outcome of workflow operations. Implementations must
// not block the caller for long.
type Notifier interface {
	Notify(ctx context.Context, event Event)
}

type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, Event) {}

// LogNotifier writes events to the request logger.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, event Event) {
	logger.FromContext(ctx).Info("event", zap.String("event", event.Event), zap.Any("data", event.Data))
}

// MultiNotifier fans an event out to every notifier.
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(ctx context.Context, event Event) {
	for _, n := range m {
		n.Notify(ctx, event)
	}
}

func notifierOrNop(n Notifier) Notifier {
	if n == nil {
		return NopNotifier{}
	}
	return n
}
