package service_test

import (
	"context"
	"testing"

	"github.com/Jaime0506/app-maestro-detail/internal/model"
	"github.com/Jaime0506/app-maestro-detail/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) movementService() service.MovementService {
	return service.NewMovementService(e.movements, e.invoices, e.products, e.tx, e.notifier)
}

func TestRecordMovement_StockKinds(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := env.movementService()
	widget := env.seedProduct(t, "Widget", "10.00", 5)

	purchase, err := svc.RecordMovement(ctx, service.RecordMovementRequest{
		Type:  model.MovementPurchase,
		Items: []service.StockMovementItem{{ProductID: widget.ID.String(), Quantity: 4}},
	})
	require.NoError(t, err)
	assert.Equal(t, 9, env.stockOf(t, widget.ID))
	assert.Equal(t, "Compra - 1 producto(s)", purchase.Description)
	assert.True(t, purchase.Total.Equal(decimal.NewFromInt(40)))

	_, err = svc.RecordMovement(ctx, service.RecordMovementRequest{
		Type:        model.MovementAdjustment,
		Items:       []service.StockMovementItem{{ProductID: widget.ID.String(), Quantity: 2}},
		Description: "conteo físico",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, env.stockOf(t, widget.ID))

	_, err = svc.RecordMovement(ctx, service.RecordMovementRequest{
		Type:  model.MovementAdjustment,
		Items: []service.StockMovementItem{{ProductID: widget.ID.String(), Quantity: 0}},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, env.stockOf(t, widget.ID))

	assert.Equal(t, int64(3), env.count(t, &model.Movement{}))
	assert.Contains(t, env.notifier.names(), service.EventMovementRecorded)
}

func TestRecordMovement_ReturnCopiesInvoiceClient(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	juan := env.seedClient(t, "Juan Pérez", "Calle 123", "555-0123")
	widget := env.seedProduct(t, "Widget", "10.00", 5)

	sale, err := env.invoiceService().CreateInvoice(ctx, service.CreateInvoiceRequest{
		ClientID:   juan.ID.String(),
		ClientName: juan.Name,
		Items:      []service.LineItemRequest{lineRequest(widget, 3)},
		Total:      decimal.NewFromInt(30),
	})
	require.NoError(t, err)

	ret, err := env.movementService().RecordMovement(ctx, service.RecordMovementRequest{
		Type:      model.MovementReturn,
		InvoiceID: sale.InvoiceID.String(),
		Items:     []service.StockMovementItem{{ProductID: widget.ID.String(), Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, env.stockOf(t, widget.ID))
	assert.Equal(t, "Juan Pérez", ret.ClientName)
	require.NotNil(t, ret.ClientID)
	assert.Equal(t, juan.ID, *ret.ClientID)

	byInvoice, total, err := env.movementService().ListMovements(ctx, service.MovementQuery{InvoiceID: sale.InvoiceID.String()})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, byInvoice, 2)
}

func TestRecordMovement_Rejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := env.movementService()
	widget := env.seedProduct(t, "Widget", "10.00", 5)

	tests := []struct {
		name    string
		req     service.RecordMovementRequest
		wantErr error
	}{
		{
			name:    "sales only through invoices",
			req:     service.RecordMovementRequest{Type: model.MovementSale, Items: []service.StockMovementItem{{ProductID: widget.ID.String(), Quantity: 1}}},
			wantErr: service.ErrInvalidMovement,
		},
		{
			name:    "unknown type",
			req:     service.RecordMovementRequest{Type: "regalo", Items: []service.StockMovementItem{{ProductID: widget.ID.String(), Quantity: 1}}},
			wantErr: service.ErrInvalidMovement,
		},
		{
			name:    "no items",
			req:     service.RecordMovementRequest{Type: model.MovementPurchase},
			wantErr: service.ErrInvalidMovement,
		},
		{
			name:    "zero purchase",
			req:     service.RecordMovementRequest{Type: model.MovementPurchase, Items: []service.StockMovementItem{{ProductID: widget.ID.String()}}},
			wantErr: service.ErrValidation,
		},
		{
			name: "purchase referencing an invoice",
			req: service.RecordMovementRequest{
				Type:      model.MovementPurchase,
				InvoiceID: uuid.NewString(),
				Items:     []service.StockMovementItem{{ProductID: widget.ID.String(), Quantity: 1}},
			},
			wantErr: service.ErrInvalidMovement,
		},
		{
			name: "return of unknown invoice",
			req: service.RecordMovementRequest{
				Type:      model.MovementReturn,
				InvoiceID: uuid.NewString(),
				Items:     []service.StockMovementItem{{ProductID: widget.ID.String(), Quantity: 1}},
			},
			wantErr: service.ErrNotFound,
		},
		{
			name:    "unknown product",
			req:     service.RecordMovementRequest{Type: model.MovementPurchase, Items: []service.StockMovementItem{{ProductID: uuid.NewString(), Quantity: 1}}},
			wantErr: service.ErrInsufficientStock,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RecordMovement(ctx, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	assert.Equal(t, 5, env.stockOf(t, widget.ID))
	assert.Equal(t, int64(0), env.count(t, &model.Movement{}))
}

func TestListMovements_Filters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	juan := env.seedClient(t, "Juan Pérez", "Calle 123", "555-0123")
	maria := env.seedClient(t, "María García", "Avenida 456", "555-0456")
	widget := env.seedProduct(t, "Widget", "10.00", 20)
	invoices := env.invoiceService()

	for _, c := range []*model.Client{juan, maria, juan} {
		_, err := invoices.CreateInvoice(ctx, service.CreateInvoiceRequest{
			ClientID:   c.ID.String(),
			ClientName: c.Name,
			Items:      []service.LineItemRequest{lineRequest(widget, 1)},
			Total:      decimal.NewFromInt(10),
		})
		require.NoError(t, err)
	}
	_, err := env.movementService().RecordMovement(ctx, service.RecordMovementRequest{
		Type:  model.MovementPurchase,
		Items: []service.StockMovementItem{{ProductID: widget.ID.String(), Quantity: 10}},
	})
	require.NoError(t, err)

	svc := env.movementService()

	all, total, err := svc.ListMovements(ctx, service.MovementQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Len(t, all, 4)

	sales, _, err := svc.ListMovements(ctx, service.MovementQuery{Type: model.MovementSale})
	require.NoError(t, err)
	assert.Len(t, sales, 3)

	forJuan, _, err := svc.ListMovements(ctx, service.MovementQuery{ClientName: "juan"})
	require.NoError(t, err)
	assert.Len(t, forJuan, 2)
	for _, mv := range forJuan {
		assert.Equal(t, "Juan Pérez", mv.ClientName)
	}

	_, _, err = svc.ListMovements(ctx, service.MovementQuery{Type: "regalo"})
	assert.ErrorIs(t, err, service.ErrValidation)
}
