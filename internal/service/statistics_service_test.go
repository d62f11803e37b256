package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/Jaime0506/app-maestro-detail/internal/model"
	"github.com/Jaime0506/app-maestro-detail/internal/repository"
	"github.com/Jaime0506/app-maestro-detail/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetStatistics(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	invoices := env.invoiceService()

	juan := env.seedClient(t, "Juan Pérez", "Calle 123", "555-0123")
	widget := env.seedProduct(t, "Widget", "10.00", 50)
	gadget := env.seedProduct(t, "Gadget", "2.50", 50)

	create := func(items ...service.LineItemRequest) service.CreateInvoiceResult {
		total := decimal.Zero
		for _, it := range items {
			total = total.Add(it.Subtotal)
		}
		res, err := invoices.CreateInvoice(ctx, service.CreateInvoiceRequest{
			ClientID:   juan.ID.String(),
			ClientName: juan.Name,
			Items:      items,
			Total:      total,
		})
		require.NoError(t, err)
		return res
	}

	// totals 20 (pendiente), 10 (pagada), 30 (cancelada)
	create(lineRequest(widget, 2))
	paid := create(lineRequest(gadget, 4))
	canceled := create(lineRequest(widget, 1), lineRequest(gadget, 8))

	_, err := invoices.SetStatus(ctx, paid.InvoiceID.String(), model.InvoiceStatusPaid)
	require.NoError(t, err)
	_, err = invoices.CancelInvoice(ctx, canceled.InvoiceID.String())
	require.NoError(t, err)

	svc := service.NewStatisticsService(repository.NewStatisticsRepository(env.db), env.movements)
	now := time.Now().UTC()
	stats, err := svc.GetStatistics(ctx, now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)

	assert.Equal(t, int64(3), stats.InvoiceCount)
	assert.Len(t, stats.ByStatus, 3)
	assert.True(t, stats.SoldAmount.Equal(decimal.NewFromInt(30)), "sold amount %s", stats.SoldAmount)

	// the cancelled invoice's 1 widget and 8 gadgets are not ranked
	require.Len(t, stats.TopProducts, 2)
	assert.Equal(t, "Gadget", stats.TopProducts[0].ProductName)
	assert.Equal(t, 4, stats.TopProducts[0].TotalQuantity)
	assert.True(t, stats.TopProducts[0].TotalValue.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, "Widget", stats.TopProducts[1].ProductName)
	assert.Equal(t, 2, stats.TopProducts[1].TotalQuantity)
	assert.True(t, stats.TopProducts[1].TotalValue.Equal(decimal.NewFromInt(20)))

	empty, err := svc.GetStatistics(ctx, now.Add(24*time.Hour), now.Add(48*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, empty.InvoiceCount)
	assert.Empty(t, empty.TopProducts)
	assert.True(t, empty.SoldAmount.IsZero())

	_, err = svc.GetStatistics(ctx, now, now.Add(-time.Hour))
	assert.ErrorIs(t, err, service.ErrValidation)
}
