package service_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/Jaime0506/app-maestro-detail/internal/config"
	"github.com/Jaime0506/app-maestro-detail/internal/database"
	"github.com/Jaime0506/app-maestro-detail/internal/model"
	"github.com/Jaime0506/app-maestro-detail/internal/repository"
	"github.com/Jaime0506/app-maestro-detail/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	db        *gorm.DB
	clients   repository.ClientRepository
	products  repository.ProductRepository
	invoices  repository.InvoiceRepository
	movements repository.MovementRepository
	tx        repository.TransactionManager
	notifier  *recordingNotifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := config.DBConfig{
		Driver:   config.DriverSQLite,
		DSN:      fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_")),
		LogLevel: "silent",
	}
	db, err := database.Connect(cfg)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, cfg))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return &testEnv{
		db:        db,
		clients:   repository.NewClientRepository(db),
		products:  repository.NewProductRepository(db),
		invoices:  repository.NewInvoiceRepository(db),
		movements: repository.NewMovementRepository(db),
		tx:        repository.NewTransactionManager(db),
		notifier:  &recordingNotifier{},
	}
}

func (e *testEnv) invoiceService() service.InvoiceService {
	return service.NewInvoiceService(e.invoices, e.movements, e.products, e.tx, e.notifier)
}

func (e *testEnv) seedClient(t *testing.T, name, address, phone string) *model.Client {
	t.Helper()
	c := &model.Client{Name: name, Address: address, Phone: phone, Status: model.StatusActive}
	require.NoError(t, e.clients.Create(context.Background(), c))
	return c
}

func (e *testEnv) seedProduct(t *testing.T, name, price string, quantity int) *model.Product {
	t.Helper()
	p := &model.Product{
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Quantity: quantity,
		Status:   model.StatusActive,
	}
	require.NoError(t, e.products.Create(context.Background(), p))
	return p
}

func (e *testEnv) stockOf(t *testing.T, id fmt.Stringer) int {
	t.Helper()
	var p model.Product
	require.NoError(t, e.db.First(&p, "id = ?", id.String()).Error)
	return p.Quantity
}

func (e *testEnv) count(t *testing.T, m interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(m).Count(&n).Error)
	return n
}

func lineRequest(p *model.Product, quantity int) service.LineItemRequest {
	item := model.NewLineItem(*p, quantity)
	return service.LineItemRequest{
		ProductID:   p.ID.String(),
		ProductName: p.Name,
		Quantity:    quantity,
		UnitPrice:   item.UnitPrice,
		Subtotal:    item.Subtotal,
	}
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []service.Event
}

func (r *recordingNotifier) Notify(_ context.Context, e service.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingNotifier) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Event)
	}
	return out
}
