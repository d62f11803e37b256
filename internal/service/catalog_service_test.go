package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Jaime0506/app-maestro-detail/internal/model"
	"github.com/Jaime0506/app-maestro-detail/internal/repository"
	"github.com/Jaime0506/app-maestro-detail/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestLoadInvoiceOptions_ActiveOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.seedClient(t, "Juan Pérez", "Calle 123", "555-0123")
	maria := env.seedClient(t, "María García", "Avenida 456", "555-0456")
	env.seedProduct(t, "Widget", "10.00", 5)
	gadget := env.seedProduct(t, "Gadget", "2.50", 3)

	require.NoError(t, env.clients.Update(ctx, maria.ID, map[string]interface{}{"status": model.StatusInactive}))
	require.NoError(t, env.products.Update(ctx, gadget.ID, map[string]interface{}{"status": model.StatusInactive}))

	opts, err := service.NewCatalogService(env.clients, env.products).LoadInvoiceOptions(ctx)
	require.NoError(t, err)
	require.Len(t, opts.Clients, 1)
	assert.Equal(t, "Juan Pérez", opts.Clients[0].Name)
	require.Len(t, opts.Products, 1)
	assert.Equal(t, "Widget", opts.Products[0].Name)
}

func TestLoadInvoiceOptions_PropagatesFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	clients := repository.NewMockClientRepository(ctrl)
	products := repository.NewMockProductRepository(ctrl)

	clients.EXPECT().List(gomock.Any(), repository.ClientFilter{Status: model.StatusActive}).
		Return(nil, int64(0), errors.New("connection refused"))
	products.EXPECT().List(gomock.Any(), repository.ProductFilter{Status: model.StatusActive}).
		Return([]model.Product{}, int64(0), nil).AnyTimes()

	_, err := service.NewCatalogService(clients, products).LoadInvoiceOptions(context.Background())
	assert.ErrorContains(t, err, "failed to load clients")
}
