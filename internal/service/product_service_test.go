package service_test

import (
	"context"
	"testing"

	"github.com/Jaime0506/app-maestro-detail/internal/model"
	"github.com/Jaime0506/app-maestro-detail/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProduct_Validation(t *testing.T) {
	env := newTestEnv(t)
	svc := service.NewProductService(env.products, nil)

	_, err := svc.CreateProduct(context.Background(), service.CreateProductRequest{
		Name:     " ",
		Price:    decimal.NewFromInt(-1),
		Quantity: -3,
	})
	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "nombre")
	assert.Contains(t, verr.Fields, "precio")
	assert.Contains(t, verr.Fields, "cantidad")
	assert.Equal(t, int64(0), env.count(t, &model.Product{}))
}

func TestUpdateProduct_StockWriteBumpsVersion(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := service.NewProductService(env.products, env.notifier)

	created, err := svc.CreateProduct(ctx, service.CreateProductRequest{
		Name:        " Widget ",
		Description: "blue",
		Price:       decimal.RequireFromString("10.00"),
		Quantity:    5,
	})
	require.NoError(t, err)
	assert.Equal(t, "Widget", created.Name)
	assert.Equal(t, model.StatusActive, created.Status)

	price := decimal.RequireFromString("12.50")
	updated, err := svc.UpdateProduct(ctx, created.ID.String(), service.UpdateProductRequest{Price: &price})
	require.NoError(t, err)
	assert.True(t, updated.Price.Equal(price))
	assert.Equal(t, created.Version, updated.Version)
	assert.Equal(t, "blue", updated.Description)

	quantity := 9
	updated, err = svc.UpdateProduct(ctx, created.ID.String(), service.UpdateProductRequest{Quantity: &quantity})
	require.NoError(t, err)
	assert.Equal(t, 9, updated.Quantity)
	assert.Equal(t, created.Version+1, updated.Version)

	toggled, err := svc.ToggleProductStatus(ctx, created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, model.StatusInactive, toggled.Status)

	assert.Contains(t, env.notifier.names(), service.EventProductChanged)
}

func TestListProducts_ServerSideFilters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := service.NewProductService(env.products, nil)

	widget := env.seedProduct(t, "Widget", "10.00", 5)
	env.seedProduct(t, "Wide Gadget", "2.50", 1)
	env.seedProduct(t, "Gizmo", "1.00", 0)
	_, err := svc.SetProductStatus(ctx, widget.ID.String(), model.StatusInactive)
	require.NoError(t, err)

	found, total, err := svc.ListProducts(ctx, service.ProductQuery{Name: "wid"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, found, 2)

	active, _, err := svc.ListProducts(ctx, service.ProductQuery{Name: "wid", Status: model.StatusActive})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Wide Gadget", active[0].Name)

	require.NoError(t, svc.DeleteProductPermanently(ctx, widget.ID.String()))
	_, err = svc.GetProduct(ctx, widget.ID.String())
	assert.ErrorIs(t, err, service.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteProductPermanently(ctx, widget.ID.String()), service.ErrNotFound)
}
