package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Jaime0506/app-maestro-detail/internal/config"
	"github.com/Jaime0506/app-maestro-detail/internal/database"
	"github.com/Jaime0506/app-maestro-detail/internal/handler"
	"github.com/Jaime0506/app-maestro-detail/internal/repository"
	"github.com/Jaime0506/app-maestro-detail/internal/service"
	"github.com/Jaime0506/app-maestro-detail/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Status   string            `json:"status"`
	Data     json.RawMessage   `json:"data"`
	Meta     *response.Meta    `json:"meta"`
	Error    string            `json:"error"`
	Details  map[string]string `json:"details"`
	Messages []string          `json:"messages"`
}

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.DBConfig{
		Driver:   config.DriverSQLite,
		DSN:      fmt.Sprintf("file:http_%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_")),
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

	clients := repository.NewClientRepository(db)
	products := repository.NewProductRepository(db)
	invoices := repository.NewInvoiceRepository(db)
	movements := repository.NewMovementRepository(db)
	tx := repository.NewTransactionManager(db)

	r := gin.New()
	api := r.Group("/api")
	handler.NewClientHandler(service.NewClientService(clients, nil)).RegisterRoutes(api)
	handler.NewProductHandler(service.NewProductService(products, nil)).RegisterRoutes(api)
	handler.NewInvoiceHandler(
		service.NewInvoiceService(invoices, movements, products, tx, nil),
		service.NewCatalogService(clients, products),
	).RegisterRoutes(api)
	handler.NewMovementHandler(service.NewMovementService(movements, invoices, products, tx, nil)).RegisterRoutes(api)
	handler.NewStatisticsHandler(service.NewStatisticsService(repository.NewStatisticsRepository(db), movements)).RegisterRoutes(api)
	return r
}

func do(t *testing.T, r http.Handler, method, path string, body interface{}, headers ...string) (int, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func decode(t *testing.T, raw json.RawMessage, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(raw, v), string(raw))
}

type idOnly struct {
	ID string `json:"id"`
}

func seed(t *testing.T, r http.Handler) (clientID, productID string) {
	t.Helper()
	code, env := do(t, r, http.MethodPost, "/api/clientes", map[string]string{
		"nombre": "Juan Pérez", "direccion": "Calle 123", "telefono": "555-0123",
	})
	require.Equal(t, http.StatusCreated, code, env.Error)
	var c idOnly
	decode(t, env.Data, &c)

	code, env = do(t, r, http.MethodPost, "/api/productos", map[string]interface{}{
		"nombre": "Widget", "precio": "10.00", "cantidad": 5,
	})
	require.Equal(t, http.StatusCreated, code, env.Error)
	var p idOnly
	decode(t, env.Data, &p)
	return c.ID, p.ID
}

func invoiceBody(clientID, productID string, quantity int, total string) map[string]interface{} {
	return map[string]interface{}{
		"clienteId":     clientID,
		"clienteNombre": "Juan Pérez",
		"items": []map[string]interface{}{{
			"productoId":     productID,
			"productoNombre": "Widget",
			"cantidad":       quantity,
			"precioUnitario": "10.00",
			"subtotal":       fmt.Sprintf("%d", quantity*10),
		}},
		"total": total,
	}
}

func TestCreateClient_InvalidPhone(t *testing.T) {
	r := newRouter(t)

	code, env := do(t, r, http.MethodPost, "/api/clientes", map[string]string{"nombre": "Juan", "telefono": "call me"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "error", env.Status)
	assert.Contains(t, env.Details, "telefono")

	code, _ = do(t, r, http.MethodPost, "/api/clientes", map[string]string{"direccion": "sin nombre"})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestInvoiceLifecycle(t *testing.T) {
	r := newRouter(t)
	clientID, productID := seed(t, r)

	code, env := do(t, r, http.MethodPost, "/api/facturas", invoiceBody(clientID, productID, 3, "30"),
		handler.IdempotencyKeyHeader, "draft-1")
	require.Equal(t, http.StatusCreated, code, env.Error)
	var created struct {
		InvoiceID  string `json:"facturaId"`
		MovementID string `json:"movimientoId"`
		Replayed   bool   `json:"replayed"`
	}
	decode(t, env.Data, &created)
	assert.False(t, created.Replayed)

	// retry with the same key
	code, env = do(t, r, http.MethodPost, "/api/facturas", invoiceBody(clientID, productID, 3, "30"),
		handler.IdempotencyKeyHeader, "draft-1")
	require.Equal(t, http.StatusOK, code, env.Error)
	var replay struct {
		InvoiceID string `json:"facturaId"`
		Replayed  bool   `json:"replayed"`
	}
	decode(t, env.Data, &replay)
	assert.True(t, replay.Replayed)
	assert.Equal(t, created.InvoiceID, replay.InvoiceID)

	// same key, edited draft
	code, env = do(t, r, http.MethodPost, "/api/facturas", invoiceBody(clientID, productID, 1, "10"),
		handler.IdempotencyKeyHeader, "draft-1")
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, env.Error, "idempotency key already used")

	code, env = do(t, r, http.MethodGet, "/api/productos/"+productID, nil)
	require.Equal(t, http.StatusOK, code)
	var product struct {
		Quantity int `json:"cantidad"`
	}
	decode(t, env.Data, &product)
	assert.Equal(t, 2, product.Quantity)

	code, env = do(t, r, http.MethodPost, "/api/facturas/"+created.InvoiceID+"/status/next", nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	var invoice struct {
		Status string `json:"status"`
	}
	decode(t, env.Data, &invoice)
	assert.Equal(t, "pagada", invoice.Status)

	code, env = do(t, r, http.MethodPatch, "/api/facturas/"+created.InvoiceID+"/status", map[string]string{"status": "pendiente"})
	require.Equal(t, http.StatusOK, code, env.Error)

	code, env = do(t, r, http.MethodGet, "/api/facturas?status=pendiente&fechaDesde=2020-01-01&clienteId="+clientID, nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	require.NotNil(t, env.Meta)
	assert.Equal(t, int64(1), env.Meta.Total)

	code, env = do(t, r, http.MethodGet, "/api/movimientos?tipo=venta&cliente=juan", nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	assert.Equal(t, int64(1), env.Meta.Total)

	code, env = do(t, r, http.MethodDelete, "/api/facturas/"+created.InvoiceID, nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	decode(t, env.Data, &invoice)
	assert.Equal(t, "cancelada", invoice.Status)

	code, _ = do(t, r, http.MethodDelete, "/api/facturas/"+created.InvoiceID+"/permanent", nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = do(t, r, http.MethodGet, "/api/facturas/"+created.InvoiceID, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestCreateInvoice_ErrorStatuses(t *testing.T) {
	r := newRouter(t)
	clientID, productID := seed(t, r)

	code, env := do(t, r, http.MethodPost, "/api/facturas", invoiceBody(clientID, productID, 3, "25"))
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, env.Error, "total mismatch")

	code, env = do(t, r, http.MethodPost, "/api/facturas", invoiceBody(clientID, productID, 6, "60"))
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, []string{"insufficient stock for Widget: available 5, requested 6"}, env.Messages)

	empty := invoiceBody(clientID, productID, 1, "10")
	empty["items"] = []interface{}{}
	code, _ = do(t, r, http.MethodPost, "/api/facturas", empty)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, r, http.MethodGet, "/api/facturas/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestValidateStockAndOptions(t *testing.T) {
	r := newRouter(t)
	_, productID := seed(t, r)

	code, env := do(t, r, http.MethodPost, "/api/facturas/validar-stock", map[string]interface{}{
		"items": []map[string]interface{}{{
			"productoId": productID, "productoNombre": "Widget", "cantidad": 9,
			"precioUnitario": "10", "subtotal": "90",
		}},
	})
	require.Equal(t, http.StatusOK, code, env.Error)
	var check service.StockCheck
	decode(t, env.Data, &check)
	assert.False(t, check.IsValid)
	assert.Equal(t, []string{"insufficient stock for Widget: available 5, requested 9"}, check.Errors)

	code, env = do(t, r, http.MethodGet, "/api/facturas/opciones", nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	var opts struct {
		Clients  []idOnly `json:"clientes"`
		Products []idOnly `json:"productos"`
	}
	decode(t, env.Data, &opts)
	assert.Len(t, opts.Clients, 1)
	assert.Len(t, opts.Products, 1)
}

func TestClientStatusRoutes(t *testing.T) {
	r := newRouter(t)
	clientID, _ := seed(t, r)

	code, env := do(t, r, http.MethodPatch, "/api/clientes/"+clientID+"/status", nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	var client struct {
		Status string `json:"status"`
	}
	decode(t, env.Data, &client)
	assert.Equal(t, "inactivo", client.Status)

	code, env = do(t, r, http.MethodGet, "/api/clientes?status=activo", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, int64(0), env.Meta.Total)

	code, _ = do(t, r, http.MethodPatch, "/api/clientes/"+clientID+"/status", map[string]string{"status": "borrado"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, r, http.MethodDelete, "/api/clientes/"+clientID+"/permanent", nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = do(t, r, http.MethodGet, "/api/clientes/"+clientID, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestRecordMovementRoute(t *testing.T) {
	r := newRouter(t)
	_, productID := seed(t, r)

	code, env := do(t, r, http.MethodPost, "/api/movimientos", map[string]interface{}{
		"tipo":  "compra",
		"items": []map[string]interface{}{{"productoId": productID, "cantidad": 10}},
	})
	require.Equal(t, http.StatusCreated, code, env.Error)

	code, _ = do(t, r, http.MethodPost, "/api/movimientos", map[string]interface{}{
		"tipo":  "venta",
		"items": []map[string]interface{}{{"productoId": productID, "cantidad": 1}},
	})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestGetStatistics(t *testing.T) {
	r := newRouter(t)
	clientID, productID := seed(t, r)

	code, env := do(t, r, http.MethodPost, "/api/facturas", invoiceBody(clientID, productID, 2, "20"))
	require.Equal(t, http.StatusCreated, code, env.Error)

	code, env = do(t, r, http.MethodGet, "/api/estadisticas?fechaDesde=2020-01-01&fechaHasta=2999-12-31", nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	var stats struct {
		InvoiceCount int64 `json:"facturas"`
	}
	decode(t, env.Data, &stats)
	assert.Equal(t, int64(1), stats.InvoiceCount)

	code, _ = do(t, r, http.MethodGet, "/api/estadisticas?fechaDesde=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}
