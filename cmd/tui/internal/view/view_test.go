package view

import (
	"context"
	"testing"

	"github.com/Jaime0506/app-maestro-detail/internal/model"
	"github.com/Jaime0506/app-maestro-detail/internal/service"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	opts service.InvoiceOptions
}

func (f fakeCatalog) LoadInvoiceOptions(context.Context) (service.InvoiceOptions, error) {
	return f.opts, nil
}

type fakeInvoices struct {
	service.InvoiceService
	created  []service.CreateInvoiceRequest
	invoices []model.Invoice
	cycled   []string
}

func (f *fakeInvoices) CreateInvoice(_ context.Context, req service.CreateInvoiceRequest) (service.CreateInvoiceResult, error) {
	f.created = append(f.created, req)
	return service.CreateInvoiceResult{InvoiceID: uuid.New(), MovementID: uuid.New(), Total: req.Total}, nil
}

func (f *fakeInvoices) ListInvoices(_ context.Context, q service.InvoiceQuery) ([]model.Invoice, int64, error) {
	var out []model.Invoice
	for _, inv := range f.invoices {
		if q.Status == "" || inv.Status == q.Status {
			out = append(out, inv)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeInvoices) CycleStatus(_ context.Context, id string) (*model.Invoice, error) {
	f.cycled = append(f.cycled, id)
	for i := range f.invoices {
		if f.invoices[i].ID.String() == id {
			next, err := model.NextInvoiceStatus(f.invoices[i].Status)
			if err != nil {
				return nil, err
			}
			f.invoices[i].Status = next
			inv := f.invoices[i]
			return &inv, nil
		}
	}
	return nil, service.ErrNotFound
}

func key(k tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: k}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(t *testing.T, m tea.Model, msg tea.Msg) (tea.Model, tea.Cmd) {
	t.Helper()
	return m.Update(msg)
}

func TestComposer_BuildsAndSubmitsDraft(t *testing.T) {
	client := model.Client{Name: "Ana"}
	client.ID = uuid.New()
	product := model.Product{Name: "Widget", Price: decimal.RequireFromString("2.50"), Quantity: 5}
	product.ID = uuid.New()

	invoices := &fakeInvoices{}
	var m tea.Model = NewComposerModel(fakeCatalog{opts: service.InvoiceOptions{
		Clients:  []model.Client{client},
		Products: []model.Product{product},
	}}, invoices)

	m, _ = send(t, m, m.Init()())
	m, _ = send(t, m, key(tea.KeyEnter))
	m, _ = send(t, m, key(tea.KeyTab))
	m, _ = send(t, m, key(tea.KeyEnter))
	require.True(t, m.(ComposerModel).entering)

	m, _ = send(t, m, runes("2"))
	m, _ = send(t, m, key(tea.KeyEnter))

	c := m.(ComposerModel)
	assert.False(t, c.entering)
	assert.Equal(t, "Ana", c.form.ClientName())
	require.Len(t, c.form.Items(), 1)
	assert.Equal(t, 2, c.form.Items()[0].Quantity)
	assert.True(t, decimal.RequireFromString("5").Equal(c.form.Total()))

	m, cmd := send(t, m, key(tea.KeyCtrlS))
	require.NotNil(t, cmd)
	m, _ = send(t, m, cmd())

	require.Len(t, invoices.created, 1)
	req := invoices.created[0]
	assert.Equal(t, client.ID.String(), req.ClientID)
	assert.NotEmpty(t, req.IdempotencyKey)
	require.Len(t, req.Items, 1)
	assert.Equal(t, 2, req.Items[0].Quantity)

	c = m.(ComposerModel)
	assert.False(t, c.isErr)
	assert.Contains(t, c.status, "created")
	assert.Empty(t, c.form.Items())
}

func TestComposer_RejectsQuantityAboveStock(t *testing.T) {
	product := model.Product{Name: "Widget", Price: decimal.NewFromInt(1), Quantity: 1}
	product.ID = uuid.New()

	var m tea.Model = NewComposerModel(fakeCatalog{opts: service.InvoiceOptions{Products: []model.Product{product}}}, &fakeInvoices{})
	m, _ = send(t, m, m.Init()())
	m, _ = send(t, m, key(tea.KeyTab))
	m, _ = send(t, m, key(tea.KeyEnter))
	m, _ = send(t, m, runes("3"))
	m, _ = send(t, m, key(tea.KeyEnter))

	c := m.(ComposerModel)
	assert.True(t, c.isErr)
	assert.Empty(t, c.form.Items())
	assert.Contains(t, c.form.Errors()["stock"], "available: 1")
}

func TestComposer_SubmitIncompleteDraft(t *testing.T) {
	invoices := &fakeInvoices{}
	var m tea.Model = NewComposerModel(fakeCatalog{}, invoices)
	m, _ = send(t, m, m.Init()())

	m, cmd := send(t, m, key(tea.KeyCtrlS))
	m, _ = send(t, m, cmd())

	c := m.(ComposerModel)
	assert.True(t, c.isErr)
	assert.Contains(t, c.status, "Draft incomplete")
	assert.Empty(t, invoices.created)
}

func TestComposer_EscGoesBack(t *testing.T) {
	m := NewComposerModel(fakeCatalog{}, &fakeInvoices{})
	_, cmd := m.Update(key(tea.KeyEsc))
	require.NotNil(t, cmd)
	assert.IsType(t, BackMsg{}, cmd())
}

func TestInvoiceList_CyclesSelectedInvoice(t *testing.T) {
	inv := model.Invoice{ClientName: "Ana", Status: model.InvoiceStatusPending, Total: decimal.NewFromInt(10)}
	inv.ID = uuid.New()
	invoices := &fakeInvoices{invoices: []model.Invoice{inv}}

	var m tea.Model = NewInvoiceListModel(invoices)
	m, _ = send(t, m, m.Init()())
	require.Len(t, m.(InvoiceListModel).rows, 1)

	m, cmd := send(t, m, runes("n"))
	require.NotNil(t, cmd)
	m, reload := send(t, m, cmd())
	require.NotNil(t, reload)
	m, _ = send(t, m, reload())

	assert.Equal(t, []string{inv.ID.String()}, invoices.cycled)
	l := m.(InvoiceListModel)
	assert.Contains(t, l.status, model.InvoiceStatusPaid)
	assert.Equal(t, model.InvoiceStatusPaid, l.rows[0].Status)
}

func TestInvoiceList_FilterCyclesStatuses(t *testing.T) {
	inv := model.Invoice{Status: model.InvoiceStatusPaid}
	inv.ID = uuid.New()
	invoices := &fakeInvoices{invoices: []model.Invoice{inv}}

	var m tea.Model = NewInvoiceListModel(invoices)
	m, cmd := send(t, m, runes("f"))
	m, _ = send(t, m, cmd())

	l := m.(InvoiceListModel)
	assert.Equal(t, model.InvoiceStatusPending, l.filter)
	assert.Empty(t, l.rows)
}

func TestCycleFilter(t *testing.T) {
	opts := []string{"", "a", "b"}
	assert.Equal(t, "a", cycleFilter("", opts))
	assert.Equal(t, "", cycleFilter("b", opts))
	assert.Equal(t, "", cycleFilter("unknown", opts))
}

func TestValidateCount(t *testing.T) {
	assert.NoError(t, validateCount(1)("3"))
	assert.Error(t, validateCount(1)("0"))
	assert.Error(t, validateCount(0)("abc"))
	assert.NoError(t, validatePrice("0"))
	assert.Error(t, validatePrice("-1"))
}
