package view

import (
	"fmt"
	"strconv"

	"github.com/Jaime0506/app-maestro-detail/internal/model"
	"github.com/Jaime0506/app-maestro-detail/internal/service"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
)

const listLimit = 100

var invoiceStatusFilters = []string{"", model.InvoiceStatusPending, model.InvoiceStatusPaid, model.InvoiceStatusCanceled}

type InvoiceListModel struct {
	invoices service.InvoiceService

	rows    []model.Invoice
	total   int64
	table   table.Model
	filter  string
	loading bool
	status  string
	isErr   bool
}

type invoicesLoadedMsg struct {
	invoices []model.Invoice
	total    int64
	err      error
}

type invoiceChangedMsg struct {
	invoice *model.Invoice
	err     error
}

func NewInvoiceListModel(invoices service.InvoiceService) InvoiceListModel {
	t := newTable([]table.Column{
		{Title: "ID", Width: 10},
		{Title: "Fecha", Width: 12},
		{Title: "Cliente", Width: 24},
		{Title: "Items", Width: 6},
		{Title: "Total", Width: 12},
		{Title: "Estado", Width: 10},
	}, 12)
	t.Focus()

	return InvoiceListModel{invoices: invoices, table: t, loading: true}
}

func (m InvoiceListModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m InvoiceListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case invoicesLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.status, m.isErr = fmt.Sprintf("Error: %v", msg.err), true
			return m, nil
		}
		m.rows = msg.invoices
		m.total = msg.total
		m.table.SetRows(invoiceRows(m.rows))
		return m, nil

	case invoiceChangedMsg:
		if msg.err != nil {
			m.status, m.isErr = fmt.Sprintf("Error: %v", msg.err), true
			return m, nil
		}
		m.status, m.isErr = fmt.Sprintf("Invoice %s is now %s", shortID(msg.invoice.ID), msg.invoice.Status), false
		return m, m.loadCmd()

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			return m, m.loadCmd()
		case "f":
			m.filter = cycleFilter(m.filter, invoiceStatusFilters)
			return m, m.loadCmd()
		case "enter", "n":
			if inv, ok := m.selected(); ok {
				return m, m.changeCmd(func(svc service.InvoiceService) (*model.Invoice, error) {
					ctx, cancel := DbCtx()
					defer cancel()
					return svc.CycleStatus(ctx, inv.ID.String())
				})
			}
			return m, nil
		case "x":
			if inv, ok := m.selected(); ok {
				return m, m.changeCmd(func(svc service.InvoiceService) (*model.Invoice, error) {
					ctx, cancel := DbCtx()
					defer cancel()
					return svc.CancelInvoice(ctx, inv.ID.String())
				})
			}
			return m, nil
		}
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m InvoiceListModel) View() string {
	if m.loading {
		return pageStyle.Render("Loading invoices...")
	}

	header := titleStyle.Render("Facturas") +
		helpStyle.Render(fmt.Sprintf("  estado: %s  (%d de %d)", filterLabel(m.filter), len(m.rows), m.total))

	return pageStyle.Render(
		header + "\n\n" +
			m.table.View() + "\n\n" +
			renderStatus(m.status, m.isErr) + "\n" +
			helpStyle.Render("(Enter/n next status, x cancel, f filter, r refresh, Esc back)"),
	)
}

func (m InvoiceListModel) selected() (model.Invoice, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.rows) {
		return model.Invoice{}, false
	}
	return m.rows[idx], true
}

func (m InvoiceListModel) loadCmd() tea.Cmd {
	svc, filter := m.invoices, m.filter
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		invoices, total, err := svc.ListInvoices(ctx, service.InvoiceQuery{Status: filter, Page: 1, Limit: listLimit})
		return invoicesLoadedMsg{invoices: invoices, total: total, err: err}
	}
}

func (m InvoiceListModel) changeCmd(change func(service.InvoiceService) (*model.Invoice, error)) tea.Cmd {
	svc := m.invoices
	return func() tea.Msg {
		inv, err := change(svc)
		return invoiceChangedMsg{invoice: inv, err: err}
	}
}

func invoiceRows(invoices []model.Invoice) []table.Row {
	rows := make([]table.Row, 0, len(invoices))
	for _, inv := range invoices {
		rows = append(rows, table.Row{
			shortID(inv.ID),
			FormatDate(inv.Date),
			inv.ClientName,
			strconv.Itoa(len(inv.Items)),
			FormatMoney(inv.Total),
			inv.Status,
		})
	}
	return rows
}
