package view

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/Jaime0506/app-maestro-detail/internal/invoiceform"
	"github.com/Jaime0506/app-maestro-detail/internal/model"
	"github.com/Jaime0506/app-maestro-detail/internal/service"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type composerFocus int

const (
	focusClients composerFocus = iota
	focusProducts
	focusLines
)

// ComposerModel builds an invoice draft: pick a client, add products with a
// quantity, adjust the lines and submit.
type ComposerModel struct {
	catalog  service.CatalogService
	invoices service.InvoiceService
	form     *invoiceform.Form

	clients  []model.Client
	products []model.Product

	clientTable  table.Model
	productTable table.Model
	lineTable    table.Model
	qtyInput     textinput.Model

	focus    composerFocus
	entering bool
	loading  bool
	status   string
	isErr    bool
}

type optionsLoadedMsg struct {
	opts service.InvoiceOptions
	err  error
}

type invoiceSubmittedMsg struct {
	result service.CreateInvoiceResult
	err    error
}

func NewComposerModel(catalog service.CatalogService, invoices service.InvoiceService) ComposerModel {
	ti := textinput.New()
	ti.Placeholder = "1"
	ti.CharLimit = 6
	ti.Width = 10

	m := ComposerModel{
		catalog:  catalog,
		invoices: invoices,
		form:     invoiceform.New(),
		clientTable: newTable([]table.Column{
			{Title: "Cliente", Width: 24},
			{Title: "Teléfono", Width: 14},
		}, 6),
		productTable: newTable([]table.Column{
			{Title: "Producto", Width: 22},
			{Title: "Precio", Width: 10},
			{Title: "Stock", Width: 6},
		}, 6),
		lineTable: newTable([]table.Column{
			{Title: "Producto", Width: 22},
			{Title: "Cant.", Width: 6},
			{Title: "P. Unit.", Width: 10},
			{Title: "Subtotal", Width: 12},
		}, 6),
		qtyInput: ti,
		loading:  true,
	}
	m.clientTable.Focus()
	return m
}

func (m ComposerModel) Init() tea.Cmd {
	return m.loadOptionsCmd()
}

func (m ComposerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case optionsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.setStatus(fmt.Sprintf("Error loading options: %v", msg.err), true)
			return m, nil
		}
		m.clients = msg.opts.Clients
		m.products = msg.opts.Products
		m.refreshOptions()
		return m, nil

	case invoiceSubmittedMsg:
		if msg.err != nil {
			m.setStatus(submitErrorText(msg.err, m.form.Errors()), true)
			return m, nil
		}
		m.refreshLines()
		label := "Invoice"
		if msg.result.Replayed {
			label = "Invoice (already recorded)"
		}
		m.setStatus(fmt.Sprintf("%s %s created, total %s", label, shortID(msg.result.InvoiceID), FormatMoney(msg.result.Total)), false)
		return m, m.loadOptionsCmd()

	case tea.KeyMsg:
		if m.entering {
			return m.updateQuantityInput(msg)
		}

		switch msg.String() {
		case "esc":
			return m, Back
		case "tab":
			m.setFocus((m.focus + 1) % 3)
			return m, nil
		case "shift+tab":
			m.setFocus((m.focus + 2) % 3)
			return m, nil
		case "ctrl+s":
			if m.form.Submitting() {
				return m, nil
			}
			m.setStatus("Submitting...", false)
			return m, m.submitCmd()
		case "ctrl+r":
			m.form.Reset()
			m.refreshLines()
			m.setStatus("Draft cleared", false)
			return m, nil
		case "enter":
			return m.handleEnter()
		}

		if m.focus == focusLines {
			if handled := m.handleLineKey(msg.String()); handled {
				return m, nil
			}
		}
	}

	switch m.focus {
	case focusClients:
		m.clientTable, cmd = m.clientTable.Update(msg)
	case focusProducts:
		m.productTable, cmd = m.productTable.Update(msg)
	case focusLines:
		m.lineTable, cmd = m.lineTable.Update(msg)
	}

	return m, cmd
}

func (m ComposerModel) View() string {
	if m.loading {
		return pageStyle.Render("Loading clients and products...")
	}

	client := m.form.ClientName()
	if client == "" {
		client = "(none)"
	}

	panels := lipgloss.JoinHorizontal(lipgloss.Top,
		m.panel("Clientes", m.clientTable.View(), focusClients),
		m.panel("Productos", m.productTable.View(), focusProducts),
	)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Nueva factura") + "\n\n")
	b.WriteString(panels + "\n")
	b.WriteString(fmt.Sprintf("Cliente: %s\n", client))
	b.WriteString(m.panel("Items", m.lineTable.View(), focusLines) + "\n")
	b.WriteString(fmt.Sprintf("Total: %s\n", FormatMoney(m.form.Total())))

	if errs := m.form.Errors(); len(errs) > 0 {
		keys := make([]string, 0, len(errs))
		for k := range errs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.WriteString(errStyle.Render(fmt.Sprintf("%s: %s", k, errs[k])) + "\n")
		}
	}

	if m.entering {
		b.WriteString("\nCantidad: " + m.qtyInput.View() + "\n")
		b.WriteString(helpStyle.Render("(Enter to add, Esc to cancel)"))
	} else {
		b.WriteString("\n" + renderStatus(m.status, m.isErr) + "\n")
		b.WriteString(helpStyle.Render("(Tab switch panel, Enter select/add, +/- quantity, d remove, Ctrl+S submit, Ctrl+R clear, Esc back)"))
	}

	return pageStyle.Render(b.String())
}

func (m ComposerModel) panel(title, body string, f composerFocus) string {
	style := panelStyle
	if m.focus == f {
		style = activePanelStyle
	}
	return style.Render(title + "\n" + body)
}

func (m ComposerModel) handleEnter() (tea.Model, tea.Cmd) {
	switch m.focus {
	case focusClients:
		if c, ok := m.selectedClient(); ok {
			m.form.SetClient(c)
			m.setStatus("Client selected: "+c.Name, false)
		}
		return m, nil
	case focusProducts:
		if _, ok := m.selectedProduct(); !ok {
			return m, nil
		}
		m.entering = true
		m.qtyInput.SetValue("")
		cmd := m.qtyInput.Focus()
		return m, cmd
	}
	return m, nil
}

func (m ComposerModel) updateQuantityInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.entering = false
		m.qtyInput.Blur()
		return m, nil
	case "enter":
		m.entering = false
		m.qtyInput.Blur()

		qty, err := strconv.Atoi(strings.TrimSpace(m.qtyInput.Value()))
		if err != nil {
			m.setStatus("quantity must be a whole number", true)
			return m, nil
		}
		p, ok := m.selectedProduct()
		if !ok {
			return m, nil
		}
		if m.form.AddLineItem(p, qty) {
			m.refreshLines()
			m.setStatus(fmt.Sprintf("Added %d x %s", qty, p.Name), false)
		} else {
			m.setStatus("Line not added", true)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.qtyInput, cmd = m.qtyInput.Update(msg)
	return m, cmd
}

// handleLineKey applies quantity edits to the highlighted line.
func (m *ComposerModel) handleLineKey(key string) bool {
	items := m.form.Items()
	idx := m.lineTable.Cursor()
	if idx < 0 || idx >= len(items) {
		return false
	}
	item := items[idx]

	switch key {
	case "+", "=":
		if p, ok := m.productByID(item.ProductID.String()); ok && item.Quantity+1 > p.Quantity {
			m.setStatus(fmt.Sprintf("insufficient stock. available: %d", p.Quantity), true)
			return true
		}
		m.form.UpdateLineItemQuantity(item.ProductID, item.Quantity+1)
	case "-":
		m.form.UpdateLineItemQuantity(item.ProductID, item.Quantity-1)
	case "d", "delete", "backspace":
		m.form.RemoveLineItem(item.ProductID)
	default:
		return false
	}

	m.refreshLines()
	return true
}

func (m *ComposerModel) setFocus(f composerFocus) {
	m.focus = f
	m.clientTable.Blur()
	m.productTable.Blur()
	m.lineTable.Blur()
	switch f {
	case focusClients:
		m.clientTable.Focus()
	case focusProducts:
		m.productTable.Focus()
	case focusLines:
		m.lineTable.Focus()
	}
}

func (m *ComposerModel) setStatus(s string, isErr bool) {
	m.status = s
	m.isErr = isErr
}

func (m *ComposerModel) refreshOptions() {
	clientRows := make([]table.Row, 0, len(m.clients))
	for _, c := range m.clients {
		clientRows = append(clientRows, table.Row{c.Name, c.Phone})
	}
	m.clientTable.SetRows(clientRows)

	productRows := make([]table.Row, 0, len(m.products))
	for _, p := range m.products {
		productRows = append(productRows, table.Row{p.Name, FormatMoney(p.Price), strconv.Itoa(p.Quantity)})
	}
	m.productTable.SetRows(productRows)
}

func (m *ComposerModel) refreshLines() {
	items := m.form.Items()
	rows := make([]table.Row, 0, len(items))
	for _, item := range items {
		rows = append(rows, table.Row{
			item.ProductName,
			strconv.Itoa(item.Quantity),
			FormatMoney(item.UnitPrice),
			FormatMoney(item.Subtotal),
		})
	}
	m.lineTable.SetRows(rows)
	if c := m.lineTable.Cursor(); c >= len(rows) && len(rows) > 0 {
		m.lineTable.SetCursor(len(rows) - 1)
	}
}

func (m ComposerModel) selectedClient() (model.Client, bool) {
	idx := m.clientTable.Cursor()
	if idx < 0 || idx >= len(m.clients) {
		return model.Client{}, false
	}
	return m.clients[idx], true
}

func (m ComposerModel) selectedProduct() (model.Product, bool) {
	idx := m.productTable.Cursor()
	if idx < 0 || idx >= len(m.products) {
		return model.Product{}, false
	}
	return m.products[idx], true
}

func (m ComposerModel) productByID(id string) (model.Product, bool) {
	for _, p := range m.products {
		if p.ID.String() == id {
			return p, true
		}
	}
	return model.Product{}, false
}

func (m ComposerModel) loadOptionsCmd() tea.Cmd {
	catalog := m.catalog
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		opts, err := catalog.LoadInvoiceOptions(ctx)
		return optionsLoadedMsg{opts: opts, err: err}
	}
}

func (m ComposerModel) submitCmd() tea.Cmd {
	form, invoices := m.form, m.invoices
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		result, err := form.Submit(ctx, invoices)
		return invoiceSubmittedMsg{result: result, err: err}
	}
}

func submitErrorText(err error, fieldErrs map[string]string) string {
	switch {
	case errors.Is(err, invoiceform.ErrInvalidDraft):
		parts := make([]string, 0, len(fieldErrs))
		for _, k := range []string{invoiceform.FieldClient, invoiceform.FieldItems} {
			if msg, ok := fieldErrs[k]; ok {
				parts = append(parts, msg)
			}
		}
		return "Draft incomplete: " + strings.Join(parts, ", ")
	case errors.Is(err, service.ErrInsufficientStock):
		return "Not enough stock, draft kept: " + fieldErrs[invoiceform.FieldStock]
	case errors.Is(err, service.ErrStockConflict):
		return "Stock changed while saving, submit again"
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}
