package view

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Jaime0506/app-maestro-detail/internal/model"
	"github.com/Jaime0506/app-maestro-detail/internal/service"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/shopspring/decimal"
)

type productFormKind int

const (
	productFormCreate productFormKind = iota
	productFormPurchase
)

type ProductListModel struct {
	products  service.ProductService
	movements service.MovementService

	rows     []model.Product
	table    table.Model
	form     *huh.Form
	formKind productFormKind
	target   model.Product
	loading  bool
	status   string
	isErr    bool
}

type productsLoadedMsg struct {
	products []model.Product
	err      error
}

type productSavedMsg struct {
	text string
	err  error
}

func NewProductListModel(products service.ProductService, movements service.MovementService) ProductListModel {
	t := newTable([]table.Column{
		{Title: "Nombre", Width: 24},
		{Title: "Precio", Width: 10},
		{Title: "Stock", Width: 7},
		{Title: "Estado", Width: 9},
		{Title: "Descripción", Width: 28},
	}, 12)
	t.Focus()

	return ProductListModel{products: products, movements: movements, table: t, loading: true}
}

func (m ProductListModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m ProductListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.form != nil {
		return m.updateForm(msg)
	}

	var cmd tea.Cmd

	switch msg := msg.(type) {
	case productsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.status, m.isErr = fmt.Sprintf("Error: %v", msg.err), true
			return m, nil
		}
		m.rows = msg.products
		m.table.SetRows(productRows(m.rows))
		return m, nil

	case productSavedMsg:
		if msg.err != nil {
			m.status, m.isErr = fmt.Sprintf("Error: %v", msg.err), true
			return m, nil
		}
		m.status, m.isErr = msg.text, false
		return m, m.loadCmd()

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			return m, m.loadCmd()
		case "n":
			m.form, m.formKind = buildProductForm(), productFormCreate
			return m, m.form.Init()
		case "p":
			if p, ok := m.selected(); ok {
				m.target = p
				m.form, m.formKind = buildPurchaseForm(p.Name), productFormPurchase
				return m, m.form.Init()
			}
			return m, nil
		case "t":
			if p, ok := m.selected(); ok {
				return m, m.toggleCmd(p.ID.String())
			}
			return m, nil
		}
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m ProductListModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.form = nil
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	f := m.form
	m.form = nil

	if m.formKind == productFormPurchase {
		qty, _ := strconv.Atoi(strings.TrimSpace(f.GetString("cantidad")))
		return m, m.purchaseCmd(m.target, qty)
	}

	price, _ := decimal.NewFromString(strings.TrimSpace(f.GetString("precio")))
	qty, _ := strconv.Atoi(strings.TrimSpace(f.GetString("cantidad")))
	return m, m.createCmd(service.CreateProductRequest{
		Name:        f.GetString("nombre"),
		Description: f.GetString("descripcion"),
		Price:       price,
		Quantity:    qty,
	})
}

func (m ProductListModel) View() string {
	if m.form != nil {
		title := "Nuevo producto"
		if m.formKind == productFormPurchase {
			title = "Compra de " + m.target.Name
		}
		return pageStyle.Render(titleStyle.Render(title) + "\n\n" + m.form.View() + "\n" + helpStyle.Render("(Esc to cancel)"))
	}
	if m.loading {
		return pageStyle.Render("Loading products...")
	}

	return pageStyle.Render(
		titleStyle.Render("Productos") + "\n\n" +
			m.table.View() + "\n\n" +
			renderStatus(m.status, m.isErr) + "\n" +
			helpStyle.Render("(n new, p record purchase, t toggle status, r refresh, Esc back)"),
	)
}

func (m ProductListModel) selected() (model.Product, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.rows) {
		return model.Product{}, false
	}
	return m.rows[idx], true
}

func (m ProductListModel) loadCmd() tea.Cmd {
	svc := m.products
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		products, _, err := svc.ListProducts(ctx, service.ProductQuery{Page: 1, Limit: listLimit})
		return productsLoadedMsg{products: products, err: err}
	}
}

func (m ProductListModel) createCmd(req service.CreateProductRequest) tea.Cmd {
	svc := m.products
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		p, err := svc.CreateProduct(ctx, req)
		if err != nil {
			return productSavedMsg{err: err}
		}
		return productSavedMsg{text: fmt.Sprintf("Product %s created", p.Name)}
	}
}

func (m ProductListModel) purchaseCmd(p model.Product, qty int) tea.Cmd {
	svc := m.movements
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		_, err := svc.RecordMovement(ctx, service.RecordMovementRequest{
			Type:  model.MovementPurchase,
			Items: []service.StockMovementItem{{ProductID: p.ID.String(), Quantity: qty}},
		})
		if err != nil {
			return productSavedMsg{err: err}
		}
		return productSavedMsg{text: fmt.Sprintf("Received %d x %s", qty, p.Name)}
	}
}

func (m ProductListModel) toggleCmd(id string) tea.Cmd {
	svc := m.products
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		p, err := svc.ToggleProductStatus(ctx, id)
		if err != nil {
			return productSavedMsg{err: err}
		}
		return productSavedMsg{text: fmt.Sprintf("Product %s is now %s", p.Name, p.Status)}
	}
}

func buildProductForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("nombre").
				Title("Nombre").
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("name is required")
					}
					return nil
				}),
			huh.NewInput().
				Key("descripcion").
				Title("Descripción"),
			huh.NewInput().
				Key("precio").
				Title("Precio").
				Placeholder("0.00").
				Validate(validatePrice),
			huh.NewInput().
				Key("cantidad").
				Title("Stock inicial").
				Placeholder("0").
				Validate(validateCount(0)),
		),
	).WithWidth(50).WithShowHelp(false)
}

func buildPurchaseForm(name string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("cantidad").
				Title("Unidades recibidas").
				Description(name).
				Validate(validateCount(1)),
		),
	).WithWidth(50).WithShowHelp(false)
}

func validatePrice(s string) error {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return errors.New("enter a number like 12.50")
	}
	if d.IsNegative() {
		return errors.New("price cannot be negative")
	}
	return nil
}

func validateCount(least int) func(string) error {
	return func(s string) error {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return errors.New("enter a whole number")
		}
		if n < least {
			return fmt.Errorf("must be at least %d", least)
		}
		return nil
	}
}

func productRows(products []model.Product) []table.Row {
	rows := make([]table.Row, 0, len(products))
	for _, p := range products {
		rows = append(rows, table.Row{p.Name, FormatMoney(p.Price), strconv.Itoa(p.Quantity), p.Status, p.Description})
	}
	return rows
}
