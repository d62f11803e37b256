package view

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Jaime0506/app-maestro-detail/internal/model"
	"github.com/Jaime0506/app-maestro-detail/internal/service"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

type ClientListModel struct {
	clients service.ClientService

	rows    []model.Client
	table   table.Model
	form    *huh.Form
	loading bool
	status  string
	isErr   bool
}

type clientsLoadedMsg struct {
	clients []model.Client
	err     error
}

type clientSavedMsg struct {
	client *model.Client
	verb   string
	err    error
}

func NewClientListModel(clients service.ClientService) ClientListModel {
	t := newTable([]table.Column{
		{Title: "Nombre", Width: 24},
		{Title: "Dirección", Width: 24},
		{Title: "Teléfono", Width: 14},
		{Title: "Estado", Width: 9},
	}, 12)
	t.Focus()

	return ClientListModel{clients: clients, table: t, loading: true}
}

func (m ClientListModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m ClientListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.form != nil {
		return m.updateForm(msg)
	}

	var cmd tea.Cmd

	switch msg := msg.(type) {
	case clientsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.status, m.isErr = fmt.Sprintf("Error: %v", msg.err), true
			return m, nil
		}
		m.rows = msg.clients
		m.table.SetRows(clientRows(m.rows))
		return m, nil

	case clientSavedMsg:
		if msg.err != nil {
			m.status, m.isErr = fmt.Sprintf("Error: %v", msg.err), true
			return m, nil
		}
		m.status, m.isErr = fmt.Sprintf("Client %s %s", msg.client.Name, msg.verb), false
		return m, m.loadCmd()

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			return m, m.loadCmd()
		case "n":
			m.form = buildClientForm()
			return m, m.form.Init()
		case "t":
			if c, ok := m.selected(); ok {
				return m, m.toggleCmd(c.ID.String())
			}
			return m, nil
		}
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m ClientListModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
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

	req := service.CreateClientRequest{
		Name:    m.form.GetString("nombre"),
		Address: m.form.GetString("direccion"),
		Phone:   m.form.GetString("telefono"),
	}
	m.form = nil
	return m, m.createCmd(req)
}

func (m ClientListModel) View() string {
	if m.form != nil {
		return pageStyle.Render(titleStyle.Render("Nuevo cliente") + "\n\n" + m.form.View() + "\n" + helpStyle.Render("(Esc to cancel)"))
	}
	if m.loading {
		return pageStyle.Render("Loading clients...")
	}

	return pageStyle.Render(
		titleStyle.Render("Clientes") + "\n\n" +
			m.table.View() + "\n\n" +
			renderStatus(m.status, m.isErr) + "\n" +
			helpStyle.Render("(n new, t toggle status, r refresh, Esc back)"),
	)
}

func (m ClientListModel) selected() (model.Client, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.rows) {
		return model.Client{}, false
	}
	return m.rows[idx], true
}

func (m ClientListModel) loadCmd() tea.Cmd {
	svc := m.clients
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		clients, _, err := svc.ListClients(ctx, service.ClientQuery{Page: 1, Limit: listLimit})
		return clientsLoadedMsg{clients: clients, err: err}
	}
}

func (m ClientListModel) createCmd(req service.CreateClientRequest) tea.Cmd {
	svc := m.clients
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		c, err := svc.CreateClient(ctx, req)
		return clientSavedMsg{client: c, verb: "created", err: err}
	}
}

func (m ClientListModel) toggleCmd(id string) tea.Cmd {
	svc := m.clients
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		c, err := svc.ToggleClientStatus(ctx, id)
		if err != nil {
			return clientSavedMsg{err: err}
		}
		return clientSavedMsg{client: c, verb: "is now " + c.Status}
	}
}

func buildClientForm() *huh.Form {
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
				Key("direccion").
				Title("Dirección"),
			huh.NewInput().
				Key("telefono").
				Title("Teléfono").
				Placeholder("555-0123"),
		),
	).WithWidth(50).WithShowHelp(false)
}

func clientRows(clients []model.Client) []table.Row {
	rows := make([]table.Row, 0, len(clients))
	for _, c := range clients {
		rows = append(rows, table.Row{c.Name, c.Address, c.Phone, c.Status})
	}
	return rows
}
