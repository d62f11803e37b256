package view

import (
	"fmt"
	"strconv"

	"github.com/Jaime0506/app-maestro-detail/internal/model"
	"github.com/Jaime0506/app-maestro-detail/internal/service"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
)

var movementTypeFilters = []string{"", model.MovementSale, model.MovementPurchase, model.MovementAdjustment, model.MovementReturn}

type MovementListModel struct {
	movements service.MovementService

	rows    []model.Movement
	total   int64
	table   table.Model
	filter  string
	loading bool
	err     error
}

type movementsLoadedMsg struct {
	movements []model.Movement
	total     int64
	err       error
}

func NewMovementListModel(movements service.MovementService) MovementListModel {
	t := newTable([]table.Column{
		{Title: "Fecha", Width: 12},
		{Title: "Tipo", Width: 11},
		{Title: "Cliente", Width: 20},
		{Title: "Unid.", Width: 6},
		{Title: "Total", Width: 12},
		{Title: "Descripción", Width: 30},
	}, 12)
	t.Focus()

	return MovementListModel{movements: movements, table: t, loading: true}
}

func (m MovementListModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m MovementListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case movementsLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			return m, nil
		}
		m.rows = msg.movements
		m.total = msg.total
		m.table.SetRows(movementRows(m.rows))
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			return m, m.loadCmd()
		case "f":
			m.filter = cycleFilter(m.filter, movementTypeFilters)
			return m, m.loadCmd()
		}
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m MovementListModel) View() string {
	if m.loading {
		return pageStyle.Render("Loading movements...")
	}

	header := titleStyle.Render("Movimientos") +
		helpStyle.Render(fmt.Sprintf("  tipo: %s  (%d de %d)", filterLabel(m.filter), len(m.rows), m.total))

	status := ""
	if m.err != nil {
		status = renderStatus(fmt.Sprintf("Error: %v", m.err), true)
	}

	return pageStyle.Render(
		header + "\n\n" +
			m.table.View() + "\n\n" +
			status + "\n" +
			helpStyle.Render("(f filter type, r refresh, Esc back)"),
	)
}

func (m MovementListModel) loadCmd() tea.Cmd {
	svc, filter := m.movements, m.filter
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		movements, total, err := svc.ListMovements(ctx, service.MovementQuery{Type: filter, Page: 1, Limit: listLimit})
		return movementsLoadedMsg{movements: movements, total: total, err: err}
	}
}

func movementRows(movements []model.Movement) []table.Row {
	rows := make([]table.Row, 0, len(movements))
	for _, mv := range movements {
		units := 0
		for _, item := range mv.Items {
			units += item.Quantity
		}
		rows = append(rows, table.Row{
			FormatDate(mv.Date),
			mv.Type,
			mv.ClientName,
			strconv.Itoa(units),
			FormatMoney(mv.Total),
			mv.Description,
		})
	}
	return rows
}
