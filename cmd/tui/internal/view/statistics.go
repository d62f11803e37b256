package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/Jaime0506/app-maestro-detail/internal/model"
	"github.com/Jaime0506/app-maestro-detail/internal/service"

	tea "github.com/charmbracelet/bubbletea"
)

// StatisticsModel shows the sales summary for one calendar month.
type StatisticsModel struct {
	stats service.StatisticsService

	month   time.Time
	data    model.SalesStatistics
	loading bool
	err     error
}

type statisticsLoadedMsg struct {
	data model.SalesStatistics
	err  error
}

func NewStatisticsModel(stats service.StatisticsService, now time.Time) StatisticsModel {
	now = now.UTC()
	return StatisticsModel{
		stats:   stats,
		month:   time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC),
		loading: true,
	}
}

func (m StatisticsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m StatisticsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case statisticsLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.data = msg.data
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "left", "h":
			m.month = m.month.AddDate(0, -1, 0)
			m.loading = true
			return m, m.loadCmd()
		case "right", "l":
			m.month = m.month.AddDate(0, 1, 0)
			m.loading = true
			return m, m.loadCmd()
		}
	}
	return m, nil
}

func (m StatisticsModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Estadísticas "+m.month.Format("2006-01")) + "\n\n")

	switch {
	case m.loading:
		b.WriteString("Loading...\n")
	case m.err != nil:
		b.WriteString(renderStatus(fmt.Sprintf("Error: %v", m.err), true) + "\n")
	default:
		b.WriteString(fmt.Sprintf("Facturas:      %d\n", m.data.InvoiceCount))
		b.WriteString(fmt.Sprintf("Total vendido: %s\n\n", FormatMoney(m.data.SoldAmount)))
		for _, s := range m.data.ByStatus {
			b.WriteString(fmt.Sprintf("  %-10s %4d  %s\n", s.Status, s.Count, FormatMoney(s.Total)))
		}
		if len(m.data.TopProducts) > 0 {
			b.WriteString("\nProductos más vendidos\n")
			for i, p := range m.data.TopProducts {
				b.WriteString(fmt.Sprintf("  %d. %-24s %5d  %s\n", i+1, p.ProductName, p.TotalQuantity, FormatMoney(p.TotalValue)))
			}
		}
	}

	b.WriteString("\n" + helpStyle.Render("(←/→ change month, Esc back)"))
	return pageStyle.Render(b.String())
}

func (m StatisticsModel) loadCmd() tea.Cmd {
	svc := m.stats
	from := m.month
	to := from.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		data, err := svc.GetStatistics(ctx, from, to)
		return statisticsLoadedMsg{data: data, err: err}
	}
}
