package main

import (
	"log"
	"os"
	"time"

	"github.com/Jaime0506/app-maestro-detail/cmd/tui/internal/view"
	"github.com/Jaime0506/app-maestro-detail/internal/config"
	"github.com/Jaime0506/app-maestro-detail/internal/database"
	"github.com/Jaime0506/app-maestro-detail/internal/logger"
	"github.com/Jaime0506/app-maestro-detail/internal/repository"
	"github.com/Jaime0506/app-maestro-detail/internal/service"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

const defaultLogFile = "maestro-tui.log"

type services struct {
	clients    service.ClientService
	products   service.ProductService
	invoices   service.InvoiceService
	movements  service.MovementService
	catalog    service.CatalogService
	statistics service.StatisticsService
}

type model struct {
	svc    services
	active tea.Model
}

var menuStyle = lipgloss.NewStyle().Padding(2)

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.active == nil {
			return m.updateMenu(msg)
		}
	case view.BackMsg:
		m.active = nil
		return m, nil
	}

	if m.active == nil {
		return m, nil
	}

	var cmd tea.Cmd
	m.active, cmd = m.active.Update(msg)
	return m, cmd
}

func (m model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "1":
		m.active = view.NewComposerModel(m.svc.catalog, m.svc.invoices)
	case "2":
		m.active = view.NewInvoiceListModel(m.svc.invoices)
	case "3":
		m.active = view.NewClientListModel(m.svc.clients)
	case "4":
		m.active = view.NewProductListModel(m.svc.products, m.svc.movements)
	case "5":
		m.active = view.NewMovementListModel(m.svc.movements)
	case "6":
		m.active = view.NewStatisticsModel(m.svc.statistics, time.Now())
	default:
		return m, nil
	}
	return m, m.active.Init()
}

func (m model) View() string {
	if m.active != nil {
		return m.active.View()
	}

	return menuStyle.Render(
		"Maestro-Detail\n\n" +
			"1. New Invoice\n" +
			"2. Invoices\n" +
			"3. Clients\n" +
			"4. Products\n" +
			"5. Stock Movements\n" +
			"6. Statistics\n\n" +
			"q. Quit",
	)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logFile := cfg.Log.File
	if logFile == "" {
		logFile = defaultLogFile
	}
	zapLog, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Environment: cfg.App.Env,
		ServiceName: cfg.App.Name + "-tui",
		OutputPath:  logFile,
	})
	if err != nil {
		log.Fatalf("Logger setup failed: %v", err)
	}
	defer func() { _ = zapLog.Sync() }()

	db, err := database.Connect(cfg.DB)
	if err != nil {
		zapLog.Fatal("Database connection failed", zap.Error(err))
	}
	if err := database.Migrate(db, cfg.DB); err != nil {
		zapLog.Fatal("Database migration failed", zap.Error(err))
	}

	clientRepo := repository.NewClientRepository(db)
	productRepo := repository.NewProductRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	movementRepo := repository.NewMovementRepository(db)
	txManager := repository.NewTransactionManager(db)
	notifier := service.LogNotifier{}

	svc := services{
		clients:    service.NewClientService(clientRepo, notifier),
		products:   service.NewProductService(productRepo, notifier),
		invoices:   service.NewInvoiceService(invoiceRepo, movementRepo, productRepo, txManager, notifier),
		movements:  service.NewMovementService(movementRepo, invoiceRepo, productRepo, txManager, notifier),
		catalog:    service.NewCatalogService(clientRepo, productRepo),
		statistics: service.NewStatisticsService(repository.NewStatisticsRepository(db), movementRepo),
	}

	p := tea.NewProgram(model{svc: svc}, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		zapLog.Error("TUI failed", zap.Error(err))
		os.Exit(1)
	}
}
