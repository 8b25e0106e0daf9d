package main

import (
	"context"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/dermanow/dermanow/cmd/tui/internal/view"
	"github.com/dermanow/dermanow/internal/campaign"
	campaignStore "github.com/dermanow/dermanow/internal/campaign/store"
	"github.com/dermanow/dermanow/internal/catalog"
	catalogStore "github.com/dermanow/dermanow/internal/catalog/store"
	"github.com/dermanow/dermanow/internal/config"
	"github.com/dermanow/dermanow/internal/database"
	"github.com/dermanow/dermanow/internal/events"
	"github.com/dermanow/dermanow/internal/identity"
	identityStore "github.com/dermanow/dermanow/internal/identity/store"
	"github.com/dermanow/dermanow/internal/importer"
	"github.com/dermanow/dermanow/internal/order"
	orderStore "github.com/dermanow/dermanow/internal/order/store"
	"github.com/dermanow/dermanow/internal/report"
)

type services struct {
	identity *identity.Service
	orders   *order.Service
	campaign *campaign.Service
	importer *importer.Service
	report   *report.Service
}

type model struct {
	svc     services
	session *view.Session

	currentView View

	loginView     view.LoginModel
	ordersView    view.OrdersModel
	newOrderView  view.NewOrderModel
	campaignsView view.CampaignsModel
	reportView    view.ReportModel
}

type View int

const (
	ViewLogin     View = 0
	ViewMenu      View = 1
	ViewOrders    View = 2
	ViewNewOrder  View = 3
	ViewCampaigns View = 4
	ViewReport    View = 5
)

func initialModel(ctx context.Context) (model, func()) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(ctx, cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	// Order changes made here still feed settlement when a broker is set.
	var (
		publisher order.Publisher = events.Discard{}
		wait                      = func() {}
	)

	if cfg.KafkaEnabled() {
		p := events.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, 64)
		p.Start()
		publisher, wait = p, p.Close
	}

	identitySvc := identity.NewService(identityStore.New(db), nil)
	orderSvc := order.NewService(orderStore.New(db), publisher, identitySvc)
	campaignSvc := campaign.NewService(campaignStore.New(db))

	svc := services{
		identity: identitySvc,
		orders:   orderSvc,
		campaign: campaignSvc,
		importer: importer.NewService(catalog.NewService(catalogStore.New(db))),
		report:   report.NewService(orderSvc, campaignSvc),
	}

	cleanup := func() {
		wait()
		db.Close()
	}

	return model{
		svc:         svc,
		currentView: ViewLogin,
		loginView:   view.NewLoginModel(svc.identity, cfg.TUI.Wallet),
	}, cleanup
}

func (m model) Init() tea.Cmd {
	return m.loginView.Init()
}

func (m model) isParticipant() bool {
	return m.session != nil && (m.session.Role == identity.RoleCharity || m.session.Role == identity.RoleVendor)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1":
				if !m.isParticipant() {
					return m, nil
				}

				m.currentView = ViewOrders
				m.ordersView = view.NewOrdersModel(m.svc.orders, *m.session)

				return m, m.ordersView.Init()
			case "2":
				if !m.isParticipant() {
					return m, nil
				}

				m.currentView = ViewNewOrder
				m.newOrderView = view.NewNewOrderModel(m.svc.orders, m.svc.importer, *m.session)

				return m, m.newOrderView.Init()
			case "3":
				m.currentView = ViewCampaigns
				m.campaignsView = view.NewCampaignsModel(m.svc.campaign, *m.session)

				return m, m.campaignsView.Init()
			case "4":
				if m.session.Role != identity.RoleCharity {
					return m, nil
				}

				m.currentView = ViewReport
				m.reportView = view.NewReportModel(m.svc.report, *m.session)

				return m, m.reportView.Init()
			}
		}
	case view.LoggedInMsg:
		m.session = &msg.Session
		m.currentView = ViewMenu

		return m, nil
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewLogin:
		var newModel tea.Model
		newModel, cmd = m.loginView.Update(msg)
		m.loginView = newModel.(view.LoginModel)
	case ViewOrders:
		var newModel tea.Model
		newModel, cmd = m.ordersView.Update(msg)
		m.ordersView = newModel.(view.OrdersModel)
	case ViewNewOrder:
		var newModel tea.Model
		newModel, cmd = m.newOrderView.Update(msg)
		m.newOrderView = newModel.(view.NewOrderModel)
	case ViewCampaigns:
		var newModel tea.Model
		newModel, cmd = m.campaignsView.Update(msg)
		m.campaignsView = newModel.(view.CampaignsModel)
	case ViewReport:
		var newModel tea.Model
		newModel, cmd = m.reportView.Update(msg)
		m.reportView = newModel.(view.ReportModel)
	}

	return m, cmd
}

func (m model) menu() string {
	s := "DermaNow\n" +
		lipgloss.NewStyle().Faint(true).Render(view.ShortAddress(m.session.Address)+" | "+string(m.session.Role)) + "\n\n"

	if m.isParticipant() {
		s += "1. Purchase Orders\n" +
			"2. New Order From Sheet\n"
	}

	s += "3. Campaigns\n"

	if m.session.Role == identity.RoleCharity {
		s += "4. Fund Usage Report\n"
	}

	return lipgloss.NewStyle().Padding(2).Render(s + "\nq. Quit")
}

func (m model) View() string {
	switch m.currentView {
	case ViewLogin:
		return m.loginView.View()
	case ViewMenu:
		return m.menu()
	case ViewOrders:
		return m.ordersView.View()
	case ViewNewOrder:
		return m.newOrderView.View()
	case ViewCampaigns:
		return m.campaignsView.View()
	case ViewReport:
		return m.reportView.View()
	}

	return "Unknown View"
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	m, cleanup := initialModel(ctx)

	p := tea.NewProgram(m)
	_, err := p.Run()

	cancel()
	cleanup()

	if err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
