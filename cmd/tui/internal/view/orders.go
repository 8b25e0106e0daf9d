package view

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dermanow/dermanow/internal/order"
)

var statusFilters = []order.Status{
	"",
	order.StatusPending,
	order.StatusApproved,
	order.StatusPaymentHeld,
	order.StatusShipped,
	order.StatusDelivered,
	order.StatusCompleted,
	order.StatusRejected,
}

// actionKeys binds keys to the actions a participant can take.
var actionKeys = []struct {
	key    string
	action order.Action
}{
	{"a", order.ActionApprove},
	{"x", order.ActionReject},
	{"p", order.ActionMarkShipped},
	{"d", order.ActionConfirmDelivery},
}

type OrdersModel struct {
	CommonModel
	orderService *order.Service
	session      Session

	table     table.Model
	orders    []*order.Order
	statusIdx int
	filter    order.ListFilter
	history   []order.Transition

	loading bool
	err     error
	status  string
}

func NewOrdersModel(orderSvc *order.Service, session Session) OrdersModel {
	columns := []table.Column{
		{Title: "Created", Width: 12},
		{Title: "Status", Width: 13},
		{Title: "Total", Width: 12},
		{Title: "Fund", Width: 22},
		{Title: "Counterparty", Width: 14},
		{Title: "Keys", Width: 8},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return OrdersModel{
		orderService: orderSvc,
		session:      session,
		table:        t,
		filter:       order.ListFilter{Party: session.Address},
		loading:      true,
	}
}

func (m OrdersModel) Title() string { return "Purchase Orders" }

func (m OrdersModel) ShortHelp() string {
	return "Esc: back | a: approve | x: reject | p: shipped | d: delivered | h: history | s: status filter | r: refresh"
}

func (m OrdersModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m OrdersModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadOrdersMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.orders = msg.orders
		m.refreshTable()

		return m, nil

	case actionDoneMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		} else {
			m.status = fmt.Sprintf("Order is now %s.", msg.order.Status)
		}

		return m, m.loadCmd()

	case historyMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error loading history: %v", msg.err)
			return m, nil
		}

		m.history = msg.history

		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			if m.history != nil {
				m.history = nil
				return m, nil
			}

			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "s":
			m.statusIdx = (m.statusIdx + 1) % len(statusFilters)
			m.filter.Status = nil

			if st := statusFilters[m.statusIdx]; st != "" {
				m.filter.Status = new(st)
			}

			return m, m.loadCmd()
		case "h":
			if o := m.selected(); o != nil {
				return m, m.historyCmd(o)
			}

			return m, nil
		}

		for _, k := range actionKeys {
			if msg.String() == k.key {
				return m.perform(k.action)
			}
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m OrdersModel) selected() *order.Order {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.orders) {
		return nil
	}

	return m.orders[idx]
}

func (m OrdersModel) perform(a order.Action) (tea.Model, tea.Cmd) {
	o := m.selected()
	if o == nil {
		return m, nil
	}

	if !slices.Contains(order.AvailableActions(o, m.session.Actor()), a) {
		m.status = fmt.Sprintf("Cannot %s this order.", strings.ReplaceAll(string(a), "_", " "))
		return m, nil
	}

	return m, m.performCmd(o, a)
}

func (m OrdersModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading orders...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle(fmt.Sprintf("Error: %v", m.err)))
	}

	label := "All"
	if st := statusFilters[m.statusIdx]; st != "" {
		label = string(st)
	}

	header := fmt.Sprintf("%s as %s | [s] Status: %s", ShortAddress(m.session.Address), m.session.Role, activeStyle(label))

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	if m.history != nil {
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, m.historyPanel())
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m OrdersModel) historyPanel() string {
	var b strings.Builder

	b.WriteString("History\n\n")

	if len(m.history) == 0 {
		b.WriteString("No transitions yet.")
	}

	for _, t := range m.history {
		by := "system"
		if t.Actor != "" {
			by = ShortAddress(t.Actor)
		}

		fmt.Fprintf(&b, "%s  %s -> %s\n  by %s\n", FormatDate(t.At), t.From, t.To, by)
	}

	return lipgloss.NewStyle().
		Padding(1, 2).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Width(40).
		Render(b.String())
}

func (m *OrdersModel) refreshTable() {
	actor := m.session.Actor()

	rows := make([]table.Row, 0, len(m.orders))
	for _, o := range m.orders {
		counterparty := o.VendorAddress
		if o.VendorAddress == m.session.Address {
			counterparty = o.CharityAddress
		}

		available := order.AvailableActions(o, actor)

		var keys []string
		for _, k := range actionKeys {
			if slices.Contains(available, k.action) {
				keys = append(keys, k.key)
			}
		}

		rows = append(rows, table.Row{
			FormatDate(o.CreatedAt),
			string(o.Status),
			FormatAmount(o.TotalPrice),
			o.FundSource,
			ShortAddress(counterparty),
			strings.Join(keys, " "),
		})
	}

	m.table.SetRows(rows)
}

// Messages

type loadOrdersMsg struct {
	orders []*order.Order
	err    error
}

type actionDoneMsg struct {
	order *order.Order
	err   error
}

type historyMsg struct {
	history []order.Transition
	err     error
}

func (m OrdersModel) loadCmd() tea.Cmd {
	filter := m.filter

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		orders, err := m.orderService.List(ctx, filter)

		return loadOrdersMsg{orders: orders, err: err}
	}
}

func (m OrdersModel) performCmd(o *order.Order, a order.Action) tea.Cmd {
	actor := m.session.Actor()

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		updated, err := m.orderService.Perform(ctx, o.ID, actor, a)

		return actionDoneMsg{order: updated, err: err}
	}
}

func (m OrdersModel) historyCmd(o *order.Order) tea.Cmd {
	actor := m.session.Actor()

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		h, err := m.orderService.History(ctx, o.ID, actor)
		if err == nil && h == nil {
			h = []order.Transition{}
		}

		return historyMsg{history: h, err: err}
	}
}
