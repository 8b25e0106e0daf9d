package view

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/dermanow/dermanow/internal/identity"
	"github.com/dermanow/dermanow/internal/importer"
	"github.com/dermanow/dermanow/internal/order"
)

const importTimeout = 2 * time.Minute

type newOrderState int

const (
	newOrderStateFilePick newOrderState = iota
	newOrderStateImporting
	newOrderStatePreview
	newOrderStateDetails
	newOrderStateCreating
	newOrderStateResult
)

type orderFields struct {
	counterparty string
	fundSource   string
}

// NewOrderModel builds a purchase order from an item sheet.
type NewOrderModel struct {
	CommonModel
	orderService  *order.Service
	importService *importer.Service
	session       Session

	state      newOrderState
	filePicker filepicker.Model
	preview    list.Model
	sheet      *importer.Result
	form       *huh.Form
	fields     *orderFields

	status string
	err    error
}

func NewNewOrderModel(orderSvc *order.Service, impSvc *importer.Service, session Session) NewOrderModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".txt", ".tsv"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return NewOrderModel{
		orderService:  orderSvc,
		importService: impSvc,
		session:       session,
		filePicker:    fp,
		fields:        &orderFields{},
	}
}

func (m NewOrderModel) Title() string { return "New Purchase Order" }

func (m NewOrderModel) ShortHelp() string {
	switch m.state {
	case newOrderStatePreview:
		return "Enter: continue | Esc: pick another file"
	case newOrderStateDetails:
		return "Enter: next | Esc: back to preview"
	}

	return "Esc: back | Enter: select"
}

func (m NewOrderModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m NewOrderModel) counterpartyRole() identity.Role {
	if m.session.Role == identity.RoleCharity {
		return identity.RoleVendor
	}

	return identity.RoleCharity
}

func (m NewOrderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

		if m.state == newOrderStatePreview {
			return m.updatePreview(msg)
		}

	case sheetMsg:
		if msg.err != nil {
			m.state = newOrderStateResult
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		m.sheet = msg.result
		m.state = newOrderStatePreview

		items := make([]list.Item, len(msg.result.Items))
		for i, it := range msg.result.Items {
			items[i] = lineItem{item: it}
		}

		m.preview = list.New(items, lineItemDelegate{}, 80, 20)
		m.preview.Title = fmt.Sprintf("%d items, total %s (%s, %s)",
			len(items), FormatAmount(order.Total(msg.result.Items)), msg.result.Profile, msg.result.Encoding)
		m.preview.SetShowStatusBar(false)
		m.preview.SetFilteringEnabled(false)
		m.preview.SetShowHelp(false)

		return m, nil

	case createdMsg:
		m.state = newOrderStateResult
		if msg.err != nil {
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		m.status = fmt.Sprintf("Order %s created, waiting for the %s to approve.", msg.order.ID, msg.order.Receiver())

		return m, nil
	}

	switch m.state {
	case newOrderStateFilePick:
		var cmd tea.Cmd
		m.filePicker, cmd = m.filePicker.Update(msg)

		if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
			m.state = newOrderStateImporting
			m.status = fmt.Sprintf("Reading %s...", path)

			return m, m.importCmd(path)
		}

		return m, cmd

	case newOrderStateDetails:
		return m.updateDetails(msg)
	}

	return m, nil
}

func (m NewOrderModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case newOrderStatePreview, newOrderStateResult:
		m.state = newOrderStateFilePick
		m.sheet = nil
		m.err = nil
		m.status = ""

		return m, nil
	case newOrderStateDetails:
		m.state = newOrderStatePreview
		return m, nil
	}

	return m, Back
}

func (m NewOrderModel) updatePreview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEnter {
		m.form = m.detailsForm()
		m.state = newOrderStateDetails

		return m, m.form.Init()
	}

	var cmd tea.Cmd
	m.preview, cmd = m.preview.Update(msg)

	return m, cmd
}

func (m NewOrderModel) detailsForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("counterparty").
				Title(fmt.Sprintf("Counterparty (%s) wallet", m.counterpartyRole())).
				Placeholder("0x...").
				Value(&m.fields.counterparty).
				Validate(func(s string) error {
					addr, err := identity.NormalizeAddress(s)
					if err != nil {
						return err
					}
					if addr == m.session.Address {
						return errors.New("counterparty must be another wallet")
					}
					return nil
				}),
			huh.NewInput().
				Key("fund_source").
				Title("Fund source").
				Placeholder("Campaign or grant paying for this order").
				Value(&m.fields.fundSource).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("fund source cannot be empty")
					}
					return nil
				}),
		),
	).WithWidth(60).WithShowHelp(false)
}

func (m NewOrderModel) updateDetails(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	params := order.CreateParams{
		Items:      m.sheet.Items,
		FundSource: m.fields.fundSource,
	}

	if m.session.Role == identity.RoleCharity {
		params.CharityAddress = m.session.Address
		params.VendorAddress = m.fields.counterparty
	} else {
		params.CharityAddress = m.fields.counterparty
		params.VendorAddress = m.session.Address
	}

	m.state = newOrderStateCreating
	m.status = "Creating order..."

	return m, m.createCmd(params)
}

func (m NewOrderModel) View() string {
	switch m.state {
	case newOrderStateFilePick:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("Select an item sheet (name, quantity, unit price):\n\n%s", m.filePicker.View()),
		)
	case newOrderStateImporting, newOrderStateCreating:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case newOrderStatePreview:
		return lipgloss.NewStyle().Padding(1).Render(m.preview.View())
	case newOrderStateDetails:
		return lipgloss.NewStyle().Padding(1).Render(m.form.View())
	case newOrderStateResult:
		return m.viewResult()
	}

	return ""
}

func (m NewOrderModel) viewResult() string {
	style := lipgloss.NewStyle().Padding(2)
	if m.err != nil {
		return style.Render(errorStyle(m.status) + "\n\n(Esc to go back)")
	}

	return style.Render(okStyle(m.status) + "\n\n(Esc to go back)")
}

// Messages

type sheetMsg struct {
	result *importer.Result
	err    error
}

type createdMsg struct {
	order *order.Order
	err   error
}

func (m NewOrderModel) importCmd(path string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return sheetMsg{err: err}
		}
		defer f.Close()

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		res, err := m.importService.Import(ctx, f)

		return sheetMsg{result: res, err: err}
	}
}

func (m NewOrderModel) createCmd(params order.CreateParams) tea.Cmd {
	actor := m.session.Actor()

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		o, err := m.orderService.Create(ctx, actor, params)

		return createdMsg{order: o, err: err}
	}
}

// Preview list item

type lineItem struct {
	item order.LineItem
}

func (i lineItem) Title() string       { return i.item.Name }
func (i lineItem) Description() string { return "" }
func (i lineItem) FilterValue() string { return i.item.Name }

type lineItemDelegate struct{}

func (d lineItemDelegate) Height() int                             { return 1 }
func (d lineItemDelegate) Spacing() int                            { return 0 }
func (d lineItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d lineItemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	li, ok := listItem.(lineItem)
	if !ok {
		return
	}

	cursor := "  "
	if index == m.Index() {
		cursor = "> "
	}

	fmt.Fprintf(w, "%s%-40s %6d x %10s = %12s",
		cursor, li.item.Name, li.item.Quantity, FormatAmount(li.item.UnitPrice), FormatAmount(li.item.Subtotal()))
}
