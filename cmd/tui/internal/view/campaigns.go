package view

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/dermanow/dermanow/internal/campaign"
	"github.com/dermanow/dermanow/internal/identity"
	"github.com/dermanow/dermanow/internal/money"
)

type campaignsState int

const (
	campaignsStateBrowse campaignsState = iota
	campaignsStateDonate
)

type donationFields struct {
	amount  string
	message string
}

type CampaignsModel struct {
	CommonModel
	campaignService *campaign.Service
	session         Session

	state      campaignsState
	table      table.Model
	campaigns  []*campaign.Campaign
	activeOnly bool
	form       *huh.Form
	fields     *donationFields

	loading bool
	err     error
	status  string
}

func NewCampaignsModel(svc *campaign.Service, session Session) CampaignsModel {
	columns := []table.Column{
		{Title: "Title", Width: 30},
		{Title: "Raised", Width: 12},
		{Title: "Goal", Width: 12},
		{Title: "Progress", Width: 9},
		{Title: "Deadline", Width: 12},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return CampaignsModel{
		campaignService: svc,
		session:         session,
		table:           t,
		activeOnly:      true,
		fields:          &donationFields{},
		loading:         true,
	}
}

func (m CampaignsModel) Title() string { return "Campaigns" }

func (m CampaignsModel) ShortHelp() string {
	if m.state == campaignsStateDonate {
		return "Navigate form | Esc: cancel"
	}

	if m.session.Role == identity.RoleDonor {
		return "Esc: back | Enter: donate | a: toggle closed | r: refresh"
	}

	return "Esc: back | a: toggle closed | r: refresh"
}

func (m CampaignsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m CampaignsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadCampaignsMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.campaigns = msg.campaigns
		m.refreshTable()

		return m, nil

	case donatedMsg:
		m.state = campaignsStateBrowse
		m.form = nil
		m.table.Focus()

		if msg.err != nil {
			m.status = fmt.Sprintf("Error donating: %v", msg.err)
		} else {
			m.status = fmt.Sprintf("Thank you! Donated %s.", FormatAmount(msg.donation.Amount))
		}

		return m, m.loadCmd()
	}

	if m.state == campaignsStateDonate {
		return m.updateDonate(msg)
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "a":
			m.activeOnly = !m.activeOnly
			return m, m.loadCmd()
		case "enter":
			return m.enterDonate()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m CampaignsModel) enterDonate() (tea.Model, tea.Cmd) {
	if m.session.Role != identity.RoleDonor {
		m.status = "Only donor wallets can donate."
		return m, nil
	}

	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.campaigns) {
		return m, nil
	}

	if !m.campaigns[idx].Open(time.Now()) {
		m.status = "This campaign has closed."
		return m, nil
	}

	m.fields.amount = ""
	m.fields.message = ""

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("amount").
				Title("Amount").
				Placeholder("50.00").
				Value(&m.fields.amount).
				Validate(func(s string) error {
					d, err := decimal.NewFromString(strings.TrimSpace(s))
					if err != nil {
						return errors.New("enter an amount like 50.00")
					}
					if !d.IsPositive() {
						return errors.New("amount must be positive")
					}
					return nil
				}),
			huh.NewText().
				Key("message").
				Title("Message").
				CharLimit(280).
				Value(&m.fields.message),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = campaignsStateDonate
	m.table.Blur()

	return m, m.form.Init()
}

func (m CampaignsModel) updateDonate(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = campaignsStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.donateCmd()
}

func (m CampaignsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading campaigns...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle(fmt.Sprintf("Error: %v", m.err)))
	}

	label := "Open only"
	if !m.activeOnly {
		label = "All"
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render("[a] Showing: "+activeStyle(label)),
		lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			Render(m.table.View()),
	)

	if m.state == campaignsStateDonate && m.form != nil {
		c := m.campaigns[m.table.Cursor()]

		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(fmt.Sprintf("Donate to %s\n\n%s", c.Title, m.form.View()))

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *CampaignsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.campaigns))
	for _, c := range m.campaigns {
		rows = append(rows, table.Row{
			c.Title,
			FormatAmount(c.Raised),
			FormatAmount(c.Goal),
			fmt.Sprintf("%3.0f%%", c.Progress()*100),
			FormatDate(c.Deadline),
		})
	}

	m.table.SetRows(rows)
}

// Messages

type loadCampaignsMsg struct {
	campaigns []*campaign.Campaign
	err       error
}

type donatedMsg struct {
	donation *campaign.Donation
	err      error
}

func (m CampaignsModel) loadCmd() tea.Cmd {
	activeOnly := m.activeOnly

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		cs, err := m.campaignService.ListCampaigns(ctx, campaign.CampaignFilter{}, activeOnly)

		return loadCampaignsMsg{campaigns: cs, err: err}
	}
}

func (m CampaignsModel) donateCmd() tea.Cmd {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.campaigns) {
		return nil
	}

	c := m.campaigns[idx]
	amount, _ := decimal.NewFromString(strings.TrimSpace(m.fields.amount))
	message := m.fields.message
	caller := identity.User{Address: m.session.Address, Role: m.session.Role}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		cents, err := money.Cents(amount)
		if err != nil {
			return donatedMsg{err: errors.Join(campaign.ErrInvalid, err)}
		}

		d, err := m.campaignService.Donate(ctx, caller, c.ID, cents, message)

		return donatedMsg{donation: d, err: err}
	}
}
