package view

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/dermanow/dermanow/internal/identity"
)

type loginState int

const (
	loginStateWallet loginState = iota
	loginStateLookup
	loginStateRegister
	loginStateSaving
)

// LoggedInMsg is sent once the wallet has a role.
type LoggedInMsg struct {
	Session Session
}

// loginFields lives on the heap so the huh bindings survive model copies.
type loginFields struct {
	wallet string
	name   string
	role   identity.Role
}

type LoginModel struct {
	CommonModel
	users *identity.Service

	state   loginState
	form    *huh.Form
	fields  *loginFields
	address string
	err     error
}

func NewLoginModel(users *identity.Service, wallet string) LoginModel {
	m := LoginModel{
		users:  users,
		fields: &loginFields{wallet: wallet, role: identity.RoleDonor},
	}
	m.form = m.walletForm()

	return m
}

func (m LoginModel) Title() string { return "Connect Wallet" }

func (m LoginModel) ShortHelp() string { return "Enter: continue | Ctrl+C: quit" }

func (m LoginModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m LoginModel) walletForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("wallet").
				Title("Wallet address").
				Placeholder("0x...").
				Value(&m.fields.wallet).
				Validate(func(s string) error {
					_, err := identity.NormalizeAddress(s)
					return err
				}),
		),
	).WithWidth(60).WithShowHelp(false)
}

func (m LoginModel) registerForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("No role yet").
				Description("This wallet is not registered. Pick how you will use DermaNow."),
			huh.NewSelect[identity.Role]().
				Key("role").
				Title("Role").
				Options(
					huh.NewOption("Donor", identity.RoleDonor),
					huh.NewOption("Charity", identity.RoleCharity),
					huh.NewOption("Vendor", identity.RoleVendor),
				).
				Value(&m.fields.role),
			huh.NewInput().
				Key("name").
				Title("Display name").
				Value(&m.fields.name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("display name cannot be empty")
					}
					return nil
				}),
		),
	).WithWidth(60).WithShowHelp(false)
}

func (m LoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case lookupMsg:
		if msg.err == nil {
			return m, loggedIn(msg.address, msg.role)
		}

		if errors.Is(msg.err, identity.ErrNoRole) {
			m.address = msg.address
			m.state = loginStateRegister
			m.form = m.registerForm()

			return m, m.form.Init()
		}

		m.err = msg.err
		m.state = loginStateWallet
		m.form = m.walletForm()

		return m, m.form.Init()

	case registerMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = loginStateRegister
			m.form = m.registerForm()

			return m, m.form.Init()
		}

		return m, loggedIn(msg.user.Address, msg.user.Role)
	}

	if m.state == loginStateLookup || m.state == loginStateSaving {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.err = nil

	if m.state == loginStateWallet {
		m.state = loginStateLookup
		return m, m.lookupCmd(m.fields.wallet)
	}

	m.state = loginStateSaving

	return m, m.registerCmd(m.address, m.fields.role, m.fields.name)
}

func (m LoginModel) View() string {
	var body string

	switch m.state {
	case loginStateLookup:
		body = "Looking up wallet role..."
	case loginStateSaving:
		body = "Registering..."
	default:
		body = m.form.View()
	}

	header := lipgloss.NewStyle().Bold(true).Render("DermaNow")
	content := lipgloss.JoinVertical(lipgloss.Left, header, "", body)

	if m.err != nil {
		content += "\n\n" + errorStyle(fmt.Sprintf("Error: %v", m.err))
	}

	return lipgloss.NewStyle().Padding(2).Render(content)
}

// Messages

type lookupMsg struct {
	address string
	role    identity.Role
	err     error
}

type registerMsg struct {
	user *identity.User
	err  error
}

func loggedIn(address string, role identity.Role) tea.Cmd {
	return func() tea.Msg {
		return LoggedInMsg{Session: Session{Address: address, Role: role}}
	}
}

func (m LoginModel) lookupCmd(wallet string) tea.Cmd {
	return func() tea.Msg {
		addr, err := identity.NormalizeAddress(wallet)
		if err != nil {
			return lookupMsg{err: err}
		}

		ctx, cancel := DbCtx()
		defer cancel()

		role, err := m.users.LookupRole(ctx, addr)

		return lookupMsg{address: addr, role: role, err: err}
	}
}

func (m LoginModel) registerCmd(address string, role identity.Role, name string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		u, err := m.users.Register(ctx, address, role, name)

		return registerMsg{user: u, err: err}
	}
}
