package view

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dermanow/dermanow/internal/identity"
	"github.com/dermanow/dermanow/internal/order"
)

// View is the interface that all TUI screens implement.
type View interface {
	tea.Model
	Title() string
	ShortHelp() string
}

// CommonModel is embedded by all views.
type CommonModel struct {
	Width  int
	Height int
}

type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}

// Session is the wallet the dashboard acts as.
type Session struct {
	Address string
	Role    identity.Role
}

func (s Session) Actor() order.Actor {
	return order.Actor{Address: s.Address, Role: s.Role}
}
