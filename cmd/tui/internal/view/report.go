package view

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/dermanow/dermanow/internal/report"
)

type reportState int

const (
	reportStateLoading reportState = iota
	reportStateShow
	reportStatePath
)

// ReportModel shows how a charity's funds were spent.
type ReportModel struct {
	CommonModel
	reportService *report.Service
	session       Session

	state   reportState
	spinner spinner.Model
	usage   *report.FundUsage
	text    string
	form    *huh.Form
	path    *string

	status string
	err    error
}

func NewReportModel(svc *report.Service, session Session) ReportModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	path := "./fund-usage.csv"

	return ReportModel{
		reportService: svc,
		session:       session,
		spinner:       s,
		path:          &path,
	}
}

func (m ReportModel) Title() string { return "Fund Usage" }

func (m ReportModel) ShortHelp() string {
	switch m.state {
	case reportStateShow:
		return "Esc: back | s: save CSV | r: refresh"
	case reportStatePath:
		return "Enter: save | Esc: cancel"
	}

	return "Loading..."
}

func (m ReportModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadCmd())
}

func (m ReportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case reportMsg:
		m.state = reportStateShow
		m.err = msg.err
		m.usage = msg.usage
		m.text = msg.text

		return m, nil

	case savedMsg:
		m.state = reportStateShow
		if msg.err != nil {
			m.status = errorStyle(fmt.Sprintf("Error saving: %v", msg.err))
		} else {
			m.status = okStyle("Saved " + msg.path)
		}

		return m, nil
	}

	switch m.state {
	case reportStateLoading:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case reportStateShow:
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "esc":
				return m, Back
			case "r":
				m.state = reportStateLoading
				return m, tea.Batch(m.spinner.Tick, m.loadCmd())
			case "s":
				if m.usage == nil {
					return m, nil
				}

				m.form = m.pathForm()
				m.state = reportStatePath

				return m, m.form.Init()
			}
		}

	case reportStatePath:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
			m.state = reportStateShow
			return m, nil
		}

		form, cmd := m.form.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			m.form = f
		}

		if m.form.State != huh.StateCompleted {
			return m, cmd
		}

		return m, m.saveCmd(*m.path)
	}

	return m, nil
}

func (m ReportModel) pathForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("path").
				Title("CSV file").
				Description("Directory will be created if it doesn't exist").
				Value(m.path).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("path cannot be empty")
					}
					return nil
				}),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m ReportModel) View() string {
	switch m.state {
	case reportStateLoading:
		return lipgloss.NewStyle().Padding(1).Render(m.spinner.View() + " Building fund usage report...")
	case reportStatePath:
		return lipgloss.NewStyle().Padding(1).Render(m.form.View())
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(1).Render(errorStyle(fmt.Sprintf("Error: %v", m.err)))
	}

	content := m.text
	if m.status != "" {
		content = m.status + "\n\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

// Messages

type reportMsg struct {
	usage *report.FundUsage
	text  string
	err   error
}

type savedMsg struct {
	path string
	err  error
}

func (m ReportModel) loadCmd() tea.Cmd {
	charity := m.session.Address

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		u, err := m.reportService.FundUsage(ctx, charity)
		if err != nil {
			return reportMsg{err: err}
		}

		var b strings.Builder
		if err := report.WriteText(&b, u); err != nil {
			return reportMsg{err: err}
		}

		return reportMsg{usage: u, text: b.String()}
	}
}

func (m ReportModel) saveCmd(path string) tea.Cmd {
	usage := m.usage

	return func() tea.Msg {
		path = strings.TrimSpace(path)

		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return savedMsg{err: err}
		}

		f, err := os.Create(path)
		if err != nil {
			return savedMsg{err: err}
		}
		defer f.Close()

		if err := report.WriteCSV(f, usage); err != nil {
			return savedMsg{err: err}
		}

		return savedMsg{path: path}
	}
}
