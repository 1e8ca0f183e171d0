package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

const (
	paneLog = iota
	paneInput
)

// Model is the Bubble Tea model for an interactive bestia session
type Model struct {
	ctx     context.Context
	session *Session
	logger  *log.Logger

	// UI components
	logViewport viewport.Model
	input       textinput.Model

	// State
	gameLog     []string
	quitting    bool
	focusedPane int

	// Dimensions
	width       int
	height      int
	initialized bool // Track if viewport has been properly sized

	// Test mode
	testMode    bool
	capturedLog []string
}

// NewModel creates a model driving session.
func NewModel(ctx context.Context, session *Session, logger *log.Logger) *Model {
	return NewModelWithOptions(ctx, session, logger, false)
}

// NewModelWithOptions creates a model with test mode option. In test
// mode log entries are captured and viewport updates are skipped.
func NewModelWithOptions(ctx context.Context, session *Session, logger *log.Logger, testMode bool) *Model {
	// Will be properly sized when WindowSizeMsg arrives
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Placeholder = "Type a command (help for the list)"
	ti.Focus()
	ti.CharLimit = 200
	ti.Width = 100
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA"))
	ti.Prompt = "> "

	m := &Model{
		ctx:         ctx,
		session:     session,
		logger:      logger.WithPrefix("tui"),
		logViewport: vp,
		input:       ti,
		focusedPane: paneInput,
		testMode:    testMode,
	}
	m.AddLogEntry(HeaderStyle.Render(" Bestia ") + " " + InfoStyle.Render("type 'help' for commands"))
	return m
}

// Init initializes the TUI model
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages in the TUI
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logger.Debug("Updating dimensions", "width", m.width, "height", m.height)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Sequence(tea.ClearScreen, tea.Quit)
		case "tab":
			if m.focusedPane == paneLog {
				m.focusedPane = paneInput
				m.input.Focus()
			} else {
				m.focusedPane = paneLog
				m.input.Blur()
			}
		case "enter":
			if m.focusedPane == paneInput {
				line := strings.TrimSpace(m.input.Value())
				m.input.SetValue("")
				if m.Submit(line) {
					m.quitting = true
					return m, tea.Sequence(tea.ClearScreen, tea.Quit)
				}
			}
		case "up", "k":
			if m.focusedPane == paneLog {
				m.logViewport.ScrollUp(1)
			}
		case "down", "j":
			if m.focusedPane == paneLog {
				m.logViewport.ScrollDown(1)
			}
		case "pgup", "b":
			if m.focusedPane == paneLog {
				m.logViewport.HalfPageUp()
			}
		case "pgdown", "f":
			if m.focusedPane == paneLog {
				m.logViewport.HalfPageDown()
			}
		case "home", "g":
			if m.focusedPane == paneLog {
				m.logViewport.GotoTop()
			}
		case "end", "G":
			if m.focusedPane == paneLog {
				m.logViewport.GotoBottom()
			}
		}
	}

	var cmd tea.Cmd
	if m.focusedPane == paneInput {
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// Submit runs a command line as if it had been typed, echoing it to the
// log. It reports whether the session asked to quit.
func (m *Model) Submit(line string) bool {
	if line == "" {
		return false
	}
	m.AddLogEntry(InfoStyle.Render("> " + line))
	res := m.session.Execute(m.ctx, line)
	for _, l := range res.Lines {
		m.AddLogEntry(l)
	}
	return res.Quit
}

// View renders the TUI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	// Action pane (bottom, full width)
	actionContent := m.renderActionPane()
	actionHeight := lipgloss.Height(actionContent)
	actionStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#04B575")).
		Width(max(m.width-2, 1)).
		Height(max(actionHeight-2, 1))
	if m.focusedPane != paneInput {
		actionStyle = actionStyle.BorderForeground(lipgloss.Color("#626262"))
	}
	actionPane := actionStyle.Render(actionContent)

	// Sidebar pane (right side of log pane, same height as log pane)
	sidebarContent := m.renderSidebarPane()
	sidebarWidth := max(lipgloss.Width(sidebarContent), 28)
	paneHeight := max(m.height-actionHeight-4, 1) // borders and action pane

	sidebarPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(sidebarWidth).
		Height(paneHeight).
		Render(sidebarContent)

	// Log pane (top, fills height minus action pane)
	logWidth := max(m.width-sidebarWidth-4, 1)
	m.logViewport.SetContent(m.renderLogPane())
	m.logViewport.Width = logWidth
	m.logViewport.Height = paneHeight

	// On first proper sizing, follow the end of the log
	if !m.initialized && logWidth > 1 && paneHeight > 1 {
		m.logViewport.GotoBottom()
		m.initialized = true
	}

	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(logWidth).
		Height(paneHeight)
	if m.focusedPane == paneLog {
		logStyle = logStyle.BorderForeground(lipgloss.Color("#04B575"))
	}
	logPane := logStyle.Render(m.logViewport.View())

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, logPane, sidebarPane)
	return lipgloss.JoinVertical(lipgloss.Top, topRow, actionPane)
}

func (m *Model) renderLogPane() string {
	return LogStyle.Render(strings.Join(m.gameLog, "\n"))
}

// renderSidebarPane shows pot, stake, dealer and the running totals.
func (m *Model) renderSidebarPane() string {
	e := m.session.Engine()
	r := m.session.Renderer()
	var content strings.Builder

	content.WriteString(PotStyle.Render("Pot: " + r.Amount(e.Pot())))
	content.WriteString("\n")
	if e.Locked() {
		content.WriteString("Stake: " + r.Amount(e.Stake()))
	} else {
		content.WriteString(InfoStyle.Render("Stake: not locked"))
	}
	content.WriteString("\n")
	if d, ok := e.Dealer(); ok {
		content.WriteString("Dealer: " + DealerStyle.Render(d.Name))
		content.WriteString("\n")
	}
	content.WriteString("\n")

	players := e.Players()
	if len(players) == 0 {
		content.WriteString(InfoStyle.Render("No players yet"))
		return content.String()
	}
	content.WriteString(InfoStyle.Render("Totals:"))
	content.WriteString("\n")
	dealer, _ := e.Dealer()
	for _, p := range players {
		marker := " "
		if p.ID == dealer.ID {
			marker = "*"
		}
		fmt.Fprintf(&content, "%s %s: %s\n", marker, p.Name, r.signed(p.Total))
	}
	return content.String()
}

// renderActionPane shows the round phase, the input and help text.
func (m *Model) renderActionPane() string {
	e := m.session.Engine()
	var content strings.Builder

	if e.Round().Active {
		content.WriteString(PhaseStyle.Render("Round: " + e.Phase().String()))
		m.input.Placeholder = phaseHint(e.Phase().String())
	} else {
		content.WriteString(PhaseStyle.Render("Between rounds"))
		m.input.Placeholder = "start, add <name>, transfers, help..."
	}
	content.WriteString("\n")
	content.WriteString(m.input.View())
	content.WriteString("\n")

	help := "Tab to scroll log • Enter to submit • Ctrl+C to quit"
	if m.focusedPane == paneLog {
		help = "Log focused: ↑↓ scroll, PgUp/PgDn half page, Home/End, Tab to input"
	}
	content.WriteString(InfoStyle.Render(help))
	return content.String()
}

func phaseHint(phase string) string {
	switch phase {
	case "participants":
		return "in <player>..., then next"
	case "grouping":
		return "group <a> <b>, in <player>, candidates, then next"
	case "winners":
		return "win <1-3> <player>, then settle"
	}
	return ""
}

// AddLogEntry appends an entry to the log and scrolls to it.
func (m *Model) AddLogEntry(entry string) {
	m.gameLog = append(m.gameLog, entry)

	if m.testMode {
		m.capturedLog = append(m.capturedLog, entry)
		return // Skip UI updates in test mode
	}

	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// ClearLog clears the log
func (m *Model) ClearLog() {
	m.gameLog = nil
	m.logViewport.SetContent("")
}

// CapturedLog returns the captured log entries (test mode only)
func (m *Model) CapturedLog() []string {
	if !m.testMode {
		return nil
	}
	result := make([]string, len(m.capturedLog))
	copy(result, m.capturedLog)
	return result
}

// IsTestMode returns whether the TUI is in test mode
func (m *Model) IsTestMode() bool {
	return m.testMode
}
