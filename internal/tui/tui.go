// Package tui is a terminal blackjack client that plays against a local table.
package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/lox/blackjack/internal/blackjack"
	"github.com/lox/blackjack/internal/strategy"
)

const helpText = "bet m/s/p ... | rebet | hit | stand | double | split | hint | next | quit"

// TUIModel represents the Bubble Tea model for a blackjack session
type TUIModel struct {
	table    *blackjack.Table
	snapshot blackjack.Snapshot
	logger   *log.Logger

	// UI components
	logViewport viewport.Model
	actionInput textinput.Model

	// State
	gameLog     []string
	round       int
	quitting    bool
	focusedPane int // 0 = log, 1 = input

	// Dimensions
	width       int
	height      int
	initialized bool

	// Test mode
	testMode    bool
	capturedLog []string
}

// NewTUIModel creates a model playing the given opening snapshot
func NewTUIModel(table *blackjack.Table, s blackjack.Snapshot, logger *log.Logger) *TUIModel {
	return NewTUIModelWithOptions(table, s, logger, false)
}

// NewTUIModelWithOptions creates a model with test mode option. In test mode
// log entries are captured and no viewport updates happen.
func NewTUIModelWithOptions(table *blackjack.Table, s blackjack.Snapshot, logger *log.Logger, testMode bool) *TUIModel {
	// Sized properly when WindowSizeMsg arrives
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Placeholder = "bet 10 10/5/5 - (main/21+3/pairs per hand)"
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 100
	ti.PromptStyle = lipgloss.NewStyle().Foreground(mint).Bold(true)
	ti.TextStyle = lipgloss.NewStyle().Foreground(chalk)
	ti.Prompt = "> "

	m := &TUIModel{
		table:       table,
		snapshot:    s,
		logger:      logger.WithPrefix("tui"),
		logViewport: vp,
		actionInput: ti,
		gameLog:     []string{},
		focusedPane: 1,
		testMode:    testMode,
		capturedLog: []string{},
	}
	m.AddLogEntry(fmt.Sprintf("%s sits down with $%d. Limits $%d-$%d, %d hands.",
		s.Player.Name, s.Player.Chips, table.Rules().MinBet, table.Rules().MaxBet, s.NumHands))
	m.AddLogEntry(helpText)
	return m
}

// Init initializes the TUI model
func (m *TUIModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages in the TUI
func (m *TUIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.focusedPane == 0 {
				m.focusedPane = 1
				m.actionInput.Focus()
			} else {
				m.focusedPane = 0
				m.actionInput.Blur()
			}
		case "enter":
			if m.focusedPane == 1 {
				input := strings.TrimSpace(m.actionInput.Value())
				m.actionInput.SetValue("")
				if m.processAction(input) {
					m.quitting = true
					return m, tea.Sequence(tea.ClearScreen, tea.Quit)
				}
			}
		case "up", "k":
			if m.focusedPane == 0 {
				m.logViewport.ScrollUp(1)
			}
		case "down", "j":
			if m.focusedPane == 0 {
				m.logViewport.ScrollDown(1)
			}
		case "pgup", "b":
			if m.focusedPane == 0 {
				m.logViewport.HalfPageUp()
			}
		case "pgdown", "f":
			if m.focusedPane == 0 {
				m.logViewport.HalfPageDown()
			}
		case "home", "g":
			if m.focusedPane == 0 {
				m.logViewport.GotoTop()
			}
		case "end", "G":
			if m.focusedPane == 0 {
				m.logViewport.GotoBottom()
			}
		}
	}

	var cmd tea.Cmd
	if m.focusedPane == 1 {
		m.actionInput, cmd = m.actionInput.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// View renders the TUI
func (m *TUIModel) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	view := blackjack.Project(m.snapshot, false)

	// Action pane (bottom, full width)
	actionContent := m.renderActionPane(view)
	actionHeight := lipgloss.Height(actionContent)
	actionStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(muted).
		Width(max(m.width-2, 1)).
		Height(max(actionHeight, 1))
	if m.focusedPane == 1 {
		actionStyle = actionStyle.BorderForeground(mint)
	}
	actionPane := actionStyle.Render(actionContent)

	// Sidebar pane (right of the log, same height)
	sidebarContent := m.renderSidebarPane(view)
	sidebarWidth := max(lipgloss.Width(sidebarContent), 25)
	paneHeight := max(m.height-actionHeight-4, 1)
	sidebarPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(muted).
		Width(sidebarWidth).
		Height(paneHeight).
		Render(sidebarContent)

	// Log pane (top left)
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	m.logViewport.Width = max(m.width-sidebarWidth-4, 1)
	m.logViewport.Height = paneHeight
	if !m.initialized && m.logViewport.Width > 1 && m.logViewport.Height > 1 {
		m.logViewport.GotoBottom()
		m.initialized = true
	}
	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(muted).
		Width(m.logViewport.Width).
		Height(m.logViewport.Height)
	if m.focusedPane == 0 {
		logStyle = logStyle.BorderForeground(mint)
	}
	logPane := logStyle.Render(m.logViewport.View())

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, logPane, sidebarPane)
	return lipgloss.JoinVertical(lipgloss.Top, topRow, actionPane)
}

// renderSidebarPane shows the player's bankroll and table state
func (m *TUIModel) renderSidebarPane(view blackjack.View) string {
	var content strings.Builder
	content.WriteString(HeaderStyle.Render(" " + view.PlayerName + " "))
	content.WriteString("\n\n")
	content.WriteString(WarningStyle.Render(fmt.Sprintf("Chips: $%d", view.PlayerChips)))
	content.WriteString("\n")
	if view.TotalStaked > 0 {
		content.WriteString(WarningStyle.Render(fmt.Sprintf("In play: $%d", view.TotalStaked)))
		content.WriteString("\n")
	}
	content.WriteString("\n")
	content.WriteString(InfoStyle.Render(fmt.Sprintf("Round: %d", m.round)))
	content.WriteString("\n")
	content.WriteString(InfoStyle.Render(fmt.Sprintf("Phase: %s", view.Phase)))
	content.WriteString("\n")
	content.WriteString(InfoStyle.Render(fmt.Sprintf("Shoe: %d cards", view.ShoeRemaining)))
	return content.String()
}

// renderActionPane shows the dealer, the player's hands and the input
func (m *TUIModel) renderActionPane(view blackjack.View) string {
	var content strings.Builder

	if len(view.Dealer) > 0 {
		content.WriteString(HandInfoStyle.Render(fmt.Sprintf("Dealer: %s (%d)", formatCards(view.Dealer), view.DealerTotal)))
		content.WriteString("\n")
	}
	if view.Phase != blackjack.PhaseBetting {
		for _, h := range view.Hands {
			content.WriteString(renderHand(h))
			content.WriteString("\n")
		}
	}

	content.WriteString(m.renderAvailableActions(view))
	content.WriteString("\n")

	switch view.Phase {
	case blackjack.PhaseBetting:
		m.actionInput.Placeholder = "bet 10 10/5/5 - (main/21+3/pairs per hand), or rebet"
	case blackjack.PhaseRoundOver:
		m.actionInput.Placeholder = "Enter for the next round, 'quit' to leave"
	default:
		m.actionInput.Placeholder = "hit, stand, double, split or hint"
	}
	content.WriteString(m.actionInput.View())
	content.WriteString("\n")

	if m.focusedPane == 0 {
		content.WriteString(InfoStyle.Render("Log focused: ↑↓ scroll, PgUp/PgDn half page, Home/End, Tab to input"))
	} else {
		content.WriteString(InfoStyle.Render("Tab to scroll log • Enter to submit • Ctrl+C to quit"))
	}
	return content.String()
}

func renderHand(h blackjack.HandView) string {
	line := fmt.Sprintf("Hand %d: %s (%d)  $%d", h.Seat, formatCards(h.Cards), h.Total, h.MainBet)
	switch {
	case h.Result != "":
		line += "  " + h.Result
	case h.Blackjack:
		line += "  Blackjack!"
	case h.Busted:
		line += "  Bust"
	}
	if h.Active {
		return ActiveHandStyle.Render("▶ " + line)
	}
	return HandInfoStyle.Render("  " + line)
}

// renderAvailableActions lists the commands valid in the current phase
func (m *TUIModel) renderAvailableActions(view blackjack.View) string {
	var actions []string
	switch view.Phase {
	case blackjack.PhaseBetting:
		actions = append(actions, SuccessStyle.Render("[bet]"))
		if len(m.snapshot.LastBets) > 0 {
			actions = append(actions, SuccessStyle.Render("[rebet]"))
		}
	case blackjack.PhasePlayerTurns:
		actions = append(actions, SuccessStyle.Render("[hit]"), SuccessStyle.Render("[stand]"))
		if seat, ok := view.ActiveSeat(); ok {
			if seat.CanDouble {
				actions = append(actions, WarningStyle.Render("[double]"))
			}
			if seat.CanSplit {
				actions = append(actions, WarningStyle.Render("[split]"))
			}
		}
		actions = append(actions, InfoStyle.Render("[hint]"))
	case blackjack.PhaseRoundOver:
		actions = append(actions, SuccessStyle.Render("[next]"))
	}
	actions = append(actions, ErrorStyle.Render("[quit]"))
	return ActionsStyle.Render("Actions: " + strings.Join(actions, " "))
}

// formatCards formats cards with colors
func formatCards(cs []blackjack.CardView) string {
	formatted := make([]string, len(cs))
	for i, c := range cs {
		formatted[i] = cardStyle(c.Label, c.Hidden).Render(c.Label)
	}
	return "[" + strings.Join(formatted, " ") + "]"
}

// AddLogEntry adds an entry to the game log
func (m *TUIModel) AddLogEntry(entry string) {
	m.gameLog = append(m.gameLog, entry)

	if m.testMode {
		m.capturedLog = append(m.capturedLog, entry)
		return
	}

	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// Snapshot returns the current round snapshot
func (m *TUIModel) Snapshot() blackjack.Snapshot {
	return m.snapshot
}

// GetCapturedLog returns the captured log entries (test mode only)
func (m *TUIModel) GetCapturedLog() []string {
	if !m.testMode {
		return nil
	}
	result := make([]string, len(m.capturedLog))
	copy(result, m.capturedLog)
	return result
}

// IsTestMode returns whether the TUI is in test mode
func (m *TUIModel) IsTestMode() bool {
	return m.testMode
}

// processAction runs one command line and reports whether the player quit
func (m *TUIModel) processAction(input string) bool {
	parts := strings.Fields(strings.ToLower(input))
	if len(parts) == 0 {
		if m.snapshot.Phase == blackjack.PhaseRoundOver {
			m.nextRound()
		} else {
			m.AddLogEntry(helpText)
		}
		return false
	}

	cmd, args := parts[0], parts[1:]
	switch cmd {
	case "quit", "exit", "q":
		m.AddLogEntry(fmt.Sprintf("%s leaves with $%d.", m.snapshot.Player.Name, m.snapshot.Player.Chips))
		return true

	case "help", "?":
		m.AddLogEntry(helpText)

	case "bet":
		bets, err := parseBets(args, m.snapshot.NumHands)
		if err != nil {
			m.AddLogEntry("Error: " + err.Error())
			return false
		}
		m.deal(func(s blackjack.Snapshot) (blackjack.Snapshot, error) {
			return m.table.Bet(s, bets)
		})

	case "rebet", "r":
		m.deal(m.table.Rebet)

	case "hit", "stand", "double", "split", "h", "s", "d", "p":
		action, _ := strategy.ParseAction(expandAlias(cmd))
		hand := m.snapshot.Active
		if !m.apply(string(action), func(s blackjack.Snapshot) (blackjack.Snapshot, error) {
			return strategy.Apply(m.table, s, action)
		}) {
			return false
		}
		m.logHand(hand, string(action))
		m.afterTurn()

	case "hint":
		sit, ok := strategy.FromSnapshot(m.snapshot)
		if !ok {
			m.AddLogEntry("Error: no hand to act on")
			return false
		}
		d := strategy.Decide(sit)
		m.AddLogEntry(fmt.Sprintf("Hint: %s (%s)", d.Action, d.Reasoning))

	case "next", "n":
		m.nextRound()

	default:
		m.AddLogEntry(fmt.Sprintf("Unknown command %q. %s", cmd, helpText))
	}
	return false
}

// apply runs one table transition, logging a rejection. It reports whether
// the transition succeeded.
func (m *TUIModel) apply(action string, fn func(blackjack.Snapshot) (blackjack.Snapshot, error)) bool {
	next, err := fn(m.snapshot)
	m.snapshot = next
	if err != nil {
		m.logger.Debug("Action rejected", "action", action, "error", err)
		m.AddLogEntry("Error: " + err.Error())
		return false
	}
	return true
}

// deal places bets, shows the opening cards and settles at once if the
// round ended on the deal
func (m *TUIModel) deal(fn func(blackjack.Snapshot) (blackjack.Snapshot, error)) {
	if !m.apply("bet", fn) {
		return
	}
	m.round++
	view := blackjack.Project(m.snapshot, false)
	m.AddLogEntry(fmt.Sprintf("*** ROUND %d *** ($%d in play)", m.round, view.TotalStaked))
	m.AddLogEntry(fmt.Sprintf("Dealer shows %s", view.Dealer[0].Label))
	for _, h := range view.Hands {
		line := fmt.Sprintf("Hand %d: %s (%d)", h.Seat, labels(h.Cards), h.Total)
		if h.Blackjack {
			line += " Blackjack!"
		}
		m.AddLogEntry(line)
		if h.TwentyOnePayout > 0 {
			m.AddLogEntry(fmt.Sprintf("Hand %d 21+3 %s pays $%d", h.Seat, h.TwentyOnePlusThree, h.TwentyOnePayout))
		}
		if h.PerfectPairsPayout > 0 {
			m.AddLogEntry(fmt.Sprintf("Hand %d %s pays $%d", h.Seat, h.PerfectPairs, h.PerfectPairsPayout))
		}
	}
	m.afterTurn()
}

// afterTurn finishes the round once player turns are over
func (m *TUIModel) afterTurn() {
	if m.snapshot.Phase == blackjack.PhasePlayerTurns {
		return
	}
	if !m.apply("finish", m.table.Finish) {
		return
	}
	if m.snapshot.Phase != blackjack.PhaseRoundOver {
		return
	}

	view := blackjack.Project(m.snapshot, true)
	m.AddLogEntry(fmt.Sprintf("Dealer has %s (%d)", labels(view.Dealer), view.DealerTotal))
	for _, h := range view.Hands {
		m.AddLogEntry(fmt.Sprintf("Hand %d: %s", h.Seat, h.Result))
	}
	net := m.snapshot.Ledger.Net()
	switch {
	case net > 0:
		m.AddLogEntry(fmt.Sprintf("You win $%d. Chips: $%d", net, m.snapshot.Player.Chips))
	case net < 0:
		m.AddLogEntry(fmt.Sprintf("You lose $%d. Chips: $%d", -net, m.snapshot.Player.Chips))
	default:
		m.AddLogEntry(fmt.Sprintf("You break even. Chips: $%d", m.snapshot.Player.Chips))
	}
}

func (m *TUIModel) nextRound() {
	if !m.apply("reset", m.table.ResetRound) {
		return
	}
	if m.snapshot.Player.Chips < m.table.Rules().MinBet {
		m.AddLogEntry("Out of chips. Type quit to leave.")
		return
	}
	m.AddLogEntry(m.snapshot.Message)
}

// logHand reports the state of a hand after an action on it
func (m *TUIModel) logHand(index int, action string) {
	for _, h := range blackjack.Project(m.snapshot, false).Hands {
		if h.Index != index {
			continue
		}
		line := fmt.Sprintf("Hand %d %s: %s (%d)", h.Seat, action, labels(h.Cards), h.Total)
		if h.Busted {
			line += " Bust"
		}
		m.AddLogEntry(line)
		return
	}
}

func labels(cs []blackjack.CardView) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.Label
	}
	return strings.Join(parts, " ")
}

func expandAlias(cmd string) string {
	switch cmd {
	case "h":
		return "hit"
	case "s":
		return "stand"
	case "d":
		return "double"
	case "p":
		return "split"
	}
	return cmd
}

// parseBets reads one "main/21+3/pairs" argument per hand. A bare number is
// a main bet only and "-" leaves the hand empty. Missing trailing hands are
// left empty.
func parseBets(args []string, hands int) ([]blackjack.Bet, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("usage: bet m/s/p m/s/p ... (one per hand)")
	}
	if len(args) > hands {
		return nil, fmt.Errorf("%d bets for %d hands", len(args), hands)
	}

	bets := make([]blackjack.Bet, hands)
	for i, arg := range args {
		if arg == "-" {
			continue
		}
		fields := strings.Split(arg, "/")
		if len(fields) > 3 {
			return nil, fmt.Errorf("bet %q has more than three stakes", arg)
		}
		amounts := make([]int, 3)
		for j, f := range fields {
			if f == "" {
				continue
			}
			n, err := strconv.Atoi(f)
			if err != nil || n < 0 {
				return nil, fmt.Errorf("invalid stake %q in bet %q", f, arg)
			}
			amounts[j] = n
		}
		bets[i] = blackjack.Bet{Main: amounts[0], TwentyOnePlusThree: amounts[1], PerfectPairs: amounts[2]}
	}
	return bets, nil
}
