package tui

import (
	"io"
	"os"
	"strconv"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/lox/blackjack/internal/blackjack"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

func newTestModel(t *testing.T, seed int64, testMode bool) *TUIModel {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
	table, err := blackjack.NewTable(blackjack.DefaultRules(), randutil.New(seed), logger)
	require.NoError(t, err)
	s, err := table.NewRound("Alice", 1000)
	require.NoError(t, err)
	return NewTUIModelWithOptions(table, s, logger, testMode)
}

func lastEntry(m *TUIModel) string {
	captured := m.GetCapturedLog()
	if len(captured) == 0 {
		return ""
	}
	return captured[len(captured)-1]
}

func TestTUITestMode(t *testing.T) {
	t.Parallel()

	t.Run("test mode captures log entries", func(t *testing.T) {
		t.Parallel()
		m := newTestModel(t, 1, true)
		assert.True(t, m.IsTestMode())

		captured := m.GetCapturedLog()
		require.Len(t, captured, 2)
		assert.Equal(t, "Alice sits down with $1000. Limits $10-$5000, 3 hands.", captured[0])
		assert.Equal(t, helpText, captured[1])

		m.AddLogEntry("Dealer shuffles")
		assert.Equal(t, "Dealer shuffles", lastEntry(m))
	})

	t.Run("production mode does not capture logs", func(t *testing.T) {
		t.Parallel()
		m := newTestModel(t, 1, false)
		assert.False(t, m.IsTestMode())
		m.AddLogEntry("Some log entry")
		assert.Nil(t, m.GetCapturedLog())
	})
}

func TestParseBets(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		args    []string
		want    []blackjack.Bet
		wantErr bool
	}{
		{"main only", []string{"10"}, []blackjack.Bet{{Main: 10}, {}, {}}, false},
		{"all stakes", []string{"20/5/10", "-", "15"}, []blackjack.Bet{{Main: 20, TwentyOnePlusThree: 5, PerfectPairs: 10}, {}, {Main: 15}}, false},
		{"pairs only side", []string{"10//5"}, []blackjack.Bet{{Main: 10, PerfectPairs: 5}, {}, {}}, false},
		{"no args", nil, nil, true},
		{"too many hands", []string{"10", "10", "10", "10"}, nil, true},
		{"too many stakes", []string{"10/1/1/1"}, nil, true},
		{"not a number", []string{"ten"}, nil, true},
		{"negative", []string{"-5"}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := parseBets(tt.args, 3)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProcessActionRejections(t *testing.T) {
	t.Parallel()
	m := newTestModel(t, 3, true)

	assert.False(t, m.processAction("hit"))
	assert.Contains(t, lastEntry(m), "Error: cannot hit during betting")

	assert.False(t, m.processAction("bet 5"))
	assert.Contains(t, lastEntry(m), "outside table limits")

	assert.False(t, m.processAction("bet 0/5"))
	assert.Contains(t, lastEntry(m), "side bets without a main bet")

	assert.False(t, m.processAction("rebet"))
	assert.Contains(t, lastEntry(m), "no previous bets")

	assert.False(t, m.processAction("hint"))
	assert.Equal(t, "Error: no hand to act on", lastEntry(m))

	assert.False(t, m.processAction("surrender"))
	assert.Contains(t, lastEntry(m), `Unknown command "surrender"`)

	assert.False(t, m.processAction(""))
	assert.Equal(t, helpText, lastEntry(m))

	s := m.Snapshot()
	assert.Equal(t, blackjack.PhaseBetting, s.Phase)
	assert.Equal(t, 1000, s.Player.Chips)
}

func TestProcessActionPlaysRounds(t *testing.T) {
	t.Parallel()
	for seed := int64(1); seed <= 20; seed++ {
		m := newTestModel(t, seed, true)

		for round := 1; round <= 3; round++ {
			before := m.Snapshot().Player.Chips
			if round == 1 {
				require.False(t, m.processAction("bet 10/5/5 20"))
			} else {
				require.False(t, m.processAction("rebet"))
			}
			assert.Contains(t, m.GetCapturedLog(), "*** ROUND "+strconv.Itoa(round)+" *** ($40 in play)")

			for i := 0; m.Snapshot().Phase == blackjack.PhasePlayerTurns; i++ {
				require.Less(t, i, 20, "seed %d stuck in player turns", seed)
				require.False(t, m.processAction("hint"))
				require.True(t, strings.HasPrefix(lastEntry(m), "Hint: "), lastEntry(m))
				require.False(t, m.processAction("stand"))
			}

			s := m.Snapshot()
			require.Equal(t, blackjack.PhaseRoundOver, s.Phase, "seed %d", seed)
			assert.Equal(t, before-s.Ledger.Staked+s.Ledger.Credited, s.Player.Chips)
			assert.Contains(t, lastEntry(m), "Chips: $"+strconv.Itoa(s.Player.Chips))

			require.False(t, m.processAction(""))
			assert.Contains(t, lastEntry(m), "Place your bets.")
			assert.Equal(t, blackjack.PhaseBetting, m.Snapshot().Phase)
		}
	}
}

func TestProcessActionQuit(t *testing.T) {
	t.Parallel()
	m := newTestModel(t, 5, true)
	assert.True(t, m.processAction("quit"))
	assert.Equal(t, "Alice leaves with $1000.", lastEntry(m))
}

func TestUpdateAndView(t *testing.T) {
	t.Parallel()
	m := newTestModel(t, 9, false)
	assert.Equal(t, "Loading...", m.View())

	_, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	out := m.View()
	assert.Contains(t, out, "Alice")
	assert.Contains(t, out, "Chips: $1000")
	assert.Contains(t, out, "[bet]")

	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, 0, m.focusedPane)
	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, 1, m.focusedPane)

	m.actionInput.SetValue("bet 50")
	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.NotEqual(t, blackjack.PhaseBetting, m.Snapshot().Phase)
	assert.Empty(t, m.actionInput.Value())
	assert.Contains(t, m.View(), "Dealer:")

	m.actionInput.SetValue("quit")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.NotNil(t, cmd)
	assert.True(t, m.quitting)
	assert.Empty(t, m.View())
}
