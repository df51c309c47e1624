package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/lox/blackjack/internal/blackjack"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

func newTestService(t *testing.T, seed int64) *GameService {
	t.Helper()
	table, err := blackjack.NewTable(blackjack.DefaultRules(), randutil.NewLocked(seed), testLogger())
	require.NoError(t, err)
	manager := session.NewManager(session.NewMemoryStore(0, quartz.NewReal()), table, testLogger())
	return NewGameService(manager, 1000, testLogger())
}

func startTestServer(t *testing.T, seed int64) *httptest.Server {
	t.Helper()
	srv := NewServer("", newTestService(t, seed), testLogger())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		srv.Stop()
		ts.Close()
	})
	return ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, mt MessageType, data any) {
	t.Helper()
	msg, err := NewMessage(mt, data)
	require.NoError(t, err)
	msg.RequestID = "req-" + string(mt)
	require.NoError(t, conn.WriteJSON(msg))
}

func receive(t *testing.T, conn *websocket.Conn) *Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return &msg
}

func expectState(t *testing.T, conn *websocket.Conn) StateData {
	t.Helper()
	msg := receive(t, conn)
	require.Equal(t, MessageTypeState, msg.Type, "payload: %s", msg.Data)
	var state StateData
	require.NoError(t, json.Unmarshal(msg.Data, &state))
	return state
}

func expectError(t *testing.T, conn *websocket.Conn, code string) ErrorData {
	t.Helper()
	msg := receive(t, conn)
	require.Equal(t, MessageTypeError, msg.Type, "payload: %s", msg.Data)
	var data ErrorData
	require.NoError(t, json.Unmarshal(msg.Data, &data))
	assert.Equal(t, code, data.Code, data.Message)
	return data
}

func TestServerHealth(t *testing.T) {
	t.Parallel()
	srv := NewServer("", newTestService(t, 1), testLogger())
	defer srv.Stop()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func TestServerPlaysFullRound(t *testing.T) {
	t.Parallel()
	ts := startTestServer(t, 42)
	conn := dial(t, ts)

	send(t, conn, MessageTypeNewRound, NewRoundData{PlayerName: "Alice"})
	state := expectState(t, conn)
	require.True(t, state.OK)
	require.NotEmpty(t, state.SessionID)
	assert.Equal(t, blackjack.PhaseBetting, state.View.Phase)
	assert.Equal(t, 1000, state.View.PlayerChips)
	assert.Len(t, state.View.Hands, 3)

	send(t, conn, MessageTypePlaceBets, PlaceBetsData{Bets: []blackjack.Bet{{Main: 10}, {Main: 20, PerfectPairs: 5}, {}}})
	state = expectState(t, conn)
	require.True(t, state.OK, state.Message)
	assert.Contains(t, []blackjack.Phase{blackjack.PhasePlayerTurns, blackjack.PhaseRoundOver}, state.View.Phase)

	for state.View.Phase == blackjack.PhasePlayerTurns {
		assert.True(t, state.View.DealerHidden)
		seat, ok := state.View.ActiveSeat()
		require.True(t, ok)
		send(t, conn, MessageTypeAction, ActionData{Action: "stand", HandIndex: seat.Index})
		state = expectState(t, conn)
		require.True(t, state.OK, state.Message)
	}

	assert.Equal(t, blackjack.PhaseRoundOver, state.View.Phase)
	assert.False(t, state.View.DealerHidden)
	for _, h := range state.View.Hands {
		assert.NotEmpty(t, h.Result)
	}

	send(t, conn, MessageTypeResetRound, nil)
	state = expectState(t, conn)
	assert.Equal(t, blackjack.PhaseBetting, state.View.Phase)

	send(t, conn, MessageTypeView, nil)
	view := expectState(t, conn)
	assert.Equal(t, state.View.PlayerChips, view.View.PlayerChips)

	sessionID := state.SessionID
	send(t, conn, MessageTypeCashOut, nil)
	msg := receive(t, conn)
	require.Equal(t, MessageTypeCashedOut, msg.Type)
	assert.Equal(t, "req-cash_out", msg.RequestID)
	var cashed CashedOutData
	require.NoError(t, json.Unmarshal(msg.Data, &cashed))
	assert.Equal(t, sessionID, cashed.SessionID)
	assert.Equal(t, "Alice", cashed.Player)
	assert.Equal(t, state.View.PlayerChips, cashed.Chips)

	send(t, conn, MessageTypeRebet, nil)
	expectError(t, conn, CodeBadRequest)
}

func TestServerRejectsBadRequests(t *testing.T) {
	t.Parallel()
	ts := startTestServer(t, 7)
	conn := dial(t, ts)

	send(t, conn, MessageTypeNewRound, NewRoundData{})
	expectError(t, conn, CodeBadRequest)

	send(t, conn, MessageTypeResume, ResumeData{SessionID: "no-such-session"})
	expectError(t, conn, CodeUnknownSession)

	send(t, conn, MessageType("shuffle"), nil)
	expectError(t, conn, CodeBadRequest)

	send(t, conn, MessageTypeNewRound, NewRoundData{PlayerName: "Bob"})
	expectState(t, conn)

	send(t, conn, MessageTypeAction, ActionData{Action: "hit", HandIndex: 0})
	expectError(t, conn, CodeWrongPhase)
	state := expectState(t, conn)
	assert.False(t, state.OK)
	assert.Contains(t, state.Message, "cannot hit during betting")

	send(t, conn, MessageTypeAction, ActionData{Action: "surrender", HandIndex: 0})
	expectError(t, conn, CodeBadRequest)

	send(t, conn, MessageTypePlaceBets, PlaceBetsData{Bets: []blackjack.Bet{{Main: 10}}})
	expectError(t, conn, CodeInvalidBetShape)
	expectState(t, conn)

	send(t, conn, MessageTypePlaceBets, PlaceBetsData{Bets: []blackjack.Bet{{Main: 5}, {}, {}}})
	expectError(t, conn, CodeBetOutOfRange)
	expectState(t, conn)

	send(t, conn, MessageTypeRebet, nil)
	expectError(t, conn, CodeInvalidBetShape)
	expectState(t, conn)

	send(t, conn, MessageTypeHint, nil)
	expectError(t, conn, CodeWrongPhase)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"place_bets","data":{"bets":"lots"}}`)))
	expectError(t, conn, CodeBadRequest)
}

func TestServerResumeFromAnotherConnection(t *testing.T) {
	t.Parallel()
	ts := startTestServer(t, 11)

	first := dial(t, ts)
	send(t, first, MessageTypeNewRound, NewRoundData{PlayerName: "Carol"})
	opened := expectState(t, first)
	send(t, first, MessageTypePlaceBets, PlaceBetsData{Bets: []blackjack.Bet{{Main: 50}, {}, {}}})
	placed := expectState(t, first)

	second := dial(t, ts)
	send(t, second, MessageTypeResume, ResumeData{SessionID: opened.SessionID})
	resumed := expectState(t, second)
	assert.Equal(t, opened.SessionID, resumed.SessionID)
	assert.Equal(t, placed.View, resumed.View)

	if resumed.View.Phase == blackjack.PhasePlayerTurns {
		send(t, second, MessageTypeHint, nil)
		msg := receive(t, second)
		require.Equal(t, MessageTypeHintReply, msg.Type)
		var hint HintData
		require.NoError(t, json.Unmarshal(msg.Data, &hint))
		assert.Equal(t, resumed.View.ActiveHand, hint.HandIndex)
		assert.NotEmpty(t, hint.Action)
	}
}

func TestServerViewKeepsHoleCardHidden(t *testing.T) {
	t.Parallel()
	ts := startTestServer(t, 11)
	conn := dial(t, ts)

	send(t, conn, MessageTypeNewRound, NewRoundData{PlayerName: "Cara"})
	state := expectState(t, conn)
	for i := 0; ; i++ {
		require.Less(t, i, 20, "no round reached player turns")
		send(t, conn, MessageTypePlaceBets, PlaceBetsData{Bets: []blackjack.Bet{{Main: 10}, {}, {}}})
		state = expectState(t, conn)
		require.True(t, state.OK, state.Message)
		if state.View.Phase == blackjack.PhasePlayerTurns {
			break
		}
		send(t, conn, MessageTypeResetRound, nil)
		expectState(t, conn)
	}
	require.True(t, state.View.DealerHidden)

	send(t, conn, MessageTypeView, map[string]bool{"reveal": true})
	view := expectState(t, conn)
	assert.True(t, view.View.DealerHidden)
	assert.Equal(t, state.View.Dealer, view.View.Dealer)
	assert.Equal(t, state.View.DealerTotal, view.View.DealerTotal)
}
