package server

import (
	"encoding/json"
	"time"

	"github.com/lox/blackjack/internal/blackjack"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"request_id,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data any) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server Messages

type NewRoundData struct {
	PlayerName string `json:"player_name"`
}

type ResumeData struct {
	SessionID string `json:"session_id"`
}

type PlaceBetsData struct {
	Bets []blackjack.Bet `json:"bets"`
}

type ActionData struct {
	Action    string `json:"action"`
	HandIndex int    `json:"hand_index"`
}

// Server → Client Messages

type StateData struct {
	SessionID string         `json:"session_id"`
	OK        bool           `json:"ok"`
	Message   string         `json:"message"`
	View      blackjack.View `json:"view"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CashedOutData struct {
	SessionID string `json:"session_id"`
	Player    string `json:"player_name"`
	Chips     int    `json:"chips"`
}

type HintData struct {
	HandIndex int    `json:"hand_index"`
	Action    string `json:"action"`
	Reasoning string `json:"reasoning"`
}
