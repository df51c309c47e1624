package server

// MessageType represents a WebSocket message type
type MessageType string

const (
	// Client to server messages
	MessageTypeNewRound   MessageType = "new_round"
	MessageTypeResume     MessageType = "resume"
	MessageTypePlaceBets  MessageType = "place_bets"
	MessageTypeRebet      MessageType = "rebet"
	MessageTypeAction     MessageType = "action"
	MessageTypeResetRound MessageType = "reset_round"
	MessageTypeCashOut    MessageType = "cash_out"
	MessageTypeView       MessageType = "view"
	MessageTypeHint       MessageType = "hint"

	// Server to client messages
	MessageTypeState     MessageType = "state"
	MessageTypeError     MessageType = "error"
	MessageTypeCashedOut MessageType = "cashed_out"
	MessageTypeHintReply MessageType = "hint_reply"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}

// Error codes sent in ErrorData.Code
const (
	CodeWrongPhase        = "wrong_phase"
	CodeHandNotEligible   = "hand_not_eligible"
	CodeInvalidHandIndex  = "invalid_hand_index"
	CodeInvalidBetShape   = "invalid_bet_shape"
	CodeBetOutOfRange     = "bet_out_of_range"
	CodeInsufficientChips = "insufficient_chips"
	CodeMalformedSnapshot = "malformed_snapshot"
	CodeUnknownSession    = "unknown_session"
	CodeBadRequest        = "bad_request"
	CodeInternal          = "internal"
)
