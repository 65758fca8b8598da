package ws

import (
	"encoding/json"
	"fmt"
)

// Event types carried in the envelope. Inbound mutation events are echoed
// back under the same type on success.
const (
	EventCardCreated    = "card.created"
	EventCardUpdated    = "card.updated"
	EventCardDeleted    = "card.deleted"
	EventCardMoved      = "card.moved"
	EventColumnCreated  = "column.created"
	EventColumnUpdated  = "column.updated"
	EventColumnDeleted  = "column.deleted"
	EventBoardUpdated   = "board.updated"
	EventProjectRenamed = "project.renamed"
	EventTeamUpdated    = "team.updated"

	// EventConnected is sent once to a client after a successful join.
	EventConnected = "connection.established"

	// EventError is sent to the acting client only, never broadcast.
	EventError = "error"
)

// Envelope is the inbound JSON wrapper: {"type": string, "payload": object}.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// OutEnvelope is the outbound JSON wrapper.
type OutEnvelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// ErrorEnvelope builds a sender-only error envelope.
func ErrorEnvelope(message string) OutEnvelope {
	return OutEnvelope{
		Type:    EventError,
		Payload: map[string]string{"message": message},
	}
}

// clientError is a validation or protocol failure whose message is safe to
// send to the acting client. Anything else is logged and reported generically.
type clientError struct {
	msg string
}

func (e *clientError) Error() string { return e.msg }

func errClient(format string, args ...any) error {
	return &clientError{msg: fmt.Sprintf(format, args...)}
}
