package schema

// MessageType discriminates event channel envelopes. Unknown types are
// ignored by both ends.
type MessageType string

const (
	// MsgSubmitAction carries one action from a client to the relay.
	MsgSubmitAction MessageType = "submit-action"
	// MsgSubmitClear asks the relay to synthesize a clear action on the
	// sender's behalf. It carries no payload.
	MsgSubmitClear MessageType = "submit-clear"
	// MsgReplay carries the whole history log to a newly connected session.
	MsgReplay MessageType = "replay"
	// MsgRelayAction carries one relayed action to a session other than its
	// origin.
	MsgRelayAction MessageType = "relay-action"
)

// ClientMessage is the client-to-relay envelope.
type ClientMessage struct {
	Type   MessageType `json:"type"`
	Action *Action     `json:"action,omitempty"`
}

// ServerMessage is the relay-to-client envelope. Action is set for
// MsgRelayAction, Actions for MsgReplay.
type ServerMessage struct {
	Type    MessageType `json:"type"`
	Action  *Action     `json:"action,omitempty"`
	Actions []Action    `json:"actions,omitempty"`
}
