package schema

// SessionID identifies one connected client's ephemeral channel endpoint.
// Sessions own no persistent state; their lifetime is bound to the event
// channel connection.
type SessionID string
