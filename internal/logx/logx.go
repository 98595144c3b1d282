// Package logx carries small helpers for annotating loggers with relay
// identifiers.
package logx

import (
	"context"

	"pkt.systems/pslog"

	"pkt.systems/scrawl/schema"
)

// Ctx returns the logger bound to the provided context.
func Ctx(ctx context.Context) pslog.Logger {
	return pslog.Ctx(ctx)
}

// WithSession annotates the logger with the session id if present.
func WithSession(ctx context.Context, id schema.SessionID) pslog.Logger {
	log := pslog.Ctx(ctx)
	if id != "" {
		log = log.With("session", id)
	}
	return log
}
