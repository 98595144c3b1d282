package scrawl

import (
	"pkt.systems/pslog"

	"pkt.systems/scrawl/relay"
	"pkt.systems/scrawl/schema"
)

type actionFanout struct {
	sinks []relay.Sink
}

func (f actionFanout) OnAction(origin schema.SessionID, action schema.Action) {
	for _, sink := range f.sinks {
		if sink == nil {
			continue
		}
		sink.OnAction(origin, action)
	}
}

// auditSink writes one structured log line per relayed action. The logger is
// installed by Start, before the relay begins accepting connections.
type auditSink struct {
	log pslog.Logger
}

func (a *auditSink) OnAction(origin schema.SessionID, action schema.Action) {
	if a.log == nil {
		return
	}
	a.log.Trace(
		"action relayed",
		"session", string(origin),
		"kind", string(action.Kind),
		"tool", string(action.Tool),
		"x", action.X,
		"y", action.Y,
	)
}
