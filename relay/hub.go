// Package relay sequences and redistributes drawing actions among connected
// sessions. The hub owns the bounded history log used for late-joiner
// replay; the server wires it to websocket sessions.
package relay

import (
	"context"
	"sync"

	"pkt.systems/scrawl/internal/logx"
	"pkt.systems/scrawl/schema"
)

// Sink observes every action the hub accepts, after sequencing. Used for
// audit logging and metrics-style taps.
type Sink interface {
	OnAction(origin schema.SessionID, action schema.Action)
}

// Hub sequences actions into a single broadcast order and holds the bounded
// history log. It is an explicitly owned object injected into connection
// handling so independent instances can coexist.
type Hub struct {
	mu      sync.Mutex
	cap     int
	history []schema.Action
	subs    map[schema.SessionID]chan schema.ServerMessage
	sink    Sink
}

// NewHub constructs a hub with the given history capacity. A non-positive
// capacity falls back to schema.DefaultHistoryCap.
func NewHub(historyCap int, sink Sink) *Hub {
	if historyCap <= 0 {
		historyCap = schema.DefaultHistoryCap
	}
	return &Hub{
		cap:  historyCap,
		subs: make(map[schema.SessionID]chan schema.ServerMessage),
		sink: sink,
	}
}

// sendBuffer bounds a session's outbound queue. A session that cannot drain
// this many messages is closed rather than having messages dropped or
// reordered.
const sendBuffer = 512

// Subscribe registers a session and returns its outbound channel, an
// unsubscribe func, and a copy of the history log for replay. The replay
// copy preserves arrival order; it is empty for a fresh board.
func (h *Hub) Subscribe(id schema.SessionID) (<-chan schema.ServerMessage, func(), []schema.Action) {
	ch := make(chan schema.ServerMessage, sendBuffer)
	h.mu.Lock()
	h.subs[id] = ch
	replay := append([]schema.Action(nil), h.history...)
	subs := len(h.subs)
	h.mu.Unlock()
	log := logx.WithSession(context.Background(), id)
	log.Info("hub subscribe", "subs", subs, "replay", len(replay))
	unsub := func() {
		h.mu.Lock()
		if cur, ok := h.subs[id]; ok && cur == ch {
			delete(h.subs, id)
		}
		remaining := len(h.subs)
		h.mu.Unlock()
		log.Info("hub unsubscribe", "subs", remaining)
	}
	return ch, unsub, replay
}

// Submit appends an action to the history log, evicting the oldest entry at
// capacity, and broadcasts it to every session except the origin. Actions
// are stored and relayed unchanged; no validation happens here.
func (h *Hub) Submit(origin schema.SessionID, action schema.Action) {
	h.mu.Lock()
	h.history = append(h.history, action)
	if len(h.history) > h.cap {
		h.history = h.history[len(h.history)-h.cap:]
	}
	var stalled []schema.SessionID
	msg := schema.ServerMessage{Type: schema.MsgRelayAction, Action: &action}
	for id, ch := range h.subs {
		if id == origin {
			continue
		}
		select {
		case ch <- msg:
		default:
			stalled = append(stalled, id)
		}
	}
	h.mu.Unlock()

	if h.sink != nil {
		h.sink.OnAction(origin, action)
	}
	for _, id := range stalled {
		// Dropping a live message would break the relayed subsequence, so a
		// stalled session is disconnected instead.
		logx.WithSession(context.Background(), id).Warn("hub session stalled, closing", "kind", action.Kind)
		h.close(id)
	}
}

// SubmitClear synthesizes a clear action on behalf of the origin session and
// relays it with the usual eviction rule.
func (h *Hub) SubmitClear(origin schema.SessionID) {
	h.Submit(origin, schema.Action{Kind: schema.ActionClear})
}

// History returns a copy of the history log in arrival order.
func (h *Hub) History() []schema.Action {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]schema.Action(nil), h.history...)
}

func (h *Hub) close(id schema.SessionID) {
	h.mu.Lock()
	ch, ok := h.subs[id]
	if ok {
		delete(h.subs, id)
	}
	h.mu.Unlock()
	if ok {
		close(ch)
	}
}
