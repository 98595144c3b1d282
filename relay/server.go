package relay

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"pkt.systems/scrawl/internal/logx"
	"pkt.systems/scrawl/schema"
)

// Server exposes the hub over a websocket endpoint.
type Server struct {
	hub      *Hub
	upgrader websocket.Upgrader
}

// NewServer constructs a relay server around the given hub.
func NewServer(hub *Hub) *Server {
	return &Server{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Open cross-origin policy. Explicitly not a production stance.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handler returns the HTTP handler serving the event channel.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/ws", s.handleWS)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	return withRequestLogging(r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logx.Ctx(r.Context()).Warn("websocket upgrade failed", "err", err)
		return
	}
	id := schema.SessionID(uuid.NewString())
	log := logx.WithSession(r.Context(), id)
	log.Info("session connected", "remote", conn.RemoteAddr().String())

	ch, unsub, replay := s.hub.Subscribe(id)
	defer unsub()
	defer func() { _ = conn.Close() }()

	// Replay precedes any live relay for this session: messages submitted
	// after Subscribe queue up on ch and drain afterwards in order.
	if len(replay) > 0 {
		if err := conn.WriteJSON(schema.ServerMessage{Type: schema.MsgReplay, Actions: replay}); err != nil {
			log.Warn("session replay failed", "err", err)
			return
		}
		log.Debug("session replay sent", "actions", len(replay))
	}

	readerDone := make(chan struct{})
	go func() {
		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					// The hub closed a stalled session.
					_ = conn.Close()
					return
				}
				if err := conn.WriteJSON(msg); err != nil {
					log.Debug("session write failed", "err", err)
					_ = conn.Close()
					return
				}
			case <-readerDone:
				return
			}
		}
	}()

	for {
		_, buf, err := conn.ReadMessage()
		if err != nil {
			log.Info("session disconnected", "err", err)
			break
		}
		var msg schema.ClientMessage
		if err := json.Unmarshal(buf, &msg); err != nil {
			log.Warn("session message undecodable", "err", err)
			continue
		}
		switch msg.Type {
		case schema.MsgSubmitAction:
			var action schema.Action
			if msg.Action != nil {
				action = *msg.Action
			}
			s.hub.Submit(id, action)
		case schema.MsgSubmitClear:
			s.hub.SubmitClear(id)
		default:
			log.Debug("session message ignored", "type", msg.Type)
		}
	}
	close(readerDone)
}
