package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/gorilla/websocket"

	"pkt.systems/pslog"

	"pkt.systems/scrawl/schema"
)

// Handler consumes inbound event channel messages.
type Handler interface {
	HandleReplay(actions []schema.Action)
	HandleAction(action schema.Action)
}

// Channel is the client end of the event channel: a websocket connection
// with JSON message envelopes. Writes are serialized; Listen owns reads.
type Channel struct {
	conn *websocket.Conn
	log  pslog.Logger

	mu     sync.Mutex
	closed bool
}

// dialMaxElapsed bounds how long Dial keeps retrying before giving up.
const dialMaxElapsed = 15 * time.Second

// Dial connects to a relay websocket URL, retrying with exponential backoff
// until the context is cancelled or the retry budget runs out.
func Dial(ctx context.Context, url string) (*Channel, error) {
	logger := pslog.Ctx(ctx)
	var conn *websocket.Conn
	op := func() error {
		c, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
		if err != nil {
			logger.Debug("channel dial retry", "url", url, "err", err)
			return err
		}
		conn = c
		return nil
	}
	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = dialMaxElapsed
	if err := backoff.Retry(op, backoff.WithContext(policy, ctx)); err != nil {
		return nil, fmt.Errorf("dial event channel %s: %w", url, err)
	}
	logger.Info("channel connected", "url", url)
	return &Channel{conn: conn, log: logger}, nil
}

// Submit sends one action to the relay.
func (c *Channel) Submit(action schema.Action) error {
	return c.write(schema.ClientMessage{Type: schema.MsgSubmitAction, Action: &action})
}

// SubmitClear sends a payload-free clear signal to the relay.
func (c *Channel) SubmitClear() error {
	return c.write(schema.ClientMessage{Type: schema.MsgSubmitClear})
}

// Listen reads inbound messages and dispatches them to the handler until
// the connection drops or the context is cancelled.
func (c *Channel) Listen(ctx context.Context, h Handler) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = c.Close()
		case <-done:
		}
	}()
	for {
		var msg schema.ServerMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("event channel read: %w", err)
		}
		switch msg.Type {
		case schema.MsgReplay:
			h.HandleReplay(msg.Actions)
		case schema.MsgRelayAction:
			if msg.Action == nil {
				c.log.Warn("relay-action without payload ignored")
				continue
			}
			h.HandleAction(*msg.Action)
		default:
			c.log.Debug("channel message ignored", "type", msg.Type)
		}
	}
}

// Close tears down the connection. Subsequent writes fail with
// schema.ErrChannelClosed.
func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}

func (c *Channel) write(msg schema.ClientMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return schema.ErrChannelClosed
	}
	if err := c.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("event channel write: %w", err)
	}
	return nil
}
