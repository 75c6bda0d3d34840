// Package ws exposes the relay over a websocket. The handshake authenticates
// once and binds an identity to the connection; after that each inbound
// ai-message event runs as its own exchange goroutine while a single writer
// goroutine serializes everything going back out.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/aurora-chat/aurora/internal/api/validate"
	"github.com/aurora-chat/aurora/internal/auth"
	"github.com/aurora-chat/aurora/internal/relay"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 64 * 1024
	sendBuffer     = 16
)

// frame is the JSON envelope for both directions.
type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type outFrame struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

type aiMessagePayload struct {
	Chat    string `json:"chat"`
	Content string `json:"content"`
}

// Relay is the part of the message relay the socket layer needs.
type Relay interface {
	Process(ctx context.Context, userID string, ex relay.Exchange, emit relay.Emitter) relay.State
}

// Server upgrades connections and dispatches events to the relay.
type Server struct {
	auth     auth.Authenticator
	relay    Relay
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

func NewServer(a auth.Authenticator, r Relay, log zerolog.Logger) *Server {
	return &Server{
		auth:  a,
		relay: r,
		log:   log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Browsers send the page origin; token auth is what gates access.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Handler authenticates the handshake and runs the connection.
func (s *Server) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := auth.ExtractBearerToken(r)
		if err != nil {
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}
		identity, err := s.auth.Authenticate(r.Context(), token)
		if err != nil {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}

		conn, err := s.upgrader.Upgrade(w, r, nil)
		if err != nil {
			s.log.Warn().Err(err).Msg("websocket upgrade failed")
			return
		}

		c := &client{
			conn:     conn,
			send:     make(chan outFrame, sendBuffer),
			identity: identity,
			server:   s,
			log:      s.log.With().Str("user_id", identity.UserID).Logger(),
		}
		go c.writeLoop()
		c.readLoop()
	}
}

type client struct {
	conn     *websocket.Conn
	send     chan outFrame
	identity *auth.Identity
	server   *Server
	log      zerolog.Logger

	// mu guards closed and the send channel's lifecycle. The reader owns
	// the close; exchange goroutines check closed under the lock so they
	// never send into a closed channel.
	mu     sync.Mutex
	closed bool

	// generation increments on every stop event; emitters bound to an older
	// generation drop their signal instead of delivering it.
	generation atomic.Int64
}

func (c *client) readLoop() {
	defer func() {
		c.closeSend()
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var f frame
		if err := c.conn.ReadJSON(&f); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn().Err(err).Msg("websocket read failed")
			}
			return
		}

		switch f.Event {
		case "ai-message":
			var p aiMessagePayload
			if err := json.Unmarshal(f.Data, &p); err != nil {
				c.deliver(c.generation.Load(), "ai-error", relay.ErrorSignal{Message: "Invalid request"})
				continue
			}
			if validate.NonEmpty("chat", p.Chat) != nil || validate.MessageContent(p.Content) != nil {
				c.deliver(c.generation.Load(), "ai-error", relay.ErrorSignal{Message: "Invalid request"})
				continue
			}
			gen := c.generation.Load()
			go c.server.relay.Process(context.Background(), c.identity.UserID,
				relay.Exchange{ChatID: p.Chat, Content: p.Content},
				&signalEmitter{client: c, generation: gen, chat: p.Chat})
		case "stop":
			// Best-effort: the in-flight provider call keeps running, only
			// its eventual result is suppressed.
			c.generation.Add(1)
		default:
			c.log.Debug().Str("event", f.Event).Msg("ignoring unknown event")
		}
	}
}

func (c *client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case f, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteJSON(f); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// closeSend shuts the outbound channel exactly once, stopping the writer.
func (c *client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// deliver enqueues a frame unless the exchange's generation has been stopped
// or the connection is gone.
func (c *client) deliver(gen int64, event string, data interface{}) {
	if c.generation.Load() != gen {
		c.log.Debug().Str("event", event).Msg("dropping signal for stopped exchange")
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		c.log.Debug().Str("event", event).Msg("dropping signal for closed connection")
		return
	}
	select {
	case c.send <- outFrame{Event: event, Data: data}:
	default:
		c.log.Warn().Str("event", event).Msg("send buffer full, dropping signal")
	}
}

// signalEmitter adapts one exchange's signals onto the connection.
type signalEmitter struct {
	client     *client
	generation int64
	chat       string
}

func (e *signalEmitter) EmitResponse(r relay.Response) {
	e.client.deliver(e.generation, "ai-response", r)
}

func (e *signalEmitter) EmitLimitReached(l relay.LimitReached) {
	e.client.deliver(e.generation, "limit-reached", l)
}

func (e *signalEmitter) EmitFailed(f relay.Failed) {
	e.client.deliver(e.generation, "ai-response-failed", f)
}

func (e *signalEmitter) EmitError(err relay.ErrorSignal) {
	e.client.deliver(e.generation, "ai-error", err)
}
