package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/wricardo/royal-game-of-ur/game/engine"
	"github.com/wricardo/royal-game-of-ur/game/service"
	"github.com/wricardo/royal-game-of-ur/identity"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins in development
		// TODO: Configure this for production
		return true
	},
}

// Frame is the wire format for every message in both directions.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Client represents one player's WebSocket connection. It is also the
// player's service.Handle: Emit marshals outbound events into the
// buffered send channel drained by writePump.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	connID string
	player engine.PlayerID
	name   string
}

// Emit implements service.Handle.
func (c *Client) Emit(event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("event", event).Msg("failed to marshal outbound payload")
		return
	}
	frame, err := json.Marshal(Frame{Event: event, Data: data})
	if err != nil {
		log.Error().Err(err).Str("event", event).Msg("failed to marshal outbound frame")
		return
	}

	select {
	case c.send <- frame:
	default:
		// Send buffer full, the connection is not keeping up. Dropping
		// here keeps Emit non-blocking from any goroutine; the stalled
		// connection will miss its ping deadline and get torn down.
		log.Warn().
			Str("event", event).
			Int64("player", int64(c.player)).
			Msg("send buffer full, dropping event")
	}
}

// Hub maintains the set of active clients, at most one per player.
type Hub struct {
	svc      service.GameService
	provider identity.Provider

	// Connected clients by player identity
	clients map[engine.PlayerID]*Client

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client
}

// NewHub creates a new WebSocket hub.
func NewHub(svc service.GameService, provider identity.Provider) *Hub {
	return &Hub{
		svc:        svc,
		provider:   provider,
		clients:    make(map[engine.PlayerID]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's event loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)
		}
	}
}

// ServeWS handles WebSocket requests from clients.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	player, name, err := h.provider.Identify(r)
	if err != nil {
		log.Debug().Err(err).Msg("rejecting connection without identity")
		http.Error(w, "identity required", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, 256),
		connID: uuid.New().String(),
		player: player,
		name:   name,
	}

	client.hub.register <- client

	// Start client goroutines
	go client.writePump()
	go client.readPump()
}

// registerClient binds a client to its player identity, replacing any
// previous connection for the same player.
func (h *Hub) registerClient(client *Client) {
	// The send channel is never closed: the service may Emit from its own
	// goroutines at any time, so shutdown is signaled by closing the
	// connection, which unwinds both pumps.
	if prev, ok := h.clients[client.player]; ok {
		prev.conn.Close()
	}
	h.clients[client.player] = client

	log.Info().
		Int64("player", int64(client.player)).
		Str("conn", client.connID).
		Msg("client registered")

	h.svc.Connect(context.Background(), client.player, client.name, client)
}

// unregisterClient disconnects a client. A stale client that has already
// been replaced does not sign its player out.
func (h *Hub) unregisterClient(client *Client) {
	current, ok := h.clients[client.player]
	if !ok || current != client {
		return
	}

	delete(h.clients, client.player)

	log.Info().
		Int64("player", int64(client.player)).
		Str("conn", client.connID).
		Msg("client unregistered")

	h.svc.Disconnect(context.Background(), client.player)
}

// readPump pumps frames from the WebSocket connection to the game service.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Debug().Err(err).Int64("player", int64(c.player)).Msg("WebSocket read error")
			}
			break
		}

		c.dispatch(data)
	}
}

// dispatch decodes one inbound frame and routes it to the game service.
// Malformed or unknown frames are dropped; service errors have already
// been handled (logged, or answered with a resync) by the service itself.
func (c *Client) dispatch(data []byte) {
	var frame Frame
	if err := json.Unmarshal(data, &frame); err != nil {
		log.Debug().Err(err).Int64("player", int64(c.player)).Msg("dropping malformed frame")
		return
	}

	ctx := context.Background()

	switch frame.Event {
	case service.EventChallengeCreate:
		var p service.ChallengePayload
		if err := json.Unmarshal(frame.Data, &p); err != nil {
			c.logPayloadError(frame.Event, err)
			return
		}
		if err := c.hub.svc.Challenge(ctx, c.player, p.To); err != nil {
			c.logServiceError(frame.Event, err)
		}

	case service.EventChallengeAccept:
		var p service.ChallengeIDPayload
		if err := json.Unmarshal(frame.Data, &p); err != nil {
			c.logPayloadError(frame.Event, err)
			return
		}
		if err := c.hub.svc.AcceptChallenge(ctx, c.player, p.ChallengeID); err != nil {
			c.logServiceError(frame.Event, err)
		}

	case service.EventChallengeReject:
		var p service.ChallengeIDPayload
		if err := json.Unmarshal(frame.Data, &p); err != nil {
			c.logPayloadError(frame.Event, err)
			return
		}
		if err := c.hub.svc.RejectChallenge(ctx, c.player, p.ChallengeID); err != nil {
			c.logServiceError(frame.Event, err)
		}

	case service.EventGameSelect:
		var p service.GameIDPayload
		if err := json.Unmarshal(frame.Data, &p); err != nil {
			c.logPayloadError(frame.Event, err)
			return
		}
		if err := c.hub.svc.SelectGame(ctx, c.player, p.GameID); err != nil {
			c.logServiceError(frame.Event, err)
		}

	case service.EventGameRoll:
		var p service.GameIDPayload
		if err := json.Unmarshal(frame.Data, &p); err != nil {
			c.logPayloadError(frame.Event, err)
			return
		}
		if err := c.hub.svc.Roll(ctx, c.player, p.GameID); err != nil {
			c.logServiceError(frame.Event, err)
		}

	case service.EventGameMove:
		var p service.MovePayload
		if err := json.Unmarshal(frame.Data, &p); err != nil {
			c.logPayloadError(frame.Event, err)
			return
		}
		if err := c.hub.svc.Move(ctx, c.player, p.GameID, int(p.Track), p.Lane); err != nil {
			c.logServiceError(frame.Event, err)
		}

	default:
		log.Debug().
			Str("event", frame.Event).
			Int64("player", int64(c.player)).
			Msg("dropping unknown event")
	}
}

func (c *Client) logPayloadError(event string, err error) {
	log.Debug().Err(err).
		Str("event", event).
		Int64("player", int64(c.player)).
		Msg("dropping frame with invalid payload")
}

func (c *Client) logServiceError(event string, err error) {
	log.Debug().Err(err).
		Str("event", event).
		Int64("player", int64(c.player)).
		Msg("event rejected")
}

// writePump pumps messages from the send channel to the WebSocket
// connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
