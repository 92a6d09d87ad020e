package hub

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hostmond/hostmond/internal/events"
	"github.com/hostmond/hostmond/internal/session"
	"github.com/hostmond/hostmond/internal/state"
)

const authFailedMessage = "Authentication failed - invalid or expired session"

// Hub owns the set of authenticated websocket clients and fans
// snapshots and change events out to them. A slow or dead client is
// dropped; it never blocks the others.
type Hub struct {
	validator        session.Validator
	store            *state.Store
	handshakeTimeout time.Duration
	logger           *slog.Logger
	upgrader         websocket.Upgrader

	mu      sync.RWMutex
	clients map[*Client]bool
}

func New(validator session.Validator, store *state.Store, handshakeTimeout time.Duration, logger *slog.Logger) *Hub {
	return &Hub{
		validator:        validator,
		store:            store,
		handshakeTimeout: handshakeTimeout,
		logger:           logger.With("component", "hub"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[*Client]bool),
	}
}

// Count returns the number of registered clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeWS upgrades the connection and runs the authentication
// handshake. The first frame must arrive within the handshake timeout
// and carry a valid session_id; timeouts and malformed frames close
// the socket silently, a well-formed but invalid credential gets an
// error envelope before the close. Only authenticated clients are
// registered.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	conn.SetReadDeadline(time.Now().Add(h.handshakeTimeout))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		conn.Close()
		return
	}

	var auth inbound
	if err := json.Unmarshal(raw, &auth); err != nil {
		conn.Close()
		return
	}

	if auth.SessionID == "" || !h.validator.IsValid(auth.SessionID) {
		h.logger.Warn("rejected websocket client", "remote", r.RemoteAddr)
		msg, _ := json.Marshal(envelope{Type: msgError, Message: authFailedMessage})
		conn.WriteMessage(websocket.TextMessage, msg)
		conn.Close()
		return
	}

	conn.SetReadDeadline(time.Time{})

	client := newClient(h, conn)

	// Queue the initial state before the client becomes visible to
	// broadcasts, so it is always the first frame delivered.
	if msg, err := marshalEnvelope(msgInitialState, h.store.Current(), true); err == nil {
		client.enqueue(msg)
	}

	h.mu.Lock()
	h.clients[client] = true
	h.mu.Unlock()

	h.logger.Info("websocket client connected", "remote", r.RemoteAddr, "clients", h.Count())

	go client.writePump()
	go client.readPump()
}

// BroadcastTick delivers one monitoring cycle: the full snapshot as a
// state_update followed by each change event, in order, per client.
func (h *Hub) BroadcastTick(snap *state.SystemSnapshot, evts []events.Event) {
	frames := make([][]byte, 0, len(evts)+1)

	stateMsg, err := marshalEnvelope(msgStateUpdate, snap, true)
	if err != nil {
		h.logger.Error("marshal state update failed", "error", err)
		return
	}
	frames = append(frames, stateMsg)

	for _, e := range evts {
		msg, err := events.Wire(e)
		if err != nil {
			h.logger.Error("marshal event failed", "type", e.Type(), "error", err)
			continue
		}
		frames = append(frames, msg)
	}

	h.broadcast(frames...)
}

// BroadcastEvent delivers a single event outside the tick cycle,
// e.g. a hotplug notification.
func (h *Hub) BroadcastEvent(e events.Event) {
	msg, err := events.Wire(e)
	if err != nil {
		h.logger.Error("marshal event failed", "type", e.Type(), "error", err)
		return
	}
	h.broadcast(msg)
}

func (h *Hub) broadcast(frames ...[]byte) {
	var stale []*Client

	h.mu.RLock()
	for client := range h.clients {
		for _, frame := range frames {
			if !client.enqueue(frame) {
				stale = append(stale, client)
				break
			}
		}
	}
	h.mu.RUnlock()

	for _, client := range stale {
		h.logger.Warn("dropping slow websocket client")
		h.remove(client)
	}
}

// deliver sends a single reply to one client if it is still
// registered. Membership is checked under the lock so the send never
// races a concurrent removal.
func (h *Hub) deliver(c *Client, msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.clients[c] {
		c.enqueue(msg)
	}
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		c.close()
	}
	h.mu.Unlock()
}

// Shutdown closes every client connection and empties the registry.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	for client := range h.clients {
		client.close()
	}
	h.clients = make(map[*Client]bool)
	h.mu.Unlock()

	h.logger.Info("hub shut down")
}
