package socket

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"coedit/pkg/logger"
)

const (
	SendChangesEvent    = "send-changes"    // Client -> server: an edit to relay
	ReceiveChangesEvent = "receive-changes" // Server -> client: an edit made elsewhere
)

// Scope decides which live connections receive a change.
type Scope int

const (
	// ScopeGlobal relays every change to every other connection, whatever
	// document it has open.
	ScopeGlobal Scope = iota
	// ScopeDocument relays a change only to connections that joined the same
	// document id.
	ScopeDocument
)

// WSMessage is the frame exchanged over the socket in both directions.
type WSMessage struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// ChangeEvent is an inbound edit waiting to be relayed. It is never stored.
type ChangeEvent struct {
	Origin  *Client
	Payload json.RawMessage
}

type Hub struct {
	Register   chan *Client
	Unregister chan *Client
	Broadcast  chan ChangeEvent

	scope  Scope
	nextID atomic.Uint64
	done   chan struct{}

	mu      sync.Mutex
	clients map[*Client]bool
	rooms   map[string]map[*Client]bool
}

func NewHub(scope Scope) *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Broadcast:  make(chan ChangeEvent),
		scope:      scope,
		done:       make(chan struct{}),
		clients:    make(map[*Client]bool),
		rooms:      make(map[string]map[*Client]bool),
	}
}

func (h *Hub) Scope() Scope {
	return h.scope
}

// ConnectionCount reports how many connections are currently registered.
func (h *Hub) ConnectionCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Done is closed once Run has returned.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// Run owns the connection registry. It returns when ctx is cancelled, after
// closing every live connection.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				h.removeLocked(client)
			}
			h.mu.Unlock()
			logger.Sugar.Info("Realtime hub stopped")
			return

		case client := <-h.Register:
			h.mu.Lock()
			h.clients[client] = true
			if h.scope == ScopeDocument {
				if h.rooms[client.DocID] == nil {
					h.rooms[client.DocID] = make(map[*Client]bool)
				}
				h.rooms[client.DocID][client] = true
			}
			total := len(h.clients)
			h.mu.Unlock()
			logger.Sugar.Infof("Connection %d registered (%d live)", client.ID, total)

		case client := <-h.Unregister:
			h.mu.Lock()
			if h.clients[client] {
				h.removeLocked(client)
			}
			total := len(h.clients)
			h.mu.Unlock()
			logger.Sugar.Infof("Connection %d unregistered (%d live)", client.ID, total)

		case change := <-h.Broadcast:
			h.OnChange(change.Origin, change.Payload)
		}
	}
}

// OnChange relays payload to every other live connection in scope, never back
// to origin. Delivery is fire-and-forget: a receiver whose send buffer is full
// is dropped instead of slowing down the others.
func (h *Hub) OnChange(origin *Client, payload json.RawMessage) {
	frame, err := json.Marshal(WSMessage{Event: ReceiveChangesEvent, Payload: payload})
	if err != nil {
		logger.Sugar.Errorf("Error marshalling broadcast message: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	recipients := h.clients
	if h.scope == ScopeDocument && origin != nil {
		recipients = h.rooms[origin.DocID]
	}
	for client := range recipients {
		if client == origin {
			continue
		}
		select {
		case client.Send <- frame:
		default:
			logger.Sugar.Warnf("Connection %d's send buffer is full. Dropping it.", client.ID)
			h.removeLocked(client)
		}
	}
}

// removeLocked must be called with mu held and only for registered clients.
// Closing Send makes the client's writePump close the socket.
func (h *Hub) removeLocked(client *Client) {
	delete(h.clients, client)
	if room, ok := h.rooms[client.DocID]; ok {
		delete(room, client)
		if len(room) == 0 {
			delete(h.rooms, client.DocID)
		}
	}
	close(client.Send)
}

func (h *Hub) newConnectionID() uint64 {
	return h.nextID.Add(1)
}
