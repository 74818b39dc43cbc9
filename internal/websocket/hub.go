package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"binroute-backend/internal/events"
)

// Hub keeps the dashboard connections and fans every event out to all of them.
// Only the Run goroutine sends on or closes a client's send channel.
type Hub struct {
	// Registered clients keyed by connection id
	clients map[string]*Client

	broadcast  chan []byte
	direct     chan directMessage
	register   chan *Client
	unregister chan *Client

	// Closed when Run returns
	done chan struct{}

	mu sync.RWMutex
}

// directMessage is a reply meant for a single client, e.g. a pong.
type directMessage struct {
	client *Client
	data   []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		broadcast:  make(chan []byte, 256),
		direct:     make(chan directMessage, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run is the hub's main loop. It returns when ctx is cancelled and closes
// every remaining client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for id, client := range h.clients {
				close(client.send)
				delete(h.clients, id)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			total := len(h.clients)
			h.mu.Unlock()
			log.Printf("✅ [WEBSOCKET] Client connected: %s (total: %d)", client.ID, total)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				close(client.send)
				log.Printf("🔴 [WEBSOCKET] Client disconnected: %s (remaining: %d)", client.ID, len(h.clients))
			}
			h.mu.Unlock()

		case msg := <-h.direct:
			h.mu.Lock()
			// Clients already dropped by the hub get nothing
			if current, ok := h.clients[msg.client.ID]; ok && current == msg.client {
				select {
				case msg.client.send <- msg.data:
				default:
				}
			}
			h.mu.Unlock()

		case data := <-h.broadcast:
			h.mu.Lock()
			for id, client := range h.clients {
				select {
				case client.send <- data:
				default:
					// Slow consumer, drop it rather than stall everyone
					close(client.send)
					delete(h.clients, id)
					log.Printf("⚠️  Client buffer full, disconnecting: %s", id)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Register attaches a client. It reports false once the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister detaches a client. Unknown clients and a stopped hub are no-ops.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// reply queues data for one client through the hub loop.
func (h *Hub) reply(client *Client, data []byte) {
	select {
	case h.direct <- directMessage{client: client, data: data}:
	case <-h.done:
	}
}

// Publish queues an event for every connected client. A full queue drops the
// event so callers are never blocked.
func (h *Hub) Publish(_ context.Context, evt events.Event) {
	data, err := json.Marshal(evt)
	if err != nil {
		log.Printf("❌ Failed to marshal broadcast message: %v", err)
		return
	}

	select {
	case h.broadcast <- data:
	default:
		log.Printf("⚠️  Broadcast queue full, dropping %s event", evt.Type)
	}
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
