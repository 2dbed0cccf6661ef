package sse

import (
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/yungbote/roadmap-agent/internal/logger"
	"github.com/yungbote/roadmap-agent/internal/types"
)

// Client is one connected progress stream, bound to a single trace id.
type Client struct {
	ID       uuid.UUID
	TraceID  string
	Outbound chan types.ProgressUpdate
	done     chan struct{}
	once     sync.Once
}

func (c *Client) Done() <-chan struct{} { return c.done }

func (c *Client) Close() {
	c.once.Do(func() { close(c.done) })
}

// Hub fans progress updates out to connected SSE clients, keyed by trace id.
type Hub struct {
	mu            sync.RWMutex
	log           *logger.Logger
	subscriptions map[string]map[*Client]bool
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		log:           log.With("component", "SSEHub"),
		subscriptions: make(map[string]map[*Client]bool),
	}
}

func (h *Hub) Subscribe(traceID string) *Client {
	traceID = strings.TrimSpace(traceID)
	client := &Client{
		ID:       uuid.New(),
		TraceID:  traceID,
		Outbound: make(chan types.ProgressUpdate, 16),
		done:     make(chan struct{}),
	}
	if traceID == "" {
		client.Close()
		return client
	}

	h.mu.Lock()
	clients, ok := h.subscriptions[traceID]
	if !ok {
		clients = make(map[*Client]bool)
		h.subscriptions[traceID] = clients
	}
	clients[client] = true
	h.mu.Unlock()

	h.log.Debug("SSE client subscribed", "client_id", client.ID, "trace_id", traceID)
	return client
}

func (h *Hub) Unsubscribe(client *Client) {
	if client == nil {
		return
	}
	h.mu.Lock()
	if clients, ok := h.subscriptions[client.TraceID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.subscriptions, client.TraceID)
		}
	}
	h.mu.Unlock()
	client.Close()
}

// Broadcast pushes an update to every client on the trace. Slow clients
// drop frames rather than block the forwarder; the redis snapshot key
// remains the source of truth.
func (h *Hub) Broadcast(traceID string, update types.ProgressUpdate) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.subscriptions[traceID] {
		select {
		case client.Outbound <- update:
		default:
		}
	}
}
