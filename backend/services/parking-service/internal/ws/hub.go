package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Occupancy is pushed to subscribers whenever a vehicle enters or exits.
type Occupancy struct {
	FreeSpaces int `json:"free_parking_spaces"`
	Occupied   int `json:"occupied"`
	Capacity   int `json:"capacity"`
}

// SnapshotFunc returns the occupancy sent to a subscriber right after it connects.
type SnapshotFunc func(ctx context.Context) (Occupancy, error)

type subscriber interface {
	ID() uuid.UUID
	Send(msg []byte) bool
	Ping() error
	Close()
}

// Hub tracks subscribers and fans occupancy updates out to them.
type Hub struct {
	mu           sync.RWMutex
	clients      map[uuid.UUID]subscriber
	pingInterval time.Duration
	writeTimeout time.Duration
	snapshot     SnapshotFunc
	logger       *zap.Logger
	upgrader     websocket.Upgrader
}

// NewHub builds hub.
func NewHub(pingInterval, writeTimeout time.Duration, logger *zap.Logger) *Hub {
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}
	return &Hub{
		clients:      make(map[uuid.UUID]subscriber),
		pingInterval: pingInterval,
		writeTimeout: writeTimeout,
		logger:       logger.With(zap.String("component", "occupancy_ws")),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// SetSnapshot installs the function used to greet new subscribers.
func (h *Hub) SetSnapshot(fn SnapshotFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.snapshot = fn
}

func (h *Hub) add(c subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.ID()] = c
}

func (h *Hub) remove(id uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, id)
}

// Count returns connected subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends the occupancy to every subscriber.
func (h *Hub) Broadcast(o Occupancy) {
	data, err := json.Marshal(o)
	if err != nil {
		h.logger.Error("failed to encode occupancy", zap.Error(err))
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		c.Send(data)
	}
}

// NotifyOccupancy broadcasts the current lot state.
func (h *Hub) NotifyOccupancy(occupied, capacity int) {
	free := capacity - occupied
	if free < 0 {
		free = 0
	}
	h.Broadcast(Occupancy{FreeSpaces: free, Occupied: occupied, Capacity: capacity})
}

// Start pings subscribers until ctx is done, then disconnects them.
func (h *Hub) Start(ctx context.Context) {
	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case <-ticker.C:
			h.pingAll()
		}
	}
}

// subscribers copies the client set so slow writes run without the lock.
func (h *Hub) subscribers() []subscriber {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]subscriber, 0, len(h.clients))
	for _, c := range h.clients {
		out = append(out, c)
	}
	return out
}

func (h *Hub) pingAll() {
	for _, c := range h.subscribers() {
		if err := c.Ping(); err != nil {
			h.logger.Debug("ping failed", zap.String("client_id", c.ID().String()), zap.Error(err))
		}
	}
}

func (h *Hub) closeAll() {
	for _, c := range h.subscribers() {
		c.Close()
	}
}

// HandleWS is HTTP handler for /ws/occupancy endpoint.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := newClient(conn, h.writeTimeout, h.logger, h.remove)
	h.add(client)
	h.logger.Info("subscriber connected", zap.String("client_id", client.ID().String()))

	h.mu.RLock()
	snapshot := h.snapshot
	h.mu.RUnlock()
	if snapshot != nil {
		if o, err := snapshot(r.Context()); err != nil {
			h.logger.Warn("failed to load occupancy snapshot", zap.Error(err))
		} else if data, err := json.Marshal(o); err == nil {
			client.Send(data)
		}
	}

	client.run()
	h.logger.Info("subscriber disconnected", zap.String("client_id", client.ID().String()))
}
