package kds

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yeremiapane/dinecommand/models"
	"github.com/yeremiapane/dinecommand/services"
	"github.com/yeremiapane/dinecommand/store"
	"github.com/yeremiapane/dinecommand/utils"
)

// Event types
const (
	EventTableUpdate = "table_update"
	EventSnapshot    = "floor_snapshot"
)

const writeWait = 5 * time.Second

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// TablePayload is a table as seen by one role plus the floor stats.
type TablePayload struct {
	Table models.Table `json:"table"`
	Stats store.Stats  `json:"stats"`
}

// SnapshotPayload is sent once when a client connects.
type SnapshotPayload struct {
	Tables []models.Table `json:"tables"`
	Stats  store.Stats    `json:"stats"`
}

// Conn is the part of *websocket.Conn the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// client serializes writes to one connection; gorilla allows a single writer.
type client struct {
	conn Conn
	role models.Role
	mu   sync.Mutex
}

func (c *client) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// FloorHub menampung semua client floor view (server, host, manager) dan
// menyiarkan perubahan meja dengan alert yang sudah difilter per role.
type FloorHub struct {
	clients map[Conn]*client
	mutex   sync.Mutex
}

func NewFloorHub() *FloorHub {
	return &FloorHub{clients: make(map[Conn]*client)}
}

// RegisterClient -> menambahkan connection ke set dengan role
func (h *FloorHub) RegisterClient(conn Conn, role models.Role) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[conn] = &client{conn: conn, role: role}
	utils.InfoLogger.Printf("Floor client registered (role=%s, clients=%d)", role, len(h.clients))
}

// UnregisterClient -> melepaskan connection
func (h *FloorHub) UnregisterClient(conn Conn) {
	h.mutex.Lock()
	_, ok := h.clients[conn]
	delete(h.clients, conn)
	h.mutex.Unlock()
	if ok {
		conn.Close()
	}
}

func (h *FloorHub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

func (h *FloorHub) lookup(conn Conn, role models.Role) *client {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if c, ok := h.clients[conn]; ok {
		return c
	}
	return &client{conn: conn, role: role}
}

// snapshot copies the client set so writes happen without the hub lock.
func (h *FloorHub) snapshot() []*client {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	out := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		out = append(out, c)
	}
	return out
}

// SendSnapshot writes the current floor, filtered for role, to a single client.
func (h *FloorHub) SendSnapshot(conn Conn, role models.Role, tables []models.Table, stats store.Stats) error {
	view := make([]models.Table, 0, len(tables))
	for _, t := range tables {
		view = append(view, services.WithRoleView(t, role))
	}
	data, err := json.Marshal(Message{Event: EventSnapshot, Data: SnapshotPayload{Tables: view, Stats: stats}})
	if err != nil {
		return err
	}
	return h.lookup(conn, role).write(data)
}

// BroadcastTableUpdate sends change to every client, with alerts filtered
// for that client's role. One payload is encoded per role, not per client.
// Sockets are written outside the hub lock, so a slow client only delays
// this broadcast, never registration.
func (h *FloorHub) BroadcastTableUpdate(change store.Change) {
	encoded := make(map[models.Role][]byte)
	for _, c := range h.snapshot() {
		data, ok := encoded[c.role]
		if !ok {
			var err error
			data, err = json.Marshal(Message{
				Event: EventTableUpdate,
				Data:  TablePayload{Table: services.WithRoleView(change.Table, c.role), Stats: change.Stats},
			})
			if err != nil {
				utils.ErrorLogger.Printf("Error marshaling message: %v", err)
				return
			}
			encoded[c.role] = data
		}

		if err := c.write(data); err != nil {
			utils.ErrorLogger.Printf("Error sending message to client (role=%s): %v", c.role, err)
			h.drop(c)
		}
	}
}

// drop removes c unless the connection was registered again meanwhile.
func (h *FloorHub) drop(c *client) {
	h.mutex.Lock()
	cur, ok := h.clients[c.conn]
	if ok && cur == c {
		delete(h.clients, c.conn)
	}
	h.mutex.Unlock()
	if ok && cur == c {
		c.conn.Close()
	}
}

// Run forwards store changes to clients until ctx ends or changes closes.
func (h *FloorHub) Run(ctx context.Context, changes <-chan store.Change) {
	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-changes:
			if !ok {
				return
			}
			h.BroadcastTableUpdate(change)
		}
	}
}
