package net

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/felixge/httpsnoop"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"localboard/internal/logging"
	"localboard/internal/state"
)

const (
	sendBuffer = 256
	writeWait  = 10 * time.Second
)

// Hub relays frames between the websocket peers of each room. A frame from
// one connection is forwarded to every other connection of the same room,
// never back to its sender. Frames of one connection are forwarded in the
// order they were read.
type Hub struct {
	upgrader websocket.Upgrader

	mu    sync.RWMutex
	rooms map[string]mapset.Set[*client]
}

func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		rooms: map[string]mapset.Set[*client]{},
	}
}

// Handler returns the relay routes:
//
//	GET /rooms/{room}/ws?peer=<id>   websocket upgrade
//	GET /healthz                     room and peer counts
func (h *Hub) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(func(handler http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			m := httpsnoop.CaptureMetrics(handler, writer, request)
			logging.Logger().Info("handled", "method", request.Method, "url", request.URL, "duration", m.Duration, "status", m.Code)
		})
	})
	r.Methods(http.MethodGet).Path("/rooms/{room}/ws").HandlerFunc(h.serveWS)
	r.Methods(http.MethodGet).Path("/healthz").HandlerFunc(h.healthz)
	return r
}

// Peers returns how many connections are in room.
func (h *Hub) Peers(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if set, ok := h.rooms[room]; ok {
		return set.Cardinality()
	}
	return 0
}

// Broadcast queues data for every connection of room except exclude.
// Connections that cannot keep up are dropped.
func (h *Hub) Broadcast(room string, data []byte, exclude *client) {
	h.mu.RLock()
	set, ok := h.rooms[room]
	h.mu.RUnlock()
	if !ok {
		return
	}
	for _, c := range set.ToSlice() {
		if c == exclude {
			continue
		}
		if !c.queue(data) {
			logging.Logger().Warn("peer too slow, dropping it", "room", room, "peer", c.peer)
			h.unregister(c)
		}
	}
}

// Close disconnects every peer.
func (h *Hub) Close() {
	h.mu.Lock()
	var all []*client
	for _, set := range h.rooms {
		all = append(all, set.ToSlice()...)
	}
	clear(h.rooms)
	h.mu.Unlock()
	for _, c := range all {
		c.close()
		_ = c.conn.Close()
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	set, ok := h.rooms[c.room]
	if !ok {
		set = mapset.NewSet[*client]()
		h.rooms[c.room] = set
	}
	set.Add(c)
	n := set.Cardinality()
	h.mu.Unlock()
	logging.Logger().Info("peer joined", "room", c.room, "peer", c.peer, "peers", n)
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	set, ok := h.rooms[c.room]
	if ok {
		set.Remove(c)
		if set.Cardinality() == 0 {
			delete(h.rooms, c.room)
		}
	}
	h.mu.Unlock()
	if ok && c.close() {
		logging.Logger().Info("peer left", "room", c.room, "peer", c.peer)
	}
}

func (h *Hub) serveWS(w http.ResponseWriter, r *http.Request) {
	room := mux.Vars(r)["room"]
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Logger().Error("failed to upgrade", "err", err)
		return
	}
	c := &client{
		conn: conn,
		room: room,
		peer: r.URL.Query().Get("peer"),
		send: make(chan []byte, sendBuffer),
	}
	h.register(c)
	go c.writePump()
	go c.readPump(h)
}

func (h *Hub) healthz(w http.ResponseWriter, _ *http.Request) {
	h.mu.RLock()
	peers := map[string]int{}
	for room, set := range h.rooms {
		peers[room] = set.Cardinality()
	}
	h.mu.RUnlock()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{"status": "ok", "rooms": peers}); err != nil {
		logging.Logger().Error("failed to write out", "err", err)
	}
}

// client is one websocket connection held by the hub.
type client struct {
	conn *websocket.Conn
	room string
	peer string

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

// queue hands data to the write pump. It returns false when the connection
// is closed or its buffer is full.
func (c *client) queue(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// close stops the write pump. It reports whether this call closed it.
func (c *client) close() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	c.closed = true
	close(c.send)
	return true
}

func (c *client) readPump(h *Hub) {
	defer func() {
		h.unregister(c)
		_ = c.conn.Close()
	}()
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			logging.Logger().Debug("peer disconnected", "room", c.room, "peer", c.peer, "err", err)
			return
		}
		if _, err := state.Unmarshal(message); err != nil {
			logging.Logger().Warn("dropping malformed frame", "room", c.room, "peer", c.peer, "err", err)
			continue
		}
		h.Broadcast(c.room, message, c)
	}
}

func (c *client) writePump() {
	defer func() {
		_ = c.conn.Close()
	}()
	for message := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			logging.Logger().Warn("write to peer failed", "room", c.room, "peer", c.peer, "err", err)
			return
		}
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
