package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/mudra/internal/source"
)

const (
	writeWait  = 5 * time.Second
	pingPeriod = 30 * time.Second
	// queued messages per observer; older frames are dropped first
	sendBuffer = 8
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // phones on the LAN send from their own origin
	},
}

// Hub relays hand skeletons from senders to observers in the same room
// and keeps the latest skeleton of every room.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[string]*room
	logger *log.Logger
	now    func() time.Time
}

type room struct {
	observers map[*client]struct{}
	senders   int
	latest    *source.LatestData
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub returns an empty hub.
func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{
		rooms:  make(map[string]*room),
		logger: logger,
		now:    time.Now,
	}
}

func (h *Hub) roomLocked(id string) *room {
	r, ok := h.rooms[id]
	if !ok {
		r = &room{observers: make(map[*client]struct{})}
		h.rooms[id] = r
	}
	return r
}

// Publish stores msg as the room's latest skeleton and forwards it to
// the room's observers.
func (h *Hub) Publish(roomID string, msg source.Message) {
	if roomID == "" {
		roomID = source.DefaultRoom
	}
	now := h.now().UnixMilli()
	msg.RoomID = roomID
	if msg.Type == "" {
		msg.Type = source.MessageType
	}
	if msg.Timestamp == 0 {
		msg.Timestamp = now
	}
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Printf("Dropping skeleton for room %s: %v", roomID, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	r := h.roomLocked(roomID)
	r.latest = &source.LatestData{
		Skeleton:  msg.Skeleton,
		Hands:     msg.Hands,
		UpdatedAt: now,
		SenderID:  msg.SenderID,
	}
	for c := range r.observers {
		select {
		case c.send <- data:
		default:
			// observer is behind; skip this frame
		}
	}
}

// Latest returns the latest skeleton of a room.
func (h *Hub) Latest(roomID string) source.Latest {
	if roomID == "" {
		roomID = source.DefaultRoom
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := source.Latest{RoomID: roomID}
	if r, ok := h.rooms[roomID]; ok && r.latest != nil {
		d := *r.latest
		out.Data = &d
	}
	return out
}

// Stats reports the number of rooms and connected clients.
func (h *Hub) Stats() (rooms, senders, observers int) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, r := range h.rooms {
		rooms++
		senders += r.senders
		observers += len(r.observers)
	}
	return rooms, senders, observers
}

// ServeHTTP upgrades /api/landmarks?room=..&role=.. to a WebSocket.
// Senders push skeleton messages; observers receive them.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	roomID := r.URL.Query().Get("room")
	if roomID == "" {
		roomID = source.DefaultRoom
	}
	role := r.URL.Query().Get("role")
	if role == "" {
		role = source.RoleSender
	}
	if role != source.RoleSender && role != source.RoleObserver {
		http.Error(w, "role must be sender or observer", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("websocket upgrade error: %v", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	h.join(roomID, role, c)
	h.logger.Printf("%s joined room %s", role, roomID)

	done := make(chan struct{})
	go func() {
		c.writePump()
		close(done)
	}()

	h.readPump(roomID, role, c)

	h.leave(roomID, role, c)
	close(c.send)
	<-done
	conn.Close()
	h.logger.Printf("%s left room %s", role, roomID)
}

func (h *Hub) join(roomID, role string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r := h.roomLocked(roomID)
	if role == source.RoleObserver {
		r.observers[c] = struct{}{}
	} else {
		r.senders++
	}
}

func (h *Hub) leave(roomID, role string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r := h.roomLocked(roomID)
	if role == source.RoleObserver {
		delete(r.observers, c)
	} else {
		r.senders--
	}
}

func (h *Hub) readPump(roomID, role string, c *client) {
	c.conn.SetReadLimit(1 << 20)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if role != source.RoleSender {
			continue
		}
		var msg source.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			h.logger.Printf("Ignoring malformed skeleton in room %s: %v", roomID, err)
			continue
		}
		h.Publish(roomID, msg)
	}
}

func (c *client) writePump() {
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.conn.Close()
				drain(c.send)
				return
			}
		case <-ping.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.conn.Close()
				drain(c.send)
				return
			}
		}
	}
}

// drain consumes the send queue until the hub closes it.
func drain(ch <-chan []byte) {
	for range ch {
	}
}

// handleLatest serves GET /api/landmarks/latest?room_id=..
func (h *Hub) handleLatest(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Latest(r.URL.Query().Get("room_id")))
}

// handlePost accepts a skeleton over plain HTTP for senders without
// WebSocket support.
func (h *Hub) handlePost(w http.ResponseWriter, r *http.Request) {
	var msg source.Message
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&msg); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid skeleton message")
		return
	}
	roomID := msg.RoomID
	if q := r.URL.Query().Get("room"); q != "" {
		roomID = q
	}
	h.Publish(roomID, msg)
	w.WriteHeader(http.StatusNoContent)
}
