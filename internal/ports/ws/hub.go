package ws

import (
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"auction45/internal/domain"
	"auction45/internal/room"
)

// inMsg is the flat client message. Type selects the action; the other
// fields are read per action.
type inMsg struct {
	Type     string `json:"type"`
	RoomID   string `json:"roomId,omitempty"`
	ClientID string `json:"clientId,omitempty"`
	Name     string `json:"name,omitempty"`
	Value    int    `json:"value,omitempty"`
	Suit     string `json:"suit,omitempty"`
	CardID   string `json:"cardId,omitempty"`
	Text     string `json:"text,omitempty"`
}

type outState struct {
	Type string `json:"type"`
	*room.Snapshot
}

type outChat struct {
	Type string `json:"type"`
	room.ChatEntry
}

type outRooms struct {
	Type  string      `json:"type"`
	Rooms []room.Info `json:"rooms"`
}

type outError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Hub owns every websocket connection and fans scoped snapshots out to
// room members after each successful mutation. It also implements the
// REST adapter's Notifier so polling-side mutations get pushed too.
type Hub struct {
	reg      *room.Registry
	upgrader websocket.Upgrader
	log      *zap.Logger

	mu    sync.Mutex
	rooms map[string]map[*Client]struct{}
}

func NewHub(reg *room.Registry, log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		reg: reg,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log:   log.Named("ws"),
		rooms: make(map[string]map[*Client]struct{}),
	}
}

// ServeHTTP upgrades the request and runs the connection's pumps. The
// handler returns when the read side drops.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("upgrade failed", zap.Error(err))
		return
	}
	c := &Client{hub: h, ws: conn, send: make(chan []byte, sendBuffer)}
	go c.writePump()
	c.readPump()
}

// RoomChanged pushes each member of the room their own scoped snapshot.
func (h *Hub) RoomChanged(roomID string) {
	r, ok := h.reg.Get(roomID)
	if !ok {
		return
	}
	h.mu.Lock()
	members := make([]*Client, 0, len(h.rooms[roomID]))
	for c := range h.rooms[roomID] {
		members = append(members, c)
	}
	h.mu.Unlock()

	for _, c := range members {
		c.enqueue(outState{Type: "state", Snapshot: r.Snapshot(c.clientID, 0)})
	}
}

func (h *Hub) dispatch(c *Client, msg inMsg) {
	switch msg.Type {
	case "create_room", "join_room":
		h.join(c, msg)
	case "list_rooms":
		c.enqueue(outRooms{Type: "rooms", Rooms: h.reg.List()})
	case "start_game":
		h.act(c, func(r *room.Room) (*room.Snapshot, error) {
			return r.Start(c.clientID)
		})
	case "place_bid":
		h.act(c, func(r *room.Room) (*room.Snapshot, error) {
			return r.PlaceBid(c.clientID, msg.Value)
		})
	case "pass_bid":
		h.act(c, func(r *room.Room) (*room.Snapshot, error) {
			return r.PassBid(c.clientID)
		})
	case "select_trump":
		h.act(c, func(r *room.Room) (*room.Snapshot, error) {
			return r.SelectTrump(c.clientID, domain.Suit(msg.Suit))
		})
	case "play_card":
		h.act(c, func(r *room.Room) (*room.Snapshot, error) {
			return r.PlayCard(c.clientID, msg.CardID)
		})
	case "ready_next_round":
		h.act(c, func(r *room.Room) (*room.Snapshot, error) {
			return r.ReadyNextRound(c.clientID)
		})
	case "chat":
		h.chat(c, msg.Text)
	default:
		c.sendError("unknown message type: " + msg.Type)
	}
}

// join seats the connection in a room, creating it on first reference.
// create_room with no roomId generates a short code. A client-supplied
// clientId reattaches an existing seat after reconnect.
func (h *Hub) join(c *Client, msg inMsg) {
	if c.roomID != "" {
		c.sendError("already in a room")
		return
	}
	roomID := strings.ToUpper(msg.RoomID)
	if roomID == "" {
		if msg.Type == "join_room" {
			c.sendError("roomId is required")
			return
		}
		roomID = strings.ToUpper(uuid.NewString()[:6])
	}
	clientID := msg.ClientID
	if clientID == "" {
		clientID = uuid.NewString()
	}

	r := h.reg.GetOrCreate(roomID)
	snap, err := r.Join(clientID, msg.Name)
	if err != nil {
		c.sendError(err.Error())
		return
	}

	c.clientID = clientID
	c.roomID = roomID
	h.mu.Lock()
	set, ok := h.rooms[roomID]
	if !ok {
		set = make(map[*Client]struct{})
		h.rooms[roomID] = set
	}
	set[c] = struct{}{}
	h.mu.Unlock()

	h.log.Info("client joined",
		zap.String("roomId", roomID),
		zap.String("clientId", clientID))
	c.enqueue(outState{Type: "state", Snapshot: snap})
	h.RoomChanged(roomID)
}

// act runs a mutation for a seated connection and broadcasts on success.
func (h *Hub) act(c *Client, op func(*room.Room) (*room.Snapshot, error)) {
	if c.roomID == "" {
		c.sendError("join or create a room first")
		return
	}
	r, ok := h.reg.Get(c.roomID)
	if !ok {
		c.sendError("room not found")
		return
	}
	if _, err := op(r); err != nil {
		c.sendError(err.Error())
		return
	}
	h.RoomChanged(c.roomID)
}

func (h *Hub) chat(c *Client, text string) {
	if c.roomID == "" {
		c.sendError("join or create a room first")
		return
	}
	r, ok := h.reg.Get(c.roomID)
	if !ok {
		c.sendError("room not found")
		return
	}
	entry, err := r.Chat(c.clientID, text)
	if err != nil {
		c.sendError(err.Error())
		return
	}

	h.mu.Lock()
	members := make([]*Client, 0, len(h.rooms[c.roomID]))
	for member := range h.rooms[c.roomID] {
		members = append(members, member)
	}
	h.mu.Unlock()
	for _, member := range members {
		member.enqueue(outChat{Type: "chat", ChatEntry: entry})
	}
}

// detach drops a closed connection. The seat stays reserved so the same
// clientId can reconnect; the room itself is torn down once its last
// connection is gone.
func (h *Hub) detach(c *Client) {
	if c.roomID == "" {
		return
	}

	h.mu.Lock()
	set := h.rooms[c.roomID]
	delete(set, c)
	empty := len(set) == 0
	if empty {
		delete(h.rooms, c.roomID)
	}
	h.mu.Unlock()

	if r, ok := h.reg.Get(c.roomID); ok {
		r.SetConnected(c.clientID, false)
	}
	if empty {
		h.reg.Remove(c.roomID)
		h.log.Info("room torn down", zap.String("roomId", c.roomID))
		return
	}
	h.RoomChanged(c.roomID)
}
