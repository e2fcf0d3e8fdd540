package rest

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"auction45/internal/domain"
	"auction45/internal/room"
	"auction45/pkg/response"
)

// Notifier is told about successful mutations so push transports can
// fan the new state out to their subscribers.
type Notifier interface {
	RoomChanged(roomID string)
}

// Handler serves the polling REST surface over the shared room registry.
type Handler struct {
	reg    *room.Registry
	notify Notifier
	log    *zap.Logger
}

// NewHandler builds a Handler. notify may be nil when no push transport
// is attached.
func NewHandler(reg *room.Registry, notify Notifier, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{reg: reg, notify: notify, log: log.Named("rest")}
}

type joinRequest struct {
	ClientID string `json:"clientId" binding:"required"`
	Name     string `json:"name"`
}

type clientRequest struct {
	ClientID string `json:"clientId" binding:"required"`
}

type bidRequest struct {
	ClientID string `json:"clientId" binding:"required"`
	Value    int    `json:"value" binding:"required"`
}

type trumpRequest struct {
	ClientID string `json:"clientId" binding:"required"`
	Suit     string `json:"suit" binding:"required"`
}

type playRequest struct {
	ClientID string `json:"clientId" binding:"required"`
	CardID   string `json:"cardId" binding:"required"`
}

type chatRequest struct {
	ClientID string `json:"clientId" binding:"required"`
	Text     string `json:"text" binding:"required"`
}

// ListRooms returns the discovery listing of every live room.
func (h *Handler) ListRooms(c *gin.Context) {
	response.Success(c, gin.H{"rooms": h.reg.List()})
}

// State returns the caller-scoped snapshot of a room. The optional since
// query prunes chat entries the client has already seen.
func (h *Handler) State(c *gin.Context) {
	r, ok := h.reg.Get(c.Param("id"))
	if !ok {
		response.Error(c, response.CodeRoomNotFound)
		return
	}
	since := uint64(0)
	if raw := c.Query("since"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			response.ErrorWithMsg(c, response.CodeInvalidParams, "since must be a non-negative integer")
			return
		}
		since = parsed
	}
	response.Success(c, r.Snapshot(c.Query("clientId"), since))
}

// Join seats the client in the room, creating the room on first join.
func (h *Handler) Join(c *gin.Context) {
	var req joinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithMsg(c, response.CodeInvalidParams, err.Error())
		return
	}

	roomID := c.Param("id")
	r := h.reg.GetOrCreate(roomID)
	snap, err := r.Join(req.ClientID, req.Name)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.log.Info("player joined",
		zap.String("roomId", roomID),
		zap.String("clientId", req.ClientID))
	h.changed(roomID)
	response.Success(c, snap)
}

// Start begins the game. Host only.
func (h *Handler) Start(c *gin.Context) {
	h.mutate(c, func(r *room.Room, clientID string) (*room.Snapshot, error) {
		return r.Start(clientID)
	})
}

// Bid places a bid for the caller's seat.
func (h *Handler) Bid(c *gin.Context) {
	var req bidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithMsg(c, response.CodeInvalidParams, err.Error())
		return
	}
	h.run(c, req.ClientID, func(r *room.Room) (*room.Snapshot, error) {
		return r.PlaceBid(req.ClientID, req.Value)
	})
}

// Pass passes the caller's bidding turn.
func (h *Handler) Pass(c *gin.Context) {
	h.mutate(c, func(r *room.Room, clientID string) (*room.Snapshot, error) {
		return r.PassBid(clientID)
	})
}

// Trump lets the auction winner fix the trump suit.
func (h *Handler) Trump(c *gin.Context) {
	var req trumpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithMsg(c, response.CodeInvalidParams, err.Error())
		return
	}
	h.run(c, req.ClientID, func(r *room.Room) (*room.Snapshot, error) {
		return r.SelectTrump(req.ClientID, domain.Suit(req.Suit))
	})
}

// Play commits a card to the current trick.
func (h *Handler) Play(c *gin.Context) {
	var req playRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithMsg(c, response.CodeInvalidParams, err.Error())
		return
	}
	h.run(c, req.ClientID, func(r *room.Room) (*room.Snapshot, error) {
		return r.PlayCard(req.ClientID, req.CardID)
	})
}

// Next deals the following round after a round ends.
func (h *Handler) Next(c *gin.Context) {
	h.mutate(c, func(r *room.Room, clientID string) (*room.Snapshot, error) {
		return r.ReadyNextRound(clientID)
	})
}

// Chat relays a chat line to the room.
func (h *Handler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithMsg(c, response.CodeInvalidParams, err.Error())
		return
	}

	r, ok := h.reg.Get(c.Param("id"))
	if !ok {
		response.Error(c, response.CodeRoomNotFound)
		return
	}
	entry, err := r.Chat(req.ClientID, req.Text)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.changed(r.ID())
	response.Success(c, entry)
}

// mutate handles the endpoints whose body is just a clientId.
func (h *Handler) mutate(c *gin.Context, op func(*room.Room, string) (*room.Snapshot, error)) {
	var req clientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithMsg(c, response.CodeInvalidParams, err.Error())
		return
	}
	h.run(c, req.ClientID, func(r *room.Room) (*room.Snapshot, error) {
		return op(r, req.ClientID)
	})
}

func (h *Handler) run(c *gin.Context, clientID string, op func(*room.Room) (*room.Snapshot, error)) {
	roomID := c.Param("id")
	r, ok := h.reg.Get(roomID)
	if !ok {
		response.Error(c, response.CodeRoomNotFound)
		return
	}
	snap, err := op(r)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.changed(roomID)
	response.Success(c, snap)
}

func (h *Handler) changed(roomID string) {
	if h.notify != nil {
		h.notify.RoomChanged(roomID)
	}
}

// fail maps room engine errors onto response codes, keeping the wrapped
// detail as the message.
func (h *Handler) fail(c *gin.Context, err error) {
	code := response.CodeServerError
	switch {
	case errors.Is(err, room.ErrRoomNotFound):
		code = response.CodeRoomNotFound
	case errors.Is(err, room.ErrRoomFull):
		code = response.CodeRoomFull
	case errors.Is(err, room.ErrUnknownPlayer):
		code = response.CodeUnknownPlayer
	case errors.Is(err, room.ErrNotHost):
		code = response.CodeNotHost
	case errors.Is(err, room.ErrTooFewPlayers):
		code = response.CodeTooFewPlayers
	case errors.Is(err, room.ErrInvalidPhase):
		code = response.CodeInvalidPhase
	case errors.Is(err, room.ErrNotYourTurn):
		code = response.CodeNotYourTurn
	case errors.Is(err, room.ErrIllegalBid):
		code = response.CodeIllegalBid
	case errors.Is(err, room.ErrNotBidWinner):
		code = response.CodeNotBidWinner
	case errors.Is(err, room.ErrInvalidSuit):
		code = response.CodeInvalidSuit
	case errors.Is(err, room.ErrUnknownCard):
		code = response.CodeUnknownCard
	case errors.Is(err, room.ErrRuleViolation):
		code = response.CodeRuleViolation
	default:
		h.log.Error("unmapped room error", zap.Error(err))
	}
	response.ErrorWithMsg(c, code, err.Error())
}
