package room

import "auction45/internal/domain"

// Info is the discovery listing entry for a room.
type Info struct {
	RoomID            string       `json:"roomId"`
	OccupiedSeatCount int          `json:"occupiedSeatCount"`
	Phase             domain.Phase `json:"phase"`
}

// SeatView is the public view of one seat. Empty seats carry an empty id.
type SeatView struct {
	ClientID       string `json:"id"`
	Name           string `json:"name"`
	SeatIndex      int    `json:"seatIndex"`
	Connected      bool   `json:"connected"`
	CardsRemaining int    `json:"cardsRemaining"`
}

// YouView identifies the requesting client's own seat.
type YouView struct {
	ClientID  string `json:"id"`
	SeatIndex int    `json:"seatIndex"`
}

// Snapshot is a caller-scoped, immutable copy of room state, safe to hand
// to any transport. Only the requesting client's hand is included; other
// seats expose card counts.
type Snapshot struct {
	RoomID      string            `json:"roomId"`
	Phase       domain.Phase      `json:"phase"`
	HostID      string            `json:"hostId"`
	Players     []SeatView        `json:"players"`
	You         *YouView          `json:"you"`
	Hand        []domain.Card     `json:"hand"`
	Trump       domain.Suit       `json:"trump,omitempty"`
	CurrentTurn int               `json:"currentTurn"`
	DealerSeat  int               `json:"dealerSeat"`
	Bids        []SeatBid         `json:"bids"`
	HighestBid  *domain.Bid       `json:"highestBid,omitempty"`
	Trick       *Trick            `json:"trick,omitempty"`
	TakenTricks domain.TrickCount `json:"takenTricks"`
	Scores      Scores            `json:"scores"`
	Chat        []ChatEntry       `json:"chat"`
	ChatSeq     uint64            `json:"chatSeq"`
}

func (r *Room) snapshotLocked(clientID string, sinceSeq uint64) *Snapshot {
	snap := &Snapshot{
		RoomID:      r.id,
		Phase:       r.phase,
		HostID:      r.hostID,
		Players:     make([]SeatView, domain.SeatCount),
		CurrentTurn: r.currentTurn,
		DealerSeat:  r.dealerSeat,
		TakenTricks: r.taken,
		Scores:      r.scores,
		ChatSeq:     r.chatSeq,
	}

	for seat, occupant := range r.seats {
		view := SeatView{Name: "(empty)", SeatIndex: seat}
		if occupant != "" {
			p := r.players[occupant]
			view.ClientID = p.ClientID
			view.Name = p.Name
			view.Connected = p.Connected
			view.CardsRemaining = len(r.hands[seat])
		}
		snap.Players[seat] = view
	}

	if p, ok := r.players[clientID]; ok {
		snap.You = &YouView{ClientID: p.ClientID, SeatIndex: p.Seat}
		hand := r.hands[p.Seat]
		snap.Hand = make([]domain.Card, len(hand))
		copy(snap.Hand, hand)
	}

	if r.phase != domain.PhaseLobby {
		snap.Bids = make([]SeatBid, domain.SeatCount)
		copy(snap.Bids, r.bids[:])
	}
	if r.highestBid != nil {
		bid := *r.highestBid
		snap.HighestBid = &bid
	}
	snap.Trump = r.trump

	if r.trick != nil {
		trick := &Trick{LeadSeat: r.trick.LeadSeat, Plays: make([]domain.Play, len(r.trick.Plays))}
		copy(trick.Plays, r.trick.Plays)
		snap.Trick = trick
	}

	for _, entry := range r.chat {
		if entry.Seq > sinceSeq {
			snap.Chat = append(snap.Chat, entry)
		}
	}

	return snap
}
