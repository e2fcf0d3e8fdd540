package room

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"auction45/internal/domain"
)

// AllPassPolicy decides what happens when every occupied seat passes
// without a single bid having been placed. The base rules leave this
// undefined, so it is configurable.
type AllPassPolicy string

const (
	// AllPassRedeal throws the hands in and redeals with the same dealer.
	AllPassRedeal AllPassPolicy = "redeal"
	// AllPassDealerMin forces the dealer to the minimum bid and resolves
	// the auction to them.
	AllPassDealerMin AllPassPolicy = "dealer_min"
)

// Options tunes a room's rules. The zero value is usable: min players and
// the all-pass policy fall back to defaults and the rng is time-seeded.
type Options struct {
	MinPlayers int
	AllPass    AllPassPolicy
	Rng        *rand.Rand
}

// Player is a seated participant. Disconnecting keeps the seat reserved;
// only room teardown removes players.
type Player struct {
	ClientID  string
	Name      string
	Seat      int
	Connected bool
}

// SeatBid is one seat's auction record. Value 0 means no bid was placed;
// a passed seat keeps any earlier value for display.
type SeatBid struct {
	Seat   int  `json:"seatIndex"`
	Value  int  `json:"value"`
	Passed bool `json:"passed"`
}

// Trick is the in-flight trick: who led it and the plays so far.
type Trick struct {
	LeadSeat int           `json:"leadSeat"`
	Plays    []domain.Play `json:"plays"`
}

// ChatEntry is a relayed chat line. Seq increases monotonically per room so
// polling clients can resume exactly once after reconnect.
type ChatEntry struct {
	Seq  uint64 `json:"seq"`
	From string `json:"from"`
	Text string `json:"text"`
	Ts   int64  `json:"ts"`
}

// Scores holds cumulative team scores across rounds. May go negative.
type Scores struct {
	TeamA int `json:"teamA"`
	TeamB int `json:"teamB"`
}

// Room is the authoritative per-room game state machine. A single mutex
// serializes every mutation, so turn-order and bid-monotonicity checks
// always observe a consistent state. Actions either commit entirely or
// fail validation and leave state untouched.
type Room struct {
	id         string
	minPlayers int
	allPass    AllPassPolicy
	rng        *rand.Rand

	mu          sync.Mutex
	phase       domain.Phase
	hostID      string
	seats       [domain.SeatCount]string
	players     map[string]*Player
	dealerSeat  int
	currentTurn int
	bids        [domain.SeatCount]SeatBid
	highestBid  *domain.Bid
	trump       domain.Suit
	hands       map[int][]domain.Card
	trick       *Trick
	taken       domain.TrickCount
	scores      Scores
	chat        []ChatEntry
	chatSeq     uint64
	lastActive  time.Time
}

// New constructs an empty lobby-phase room.
func New(id string, opts Options) *Room {
	if opts.MinPlayers <= 0 {
		opts.MinPlayers = 2
	}
	if opts.AllPass == "" {
		opts.AllPass = AllPassRedeal
	}
	if opts.Rng == nil {
		opts.Rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Room{
		id:         id,
		minPlayers: opts.MinPlayers,
		allPass:    opts.AllPass,
		rng:        opts.Rng,
		phase:      domain.PhaseLobby,
		players:    make(map[string]*Player),
		hands:      make(map[int][]domain.Card),
		lastActive: time.Now(),
	}
}

// ID returns the room id.
func (r *Room) ID() string { return r.id }

// LastActive returns the time of the last successful mutation.
func (r *Room) LastActive() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastActive
}

// Info returns the discovery listing entry for this room.
func (r *Room) Info() Info {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Info{RoomID: r.id, OccupiedSeatCount: r.occupiedLocked(), Phase: r.phase}
}

// Join seats a new player or reconnects an existing one. Reconnection with
// a known clientID is idempotent: the seat and hand are untouched and no
// redeal happens. The first joiner becomes host.
func (r *Room) Join(clientID, name string) (*Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.players[clientID]; ok {
		p.Connected = true
		r.touchLocked()
		return r.snapshotLocked(clientID, 0), nil
	}

	seat := -1
	for i, occupant := range r.seats {
		if occupant == "" {
			seat = i
			break
		}
	}
	if seat == -1 {
		return nil, ErrRoomFull
	}

	if name == "" {
		name = "Player"
	}
	r.seats[seat] = clientID
	r.players[clientID] = &Player{ClientID: clientID, Name: name, Seat: seat, Connected: true}
	if r.hostID == "" {
		r.hostID = clientID
	}
	r.touchLocked()
	return r.snapshotLocked(clientID, 0), nil
}

// SetConnected flags a seat's presence without freeing it. Returns false if
// the clientID is unknown to this room.
func (r *Room) SetConnected(clientID string, connected bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[clientID]
	if !ok {
		return false
	}
	p.Connected = connected
	return true
}

// Start deals the first round. Host only, lobby phase only, and at least
// MinPlayers seats must be occupied. Unoccupied seats get no cards and are
// skipped in turn order.
func (r *Room) Start(clientID string) (*Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.players[clientID]; !ok {
		return nil, ErrUnknownPlayer
	}
	if r.phase != domain.PhaseLobby {
		return nil, fmt.Errorf("%w: game already started", ErrInvalidPhase)
	}
	if clientID != r.hostID {
		return nil, ErrNotHost
	}
	if r.occupiedLocked() < r.minPlayers {
		return nil, fmt.Errorf("%w: need at least %d", ErrTooFewPlayers, r.minPlayers)
	}

	r.dealLocked()
	r.touchLocked()
	return r.snapshotLocked(clientID, 0), nil
}

// PlaceBid records a bid for the caller's seat. The value must be a
// multiple of BidStep within [MinBid, MaxBid] and strictly above the
// current highest bid.
func (r *Room) PlaceBid(clientID string, value int) (*Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := r.actorLocked(clientID, domain.PhaseBidding)
	if err != nil {
		return nil, err
	}
	if p.Seat != r.currentTurn {
		return nil, ErrNotYourTurn
	}
	if value < domain.MinBid || value > domain.MaxBid || value%domain.BidStep != 0 {
		return nil, fmt.Errorf("%w: value must be a multiple of %d between %d and %d",
			ErrIllegalBid, domain.BidStep, domain.MinBid, domain.MaxBid)
	}
	prev := 0
	if r.highestBid != nil {
		prev = r.highestBid.Value
	}
	if value <= prev {
		return nil, fmt.Errorf("%w: must exceed the current highest bid of %d", ErrIllegalBid, prev)
	}

	r.bids[p.Seat] = SeatBid{Seat: p.Seat, Value: value, Passed: false}
	r.highestBid = &domain.Bid{Seat: p.Seat, Value: value}
	if !r.resolveBiddingLocked() {
		r.advanceBidTurnLocked(p.Seat)
	}
	r.touchLocked()
	return r.snapshotLocked(clientID, 0), nil
}

// PassBid marks the caller's seat as passed, keeping any earlier bid value
// for the record. Passed seats take no further bidding turns.
func (r *Room) PassBid(clientID string) (*Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := r.actorLocked(clientID, domain.PhaseBidding)
	if err != nil {
		return nil, err
	}
	if p.Seat != r.currentTurn {
		return nil, ErrNotYourTurn
	}

	r.bids[p.Seat] = SeatBid{Seat: p.Seat, Value: r.bids[p.Seat].Value, Passed: true}

	if r.allPassedWithoutBidLocked() {
		r.applyAllPassPolicyLocked()
	} else if !r.resolveBiddingLocked() {
		r.advanceBidTurnLocked(p.Seat)
	}
	r.touchLocked()
	return r.snapshotLocked(clientID, 0), nil
}

// SelectTrump lets the auction winner fix the trump suit and opens the
// first trick, led by the first occupied seat after the dealer.
func (r *Room) SelectTrump(clientID string, suit domain.Suit) (*Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := r.actorLocked(clientID, domain.PhaseSelectTrump)
	if err != nil {
		return nil, err
	}
	if r.highestBid == nil || p.Seat != r.highestBid.Seat {
		return nil, ErrNotBidWinner
	}
	if !suit.Valid() {
		return nil, ErrInvalidSuit
	}

	r.trump = suit
	r.currentTurn = r.nextOccupiedLocked(r.dealerSeat)
	r.phase = domain.PhasePlaying
	r.trick = &Trick{LeadSeat: r.currentTurn}
	r.touchLocked()
	return r.snapshotLocked(clientID, 0), nil
}

// PlayCard commits a card from the caller's hand to the current trick,
// enforcing follow-suit. A full trick resolves immediately; an empty set of
// hands ends the round and accrues scores.
func (r *Room) PlayCard(clientID, cardID string) (*Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := r.actorLocked(clientID, domain.PhasePlaying)
	if err != nil {
		return nil, err
	}
	if p.Seat != r.currentTurn {
		return nil, ErrNotYourTurn
	}

	hand := r.hands[p.Seat]
	cardIdx := -1
	for i, c := range hand {
		if c.ID == cardID {
			cardIdx = i
			break
		}
	}
	if cardIdx == -1 {
		return nil, ErrUnknownCard
	}
	card := hand[cardIdx]

	if len(r.trick.Plays) > 0 {
		lead := r.trick.Plays[0].Card.Suit
		if card.Suit != lead && holdsSuit(hand, lead) {
			return nil, fmt.Errorf("%w: lead suit is %s", ErrRuleViolation, lead)
		}
	}

	r.hands[p.Seat] = append(hand[:cardIdx:cardIdx], hand[cardIdx+1:]...)
	r.trick.Plays = append(r.trick.Plays, domain.Play{Seat: p.Seat, Card: card})

	if len(r.trick.Plays) < r.occupiedLocked() {
		r.currentTurn = r.nextOccupiedLocked(p.Seat)
	} else {
		r.resolveTrickLocked()
	}
	r.touchLocked()
	return r.snapshotLocked(clientID, 0), nil
}

// ReadyNextRound rotates the dealer to the next occupied seat and deals
// straight into a fresh bidding phase. Cumulative scores persist.
func (r *Room) ReadyNextRound(clientID string) (*Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.actorLocked(clientID, domain.PhaseRoundEnd); err != nil {
		return nil, err
	}

	r.dealerSeat = r.nextOccupiedLocked(r.dealerSeat)
	r.dealLocked()
	r.touchLocked()
	return r.snapshotLocked(clientID, 0), nil
}

// Chat appends a timestamped chat line with the next per-room sequence
// number. No rules apply; it is a plain pass-through log.
func (r *Room) Chat(clientID, text string) (ChatEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.players[clientID]
	if !ok {
		return ChatEntry{}, ErrUnknownPlayer
	}
	r.chatSeq++
	entry := ChatEntry{Seq: r.chatSeq, From: p.Name, Text: text, Ts: time.Now().UnixMilli()}
	r.chat = append(r.chat, entry)
	r.touchLocked()
	return entry, nil
}

// Snapshot returns the caller-scoped view of the room: own hand visible,
// other hands as counts. Chat entries with Seq <= sinceSeq are elided.
// Unknown clientIDs get a spectator view.
func (r *Room) Snapshot(clientID string, sinceSeq uint64) *Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked(clientID, sinceSeq)
}

// actorLocked resolves the calling player and checks the phase.
func (r *Room) actorLocked(clientID string, want domain.Phase) (*Player, error) {
	p, ok := r.players[clientID]
	if !ok {
		return nil, ErrUnknownPlayer
	}
	if r.phase != want {
		return nil, fmt.Errorf("%w: phase is %s", ErrInvalidPhase, r.phase)
	}
	return p, nil
}

func (r *Room) occupiedLocked() int {
	n := 0
	for _, occupant := range r.seats {
		if occupant != "" {
			n++
		}
	}
	return n
}

// nextOccupiedLocked returns the first occupied seat strictly after the
// given one, wrapping around. Empty seats are always skipped.
func (r *Room) nextOccupiedLocked(after int) int {
	for i := 1; i <= domain.SeatCount; i++ {
		seat := (after + i) % domain.SeatCount
		if r.seats[seat] != "" {
			return seat
		}
	}
	return after
}

// advanceBidTurnLocked moves the auction to the next occupied seat that has
// not passed yet.
func (r *Room) advanceBidTurnLocked(after int) {
	for i := 1; i <= domain.SeatCount; i++ {
		seat := (after + i) % domain.SeatCount
		if r.seats[seat] != "" && !r.bids[seat].Passed {
			r.currentTurn = seat
			return
		}
	}
}

// dealLocked shuffles a fresh deck, deals HandSize cards to each occupied
// seat and resets the round into bidding. The dealer seat is left as-is;
// callers rotate it when required.
func (r *Room) dealLocked() {
	deck := domain.Shuffle(domain.NewDeck(), r.rng)
	dealt := domain.Deal(deck, domain.SeatCount, domain.HandSize)
	r.hands = make(map[int][]domain.Card, domain.SeatCount)
	for seat := 0; seat < domain.SeatCount; seat++ {
		if r.seats[seat] != "" {
			r.hands[seat] = dealt[seat]
		}
	}

	r.phase = domain.PhaseBidding
	for seat := range r.bids {
		r.bids[seat] = SeatBid{Seat: seat}
	}
	r.highestBid = nil
	r.trump = ""
	r.trick = nil
	r.taken = domain.TrickCount{}
	r.currentTurn = r.nextOccupiedLocked(r.dealerSeat)
}

// resolveBiddingLocked closes the auction once every occupied seat but one
// has passed and a bid exists. The winner gets the turn to select trump.
func (r *Room) resolveBiddingLocked() bool {
	if r.highestBid == nil {
		return false
	}
	passed := 0
	for seat, occupant := range r.seats {
		if occupant != "" && r.bids[seat].Passed {
			passed++
		}
	}
	if passed < r.occupiedLocked()-1 {
		return false
	}
	r.phase = domain.PhaseSelectTrump
	r.currentTurn = r.highestBid.Seat
	return true
}

func (r *Room) allPassedWithoutBidLocked() bool {
	if r.highestBid != nil {
		return false
	}
	for seat, occupant := range r.seats {
		if occupant != "" && !r.bids[seat].Passed {
			return false
		}
	}
	return true
}

func (r *Room) applyAllPassPolicyLocked() {
	switch r.allPass {
	case AllPassDealerMin:
		r.bids[r.dealerSeat] = SeatBid{Seat: r.dealerSeat, Value: domain.MinBid}
		r.highestBid = &domain.Bid{Seat: r.dealerSeat, Value: domain.MinBid}
		r.phase = domain.PhaseSelectTrump
		r.currentTurn = r.dealerSeat
	default:
		r.dealLocked()
	}
}

// resolveTrickLocked scores a completed trick and either opens the next one
// led by the winner or, with all hands empty, ends the round.
func (r *Room) resolveTrickLocked() {
	lead := r.trick.Plays[0].Card.Suit
	winner := domain.TrickWinner(r.trick.Plays, lead, r.trump)
	if domain.SeatTeam(winner) == domain.TeamA {
		r.taken.TeamA++
	} else {
		r.taken.TeamB++
	}

	for seat, occupant := range r.seats {
		if occupant != "" && len(r.hands[seat]) > 0 {
			r.trick = &Trick{LeadSeat: winner}
			r.currentTurn = winner
			return
		}
	}

	deltaA, deltaB := domain.ScoreRound(r.taken, r.highestBid)
	r.scores.TeamA += deltaA
	r.scores.TeamB += deltaB
	r.trick = nil
	r.phase = domain.PhaseRoundEnd
}

func (r *Room) touchLocked() {
	r.lastActive = time.Now()
}

func holdsSuit(hand []domain.Card, suit domain.Suit) bool {
	for _, c := range hand {
		if c.Suit == suit {
			return true
		}
	}
	return false
}
