package room

import (
	"errors"
	"fmt"
	"math/rand"
	"reflect"
	"testing"

	"auction45/internal/domain"
)

func testRoom(t *testing.T, players int, opts Options) *Room {
	t.Helper()
	if opts.Rng == nil {
		opts.Rng = rand.New(rand.NewSource(42))
	}
	r := New("TEST", opts)
	for i := 0; i < players; i++ {
		if _, err := r.Join(fmt.Sprintf("c%d", i), fmt.Sprintf("p%d", i)); err != nil {
			t.Fatalf("join c%d: %v", i, err)
		}
	}
	return r
}

func TestJoinAssignsSeatsAndHost(t *testing.T) {
	r := testRoom(t, 4, Options{})

	for i := 0; i < 4; i++ {
		if r.seats[i] != fmt.Sprintf("c%d", i) {
			t.Fatalf("seat %d = %q", i, r.seats[i])
		}
	}
	if r.hostID != "c0" {
		t.Fatalf("host = %q, want c0", r.hostID)
	}
	if _, err := r.Join("c4", "late"); !errors.Is(err, ErrRoomFull) {
		t.Fatalf("fifth join err = %v, want ErrRoomFull", err)
	}
}

func TestRejoinIsIdempotent(t *testing.T) {
	r := testRoom(t, 4, Options{})
	if _, err := r.Start("c0"); err != nil {
		t.Fatalf("start: %v", err)
	}

	before := r.Snapshot("c1", 0)
	snap, err := r.Join("c1", "p1")
	if err != nil {
		t.Fatalf("rejoin: %v", err)
	}
	if snap.You.SeatIndex != 1 {
		t.Fatalf("rejoin seat = %d, want 1", snap.You.SeatIndex)
	}
	// No redeal, no phase change.
	if snap.Phase != before.Phase || !reflect.DeepEqual(snap.Hand, before.Hand) {
		t.Fatalf("rejoin mutated round state")
	}
}

func TestStartValidation(t *testing.T) {
	r := testRoom(t, 1, Options{})
	if _, err := r.Start("c0"); !errors.Is(err, ErrTooFewPlayers) {
		t.Fatalf("solo start err = %v, want ErrTooFewPlayers", err)
	}

	r = testRoom(t, 4, Options{})
	if _, err := r.Start("c1"); !errors.Is(err, ErrNotHost) {
		t.Fatalf("non-host start err = %v, want ErrNotHost", err)
	}
	snap, err := r.Start("c0")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if snap.Phase != domain.PhaseBidding {
		t.Fatalf("phase = %s, want bidding", snap.Phase)
	}
	if snap.DealerSeat != 0 || snap.CurrentTurn != 1 {
		t.Fatalf("dealer/turn = %d/%d, want 0/1", snap.DealerSeat, snap.CurrentTurn)
	}
	for seat := 0; seat < 4; seat++ {
		if got := len(r.hands[seat]); got != domain.HandSize {
			t.Fatalf("seat %d hand = %d cards, want %d", seat, got, domain.HandSize)
		}
	}
	if _, err := r.Start("c0"); !errors.Is(err, ErrInvalidPhase) {
		t.Fatalf("double start err = %v, want ErrInvalidPhase", err)
	}
}

func TestBiddingFlow(t *testing.T) {
	r := testRoom(t, 4, Options{})
	if _, err := r.Start("c0"); err != nil {
		t.Fatalf("start: %v", err)
	}

	if _, err := r.PlaceBid("c2", 20); !errors.Is(err, ErrNotYourTurn) {
		t.Fatalf("out-of-turn bid err = %v, want ErrNotYourTurn", err)
	}
	for _, bad := range []int{10, 50, 17, 0, -5} {
		if _, err := r.PlaceBid("c1", bad); !errors.Is(err, ErrIllegalBid) {
			t.Fatalf("bid %d err = %v, want ErrIllegalBid", bad, err)
		}
	}

	if _, err := r.PlaceBid("c1", 20); err != nil {
		t.Fatalf("bid 20: %v", err)
	}
	// Equal bid is not a raise.
	if _, err := r.PlaceBid("c2", 20); !errors.Is(err, ErrIllegalBid) {
		t.Fatalf("equal bid err = %v, want ErrIllegalBid", err)
	}

	if _, err := r.PassBid("c2"); err != nil {
		t.Fatalf("pass c2: %v", err)
	}
	if _, err := r.PassBid("c3"); err != nil {
		t.Fatalf("pass c3: %v", err)
	}
	snap, err := r.PassBid("c0")
	if err != nil {
		t.Fatalf("pass c0: %v", err)
	}

	if snap.Phase != domain.PhaseSelectTrump {
		t.Fatalf("phase = %s, want select_trump", snap.Phase)
	}
	if snap.CurrentTurn != 1 {
		t.Fatalf("turn = %d, want highest bidder 1", snap.CurrentTurn)
	}
	if snap.HighestBid == nil || snap.HighestBid.Seat != 1 || snap.HighestBid.Value != 20 {
		t.Fatalf("highestBid = %+v, want {1 20}", snap.HighestBid)
	}
}

func TestBidAfterPassKeepsRecordedValue(t *testing.T) {
	r := testRoom(t, 4, Options{})
	if _, err := r.Start("c0"); err != nil {
		t.Fatalf("start: %v", err)
	}

	if _, err := r.PlaceBid("c1", 15); err != nil {
		t.Fatalf("bid: %v", err)
	}
	if _, err := r.PlaceBid("c2", 20); err != nil {
		t.Fatalf("raise: %v", err)
	}
	if _, err := r.PassBid("c3"); err != nil {
		t.Fatalf("pass: %v", err)
	}
	if _, err := r.PassBid("c0"); err != nil {
		t.Fatalf("pass: %v", err)
	}
	snap, err := r.PassBid("c1")
	if err != nil {
		t.Fatalf("pass after bid: %v", err)
	}

	if !snap.Bids[1].Passed || snap.Bids[1].Value != 15 {
		t.Fatalf("seat 1 bid record = %+v, want passed with value 15", snap.Bids[1])
	}
	if snap.Phase != domain.PhaseSelectTrump || snap.CurrentTurn != 2 {
		t.Fatalf("resolution = %s/turn %d, want select_trump/2", snap.Phase, snap.CurrentTurn)
	}
}

func TestSelectTrumpOpensPlay(t *testing.T) {
	r := biddingWon(t, Options{})

	if _, err := r.SelectTrump("c2", domain.SuitHearts); !errors.Is(err, ErrNotBidWinner) {
		t.Fatalf("wrong seat trump err = %v, want ErrNotBidWinner", err)
	}
	if _, err := r.SelectTrump("c1", domain.Suit("X")); !errors.Is(err, ErrInvalidSuit) {
		t.Fatalf("bad suit err = %v, want ErrInvalidSuit", err)
	}

	snap, err := r.SelectTrump("c1", domain.SuitHearts)
	if err != nil {
		t.Fatalf("select trump: %v", err)
	}
	if snap.Phase != domain.PhasePlaying || snap.Trump != domain.SuitHearts {
		t.Fatalf("phase/trump = %s/%s", snap.Phase, snap.Trump)
	}
	// Seat left of dealer 0 leads.
	if snap.CurrentTurn != 1 || snap.Trick == nil || snap.Trick.LeadSeat != 1 {
		t.Fatalf("turn/lead = %d/%+v, want 1", snap.CurrentTurn, snap.Trick)
	}
}

// biddingWon drives a fresh 4-player room to select_trump with seat 1
// holding a bid of 20.
func biddingWon(t *testing.T, opts Options) *Room {
	t.Helper()
	r := testRoom(t, 4, opts)
	if _, err := r.Start("c0"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := r.PlaceBid("c1", 20); err != nil {
		t.Fatalf("bid: %v", err)
	}
	for _, c := range []string{"c2", "c3", "c0"} {
		if _, err := r.PassBid(c); err != nil {
			t.Fatalf("pass %s: %v", c, err)
		}
	}
	return r
}

func TestPlayCardOutOfTurnLeavesStateUntouched(t *testing.T) {
	r := biddingWon(t, Options{})
	if _, err := r.SelectTrump("c1", domain.SuitHearts); err != nil {
		t.Fatalf("select trump: %v", err)
	}

	before := r.Snapshot("c2", 0)
	someCard := r.hands[2][0].ID
	if _, err := r.PlayCard("c2", someCard); !errors.Is(err, ErrNotYourTurn) {
		t.Fatalf("err = %v, want ErrNotYourTurn", err)
	}
	after := r.Snapshot("c2", 0)
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("failed action mutated state:\nbefore %+v\nafter  %+v", before, after)
	}
}

func TestPlayCardUnknownCard(t *testing.T) {
	r := biddingWon(t, Options{})
	if _, err := r.SelectTrump("c1", domain.SuitHearts); err != nil {
		t.Fatalf("select trump: %v", err)
	}
	if _, err := r.PlayCard("c1", "not-a-card"); !errors.Is(err, ErrUnknownCard) {
		t.Fatalf("err = %v, want ErrUnknownCard", err)
	}
}

func TestFollowSuitEnforced(t *testing.T) {
	r := biddingWon(t, Options{})
	if _, err := r.SelectTrump("c1", domain.SuitHearts); err != nil {
		t.Fatalf("select trump: %v", err)
	}

	// Craft hands for a controlled trick: seat 1 leads clubs, seat 2 holds
	// a club and must not discard the spade.
	lead := domain.Card{Suit: domain.SuitClubs, Rank: domain.RankAce, ID: "lead"}
	club := domain.Card{Suit: domain.SuitClubs, Rank: domain.RankTwo, ID: "club"}
	spade := domain.Card{Suit: domain.SuitSpades, Rank: domain.RankKing, ID: "spade"}
	r.hands[1] = []domain.Card{lead}
	r.hands[2] = []domain.Card{club, spade}

	if _, err := r.PlayCard("c1", "lead"); err != nil {
		t.Fatalf("lead play: %v", err)
	}
	if _, err := r.PlayCard("c2", "spade"); !errors.Is(err, ErrRuleViolation) {
		t.Fatalf("off-suit err = %v, want ErrRuleViolation", err)
	}
	if got := len(r.hands[2]); got != 2 {
		t.Fatalf("failed play changed hand size to %d", got)
	}
	if _, err := r.PlayCard("c2", "club"); err != nil {
		t.Fatalf("follow play: %v", err)
	}
	if _, err := r.PlayCard("c2", "spade"); !errors.Is(err, ErrNotYourTurn) {
		t.Fatalf("second play same turn err = %v", err)
	}
}

// playOut drives the current round to round_end, always following suit
// when possible.
func playOut(t *testing.T, r *Room) {
	t.Helper()
	for r.phase == domain.PhasePlaying {
		seat := r.currentTurn
		client := r.seats[seat]
		hand := r.hands[seat]
		card := hand[0]
		if len(r.trick.Plays) > 0 {
			lead := r.trick.Plays[0].Card.Suit
			for _, c := range hand {
				if c.Suit == lead {
					card = c
					break
				}
			}
		}
		if _, err := r.PlayCard(client, card.ID); err != nil {
			t.Fatalf("playOut seat %d: %v", seat, err)
		}
	}
}

func TestFullRoundScoresAndRotates(t *testing.T) {
	r := biddingWon(t, Options{})
	if _, err := r.SelectTrump("c1", domain.SuitHearts); err != nil {
		t.Fatalf("select trump: %v", err)
	}
	bid := *r.highestBid

	playOut(t, r)

	if r.phase != domain.PhaseRoundEnd {
		t.Fatalf("phase = %s, want round_end", r.phase)
	}
	if got := r.taken.TeamA + r.taken.TeamB; got != domain.HandSize {
		t.Fatalf("tricks taken = %d, want %d", got, domain.HandSize)
	}
	wantA, wantB := domain.ScoreRound(r.taken, &bid)
	if r.scores.TeamA != wantA || r.scores.TeamB != wantB {
		t.Fatalf("scores = %+v, want (%d, %d)", r.scores, wantA, wantB)
	}
	for seat := 0; seat < 4; seat++ {
		if len(r.hands[seat]) != 0 {
			t.Fatalf("seat %d still holds cards after round end", seat)
		}
	}

	scoresBefore := r.scores
	snap, err := r.ReadyNextRound("c3")
	if err != nil {
		t.Fatalf("ready next round: %v", err)
	}
	if snap.DealerSeat != 1 {
		t.Fatalf("dealer = %d, want rotated to 1", snap.DealerSeat)
	}
	if snap.Phase != domain.PhaseBidding || snap.CurrentTurn != 2 {
		t.Fatalf("next round phase/turn = %s/%d, want bidding/2", snap.Phase, snap.CurrentTurn)
	}
	if snap.Scores != scoresBefore {
		t.Fatalf("scores reset across rounds: %+v", snap.Scores)
	}
	if snap.Trump != "" || snap.HighestBid != nil {
		t.Fatalf("trump/highestBid not cleared on new deal")
	}
}

func TestBidSequenceMonotonic(t *testing.T) {
	r := testRoom(t, 4, Options{})
	if _, err := r.Start("c0"); err != nil {
		t.Fatalf("start: %v", err)
	}

	accepted := []int{}
	turnClient := func() string { return r.seats[r.currentTurn] }

	for _, v := range []int{15, 20, 35, 45} {
		if _, err := r.PlaceBid(turnClient(), v); err != nil {
			t.Fatalf("bid %d: %v", v, err)
		}
		accepted = append(accepted, v)
	}
	for i := 1; i < len(accepted); i++ {
		if accepted[i] <= accepted[i-1] {
			t.Fatalf("accepted bids not strictly increasing: %v", accepted)
		}
	}
	// 45 is the ceiling; no raise is possible.
	if _, err := r.PlaceBid(turnClient(), 50); !errors.Is(err, ErrIllegalBid) {
		t.Fatalf("bid above ceiling err = %v", err)
	}
}

func TestTwoPlayerRoomSkipsEmptySeats(t *testing.T) {
	r := testRoom(t, 2, Options{})
	snap, err := r.Start("c0")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if snap.CurrentTurn != 1 {
		t.Fatalf("turn = %d, want 1", snap.CurrentTurn)
	}
	if len(r.hands[2]) != 0 || len(r.hands[3]) != 0 {
		t.Fatalf("empty seats were dealt cards")
	}

	if _, err := r.PlaceBid("c1", 15); err != nil {
		t.Fatalf("bid: %v", err)
	}
	snap, err = r.PassBid("c0")
	if err != nil {
		t.Fatalf("pass: %v", err)
	}
	if snap.Phase != domain.PhaseSelectTrump || snap.CurrentTurn != 1 {
		t.Fatalf("two-player auction did not resolve: %s/%d", snap.Phase, snap.CurrentTurn)
	}

	if _, err := r.SelectTrump("c1", domain.SuitSpades); err != nil {
		t.Fatalf("select trump: %v", err)
	}
	// Tricks complete after two plays, not four.
	playOut(t, r)
	if r.phase != domain.PhaseRoundEnd {
		t.Fatalf("phase = %s, want round_end", r.phase)
	}
}

func TestAllPassRedeal(t *testing.T) {
	r := testRoom(t, 4, Options{AllPass: AllPassRedeal})
	if _, err := r.Start("c0"); err != nil {
		t.Fatalf("start: %v", err)
	}
	handsBefore := r.Snapshot("c1", 0).Hand

	for _, c := range []string{"c1", "c2", "c3", "c0"} {
		if _, err := r.PassBid(c); err != nil {
			t.Fatalf("pass %s: %v", c, err)
		}
	}

	if r.phase != domain.PhaseBidding {
		t.Fatalf("phase = %s, want fresh bidding", r.phase)
	}
	if r.highestBid != nil {
		t.Fatalf("highest bid survived redeal")
	}
	for seat := 0; seat < 4; seat++ {
		if r.bids[seat].Passed {
			t.Fatalf("pass flags survived redeal")
		}
		if len(r.hands[seat]) != domain.HandSize {
			t.Fatalf("seat %d hand = %d, want %d", seat, len(r.hands[seat]), domain.HandSize)
		}
	}
	if r.dealerSeat != 0 || r.currentTurn != 1 {
		t.Fatalf("redeal moved the dealer: %d/%d", r.dealerSeat, r.currentTurn)
	}
	handsAfter := r.Snapshot("c1", 0).Hand
	if reflect.DeepEqual(handsBefore, handsAfter) {
		t.Fatalf("redeal did not reshuffle")
	}
}

func TestAllPassDealerMin(t *testing.T) {
	r := testRoom(t, 4, Options{AllPass: AllPassDealerMin})
	if _, err := r.Start("c0"); err != nil {
		t.Fatalf("start: %v", err)
	}

	var snap *Snapshot
	var err error
	for _, c := range []string{"c1", "c2", "c3", "c0"} {
		if snap, err = r.PassBid(c); err != nil {
			t.Fatalf("pass %s: %v", c, err)
		}
	}

	if snap.Phase != domain.PhaseSelectTrump {
		t.Fatalf("phase = %s, want select_trump", snap.Phase)
	}
	if snap.HighestBid == nil || snap.HighestBid.Seat != 0 || snap.HighestBid.Value != domain.MinBid {
		t.Fatalf("forced bid = %+v, want dealer at %d", snap.HighestBid, domain.MinBid)
	}
	if snap.CurrentTurn != 0 {
		t.Fatalf("turn = %d, want dealer 0", snap.CurrentTurn)
	}
}

func TestChatSequenceAndFiltering(t *testing.T) {
	r := testRoom(t, 2, Options{})

	for i, text := range []string{"hi", "gl", "hf"} {
		entry, err := r.Chat("c0", text)
		if err != nil {
			t.Fatalf("chat: %v", err)
		}
		if entry.Seq != uint64(i+1) {
			t.Fatalf("seq = %d, want %d", entry.Seq, i+1)
		}
	}
	if _, err := r.Chat("ghost", "boo"); !errors.Is(err, ErrUnknownPlayer) {
		t.Fatalf("ghost chat err = %v", err)
	}

	snap := r.Snapshot("c1", 2)
	if len(snap.Chat) != 1 || snap.Chat[0].Text != "hf" {
		t.Fatalf("since filter returned %+v, want only seq 3", snap.Chat)
	}
	if snap.ChatSeq != 3 {
		t.Fatalf("chatSeq = %d, want 3", snap.ChatSeq)
	}
}

func TestSnapshotHidesOtherHands(t *testing.T) {
	r := testRoom(t, 4, Options{})
	if _, err := r.Start("c0"); err != nil {
		t.Fatalf("start: %v", err)
	}

	snap := r.Snapshot("c2", 0)
	if len(snap.Hand) != domain.HandSize {
		t.Fatalf("own hand = %d cards, want %d", len(snap.Hand), domain.HandSize)
	}
	for _, view := range snap.Players {
		if view.CardsRemaining != domain.HandSize {
			t.Fatalf("seat %d cardsRemaining = %d", view.SeatIndex, view.CardsRemaining)
		}
	}

	spectator := r.Snapshot("nobody", 0)
	if spectator.You != nil || len(spectator.Hand) != 0 {
		t.Fatalf("spectator sees a hand: %+v", spectator)
	}
}

func TestSetConnected(t *testing.T) {
	r := testRoom(t, 2, Options{})
	if !r.SetConnected("c1", false) {
		t.Fatalf("SetConnected unknown = false for seated player")
	}
	snap := r.Snapshot("c0", 0)
	if snap.Players[1].Connected {
		t.Fatalf("seat 1 still flagged connected")
	}
	// Seat is kept for reconnection.
	if r.seats[1] != "c1" {
		t.Fatalf("disconnect freed the seat")
	}
	if r.SetConnected("ghost", true) {
		t.Fatalf("SetConnected accepted unknown client")
	}
}
