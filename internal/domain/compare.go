package domain

// Rank orders used when comparing trick plays, highest first. The 5 and the
// jack outrank everything else in the trump suit; off-trump suits keep the
// plain ace-high order.
var (
	trumpOrder = []Rank{
		RankFive, RankJack, RankAce, RankKing, RankQueen, RankTen, RankNine,
		RankEight, RankSeven, RankSix, RankFour, RankThree, RankTwo,
	}
	plainOrder = []Rank{
		RankAce, RankKing, RankQueen, RankJack, RankTen, RankNine, RankEight,
		RankSeven, RankSix, RankFive, RankFour, RankThree, RankTwo,
	}
)

// Play is a single card committed to the current trick by a seat.
type Play struct {
	Seat int  `json:"seatIndex"`
	Card Card `json:"card"`
}

// Compare orders two cards within a trick: >0 if a beats b, <0 if b beats a.
// Any trump outranks any non-trump; among non-trumps the lead suit outranks
// off-suit cards; within the same category the fixed rank tables decide.
func Compare(a, b Card, lead, trump Suit) int {
	aTrump := a.Suit == trump
	bTrump := b.Suit == trump
	if aTrump != bTrump {
		if aTrump {
			return 1
		}
		return -1
	}

	if !aTrump {
		aLead := a.Suit == lead
		bLead := b.Suit == lead
		if aLead != bLead {
			if aLead {
				return 1
			}
			return -1
		}
	}

	order := plainOrder
	if aTrump {
		order = trumpOrder
	}
	ai := rankIndex(order, a.Rank)
	bi := rankIndex(order, b.Rank)
	switch {
	case ai < bi:
		return 1
	case ai > bi:
		return -1
	}
	return 0
}

// TrickWinner returns the seat of the winning play. The first play is the
// initial best; later plays only displace it by strictly beating it, so the
// result does not depend on comparison order.
func TrickWinner(plays []Play, lead, trump Suit) int {
	best := plays[0]
	for _, p := range plays[1:] {
		if Compare(p.Card, best.Card, lead, trump) > 0 {
			best = p
		}
	}
	return best.Seat
}

func rankIndex(order []Rank, r Rank) int {
	for i, o := range order {
		if o == r {
			return i
		}
	}
	return len(order)
}
