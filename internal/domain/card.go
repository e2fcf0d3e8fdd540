package domain

import (
	"math/rand"

	"github.com/google/uuid"
)

// Suit is one of the four card suits.
type Suit string

const (
	SuitSpades   Suit = "S"
	SuitHearts   Suit = "H"
	SuitDiamonds Suit = "D"
	SuitClubs    Suit = "C"
)

// Suits lists every suit in deck-construction order.
var Suits = []Suit{SuitSpades, SuitHearts, SuitDiamonds, SuitClubs}

// Valid reports whether s is one of the four suits.
func (s Suit) Valid() bool {
	switch s {
	case SuitSpades, SuitHearts, SuitDiamonds, SuitClubs:
		return true
	}
	return false
}

// Rank is a card face value.
type Rank string

const (
	RankAce   Rank = "A"
	RankKing  Rank = "K"
	RankQueen Rank = "Q"
	RankJack  Rank = "J"
	RankTen   Rank = "10"
	RankNine  Rank = "9"
	RankEight Rank = "8"
	RankSeven Rank = "7"
	RankSix   Rank = "6"
	RankFive  Rank = "5"
	RankFour  Rank = "4"
	RankThree Rank = "3"
	RankTwo   Rank = "2"
)

// Ranks lists every rank in deck-construction order.
var Ranks = []Rank{
	RankAce, RankKing, RankQueen, RankJack, RankTen, RankNine, RankEight,
	RankSeven, RankSix, RankFive, RankFour, RankThree, RankTwo,
}

// Card is a single physical card instance. Identity is carried by ID, never
// by the (suit, rank) pair: separate shuffles of the same logical deck must
// stay distinguishable.
type Card struct {
	Suit Suit   `json:"suit"`
	Rank Rank   `json:"rank"`
	ID   string `json:"id"`
}

// NewDeck returns a full 52-card deck, one card per (suit, rank) pair.
// Every call assigns fresh unique ids.
func NewDeck() []Card {
	deck := make([]Card, 0, len(Suits)*len(Ranks))
	for _, s := range Suits {
		for _, r := range Ranks {
			deck = append(deck, Card{Suit: s, Rank: r, ID: uuid.NewString()})
		}
	}
	return deck
}

// Shuffle returns a Fisher-Yates permuted copy of deck using the given rng.
func Shuffle(deck []Card, rng *rand.Rand) []Card {
	out := make([]Card, len(deck))
	copy(out, deck)
	for i := len(out) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Deal distributes handSize cards to each of seatCount seats round-robin:
// seat s receives deck indices s, s+seatCount, s+2*seatCount, ... The rest
// of the deck is left untouched (no kitty is modeled).
func Deal(deck []Card, seatCount, handSize int) map[int][]Card {
	hands := make(map[int][]Card, seatCount)
	for s := 0; s < seatCount; s++ {
		hand := make([]Card, 0, handSize)
		for h := 0; h < handSize; h++ {
			hand = append(hand, deck[h*seatCount+s])
		}
		hands[s] = hand
	}
	return hands
}
