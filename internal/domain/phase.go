package domain

// Phase represents the lifecycle stage of a room's current round.
type Phase string

const (
	// PhaseLobby is the pre-game state where players claim seats.
	PhaseLobby Phase = "lobby"
	// PhaseBidding is the competitive auction after a deal.
	PhaseBidding Phase = "bidding"
	// PhaseSelectTrump waits for the highest bidder to pick a trump suit.
	PhaseSelectTrump Phase = "select_trump"
	// PhasePlaying is active trick play.
	PhasePlaying Phase = "playing"
	// PhaseRoundEnd is the scored state between rounds.
	PhaseRoundEnd Phase = "round_end"
)
