package room

import "errors"

// Engine errors. All of them are local and recoverable: a failed action
// never mutates room state and is reported only to its originator.
var (
	ErrRoomNotFound  = errors.New("room not found")
	ErrUnknownPlayer = errors.New("player not in room")
	ErrRoomFull      = errors.New("room is full")
	ErrNotHost       = errors.New("only the host can start the game")
	ErrTooFewPlayers = errors.New("not enough players to start")
	ErrInvalidPhase  = errors.New("action not allowed in current phase")
	ErrNotYourTurn   = errors.New("not your turn")
	ErrIllegalBid    = errors.New("illegal bid")
	ErrNotBidWinner  = errors.New("only the highest bidder can select trump")
	ErrInvalidSuit   = errors.New("invalid suit")
	ErrUnknownCard   = errors.New("card not in hand")
	ErrRuleViolation = errors.New("you must follow suit")
)
