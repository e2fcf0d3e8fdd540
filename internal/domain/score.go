package domain

// Team identifies one of the two fixed partnerships. Seats alternate teams
// by parity: even seats are team A, odd seats team B.
type Team string

const (
	TeamA Team = "A"
	TeamB Team = "B"
)

// SeatTeam returns the team a seat belongs to.
func SeatTeam(seat int) Team {
	if seat%2 == 0 {
		return TeamA
	}
	return TeamB
}

// TrickCount holds per-team trick totals for a round.
type TrickCount struct {
	TeamA int `json:"teamA"`
	TeamB int `json:"teamB"`
}

// Bid is the highest accepted bid of a round.
type Bid struct {
	Seat  int `json:"seatIndex"`
	Value int `json:"value"`
}

// ScoreRound computes each team's cumulative score change at round end.
// Every trick earns PointsPerTrick. With no bid both teams simply earn
// their trick points. If the bidding team's earned points fall short of
// the bid, it loses the full bid value (not the shortfall) and earns
// nothing; the other team always keeps its own earned points.
func ScoreRound(taken TrickCount, bid *Bid) (deltaA, deltaB int) {
	earnedA := taken.TeamA * PointsPerTrick
	earnedB := taken.TeamB * PointsPerTrick

	if bid == nil {
		return earnedA, earnedB
	}

	if SeatTeam(bid.Seat) == TeamA {
		if earnedA < bid.Value {
			return -bid.Value, earnedB
		}
		return earnedA, earnedB
	}

	if earnedB < bid.Value {
		return earnedA, -bid.Value
	}
	return earnedA, earnedB
}
