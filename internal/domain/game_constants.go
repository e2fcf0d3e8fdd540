package domain

const (
	// SeatCount is the fixed number of seats at a table.
	SeatCount = 4
	// HandSize is the number of cards dealt to each occupied seat.
	HandSize = 5
	// MinBid and MaxBid bound legal bid values; bids move in BidStep increments.
	MinBid  = 15
	MaxBid  = 45
	BidStep = 5
	// PointsPerTrick is the value of a single taken trick.
	PointsPerTrick = 5
)
