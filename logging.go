package rbl

const (
	// Service is the name of this service.
	Service = "rbl"

	// DefaultTotalRounds is how many rounds a room plays when the host
	// does not choose a count.
	DefaultTotalRounds = 5
)
