package taskstats

// Niceness bounds and the kernel's priority-to-niceness offset for normal
// tasks (prio = 120 + nice).
const (
	MinNice = -20
	MaxNice = 19

	prioNiceOffset = 120
)

// Ticket weighting: base 100 tickets at nice 0, plus 10 per niceness step
// below zero, minus 10 per step above, floored so no task ever drops to zero
// probability in a lottery draw.
const (
	ticketBase  = 100
	ticketAlpha = 10

	// MinTickets is the floor applied after scaling.
	MinTickets = 10

	// MaxTickets is the weight at nice -20.
	MaxTickets = 300
)

// ClampNice clamps a raw niceness to [-20, 19].
func ClampNice(nice int32) int32 {
	if nice < MinNice {
		return MinNice
	}

	if nice > MaxNice {
		return MaxNice
	}

	return nice
}

// NiceFromPrio converts a kernel priority to a clamped niceness.
func NiceFromPrio(prio int32) int32 {
	return ClampNice(prio - prioNiceOffset)
}

// TicketsForNice returns the lottery weight for a niceness value. Inputs
// outside [-20, 19] are clamped before scaling, so the result is always in
// [MinTickets, MaxTickets] and non-increasing as niceness increases.
func TicketsForNice(nice int32) uint32 {
	nice = ClampNice(nice)

	scaled := int32(ticketBase) + int32(ticketAlpha)*(-nice)
	if scaled < MinTickets {
		return MinTickets
	}

	return uint32(scaled)
}
