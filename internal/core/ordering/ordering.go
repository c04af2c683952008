// Package ordering holds the pure queue-position computations. Everything here
// is stateless and operates on observed snapshots of a queue's ticket set, so
// callers can recompute derived values from scratch on every watch delivery.
package ordering

import (
	"queueflow/internal/core/domain"
)

// AssignTokenNumber returns the token for the next customer joining a queue.
// lifetimeCount must be the count of ALL tickets ever created for the queue,
// including completed and removed ones. Counting only the currently-active
// tickets would let token numbers repeat after removals.
func AssignTokenNumber(lifetimeCount int64) int {
	return int(lifetimeCount) + 1
}

// PeopleAhead counts the tickets still waiting with a strictly smaller token
// number than self. Called and already-removed tickets never count, so the
// value only decreases or stays equal as a queue drains. A called self still
// reports people ahead as of the moment of query.
func PeopleAhead(tickets []domain.Ticket, self domain.Ticket) int {
	ahead := 0
	for _, t := range tickets {
		if t.ID == self.ID {
			continue
		}
		if t.Status == domain.StatusWaiting && t.TokenNumber < self.TokenNumber {
			ahead++
		}
	}
	return ahead
}

// Position is the 1-based queue depth used as estimator input: people ahead
// plus the customer themself.
func Position(tickets []domain.Ticket, self domain.Ticket) int {
	return PeopleAhead(tickets, self) + 1
}

// WaitingCount counts the tickets still waiting in a snapshot.
func WaitingCount(tickets []domain.Ticket) int {
	n := 0
	for _, t := range tickets {
		if t.Status == domain.StatusWaiting {
			n++
		}
	}
	return n
}

// FindTicket looks a ticket up by id in a snapshot. The second return is false
// when the ticket has been removed (completed or left).
func FindTicket(tickets []domain.Ticket, ticketID string) (domain.Ticket, bool) {
	for _, t := range tickets {
		if t.ID == ticketID {
			return t, true
		}
	}
	return domain.Ticket{}, false
}

// CanCall reports whether the waiting→called transition is legal. There is no
// auto-selection of "next": an administrator explicitly chooses which waiting
// ticket to call, so priority overrides are possible and FIFO is not enforced.
func CanCall(t domain.Ticket) bool {
	return t.Status == domain.StatusWaiting
}

// CalledEdge reports whether a snapshot delivery represents the exact
// waiting→called transition. Watch deliveries are at-least-once and may
// repeat, so consumers must fire turn notifications on this edge only.
func CalledEdge(prev, curr domain.TicketStatus) bool {
	return prev == domain.StatusWaiting && curr == domain.StatusCalled
}
