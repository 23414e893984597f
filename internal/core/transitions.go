package core

import (
	"fmt"
	"time"

	"bookstore-console/internal/apperr"
)

// transitionTable is the directed status graph. No edge means the move is
// illegal. Declined, Delivered and Cancelled have no outgoing edges.
var transitionTable = map[Status][]Status{
	StatusPending:   {StatusApproved, StatusDeclined},
	StatusApproved:  {StatusDelivered, StatusCancelled},
	StatusDeclined:  {},
	StatusDelivered: {},
	StatusCancelled: {},
}

// IsTerminal reports whether a status admits no further transition.
func (s Status) IsTerminal() bool {
	return len(transitionTable[s]) == 0
}

// CanTransitionTo reports whether an edge exists from s to target.
func (s Status) CanTransitionTo(target Status) bool {
	for _, t := range transitionTable[s] {
		if t == target {
			return true
		}
	}
	return false
}

// AllowedTransitions returns the statuses reachable from s in one step.
func AllowedTransitions(s Status) []Status {
	out := make([]Status, len(transitionTable[s]))
	copy(out, transitionTable[s])
	return out
}

// StatusTransition is a validated request to move one order along a legal
// edge. It lives only for the duration of a single apply; nothing persists it.
type StatusTransition struct {
	OrderID     int
	From        Status
	To          Status
	RequestedAt time.Time
}

// InvalidTransitionError reports an illegal status edge.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("order cannot move from %s to %s", e.From, e.To)
}

// ProposeTransition validates a requested status change against the current
// order snapshot. It is pure: it touches no network and mutates nothing.
// The returned error classifies as apperr.InvalidTransition and unwraps to
// *InvalidTransitionError.
func ProposeTransition(o Order, to Status) (StatusTransition, error) {
	if !o.Status.CanTransitionTo(to) {
		cause := &InvalidTransitionError{From: o.Status, To: to}
		return StatusTransition{}, &apperr.Error{
			Kind:      apperr.InvalidTransition,
			PublicMsg: cause.Error(),
			Err:       cause,
		}
	}
	return StatusTransition{
		OrderID:     o.ID,
		From:        o.Status,
		To:          to,
		RequestedAt: time.Now(),
	}, nil
}
