// Package policy decides who may move an order between statuses.
package policy

import "medikart/internal/model"

// Decision is the outcome of a transition check.
type Decision int

const (
	// Allow permits the transition.
	Allow Decision = iota
	// Forbidden means the caller lacks the role or ownership required.
	Forbidden
	// Illegal means the caller may act but the order's current status does
	// not admit the requested one.
	Illegal
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Forbidden:
		return "forbidden"
	default:
		return "illegal"
	}
}

// adminEdges lists every legal (from, to) pair for an admin.
var adminEdges = map[model.OrderStatus][]model.OrderStatus{
	model.StatusPlaced:         {model.StatusAccepted, model.StatusRejected, model.StatusCancelled},
	model.StatusAccepted:       {model.StatusOutForDelivery},
	model.StatusOutForDelivery: {model.StatusDelivered},
}

// CanTransition is the single authority on status changes.
//
// Admins may follow any edge in adminEdges. A regular user may only cancel an
// order they own, and only while it is still PLACED. Role or ownership
// failures are Forbidden; a permitted actor asking for an edge that does not
// exist from the current status gets Illegal.
func CanTransition(role model.Role, isOwner bool, from, to model.OrderStatus) Decision {
	if role == model.RoleAdmin {
		if hasEdge(from, to) {
			return Allow
		}
		return Illegal
	}

	if to != model.StatusCancelled || !isOwner {
		return Forbidden
	}
	if from != model.StatusPlaced {
		return Illegal
	}
	return Allow
}

// ReleasesStock reports whether moving from → to returns reserved stock.
// Only edges out of PLACED into REJECTED or CANCELLED do; later states
// represent a committed sale.
func ReleasesStock(from, to model.OrderStatus) bool {
	return from == model.StatusPlaced && (to == model.StatusRejected || to == model.StatusCancelled)
}

func hasEdge(from, to model.OrderStatus) bool {
	for _, next := range adminEdges[from] {
		if next == to {
			return true
		}
	}
	return false
}
