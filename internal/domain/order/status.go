package order

import "github.com/go-faster/errors"

// Status is the order lifecycle state. The progression is strictly
// forward: PLACED -> PAID -> SHIPPED -> DELIVERED.
type Status string

const (
	StatusPlaced    Status = "PLACED"
	StatusPaid      Status = "PAID"
	StatusShipped   Status = "SHIPPED"
	StatusDelivered Status = "DELIVERED"
)

// ErrInvalidTransition is returned when a status change would move the
// order backward or skip a state.
var ErrInvalidTransition = errors.New("invalid order status transition")

// validTransitions defines the allowed forward-only progression.
// SHIPPED -> SHIPPED covers intermediate shipment stages.
var validTransitions = map[Status][]Status{
	StatusPlaced:    {StatusPaid},
	StatusPaid:      {StatusShipped, StatusDelivered},
	StatusShipped:   {StatusShipped, StatusDelivered},
	StatusDelivered: {},
}

// CanTransitionTo reports whether the status may move to target.
func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Transition moves the order to target after validating the progression.
func (o *Order) Transition(target Status) error {
	if !o.Status.CanTransitionTo(target) {
		return errors.Wrapf(ErrInvalidTransition, "%s -> %s", o.Status, target)
	}
	o.Status = target
	return nil
}
