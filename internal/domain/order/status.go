package order

import (
	"fmt"

	"github.com/go-faster/errors"
)

// Status is the lifecycle state of an order or of a single line item. The
// string values are the display forms served to clients and stored in the
// database.
type Status string

const (
	StatusPending       Status = "Pending"
	StatusProcessing    Status = "Processing"
	StatusShipped       Status = "Shipped"
	StatusDelivered     Status = "Delivered"
	StatusPendingReturn Status = "Pending Return"
	StatusReturned      Status = "Returned"
	StatusCancelled     Status = "Cancelled"
	StatusPaid          Status = "Paid"
	StatusFailed        Status = "Payment Failed"
)

// ParseStatus validates a raw status string from an admin request.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered,
		StatusPendingReturn, StatusReturned, StatusCancelled,
		StatusPaid, StatusFailed:
		return st, nil
	}
	return "", errors.Errorf("unknown status %q", s)
}

// Action is a customer- or admin-initiated lifecycle transition on an item.
type Action string

const (
	ActionRequestReturn Action = "request-return"
	ActionApproveReturn Action = "approve-return"
	ActionCancel        Action = "cancel"
)

// InvalidTransitionError reports a lifecycle action applied to an item in a
// state that does not permit it.
type InvalidTransitionError struct {
	From   Status
	Action Action
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s item in status %q", e.Action, e.From)
}

var transitions = map[Action]map[Status]Status{
	ActionRequestReturn: {
		StatusDelivered: StatusPendingReturn,
	},
	ActionApproveReturn: {
		StatusPendingReturn: StatusReturned,
	},
	ActionCancel: {
		StatusProcessing: StatusCancelled,
		StatusShipped:    StatusCancelled,
	},
}

// Transition returns the status an item moves to when action is applied in
// state from, or an *InvalidTransitionError when the action is not allowed.
func Transition(from Status, action Action) (Status, error) {
	if next, ok := transitions[action][from]; ok {
		return next, nil
	}
	return "", &InvalidTransitionError{From: from, Action: action}
}
