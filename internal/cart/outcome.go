package cart

import (
	"github.com/angelmondragon/rocketcart/internal/notifications"
	pkgerrors "github.com/angelmondragon/rocketcart/pkg/errors"
)

type OutcomeKind string

const (
	OutcomeCommitted     OutcomeKind = "committed"
	OutcomeOutOfStock    OutcomeKind = "out_of_stock"
	OutcomeNotFound      OutcomeKind = "not_found"
	OutcomeQueryFailure  OutcomeKind = "query_failure"
	OutcomeInvalidAmount OutcomeKind = "invalid_amount"
	OutcomeFailed        OutcomeKind = "failed"
)

const (
	OperationAdd          = "add"
	OperationRemove       = "remove"
	OperationUpdateAmount = "update_amount"
)

const (
	MessageOutOfStock   = "Requested amount is out of stock"
	MessageAddFailed    = "Could not add product"
	MessageRemoveFailed = "Could not remove product"
	MessageUpdateFailed = "Could not update product amount"
)

// Outcome is the result of one cart operation. Only OutcomeCommitted changes
// the cart; Err carries the underlying cause for the failure kinds.
type Outcome struct {
	Kind    OutcomeKind
	Message string
	Err     error
}

func (o Outcome) Committed() bool {
	return o.Kind == OutcomeCommitted
}

// Notifies reports whether the outcome is surfaced to the user.
func (o Outcome) Notifies() bool {
	switch o.Kind {
	case OutcomeCommitted, OutcomeInvalidAmount:
		return false
	default:
		return true
	}
}

func committed() Outcome {
	return Outcome{Kind: OutcomeCommitted}
}

func outOfStock(productID int64, requested, available int) Outcome {
	err := pkgerrors.New(pkgerrors.CodeOutOfStock, MessageOutOfStock).WithDetails(map[string]any{
		"product_id": productID,
		"requested":  requested,
		"available":  available,
	})
	return Outcome{Kind: OutcomeOutOfStock, Message: MessageOutOfStock, Err: err}
}

func failure(kind OutcomeKind, operation string, err error) Outcome {
	return Outcome{Kind: kind, Message: failureMessage(operation), Err: err}
}

func failureMessage(operation string) string {
	switch operation {
	case OperationAdd:
		return MessageAddFailed
	case OperationRemove:
		return MessageRemoveFailed
	default:
		return MessageUpdateFailed
	}
}

func (o Outcome) notification(operation string, productID int64) notifications.Message {
	kind := notifications.KindFailure
	if o.Kind == OutcomeOutOfStock {
		kind = notifications.KindOutOfStock
	}
	return notifications.Message{
		Kind:      kind,
		Operation: operation,
		ProductID: productID,
		Text:      o.Message,
	}
}
