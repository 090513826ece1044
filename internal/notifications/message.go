package notifications

import "context"

// Kind classifies a user-facing cart message.
type Kind string

const (
	KindOutOfStock Kind = "out_of_stock"
	KindFailure    Kind = "failure"
)

// Message is a one-way notice for the user, e.g. rendered as a toast.
type Message struct {
	Kind      Kind   `json:"kind"`
	Operation string `json:"operation"`
	ProductID int64  `json:"product_id"`
	Text      string `json:"text"`
}

// Sink receives messages. Report never blocks the caller on delivery and has
// no result the caller can act on.
type Sink interface {
	Report(ctx context.Context, msg Message)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, msg Message)

func (f SinkFunc) Report(ctx context.Context, msg Message) {
	f(ctx, msg)
}

// Fanout delivers each message to every non-nil sink in order.
type Fanout []Sink

func (f Fanout) Report(ctx context.Context, msg Message) {
	for _, s := range f {
		if s != nil {
			s.Report(ctx, msg)
		}
	}
}
