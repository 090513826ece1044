package notifications

import (
	"context"
	"sync"
)

const defaultInboxCapacity = 32

// Inbox buffers messages for a single session until the client drains them.
// When full, the oldest message is dropped.
type Inbox struct {
	mu       sync.Mutex
	messages []Message
	capacity int
}

func NewInbox(capacity int) *Inbox {
	if capacity <= 0 {
		capacity = defaultInboxCapacity
	}
	return &Inbox{capacity: capacity}
}

func (i *Inbox) Report(_ context.Context, msg Message) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if len(i.messages) == i.capacity {
		i.messages = i.messages[1:]
	}
	i.messages = append(i.messages, msg)
}

// Drain returns buffered messages in arrival order and empties the inbox.
func (i *Inbox) Drain() []Message {
	i.mu.Lock()
	defer i.mu.Unlock()
	out := i.messages
	i.messages = nil
	if out == nil {
		return []Message{}
	}
	return out
}

// Len reports how many messages are waiting.
func (i *Inbox) Len() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.messages)
}
