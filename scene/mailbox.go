package scene

// Message is a named payload addressed to a node. Material actions talk to
// the rest of the game exclusively through messages.
type Message struct {
	From NodeID
	To   NodeID
	Name string
	Args map[string]any
}

// Mailbox is a FIFO queue of messages.
type Mailbox struct {
	items []Message
}

// Push adds a message.
func (q *Mailbox) Push(msg Message) {
	if q == nil {
		return
	}
	q.items = append(q.items, msg)
}

// Len returns the number of queued messages.
func (q *Mailbox) Len() int {
	if q == nil {
		return 0
	}
	return len(q.items)
}

// Drain returns all messages and clears the queue.
func (q *Mailbox) Drain() []Message {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}
