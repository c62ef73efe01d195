package nsm

import "sync"

// Queue is the FIFO of messages received on one connection and not yet
// dispatched. Push is called by the transport reader, Pop by the event loop.
type Queue struct {
	mu    sync.Mutex
	items []Message
}

// NewQueue ...
func NewQueue() *Queue {
	return &Queue{}
}

// Push appends m at the tail of the queue.
func (q *Queue) Push(m Message) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, m)
}

// Pop removes and returns the head of the queue.
func (q *Queue) Pop() (Message, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return Message{}, false
	}
	m := q.items[0]
	q.items[0] = Message{}
	q.items = q.items[1:]
	if len(q.items) == 0 {
		q.items = nil
	}
	return m, true
}

// Len ...
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Empty ...
func (q *Queue) Empty() bool {
	return q.Len() == 0
}
