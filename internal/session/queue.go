package session

import "sync"

// pressQueue is a thread-safe FIFO of raw key labels waiting for Run.
//
// The queue is unbounded so a fast reader never blocks on a slow writer.
// A buffered signal channel lets Run wait with a context.
type pressQueue struct {
	mu     sync.Mutex
	keys   []string
	closed bool
	signal chan struct{} // Signals key availability (buffered, size 1)
}

func newPressQueue() *pressQueue {
	return &pressQueue{
		keys:   make([]string, 0, 16),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue adds a key to the back of the queue.
// Returns false if the queue is closed.
func (q *pressQueue) Enqueue(key string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.keys = append(q.keys, key)

	// Non-blocking: the buffer of 1 coalesces multiple signals
	select {
	case q.signal <- struct{}{}:
	default:
	}

	return true
}

// TryDequeue removes the front key without blocking.
// Returns ("", false) if the queue is empty.
func (q *pressQueue) TryDequeue() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.keys) == 0 {
		return "", false
	}

	key := q.keys[0]
	if len(q.keys) == 1 {
		q.keys = q.keys[:0]
	} else {
		q.keys = q.keys[1:]
	}
	return key, true
}

// Wait returns a channel that signals when keys may be available.
// The channel is closed by Close, which wakes every waiter.
func (q *pressQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the current queue length.
func (q *pressQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.keys)
}

// Close signals that no more keys will be enqueued.
// Keys already queued are still delivered.
func (q *pressQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.closed = true
	close(q.signal)
}
