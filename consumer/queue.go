package consumer

import (
	"sync"

	"github.com/jd3nn1s/telelink"
)

// Queue hands records from the network goroutine to the presentation
// goroutine. Every posted record is drained exactly once, in order.
type Queue struct {
	mu    sync.Mutex
	items []telelink.Telemetry
	ready chan struct{}
}

func NewQueue() *Queue {
	return &Queue{
		ready: make(chan struct{}, 1),
	}
}

// Post appends t and wakes the drainer. It never blocks.
func (q *Queue) Post(t telelink.Telemetry) {
	q.mu.Lock()
	q.items = append(q.items, t)
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// Ready is signalled after Post. A single signal may cover several records.
func (q *Queue) Ready() <-chan struct{} {
	return q.ready
}

// Drain calls fn for every queued record, oldest first, and returns how
// many were handed over. Only the presentation goroutine may call Drain.
func (q *Queue) Drain(fn func(telelink.Telemetry)) int {
	q.mu.Lock()
	items := q.items
	q.items = nil
	q.mu.Unlock()

	for _, t := range items {
		fn(t)
	}
	return len(items)
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
