package channel

import "sync"

const DefaultQueueSize = 16

// outbox is a bounded FIFO of frames with drop-oldest overflow.
type outbox struct {
	mu       sync.Mutex
	cond     *sync.Cond
	frames   [][]byte
	capacity int
	closed   bool
	drops    uint64
}

func newOutbox(capacity int) *outbox {
	if capacity <= 0 {
		capacity = DefaultQueueSize
	}
	o := &outbox{capacity: capacity}
	o.cond = sync.NewCond(&o.mu)
	return o
}

// push appends a frame and reports whether an older frame had to be dropped.
func (o *outbox) push(frame []byte) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return false
	}
	dropped := false
	if len(o.frames) >= o.capacity {
		o.frames[0] = nil
		o.frames = o.frames[1:]
		o.drops++
		dropped = true
	}
	o.frames = append(o.frames, frame)
	o.cond.Signal()
	return dropped
}

// pop blocks until a frame is available. It returns false once the outbox
// is closed.
func (o *outbox) pop() ([]byte, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for len(o.frames) == 0 && !o.closed {
		o.cond.Wait()
	}
	if o.closed {
		return nil, false
	}
	frame := o.frames[0]
	o.frames[0] = nil
	o.frames = o.frames[1:]
	return frame, true
}

func (o *outbox) close() {
	o.mu.Lock()
	o.closed = true
	o.frames = nil
	o.cond.Broadcast()
	o.mu.Unlock()
}

func (o *outbox) len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.frames)
}

func (o *outbox) dropped() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.drops
}
