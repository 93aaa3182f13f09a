package session

import "sync"

// outbox is an unbounded FIFO of encoded frames for one connection. It
// doubles its capacity once it reaches 70% full, so producers never block.
// Ready is signalled whenever the outbox goes from empty to non-empty.
type outbox struct {
	mu       sync.Mutex
	buf      [][]byte
	head     int
	tail     int
	count    int
	capacity int
	closed   bool
	ready    chan struct{}

	// Stats
	totalQueued  int64
	totalDrained int64
	resizeCount  int
}

// outboxStats contains outbox statistics.
type outboxStats struct {
	Pending      int
	Capacity     int
	TotalQueued  int64
	TotalDrained int64
	ResizeCount  int
}

func newOutbox(initialCapacity int) *outbox {
	if initialCapacity < 1 {
		initialCapacity = 1
	}
	return &outbox{
		buf:      make([][]byte, initialCapacity),
		capacity: initialCapacity,
		ready:    make(chan struct{}, 1),
	}
}

// Send queues a frame. Returns false if the outbox is closed.
func (o *outbox) Send(frame []byte) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return false
	}

	threshold := (o.capacity * 70) / 100
	if threshold < 1 {
		threshold = 1
	}
	if o.count+1 >= threshold {
		o.grow()
	}

	o.buf[o.tail] = frame
	o.tail = (o.tail + 1) % o.capacity
	o.count++
	o.totalQueued++

	select {
	case o.ready <- struct{}{}:
	default:
	}
	return true
}

// Ready returns a channel that receives a value after Send on an outbox
// that may have been drained since.
func (o *outbox) Ready() <-chan struct{} {
	return o.ready
}

// DrainTo removes up to max frames (all when max <= 0) in FIFO order.
func (o *outbox) DrainTo(max int) [][]byte {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.count == 0 {
		return nil
	}

	n := o.count
	if max > 0 && max < n {
		n = max
	}

	frames := make([][]byte, n)
	for i := 0; i < n; i++ {
		frames[i] = o.buf[o.head]
		o.buf[o.head] = nil
		o.head = (o.head + 1) % o.capacity
	}
	o.count -= n
	o.totalDrained += int64(n)

	return frames
}

// Close rejects further sends. Frames already queued can still be drained.
func (o *outbox) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closed = true
}

// Len returns the number of pending frames.
func (o *outbox) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.count
}

// Stats returns outbox statistics.
func (o *outbox) Stats() outboxStats {
	o.mu.Lock()
	defer o.mu.Unlock()
	return outboxStats{
		Pending:      o.count,
		Capacity:     o.capacity,
		TotalQueued:  o.totalQueued,
		TotalDrained: o.totalDrained,
		ResizeCount:  o.resizeCount,
	}
}

// grow doubles capacity. Must be called with lock held.
func (o *outbox) grow() {
	newCapacity := o.capacity * 2
	newBuf := make([][]byte, newCapacity)

	if o.count > 0 {
		if o.head < o.tail {
			copy(newBuf, o.buf[o.head:o.tail])
		} else {
			n := copy(newBuf, o.buf[o.head:])
			copy(newBuf[n:], o.buf[:o.tail])
		}
	}

	o.buf = newBuf
	o.head = 0
	o.tail = o.count
	o.capacity = newCapacity
	o.resizeCount++
}
