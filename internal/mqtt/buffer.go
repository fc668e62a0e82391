package mqtt

// bufferedMsg is a serialized message waiting for the broker connection.
type bufferedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// ringBuffer keeps the newest messages up to a fixed capacity; the oldest is
// overwritten when full. Callers synchronize access.
type ringBuffer struct {
	msgs    []bufferedMsg
	next    int // slot for the next push
	n       int
	dropped int // overwritten since the last drain
}

func newRingBuffer(capacity int) *ringBuffer {
	return &ringBuffer{msgs: make([]bufferedMsg, capacity)}
}

// push stores msg and reports whether an older message was overwritten.
func (r *ringBuffer) push(msg bufferedMsg) bool {
	full := r.n == len(r.msgs)
	r.msgs[r.next] = msg
	r.next = (r.next + 1) % len(r.msgs)
	if full {
		r.dropped++
		return true
	}
	r.n++
	return false
}

// drain returns the buffered messages oldest first, together with the number
// of messages lost to overflow, and empties the buffer.
func (r *ringBuffer) drain() ([]bufferedMsg, int) {
	dropped := r.dropped
	r.dropped = 0
	if r.n == 0 {
		return nil, dropped
	}

	out := make([]bufferedMsg, 0, r.n)
	first := (r.next - r.n + len(r.msgs)) % len(r.msgs)
	for i := 0; i < r.n; i++ {
		out = append(out, r.msgs[(first+i)%len(r.msgs)])
	}
	r.next, r.n = 0, 0
	return out, dropped
}

func (r *ringBuffer) len() int {
	return r.n
}
