package background

// ring is a fixed-capacity frame buffer backing a single capture pass.
// Frames are stored as raw BGR bytes. Once the ring wraps, new frames
// overwrite the oldest, so it always holds the last N frames seen.
type ring struct {
	slots [][]byte
	next  int
	count int
}

func newRing(capacity int) *ring {
	return &ring{slots: make([][]byte, capacity)}
}

func (r *ring) add(frame []byte) {
	r.slots[r.next] = frame
	r.next = (r.next + 1) % len(r.slots)
	if r.count < len(r.slots) {
		r.count++
	}
}

func (r *ring) full() bool {
	return r.count == len(r.slots)
}

func (r *ring) size() int {
	return r.count
}

// frames returns the retained frames in storage order. Order does not matter
// to the median reduction.
func (r *ring) frames() [][]byte {
	return r.slots[:r.count]
}
