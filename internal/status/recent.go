package status

// recentRing is a fixed-capacity FIFO of the latest valid readings.
// Not safe for concurrent use — the Tracker synchronizes.
type recentRing struct {
	buf      []Reading
	capacity int
	head     int // next write position
	count    int
}

func newRecentRing(capacity int) *recentRing {
	return &recentRing{
		buf:      make([]Reading, capacity),
		capacity: capacity,
	}
}

func (r *recentRing) push(rd Reading) {
	// Overwrite the oldest when full: head is already pointing at it.
	r.buf[r.head] = rd
	r.head = (r.head + 1) % r.capacity
	if r.count < r.capacity {
		r.count++
	}
}

// values returns the retained readings, oldest first.
func (r *recentRing) values() []Reading {
	if r.count == 0 {
		return nil
	}

	result := make([]Reading, r.count)
	// Oldest item is at (head - count) mod capacity
	start := (r.head - r.count + r.capacity) % r.capacity
	for i := 0; i < r.count; i++ {
		result[i] = r.buf[(start+i)%r.capacity]
	}
	return result
}

func (r *recentRing) len() int {
	return r.count
}
