package queue

const minRingCapacity = 16

// ring is a growable FIFO ring buffer. It is not safe for concurrent use;
// Queue serializes every access under its mutex.
type ring[T any] struct {
	buf  []T
	head int
	size int
}

func newRing[T any](capacity int) ring[T] {
	return ring[T]{buf: make([]T, nextPowerOfTwo(max(capacity, minRingCapacity)))}
}

func (r *ring[T]) len() int { return r.size }

func (r *ring[T]) push(v T) {
	if r.size == len(r.buf) {
		r.grow()
	}
	r.buf[(r.head+r.size)&(len(r.buf)-1)] = v
	r.size++
}

func (r *ring[T]) pop() (T, bool) {
	var zero T
	if r.size == 0 {
		return zero, false
	}

	v := r.buf[r.head]
	r.buf[r.head] = zero // drop the reference so finished tasks can be collected
	r.head = (r.head + 1) & (len(r.buf) - 1)
	r.size--
	return v, true
}

// grow doubles the buffer and unwraps the contents so head lands at index 0.
func (r *ring[T]) grow() {
	next := make([]T, len(r.buf)*2)
	n := copy(next, r.buf[r.head:])
	copy(next[n:], r.buf[:r.head])
	r.buf = next
	r.head = 0
}

// nextPowerOfTwo returns the next power of 2 >= n
func nextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}

	if n&(n-1) == 0 {
		return n
	}

	power := 1
	for power < n {
		power *= 2
	}
	return power
}
