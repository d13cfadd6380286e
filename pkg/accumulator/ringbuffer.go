package accumulator

// ringBuffer keeps the last `capacity` values pushed, oldest first.
type ringBuffer struct {
	values []float64
	head   int
	size   int
}

func newRingBuffer(capacity int) *ringBuffer {
	return &ringBuffer{values: make([]float64, capacity)}
}

// Push appends v and returns the value evicted to make room for it.
func (b *ringBuffer) Push(v float64) (evicted float64, ok bool) {
	capacity := len(b.values)
	if b.size < capacity {
		b.values[(b.head+b.size)%capacity] = v
		b.size++
		return 0, false
	}

	evicted = b.values[b.head]
	b.values[b.head] = v
	b.head = (b.head + 1) % capacity
	return evicted, true
}

func (b *ringBuffer) Len() int {
	return b.size
}

func (b *ringBuffer) Cap() int {
	return len(b.values)
}

func (b *ringBuffer) IsFull() bool {
	return b.size == len(b.values)
}

// At returns the i-th value, 0 being the oldest.
func (b *ringBuffer) At(i int) float64 {
	return b.values[(b.head+i)%len(b.values)]
}

func (b *ringBuffer) Last() float64 {
	return b.At(b.size - 1)
}

func (b *ringBuffer) First() float64 {
	return b.At(0)
}

// Slice returns a copy of the retained values, oldest first.
func (b *ringBuffer) Slice() []float64 {
	out := make([]float64, b.size)
	for i := range out {
		out[i] = b.At(i)
	}
	return out
}

func (b *ringBuffer) Clone() *ringBuffer {
	c := &ringBuffer{
		values: make([]float64, len(b.values)),
		head:   b.head,
		size:   b.size,
	}
	copy(c.values, b.values)
	return c
}
