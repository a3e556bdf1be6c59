package crawl

// Queue is a bounded FIFO of unique URLs. Every accepted URL stays in the
// result set, so All doubles as the discovery list.
type Queue struct {
	items []string
	seen  map[string]struct{}
	next  int
	limit int
}

// NewQueue creates a queue that accepts at most limit URLs.
// A non-positive limit means unbounded.
func NewQueue(limit int) *Queue {
	return &Queue{
		seen:  make(map[string]struct{}),
		limit: limit,
	}
}

// Add enqueues u unless it was already seen or the queue is full.
// It reports whether u was accepted.
func (q *Queue) Add(u string) bool {
	if _, ok := q.seen[u]; ok || q.Full() {
		return false
	}
	q.seen[u] = struct{}{}
	q.items = append(q.items, u)
	return true
}

// HasNext reports whether unprocessed URLs remain.
func (q *Queue) HasNext() bool {
	return q.next < len(q.items)
}

// Next returns the oldest unprocessed URL. Call HasNext first.
func (q *Queue) Next() string {
	u := q.items[q.next]
	q.next++
	return u
}

// Full reports whether the limit has been reached.
func (q *Queue) Full() bool {
	return q.limit > 0 && len(q.items) >= q.limit
}

// Len returns the number of accepted URLs.
func (q *Queue) Len() int {
	return len(q.items)
}

// All returns a copy of the accepted URLs in insertion order.
func (q *Queue) All() []string {
	out := make([]string, len(q.items))
	copy(out, q.items)
	return out
}
