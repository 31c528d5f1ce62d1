// Package dedupe tracks stroke ids so a resubmitted stroke is scored once.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/okian/circularity/pkg/metrics"
)

const defaultMaxSize = 50_000

// Deduper records seen stroke IDs to ensure at-most-once scoring.
type Deduper interface {
	// SeenAndRecord atomically checks if id was seen and records it if not.
	// Returns true if id was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord removes an ID so it can be retried. Used when a stroke was
	// recorded but then rejected (wrong session state, unknown session).
	Unrecord(ctx context.Context, id string)

	Size() int64
}

// node is an entry of the insertion-ordered list.
type node struct {
	id         string
	prev, next *node
}

func (n *node) reset() {
	n.id = ""
	n.prev = nil
	n.next = nil
}

// inMemoryDeduper implements Deduper with a map plus a doubly linked list in
// insertion order. When bounded, the oldest id is evicted first.
type inMemoryDeduper struct {
	mu       sync.Mutex
	seen     map[string]*node
	head     *node // newest
	tail     *node // oldest
	maxSize  int   // 0 or negative = unbounded
	size     atomic.Int64
	nodePool sync.Pool
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: defaultMaxSize,
	}
	for _, opt := range opts {
		opt(d)
	}

	d.seen = make(map[string]*node)
	d.nodePool = sync.Pool{
		New: func() interface{} {
			return &node{}
		},
	}
	return d
}

// SeenAndRecord atomically checks if id was seen and records it if not.
func (d *inMemoryDeduper) SeenAndRecord(ctx context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[id]; exists {
		return true
	}

	if d.maxSize > 0 && len(d.seen) >= d.maxSize {
		d.evictOldest()
	}

	n := d.nodePool.Get().(*node)
	n.id = id
	n.next = d.head
	if d.head != nil {
		d.head.prev = n
	}
	d.head = n
	if d.tail == nil {
		d.tail = n
	}
	d.seen[id] = n

	metrics.UpdateDedupeSize(int(d.size.Add(1)))
	return false
}

// Unrecord removes an ID from the seen list, allowing it to be retried.
func (d *inMemoryDeduper) Unrecord(ctx context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if n, exists := d.seen[id]; exists {
		d.remove(n)
		metrics.UpdateDedupeSize(int(d.size.Load()))
	}
}

// evictOldest drops the tail. Must be called with d.mu held.
func (d *inMemoryDeduper) evictOldest() {
	if d.tail == nil {
		return
	}
	d.remove(d.tail)
	metrics.RecordDedupeEviction()
}

// remove unlinks n and returns it to the pool. Must be called with d.mu held.
func (d *inMemoryDeduper) remove(n *node) {
	delete(d.seen, n.id)
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		d.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		d.tail = n.prev
	}
	n.reset()
	d.nodePool.Put(n)
	d.size.Add(-1)
}

// Size returns the current number of entries in the deduper.
func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
