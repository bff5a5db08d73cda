// Package dedupe tracks already-seen event ids so that retried ball
// submissions are recorded at most once.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

const defaultMaxSize = 50_000

// Deduper records seen event ids.
type Deduper interface {
	// SeenAndRecord atomically checks whether id was seen and records it
	// if not. Returns true when id was already seen.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord forgets an id, allowing a retry after a failed write.
	Unrecord(ctx context.Context, id string)

	// Size reports the number of tracked ids.
	Size() int64
}

// Option applies a configuration option to the in-memory deduper.
type Option func(*ringDeduper)

// WithMaxSize bounds the number of tracked ids. Zero or negative means
// unbounded.
func WithMaxSize(n int) Option {
	return func(d *ringDeduper) {
		d.maxSize = n
	}
}

// ringDeduper keeps ids in a map plus a fixed-size ring of insertion order.
// When the ring is full the oldest id is evicted; unbounded mode skips the
// ring entirely.
type ringDeduper struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	ring    []string
	next    int
	maxSize int
	size    atomic.Int64
}

// NewInMemoryDeduper creates an in-memory deduper.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &ringDeduper{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]struct{})
	if d.maxSize > 0 {
		d.ring = make([]string, d.maxSize)
	}
	return d
}

func (d *ringDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}

	if d.maxSize > 0 {
		if old := d.ring[d.next]; old != "" {
			delete(d.seen, old)
			d.size.Add(-1)
		}
		d.ring[d.next] = id
		d.next = (d.next + 1) % d.maxSize
	}
	d.seen[id] = struct{}{}
	d.size.Add(1)
	return false
}

func (d *ringDeduper) Unrecord(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; !ok {
		return
	}
	delete(d.seen, id)
	d.size.Add(-1)
	if d.maxSize > 0 {
		for i, v := range d.ring {
			if v == id {
				d.ring[i] = ""
				break
			}
		}
	}
}

func (d *ringDeduper) Size() int64 {
	return d.size.Load()
}
