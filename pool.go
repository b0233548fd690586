package quadtree

import (
	"container/list"
	"context"
	"log/slog"
	"sync"
)

// Pool is an append-only typed store that hands out stable, move-only
// handles to its elements. A Handle stays valid until it is explicitly
// released or the owning Pool is Close()-d; allocation order is irrelevant
// and handles are never indices into a contiguous array observable to
// callers.
//
// Modeled on the original ManagedVariable<T> (original_source/ManagedVariable.hpp):
// a mutex-guarded doubly-linked list gives O(1) acquire/release without
// invalidating handles held to other elements. bart's pool.go gets the same
// property from sync.Pool, but recycles nodes across callers; here elements
// are not recycled, since a FieldSet's lifetime is tied to its owning
// QuadNode rather than to GC pressure (spec.md §3).
type Pool[T any] struct {
	mu  sync.Mutex
	log *slog.Logger

	elems *list.List // each Value is *T

	live  int64
	total int64
}

// Handle is a stable reference to an element living inside a Pool[T]. The
// zero Handle is invalid; only values returned by a Pool's Acquire* methods
// are usable. Handle is move-only by convention: copying one and using both
// copies after one has called Release is a caller error, mirroring the
// spec's "handles are move-only" contract (Go has no linear types to
// enforce this statically).
type Handle[T any] struct {
	pool *Pool[T]
	elem *list.Element
}

// NewPool creates an empty pool. The zero value of Pool is not usable
// because the backing list must be initialized.
func NewPool[T any](opts ...PoolOption[T]) *Pool[T] {
	p := &Pool[T]{
		elems: list.New(),
		log:   slog.New(discardHandler{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PoolOption configures a Pool at construction time.
type PoolOption[T any] func(*Pool[T])

// WithLogger overrides the logger used for the resource-leak diagnostic
// emitted by Close. The default discards all output.
func WithLogger[T any](l *slog.Logger) PoolOption[T] {
	return func(p *Pool[T]) { p.log = l }
}

// Acquire allocates a zero-valued T and returns its handle.
func (p *Pool[T]) Acquire() Handle[T] {
	var zero T
	return p.AcquireFrom(zero)
}

// AcquireFrom allocates a new element initialized from v and returns its
// handle.
func (p *Pool[T]) AcquireFrom(v T) Handle[T] {
	return p.AcquireEmplace(func() T { return v })
}

// AcquireEmplace allocates a new element via ctor, run under the pool lock,
// mirroring emplace_element(args...): construction and registration are
// atomic with respect to every other pool operation.
func (p *Pool[T]) AcquireEmplace(ctor func() T) Handle[T] {
	p.mu.Lock()
	defer p.mu.Unlock()

	v := ctor()
	elem := p.elems.PushBack(&v)
	p.live++
	p.total++
	return Handle[T]{pool: p, elem: elem}
}

// Valid reports whether h still refers to a live element.
func (h Handle[T]) Valid() bool {
	return h.pool != nil && h.elem != nil
}

// Get returns a pointer to the handle's element. Calling Get on a released
// or zero Handle panics; use Valid first if that's reachable.
func (h Handle[T]) Get() *T {
	if !h.Valid() {
		panic("quadtree: Get on invalid Handle")
	}
	return h.elem.Value.(*T)
}

// Release deterministically returns the element to the pool. Release is
// idempotent: releasing an already-released or zero Handle is a no-op, so
// callers may defer it unconditionally.
func (h *Handle[T]) Release() {
	if !h.Valid() {
		return
	}
	h.pool.mu.Lock()
	h.pool.elems.Remove(h.elem)
	h.pool.live--
	h.pool.mu.Unlock()
	h.pool = nil
	h.elem = nil
}

// Len reports the number of live elements currently held by the pool.
func (p *Pool[T]) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.elems.Len()
}

// Stats returns the number of currently live elements and the total number
// ever allocated, the Go analogue of bart's pool.Stats().
func (p *Pool[T]) Stats() (live int64, total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.live, p.total
}

// Close reports any elements still outstanding as a diagnostic, per the
// spec's "resource leak: N elements at destruction" contract. It never
// panics: a leak is a diagnostic, not a crash.
func (p *Pool[T]) Close() {
	p.mu.Lock()
	n := p.elems.Len()
	p.mu.Unlock()

	if n != 0 {
		p.log.Log(context.Background(), slog.LevelWarn,
			"resource leak: elements outstanding at pool destruction",
			slog.Int("count", n))
	}
}

// discardHandler is a slog.Handler that drops everything; it is the default
// so a Pool never writes to stderr unless the embedder opts in via
// WithLogger.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool   { return false }
func (discardHandler) Handle(context.Context, slog.Record) error  { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler       { return d }
func (d discardHandler) WithGroup(string) slog.Handler            { return d }
