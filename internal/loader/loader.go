// Package loader implements request-scoped batched loading: single-key
// lookups issued while a request is being handled are collected for a short
// window and resolved with one grouped store query, then fanned back out to
// the callers that asked. A loader must be built fresh for every incoming
// request — it memoizes nothing beyond its own batches and is never shared.
package loader

import (
	"sync"
	"time"
)

// BatchFunc resolves a deduplicated key set in one store round-trip. Keys
// with no value are simply left out of the returned map.
type BatchFunc[K comparable, V any] func(keys []K) (map[K]V, error)

// Loader batches Load calls over a BatchFunc.
type Loader[K comparable, V any] struct {
	fetch BatchFunc[K, V]

	// wait is how long the first Load of a batch holds the batch open for
	// more keys before dispatching.
	wait time.Duration

	// maxBatch caps keys per fetch; 0 means unlimited.
	maxBatch int

	mu      sync.Mutex
	current *batch[K, V]
}

// Option configures a Loader.
type Option func(*config)

type config struct {
	wait     time.Duration
	maxBatch int
}

// WithWait sets the batch collection window.
func WithWait(d time.Duration) Option {
	return func(c *config) { c.wait = d }
}

// WithMaxBatch caps the number of keys dispatched in one fetch.
func WithMaxBatch(n int) Option {
	return func(c *config) { c.maxBatch = n }
}

// New builds a Loader around fetch. The default collection window is 1ms,
// long enough for one handler's synchronous loop over a result set to land
// every key in the same batch.
func New[K comparable, V any](fetch BatchFunc[K, V], opts ...Option) *Loader[K, V] {
	cfg := config{wait: time.Millisecond}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Loader[K, V]{fetch: fetch, wait: cfg.wait, maxBatch: cfg.maxBatch}
}

type batch[K comparable, V any] struct {
	keys    []K
	seen    map[K]struct{}
	done    chan struct{}
	results map[K]V
	err     error
}

// Load resolves one key, blocking until its batch is fetched. The second
// return value reports whether the store holds a value for the key.
func (l *Loader[K, V]) Load(key K) (V, bool, error) {
	return l.LoadThunk(key)()
}

// LoadThunk registers the key in the current batch and returns a function
// that blocks for the result. Registering every key first and resolving the
// thunks afterwards keeps a whole result set in one fetch.
func (l *Loader[K, V]) LoadThunk(key K) func() (V, bool, error) {
	l.mu.Lock()
	if l.current == nil {
		b := &batch[K, V]{
			seen: make(map[K]struct{}),
			done: make(chan struct{}),
		}
		l.current = b
		go l.timeout(b)
	}
	b := l.current

	if _, dup := b.seen[key]; !dup {
		b.seen[key] = struct{}{}
		b.keys = append(b.keys, key)
		if l.maxBatch > 0 && len(b.keys) >= l.maxBatch {
			l.dispatchLocked(b)
		}
	}
	l.mu.Unlock()

	return func() (V, bool, error) {
		<-b.done
		if b.err != nil {
			var zero V
			return zero, false, b.err
		}
		v, ok := b.results[key]
		return v, ok, nil
	}
}

// LoadAll resolves keys in request order, duplicates included: every position
// in the results lines up with the same position in keys. One underlying
// fetch serves the whole set. A fetch error is reported for every key.
func (l *Loader[K, V]) LoadAll(keys []K) ([]V, []bool, error) {
	thunks := make([]func() (V, bool, error), len(keys))
	for i, key := range keys {
		thunks[i] = l.LoadThunk(key)
	}

	values := make([]V, len(keys))
	founds := make([]bool, len(keys))
	for i, thunk := range thunks {
		v, ok, err := thunk()
		if err != nil {
			return nil, nil, err
		}
		values[i] = v
		founds[i] = ok
	}
	return values, founds, nil
}

// timeout dispatches b once the collection window closes, unless the
// max-batch path already did.
func (l *Loader[K, V]) timeout(b *batch[K, V]) {
	time.Sleep(l.wait)
	l.mu.Lock()
	if l.current == b {
		l.dispatchLocked(b)
	}
	l.mu.Unlock()
}

// dispatchLocked detaches b so later Loads start a new batch, then fetches in
// the background. Caller holds l.mu.
func (l *Loader[K, V]) dispatchLocked(b *batch[K, V]) {
	l.current = nil
	go func() {
		b.results, b.err = l.fetch(b.keys)
		close(b.done)
	}()
}
