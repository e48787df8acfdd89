package locking

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// ErrTimeout is returned when a lock cannot be acquired within the wait budget.
var ErrTimeout = errors.New("lock acquisition timed out")

// Registry hands out in-process mutual exclusion per string key. Keys name
// the resources an admission touches ("room:<id>", "staff:<id>",
// "booking:<id>"). Multi-key acquisition always proceeds in sorted key order
// so two admissions contending for overlapping resource sets cannot deadlock.
type Registry struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

// NewRegistry creates an empty lock registry.
func NewRegistry() *Registry {
	return &Registry{
		locks: make(map[string]chan struct{}),
	}
}

// lockChan returns the buffered channel backing the named lock, creating it
// on first use. A token in the channel means the lock is free.
func (r *Registry) lockChan(key string) chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch, ok := r.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		ch <- struct{}{}
		r.locks[key] = ch
	}
	return ch
}

// Acquire takes the named lock, waiting up to timeout. The returned release
// function must be called exactly once.
func (r *Registry) Acquire(ctx context.Context, key string, timeout time.Duration) (func(), error) {
	ch := r.lockChan(key)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-ch:
		return func() { ch <- struct{}{} }, nil
	case <-timer.C:
		return nil, ErrTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// AcquireAll takes every named lock, in sorted key order, within a single
// overall timeout. On failure all locks acquired so far are released in
// reverse order and nothing is held. Duplicate keys are collapsed.
func (r *Registry) AcquireAll(ctx context.Context, keys []string, timeout time.Duration) (func(), error) {
	ordered := dedupe(keys)
	sort.Strings(ordered)

	deadline := time.Now().Add(timeout)
	released := make([]func(), 0, len(ordered))

	releaseAll := func() {
		for i := len(released) - 1; i >= 0; i-- {
			released[i]()
		}
	}

	for _, key := range ordered {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			releaseAll()
			return nil, ErrTimeout
		}
		release, err := r.Acquire(ctx, key, remaining)
		if err != nil {
			releaseAll()
			return nil, err
		}
		released = append(released, release)
	}

	var once sync.Once
	return func() { once.Do(releaseAll) }, nil
}

func dedupe(keys []string) []string {
	seen := make(map[string]bool, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}
