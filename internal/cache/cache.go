// Package cache provides the read-through snapshot entries that back the
// console's shared view of server state. Entries are never patched in place:
// a mutating action invalidates them and the next read refetches, so the
// console can never show a status the server has not committed to.
package cache

import (
	"context"
	"sync"
	"time"
)

// FetchFunc loads a fresh value from the authoritative source.
type FetchFunc[T any] func(context.Context) (T, error)

// Entry is one read-through cache slot. Reads share the cached value until
// Invalidate discards it; a failed fetch leaves the entry invalid so the next
// read retries.
type Entry[T any] struct {
	mu        sync.Mutex
	fetch     FetchFunc[T]
	now       func() time.Time
	value     T
	fetchedAt time.Time
	valid     bool
}

// NewEntry constructs an invalid entry around the fetch function.
func NewEntry[T any](fetch FetchFunc[T]) *Entry[T] {
	return &Entry[T]{fetch: fetch, now: time.Now}
}

// Get returns the cached value, fetching first when the entry is invalid.
func (e *Entry[T]) Get(ctx context.Context) (T, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.valid {
		return e.value, nil
	}
	value, err := e.fetch(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	e.value = value
	e.fetchedAt = e.now().UTC()
	e.valid = true
	return e.value, nil
}

// Peek returns the cached value without fetching. The second result reports
// whether the entry currently holds a valid value.
func (e *Entry[T]) Peek() (T, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.valid {
		var zero T
		return zero, false
	}
	return e.value, true
}

// Invalidate discards the cached value; the next Get refetches.
func (e *Entry[T]) Invalidate() {
	e.mu.Lock()
	defer e.mu.Unlock()
	var zero T
	e.value = zero
	e.valid = false
}

// FetchedAt reports when the current value was fetched, if the entry is valid.
func (e *Entry[T]) FetchedAt() (time.Time, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fetchedAt, e.valid
}
