package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestEntryReadThrough(t *testing.T) {
	fetches := 0
	entry := NewEntry(func(context.Context) (int, error) {
		fetches++
		return fetches * 10, nil
	})

	if _, ok := entry.Peek(); ok {
		t.Fatal("fresh entry must be invalid")
	}

	v, err := entry.Get(context.Background())
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if v != 10 || fetches != 1 {
		t.Fatalf("unexpected first read: v=%d fetches=%d", v, fetches)
	}

	// Cached read must not refetch.
	v, _ = entry.Get(context.Background())
	if v != 10 || fetches != 1 {
		t.Fatalf("expected cached value, got v=%d fetches=%d", v, fetches)
	}

	entry.Invalidate()
	if _, ok := entry.Peek(); ok {
		t.Fatal("expected invalid after Invalidate")
	}
	v, _ = entry.Get(context.Background())
	if v != 20 || fetches != 2 {
		t.Fatalf("expected refetch after invalidate, got v=%d fetches=%d", v, fetches)
	}
}

func TestEntryFetchFailureStaysInvalid(t *testing.T) {
	boom := errors.New("boom")
	fail := true
	entry := NewEntry(func(context.Context) (string, error) {
		if fail {
			return "", boom
		}
		return "ok", nil
	})

	if _, err := entry.Get(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected fetch error, got %v", err)
	}
	if _, ok := entry.Peek(); ok {
		t.Fatal("failed fetch must leave the entry invalid")
	}

	fail = false
	v, err := entry.Get(context.Background())
	if err != nil || v != "ok" {
		t.Fatalf("expected retry to succeed, got %q, %v", v, err)
	}
}

func TestEntryFetchedAt(t *testing.T) {
	now := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	entry := NewEntry(func(context.Context) (int, error) { return 1, nil })
	entry.now = func() time.Time { return now }

	if _, ok := entry.FetchedAt(); ok {
		t.Fatal("invalid entry must not report a fetch time")
	}
	if _, err := entry.Get(context.Background()); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	fetchedAt, ok := entry.FetchedAt()
	if !ok || !fetchedAt.Equal(now) {
		t.Fatalf("unexpected fetch time %v, %t", fetchedAt, ok)
	}
}
