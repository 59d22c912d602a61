// Package history keeps the newest-first log of resolved winners.
package history

import (
	"sync"
	"time"
)

// TimestampLayout is the wall-clock display format for entries.
const TimestampLayout = "2006-01-02 15:04:05"

// Entry is one resolved winner. Entries are never mutated after Record.
type Entry[T any] struct {
	Value T
	At    time.Time
}

// Timestamp returns At formatted for display.
func (e Entry[T]) Timestamp() string {
	return e.At.Format(TimestampLayout)
}

// Ledger is an append-only, newest-first log, optionally capped.
// It is safe for concurrent use.
type Ledger[T any] struct {
	mu      sync.Mutex
	cap     int
	now     func() time.Time
	entries []Entry[T]
}

// NewLedger returns an empty ledger. A capacity of zero means unbounded.
//
// Precondition: capacity >= 0.
func NewLedger[T any](capacity int) *Ledger[T] {
	if capacity < 0 {
		panic("history: negative capacity")
	}
	return &Ledger[T]{cap: capacity, now: time.Now}
}

// WithClock replaces the wall clock used to stamp entries and returns l.
func (l *Ledger[T]) WithClock(now func() time.Time) *Ledger[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
	return l
}

// Record prepends v stamped with the current time.
//
// Postcondition: Entries()[0].Value == v; when capped, Len() <= capacity and
// the oldest entries were evicted.
func (l *Ledger[T]) Record(v T) Entry[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	e := Entry[T]{Value: v, At: l.now()}
	size := len(l.entries) + 1
	if l.cap > 0 && size > l.cap {
		size = l.cap
	}
	next := make([]Entry[T], 0, size)
	next = append(next, e)
	next = append(next, l.entries[:size-1]...)
	l.entries = next
	return e
}

// Entries returns a copy of the log, newest first.
func (l *Ledger[T]) Entries() []Entry[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry[T], len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of entries.
func (l *Ledger[T]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Cap returns the capacity; zero means unbounded.
func (l *Ledger[T]) Cap() int { return l.cap }

// Clear empties the log.
func (l *Ledger[T]) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}
