// Package status holds the transient message shown after a set-N1 action.
package status

import (
	"sync"
	"time"
)

// ClearAfter is how long a message stays on the board.
const ClearAfter = 1000 * time.Millisecond

type timer interface {
	Stop() bool
}

// Board stores one message. Every Set arms its own clear, so a message is
// always blanked ClearAfter after any Set, even if a newer message replaced it.
type Board struct {
	mu      sync.Mutex
	message string
	setAt   time.Time
	nextID  uint64
	pending map[uint64]timer

	delay     time.Duration
	afterFunc func(time.Duration, func()) timer
	now       func() time.Time
}

func NewBoard() *Board {
	return &Board{
		pending: make(map[uint64]timer),
		delay:   ClearAfter,
		afterFunc: func(d time.Duration, f func()) timer {
			return time.AfterFunc(d, f)
		},
		now: time.Now,
	}
}

// Set replaces the message and schedules a clear.
func (b *Board) Set(msg string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.message = msg
	b.setAt = b.now()
	id := b.nextID
	b.nextID++
	b.pending[id] = b.afterFunc(b.delay, func() { b.clear(id) })
}

func (b *Board) clear(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.pending[id]; !ok {
		return
	}
	delete(b.pending, id)
	b.message = ""
}

// Message returns the current message, empty once cleared.
func (b *Board) Message() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.message
}

// Remaining returns how long until the newest message clears, zero when the
// board is empty.
func (b *Board) Remaining() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.remainingLocked()
}

// Current returns the message and its remaining time in one read.
func (b *Board) Current() (string, time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.message, b.remainingLocked()
}

func (b *Board) remainingLocked() time.Duration {
	if b.message == "" {
		return 0
	}
	left := b.delay - b.now().Sub(b.setAt)
	if left < 0 {
		return 0
	}
	return left
}

// Close stops every pending clear and blanks the board.
func (b *Board) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, t := range b.pending {
		t.Stop()
		delete(b.pending, id)
	}
	b.message = ""
}
