package gesture

import (
	"context"
	"sync"
	"time"
)

// raisedHistory is how many recent raise times a Signal remembers
const raisedHistory = 64

// Signal is an auto-clearing broadcast notification. Raising it wakes
// every goroutine currently waiting and leaves no pending state behind.
//
// Each raise bumps an occurrence counter, so a waiter that remembers the
// last count it saw can ask for the next occurrence without missing one
// that fired between two waits.
type Signal struct {
	mu     sync.Mutex
	count  uint64
	next   chan struct{}
	raised [raisedHistory]time.Time
}

func newSignal() *Signal {
	return &Signal{next: make(chan struct{})}
}

// raise wakes all waiters and resets the signal
func (s *Signal) raise() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.count++
	s.raised[s.count%raisedHistory] = time.Now()
	close(s.next)
	s.next = make(chan struct{})
	return s.count
}

// Count returns the number of occurrences raised so far
func (s *Signal) Count() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// RaisedAt returns when occurrence n was raised. Occurrences too old to be
// remembered report the oldest time still known; n = 0 or one not yet
// raised reports the zero time.
func (s *Signal) RaisedAt(n uint64) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n == 0 || n > s.count {
		return time.Time{}
	}
	if s.count-n >= raisedHistory {
		n = s.count - raisedHistory + 1
	}
	return s.raised[n%raisedHistory]
}

// Wait blocks until the next occurrence or until ctx is done
func (s *Signal) Wait(ctx context.Context) error {
	s.mu.Lock()
	ch := s.next
	s.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WaitAfter blocks until the occurrence count exceeds seen and returns the
// current count. It returns immediately if that already happened.
func (s *Signal) WaitAfter(ctx context.Context, seen uint64) (uint64, error) {
	for {
		s.mu.Lock()
		count, ch := s.count, s.next
		s.mu.Unlock()

		if count > seen {
			return count, nil
		}

		select {
		case <-ch:
		case <-ctx.Done():
			return count, ctx.Err()
		}
	}
}
