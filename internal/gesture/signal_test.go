package gesture

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestSignalWakesAllWaiters(t *testing.T) {
	s := newSignal()
	ctx := context.Background()

	const waiters = 3
	var ready, done sync.WaitGroup
	ready.Add(waiters)
	done.Add(waiters)

	for i := 0; i < waiters; i++ {
		go func() {
			defer done.Done()
			ch := make(chan error, 1)
			go func() { ch <- s.Wait(ctx) }()
			ready.Done()
			if err := <-ch; err != nil {
				t.Errorf("Wait() error = %v", err)
			}
		}()
	}

	ready.Wait()
	// Give the waiters time to park on the signal
	time.Sleep(20 * time.Millisecond)
	s.raise()

	finished := make(chan struct{})
	go func() {
		done.Wait()
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("waiters were not woken by raise()")
	}

	if s.Count() != 1 {
		t.Errorf("Count() = %d, want 1", s.Count())
	}
}

func TestSignalAutoClears(t *testing.T) {
	s := newSignal()
	s.raise()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	// A waiter that arrives after the raise waits for the next one
	if err := s.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait() error = %v, want DeadlineExceeded", err)
	}
}

func TestSignalWaitAfter(t *testing.T) {
	s := newSignal()
	s.raise()
	s.raise()

	n, err := s.WaitAfter(context.Background(), 1)
	if err != nil {
		t.Fatalf("WaitAfter() error = %v", err)
	}
	if n != 2 {
		t.Errorf("WaitAfter() = %d, want 2", n)
	}

	go func() {
		time.Sleep(10 * time.Millisecond)
		s.raise()
	}()

	n, err = s.WaitAfter(context.Background(), 2)
	if err != nil {
		t.Fatalf("WaitAfter() error = %v", err)
	}
	if n != 3 {
		t.Errorf("WaitAfter() = %d, want 3", n)
	}
}

func TestSignalWaitAfterCancelled(t *testing.T) {
	s := newSignal()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.WaitAfter(ctx, 0); !errors.Is(err, context.Canceled) {
		t.Errorf("WaitAfter() error = %v, want Canceled", err)
	}
}

func TestSignalRaisedAt(t *testing.T) {
	s := newSignal()
	if !s.RaisedAt(1).IsZero() {
		t.Error("RaisedAt(1) before any raise should be zero")
	}

	before := time.Now()
	s.raise()
	time.Sleep(5 * time.Millisecond)
	s.raise()

	first, second := s.RaisedAt(1), s.RaisedAt(2)
	if first.Before(before) || !second.After(first) {
		t.Errorf("RaisedAt(1) = %v, RaisedAt(2) = %v, want increasing times after %v", first, second, before)
	}
	if !s.RaisedAt(0).IsZero() || !s.RaisedAt(3).IsZero() {
		t.Error("RaisedAt outside the raised range should be zero")
	}

	for i := 0; i < raisedHistory; i++ {
		s.raise()
	}
	oldest := s.RaisedAt(s.Count() - raisedHistory + 1)
	if got := s.RaisedAt(1); !got.Equal(oldest) {
		t.Errorf("forgotten RaisedAt(1) = %v, want oldest known %v", got, oldest)
	}
}
