package action

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pleimann/pushbutton/internal/config"
	"github.com/pleimann/pushbutton/internal/gesture"
)

type recordingWriter struct {
	mu   sync.Mutex
	keys []KeyPress
	at   []time.Time
	err  error
}

func (w *recordingWriter) WriteKey(key KeyPress) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.keys = append(w.keys, key)
	w.at = append(w.at, time.Now())
	return nil
}

func (w *recordingWriter) written() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, len(w.keys))
	for i, k := range w.keys {
		out[i] = k.String()
	}
	return out
}

func TestExecutorExecute(t *testing.T) {
	w := &recordingWriter{}
	e := NewExecutor(w, nil)

	if err := e.Execute([]string{"ctrl+c", "enter", "a"}); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got := strings.Join(w.written(), " "); got != "ctrl+c enter a" {
		t.Errorf("wrote %q, want %q", got, "ctrl+c enter a")
	}
}

func TestExecutorExecuteInvalidKey(t *testing.T) {
	w := &recordingWriter{}
	e := NewExecutor(w, nil)

	if err := e.Execute([]string{"a", "invalid_key_name"}); err == nil {
		t.Error("Execute() expected error for invalid key, got nil")
	}
	// The sequence is parsed before anything is written
	if len(w.written()) != 0 {
		t.Errorf("wrote %v before failing", w.written())
	}
}

func TestExecutorWriteError(t *testing.T) {
	cause := errors.New("pty closed")
	e := NewExecutor(&recordingWriter{err: cause}, nil)

	if err := e.Execute([]string{"a"}); !errors.Is(err, cause) {
		t.Errorf("Execute() error = %v, want %v", err, cause)
	}
}

func TestExecutorKeyDelay(t *testing.T) {
	w := &recordingWriter{}
	e := NewExecutor(w, nil, WithKeyDelay(20*time.Millisecond))

	if err := e.Execute([]string{"a", "b"}); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if gap := w.at[1].Sub(w.at[0]); gap < 15*time.Millisecond {
		t.Errorf("gap between keys = %v, want about 20ms", gap)
	}
}

func TestExecutorHandle(t *testing.T) {
	cfg := &config.Config{
		Buttons: []config.Button{{
			Name:    "btn_a",
			OnClick: &config.KeyAction{Keys: []string{"enter"}},
			OnHold:  &config.KeyAction{Keys: []string{"ctrl+c"}},
		}},
	}
	w := &recordingWriter{}
	e := NewExecutor(w, NewMapper(cfg))
	ctx := context.Background()

	gestures := []gesture.Gesture{
		{Type: gesture.Down, Source: "btn_a"},
		{Type: gesture.Hold, Source: "btn_a"},
		{Type: gesture.Up, Source: "btn_a"},
		{Type: gesture.Click, Source: "btn_a"},
		{Type: gesture.Click, Source: "btn_b"},
	}
	for _, g := range gestures {
		if err := e.Handle(ctx, g); err != nil {
			t.Fatalf("Handle(%s) error = %v", g, err)
		}
	}

	if got := strings.Join(w.written(), " "); got != "ctrl+c enter" {
		t.Errorf("wrote %q, want %q", got, "ctrl+c enter")
	}
}

func TestExecutorHandleCancelled(t *testing.T) {
	cfg := &config.Config{
		Buttons: []config.Button{{
			Name:    "a",
			OnClick: &config.KeyAction{Keys: []string{"x", "y"}},
		}},
	}
	w := &recordingWriter{}
	e := NewExecutor(w, NewMapper(cfg), WithKeyDelay(time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := e.Handle(ctx, gesture.Gesture{Type: gesture.Click, Source: "a"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Handle() error = %v, want DeadlineExceeded", err)
	}
	if got := w.written(); len(got) != 1 {
		t.Errorf("wrote %v, want only the first key", got)
	}
}

func TestLogWriter(t *testing.T) {
	if err := (LogWriter{}).WriteKey(KeyPress{Key: "a"}); err != nil {
		t.Errorf("WriteKey() error = %v", err)
	}
}
