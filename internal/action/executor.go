package action

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/pleimann/pushbutton/internal/gesture"
)

// KeyWriter is the interface for writing key sequences
type KeyWriter interface {
	WriteKey(key KeyPress) error
}

// Executor turns gestures into key presses on a KeyWriter
type Executor struct {
	writer KeyWriter
	mapper *Mapper
	delay  time.Duration
	logger *log.Entry
}

type ExecutorOption func(*Executor)

// WithKeyDelay pauses between the keys of one sequence
func WithKeyDelay(d time.Duration) ExecutorOption {
	return func(e *Executor) {
		e.delay = d
	}
}

func WithExecutorLogger(logger *log.Entry) ExecutorOption {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewExecutor creates an executor writing to writer. The mapper may be nil
// when only Execute is used.
func NewExecutor(writer KeyWriter, mapper *Mapper, opts ...ExecutorOption) *Executor {
	e := &Executor{
		writer: writer,
		mapper: mapper,
		logger: log.WithField("component", "action"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute writes a sequence of key strings
func (e *Executor) Execute(keys []string) error {
	return e.execute(context.Background(), keys)
}

func (e *Executor) execute(ctx context.Context, keys []string) error {
	presses, err := ParseKeys(keys)
	if err != nil {
		return err
	}

	for i, kp := range presses {
		if i > 0 && e.delay > 0 {
			select {
			case <-time.After(e.delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err := e.writer.WriteKey(kp); err != nil {
			return fmt.Errorf("failed to write key %q: %w", kp, err)
		}
	}
	return nil
}

// Handle runs the key sequence mapped to g, if any. It has the shape of a
// bus subscriber.
func (e *Executor) Handle(ctx context.Context, g gesture.Gesture) error {
	if e.mapper == nil {
		return nil
	}

	keys := e.mapper.Map(g)
	if len(keys) == 0 {
		return nil
	}

	e.logger.WithFields(log.Fields{
		"gesture": g.Key(),
		"keys":    keys,
	}).Debug("Executing action")

	if err := e.execute(ctx, keys); err != nil {
		return fmt.Errorf("action for %s failed: %w", g, err)
	}
	return nil
}

// LogWriter is a KeyWriter that only logs, used when no TUI is configured
type LogWriter struct {
	Logger *log.Entry
}

func (w LogWriter) WriteKey(key KeyPress) error {
	logger := w.Logger
	if logger == nil {
		logger = log.WithField("component", "action")
	}
	logger.WithField("key", key.String()).Info("Key press")
	return nil
}
