package bus

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	log "github.com/sirupsen/logrus"

	"github.com/pleimann/pushbutton/internal/gesture"
)

// Sentinel errors for the gesture bus.
var (
	ErrNotRunning       = errors.New("gesture bus is not running")
	ErrAlreadyRunning   = errors.New("gesture bus is already running")
	ErrQueueFull        = errors.New("gesture queue is full")
	ErrNilHandler       = errors.New("handler cannot be nil")
	ErrNotSubscribed    = errors.New("subscription not found")
	ErrSubscriberPanic  = errors.New("subscriber panicked")
	ErrShutdownDeadline = errors.New("shutdown deadline exceeded")
)

// HandlerFunc receives gestures published on the bus
type HandlerFunc func(ctx context.Context, g gesture.Gesture) error

// Stats holds delivery counters
type Stats struct {
	Published uint64
	Delivered uint64
	Dropped   uint64
	Failed    uint64
}

type subscription struct {
	id    uint64
	fn    HandlerFunc
	types []gesture.Type
}

func (s subscription) wants(t gesture.Type) bool {
	return len(s.types) == 0 || slices.Contains(s.types, t)
}

type task struct {
	ctx context.Context
	g   gesture.Gesture
}

// Bus is the process-wide gesture bus. It is the default sink for every
// gesture engine: synchronous notifications are delivered on the caller's
// goroutine, asynchronous ones go through a bounded queue and a worker pool.
type Bus struct {
	queueSize   int
	workerCount int
	onError     func(error)
	logger      *log.Entry

	mu     sync.RWMutex
	subs   []subscription
	nextID uint64

	runMu   sync.Mutex
	queue   chan task
	running atomic.Bool
	wg      sync.WaitGroup

	published atomic.Uint64
	delivered atomic.Uint64
	dropped   atomic.Uint64
	failed    atomic.Uint64
}

var _ gesture.Sink = (*Bus)(nil)

// Option configures a Bus
type Option func(*Bus)

func WithQueueSize(size int) Option {
	return func(b *Bus) {
		if size > 0 {
			b.queueSize = size
		}
	}
}

func WithWorkerCount(count int) Option {
	return func(b *Bus) {
		if count > 0 {
			b.workerCount = count
		}
	}
}

// WithErrorHook receives delivery failures of asynchronous notifications
func WithErrorHook(fn func(error)) Option {
	return func(b *Bus) {
		b.onError = fn
	}
}

func WithLogger(logger *log.Entry) Option {
	return func(b *Bus) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// New creates a gesture bus. It must be started before use.
func New(opts ...Option) *Bus {
	b := &Bus{
		queueSize:   64,
		workerCount: 1,
		logger:      log.WithField("component", "bus"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Start starts the asynchronous delivery workers
func (b *Bus) Start() error {
	b.runMu.Lock()
	defer b.runMu.Unlock()

	if b.running.Load() {
		return ErrAlreadyRunning
	}

	b.queue = make(chan task, b.queueSize)
	for i := 0; i < b.workerCount; i++ {
		b.wg.Add(1)
		go b.worker(b.queue)
	}
	b.running.Store(true)
	return nil
}

// Stop stops accepting gestures and waits for queued ones to be delivered
// or until ctx is done
func (b *Bus) Stop(ctx context.Context) error {
	b.runMu.Lock()
	if !b.running.Swap(false) {
		b.runMu.Unlock()
		return ErrNotRunning
	}
	close(b.queue)
	b.runMu.Unlock()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrShutdownDeadline, ctx.Err())
	}
}

// IsRunning reports whether the bus accepts gestures
func (b *Bus) IsRunning() bool {
	return b.running.Load()
}

// Subscribe registers fn for the given gesture types, or for every type
// when none are given. It returns an id for Unsubscribe.
func (b *Bus) Subscribe(fn HandlerFunc, types ...gesture.Type) (uint64, error) {
	if fn == nil {
		return 0, ErrNilHandler
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	b.subs = append(b.subs, subscription{
		id:    b.nextID,
		fn:    fn,
		types: slices.Clone(types),
	})
	return b.nextID, nil
}

// Unsubscribe removes a subscription
func (b *Bus) Unsubscribe(id uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subs {
		if s.id == id {
			b.subs = slices.Delete(slices.Clone(b.subs), i, i+1)
			return nil
		}
	}
	return ErrNotSubscribed
}

// Notify publishes g. In synchronous mode it returns once every subscriber
// has run, with their errors joined. In asynchronous mode it returns once g
// is queued.
func (b *Bus) Notify(ctx context.Context, g gesture.Gesture, mode gesture.DispatchMode) error {
	if mode == gesture.Asynchronous {
		return b.enqueue(ctx, g)
	}

	if !b.running.Load() {
		return ErrNotRunning
	}
	b.published.Add(1)
	return b.deliver(ctx, g)
}

func (b *Bus) enqueue(ctx context.Context, g gesture.Gesture) error {
	b.runMu.Lock()
	defer b.runMu.Unlock()

	if !b.running.Load() {
		return ErrNotRunning
	}

	// Queued gestures are delivered even if the publishing engine stops
	t := task{ctx: context.WithoutCancel(ctx), g: g}
	select {
	case b.queue <- t:
		b.published.Add(1)
		return nil
	default:
		b.dropped.Add(1)
		return ErrQueueFull
	}
}

func (b *Bus) worker(queue <-chan task) {
	defer b.wg.Done()

	for t := range queue {
		if err := b.deliver(t.ctx, t.g); err != nil {
			b.logger.WithError(err).WithField("gesture", t.g.Key()).Warn("Async gesture delivery failed")
			if b.onError != nil {
				b.onError(err)
			}
		}
	}
}

func (b *Bus) deliver(ctx context.Context, g gesture.Gesture) error {
	b.mu.RLock()
	subs := b.subs
	b.mu.RUnlock()

	var errs []error
	for _, s := range subs {
		if !s.wants(g.Type) {
			continue
		}
		if err := call(ctx, s.fn, g); err != nil {
			b.failed.Add(1)
			errs = append(errs, fmt.Errorf("subscriber %d: %w", s.id, err))
			continue
		}
		b.delivered.Add(1)
	}
	return errors.Join(errs...)
}

func call(ctx context.Context, fn HandlerFunc, g gesture.Gesture) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrSubscriberPanic, r)
		}
	}()
	return fn(ctx, g)
}

// Stats returns a snapshot of the delivery counters
func (b *Bus) Stats() Stats {
	return Stats{
		Published: b.published.Load(),
		Delivered: b.delivered.Load(),
		Dropped:   b.dropped.Load(),
		Failed:    b.failed.Load(),
	}
}
