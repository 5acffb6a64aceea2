package gesture

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	DefaultDebounceInterval  = 50 * time.Millisecond
	DefaultDoubleClickWindow = 350 * time.Millisecond
)

// Sampler reads the raw state of the input line. True means pressed.
type Sampler interface {
	Read() (bool, error)
}

// Sink receives gestures that have no handler registered
type Sink interface {
	Notify(ctx context.Context, g Gesture, mode DispatchMode) error
}

// HandlerFunc replaces the sink for a single gesture type
type HandlerFunc func(ctx context.Context, g Gesture) error

// Option configures an Engine
type Option func(*Engine)

// WithSource sets the identifier passed along with every gesture
func WithSource(source string) Option {
	return func(e *Engine) {
		e.source = source
	}
}

// WithSink sets the default notification sink
func WithSink(sink Sink) Option {
	return func(e *Engine) {
		e.sink = sink
	}
}

func WithDebounceInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.debounce.Store(int64(d))
		}
	}
}

func WithDoubleClickWindow(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.doubleClick.Store(int64(d))
		}
	}
}

func WithDispatchMode(mode DispatchMode) Option {
	return func(e *Engine) {
		e.mode.Store(int32(mode))
	}
}

// WithErrorHook receives every contained failure (read, handler, sink)
func WithErrorHook(fn func(error)) Option {
	return func(e *Engine) {
		e.onError = fn
	}
}

func WithLogger(logger *log.Entry) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Engine debounces one polled button and derives Down, Hold, Up, Click and
// DoubleClick gestures from it
type Engine struct {
	sampler Sampler
	sink    Sink
	source  string
	onError func(error)
	logger  *log.Entry

	debounce    atomic.Int64
	doubleClick atomic.Int64
	mode        atomic.Int32

	pressed atomic.Bool
	holding atomic.Bool
	failing bool // only touched by the poller

	signals  [numTypes]*Signal
	handlers [numTypes]atomic.Pointer[HandlerFunc]

	// Internal pipeline: poller -> hold -> up -> click -> double click
	edges    chan edge
	releases chan struct{}
	ups      chan struct{}
	clicks   chan struct{}

	mu          sync.Mutex
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	started     bool
	dispatching [numTypes]bool
}

// NewEngine creates a gesture engine for a single input line
func NewEngine(sampler Sampler, opts ...Option) (*Engine, error) {
	if sampler == nil {
		return nil, ErrNilSampler
	}

	e := &Engine{sampler: sampler}
	e.debounce.Store(int64(DefaultDebounceInterval))
	e.doubleClick.Store(int64(DefaultDoubleClickWindow))
	e.mode.Store(int32(Synchronous))
	for i := range e.signals {
		e.signals[i] = newSignal()
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = log.WithField("button", e.source)
	}

	return e, nil
}

// Start launches the poller, the watchers and the dispatch loops
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.started {
		return ErrAlreadyStarted
	}
	e.started = true
	e.ctx, e.cancel = context.WithCancel(ctx)

	e.edges = make(chan edge, 8)
	e.releases = make(chan struct{}, 4)
	e.ups = make(chan struct{}, 4)
	e.clicks = make(chan struct{}, 4)

	for _, t := range Types {
		if e.sink != nil || e.handler(t) != nil {
			e.startDispatch(t)
		}
	}

	e.spawn("double_click", e.watchDoubleClick)
	e.spawn("click", e.watchClick)
	e.spawn("up", e.watchUp)
	e.spawn("hold", e.watchHold)
	e.spawn("poller", e.poll)

	e.logger.WithFields(log.Fields{
		"debounce":     e.DebounceInterval(),
		"double_click": e.DoubleClickWindow(),
		"mode":         e.DispatchMode(),
	}).Debug("Gesture engine started")

	return nil
}

// Stop cancels every loop and waits for them to exit. The engine may be
// started again afterwards.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.started {
		e.mu.Unlock()
		return
	}
	e.cancel()
	e.started = false
	e.dispatching = [numTypes]bool{}
	e.mu.Unlock()

	e.wg.Wait()

	e.pressed.Store(false)
	e.holding.Store(false)
}

// Handle registers fn for gesture t in place of the default sink, starting
// with the next occurrence. A nil fn reverts t to the sink.
func (e *Engine) Handle(t Type, fn HandlerFunc) error {
	if !t.valid() {
		return fmt.Errorf("invalid gesture type: %d", int(t))
	}

	if fn == nil {
		e.handlers[t].Store(nil)
	} else {
		e.handlers[t].Store(&fn)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started && !e.dispatching[t] && fn != nil {
		e.startDispatch(t)
	}
	return nil
}

func (e *Engine) handler(t Type) HandlerFunc {
	if p := e.handlers[t].Load(); p != nil {
		return *p
	}
	return nil
}

// spawn runs fn until the engine stops, restarting it one debounce
// interval after a panic
func (e *Engine) spawn(name string, fn func(ctx context.Context)) {
	ctx := e.ctx
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		for {
			if e.runLoop(ctx, name, fn) || ctx.Err() != nil {
				return
			}
			if !sleep(ctx, e.DebounceInterval()) {
				return
			}
			e.logger.WithField("loop", name).Warn("Restarting gesture loop")
		}
	}()
}

func (e *Engine) runLoop(ctx context.Context, name string, fn func(ctx context.Context)) (clean bool) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.WithFields(log.Fields{"loop": name, "panic": r}).Error("Gesture loop panicked")
			clean = false
		}
	}()
	fn(ctx)
	return true
}

func (e *Engine) report(err error) {
	if e.onError != nil {
		e.onError(err)
	}
}

// emit raises the public signal for t
func (e *Engine) emit(t Type) {
	n := e.signals[t].raise()
	e.logger.WithFields(log.Fields{"gesture": t.Short(), "count": n}).Debug("Gesture")
}

// Source returns the identifier passed to the sink
func (e *Engine) Source() string {
	return e.source
}

func (e *Engine) DebounceInterval() time.Duration {
	return time.Duration(e.debounce.Load())
}

// SetDebounceInterval changes the polling period from the next poll on
func (e *Engine) SetDebounceInterval(d time.Duration) error {
	if d <= 0 {
		return ErrInvalidDuration
	}
	e.debounce.Store(int64(d))
	return nil
}

func (e *Engine) DoubleClickWindow() time.Duration {
	return time.Duration(e.doubleClick.Load())
}

func (e *Engine) SetDoubleClickWindow(d time.Duration) error {
	if d <= 0 {
		return ErrInvalidDuration
	}
	e.doubleClick.Store(int64(d))
	return nil
}

func (e *Engine) DispatchMode() DispatchMode {
	return DispatchMode(e.mode.Load())
}

func (e *Engine) SetDispatchMode(mode DispatchMode) {
	e.mode.Store(int32(mode))
}

// Pressed reports the debounced state of the line
func (e *Engine) Pressed() bool {
	return e.pressed.Load()
}

// Holding reports whether a Hold is active
func (e *Engine) Holding() bool {
	return e.holding.Load()
}

// Signal returns the broadcast signal for t, or nil for an unknown type
func (e *Engine) Signal(t Type) *Signal {
	if !t.valid() {
		return nil
	}
	return e.signals[t]
}

func (e *Engine) Down() *Signal        { return e.signals[Down] }
func (e *Engine) Hold() *Signal        { return e.signals[Hold] }
func (e *Engine) Up() *Signal          { return e.signals[Up] }
func (e *Engine) Click() *Signal       { return e.signals[Click] }
func (e *Engine) DoubleClick() *Signal { return e.signals[DoubleClick] }
