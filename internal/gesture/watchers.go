package gesture

import (
	"context"
	"time"
)

// edge is what the poller tells the hold watcher after each sample
type edge int

const (
	edgePress   edge = iota // released -> pressed
	edgeRelease             // pressed -> released
)

// poll samples the line once per debounce interval. It is the only writer
// of the debounced state and raises Down on the released -> pressed edge.
func (e *Engine) poll(ctx context.Context) {
	for {
		e.observe(ctx, e.sample())

		if !sleep(ctx, e.DebounceInterval()) {
			return
		}
	}
}

// sample reads the line, falling back to the last debounced state when
// the read fails
func (e *Engine) sample() bool {
	pressed, err := e.sampler.Read()
	if err != nil {
		if !e.failing {
			e.failing = true
			e.logger.WithError(err).Warn("Failed to read input, keeping last state")
			e.report(newError(ErrInputRead, e.source, err))
		}
		return e.pressed.Load()
	}

	if e.failing {
		e.failing = false
		e.logger.Info("Input read recovered")
	}
	return pressed
}

func (e *Engine) observe(ctx context.Context, pressed bool) {
	was := e.pressed.Load()

	switch {
	case pressed && !was:
		e.pressed.Store(true)
		e.emit(Down)
		e.send(ctx, edgePress)
	case !pressed && was:
		e.pressed.Store(false)
		e.send(ctx, edgeRelease)
	}
}

func (e *Engine) send(ctx context.Context, ed edge) {
	select {
	case e.edges <- ed:
	case <-ctx.Done():
	}
}

// watchHold follows a press from Down to release. Hold is raised once per
// press, right after its Down, and stays active until the release.
func (e *Engine) watchHold(ctx context.Context) {
	for {
		var ed edge
		select {
		case <-ctx.Done():
			return
		case ed = <-e.edges:
		}

		switch ed {
		case edgePress:
			if !e.holding.Load() {
				e.holding.Store(true)
				e.emit(Hold)
			}
		case edgeRelease:
			if !e.holding.Load() {
				continue
			}
			e.holding.Store(false)
			if !forward(ctx, e.releases) {
				return
			}
		}
	}
}

// watchUp publishes each release as the Up gesture
func (e *Engine) watchUp(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-e.releases:
		}

		e.emit(Up)
		if !forward(ctx, e.ups) {
			return
		}
	}
}

// watchClick turns every Up into exactly one Click
func (e *Engine) watchClick(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-e.ups:
		}

		e.emit(Click)
		if !forward(ctx, e.clicks) {
			return
		}
	}
}

// watchDoubleClick races a second Click against the double-click window.
// A pair that produced a DoubleClick is consumed; the next Click starts a
// fresh race.
func (e *Engine) watchDoubleClick(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-e.clicks:
		}

		window := e.DoubleClickWindow()
		timer := time.NewTimer(window)

		select {
		case <-e.clicks:
			timer.Stop()
			e.emit(DoubleClick)
		case <-timer.C:
			e.logger.WithField("window", window).Trace("Double click window expired")
		case <-ctx.Done():
			timer.Stop()
			return
		}
	}
}

func forward(ctx context.Context, ch chan<- struct{}) bool {
	select {
	case ch <- struct{}{}:
		return true
	case <-ctx.Done():
		return false
	}
}

// sleep waits for d, returning false if ctx ends first
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
