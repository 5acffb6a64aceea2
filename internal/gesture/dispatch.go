package gesture

import (
	"context"
	"fmt"
	"sync/atomic"

	log "github.com/sirupsen/logrus"
)

// startDispatch launches the dispatch loop for t, delivering every
// occurrence raised from now on. Callers hold e.mu.
func (e *Engine) startDispatch(t Type) {
	e.dispatching[t] = true
	var seen atomic.Uint64
	seen.Store(e.signals[t].Count())
	e.spawn("dispatch_"+t.Short(), func(ctx context.Context) {
		e.dispatch(ctx, t, &seen)
	})
}

// dispatch delivers every occurrence of t after seen. A slow sink or
// handler delays later occurrences but never drops them. seen survives a
// restart of the loop.
func (e *Engine) dispatch(ctx context.Context, t Type, seen *atomic.Uint64) {
	sig := e.signals[t]

	for {
		n, err := sig.WaitAfter(ctx, seen.Load())
		if err != nil {
			return
		}
		for next := seen.Load() + 1; next <= n; next++ {
			if ctx.Err() != nil {
				return
			}
			seen.Store(next)
			e.deliver(ctx, Gesture{Type: t, Source: e.source, Time: sig.RaisedAt(next)})
		}
	}
}

// deliver sends g to its handler if one is registered, otherwise to the sink
func (e *Engine) deliver(ctx context.Context, g Gesture) {
	if h := e.handler(g.Type); h != nil {
		if err := callHandler(ctx, h, g); err != nil {
			e.logger.WithError(err).WithField("gesture", g.Type.Short()).Warn("Gesture handler failed")
			e.report(newGestureError(ErrHandler, g.Type, e.source, err))
		}
		return
	}

	if e.sink == nil {
		return
	}

	mode := e.DispatchMode()
	if err := e.sink.Notify(ctx, g, mode); err != nil {
		e.logger.WithError(err).WithFields(log.Fields{
			"gesture": g.Type.Short(),
			"mode":    mode,
		}).Warn("Failed to deliver gesture")
		e.report(newGestureError(ErrSinkDelivery, g.Type, e.source, err))
	}
}

func callHandler(ctx context.Context, h HandlerFunc, g Gesture) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return h(ctx, g)
}
