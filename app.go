package main

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/pleimann/pushbutton/internal/action"
	"github.com/pleimann/pushbutton/internal/bus"
	"github.com/pleimann/pushbutton/internal/config"
	"github.com/pleimann/pushbutton/internal/display"
	"github.com/pleimann/pushbutton/internal/gesture"
	"github.com/pleimann/pushbutton/internal/hid"
	"github.com/pleimann/pushbutton/internal/input"
	"github.com/pleimann/pushbutton/internal/pty"
)

const busStopTimeout = 2 * time.Second

type appOptions struct {
	actions bool // run key actions and the TUI
	display bool // drive the device display
}

type button struct {
	config config.Button
	line   input.Line
	engine *gesture.Engine
}

type App struct {
	config *config.Config
	logger *log.Entry

	bus            *bus.Bus
	hidDevice      *hid.Device
	buttons        []*button
	actionMapper   *action.Mapper
	actionExecutor *action.Executor
	ptyManager     *pty.Manager
	displayManager *display.Manager

	mu     sync.Mutex
	errors atomic.Uint64
}

func newApp(cfg *config.Config, opts appOptions) (*App, error) {
	app := &App{
		config: cfg,
		logger: log.WithField("component", "app"),
	}

	app.bus = bus.New(
		bus.WithQueueSize(cfg.Bus.QueueSize),
		bus.WithWorkerCount(cfg.Bus.Workers),
		bus.WithErrorHook(app.reportError),
		bus.WithLogger(log.WithField("component", "bus")),
	)

	if cfg.Device.Enabled() && (usesHID(cfg) || (opts.display && len(cfg.Display.Regions) > 0)) {
		dev, err := hid.NewDevice(cfg.Device.VendorID, cfg.Device.ProductID)
		if err != nil {
			return nil, fmt.Errorf("failed to open HID device: %w", err)
		}
		app.hidDevice = dev
	}

	for _, btnCfg := range cfg.Buttons {
		btn, err := app.openButton(btnCfg)
		if err != nil {
			app.release()
			return nil, err
		}
		app.buttons = append(app.buttons, btn)
	}

	if opts.actions {
		var writer action.KeyWriter = action.LogWriter{Logger: log.WithField("component", "action")}
		if cfg.TUI.Command != "" {
			ptyManager, err := pty.NewManager(cfg.TUI.Command, cfg.TUI.Args, cfg.TUI.WorkingDir)
			if err != nil {
				app.release()
				return nil, fmt.Errorf("failed to create PTY manager: %w", err)
			}
			app.ptyManager = ptyManager
			writer = pty.NewWriter(ptyManager)
		}

		app.actionMapper = action.NewMapper(cfg)
		app.actionExecutor = action.NewExecutor(writer, app.actionMapper,
			action.WithKeyDelay(time.Duration(cfg.TUI.KeyDelayMs)*time.Millisecond),
			action.WithExecutorLogger(log.WithFields(log.Fields{"component": "action", "tui": cfg.TUI.Command})))
	}

	if opts.display && app.hidDevice != nil && len(cfg.Display.Regions) > 0 {
		app.displayManager = display.NewManager(cfg.Display, app.hidDevice)
	}

	return app, nil
}

func usesHID(cfg *config.Config) bool {
	for _, btn := range cfg.Buttons {
		if btn.Input.Driver == config.DriverHID {
			return true
		}
	}
	return false
}

func (a *App) openButton(cfg config.Button) (*button, error) {
	line, err := input.Open(cfg.Input, input.Deps{HID: a.hidDevice})
	if err != nil {
		return nil, fmt.Errorf("button %s: %w", cfg.Name, err)
	}

	engine, err := gesture.NewEngine(line,
		gesture.WithSource(cfg.Name),
		gesture.WithSink(a.bus),
		gesture.WithDebounceInterval(cfg.Debounce()),
		gesture.WithDoubleClickWindow(cfg.DoubleClick()),
		gesture.WithDispatchMode(dispatchMode(cfg)),
		gesture.WithErrorHook(a.reportError),
		gesture.WithLogger(log.WithFields(log.Fields{
			"component": "gesture",
			"button":    cfg.Name,
		})),
	)
	if err != nil {
		line.Close()
		return nil, fmt.Errorf("button %s: %w", cfg.Name, err)
	}

	return &button{config: cfg, line: line, engine: engine}, nil
}

func dispatchMode(cfg config.Button) gesture.DispatchMode {
	if cfg.Synchronous() {
		return gesture.Synchronous
	}
	return gesture.Asynchronous
}

// reportError counts failures from engines and bus subscribers. Both already
// log the details.
func (a *App) reportError(err error) {
	a.errors.Add(1)

	var gerr *gesture.Error
	if errors.As(err, &gerr) && errors.Is(err, gesture.ErrHandler) {
		a.logger.WithField("gesture", gerr.Type).Debug("Action failed")
	}
}

// Run starts every component and blocks until ctx is done
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.hidDevice != nil {
		reconnect := time.Duration(a.config.Device.ReconnectMs) * time.Millisecond
		go func() {
			if err := a.hidDevice.Run(ctx, reconnect); err != nil && ctx.Err() == nil {
				a.logger.WithError(err).Error("HID device stopped")
			}
		}()
	}

	if err := a.bus.Start(); err != nil {
		return fmt.Errorf("failed to start bus: %w", err)
	}

	if a.ptyManager != nil {
		if err := a.ptyManager.Start(ctx); err != nil {
			a.shutdown()
			return fmt.Errorf("failed to start PTY: %w", err)
		}
	}

	if a.actionExecutor != nil {
		if _, err := a.bus.Subscribe(a.actionExecutor.Handle); err != nil {
			a.shutdown()
			return fmt.Errorf("failed to subscribe actions: %w", err)
		}
	}

	if a.displayManager != nil {
		if _, err := a.bus.Subscribe(a.displayManager.Handle); err != nil {
			a.shutdown()
			return fmt.Errorf("failed to subscribe display: %w", err)
		}
		var status display.StatusSource
		if a.ptyManager != nil {
			status = a.ptyManager
		}
		a.displayManager.Start(ctx, status)
	}

	for _, btn := range a.buttons {
		if err := btn.engine.Start(ctx); err != nil {
			a.shutdown()
			return fmt.Errorf("failed to start button %s: %w", btn.config.Name, err)
		}
		a.logger.WithFields(log.Fields{
			"button":       btn.config.Name,
			"driver":       btn.config.Input.Driver,
			"debounce":     btn.config.Debounce(),
			"double_click": btn.config.DoubleClick(),
			"sync":         btn.config.Synchronous(),
		}).Debug("Button started")
	}

	a.logger.WithField("buttons", len(a.buttons)).Info("Running")

	<-ctx.Done()
	a.shutdown()
	return nil
}

// Reload applies timing and action changes from cfg. Input changes need a
// restart.
func (a *App) Reload(cfg *config.Config) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, btn := range a.buttons {
		next, ok := cfg.FindButton(btn.config.Name)
		if !ok {
			a.logger.WithField("button", btn.config.Name).Warn("Button removed from config, restart to apply")
			continue
		}
		if !reflect.DeepEqual(next.Input, btn.config.Input) {
			a.logger.WithField("button", btn.config.Name).Warn("Input changed, restart to apply")
		}

		if err := btn.engine.SetDebounceInterval(next.Debounce()); err != nil {
			a.logger.WithError(err).WithField("button", btn.config.Name).Warn("Debounce interval not applied")
		}
		if err := btn.engine.SetDoubleClickWindow(next.DoubleClick()); err != nil {
			a.logger.WithError(err).WithField("button", btn.config.Name).Warn("Double-click window not applied")
		}
		btn.engine.SetDispatchMode(dispatchMode(*next))
		btn.config = *next
	}

	for _, next := range cfg.Buttons {
		if _, ok := a.config.FindButton(next.Name); !ok {
			a.logger.WithField("button", next.Name).Warn("New button in config, restart to apply")
		}
	}

	if a.actionMapper != nil {
		a.actionMapper.Reload(cfg)
	}
	if a.displayManager != nil {
		for _, region := range cfg.Display.Regions {
			if region.Source == display.SourceStatic {
				a.displayManager.SetRegionContent(region.Name, region.Content)
			}
		}
	}
	a.config = cfg
}

func (a *App) shutdown() {
	a.logger.Debug("Shutting down")

	for _, btn := range a.buttons {
		btn.engine.Stop()
	}
	if a.displayManager != nil {
		a.displayManager.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), busStopTimeout)
	defer cancel()
	if err := a.bus.Stop(ctx); err != nil {
		a.logger.WithError(err).Warn("Bus did not drain")
	}

	if a.ptyManager != nil {
		a.ptyManager.Stop()
	}
	a.release()

	stats := a.bus.Stats()
	a.logger.WithFields(log.Fields{
		"published": stats.Published,
		"delivered": stats.Delivered,
		"dropped":   stats.Dropped,
		"failed":    stats.Failed,
		"errors":    a.errors.Load(),
	}).Debug("Gesture totals")
}

// release closes the input lines and the HID device
func (a *App) release() {
	for _, btn := range a.buttons {
		if err := btn.line.Close(); err != nil {
			a.logger.WithError(err).WithField("button", btn.config.Name).Debug("Failed to close input")
		}
	}
	if a.hidDevice != nil {
		a.hidDevice.Close()
	}
}
