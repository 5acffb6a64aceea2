package display

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/pleimann/pushbutton/internal/config"
	"github.com/pleimann/pushbutton/internal/gesture"
	"github.com/pleimann/pushbutton/internal/hid"
)

// Region sources
const (
	SourceGesture   = "gesture"
	SourceStatic    = "static"
	SourceTUIStatus = "tui_status"
)

// DeviceWriter is the interface for sending frames to the device
type DeviceWriter interface {
	SendFrame(frame *hid.DisplayFrame) error
}

// StatusSource provides recent TUI output to scan for STATUS: lines
type StatusSource interface {
	GetRecentOutput() string
}

var statusPattern = regexp.MustCompile(`(?m)^STATUS:\s*(.+?)\s*$`)

// Manager keeps the OLED regions up to date. Gesture regions show the last
// gesture seen on the bus, optionally limited to one button.
type Manager struct {
	config   config.DisplayConfig
	device   DeviceWriter
	renderer *Renderer
	encoder  *FrameEncoder
	logger   *log.Entry

	mu      sync.Mutex
	regions []*regionState
	full    bool // next update redraws the whole screen
	cancel  context.CancelFunc
	done    chan struct{}
}

type regionState struct {
	config  config.DisplayRegion
	content string
	dirty   bool
}

// NewManager creates a display manager for the configured regions
func NewManager(cfg config.DisplayConfig, device DeviceWriter) *Manager {
	m := &Manager{
		config:   cfg,
		device:   device,
		renderer: NewRenderer(cfg.Width, cfg.Height),
		encoder:  NewFrameEncoder(cfg.Width, cfg.Height),
		logger:   log.WithField("component", "display"),
		full:     true,
	}

	for _, regionCfg := range cfg.Regions {
		m.regions = append(m.regions, &regionState{
			config:  regionCfg,
			content: regionCfg.Content,
			dirty:   true,
		})
	}

	return m
}

// Handle records g in every gesture region that accepts its button. It has
// the shape of a bus subscriber.
func (m *Manager) Handle(ctx context.Context, g gesture.Gesture) error {
	text := fmt.Sprintf("%s %s", g.Source, g.Type.Short())

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, region := range m.regions {
		if region.config.Source != SourceGesture {
			continue
		}
		if region.config.Button != "" && region.config.Button != g.Source {
			continue
		}
		region.set(text)
	}
	return nil
}

func (r *regionState) set(content string) {
	if r.content != content {
		r.content = content
		r.dirty = true
	}
}

// Start runs the refresh loop until ctx is done or Stop is called. status
// may be nil.
func (m *Manager) Start(ctx context.Context, status StatusSource) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	m.mu.Lock()
	m.cancel = cancel
	m.done = done
	m.mu.Unlock()

	interval := time.Duration(m.config.UpdateIntervalMs) * time.Millisecond
	go func() {
		defer close(done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.update(status)
			}
		}
	}()
}

// Stop ends the refresh loop and blanks the display
func (m *Manager) Stop() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel = nil
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done

	if err := m.device.SendFrame(m.encoder.EncodeClear()); err != nil {
		m.logger.WithError(err).Debug("Failed to clear display")
	}
}

// SetRegionContent replaces the content of a named region
func (m *Manager) SetRegionContent(name, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, region := range m.regions {
		if region.config.Name == name {
			region.set(content)
		}
	}
}

// RegionContent returns the content of a named region
func (m *Manager) RegionContent(name string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, region := range m.regions {
		if region.config.Name == name {
			return region.content, true
		}
	}
	return "", false
}

// ForceRefresh redraws the whole screen on the next update
func (m *Manager) ForceRefresh() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.full = true
}

func (m *Manager) update(status StatusSource) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if status != nil {
		if match := statusPattern.FindAllStringSubmatch(status.GetRecentOutput(), -1); len(match) > 0 {
			latest := match[len(match)-1][1]
			for _, region := range m.regions {
				if region.config.Source == SourceTUIStatus {
					region.set(latest)
				}
			}
		}
	}

	var frames []*hid.DisplayFrame
	if m.full {
		m.renderer.Clear()
		for _, region := range m.regions {
			m.renderRegion(region)
			region.dirty = false
		}
		frames = m.encoder.ChunkFrame(m.renderer.GetFrameBuffer())
		m.full = false
	}

	for _, region := range m.regions {
		if !region.dirty {
			continue
		}
		m.renderRegion(region)
		region.dirty = false

		cfg := region.config
		data := m.renderer.GetRegion(cfg.X, cfg.Y, cfg.Width, cfg.Height)
		frames = append(frames, m.encoder.ChunkRegion(cfg.X, cfg.Y, cfg.Width, cfg.Height, data)...)
	}

	for _, frame := range frames {
		if err := m.device.SendFrame(frame); err != nil {
			m.logger.WithError(err).Debug("Failed to send display frame")
			// Redraw everything once the device is back
			m.full = true
			return
		}
	}
}

func (m *Manager) renderRegion(region *regionState) {
	cfg := region.config
	m.renderer.ClearRect(cfg.X, cfg.Y, cfg.Width, cfg.Height)
	if cfg.Border {
		m.renderer.DrawRect(cfg.X, cfg.Y, cfg.Width, cfg.Height)
	}
	if region.content == "" {
		return
	}
	m.renderer.DrawTextWrapped(cfg.X+2, cfg.Y+m.renderer.Ascent(), cfg.Width-4, region.content)
}
