// Package input opens the line samplers that feed gesture engines.
package input

import (
	"errors"
	"fmt"
	"io"

	"github.com/pleimann/pushbutton/internal/config"
	"github.com/pleimann/pushbutton/internal/gesture"
	"github.com/pleimann/pushbutton/internal/hid"
)

var ErrNoDevice = errors.New("hid input needs an open device")

// Line is a sampler that owns a hardware resource
type Line interface {
	gesture.Sampler
	io.Closer
}

// Deps holds shared resources a driver may need
type Deps struct {
	HID *hid.Device
}

// Open returns the sampler described by cfg. Drivers report the raw line
// level; active_low lines are inverted so Read reports pressed.
func Open(cfg config.InputConfig, deps Deps) (Line, error) {
	var (
		line Line
		err  error
	)

	switch cfg.Driver {
	case config.DriverPeriph:
		line, err = openPeriph(cfg)
	case config.DriverGPIOCdev:
		line, err = openGPIOCdev(cfg)
	case config.DriverRPIO:
		line, err = openRPIO(cfg)
	case config.DriverHID:
		if deps.HID == nil {
			return nil, ErrNoDevice
		}
		if cfg.Index == nil {
			return nil, fmt.Errorf("hid input needs an index")
		}
		line = nopCloser{deps.HID.Line(*cfg.Index)}
	case config.DriverScript:
		line = NewScript(cfg.Script)
	default:
		return nil, fmt.Errorf("unknown input driver: %s", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s input: %w", cfg.Driver, err)
	}

	if cfg.ActiveLow != nil && *cfg.ActiveLow {
		line = Inverted(line)
	}
	return line, nil
}

// Inverted flips the level reported by l
func Inverted(l Line) Line {
	return inverted{l}
}

type inverted struct {
	Line
}

func (i inverted) Read() (bool, error) {
	level, err := i.Line.Read()
	if err != nil {
		return false, err
	}
	return !level, nil
}

type nopCloser struct {
	gesture.Sampler
}

func (nopCloser) Close() error { return nil }
