package input

import (
	"fmt"
	"sync"

	"github.com/stianeikeland/go-rpio/v4"
	"github.com/warthog618/go-gpiocdev"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/pleimann/pushbutton/internal/config"
)

const defaultChip = "gpiochip0"

var (
	periphOnce sync.Once
	periphErr  error
)

type periphLine struct {
	pin gpio.PinIO
}

func openPeriph(cfg config.InputConfig) (Line, error) {
	periphOnce.Do(func() {
		_, periphErr = host.Init()
	})
	if periphErr != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", periphErr)
	}

	pin := gpioreg.ByName(cfg.Pin)
	if pin == nil {
		return nil, fmt.Errorf("unknown pin %s", cfg.Pin)
	}

	pull := gpio.PullUp
	switch cfg.Pull {
	case "down":
		pull = gpio.PullDown
	case "none":
		pull = gpio.Float
	}
	if err := pin.In(pull, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("failed to configure %s as input: %w", cfg.Pin, err)
	}

	return &periphLine{pin: pin}, nil
}

func (l *periphLine) Read() (bool, error) {
	return l.pin.Read() == gpio.High, nil
}

func (l *periphLine) Close() error {
	return l.pin.Halt()
}

type cdevLine struct {
	line *gpiocdev.Line
}

func openGPIOCdev(cfg config.InputConfig) (Line, error) {
	chip := cfg.Chip
	if chip == "" {
		chip = defaultChip
	}

	opts := []gpiocdev.LineReqOption{gpiocdev.AsInput}
	switch cfg.Pull {
	case "down":
		opts = append(opts, gpiocdev.WithPullDown)
	case "none":
		opts = append(opts, gpiocdev.WithBiasDisabled)
	default:
		opts = append(opts, gpiocdev.WithPullUp)
	}

	l, err := gpiocdev.RequestLine(chip, *cfg.Line, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to request %s line %d: %w", chip, *cfg.Line, err)
	}
	return &cdevLine{line: l}, nil
}

func (l *cdevLine) Read() (bool, error) {
	v, err := l.line.Value()
	if err != nil {
		return false, err
	}
	return v == 1, nil
}

func (l *cdevLine) Close() error {
	return l.line.Close()
}

var rpioMu sync.Mutex

// rpio maps GPIO memory once for all of its lines
var rpioUsers int

type rpioLine struct {
	pin    rpio.Pin
	closed sync.Once
}

func openRPIO(cfg config.InputConfig) (Line, error) {
	rpioMu.Lock()
	defer rpioMu.Unlock()

	if rpioUsers == 0 {
		if err := rpio.Open(); err != nil {
			return nil, fmt.Errorf("failed to map gpio memory: %w", err)
		}
	}
	rpioUsers++

	pin := rpio.Pin(*cfg.Line)
	pin.Input()
	switch cfg.Pull {
	case "down":
		pin.PullDown()
	case "none":
		pin.PullOff()
	default:
		pin.PullUp()
	}

	return &rpioLine{pin: pin}, nil
}

func (l *rpioLine) Read() (bool, error) {
	return l.pin.Read() == rpio.High, nil
}

func (l *rpioLine) Close() error {
	var err error
	l.closed.Do(func() {
		rpioMu.Lock()
		defer rpioMu.Unlock()

		rpioUsers--
		if rpioUsers == 0 {
			err = rpio.Close()
		}
	})
	return err
}
