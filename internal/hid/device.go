package hid

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/karalabe/hid"
	log "github.com/sirupsen/logrus"

	"github.com/pleimann/pushbutton/internal/utils"
)

var (
	ErrDeviceClosed = errors.New("device closed")
	ErrDisconnected = errors.New("device disconnected")
)

// Device represents a connection to the macropad HID device. While Run is
// active it tracks which buttons are held so each one can be sampled as a
// single input line.
type Device struct {
	vendorID  uint16
	productID uint16
	device    *hid.Device
	mu        sync.Mutex
	closed    bool

	state  ButtonState
	logger *log.Entry
}

// NewDevice opens a connection to a HID device with the specified vendor and product IDs
func NewDevice(vendorID, productID uint16) (*Device, error) {
	devices := hid.Enumerate(vendorID, productID)
	if len(devices) == 0 {
		if len(hid.Enumerate(0, 0)) == 0 {
			return nil, fmt.Errorf("no HID devices found on system - check USB connection")
		}
		name := utils.ExecutableName()
		return nil, fmt.Errorf("no device found with VendorID=0x%04X, ProductID=0x%04X\n"+
			"  Run '%s list-devices' to see available devices\n"+
			"  Run '%s set-device' to configure the correct device",
			vendorID, productID, name, name)
	}

	dev, err := openFirst(devices)
	if err != nil {
		return nil, fmt.Errorf("failed to open any of %d interfaces for device 0x%04X:0x%04X: %w\n"+
			"  This may be a permissions issue. On Linux, add a udev rule for the device;\n"+
			"  on macOS, allow your terminal under Privacy & Security > Input Monitoring",
			len(devices), vendorID, productID, err)
	}

	d := &Device{
		vendorID:  vendorID,
		productID: productID,
		device:    dev,
		logger: log.WithFields(log.Fields{
			"component": "hid",
			"device":    fmt.Sprintf("%04x:%04x", vendorID, productID),
		}),
	}
	d.state.setConnected(true)
	return d, nil
}

// Some devices expose several interfaces and not all of them can be opened
func openFirst(devices []hid.DeviceInfo) (*hid.Device, error) {
	var lastErr error
	for _, info := range devices {
		dev, err := info.Open()
		if err == nil {
			return dev, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// Close closes the HID device connection
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true
	d.state.setConnected(false)

	if d.device != nil {
		return d.device.Close()
	}
	return nil
}

// Line returns a sampler for the button at index
func (d *Device) Line(index int) *Line {
	return d.state.Line(index)
}

// Mask returns the buttons currently held
func (d *Device) Mask() uint16 {
	return d.state.Mask()
}

// Run reads button events until ctx is done, reconnecting when the device
// goes away. Lines read as failing while the device is disconnected.
func (d *Device) Run(ctx context.Context, reconnectInterval time.Duration) error {
	events := make(chan Event, 64)
	go func() {
		for ev := range events {
			d.state.Apply(ev)
		}
	}()
	defer close(events)

	for {
		err := d.readEvents(ctx, events)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(err, ErrDeviceClosed) {
			return err
		}

		d.state.setConnected(false)
		d.logger.WithError(err).Warn("HID device lost, waiting for it to come back")

		if err := d.waitForDevice(ctx, reconnectInterval); err != nil {
			return err
		}
		d.state.setConnected(true)
		d.logger.Info("HID device reconnected")
	}
}

// readEvents forwards button reports until the device fails or ctx ends
func (d *Device) readEvents(ctx context.Context, events chan<- Event) error {
	buf := make([]byte, 64)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		d.mu.Lock()
		if d.closed {
			d.mu.Unlock()
			return ErrDeviceClosed
		}
		dev := d.device
		d.mu.Unlock()

		n, err := dev.Read(buf)
		if err != nil {
			return fmt.Errorf("read error: %w", err)
		}
		if n == 0 {
			continue
		}

		event, err := ParseEvent(buf[:n])
		if err != nil {
			d.logger.WithError(err).Trace("Ignoring HID report")
			continue
		}

		select {
		case events <- *event:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Write sends data to the HID device
func (d *Device) Write(data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrDeviceClosed
	}
	if d.device == nil {
		return ErrDisconnected
	}

	_, err := d.device.Write(data)
	return err
}

// SendFrame sends a display frame to the device
func (d *Device) SendFrame(frame *DisplayFrame) error {
	return d.Write(frame.Encode())
}

// reopen replaces the handle with a fresh one for the same ids
func (d *Device) reopen() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrDeviceClosed
	}
	if d.device != nil {
		d.device.Close()
		d.device = nil
	}

	devices := hid.Enumerate(d.vendorID, d.productID)
	if len(devices) == 0 {
		return ErrNotFound
	}

	dev, err := openFirst(devices)
	if err != nil {
		return fmt.Errorf("failed to open device: %w", err)
	}
	d.device = dev
	return nil
}

// waitForDevice retries reopen every interval until it succeeds
func (d *Device) waitForDevice(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			err := d.reopen()
			if err == nil {
				return nil
			}
			if errors.Is(err, ErrDeviceClosed) {
				return err
			}
		}
	}
}
