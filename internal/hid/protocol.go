package hid

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Report IDs
const (
	ReportIDButtonEvent byte = 0x01
	ReportIDDisplay     byte = 0x02
)

const (
	EventTypePress   byte = 0x01
	EventTypeRelease byte = 0x02
)

const (
	DisplayCmdFullFrame byte = 0x01
	DisplayCmdPartial   byte = 0x02
	DisplayCmdClear     byte = 0x03
)

const (
	eventReportSize   = 8
	displayHeaderSize = 10

	// MaxButtons is the number of buttons a button report can describe
	MaxButtons = 16
)

var (
	ErrShortReport   = errors.New("report too short")
	ErrUnknownReport = errors.New("unknown report")
)

// Event is a button report from the device. Press reports carry the buttons
// that went down, release reports the buttons that came up.
type Event struct {
	Type       EventType
	ButtonMask uint16
	Timestamp  uint32
}

type EventType byte

const (
	Press   EventType = EventType(EventTypePress)
	Release EventType = EventType(EventTypeRelease)
)

func (e EventType) String() string {
	switch e {
	case Press:
		return "press"
	case Release:
		return "release"
	default:
		return fmt.Sprintf("unknown(%d)", e)
	}
}

// ParseEvent parses a raw HID report into an Event
// Expected format:
//
//	Byte 0: Report ID (0x01)
//	Byte 1: Event type (0x01=press, 0x02=release)
//	Byte 2-3: Button bitmask (little-endian)
//	Byte 4-7: Timestamp (ms since boot, little-endian u32)
func ParseEvent(data []byte) (*Event, error) {
	if len(data) < eventReportSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrShortReport, len(data))
	}
	if data[0] != ReportIDButtonEvent {
		return nil, fmt.Errorf("%w: id 0x%02X", ErrUnknownReport, data[0])
	}

	eventType := EventType(data[1])
	if eventType != Press && eventType != Release {
		return nil, fmt.Errorf("%w: event type 0x%02X", ErrUnknownReport, data[1])
	}

	return &Event{
		Type:       eventType,
		ButtonMask: binary.LittleEndian.Uint16(data[2:4]),
		Timestamp:  binary.LittleEndian.Uint32(data[4:8]),
	}, nil
}

// Encode serializes the event in the device's report format
func (e *Event) Encode() []byte {
	buf := make([]byte, eventReportSize)
	buf[0] = ReportIDButtonEvent
	buf[1] = byte(e.Type)
	binary.LittleEndian.PutUint16(buf[2:4], e.ButtonMask)
	binary.LittleEndian.PutUint32(buf[4:8], e.Timestamp)
	return buf
}

// Has reports whether the button at index is part of the event
func (e *Event) Has(index int) bool {
	return index >= 0 && index < MaxButtons && e.ButtonMask&(1<<index) != 0
}

// PressedButtons returns the indices set in the event's mask
func (e *Event) PressedButtons() []int {
	var buttons []int
	for i := 0; i < MaxButtons; i++ {
		if e.Has(i) {
			buttons = append(buttons, i)
		}
	}
	return buttons
}

// DisplayFrame is an update for the device's 1-bit OLED
type DisplayFrame struct {
	Command byte
	X       uint16
	Y       uint16
	Width   uint16
	Height  uint16
	Data    []byte
}

// Encode serializes the frame as a 10-byte header followed by packed pixels:
//
//	Byte 0: Report ID (0x02)
//	Byte 1: Command
//	Byte 2-9: X, Y, Width, Height (little-endian u16)
func (f *DisplayFrame) Encode() []byte {
	buf := make([]byte, displayHeaderSize+len(f.Data))

	buf[0] = ReportIDDisplay
	buf[1] = f.Command
	binary.LittleEndian.PutUint16(buf[2:4], f.X)
	binary.LittleEndian.PutUint16(buf[4:6], f.Y)
	binary.LittleEndian.PutUint16(buf[6:8], f.Width)
	binary.LittleEndian.PutUint16(buf[8:10], f.Height)
	copy(buf[displayHeaderSize:], f.Data)

	return buf
}

func NewFullFrame(width, height uint16, data []byte) *DisplayFrame {
	return &DisplayFrame{Command: DisplayCmdFullFrame, Width: width, Height: height, Data: data}
}

func NewPartialFrame(x, y, width, height uint16, data []byte) *DisplayFrame {
	return &DisplayFrame{Command: DisplayCmdPartial, X: x, Y: y, Width: width, Height: height, Data: data}
}

func NewClearCommand() *DisplayFrame {
	return &DisplayFrame{Command: DisplayCmdClear}
}
