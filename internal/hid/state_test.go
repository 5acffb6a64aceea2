package hid

import (
	"errors"
	"testing"
)

func TestButtonStateApply(t *testing.T) {
	var s ButtonState
	s.setConnected(true)

	steps := []struct {
		event Event
		want  uint16
	}{
		{Event{Type: Press, ButtonMask: 0x0001}, 0x0001},
		{Event{Type: Press, ButtonMask: 0x0004}, 0x0005},
		{Event{Type: Release, ButtonMask: 0x0001}, 0x0004},
		{Event{Type: Release, ButtonMask: 0x0008}, 0x0004},
		{Event{Type: EventType(7), ButtonMask: 0xFFFF}, 0x0004},
		{Event{Type: Release, ButtonMask: 0x0004}, 0x0000},
	}

	for i, step := range steps {
		s.Apply(step.event)
		if got := s.Mask(); got != step.want {
			t.Errorf("step %d: Mask() = 0x%04X, want 0x%04X", i, got, step.want)
		}
	}
}

func TestLineRead(t *testing.T) {
	var s ButtonState
	a, b := s.Line(0), s.Line(2)

	if _, err := a.Read(); !errors.Is(err, ErrDisconnected) {
		t.Errorf("Read() before connect error = %v, want ErrDisconnected", err)
	}

	s.setConnected(true)
	s.Apply(Event{Type: Press, ButtonMask: 0x0004})

	if pressed, err := a.Read(); err != nil || pressed {
		t.Errorf("line 0 Read() = %v, %v, want released", pressed, err)
	}
	if pressed, err := b.Read(); err != nil || !pressed {
		t.Errorf("line 2 Read() = %v, %v, want pressed", pressed, err)
	}

	// Losing the device drops every held button
	s.setConnected(false)
	s.setConnected(true)
	if pressed, _ := b.Read(); pressed {
		t.Error("line 2 still pressed after reconnect")
	}

	if _, err := s.Line(16).Read(); err == nil {
		t.Error("Read() on index 16 should fail")
	}
	if b.String() != "hid:2" {
		t.Errorf("String() = %q, want hid:2", b.String())
	}
}

func TestUnique(t *testing.T) {
	devices := []DeviceInfo{
		{VendorID: 0x1234, ProductID: 0x0001, Path: "a"},
		{VendorID: 0x1234, ProductID: 0x0001, Path: "b"},
		{VendorID: 0, ProductID: 0, Path: "c"},
		{VendorID: 0x1234, ProductID: 0x0002, Path: "d"},
	}

	got := Unique(devices)
	if len(got) != 2 {
		t.Fatalf("Unique() returned %d devices, want 2", len(got))
	}
	if got[0].Path != "a" || got[1].Path != "d" {
		t.Errorf("Unique() = %+v, want first interface of each device", got)
	}
	if got[0].Interfaces != 2 || got[1].Interfaces != 1 {
		t.Errorf("Interfaces = %d, %d, want 2, 1", got[0].Interfaces, got[1].Interfaces)
	}
}
