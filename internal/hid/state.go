package hid

import (
	"fmt"
	"sync"
)

// ButtonState folds press and release events into the set of held buttons
type ButtonState struct {
	mu        sync.RWMutex
	mask      uint16
	connected bool
}

// Apply updates the held set from ev. A press event carries the buttons that
// went down, a release event the buttons that came up.
func (s *ButtonState) Apply(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev.Type {
	case Press:
		s.mask |= ev.ButtonMask
	case Release:
		s.mask &^= ev.ButtonMask
	}
}

func (s *ButtonState) Mask() uint16 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mask
}

// A disconnected device has no held buttons
func (s *ButtonState) setConnected(connected bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = connected
	if !connected {
		s.mask = 0
	}
}

func (s *ButtonState) read(index int) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.connected {
		return false, ErrDisconnected
	}
	return s.mask&(1<<index) != 0, nil
}

// Line returns a sampler for the button at index
func (s *ButtonState) Line(index int) *Line {
	return &Line{state: s, index: index}
}

// Line is a single macropad button seen as an input line
type Line struct {
	state *ButtonState
	index int
}

// Read reports whether the button is held
func (l *Line) Read() (bool, error) {
	if l.index < 0 || l.index > 15 {
		return false, fmt.Errorf("button index %d out of range", l.index)
	}
	return l.state.read(l.index)
}

func (l *Line) String() string {
	return fmt.Sprintf("hid:%d", l.index)
}
