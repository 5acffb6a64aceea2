package gesture

import (
	"fmt"
	"time"
)

// Type represents the kind of gesture detected on a button
type Type int

const (
	Down Type = iota
	Hold
	Up
	Click
	DoubleClick
)

const numTypes = int(DoubleClick) + 1

// Types lists every gesture in pipeline order
var Types = []Type{Down, Hold, Up, Click, DoubleClick}

func (t Type) String() string {
	switch t {
	case Down:
		return "on_down"
	case Hold:
		return "on_hold"
	case Up:
		return "on_up"
	case Click:
		return "on_click"
	case DoubleClick:
		return "on_double_click"
	default:
		return fmt.Sprintf("unknown(%d)", int(t))
	}
}

// Short returns the gesture name without the "on_" prefix
func (t Type) Short() string {
	s := t.String()
	if len(s) > 3 && s[:3] == "on_" {
		return s[3:]
	}
	return s
}

func (t Type) valid() bool {
	return t >= Down && t <= DoubleClick
}

// ParseType parses a gesture name such as "on_click" or "click"
func ParseType(s string) (Type, error) {
	for _, t := range Types {
		if s == t.String() || s == t.Short() {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown gesture: %q", s)
}

// DispatchMode controls whether the sink blocks until delivery completes
type DispatchMode int

const (
	Synchronous DispatchMode = iota
	Asynchronous
)

func (m DispatchMode) String() string {
	switch m {
	case Synchronous:
		return "sync"
	case Asynchronous:
		return "async"
	default:
		return fmt.Sprintf("unknown(%d)", int(m))
	}
}

// Gesture is a single gesture occurrence on a named button
type Gesture struct {
	Type   Type
	Source string
	Time   time.Time
}

func (g Gesture) String() string {
	return fmt.Sprintf("%s(%s)", g.Type, g.Source)
}

// Key returns a unique key for this gesture, used for mapping lookups
func (g Gesture) Key() string {
	return Key(g.Type, g.Source)
}

// Key builds the mapping key for a gesture type on a source
func Key(t Type, source string) string {
	return t.String() + ":" + source
}
