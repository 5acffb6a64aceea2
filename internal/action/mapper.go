package action

import (
	"strings"
	"sync"

	"github.com/pleimann/pushbutton/internal/config"
	"github.com/pleimann/pushbutton/internal/gesture"
)

// Mapper maps gestures to key sequences based on configuration
type Mapper struct {
	mu       sync.RWMutex
	bindings map[string][]string // gesture.Key(type, button) -> keys
}

func NewMapper(cfg *config.Config) *Mapper {
	return &Mapper{bindings: buildBindings(cfg)}
}

func buildBindings(cfg *config.Config) map[string][]string {
	bindings := make(map[string][]string)
	if cfg == nil {
		return bindings
	}

	for _, btn := range cfg.Buttons {
		for name, a := range btn.Actions() {
			t, err := gesture.ParseType(name)
			if err != nil {
				continue
			}
			bindings[gesture.Key(t, btn.Name)] = a.Keys
		}
	}
	return bindings
}

// Map returns the key sequence for a gesture, or nil if not mapped
func (m *Mapper) Map(g gesture.Gesture) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.bindings[g.Key()]
}

// Bound reports whether any button has an action for gesture type t
func (m *Mapper) Bound(t gesture.Type) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	prefix := t.String() + ":"
	for key := range m.bindings {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}
	return false
}

// Len returns the number of bindings
func (m *Mapper) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.bindings)
}

// Reload replaces the bindings with those of cfg
func (m *Mapper) Reload(cfg *config.Config) {
	bindings := buildBindings(cfg)

	m.mu.Lock()
	m.bindings = bindings
	m.mu.Unlock()
}
