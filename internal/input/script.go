package input

import (
	"errors"
	"sync"
)

var ErrScriptedFailure = errors.New("scripted read failure")

// Script replays a fixed sample sequence: '1' high, '0' low, 'x' a failed
// read. Once the sequence is exhausted it keeps returning the last level.
type Script struct {
	mu      sync.Mutex
	samples string
	pos     int
	last    bool
}

func NewScript(samples string) *Script {
	return &Script{samples: samples}
}

func (s *Script) Read() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pos >= len(s.samples) {
		return s.last, nil
	}

	c := s.samples[s.pos]
	s.pos++
	switch c {
	case '1':
		s.last = true
	case 'x':
		return false, ErrScriptedFailure
	default:
		s.last = false
	}
	return s.last, nil
}

// Done reports whether every scripted sample has been read
func (s *Script) Done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos >= len(s.samples)
}

func (s *Script) Close() error { return nil }
