package pty

import "sync"

// RingBuffer keeps the most recent bytes written to it
type RingBuffer struct {
	mu   sync.Mutex
	data []byte
	size int
	pos  int
	full bool
}

func NewRingBuffer(size int) *RingBuffer {
	if size < 1 {
		size = 1
	}
	return &RingBuffer{
		data: make([]byte, size),
		size: size,
	}
}

// Write implements io.Writer and never fails
func (rb *RingBuffer) Write(p []byte) (int, error) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	n := len(p)
	if len(p) > rb.size {
		p = p[len(p)-rb.size:]
	}
	for _, b := range p {
		rb.data[rb.pos] = b
		rb.pos++
		if rb.pos == rb.size {
			rb.pos = 0
			rb.full = true
		}
	}
	return n, nil
}

// String returns the buffered bytes, oldest first
func (rb *RingBuffer) String() string {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	if !rb.full {
		return string(rb.data[:rb.pos])
	}
	out := make([]byte, 0, rb.size)
	out = append(out, rb.data[rb.pos:]...)
	out = append(out, rb.data[:rb.pos]...)
	return string(out)
}

func (rb *RingBuffer) Len() int {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	if rb.full {
		return rb.size
	}
	return rb.pos
}
