package pty

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/pleimann/pushbutton/internal/action"
)

func TestRingBuffer(t *testing.T) {
	tests := []struct {
		name   string
		size   int
		writes []string
		want   string
	}{
		{"empty", 5, nil, ""},
		{"partial", 5, []string{"abc"}, "abc"},
		{"exact fit", 5, []string{"12345"}, "12345"},
		{"overwrite in one write", 5, []string{"hello world"}, "world"},
		{"wraps across writes", 10, []string{"hello", " ", "world"}, "ello world"},
		{"wraps twice", 3, []string{"ab", "cd", "ef"}, "def"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rb := NewRingBuffer(tt.size)
			for _, w := range tt.writes {
				n, err := rb.Write([]byte(w))
				if err != nil || n != len(w) {
					t.Fatalf("Write(%q) = %d, %v", w, n, err)
				}
			}
			if got := rb.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
			if rb.Len() != len(tt.want) {
				t.Errorf("Len() = %d, want %d", rb.Len(), len(tt.want))
			}
		})
	}
}

func TestNewManagerValidation(t *testing.T) {
	if _, err := NewManager("", nil, ""); err == nil {
		t.Error("NewManager() with empty command should return error")
	}

	m, err := NewManager("echo", []string{"test"}, "")
	if err != nil || m == nil {
		t.Fatalf("NewManager() = %v, %v", m, err)
	}
	if m.IsRunning() {
		t.Error("IsRunning() = true before Start(), want false")
	}
	if m.GetRecentOutput() != "" {
		t.Errorf("GetRecentOutput() = %q, want empty", m.GetRecentOutput())
	}
	if _, err := m.Write([]byte("x")); !errors.Is(err, ErrNotStarted) {
		t.Errorf("Write() before Start() error = %v, want ErrNotStarted", err)
	}
}

func TestManagerRunsCommand(t *testing.T) {
	if _, err := exec.LookPath("cat"); err != nil {
		t.Skip("cat not available")
	}

	m, err := NewManager("cat", nil, "")
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	if err := m.Start(context.Background()); err != nil {
		t.Skipf("PTY not available: %v", err)
	}
	defer m.Stop()

	if !m.IsRunning() {
		t.Fatal("IsRunning() = false after Start()")
	}

	w := NewWriter(m)
	if err := w.WriteString("ping"); err != nil {
		t.Fatalf("WriteString() error = %v", err)
	}
	if err := w.WriteKey(action.KeyPress{Key: "enter"}); err != nil {
		t.Fatalf("WriteKey() error = %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if strings.Contains(m.GetRecentOutput(), "ping") {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Errorf("output %q never echoed the input", m.GetRecentOutput())
}

func TestWriterWriteKey(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	for _, s := range []string{"ctrl+c", "up", "a"} {
		kp, err := action.ParseKey(s)
		if err != nil {
			t.Fatalf("ParseKey(%q) error = %v", s, err)
		}
		if err := w.WriteKey(kp); err != nil {
			t.Fatalf("WriteKey(%s) error = %v", s, err)
		}
	}

	want := []byte{0x03, 0x1b, '[', 'A', 'a'}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("wrote % X, want % X", buf.Bytes(), want)
	}

	if err := w.WriteKey(action.KeyPress{Key: "nope"}); err == nil {
		t.Error("WriteKey() should fail for a key without an encoding")
	}
}
