package pty

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/creack/pty"
	log "github.com/sirupsen/logrus"
)

var ErrNotStarted = errors.New("PTY not started")

const stopTimeout = 2 * time.Second

// Manager runs the TUI that receives button actions inside a PTY
type Manager struct {
	command    string
	args       []string
	workingDir string
	logger     *log.Entry

	mu   sync.Mutex
	ptmx *os.File
	cmd  *exec.Cmd
	done chan struct{}

	output *RingBuffer
}

// NewManager creates a PTY manager for command
func NewManager(command string, args []string, workingDir string) (*Manager, error) {
	if command == "" {
		return nil, fmt.Errorf("command is required")
	}

	return &Manager{
		command:    command,
		args:       args,
		workingDir: workingDir,
		logger:     log.WithFields(log.Fields{"component": "pty", "command": command}),
		output:     NewRingBuffer(4096),
	}, nil
}

// Start starts the TUI process in a PTY
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ptmx != nil {
		return fmt.Errorf("PTY already started")
	}

	cmd := exec.CommandContext(ctx, m.command, m.args...)
	cmd.Dir = m.workingDir
	cmd.Env = os.Environ()

	ptmx, err := pty.Start(cmd)
	if err != nil {
		return fmt.Errorf("failed to start PTY: %w", err)
	}

	m.ptmx = ptmx
	m.cmd = cmd
	m.done = make(chan struct{})

	go m.readOutput(ptmx)
	go func(done chan struct{}) {
		err := cmd.Wait()
		m.logger.WithError(err).Info("TUI exited")
		close(done)
	}(m.done)

	m.logger.WithField("pid", cmd.Process.Pid).Info("TUI started")
	return nil
}

// Stop interrupts the TUI, kills it if it does not exit in time and closes
// the PTY
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cmd != nil && m.cmd.Process != nil {
		m.cmd.Process.Signal(os.Interrupt)
		select {
		case <-m.done:
		case <-time.After(stopTimeout):
			m.logger.Warn("TUI did not exit, killing it")
			m.cmd.Process.Kill()
			<-m.done
		}
	}

	if m.ptmx != nil {
		m.ptmx.Close()
		m.ptmx = nil
	}
}

func (m *Manager) readOutput(ptmx *os.File) {
	// Closing the PTY in Stop ends the copy
	if _, err := io.Copy(m.output, ptmx); err != nil && !errors.Is(err, os.ErrClosed) {
		m.logger.WithError(err).Debug("PTY output reader stopped")
	}
}

// Write sends raw bytes to the TUI
func (m *Manager) Write(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ptmx == nil {
		return 0, ErrNotStarted
	}
	return m.ptmx.Write(p)
}

// GetRecentOutput returns recent output from the TUI
func (m *Manager) GetRecentOutput() string {
	return m.output.String()
}

// IsRunning returns whether the TUI process is running
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	done := m.done
	m.mu.Unlock()

	if done == nil {
		return false
	}
	select {
	case <-done:
		return false
	default:
		return true
	}
}
