package process

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"syscall"
	"time"
)

// Status represents the current state of the supervised process.
type Status string

const (
	StatusStopped  Status = "stopped"
	StatusRunning  Status = "running"
	StatusBackoff  Status = "backoff"
	StatusFailed   Status = "failed"
	StatusStarting Status = "starting"
)

// maxLineLength bounds one captured output line.
const maxLineLength = 4096

// ErrGaveUp is returned by Run once MaxRestarts is exhausted.
var ErrGaveUp = errors.New("process: restart limit reached")

// Config describes the process to supervise.
type Config struct {
	// Name identifies the process in logs and stats.
	Name string

	Binary string
	Args   []string

	// RestartDelay is the first backoff; it doubles per consecutive
	// failure up to MaxRestartDelay.
	RestartDelay    time.Duration
	MaxRestartDelay time.Duration

	// StableThreshold is how long a run must last for the backoff to reset.
	StableThreshold time.Duration

	// MaxRestarts limits consecutive failed restarts. 0 means unlimited.
	MaxRestarts int

	// GracefulTimeout is how long to wait after SIGTERM before SIGKILL.
	GracefulTimeout time.Duration
}

// Logger defines the logging interface for the supervisor.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Manager keeps one child process running until its context ends.
type Manager struct {
	config Config
	logger Logger

	mu        sync.RWMutex
	status    Status
	pid       int
	restarts  int
	lastError error
	startTime time.Time
}

// NewManager creates a supervisor; zero durations take defaults.
func NewManager(cfg Config) *Manager {
	if cfg.RestartDelay <= 0 {
		cfg.RestartDelay = time.Second
	}
	if cfg.MaxRestartDelay < cfg.RestartDelay {
		cfg.MaxRestartDelay = time.Minute
		if cfg.MaxRestartDelay < cfg.RestartDelay {
			cfg.MaxRestartDelay = cfg.RestartDelay
		}
	}
	if cfg.StableThreshold <= 0 {
		cfg.StableThreshold = 30 * time.Second
	}
	if cfg.GracefulTimeout <= 0 {
		cfg.GracefulTimeout = 5 * time.Second
	}
	return &Manager{
		config: cfg,
		logger: noopLogger{},
		status: StatusStopped,
	}
}

// SetLogger sets the logger for the manager.
func (m *Manager) SetLogger(logger Logger) {
	m.logger = logger
}

// Run starts the process and restarts it whenever it exits, until ctx is
// cancelled. On cancellation the process group gets SIGTERM, then SIGKILL
// after GracefulTimeout, and Run returns nil.
func (m *Manager) Run(ctx context.Context) error {
	delay := m.config.RestartDelay
	failures := 0

	for {
		started := time.Now()
		err := m.runOnce(ctx)
		if ctx.Err() != nil {
			m.setStatus(StatusStopped, 0)
			m.logger.Info("process stopped", "name", m.config.Name)
			return nil
		}

		if time.Since(started) >= m.config.StableThreshold {
			delay = m.config.RestartDelay
			failures = 0
		}
		failures++

		m.mu.Lock()
		m.lastError = err
		m.restarts++
		m.mu.Unlock()

		if m.config.MaxRestarts > 0 && failures > m.config.MaxRestarts {
			m.setStatus(StatusFailed, 0)
			m.logger.Error("process keeps failing, giving up",
				"name", m.config.Name,
				"failures", failures,
				"error", err,
			)
			return fmt.Errorf("%w: %s: %w", ErrGaveUp, m.config.Name, err)
		}

		m.setStatus(StatusBackoff, 0)
		m.logger.Warn("process exited, restarting",
			"name", m.config.Name,
			"error", err,
			"delay", delay.String(),
			"attempt", failures,
		)

		select {
		case <-ctx.Done():
			m.setStatus(StatusStopped, 0)
			return nil
		case <-time.After(delay):
		}
		delay = min(delay*2, m.config.MaxRestartDelay)
	}
}

// runOnce runs the process to completion. A clean exit still counts as an
// exit: the process is expected to run for as long as the host does.
func (m *Manager) runOnce(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, m.config.Binary, m.config.Args...) //nolint:gosec // binary comes from the operator's config
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return signalGroup(cmd, syscall.SIGTERM)
	}
	cmd.WaitDelay = m.config.GracefulTimeout

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("creating stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("creating stderr pipe: %w", err)
	}

	m.setStatus(StatusStarting, 0)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting %s: %w", m.config.Name, err)
	}
	m.setStatus(StatusRunning, cmd.Process.Pid)
	m.logger.Info("process started",
		"name", m.config.Name,
		"binary", m.config.Binary,
		"pid", cmd.Process.Pid,
	)

	var wg sync.WaitGroup
	wg.Add(2)
	go m.capture(&wg, "stdout", stdout)
	go m.capture(&wg, "stderr", stderr)
	wg.Wait()

	err = cmd.Wait()
	if err == nil {
		err = errors.New("exited with status 0")
	}
	return err
}

// capture logs the stream line by line until it closes.
func (m *Manager) capture(wg *sync.WaitGroup, stream string, r io.Reader) {
	defer wg.Done()
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, maxLineLength), maxLineLength)
	for sc.Scan() {
		m.logger.Debug("process output",
			"name", m.config.Name,
			"stream", stream,
			"line", sc.Text(),
		)
	}
}

// signalGroup signals the process group created by Setpgid.
func signalGroup(cmd *exec.Cmd, sig syscall.Signal) error {
	if cmd.Process == nil {
		return nil
	}
	err := syscall.Kill(-cmd.Process.Pid, sig)
	if errors.Is(err, syscall.ESRCH) {
		return nil
	}
	return err
}

func (m *Manager) setStatus(s Status, pid int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = s
	m.pid = pid
	if s == StatusRunning {
		m.startTime = time.Now()
	}
}

// Status returns the current status of the supervised process.
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// Stats is a snapshot of the supervisor's state.
type Stats struct {
	Name      string `json:"name"`
	Status    Status `json:"status"`
	PID       int    `json:"pid,omitempty"`
	Uptime    string `json:"uptime,omitempty"`
	Restarts  int    `json:"restarts"`
	LastError string `json:"last_error,omitempty"`
}

// Stats returns current statistics for the process.
func (m *Manager) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := Stats{
		Name:     m.config.Name,
		Status:   m.status,
		PID:      m.pid,
		Restarts: m.restarts,
	}
	if m.status == StatusRunning {
		stats.Uptime = time.Since(m.startTime).Truncate(time.Second).String()
	}
	if m.lastError != nil {
		stats.LastError = m.lastError.Error()
	}
	return stats
}
