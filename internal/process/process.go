// pattern: Imperative Shell

// Package process runs short-lived child processes whose lifetime is bound to
// a context.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"gradleusage/internal/logging"
)

// DefaultGracePeriod is how long a cancelled process gets between SIGTERM and kill.
const DefaultGracePeriod = 5 * time.Second

// Config describes a child process to run.
type Config struct {
	Name        string
	Binary      string
	Args        []string
	Dir         string
	Env         []string // appended to the parent environment
	GracePeriod time.Duration
}

// Result is the outcome of a process that ran to completion.
type Result struct {
	Stdout   []byte
	ExitCode int
}

// ExitError reports a process that exited with a non-zero status.
type ExitError struct {
	Name     string
	ExitCode int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Name, e.ExitCode)
}

// Run starts the process described by cfg, waits for it and returns its
// stdout. Stderr lines are forwarded to logger at debug level.
//
// When ctx is done the process receives SIGTERM and is killed once the grace
// period expires; Run returns ctx.Err() in that case. The process never
// outlives the call.
func Run(ctx context.Context, cfg Config, logger *logging.ScopedLogger) (Result, error) {
	if logger == nil {
		logger = logging.NopLogger()
	}
	grace := cfg.GracePeriod
	if grace == 0 {
		grace = DefaultGracePeriod
	}

	cmd := exec.CommandContext(ctx, cfg.Binary, cfg.Args...)
	cmd.Dir = cfg.Dir
	if len(cfg.Env) > 0 {
		cmd.Env = append(cmd.Environ(), cfg.Env...)
	}
	cmd.Cancel = func() error {
		return cmd.Process.Signal(syscall.SIGTERM)
	}
	cmd.WaitDelay = grace

	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	stderr := &lineWriter{logger: logger, name: cfg.Name}
	cmd.Stderr = stderr

	logger.Debug("starting process", "process", cfg.Name, "binary", cfg.Binary, "args", fmt.Sprintf("%v", cfg.Args), "dir", cfg.Dir)

	if err := cmd.Start(); err != nil {
		return Result{}, fmt.Errorf("%s: start: %w", cfg.Name, err)
	}

	err := cmd.Wait()
	stderr.flush()

	if ctxErr := ctx.Err(); ctxErr != nil {
		logger.Debug("process cancelled", "process", cfg.Name, "error", ctxErr)
		return Result{Stdout: stdout.Bytes(), ExitCode: -1}, ctxErr
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code := exitErr.ExitCode()
			logger.Debug("process exited", "process", cfg.Name, "exit_code", code)
			return Result{Stdout: stdout.Bytes(), ExitCode: code}, &ExitError{Name: cfg.Name, ExitCode: code}
		}
		return Result{Stdout: stdout.Bytes(), ExitCode: -1}, fmt.Errorf("%s: %w", cfg.Name, err)
	}

	logger.Debug("process exited cleanly", "process", cfg.Name)
	return Result{Stdout: stdout.Bytes()}, nil
}

// lineWriter forwards complete lines written to it to the logger.
type lineWriter struct {
	logger *logging.ScopedLogger
	name   string

	mu  sync.Mutex
	buf []byte
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.emit(w.buf[:i])
		w.buf = w.buf[i+1:]
	}
	return len(p), nil
}

func (w *lineWriter) flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.buf) > 0 {
		w.emit(w.buf)
		w.buf = nil
	}
}

func (w *lineWriter) emit(line []byte) {
	line = bytes.TrimRight(line, "\r")
	w.logger.Debug(string(line), "stream", "stderr", "process", w.name)
}
