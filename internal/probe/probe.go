// pattern: Functional Core

// Package probe determines which Gradle version a project root uses.
package probe

import (
	"context"
	"errors"
	"time"

	"gradleusage/internal/discovery"
	"gradleusage/internal/logging"
)

// Version sentinels recorded instead of a real version.
const (
	// Unknown means the project has no wrapper properties; no probe was attempted.
	Unknown = "UNKNOWN"
	// Failed means a probe was attempted and did not produce a version.
	Failed = "FAILED"
)

// DefaultTimeout bounds a single version probe.
const DefaultTimeout = 2 * time.Minute

// ErrNoVersion is returned by probes that ran but found no version string.
var ErrNoVersion = errors.New("no gradle version reported")

// Probe queries the Gradle version used by a project root.
type Probe interface {
	Version(ctx context.Context, projectRoot string) (string, error)
}

// Func adapts a plain function to the Probe interface.
type Func func(ctx context.Context, projectRoot string) (string, error)

// Version calls f.
func (f Func) Version(ctx context.Context, projectRoot string) (string, error) {
	return f(ctx, projectRoot)
}

// Resolver applies the fallback policy around a Probe.
type Resolver struct {
	probe   Probe
	timeout time.Duration
	logger  *logging.ScopedLogger
}

// NewResolver creates a Resolver. A zero timeout selects DefaultTimeout and a
// nil logger discards diagnostics.
func NewResolver(p Probe, timeout time.Duration, logger *logging.ScopedLogger) *Resolver {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Resolver{probe: p, timeout: timeout, logger: logger}
}

// Resolve returns the Gradle version of projectRoot, Unknown when the project
// has no wrapper properties, or Failed when the probe errors, times out or
// reports nothing. It never returns an error.
func (r *Resolver) Resolve(ctx context.Context, projectRoot string) string {
	if !discovery.HasWrapper(projectRoot) {
		return Unknown
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	version, err := r.probe.Version(ctx, projectRoot)
	if err == nil && version == "" {
		err = ErrNoVersion
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			r.logger.Warn("version probe timed out", "path", projectRoot, "timeout", r.timeout.String())
		} else {
			r.logger.Warn("version probe failed", "path", projectRoot, "error", err.Error())
		}
		return Failed
	}

	r.logger.Debug("resolved gradle version", "path", projectRoot, "version", version)
	return version
}
