// pattern: Imperative Shell

// Package usage runs the discovery and version-resolution pipeline that feeds
// the usage report.
package usage

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"gradleusage/internal/discovery"
	"gradleusage/internal/logging"
	"gradleusage/internal/pathmatch"
	"gradleusage/internal/probe"
)

// Project is a discovered project root and the Gradle version it resolved to.
type Project struct {
	Path    string
	Version string
}

// Options selects what a Run scans.
type Options struct {
	Roots       []string
	Excludes    []string
	FollowLinks bool
	// Workers bounds concurrent version resolutions; 0 means runtime.NumCPU().
	Workers int
}

// Pipeline scans for project roots and resolves each root's version.
type Pipeline struct {
	scanner  *discovery.Scanner
	resolver *probe.Resolver
	logger   *logging.ScopedLogger

	// OnResolved, if set, is called from a worker goroutine after each
	// project's version is resolved. Calls may be concurrent.
	OnResolved func(Project)
}

// NewPipeline creates a Pipeline. A nil logger discards diagnostics.
func NewPipeline(scanner *discovery.Scanner, resolver *probe.Resolver, logger *logging.ScopedLogger) *Pipeline {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Pipeline{scanner: scanner, resolver: resolver, logger: logger}
}

// Run scans opts.Roots and resolves every project found. The returned slice
// is in discovery order regardless of the order resolutions finish in.
//
// Only a scan failure or cancellation of ctx is returned as an error; a
// project whose version cannot be determined carries a sentinel version.
func (p *Pipeline) Run(ctx context.Context, opts Options) ([]Project, error) {
	excludes := pathmatch.NewExcludeSet(opts.Excludes, opts.FollowLinks)
	for _, missing := range excludes.Missing() {
		p.logger.Warn("Invalid exclude path", "path", missing)
	}

	roots, err := p.scanner.ScanAll(ctx, opts.Roots, excludes, opts.FollowLinks)
	if err != nil {
		return nil, err
	}
	p.logger.Info("scan complete", "roots", len(opts.Roots), "projects", len(roots))

	projects := make([]Project, len(roots))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerLimit(opts.Workers))

	for i, root := range roots {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			projects[i] = Project{Path: root, Version: p.resolver.Resolve(gctx, root)}
			if p.OnResolved != nil {
				p.OnResolved(projects[i])
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return projects, nil
}

func workerLimit(n int) int {
	if n > 0 {
		return n
	}
	return max(runtime.NumCPU(), 1)
}
