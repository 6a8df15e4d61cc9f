package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"singil/internal/core"
)

// SnapshotProcessorConfig holds configuration for the snapshot processor
type SnapshotProcessorConfig struct {
	// RefreshInterval is how often to refresh department snapshots (default: 15m)
	RefreshInterval time.Duration

	// Departments limits which departments get refreshed (default: all four)
	Departments []core.Department

	// Range bounds the refreshed report; zero means the backend's
	// current-year default.
	Range core.DateRange
}

// DefaultSnapshotProcessorConfig returns sensible defaults
func DefaultSnapshotProcessorConfig() SnapshotProcessorConfig {
	return SnapshotProcessorConfig{
		RefreshInterval: 15 * time.Minute,
		Departments:     core.Departments(),
	}
}

// SnapshotProcessor keeps local report snapshots warm so the cached
// backend has recent data when the portal is unreachable.
type SnapshotProcessor struct {
	reports *ReportService
	config  SnapshotProcessorConfig

	// Lifecycle management
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewSnapshotProcessor(reports *ReportService, config SnapshotProcessorConfig) *SnapshotProcessor {
	if config.RefreshInterval <= 0 {
		config.RefreshInterval = 15 * time.Minute
	}
	if len(config.Departments) == 0 {
		config.Departments = core.Departments()
	}
	return &SnapshotProcessor{
		reports: reports,
		config:  config,
	}
}

// Start begins the refresh loop. Returns an error if already running.
func (p *SnapshotProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("snapshot processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.runLoop(ctx)

	slog.InfoContext(ctx, "Snapshot processor started",
		"refresh_interval", p.config.RefreshInterval,
		"departments", len(p.config.Departments))

	return nil
}

// Stop gracefully stops the processor and waits for completion.
func (p *SnapshotProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	close(p.stopCh)

	select {
	case <-p.doneCh:
		slog.InfoContext(ctx, "Snapshot processor stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Snapshot processor stop timed out")
		return ctx.Err()
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()

	return nil
}

// IsRunning returns whether the processor is currently running
func (p *SnapshotProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *SnapshotProcessor) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.config.RefreshInterval)
	defer ticker.Stop()

	// Refresh immediately on startup
	p.refreshAll(ctx)

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.refreshAll(ctx)
		}
	}
}

// refreshAll fetches each configured department once; Report persists the
// snapshot as a side effect. A department failure is logged and the rest
// still refresh.
func (p *SnapshotProcessor) refreshAll(ctx context.Context) {
	g, gctx := errgroup.WithContext(ctx)
	for _, dept := range p.config.Departments {
		g.Go(func() error {
			if _, err := p.reports.Report(gctx, dept, p.config.Range); err != nil {
				slog.WarnContext(gctx, "Snapshot refresh failed",
					"department", dept,
					"error", err)
			}
			return nil
		})
	}
	g.Wait()
}
