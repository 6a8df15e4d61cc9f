package backend

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"singil/internal/adapters"
	"singil/internal/core"
	"singil/internal/portal/memory"
	"singil/internal/portal/rest"
	"singil/internal/report"
	"singil/internal/session"
	"singil/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case RESTBackend:
		return f.createRESTBackend(config)
	case CachedBackend:
		return f.createCachedBackend(config)
	case MemoryBackend:
		return f.createMemoryBackend()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createRESTBackend(config Config) (*BackendResult, error) {
	repo, client, err := f.buildPortalClient(config)
	if err != nil {
		return nil, err
	}

	f.logger.Info("Initialized REST backend",
		"portal", config.PortalBaseURL,
		"db_path", config.SQLiteDBPath)

	return &BackendResult{
		Backend: client,
		Cleanup: repo.Close,
		Storage: repo,
	}, nil
}

func (f *DefaultFactory) createCachedBackend(config Config) (*BackendResult, error) {
	repo, client, err := f.buildPortalClient(config)
	if err != nil {
		return nil, err
	}

	snapshots := adapters.NewSnapshotAdapter(repo)

	f.logger.Info("Initialized cached backend",
		"portal", config.PortalBaseURL,
		"db_path", config.SQLiteDBPath)

	return &BackendResult{
		Backend: &cachedBackend{Client: client, snapshots: snapshots},
		Cleanup: repo.Close,
		Storage: repo,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend() (*BackendResult, error) {
	f.logger.Info("Initialized memory backend with seeded fixtures")

	return &BackendResult{
		Backend: memory.Seeded(time.Now()),
		Cleanup: nil,
	}, nil
}

func (f *DefaultFactory) buildPortalClient(config Config) (*storage.SQLiteRepository, *rest.Client, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	client, err := rest.New(config.PortalBaseURL, session.TokenSource{Store: repo}, nil)
	if err != nil {
		repo.Close()
		return nil, nil, fmt.Errorf("failed to initialize portal client: %w", err)
	}

	return repo, client, nil
}

// cachedBackend serves live portal data but answers report reads from
// local snapshots when the portal call fails.
type cachedBackend struct {
	*rest.Client
	snapshots *adapters.SnapshotAdapter
}

func (b *cachedBackend) Report(ctx context.Context, dept core.Department, r core.DateRange) (report.RawEnvelope, error) {
	env, err := b.Client.Report(ctx, dept, r)
	if err == nil {
		return env, nil
	}

	slog.WarnContext(ctx, "Portal report fetch failed, trying snapshot",
		"department", dept,
		"range", r.Key(),
		"error", err)

	snap, snapErr := b.snapshots.Report(ctx, dept, r)
	if snapErr != nil {
		// Report the original failure; the snapshot miss is secondary.
		return report.RawEnvelope{}, err
	}
	return snap, nil
}
