package adapters

import (
	"context"
	"fmt"
	"time"

	"singil/internal/core"
	"singil/internal/portal"
	"singil/internal/report"
	"singil/internal/storage"
)

// SnapshotAdapter serves report reads from locally persisted snapshots.
// It plugs in wherever a portal.ReportReader is expected, letting the
// rest of the stack work unchanged when the portal is unreachable.
type SnapshotAdapter struct {
	storage *storage.SQLiteRepository

	// MaxAge rejects snapshots older than this. Zero disables the check.
	MaxAge time.Duration
}

var _ portal.ReportReader = (*SnapshotAdapter)(nil)

func NewSnapshotAdapter(storage *storage.SQLiteRepository) *SnapshotAdapter {
	return &SnapshotAdapter{storage: storage}
}

// Report implements portal.ReportReader from the snapshot store. A range
// with no stored snapshot falls back to the department's "all" snapshot
// before giving up.
func (a *SnapshotAdapter) Report(ctx context.Context, dept core.Department, r core.DateRange) (report.RawEnvelope, error) {
	env, fetchedAt, err := a.storage.LoadSnapshot(ctx, dept, r.Key())
	if err == storage.ErrNoSnapshot && !r.IsZero() {
		env, fetchedAt, err = a.storage.LoadSnapshot(ctx, dept, core.DateRange{}.Key())
	}
	if err != nil {
		return report.RawEnvelope{}, fmt.Errorf("load %s snapshot: %w", dept, err)
	}

	if a.MaxAge > 0 && time.Since(fetchedAt) > a.MaxAge {
		return report.RawEnvelope{}, fmt.Errorf("%s snapshot stale (fetched %s)", dept, fetchedAt.Format(time.RFC3339))
	}

	return env, nil
}
