package backend

import (
	"context"

	"singil/internal/portal"
)

// Backend bundles every portal port the dashboard server needs.
type Backend interface {
	portal.ReportReader
	portal.SectionReader
	portal.StatsReader
	portal.NotificationReader
	portal.NotificationMarker
	portal.Authenticator
	portal.ApprovalWriter
	portal.RenewalReader
	portal.RenewalWriter
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the backend instance and optional cleanup function
type BackendResult struct {
	Backend Backend
	Cleanup CleanupFunc

	// Storage is the local repository when the backend persists
	// (sessions, snapshots, notification state); nil for memory.
	Storage StorageHandle
}

// StorageHandle is what the factory exposes of the local repository
// without binding callers to the storage package.
type StorageHandle interface {
	Close() error
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	// Backend type
	Type BackendType

	// Portal connection
	PortalBaseURL string

	// Local persistence
	SQLiteDBPath string
}

// BackendType represents the type of backend
type BackendType string

const (
	// RESTBackend talks to the live portal.
	RESTBackend BackendType = "rest"
	// CachedBackend talks to the live portal but serves reports from
	// local snapshots when the portal is unreachable.
	CachedBackend BackendType = "cached"
	// MemoryBackend serves seeded fixtures; no network, no disk.
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case RESTBackend, CachedBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
