// Package storage persists the service's local state in SQLite: the auth
// session, report snapshots for the cached backend, notification
// read-state for the poller, and the export artifact log.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"singil/internal/core"
	"singil/internal/report"
	"singil/internal/session"

	_ "modernc.org/sqlite"
)

// ErrNoSnapshot is returned when no snapshot exists for a department and
// range.
var ErrNoSnapshot = errors.New("no report snapshot")

type SQLiteRepository struct {
	db *sql.DB
}

// The repository doubles as the persistent session store.
var _ session.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Get implements session.Store.
func (r *SQLiteRepository) Get(ctx context.Context) (core.AuthSession, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT token, role, user_id, collector_id FROM sessions WHERE id = 1`)
	var s core.AuthSession
	var role string
	err := row.Scan(&s.Token, &role, &s.UserID, &s.CollectorID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.AuthSession{}, session.ErrNoSession
	}
	if err != nil {
		return core.AuthSession{}, fmt.Errorf("load session: %w", err)
	}
	s.Role = core.Role(role)
	return s, nil
}

// Set implements session.Store. The table holds at most one row.
func (r *SQLiteRepository) Set(ctx context.Context, s core.AuthSession) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (id, token, role, user_id, collector_id, updated_at)
		VALUES (1, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (id) DO UPDATE SET
			token = excluded.token,
			role = excluded.role,
			user_id = excluded.user_id,
			collector_id = excluded.collector_id,
			updated_at = CURRENT_TIMESTAMP`,
		s.Token, string(s.Role), s.UserID, s.CollectorID)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	slog.InfoContext(ctx, "Session saved", "role", s.Role, "user_id", s.UserID)
	return nil
}

// Clear implements session.Store.
func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = 1`); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// SaveSnapshot upserts the latest raw envelope for a department+range.
func (r *SQLiteRepository) SaveSnapshot(ctx context.Context, dept core.Department, rangeKey string, env report.RawEnvelope, fetchedAt time.Time) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO report_snapshots (department, range_key, payload, fetched_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (department, range_key) DO UPDATE SET
			payload = excluded.payload,
			fetched_at = excluded.fetched_at`,
		string(dept), rangeKey, string(payload), fetchedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	slog.InfoContext(ctx, "Report snapshot saved",
		"department", dept,
		"range", rangeKey,
		"bytes", len(payload))
	return nil
}

// LoadSnapshot returns the stored envelope for a department+range, or
// ErrNoSnapshot.
func (r *SQLiteRepository) LoadSnapshot(ctx context.Context, dept core.Department, rangeKey string) (report.RawEnvelope, time.Time, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT payload, fetched_at FROM report_snapshots WHERE department = ? AND range_key = ?`,
		string(dept), rangeKey)
	var payload, fetchedAt string
	err := row.Scan(&payload, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return report.RawEnvelope{}, time.Time{}, ErrNoSnapshot
	}
	if err != nil {
		return report.RawEnvelope{}, time.Time{}, fmt.Errorf("load snapshot: %w", err)
	}
	var env report.RawEnvelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		return report.RawEnvelope{}, time.Time{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return env, parseDBTime(fetchedAt), nil
}

// SeenNotificationIDs returns the set of notification IDs the poller has
// already published.
func (r *SQLiteRepository) SeenNotificationIDs(ctx context.Context) (map[int64]bool, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT notification_id FROM notification_state`)
	if err != nil {
		return nil, fmt.Errorf("load notification state: %w", err)
	}
	defer rows.Close()

	seen := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan notification id: %w", err)
		}
		seen[id] = true
	}
	return seen, rows.Err()
}

// MarkNotificationSeen records that a notification was observed and
// published.
func (r *SQLiteRepository) MarkNotificationSeen(ctx context.Context, id int64, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notification_state (notification_id, seen_at)
		VALUES (?, ?)
		ON CONFLICT (notification_id) DO NOTHING`,
		id, at.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("mark notification seen: %w", err)
	}
	return nil
}

// MarkNotificationRead records the local read timestamp after the portal
// accepted the mark-read call.
func (r *SQLiteRepository) MarkNotificationRead(ctx context.Context, id int64, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notification_state (notification_id, seen_at, read_at)
		VALUES (?, ?, ?)
		ON CONFLICT (notification_id) DO UPDATE SET read_at = excluded.read_at`,
		id, at.UTC().Format(time.RFC3339), at.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}

// ExportRecord is one generated artifact in the export log.
type ExportRecord struct {
	ID         int64
	Department core.Department
	RangeKey   string
	Format     string
	Filename   string
	RowCount   int
	CreatedAt  time.Time
}

// LogExport appends a generated artifact to the export log.
func (r *SQLiteRepository) LogExport(ctx context.Context, rec ExportRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO export_log (department, range_key, format, filename, row_count)
		VALUES (?, ?, ?, ?, ?)`,
		string(rec.Department), rec.RangeKey, rec.Format, rec.Filename, rec.RowCount)
	if err != nil {
		return fmt.Errorf("log export: %w", err)
	}
	return nil
}

// RecentExports lists the newest export records, up to limit.
func (r *SQLiteRepository) RecentExports(ctx context.Context, limit int) ([]ExportRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, department, range_key, format, filename, row_count, created_at
		FROM export_log ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list exports: %w", err)
	}
	defer rows.Close()

	var out []ExportRecord
	for rows.Next() {
		var rec ExportRecord
		var dept, createdAt string
		if err := rows.Scan(&rec.ID, &dept, &rec.RangeKey, &rec.Format, &rec.Filename, &rec.RowCount, &createdAt); err != nil {
			return nil, fmt.Errorf("scan export record: %w", err)
		}
		rec.Department = core.Department(dept)
		rec.CreatedAt = parseDBTime(createdAt)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// parseDBTime tolerates the timestamp spellings SQLite hands back
// (CURRENT_TIMESTAMP text and Go-driver formats).
func parseDBTime(s string) time.Time {
	for _, layout := range []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02 15:04:05",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
