package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/triage/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/triage/internal/core/domain"
	"github.com/custodia-labs/triage/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.ReportArchive = (*Store)(nil)

// DatabaseFile is the archive file name inside the data directory.
const DatabaseFile = "reports.db"

// Store archives physician reports in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (or creates) the archive in dataDir.
// If dataDir is empty, defaults to ~/.triage/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".triage", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DatabaseFile)

	// WAL lets the CLI read while the server writes.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Write inserts the report and returns sqlite://<db path>#<report id>.
func (s *Store) Write(ctx context.Context, report domain.Report) (string, error) {
	if report.ID == "" {
		return "", fmt.Errorf("%w: report id is required", domain.ErrInvalidInput)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reports (id, session_id, display_name, text, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, report.ID, report.SessionID, report.DisplayName, report.Text, report.CreatedAt.UTC())
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return "", fmt.Errorf("report %s: %w", report.ID, domain.ErrAlreadyExists)
		}
		return "", fmt.Errorf("saving report: %w", err)
	}

	return s.location(report.ID), nil
}

// ListReports returns reports newest first, without their text.
func (s *Store) ListReports(ctx context.Context, limit int) ([]domain.Report, error) {
	query := `SELECT id, session_id, display_name, created_at FROM reports ORDER BY created_at DESC, id`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}
	defer rows.Close()

	var reports []domain.Report
	for rows.Next() {
		var report domain.Report
		var createdAt sql.NullTime
		if err := rows.Scan(&report.ID, &report.SessionID, &report.DisplayName, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning report: %w", err)
		}
		if createdAt.Valid {
			report.CreatedAt = createdAt.Time
		}
		report.Location = s.location(report.ID)
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reports: %w", err)
	}

	return reports, nil
}

// GetReport retrieves a report by ID.
func (s *Store) GetReport(ctx context.Context, id string) (*domain.Report, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, session_id, display_name, text, created_at
		FROM reports WHERE id = ?
	`, id)

	var report domain.Report
	var createdAt sql.NullTime
	if err := row.Scan(&report.ID, &report.SessionID, &report.DisplayName, &report.Text, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("report %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("scanning report: %w", err)
	}
	if createdAt.Valid {
		report.CreatedAt = createdAt.Time
	}
	report.Location = s.location(report.ID)

	return &report, nil
}

func (s *Store) location(id string) string {
	return "sqlite://" + s.path + "#" + id
}

// migrate runs all pending migrations and records each applied version.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_reports.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}
