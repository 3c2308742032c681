// Package migrate applies the goose SQL migrations that define the MES
// schema: tables, sequences, PL/pgSQL routines, the partitioned inspection
// table and the daily summary materialized view.
package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/dongkoo81/oracle-postgresql-migration/pkg/logger"
)

// DefaultDir is where create and validate operate, relative to the repo root.
const DefaultDir = "pkg/migrate/migrations"

//go:embed migrations/*.sql
var embedded embed.FS

// Source resolves the migration files. An empty dir selects the copy
// compiled into the binary.
func Source(dir string) (fs.FS, error) {
	if dir == "" {
		return fs.Sub(embedded, "migrations")
	}
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("migrations dir: %w", err)
	}
	return os.DirFS(dir), nil
}

// Migrator wraps a goose provider bound to one database and source.
type Migrator struct {
	provider *goose.Provider
	logg     *logger.Logger
}

func New(db *sql.DB, source fs.FS, logg *logger.Logger) (*Migrator, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	if source == nil {
		return nil, fmt.Errorf("migration source is required")
	}
	// procedures, partitions and the XML column are Postgres-only
	provider, err := goose.NewProvider(goose.DialectPostgres, db, source)
	if err != nil {
		return nil, fmt.Errorf("goose provider: %w", err)
	}
	return &Migrator{provider: provider, logg: logg}, nil
}

func (m *Migrator) Up(ctx context.Context) error {
	results, err := m.provider.Up(ctx)
	m.logResults(ctx, results...)
	if err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// Down rolls back the most recent migration only.
func (m *Migrator) Down(ctx context.Context) error {
	result, err := m.provider.Down(ctx)
	if result != nil {
		m.logResults(ctx, result)
	}
	if err != nil {
		return fmt.Errorf("goose down: %w", err)
	}
	return nil
}

// To moves the schema up or down until target is the current version.
func (m *Migrator) To(ctx context.Context, target string) error {
	version, err := strconv.ParseInt(target, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS): %w", target, err)
	}
	current, err := m.provider.GetDBVersion(ctx)
	if err != nil {
		return fmt.Errorf("current version: %w", err)
	}

	var results []*goose.MigrationResult
	switch {
	case version > current:
		results, err = m.provider.UpTo(ctx, version)
	case version < current:
		results, err = m.provider.DownTo(ctx, version)
	default:
		return nil
	}
	m.logResults(ctx, results...)
	if err != nil {
		return fmt.Errorf("migrate to %d: %w", version, err)
	}
	return nil
}

// Status writes one line per known migration.
func (m *Migrator) Status(ctx context.Context, w io.Writer) error {
	statuses, err := m.provider.Status(ctx)
	if err != nil {
		return fmt.Errorf("goose status: %w", err)
	}
	for _, st := range statuses {
		applied := "pending"
		if st.State == goose.StateApplied {
			applied = st.AppliedAt.UTC().Format(time.DateTime)
		}
		fmt.Fprintf(w, "%-22s %s\n", applied, st.Source.Path)
	}
	return nil
}

func (m *Migrator) logResults(ctx context.Context, results ...*goose.MigrationResult) {
	if m.logg == nil {
		return
	}
	for _, res := range results {
		if res == nil || res.Source == nil {
			continue
		}
		m.logg.Info(m.logg.WithFields(ctx, map[string]any{
			"version":     res.Source.Version,
			"file":        res.Source.Path,
			"direction":   res.Direction,
			"duration_ms": res.Duration.Milliseconds(),
		}), "migration.applied")
	}
}
