package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

// Migration is one additive schema step. Up must be safe to run against a
// database that already has some or all of its objects: migrations only ever
// add tables, columns and indexes, never drop or rename.
type Migration struct {
	Version     int
	Description string
	Up          func(ctx context.Context, tx *sqlx.Tx, d Dialect) error
}

// Dialect carries the few DDL differences between SQLite and PostgreSQL.
type Dialect string

func (d Dialect) floatType() string {
	if d == DriverPostgres {
		return "DOUBLE PRECISION"
	}
	return "REAL"
}

func (d Dialect) columns(ctx context.Context, tx *sqlx.Tx, table string) (map[string]bool, error) {
	query := `SELECT name FROM pragma_table_info(?)`
	if d == DriverPostgres {
		query = `SELECT column_name FROM information_schema.columns
			WHERE table_schema = current_schema() AND table_name = ?`
	}

	var names []string
	if err := tx.SelectContext(ctx, &names, tx.Rebind(query), table); err != nil {
		return nil, fmt.Errorf("failed to inspect %s columns: %w", table, err)
	}

	cols := make(map[string]bool, len(names))
	for _, n := range names {
		cols[n] = true
	}
	return cols, nil
}

type columnDef struct {
	name string
	def  string
}

// addMissingColumns adds each column that introspection does not find.
func addMissingColumns(ctx context.Context, tx *sqlx.Tx, d Dialect, table string, defs []columnDef) error {
	existing, err := d.columns(ctx, tx, table)
	if err != nil {
		return err
	}
	for _, col := range defs {
		if existing[col.name] {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, col.name, col.def)
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to add column %s.%s: %w", table, col.name, err)
		}
		log.Info().Str("table", table).Str("column", col.name).Msg("column added")
	}
	return nil
}

// Migrations is the ordered schema history.
var Migrations = []Migration{
	{
		Version:     1,
		Description: "create clinics and experiences",
		Up: func(ctx context.Context, tx *sqlx.Tx, d Dialect) error {
			stmts := []string{
				fmt.Sprintf(`CREATE TABLE IF NOT EXISTS clinics (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					address TEXT NOT NULL,
					phone TEXT,
					lat %[1]s NOT NULL,
					lng %[1]s NOT NULL,
					zip TEXT,
					shadowing_status TEXT NOT NULL DEFAULT 'mixed',
					notes TEXT,
					last_verified_at TEXT
				)`, d.floatType()),
				fmt.Sprintf(`CREATE TABLE IF NOT EXISTS experiences (
					id TEXT PRIMARY KEY,
					experience_type TEXT NOT NULL,
					organization_name TEXT NOT NULL,
					address TEXT,
					address2 TEXT,
					city TEXT,
					state_province TEXT,
					country TEXT,
					zip TEXT,
					supervisor_first_name TEXT,
					supervisor_last_name TEXT,
					supervisor_title TEXT,
					supervisor_phone TEXT,
					supervisor_email TEXT,
					hours %[1]s NOT NULL DEFAULT 0,
					date_start TEXT,
					date_end TEXT,
					notes TEXT,
					created_at TEXT
				)`, d.floatType()),
			}
			for _, stmt := range stmts {
				if _, err := tx.ExecContext(ctx, stmt); err != nil {
					return err
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "add experience detail columns",
		Up: func(ctx context.Context, tx *sqlx.Tx, d Dialect) error {
			return addMissingColumns(ctx, tx, d, "experiences", []columnDef{
				{"avg_weekly_hours", d.floatType()},
				{"number_of_weeks", d.floatType()},
				{"current_experience", "INTEGER DEFAULT 0"},
				{"status", "TEXT"},
				{"title", "TEXT"},
				{"type_compensated", "INTEGER DEFAULT 0"},
				{"type_academic_credit", "INTEGER DEFAULT 0"},
				{"type_volunteer", "INTEGER DEFAULT 0"},
				{"description", "TEXT"},
			})
		},
	},
	{
		Version:     3,
		Description: "index experience ordering and type filter",
		Up: func(ctx context.Context, tx *sqlx.Tx, d Dialect) error {
			stmts := []string{
				`CREATE INDEX IF NOT EXISTS idx_experiences_date_start ON experiences (date_start, created_at)`,
				`CREATE INDEX IF NOT EXISTS idx_experiences_type ON experiences (experience_type)`,
				`CREATE INDEX IF NOT EXISTS idx_clinics_name ON clinics (name)`,
			}
			for _, stmt := range stmts {
				if _, err := tx.ExecContext(ctx, stmt); err != nil {
					return err
				}
			}
			return nil
		},
	},
}

const createMigrationsTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
	version INTEGER PRIMARY KEY,
	description TEXT NOT NULL,
	applied_at TEXT NOT NULL
)`

// Migrate applies every migration newer than the recorded schema version,
// each in its own transaction, and returns the resulting version.
func Migrate(ctx context.Context, db *sqlx.DB) (int, error) {
	return migrate(ctx, db, Migrations)
}

func migrate(ctx context.Context, db *sqlx.DB, migrations []Migration) (int, error) {
	if _, err := db.ExecContext(ctx, createMigrationsTable); err != nil {
		return 0, fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	current, err := SchemaVersion(ctx, db)
	if err != nil {
		return 0, err
	}

	d := Dialect(db.DriverName())
	for _, m := range migrations {
		if m.Version <= current {
			continue
		}

		err := withTx(ctx, db, func(tx *sqlx.Tx) error {
			if err := m.Up(ctx, tx, d); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx,
				tx.Rebind(`INSERT INTO schema_migrations (version, description, applied_at) VALUES (?, ?, ?)`),
				m.Version, m.Description, time.Now().UTC().Format(time.RFC3339))
			return err
		})
		if err != nil {
			return current, fmt.Errorf("migration %d (%s) failed: %w", m.Version, m.Description, err)
		}

		log.Info().Int("version", m.Version).Str("description", m.Description).Msg("migration applied")
		current = m.Version
	}

	return current, nil
}

// SchemaVersion returns the highest applied migration, 0 if none.
func SchemaVersion(ctx context.Context, db *sqlx.DB) (int, error) {
	var version int
	if err := db.GetContext(ctx, &version, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}
