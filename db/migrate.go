package db

import (
	"database/sql"
	"embed"
	"io/fs"
	"path"
	"regexp"
	"sort"

	"go.uber.org/zap"

	"github.com/devtycoon/forge/errors"
	"github.com/devtycoon/forge/logger"
)

//go:embed sqlite/migrations/*.sql
var migrations embed.FS

const migrationsDir = "sqlite/migrations"

// bootstrapVersion creates schema_migrations and so cannot be looked up
// before it runs
const bootstrapVersion = "000"

var migrationName = regexp.MustCompile(`^(\d{3})_[a-z0-9_]+\.sql$`)

// migration is one embedded schema step
type migration struct {
	version string
	file    string
	sql     string
}

// Migrate brings the graph store schema up to date. A nil log runs silently.
func Migrate(db *sql.DB, log *zap.SugaredLogger) error {
	sub, err := fs.Sub(migrations, migrationsDir)
	if err != nil {
		return errors.Wrap(err, "open migrations")
	}
	return migrateFS(db, sub, log)
}

func migrateFS(db *sql.DB, fsys fs.FS, log *zap.SugaredLogger) error {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	steps, err := loadMigrations(fsys)
	if err != nil {
		return err
	}

	applied, err := appliedVersions(db)
	if err != nil {
		return err
	}

	ran := 0
	for _, m := range steps {
		if applied[m.version] {
			log.Debugw("Migration already applied", logger.FieldMigration, m.file)
			continue
		}
		if len(applied) == 0 && ran == 0 && m.version != bootstrapVersion {
			return errors.Newf("schema_migrations missing and first pending migration is %s", m.file)
		}

		log.Infow("Applying migration", logger.FieldMigration, m.file)
		if err := apply(db, m); err != nil {
			return err
		}
		ran++
	}

	schema := ""
	if len(steps) > 0 {
		schema = steps[len(steps)-1].version
	}
	log.Infow("Graph store schema ready",
		logger.FieldSchemaVersion, schema,
		"applied", ran,
		"total_migrations", len(steps),
	)
	return nil
}

// loadMigrations reads NNN_name.sql files in version order. Other files
// are ignored; a repeated version is an error.
func loadMigrations(fsys fs.FS) ([]migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, errors.Wrap(err, "read migrations")
	}

	var steps []migration
	seen := make(map[string]string)
	for _, entry := range entries {
		match := migrationName.FindStringSubmatch(entry.Name())
		if entry.IsDir() || match == nil {
			continue
		}
		version := match[1]
		if prev, dup := seen[version]; dup {
			return nil, errors.Newf("migrations %s and %s share version %s", prev, entry.Name(), version)
		}
		seen[version] = entry.Name()

		data, err := fs.ReadFile(fsys, path.Join(".", entry.Name()))
		if err != nil {
			return nil, errors.Wrapf(err, "read %s", entry.Name())
		}
		steps = append(steps, migration{version: version, file: entry.Name(), sql: string(data)})
	}

	sort.Slice(steps, func(i, j int) bool { return steps[i].version < steps[j].version })
	return steps, nil
}

// appliedVersions lists recorded migrations. A database without
// schema_migrations has none.
func appliedVersions(db *sql.DB) (map[string]bool, error) {
	var tables int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'schema_migrations'").Scan(&tables)
	if err != nil {
		return nil, errors.Wrapf(err, "inspect schema before %s_create_schema_migrations.sql", bootstrapVersion)
	}
	applied := make(map[string]bool)
	if tables == 0 {
		return applied, nil
	}

	rows, err := db.Query("SELECT version FROM schema_migrations")
	if err != nil {
		return nil, errors.Wrap(err, "list applied migrations")
	}
	defer rows.Close()
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, errors.Wrap(err, "scan migration version")
		}
		applied[v] = true
	}
	return applied, errors.Wrap(rows.Err(), "list applied migrations")
}

// apply runs one migration and records it in the same transaction
func apply(db *sql.DB, m migration) error {
	tx, err := db.Begin()
	if err != nil {
		return errors.Wrapf(err, "begin %s", m.file)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(m.sql); err != nil {
		return errors.Wrapf(err, "execute %s", m.file)
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", m.version); err != nil {
		return errors.Wrapf(err, "record %s", m.file)
	}
	return errors.Wrapf(tx.Commit(), "commit %s", m.file)
}
