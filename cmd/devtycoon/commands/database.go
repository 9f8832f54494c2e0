package commands

import (
	"database/sql"

	"github.com/devtycoon/forge/am"
	"github.com/devtycoon/forge/db"
	"github.com/devtycoon/forge/errors"
	"github.com/devtycoon/forge/logger"
)

// resolveDatabasePath returns dbPath, or the configured path when empty
func resolveDatabasePath(dbPath string) (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}
	path, err := am.GetDatabasePath()
	if err != nil {
		return "", errors.Wrap(err, "failed to get database path")
	}
	if path == "" {
		return am.DefaultDatabasePath, nil
	}
	return path, nil
}

// openDatabase opens and migrates a database using the specified path.
// If dbPath is empty, it loads from am config.
func openDatabase(dbPath string) (*sql.DB, error) {
	path, err := resolveDatabasePath(dbPath)
	if err != nil {
		return nil, err
	}
	database, err := db.OpenWithMigrations(path, logger.Named("db"))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database at %s", path)
	}
	return database, nil
}
