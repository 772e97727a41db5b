package db

import (
	"github.com/go-faster/errors"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Migration brings the schema at dbStr up to the newest migration found in
// migratePath.
func Migration(dbStr, migratePath string) error {
	if dbStr == "" {
		return errors.New("database connection string is empty")
	}
	if migratePath == "" {
		return errors.New("migrations path is empty")
	}
	m, err := migrate.New("file://"+migratePath, dbStr)
	if err != nil {
		return errors.Wrap(err, "migrate.New failed")
	}
	defer func() {
		_, _ = m.Close()
	}()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, "m.Up failed")
	}
	return nil
}
