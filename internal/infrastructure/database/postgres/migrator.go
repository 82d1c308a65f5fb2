package postgres

import (
	"embed"
	stderrors "errors"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/turtacn/AcroLex/pkg/errors"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// migrateDSN rewrites the connection scheme to the one the pgx/v5 migrate
// driver registers under.
func migrateDSN(dsn string) string {
	if rest, ok := strings.CutPrefix(dsn, "postgres://"); ok {
		return "pgx5://" + rest
	}
	return dsn
}

// Migrate applies all pending schema migrations.  Migrations ship embedded
// in the binary, so deployment needs no separate migrations directory.
// Called on startup by every binary that persists runs; a schema already at
// head is not an error.
func Migrate(dsn string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return errors.Wrap(err, errors.CodeMigrationError, "loading embedded migrations")
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, migrateDSN(dsn))
	if err != nil {
		return errors.Wrap(err, errors.CodeMigrationError, "creating migrator")
	}
	defer m.Close()

	if err := m.Up(); err != nil && !stderrors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, errors.CodeMigrationError, "applying migrations")
	}
	return nil
}

// MigrationVersion reports the schema version and whether a previous
// migration left it dirty.
func MigrationVersion(dsn string) (version uint, dirty bool, err error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return 0, false, errors.Wrap(err, errors.CodeMigrationError, "loading embedded migrations")
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, migrateDSN(dsn))
	if err != nil {
		return 0, false, errors.Wrap(err, errors.CodeMigrationError, "creating migrator")
	}
	defer m.Close()

	version, dirty, err = m.Version()
	if stderrors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, errors.Wrap(err, errors.CodeMigrationError, "reading schema version")
	}
	return version, dirty, nil
}
