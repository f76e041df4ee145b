package postgres

import (
	"embed"
	stderrors "errors"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5" // registers pgx5://
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/turtacn/minorchanges/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/minorchanges/pkg/errors"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// migrateURL rewrites a postgres:// URL to the pgx5:// scheme the migrate
// driver registers.
func migrateURL(connString string) string {
	for _, p := range []string{"postgresql://", "postgres://"} {
		if strings.HasPrefix(connString, p) {
			return "pgx5://" + strings.TrimPrefix(connString, p)
		}
	}
	return connString
}

func newMigrator(connString string) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeMigrationFailed, "failed to open embedded migrations")
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, migrateURL(connString))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeMigrationFailed, "failed to create migrate instance")
	}
	return m, nil
}

// RunMigrations applies all pending migrations.  No pending migrations is
// not an error.
func RunMigrations(connString string, log logging.Logger) error {
	if log == nil {
		log = logging.NewNopLogger()
	}
	m, err := newMigrator(connString)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !stderrors.Is(err, migrate.ErrNoChange) {
		version, _, _ := m.Version()
		return errors.Wrap(err, errors.ErrCodeMigrationFailed, "failed to run migrations").
			WithDetailf("current version %d", version)
	}

	version, dirty, err := m.Version()
	if err != nil && !stderrors.Is(err, migrate.ErrNilVersion) {
		log.Warn("Failed to get migration version", logging.Err(err))
	}
	log.Info("Database migrations completed",
		logging.Int64("version", int64(version)),
		logging.Bool("dirty", dirty),
	)
	return nil
}

// RollbackMigration reverts steps migrations.
func RollbackMigration(connString string, steps int) error {
	if steps <= 0 {
		return errors.Newf(errors.ErrCodeMigrationFailed, "steps must be greater than 0, got %d", steps)
	}
	m, err := newMigrator(connString)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Steps(-steps); err != nil {
		if stderrors.Is(err, migrate.ErrNoChange) {
			return errors.New(errors.ErrCodeMigrationFailed, "no migrations to roll back")
		}
		return errors.Wrap(err, errors.ErrCodeMigrationFailed, "failed to roll back").WithDetailf("%d step(s)", steps)
	}
	return nil
}

// MigrationStatus returns the applied version (0 when none) and whether the
// last migration left the schema dirty.
func MigrationStatus(connString string) (version uint, dirty bool, err error) {
	m, err := newMigrator(connString)
	if err != nil {
		return 0, false, err
	}
	defer m.Close()

	version, dirty, err = m.Version()
	if err != nil {
		if stderrors.Is(err, migrate.ErrNilVersion) {
			return 0, false, nil
		}
		return 0, false, errors.Wrap(err, errors.ErrCodeMigrationFailed, "failed to get migration version")
	}
	return version, dirty, nil
}

//Personal.AI order the ending
