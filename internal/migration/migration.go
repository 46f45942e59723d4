package migration

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RunMigrations applies the embedded migrations of the connection's dialect,
// seeds the permission catalog and activates the schema bootstrap state.
func RunMigrations(conn *gorm.DB, log *zap.Logger) error {
	if conn == nil {
		return errors.New("migration database handle is required")
	}
	dialect := conn.Dialector.Name()

	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	unlock, err := acquireAdvisoryLock(ctx, sqlDB, dialect)
	if err != nil {
		return err
	}
	defer func() {
		_ = unlock(context.Background())
	}()

	latestVersion, err := LatestMigrationVersion(dialect)
	if err != nil {
		return err
	}
	expectedChecksum, err := MigrationsChecksum(dialect)
	if err != nil {
		return err
	}

	migrator, err := newMigrator(sqlDB, dialect)
	if err != nil {
		return err
	}

	if _, err := ensureNotDirty(migrator); err != nil {
		return err
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return errors.Wrap(upErr, "apply migrations")
	}

	currentVersion, err := ensureNotDirty(migrator)
	if err != nil {
		return err
	}
	if currentVersion != latestVersion {
		return errors.Newf("schema version mismatch after migrate: got %d want %d", currentVersion, latestVersion)
	}

	if err := seedPermissionCatalog(ctx, conn); err != nil {
		return err
	}
	if err := activateSystemBootstrapState(ctx, conn, fmt.Sprintf("%d", latestVersion), expectedChecksum); err != nil {
		return err
	}

	log.Info("schema migrated",
		zap.String("dialect", dialect),
		zap.Uint("version", currentVersion),
		zap.Bool("changed", upErr == nil),
	)
	return nil
}

func newMigrator(db *sql.DB, dialect string) (*migrate.Migrate, error) {
	sub, err := fs.Sub(embeddedMigrations, migrationsDir(dialect))
	if err != nil {
		return nil, errors.Wrap(err, "open migrations")
	}
	source, err := iofs.New(sub, ".")
	if err != nil {
		return nil, errors.Wrap(err, "create migration source")
	}

	var driver database.Driver
	switch dialect {
	case "postgres":
		driver, err = migratepostgres.WithInstance(db, &migratepostgres.Config{})
	case "mysql":
		driver, err = migratemysql.WithInstance(db, &migratemysql.Config{})
	default:
		return nil, errors.Newf("migrations unsupported for %s", dialect)
	}
	if err != nil {
		return nil, errors.Wrap(err, "create migration driver")
	}

	migrator, err := migrate.NewWithInstance("iofs", source, dialect, driver)
	if err != nil {
		return nil, errors.Wrap(err, "create migrator")
	}
	return migrator, nil
}

func ensureNotDirty(migrator *migrate.Migrate) (uint, error) {
	version, dirty, err := migrator.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return 0, nil
		}
		return 0, errors.Wrap(err, "read migration version")
	}
	if dirty {
		return 0, errors.Newf("database migrations are dirty at version %d", version)
	}
	return version, nil
}
