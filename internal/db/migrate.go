package db

import (
	"embed"
	"errors"
	"fmt"

	"budget-tracker-go/internal/config"
	"budget-tracker-go/pkg/logger"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// newMigrator opens its own connection; closing a migrate instance closes the
// underlying database handle, so it never shares the gorm pool.
func newMigrator(cfg config.DBConfig) (*migrate.Migrate, error) {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("migrations source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, cfg.MigrationURL())
	if err != nil {
		return nil, fmt.Errorf("migrate instance: %w", err)
	}
	return m, nil
}

func MigrateUp(cfg config.DBConfig, log logger.Logger) error {
	m, err := newMigrator(cfg)
	if err != nil {
		return err
	}
	defer closeMigrator(m, log)

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("db: migrations up to date")
			return nil
		}
		return fmt.Errorf("migrate up: %w", err)
	}

	version, dirty, _ := m.Version()
	log.Info("db: migrations applied", "version", version, "dirty", dirty)
	return nil
}

// MigrateDown rolls back the given number of migrations; steps <= 0 rolls back all.
func MigrateDown(cfg config.DBConfig, steps int, log logger.Logger) error {
	m, err := newMigrator(cfg)
	if err != nil {
		return err
	}
	defer closeMigrator(m, log)

	if steps > 0 {
		err = m.Steps(-steps)
	} else {
		err = m.Down()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate down: %w", err)
	}

	log.Info("db: migrations rolled back", "steps", steps)
	return nil
}

func closeMigrator(m *migrate.Migrate, log logger.Logger) {
	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		log.Warn("db: close migration source failed", "err", sourceErr)
	}
	if dbErr != nil {
		log.Warn("db: close migration database failed", "err", dbErr)
	}
}
