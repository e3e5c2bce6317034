// Package migration aplica el esquema SQL de migrations/ con golang-migrate.
package migration

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5" // driver pgx5://
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jhoicas/Billing-api/pkg/logger"
)

// Migrator envuelve golang-migrate con logging de la app.
type Migrator struct {
	migrate *migrate.Migrate
	log     *logger.Logger
}

// New crea el migrador a partir del DSN postgres:// y la carpeta de migraciones.
func New(databaseURL, migrationsPath string, log *logger.Logger) (*Migrator, error) {
	m, err := migrate.New("file://"+migrationsPath, DriverURL(databaseURL))
	if err != nil {
		return nil, fmt.Errorf("crear migrador: %w", err)
	}
	return &Migrator{migrate: m, log: log.Component("migration")}, nil
}

// DriverURL cambia el esquema postgres:// o postgresql:// por pgx5://, que es el que registra el driver.
func DriverURL(databaseURL string) string {
	for _, prefix := range []string{"postgresql://", "postgres://"} {
		if rest, ok := strings.CutPrefix(databaseURL, prefix); ok {
			return "pgx5://" + rest
		}
	}
	return databaseURL
}

// Up aplica todas las migraciones pendientes.
func (m *Migrator) Up() error {
	m.log.Info().Msg("aplicando migraciones")
	err := m.migrate.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		m.log.Info().Msg("sin migraciones pendientes")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	m.log.Info().Uint("version", version).Bool("dirty", dirty).Msg("migraciones aplicadas")
	return nil
}

// Down revierte una migración (steps > 0) o todas (steps == 0).
func (m *Migrator) Down(steps int) error {
	var err error
	if steps > 0 {
		m.log.Warn().Int("steps", steps).Msg("revirtiendo migraciones")
		err = m.migrate.Steps(-steps)
	} else {
		m.log.Warn().Msg("revirtiendo todas las migraciones")
		err = m.migrate.Down()
	}
	if errors.Is(err, migrate.ErrNoChange) {
		m.log.Info().Msg("nada que revertir")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migrate down: %w", err)
	}
	return nil
}

// Version versión actual; 0 si la base no tiene migraciones.
func (m *Migrator) Version() (uint, bool, error) {
	version, dirty, err := m.migrate.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("versión de migración: %w", err)
	}
	return version, dirty, nil
}

// Force fija la versión sin ejecutar SQL (recuperar un estado dirty).
func (m *Migrator) Force(version int) error {
	m.log.Warn().Int("version", version).Msg("forzando versión de migración")
	if err := m.migrate.Force(version); err != nil {
		return fmt.Errorf("forzar versión %d: %w", version, err)
	}
	return nil
}

// Close libera origen y conexión.
func (m *Migrator) Close() error {
	sourceErr, dbErr := m.migrate.Close()
	return errors.Join(sourceErr, dbErr)
}
