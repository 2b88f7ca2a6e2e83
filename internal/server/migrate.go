package server

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/CiZaii/ai-middle-platform/pkg/logger"
)

// RunMigrations applies pending SQL migrations before the server starts
// serving. An already up-to-date schema is not an error.
func RunMigrations(databaseURL string, sourcePath string) error {
	m, err := migrate.New("file://"+sourcePath, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open migrations: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Debug("Database schema up to date")
			return nil
		}
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	logger.Info("Database migrations applied")
	return nil
}
