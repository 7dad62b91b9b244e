package sqlite

import (
	"embed"

	"github.com/GuiaBolso/darwin"
	"github.com/diegoclair/sqlmigrator"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrate applies the embedded schema migrations.
func (s *Storage) Migrate() error {
	migrator := sqlmigrator.New(s.db, darwin.SqliteDialect{})

	return migrator.Migrate(migrationFiles, "migrations")
}
