package migration

import "embed"

//go:embed migrations
var embeddedMigrations embed.FS

const migrationsRoot = "migrations"

// migrationsDir returns the directory holding the migrations of a gorm
// dialect. SQLite shares the postgres files' shape but is only used with
// AutoMigrate in tests, so it has none.
func migrationsDir(dialect string) string {
	return migrationsRoot + "/" + dialect
}
