package db

import (
	"context"

	"github.com/cockroachdb/errors"
	"gorm.io/gorm"
)

type TableCount struct {
	Table string
	Rows  int64
}

// ServerVersion reports the version string of the connected server.
func ServerVersion(ctx context.Context, conn *gorm.DB) (string, error) {
	query := "SELECT VERSION()"
	switch conn.Dialector.Name() {
	case DriverPostgres:
		query = "SELECT version()"
	case "sqlite":
		query = "SELECT sqlite_version()"
	}

	var version string
	if err := conn.WithContext(ctx).Raw(query).Scan(&version).Error; err != nil {
		return "", errors.Wrap(err, "server version")
	}
	return version, nil
}

// CountRows counts the rows of each table in order. Table names are
// trusted input from the caller, never from a request.
func CountRows(ctx context.Context, conn *gorm.DB, tables ...string) ([]TableCount, error) {
	out := make([]TableCount, 0, len(tables))
	for _, table := range tables {
		var n int64
		if err := conn.WithContext(ctx).Table(table).Count(&n).Error; err != nil {
			return nil, errors.Wrapf(err, "count %s", table)
		}
		out = append(out, TableCount{Table: table, Rows: n})
	}
	return out, nil
}
