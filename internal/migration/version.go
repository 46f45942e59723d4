package migration

import (
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
	"sort"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// LatestMigrationVersion returns the highest embedded migration version for a dialect.
func LatestMigrationVersion(dialect string) (uint, error) {
	names, err := upMigrations(dialect)
	if err != nil {
		return 0, err
	}

	var maxVersion uint
	for _, name := range names {
		version, ok := parseMigrationVersion(name)
		if !ok {
			return 0, errors.Newf("invalid migration filename: %s", name)
		}
		if version > maxVersion {
			maxVersion = version
		}
	}

	if maxVersion == 0 {
		return 0, errors.Newf("no embedded migrations found for %s", dialect)
	}
	return maxVersion, nil
}

// MigrationsChecksum computes a deterministic checksum of a dialect's embedded migrations.
func MigrationsChecksum(dialect string) (string, error) {
	names, err := upMigrations(dialect)
	if err != nil {
		return "", err
	}

	hasher := sha256.New()
	for _, name := range names {
		content, err := embeddedMigrations.ReadFile(migrationsDir(dialect) + "/" + name)
		if err != nil {
			return "", errors.Wrapf(err, "read migration %s", name)
		}
		_, _ = hasher.Write([]byte(name))
		_, _ = hasher.Write([]byte{0})
		_, _ = hasher.Write(content)
		_, _ = hasher.Write([]byte{0})
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

func upMigrations(dialect string) ([]string, error) {
	entries, err := fs.ReadDir(embeddedMigrations, migrationsDir(dialect))
	if err != nil {
		return nil, errors.Wrapf(err, "list %s migrations", dialect)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := strings.TrimSpace(entry.Name())
		if strings.HasSuffix(name, ".up.sql") {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func parseMigrationVersion(name string) (uint, bool) {
	value, _, _ := strings.Cut(name, "_")
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(parsed), true
}
