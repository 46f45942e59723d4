package bootstrap

import (
	"context"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/railzwaylabs/waterworks/internal/migration"
	"gorm.io/gorm"
)

var (
	ErrBootstrapStateInactive = errors.New("system bootstrap state is not active")
	ErrSchemaVersionMismatch  = errors.New("schema version mismatch")
	ErrSchemaChecksumMismatch = errors.New("schema checksum mismatch")
)

// SchemaGate refuses to serve traffic until `waterworks migrate` has
// activated the schema this binary was built with.
type SchemaGate interface {
	MustBeActive(ctx context.Context) error
}

type schemaGate struct {
	db               *gorm.DB
	expectedVersion  string
	expectedChecksum string
}

func NewSchemaGate(db *gorm.DB) (SchemaGate, error) {
	if db == nil {
		return nil, errors.New("schema gate requires database handle")
	}
	dialect := db.Dialector.Name()

	latestVersion, err := migration.LatestMigrationVersion(dialect)
	if err != nil {
		return nil, err
	}
	expectedChecksum, err := migration.MigrationsChecksum(dialect)
	if err != nil {
		return nil, err
	}

	return &schemaGate{
		db:               db,
		expectedVersion:  strconv.FormatUint(uint64(latestVersion), 10),
		expectedChecksum: expectedChecksum,
	}, nil
}

func (g *schemaGate) MustBeActive(ctx context.Context) error {
	state, err := loadSystemBootstrapState(ctx, g.db)
	if err != nil {
		return err
	}

	if state.Status != StatusActive {
		return errors.Wrapf(ErrBootstrapStateInactive, "status=%s", state.Status)
	}

	if state.SchemaVersion != g.expectedVersion {
		return errors.Wrapf(ErrSchemaVersionMismatch, "state=%s expected=%s", state.SchemaVersion, g.expectedVersion)
	}

	if state.Checksum != nil && strings.TrimSpace(*state.Checksum) != "" {
		if g.expectedChecksum == "" || *state.Checksum != g.expectedChecksum {
			return errors.Wrapf(ErrSchemaChecksumMismatch, "state=%s expected=%s", *state.Checksum, g.expectedChecksum)
		}
	}

	return nil
}
