package migration

import (
	"context"
	"database/sql"

	"github.com/cockroachdb/errors"
)

const (
	advisoryLockKey  int64 = 7_310_442_905
	advisoryLockName       = "waterworks_migrations"
)

var ErrLockHeld = errors.New("another migration process holds the advisory lock")

type unlockFunc func(ctx context.Context) error

// acquireAdvisoryLock takes a session-level lock on a dedicated connection
// so the unlock runs on the same session that locked.
func acquireAdvisoryLock(ctx context.Context, db *sql.DB, dialect string) (unlockFunc, error) {
	if db == nil {
		return nil, errors.New("advisory lock requires database handle")
	}

	var lockQuery, unlockQuery string
	var arg any
	switch dialect {
	case "postgres":
		lockQuery, unlockQuery, arg = "SELECT pg_try_advisory_lock($1)", "SELECT pg_advisory_unlock($1)", advisoryLockKey
	case "mysql":
		lockQuery, unlockQuery, arg = "SELECT GET_LOCK(?, 0) = 1", "SELECT RELEASE_LOCK(?) = 1", advisoryLockName
	default:
		return nil, errors.Newf("advisory lock unsupported for %s", dialect)
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "reserve lock connection")
	}

	var locked bool
	if err := conn.QueryRowContext(ctx, lockQuery, arg).Scan(&locked); err != nil {
		_ = conn.Close()
		return nil, errors.Wrap(err, "acquire advisory lock")
	}
	if !locked {
		_ = conn.Close()
		return nil, ErrLockHeld
	}

	return func(unlockCtx context.Context) error {
		defer conn.Close()
		var released bool
		if err := conn.QueryRowContext(unlockCtx, unlockQuery, arg).Scan(&released); err != nil {
			return errors.Wrap(err, "release advisory lock")
		}
		if !released {
			return errors.New("advisory lock was not held by this session")
		}
		return nil
	}, nil
}
