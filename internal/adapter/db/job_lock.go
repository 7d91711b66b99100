package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"sailclub/internal/core/ports"
)

// JobLocker backs ports.JobLocker with MySQL named locks. A lock lives on the
// connection that took it, so the connection stays checked out until release.
type JobLocker struct {
	db *sqlx.DB
}

var _ ports.JobLocker = (*JobLocker)(nil)

func NewJobLocker(db *sqlx.DB) *JobLocker {
	return &JobLocker{db: db}
}

func (l *JobLocker) TryLock(ctx context.Context, name string) (func(), bool, error) {
	conn, err := l.db.Connx(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("reserve connection for lock %q: %w", name, err)
	}

	// GET_LOCK returns 1 when granted, 0 on timeout and NULL on error.
	var granted sql.NullInt64
	if err := conn.GetContext(ctx, &granted, "SELECT GET_LOCK(?, 0)", name); err != nil {
		_ = conn.Close()
		return nil, false, fmt.Errorf("get lock %q: %w", name, err)
	}
	if !granted.Valid || granted.Int64 != 1 {
		_ = conn.Close()
		return nil, false, nil
	}

	release := func() {
		var released sql.NullInt64
		if err := conn.GetContext(context.Background(), &released, "SELECT RELEASE_LOCK(?)", name); err != nil {
			zap.L().Warn("failed to release job lock", zap.String("lock", name), zap.Error(err))
		}
		if err := conn.Close(); err != nil {
			zap.L().Warn("failed to return lock connection", zap.String("lock", name), zap.Error(err))
		}
	}
	return release, true, nil
}
