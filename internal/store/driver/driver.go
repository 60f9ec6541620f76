// Package driver opens the record store named in the configuration.
package driver

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"gitlab.com/dirk.krummacker/people-service/internal/config"
	"gitlab.com/dirk.krummacker/people-service/internal/store"
	"gitlab.com/dirk.krummacker/people-service/internal/store/gormstore"
	"gitlab.com/dirk.krummacker/people-service/internal/store/memory"
	"gitlab.com/dirk.krummacker/people-service/internal/store/sqlstore"
	"go.uber.org/zap"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open returns the configured store and a closer for its resources.
func Open(ctx context.Context, cfg config.Store, logger *zap.Logger) (store.Store, io.Closer, error) {
	logger = logger.With(zap.String("driver", cfg.Driver))
	switch cfg.Driver {
	case config.DriverMemory:
		logger.Info("keeping people in memory")
		return memory.New(), nopCloser{}, nil
	case config.DriverMySQL:
		sqlDB, err := CreateDatabase(ctx, "mysql", cfg.MySQLDSN())
		if err != nil {
			return nil, nil, err
		}
		return openSQL(ctx, sqlDB, sqlstore.MySQL, cfg.Migrate, logger)
	case config.DriverSQLite:
		if dir := filepath.Dir(cfg.StoragePath); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, nil, fmt.Errorf("create storage directory: %w", err)
			}
		}
		sqlDB, err := CreateDatabase(ctx, "sqlite3", cfg.StoragePath)
		if err != nil {
			return nil, nil, err
		}
		// SQLite allows a single writer only.
		sqlDB.SetMaxOpenConns(1)
		return openSQL(ctx, sqlDB, sqlstore.SQLite, true, logger)
	case config.DriverPostgres:
		s, err := gormstore.Open(cfg.PostgresDSN())
		if err != nil {
			return nil, nil, err
		}
		if err := s.Migrate(ctx); err != nil {
			_ = s.Close()
			return nil, nil, err
		}
		logger.Info("connected to postgres", zap.String("host", cfg.Host))
		return s, s, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// CreateDatabase opens a database connection and checks that it is alive.
func CreateDatabase(ctx context.Context, driverName string, dsn string) (*sql.DB, error) {
	sqlDB, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driverName, err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping %s: %w", driverName, err)
	}
	return sqlDB, nil
}

func openSQL(ctx context.Context, sqlDB *sql.DB, dialect sqlstore.Dialect, migrate bool, logger *zap.Logger) (store.Store, io.Closer, error) {
	if migrate {
		if err := sqlstore.Migrate(ctx, sqlx.NewDb(sqlDB, dialect.Driver), dialect); err != nil {
			_ = sqlDB.Close()
			return nil, nil, err
		}
	}
	s, err := sqlstore.New(sqlDB, dialect)
	if err != nil {
		_ = sqlDB.Close()
		return nil, nil, err
	}
	logger.Info("connected to database", zap.Bool("migrated", migrate))
	return s, s, nil
}
