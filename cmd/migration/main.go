package main

import (
	"bufio"
	"context"
	"flag"
	"io"
	"os"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"gitlab.com/dirk.krummacker/people-service/internal/config"
	"gitlab.com/dirk.krummacker/people-service/internal/store/driver"
	"gitlab.com/dirk.krummacker/people-service/internal/store/gormstore"
	"gitlab.com/dirk.krummacker/people-service/internal/store/sqlstore"
	"go.uber.org/zap"
)

// Usage example on the command line:
// > STORE_DRIVER=mysql DBHOST=localhost DBUSER=dirk DBPWD=bullo92 go run main.go
// > STORE_DRIVER=mysql DBHOST=localhost DBUSER=dirk DBPWD=bullo92 go run main.go -file=../../scripts/database.sql
func main() {
	filePtr := flag.String("file", "", "the sql file to execute instead of the built-in schema")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("could not load configuration", zap.Error(err))
	}
	ctx := context.Background()
	logger = logger.With(zap.String("driver", cfg.Store.Driver))

	if *filePtr != "" {
		if err := runFile(ctx, cfg.Store, *filePtr, logger); err != nil {
			logger.Fatal("migration failed", zap.String("file", *filePtr), zap.Error(err))
		}
		return
	}

	switch cfg.Store.Driver {
	case config.DriverMySQL, config.DriverSQLite:
		driverName, dsn, dialect := target(cfg.Store)
		sqlDB, err := driver.CreateDatabase(ctx, driverName, dsn)
		if err != nil {
			logger.Fatal("could not connect", zap.Error(err))
		}
		db := sqlx.NewDb(sqlDB, driverName)
		defer db.Close()
		if err := sqlstore.Migrate(ctx, db, dialect); err != nil {
			logger.Fatal("migration failed", zap.Error(err))
		}
	case config.DriverPostgres:
		s, err := gormstore.Open(cfg.Store.PostgresDSN())
		if err != nil {
			logger.Fatal("could not connect", zap.Error(err))
		}
		defer s.Close()
		if err := s.Migrate(ctx); err != nil {
			logger.Fatal("migration failed", zap.Error(err))
		}
	default:
		logger.Info("nothing to migrate")
		return
	}
	logger.Info("schema is up to date")
}

// target returns driver name, data source name and dialect of a SQL store.
func target(cfg config.Store) (string, string, sqlstore.Dialect) {
	switch cfg.Driver {
	case config.DriverSQLite:
		return sqlstore.SQLite.Driver, cfg.StoragePath, sqlstore.SQLite
	case config.DriverPostgres:
		return "pgx", cfg.PostgresDSN(), sqlstore.Dialect{Driver: "pgx"}
	default:
		return sqlstore.MySQL.Driver, cfg.MySQLDSN(), sqlstore.MySQL
	}
}

// runFile executes every statement of a SQL file.
func runFile(ctx context.Context, cfg config.Store, path string, logger *zap.Logger) error {
	if cfg.Driver == config.DriverMemory {
		logger.Info("memory store needs no migration")
		return nil
	}
	readFile, err := os.Open(path) // nosemgrep
	if err != nil {
		return err
	}
	defer readFile.Close()
	statements, err := splitStatements(readFile)
	if err != nil {
		return err
	}

	driverName, dsn, _ := target(cfg)
	sqlDB, err := driver.CreateDatabase(ctx, driverName, dsn)
	if err != nil {
		return err
	}
	db := sqlx.NewDb(sqlDB, driverName)
	defer db.Close()
	for _, statement := range statements {
		if _, err := db.ExecContext(ctx, statement); err != nil {
			return err
		}
	}
	logger.Info("executed sql file", zap.Int("statements", len(statements)))
	return nil
}

// splitStatements joins the lines of a SQL script and cuts it after every line that contains a
// semicolon.
func splitStatements(r io.Reader) ([]string, error) {
	var statements []string
	fileScanner := bufio.NewScanner(r)
	fileScanner.Split(bufio.ScanLines)
	builder := strings.Builder{}
	for fileScanner.Scan() {
		line := fileScanner.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		builder.WriteString(line)
		builder.WriteString(" ")
		if strings.Contains(line, ";") {
			statements = append(statements, strings.TrimSpace(builder.String()))
			builder = strings.Builder{}
		}
	}
	if rest := strings.TrimSpace(builder.String()); rest != "" {
		statements = append(statements, rest)
	}
	return statements, fileScanner.Err()
}
