package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"gitlab.com/dirk.krummacker/people-service/internal/config"
	"gitlab.com/dirk.krummacker/people-service/internal/i18n"
	"gitlab.com/dirk.krummacker/people-service/internal/service"
	"gitlab.com/dirk.krummacker/people-service/internal/store"
	"gitlab.com/dirk.krummacker/people-service/internal/store/driver"
	"gitlab.com/dirk.krummacker/people-service/internal/validation"
	"go.uber.org/zap"
)

// Usage example on the command line:
// > PORT=8080 GIN_MODE=release GIN_LOGGING=OFF SEED_DATA=true go run main.go
// > STORE_DRIVER=mysql DBHOST=localhost DBUSER=dirk DBPWD=bullo92 DB_MIGRATE=true go run main.go
func main() {
	logger, err := newLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("could not load configuration", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	people, closer, err := driver.Open(ctx, cfg.Store, logger)
	if err != nil {
		cancel()
		logger.Fatal("could not open store", zap.Error(err))
	}
	defer closer.Close()
	if cfg.SeedData {
		if err := store.Populate(ctx, people, logger); err != nil {
			cancel()
			logger.Fatal("could not enter sample data", zap.Error(err))
		}
	}
	cancel()

	catalog, err := i18n.New(cfg.DefaultLocale)
	if err != nil {
		logger.Fatal("could not load messages", zap.Error(err))
	}
	router := service.NewService(people, catalog, validation.New(), logger).
		SetupHttpRouter(cfg.RequestLogging())
	logger.Info("listening", zap.String("addr", cfg.Addr()), zap.String("driver", cfg.Store.Driver))
	if err := router.Run(cfg.Addr()); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

// newLogger returns a JSON logger in release mode and a readable one otherwise.
func newLogger() (*zap.Logger, error) {
	if gin.Mode() == gin.ReleaseMode {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
