// Package config reads the service configuration from environment variables. A YAML file named
// by CONFIG_PATH may provide defaults; environment variables always win.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/ilyakaznacheev/cleanenv"
)

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config is the complete service configuration.
type Config struct {
	Port          int    `yaml:"port"           env:"PORT"           env-default:"8080"`
	GinLogging    string `yaml:"gin_logging"    env:"GIN_LOGGING"    env-default:"on"`
	DefaultLocale string `yaml:"default_locale" env:"DEFAULT_LOCALE" env-default:"en"`
	SeedData      bool   `yaml:"seed_data"      env:"SEED_DATA"      env-default:"false"`
	Store         Store  `yaml:"store"`
}

// Store selects and configures the record store.
type Store struct {
	Driver      string `yaml:"driver"       env:"STORE_DRIVER" env-default:"memory"`
	Host        string `yaml:"host"         env:"DBHOST"       env-default:"localhost"`
	Port        int    `yaml:"port"         env:"DBPORT"`
	User        string `yaml:"user"         env:"DBUSER"`
	Password    string `yaml:"password"     env:"DBPWD"`
	Name        string `yaml:"name"         env:"DBNAME"       env-default:"test"`
	StoragePath string `yaml:"storage_path" env:"STORAGE_PATH" env-default:"people.db"`
	Migrate     bool   `yaml:"migrate"      env:"DB_MIGRATE"   env-default:"false"`
}

// Load reads the configuration from the file in CONFIG_PATH, if set, and from the environment.
func Load() (*Config, error) {
	var cfg Config
	var err error
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		err = cleanenv.ReadConfig(path, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) validate() error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", cfg.Port)
	}
	cfg.Store.Driver = strings.ToLower(cfg.Store.Driver)
	switch cfg.Store.Driver {
	case DriverMemory, DriverMySQL, DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", cfg.Store.Driver)
	}
	return nil
}

// RequestLogging reports whether gin should log every request.
func (cfg *Config) RequestLogging() bool {
	return !strings.EqualFold(cfg.GinLogging, "off")
}

// Addr returns the listen address of the HTTP server.
func (cfg *Config) Addr() string {
	return fmt.Sprintf(":%d", cfg.Port)
}

// MySQLDSN returns the data source name for go-sql-driver/mysql.
func (s Store) MySQLDSN() string {
	dsn := mysql.NewConfig()
	dsn.User = s.User
	dsn.Passwd = s.Password
	dsn.Net = "tcp"
	dsn.Addr = s.hostPort(3306)
	dsn.DBName = s.Name
	dsn.ParseTime = true
	return dsn.FormatDSN()
}

// PostgresDSN returns the keyword/value connection string for PostgreSQL.
func (s Store) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
		s.Host, s.portOr(5432), s.User, s.Password, s.Name)
}

func (s Store) hostPort(defaultPort int) string {
	return fmt.Sprintf("%s:%d", s.Host, s.portOr(defaultPort))
}

func (s Store) portOr(defaultPort int) int {
	if s.Port == 0 {
		return defaultPort
	}
	return s.Port
}
