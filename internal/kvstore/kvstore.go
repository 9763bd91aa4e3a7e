// Package kvstore is the durable key/value layer under the template gateway.
// Each backend stores opaque byte values under string keys.
package kvstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Store abstracts the per-user durable store.
type Store interface {
	// Get returns the value for key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	Close() error
}

// Watcher is implemented by backends that can report external changes.
type Watcher interface {
	// Watch calls fn whenever key is modified outside this Store.
	Watch(key string, fn func()) error
}

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
	DriverMySQL    Driver = "mysql"
	DriverMongoDB  Driver = "mongodb"
	DriverRedis    Driver = "redis"
	DriverFile     Driver = "file"
	DriverMemory   Driver = "memory"
)

var ErrUnsupportedDriver = errors.New("unsupported storage driver")

// Config selects and configures a backend. DSN wins over the discrete
// host fields when set. A "<password>" placeholder in DSN is replaced by
// Password.
type Config struct {
	Driver   Driver `json:"driver"`
	DSN      string `json:"dsn,omitempty"`
	Path     string `json:"path,omitempty"` // sqlite file or file-backend directory
	Host     string `json:"host,omitempty"`
	Port     int    `json:"port,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"-"`
	Database string `json:"database,omitempty"`
	SSLMode  string `json:"sslMode,omitempty"`
	Prefix   string `json:"prefix,omitempty"` // redis key prefix
}

func (c Config) dsn() string {
	if c.Password == "" {
		return c.DSN
	}
	return strings.ReplaceAll(c.DSN, "<password>", c.Password)
}

// Open creates the backend named by cfg.Driver.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case DriverSQLite, "":
		return OpenSQLite(cfg.Path)
	case DriverPostgres:
		return openSQL(ctx, "postgres", buildPostgresDSN(cfg), postgresDialect)
	case DriverMySQL:
		return openSQL(ctx, "mysql", buildMySQLDSN(cfg), mysqlDialect)
	case DriverMongoDB:
		return OpenMongo(ctx, cfg)
	case DriverRedis:
		return OpenRedis(ctx, cfg)
	case DriverFile:
		fs, err := OpenFile(cfg.Path)
		if err != nil {
			return nil, err
		}
		return fs, nil
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDriver, cfg.Driver)
	}
}

// maskPassword hides the password in a DSN for logging.
func maskPassword(dsn, password string) string {
	if password == "" {
		return dsn
	}
	return strings.ReplaceAll(dsn, password, "***")
}
