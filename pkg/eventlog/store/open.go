package store

import (
	"context"
	"fmt"
)

// Driver names accepted by Open.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverPgx      = "pgx"
	DriverRedis    = "redis"
)

// Drivers lists every driver name Open accepts.
func Drivers() []string {
	return []string{DriverMemory, DriverSQLite, DriverPostgres, DriverPgx, DriverRedis}
}

// Options selects and configures a store.
type Options struct {
	// Driver is one of the Driver* constants.
	Driver string
	// DSN is a file path for sqlite, a connection string for postgres and
	// pgx, or a redis:// URL for redis. Unused by memory.
	DSN string
	// Stream is the Redis stream key. Defaults to DefaultStream.
	Stream string
}

// Open creates the store named by opts.Driver.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case DriverMemory, "":
		return NewMemoryStore(), nil
	case DriverSQLite:
		dsn := opts.DSN
		if dsn == "" {
			dsn = ":memory:"
		}
		return opened(NewSQLiteStore(dsn))
	case DriverPostgres:
		return opened(OpenSQLStore(ctx, opts.DSN))
	case DriverPgx:
		return opened(OpenPgStore(ctx, opts.DSN))
	case DriverRedis:
		return opened(OpenRedisStreamStore(ctx, opts.DSN, opts.Stream))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
	}
}

// opened avoids returning a typed nil inside a non-nil Store.
func opened[S Store](s S, err error) (Store, error) {
	if err != nil {
		return nil, err
	}
	return s, nil
}
