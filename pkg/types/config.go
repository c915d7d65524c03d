package types

import (
	"errors"
	"time"
)

// Config holds driver selection and pool parameters for opening a TodoStore.
type Config struct {
	Driver  string `json:"driver" yaml:"driver"`
	DSN     string `json:"dsn,omitempty" yaml:"dsn,omitempty"`
	DataDir string `json:"data_dir,omitempty" yaml:"data_dir,omitempty"`

	MaxOpenConns    int           `json:"max_open_conns" yaml:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns" yaml:"max_idle_conns"`
	ConnMaxIdleTime time.Duration `json:"conn_max_idle_time" yaml:"conn_max_idle_time"`

	// AcquireTimeout bounds each operation, including the wait for a pooled
	// connection. Zero disables the bound.
	AcquireTimeout time.Duration `json:"acquire_timeout" yaml:"acquire_timeout"`
}

// Supported driver names.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config validation errors.
var (
	ErrDriverEmpty         = errors.New("driver must not be empty")
	ErrDriverUnknown       = errors.New("unknown driver")
	ErrDSNRequired         = errors.New("dsn is required for this driver")
	ErrDataDirRequired     = errors.New("data dir or dsn is required for sqlite")
	ErrPoolSizeInvalid     = errors.New("pool sizes must not be negative")
	ErrTimeoutInvalid      = errors.New("timeouts must not be negative")
	ErrIdleExceedsOpenPool = errors.New("max idle conns must not exceed max open conns")
)

var knownDrivers = map[string]bool{
	DriverSQLite:   true,
	DriverPostgres: true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Driver == "" {
		return ErrDriverEmpty
	}
	if !knownDrivers[c.Driver] {
		return ErrDriverUnknown
	}
	switch c.Driver {
	case DriverPostgres:
		if c.DSN == "" {
			return ErrDSNRequired
		}
	case DriverSQLite:
		if c.DSN == "" && c.DataDir == "" {
			return ErrDataDirRequired
		}
	}
	if c.MaxOpenConns < 0 || c.MaxIdleConns < 0 {
		return ErrPoolSizeInvalid
	}
	if c.MaxOpenConns > 0 && c.MaxIdleConns > c.MaxOpenConns {
		return ErrIdleExceedsOpenPool
	}
	if c.AcquireTimeout < 0 || c.ConnMaxIdleTime < 0 {
		return ErrTimeoutInvalid
	}
	return nil
}
