// Package config loads todos settings with viper. Values come from built-in
// defaults, then config.yaml in the config directory, then TODOS_*
// environment variables, then any command-line flags bound by the caller.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/todos/internal/paths"
	"github.com/mesh-intelligence/todos/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"

	// EnvPrefix is prepended to upper-cased keys: server.addr reads
	// TODOS_SERVER_ADDR.
	EnvPrefix = "TODOS"
)

// Config keys.
const (
	KeyServerAddr            = "server.addr"
	KeyServerStaticDir       = "server.static_dir"
	KeyServerReadTimeout     = "server.read_timeout"
	KeyServerWriteTimeout    = "server.write_timeout"
	KeyServerIdleTimeout     = "server.idle_timeout"
	KeyServerShutdownTimeout = "server.shutdown_timeout"

	KeyStorageDriver          = "storage.driver"
	KeyStorageDSN             = "storage.dsn"
	KeyStorageDataDir         = "storage.data_dir"
	KeyStorageMaxOpenConns    = "storage.max_open_conns"
	KeyStorageMaxIdleConns    = "storage.max_idle_conns"
	KeyStorageConnMaxIdleTime = "storage.conn_max_idle_time"
	KeyStorageAcquireTimeout  = "storage.acquire_timeout"

	KeyClientServer  = "client.server"
	KeyClientTimeout = "client.timeout"

	KeyLogLevel  = "log.level"
	KeyLogFormat = "log.format"
)

// Log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Defaults returns the built-in settings. DataDir is left empty; it is
// resolved by the paths package.
func Defaults() Settings {
	return Settings{
		Server: Server{
			Addr:            "127.0.0.1:3030",
			StaticDir:       "static",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Storage: types.Config{
			Driver:          types.DriverSQLite,
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxIdleTime: 5 * time.Minute,
			AcquireTimeout:  5 * time.Second,
		},
		Client: Client{
			Server:  "http://127.0.0.1:3030",
			Timeout: 10 * time.Second,
		},
		Log: Log{
			Level:  "info",
			Format: LogFormatText,
		},
	}
}

// Settings is the fully resolved configuration.
type Settings struct {
	Server  Server       `yaml:"server"`
	Storage types.Config `yaml:"storage"`
	Client  Client       `yaml:"client"`
	Log     Log          `yaml:"log"`
}

// Server configures the HTTP listener.
type Server struct {
	Addr            string        `yaml:"addr"`
	StaticDir       string        `yaml:"static_dir"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Client configures the CLI's HTTP client commands.
type Client struct {
	Server  string        `yaml:"server"`
	Timeout time.Duration `yaml:"timeout"`
}

// Log configures the slog handler.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Settings validation errors.
var (
	ErrLogLevel  = errors.New("log level must be debug, info, warn or error")
	ErrLogFormat = errors.New("log format must be text or json")
	ErrAddrEmpty = errors.New("server addr must not be empty")
)

// New returns a viper instance carrying every default and the environment
// binding, without reading any file.
func New() *viper.Viper {
	d := Defaults()
	v := viper.New()

	v.SetDefault(KeyServerAddr, d.Server.Addr)
	v.SetDefault(KeyServerStaticDir, d.Server.StaticDir)
	v.SetDefault(KeyServerReadTimeout, d.Server.ReadTimeout)
	v.SetDefault(KeyServerWriteTimeout, d.Server.WriteTimeout)
	v.SetDefault(KeyServerIdleTimeout, d.Server.IdleTimeout)
	v.SetDefault(KeyServerShutdownTimeout, d.Server.ShutdownTimeout)

	v.SetDefault(KeyStorageDriver, d.Storage.Driver)
	v.SetDefault(KeyStorageDSN, "")
	v.SetDefault(KeyStorageDataDir, "")
	v.SetDefault(KeyStorageMaxOpenConns, d.Storage.MaxOpenConns)
	v.SetDefault(KeyStorageMaxIdleConns, d.Storage.MaxIdleConns)
	v.SetDefault(KeyStorageConnMaxIdleTime, d.Storage.ConnMaxIdleTime)
	v.SetDefault(KeyStorageAcquireTimeout, d.Storage.AcquireTimeout)

	v.SetDefault(KeyClientServer, d.Client.Server)
	v.SetDefault(KeyClientTimeout, d.Client.Timeout)

	v.SetDefault(KeyLogLevel, d.Log.Level)
	v.SetDefault(KeyLogFormat, d.Log.Format)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load returns a viper instance with config.yaml from configDir merged over
// the defaults. A missing config.yaml is not an error.
func Load(configDir string) (*viper.Viper, error) {
	v := New()
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// FromViper reads Settings out of v. Storage.DataDir is the raw configured
// value; callers resolve it with paths.ResolveDataDir.
func FromViper(v *viper.Viper) (Settings, error) {
	s := Settings{
		Server: Server{
			Addr:            v.GetString(KeyServerAddr),
			StaticDir:       v.GetString(KeyServerStaticDir),
			ReadTimeout:     v.GetDuration(KeyServerReadTimeout),
			WriteTimeout:    v.GetDuration(KeyServerWriteTimeout),
			IdleTimeout:     v.GetDuration(KeyServerIdleTimeout),
			ShutdownTimeout: v.GetDuration(KeyServerShutdownTimeout),
		},
		Storage: types.Config{
			Driver:          v.GetString(KeyStorageDriver),
			DSN:             v.GetString(KeyStorageDSN),
			DataDir:         v.GetString(KeyStorageDataDir),
			MaxOpenConns:    v.GetInt(KeyStorageMaxOpenConns),
			MaxIdleConns:    v.GetInt(KeyStorageMaxIdleConns),
			ConnMaxIdleTime: v.GetDuration(KeyStorageConnMaxIdleTime),
			AcquireTimeout:  v.GetDuration(KeyStorageAcquireTimeout),
		},
		Client: Client{
			Server:  v.GetString(KeyClientServer),
			Timeout: v.GetDuration(KeyClientTimeout),
		},
		Log: Log{
			Level:  strings.ToLower(v.GetString(KeyLogLevel)),
			Format: strings.ToLower(v.GetString(KeyLogFormat)),
		},
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks the settings that are not covered by types.Config.
// Storage is validated when the store is opened.
func (s Settings) Validate() error {
	if s.Server.Addr == "" {
		return ErrAddrEmpty
	}
	if _, err := ParseLevel(s.Log.Level); err != nil {
		return err
	}
	if s.Log.Format != LogFormatText && s.Log.Format != LogFormatJSON {
		return fmt.Errorf("%w: %q", ErrLogFormat, s.Log.Format)
	}
	return nil
}

// ParseLevel maps a level name to its slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return 0, fmt.Errorf("%w: %q", ErrLogLevel, name)
	}
	return level, nil
}

// WriteDefault writes config.yaml with the default settings into dir unless
// the file already exists. It reports whether a file was written.
func WriteDefault(dir, dataDir string) (bool, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, fmt.Errorf("create config dir: %w", err)
	}

	path := paths.ConfigFile(dir)
	_, err := os.Stat(path)
	if err == nil {
		return false, nil
	}
	if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	s := Defaults()
	s.Storage.DataDir = dataDir
	data, err := yaml.Marshal(&s)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, fmt.Errorf("write config: %w", err)
	}
	return true, nil
}
