// Package config loads the webapp configuration with viper.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes the environment variables overriding config keys,
// e.g. CURSORPAGING_PAGING_SECRET for paging.secret.
const EnvPrefix = "CURSORPAGING"

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Paging   PagingConfig   `mapstructure:"paging" yaml:"paging"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
}

type ServerConfig struct {
	Address         string        `mapstructure:"address" yaml:"address"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	// Driver is one of sqlite, postgres or mysql.
	Driver string `mapstructure:"driver" yaml:"driver"`
	DSN    string `mapstructure:"dsn" yaml:"dsn"`
	Debug  bool   `mapstructure:"debug" yaml:"debug"`
}

type PagingConfig struct {
	// Secret is the 32 byte cursor encryption key shared by all instances.
	// A random key is used when empty.
	Secret          string `mapstructure:"secret" yaml:"secret"`
	DefaultPageSize int    `mapstructure:"default_page_size" yaml:"default_page_size"`
	MaxPageSize     int    `mapstructure:"max_page_size" yaml:"max_page_size"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	// Format is text or json.
	Format string `mapstructure:"format" yaml:"format"`
	// Verbose forces debug logging, bound to the --verbose flag.
	Verbose bool `mapstructure:"verbose" yaml:"verbose"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			Address:         ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "file:datarecords.db?cache=shared",
		},
		Paging: PagingConfig{
			DefaultPageSize: 10,
			MaxPageSize:     20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the YAML file at path over the defaults, then applies
// CURSORPAGING_* environment variables and the changed flags of flags.
// An empty path skips the file, a nil flag set binds nothing.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if f := flags.Lookup("verbose"); f != nil {
			if err := v.BindPFlag("logging.verbose", f); err != nil {
				return Config{}, fmt.Errorf("binding flags: %w", err)
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")

		if err := v.ReadInConfig(); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return Config{}, fmt.Errorf("reading config: %w", err)
			}
			return Config{}, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// setDefaults registers every key, AutomaticEnv only resolves known keys.
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("server.address", d.Server.Address)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)

	v.SetDefault("database.driver", d.Database.Driver)
	v.SetDefault("database.dsn", d.Database.DSN)
	v.SetDefault("database.debug", d.Database.Debug)

	v.SetDefault("paging.secret", d.Paging.Secret)
	v.SetDefault("paging.default_page_size", d.Paging.DefaultPageSize)
	v.SetDefault("paging.max_page_size", d.Paging.MaxPageSize)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.verbose", d.Logging.Verbose)
}

func (c Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres", "mysql":
	default:
		return fmt.Errorf("%w: unsupported database driver '%s'", ErrInvalidConfig, c.Database.Driver)
	}

	if c.Database.DSN == "" {
		return fmt.Errorf("%w: database dsn is empty", ErrInvalidConfig)
	}

	if c.Paging.Secret != "" && len(c.Paging.Secret) != 32 {
		return fmt.Errorf("%w: paging secret must be 32 bytes, got %d", ErrInvalidConfig, len(c.Paging.Secret))
	}

	if c.Paging.MaxPageSize < 1 || c.Paging.DefaultPageSize < 1 || c.Paging.DefaultPageSize > c.Paging.MaxPageSize {
		return fmt.Errorf("%w: page sizes must satisfy 1 <= default (%d) <= max (%d)",
			ErrInvalidConfig, c.Paging.DefaultPageSize, c.Paging.MaxPageSize)
	}

	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return fmt.Errorf("%w: unsupported log format '%s'", ErrInvalidConfig, c.Logging.Format)
	}

	return nil
}

// Redacted returns a copy safe to print.
func (c Config) Redacted() Config {
	if c.Paging.Secret != "" {
		c.Paging.Secret = "********"
	}

	return c
}
