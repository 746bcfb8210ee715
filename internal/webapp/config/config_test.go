package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func setEnv(t *testing.T, kv map[string]string) {
	t.Helper()

	for k, v := range kv {
		t.Setenv(k, v)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
server:
  address: ":9090"
  shutdown_timeout: 3s
database:
  driver: postgres
  dsn: postgres://localhost/records
paging:
  default_page_size: 5
logging:
  level: debug
  format: json
`)

	setEnv(t, map[string]string{
		"CURSORPAGING_DATABASE_DSN":            "postgres://db/records",
		"CURSORPAGING_PAGING_MAX_PAGE_SIZE":    "50",
		"CURSORPAGING_DATABASE_DEBUG":          "true",
		"CURSORPAGING_PAGING_SECRET":           "0123456789abcdef0123456789abcdef",
		"CURSORPAGING_SERVER_SHUTDOWN_TIMEOUT": "1m",
	})

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, time.Minute, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://db/records", cfg.Database.DSN)
	assert.True(t, cfg.Database.Debug)
	assert.Equal(t, 5, cfg.Paging.DefaultPageSize)
	assert.Equal(t, 50, cfg.Paging.MaxPageSize)
	assert.Equal(t, "0123456789abcdef0123456789abcdef", cfg.Paging.Secret)
	assert.Equal(t, LoggingConfig{Level: "debug", Format: "json"}, cfg.Logging)
}

func TestLoad_VerboseFlag(t *testing.T) {
	newFlags := func() (*pflag.FlagSet, *bool) {
		flags := pflag.NewFlagSet("webapp", pflag.ContinueOnError)
		verbose := flags.BoolP("verbose", "v", false, "debug logging")

		return flags, verbose
	}

	flags, _ := newFlags()
	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.False(t, cfg.Logging.Verbose)

	flags, verbose := newFlags()
	require.NoError(t, flags.Parse([]string{"-v"}))
	require.True(t, *verbose)

	cfg, err = Load("", flags)
	require.NoError(t, err)
	assert.True(t, cfg.Logging.Verbose)

	t.Setenv("CURSORPAGING_LOGGING_VERBOSE", "true")
	flags, _ = newFlags()
	cfg, err = Load("", flags)
	require.NoError(t, err)
	assert.True(t, cfg.Logging.Verbose)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		env  map[string]string
	}{
		{name: "unknown driver", yaml: "database:\n  driver: oracle\n"},
		{name: "short secret", env: map[string]string{"CURSORPAGING_PAGING_SECRET": "short"}},
		{name: "default above max", yaml: "paging:\n  default_page_size: 30\n  max_page_size: 20\n"},
		{name: "bad int", env: map[string]string{"CURSORPAGING_PAGING_MAX_PAGE_SIZE": "many"}},
		{name: "bad bool", env: map[string]string{"CURSORPAGING_DATABASE_DEBUG": "sometimes"}},
		{name: "log format", env: map[string]string{"CURSORPAGING_LOGGING_FORMAT": "xml"}},
		{name: "malformed yaml", yaml: "server: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := ""
			if tt.yaml != "" {
				path = writeConfig(t, tt.yaml)
			}
			setEnv(t, tt.env)

			_, err := Load(path, nil)
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestConfig_Redacted(t *testing.T) {
	cfg := Default()
	assert.Empty(t, cfg.Redacted().Paging.Secret)

	cfg.Paging.Secret = "0123456789abcdef0123456789abcdef"
	assert.Equal(t, "********", cfg.Redacted().Paging.Secret)
	assert.Equal(t, "0123456789abcdef0123456789abcdef", cfg.Paging.Secret)
}
