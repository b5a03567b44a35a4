package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newFlags mirrors the root command's persistent flags.
func newFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("config", "", "")
	fs.String("db", "", "")
	fs.String("history", "", "")
	fs.String("workspace", "", "")
	fs.String("environment", "", "")
	fs.BoolP("verbose", "v", false, "")
	fs.String("log-level", "", "")
	fs.Duration("timeout", 0, "")
	fs.String("color", "", "")
	return fs
}

// chdirTemp runs the test in an empty directory so no repost.yaml is found.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	dir := chdirTemp(t)

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, DefaultDirName, DefaultDBFile), cfg.DBPath)
	assert.Equal(t, filepath.Join(dir, DefaultDirName, DefaultHistoryFile), cfg.HistoryFile)
	assert.Equal(t, DefaultHTTPTimeout, cfg.HTTP.Timeout)
	assert.Equal(t, DefaultCompletionTimeout, cfg.Completion.Timeout)
	assert.Equal(t, ColorAuto, cfg.Color)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Empty(t, cfg.Workspace)
	assert.False(t, cfg.Verbose)
}

func TestLoad_Precedence(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "repost.yaml"), []byte(`
db_path: from-file.db
workspace: file-ws
environment: file-env
log_level: info
http:
  timeout: 5s
completion:
  timeout: 100ms
`), 0o600))

	t.Run("file", func(t *testing.T) {
		loader := NewLoader()
		cfg, err := loader.Load("", nil)
		require.NoError(t, err)
		assert.Equal(t, "repost.yaml", loader.FileUsed())
		assert.Equal(t, "from-file.db", cfg.DBPath)
		assert.Equal(t, "file-ws", cfg.Workspace)
		assert.Equal(t, 5*time.Second, cfg.HTTP.Timeout)
		assert.Equal(t, 100*time.Millisecond, cfg.Completion.Timeout)
	})

	t.Run("env over file", func(t *testing.T) {
		t.Setenv("REPOST_WORKSPACE", "env-ws")
		t.Setenv("REPOST_HTTP_TIMEOUT", "7s")
		cfg, err := Load("", nil)
		require.NoError(t, err)
		assert.Equal(t, "env-ws", cfg.Workspace)
		assert.Equal(t, 7*time.Second, cfg.HTTP.Timeout)
		assert.Equal(t, "file-env", cfg.Environment)
	})

	t.Run("flags over env", func(t *testing.T) {
		t.Setenv("REPOST_WORKSPACE", "env-ws")
		fs := newFlags()
		require.NoError(t, fs.Parse([]string{"--workspace", "flag-ws", "--db", "flag.db", "--timeout", "9s", "-v"}))

		cfg, err := Load("", fs)
		require.NoError(t, err)
		assert.Equal(t, "flag-ws", cfg.Workspace)
		assert.Equal(t, "flag.db", cfg.DBPath)
		assert.Equal(t, 9*time.Second, cfg.HTTP.Timeout)
		assert.True(t, cfg.Verbose)
		assert.Equal(t, slog.LevelDebug, cfg.Level())
	})

	t.Run("unchanged flags do not override", func(t *testing.T) {
		cfg, err := Load("", newFlags())
		require.NoError(t, err)
		assert.Equal(t, "from-file.db", cfg.DBPath)
	})
}

func TestLoad_ExplicitFile(t *testing.T) {
	dir := chdirTemp(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("db_path: ~/custom.db\n"), 0o600))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "custom.db"), cfg.DBPath)

	_, err = Load(filepath.Join(dir, "missing.yaml"), nil)
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	dir := chdirTemp(t)
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: loud\n"), 0o600))

	_, err := Load(path, nil)
	assert.ErrorContains(t, err, "invalid log_level")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		errSubstr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"empty db", func(c *Config) { c.DBPath = "" }, "db_path is required"},
		{"zero http timeout", func(c *Config) { c.HTTP.Timeout = 0 }, "http.timeout"},
		{"negative completion timeout", func(c *Config) { c.Completion.Timeout = -time.Second }, "completion.timeout"},
		{"bad level", func(c *Config) { c.LogLevel = "chatty" }, "invalid log_level"},
		{"bad color", func(c *Config) { c.Color = "sometimes" }, "color must be"},
		{"empty level is fine", func(c *Config) { c.LogLevel = "" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errSubstr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.errSubstr)
		})
	}
}

func TestLevel(t *testing.T) {
	cfg := Default()
	assert.Equal(t, slog.LevelWarn, cfg.Level())
	cfg.LogLevel = "error"
	assert.Equal(t, slog.LevelError, cfg.Level())
	cfg.LogLevel = "DEBUG"
	assert.Equal(t, slog.LevelDebug, cfg.Level())
	cfg.LogLevel = "info"
	cfg.Verbose = true
	assert.Equal(t, slog.LevelDebug, cfg.Level())
}

func TestDisplay(t *testing.T) {
	cfg := Default()
	d := cfg.Display()
	assert.Equal(t, "30s", d.HTTP.Timeout)
	assert.Equal(t, "250ms", d.Completion.Timeout)
	assert.Equal(t, cfg.DBPath, d.DBPath)
}

func TestGetLogger(t *testing.T) {
	assert.NotNil(t, GetLogger(context.Background()))

	logger := slog.New(slog.DiscardHandler)
	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, GetLogger(ctx))
}

func TestFromContext(t *testing.T) {
	assert.Equal(t, Default(), FromContext(context.Background()))

	cfg := Default()
	cfg.Workspace = "ws"
	assert.Same(t, cfg, FromContext(WithConfig(context.Background(), cfg)))
}
