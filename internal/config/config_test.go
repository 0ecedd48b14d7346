package config

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_Formats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"YAML", "parley.yaml", "script: rules.yaml\nstore:\n  kind: file\n  path: /tmp/s\n  ttl: 1h\n"},
		{"JSON", "parley.json", `{"script": "rules.yaml", "store": {"kind": "file", "path": "/tmp/s", "ttl": "1h"}}`},
		{"TOML", "parley.toml", "script = \"rules.yaml\"\n[store]\nkind = \"file\"\npath = \"/tmp/s\"\nttl = \"1h\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, tt.content)
			cfg, err := Load(path)
			require.NoError(t, err)

			assert.Equal(t, "rules.yaml", cfg.Script)
			assert.Equal(t, StoreFile, cfg.Store.Kind)
			assert.Equal(t, "/tmp/s", cfg.Store.Path)
			assert.Equal(t, time.Hour, cfg.Store.TTL)
			assert.Equal(t, 30*time.Second, cfg.Store.LockTTL, "unset keys keep defaults")
			assert.Equal(t, path, cfg.Source)
		})
	}
}

func TestLoad_DiscoversDefaultFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "parley.yml"), []byte("log_level: debug\n"), 0644))
	t.Chdir(dir)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "parley.yml", cfg.Source)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeFile(t, "parley.yaml", "script: file.yaml\nstore:\n  kind: file\n")
	key := base64.StdEncoding.EncodeToString([]byte(strings.Repeat("k", 32)))

	t.Setenv(EnvScript, "env.yaml")
	t.Setenv(EnvStore, StoreRedis)
	t.Setenv(EnvRedisAddr, "redis:6380")
	t.Setenv(EnvMaxInputSize, "128")
	t.Setenv(EnvEncryptionKey, key)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env.yaml", cfg.Script)
	assert.Equal(t, StoreRedis, cfg.Store.Kind)
	assert.Equal(t, "redis:6380", cfg.Store.RedisAddr)
	assert.Equal(t, 128, cfg.MaxInputSize)

	k, err := cfg.Store.Key()
	require.NoError(t, err)
	assert.Len(t, k, 32)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("Missing Explicit File", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.ErrorContains(t, err, "failed to read config")
	})

	t.Run("Unknown Key", func(t *testing.T) {
		_, err := Load(writeFile(t, "parley.yaml", "stroe:\n  kind: file\n"))
		assert.ErrorContains(t, err, "stroe")
	})

	t.Run("Unsupported Extension", func(t *testing.T) {
		_, err := Load(writeFile(t, "parley.ini", "x=1"))
		assert.ErrorContains(t, err, "unsupported config extension")
	})

	t.Run("Aggregated Validation", func(t *testing.T) {
		_, err := Load(writeFile(t, "parley.yaml", "max_input_size: -1\nstore:\n  kind: mongo\n  encryption_key: c2hvcnQ=\n"))
		require.Error(t, err)
		assert.ErrorContains(t, err, `unknown store kind "mongo"`)
		assert.ErrorContains(t, err, "max_input_size")
		assert.ErrorContains(t, err, "32 bytes, got 5")
	})

	t.Run("Bad Env Size", func(t *testing.T) {
		t.Setenv(EnvMaxInputSize, "lots")
		_, err := Load(writeFile(t, "parley.yaml", "log_level: info\n"))
		assert.ErrorContains(t, err, EnvMaxInputSize)
	})
}
