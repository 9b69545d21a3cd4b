package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(ConfigFileEnv, "")
	t.Setenv("PORT", "")
	t.Setenv("LISTEN_ADDR", "")
	t.Setenv("DATABASE_PATH", "")
	t.Setenv("MAIL_USE_TLS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, ":5000", cfg.ListenAddr)
	assert.Equal(t, "blog.db", cfg.DatabasePath)
	assert.Equal(t, "smtp.gmail.com", cfg.Mail.Server)
	assert.Equal(t, 587, cfg.Mail.Port)
	assert.True(t, cfg.Mail.UseTLS)
	assert.False(t, cfg.Mail.Configured())
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "songbird.yaml")
	content := []byte("port: \"7000\"\ndatabase_path: file.db\nmail:\n  use_tls: false\n  username: writer@example.com\n  password: secret\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	t.Setenv(ConfigFileEnv, path)
	t.Setenv("PORT", "")
	t.Setenv("LISTEN_ADDR", "")
	t.Setenv("DATABASE_PATH", "env.db")
	t.Setenv("MAIL_USE_TLS", "")
	t.Setenv("MAIL_USERNAME", "")
	t.Setenv("MAIL_PASSWORD", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "7000", cfg.Port)
	assert.Equal(t, ":7000", cfg.ListenAddr)
	assert.Equal(t, "env.db", cfg.DatabasePath)
	assert.False(t, cfg.Mail.UseTLS)
	assert.True(t, cfg.Mail.Configured())
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv(ConfigFileEnv, filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	require.Error(t, err)
}
