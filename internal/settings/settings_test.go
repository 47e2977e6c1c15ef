// internal/settings/settings_test.go
//
// Unit-tests for the settings factories.
//
// Context
// -------
// Each factory is defaults + Bind + validate.  These tests pin the
// defaults, the section scoping, the explicit DSN field map, and the
// fail-fast validation path.

package settings

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezzy1337/Pathos/internal/config"
)

// resolveYAML builds a Space from one YAML document.
func resolveYAML(t *testing.T, doc string) *config.Space {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	space, err := config.Resolve(context.Background(), []config.Source{
		config.File("base", path, true),
	}, "Test")
	require.NoError(t, err)
	return space
}

func TestNewHTTPDefaults(t *testing.T) {
	space := resolveYAML(t, "unrelated: 1\n")

	h, err := NewHTTP(space)
	require.NoError(t, err)

	assert.Equal(t, ":8080", h.ListenAddr)
	assert.False(t, h.ForceHTTPS)
	assert.Equal(t, 10*time.Second, h.ReadTimeout)
	assert.Equal(t, 15*time.Second, h.WriteTimeout)
	assert.Equal(t, 60*time.Second, h.IdleTimeout)
}

func TestNewHTTPFromSection(t *testing.T) {
	space := resolveYAML(t, `
http:
  listen_addr: ":9443"
  force_https: true
  read_timeout: 5s
`)

	h, err := NewHTTP(space)
	require.NoError(t, err)

	assert.Equal(t, ":9443", h.ListenAddr)
	assert.True(t, h.ForceHTTPS)
	assert.Equal(t, 5*time.Second, h.ReadTimeout)
	// Keys the overlay never touched keep their defaults.
	assert.Equal(t, 15*time.Second, h.WriteTimeout)
}

func TestNewHTTPValidationRejectsBadAddr(t *testing.T) {
	space := resolveYAML(t, "http:\n  listen_addr: \"not a hostport\"\n")

	_, err := NewHTTP(space)
	require.Error(t, err)
}

func TestNewDatabaseFieldMap(t *testing.T) {
	space := resolveYAML(t, `
database:
  global_dsn: "app:%s@tcp(db:3306)/app?parseTime=true"
  global_password: swordfish
  max_open: 30
`)

	d, err := NewDatabase(space)
	require.NoError(t, err)

	assert.Equal(t, "app:%s@tcp(db:3306)/app?parseTime=true", d.DSN)
	assert.Equal(t, "swordfish", d.Password)
	assert.Equal(t, 30, d.MaxOpen)
	assert.Equal(t, 5, d.MaxIdle)
	assert.True(t, d.Enabled())
}

func TestNewDatabaseDisabledWhenBlank(t *testing.T) {
	space := resolveYAML(t, "database:\n  max_open: 5\n")

	d, err := NewDatabase(space)
	require.NoError(t, err)
	assert.False(t, d.Enabled())
}

func TestNewLogOverlay(t *testing.T) {
	space := resolveYAML(t, "log:\n  level: debug\n  max_size_mb: 10\n")

	l, err := NewLog(space)
	require.NoError(t, err)

	assert.Equal(t, "debug", l.Level)
	assert.Equal(t, 10, l.MaxSizeMB)
	assert.Equal(t, 7, l.MaxBackups)
}

func TestNewLogRejectsUnknownLevel(t *testing.T) {
	space := resolveYAML(t, "log:\n  level: loud\n")

	_, err := NewLog(space)
	require.Error(t, err)
}
