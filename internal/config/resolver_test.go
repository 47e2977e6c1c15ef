// internal/config/resolver_test.go
//
// Unit-tests for the source chain resolver.
//
// Context
// -------
// Exercises the merge laws the resolver guarantees: list-order
// precedence key by key, sibling preservation, per-source atomicity,
// determinism, and the availability/corruption split between
// SourceUnavailableError and SourceMalformedError.
//
// Sources come from t.TempDir files, t.Setenv variables, and a fake
// secret loader, so no network or fixtures are involved.

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFile drops content under dir and returns the full path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// fakeSecrets satisfies SecretLoader from an in-memory tree.
type fakeSecrets struct {
	tree map[string]any
	err  error
}

func (f *fakeSecrets) Load(context.Context) (map[string]any, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.tree, nil
}

func TestResolveOverridePrecedence(t *testing.T) {
	dir := t.TempDir()
	base := writeFile(t, dir, "base.yaml", "db:\n  name: app\n")
	overlay := writeFile(t, dir, "overlay.yaml", "db:\n  name: app_test\n")

	space, err := Resolve(context.Background(), []Source{
		File("base", base, true),
		File("overlay", overlay, false),
	}, "Test")
	require.NoError(t, err)

	assert.Equal(t, "app_test", space.Get("Db:Name"))
	assert.Equal(t, "overlay", space.Origin("db.name"))
}

func TestResolveSiblingKeysPreserved(t *testing.T) {
	dir := t.TempDir()
	base := writeFile(t, dir, "base.yaml", "feature:\n  a: true\n  b: false\n")
	overlay := writeFile(t, dir, "overlay.yaml", "feature:\n  a: false\n")

	space, err := Resolve(context.Background(), []Source{
		File("base", base, true),
		File("overlay", overlay, false),
	}, "Test")
	require.NoError(t, err)

	// Overlay overrides a alone; sibling b keeps the base value.
	assert.Equal(t, false, space.Get("feature.a"))
	assert.Equal(t, false, space.Get("feature.b"))
	assert.Equal(t, "base", space.Origin("feature.b"))
}

func TestResolveDeterminism(t *testing.T) {
	dir := t.TempDir()
	base := writeFile(t, dir, "base.yaml", "a: 1\nnested:\n  x: one\n  y: two\n")
	overlay := writeFile(t, dir, "overlay.yaml", "nested:\n  y: three\n")
	sources := []Source{
		File("base", base, true),
		File("overlay", overlay, false),
	}

	first, err := Resolve(context.Background(), sources, "Test")
	require.NoError(t, err)
	second, err := Resolve(context.Background(), sources, "Test")
	require.NoError(t, err)

	assert.Equal(t, first.Keys(), second.Keys())
	assert.Equal(t, first.Summary(), second.Summary())
}

func TestResolveIndependence(t *testing.T) {
	dir := t.TempDir()
	base := writeFile(t, dir, "base.yaml", "only:\n  here: kept\n")
	other := writeFile(t, dir, "other.yaml", "elsewhere: value\n")

	with, err := Resolve(context.Background(), []Source{
		File("base", base, true),
		File("other", other, false),
	}, "Test")
	require.NoError(t, err)

	without, err := Resolve(context.Background(), []Source{
		File("base", base, true),
	}, "Test")
	require.NoError(t, err)

	// Removing a source that never defined the key leaves it untouched.
	assert.Equal(t, with.Get("only.here"), without.Get("only.here"))
}

func TestResolveRequiredFileMissing(t *testing.T) {
	space, err := Resolve(context.Background(), []Source{
		File("base file", filepath.Join(t.TempDir(), "absent.yaml"), true),
	}, "Test")
	require.Error(t, err)
	assert.Nil(t, space)

	var unavailable *SourceUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, "base file", unavailable.Source)
}

func TestResolveOptionalFileMissingIsSkipped(t *testing.T) {
	dir := t.TempDir()
	base := writeFile(t, dir, "base.yaml", "a: 1\n")

	space, err := Resolve(context.Background(), []Source{
		File("base", base, true),
		File("overlay", filepath.Join(dir, "absent.yaml"), false),
	}, "Test")
	require.NoError(t, err)
	assert.Equal(t, 1, space.Len())
}

func TestResolveMalformedFileAlwaysFails(t *testing.T) {
	dir := t.TempDir()
	base := writeFile(t, dir, "base.yaml", "a: 1\n")
	broken := writeFile(t, dir, "broken.yaml", "a: [unclosed\n  b: :::\n")

	// Optional governs absence, not corruption.
	_, err := Resolve(context.Background(), []Source{
		File("base", base, true),
		File("broken overlay", broken, false),
	}, "Test")
	require.Error(t, err)

	var malformed *SourceMalformedError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "broken overlay", malformed.Source)
}

func TestResolveEnvOverlay(t *testing.T) {
	dir := t.TempDir()
	base := writeFile(t, dir, "base.yaml", "http:\n  listen_addr: \":8080\"\n")
	t.Setenv("PATHOSTEST_HTTP__LISTEN_ADDR", ":9090")

	space, err := Resolve(context.Background(), []Source{
		File("base", base, true),
		Env("process environment", "PATHOSTEST_"),
	}, "Test")
	require.NoError(t, err)

	assert.Equal(t, ":9090", space.Get("http.listen_addr"))
	assert.Equal(t, "process environment", space.Origin("http.listen_addr"))

	// The prefix must not survive into the key space.
	assert.False(t, space.Has("pathostest_http.listen_addr"))
}

func TestResolveEnvOnlySource(t *testing.T) {
	t.Setenv("PATHOSTEST_DB__NAME", "app_env")

	space, err := Resolve(context.Background(), []Source{
		Env("process environment", "PATHOSTEST_"),
	}, "Test")
	require.NoError(t, err)

	assert.Equal(t, "app_env", space.Get("db.name"))
	assert.Equal(t, []string{"db.name"}, space.Keys())
}

func TestResolveSecretSource(t *testing.T) {
	dir := t.TempDir()
	base := writeFile(t, dir, "base.yaml", "database:\n  global_dsn: \"tpl\"\n")
	loader := &fakeSecrets{tree: map[string]any{
		"database": map[string]any{"global_password": "hunter2"},
	}}

	space, err := Resolve(context.Background(), []Source{
		File("base", base, true),
		Secret("vault", loader, true),
	}, "Test")
	require.NoError(t, err)

	assert.Equal(t, "hunter2", space.Get("database.global_password"))
	assert.True(t, space.IsSecret("database:global_password"))
	assert.False(t, space.IsSecret("database.global_dsn"))

	// The bulk view never echoes the secret value.
	summary := space.Summary()
	assert.Equal(t, "[redacted]", summary["database.global_password"])
	assert.Equal(t, "tpl", summary["database.global_dsn"])
}

func TestResolveRequiredSecretMissing(t *testing.T) {
	loader := &fakeSecrets{err: errors.New("secret not found")}

	_, err := Resolve(context.Background(), []Source{
		Secret("vault secrets", loader, true),
	}, "Production")
	require.Error(t, err)

	var unavailable *SourceUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, "vault secrets", unavailable.Source)
}

func TestResolveOptionalSecretMissingIsSkipped(t *testing.T) {
	loader := &fakeSecrets{err: errors.New("secret not found")}

	space, err := Resolve(context.Background(), []Source{
		Secret("vault secrets", loader, false),
	}, "Development")
	require.NoError(t, err)
	assert.Equal(t, 0, space.Len())
}

func TestResolveArrayFlattening(t *testing.T) {
	dir := t.TempDir()
	base := writeFile(t, dir, "base.yaml",
		"servers:\n  - host: alpha\n  - host: beta\n")

	space, err := Resolve(context.Background(), []Source{
		File("base", base, true),
	}, "Test")
	require.NoError(t, err)

	// Array elements are addressed by numeric segment.
	assert.Equal(t, "alpha", space.Get("servers.0.host"))
	assert.Equal(t, "beta", space.Get("servers:1:host"))
}

func TestResolveScalarOverridesSubtree(t *testing.T) {
	dir := t.TempDir()
	base := writeFile(t, dir, "base.yaml", "cache:\n  host: redis\n  port: 6379\n")
	overlay := writeFile(t, dir, "overlay.yaml", "cache: disabled\n")
	sources := []Source{
		File("base", base, true),
		File("overlay", overlay, false),
	}

	space, err := Resolve(context.Background(), sources, "Test")
	require.NoError(t, err)

	// The scalar occupies the path; the stale subtree is gone entirely.
	assert.Equal(t, "disabled", space.Get("cache"))
	assert.False(t, space.Has("cache.host"))
	assert.False(t, space.Has("cache.port"))
	assert.Equal(t, []string{"cache"}, space.Keys())

	again, err := Resolve(context.Background(), sources, "Test")
	require.NoError(t, err)
	assert.Equal(t, space.Summary(), again.Summary())
}

func TestResolveSubtreeOverridesScalar(t *testing.T) {
	dir := t.TempDir()
	base := writeFile(t, dir, "base.yaml", "cache: disabled\n")
	overlay := writeFile(t, dir, "overlay.yaml", "cache:\n  host: redis\n")

	space, err := Resolve(context.Background(), []Source{
		File("base", base, true),
		File("overlay", overlay, false),
	}, "Test")
	require.NoError(t, err)

	assert.Equal(t, "redis", space.Get("cache.host"))
	assert.Equal(t, []string{"cache.host"}, space.Keys())
	assert.Equal(t, "overlay", space.Origin("cache.host"))
}

func TestResolveArrayElementOverride(t *testing.T) {
	dir := t.TempDir()
	base := writeFile(t, dir, "base.yaml",
		"servers:\n  - host: alpha\n  - host: beta\n")
	overlay := writeFile(t, dir, "overlay.yaml",
		"servers:\n  - host: alpha2\n")

	space, err := Resolve(context.Background(), []Source{
		File("base", base, true),
		File("overlay", overlay, false),
	}, "Test")
	require.NoError(t, err)

	// Index flattening makes the override per-element: the overlay's
	// single entry replaces element 0 and leaves element 1 intact.
	assert.Equal(t, "alpha2", space.Get("servers.0.host"))
	assert.Equal(t, "beta", space.Get("servers.1.host"))
	assert.Equal(t, "overlay", space.Origin("servers.0.host"))
	assert.Equal(t, "base", space.Origin("servers.1.host"))
}

func TestResolveCaseInsensitiveLookup(t *testing.T) {
	dir := t.TempDir()
	base := writeFile(t, dir, "base.yaml", "Db:\n  ConnectionString: cs\n")

	space, err := Resolve(context.Background(), []Source{
		File("base", base, true),
	}, "Test")
	require.NoError(t, err)

	assert.Equal(t, "cs", space.Get("db.connectionstring"))
	assert.Equal(t, "cs", space.Get("DB:CONNECTIONSTRING"))
	assert.True(t, space.Has("Db:ConnectionString"))
}

func TestResolveJSONFile(t *testing.T) {
	dir := t.TempDir()
	base := writeFile(t, dir, "base.json", `{"db": {"name": "app", "port": 3306}}`)

	space, err := Resolve(context.Background(), []Source{
		File("base", base, true),
	}, "Test")
	require.NoError(t, err)

	assert.Equal(t, "app", space.Get("db.name"))
	assert.True(t, space.Has("db.port"))
}

func TestResolvePathTemplateExpansion(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "app.Staging.yaml", "tier: staging\n")

	space, err := Resolve(context.Background(), []Source{
		File("overlay", filepath.Join(dir, "app.{env}.yaml"), true),
	}, "Staging")
	require.NoError(t, err)

	assert.Equal(t, "staging", space.Get("tier"))
	assert.Equal(t, "Staging", space.Environment())
}
