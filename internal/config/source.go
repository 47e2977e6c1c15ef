// internal/config/source.go
//
// Source declarations for the resolver chain.
//
// Context
// -------
// A Source is a named, ordered origin of key/value pairs.  Callers build
// an ordered slice with the File, Env, and Secret constructors and hand
// it to Resolve; list position is precedence (later overrides earlier,
// key by key).  Declarations are cheap values; nothing is read until
// Resolve runs.
//
// File paths are templates: the literal "{env}" expands to the active
// environment name at resolve time, so one declared overlay source
// covers every environment without code changes.
//
// Notes
// -----
//   • Secret stores are abstracted behind SecretLoader so the resolver
//     never imports a vault SDK; internal/secrets provides the real one.
//   • Oxford commas, two spaces after periods.

package config

import "context"

// Kind discriminates the source constructors.
type Kind int

const (
	KindFile Kind = iota
	KindEnv
	KindSecret
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindEnv:
		return "env"
	case KindSecret:
		return "secret"
	}
	return "unknown"
}

// SecretLoader fetches an application's secret tree from an
// out-of-process store.  Implementations return the tree as nested
// maps, structurally identical to a parsed config file.  Absence of
// the location is just an error; Resolve maps it to availability
// semantics.  Retry policy, if any, belongs to the implementation.
type SecretLoader interface {
	Load(ctx context.Context) (map[string]any, error)
}

// Source is one declared origin of configuration keys.  Zero value is
// not usable; construct with File, Env, or Secret.
type Source struct {
	Name     string
	Kind     Kind
	Required bool

	// KindFile: path template, "{env}" expands to the environment name.
	Path string

	// KindEnv: variable prefix, stripped before key mapping
	// (e.g. "PATHOS_").
	Prefix string

	// KindSecret: the store client.
	Secrets SecretLoader
}

// File declares a structured file source.  The parser is chosen by
// extension at resolve time (.json gets the JSON parser, anything else
// YAML, which reads JSON-compatible trees either way).
func File(name, pathTemplate string, required bool) Source {
	return Source{Name: name, Kind: KindFile, Path: pathTemplate, Required: required}
}

// Env declares the process environment as a source.  Variables carrying
// the prefix map onto key paths with "__" as the segment delimiter
// (PATHOS_HTTP__LISTEN_ADDR → http.listen_addr).  The environment is
// always present, so Env sources never fail availability.
func Env(name, prefix string) Source {
	return Source{Name: name, Kind: KindEnv, Prefix: prefix}
}

// Secret declares an out-of-process secret store source.  Keys loaded
// through it are tracked as secret-origin in the resolved Space and are
// never echoed by logging or the redacted summary.
func Secret(name string, loader SecretLoader, required bool) Source {
	return Source{Name: name, Kind: KindSecret, Secrets: loader, Required: required}
}
