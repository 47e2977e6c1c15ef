// internal/config/resolver.go
//
// Source chain resolver.
//
/*
Context
--------
`Resolve()` walks an ordered source list and folds every source into one
flat key space.  Precedence is list order: later sources override
earlier ones key by key, never block by block, so an overlay that sets
`feature.a` leaves `feature.b` from the base file intact.

Each source is staged in isolation first (read, parsed, and flattened
into its own map), and only a fully staged source is merged.  A source
therefore applies atomically or not at all.

Key shape
---------
Nested objects flatten by joining path segments with ".", arrays flatten
with a numeric-index segment per element, and every segment is
lowercased.  Lookups through Space accept ":" as an alternate delimiter
and any letter case, so `Db:Name` and `db.name` address the same leaf.

Failure policy
--------------
  • Required source absent        → *SourceUnavailableError, resolution
    aborts (a process with incomplete config must not serve).
  • Optional source absent        → skipped, DEBUG log only.
  • Present file that won't parse → *SourceMalformedError, always fatal.
    The optional flag governs absence, not corruption.

Instrumentation
---------------
  • DEBUG spans per source (staged, skipped), INFO span on completion.
  • Counters in internal/metrics track loads, skips, and failures.
  • Logs use the global sugared logger (`zap.S()`) so early boot issues
    surface on the bootstrap console before the file logger exists.
  • Secret-origin values never appear in any log line; only names and
    key counts do.

Notes
-----
  • Oxford commas, two spaces after periods.
*/
package config

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	kjson "github.com/knadh/koanf/parsers/json"
	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"

	"github.com/ezzy1337/Pathos/internal/metrics"
)

// delimiter joins flattened path segments.  Space lookups also accept
// ":" and normalize it away.
const delimiter = "."

/*──────────────────────────── public entry ─────────────────────────────────*/

// Resolve loads every declared source in order and merges them into one
// immutable Space.  envName expands "{env}" in file path templates and
// is recorded on the Space as an opaque label.  The context is passed
// through to secret loaders only; file and env staging is local I/O.
func Resolve(ctx context.Context, sources []Source, envName string) (*Space, error) {
	merged := make(map[string]any)
	origin := make(map[string]string)
	secret := make(map[string]struct{})

	for _, src := range sources {
		flat, err := stage(ctx, src, envName)
		if err != nil {
			var missing *SourceUnavailableError
			if errors.As(err, &missing) && !src.Required {
				metrics.ConfigSourceSkipTotal.Inc()
				zap.S().Debugw("config source skipped", "source", src.Name, "kind", src.Kind.String())
				continue
			}
			metrics.ConfigSourceErrorTotal.Inc()
			return nil, err
		}

		for k, v := range flat {
			clearPathConflicts(k, merged, origin, secret)
			merged[k] = v
			origin[k] = src.Name
			if src.Kind == KindSecret {
				secret[k] = struct{}{}
			} else {
				// A later non-secret source may shadow a secret key;
				// the effective value is then loggable again.
				delete(secret, k)
			}
		}

		metrics.ConfigSourceLoadTotal.Inc()
		zap.S().Debugw("config source staged",
			"source", src.Name, "kind", src.Kind.String(), "keys", len(flat))
	}

	k := koanf.New(delimiter)
	if err := k.Load(confmap.Provider(merged, delimiter), nil); err != nil {
		// confmap over an already flat map cannot fail in practice.
		return nil, fmt.Errorf("config: assemble space: %w", err)
	}

	metrics.ConfigKeysResolved.Set(float64(len(merged)))
	zap.S().Infow("config resolved",
		"environment", envName, "sources", len(sources), "keys", len(merged))

	return &Space{env: envName, k: k, origin: origin, secret: secret}, nil
}

// clearPathConflicts evicts keys a new insertion shadows: a scalar at
// key replaces any earlier subtree below it, and a key inside a subtree
// replaces any earlier scalar on its ancestor path.  Leaf paths are
// unique as a result, so assembling the space never depends on map
// iteration order.
func clearPathConflicts(key string, merged map[string]any, origin map[string]string, secret map[string]struct{}) {
	drop := func(k string) {
		delete(merged, k)
		delete(origin, k)
		delete(secret, k)
	}

	prefix := key + delimiter
	for existing := range merged {
		if strings.HasPrefix(existing, prefix) {
			drop(existing)
		}
	}

	for i := len(key) - 1; i > 0; i-- {
		if key[i] == '.' {
			drop(key[:i])
		}
	}
}

/*──────────────────────────── staging ──────────────────────────────────────*/

// stage reads one source fully and returns its flattened key map.
// Classification happens here: absence surfaces as
// *SourceUnavailableError so Resolve can apply the optional rule, parse
// failures as *SourceMalformedError.
func stage(ctx context.Context, src Source, envName string) (map[string]any, error) {
	switch src.Kind {
	case KindFile:
		return stageFile(src, envName)
	case KindEnv:
		return stageEnv(src)
	case KindSecret:
		return stageSecret(ctx, src)
	}
	return nil, fmt.Errorf("config: source %q has unknown kind", src.Name)
}

func stageFile(src Source, envName string) (map[string]any, error) {
	path := strings.ReplaceAll(src.Path, "{env}", envName)

	raw, err := file.Provider(path).ReadBytes()
	if err != nil {
		// Unreadable counts as absent; a required source still fails
		// loudly, and an optional one is skipped.
		return nil, &SourceUnavailableError{Source: src.Name, Err: err}
	}

	var parser koanf.Parser
	if strings.EqualFold(filepath.Ext(path), ".json") {
		parser = kjson.Parser()
	} else {
		parser = kyaml.Parser()
	}

	tree, err := parser.Unmarshal(raw)
	if err != nil {
		return nil, &SourceMalformedError{Source: src.Name, Err: err}
	}

	flat := make(map[string]any)
	flattenTree("", tree, flat)
	return flat, nil
}

func stageEnv(src Source) (map[string]any, error) {
	k := koanf.New(delimiter)
	// PATHOS_HTTP__LISTEN_ADDR → http.listen_addr.  The provider only
	// filters by prefix; trimming it is the callback's job.
	err := k.Load(env.Provider(src.Prefix, delimiter, func(s string) string {
		s = strings.TrimPrefix(s, src.Prefix)
		return strings.ToLower(strings.ReplaceAll(s, "__", delimiter))
	}), nil)
	if err != nil {
		return nil, &SourceUnavailableError{Source: src.Name, Err: err}
	}
	return k.All(), nil
}

func stageSecret(ctx context.Context, src Source) (map[string]any, error) {
	if src.Secrets == nil {
		return nil, &SourceUnavailableError{Source: src.Name, Err: errors.New("no secret loader configured")}
	}
	tree, err := src.Secrets.Load(ctx)
	if err != nil {
		return nil, &SourceUnavailableError{Source: src.Name, Err: err}
	}
	flat := make(map[string]any)
	flattenTree("", tree, flat)
	return flat, nil
}

/*──────────────────────────── flattening ───────────────────────────────────*/

// flattenTree walks a parsed tree depth-first and emits lowercased leaf
// paths.  Arrays contribute a numeric segment per element, so element
// access is just another key path (servers.0.host).
func flattenTree(prefix string, v any, out map[string]any) {
	switch node := v.(type) {
	case map[string]any:
		for key, child := range node {
			flattenTree(joinKey(prefix, strings.ToLower(key)), child, out)
		}
	case map[any]any:
		// Some YAML inputs still surface interface-keyed maps.
		for key, child := range node {
			flattenTree(joinKey(prefix, strings.ToLower(fmt.Sprintf("%v", key))), child, out)
		}
	case []any:
		for i, child := range node {
			flattenTree(joinKey(prefix, strconv.Itoa(i)), child, out)
		}
	default:
		if prefix != "" {
			out[prefix] = v
		}
	}
}

func joinKey(prefix, segment string) string {
	if prefix == "" {
		return segment
	}
	return prefix + delimiter + segment
}
