// internal/config/binder.go
//
// Typed binder.
//
/*
Context
--------
`Bind()` materializes a typed settings struct from a subsection of the
Space.  The general case is section-scoped (`Bind(space, "http", &h)`);
passing an empty section binds the whole space for shapes whose fields
live at the root.

Semantics
---------
  • Fields match config keys by name: case-insensitive, underscores and
    hyphens ignored, so listen_addr finds ListenAddr.  Renames beyond
    that are explicit: WithFieldMap supplies a field-name → key table.
    There is no struct-tag renaming to hunt for.
  • Absent keys leave fields untouched, so callers pre-fill defaults on
    the struct and bind over them.  Binding never fails on a missing
    key.
  • Keys with no matching field are dropped silently, which lets old
    binaries read new config files.
  • The one failure mode is conversion: a value that will not convert to
    the declared field type raises *TypeMismatchError naming the key.
  • The result is a snapshot.  The raw subsection is deep-copied before
    decoding, so mutating the bound struct never reaches the Space or a
    previously bound instance.

Weak typing is deliberate: environment variables arrive as strings, so
"8080" binds to an int field and "true" to a bool.  Durations accept Go
syntax ("15s").  Arrays that the resolver index-flattened fold back
into slices.

Notes
-----
  • Oxford commas, two spaces after periods.
*/
package config

import (
	"errors"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	kmaps "github.com/knadh/koanf/maps"

	"github.com/ezzy1337/Pathos/internal/metrics"
)

/*──────────────────────────── options ──────────────────────────────────────*/

// BindOption adjusts one Bind call.
type BindOption func(*bindOptions)

type bindOptions struct {
	fieldMap map[string]string
}

// WithFieldMap supplies explicit renames: struct field name (dotted for
// nested fields) → config key relative to the bound section.  Fields
// not listed keep name-based matching.
func WithFieldMap(m map[string]string) BindOption {
	return func(o *bindOptions) { o.fieldMap = m }
}

/*──────────────────────────── bind ─────────────────────────────────────────*/

// Bind populates target, a pointer to a settings struct, from the
// subsection of space rooted at section.  Empty section binds the whole
// space.
func Bind(space *Space, section string, target any, opts ...BindOption) error {
	var o bindOptions
	for _, opt := range opts {
		opt(&o)
	}

	sec := NormalizeKey(section)

	// Raw() deep-copies, so the decode below cannot alias the space.
	var raw map[string]any
	if sec == "" {
		raw = space.k.Raw()
	} else {
		raw = space.k.Cut(sec).Raw()
	}

	if len(o.fieldMap) > 0 {
		raw = applyFieldMap(raw, o.fieldMap)
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
		MatchName:        matchName,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			indexedSliceHook(),
			mapstructure.StringToTimeDurationHookFunc(),
		),
	})
	if err != nil {
		return err
	}

	if err := dec.Decode(raw); err != nil {
		metrics.ConfigBindErrorTotal.Inc()
		return asTypeMismatch(sec, err)
	}
	return nil
}

// applyFieldMap moves mapped keys onto their field names so the decoder
// finds them by plain name matching.  Operates on the flattened view so
// both sides may be dotted paths.
func applyFieldMap(raw map[string]any, fieldMap map[string]string) map[string]any {
	flat, _ := kmaps.Flatten(raw, nil, delimiter)
	for field, key := range fieldMap {
		k := NormalizeKey(key)
		if v, ok := flat[k]; ok {
			delete(flat, k)
			flat[NormalizeKey(field)] = v
		}
	}
	return kmaps.Unflatten(flat, delimiter)
}

// matchName pairs config keys with struct fields: case-insensitive,
// with "_" and "-" ignored, so listen_addr finds ListenAddr without a
// tag or a field-map entry.
func matchName(mapKey, fieldName string) bool {
	strip := func(s string) string {
		s = strings.ReplaceAll(s, "_", "")
		return strings.ReplaceAll(s, "-", "")
	}
	return strings.EqualFold(strip(mapKey), strip(fieldName))
}

/*──────────────────────────── decode hooks ─────────────────────────────────*/

// indexedSliceHook folds the resolver's numeric-index maps back into
// ordered slices when the target field is a slice ({"0": "a", "1": "b"}
// → ["a", "b"]).  Non-numeric keys leave the value untouched.
func indexedSliceHook() mapstructure.DecodeHookFuncType {
	return func(from, to reflect.Type, data any) (any, error) {
		if from.Kind() != reflect.Map || to.Kind() != reflect.Slice {
			return data, nil
		}
		m, ok := data.(map[string]any)
		if !ok || len(m) == 0 {
			return data, nil
		}

		type elem struct {
			idx int
			val any
		}
		elems := make([]elem, 0, len(m))
		for k, v := range m {
			n, err := strconv.Atoi(k)
			if err != nil {
				return data, nil
			}
			elems = append(elems, elem{idx: n, val: v})
		}
		sort.Slice(elems, func(i, j int) bool { return elems[i].idx < elems[j].idx })

		out := make([]any, 0, len(elems))
		for _, e := range elems {
			out = append(out, e.val)
		}
		return out, nil
	}
}

/*──────────────────────────── error translation ────────────────────────────*/

// asTypeMismatch rewrites a mapstructure decode failure into a
// *TypeMismatchError carrying the full space key.  The decoder reports
// field paths, which match key paths after lowercasing since binding is
// name-based.
func asTypeMismatch(section string, err error) error {
	// Multiple failures arrive joined as "N error(s) decoding:\n\n* ...";
	// the first entry identifies the bind failure we report.
	msg := err.Error()
	if _, rest, ok := strings.Cut(msg, "* "); ok {
		msg, _, _ = strings.Cut(rest, "\n")
	}

	key, expected := parseDecodeFailure(msg)
	if key == "" {
		key = section
	} else if section != "" {
		key = section + delimiter + key
	}
	if expected == "" {
		expected = "target field type"
	}
	return &TypeMismatchError{Key: key, Expected: expected, Err: errors.New(msg)}
}

// parseDecodeFailure extracts the field path and target type from the
// two message shapes mapstructure produces:
//
//	cannot parse 'Port' as int: strconv.ParseInt: ...
//	'Port' expected type 'int', got unconvertible type 'string', ...
func parseDecodeFailure(msg string) (key, expected string) {
	const cannotParse = "cannot parse '"
	if rest, ok := strings.CutPrefix(msg, cannotParse); ok {
		if name, tail, ok := strings.Cut(rest, "'"); ok {
			key = NormalizeKey(name)
			if _, typ, ok := strings.Cut(tail, " as "); ok {
				expected, _, _ = strings.Cut(typ, ":")
			}
		}
		return key, expected
	}

	if rest, ok := strings.CutPrefix(msg, "'"); ok {
		if name, tail, ok := strings.Cut(rest, "'"); ok {
			key = NormalizeKey(name)
			if _, typ, ok := strings.Cut(tail, "expected type '"); ok {
				expected, _, _ = strings.Cut(typ, "'")
			}
		}
	}
	return key, expected
}
