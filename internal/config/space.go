// internal/config/space.go
//
// Unified key space.
//
// Context
// -------
// Space is the single merged view produced by Resolve.  It is built
// once at startup and never mutated afterwards, which makes every
// method safe for unsynchronized concurrent reads.  There is no reload
// hook here: callers wanting hot reload resolve a fresh Space and swap
// a pointer themselves.
//
// Keys are stored lowercased with "." delimiters.  Lookups normalize the
// caller's key first, so `Db:ConnectionString`, `db.connectionstring`,
// and `DB:CONNECTIONSTRING` all address the same leaf.
//
// Secret-origin keys are tracked by name.  Summary() is the only bulk
// view the package offers, and it redacts those values; nothing here
// serializes the raw space back out.

package config

import (
	"fmt"
	"strings"

	koanf "github.com/knadh/koanf/v2"
)

// redacted replaces secret-origin values in Summary output.
const redacted = "[redacted]"

// Space is the immutable, process-wide configuration view.  Construct
// via Resolve; the zero value is not usable.
type Space struct {
	env    string
	k      *koanf.Koanf
	origin map[string]string
	secret map[string]struct{}
}

// NormalizeKey maps a caller-supplied key onto storage form: lowercase,
// ":" folded to ".".
func NormalizeKey(key string) string {
	return strings.ToLower(strings.ReplaceAll(key, ":", delimiter))
}

// Environment returns the opaque environment label the space was
// resolved for ("Development", "Staging", or whatever the deployment
// chose).
func (s *Space) Environment() string { return s.env }

// Get returns the effective value for key, or nil when the key is not
// defined by any source.  Interior paths return the nested subtree.
func (s *Space) Get(key string) any { return s.k.Get(NormalizeKey(key)) }

// Has reports whether any source defined key.
func (s *Space) Has(key string) bool { return s.k.Exists(NormalizeKey(key)) }

// Keys returns every leaf key path, sorted.
func (s *Space) Keys() []string { return s.k.Keys() }

// Len returns the number of leaf keys.
func (s *Space) Len() int { return len(s.origin) }

// Origin names the source whose value won key, or "" for an undefined
// key.  Useful when a startup log needs to say where a value came from
// without echoing the value itself.
func (s *Space) Origin(key string) string { return s.origin[NormalizeKey(key)] }

// IsSecret reports whether key's effective value came from a secret
// store source.
func (s *Space) IsSecret(key string) bool {
	_, ok := s.secret[NormalizeKey(key)]
	return ok
}

// Summary returns every leaf key mapped to its rendered value, with
// secret-origin values redacted.  Intended for diagnostics endpoints
// and boot logs.
func (s *Space) Summary() map[string]string {
	out := make(map[string]string, len(s.origin))
	for _, key := range s.k.Keys() {
		if s.IsSecret(key) {
			out[key] = redacted
			continue
		}
		out[key] = fmt.Sprintf("%v", s.k.Get(key))
	}
	return out
}
