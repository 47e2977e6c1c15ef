// internal/config/errors.go
//
// Typed error kinds for the configuration core.
//
// Context
// -------
// Resolution distinguishes exactly two failure kinds, and binding one:
//
//   • SourceUnavailableError – a required source could not be located.
//     Optional sources that are absent never surface this; they are
//     skipped inside Resolve.
//   • SourceMalformedError   – a present source failed to parse.  The
//     required/optional flag does not soften this: "optional" governs
//     absence, not corruption.
//   • TypeMismatchError      – a resolved value would not convert to the
//     target field's type during Bind.  Fatal to that bind call only;
//     the caller decides whether to abort or fall back.
//
// All three carry the offending source or key so startup logs name the
// culprit without the caller re-deriving it.  Check with errors.As.
//
// Notes
// -----
//   • Oxford commas, two spaces after periods.

package config

import "fmt"

//
// resolution errors
//

// SourceUnavailableError reports a required source that could not be
// located at resolve time.
type SourceUnavailableError struct {
	Source string // declared source name
	Err    error  // underlying cause, may be nil for a bare miss
}

func (e *SourceUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("config: required source %q unavailable: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("config: required source %q unavailable", e.Source)
}

func (e *SourceUnavailableError) Unwrap() error { return e.Err }

// SourceMalformedError reports a source that was present but whose
// content failed to parse.  Err carries the parser's position detail
// when the parser provides one.
type SourceMalformedError struct {
	Source string
	Err    error
}

func (e *SourceMalformedError) Error() string {
	return fmt.Sprintf("config: source %q malformed: %v", e.Source, e.Err)
}

func (e *SourceMalformedError) Unwrap() error { return e.Err }

//
// binding errors
//

// TypeMismatchError reports the first key whose resolved value could not
// convert to the declared field type during Bind.  Key is the full
// space path, including the section prefix.
type TypeMismatchError struct {
	Key      string // offending config key
	Expected string // target Go type
	Err      error
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("config: key %q does not convert to %s: %v", e.Key, e.Expected, e.Err)
}

func (e *TypeMismatchError) Unwrap() error { return e.Err }
