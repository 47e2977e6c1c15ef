// internal/settings/validator.go
//
// Thin wrapper around go-playground/validator.
//
// Context
// -------
// Every settings factory calls `validateStruct` immediately after
// config.Bind fills its shape.  Any tag mismatch or validation error
// aborts startup, ensuring the binary never runs with partial,
// malformed, or missing configuration.
//
// The rules in use today are `required`, `hostname_port`, `oneof`, and
// the numeric bounds on pool and rotation sizes.  Additional custom
// rules can be registered here as the configuration surface grows.
//
// Notes
// -----
//   • Oxford commas, two spaces after periods.

package settings

import "github.com/go-playground/validator/v10"

//
// validator instance (package-level singleton)
//

var v = validator.New()

//
// package API
//

// validateStruct returns the first validation error, or nil on success.
func validateStruct(s any) error {
	return v.Struct(s)
}
