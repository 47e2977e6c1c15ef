// internal/config/environment.go
//
// Environment-name selection and root discovery.
//
// Context
// -------
// The active environment decides which overlay file the resolver loads
// and labels the resolved Space.  Selection happens once at process
// start:
//
//  1. `conf/.env` under the project root is loaded into the process
//     environment if present (developer-only override, never deployed).
//  2. PATHOS_ENV wins if set.
//  3. Otherwise the name defaults to "Development".
//
// Names are opaque strings, not an enum; a new deployment tier needs a
// new overlay file, not a code change.
//
// Notes
// -----
//   • rootDir climbs the cwd tree until it finds conf/app.yaml, so
//     `go run ./cmd/web` works from any sub-directory.
//   • Oxford commas, two spaces after periods.

package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const (
	// EnvVarName selects the active environment.
	EnvVarName = "PATHOS_ENV"

	// DefaultEnvironment applies when nothing selects one.
	DefaultEnvironment = "Development"

	baseFileName = "app.yaml"
)

// FindRoot resolves PATHOS_ROOT or climbs directories until conf/app.yaml
// is found.  Falls back to the executable heuristic for production
// layouts, then to the cwd.
func FindRoot() string {
	if r := os.Getenv("PATHOS_ROOT"); r != "" {
		return r
	}

	wd, _ := os.Getwd()
	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, "conf", baseFileName)); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir { // reached filesystem root
			break
		}
		dir = parent
	}

	exe, _ := os.Executable()
	if filepath.Base(filepath.Dir(exe)) == "bin" {
		return filepath.Dir(filepath.Dir(exe))
	}
	return wd
}

// DetectEnvironment loads the optional conf/.env override file under
// root, then returns PATHOS_ENV or the default.  Values already present
// in the process environment win over the file, matching godotenv's
// no-overwrite behavior.
func DetectEnvironment(root string) string {
	_ = godotenv.Load(filepath.Join(root, "conf", ".env"))

	if e := os.Getenv(EnvVarName); e != "" {
		zap.S().Debugw("environment selected", "environment", e, "via", EnvVarName)
		return e
	}
	zap.S().Debugw("environment defaulted", "environment", DefaultEnvironment)
	return DefaultEnvironment
}
