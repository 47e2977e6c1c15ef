// internal/settings/settings.go
//
// Typed settings shapes for the demo web process.
//
// Context
// -------
// Each consumer of configuration owns one shape here, bound from its
// own section of the resolved space by an explicit factory.  There is
// no container magic and no ambient global: main calls a factory, the
// factory calls config.Bind, and the result travels to the consumer's
// constructor as an ordinary argument.
//
// Defaults live on the struct before binding, so a section that is
// entirely absent yields a usable value.  Validation runs after
// binding; a shape that fails validation aborts startup.
//
// Notes
// -----
//   • Field names match config keys case-insensitively.  The one rename
//     (Database.DSN ← global_dsn) goes through an explicit field map,
//     not a struct tag.
//   • Oxford commas, two spaces after periods.

package settings

import (
	"time"

	"github.com/ezzy1337/Pathos/internal/config"
)

//
// HTTP section
//

// HTTP holds web-server tunables, bound from the "http" section.
type HTTP struct {
	ListenAddr   string `validate:"required,hostname_port"`
	ForceHTTPS   bool
	ReadTimeout  time.Duration `validate:"gt=0"`
	WriteTimeout time.Duration `validate:"gt=0"`
	IdleTimeout  time.Duration `validate:"gt=0"`
}

// NewHTTP binds the "http" section over production-hardened defaults.
func NewHTTP(space *config.Space) (HTTP, error) {
	h := HTTP{
		ListenAddr:   ":8080",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	if err := config.Bind(space, "http", &h); err != nil {
		return HTTP{}, err
	}
	if err := validateStruct(&h); err != nil {
		return HTTP{}, err
	}
	return h, nil
}

//
// Database section
//

// Database holds the connection template and pool sizes.
//
// The DSN *template* lives in YAML so operators can tweak host, port,
// or flags without touching Vault.  The *password* is stored in Vault
// under the same section and overrides the placeholder at resolve
// time, keeping credentials out of flat files and git history.
type Database struct {
	DSN      string
	Password string
	MaxOpen  int `validate:"gte=0"`
	MaxIdle  int `validate:"gte=0"`
}

// NewDatabase binds the "database" section.  The key global_dsn maps
// onto DSN through an explicit field map.
func NewDatabase(space *config.Space) (Database, error) {
	d := Database{MaxOpen: 15, MaxIdle: 5}
	err := config.Bind(space, "database", &d,
		config.WithFieldMap(map[string]string{
			"DSN":      "global_dsn",
			"Password": "global_password",
		}))
	if err != nil {
		return Database{}, err
	}
	if err := validateStruct(&d); err != nil {
		return Database{}, err
	}
	return d, nil
}

// Enabled reports whether the demo should open a pool at all.  A blank
// DSN means the process runs without a database.
func (d Database) Enabled() bool { return d.DSN != "" }

//
// Log section
//

// Log holds logger sink tunables, bound from the "log" section.
type Log struct {
	Dir        string
	Level      string `validate:"omitempty,oneof=debug info warn error"`
	MaxSizeMB  int    `validate:"gte=0"`
	MaxBackups int    `validate:"gte=0"`
	MaxAgeDays int    `validate:"gte=0"`
	Compress   bool
}

// NewLog binds the "log" section over the house rotation defaults
// (50 MB files, seven backups, two weeks).
func NewLog(space *config.Space) (Log, error) {
	l := Log{
		Dir:        "logs",
		Level:      "info",
		MaxSizeMB:  50,
		MaxBackups: 7,
		MaxAgeDays: 14,
		Compress:   true,
	}
	if err := config.Bind(space, "log", &l); err != nil {
		return Log{}, err
	}
	if err := validateStruct(&l); err != nil {
		return Log{}, err
	}
	return l, nil
}
