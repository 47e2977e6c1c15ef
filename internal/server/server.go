// internal/server/server.go
//
// HTTP server helper with robust timeouts.
//
// Production hardening recommends:
//
//   • ReadTimeout   – abort slow-loris headers
//   • WriteTimeout  – cap total response time
//   • IdleTimeout   – close keep-alives on idle clients
//
// All three come from the bound HTTP settings, so an overlay file or a
// PATHOS_HTTP__* variable can retune a deployment without a rebuild.
//

package server

import (
	"net/http"

	"github.com/ezzy1337/Pathos/internal/settings"
)

// New constructs an *http.Server from bound settings.
func New(cfg settings.HTTP, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
		// TLSConfig may be injected by callers (e.g., autocert).
	}
}
