// internal/web/router.go
//
// Demo HTTP surface.
//
// Context
// -------
// Three endpoints, all read-only views over state the configuration
// pipeline produced:
//
//   • /healthz  – liveness, plus a pool probe when a database is wired.
//   • /config   – the resolved space as a redacted key → value summary,
//     with the active environment label.  Secret-origin values never
//     leave the process.
//   • /metrics  – Prometheus registry (resolver counters included).
//
// The router takes everything through its constructor.  There is no
// ambient config lookup anywhere below main.
//
// Notes
// -----
//   • Oxford commas, two spaces after periods.

package web

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ezzy1337/Pathos/internal/config"
	"github.com/ezzy1337/Pathos/internal/database"
	"github.com/ezzy1337/Pathos/internal/settings"
)

// configView is the /config response body.
type configView struct {
	Environment string            `json:"environment"`
	Keys        map[string]string `json:"keys"`
}

// New builds the demo router.  db may be nil when the process runs
// without a database.
func New(space *config.Space, httpCfg settings.HTTP, db *sqlx.DB) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if db != nil {
			if err := database.Health(req.Context(), db); err != nil {
				zap.S().Errorw("health probe failed", "err", err)
				http.Error(w, "database unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})

	r.Get("/config", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, configView{
			Environment: space.Environment(),
			Keys:        space.Summary(),
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	var h http.Handler = r
	if httpCfg.ForceHTTPS {
		h = forceHTTPS(h)
	}
	return securityHeaders(h)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.S().Errorw("response encode failed", "err", err)
	}
}
