// internal/web/middleware.go
//
// Small, composable HTTP wrappers for the demo surface.

package web

import (
	"net/http"
	"strings"
)

// forceHTTPS issues a 308 Permanent Redirect to the HTTPS version of
// the same URL for plain-HTTP requests.  Localhost is exempt so local
// development keeps working with the production overlay active.
func forceHTTPS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.TLS != nil || stripPort(r.Host) == "localhost" {
			next.ServeHTTP(w, r)
			return
		}
		target := "https://" + r.Host + r.URL.RequestURI()
		http.Redirect(w, r, target, http.StatusPermanentRedirect)
	})
}

// securityHeaders sets conservative defaults on every response without
// overwriting a value a handler already chose.
func securityHeaders(next http.Handler) http.Handler {
	const (
		hsts  = "max-age=63072000; includeSubDomains"
		nosn  = "nosniff"
		xfo   = "DENY"
		refer = "strict-origin-when-cross-origin"
	)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)

		h := w.Header()
		if h.Get("Strict-Transport-Security") == "" {
			h.Add("Strict-Transport-Security", hsts)
		}
		if h.Get("X-Content-Type-Options") == "" {
			h.Add("X-Content-Type-Options", nosn)
		}
		if h.Get("X-Frame-Options") == "" {
			h.Add("X-Frame-Options", xfo)
		}
		if h.Get("Referrer-Policy") == "" {
			h.Add("Referrer-Policy", refer)
		}
	})
}

// stripPort removes the :port suffix from Host when present.
func stripPort(h string) string {
	if i := strings.IndexByte(h, ':'); i != -1 {
		return h[:i]
	}
	return h
}
