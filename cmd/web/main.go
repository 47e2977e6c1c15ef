// cmd/web/main.go
//
// Pathos – demo web entry point.
//
// Startup life-cycle
// ------------------
//
//  1. Discover the project root and the active environment name
//     (PATHOS_ENV, with conf/.env as the developer override).
//
//  2. Declare the source chain: base file → environment overlay →
//     PATHOS_-prefixed variables → Vault secrets.  Later sources win,
//     key by key.
//
//  3. Resolve once into an immutable space.  Any resolution error
//     aborts here; a process with incomplete configuration must not
//     serve requests.
//
//  4. Bind per-consumer settings through explicit factories and hand
//     them to collaborator constructors: logger, optional DB pool,
//     HTTP server.  No DI container, no ambient lookups.
//
//  5. Serve /healthz, /config, and /metrics until SIGINT or SIGTERM,
//     then drain connections and exit.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"

	"github.com/ezzy1337/Pathos/internal/config"
	"github.com/ezzy1337/Pathos/internal/database"
	"github.com/ezzy1337/Pathos/internal/logger"
	"github.com/ezzy1337/Pathos/internal/secrets"
	"github.com/ezzy1337/Pathos/internal/server"
	"github.com/ezzy1337/Pathos/internal/settings"
	"github.com/ezzy1337/Pathos/internal/web"
)

const shutdownGrace = 10 * time.Second

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func main() {
	root := config.FindRoot()
	envName := config.DetectEnvironment(root)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//
	// ── 1.  Source chain ────────────────────────────────────────────────
	//
	sources := []config.Source{
		config.File("base file", filepath.Join(root, "conf", "app.yaml"), true),
		config.File("environment overlay", filepath.Join(root, "conf", "app.{env}.yaml"), false),
		config.Env("process environment", "PATHOS_"),
	}

	if os.Getenv("VAULT_ADDR") != "" {
		cli, err := secrets.New(ctx, log.Printf)
		if err != nil {
			log.Fatalf("vault client: %v", err)
		}
		appID := os.Getenv("PATHOS_APP_ID")
		if appID == "" {
			appID = "pathos"
		}
		required := os.Getenv("PATHOS_VAULT_REQUIRED") == "true"
		sources = append(sources,
			config.Secret("vault secrets", cli.Loader("secret", appID), required))
	}

	//
	// ── 2.  Resolve once, before anything serves ────────────────────────
	//
	space, err := config.Resolve(ctx, sources, envName)
	if err != nil {
		log.Fatalf("resolve config: %v", err)
	}

	//
	// ── 3.  Bind settings and build collaborators ───────────────────────
	//
	httpCfg, err := settings.NewHTTP(space)
	if err != nil {
		log.Fatalf("bind http settings: %v", err)
	}
	logCfg, err := settings.NewLog(space)
	if err != nil {
		log.Fatalf("bind log settings: %v", err)
	}
	dbCfg, err := settings.NewDatabase(space)
	if err != nil {
		log.Fatalf("bind database settings: %v", err)
	}

	logOut, err := logger.New(root, logCfg, runningInTTY())
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}
	logOut.Infow("config online",
		"environment", space.Environment(),
		"keys", space.Len(),
		"listen_addr", httpCfg.ListenAddr,
	)

	var db *sqlx.DB
	if dbCfg.Enabled() {
		db, err = database.Open(dbCfg)
		if err != nil {
			logOut.Fatalw("connect database", "err", err)
		}
		defer db.Close()
		logOut.Infow("database online",
			"dsn_origin", space.Origin("database:global_dsn"),
			"max_open", dbCfg.MaxOpen,
		)
	}

	//
	// ── 4.  Serve until signalled ───────────────────────────────────────
	//
	srv := server.New(httpCfg, web.New(space, httpCfg, db))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logOut.Infow("http listening", "addr", srv.Addr, "force_https", httpCfg.ForceHTTPS)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		drain, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return srv.Shutdown(drain)
	})

	if err := g.Wait(); err != nil {
		logOut.Fatalw("server stopped", "err", err)
	}
	logOut.Infow("shutdown complete")
}
