// internal/secrets/secrets.go
//
// Vault-backed secret store for the configuration resolver.
//
// Context
// -------
//   - Wraps the HashiCorp Vault Go SDK behind config.SecretLoader so the
//     resolver stays SDK-free.
//   - Each application owns one KV‑v2 location keyed by an opaque
//     application identifier; the whole secret tree loads in one read and
//     merges like any other source.
//   - Background token renewal keeps long-lived processes authenticated.
//
// Public workflow
// ---------------
//  1. cli, err := secrets.New(ctx, log.Printf)          // during boot.
//  2. src := config.Secret("vault", cli.Loader("secret", appID), false)
//  3. config.Resolve(ctx, sources, env)                 // reads it once.
//
// Values fetched here are the security boundary: they are handed to the
// resolver and never logged or written back out by this package.
//
// Build tags: none.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	vault "github.com/hashicorp/vault/api"
)

//
// SECTION 1.  Public façade
//

// Client is safe for concurrent use.  Create once at startup and pass
// it into the source declaration.  Zero value is invalid.
type Client struct {
	api   *vault.Client
	logFn func(string, ...any)
}

// New constructs a Vault client and starts a background token‑renewal loop.
//
// Environment expectations
// ------------------------
// • VAULT_ADDR   – scheme and host of the Vault server.
// • VAULT_TOKEN  – initial token (falls back to ~/.vault‑token).
func New(ctx context.Context, logFn func(string, ...any)) (*Client, error) {
	if logFn == nil {
		logFn = func(string, ...any) {}
	}

	cfg := vault.DefaultConfig()
	if err := cfg.ReadEnvironment(); err != nil {
		return nil, fmt.Errorf("vault env cfg: %w", err)
	}

	apiCli, err := vault.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vault api: %w", err)
	}

	if tok := os.Getenv("VAULT_TOKEN"); tok != "" {
		apiCli.SetToken(tok)
	}

	c := &Client{api: apiCli, logFn: logFn}

	go c.renewLoop(ctx)

	return c, nil
}

// AppSecrets fetches the full KV‑v2 secret tree stored for one
// application.  secretPath is "<mount>/<application id>".  A missing
// location returns an error wrapping vault's ErrSecretNotFound, which
// the resolver maps onto availability semantics.
func (c *Client) AppSecrets(ctx context.Context, secretPath string) (map[string]any, error) {
	if secretPath == "" {
		return nil, errors.New("secret path must be non‑empty")
	}

	mount, rel := splitMount(secretPath)
	sec, err := c.api.KVv2(mount).Get(ctx, rel)
	if err != nil {
		return nil, fmt.Errorf("vault get %s: %w", secretPath, err)
	}
	if sec == nil || sec.Data == nil {
		return nil, fmt.Errorf("vault get %s: %w", secretPath, vault.ErrSecretNotFound)
	}

	return sec.Data, nil
}

// Loader binds the client to one application's location and satisfies
// config.SecretLoader.
func (c *Client) Loader(mount, appID string) *Loader {
	return &Loader{cli: c, path: mount + "/" + appID}
}

// Loader is a config.SecretLoader for a single KV‑v2 location.
type Loader struct {
	cli  *Client
	path string
}

// Load fetches the secret tree.  Called once per Resolve.
func (l *Loader) Load(ctx context.Context) (map[string]any, error) {
	return l.cli.AppSecrets(ctx, l.path)
}

//
// SECTION 2.  Background token renewal
//

func (c *Client) renewLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		// Probe the current token.
		sec, err := c.api.Auth().Token().RenewSelf(0)
		if err != nil {
			c.logFn("vault: token renew self failed: %v", err)
			backoff(ctx, 30*time.Second)
			continue
		}

		if sec == nil || !sec.Auth.Renewable {
			c.logFn("vault: token is not renewable – sleeping 1h")
			backoff(ctx, time.Hour)
			continue
		}

		renewer, err := c.api.NewRenewer(&vault.RenewerInput{
			Secret: sec,
			Grace:  15 * time.Second,
		})
		if err != nil {
			c.logFn("vault: renewer init error: %v", err)
			backoff(ctx, 30*time.Second)
			continue
		}

		go renewer.Renew()

		for {
			select {
			case <-ctx.Done():
				renewer.Stop()
				return
			case err := <-renewer.DoneCh():
				renewer.Stop()
				if err != nil {
					c.logFn("vault: token renewal stopped: %v", err)
				}
				backoff(ctx, 15*time.Second)
				goto probe
			case ev := <-renewer.RenewCh():
				if ev != nil && ev.Secret != nil && ev.Secret.Auth != nil {
					c.logFn("vault: token renewed, ttl=%ds", ev.Secret.Auth.LeaseDuration)
				}
			}
		}
	probe:
	}
}

//
// SECTION 3.  Helpers
//

func splitMount(p string) (mount, rel string) {
	if p == "" {
		return "", ""
	}
	parts := strings.SplitN(p, "/", 2)
	mount = parts[0]
	if len(parts) == 2 {
		rel = parts[1]
	}
	return
}

func backoff(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
