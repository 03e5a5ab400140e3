// gate/gate.go - Per-visitor maintenance gate backed by the session store
package gate

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// BypassStore persists bypassed visitors
type BypassStore interface {
	MarkBypassed(ctx context.Context, scope, username string) error
	IsBypassed(ctx context.Context, scope string) (bool, error)
}

// Gate decides whether a visitor sees the maintenance page
type Gate struct {
	enabled bool
	store   BypassStore
	log     *zap.Logger
	exempt  []string
}

// exemptPrefixes are reachable while the gate is active
var exemptPrefixes = []string{
	"/static/",
	"/sw.js",
	"/manifest.webmanifest",
	"/pwa/",
	"/health",
	"/metrics",
	"/webhook/stripe",
	"/maintenance/login",
}

func New(enabled bool, store BypassStore, log *zap.Logger) *Gate {
	return &Gate{enabled: enabled, store: store, log: log, exempt: exemptPrefixes}
}

func (g *Gate) Enabled() bool { return g.enabled }

// Machine loads the visitor's gate state
func (g *Gate) Machine(ctx context.Context, scope string) (*Machine, error) {
	if !g.enabled {
		return Restore(true), nil
	}
	ok, err := g.store.IsBypassed(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("load gate state: %w", err)
	}
	return Restore(ok), nil
}

// Bypass applies the transition and persists it
func (g *Gate) Bypass(ctx context.Context, scope string, auth *Authentication) error {
	m, err := g.Machine(ctx, scope)
	if err != nil {
		return err
	}
	if err := m.Bypass(auth); err != nil {
		return err
	}
	if err := g.store.MarkBypassed(ctx, scope, auth.Username); err != nil {
		return fmt.Errorf("persist gate bypass: %w", err)
	}
	g.log.Info("maintenance gate bypassed", zap.String("scope", scope), zap.String("username", auth.Username))
	return nil
}

// Exempt reports whether path is served even while the gate is active
func (g *Gate) Exempt(path string) bool {
	for _, p := range g.exempt {
		if path == p || strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// Middleware renders page instead of next while the visitor's gate is active.
// scope extracts the visitor id from the request.
func (g *Gate) Middleware(scope func(*http.Request) string, page http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !g.enabled || g.Exempt(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}
			m, err := g.Machine(r.Context(), scope(r))
			if err != nil {
				// an unreadable store keeps the site closed
				g.log.Error("gate state unavailable", zap.Error(err))
				page.ServeHTTP(w, r)
				return
			}
			if m.State() == Bypassed {
				next.ServeHTTP(w, r)
				return
			}
			page.ServeHTTP(w, r)
		})
	}
}
