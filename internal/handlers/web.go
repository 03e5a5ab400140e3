// handlers/web.go - HTTP handlers for the client portal
package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/studioleflow/portal/internal/api"
	"github.com/studioleflow/portal/internal/gate"
	"github.com/studioleflow/portal/internal/models"
	"github.com/studioleflow/portal/internal/mutation"
	"github.com/studioleflow/portal/internal/payments"
	"github.com/studioleflow/portal/internal/querycache"
	"github.com/studioleflow/portal/internal/store"
	"github.com/studioleflow/portal/internal/templates"
	"github.com/studioleflow/portal/internal/validation"
	"github.com/studioleflow/portal/internal/views"
)

// Backend is the studio API as seen by the handlers (enables mocking)
type Backend interface {
	views.Source
	mutation.SongWriter
	mutation.MessageWriter
	mutation.Authenticator
	CurrentUser(ctx context.Context, s api.Session) (*models.User, error)
	Logout(ctx context.Context, s api.Session) error
	SessionFrom(r *http.Request) api.Session
	CookieName() string
}

// WebhookParser verifies and decodes payment provider callbacks
type WebhookParser interface {
	ParseEvent(payload []byte, signature string) (*payments.Completed, error)
}

// Options for New. Checkout and Webhooks stay nil when payments are disabled.
type Options struct {
	RenderWait time.Duration
	PublicURL  string
	Checkout   payments.Provider
	Webhooks   WebhookParser
	Logger     *zap.Logger
	Now        func() time.Time
}

// Handler holds dependencies
type Handler struct {
	API      Backend
	Cache    *querycache.Cache
	Store    store.Store
	Gate     *gate.Gate
	Views    *views.Binder
	Mut      *mutation.Dispatcher
	Validate *validation.Validator
	Checkout payments.Provider
	Webhooks WebhookParser
	Log      *zap.Logger

	publicURL string
}

// New creates a new Handler
func New(backend Backend, cache *querycache.Cache, st store.Store, g *gate.Gate, opts Options) *Handler {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Handler{
		API:   backend,
		Cache: cache,
		Store: st,
		Gate:  g,
		Views: &views.Binder{
			Cache:    cache,
			Src:      backend,
			Wait:     opts.RenderWait,
			Now:      opts.Now,
			Payments: opts.Checkout != nil,
		},
		Mut:       mutation.NewDispatcher(cache, st, opts.Logger),
		Validate:  validation.New(),
		Checkout:  opts.Checkout,
		Webhooks:  opts.Webhooks,
		Log:       opts.Logger,
		publicURL: opts.PublicURL,
	}
}

// viewRequest binds the visitor scope and backend session of r
func (h *Handler) viewRequest(r *http.Request) views.Request {
	return views.Request{Scope: VisitorID(r), Session: h.API.SessionFrom(r)}
}

func (h *Handler) userKey(r *http.Request) querycache.Key {
	return querycache.Key{Scope: VisitorID(r), Path: api.KeyUser}
}

// currentUser reads the visitor's account through the cache. Nil means anonymous.
func (h *Handler) currentUser(r *http.Request) (*models.User, error) {
	s := h.API.SessionFrom(r)
	if s.Cookie == "" {
		return nil, nil
	}
	res := querycache.Load(r.Context(), h.Cache, h.userKey(r), 0, func(ctx context.Context) (*models.User, error) {
		return h.API.CurrentUser(ctx, s)
	})
	if res.IsFailed() && !res.HasData {
		return nil, res.Err
	}
	return res.Data, nil
}

// protect resolves the user and renders the denied state when a requirement
// fails. Nothing else is read for a denied visitor.
func (h *Handler) protect(w http.ResponseWriter, r *http.Request, fragment bool, reqs ...gate.Requirement) (*models.User, bool) {
	user, err := h.currentUser(r)
	if err != nil {
		h.Log.Error("resolve user", zap.Error(err))
		http.Error(w, "Servis trenutno nije dostupan", http.StatusBadGateway)
		return nil, false
	}
	if gate.Allow(user, reqs...) {
		return user, true
	}
	denied := templates.AccessDenied(templates.Denied{NeedsVerification: user != nil})
	status := http.StatusUnauthorized
	if user != nil {
		status = http.StatusForbidden
	}
	if fragment {
		h.fragment(w, r, status, denied)
	} else {
		h.page(w, r, status, "Pristup Odbijen", user, denied)
	}
	return nil, false
}

// Home renders the public landing page
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		h.Log.Warn("resolve user", zap.Error(err))
	}
	h.page(w, r, http.StatusOK, "Početna", user, templates.Home(templates.NewHomePage()))
}

// NotFound renders the 404 page with popular links
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, http.StatusNotFound, "404 - Stranica nije pronađena", nil, templates.NotFound())
}

// Health is the liveness check
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("OK"))
}
