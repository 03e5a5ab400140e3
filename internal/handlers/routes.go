// handlers/routes.go - Router setup
package handlers

import (
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/studioleflow/portal/internal/imagebatch"
	"github.com/studioleflow/portal/internal/pwa"
)

// RouterOptions locate the files served next to the handlers
type RouterOptions struct {
	StaticDir string
	// AssetRoot is the directory the image presets write under
	AssetRoot string
}

// Router wires middleware and routes
func (h *Handler) Router(opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(h.Log))
	r.Use(middleware.Recoverer)
	r.Use(Visitor)
	r.Use(h.Gate.Middleware(VisitorID, http.HandlerFunc(h.MaintenancePage)))

	// Static files
	fs := http.FileServer(http.Dir(opts.StaticDir))
	r.Handle("/static/*", http.StripPrefix("/static/", fs))
	for _, p := range []imagebatch.Preset{imagebatch.Equipment, imagebatch.Services} {
		prefix := p.URL(imagebatch.Item{}) + "/"
		dir := http.Dir(filepath.Join(opts.AssetRoot, p.OutputDir))
		r.Handle(prefix+"*", http.StripPrefix(prefix, http.FileServer(dir)))
	}
	r.Get("/sw.js", ServiceWorker(opts.StaticDir))
	r.Get("/manifest.webmanifest", Manifest(opts.StaticDir))
	r.Post(pwa.DismissPath, h.DismissInstallPrompt)

	// Public
	r.Get("/", h.Home)
	r.Get("/auth", h.LoginPage)
	r.Post("/auth", h.Login)
	r.Post("/logout", h.Logout)
	r.Post("/maintenance/login", h.GateLogin)

	// Portal
	r.Get("/dashboard", h.Dashboard)
	r.Get("/dashboard/sections/{name}", h.DashboardSection)
	r.Get("/moje-pesme", h.Songs)
	r.Get("/moje-pesme/list", h.SongList)
	r.Post("/moje-pesme", h.SubmitSong)
	r.Post("/moje-pesme/{id}/delete", h.DeleteSong)
	r.Get("/inbox", h.Inbox)
	r.Get("/inbox/list", h.ConversationList)
	r.Get("/inbox/{userID}", h.Inbox)
	r.Get("/inbox/{userID}/messages", h.Messages)
	r.Post("/inbox/{userID}", h.SendMessage)

	// Payments
	if h.Checkout != nil {
		r.Post("/invoices/{id}/pay", h.PayInvoice)
	}
	if h.Webhooks != nil {
		r.Post("/webhook/stripe", h.StripeWebhook)
	}

	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())
	r.NotFound(h.NotFound)
	return r
}
