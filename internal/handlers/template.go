// handlers/template.go - Rendering helpers
package handlers

import (
	"bytes"
	"net/http"

	"github.com/a-h/templ"
	"go.uber.org/zap"

	"github.com/studioleflow/portal/internal/models"
	"github.com/studioleflow/portal/internal/pwa"
	"github.com/studioleflow/portal/internal/templates"
)

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// htmx only swaps 2xx responses, so error pages go out as 200 to it
func statusFor(r *http.Request, status int) int {
	if isHTMX(r) && status >= 400 {
		return http.StatusOK
	}
	return status
}

// page renders body inside the layout with the visitor's queued toasts
func (h *Handler) page(w http.ResponseWriter, r *http.Request, status int, title string, user *models.User, body templ.Component) {
	h.write(w, r, status, templates.Layout(h.shell(r, title, user), body))
}

// bare renders body inside the layout without navigation
func (h *Handler) bare(w http.ResponseWriter, r *http.Request, status int, title string, body templ.Component) {
	shell := h.shell(r, title, nil)
	shell.Bare = true
	h.write(w, r, status, templates.Layout(shell, body))
}

// fragment renders a component without the layout
func (h *Handler) fragment(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	h.write(w, r, status, c)
}

func (h *Handler) shell(r *http.Request, title string, user *models.User) templates.Shell {
	toasts, err := h.Store.PopToasts(r.Context(), VisitorID(r))
	if err != nil {
		h.Log.Warn("pop toasts", zap.Error(err))
	}
	return templates.Shell{
		Title:  title,
		Path:   r.URL.Path,
		User:   user,
		Toasts: toasts,
		PWA:    pwa.ForRequest(r, h.Views.Now()),
	}
}

func (h *Handler) write(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	var buf bytes.Buffer
	if err := c.Render(r.Context(), &buf); err != nil {
		h.Log.Error("render", zap.String("path", r.URL.Path), zap.Error(err))
		http.Error(w, "Greška pri prikazu stranice", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusFor(r, status))
	buf.WriteTo(w)
}

// seeOther finishes a mutation with POST-redirect-GET
func seeOther(w http.ResponseWriter, r *http.Request, url string) {
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// notify queues a toast for the visitor's next page
func (h *Handler) notify(r *http.Request, t models.Toast) {
	if err := h.Store.PushToast(r.Context(), VisitorID(r), t); err != nil {
		h.Log.Warn("queue toast", zap.Error(err))
	}
}
