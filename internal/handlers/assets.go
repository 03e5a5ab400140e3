// handlers/assets.go - Static files, service worker and web app manifest
package handlers

import (
	"net/http"
	"path/filepath"

	"github.com/studioleflow/portal/internal/pwa"
)

// ServiceWorker serves sw.js from the site root so it can control scope "/"
func ServiceWorker(staticDir string) http.HandlerFunc {
	path := filepath.Join(staticDir, "sw.js")
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Service-Worker-Allowed", pwa.WorkerScope)
		http.ServeFile(w, r, path)
	}
}

// Manifest serves the web app manifest
func Manifest(staticDir string) http.HandlerFunc {
	path := filepath.Join(staticDir, "manifest.webmanifest")
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/manifest+json")
		http.ServeFile(w, r, path)
	}
}

// DismissInstallPrompt remembers that the visitor closed the install prompt
func (h *Handler) DismissInstallPrompt(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, pwa.DismissCookie(h.Views.Now(), r.TLS != nil))
	w.WriteHeader(http.StatusNoContent)
}
