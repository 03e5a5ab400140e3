// handlers/dashboard.go - Client dashboard
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/studioleflow/portal/internal/gate"
	"github.com/studioleflow/portal/internal/mutation"
	"github.com/studioleflow/portal/internal/templates"
	"github.com/studioleflow/portal/internal/views"
)

// Dashboard renders overview, projects, contracts and invoices
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user, ok := h.protect(w, r, false, gate.Authenticated)
	if !ok {
		return
	}
	if r.URL.Query().Get("payment") == "success" {
		h.notify(r, mutation.PaymentDone)
	}
	d, err := h.Views.Dashboard(r.Context(), h.viewRequest(r), *user)
	if err != nil {
		h.Log.Debug("dashboard abandoned", zap.Error(err))
		return
	}
	h.page(w, r, http.StatusOK, "Dashboard", user, templates.Dashboard(d))
}

// DashboardSection re-renders one section while it loads or after a retry
func (h *Handler) DashboardSection(w http.ResponseWriter, r *http.Request) {
	user, ok := h.protect(w, r, true, gate.Authenticated)
	if !ok {
		return
	}
	name := chi.URLParam(r, "name")
	vr := h.viewRequest(r)
	d := views.Dashboard{User: *user}
	switch name {
	case "overview":
		d.Overview = h.Views.Overview(r.Context(), vr)
	case "projects":
		d.Projects = h.Views.Projects(r.Context(), vr)
	case "contracts":
		d.Contracts = h.Views.Contracts(r.Context(), vr)
	case "invoices":
		d.Invoices = h.Views.Invoices(r.Context(), vr)
	default:
		http.NotFound(w, r)
		return
	}
	h.fragment(w, r, http.StatusOK, templates.DashboardSection(name, d))
}
