// handlers/auth.go - Login, logout and the maintenance gate
package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/studioleflow/portal/internal/gate"
	"github.com/studioleflow/portal/internal/models"
	"github.com/studioleflow/portal/internal/mutation"
	"github.com/studioleflow/portal/internal/templates"
	"github.com/studioleflow/portal/internal/validation"
)

const (
	authPath        = "/auth"
	gateLoginPath   = "/maintenance/login"
	afterLoginPath  = "/dashboard"
	gateDialogParam = "admin"
)

// LoginPage renders the portal sign-in form
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err == nil && user != nil {
		seeOther(w, r, afterLoginPath)
		return
	}
	h.page(w, r, http.StatusOK, "Prijava", nil, templates.Login(templates.LoginPage{Action: authPath}))
}

// Login authenticates through the backend and relays its session cookie
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	form, err := parseLoginForm(r)
	if err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	res, out := h.runLogin(r, form, mutation.LoggedIn)
	if !out.OK {
		page := templates.LoginPage{Action: authPath, Form: validation.LoginForm{Username: form.Username}, Errors: out.FieldErrors}
		h.page(w, r, http.StatusUnprocessableEntity, "Prijava", nil, templates.Login(page))
		return
	}
	h.startSession(w, r, res)
	seeOther(w, r, afterLoginPath)
}

// Logout ends the backend session and forgets everything cached for the visitor
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	s := h.API.SessionFrom(r)
	if s.Cookie != "" {
		if err := h.API.Logout(r.Context(), s); err != nil {
			h.Log.Warn("backend logout", zap.Error(err))
		}
	}
	http.SetCookie(w, &http.Cookie{Name: h.API.CookieName(), Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	h.Cache.Forget(VisitorID(r))
	seeOther(w, r, "/")
}

// MaintenancePage is served by the gate middleware for every gated route
func (h *Handler) MaintenancePage(w http.ResponseWriter, r *http.Request) {
	p := templates.MaintenancePage{
		DialogOpen: r.URL.Query().Get("dialog") == gateDialogParam,
		Login:      templates.LoginPage{Action: gateLoginPath},
	}
	h.bare(w, r, http.StatusServiceUnavailable, "Sajt je u pripremi", templates.Maintenance(p))
}

// GateLogin bypasses the maintenance gate after a successful login.
// A failed login keeps the gate active and re-opens the dialog.
func (h *Handler) GateLogin(w http.ResponseWriter, r *http.Request) {
	form, err := parseLoginForm(r)
	if err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	res, out := h.runLogin(r, form, mutation.AdminLoggedIn)
	if !out.OK {
		p := templates.MaintenancePage{
			DialogOpen: true,
			Login: templates.LoginPage{
				Action: gateLoginPath,
				Form:   validation.LoginForm{Username: form.Username},
				Errors: out.FieldErrors,
			},
		}
		h.bare(w, r, http.StatusUnprocessableEntity, "Sajt je u pripremi", templates.Maintenance(p))
		return
	}

	if err := h.Gate.Bypass(r.Context(), VisitorID(r), &gate.Authentication{Username: res.User.Username}); err != nil {
		h.Log.Error("gate bypass", zap.Error(err))
		http.Error(w, "Greška pri prijavljivanju", http.StatusInternalServerError)
		return
	}
	h.startSession(w, r, res)
	seeOther(w, r, "/")
}

func (h *Handler) runLogin(r *http.Request, form validation.LoginForm, success *models.Toast) (*mutation.LoginResult, mutation.Outcome) {
	res := &mutation.LoginResult{}
	m := mutation.Login(h.API, h.Validate, res)
	m.Success = success
	out := mutation.Run(r.Context(), h.Mut, VisitorID(r), m, form)
	return res, out
}

// startSession relays the backend cookies and drops data cached for the previous account
func (h *Handler) startSession(w http.ResponseWriter, r *http.Request, res *mutation.LoginResult) {
	for _, c := range res.Cookies {
		http.SetCookie(w, &http.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Path:     "/",
			Expires:  c.Expires,
			MaxAge:   c.MaxAge,
			HttpOnly: true,
			Secure:   r.TLS != nil,
			SameSite: http.SameSiteLaxMode,
		})
	}
	h.Cache.Forget(VisitorID(r))
	if res.User != nil {
		h.Cache.Prime(h.userKey(r), res.User)
	}
}
