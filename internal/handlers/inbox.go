// handlers/inbox.go - Private messaging
package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/studioleflow/portal/internal/gate"
	"github.com/studioleflow/portal/internal/mutation"
	"github.com/studioleflow/portal/internal/templates"
)

var inboxAccess = []gate.Requirement{gate.Authenticated, gate.Verified}

// Inbox renders the conversation list and, under /inbox/{userID}, one thread
func (h *Handler) Inbox(w http.ResponseWriter, r *http.Request) {
	user, ok := h.protect(w, r, false, inboxAccess...)
	if !ok {
		return
	}
	var selected int64
	if chi.URLParam(r, "userID") != "" {
		if selected, ok = idParam(r, "userID"); !ok {
			h.NotFound(w, r)
			return
		}
	}
	in := h.Views.Inbox(r.Context(), h.viewRequest(r), *user, selected)
	h.page(w, r, http.StatusOK, "Poruke", user, templates.Inbox(in))
}

// ConversationList is the polling fragment of the list
func (h *Handler) ConversationList(w http.ResponseWriter, r *http.Request) {
	user, ok := h.protect(w, r, true, inboxAccess...)
	if !ok {
		return
	}
	in := h.Views.Inbox(r.Context(), h.viewRequest(r), *user, 0)
	h.fragment(w, r, http.StatusOK, templates.Conversations(in))
}

// Messages is the polling fragment of one thread
func (h *Handler) Messages(w http.ResponseWriter, r *http.Request) {
	user, ok := h.protect(w, r, true, inboxAccess...)
	if !ok {
		return
	}
	with, ok := idParam(r, "userID")
	if !ok {
		http.NotFound(w, r)
		return
	}
	in := h.Views.Inbox(r.Context(), h.viewRequest(r), *user, with)
	h.fragment(w, r, http.StatusOK, templates.Messages(in))
}

// SendMessage posts to the thread and refreshes it
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	user, ok := h.protect(w, r, false, inboxAccess...)
	if !ok {
		return
	}
	to, ok := idParam(r, "userID")
	if !ok {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}
	form, err := parseMessageForm(r, to)
	if err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	vr := h.viewRequest(r)
	out := mutation.Run(r.Context(), h.Mut, vr.Scope, mutation.SendMessage(h.API, vr.Session, h.Validate, to), form)
	if out.OK {
		seeOther(w, r, "/inbox/"+strconv.FormatInt(to, 10))
		return
	}

	in := h.Views.Inbox(r.Context(), vr, *user, to)
	if in.Thread != nil {
		in.Thread.Draft = form
		in.Thread.Errors = out.FieldErrors
	}
	h.page(w, r, http.StatusUnprocessableEntity, "Poruke", user, templates.Inbox(in))
}
