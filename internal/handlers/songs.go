// handlers/songs.go - "Moje Pesme": list, submit and delete songs
package handlers

import (
	"net/http"
	"strconv"

	"github.com/studioleflow/portal/internal/gate"
	"github.com/studioleflow/portal/internal/models"
	"github.com/studioleflow/portal/internal/mutation"
	"github.com/studioleflow/portal/internal/templates"
	"github.com/studioleflow/portal/internal/views"
)

const songsPath = "/moje-pesme"

// Songs renders the list; ?dialog=submit and ?delete={id} open the dialogs
func (h *Handler) Songs(w http.ResponseWriter, r *http.Request) {
	user, ok := h.protect(w, r, false, gate.Authenticated)
	if !ok {
		return
	}
	s := views.Songs{User: *user, Songs: h.Views.Songs(r.Context(), h.viewRequest(r))}
	q := r.URL.Query()
	s.Submit.Open = q.Get("dialog") == "submit"
	if id, err := strconv.ParseInt(q.Get("delete"), 10, 64); err == nil && id > 0 {
		s.Delete = views.DeleteDialog{Open: true, SongID: id}
	}
	h.page(w, r, http.StatusOK, "Moje Pesme", user, templates.Songs(s))
}

// SongList is the polling fragment of the list
func (h *Handler) SongList(w http.ResponseWriter, r *http.Request) {
	user, ok := h.protect(w, r, true, gate.Authenticated)
	if !ok {
		return
	}
	s := views.Songs{User: *user, Songs: h.Views.Songs(r.Context(), h.viewRequest(r))}
	h.fragment(w, r, http.StatusOK, templates.SongList(s))
}

// SubmitSong validates locally, then posts to the backend. On success the
// dialog closes by redirecting to the list; otherwise it re-opens with the input.
func (h *Handler) SubmitSong(w http.ResponseWriter, r *http.Request) {
	user, ok := h.protect(w, r, false, gate.Authenticated)
	if !ok {
		return
	}
	form, err := parseSongForm(r)
	if err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	vr := h.viewRequest(r)
	out := mutation.Run(r.Context(), h.Mut, vr.Scope, mutation.SubmitSong(h.API, vr.Session, h.Validate), form)
	if out.OK {
		seeOther(w, r, songsPath)
		return
	}
	h.rerenderSongs(w, r, user, views.SongDialog{Open: true, Form: form, Errors: out.FieldErrors})
}

func (h *Handler) rerenderSongs(w http.ResponseWriter, r *http.Request, user *models.User, dialog views.SongDialog) {
	s := views.Songs{
		User:   *user,
		Songs:  h.Views.Songs(r.Context(), h.viewRequest(r)),
		Submit: dialog,
	}
	h.page(w, r, http.StatusUnprocessableEntity, "Moje Pesme", user, templates.Songs(s))
}

// DeleteSong removes a song after confirmation. Failure is reported by toast.
func (h *Handler) DeleteSong(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.protect(w, r, false, gate.Authenticated); !ok {
		return
	}
	id, ok := idParam(r, "id")
	if !ok {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}
	vr := h.viewRequest(r)
	mutation.Run(r.Context(), h.Mut, vr.Scope, mutation.DeleteSong(h.API, vr.Session), id)
	seeOther(w, r, songsPath)
}
