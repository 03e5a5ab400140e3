// handlers/forms.go - Form parsing helpers
package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/studioleflow/portal/internal/validation"
)

// parseSongForm extracts the submit-song fields as typed; the limits count surrounding spaces
func parseSongForm(r *http.Request) (validation.SongForm, error) {
	if err := r.ParseForm(); err != nil {
		return validation.SongForm{}, err
	}
	return validation.SongForm{
		SongTitle:  r.FormValue("songTitle"),
		ArtistName: r.FormValue("artistName"),
		YoutubeURL: r.FormValue("youtubeUrl"),
	}, nil
}

func parseLoginForm(r *http.Request) (validation.LoginForm, error) {
	if err := r.ParseForm(); err != nil {
		return validation.LoginForm{}, err
	}
	return validation.LoginForm{
		Username: r.FormValue("username"),
		Password: r.FormValue("password"),
	}, nil
}

func parseMessageForm(r *http.Request, receiverID int64) (validation.MessageForm, error) {
	if err := r.ParseForm(); err != nil {
		return validation.MessageForm{}, err
	}
	return validation.MessageForm{
		ReceiverID: receiverID,
		Content:    r.FormValue("content"),
	}, nil
}

// idParam reads a positive integer route parameter
func idParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
