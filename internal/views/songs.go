// views/songs.go - Derived state for the "Moje Pesme" page
package views

import (
	"context"

	"github.com/studioleflow/portal/internal/api"
	"github.com/studioleflow/portal/internal/models"
	"github.com/studioleflow/portal/internal/querycache"
	"github.com/studioleflow/portal/internal/validation"
)

type SongRow struct {
	models.UserSong
	SubmittedOn string
	VideoID     string
	EmbedURL    string
}

// ValidVideo is false when the URL has no recognisable id; the row then shows a warning
func (r SongRow) ValidVideo() bool { return r.VideoID != "" }

func SongRows(songs []models.UserSong) []SongRow {
	rows := make([]SongRow, 0, len(songs))
	for _, s := range songs {
		row := SongRow{UserSong: s, SubmittedOn: FormatDateTime(s.SubmittedAt)}
		if id := YouTubeVideoID(s.YoutubeURL); id != "" {
			row.VideoID = id
			row.EmbedURL = YouTubeEmbedURL(id)
		}
		rows = append(rows, row)
	}
	return rows
}

// SongDialog is the submit dialog state
type SongDialog struct {
	Open   bool
	Form   validation.SongForm
	Errors validation.FieldErrors
}

// DeleteDialog asks for confirmation before deleting SongID
type DeleteDialog struct {
	Open   bool
	SongID int64
}

type Songs struct {
	User   models.User
	Songs  querycache.Result[[]SongRow]
	Submit SongDialog
	Delete DeleteDialog
}

func (b *Binder) Songs(ctx context.Context, r Request) querycache.Result[[]SongRow] {
	res := querycache.LoadList(ctx, b.Cache, r.key(api.KeySongs), b.Wait,
		func(ctx context.Context) ([]models.UserSong, error) { return b.Src.Songs(ctx, r.Session) })
	return querycache.Map(res, SongRows)
}
