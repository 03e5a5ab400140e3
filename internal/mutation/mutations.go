// mutation/mutations.go - The portal's concrete write intents
package mutation

import (
	"context"
	"net/http"

	"github.com/studioleflow/portal/internal/api"
	"github.com/studioleflow/portal/internal/models"
	"github.com/studioleflow/portal/internal/validation"
)

type SongWriter interface {
	SubmitSong(ctx context.Context, s api.Session, song models.NewSong) (*models.UserSong, error)
	DeleteSong(ctx context.Context, s api.Session, id int64) error
}

type MessageWriter interface {
	SendMessage(ctx context.Context, s api.Session, msg models.NewMessage) (*models.Message, error)
}

func SubmitSong(w SongWriter, s api.Session, v *validation.Validator) Mutation[validation.SongForm] {
	return Mutation[validation.SongForm]{
		Name:     "submit_song",
		Validate: func(f validation.SongForm) validation.FieldErrors { return v.Check(f) },
		Do: func(ctx context.Context, f validation.SongForm) error {
			_, err := w.SubmitSong(ctx, s, models.NewSong{
				SongTitle:  f.SongTitle,
				ArtistName: f.ArtistName,
				YoutubeURL: f.YoutubeURL,
			})
			return err
		},
		Invalidates: []string{api.KeySongs},
		Success:     SongSubmitted,
		Failure:     SongSubmitFailure,
	}
}

func DeleteSong(w SongWriter, s api.Session) Mutation[int64] {
	return Mutation[int64]{
		Name: "delete_song",
		Do: func(ctx context.Context, id int64) error {
			return w.DeleteSong(ctx, s, id)
		},
		Invalidates: []string{api.KeySongs},
		Success:     SongDeleted,
		Failure:     SongDeleteFailure,
	}
}

// SendMessage refreshes the thread, the conversation list and the unread count
func SendMessage(w MessageWriter, s api.Session, v *validation.Validator, receiverID int64) Mutation[validation.MessageForm] {
	return Mutation[validation.MessageForm]{
		Name:     "send_message",
		Validate: func(f validation.MessageForm) validation.FieldErrors { return v.Check(f) },
		Do: func(ctx context.Context, f validation.MessageForm) error {
			_, err := w.SendMessage(ctx, s, models.NewMessage{ReceiverID: f.ReceiverID, Content: f.Content})
			return err
		},
		Invalidates: []string{api.KeyConversation(receiverID), api.KeyConversations, api.KeyOverview},
		Failure:     MessageFailure,
	}
}

type Authenticator interface {
	Login(ctx context.Context, creds models.Credentials) (*models.User, []*http.Cookie, error)
}

// LoginResult receives the authenticated user and the cookies to relay
type LoginResult struct {
	User    *models.User
	Cookies []*http.Cookie
}

// Login authenticates through the backend; the caller owns gate and scope changes
func Login(a Authenticator, v *validation.Validator, out *LoginResult) Mutation[validation.LoginForm] {
	return Mutation[validation.LoginForm]{
		Name:     "login",
		Validate: func(f validation.LoginForm) validation.FieldErrors { return v.Check(f) },
		Do: func(ctx context.Context, f validation.LoginForm) error {
			u, cookies, err := a.Login(ctx, models.Credentials{Username: f.Username, Password: f.Password})
			if err != nil {
				return err
			}
			out.User, out.Cookies = u, cookies
			return nil
		},
		Invalidates: []string{api.KeyUser},
		Success:     AdminLoggedIn,
		Failure:     LoginFailure,
	}
}
