// validation/forms.go - Form schemas checked before any mutation reaches the backend
package validation

import (
	"errors"
	"reflect"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var youtubeHost = regexp.MustCompile(`^https?://(www\.)?(youtube\.com|youtu\.be)/`)

// FieldErrors maps a form field name to its message
type FieldErrors map[string]string

// SongForm is the submit-song schema
type SongForm struct {
	SongTitle  string `form:"songTitle" validate:"min=3,max=100"`
	ArtistName string `form:"artistName" validate:"min=2,max=100"`
	YoutubeURL string `form:"youtubeUrl" validate:"url,youtube"`
}

// LoginForm is the admin login schema of the maintenance gate
type LoginForm struct {
	Username string `form:"username" validate:"min=3"`
	Password string `form:"password" validate:"min=8"`
}

// MessageForm is the send-message schema
type MessageForm struct {
	ReceiverID int64  `form:"receiverId" validate:"gt=0"`
	Content    string `form:"content" validate:"min=1,max=2000"`
}

// messages are keyed by "Form.Field.tag"
var messages = map[string]string{
	"SongForm.SongTitle.min":      "Naslov pesme mora imati najmanje 3 karaktera",
	"SongForm.SongTitle.max":      "Naslov pesme može imati najviše 100 karaktera",
	"SongForm.ArtistName.min":     "Ime izvođača mora imati najmanje 2 karaktera",
	"SongForm.ArtistName.max":     "Ime izvođača može imati najviše 100 karaktera",
	"SongForm.YoutubeURL.url":     "Unesite validan YouTube URL",
	"SongForm.YoutubeURL.youtube": "URL mora biti sa YouTube-a",
	"LoginForm.Username.min":      "Korisničko ime mora imati najmanje 3 karaktera",
	"LoginForm.Password.min":      "Lozinka mora imati najmanje 8 karaktera",
	"MessageForm.ReceiverID.gt":   "Izaberite primaoca",
	"MessageForm.Content.min":     "Poruka ne može biti prazna",
	"MessageForm.Content.max":     "Poruka može imati najviše 2000 karaktera",
}

// Validator wraps a configured validator.Validate
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("form"); name != "" {
			return name
		}
		return f.Name
	})
	_ = v.RegisterValidation("youtube", func(fl validator.FieldLevel) bool {
		return youtubeHost.MatchString(fl.Field().String())
	})
	return &Validator{v: v}
}

// Check validates a form struct and returns nil when it passes
func (val *Validator) Check(form any) FieldErrors {
	err := val.v.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{"": err.Error()}
	}

	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if _, seen := out[field]; seen {
			continue
		}
		// StructNamespace is "SongForm.SongTitle"
		key := fe.StructNamespace() + "." + fe.Tag()
		msg, ok := messages[key]
		if !ok {
			msg = "Neispravna vrednost"
		}
		out[field] = msg
	}
	return out
}
