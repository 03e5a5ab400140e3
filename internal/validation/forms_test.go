package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSongForm(t *testing.T) {
	v := New()

	valid := SongForm{SongTitle: "One More Time", ArtistName: "Daft Punk", YoutubeURL: "https://www.youtube.com/watch?v=FGBhQbmPwH8"}
	assert.Nil(t, v.Check(valid))

	short := valid
	short.SongTitle = "ab"
	errs := v.Check(short)
	assert.Equal(t, "Naslov pesme mora imati najmanje 3 karaktera", errs["songTitle"])

	long := valid
	long.SongTitle = strings.Repeat("a", 101)
	assert.Contains(t, v.Check(long)["songTitle"], "najviše 100")

	// surrounding spaces count toward the limits
	padded := valid
	padded.SongTitle = "  ab  "
	assert.Nil(t, v.Check(padded))

	// rune count, not bytes
	serbian := valid
	serbian.SongTitle = "Žić"
	assert.Nil(t, v.Check(serbian))

	notURL := valid
	notURL.YoutubeURL = "youtube"
	assert.Equal(t, "Unesite validan YouTube URL", v.Check(notURL)["youtubeUrl"])

	vimeo := valid
	vimeo.YoutubeURL = "https://vimeo.com/12345"
	assert.Equal(t, "URL mora biti sa YouTube-a", v.Check(vimeo)["youtubeUrl"])

	short2 := valid
	short2.YoutubeURL = "https://youtu.be/FGBhQbmPwH8"
	assert.Nil(t, v.Check(short2))
}

func TestLoginForm(t *testing.T) {
	v := New()
	errs := v.Check(LoginForm{Username: "ad", Password: "short"})
	assert.Len(t, errs, 2)
	assert.Contains(t, errs["username"], "najmanje 3")
	assert.Contains(t, errs["password"], "najmanje 8")

	assert.Nil(t, v.Check(LoginForm{Username: "admin", Password: "password123"}))
}

func TestMessageForm(t *testing.T) {
	v := New()
	errs := v.Check(MessageForm{ReceiverID: 0, Content: ""})
	assert.Equal(t, "Izaberite primaoca", errs["receiverId"])
	assert.Equal(t, "Poruka ne može biti prazna", errs["content"])
}
