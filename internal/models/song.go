package models

import "time"

// UserSong is a YouTube song shared by a client. Approval only changes the badge.
type UserSong struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"userId"`
	SongTitle   string    `json:"songTitle"`
	ArtistName  string    `json:"artistName"`
	YoutubeURL  string    `json:"youtubeUrl"`
	SubmittedAt time.Time `json:"submittedAt"`
	Approved    bool      `json:"approved"`
}

// NewSong is the submit-song payload
type NewSong struct {
	SongTitle  string `json:"songTitle"`
	ArtistName string `json:"artistName"`
	YoutubeURL string `json:"youtubeUrl"`
}
