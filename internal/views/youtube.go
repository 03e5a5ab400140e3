package views

import "regexp"

var youtubeID = regexp.MustCompile(`^.*((youtu.be/)|(v/)|(/u/\w/)|(embed/)|(watch\?))\??v?=?([^#&?]*).*`)

// YouTubeVideoID extracts the 11-character video id, or "" when there is none
func YouTubeVideoID(url string) string {
	m := youtubeID.FindStringSubmatch(url)
	if len(m) < 8 || len(m[7]) != 11 {
		return ""
	}
	return m[7]
}

// YouTubeEmbedURL is the iframe source for a video id
func YouTubeEmbedURL(id string) string {
	return "https://www.youtube.com/embed/" + id
}
