package types

import "path"

// Announcement is one cabin announcement with an audio file under
// /static/audio/.
type Announcement struct {
	Title string `json:"title"`
	File  string `json:"file"`
}

// DefaultAnnouncements is the stock PAX panel.
var DefaultAnnouncements = []Announcement{
	{Title: "737 KQA Safety Announcement", File: "737kqasafety.mp3"},
	{Title: "787 KQA Safety Announcement", File: "787kqasafety.mp3"},
}

// AudioPath is the file's location relative to the static directory.
func (a Announcement) AudioPath() string {
	return path.Join("audio", a.File)
}

// URL is where the browser fetches the audio.
func (a Announcement) URL() string {
	return "/static/" + a.AudioPath()
}
