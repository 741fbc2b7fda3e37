package types

import "testing"

func TestAnnouncement_URL(t *testing.T) {
	a := Announcement{Title: "737 KQA Safety Announcement", File: "737kqasafety.mp3"}
	if got := a.AudioPath(); got != "audio/737kqasafety.mp3" {
		t.Errorf("AudioPath() = %q; want audio/737kqasafety.mp3", got)
	}
	if got := a.URL(); got != "/static/audio/737kqasafety.mp3" {
		t.Errorf("URL() = %q; want /static/audio/737kqasafety.mp3", got)
	}
}

func TestDefaultAnnouncements(t *testing.T) {
	if len(DefaultAnnouncements) != 2 {
		t.Fatalf("len = %d; want 2", len(DefaultAnnouncements))
	}
	for _, a := range DefaultAnnouncements {
		if a.Title == "" || a.File == "" {
			t.Errorf("incomplete announcement %+v", a)
		}
	}
}
