package views

import (
	"errors"
	"html/template"
	"io"
	"io/fs"
)

var paxTmpl *template.Template

func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	paxTmpl, err = template.ParseFS(sub, "*.html")
	if err != nil {
		return err
	}
	return nil
}

// LoadTemplates loads the embedded PAX templates.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

type AnnouncementItem struct {
	Title string
	URL   string
	// Missing is set when the audio file is not present in the static dir.
	Missing bool
}

type PaxPageData struct {
	Announcements []AnnouncementItem
}

func RenderPaxPage(w io.Writer, data *PaxPageData) error {
	if paxTmpl == nil {
		return errors.New("pax template not loaded: call views.LoadTemplates during startup")
	}
	return paxTmpl.ExecuteTemplate(w, "pax.html", data)
}
