package controller

import (
	"io"
	"io/fs"
	"log/slog"
	"net/http"

	"cockpit-server/internal/modules/pax/types"
	"cockpit-server/internal/modules/pax/views"
	"cockpit-server/internal/utils"
)

type PaxController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type paxControllerImpl struct {
	announcements []types.Announcement
	static        fs.FS
}

// NewPaxController serves the announcement panels. static is the tree
// mounted at /static/ and is only used to flag missing audio files.
func NewPaxController(announcements []types.Announcement, static fs.FS) PaxController {
	return &paxControllerImpl{announcements: announcements, static: static}
}

func (c *paxControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /pax", c.handlePaxPage)
	mux.HandleFunc("GET /api/v1/announcements", c.handleAnnouncements)
}

type announcementJSON struct {
	types.Announcement
	URL       string `json:"url"`
	Available bool   `json:"available"`
}

func (c *paxControllerImpl) available(a types.Announcement) bool {
	if c.static == nil {
		return true
	}
	info, err := fs.Stat(c.static, a.AudioPath())
	if err != nil {
		slog.Debug("announcement audio not found", "file", a.File, "error", err)
		return false
	}
	return !info.IsDir()
}

func (c *paxControllerImpl) handlePaxPage(w http.ResponseWriter, r *http.Request) {
	data := &views.PaxPageData{Announcements: make([]views.AnnouncementItem, 0, len(c.announcements))}
	for _, a := range c.announcements {
		data.Announcements = append(data.Announcements, views.AnnouncementItem{
			Title:   a.Title,
			URL:     a.URL(),
			Missing: !c.available(a),
		})
	}
	if err := utils.WriteHTML(w, http.StatusOK, func(out io.Writer) error {
		return views.RenderPaxPage(out, data)
	}); err != nil {
		slog.Error("pax page render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
	}
}

func (c *paxControllerImpl) handleAnnouncements(w http.ResponseWriter, r *http.Request) {
	items := make([]announcementJSON, 0, len(c.announcements))
	for _, a := range c.announcements {
		items = append(items, announcementJSON{Announcement: a, URL: a.URL(), Available: c.available(a)})
	}
	utils.WriteJSON(w, http.StatusOK, items)
}
