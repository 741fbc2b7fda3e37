package pax

import (
	"net/http"
	"os"

	"cockpit-server/internal/modules/pax/controller"
	"cockpit-server/internal/modules/pax/types"
)

func RegisterFeature(mux *http.ServeMux, staticDir string) {
	paxController := controller.NewPaxController(types.DefaultAnnouncements, os.DirFS(staticDir))
	paxController.RegisterRoutes(mux)
}
