package perf

import (
	"database/sql"
	"log/slog"
	"net/http"

	"cockpit-server/internal/modules/perf/controller"
	"cockpit-server/internal/modules/perf/pressure"
	"cockpit-server/internal/modules/perf/repository"
	"cockpit-server/internal/modules/perf/service"
	"cockpit-server/internal/modules/perf/status"
	"cockpit-server/internal/perfapi"
)

// RegisterFeature wires the performance calculators onto mux. The returned
// board must be closed on shutdown.
func RegisterFeature(
	mux *http.ServeMux,
	db *sql.DB,
	api perfapi.API,
	events service.EventPublisher,
	maxN1 controller.MaxN1Source,
	validator pressure.Validator,
	actions controller.Middleware,
) *status.Board {
	board := status.NewBoard()
	perfRepository := repository.NewRepository(db)
	perfService := service.NewService(api, perfRepository, events, board, validator, slog.Default().With("module", "perf"))
	perfController := controller.NewPerfController(perfService, maxN1, actions)
	perfController.RegisterRoutes(mux)
	return board
}
