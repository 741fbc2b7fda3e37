package controller

import (
	"context"
	"net/http"
	"time"

	"cockpit-server/internal/maxn1"
	"cockpit-server/internal/modules/perf/service"
	"cockpit-server/internal/modules/perf/types"
)

// PerfService is the part of *service.Service the handlers use.
type PerfService interface {
	ValidatePressure(unit types.PressureUnit, text string) types.PressureReading
	Takeoff(ctx context.Context, in types.TakeoffInputs, reading types.PressureReading) (service.TakeoffResult, error)
	SetN1(ctx context.Context, n1 float64) (string, error)
	Trim(ctx context.Context, in types.TrimInputs) (service.TrimResult, error)
	FetchWeightAndCG(ctx context.Context) (service.WeightAndCG, error)
	Status() (string, time.Duration)
	RecentCalculations(ctx context.Context, kind types.Kind, limit int) ([]types.Calculation, error)
}

// MaxN1Source exposes the live max N1 value.
type MaxN1Source interface {
	Snapshot() maxn1.Snapshot
}

// Middleware wraps the action (POST) handlers, e.g. with a rate limiter.
type Middleware func(http.Handler) http.Handler

type PerfController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type perfControllerImpl struct {
	service PerfService
	maxN1   MaxN1Source
	actions Middleware
}

func NewPerfController(svc PerfService, maxN1 MaxN1Source, actions Middleware) PerfController {
	if actions == nil {
		actions = func(h http.Handler) http.Handler { return h }
	}
	return &perfControllerImpl{service: svc, maxN1: maxN1, actions: actions}
}

func (c *perfControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", c.handleRoot)
	mux.HandleFunc("GET /perf", c.handlePerfPage)

	mux.Handle("POST /perf/pressure", c.actions(http.HandlerFunc(c.handlePressure)))
	mux.Handle("POST /perf/takeoff", c.actions(http.HandlerFunc(c.handleTakeoff)))
	mux.Handle("POST /perf/takeoff/set-n1", c.actions(http.HandlerFunc(c.handleSetN1)))
	mux.Handle("POST /perf/trim", c.actions(http.HandlerFunc(c.handleTrim)))
	mux.Handle("POST /perf/trim/fetch", c.actions(http.HandlerFunc(c.handleTrimFetch)))
	mux.Handle("POST /perf/trim/manual", c.actions(http.HandlerFunc(c.handleTrimManual)))

	mux.HandleFunc("GET /perf/status", c.handleStatus)
	mux.HandleFunc("GET /perf/max-n1", c.handleMaxN1Partial)
	mux.HandleFunc("GET /perf/calculations", c.handleCalculationsPartial)

	mux.HandleFunc("GET /api/v1/max-n1", c.handleMaxN1)
	mux.HandleFunc("GET /api/v1/calculations", c.handleCalculations)
}
