package controller

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"cockpit-server/internal/modules/perf/types"
	"cockpit-server/internal/modules/perf/views"
	"cockpit-server/internal/perfapi"
	"cockpit-server/internal/utils"
)

func (c *perfControllerImpl) handleRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/perf", http.StatusFound)
}

func (c *perfControllerImpl) handlePerfPage(w http.ResponseWriter, r *http.Request) {
	calcs, err := c.service.RecentCalculations(r.Context(), "", pageCalculationsLimit)
	if err != nil {
		slog.Error("perf page: list calculations failed", "error", err)
	}
	msg, left := c.service.Status()
	snap := c.maxN1.Snapshot()

	reading := c.service.ValidatePressure(types.UnitInHG, defaultPressureText)
	data := &views.PerfPageData{
		Takeoff:      defaultTakeoffForm(reading),
		Trim:         views.TrimInputsData{Weight: "0", CG: "0"},
		MaxN1:        views.MaxN1Data{MaxN1: snap.MaxN1, Connected: snap.Connected},
		Status:       views.StatusData{Message: msg, RefreshIn: left},
		Calculations: views.CalculationsData{Items: calcs},
	}
	if err := utils.WriteHTML(w, http.StatusOK, func(out io.Writer) error {
		return views.RenderPerfPage(out, data)
	}); err != nil {
		slog.Error("perf page render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
	}
}

func (c *perfControllerImpl) handlePressure(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		c.renderError(w, http.StatusBadRequest, "invalid form")
		return
	}
	reading := c.service.ValidatePressure(parseUnit(r), r.FormValue("pressure"))
	data := pressureData(reading)
	c.renderPartial(w, http.StatusOK, "pressure", func(out io.Writer) error {
		return views.RenderPressurePartial(out, &data)
	})
}

func (c *perfControllerImpl) handleTakeoff(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		c.renderError(w, http.StatusBadRequest, "invalid form")
		return
	}
	in, err := parseTakeoffForm(r)
	if err != nil {
		c.renderError(w, http.StatusBadRequest, err.Error())
		return
	}
	reading := c.service.ValidatePressure(parseUnit(r), r.FormValue("pressure"))

	res, err := c.service.Takeoff(r.Context(), in, reading)
	if err != nil {
		c.renderServiceError(w, r, "takeoff", err)
		return
	}

	msg, left := c.service.Status()
	data := &views.N1ResultData{N1: res.N1, Status: views.StatusData{Message: msg, RefreshIn: left}}
	w.Header().Set("HX-Trigger", calculationRecordedEvent)
	c.renderPartial(w, http.StatusOK, "n1 result", clearingErrors(func(out io.Writer) error {
		return views.RenderN1ResultPartial(out, data)
	}))
}

func (c *perfControllerImpl) handleSetN1(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		c.renderError(w, http.StatusBadRequest, "invalid form")
		return
	}
	if r.FormValue("n1") == "" {
		c.renderError(w, http.StatusBadRequest, "missing 'n1'")
		return
	}
	n1, err := parseNumber(r, "n1")
	if err != nil {
		c.renderError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := c.service.SetN1(r.Context(), n1); err != nil {
		c.renderServiceError(w, r, "set n1", err)
		return
	}

	w.Header().Set("HX-Trigger", calculationRecordedEvent)
	c.writeStatus(w, true)
}

func (c *perfControllerImpl) handleStatus(w http.ResponseWriter, r *http.Request) {
	c.writeStatus(w, false)
}

func (c *perfControllerImpl) writeStatus(w http.ResponseWriter, clearErrors bool) {
	msg, left := c.service.Status()
	data := &views.StatusData{Message: msg, RefreshIn: left}
	render := func(out io.Writer) error {
		return views.RenderStatusPartial(out, data)
	}
	if clearErrors {
		render = clearingErrors(render)
	}
	c.renderPartial(w, http.StatusOK, "status", render)
}

func (c *perfControllerImpl) handleTrim(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		c.renderError(w, http.StatusBadRequest, "invalid form")
		return
	}
	in, err := parseTrimForm(r)
	if err != nil {
		c.renderError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := c.service.Trim(r.Context(), in)
	if err != nil {
		c.renderServiceError(w, r, "trim", err)
		return
	}
	w.Header().Set("HX-Trigger", calculationRecordedEvent)
	if !res.Accepted {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	data := &views.TrimResultData{Trim: res.Trim}
	c.renderPartial(w, http.StatusOK, "trim result", clearingErrors(func(out io.Writer) error {
		return views.RenderTrimResultPartial(out, data)
	}))
}

func (c *perfControllerImpl) handleTrimFetch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		c.renderError(w, http.StatusBadRequest, "invalid form")
		return
	}
	data := &views.TrimInputsData{
		Weight: r.FormValue("weight"),
		CG:     r.FormValue("cg"),
		Manual: r.FormValue("manual") == "on",
	}

	vals, err := c.service.FetchWeightAndCG(r.Context())
	if err != nil {
		c.renderServiceError(w, r, "fetch weight and cg", err)
		return
	}
	if vals.Weight != nil {
		data.Weight = views.FormatNumber(*vals.Weight)
	}
	if vals.CG != nil {
		data.CG = views.FormatNumber(*vals.CG)
	}
	if vals.Weight == nil || vals.CG == nil {
		data.Notice = "Simulator did not report weight and CG."
	}

	c.renderPartial(w, http.StatusOK, "trim inputs", clearingErrors(func(out io.Writer) error {
		return views.RenderTrimInputsPartial(out, data)
	}))
}

func (c *perfControllerImpl) handleTrimManual(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		c.renderError(w, http.StatusBadRequest, "invalid form")
		return
	}
	data := &views.TrimInputsData{
		Weight: r.FormValue("weight"),
		CG:     r.FormValue("cg"),
		Manual: r.FormValue("manual") == "on",
	}
	c.renderPartial(w, http.StatusOK, "trim inputs", func(out io.Writer) error {
		return views.RenderTrimInputsPartial(out, data)
	})
}

func (c *perfControllerImpl) handleMaxN1Partial(w http.ResponseWriter, r *http.Request) {
	snap := c.maxN1.Snapshot()
	data := &views.MaxN1Data{MaxN1: snap.MaxN1, Connected: snap.Connected}
	c.renderPartial(w, http.StatusOK, "max n1", func(out io.Writer) error {
		return views.RenderMaxN1Partial(out, data)
	})
}

func (c *perfControllerImpl) handleCalculationsPartial(w http.ResponseWriter, r *http.Request) {
	calcs, err := c.service.RecentCalculations(r.Context(), "", pageCalculationsLimit)
	if err != nil {
		slog.Error("calculations partial: list failed", "error", err)
		c.renderError(w, http.StatusInternalServerError, "failed to load calculations")
		return
	}
	data := &views.CalculationsData{Items: calcs}
	c.renderPartial(w, http.StatusOK, "calculations", func(out io.Writer) error {
		return views.RenderCalculationsPartial(out, data)
	})
}

func (c *perfControllerImpl) handleMaxN1(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, c.maxN1.Snapshot())
}

func (c *perfControllerImpl) handleCalculations(w http.ResponseWriter, r *http.Request) {
	kind, limit, err := parseCalculationsQuery(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	calcs, err := c.service.RecentCalculations(r.Context(), kind, limit)
	if err != nil {
		slog.Error("list calculations failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load calculations")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"kind":  kind,
		"limit": limit,
		"items": calcs,
	})
}

func (c *perfControllerImpl) renderPartial(w http.ResponseWriter, status int, name string, render func(io.Writer) error) {
	if err := utils.WriteHTML(w, status, render); err != nil {
		slog.Error("partial render failed", "partial", name, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render")
	}
}

// clearingErrors appends the out-of-band reset of the page error area, so a
// successful action removes the message a failed one left behind.
func clearingErrors(render func(io.Writer) error) func(io.Writer) error {
	return func(out io.Writer) error {
		if err := render(out); err != nil {
			return err
		}
		return views.RenderErrorsClear(out)
	}
}

// renderError answers an HTMX action with the error partial, retargeted to
// the page error area.
func (c *perfControllerImpl) renderError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("HX-Retarget", "#errors")
	w.Header().Set("HX-Reswap", "innerHTML")
	c.renderPartial(w, status, "error", func(out io.Writer) error {
		return views.RenderErrorPartial(out, &views.ErrorData{Message: msg})
	})
}

func (c *perfControllerImpl) renderServiceError(w http.ResponseWriter, r *http.Request, action string, err error) {
	if errors.Is(err, context.Canceled) && r.Context().Err() != nil {
		slog.Debug("request cancelled", "action", action)
		return
	}
	slog.Error("performance service call failed", "action", action, "error", err)

	msg := "Performance service unavailable."
	var se *perfapi.StatusError
	if errors.As(err, &se) {
		msg = "Performance service error (" + http.StatusText(se.StatusCode) + ")."
	}
	c.renderError(w, http.StatusBadGateway, msg)
}
