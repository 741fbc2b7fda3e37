package controller

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"cockpit-server/internal/modules/perf/pressure"
	"cockpit-server/internal/modules/perf/types"
	"cockpit-server/internal/modules/perf/views"
)

const (
	pageCalculationsLimit    = 10
	defaultCalculationsLimit = 20
	maxCalculationsLimit     = 100

	defaultPressureText = "29.92"

	// calculationRecordedEvent is sent as HX-Trigger so the recent
	// calculations table refreshes itself.
	calculationRecordedEvent = "calculation-recorded"
)

// parseNumber reads an optional numeric form field; blank means zero, like
// the browser's Number("").
func parseNumber(r *http.Request, field string) (float64, error) {
	s := strings.TrimSpace(r.FormValue(field))
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid '%s' (expected number)", field)
	}
	return v, nil
}

func parseDerate(r *http.Request) (types.Derate, error) {
	d, ok := types.ParseDerate(r.FormValue("derate"))
	if !ok {
		return "", errors.New("invalid 'derate' (allowed: TO, TO-1, TO-2)")
	}
	return d, nil
}

// parseUnit returns the submitted unit. An unknown unit leaves the previous
// one in place, falling back to inHG.
func parseUnit(r *http.Request) types.PressureUnit {
	if u, ok := types.ParsePressureUnit(r.FormValue("unit")); ok {
		return u
	}
	if u, ok := types.ParsePressureUnit(r.FormValue("prev_unit")); ok {
		return u
	}
	return types.UnitInHG
}

func parseTakeoffForm(r *http.Request) (types.TakeoffInputs, error) {
	var (
		in  types.TakeoffInputs
		err error
	)
	if in.PressureAltitude, err = parseNumber(r, "elevation"); err != nil {
		return in, err
	}
	if in.AssumedTemp, err = parseNumber(r, "assumed_temp"); err != nil {
		return in, err
	}
	if in.OAT, err = parseNumber(r, "oat"); err != nil {
		return in, err
	}
	if in.Derate, err = parseDerate(r); err != nil {
		return in, err
	}
	in.Bleeds = r.FormValue("bleeds") == types.BleedsOn
	return in, nil
}

func parseTrimForm(r *http.Request) (types.TrimInputs, error) {
	var (
		in  types.TrimInputs
		err error
	)
	if in.Weight, err = parseNumber(r, "weight"); err != nil {
		return in, err
	}
	if in.CG, err = parseNumber(r, "cg"); err != nil {
		return in, err
	}
	if in.Derate, err = parseDerate(r); err != nil {
		return in, err
	}
	return in, nil
}

func parseCalculationsQuery(r *http.Request) (kind types.Kind, limit int, err error) {
	q := r.URL.Query()

	switch k := types.Kind(q.Get("kind")); k {
	case "", types.KindTakeoff, types.KindTrim, types.KindSetN1:
		kind = k
	default:
		return "", 0, errors.New("invalid 'kind' (allowed: takeoff, trim, set_n1)")
	}

	limit = defaultCalculationsLimit
	if s := q.Get("limit"); s != "" {
		n, convErr := strconv.Atoi(s)
		if convErr != nil {
			return "", 0, errors.New("invalid 'limit' (expected integer)")
		}
		if n <= 0 {
			return "", 0, errors.New("'limit' must be > 0")
		}
		if n > maxCalculationsLimit {
			return "", 0, fmt.Errorf("'limit' must be <= %d", maxCalculationsLimit)
		}
		limit = n
	}
	return kind, limit, nil
}

func pressureData(reading types.PressureReading) views.PressureData {
	return views.PressureData{
		Unit:    reading.Unit,
		Text:    reading.Text,
		Valid:   reading.Valid,
		Message: pressure.InvalidMessage,
		Units:   types.PressureUnits,
	}
}

func defaultTakeoffForm(reading types.PressureReading) views.TakeoffFormData {
	return views.TakeoffFormData{
		Elevation:   "0",
		AssumedTemp: "0",
		OAT:         "0",
		Derate:      types.DerateTO,
		Bleeds:      types.BleedsOn,
		Pressure:    pressureData(reading),
		Derates:     types.Derates,
	}
}
