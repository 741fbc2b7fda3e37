package views

import (
	"bytes"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"cockpit-server/internal/modules/perf/types"
)

func ptr(v float64) *float64 { return &v }

func loadOrFail(t *testing.T) {
	t.Helper()
	if err := LoadTemplates(); err != nil {
		t.Fatalf("LoadTemplates(): %v", err)
	}
}

func defaultPage() *PerfPageData {
	return &PerfPageData{
		Takeoff: TakeoffFormData{
			Elevation:   "0",
			AssumedTemp: "0",
			OAT:         "0",
			Derate:      types.DerateTO,
			Bleeds:      types.BleedsOn,
			Derates:     types.Derates,
			Pressure: PressureData{
				Unit:  types.UnitInHG,
				Text:  "29.92",
				Valid: true,
				Units: types.PressureUnits,
			},
		},
		Trim:  TrimInputsData{Weight: "0", CG: "0"},
		MaxN1: MaxN1Data{MaxN1: 104},
	}
}

func TestLoadTemplates_success(t *testing.T) {
	if err := LoadTemplates(); err != nil {
		t.Fatalf("LoadTemplates() = %v; want nil", err)
	}
	if perfTmpl == nil {
		t.Fatal("LoadTemplates() left perfTmpl nil")
	}
}

func TestLoadTemplates_failure_sub(t *testing.T) {
	if err := loadTemplatesFromFS(fstest.MapFS{}, "templates"); err == nil {
		t.Fatal(`loadTemplatesFromFS(emptyFS, "templates") = nil; want error`)
	}
}

func TestLoadTemplates_failure_parse(t *testing.T) {
	badFS := fstest.MapFS{
		"templates/base.html":           {Data: []byte("{{ .")},
		"templates/partials/error.html": {Data: []byte(`{{define "partials/error.html"}}x{{end}}`)},
	}
	if err := loadTemplatesFromFS(badFS, "templates"); err == nil {
		t.Fatal(`loadTemplatesFromFS(badFS, "templates") = nil; want error`)
	}
}

func TestRender_notLoaded(t *testing.T) {
	prev := perfTmpl
	perfTmpl = nil
	t.Cleanup(func() { perfTmpl = prev })

	var buf bytes.Buffer
	err := RenderPerfPage(&buf, defaultPage())
	if err == nil {
		t.Fatal("RenderPerfPage() = nil; want error when templates not loaded")
	}
	if !strings.Contains(err.Error(), "not loaded") {
		t.Errorf("err = %q; want message containing \"not loaded\"", err.Error())
	}
}

func TestRenderPerfPage_defaults(t *testing.T) {
	loadOrFail(t)

	var buf bytes.Buffer
	if err := RenderPerfPage(&buf, defaultPage()); err != nil {
		t.Fatalf("RenderPerfPage() = %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"<!DOCTYPE html>",
		"Takeoff N1 Calculator",
		"Trim Setting Calculator",
		`value="29.92"`,
		`<option value="inHG" selected>`,
		`<option value="TO" selected>`,
		`<option value="On" selected>`,
		"Max N1: 104",
		`hx-trigger="every 1s"`,
		"No calculations yet.",
		`href="/pax"`,
		"readonly",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if strings.Contains(out, "Set N1") {
		t.Error("Set N1 offered before any N1 result")
	}
	if strings.Contains(out, "Invalid pressure setting.") {
		t.Error("valid default pressure rendered as invalid")
	}
}

func TestRenderPressurePartial(t *testing.T) {
	loadOrFail(t)

	var buf bytes.Buffer
	err := RenderPressurePartial(&buf, &PressureData{Unit: types.UnitInHG, Text: "2992", Valid: false, Message: "Invalid pressure setting."})
	if err != nil {
		t.Fatalf("RenderPressurePartial() = %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Invalid pressure setting.") || !strings.Contains(out, "invalid") {
		t.Errorf("invalid feedback missing; got %q", out)
	}
	if !strings.Contains(out, `name="prev_unit" value="inHG"`) {
		t.Errorf("prev_unit missing; got %q", out)
	}

	buf.Reset()
	if err := RenderPressurePartial(&buf, &PressureData{Unit: types.UnitHPa, Text: "10132", Valid: true, Message: "Invalid pressure setting."}); err != nil {
		t.Fatalf("RenderPressurePartial() = %v", err)
	}
	if strings.Contains(buf.String(), "Invalid pressure setting.") {
		t.Errorf("valid reading rendered as invalid: %q", buf.String())
	}
}

func TestRenderN1ResultPartial(t *testing.T) {
	loadOrFail(t)

	var buf bytes.Buffer
	if err := RenderN1ResultPartial(&buf, &N1ResultData{N1: ptr(95.3)}); err != nil {
		t.Fatalf("RenderN1ResultPartial() = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"N1: 95.3%", "Set N1", `value="95.3"`, `id="status"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q; got %q", want, out)
		}
	}

	buf.Reset()
	if err := RenderN1ResultPartial(&buf, &N1ResultData{}); err != nil {
		t.Fatalf("RenderN1ResultPartial(empty) = %v", err)
	}
	if strings.Contains(buf.String(), "Set N1") {
		t.Errorf("Set N1 offered without a result: %q", buf.String())
	}
}

func TestRenderStatusPartial(t *testing.T) {
	loadOrFail(t)

	var buf bytes.Buffer
	if err := RenderStatusPartial(&buf, &StatusData{Message: "Success", RefreshIn: time.Second}); err != nil {
		t.Fatalf("RenderStatusPartial() = %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Success") || !strings.Contains(out, `hx-trigger="load delay:1000ms"`) {
		t.Errorf("status partial = %q; want message and 1000ms refresh", out)
	}

	buf.Reset()
	if err := RenderStatusPartial(&buf, &StatusData{}); err != nil {
		t.Fatalf("RenderStatusPartial(empty) = %v", err)
	}
	if strings.Contains(buf.String(), "hx-get") {
		t.Errorf("empty status schedules a refresh: %q", buf.String())
	}
}

func TestRenderTrimPartials(t *testing.T) {
	loadOrFail(t)

	var buf bytes.Buffer
	if err := RenderTrimInputsPartial(&buf, &TrimInputsData{Weight: "61500", CG: "22.5", Manual: true}); err != nil {
		t.Fatalf("RenderTrimInputsPartial() = %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "readonly") {
		t.Errorf("manual inputs rendered readonly: %q", out)
	}
	if !strings.Contains(out, `value="61500"`) || !strings.Contains(out, "checked") {
		t.Errorf("trim inputs = %q", out)
	}

	buf.Reset()
	if err := RenderTrimResultPartial(&buf, &TrimResultData{Trim: ptr(5.25)}); err != nil {
		t.Fatalf("RenderTrimResultPartial() = %v", err)
	}
	if !strings.Contains(buf.String(), "Trim Setting: 5.25 units") {
		t.Errorf("trim result = %q", buf.String())
	}
}

func TestRenderCalculationsPartial(t *testing.T) {
	loadOrFail(t)

	var buf bytes.Buffer
	err := RenderCalculationsPartial(&buf, &CalculationsData{Items: []types.Calculation{
		{ID: 1, Kind: types.KindTakeoff, Derate: types.DerateTO1, Result: ptr(94.8), Message: "Success", CreatedAt: time.Now()},
		{ID: 2, Kind: types.KindSetN1, Message: "No X-Plane Instance Found", CreatedAt: time.Now()},
	}})
	if err != nil {
		t.Fatalf("RenderCalculationsPartial() = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"takeoff", "TO-1", "94.8", "set_n1", "No X-Plane Instance Found"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestRenderErrorPartial_escapes(t *testing.T) {
	loadOrFail(t)

	var buf bytes.Buffer
	if err := RenderErrorPartial(&buf, &ErrorData{Message: "<script>x</script>"}); err != nil {
		t.Fatalf("RenderErrorPartial() = %v", err)
	}
	if strings.Contains(buf.String(), "<script>") {
		t.Errorf("message not escaped: %q", buf.String())
	}
}

func TestRenderErrorsClear(t *testing.T) {
	loadOrFail(t)

	var buf bytes.Buffer
	if err := RenderErrorsClear(&buf); err != nil {
		t.Fatalf("RenderErrorsClear() = %v", err)
	}
	got := strings.TrimSpace(buf.String())
	if want := `<div id="errors" aria-live="polite" hx-swap-oob="true"></div>`; got != want {
		t.Errorf("got = %q; want %q", got, want)
	}

	buf.Reset()
	if err := RenderPerfPage(&buf, defaultPage()); err != nil {
		t.Fatalf("RenderPerfPage() = %v", err)
	}
	if strings.Contains(buf.String(), "hx-swap-oob") {
		t.Error("full page carries an out-of-band errors reset")
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{in: 30, want: "30"},
		{in: 95.3, want: "95.3"},
		{in: 0.25, want: "0.25"},
		{in: -5, want: "-5"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.in); got != tt.want {
			t.Errorf("FormatNumber(%v) = %q; want %q", tt.in, got, tt.want)
		}
	}
}
