package views

import (
	"errors"
	"html/template"
	"io"
	"io/fs"
	"strconv"
	"time"

	"cockpit-server/internal/modules/perf/types"
)

var perfTmpl *template.Template

var errNotLoaded = errors.New("perf templates not loaded: call views.LoadTemplates during startup")

var funcs = template.FuncMap{
	"num": FormatNumber,
	"numPtr": func(v *float64) string {
		if v == nil {
			return ""
		}
		return FormatNumber(*v)
	},
	"ms": func(d time.Duration) int64 { return d.Milliseconds() },
	"ts": func(t time.Time) string { return t.Local().Format("15:04:05") },
}

// FormatNumber prints v with the fewest digits that round-trip, the way the
// browser prints numbers (95.3, 30, 0.25).
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// loadTemplatesFromFS loads perf templates from the given fs and dir.
// Used by LoadTemplates and by tests to simulate failure scenarios.
func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	tmpl, err := template.New("perf").Funcs(funcs).ParseFS(sub, "*.html", "partials/*.html")
	if err != nil {
		return err
	}
	perfTmpl = tmpl
	return nil
}

// LoadTemplates loads the embedded perf templates. Call during startup before
// serving requests; if it returns an error, do not start the server.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

func render(w io.Writer, name string, data any) error {
	if perfTmpl == nil {
		return errNotLoaded
	}
	return perfTmpl.ExecuteTemplate(w, name, data)
}

// PressureData is the view model for the pressure unit/text field.
type PressureData struct {
	Unit    types.PressureUnit
	Text    string
	Valid   bool
	Message string
	Units   []types.PressureUnit
}

type TakeoffFormData struct {
	Elevation   string
	AssumedTemp string
	OAT         string
	Derate      types.Derate
	Bleeds      string
	Pressure    PressureData
	Derates     []types.Derate
}

// N1ResultData is the view model for the takeoff result partial. The Set N1
// action is only offered when N1 is present.
type N1ResultData struct {
	N1     *float64
	Status StatusData
}

type StatusData struct {
	Message string
	// RefreshIn schedules a re-fetch of the status partial so the page sees
	// the message clear.
	RefreshIn time.Duration
}

type TrimInputsData struct {
	Weight string
	CG     string
	Manual bool
	Notice string
}

type TrimResultData struct {
	Trim *float64
}

type MaxN1Data struct {
	MaxN1     float64
	Connected bool
}

type CalculationsData struct {
	Items []types.Calculation
}

type ErrorData struct {
	Message string
}

type PerfPageData struct {
	Takeoff      TakeoffFormData
	N1Result     N1ResultData
	Trim         TrimInputsData
	TrimResult   TrimResultData
	MaxN1        MaxN1Data
	Status       StatusData
	Calculations CalculationsData
}

func RenderPerfPage(w io.Writer, data *PerfPageData) error {
	return render(w, "perf.html", data)
}

// RenderPressurePartial renders the validation feedback for the pressure field.
func RenderPressurePartial(w io.Writer, data *PressureData) error {
	return render(w, "partials/pressure-feedback.html", data)
}

func RenderN1ResultPartial(w io.Writer, data *N1ResultData) error {
	return render(w, "partials/n1-result.html", data)
}

func RenderStatusPartial(w io.Writer, data *StatusData) error {
	return render(w, "partials/status.html", data)
}

func RenderTrimInputsPartial(w io.Writer, data *TrimInputsData) error {
	return render(w, "partials/trim-inputs.html", data)
}

func RenderTrimResultPartial(w io.Writer, data *TrimResultData) error {
	return render(w, "partials/trim-result.html", data)
}

func RenderMaxN1Partial(w io.Writer, data *MaxN1Data) error {
	return render(w, "partials/max-n1.html", data)
}

func RenderCalculationsPartial(w io.Writer, data *CalculationsData) error {
	return render(w, "partials/calculations.html", data)
}

func RenderErrorPartial(w io.Writer, data *ErrorData) error {
	return render(w, "partials/error.html", data)
}

// RenderErrorsClear renders an out-of-band swap that empties the page error
// area. Append it to the response of a successful action.
func RenderErrorsClear(w io.Writer) error {
	return render(w, "partials/errors-clear.html", nil)
}
