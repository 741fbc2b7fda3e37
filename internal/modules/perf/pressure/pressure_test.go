package pressure

import (
	"fmt"
	"testing"

	"cockpit-server/internal/modules/perf/types"
)

func TestValid_inHG(t *testing.T) {
	v := New(false)
	tests := []struct {
		text string
		want bool
	}{
		{text: "29.92", want: true},
		{text: "30.01", want: true},
		{text: "2992", want: false},
		{text: "29.9", want: false},
		{text: "299.2", want: false},
		{text: "29.921", want: false},
		{text: "29,92", want: false},
		{text: "2a.92", want: false},
		{text: "29.9e", want: false},
		{text: "", want: false},
		{text: "-9.92", want: true},
		{text: "+9.92", want: true},
		{text: " 9.92", want: true},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := v.Valid(types.UnitInHG, tt.text); got != tt.want {
				t.Errorf("Valid(inHG, %q) = %v; want %v", tt.text, got, tt.want)
			}
		})
	}
}

// Every 5-character text with '.' at index 2 and numeric content is valid
// for inHG; moving the point breaks it.
func TestValid_inHGExhaustiveDigits(t *testing.T) {
	v := New(false)
	for i := 0; i < 10000; i += 7 {
		text := fmt.Sprintf("%02d.%02d", i/100, i%100)
		if !v.Valid(types.UnitInHG, text) {
			t.Fatalf("Valid(inHG, %q) = false; want true", text)
		}
		moved := fmt.Sprintf("%03d.%d", i/10, i%10)
		if v.Valid(types.UnitInHG, moved) {
			t.Fatalf("Valid(inHG, %q) = true; want false", moved)
		}
	}
}

func TestValid_hPa(t *testing.T) {
	v := New(false)
	tests := []struct {
		text string
		want bool
	}{
		{text: "1013", want: false},
		{text: "10132", want: true},
		{text: "1013.", want: true},
		{text: "29.92", want: true},
		{text: " 1013", want: true},
		{text: "1e3 ", want: false},
		{text: "1e30 ", want: true},
		{text: "abcde", want: false},
		{text: "NaN12", want: false},
		{text: "101", want: false},
		{text: "101325", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := v.Valid(types.UnitHPa, tt.text); got != tt.want {
				t.Errorf("Valid(hPa, %q) = %v; want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestValid_hPaStrict(t *testing.T) {
	v := New(true)
	tests := []struct {
		text string
		want bool
	}{
		{text: "1013", want: true},
		{text: "0998", want: true},
		{text: "10132", want: false},
		{text: "29.92", want: false},
		{text: "10a3", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := v.Valid(types.UnitHPa, tt.text); got != tt.want {
				t.Errorf("strict Valid(hPa, %q) = %v; want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestValid_unknownUnit(t *testing.T) {
	v := New(false)
	for _, unit := range []types.PressureUnit{"", "hPA", "mmHg"} {
		if v.Valid(unit, "29.92") {
			t.Errorf("Valid(%q, 29.92) = true; want false", unit)
		}
	}
}

func TestValid_countsUTF16Units(t *testing.T) {
	v := New(false)
	// U+1D7D0 is one rune but two UTF-16 code units; length 5 overall.
	if v.Valid(types.UnitInHG, "2\U0001D7D0.1") {
		t.Error("Valid(inHG, non-ASCII digit) = true; want false")
	}
	if got := v.Valid(types.UnitHPa, "\u00a01013"); !got {
		t.Error("Valid(hPa, nbsp+1013) = false; want true")
	}
	if v.Valid(types.UnitHPa, "1013\u0085") {
		t.Error("Valid(hPa, 1013+NEL) = true; want false")
	}
}

func TestReading(t *testing.T) {
	v := New(false)
	r := v.Reading(types.UnitInHG, "29.92")
	if r.Unit != types.UnitInHG || r.Text != "29.92" || !r.Valid {
		t.Errorf("Reading() = %+v; want valid inHG 29.92", r)
	}
	r = v.Reading(types.UnitInHG, "2992")
	if r.Valid {
		t.Errorf("Reading(2992) valid = true; want false")
	}
}

func TestIsNumber(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{in: "29.92", want: true},
		{in: "  42  ", want: true},
		{in: "", want: true},
		{in: "   ", want: true},
		{in: ".5", want: true},
		{in: "5.", want: true},
		{in: "-1e-3", want: true},
		{in: "Infinity", want: true},
		{in: "-Infinity", want: true},
		{in: "0x1F", want: true},
		{in: "0b101", want: true},
		{in: "0o17", want: true},
		{in: "-0x1F", want: false},
		{in: "NaN", want: false},
		{in: "inf", want: false},
		{in: "infinity", want: false},
		{in: "1_000", want: false},
		{in: "1e", want: false},
		{in: ".", want: false},
		{in: "1.2.3", want: false},
		{in: "12a", want: false},
		{in: "\u20281013\u2029", want: true},
		{in: "\u30001013", want: true},
		{in: "\ufeff1013", want: true},
		{in: "1013\u0085", want: false},
		{in: "\u200b1013", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := IsNumber(tt.in); got != tt.want {
				t.Errorf("IsNumber(%q) = %v; want %v", tt.in, got, tt.want)
			}
		})
	}
}
