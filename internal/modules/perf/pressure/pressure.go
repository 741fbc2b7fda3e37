// Package pressure validates altimeter settings typed into the takeoff form.
//
// Rules, by unit:
//
//	any:  length must be 4 or 5, otherwise invalid
//	inHG: exactly 5 characters, '.' at index 2, numeric ("29.92")
//	hPa:  length other than 4 and numeric; with the generic rule this
//	      means 5 numeric characters. Strict mode requires exactly 4.
//
// Lengths and indexes count UTF-16 code units, the way the browser form did.
package pressure

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf16"

	"cockpit-server/internal/modules/perf/types"
)

// InvalidMessage is shown next to a field holding an invalid reading.
const InvalidMessage = "Invalid pressure setting."

type Validator struct {
	strictHPa bool
}

// New returns a validator. strictHPa switches the hPa rule to "exactly four
// numeric characters".
func New(strictHPa bool) Validator {
	return Validator{strictHPa: strictHPa}
}

// Valid reports whether text is a well-formed reading in unit.
func (v Validator) Valid(unit types.PressureUnit, text string) bool {
	units := utf16.Encode([]rune(text))
	n := len(units)
	if n != 4 && n != 5 {
		return false
	}

	switch unit {
	case types.UnitInHG:
		return n == 5 && units[2] == '.' && IsNumber(text)
	case types.UnitHPa:
		if v.strictHPa {
			return n == 4 && IsNumber(text)
		}
		return n != 4 && IsNumber(text)
	default:
		return false
	}
}

// Reading evaluates text from scratch and returns the full reading.
func (v Validator) Reading(unit types.PressureUnit, text string) types.PressureReading {
	return types.PressureReading{Unit: unit, Text: text, Valid: v.Valid(unit, text)}
}

var (
	decimalRe  = regexp.MustCompile(`^[+-]?(?:[0-9]+\.?[0-9]*|\.[0-9]+)(?:[eE][+-]?[0-9]+)?$`)
	prefixedRe = regexp.MustCompile(`^0(?:[xX][0-9a-fA-F]+|[oO][0-7]+|[bB][01]+)$`)
)

// IsNumber reports whether s converts to a number other than NaN under
// browser Number() rules: surrounding whitespace is ignored, blank text is
// zero, Infinity is a number, and 0x/0o/0b integers are accepted.
func IsNumber(s string) bool {
	s = strings.TrimFunc(s, isJSSpace)
	switch s {
	case "", "Infinity", "+Infinity", "-Infinity":
		return true
	}
	return decimalRe.MatchString(s) || prefixedRe.MatchString(s)
}

// isJSSpace matches ECMAScript WhiteSpace and LineTerminator. U+0085 is
// not among them.
func isJSSpace(r rune) bool {
	switch r {
	case '\t', '\v', '\f', ' ', '\n', '\r', '\u00a0', '\uFEFF', '\u2028', '\u2029':
		return true
	}
	return unicode.Is(unicode.Zs, r)
}
