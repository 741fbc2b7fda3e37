package types

import (
	"encoding/json"
	"time"
)

type Derate string

const (
	DerateTO  Derate = "TO"
	DerateTO1 Derate = "TO-1"
	DerateTO2 Derate = "TO-2"
)

// Derates lists the selectable derate levels in display order.
var Derates = []Derate{DerateTO, DerateTO1, DerateTO2}

func ParseDerate(s string) (Derate, bool) {
	for _, d := range Derates {
		if string(d) == s {
			return d, true
		}
	}
	return "", false
}

type PressureUnit string

const (
	UnitInHG PressureUnit = "inHG"
	UnitHPa  PressureUnit = "hPa"
)

var PressureUnits = []PressureUnit{UnitInHG, UnitHPa}

// ParsePressureUnit accepts exactly "inHG" or "hPa".
func ParsePressureUnit(s string) (PressureUnit, bool) {
	switch PressureUnit(s) {
	case UnitInHG, UnitHPa:
		return PressureUnit(s), true
	}
	return "", false
}

const (
	BleedsOn  = "On"
	BleedsOff = "Off"
)

type TakeoffInputs struct {
	PressureAltitude float64
	AssumedTemp      float64
	OAT              float64
	Derate           Derate
	Bleeds           bool
}

type PressureReading struct {
	Unit  PressureUnit
	Text  string
	Valid bool
}

type TrimInputs struct {
	Weight float64
	CG     float64
	Derate Derate
}

type Kind string

const (
	KindTakeoff Kind = "takeoff"
	KindTrim    Kind = "trim"
	KindSetN1   Kind = "set_n1"
)

// Calculation is one logged takeoff, trim or set-N1 outcome.
type Calculation struct {
	ID        int64           `json:"id"`
	Kind      Kind            `json:"kind"`
	Derate    Derate          `json:"derate,omitempty"`
	Inputs    json.RawMessage `json:"inputs"`
	Result    *float64        `json:"result"`
	Message   string          `json:"message,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
