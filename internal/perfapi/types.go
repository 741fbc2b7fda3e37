package perfapi

import (
	"encoding/json"
	"strings"
)

// TakeoffRequest is the body of POST /takeoff/derate. Field order is the
// wire order.
type TakeoffRequest struct {
	Derate        string  `json:"derate"`
	AssumedTemp   float64 `json:"assumed_temp"`
	PressAltitude float64 `json:"press_altitude"`
	OAT           float64 `json:"oat"`
	Bleeds        bool    `json:"bleeds"`
}

type SetDerateRequest struct {
	DerateN1 float64 `json:"derate_N1"`
}

type TrimRequest struct {
	Weight float64 `json:"weight"`
	CG     float64 `json:"cg"`
	Derate string  `json:"derate"`
}

// Responses keep numbers as pointers: a field missing from the reply stays nil.

type TakeoffResponse struct {
	Success LooseBool `json:"success"`
	Message string    `json:"message"`
	N1      *float64  `json:"n1"`
}

type MessageResponse struct {
	Success LooseBool `json:"success"`
	Message string    `json:"message"`
}

type TrimResponse struct {
	Success LooseBool `json:"success"`
	Message string    `json:"message"`
	Trim    *float64  `json:"trim"`
}

// OK reports whether the trim service accepted the request.
func (r TrimResponse) OK() bool { return r.Message == SuccessMessage }

type WeightResponse struct {
	Success LooseBool `json:"success"`
	Message string    `json:"message"`
	Weight  *float64  `json:"weight"`
}

type CGResponse struct {
	Success  LooseBool `json:"success"`
	Message  string    `json:"message"`
	CGMAC    *float64  `json:"cg_mac"`
	CGInches *float64  `json:"cg_inches"`
}

// SuccessMessage is the message the service attaches to accepted answers.
const SuccessMessage = "Success"

// LooseBool decodes a JSON boolean or its string spelling ("true"/"false").
// The service is not consistent about which one it sends.
type LooseBool bool

func (b *LooseBool) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case bool:
		*b = LooseBool(t)
	case string:
		*b = LooseBool(strings.EqualFold(strings.TrimSpace(t), "true"))
	default:
		*b = false
	}
	return nil
}
