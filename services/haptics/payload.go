// services/haptics/payload.go
package haptics

import "hapticctl-go/types"

// Control verb payload shapes. Effects, strengths and braking arrive as
// lowercase names; composite primitives as numeric ids (wire values).

type onReq struct {
	TimeoutMs int64 `json:"timeout_ms"`
	RequestID int64 `json:"request_id"`
}

type amplitudeReq struct {
	Amplitude float32 `json:"amplitude"`
}

type externalReq struct {
	Enabled bool `json:"enabled"`
}

type effectReq struct {
	Effect    string `json:"effect"`
	Strength  string `json:"strength"`
	RequestID int64  `json:"request_id"`
}

type composedReq struct {
	Effects   []types.CompositeEffect `json:"effects"`
	RequestID int64                   `json:"request_id"`
}

type pwleReq struct {
	Segments  []types.ActivePwle `json:"segments"`
	Braking   string             `json:"braking,omitempty"`
	RequestID int64              `json:"request_id"`
}

type alwaysOnReq struct {
	SlotID   int32  `json:"slot_id"`
	Effect   string `json:"effect,omitempty"`
	Strength string `json:"strength,omitempty"`
}
