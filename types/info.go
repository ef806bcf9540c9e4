package types

// Capabilities is the actuator capability bitmask.
type Capabilities int64

const (
	CapOnCallback               Capabilities = 1 << 0
	CapPerformCallback          Capabilities = 1 << 1
	CapAmplitudeControl         Capabilities = 1 << 2
	CapExternalControl          Capabilities = 1 << 3
	CapExternalAmplitudeControl Capabilities = 1 << 4
	CapComposeEffects           Capabilities = 1 << 5
	CapAlwaysOnControl          Capabilities = 1 << 6
	CapGetResonantFrequency     Capabilities = 1 << 7
	CapGetQFactor               Capabilities = 1 << 8
	CapFrequencyControl         Capabilities = 1 << 9
	CapComposePwleEffects       Capabilities = 1 << 10
)

func (c Capabilities) Has(mask Capabilities) bool { return c&mask == mask }

// FrequencyMapping describes the actuator's usable frequency range.
// SuggestedSafeRangeHz is a policy hint injected by the caller, not a
// hardware-reported figure.
type FrequencyMapping struct {
	MinFrequencyHz        Optional[float32] `json:"min_frequency_hz"`
	ResonantFrequencyHz   Optional[float32] `json:"resonant_frequency_hz"`
	FrequencyResolutionHz Optional[float32] `json:"frequency_resolution_hz"`
	SuggestedSafeRangeHz  float32           `json:"suggested_safe_range_hz"`
	// MaxAmplitudes is indexed by frequency bucket from MinFrequencyHz in
	// steps of FrequencyResolutionHz.
	MaxAmplitudes Optional[[]float32] `json:"max_amplitudes"`
}

// VibratorInfo is a capability snapshot for one actuator. Every field except
// the id is independently present-or-absent; the hardware may decline to
// report any of them.
type VibratorInfo struct {
	ActuatorID          int32                            `json:"actuator_id"`
	Capabilities        Optional[Capabilities]           `json:"capabilities"`
	SupportedEffects    Optional[[]Effect]               `json:"supported_effects"`
	SupportedBraking    Optional[[]Braking]              `json:"supported_braking"`
	SupportedPrimitives Optional[[]CompositePrimitiveID] `json:"supported_primitives"`
	QFactor             Optional[float32]                `json:"q_factor"`
	Frequency           FrequencyMapping                 `json:"frequency"`
}
