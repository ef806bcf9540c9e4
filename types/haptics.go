package types

// Enumerations mirror the actuator wire contract. Values are part of the
// protocol with the hardware service and must not be reordered.

// Effect identifies a canned hardware effect.
type Effect int32

const (
	EffectClick       Effect = 0
	EffectDoubleClick Effect = 1
	EffectTick        Effect = 2
	EffectThud        Effect = 3
	EffectPop         Effect = 4
	EffectHeavyClick  Effect = 5
	EffectTextureTick Effect = 21
)

func (e Effect) String() string {
	switch e {
	case EffectClick:
		return "click"
	case EffectDoubleClick:
		return "double_click"
	case EffectTick:
		return "tick"
	case EffectThud:
		return "thud"
	case EffectPop:
		return "pop"
	case EffectHeavyClick:
		return "heavy_click"
	case EffectTextureTick:
		return "texture_tick"
	default:
		return "unknown"
	}
}

// ParseEffect resolves a lowercase effect name. Used on the console/config path.
func ParseEffect(s string) (Effect, bool) {
	switch s {
	case "click":
		return EffectClick, true
	case "double_click":
		return EffectDoubleClick, true
	case "tick":
		return EffectTick, true
	case "thud":
		return EffectThud, true
	case "pop":
		return EffectPop, true
	case "heavy_click":
		return EffectHeavyClick, true
	case "texture_tick":
		return EffectTextureTick, true
	default:
		return 0, false
	}
}

// EffectStrength is the intensity tier for canned effects.
type EffectStrength int32

const (
	StrengthLight  EffectStrength = 0
	StrengthMedium EffectStrength = 1
	StrengthStrong EffectStrength = 2
)

func (s EffectStrength) String() string {
	switch s {
	case StrengthLight:
		return "light"
	case StrengthMedium:
		return "medium"
	case StrengthStrong:
		return "strong"
	default:
		return "unknown"
	}
}

func ParseStrength(s string) (EffectStrength, bool) {
	switch s {
	case "light":
		return StrengthLight, true
	case "medium":
		return StrengthMedium, true
	case "strong":
		return StrengthStrong, true
	default:
		return 0, false
	}
}

// Braking selects a hardware damping primitive. None disables braking
// insertion entirely.
type Braking int32

const (
	BrakingNone Braking = 0
	BrakingClab Braking = 1
)

func (b Braking) String() string {
	switch b {
	case BrakingNone:
		return "none"
	case BrakingClab:
		return "clab"
	default:
		return "unknown"
	}
}

func ParseBraking(s string) (Braking, bool) {
	switch s {
	case "none":
		return BrakingNone, true
	case "clab":
		return BrakingClab, true
	default:
		return 0, false
	}
}

// CompositePrimitiveID names one canned micro-effect of a composition.
type CompositePrimitiveID int32

const (
	PrimitiveNoop      CompositePrimitiveID = 0
	PrimitiveClick     CompositePrimitiveID = 1
	PrimitiveThud      CompositePrimitiveID = 2
	PrimitiveSpin      CompositePrimitiveID = 3
	PrimitiveQuickRise CompositePrimitiveID = 4
	PrimitiveSlowRise  CompositePrimitiveID = 5
	PrimitiveQuickFall CompositePrimitiveID = 6
	PrimitiveLightTick CompositePrimitiveID = 7
	PrimitiveLowTick   CompositePrimitiveID = 8
)

// CompositeEffect is one step of a composite sequence. Order-significant.
type CompositeEffect struct {
	Primitive CompositePrimitiveID `json:"primitive"`
	Scale     float32              `json:"scale"` // [0..1]
	DelayMs   int32                `json:"delay_ms"`
}

// ActivePwle is one linear ramp of amplitude and frequency over a fixed
// duration ("active PWLE" segment). Order-significant within a waveform.
type ActivePwle struct {
	StartAmplitude float32 `json:"start_amplitude"`
	EndAmplitude   float32 `json:"end_amplitude"`
	StartFrequency float32 `json:"start_frequency"`
	EndFrequency   float32 `json:"end_frequency"`
	DurationMs     int32   `json:"duration_ms"`
}

func (ActivePwle) isPrimitivePwle() {}

// BrakingPwle holds the actuator at rest with the given damping primitive.
type BrakingPwle struct {
	Braking    Braking `json:"braking"`
	DurationMs int32   `json:"duration_ms"`
}

func (BrakingPwle) isPrimitivePwle() {}

// PrimitivePwle is one element of the compiled actuator-facing sequence:
// either an ActivePwle or a BrakingPwle.
type PrimitivePwle interface{ isPrimitivePwle() }
