package haptics

// Minimal JSON config structures.

type ServiceConfig struct {
	Version   int           `json:"version"`
	Actuators []ActuatorCfg `json:"actuators"`
	Retry     *RetryCfg     `json:"retry,omitempty"`
}

type ActuatorCfg struct {
	ID   int32  `json:"id"`
	Type string `json:"type"` // "sim", "drv2605"
	// SuggestedSafeRangeHz is injected into the actuator's reported frequency
	// mapping; it is policy, not hardware.
	SuggestedSafeRangeHz float32 `json:"suggested_safe_range_hz,omitempty"`
	Params               any     `json:"params,omitempty"` // type-specific shape
}

type RetryCfg struct {
	MaxAttempts    int     `json:"max_attempts"`
	InitialDelayMs int     `json:"initial_delay_ms"`
	Multiplier     float64 `json:"multiplier"`
	MaxDelayMs     int     `json:"max_delay_ms"`
	Jitter         bool    `json:"jitter"`
}
