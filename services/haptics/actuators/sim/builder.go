// services/haptics/actuators/sim/builder.go
package simactuator

import (
	"hapticctl-go/services/haptics"
	"hapticctl-go/vibrator/simvib"
)

func init() { haptics.RegisterBuilder("sim", builder{}) }

type Params struct {
	ResonantFrequencyHz   float32 `json:"resonant_frequency_hz"`
	MinFrequencyHz        float32 `json:"min_frequency_hz"`
	FrequencyResolutionHz float32 `json:"frequency_resolution_hz"`
	QFactor               float32 `json:"q_factor"`
}

type builder struct{}

func (builder) Build(in haptics.BuildInput) (haptics.BuildOutput, error) {
	var p Params
	// Params are optional; a zero config yields the default LRA profile.
	if in.ParamsJSON != nil {
		if err := haptics.DecodeParams(in.ParamsJSON, &p); err != nil {
			return haptics.BuildOutput{}, err
		}
	}
	dev := simvib.New(simvib.Config{
		ResonantFrequencyHz:   p.ResonantFrequencyHz,
		MinFrequencyHz:        p.MinFrequencyHz,
		FrequencyResolutionHz: p.FrequencyResolutionHz,
		QFactor:               p.QFactor,
	})
	return haptics.BuildOutput{Connector: dev.Connector()}, nil
}
