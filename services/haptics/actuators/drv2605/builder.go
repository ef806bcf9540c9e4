// services/haptics/actuators/drv2605/builder.go
package drv2605actuator

import (
	"fmt"

	"hapticctl-go/drivers/drv2605"
	"hapticctl-go/errcode"
	"hapticctl-go/services/haptics"
	"hapticctl-go/vibrator"
)

func init() { haptics.RegisterBuilder("drv2605", builder{}) }

type Params struct {
	Bus     string `json:"bus"`  // e.g. "i2c0"
	Addr    uint16 `json:"addr"` // defaults to drv2605.Address (0x5A) if zero
	Library uint8  `json:"library"`
	LRA     bool   `json:"lra"`
}

type builder struct{}

func (builder) Build(in haptics.BuildInput) (haptics.BuildOutput, error) {
	var p Params
	if err := haptics.DecodeParams(in.ParamsJSON, &p); err != nil {
		return haptics.BuildOutput{}, err
	}
	if p.Bus == "" {
		return haptics.BuildOutput{}, fmt.Errorf("%w: missing bus ref", errcode.InvalidParams)
	}
	if in.Buses == nil {
		return haptics.BuildOutput{}, fmt.Errorf("%w: no i2c factory on this platform", errcode.InvalidParams)
	}
	i2c, ok := in.Buses.ByID(p.Bus)
	if !ok {
		return haptics.BuildOutput{}, fmt.Errorf("%w: unknown i2c bus %q", errcode.InvalidParams, p.Bus)
	}
	cfg := drv2605.Config{Address: p.Addr, Library: p.Library, LRA: p.LRA}
	hal := vibrator.NewDRV2605Hal(i2c, cfg)
	// The chip handle is persistent; reconnect re-runs Init against it.
	return haptics.BuildOutput{
		Connector: vibrator.ConnectorFunc(func() (vibrator.HalWrapper, error) { return hal, nil }),
	}, nil
}
