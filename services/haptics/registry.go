// services/haptics/registry.go
package haptics

import (
	"context"
	"fmt"
	"sync"

	"tinygo.org/x/drivers"

	"hapticctl-go/vibrator"
)

// I2CBusFactory resolves platform I2C buses by id for actuator backends that
// sit on a physical bus. Host deployments may pass nil.
type I2CBusFactory interface {
	ByID(id string) (drivers.I2C, bool)
}

// BuildInput is provided to an actuator builder to construct a Connector.
type BuildInput struct {
	Ctx        context.Context
	Buses      I2CBusFactory
	ActuatorID int32
	Type       string
	ParamsJSON any
}

// BuildOutput is returned by a builder.
type BuildOutput struct {
	// Connector resolves the actuator handle; re-invoked on reconnect.
	Connector vibrator.Connector
}

// Builder constructs an actuator backend from config.
type Builder interface {
	Build(in BuildInput) (BuildOutput, error)
}

var (
	muBuilders sync.RWMutex
	builders   = map[string]Builder{}
)

// RegisterBuilder installs a builder for a given actuator type string.
// It panics on duplicate registration to catch mistakes at start-up.
func RegisterBuilder(actuatorType string, b Builder) {
	muBuilders.Lock()
	defer muBuilders.Unlock()
	if actuatorType == "" {
		panic("haptics: empty actuator type for builder")
	}
	if _, exists := builders[actuatorType]; exists {
		panic(fmt.Sprintf("haptics: builder already registered for type %q", actuatorType))
	}
	builders[actuatorType] = b
}

// findBuilder looks up a registered builder by type.
func findBuilder(actuatorType string) (Builder, bool) {
	muBuilders.RLock()
	defer muBuilders.RUnlock()
	b, ok := builders[actuatorType]
	return b, ok
}
