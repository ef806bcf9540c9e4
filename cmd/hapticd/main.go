// Command hapticd: host daemon wiring the in-process bus, the config
// publisher and the haptics service together.
//
// Run:
//
//	go run ./cmd/hapticd -config hapticctl.toml
//
// The config file carries a [haptics] section with the actuator list; see
// services/haptics for the shape. Simulated actuators need no hardware.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"hapticctl-go/bus"
	"hapticctl-go/services/config"
	"hapticctl-go/services/haptics"
	"hapticctl-go/x/logx"

	// Register actuator builders.
	_ "hapticctl-go/services/haptics/actuators/drv2605"
	_ "hapticctl-go/services/haptics/actuators/sim"
)

func main() {
	cfgPath := flag.String("config", "hapticctl.toml", "path to TOML config")
	flag.Parse()

	log := logx.New("hapticd")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b := bus.NewBus(64)

	// The [haptics] section lands retained on config/haptics, which is the
	// topic the service consumes; start order does not matter.
	config.New(*cfgPath, log).Start(b.NewConnection("config"))

	log.Info().Str("config", *cfgPath).Msg("hapticd starting")
	haptics.Run(ctx, b.NewConnection("haptics"), nil, log)
	log.Info().Msg("hapticd stopped")
}
