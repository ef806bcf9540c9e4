// Command haptic-console: interactive console against a simulated actuator.
// It hosts the bus and the haptics service in-process and turns typed
// commands into control messages, printing replies and completion events.
//
// Commands:
//
//	ping
//	on <timeout_ms> [request_id]
//	off
//	amp <0..1>
//	ext <on|off>
//	effect <name> [light|medium|strong] [request_id]
//	pwle <start:end:dur_ms>... [braking=none|clab]
//	aoe <slot> <effect> [strength]
//	aod <slot>
//	info
//	quit
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/shlex"

	"hapticctl-go/bus"
	"hapticctl-go/services/haptics"
	"hapticctl-go/types"
	"hapticctl-go/x/logx"

	_ "hapticctl-go/services/haptics/actuators/sim"
)

const actuatorID = "0"

func main() {
	log := logx.New("haptic-console")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := bus.NewBus(64)
	go haptics.Run(ctx, b.NewConnection("haptics"), nil, log)

	conn := b.NewConnection("console")
	defer conn.Disconnect()

	conn.Publish(conn.NewMessage(bus.T("config", "haptics"), map[string]any{
		"version":   1,
		"actuators": []map[string]any{{"id": 0, "type": "sim", "suggested_safe_range_hz": 60}},
	}, true))

	replySub := conn.Subscribe(bus.T("console", "reply"))
	defer conn.Unsubscribe(replySub)
	eventSub := conn.Subscribe(bus.T("haptics", "actuator", actuatorID, "event", "complete"))
	defer conn.Unsubscribe(eventSub)

	go func() {
		for msg := range eventSub.Channel() {
			fmt.Printf("<- complete %v\n", msg.Payload)
		}
	}()

	fmt.Println("haptic-console: simulated actuator 0, 'quit' to exit")
	in := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !in.Scan() {
			return
		}
		args, err := shlex.Split(in.Text())
		if err != nil {
			fmt.Println("parse error:", err)
			continue
		}
		if len(args) == 0 {
			continue
		}
		if args[0] == "quit" || args[0] == "exit" {
			return
		}
		verb, payload, err := buildCommand(args)
		if err != nil {
			fmt.Println("error:", err)
			continue
		}
		conn.Publish(&bus.Message{
			Topic:   bus.T("haptics", "actuator", actuatorID, "control", verb),
			Payload: payload,
			ReplyTo: replySub.Pattern(),
		})
		reply := <-replySub.Channel()
		fmt.Printf("<- %v\n", reply.Payload)
	}
}

func buildCommand(args []string) (verb string, payload any, err error) {
	switch args[0] {
	case "ping", "off", "info":
		return args[0], nil, nil

	case "on":
		if len(args) < 2 {
			return "", nil, fmt.Errorf("usage: on <timeout_ms> [request_id]")
		}
		ms, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return "", nil, err
		}
		return "on", map[string]any{"timeout_ms": ms, "request_id": optInt(args, 2)}, nil

	case "amp":
		if len(args) < 2 {
			return "", nil, fmt.Errorf("usage: amp <0..1>")
		}
		a, err := strconv.ParseFloat(args[1], 32)
		if err != nil {
			return "", nil, err
		}
		return "set_amplitude", map[string]any{"amplitude": a}, nil

	case "ext":
		if len(args) < 2 {
			return "", nil, fmt.Errorf("usage: ext <on|off>")
		}
		return "external_control", map[string]any{"enabled": args[1] == "on"}, nil

	case "effect":
		if len(args) < 2 {
			return "", nil, fmt.Errorf("usage: effect <name> [strength] [request_id]")
		}
		strength := "medium"
		if len(args) > 2 {
			strength = args[2]
		}
		return "perform_effect", map[string]any{
			"effect": args[1], "strength": strength, "request_id": optInt(args, 3),
		}, nil

	case "pwle":
		if len(args) < 2 {
			return "", nil, fmt.Errorf("usage: pwle <start:end:dur_ms>... [braking=none|clab]")
		}
		braking := "none"
		var segments []types.ActivePwle
		for _, a := range args[1:] {
			if rest, ok := strings.CutPrefix(a, "braking="); ok {
				braking = rest
				continue
			}
			seg, err := parseSegment(a)
			if err != nil {
				return "", nil, err
			}
			segments = append(segments, seg)
		}
		return "perform_pwle", map[string]any{
			"segments": segments, "braking": braking, "request_id": optInt(args, len(args)),
		}, nil

	case "aoe":
		if len(args) < 3 {
			return "", nil, fmt.Errorf("usage: aoe <slot> <effect> [strength]")
		}
		slot, err := strconv.ParseInt(args[1], 10, 32)
		if err != nil {
			return "", nil, err
		}
		strength := "medium"
		if len(args) > 3 {
			strength = args[3]
		}
		return "always_on_enable", map[string]any{
			"slot_id": slot, "effect": args[2], "strength": strength,
		}, nil

	case "aod":
		if len(args) < 2 {
			return "", nil, fmt.Errorf("usage: aod <slot>")
		}
		slot, err := strconv.ParseInt(args[1], 10, 32)
		if err != nil {
			return "", nil, err
		}
		return "always_on_disable", map[string]any{"slot_id": slot}, nil

	default:
		return "", nil, fmt.Errorf("unknown command %q", args[0])
	}
}

// parseSegment reads "start:end:dur_ms", amplitudes in [0..1].
func parseSegment(s string) (types.ActivePwle, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return types.ActivePwle{}, fmt.Errorf("segment %q: want start:end:dur_ms", s)
	}
	start, err := strconv.ParseFloat(parts[0], 32)
	if err != nil {
		return types.ActivePwle{}, err
	}
	end, err := strconv.ParseFloat(parts[1], 32)
	if err != nil {
		return types.ActivePwle{}, err
	}
	dur, err := strconv.ParseInt(parts[2], 10, 32)
	if err != nil {
		return types.ActivePwle{}, err
	}
	return types.ActivePwle{
		StartAmplitude: float32(start),
		EndAmplitude:   float32(end),
		DurationMs:     int32(dur),
	}, nil
}

// optInt parses a trailing numeric argument, defaulting to a fresh id.
var nextRequestID int64

func optInt(args []string, i int) int64 {
	if i < len(args) {
		if v, err := strconv.ParseInt(args[i], 10, 64); err == nil {
			return v
		}
	}
	nextRequestID++
	return nextRequestID
}
