// services/haptics/haptics.go
package haptics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"hapticctl-go/bus"
	"hapticctl-go/errcode"
	"hapticctl-go/types"
	"hapticctl-go/vibrator"
)

// -----------------------------------------------------------------------------
// Entry point
// -----------------------------------------------------------------------------

// Run drives the haptics service until ctx is cancelled. Actuators arrive via
// retained config on config/haptics; commands on
// haptics/actuator/<id>/control/<verb>; completion notifications go out on
// haptics/actuator/<id>/event/complete.
func Run(ctx context.Context, conn *bus.Connection, buses I2CBusFactory, log zerolog.Logger) {
	s := &service{
		conn:        conn,
		buses:       buses,
		log:         log.With().Str("service", "haptics").Logger(),
		retry:       vibrator.DefaultConfig(),
		actuators:   map[int32]*actuatorEntry{},
		completions: make(chan completion, 32),
	}
	s.loop(ctx)
}

type completion struct {
	actuatorID int32
	requestID  int64
}

type actuatorEntry struct {
	ctrl        *vibrator.Controller
	typ         string
	safeRangeHz float32
}

type service struct {
	conn  *bus.Connection
	buses I2CBusFactory
	log   zerolog.Logger
	retry vibrator.Config

	actuators map[int32]*actuatorEntry

	// Completion fan-in: the hardware-side listener pushes here, the loop
	// goroutine publishes. Keeps bus work off the hardware callback path.
	completions chan completion
}

// -----------------------------------------------------------------------------
// Main loop
// -----------------------------------------------------------------------------

func (s *service) loop(ctx context.Context) {
	cfgSub := s.conn.Subscribe(bus.T("config", "haptics"))
	ctrlSub := s.conn.Subscribe(bus.T("haptics", "actuator", "+", "control", "+"))
	defer s.conn.Unsubscribe(cfgSub)
	defer s.conn.Unsubscribe(ctrlSub)

	s.publishState("idle", "awaiting_config", nil)

	for {
		select {
		case <-ctx.Done():
			s.disposeAll()
			s.publishState("stopped", "context_cancelled", nil)
			return

		case msg := <-cfgSub.Channel():
			var cfg ServiceConfig
			if err := decodeJSON(msg.Payload, &cfg); err != nil {
				s.publishState("error", "config_decode_failed", err)
				continue
			}
			if err := s.applyConfig(ctx, cfg); err != nil {
				s.publishState("error", "apply_config_failed", err)
				continue
			}
			s.publishState("ready", "configured", nil)

		case msg := <-ctrlSub.Channel():
			s.handleControl(msg)

		case c := <-s.completions:
			s.conn.Publish(s.conn.NewMessage(
				actuatorTopic(c.actuatorID, "event", "complete"),
				map[string]any{"request_id": c.requestID, "ts_ms": time.Now().UnixMilli()},
				false,
			))
		}
	}
}

// -----------------------------------------------------------------------------
// Configuration
// -----------------------------------------------------------------------------

func (s *service) applyConfig(ctx context.Context, cfg ServiceConfig) error {
	if cfg.Retry != nil {
		s.retry = retryConfig(*cfg.Retry)
	}

	seen := map[int32]struct{}{}
	for i := range cfg.Actuators {
		a := &cfg.Actuators[i]
		seen[a.ID] = struct{}{}

		// Idempotent re-apply: existing actuators are left alone.
		if _, exists := s.actuators[a.ID]; exists {
			continue
		}

		ent, err := s.buildActuator(ctx, a)
		if err != nil {
			s.log.Warn().Int32("actuator", a.ID).Str("type", a.Type).
				Err(err).Msg("actuator build failed")
			s.pubRet(actuatorTopic(a.ID, "state"),
				map[string]any{"link": "down", "error": err.Error(), "ts_ms": time.Now().UnixMilli()})
			continue
		}
		s.actuators[a.ID] = ent
		s.publishActuator(a.ID, ent)
	}

	// Tidy-up: dispose actuators not in config.
	for id, ent := range s.actuators {
		if _, ok := seen[id]; ok {
			continue
		}
		ent.ctrl.Dispose()
		s.pubRet(actuatorTopic(id, "info"), nil)
		s.pubRet(actuatorTopic(id, "state"),
			map[string]any{"link": "down", "ts_ms": time.Now().UnixMilli()})
		delete(s.actuators, id)
	}
	return nil
}

// buildActuator resolves the builder and constructs the controller. The
// controller constructor treats an unreachable handle as an integration bug
// and panics; a config-driven service reports that as a failed build instead
// of going down.
func (s *service) buildActuator(ctx context.Context, a *ActuatorCfg) (ent *actuatorEntry, err error) {
	b, ok := findBuilder(a.Type)
	if !ok {
		return nil, fmt.Errorf("%w: no builder for type %q", errcode.InvalidParams, a.Type)
	}
	out, err := b.Build(BuildInput{
		Ctx:        ctx,
		Buses:      s.buses,
		ActuatorID: a.ID,
		Type:       a.Type,
		ParamsJSON: a.Params,
	})
	if err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			ent, err = nil, fmt.Errorf("%w: %v", errcode.Unavailable, r)
		}
	}()
	listener := vibrator.ListenerFunc(func(actuatorID int32, requestID int64) {
		select {
		case s.completions <- completion{actuatorID: actuatorID, requestID: requestID}:
		default:
			s.log.Warn().Int32("actuator", actuatorID).Int64("request", requestID).
				Msg("completion queue full, notification dropped")
		}
	})
	ctrl := vibrator.New(a.ID, out.Connector, listener, s.retry, s.log)
	return &actuatorEntry{ctrl: ctrl, typ: a.Type, safeRangeHz: a.SuggestedSafeRangeHz}, nil
}

// publishActuator emits the retained info and state for a fresh actuator.
func (s *service) publishActuator(id int32, ent *actuatorEntry) {
	now := time.Now().UnixMilli()
	if res := ent.ctrl.GetInfo(ent.safeRangeHz); res.IsOk() {
		s.pubRet(actuatorTopic(id, "info"), res.Value())
	}
	s.pubRet(actuatorTopic(id, "state"),
		map[string]any{"link": "up", "type": ent.typ, "ts_ms": now})
}

func (s *service) disposeAll() {
	for id, ent := range s.actuators {
		ent.ctrl.Dispose()
		s.pubRet(actuatorTopic(id, "state"),
			map[string]any{"link": "down", "ts_ms": time.Now().UnixMilli()})
		delete(s.actuators, id)
	}
}

func retryConfig(r RetryCfg) vibrator.Config {
	cfg := vibrator.DefaultConfig()
	if r.MaxAttempts > 0 {
		cfg.MaxAttempts = r.MaxAttempts
	}
	if r.InitialDelayMs > 0 {
		cfg.Backoff.InitialDelay = time.Duration(r.InitialDelayMs) * time.Millisecond
	}
	if r.Multiplier > 0 {
		cfg.Backoff.Multiplier = r.Multiplier
	}
	if r.MaxDelayMs > 0 {
		cfg.Backoff.MaxDelay = time.Duration(r.MaxDelayMs) * time.Millisecond
	}
	cfg.Backoff.Jitter = r.Jitter
	return cfg
}

// -----------------------------------------------------------------------------
// Control dispatch
// -----------------------------------------------------------------------------

func (s *service) handleControl(msg *bus.Message) {
	// haptics/actuator/<id>/control/<verb>
	if msg.Topic.Len() < 5 {
		return
	}
	id64, err := strconv.ParseInt(msg.Topic.At(2), 10, 32)
	if err != nil {
		s.replyErr(msg, errcode.InvalidTopic)
		return
	}
	ent, ok := s.actuators[int32(id64)]
	if !ok {
		s.replyErr(msg, errcode.UnknownActuator)
		return
	}
	verb := msg.Topic.At(4)

	switch verb {
	case "ping":
		if ent.ctrl.IsAvailable() {
			s.replyOK(msg, nil)
		} else {
			s.replyErr(msg, errcode.Unavailable)
		}

	case "on":
		var p onReq
		if err := decodeJSON(msg.Payload, &p); err != nil || p.TimeoutMs <= 0 {
			s.replyErr(msg, errcode.InvalidPayload)
			return
		}
		s.replyDuration(msg, ent.ctrl.On(p.TimeoutMs, p.RequestID))

	case "off":
		s.replyVoid(msg, ent.ctrl.Off())

	case "set_amplitude":
		var p amplitudeReq
		if err := decodeJSON(msg.Payload, &p); err != nil || p.Amplitude < 0 || p.Amplitude > 1 {
			s.replyErr(msg, errcode.InvalidPayload)
			return
		}
		s.replyVoid(msg, ent.ctrl.SetAmplitude(p.Amplitude))

	case "external_control":
		var p externalReq
		if err := decodeJSON(msg.Payload, &p); err != nil {
			s.replyErr(msg, errcode.InvalidPayload)
			return
		}
		s.replyVoid(msg, ent.ctrl.SetExternalControl(p.Enabled))

	case "perform_effect":
		var p effectReq
		if err := decodeJSON(msg.Payload, &p); err != nil {
			s.replyErr(msg, errcode.InvalidPayload)
			return
		}
		effect, ok := types.ParseEffect(p.Effect)
		if !ok {
			s.replyErr(msg, errcode.InvalidPayload)
			return
		}
		strength, ok := types.ParseStrength(p.Strength)
		if !ok {
			strength = types.StrengthMedium
		}
		s.replyDuration(msg, ent.ctrl.PerformEffect(effect, strength, p.RequestID))

	case "perform_composed":
		var p composedReq
		if err := decodeJSON(msg.Payload, &p); err != nil || len(p.Effects) == 0 {
			s.replyErr(msg, errcode.InvalidPayload)
			return
		}
		s.replyDuration(msg, ent.ctrl.PerformComposed(p.Effects, p.RequestID))

	case "perform_pwle":
		var p pwleReq
		if err := decodeJSON(msg.Payload, &p); err != nil || len(p.Segments) == 0 {
			s.replyErr(msg, errcode.InvalidPayload)
			return
		}
		braking := types.BrakingNone
		if p.Braking != "" {
			if braking, ok = types.ParseBraking(p.Braking); !ok {
				s.replyErr(msg, errcode.InvalidPayload)
				return
			}
		}
		s.replyDuration(msg, ent.ctrl.PerformPwle(p.Segments, braking, p.RequestID))

	case "always_on_enable":
		var p alwaysOnReq
		if err := decodeJSON(msg.Payload, &p); err != nil {
			s.replyErr(msg, errcode.InvalidPayload)
			return
		}
		effect, ok := types.ParseEffect(p.Effect)
		if !ok {
			s.replyErr(msg, errcode.InvalidPayload)
			return
		}
		strength, ok := types.ParseStrength(p.Strength)
		if !ok {
			strength = types.StrengthMedium
		}
		s.replyVoid(msg, ent.ctrl.AlwaysOnEnable(p.SlotID, effect, strength))

	case "always_on_disable":
		var p alwaysOnReq
		if err := decodeJSON(msg.Payload, &p); err != nil {
			s.replyErr(msg, errcode.InvalidPayload)
			return
		}
		s.replyVoid(msg, ent.ctrl.AlwaysOnDisable(p.SlotID))

	case "info":
		res := ent.ctrl.GetInfo(ent.safeRangeHz)
		switch {
		case res.IsOk():
			s.replyOK(msg, map[string]any{"info": res.Value()})
		case res.IsUnsupported():
			s.replyErr(msg, errcode.Unsupported)
		default:
			s.replyErr(msg, resultCode(res.Err()))
		}

	default:
		s.replyErr(msg, errcode.UnknownVerb)
	}
}

// -----------------------------------------------------------------------------
// Replies and helpers
// -----------------------------------------------------------------------------

func (s *service) replyDuration(req *bus.Message, res vibrator.HalResult[int64]) {
	switch {
	case res.IsOk():
		s.replyOK(req, map[string]any{"duration_ms": res.Value()})
	case res.IsUnsupported():
		s.replyErr(req, errcode.Unsupported)
	default:
		s.replyErr(req, resultCode(res.Err()))
	}
}

func (s *service) replyVoid(req *bus.Message, res vibrator.HalResult[struct{}]) {
	switch {
	case res.IsOk():
		s.replyOK(req, nil)
	case res.IsUnsupported():
		s.replyErr(req, errcode.Unsupported)
	default:
		s.replyErr(req, resultCode(res.Err()))
	}
}

// resultCode folds a Failed error into a wire code.
func resultCode(err error) errcode.Code {
	switch {
	case err == nil:
		return errcode.Error
	case errors.Is(err, vibrator.ErrDisposed):
		return errcode.Disposed
	case errors.Is(err, vibrator.ErrRetriesExhausted), errors.Is(err, vibrator.ErrUnavailable):
		return errcode.Unavailable
	default:
		return errcode.Error
	}
}

func (s *service) replyOK(req *bus.Message, extra map[string]any) {
	if !req.CanReply() {
		return
	}
	m := map[string]any{"ok": true}
	for k, v := range extra {
		m[k] = v
	}
	s.conn.Reply(req, m, false)
}

func (s *service) replyErr(req *bus.Message, code errcode.Code) {
	if !req.CanReply() {
		return
	}
	s.conn.Reply(req, map[string]any{"ok": false, "error": string(code)}, false)
}

func (s *service) publishState(level, status string, err error) {
	payload := map[string]any{"level": level, "status": status, "ts_ms": time.Now().UnixMilli()}
	if err != nil {
		payload["error"] = err.Error()
	}
	s.pubRet(bus.T("haptics", "state"), payload)
}

func (s *service) pubRet(t bus.Topic, p any) {
	s.conn.Publish(s.conn.NewMessage(t, p, true))
}

func actuatorTopic(id int32, rest ...string) bus.Topic {
	base := bus.T("haptics", "actuator", strconv.FormatInt(int64(id), 10))
	return append(base, rest...)
}

// DecodeParams re-encodes a config params value into a builder's own shape.
func DecodeParams[T any](src any, dst *T) error { return decodeJSON(src, dst) }

func decodeJSON[T any](src any, dst *T) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		// Accept maps and structs by re-encoding into the target shape.
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		return json.Unmarshal(b, dst)
	}
}
