// vibrator/compiler_test.go
package vibrator

import (
	"reflect"
	"testing"

	"hapticctl-go/types"
)

func seg(start, end float32, durMs int32) types.ActivePwle {
	return types.ActivePwle{
		StartAmplitude: start,
		EndAmplitude:   end,
		StartFrequency: 120,
		EndFrequency:   150,
		DurationMs:     durMs,
	}
}

func TestCompilePwle_Empty(t *testing.T) {
	prims, total := CompilePwle(nil, types.BrakingClab)
	if len(prims) != 0 || total != 0 {
		t.Fatalf("empty input: got %d primitives, total %d", len(prims), total)
	}
}

func TestCompilePwle_NoBrakingPassThrough(t *testing.T) {
	in := []types.ActivePwle{seg(0, 0, 10), seg(0.5, 0, 20), seg(0, 0, 5)}
	prims, total := CompilePwle(in, types.BrakingNone)

	if len(prims) != len(in) {
		t.Fatalf("length = %d, want %d", len(prims), len(in))
	}
	for i, p := range prims {
		active, ok := p.(types.ActivePwle)
		if !ok {
			t.Fatalf("position %d: got %T, want ActivePwle", i, p)
		}
		if active != in[i] {
			t.Errorf("position %d changed: %+v", i, active)
		}
	}
	if total != 35 {
		t.Errorf("total = %d, want 35", total)
	}
}

func TestCompilePwle_MiddleZeroReplacedWithBraking(t *testing.T) {
	in := []types.ActivePwle{seg(0.2, 0.4, 15), seg(0, 0, 30), seg(0.4, 0.4, 15)}
	prims, total := CompilePwle(in, types.BrakingClab)

	if len(prims) != 3 {
		t.Fatalf("length = %d, want 3", len(prims))
	}
	braking, ok := prims[1].(types.BrakingPwle)
	if !ok {
		t.Fatalf("position 1: got %T, want BrakingPwle", prims[1])
	}
	if braking.Braking != types.BrakingClab || braking.DurationMs != 30 {
		t.Errorf("braking = %+v, want {clab 30}", braking)
	}
	// Total duration counts the replaced segment's original duration.
	if total != 60 {
		t.Errorf("total = %d, want 60", total)
	}
}

func TestCompilePwle_FirstSegmentNeverReplaced(t *testing.T) {
	in := []types.ActivePwle{seg(0, 0, 10)}
	prims, _ := CompilePwle(in, types.BrakingClab)

	if len(prims) != 1 {
		t.Fatalf("length = %d, want 1", len(prims))
	}
	if _, ok := prims[0].(types.ActivePwle); !ok {
		t.Fatalf("position 0: got %T, want ActivePwle", prims[0])
	}
}

func TestCompilePwle_TrailingBrakingAppended(t *testing.T) {
	in := []types.ActivePwle{seg(0.1, 0.8, 25), seg(0.8, 0, 40)}
	prims, total := CompilePwle(in, types.BrakingClab)

	if len(prims) != len(in)+1 {
		t.Fatalf("length = %d, want %d", len(prims), len(in)+1)
	}
	last, ok := prims[len(prims)-1].(types.BrakingPwle)
	if !ok {
		t.Fatalf("tail: got %T, want BrakingPwle", prims[len(prims)-1])
	}
	if last.Braking != types.BrakingClab || last.DurationMs != 0 {
		t.Errorf("tail = %+v, want zero-duration clab", last)
	}
	// Appended braking adds no duration.
	if total != 65 {
		t.Errorf("total = %d, want 65", total)
	}
}

func TestCompilePwle_NoTrailingBrakingWhenEndPositive(t *testing.T) {
	in := []types.ActivePwle{seg(0.5, 0.5, 50)}
	prims, _ := CompilePwle(in, types.BrakingClab)
	if len(prims) != 1 {
		t.Fatalf("length = %d, want 1", len(prims))
	}
}

func TestCompilePwle_Idempotent(t *testing.T) {
	in := []types.ActivePwle{seg(0, 0, 10), seg(0.5, 0, 20)}
	a, atot := CompilePwle(in, types.BrakingClab)
	b, btot := CompilePwle(in, types.BrakingClab)
	if !reflect.DeepEqual(a, b) || atot != btot {
		t.Fatalf("recompilation differs: %+v/%d vs %+v/%d", a, atot, b, btot)
	}
}

// Scenario: leading rest segment, decay to zero, braking enabled.
func TestCompilePwle_RestThenDecay(t *testing.T) {
	in := []types.ActivePwle{seg(0, 0, 10), seg(0.5, 0, 20)}
	prims, total := CompilePwle(in, types.BrakingClab)

	want := []types.PrimitivePwle{
		in[0], // first position is never substituted
		in[1],
		types.BrakingPwle{Braking: types.BrakingClab, DurationMs: 0},
	}
	if !reflect.DeepEqual(prims, want) {
		t.Errorf("compiled = %+v, want %+v", prims, want)
	}
	if total != 30 {
		t.Errorf("total = %d, want 30", total)
	}
}

// Scenario: mid-sequence rest segment becomes braking, trailing decay adds
// a zero-duration hold.
func TestCompilePwle_FullSubstitution(t *testing.T) {
	in := []types.ActivePwle{seg(0.3, 0.3, 50), seg(0, 0, 10), seg(0.5, 0, 20)}
	prims, total := CompilePwle(in, types.BrakingClab)

	want := []types.PrimitivePwle{
		in[0],
		types.BrakingPwle{Braking: types.BrakingClab, DurationMs: 10},
		in[2],
		types.BrakingPwle{Braking: types.BrakingClab, DurationMs: 0},
	}
	if !reflect.DeepEqual(prims, want) {
		t.Errorf("compiled = %+v, want %+v", prims, want)
	}
	if total != 80 {
		t.Errorf("total = %d, want 80", total)
	}
}

// Scenario: steady single segment with braking disabled passes through.
func TestCompilePwle_SteadySingleSegment(t *testing.T) {
	in := []types.ActivePwle{seg(0.3, 0.3, 50)}
	prims, total := CompilePwle(in, types.BrakingNone)

	if len(prims) != 1 || total != 50 {
		t.Fatalf("got %d primitives, total %d; want 1, 50", len(prims), total)
	}
	if got := prims[0].(types.ActivePwle); got != in[0] {
		t.Errorf("segment changed: %+v", got)
	}
}
