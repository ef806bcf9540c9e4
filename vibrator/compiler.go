// vibrator/compiler.go
package vibrator

import "hapticctl-go/types"

// shouldReplaceWithBraking reports whether braking is enabled and the active
// PWLE starts and ends with zero amplitude.
func shouldReplaceWithBraking(seg types.ActivePwle, braking types.Braking) bool {
	return braking != types.BrakingNone && seg.StartAmplitude == 0 && seg.EndAmplitude == 0
}

// shouldAddLastBraking reports whether braking is enabled and the last active
// PWLE only ends with zero amplitude.
func shouldAddLastBraking(last types.ActivePwle, braking types.Braking) bool {
	return braking != types.BrakingNone && last.StartAmplitude > 0 && last.EndAmplitude == 0
}

// CompilePwle converts an ordered envelope waveform into the actuator's
// primitive sequence, inserting braking primitives where a segment is
// redundant with braking, and returns the total duration in milliseconds.
//
// A zero-amplitude ramp after the first position is replaced by a braking
// primitive of the same duration. A trailing decay-to-zero ramp gets one
// zero-duration braking primitive appended after it. Total duration always
// sums the input segment durations, independent of substitutions. Pure:
// identical input yields identical output.
func CompilePwle(segments []types.ActivePwle, braking types.Braking) ([]types.PrimitivePwle, int64) {
	if len(segments) == 0 {
		return nil, 0
	}
	primitives := make([]types.PrimitivePwle, 0, len(segments)+1)
	var totalMs int64
	last := len(segments) - 1
	for i, seg := range segments {
		if i > 0 && shouldReplaceWithBraking(seg, braking) {
			primitives = append(primitives, types.BrakingPwle{Braking: braking, DurationMs: seg.DurationMs})
		} else {
			primitives = append(primitives, seg)
		}
		totalMs += int64(seg.DurationMs)

		if i == last && shouldAddLastBraking(seg, braking) {
			primitives = append(primitives, types.BrakingPwle{Braking: braking, DurationMs: 0})
		}
	}
	return primitives, totalMs
}
