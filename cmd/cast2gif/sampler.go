package main

import "math"

// Frame is one output frame: a screen state and how long to display it.
type Frame struct {
	Duration float64
	State    *ScreenState
}

const (
	// DefaultFPS is used when auto-fps finds no gap to measure.
	DefaultFPS = 10
	// DefaultMaxFPS caps auto-fps; very quick bursts of output would
	// otherwise demand absurd frame rates.
	DefaultMaxFPS = 30
)

// timeEpsilon absorbs float rounding when comparing tick times against
// snapshot timestamps.
const timeEpsilon = 1e-9

// Screenshot reduces a timeline to its final state. The timeline must be
// non-empty, which BuildTimeline guarantees.
func Screenshot(timeline []TimelineEvent) Frame {
	return Frame{State: timeline[len(timeline)-1].State}
}

// SampleAnimation reduces a timeline to frames by sampling at fps ticks
// from 0 through the final timestamp, holding the last known state at
// each tick. Runs of ticks showing the same state coalesce into a single
// frame with summed duration, so total elapsed time is preserved.
func SampleAnimation(timeline []TimelineEvent, fps float64) []Frame {
	end := timeline[len(timeline)-1].Time
	interval := 1 / fps
	ticks := int(math.Ceil(end*fps-timeEpsilon)) + 1

	var frames []Frame
	idx := 0
	for k := 0; k < ticks; k++ {
		t := float64(k) * interval
		for idx+1 < len(timeline) && timeline[idx+1].Time <= t+timeEpsilon {
			idx++
		}
		state := timeline[idx].State
		if n := len(frames); n > 0 && frames[n-1].State == state {
			frames[n-1].Duration += interval
		} else {
			frames = append(frames, Frame{Duration: interval, State: state})
		}
	}
	return frames
}

// OptimalFPS picks the smallest whole frame rate that keeps every pair of
// consecutive snapshots in distinct ticks: at least 1/(minimum gap),
// capped at maxFPS. A timeline with no measurable gap gets defaultFPS.
func OptimalFPS(timeline []TimelineEvent, maxFPS, defaultFPS float64) float64 {
	minGap := math.Inf(1)
	for i := 1; i < len(timeline); i++ {
		if gap := timeline[i].Time - timeline[i-1].Time; gap > 0 && gap < minGap {
			minGap = gap
		}
	}
	if math.IsInf(minGap, 1) {
		return defaultFPS
	}
	fps := math.Ceil(1/minGap - timeEpsilon)
	if fps < 1 {
		fps = 1
	}
	if fps > maxFPS {
		fps = maxFPS
	}
	return fps
}
