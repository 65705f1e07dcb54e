package main

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// TestScreenshot verifies a screenshot is the final timeline state
func TestScreenshot(t *testing.T) {
	stateA := &ScreenState{}
	stateB := &ScreenState{}
	frame := Screenshot([]TimelineEvent{{Time: 0, State: stateA}, {Time: 1.2, State: stateB}})
	if frame.State != stateB {
		t.Error("screenshot did not pick the final state")
	}
	if frame.Duration != 0 {
		t.Errorf("screenshot duration = %v, want 0", frame.Duration)
	}
}

// TestSampleAnimationHoldsLast verifies ticks between snapshots repeat
// the previous state and coalesce into one frame
func TestSampleAnimationHoldsLast(t *testing.T) {
	stateA := &ScreenState{}
	stateB := &ScreenState{}
	timeline := []TimelineEvent{
		{Time: 0, State: stateA},
		{Time: 0.35, State: stateB},
	}

	frames := SampleAnimation(timeline, 10)
	if len(frames) != 2 {
		t.Fatalf("len = %d, want 2", len(frames))
	}
	if frames[0].State != stateA || !almostEqual(frames[0].Duration, 0.4) {
		t.Errorf("frame 0 = {%v, A? %v}, want {0.4, A}", frames[0].Duration, frames[0].State == stateA)
	}
	if frames[1].State != stateB || !almostEqual(frames[1].Duration, 0.1) {
		t.Errorf("frame 1 = {%v, B? %v}, want {0.1, B}", frames[1].Duration, frames[1].State == stateB)
	}
}

// TestSampleAnimationTickOnBoundary verifies a snapshot landing exactly
// on a tick shows starting at that tick
func TestSampleAnimationTickOnBoundary(t *testing.T) {
	stateA := &ScreenState{}
	stateB := &ScreenState{}
	timeline := []TimelineEvent{
		{Time: 0, State: stateA},
		{Time: 0.2, State: stateB},
	}

	frames := SampleAnimation(timeline, 10)
	if len(frames) != 2 {
		t.Fatalf("len = %d, want 2", len(frames))
	}
	if !almostEqual(frames[0].Duration, 0.2) || !almostEqual(frames[1].Duration, 0.1) {
		t.Errorf("durations = [%v, %v], want [0.2, 0.1]", frames[0].Duration, frames[1].Duration)
	}
}

// TestSampleAnimationSingleSnapshot verifies a still timeline yields one
// frame of one tick
func TestSampleAnimationSingleSnapshot(t *testing.T) {
	stateA := &ScreenState{}
	frames := SampleAnimation([]TimelineEvent{{Time: 0, State: stateA}}, 10)
	if len(frames) != 1 {
		t.Fatalf("len = %d, want 1", len(frames))
	}
	if frames[0].State != stateA || !almostEqual(frames[0].Duration, 0.1) {
		t.Errorf("frame = {%v}, want single 0.1s frame", frames[0].Duration)
	}
}

// TestSampleAnimationPreservesTotalTime verifies summed frame durations
// cover every tick of the recording
func TestSampleAnimationPreservesTotalTime(t *testing.T) {
	timeline := []TimelineEvent{
		{Time: 0, State: &ScreenState{}},
		{Time: 0.35, State: &ScreenState{}},
		{Time: 0.6, State: &ScreenState{}},
	}
	frames := SampleAnimation(timeline, 7)

	var sum float64
	for _, f := range frames {
		sum += f.Duration
	}
	// 0.6s at 7 fps is 6 ticks including the one at zero
	if !almostEqual(sum, 6.0/7.0) {
		t.Errorf("total duration = %v, want %v", sum, 6.0/7.0)
	}
}

// TestSampleAnimationRoundTrip verifies sampling is idempotent: frames
// re-laid on a timeline and resampled at the same rate come back equal
func TestSampleAnimationRoundTrip(t *testing.T) {
	timeline := []TimelineEvent{
		{Time: 0, State: &ScreenState{}},
		{Time: 0.35, State: &ScreenState{}},
		{Time: 0.62, State: &ScreenState{}},
	}
	frames := SampleAnimation(timeline, 10)

	rebuilt := []TimelineEvent{{Time: 0, State: frames[0].State}}
	acc := 0.0
	for i := 1; i < len(frames); i++ {
		acc += frames[i-1].Duration
		rebuilt = append(rebuilt, TimelineEvent{Time: acc, State: frames[i].State})
	}
	again := SampleAnimation(rebuilt, 10)

	if len(again) != len(frames) {
		t.Fatalf("resampled len = %d, want %d", len(again), len(frames))
	}
	for i := range frames {
		if again[i].State != frames[i].State || !almostEqual(again[i].Duration, frames[i].Duration) {
			t.Errorf("frame %d = {%v}, want {%v}", i, again[i].Duration, frames[i].Duration)
		}
	}
}

// TestOptimalFPS verifies the auto rate resolves the smallest gap, caps
// at the maximum and falls back when there is nothing to measure
func TestOptimalFPS(t *testing.T) {
	at := func(times ...float64) []TimelineEvent {
		tl := make([]TimelineEvent, len(times))
		for i, tm := range times {
			tl[i] = TimelineEvent{Time: tm, State: &ScreenState{}}
		}
		return tl
	}

	tests := []struct {
		times []float64
		want  float64
	}{
		{[]float64{0, 0.1, 0.2}, 10},
		{[]float64{0, 0.01}, 30},
		{[]float64{0}, 10},
		{[]float64{0, 1.0 / 3.0}, 3},
		{[]float64{0, 10}, 1},
		{[]float64{0, 0.5, 0.6}, 10},
	}
	for _, tt := range tests {
		if got := OptimalFPS(at(tt.times...), DefaultMaxFPS, DefaultFPS); got != tt.want {
			t.Errorf("OptimalFPS(%v) = %v, want %v", tt.times, got, tt.want)
		}
	}
}
