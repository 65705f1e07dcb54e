package main

// TimelineEvent pairs a clamped timestamp with the screen state captured
// at that instant.
type TimelineEvent struct {
	Time  float64
	State *ScreenState
}

// BuildTimeline replays the cast's output events through parser and
// screen, capturing a snapshot whenever an event visibly changed the grid
// or cursor. Gaps between consecutive event timestamps larger than
// idleLimit are clamped to it before computing downstream timestamps;
// idleLimit <= 0 disables clamping. The returned timeline always starts
// with the initial screen at time 0 and its timestamps are strictly
// increasing: a change landing on the previous snapshot's timestamp
// replaces it.
func BuildTimeline(events []CastEvent, parser *Parser, screen *Screen, idleLimit float64) []TimelineEvent {
	timeline := []TimelineEvent{{Time: 0, State: screen.Snapshot()}}
	lastGen := screen.Gen()

	clock := 0.0
	prev := 0.0
	for _, ev := range events {
		if ev.Stream != "o" {
			continue
		}
		gap := ev.Time - prev
		if gap < 0 {
			gap = 0
		}
		if idleLimit > 0 && gap > idleLimit {
			gap = idleLimit
		}
		clock += gap
		prev = ev.Time

		for _, op := range parser.Parse([]byte(ev.Data)) {
			screen.Apply(op)
		}
		if screen.Gen() == lastGen {
			continue
		}
		lastGen = screen.Gen()

		state := screen.Snapshot()
		if last := &timeline[len(timeline)-1]; last.Time == clock {
			last.State = state
		} else {
			timeline = append(timeline, TimelineEvent{Time: clock, State: state})
		}
	}
	return timeline
}
