package timeline

import (
	"testing"
	"time"

	"openf1dashboard/pkg/model"
	"openf1dashboard/pkg/openf1"
)

var raceStart = time.Date(2024, 5, 26, 13, 0, 0, 0, time.UTC)

func seconds(v float64) *float64 {
	return &v
}

func testDriver(number int, team string) openf1.Driver {
	return openf1.Driver{
		DriverNumber: number,
		FullName:     "Driver " + string(rune('A'+number%26)),
		NameAcronym:  "DRV",
		TeamName:     team,
	}
}

// testLaps builds lapCount completed laps of 90s each, staggered per driver
// so completions interleave on the global clock.
func testLaps(number, lapCount int, stagger time.Duration) []openf1.Lap {
	laps := make([]openf1.Lap, 0, lapCount)
	for i := 1; i <= lapCount; i++ {
		start := raceStart.Add(time.Duration(i-1)*90*time.Second + stagger)
		laps = append(laps, openf1.Lap{
			DriverNumber: number,
			LapNumber:    i,
			LapDuration:  seconds(90),
			Sector1:      seconds(30),
			Sector2:      seconds(30),
			Sector3:      seconds(30),
			DateStart:    openf1.Time{Time: start},
		})
	}
	return laps
}

// raceInput builds a 5-driver, 10-lap race with grid fallback positions.
func raceInput() Input {
	numbers := []int{1, 4, 16, 44, 81}
	in := Input{
		Grid: map[int]int{1: 1, 4: 2, 16: 3, 44: 4, 81: 5},
	}
	for i, number := range numbers {
		in.Drivers = append(in.Drivers, testDriver(number, "Team"))
		in.Laps = append(in.Laps, testLaps(number, 10, time.Duration(i)*2*time.Second)...)
	}
	return in
}

func TestBuild_frameCountAndSpacing(t *testing.T) {
	b := NewBuilder(DefaultConfig())
	frames := b.Build(raceInput())

	// 10 laps -> min(2*10, 100) frames
	if len(frames) != 20 {
		t.Fatalf("expected 20 frames but found %d", len(frames))
	}

	var prevDelta time.Duration
	for i := 1; i < len(frames); i++ {
		if frames[i].Timestamp.Before(frames[i-1].Timestamp) {
			t.Errorf("frame %d timestamp regresses", i)
		}
		delta := frames[i].Timestamp.Sub(frames[i-1].Timestamp)
		if i > 1 {
			diff := delta - prevDelta
			if diff < 0 {
				diff = -diff
			}
			if diff > time.Millisecond {
				t.Errorf("frames not evenly spaced: delta %s vs %s", delta, prevDelta)
			}
		}
		prevDelta = delta
	}
}

func TestBuild_monotonicProgressAndBounds(t *testing.T) {
	b := NewBuilder(DefaultConfig())
	frames := b.Build(raceInput())

	previous := map[int]float64{}
	for i, frame := range frames {
		for _, d := range frame.Drivers {
			if d.Progress < 0.01 || d.Progress > 1.0 {
				t.Errorf("frame %d driver %d progress %f out of [0.01, 1]", i, d.DriverNumber, d.Progress)
			}
			if prev, ok := previous[d.DriverNumber]; ok && d.Progress < prev {
				t.Errorf("frame %d driver %d progress regressed: %f < %f", i, d.DriverNumber, d.Progress, prev)
			}
			previous[d.DriverNumber] = d.Progress
		}
	}

	last := frames[len(frames)-1]
	for _, d := range last.Drivers {
		if d.Progress != 1.0 {
			t.Errorf("driver %d should finish at progress 1.0, found %f", d.DriverNumber, d.Progress)
		}
		if d.CurrentLap != 10 {
			t.Errorf("driver %d should finish on lap 10, found %d", d.DriverNumber, d.CurrentLap)
		}
	}
}

func TestBuild_positionsAreDensePermutation(t *testing.T) {
	b := NewBuilder(DefaultConfig())
	frames := b.Build(raceInput())

	for i, frame := range frames {
		if len(frame.Drivers) != 5 {
			t.Fatalf("frame %d: expected 5 drivers but found %d", i, len(frame.Drivers))
		}
		seen := map[int]bool{}
		for _, d := range frame.Drivers {
			seen[d.Position] = true
		}
		for p := 1; p <= 5; p++ {
			if !seen[p] {
				t.Errorf("frame %d: missing position %d", i, p)
			}
		}
	}
}

func TestBuild_eligibilityBoundary(t *testing.T) {
	in := raceInput()
	// exactly 3 completed laps: excluded; exactly 4: included
	in.Drivers = append(in.Drivers, testDriver(99, "TeamX"), testDriver(77, "TeamY"))
	in.Laps = append(in.Laps, testLaps(99, 3, time.Second)...)
	in.Laps = append(in.Laps, testLaps(77, 4, 3*time.Second)...)

	b := NewBuilder(DefaultConfig())
	frames := b.Build(in)

	for i, frame := range frames {
		if len(frame.Drivers) != 6 {
			t.Fatalf("frame %d: expected 6 eligible drivers but found %d", i, len(frame.Drivers))
		}
		for _, d := range frame.Drivers {
			if d.DriverNumber == 99 {
				t.Errorf("frame %d: driver with 3 laps must be excluded", i)
			}
		}
	}
}

func TestBuild_positionSamplesDriveOrder(t *testing.T) {
	in := raceInput()
	// put driver 81 in the lead at every lap completion
	for _, lap := range in.Laps {
		completed := lap.DateStart.Add(90 * time.Second)
		position := 5
		if lap.DriverNumber == 81 {
			position = 1
		}
		in.Positions = append(in.Positions, openf1.PositionSample{
			DriverNumber: lap.DriverNumber,
			Position:     position,
			Date:         openf1.Time{Time: completed},
		})
	}

	b := NewBuilder(DefaultConfig())
	frames := b.Build(in)

	last := frames[len(frames)-1]
	if last.Drivers[0].DriverNumber != 81 {
		t.Errorf("expected driver 81 leading the final frame, found %d", last.Drivers[0].DriverNumber)
	}
	if last.Drivers[0].Position != 1 {
		t.Errorf("leader should hold position 1, found %d", last.Drivers[0].Position)
	}
}

func TestBuild_gridFallbackWhenSamplesOutOfTolerance(t *testing.T) {
	in := raceInput()
	// one sample far outside the 60s window must not be matched
	in.Positions = []openf1.PositionSample{{
		DriverNumber: 1,
		Position:     5,
		Date:         openf1.Time{Time: raceStart.Add(6 * time.Hour)},
	}}

	b := NewBuilder(DefaultConfig())
	frames := b.Build(in)

	// grid has driver 1 first; the stale sample must not demote it
	first := frames[0]
	if first.Drivers[0].DriverNumber != 1 {
		t.Errorf("expected grid order to hold, leader is %d", first.Drivers[0].DriverNumber)
	}
}

func TestBuild_pitStopCounting(t *testing.T) {
	in := raceInput()
	for i := range in.Laps {
		if in.Laps[i].DriverNumber == 44 && in.Laps[i].LapNumber == 6 {
			in.Laps[i].IsPitOutLap = true
		}
	}

	b := NewBuilder(DefaultConfig())
	frames := b.Build(in)

	sawInPit := false
	for _, frame := range frames {
		for _, d := range frame.Drivers {
			if d.DriverNumber == 44 && d.InPit {
				sawInPit = true
			}
		}
	}
	if !sawInPit {
		t.Error("expected driver 44 to be marked in-pit on some frame")
	}

	last := frames[len(frames)-1]
	for _, d := range last.Drivers {
		if d.DriverNumber == 44 && d.PitStops != 1 {
			t.Errorf("expected 1 pit stop for driver 44, found %d", d.PitStops)
		}
		if d.DriverNumber == 1 && d.PitStops != 0 {
			t.Errorf("expected 0 pit stops for driver 1, found %d", d.PitStops)
		}
	}
}

func TestBuild_flagAttachment(t *testing.T) {
	in := raceInput()
	in.RaceControl = []openf1.RaceControlEvent{
		{
			Date:     openf1.Time{Time: raceStart.Add(90 * time.Second)},
			Category: "Flag",
			Flag:     "RED",
			Message:  "RED FLAG",
		},
		{
			Date:     openf1.Time{Time: raceStart.Add(90 * time.Second)},
			Category: "Other",
			Message:  "no flag content, must be ignored",
		},
	}

	b := NewBuilder(DefaultConfig())
	frames := b.Build(in)

	found := false
	for _, frame := range frames {
		for _, flag := range frame.ActiveFlags {
			if flag.Flag == "RED" {
				found = true
			}
			if flag.Message == "no flag content, must be ignored" {
				t.Error("non-flag event attached to a frame")
			}
			delta := flag.Date.Sub(frame.Timestamp)
			if delta < 0 {
				delta = -delta
			}
			if delta > DefaultConfig().FlagWindow {
				t.Errorf("flag attached outside the window: %s", delta)
			}
		}
	}
	if !found {
		t.Error("expected the red flag on at least one frame")
	}
}

func TestBuild_zeroLapsYieldsBaselineFrame(t *testing.T) {
	in := Input{
		Drivers: []openf1.Driver{testDriver(1, "A"), testDriver(44, "B")},
		Grid:    map[int]int{44: 1, 1: 2},
	}

	b := NewBuilder(DefaultConfig())
	frames := b.Build(in)

	if len(frames) != 1 {
		t.Fatalf("expected a single baseline frame but found %d", len(frames))
	}
	frame := frames[0]
	if len(frame.Drivers) != 2 {
		t.Fatalf("expected both drivers on the baseline frame, found %d", len(frame.Drivers))
	}
	if frame.Drivers[0].DriverNumber != 44 {
		t.Errorf("grid leader should be first, found %d", frame.Drivers[0].DriverNumber)
	}
	for _, d := range frame.Drivers {
		if d.Progress != 0.01 {
			t.Errorf("baseline progress should be 0.01, found %f", d.Progress)
		}
	}
}

func TestBuild_noEligibleDriversYieldsEmpty(t *testing.T) {
	in := Input{
		Drivers: []openf1.Driver{testDriver(1, "A")},
		Laps:    testLaps(1, 2, 0),
	}

	b := NewBuilder(DefaultConfig())
	frames := b.Build(in)

	if len(frames) != 0 {
		t.Fatalf("expected no frames for a session without eligible drivers, found %d", len(frames))
	}
}

func TestBuild_deterministic(t *testing.T) {
	b := NewBuilder(DefaultConfig())
	first := b.Build(raceInput())
	second := b.Build(raceInput())

	if len(first) != len(second) {
		t.Fatalf("frame counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if !framesEqual(first[i], second[i]) {
			t.Fatalf("frame %d differs between identical builds", i)
		}
	}
}

func framesEqual(a, b model.TimelineFrame) bool {
	if !a.Timestamp.Equal(b.Timestamp) || a.LapNumber != b.LapNumber || len(a.Drivers) != len(b.Drivers) {
		return false
	}
	for i := range a.Drivers {
		if a.Drivers[i].DriverNumber != b.Drivers[i].DriverNumber ||
			a.Drivers[i].Position != b.Drivers[i].Position ||
			a.Drivers[i].Progress != b.Drivers[i].Progress {
			return false
		}
	}
	return true
}
