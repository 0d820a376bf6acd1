package timeline

import (
	"math"
	"testing"

	"openf1dashboard/pkg/model"
)

func motionFrames() (model.TimelineFrame, model.TimelineFrame) {
	prev := model.TimelineFrame{Drivers: []model.DriverFrameState{
		{DriverNumber: 1, Position: 1, Progress: 0.40},
		{DriverNumber: 44, Position: 2, Progress: 0.38},
	}}
	cur := model.TimelineFrame{Drivers: []model.DriverFrameState{
		{DriverNumber: 44, Position: 1, Progress: 0.46},
		{DriverNumber: 1, Position: 2, Progress: 0.44},
	}}
	return prev, cur
}

func TestInterpolate_endpoints(t *testing.T) {
	prev, cur := motionFrames()

	atZero := Interpolate(prev, cur, 0)
	for _, d := range atZero.Drivers {
		want := findState(t, prev, d.DriverNumber)
		if d.Progress != want.Progress {
			t.Errorf("ratio 0 driver %d: progress %f, want prev %f", d.DriverNumber, d.Progress, want.Progress)
		}
		if d.Position != float64(want.Position) {
			t.Errorf("ratio 0 driver %d: position %f, want prev %d", d.DriverNumber, d.Position, want.Position)
		}
	}

	atOne := Interpolate(prev, cur, 1)
	for _, d := range atOne.Drivers {
		want := findState(t, cur, d.DriverNumber)
		if d.Progress != want.Progress {
			t.Errorf("ratio 1 driver %d: progress %f, want cur %f", d.DriverNumber, d.Progress, want.Progress)
		}
		if d.Position != float64(want.Position) {
			t.Errorf("ratio 1 driver %d: position %f, want cur %d", d.DriverNumber, d.Position, want.Position)
		}
	}
}

func TestInterpolate_midpointAndClamping(t *testing.T) {
	prev, cur := motionFrames()

	mid := Interpolate(prev, cur, 0.5)
	for _, d := range mid.Drivers {
		p := findState(t, prev, d.DriverNumber)
		c := findState(t, cur, d.DriverNumber)
		wantProgress := (p.Progress + c.Progress) / 2
		if math.Abs(d.Progress-wantProgress) > 1e-9 {
			t.Errorf("driver %d midpoint progress %f, want %f", d.DriverNumber, d.Progress, wantProgress)
		}
		wantPosition := (float64(p.Position) + float64(c.Position)) / 2
		if math.Abs(d.Position-wantPosition) > 1e-9 {
			t.Errorf("driver %d midpoint position %f, want %f", d.DriverNumber, d.Position, wantPosition)
		}
	}

	if got := Interpolate(prev, cur, -3).Ratio; got != 0 {
		t.Errorf("negative ratio should clamp to 0, found %f", got)
	}
	if got := Interpolate(prev, cur, 7).Ratio; got != 1 {
		t.Errorf("ratio above 1 should clamp to 1, found %f", got)
	}
}

func TestInterpolate_positionDelta(t *testing.T) {
	prev, cur := motionFrames()

	frame := Interpolate(prev, cur, 0.5)
	for _, d := range frame.Drivers {
		switch d.DriverNumber {
		case 44:
			if d.PositionDelta != 1 {
				t.Errorf("driver 44 gained a place, delta should be 1, found %d", d.PositionDelta)
			}
		case 1:
			if d.PositionDelta != -1 {
				t.Errorf("driver 1 lost a place, delta should be -1, found %d", d.PositionDelta)
			}
		}
	}
}

func TestInterpolate_newDriverUsesCurrentState(t *testing.T) {
	prev, cur := motionFrames()
	cur.Drivers = append(cur.Drivers, model.DriverFrameState{DriverNumber: 81, Position: 3, Progress: 0.30})

	frame := Interpolate(prev, cur, 0.25)
	for _, d := range frame.Drivers {
		if d.DriverNumber != 81 {
			continue
		}
		if d.Progress != 0.30 || d.Position != 3 || d.PositionDelta != 0 {
			t.Errorf("driver only in cur should hold cur state, found %+v", d)
		}
	}
}

func findState(t *testing.T, frame model.TimelineFrame, number int) model.DriverFrameState {
	t.Helper()
	for _, d := range frame.Drivers {
		if d.DriverNumber == number {
			return d
		}
	}
	t.Fatalf("driver %d not in frame", number)
	return model.DriverFrameState{}
}
