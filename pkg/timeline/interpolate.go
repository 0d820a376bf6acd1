package timeline

import (
	"openf1dashboard/pkg/model"
)

// Interpolate produces smooth sub-frame motion between two materialized
// frames. Ratio 0 reproduces prev, ratio 1 reproduces cur; values outside
// [0,1] are clamped. Drivers appearing only in cur are reported at their cur
// state. PositionDelta surfaces places gained between the two frames so the
// caller can highlight overtakes.
func Interpolate(prev, cur model.TimelineFrame, ratio float64) model.InterpolatedFrame {
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}

	prevByNumber := map[int]model.DriverFrameState{}
	for _, d := range prev.Drivers {
		prevByNumber[d.DriverNumber] = d
	}

	drivers := make([]model.DriverMotion, 0, len(cur.Drivers))
	for _, d := range cur.Drivers {
		p, ok := prevByNumber[d.DriverNumber]
		if !ok {
			p = d
		}
		drivers = append(drivers, model.DriverMotion{
			DriverNumber:  d.DriverNumber,
			Progress:      p.Progress + (d.Progress-p.Progress)*ratio,
			Position:      float64(p.Position) + (float64(d.Position)-float64(p.Position))*ratio,
			PositionDelta: p.Position - d.Position,
		})
	}

	return model.InterpolatedFrame{Ratio: ratio, Drivers: drivers}
}
