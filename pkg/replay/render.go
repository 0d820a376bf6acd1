package replay

import (
	"bytes"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"

	"openf1dashboard/pkg/helper"
	"openf1dashboard/pkg/model"
)

// RenderTiming renders one frame's classification with last lap and sector
// times. Used as the end-of-replay summary.
func RenderTiming(frame model.TimelineFrame) string {
	var b bytes.Buffer
	t := table.NewWriter()
	t.SetOutputMirror(&b)
	t.SetStyle(table.StyleRounded)
	t.SetTitle(fmt.Sprintf("Lap %d/%d", frame.LapNumber, frame.TotalLaps))
	t.AppendHeader(table.Row{"POS", "PIL", "LAP", "LAST", "S1", "S2", "S3", "PIT"})
	for _, d := range frame.Drivers {
		name := d.NameAcronym
		if name == "" {
			name = helper.GetDriverCodeName(d.FullName)
		}
		t.AppendRow(table.Row{
			d.Position,
			name,
			d.CurrentLap,
			helper.FormatLapTime(d.LastLapTime),
			helper.FormatSector(d.LastSector1),
			helper.FormatSector(d.LastSector2),
			helper.FormatSector(d.LastSector3),
			d.PitStops,
		})
	}
	t.Render()
	return b.String()
}
