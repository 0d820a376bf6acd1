package standings

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"openf1dashboard/pkg/helper"
	"openf1dashboard/pkg/model"
)

// RenderDrivers renders the driver championship as a rounded text table.
func RenderDrivers(s model.StandingsSnapshot) string {
	var b bytes.Buffer
	t := table.NewWriter()
	t.SetOutputMirror(&b)
	t.SetStyle(table.StyleRounded)
	t.SetTitle(fmt.Sprintf("Drivers %d (%d races)", s.Year, s.RacesCounted))
	t.AppendHeader(table.Row{"POS", "PIL", "TEAM", "PTS", "WIN", "POD"})
	for _, d := range s.Drivers {
		name := d.NameAcronym
		if name == "" {
			name = helper.GetDriverCodeName(d.FullName)
		}
		t.AppendRow(table.Row{d.Position, name, d.TeamName, d.Points, d.Wins, d.Podiums})
	}
	t.Render()
	return b.String()
}

// RenderConstructors renders the constructor championship, listing each
// team's contributing drivers with their individual points.
func RenderConstructors(s model.StandingsSnapshot) string {
	var b bytes.Buffer
	t := table.NewWriter()
	t.SetOutputMirror(&b)
	t.SetStyle(table.StyleRounded)
	t.SetTitle(fmt.Sprintf("Constructors %d", s.Year))
	t.AppendHeader(table.Row{"POS", "TEAM", "PTS", "WIN", "POD", "DRIVERS"})
	for _, c := range s.Constructors {
		t.AppendRow(table.Row{c.Position, c.TeamName, c.Points, c.Wins, c.Podiums, driverPointsSummary(c.DriverPoints)})
	}
	t.Render()
	return b.String()
}

func driverPointsSummary(points map[string]int) string {
	names := make([]string, 0, len(points))
	for name := range points {
		names = append(names, name)
	}
	sort.SliceStable(names, func(i, j int) bool {
		if points[names[i]] != points[names[j]] {
			return points[names[i]] > points[names[j]]
		}
		return names[i] < names[j]
	})
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s %d", helper.GetDriverCodeName(name), points[name]))
	}
	return strings.Join(parts, ", ")
}
