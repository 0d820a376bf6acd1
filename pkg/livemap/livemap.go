package livemap

import (
	"context"
	"encoding/xml"
	"image/color"
	"math"
	"strconv"
	"time"

	"github.com/llgcode/draw2d/draw2dsvg"
	"github.com/pkg/errors"

	"openf1dashboard/pkg/model"
	"openf1dashboard/pkg/openf1"
)

const (
	canvasWidth  = 800.0
	canvasHeight = 600.0
	margin       = 40.0
	carRadius    = 8.0
)

var trackColour = color.RGBA{0x50, 0x50, 0x50, 0xff}

// Manager renders the live track map: the circuit outline traced from one
// reference driver's location pings, with the latest car dots overlaid in
// team colours. Dots only count when the ping is within the location
// tolerance of the snapshot time.
type Manager struct {
	api       *openf1.Client
	tolerance time.Duration
}

func NewManager(api *openf1.Client, tolerance time.Duration) *Manager {
	if tolerance == 0 {
		tolerance = 5 * time.Second
	}
	return &Manager{api: api, tolerance: tolerance}
}

// RenderSVG draws the current session onto a fresh SVG document.
func (m *Manager) RenderSVG(ctx context.Context, snapshot model.SessionSnapshot) (string, error) {
	svg := draw2dsvg.NewSvg()
	svg.Width = strconv.Itoa(int(canvasWidth))
	svg.Height = strconv.Itoa(int(canvasHeight))
	gc := draw2dsvg.NewGraphicContext(svg)

	if snapshot.Session.SessionKey != 0 && len(snapshot.Drivers) > 0 {
		key := strconv.Itoa(snapshot.Session.SessionKey)
		reference := snapshot.Drivers[0].DriverNumber

		outline, err := m.api.Locations(ctx, openf1.Filters{SessionKey: key, DriverNumber: reference})
		if err != nil {
			return "", errors.Wrap(err, "fetching track outline locations")
		}

		since := snapshot.LastUpdated.Add(-m.tolerance)
		recent, err := m.api.Locations(ctx, openf1.Filters{
			SessionKey: key,
			DateGT:     since.UTC().Format("2006-01-02T15:04:05"),
		})
		if err != nil {
			return "", errors.Wrap(err, "fetching recent car locations")
		}

		if len(outline) > 1 {
			project := projector(outline)
			drawOutline(gc, outline, project)
			drawCars(gc, latestByDriver(recent), snapshot.Drivers, project)
		}
	}

	data, err := xml.Marshal(svg)
	if err != nil {
		return "", errors.Wrap(err, "marshalling svg")
	}
	return xml.Header + string(data), nil
}

// projector maps circuit-plan coordinates into the canvas, preserving aspect
// ratio and flipping Y so north is up.
func projector(outline []openf1.LocationSample) func(x, y float64) (float64, float64) {
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, p := range outline {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}
	spanX := maxX - minX
	spanY := maxY - minY
	if spanX == 0 {
		spanX = 1
	}
	if spanY == 0 {
		spanY = 1
	}
	scale := math.Min((canvasWidth-2*margin)/spanX, (canvasHeight-2*margin)/spanY)
	return func(x, y float64) (float64, float64) {
		px := margin + (x-minX)*scale
		py := canvasHeight - margin - (y-minY)*scale
		return px, py
	}
}

func drawOutline(gc *draw2dsvg.GraphicContext, outline []openf1.LocationSample, project func(x, y float64) (float64, float64)) {
	gc.SetStrokeColor(trackColour)
	gc.SetLineWidth(4)
	x, y := project(outline[0].X, outline[0].Y)
	gc.MoveTo(x, y)
	for _, p := range outline[1:] {
		x, y = project(p.X, p.Y)
		gc.LineTo(x, y)
	}
	gc.Stroke()
}

func drawCars(gc *draw2dsvg.GraphicContext, latest map[int]openf1.LocationSample, drivers []openf1.Driver, project func(x, y float64) (float64, float64)) {
	colours := map[int]color.RGBA{}
	for _, d := range drivers {
		colours[d.DriverNumber] = parseTeamColour(d.TeamColour)
	}
	for number, loc := range latest {
		x, y := project(loc.X, loc.Y)
		c, ok := colours[number]
		if !ok {
			c = color.RGBA{0xff, 0xff, 0xff, 0xff}
		}
		gc.SetFillColor(c)
		gc.SetStrokeColor(color.RGBA{0x00, 0x00, 0x00, 0xff})
		gc.SetLineWidth(1)
		gc.MoveTo(x+carRadius, y)
		gc.ArcTo(x, y, carRadius, carRadius, 0, 2*math.Pi)
		gc.Close()
		gc.FillStroke()
	}
}

func latestByDriver(samples []openf1.LocationSample) map[int]openf1.LocationSample {
	latest := map[int]openf1.LocationSample{}
	for _, s := range samples {
		prev, ok := latest[s.DriverNumber]
		if !ok || s.Date.After(prev.Date.Time) {
			latest[s.DriverNumber] = s
		}
	}
	return latest
}

// parseTeamColour reads the API's RRGGBB hex string; unknown values render
// white.
func parseTeamColour(hex string) color.RGBA {
	if len(hex) != 6 {
		return color.RGBA{0xff, 0xff, 0xff, 0xff}
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{0xff, 0xff, 0xff, 0xff}
	}
	return color.RGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 0xff,
	}
}
