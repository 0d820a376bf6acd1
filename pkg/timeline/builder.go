package timeline

import (
	"math"
	"sort"
	"time"

	"openf1dashboard/pkg/model"
	"openf1dashboard/pkg/openf1"
)

const (
	// minEligibleLaps is the completed-lap count at or below which a driver
	// is treated as a non-finisher and excluded from every frame.
	minEligibleLaps = 3

	// maxFrameCount caps derivation cost regardless of race length.
	maxFrameCount = 100

	// positionBiasBase and positionBiasStep give higher-placed drivers a
	// barely perceptible head start: bias = (20 - position) * 0.002.
	positionBiasBase = 20
	positionBiasStep = 0.002

	// progressFloorRatio floors each driver at 0.8x the global frame
	// progress so nobody visually stalls far behind the timeline.
	progressFloorRatio = 0.8

	// minProgress keeps every driver visible on the replay strip.
	minProgress = 0.01
)

// Config carries the tolerance windows used to correlate the independently
// sampled time series. The values are empirically chosen, not derived; keep
// them configurable.
type Config struct {
	// PositionTolerance matches a position sample to a lap completion.
	PositionTolerance time.Duration
	// FlagWindow attaches a race-control event to a frame.
	FlagWindow time.Duration
	// LocationTolerance matches a location ping to a position sample.
	LocationTolerance time.Duration
}

func DefaultConfig() Config {
	return Config{
		PositionTolerance: 60 * time.Second,
		FlagWindow:        30 * time.Second,
		LocationTolerance: 5 * time.Second,
	}
}

// Input is one session's raw record set. All fields are treated as
// immutable; Build never mutates them.
type Input struct {
	Drivers     []openf1.Driver
	Positions   []openf1.PositionSample
	Laps        []openf1.Lap
	Grid        map[int]int // driver number -> starting grid position
	RaceControl []openf1.RaceControlEvent
}

// Builder derives a synthetic, fully materialized race-replay timeline from
// one session's records. It holds no state across calls: identical inputs
// always produce identical frames.
type Builder struct {
	cfg Config
}

func NewBuilder(cfg Config) *Builder {
	if cfg.PositionTolerance == 0 {
		cfg.PositionTolerance = DefaultConfig().PositionTolerance
	}
	if cfg.FlagWindow == 0 {
		cfg.FlagWindow = DefaultConfig().FlagWindow
	}
	if cfg.LocationTolerance == 0 {
		cfg.LocationTolerance = DefaultConfig().LocationTolerance
	}
	return &Builder{cfg: cfg}
}

// lapEvent is one driver's lap completion placed on the global clock.
type lapEvent struct {
	driverNumber int
	lapNumber    int
	completedAt  time.Time
	cumulative   float64
	position     int
	pitOut       bool
	lapTime      *float64
	sector1      *float64
	sector2      *float64
	sector3      *float64
}

// driverState is the per-driver accumulator advanced by the event fold. It
// is copied per frame so every frame is an independent snapshot.
type driverState struct {
	lapsCompleted int
	cumulative    float64
	position      int
	pitStops      int
	inPit         bool
	baseline      float64
	lastLap       *float64
	lastSector1   *float64
	lastSector2   *float64
	lastSector3   *float64
}

// Build produces the ordered frame sequence for one session. With no
// completed laps it degrades to a single baseline frame (grid order only);
// with no eligible drivers it returns an empty list.
func (b *Builder) Build(in Input) []model.TimelineFrame {
	byNumber := map[int]openf1.Driver{}
	for _, d := range in.Drivers {
		byNumber[d.DriverNumber] = d
	}

	completed := map[int][]openf1.Lap{}
	totalLaps := 0
	for _, lap := range in.Laps {
		if lap.LapNumber > totalLaps {
			totalLaps = lap.LapNumber
		}
		if lap.LapDuration == nil {
			continue
		}
		completed[lap.DriverNumber] = append(completed[lap.DriverNumber], lap)
	}

	eligible := []int{}
	for number := range byNumber {
		if len(completed[number]) > minEligibleLaps {
			eligible = append(eligible, number)
		}
	}
	sort.Ints(eligible)

	if len(in.Laps) == 0 || totalLaps == 0 {
		return b.baselineFrame(in, byNumber)
	}
	if len(eligible) == 0 {
		return []model.TimelineFrame{}
	}

	positionsByDriver := map[int][]openf1.PositionSample{}
	for _, p := range in.Positions {
		positionsByDriver[p.DriverNumber] = append(positionsByDriver[p.DriverNumber], p)
	}

	events := []lapEvent{}
	for _, number := range eligible {
		laps := append([]openf1.Lap{}, completed[number]...)
		sort.Slice(laps, func(i, j int) bool {
			return laps[i].LapNumber < laps[j].LapNumber
		})
		cumulative := 0.0
		for _, lap := range laps {
			cumulative += *lap.LapDuration
			completedAt := lap.DateStart.Add(time.Duration(*lap.LapDuration * float64(time.Second)))
			position, ok := b.nearestPosition(positionsByDriver[number], completedAt)
			if !ok {
				position = gridPosition(in.Grid, number)
			}
			events = append(events, lapEvent{
				driverNumber: number,
				lapNumber:    lap.LapNumber,
				completedAt:  completedAt,
				cumulative:   cumulative,
				position:     position,
				pitOut:       lap.IsPitOutLap,
				lapTime:      lap.LapDuration,
				sector1:      lap.Sector1,
				sector2:      lap.Sector2,
				sector3:      lap.Sector3,
			})
		}
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].completedAt.Before(events[j].completedAt)
	})

	frameCount := 2 * totalLaps
	if frameCount > maxFrameCount {
		frameCount = maxFrameCount
	}
	if frameCount < 1 {
		frameCount = 1
	}

	start := events[0].completedAt
	end := events[len(events)-1].completedAt
	if !end.After(start) {
		end = start.Add(time.Second)
	}

	states := map[int]driverState{}
	for _, number := range eligible {
		states[number] = driverState{position: gridPosition(in.Grid, number)}
	}

	frames := make([]model.TimelineFrame, 0, frameCount)
	applied := 0
	for i := 0; i < frameCount; i++ {
		t := frameTime(start, end, i, frameCount)

		// advance every not-yet-applied lap completion up to t into a fresh
		// snapshot; in-pit marks only the frame where the pit-out lap landed
		next := make(map[int]driverState, len(states))
		for number, s := range states {
			s.inPit = false
			next[number] = s
		}
		for applied < len(events) && !events[applied].completedAt.After(t) {
			ev := events[applied]
			s := next[ev.driverNumber]
			s.lapsCompleted = ev.lapNumber
			s.cumulative = ev.cumulative
			s.position = ev.position
			s.lastLap = ev.lapTime
			s.lastSector1 = ev.sector1
			s.lastSector2 = ev.sector2
			s.lastSector3 = ev.sector3
			if ev.pitOut {
				s.pitStops++
				s.inPit = true
			}
			next[ev.driverNumber] = s
			applied++
		}

		globalProgress := float64(i) / float64(frameCount)
		frame := b.buildFrame(t, totalLaps, eligible, byNumber, next, globalProgress, in.RaceControl)
		frames = append(frames, frame)
		states = next
	}
	return frames
}

func (b *Builder) buildFrame(t time.Time, totalLaps int, eligible []int, byNumber map[int]openf1.Driver, states map[int]driverState, globalProgress float64, raceControl []openf1.RaceControlEvent) model.TimelineFrame {
	// rank by tracked position, stable on driver number, then densify 1..N
	ranked := append([]int{}, eligible...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return states[ranked[i]].position < states[ranked[j]].position
	})

	leaderLap := 0
	drivers := make([]model.DriverFrameState, 0, len(ranked))
	for rank, number := range ranked {
		s := states[number]
		position := rank + 1

		bias := float64(positionBiasBase-position) * positionBiasStep
		progress := float64(s.lapsCompleted)/float64(totalLaps) + bias
		progress = math.Min(progress, 1)
		progress = math.Max(progress, progressFloorRatio*globalProgress)
		progress = math.Max(progress, s.baseline)
		progress = math.Max(progress, minProgress)

		s.baseline = progress
		states[number] = s

		if s.lapsCompleted > leaderLap {
			leaderLap = s.lapsCompleted
		}

		d := byNumber[number]
		drivers = append(drivers, model.DriverFrameState{
			DriverNumber: number,
			FullName:     d.FullName,
			NameAcronym:  d.NameAcronym,
			TeamName:     d.TeamName,
			TeamColour:   d.TeamColour,
			Position:     position,
			Progress:     progress,
			CurrentLap:   s.lapsCompleted,
			PitStops:     s.pitStops,
			InPit:        s.inPit,
			LastLapTime:  s.lastLap,
			LastSector1:  s.lastSector1,
			LastSector2:  s.lastSector2,
			LastSector3:  s.lastSector3,
		})
	}

	return model.TimelineFrame{
		Timestamp:   t,
		LapNumber:   leaderLap,
		TotalLaps:   totalLaps,
		Drivers:     drivers,
		ActiveFlags: b.activeFlags(raceControl, t),
	}
}

// baselineFrame covers the no-laps-yet edge: everyone sits on the grid with
// floor progress. Without drivers there is nothing to show at all.
func (b *Builder) baselineFrame(in Input, byNumber map[int]openf1.Driver) []model.TimelineFrame {
	if len(byNumber) == 0 {
		return []model.TimelineFrame{}
	}

	numbers := make([]int, 0, len(byNumber))
	for number := range byNumber {
		numbers = append(numbers, number)
	}
	sort.SliceStable(numbers, func(i, j int) bool {
		return gridPosition(in.Grid, numbers[i]) < gridPosition(in.Grid, numbers[j])
	})

	t := time.Time{}
	for _, p := range in.Positions {
		if t.IsZero() || p.Date.Before(t) {
			t = p.Date.Time
		}
	}

	drivers := make([]model.DriverFrameState, 0, len(numbers))
	for rank, number := range numbers {
		d := byNumber[number]
		drivers = append(drivers, model.DriverFrameState{
			DriverNumber: number,
			FullName:     d.FullName,
			NameAcronym:  d.NameAcronym,
			TeamName:     d.TeamName,
			TeamColour:   d.TeamColour,
			Position:     rank + 1,
			Progress:     minProgress,
			CurrentLap:   0,
		})
	}

	return []model.TimelineFrame{{
		Timestamp:   t,
		LapNumber:   0,
		TotalLaps:   0,
		Drivers:     drivers,
		ActiveFlags: b.activeFlags(in.RaceControl, t),
	}}
}

// nearestPosition finds the position sample closest in time to the lap
// completion, within the configured tolerance.
func (b *Builder) nearestPosition(samples []openf1.PositionSample, at time.Time) (int, bool) {
	best := 0
	bestDelta := time.Duration(math.MaxInt64)
	for _, s := range samples {
		delta := s.Date.Sub(at)
		if delta < 0 {
			delta = -delta
		}
		if delta < bestDelta {
			bestDelta = delta
			best = s.Position
		}
	}
	if bestDelta <= b.cfg.PositionTolerance {
		return best, true
	}
	return 0, false
}

func (b *Builder) activeFlags(events []openf1.RaceControlEvent, t time.Time) []model.FlagEvent {
	flags := []model.FlagEvent{}
	for _, ev := range events {
		delta := ev.Date.Sub(t)
		if delta < 0 {
			delta = -delta
		}
		if delta > b.cfg.FlagWindow {
			continue
		}
		if ev.Flag == "" && ev.Category != "Flag" {
			continue
		}
		flags = append(flags, model.FlagEvent{
			Date:         ev.Date.Time,
			Flag:         ev.Flag,
			Category:     ev.Category,
			DriverNumber: ev.DriverNumber,
			Message:      ev.Message,
		})
	}
	return flags
}

func frameTime(start, end time.Time, i, frameCount int) time.Time {
	if frameCount <= 1 {
		return start
	}
	span := end.Sub(start)
	return start.Add(time.Duration(int64(span) * int64(i) / int64(frameCount-1)))
}

func gridPosition(grid map[int]int, number int) int {
	if p, ok := grid[number]; ok && p > 0 {
		return p
	}
	return number
}
