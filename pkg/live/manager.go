package live

import (
	"context"
	"log"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"openf1dashboard/pkg/metrics"
	"openf1dashboard/pkg/model"
	"openf1dashboard/pkg/openf1"
	"openf1dashboard/pkg/pubsub"
	"openf1dashboard/pkg/timeline"
)

// TopicSnapshots carries the freshly derived session snapshot after every
// successful poll cycle.
const TopicSnapshots = "session-snapshots"

// TopicFlags carries newly seen race-control flag events.
const TopicFlags = "flag-events"

const cycleTimeout = 30 * time.Second

// Manager polls the OpenF1 API on a ticker, derives the replay timeline and
// publishes the result. Fetches within one cycle run concurrently and join
// all-or-nothing: any failure discards the cycle and the previous snapshot
// stays current. There is no queueing; each tick supersedes the last.
type Manager struct {
	ctx       context.Context
	mu        sync.Mutex
	api       *openf1.Client
	builder   *timeline.Builder
	snapshots *pubsub.PubSub[model.SessionSnapshot]
	flags     *pubsub.PubSub[model.FlagEvent]
	m         *metrics.Metrics

	sessionKey   string
	snapshot     model.SessionSnapshot
	lastFlagSeen time.Time
}

func NewManager(ctx context.Context, api *openf1.Client, builder *timeline.Builder, snapshots *pubsub.PubSub[model.SessionSnapshot], flags *pubsub.PubSub[model.FlagEvent], m *metrics.Metrics) *Manager {
	return &Manager{
		ctx:        ctx,
		api:        api,
		builder:    builder,
		snapshots:  snapshots,
		flags:      flags,
		m:          m,
		sessionKey: "latest",
	}
}

func (lm *Manager) Sync(ticker *time.Ticker, exitChan chan bool) {
	lm.doSync(time.Now())
	go func() {
		for {
			select {
			case <-exitChan:
				return
			case t := <-ticker.C:
				lm.doSync(t)
			}
		}
	}()
}

// SetSessionKey re-targets the poller ("latest" or a numeric key). The next
// tick rebuilds everything from scratch.
func (lm *Manager) SetSessionKey(key string) {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	if key != lm.sessionKey {
		lm.sessionKey = key
		lm.snapshot = model.SessionSnapshot{}
		lm.lastFlagSeen = time.Time{}
	}
}

// Current returns the snapshot from the last successful cycle. Zero value
// until one completes.
func (lm *Manager) Current() model.SessionSnapshot {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	return lm.snapshot
}

func (lm *Manager) doSync(t time.Time) {
	lm.mu.Lock()
	key := lm.sessionKey
	lm.mu.Unlock()

	log.Println("Refreshing session snapshot at: ", t)
	ctx, cancel := context.WithTimeout(lm.ctx, cycleTimeout)
	defer cancel()

	snapshot, err := lm.fetchAndDerive(ctx, key)
	if err != nil {
		log.Printf("Error refreshing session %q: %s", key, err.Error())
		if lm.m != nil {
			lm.m.IncFetchErrors()
		}
		return
	}
	if lm.m != nil {
		lm.m.IncPolls()
		lm.m.AddFramesBuilt(len(snapshot.Frames))
	}

	lm.mu.Lock()
	if key != lm.sessionKey {
		// the target session changed while fetching; this cycle is superseded
		lm.mu.Unlock()
		return
	}
	lm.snapshot = snapshot
	lm.mu.Unlock()

	lm.snapshots.Publish(TopicSnapshots, snapshot)
	lm.publishNewFlags(snapshot.RaceControl)
}

func (lm *Manager) fetchAndDerive(ctx context.Context, key string) (model.SessionSnapshot, error) {
	sessions, err := lm.api.Sessions(ctx, openf1.Filters{SessionKey: key})
	if err != nil {
		return model.SessionSnapshot{}, err
	}
	if len(sessions) == 0 {
		// no session matches: degenerate snapshot, not an error
		return model.SessionSnapshot{LastUpdated: time.Now().UTC()}, nil
	}
	session := sessions[len(sessions)-1]
	filter := openf1.Filters{SessionKey: strconv.Itoa(session.SessionKey)}

	var (
		drivers     []openf1.Driver
		positions   []openf1.PositionSample
		laps        []openf1.Lap
		raceControl []openf1.RaceControlEvent
		weather     []openf1.Weather
		grid        map[int]int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		drivers, err = lm.api.Drivers(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		positions, err = lm.api.Positions(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		laps, err = lm.api.Laps(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		raceControl, err = lm.api.RaceControl(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		weather, err = lm.api.Weather(gctx, filter)
		return err
	})
	g.Go(func() error {
		// a missing grid degrades to driver-number order, never fails a cycle
		grid = lm.fetchGrid(gctx, session)
		return nil
	})
	if err := g.Wait(); err != nil {
		return model.SessionSnapshot{}, err
	}

	if grid == nil {
		grid = openf1.QualifyingGrid(nil, nil, drivers)
	}

	frames := lm.builder.Build(timeline.Input{
		Drivers:     drivers,
		Positions:   positions,
		Laps:        laps,
		Grid:        grid,
		RaceControl: raceControl,
	})

	return model.SessionSnapshot{
		Session:     session,
		Drivers:     drivers,
		Frames:      frames,
		RaceControl: raceControl,
		Weather:     latestWeather(weather),
		LastUpdated: time.Now().UTC(),
	}, nil
}

// fetchGrid resolves the starting grid from the meeting's latest qualifying
// session. Any failure along the way falls back to nil (driver-number order).
func (lm *Manager) fetchGrid(ctx context.Context, session openf1.Session) map[int]int {
	meetingSessions, err := lm.api.Sessions(ctx, openf1.Filters{MeetingKey: session.MeetingKey})
	if err != nil {
		log.Printf("Error fetching meeting sessions for grid: %s", err.Error())
		return nil
	}
	quali, found := openf1.LatestQualifying(meetingSessions)
	if !found {
		return nil
	}
	qualiPositions, err := lm.api.Positions(ctx, openf1.Filters{SessionKey: strconv.Itoa(quali.SessionKey)})
	if err != nil {
		log.Printf("Error fetching qualifying positions for grid: %s", err.Error())
		return nil
	}
	drivers, err := lm.api.Drivers(ctx, openf1.Filters{SessionKey: strconv.Itoa(session.SessionKey)})
	if err != nil {
		log.Printf("Error fetching drivers for grid: %s", err.Error())
		return nil
	}
	return openf1.QualifyingGrid(meetingSessions, qualiPositions, drivers)
}

// publishNewFlags pushes race-control events not seen in earlier cycles onto
// the flag topic for the notification manager.
func (lm *Manager) publishNewFlags(events []openf1.RaceControlEvent) {
	lm.mu.Lock()
	since := lm.lastFlagSeen
	lm.mu.Unlock()

	latest := since
	for _, ev := range events {
		if ev.Flag == "" && ev.Category != "Flag" && ev.Category != "SafetyCar" {
			continue
		}
		if !ev.Date.After(since) {
			continue
		}
		lm.flags.Publish(TopicFlags, model.FlagEvent{
			Date:         ev.Date.Time,
			Flag:         ev.Flag,
			Category:     ev.Category,
			DriverNumber: ev.DriverNumber,
			Message:      ev.Message,
		})
		if ev.Date.After(latest) {
			latest = ev.Date.Time
		}
	}

	lm.mu.Lock()
	lm.lastFlagSeen = latest
	lm.mu.Unlock()
}

func latestWeather(samples []openf1.Weather) *model.WeatherReport {
	if len(samples) == 0 {
		return nil
	}
	latest := samples[0]
	for _, w := range samples[1:] {
		if w.Date.After(latest.Date.Time) {
			latest = w
		}
	}
	return &model.WeatherReport{
		AirTemperature:   latest.AirTemperature,
		TrackTemperature: latest.TrackTemperature,
		Humidity:         latest.Humidity,
		Rainfall:         latest.Rainfall,
		WindSpeed:        latest.WindSpeed,
		Date:             latest.Date.Time,
	}
}
