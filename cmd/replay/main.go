package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"time"

	"openf1dashboard/pkg/config"
	"openf1dashboard/pkg/model"
	"openf1dashboard/pkg/openf1"
	"openf1dashboard/pkg/replay"
	"openf1dashboard/pkg/timeline"
)

func main() {
	sessionKey := flag.String("session", "latest", "session key to replay (or 'latest')")
	startFrame := flag.Int("from", 0, "frame index to start playback from")
	frameMillis := flag.Int("frame-ms", 500, "playback duration per frame in milliseconds")
	flag.Parse()

	_ = config.Load()
	api := openf1.NewClient(openf1.WithBaseURL(config.GetEnv(config.KeyBaseURL, openf1.DefaultBaseURL)))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		interrupt := make(chan os.Signal, 1)
		signal.Notify(interrupt, os.Interrupt)
		<-interrupt
		cancel()
	}()

	frames, err := buildFrames(ctx, api, *sessionKey)
	if err != nil {
		log.Fatalf("Error building timeline: %s", err.Error())
	}
	if len(frames) == 0 {
		fmt.Println("No replayable data for this session yet")
		return
	}

	player := replay.NewPlayer(time.Duration(*frameMillis) * time.Millisecond)
	err = player.Run(ctx, frames, *startFrame)
	if err != nil && err != context.Canceled {
		log.Fatalf("Playback error: %s", err.Error())
	}
	fmt.Println(replay.RenderTiming(frames[len(frames)-1]))
	fmt.Println("done!")
}

func buildFrames(ctx context.Context, api *openf1.Client, key string) ([]model.TimelineFrame, error) {
	sessions, err := api.Sessions(ctx, openf1.Filters{SessionKey: key})
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, nil
	}
	session := sessions[len(sessions)-1]
	filter := openf1.Filters{SessionKey: strconv.Itoa(session.SessionKey)}

	drivers, err := api.Drivers(ctx, filter)
	if err != nil {
		return nil, err
	}
	positions, err := api.Positions(ctx, filter)
	if err != nil {
		return nil, err
	}
	laps, err := api.Laps(ctx, filter)
	if err != nil {
		return nil, err
	}
	raceControl, err := api.RaceControl(ctx, filter)
	if err != nil {
		return nil, err
	}

	grid := fetchGrid(ctx, api, session, drivers)

	builder := timeline.NewBuilder(timeline.DefaultConfig())
	return builder.Build(timeline.Input{
		Drivers:     drivers,
		Positions:   positions,
		Laps:        laps,
		Grid:        grid,
		RaceControl: raceControl,
	}), nil
}

// fetchGrid falls back to driver-number order when qualifying data is
// unavailable.
func fetchGrid(ctx context.Context, api *openf1.Client, session openf1.Session, drivers []openf1.Driver) map[int]int {
	meetingSessions, err := api.Sessions(ctx, openf1.Filters{MeetingKey: session.MeetingKey})
	if err != nil {
		log.Printf("Error fetching meeting sessions, using driver-number grid: %s", err.Error())
		return openf1.QualifyingGrid(nil, nil, drivers)
	}
	quali, found := openf1.LatestQualifying(meetingSessions)
	if !found {
		return openf1.QualifyingGrid(nil, nil, drivers)
	}
	qualiPositions, err := api.Positions(ctx, openf1.Filters{SessionKey: strconv.Itoa(quali.SessionKey)})
	if err != nil {
		log.Printf("Error fetching qualifying positions, using driver-number grid: %s", err.Error())
		return openf1.QualifyingGrid(nil, nil, drivers)
	}
	return openf1.QualifyingGrid(meetingSessions, qualiPositions, drivers)
}
