package replay

import (
	"context"
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"

	"openf1dashboard/pkg/model"
	"openf1dashboard/pkg/timeline"
)

const (
	trackerTotal = 1000
	subSteps     = 10
)

// Player animates a materialized frame sequence in the terminal: one
// progress tracker per driver, advanced by interpolated sub-frame motion.
// The sequence is replayable; Run can start from any frame index.
type Player struct {
	frameDuration time.Duration
}

func NewPlayer(frameDuration time.Duration) *Player {
	if frameDuration <= 0 {
		frameDuration = 500 * time.Millisecond
	}
	return &Player{frameDuration: frameDuration}
}

// Run plays frames[startIndex:] until done or ctx is cancelled. Overtakes
// flash the gaining driver's label for the duration of the frame.
func (p *Player) Run(ctx context.Context, frames []model.TimelineFrame, startIndex int) error {
	if startIndex < 0 || startIndex >= len(frames) {
		startIndex = 0
	}
	frames = frames[startIndex:]
	if len(frames) == 0 {
		return fmt.Errorf("no frames to play")
	}

	pw := newProgressWriter(len(frames[0].Drivers))
	go pw.Render()
	defer pw.Stop()

	trackers := map[int]*progress.Tracker{}
	labels := map[int]string{}
	for _, d := range frames[0].Drivers {
		label := d.NameAcronym
		if label == "" {
			label = fmt.Sprintf("#%d", d.DriverNumber)
		}
		tracker := &progress.Tracker{Message: label, Total: trackerTotal, Units: progress.UnitsDefault}
		tracker.SetValue(int64(d.Progress * trackerTotal))
		pw.AppendTracker(tracker)
		trackers[d.DriverNumber] = tracker
		labels[d.DriverNumber] = label
	}

	stepDuration := p.frameDuration / subSteps
	for i := 1; i < len(frames); i++ {
		prev, cur := frames[i-1], frames[i]
		for step := 1; step <= subSteps; step++ {
			ratio := float64(step) / float64(subSteps)
			interpolated := timeline.Interpolate(prev, cur, ratio)
			for _, d := range interpolated.Drivers {
				tracker, ok := trackers[d.DriverNumber]
				if !ok {
					continue
				}
				tracker.SetValue(int64(d.Progress * trackerTotal))
				if step == subSteps {
					if d.PositionDelta > 0 {
						tracker.UpdateMessage(labels[d.DriverNumber] + " ▲")
					} else {
						tracker.UpdateMessage(labels[d.DriverNumber])
					}
				}
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(stepDuration):
			}
		}
	}

	for _, tracker := range trackers {
		tracker.MarkAsDone()
	}
	return nil
}

func newProgressWriter(expected int) progress.Writer {
	pw := progress.NewWriter()
	pw.SetAutoStop(false)
	pw.SetTrackerLength(34)
	pw.SetMessageWidth(6)
	pw.SetNumTrackersExpected(expected)
	pw.SetSortBy(progress.SortByMessage)
	pw.SetStyle(progress.StyleDefault)
	pw.SetTrackerPosition(progress.PositionRight)
	pw.SetUpdateFrequency(time.Millisecond * 100)
	pw.Style().Colors = progress.StyleColorsDefault
	pw.Style().Options.Separator = ""
	pw.Style().Visibility.ETA = false
	pw.Style().Visibility.ETAOverall = false
	pw.Style().Visibility.Percentage = false
	pw.Style().Visibility.Speed = false
	pw.Style().Visibility.SpeedOverall = false
	pw.Style().Visibility.Time = false
	pw.Style().Visibility.TrackerOverall = false
	pw.Style().Visibility.Value = false
	pw.Style().Chars.BoxLeft = "|"
	pw.Style().Chars.BoxRight = "🏁"
	pw.Style().Chars.Finished = "-"
	pw.Style().Chars.Finished25 = "-"
	pw.Style().Chars.Finished50 = "-"
	pw.Style().Chars.Finished75 = "-"
	pw.Style().Chars.Unfinished = " "
	return pw
}
