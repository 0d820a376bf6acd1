package model

import (
	"fmt"
	"time"

	"openf1dashboard/pkg/openf1"
)

// DriverFrameState is one driver's state at one synthetic timeline frame.
// Progress lives in [0.01, 1] and never regresses across successive frames.
type DriverFrameState struct {
	DriverNumber int      `json:"driverNumber"`
	FullName     string   `json:"fullName"`
	NameAcronym  string   `json:"nameAcronym"`
	TeamName     string   `json:"teamName"`
	TeamColour   string   `json:"teamColour"`
	Position     int      `json:"position"`
	Progress     float64  `json:"progress"`
	CurrentLap   int      `json:"currentLap"`
	PitStops     int      `json:"pitStops"`
	InPit        bool     `json:"inPit"`
	LastLapTime  *float64 `json:"lastLapTime"`
	LastSector1  *float64 `json:"lastSector1"`
	LastSector2  *float64 `json:"lastSector2"`
	LastSector3  *float64 `json:"lastSector3"`
}

// TimelineFrame is one synthetic point of the replay sequence. Frames are
// fully materialized before playback, so the sequence can be scrubbed and
// rewound freely.
type TimelineFrame struct {
	Timestamp   time.Time          `json:"timestamp"`
	LapNumber   int                `json:"lapNumber"`
	TotalLaps   int                `json:"totalLaps"`
	Drivers     []DriverFrameState `json:"drivers"`
	ActiveFlags []FlagEvent        `json:"activeFlags"`
}

// FlagEvent is a race-control event attached to a frame.
type FlagEvent struct {
	Date         time.Time `json:"date"`
	Flag         string    `json:"flag"`
	Category     string    `json:"category"`
	DriverNumber int       `json:"driverNumber,omitempty"`
	Message      string    `json:"message"`
}

// DriverMotion is the interpolated, sub-frame view of one driver used for
// smooth playback. PositionDelta is previous minus current position, so a
// positive delta is places gained.
type DriverMotion struct {
	DriverNumber  int     `json:"driverNumber"`
	Progress      float64 `json:"progress"`
	Position      float64 `json:"position"`
	PositionDelta int     `json:"positionDelta"`
}

// InterpolatedFrame is the playback view between two materialized frames.
type InterpolatedFrame struct {
	Ratio   float64        `json:"ratio"`
	Drivers []DriverMotion `json:"drivers"`
}

// DriverStanding is one row of the championship table. Position is a dense
// 1-based rank.
type DriverStanding struct {
	Position     int    `json:"position"`
	DriverNumber int    `json:"driverNumber"`
	FullName     string `json:"fullName"`
	NameAcronym  string `json:"nameAcronym"`
	TeamName     string `json:"teamName"`
	Points       int    `json:"points"`
	Wins         int    `json:"wins"`
	Podiums      int    `json:"podiums"`
}

// ConstructorStanding aggregates a team's drivers for the season, keeping
// each driver's individual contribution.
type ConstructorStanding struct {
	Position     int            `json:"position"`
	TeamName     string         `json:"teamName"`
	Points       int            `json:"points"`
	Wins         int            `json:"wins"`
	Podiums      int            `json:"podiums"`
	DriverPoints map[string]int `json:"driverPoints"`
}

// StandingsSnapshot is the derived championship state for one season.
type StandingsSnapshot struct {
	Year         int                   `json:"year"`
	Drivers      []DriverStanding      `json:"drivers"`
	Constructors []ConstructorStanding `json:"constructors"`
	RacesCounted int                   `json:"racesCounted"`
	LastUpdated  time.Time             `json:"lastUpdated"`
}

// WeatherReport is the latest track conditions sample for the session.
type WeatherReport struct {
	AirTemperature   float64   `json:"airTemperature"`
	TrackTemperature float64   `json:"trackTemperature"`
	Humidity         float64   `json:"humidity"`
	Rainfall         float64   `json:"rainfall"`
	WindSpeed        float64   `json:"windSpeed"`
	Date             time.Time `json:"date"`
}

// SessionSnapshot is everything the dashboard renders for one poll cycle.
// It is rebuilt in full on every tick and replaced wholesale.
type SessionSnapshot struct {
	Session     openf1.Session            `json:"session"`
	Drivers     []openf1.Driver           `json:"drivers"`
	Frames      []TimelineFrame           `json:"frames"`
	RaceControl []openf1.RaceControlEvent `json:"raceControl"`
	Weather     *WeatherReport            `json:"weather,omitempty"`
	LastUpdated time.Time                 `json:"lastUpdated"`
}

func (s SessionSnapshot) String() string {
	return fmt.Sprintf("  ▸ Session: %s\n  ▸ Circuit: %s\n  ▸ Frames: %d",
		s.Session.SessionName, s.Session.CircuitName, len(s.Frames))
}
