package openf1

import (
	"sort"
	"strings"
)

// Session is one timed F1 activity (practice, qualifying, sprint, race).
type Session struct {
	SessionKey  int    `json:"session_key"`
	MeetingKey  int    `json:"meeting_key"`
	SessionName string `json:"session_name"`
	SessionType string `json:"session_type"`
	CountryName string `json:"country_name"`
	CircuitName string `json:"circuit_short_name"`
	Year        int    `json:"year"`
	DateStart   Time   `json:"date_start"`
	DateEnd     Time   `json:"date_end"`
}

// Meeting is one race weekend grouping multiple sessions.
type Meeting struct {
	MeetingKey   int    `json:"meeting_key"`
	MeetingName  string `json:"meeting_name"`
	CountryName  string `json:"country_name"`
	CircuitName  string `json:"circuit_short_name"`
	Year         int    `json:"year"`
	DateStart    Time   `json:"date_start"`
	OfficialName string `json:"meeting_official_name"`
}

// Driver identity, scoped to one session.
type Driver struct {
	DriverNumber int    `json:"driver_number"`
	FullName     string `json:"full_name"`
	NameAcronym  string `json:"name_acronym"`
	TeamName     string `json:"team_name"`
	TeamColour   string `json:"team_colour"`
	SessionKey   int    `json:"session_key"`
}

// PositionSample is a point sample of running order. Many per driver per
// session, irregular cadence.
type PositionSample struct {
	DriverNumber int  `json:"driver_number"`
	Position     int  `json:"position"`
	Date         Time `json:"date"`
	SessionKey   int  `json:"session_key"`
}

// Lap is one completed lap. Durations are nil until the API has them.
type Lap struct {
	DriverNumber int      `json:"driver_number"`
	LapNumber    int      `json:"lap_number"`
	LapDuration  *float64 `json:"lap_duration"`
	Sector1      *float64 `json:"duration_sector_1"`
	Sector2      *float64 `json:"duration_sector_2"`
	Sector3      *float64 `json:"duration_sector_3"`
	DateStart    Time     `json:"date_start"`
	IsPitOutLap  bool     `json:"is_pit_out_lap"`
	SessionKey   int      `json:"session_key"`
}

// RaceControlEvent is a sparse, irregular race-direction record.
type RaceControlEvent struct {
	Date         Time   `json:"date"`
	Category     string `json:"category"`
	Flag         string `json:"flag"`
	DriverNumber int    `json:"driver_number"`
	Message      string `json:"message"`
	Scope        string `json:"scope"`
	SessionKey   int    `json:"session_key"`
}

// Weather is a point sample of track conditions.
type Weather struct {
	AirTemperature   float64 `json:"air_temperature"`
	TrackTemperature float64 `json:"track_temperature"`
	Humidity         float64 `json:"humidity"`
	Pressure         float64 `json:"pressure"`
	Rainfall         float64 `json:"rainfall"`
	WindSpeed        float64 `json:"wind_speed"`
	WindDirection    float64 `json:"wind_direction"`
	Date             Time    `json:"date"`
	SessionKey       int     `json:"session_key"`
}

// LocationSample is a car location ping on the circuit plan.
type LocationSample struct {
	DriverNumber int     `json:"driver_number"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Z            float64 `json:"z"`
	Date         Time    `json:"date"`
	SessionKey   int     `json:"session_key"`
}

// FinalPositions reduces position samples to each driver's chronologically
// latest sample, i.e. the final classification of the session.
func FinalPositions(samples []PositionSample) map[int]int {
	latest := map[int]PositionSample{}
	for _, s := range samples {
		prev, ok := latest[s.DriverNumber]
		if !ok || s.Date.After(prev.Date.Time) {
			latest[s.DriverNumber] = s
		}
	}
	final := make(map[int]int, len(latest))
	for number, s := range latest {
		final[number] = s.Position
	}
	return final
}

// IsRaceSession reports whether the session counts towards the championship
// as a grand prix. Sprints are excluded on purpose.
func IsRaceSession(s Session) bool {
	name := strings.ToLower(s.SessionName)
	return strings.Contains(name, "race") && !strings.Contains(name, "sprint")
}

// QualifyingGrid derives the starting grid from the latest qualifying session
// among the given sessions: each driver's final classified position there.
// Drivers absent from qualifying fall back to driver-number order, appended
// after the classified ones.
func QualifyingGrid(sessions []Session, qualiPositions []PositionSample, drivers []Driver) map[int]int {
	grid := FinalPositions(qualiPositions)
	if len(grid) == 0 {
		grid = map[int]int{}
	}
	// fill the gaps with driver-number order
	missing := []int{}
	for _, d := range drivers {
		if _, ok := grid[d.DriverNumber]; !ok {
			missing = append(missing, d.DriverNumber)
		}
	}
	sort.Ints(missing)
	// append after the highest classified slot so sparse classifications
	// cannot collide
	next := 0
	for _, p := range grid {
		if p > next {
			next = p
		}
	}
	for _, number := range missing {
		next++
		grid[number] = next
	}
	return grid
}

// LatestQualifying returns the qualifying session with the most recent start
// date, or false when the meeting has none.
func LatestQualifying(sessions []Session) (Session, bool) {
	var best Session
	found := false
	for _, s := range sessions {
		if !strings.Contains(strings.ToLower(s.SessionName), "qualifying") {
			continue
		}
		if !found || s.DateStart.After(best.DateStart.Time) {
			best = s
			found = true
		}
	}
	return best, found
}
