package standings

import (
	"context"
	"log"
	"sort"
	"strconv"
	"time"

	"openf1dashboard/pkg/model"
	"openf1dashboard/pkg/openf1"
)

// pointsTable maps final positions 1-10 to championship points. Positions
// beyond 10 score nothing.
var pointsTable = [...]int{25, 18, 15, 12, 10, 8, 6, 4, 2, 1}

// PointsForPosition returns the points awarded for a final classification.
func PointsForPosition(position int) int {
	if position < 1 || position > len(pointsTable) {
		return 0
	}
	return pointsTable[position-1]
}

// RaceDataSource is the fetch collaborator the aggregator pulls per-race
// records from. *openf1.Client satisfies it; tests use a fake.
type RaceDataSource interface {
	Sessions(ctx context.Context, f openf1.Filters) ([]openf1.Session, error)
	Drivers(ctx context.Context, f openf1.Filters) ([]openf1.Driver, error)
	Positions(ctx context.Context, f openf1.Filters) ([]openf1.PositionSample, error)
}

// RaceResult is one driver's final classification in one race.
type RaceResult struct {
	DriverNumber int
	FullName     string
	NameAcronym  string
	TeamName     string
	Position     int
}

// Aggregator derives season championship standings from per-race final
// classifications. The ranking itself is a pure function of the collected
// results; only the fetching can fail, and a failed race is skipped rather
// than aborting the season.
type Aggregator struct {
	src RaceDataSource
}

func NewAggregator(src RaceDataSource) *Aggregator {
	return &Aggregator{src: src}
}

// Season aggregates the championship for one year. A session whose records
// cannot be fetched is skipped with a warning; partial-season standings are
// expected mid-season. Only the initial session listing is fatal.
func (a *Aggregator) Season(ctx context.Context, year int) (model.StandingsSnapshot, error) {
	sessions, err := a.src.Sessions(ctx, openf1.Filters{Year: year})
	if err != nil {
		return model.StandingsSnapshot{}, err
	}

	results := []RaceResult{}
	races := 0
	for _, session := range sessions {
		if !openf1.IsRaceSession(session) {
			continue
		}
		raceResults, err := a.raceResults(ctx, session)
		if err != nil {
			log.Printf("skipping race session %d (%s): %s", session.SessionKey, session.CircuitName, err.Error())
			continue
		}
		results = append(results, raceResults...)
		races++
	}

	drivers, constructors := Rank(results)
	return model.StandingsSnapshot{
		Year:         year,
		Drivers:      drivers,
		Constructors: constructors,
		RacesCounted: races,
		LastUpdated:  time.Now().UTC(),
	}, nil
}

func (a *Aggregator) raceResults(ctx context.Context, session openf1.Session) ([]RaceResult, error) {
	key := openf1.Filters{SessionKey: strconv.Itoa(session.SessionKey)}
	drivers, err := a.src.Drivers(ctx, key)
	if err != nil {
		return nil, err
	}
	positions, err := a.src.Positions(ctx, key)
	if err != nil {
		return nil, err
	}

	final := openf1.FinalPositions(positions)
	results := make([]RaceResult, 0, len(drivers))
	for _, d := range drivers {
		position, ok := final[d.DriverNumber]
		if !ok {
			continue
		}
		results = append(results, RaceResult{
			DriverNumber: d.DriverNumber,
			FullName:     d.FullName,
			NameAcronym:  d.NameAcronym,
			TeamName:     d.TeamName,
			Position:     position,
		})
	}
	return results, nil
}

// Rank accumulates race results into ranked driver and constructor tables.
// Pure: the same results always yield the same tables. Ties on points, wins
// and podiums keep input-stable relative order.
func Rank(results []RaceResult) ([]model.DriverStanding, []model.ConstructorStanding) {
	driverOrder := []int{}
	driverAcc := map[int]*model.DriverStanding{}
	teamOrder := []string{}
	teamAcc := map[string]*model.ConstructorStanding{}

	for _, r := range results {
		points := PointsForPosition(r.Position)

		d, ok := driverAcc[r.DriverNumber]
		if !ok {
			d = &model.DriverStanding{
				DriverNumber: r.DriverNumber,
				FullName:     r.FullName,
				NameAcronym:  r.NameAcronym,
				TeamName:     r.TeamName,
			}
			driverAcc[r.DriverNumber] = d
			driverOrder = append(driverOrder, r.DriverNumber)
		}
		d.Points += points
		if r.Position == 1 {
			d.Wins++
		}
		if r.Position <= 3 {
			d.Podiums++
		}
		// drivers can switch teams mid-season; show the latest
		d.TeamName = r.TeamName

		c, ok := teamAcc[r.TeamName]
		if !ok {
			c = &model.ConstructorStanding{
				TeamName:     r.TeamName,
				DriverPoints: map[string]int{},
			}
			teamAcc[r.TeamName] = c
			teamOrder = append(teamOrder, r.TeamName)
		}
		c.Points += points
		if r.Position == 1 {
			c.Wins++
		}
		if r.Position <= 3 {
			c.Podiums++
		}
		c.DriverPoints[r.FullName] += points
	}

	drivers := make([]model.DriverStanding, 0, len(driverOrder))
	for _, number := range driverOrder {
		drivers = append(drivers, *driverAcc[number])
	}
	sort.SliceStable(drivers, func(i, j int) bool {
		if drivers[i].Points != drivers[j].Points {
			return drivers[i].Points > drivers[j].Points
		}
		if drivers[i].Wins != drivers[j].Wins {
			return drivers[i].Wins > drivers[j].Wins
		}
		return drivers[i].Podiums > drivers[j].Podiums
	})
	for i := range drivers {
		drivers[i].Position = i + 1
	}

	constructors := make([]model.ConstructorStanding, 0, len(teamOrder))
	for _, team := range teamOrder {
		constructors = append(constructors, *teamAcc[team])
	}
	sort.SliceStable(constructors, func(i, j int) bool {
		if constructors[i].Points != constructors[j].Points {
			return constructors[i].Points > constructors[j].Points
		}
		if constructors[i].Wins != constructors[j].Wins {
			return constructors[i].Wins > constructors[j].Wins
		}
		return constructors[i].Podiums > constructors[j].Podiums
	})
	for i := range constructors {
		constructors[i].Position = i + 1
	}

	return drivers, constructors
}
