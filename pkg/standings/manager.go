package standings

import (
	"context"
	"log"
	"sync"
	"time"

	"openf1dashboard/pkg/metrics"
	"openf1dashboard/pkg/model"
)

// Manager re-aggregates the championship on a ticker and keeps the latest
// snapshot for the web layer. Each refresh replaces the snapshot wholesale.
type Manager struct {
	ctx  context.Context
	mu   sync.Mutex
	agg  *Aggregator
	year int
	m    *metrics.Metrics

	snapshot model.StandingsSnapshot
}

func NewManager(ctx context.Context, agg *Aggregator, year int, m *metrics.Metrics) *Manager {
	return &Manager{
		ctx:  ctx,
		agg:  agg,
		year: year,
		m:    m,
	}
}

func (sm *Manager) Sync(ticker *time.Ticker, exitChan chan bool) {
	sm.doSync(time.Now())
	go func() {
		for {
			select {
			case <-exitChan:
				return
			case t := <-ticker.C:
				sm.doSync(t)
			}
		}
	}()
}

func (sm *Manager) doSync(t time.Time) {
	sm.mu.Lock()
	year := sm.year
	sm.mu.Unlock()

	log.Println("Refreshing championship standings at: ", t)
	snapshot, err := sm.agg.Season(sm.ctx, year)
	if err != nil {
		log.Printf("Error aggregating standings for %d: %s", year, err.Error())
		if sm.m != nil {
			sm.m.IncFetchErrors()
		}
		return
	}
	if sm.m != nil {
		sm.m.IncStandingsRefreshes()
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()
	if year != sm.year {
		// the year changed while aggregating; this result is superseded
		return
	}
	sm.snapshot = snapshot
}

// Current returns the latest aggregated snapshot. Zero value until the first
// successful refresh.
func (sm *Manager) Current() model.StandingsSnapshot {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.snapshot
}

// SetYear re-targets the manager; the next tick rebuilds from scratch.
func (sm *Manager) SetYear(year int) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if year != sm.year {
		sm.year = year
		sm.snapshot = model.StandingsSnapshot{}
	}
}
