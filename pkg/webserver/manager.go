package webserver

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"openf1dashboard/pkg/live"
	"openf1dashboard/pkg/livemap"
	"openf1dashboard/pkg/metrics"
	"openf1dashboard/pkg/model"
	"openf1dashboard/pkg/pubsub"
	"openf1dashboard/pkg/resources"
	"openf1dashboard/pkg/standings"
)

const DefaultAddr = ":8080"

// Manager wires the dashboard HTTP surface: JSON endpoints for the derived
// view models, a websocket pushing fresh snapshots, Prometheus metrics and a
// static file server for the dashboard assets.
type Manager struct {
	r         *mux.Router
	live      *live.Manager
	standings *standings.Manager
	livemap   *livemap.Manager
	snapshots *pubsub.PubSub[model.SessionSnapshot]
	m         *metrics.Metrics
	addr      string
}

func NewManager(addr string, liveMgr *live.Manager, standingsMgr *standings.Manager, livemapMgr *livemap.Manager, snapshots *pubsub.PubSub[model.SessionSnapshot], m *metrics.Metrics) *Manager {
	if addr == "" {
		addr = DefaultAddr
	}
	mgr := &Manager{
		r:         mux.NewRouter(),
		live:      liveMgr,
		standings: standingsMgr,
		livemap:   livemapMgr,
		snapshots: snapshots,
		m:         m,
		addr:      addr,
	}
	mgr.routes()
	return mgr
}

func (m *Manager) routes() {
	m.r.HandleFunc("/api/session", m.handleSession).Methods(http.MethodGet)
	m.r.HandleFunc("/api/timeline", m.handleTimeline).Methods(http.MethodGet)
	m.r.HandleFunc("/api/standings", m.handleStandings).Methods(http.MethodGet)
	m.r.HandleFunc("/api/weather", m.handleWeather).Methods(http.MethodGet)
	m.r.HandleFunc("/api/livemap.svg", m.handleLiveMap).Methods(http.MethodGet)
	m.r.HandleFunc("/ws/live", m.handleLiveSocket)
	if m.m != nil {
		m.r.Handle("/metrics", m.m.Handler())
	}

	fs := http.FileServer(http.Dir(resources.Dir))
	m.r.PathPrefix("/resources/").Handler(http.StripPrefix("/resources/", fs))
}

func (m *Manager) handleSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, m.live.Current())
}

func (m *Manager) handleTimeline(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, m.live.Current().Frames)
}

func (m *Manager) handleStandings(w http.ResponseWriter, r *http.Request) {
	if yearParam := r.URL.Query().Get("year"); yearParam != "" {
		year, err := strconv.Atoi(yearParam)
		if err != nil {
			http.Error(w, "invalid year", http.StatusBadRequest)
			return
		}
		// the next tick aggregates the new year; the stale snapshot is
		// cleared immediately
		m.standings.SetYear(year)
	}
	writeJSON(w, m.standings.Current())
}

func (m *Manager) handleWeather(w http.ResponseWriter, r *http.Request) {
	weather := m.live.Current().Weather
	if weather == nil {
		writeJSON(w, model.WeatherReport{})
		return
	}
	writeJSON(w, weather)
}

func (m *Manager) handleLiveMap(w http.ResponseWriter, r *http.Request) {
	if m.livemap == nil {
		http.Error(w, "live map disabled", http.StatusNotFound)
		return
	}
	snapshot := m.live.Current()
	key := strconv.Itoa(snapshot.Session.SessionKey)
	svg, err := m.livemap.RenderSVG(r.Context(), snapshot)
	if err != nil {
		log.Printf("Error rendering live map: %s", err.Error())
		// fall back to the last map rendered for this session
		svg, err = resources.LoadLiveMap(key)
		if err != nil {
			http.Error(w, "live map unavailable", http.StatusBadGateway)
			return
		}
	} else if err := resources.SaveLiveMap(key, svg); err != nil {
		log.Printf("Error caching live map: %s", err.Error())
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write([]byte(svg))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		log.Printf("Error encoding response: %s", err.Error())
	}
}

// Serve runs the server until ctx is cancelled, then shuts down gracefully.
func (m *Manager) Serve(ctx context.Context) {
	srv := &http.Server{
		Addr:         m.addr,
		WriteTimeout: time.Second * 15,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      m.r,
	}

	go func() {
		log.Printf("webserver listening on %s\n", m.addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Println(err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Println("webserver shutting down")
}
