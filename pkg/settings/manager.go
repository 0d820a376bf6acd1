package settings

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

const (
	DefaultDBName = "./openf1-dashboard.db"

	FlagRed       = "Red"
	FlagSafetyCar = "SafetyCar"
	FlagYellow    = "Yellow"
	FlagChequered = "Chequered"
)

// Subscriber is a chat that wants flag alerts.
type Subscriber struct {
	ID     string
	Name   string
	ChatID string
}

// Alerts maps a flag kind to whether the chat wants it.
type Alerts map[string]bool

func AllEnabled() Alerts {
	return Alerts{
		FlagRed:       true,
		FlagSafetyCar: true,
		FlagYellow:    true,
		FlagChequered: true,
	}
}

func AllDisabled() Alerts {
	return Alerts{
		FlagRed:       false,
		FlagSafetyCar: false,
		FlagYellow:    false,
		FlagChequered: false,
	}
}

func (a Alerts) String() string {
	status := []string{}
	for _, flag := range []string{FlagRed, FlagSafetyCar, FlagYellow, FlagChequered} {
		status = append(status, fmt.Sprintf("%s %q flag alerts", symbolStatus(a[flag]), flag))
	}
	return strings.Join(status, "\n")
}

func symbolStatus(enabled bool) string {
	if enabled {
		return "🔔"
	}
	return "🔕"
}

func (a Alerts) enabledInt(flag string) int {
	if a[flag] {
		return 1
	}
	return 0
}

func (a *Alerts) setFlagEnabled(flag string, enabled bool) {
	(*a)[flag] = enabled
}

// Manager persists per-chat alert preferences in sqlite. Only preferences
// persist; session and derived data stay in memory.
type Manager struct {
	db *sql.DB
	mu sync.Mutex
}

func NewManager(dbName string) (*Manager, error) {
	if dbName == "" {
		dbName = DefaultDBName
	}
	db, err := sql.Open("sqlite3", dbName)
	if err != nil {
		log.Printf("error opening database: %s\n", err)
		return nil, err
	}

	_, err = db.Exec(buildCreateAlertsTable())
	if err != nil {
		log.Printf("error init database: %s\n", err)
		return nil, err
	}

	return &Manager{
		db: db,
		mu: sync.Mutex{},
	}, nil
}

func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.db.Close()
}

// ToggleAlert flips one flag kind for the chat and persists the result.
func (m *Manager) ToggleAlert(userID, chatID, flag string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, err := m.listAlerts(userID)
	if err != nil {
		return err
	}

	a.setFlagEnabled(flag, !a[flag])
	_, err = m.db.Exec(buildUpsertAlertsCommand(userID, chatID, a))
	if err != nil {
		log.Printf("error updating database: %s\n", err)
		return err
	}
	return nil
}

func (m *Manager) ListAlerts(userID string) (Alerts, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.listAlerts(userID)
}

// ListSubscribersForFlag returns every chat that enabled the given flag kind.
func (m *Manager) ListSubscribersForFlag(flag string) ([]Subscriber, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	subscribers := []Subscriber{}
	stmt, read := buildSelectSubscribersCommand(flag)
	rows, err := m.db.Query(stmt)
	if err != nil {
		return subscribers, err
	}
	return read(rows)
}

func (m *Manager) listAlerts(userID string) (Alerts, error) {
	a := AllDisabled()

	stmt, read := buildSelectAlertsCommand(userID)
	rows, err := m.db.Query(stmt)
	if err != nil {
		return a, err
	}
	return read(rows)
}
