package notification

import (
	"context"
	"sync"
	"testing"
	"time"

	"openf1dashboard/pkg/live"
	"openf1dashboard/pkg/model"
	"openf1dashboard/pkg/pubsub"
	"openf1dashboard/pkg/settings"
)

// fakeStore blocks subscriber lookups until released so events pile up behind
// an in-flight send.
type fakeStore struct {
	mu      sync.Mutex
	started int
	handled []string
	release chan struct{}
}

func (f *fakeStore) ListSubscribersForFlag(flag string) ([]settings.Subscriber, error) {
	f.mu.Lock()
	f.started++
	f.mu.Unlock()
	<-f.release
	f.mu.Lock()
	f.handled = append(f.handled, flag)
	f.mu.Unlock()
	return []settings.Subscriber{}, nil
}

func (f *fakeStore) ToggleAlert(userID, chatID, flag string) error {
	return nil
}

func (f *fakeStore) ListAlerts(userID string) (settings.Alerts, error) {
	return settings.AllDisabled(), nil
}

func (f *fakeStore) startedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.started
}

func (f *fakeStore) handledFlags() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.handled...)
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestStart_queuesEventsWhileSendInFlight(t *testing.T) {
	events := pubsub.New[model.FlagEvent]()
	store := &fakeStore{release: make(chan struct{})}
	m := NewManager(context.Background(), nil, store, events, nil)

	exit := make(chan bool, 1)
	go m.Start(exit)
	defer func() { exit <- true }()

	// let Start subscribe before the first publish
	time.Sleep(50 * time.Millisecond)

	events.Publish(live.TopicFlags, model.FlagEvent{Flag: "RED"})
	waitFor(t, "first send in flight", func() bool { return store.startedCount() == 1 })

	// these must queue, not block the event loop or get lost
	events.Publish(live.TopicFlags, model.FlagEvent{Flag: "YELLOW"})
	events.Publish(live.TopicFlags, model.FlagEvent{Flag: "CHEQUERED"})

	close(store.release)
	waitFor(t, "all alerts handled", func() bool { return len(store.handledFlags()) == 3 })

	got := store.handledFlags()
	want := []string{settings.FlagRed, settings.FlagYellow, settings.FlagChequered}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("alerts handled out of order: %v, want %v", got, want)
		}
	}
}

func TestClassifyFlag(t *testing.T) {
	cases := []struct {
		ev   model.FlagEvent
		kind string
		ok   bool
	}{
		{model.FlagEvent{Flag: "RED"}, settings.FlagRed, true},
		{model.FlagEvent{Flag: "RED", Message: "SAFETY CAR"}, settings.FlagRed, true},
		{model.FlagEvent{Category: "SafetyCar"}, settings.FlagSafetyCar, true},
		{model.FlagEvent{Message: "Safety Car deployed"}, settings.FlagSafetyCar, true},
		{model.FlagEvent{Flag: "YELLOW"}, settings.FlagYellow, true},
		{model.FlagEvent{Flag: "DOUBLE YELLOW"}, settings.FlagYellow, true},
		{model.FlagEvent{Flag: "CHEQUERED"}, settings.FlagChequered, true},
		{model.FlagEvent{Flag: "GREEN"}, "", false},
		{model.FlagEvent{Flag: "BLUE"}, "", false},
		{model.FlagEvent{}, "", false},
	}
	for _, c := range cases {
		kind, ok := classifyFlag(c.ev)
		if kind != c.kind || ok != c.ok {
			t.Errorf("%+v: classified as %q/%v, want %q/%v", c.ev, kind, ok, c.kind, c.ok)
		}
	}
}
