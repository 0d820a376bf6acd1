package openf1

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func TestClient_decodesRecords(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/laps" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"driver_number": 1, "lap_number": 5, "lap_duration": 92.417,
			 "duration_sector_1": 30.1, "duration_sector_2": 31.2, "duration_sector_3": 31.117,
			 "date_start": "2024-05-26T13:07:21.512000+00:00", "is_pit_out_lap": false, "session_key": 9999},
			{"driver_number": 1, "lap_number": 6, "lap_duration": null,
			 "date_start": "2024-05-26T13:08:53.929", "is_pit_out_lap": true, "session_key": 9999}
		]`))
	}))
	defer server.Close()

	api := NewClient(WithBaseURL(server.URL))
	laps, err := api.Laps(context.Background(), Filters{SessionKey: "9999"})
	if err != nil {
		t.Fatalf("unexpected error: %s", err.Error())
	}
	if len(laps) != 2 {
		t.Fatalf("expected 2 laps, found %d", len(laps))
	}
	if laps[0].LapDuration == nil || *laps[0].LapDuration != 92.417 {
		t.Errorf("lap duration not decoded: %v", laps[0].LapDuration)
	}
	if laps[1].LapDuration != nil {
		t.Errorf("null lap duration should stay nil, found %v", *laps[1].LapDuration)
	}
	if !laps[1].IsPitOutLap {
		t.Error("pit-out flag not decoded")
	}
	if laps[0].DateStart.IsZero() || laps[1].DateStart.IsZero() {
		t.Error("date_start should decode in both offset and naive formats")
	}
}

func TestClient_queryFilters(t *testing.T) {
	var query url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	api := NewClient(WithBaseURL(server.URL))
	_, err := api.Locations(context.Background(), Filters{
		SessionKey:   "latest",
		DriverNumber: 44,
		DateGT:       "2024-05-26T13:07:21",
	})
	if err != nil {
		t.Fatalf("unexpected error: %s", err.Error())
	}

	if query.Get("session_key") != "latest" {
		t.Errorf("session_key not forwarded: %v", query)
	}
	if query.Get("driver_number") != "44" {
		t.Errorf("driver_number not forwarded: %v", query)
	}
	if query.Get("date>") != "2024-05-26T13:07:21" {
		t.Errorf("date> filter not forwarded: %v", query)
	}
	if query.Has("meeting_key") || query.Has("year") {
		t.Errorf("zero filters must be omitted: %v", query)
	}
}

func TestClient_emptyBodyMeansEmptySlice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	api := NewClient(WithBaseURL(server.URL))
	sessions, err := api.Sessions(context.Background(), Filters{Year: 2024})
	if err != nil {
		t.Fatalf("unexpected error: %s", err.Error())
	}
	if sessions == nil || len(sessions) != 0 {
		t.Errorf("expected a non-nil empty slice, found %v", sessions)
	}
}

func TestClient_httpErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer server.Close()

	api := NewClient(WithBaseURL(server.URL))
	if _, err := api.Drivers(context.Background(), Filters{}); err == nil {
		t.Fatal("expected an error for a non-200 response")
	}
}

func TestClient_contextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	api := NewClient(WithBaseURL(server.URL))
	if _, err := api.Meetings(ctx, Filters{}); err == nil {
		t.Fatal("expected an error for a cancelled context")
	}
}
