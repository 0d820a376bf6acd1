package openf1

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
)

const DefaultBaseURL = "https://api.openf1.org/v1"

// Client is a thin wrapper over the OpenF1 REST API. It never distinguishes
// "no records" from "empty session": both decode to an empty slice. Transport
// and HTTP failures come back as wrapped errors for the caller to handle.
type Client struct {
	baseURL string
	http    *http.Client
}

type ClientOption func(*Client)

func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = u
	}
}

func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		c.http = h
	}
}

func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Filters narrows an endpoint query. Zero fields are omitted. SessionKey
// "latest" is accepted by the API and passed through verbatim.
type Filters struct {
	SessionKey   string
	MeetingKey   int
	DriverNumber int
	Year         int
	// DateGT keeps only records strictly newer than the given instant.
	DateGT string
}

func (f Filters) values() url.Values {
	v := url.Values{}
	if f.SessionKey != "" {
		v.Set("session_key", f.SessionKey)
	}
	if f.MeetingKey != 0 {
		v.Set("meeting_key", fmt.Sprint(f.MeetingKey))
	}
	if f.DriverNumber != 0 {
		v.Set("driver_number", fmt.Sprint(f.DriverNumber))
	}
	if f.Year != 0 {
		v.Set("year", fmt.Sprint(f.Year))
	}
	if f.DateGT != "" {
		v.Set("date>", f.DateGT)
	}
	return v
}

func (c *Client) get(ctx context.Context, endpoint string, f Filters, out any) error {
	u := fmt.Sprintf("%s/%s", c.baseURL, endpoint)
	if q := f.values().Encode(); q != "" {
		u += "?" + q
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return errors.Wrapf(err, "building request for %s", endpoint)
	}
	response, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "requesting %s", endpoint)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return errors.Errorf("requesting %s: %s", endpoint, response.Status)
	}
	err = json.NewDecoder(response.Body).Decode(out)
	if err != nil {
		return errors.Wrapf(err, "decoding %s response", endpoint)
	}
	return nil
}

func (c *Client) Sessions(ctx context.Context, f Filters) ([]Session, error) {
	ss := []Session{}
	err := c.get(ctx, "sessions", f, &ss)
	return ss, err
}

func (c *Client) Meetings(ctx context.Context, f Filters) ([]Meeting, error) {
	ms := []Meeting{}
	err := c.get(ctx, "meetings", f, &ms)
	return ms, err
}

func (c *Client) Drivers(ctx context.Context, f Filters) ([]Driver, error) {
	ds := []Driver{}
	err := c.get(ctx, "drivers", f, &ds)
	return ds, err
}

func (c *Client) Positions(ctx context.Context, f Filters) ([]PositionSample, error) {
	ps := []PositionSample{}
	err := c.get(ctx, "position", f, &ps)
	return ps, err
}

func (c *Client) Laps(ctx context.Context, f Filters) ([]Lap, error) {
	ls := []Lap{}
	err := c.get(ctx, "laps", f, &ls)
	return ls, err
}

func (c *Client) RaceControl(ctx context.Context, f Filters) ([]RaceControlEvent, error) {
	es := []RaceControlEvent{}
	err := c.get(ctx, "race_control", f, &es)
	return es, err
}

func (c *Client) Weather(ctx context.Context, f Filters) ([]Weather, error) {
	ws := []Weather{}
	err := c.get(ctx, "weather", f, &ws)
	return ws, err
}

func (c *Client) Locations(ctx context.Context, f Filters) ([]LocationSample, error) {
	ls := []LocationSample{}
	err := c.get(ctx, "location", f, &ls)
	return ls, err
}
