package openf1

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Time wraps time.Time to cope with the mix of date formats the OpenF1 API
// returns: RFC3339 with a "+00:00" offset, with or without fractional
// seconds, and sometimes naive timestamps without any offset.
type Time struct {
	time.Time
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

func (t *Time) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timeLayouts {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return errors.Errorf("unparseable openf1 date: %q", s)
}

func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`null`), nil
	}
	return []byte(`"` + t.UTC().Format(time.RFC3339Nano) + `"`), nil
}

func (t Time) IsZero() bool {
	return t.Time.IsZero()
}
