package handler

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// errorResponse documents the error envelope for swag.
type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// flexTime accepts RFC 3339 timestamps and plain dates (2006-01-02).
type flexTime struct {
	time.Time
}

func (t *flexTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := parseTime(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

func (t *flexTime) ptr() *time.Time {
	if t == nil {
		return nil
	}
	v := t.Time
	return &v
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	// Zone-less date-times are read as UTC.
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD, YYYY-MM-DDThh:mm:ss or RFC 3339", s)
}

// endOfDayIfDate widens a date-only upper bound to the last instant of that day.
func endOfDayIfDate(raw string, t time.Time) time.Time {
	if len(strings.TrimSpace(raw)) == len(time.DateOnly) {
		return t.Add(24*time.Hour - time.Nanosecond)
	}
	return t
}
