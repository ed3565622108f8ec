// Package quota tracks how many requests were issued against the Govee API during the
// current server day. Govee enforces a daily request quota keyed on its own clock, so
// the day is derived from the Date header of each response rather than local time.
package quota

import (
	"net/http"
	"sync"
	"time"
)

// Snapshot is the tracker state at one point in time.
type Snapshot struct {
	Day       time.Time `json:"day"`
	Requests  int       `json:"requests"`
	Connected bool      `json:"connected"`
}

// Tracker counts requests per server day and records whether the last request
// succeeded. All methods are safe for concurrent use.
type Tracker struct {
	lock      sync.Mutex
	day       time.Time
	hasDay    bool
	requests  int
	connected bool
}

// RecordResponse records one response. dateHeader is the raw Date response header; an
// absent or unparsable header leaves the tracked day unchanged. When the (parsed or
// defaulted) day differs from the tracked day, the counter resets before counting
// this response.
func (t *Tracker) RecordResponse(dateHeader string, success bool) {
	headerDay, ok := parseDay(dateHeader)

	t.lock.Lock()
	defer t.lock.Unlock()

	newDay := t.day
	switch {
	case ok:
		newDay = headerDay
	case !t.hasDay:
		newDay = today()
	}
	if !t.hasDay || !newDay.Equal(t.day) {
		t.day = newDay
		t.hasDay = true
		t.requests = 0
	}
	t.requests++
	t.connected = success
}

func (t *Tracker) Snapshot() Snapshot {
	t.lock.Lock()
	defer t.lock.Unlock()
	return Snapshot{Day: t.day, Requests: t.requests, Connected: t.connected}
}

func parseDay(dateHeader string) (time.Time, bool) {
	if dateHeader == "" {
		return time.Time{}, false
	}
	parsed, err := http.ParseTime(dateHeader)
	if err != nil {
		return time.Time{}, false
	}
	return truncateToDay(parsed), true
}

func today() time.Time {
	return truncateToDay(time.Now().UTC())
}

func truncateToDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
