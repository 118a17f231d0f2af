/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package notification

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// EventType identifies the kind of notification event.
type EventType string

const (
	// EventDuplicateWorkerAttempt is raised when a worker that is still active
	// at one farm is being registered at another one.
	EventDuplicateWorkerAttempt EventType = "duplicate_worker_attempt"
)

// ErrMalformedEvent is returned by Validate when a required section or
// timestamp of the event is missing.
var ErrMalformedEvent = errors.New("malformed notification event")

// DuplicateWorkerEvent is the payload describing a duplicate registration
// attempt. It is built by the caller and only read by this package.
type DuplicateWorkerEvent struct {
	Type           EventType       `json:"type"`
	AdminEmail     string          `json:"adminEmail"`
	ExistingWorker *ExistingWorker `json:"existingWorker"`
	AttemptDetails *AttemptDetails `json:"attemptDetails"`
}

// ExistingWorker describes the worker as currently registered.
type ExistingWorker struct {
	Name        string `json:"name"`
	CIN         string `json:"cin"`
	CurrentFarm string `json:"currentFarm"`
	ProfileLink string `json:"profileLink"`
}

// AttemptDetails describes the rejected registration attempt.
type AttemptDetails struct {
	AttemptingFarm string    `json:"attemptingFarm"`
	AttemptDate    Timestamp `json:"attemptDate"`
	AttemptedEntry Timestamp `json:"attemptedEntry"`
	// AttemptedRoom is optional; an empty value omits the line entirely.
	AttemptedRoom string `json:"attemptedRoom,omitempty"`
}

// Validate reports structural problems that make the event impossible to
// describe: absent nested sections or absent timestamps. Empty strings are
// accepted and rendered with a placeholder.
func (e *DuplicateWorkerEvent) Validate() error {
	if e == nil {
		return fmt.Errorf("%w: event is nil", ErrMalformedEvent)
	}
	if e.ExistingWorker == nil {
		return fmt.Errorf("%w: existingWorker is required", ErrMalformedEvent)
	}
	if e.AttemptDetails == nil {
		return fmt.Errorf("%w: attemptDetails is required", ErrMalformedEvent)
	}
	if e.AttemptDetails.AttemptDate.IsZero() {
		return fmt.Errorf("%w: attemptDetails.attemptDate is required", ErrMalformedEvent)
	}
	if e.AttemptDetails.AttemptedEntry.IsZero() {
		return fmt.Errorf("%w: attemptDetails.attemptedEntry is required", ErrMalformedEvent)
	}
	return nil
}

// worker returns the existing worker section or an empty one.
func (e *DuplicateWorkerEvent) worker() ExistingWorker {
	if e == nil || e.ExistingWorker == nil {
		return ExistingWorker{}
	}
	return *e.ExistingWorker
}

// attempt returns the attempt section or an empty one.
func (e *DuplicateWorkerEvent) attempt() AttemptDetails {
	if e == nil || e.AttemptDetails == nil {
		return AttemptDetails{}
	}
	return *e.AttemptDetails
}

// Timestamp accepts the timestamp spellings browsers and other services
// commonly send: RFC 3339 with or without fractional seconds, a local
// date-time without zone, a plain date, or Unix milliseconds.
//
// Values written without a zone keep their wall clock: In reads them in the
// rendering location instead of converting them. Plain dates are calendar
// days and are never shifted.
type Timestamp struct {
	time.Time
	floating bool
	dateOnly bool
}

var floatingLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

// ParseTimestamp parses s using the accepted layouts. Date-times without a
// zone are interpreted in loc; plain dates are midnight UTC.
func ParseTimestamp(s string, loc *time.Location) (Timestamp, error) {
	if loc == nil {
		loc = time.Local
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return Timestamp{Time: t}, nil
	}
	for _, layout := range floatingLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return Timestamp{Time: t, floating: true}, nil
		}
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return Timestamp{Time: t, dateOnly: true}, nil
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Timestamp{Time: time.UnixMilli(ms)}, nil
	}
	return Timestamp{}, fmt.Errorf("unparseable timestamp %q", s)
}

// In returns t as displayed in loc. Instants are converted, zone-less
// date-times keep their wall clock and plain dates keep their day.
func (t Timestamp) In(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	switch {
	case t.IsZero():
		return t.Time
	case t.dateOnly:
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, loc)
	case t.floating:
		y, m, d := t.Date()
		hh, mm, ss := t.Clock()
		return time.Date(y, m, d, hh, mm, ss, t.Nanosecond(), loc)
	}
	return t.Time.In(loc)
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = Timestamp{}
		return nil
	}
	if data[0] != '"' {
		ms, err := strconv.ParseInt(string(data), 10, 64)
		if err != nil {
			return fmt.Errorf("unparseable timestamp %s", data)
		}
		*t = Timestamp{Time: time.UnixMilli(ms)}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*t = Timestamp{}
		return nil
	}
	parsed, err := ParseTimestamp(s, time.UTC)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// MarshalJSON implements json.Marshaler. Zone-less values keep their
// original spelling.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	switch {
	case t.IsZero():
		return []byte("null"), nil
	case t.dateOnly:
		return json.Marshal(t.Format(time.DateOnly))
	case t.floating:
		return json.Marshal(t.Format(floatingLayouts[0]))
	}
	return json.Marshal(t.Format(time.RFC3339Nano))
}
