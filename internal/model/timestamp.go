package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// FlexTime normalizes the timestamp shapes the upstream backend emits.
// Document reads return either {"seconds":N}, {"_seconds":N}, an ISO-8601
// string, or a bare epoch-seconds number; all of them decode into one
// canonical time.Time here so nothing downstream has to shape-sniff.
type FlexTime struct {
	time.Time
}

type firestoreTimestamp struct {
	Seconds     *int64 `json:"seconds"`
	USeconds    *int64 `json:"_seconds"`
	Nanoseconds int64  `json:"nanoseconds"`
	UNanos      int64  `json:"_nanoseconds"`
}

// UnmarshalJSON accepts all known upstream timestamp shapes.
func (t *FlexTime) UnmarshalJSON(data []byte) error {
	if string(data) == "null" || string(data) == `""` {
		t.Time = time.Time{}
		return nil
	}

	// ISO string, e.g. "2024-03-10T08:00:00Z" or "2024-03-10"
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
			if parsed, perr := time.Parse(layout, s); perr == nil {
				t.Time = parsed.UTC()
				return nil
			}
		}
		return fmt.Errorf("unrecognized timestamp string %q", s)
	}

	// Firestore-style object with seconds or _seconds
	var obj firestoreTimestamp
	if err := json.Unmarshal(data, &obj); err == nil {
		if obj.Seconds != nil {
			t.Time = time.Unix(*obj.Seconds, obj.Nanoseconds).UTC()
			return nil
		}
		if obj.USeconds != nil {
			t.Time = time.Unix(*obj.USeconds, obj.UNanos).UTC()
			return nil
		}
	}

	// Bare epoch seconds
	var epoch int64
	if err := json.Unmarshal(data, &epoch); err == nil {
		t.Time = time.Unix(epoch, 0).UTC()
		return nil
	}

	return fmt.Errorf("unrecognized timestamp shape: %s", string(data))
}

// MarshalJSON always emits the canonical ISO form.
func (t FlexTime) MarshalJSON() ([]byte, error) {
	if t.Time.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.UTC().Format(time.RFC3339))
}

// DayString truncates to the ISO calendar day (YYYY-MM-DD).
func (t FlexTime) DayString() string {
	if t.Time.IsZero() {
		return ""
	}
	return t.Time.UTC().Format("2006-01-02")
}

// SessionDate returns the calendar date of a session as an ISO day string:
// plan creation date plus (label-1) days. Labels are 1-based and may be
// non-contiguous; an unparseable label falls back to the session's position.
func SessionDate(createdAt FlexTime, label SessionLabel, dayIndex int) string {
	if createdAt.Time.IsZero() {
		return ""
	}
	day := label.Day()
	if day <= 0 {
		day = dayIndex + 1
	}
	return createdAt.Time.UTC().AddDate(0, 0, day-1).Format("2006-01-02")
}
