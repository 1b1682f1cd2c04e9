package model

import (
	"fmt"
	"time"
)

// Stamp is a UTC POSIX timestamp in seconds since the epoch, stored as a
// 64-bit float. At tens of millions of records, each with several dates,
// floats keep the per-record footprint roughly half that of a structured
// date type.
type Stamp float64

// StampOf converts a time.Time to a Stamp.
func StampOf(t time.Time) Stamp {
	return Stamp(t.UTC().Unix())
}

// ParseStamp parses an ISO 8601 / RFC 3339 string such as the hosting
// platforms produce ("2012-07-20T01:19:13Z").
func ParseStamp(s string) (Stamp, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return 0, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return StampOf(t), nil
}

// Time converts the stamp back to a time.Time in UTC.
func (s Stamp) Time() time.Time {
	sec := int64(s)
	nsec := int64((float64(s) - float64(sec)) * 1e9)
	return time.Unix(sec, nsec).UTC()
}

// String renders the stamp in ISO 8601 form, or "" for the zero stamp.
func (s Stamp) String() string {
	if s == 0 {
		return ""
	}
	return s.Time().Format(time.RFC3339)
}

// Times holds the four independent timestamps tracked per record. Pushed and
// Updated differ because hosting platforms track changes to git content
// separately from changes to the project entry itself.
type Times struct {
	// Created is when the repository was created on the hosting platform.
	Created Field[Stamp] `json:"repo_created"`
	// Updated is the last modification to the platform's project entry.
	Updated Field[Stamp] `json:"repo_updated"`
	// Pushed is the last time content was pushed to the repository.
	Pushed Field[Stamp] `json:"repo_pushed"`
	// Refreshed is when this record was last updated in our catalog.
	Refreshed Field[Stamp] `json:"data_refreshed"`
}
