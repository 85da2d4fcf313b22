package datemath

import (
	"fmt"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Normalizer converts wall-clock timestamps in an IANA timezone into UTC instants.
// It is safe for concurrent use.
type Normalizer struct {
	locations *lru.Cache[string, *time.Location]
}

// NewNormalizer creates a Normalizer caching up to cacheSize locations.
func NewNormalizer(cacheSize int) (*Normalizer, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, *time.Location](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("datemath: location cache: %w", err)
	}
	return &Normalizer{locations: cache}, nil
}

// Location resolves an IANA timezone name. "Local" and "" are rejected because
// they depend on the host rather than naming a zone.
func (n *Normalizer) Location(timezone string) (*time.Location, error) {
	timezone = strings.TrimSpace(timezone)
	if timezone == "" || timezone == "Local" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTimezone, timezone)
	}
	if loc, ok := n.locations.Get(timezone); ok {
		return loc, nil
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidTimezone, timezone, err)
	}
	n.locations.Add(timezone, loc)
	return loc, nil
}

// ToUTCInstant interprets local as a wall-clock time in timezone and returns the
// matching instant in UTC.
//
// A local time skipped by a daylight-saving gap does not exist and is rejected
// with ErrInvalidTimestamp. A local time repeated by a fall-back overlap resolves
// to the earlier of the two instants. A date without a time means the start of
// that day, which is the end of the gap when midnight itself was skipped.
// Fractional seconds are kept.
func (n *Normalizer) ToUTCInstant(local, timezone string) (time.Time, error) {
	loc, err := n.Location(timezone)
	if err != nil {
		return time.Time{}, err
	}

	wall, dateOnly, err := parseWallClock(local)
	if err != nil {
		return time.Time{}, err
	}

	if dateOnly {
		if t, ok := startOfDay(wall, loc); ok {
			return t.UTC(), nil
		}
		return time.Time{}, fmt.Errorf("%w: %q does not exist in %s", ErrInvalidTimestamp, local, timezone)
	}

	t, ok := inZone(wall, loc)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %q does not exist in %s", ErrInvalidTimestamp, local, timezone)
	}
	return t.UTC(), nil
}

// inZone places the wall-clock fields of wall in loc. ok is false when that
// wall-clock reading is skipped in loc.
func inZone(wall time.Time, loc *time.Location) (time.Time, bool) {
	t := time.Date(wall.Year(), wall.Month(), wall.Day(), wall.Hour(), wall.Minute(), wall.Second(), wall.Nanosecond(), loc)
	if t.Hour() != wall.Hour() || t.Minute() != wall.Minute() || t.Day() != wall.Day() {
		return time.Time{}, false
	}
	return t, true
}

// startOfDay returns the first existing minute of day in loc.
func startOfDay(day time.Time, loc *time.Location) (time.Time, bool) {
	for m := 0; m < 24*60; m++ {
		if t, ok := inZone(day.Add(time.Duration(m)*time.Minute), loc); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseWallClock reads the date/time fields of local without applying any zone.
func parseWallClock(local string) (time.Time, bool, error) {
	local = strings.TrimSpace(local)
	if local == "" {
		return time.Time{}, false, fmt.Errorf("%w: empty", ErrInvalidTimestamp)
	}
	for _, layout := range localLayouts {
		if t, err := time.Parse(layout, local); err == nil {
			return t, layout == time.DateOnly, nil
		}
	}
	return time.Time{}, false, fmt.Errorf("%w: %q", ErrInvalidTimestamp, local)
}
