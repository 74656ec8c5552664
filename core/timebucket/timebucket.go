// Package timebucket turns instants into calendar-day keys in one fixed reference zone.
//
// Buckets are computed once when a row is written and stored alongside it; readers
// never recompute them, so a later change to the zone's rules does not move old rows.
package timebucket

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"
	_ "time/tzdata" // the host's zoneinfo must not matter

	"github.com/araddon/dateparse"
)

// Layout is the stored bucket format.
const Layout = "2006-01-02"

// DefaultZone is the reference timezone used unless Configure is called first.
const DefaultZone = "Europe/London"

var (
	zoneName = DefaultZone
	zone     *time.Location
	zoneErr  error
	zoneOnce sync.Once
)

// Configure sets the reference zone. It must run before the first Bucket call;
// later calls have no effect.
func Configure(name string) {
	if name != "" {
		zoneName = name
	}
}

// Location returns the reference zone, loading it on first use.
func Location() *time.Location {
	zoneOnce.Do(func() {
		zone, zoneErr = time.LoadLocation(zoneName)
		if zoneErr != nil {
			panic(fmt.Sprintf("timebucket: load %q: %v", zoneName, zoneErr))
		}
	})
	return zone
}

// Bucket returns t's calendar date in the reference zone as YYYY-MM-DD.
func Bucket(t time.Time) string {
	return t.In(Location()).Format(Layout)
}

// ParseInstant accepts a time.Time, a timestamp string or epoch milliseconds.
// Strings without an offset are read as UTC; date-only strings mean UTC midnight.
func ParseInstant(v any) (time.Time, error) {
	switch val := v.(type) {
	case time.Time:
		return val, nil
	case *time.Time:
		if val == nil {
			return time.Time{}, fmt.Errorf("nil time")
		}
		return *val, nil
	case string:
		return parseString(val)
	case int:
		return time.UnixMilli(int64(val)), nil
	case int64:
		return time.UnixMilli(val), nil
	case float64:
		// float64(math.MaxInt64) 向上取整为 2^63，因此用 >= 判断
		if math.IsNaN(val) || math.IsInf(val, 0) || val >= math.MaxInt64 || val < math.MinInt64 {
			return time.Time{}, fmt.Errorf("invalid epoch value %v", val)
		}
		return time.UnixMilli(int64(val)), nil
	case json.Number:
		if ms, err := val.Int64(); err == nil {
			return time.UnixMilli(ms), nil
		}
		f, err := val.Float64()
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid epoch value %q", val.String())
		}
		return ParseInstant(f)
	default:
		return time.Time{}, fmt.Errorf("unsupported timestamp type %T", v)
	}
}

func parseString(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(Layout, s, time.UTC); err == nil {
		return t, nil
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}

// BucketOf parses v with ParseInstant and returns its bucket.
func BucketOf(v any) (string, error) {
	t, err := ParseInstant(v)
	if err != nil {
		return "", err
	}
	return Bucket(t), nil
}
