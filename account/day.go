package account

import (
	"sort"
	"time"
)

// DayLayout is the calendar-day key format.
const DayLayout = "2006-01-02"

// dateLayouts are tried in order when parsing a trade date.
var dateLayouts = []string{
	DayLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseDate parses a recorded trade date. The returned time keeps the
// offset written in the value, so its calendar day is the one recorded.
func ParseDate(s string) (time.Time, error) {
	var err error
	for _, layout := range dateLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

// DayKey returns the YYYY-MM-DD key for a recorded date.
func DayKey(s string) (string, bool) {
	t, err := ParseDate(s)
	if err != nil {
		return "", false
	}
	return t.Format(DayLayout), true
}

// DayKeyOf returns the key for t in loc. A nil loc keeps t's own location.
func DayKeyOf(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(DayLayout)
}

// DaySet is the set of distinct trading days.
type DaySet map[string]struct{}

func NewDaySet(keys ...string) DaySet {
	s := make(DaySet, len(keys))
	for _, k := range keys {
		s.Add(k)
	}
	return s
}

func (s DaySet) Add(key string) { s[key] = struct{}{} }

func (s DaySet) Has(key string) bool {
	_, ok := s[key]
	return ok
}

func (s DaySet) Len() int { return len(s) }

// Sorted returns the keys in ascending order.
func (s DaySet) Sorted() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (s DaySet) Clone() DaySet {
	c := make(DaySet, len(s))
	for k := range s {
		c[k] = struct{}{}
	}
	return c
}

// Equal reports set equality, ignoring iteration order.
func (s DaySet) Equal(o DaySet) bool {
	if len(s) != len(o) {
		return false
	}
	for k := range s {
		if !o.Has(k) {
			return false
		}
	}
	return true
}
