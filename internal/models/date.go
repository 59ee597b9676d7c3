package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// Date is a calendar day in YYYY-MM-DD form. Lexical order is chronological.
type Date string

func NewDate(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("parsing date %q: %w", s, err)
	}
	return NewDate(t), nil
}

func Today(loc *time.Location) Date {
	if loc == nil {
		loc = time.Local
	}
	return NewDate(time.Now().In(loc))
}

// Validate rejects anything that is not a real YYYY-MM-DD day. The empty
// date is valid and means unset.
func (d Date) Validate() error {
	if d.IsZero() {
		return nil
	}
	if _, err := time.Parse(DateLayout, string(d)); err != nil {
		return fmt.Errorf("invalid date %q: want YYYY-MM-DD", string(d))
	}
	return nil
}

// Time returns midnight UTC of the day. Callers validate dates at the
// boundary, so an invalid date here yields the zero time.
func (d Date) Time() time.Time {
	t, _ := time.Parse(DateLayout, string(d))
	return t
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if err := Date(s).Validate(); err != nil {
		return err
	}
	*d = Date(s)
	return nil
}

func (d *Date) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if err := Date(s).Validate(); err != nil {
		return err
	}
	*d = Date(s)
	return nil
}

func (d Date) AddDays(n int) Date {
	return NewDate(d.Time().AddDate(0, 0, n))
}

func (d Date) Before(other Date) bool { return d < other }
func (d Date) After(other Date) bool  { return d > other }
func (d Date) IsZero() bool           { return d == "" }
func (d Date) String() string         { return string(d) }

// DaysBetween returns the number of whole days from d to other.
func (d Date) DaysBetween(other Date) int {
	return int(other.Time().Sub(d.Time()).Hours() / 24)
}

// DateRange returns every day from start to end inclusive, or nil when end
// precedes start.
func DateRange(start, end Date) []Date {
	if end.Before(start) {
		return nil
	}
	var dates []Date
	for d := start; !d.After(end); d = d.AddDays(1) {
		dates = append(dates, d)
	}
	return dates
}

type DateSet map[Date]struct{}

func NewDateSet(dates ...Date) DateSet {
	s := make(DateSet, len(dates))
	for _, d := range dates {
		s.Add(d)
	}
	return s
}

func (s DateSet) Add(d Date) { s[d] = struct{}{} }

func (s DateSet) Has(d Date) bool {
	_, ok := s[d]
	return ok
}

func (s DateSet) Len() int { return len(s) }

func (s DateSet) Sorted() []Date {
	dates := make([]Date, 0, len(s))
	for d := range s {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i] < dates[j] })
	return dates
}

// Intersect returns the dates present in both sets.
func (s DateSet) Intersect(other DateSet) DateSet {
	out := make(DateSet)
	for d := range s {
		if other.Has(d) {
			out.Add(d)
		}
	}
	return out
}
