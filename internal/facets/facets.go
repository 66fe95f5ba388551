// Package facets derives filter values from an event set and applies
// multi-criteria filters over it. Everything here is a pure function of its
// input: callers re-derive on every change instead of mutating cached state.
package facets

import (
	"sort"
	"strings"
	"time"

	"github.com/realdonpromillo/jaenus-book-of-shame/internal/domain"
)

// Day truncates t to the start of its UTC calendar day.
func Day(t time.Time) time.Time {
	return t.UTC().Truncate(24 * time.Hour)
}

// UniquePeople returns every distinct non-empty name across the events'
// people lists, sorted lexicographically.
func UniquePeople(events []*domain.Event) []string {
	return uniqueSorted(events, func(e *domain.Event) []string { return e.People })
}

// UniqueTags returns every distinct non-empty tag, sorted lexicographically.
func UniqueTags(events []*domain.Event) []string {
	return uniqueSorted(events, func(e *domain.Event) []string { return e.Tags })
}

func uniqueSorted(events []*domain.Event, field func(*domain.Event) []string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, e := range events {
		for _, v := range field(e) {
			if v == "" {
				continue
			}
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

// UniqueDates returns the distinct UTC calendar days on which at least one
// event occurs, ascending.
func UniqueDates(events []*domain.Event) []time.Time {
	seen := make(map[time.Time]struct{})
	out := []time.Time{}
	for _, e := range events {
		d := Day(e.Date)
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// Filter is a multi-criteria event selection. Zero values mean "no
// restriction" for their criterion; all set criteria must match.
type Filter struct {
	Title  string
	Person string
	Tag    string
	Day    *time.Time
}

// Apply returns the events matching f, preserving input order. Title matches
// as a case-insensitive substring; Person and Tag as exact entries; Day by
// UTC start-of-day equality.
func Apply(events []*domain.Event, f Filter) []*domain.Event {
	out := []*domain.Event{}
	title := strings.ToLower(f.Title)
	for _, e := range events {
		if f.Day != nil && !Day(e.Date).Equal(Day(*f.Day)) {
			continue
		}
		if title != "" && !strings.Contains(strings.ToLower(e.Title), title) {
			continue
		}
		if f.Person != "" && !contains(e.People, f.Person) {
			continue
		}
		if f.Tag != "" && !contains(e.Tags, f.Tag) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// OnDay restricts events to those occurring on the selected timeline day.
// A nil day selects nothing.
func OnDay(events []*domain.Event, day *time.Time) []*domain.Event {
	if day == nil {
		return []*domain.Event{}
	}
	return Apply(events, Filter{Day: day})
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
