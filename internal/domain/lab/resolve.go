package lab

import (
	"sort"
	"time"
)

type rankedReading struct {
	reading Reading
	parsed  Parsed
	future  bool
	index   int
}

// Resolve picks the most recent reading of a group using DefaultStrategy.
func Resolve(group []Reading, now time.Time) Record {
	return resolveWith(DefaultStrategy, group, now)
}

func resolveWith(dates DateStrategy, group []Reading, now time.Time) Record {
	ordered := orderByRecency(dates, group, now)
	rec := Record{
		Trending:   []Reading{},
		ShowInNote: true,
	}
	if len(ordered) == 0 {
		return rec
	}
	rec.MostRecent = ordered[0]
	rec.TestName = ordered[0].TestName
	rec.Category = ordered[0].Category
	rec.Trending = append(rec.Trending, ordered[1:]...)
	return rec
}

// orderByRecency returns the group most-recent-first. Future-dated readings
// go after every other reading. When no timestamp in the group parses, the
// input is assumed chronological and is returned reversed. Readings with the
// same instant follow the same rule: the later-listed one counts as newer,
// so Record.Expand round-trips.
func orderByRecency(dates DateStrategy, group []Reading, now time.Time) []Reading {
	ranked := make([]rankedReading, len(group))
	anyParsed := false
	for i, r := range group {
		p := dates.Parse(r.Timestamp)
		ranked[i] = rankedReading{
			reading: r,
			parsed:  p,
			future:  p.OK && isFuture(r.Timestamp, now),
			index:   i,
		}
		if p.OK {
			anyParsed = true
		}
	}

	out := make([]Reading, len(group))
	if !anyParsed {
		for i, r := range group {
			out[len(group)-1-i] = r
		}
		return out
	}

	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.future != b.future {
			return !a.future
		}
		if !a.parsed.Instant.Equal(b.parsed.Instant) {
			return a.parsed.Instant.After(b.parsed.Instant)
		}
		return a.index > b.index
	})
	for i, rr := range ranked {
		out[i] = rr.reading
	}
	return out
}
