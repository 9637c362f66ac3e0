package lab

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Epoch is the instant assigned to readings whose timestamp is absent or
// cannot be parsed. It sorts before every real instant.
var Epoch = time.Unix(0, 0).UTC()

// Parsed is the tagged result of a timestamp parse. When OK is false the
// Instant is Epoch.
type Parsed struct {
	Instant time.Time
	OK      bool
}

func unparseable() Parsed { return Parsed{Instant: Epoch} }

// DateStrategy turns a raw timestamp string into a Parsed result. It must
// never panic.
type DateStrategy interface {
	Parse(raw string) Parsed
}

var compactTimestamp = regexp.MustCompile(`^(\d{2})(\d{2})(\d{2})(?: (\d{2})(\d{2}))?$`)

// genericLayouts are tried, in order, for timestamps that are not in the
// compact YYMMDD[ HHMM] form.
var genericLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"02 Jan 2006 15:04",
}

// CenturyStrategy parses YYMMDD[ HHMM] tokens by placing the two-digit year
// in the century starting at Base. Other inputs go through a small set of
// generic layouts.
type CenturyStrategy struct {
	Base     int
	Location *time.Location
}

// DefaultStrategy maps two-digit years into 2000-2099, in UTC.
var DefaultStrategy DateStrategy = CenturyStrategy{Base: 2000, Location: time.UTC}

func (s CenturyStrategy) Parse(raw string) Parsed {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return unparseable()
	}
	loc := s.Location
	if loc == nil {
		loc = time.UTC
	}

	if m := compactTimestamp.FindStringSubmatch(raw); m != nil {
		yy, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		if month < 1 || month > 12 || day < 1 || day > 31 {
			return unparseable()
		}
		hour, minute := 0, 0
		if m[4] != "" {
			hour, _ = strconv.Atoi(m[4])
			minute, _ = strconv.Atoi(m[5])
			if hour > 23 || minute > 59 {
				return unparseable()
			}
		}
		return Parsed{
			Instant: time.Date(s.Base+yy, time.Month(month), day, hour, minute, 0, 0, loc),
			OK:      true,
		}
	}

	for _, layout := range genericLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return Parsed{Instant: t, OK: true}
		}
	}
	return unparseable()
}

// ParseTimestamp parses raw with DefaultStrategy and returns the instant,
// or Epoch when the value is unusable.
func ParseTimestamp(raw string) time.Time {
	return DefaultStrategy.Parse(raw).Instant
}

// dateToken returns the leading YYMMDD of a compact timestamp.
func dateToken(raw string) (string, bool) {
	m := compactTimestamp.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return "", false
	}
	return m[1] + m[2] + m[3], true
}

// isFuture reports whether the compact date token of raw sorts after the
// calendar day of now.
func isFuture(raw string, now time.Time) bool {
	tok, ok := dateToken(raw)
	if !ok {
		return false
	}
	return tok > now.Format("060102")
}
