package medication

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	LangEnglish = "en"
	LangFrench  = "fr"
)

// Frequencies are the abbreviations offered when picking a frequency.
var Frequencies = []string{"DIE", "BID", "TID", "QID"}

type translation struct {
	key, en, fr string
}

// frequencyTranslations is ordered; partial matches take the first hit.
var frequencyTranslations = []translation{
	{"die", "DIE", "DIE"},
	{"bid", "BID", "BID"},
	{"tid", "TID", "TID"},
	{"qid", "QID", "QID"},
	{"hs", "HS", "HS"},
	{"once daily", "DIE", "DIE"},
	{"twice daily", "BID", "BID"},
	{"three times daily", "TID", "TID"},
	{"four times daily", "QID", "QID"},
	{"once weekly", "once weekly", "une fois par semaine"},
	{"twice weekly", "twice weekly", "deux fois par semaine"},
	{"three times weekly", "three times weekly", "trois fois par semaine"},
	{"once monthly", "once monthly", "une fois par mois"},
	{"as needed", "PRN", "PRN"},
	{"prn", "PRN", "PRN"},
	{"at bedtime", "HS", "HS"},
	{"in the morning", "in the morning", "le matin"},
	{"with meals", "with meals", "avec les repas"},
	{"before meals", "before meals", "avant les repas"},
	{"after meals", "after meals", "après les repas"},
}

func (t translation) in(lang string) string {
	if lang == LangFrench {
		return t.fr
	}
	return t.en
}

// TranslateFrequency renders a frequency in the note language. An exact
// match wins over a partial one; unknown frequencies are returned as given.
func TranslateFrequency(freq, lang string) string {
	norm := strings.ToLower(strings.TrimSpace(freq))
	for _, t := range frequencyTranslations {
		if norm == t.key {
			return t.in(lang)
		}
	}
	for _, t := range frequencyTranslations {
		if strings.Contains(norm, t.key) {
			return t.in(lang)
		}
	}
	return freq
}

var durationPattern = regexp.MustCompile(`(?i)(\d+)\s*(jour|day|semaine|week)`)

// StandardizeFrequency converts free-text prescription directions, English
// or French, into an abbreviation with optional PRN and duration suffixes,
// e.g. "2 fois par jour au besoin pendant 5 jours" becomes "BID PRN for 5 jours".
func StandardizeFrequency(text string) string {
	t := strings.ToLower(text)

	prn := containsAny("besoin", "needed", "prn", "si nécessaire")(t)

	duration := ""
	if m := durationPattern.FindStringSubmatch(t); m != nil {
		duration = fmt.Sprintf(" for %s %ss", m[1], m[2])
	}

	var base string
	switch {
	case containsAny("4 fois", "four times", "qid")(t):
		base = "QID"
	case containsAny("3 fois", "three times", "tid")(t):
		base = "TID"
	case containsAny("2 fois", "twice", "bid")(t):
		base = "BID"
	case containsAny("semaine", "weekly")(t):
		base = "weekly"
	default:
		base = "DIE"
	}

	if prn {
		base += " PRN"
	}
	return base + duration
}

// IsPRN reports whether a frequency marks an as-needed medication.
func IsPRN(freq string) bool {
	return strings.Contains(strings.ToUpper(freq), "PRN")
}
