package lab

import (
	"sort"
	"strings"
)

var abbreviations = map[string]string{
	"Hémoglobine": "Hb",
	"Hemoglobin":  "Hb",
	"Hématocrite": "Hct",
	"Hematocrit":  "Hct",
	"Plaquettes":  "Plt",
	"Platelets":   "Plt",
	"Sodium":      "Na",
	"Potassium":   "K",
	"Chlore":      "Cl",
	"Chloride":    "Cl",
	"Créatinine":  "Creat",
	"Creatinine":  "Creat",
}

// Abbreviate returns the short form used in notes, or the name itself.
func Abbreviate(testName string) string {
	if a, ok := abbreviations[testName]; ok {
		return a
	}
	return testName
}

// FormatLine renders one record as it appears in a note.
func FormatLine(rec Record) string {
	var b strings.Builder
	b.WriteString(Abbreviate(rec.TestName))
	b.WriteByte(' ')
	b.WriteString(rec.MostRecent.Value)

	n := rec.TrendCount
	if n > len(rec.Trending) {
		n = len(rec.Trending)
	}
	if rec.ShowTrending && n > 0 {
		values := make([]string, n)
		for i := 0; i < n; i++ {
			values[i] = rec.Trending[i].Value
		}
		b.WriteString(" (")
		b.WriteString(strings.Join(values, ", "))
		b.WriteByte(')')
	}
	return b.String()
}

// FormatForNote renders the records selected for the note, grouped by
// category in priority order. Within a category the input order is kept.
func FormatForNote(records []Record) string {
	type bucket struct {
		priority int
		lines    []string
	}
	index := make(map[string]int)
	var buckets []bucket
	for _, rec := range records {
		if !rec.ShowInNote {
			continue
		}
		i, ok := index[rec.Category]
		if !ok {
			i = len(buckets)
			index[rec.Category] = i
			buckets = append(buckets, bucket{priority: CategoryPriority(rec.Category)})
		}
		buckets[i].lines = append(buckets[i].lines, FormatLine(rec))
	}

	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].priority < buckets[j].priority
	})

	var lines []string
	for _, b := range buckets {
		lines = append(lines, b.lines...)
	}
	return strings.Join(lines, "\n")
}
