package lab

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const unknownCategoryPriority = 99

var categoryPriorities = map[string]int{
	"cbc":           1,
	"hématologie":   1,
	"hematologie":   1,
	"hematology":    1,
	"coagulation":   2,
	"chemistry":     3,
	"biochimie":     3,
	"crp":           4,
	"inflammatory":  4,
	"lipids":        5,
	"endocrinology": 6,
	"general":       99,
}

// CategoryPriority returns the display rank of a lab category, ignoring case
// and surrounding spaces. Unknown categories rank last.
func CategoryPriority(category string) int {
	if p, ok := categoryPriorities[strings.ToLower(strings.TrimSpace(category))]; ok {
		return p
	}
	return unknownCategoryPriority
}

// Order sorts records by category priority, then by test name using
// locale-aware collation. The input slice is not modified.
func Order(records []Record) []Record {
	out := make([]Record, len(records))
	copy(out, records)
	coll := collate.New(language.Und)
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := CategoryPriority(out[i].Category), CategoryPriority(out[j].Category)
		if pi != pj {
			return pi < pj
		}
		return coll.CompareString(out[i].TestName, out[j].TestName) < 0
	})
	return out
}
