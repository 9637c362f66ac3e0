package lab

import "strings"

// Reading is one extracted lab observation as produced by OCR or an LLM.
type Reading struct {
	TestName       string `json:"testName"`
	Value          string `json:"value"`
	Unit           string `json:"unit,omitempty"`
	ReferenceRange string `json:"referenceRange,omitempty"`
	Category       string `json:"category"`
	Timestamp      string `json:"timestamp,omitempty"`
}

// Valid reports whether the reading carries a test name and a usable value.
func (r Reading) Valid() bool {
	v := strings.TrimSpace(r.Value)
	return strings.TrimSpace(r.TestName) != "" && v != "" && v != ">"
}

// Record is the reconciled view of every reading for one test.
type Record struct {
	TestName     string    `json:"testName"`
	Category     string    `json:"category"`
	MostRecent   Reading   `json:"mostRecent"`
	Trending     []Reading `json:"trending"`
	ShowTrending bool      `json:"showTrending"`
	TrendCount   int       `json:"trendCount"`
	ShowInNote   bool      `json:"showInNote"`
}

// Key is the case-insensitive identity of the record.
func (r Record) Key() string {
	return normalizeName(r.TestName)
}

// Expand flattens the record back into readings, oldest first, so that a
// later Resolve over the expanded list picks the same most recent reading.
func (r Record) Expand() []Reading {
	out := make([]Reading, 0, len(r.Trending)+1)
	for i := len(r.Trending) - 1; i >= 0; i-- {
		out = append(out, r.Trending[i])
	}
	return append(out, r.MostRecent)
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
