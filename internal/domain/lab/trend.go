package lab

import "strings"

// IncreaseTrend shows one more trend value for the named test.
func IncreaseTrend(records []Record, testName string) []Record {
	return updateMatching(records, exactName(testName), func(r *Record) {
		r.TrendCount = clampTrend(r.TrendCount+1, r)
		r.ShowTrending = r.TrendCount > 0
	})
}

// DecreaseTrend shows one fewer trend value for the named test.
func DecreaseTrend(records []Record, testName string) []Record {
	return updateMatching(records, exactName(testName), func(r *Record) {
		r.TrendCount = clampTrend(clampTrend(r.TrendCount, r)-1, r)
		r.ShowTrending = r.TrendCount > 0
	})
}

// ToggleShowInNote flips note inclusion for the named test, matching the
// name case-insensitively.
func ToggleShowInNote(records []Record, testName string) []Record {
	return updateMatching(records, foldedName(testName), func(r *Record) {
		r.ShowInNote = !r.ShowInNote
	})
}

// CarryState copies display state from previous records onto freshly
// reconciled ones with the same identity. Trend counts are clamped to the
// new trend length.
func CarryState(previous, next []Record) []Record {
	prev := make(map[string]Record, len(previous))
	for _, r := range previous {
		prev[r.Key()] = r
	}
	out := make([]Record, len(next))
	for i, r := range next {
		if p, ok := prev[r.Key()]; ok {
			r.ShowInNote = p.ShowInNote
			r.TrendCount = clampTrend(p.TrendCount, &r)
			r.ShowTrending = p.ShowTrending && r.TrendCount > 0
		}
		out[i] = r
	}
	return out
}

// clampTrend bounds n to [0, len(r.Trending)]. Records posted by clients
// may carry any count.
func clampTrend(n int, r *Record) int {
	return max(0, min(n, len(r.Trending)))
}

func exactName(name string) func(Record) bool {
	return func(r Record) bool { return r.TestName == name }
}

func foldedName(name string) func(Record) bool {
	return func(r Record) bool { return strings.EqualFold(r.TestName, name) }
}

func updateMatching(records []Record, match func(Record) bool, fn func(*Record)) []Record {
	out := make([]Record, len(records))
	copy(out, records)
	for i := range out {
		if match(out[i]) {
			fn(&out[i])
		}
	}
	return out
}
