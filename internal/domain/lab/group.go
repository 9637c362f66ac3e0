package lab

// Group is the set of readings for one normalized test name, in input order.
type Group struct {
	Key      string
	Readings []Reading
}

// GroupReadings partitions valid readings by normalized test name. Groups
// appear in order of first occurrence and keep their members' input order.
func GroupReadings(readings []Reading) []Group {
	index := make(map[string]int)
	var groups []Group
	for _, r := range readings {
		if !r.Valid() {
			continue
		}
		key := normalizeName(r.TestName)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{Key: key})
		}
		groups[i].Readings = append(groups[i].Readings, r)
	}
	return groups
}
