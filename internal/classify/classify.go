package classify

import "pointage/attendance"

// SplitNew separates incoming records into those whose (matricule, date) key is
// absent from existing and those already present. Records sharing a key within
// incoming are all kept.
func SplitNew(incoming, existing []attendance.Record) ([]attendance.Record, []attendance.Record) {
	keys := make(map[attendance.Key]struct{}, len(existing))
	for _, record := range existing {
		keys[record.Key()] = struct{}{}
	}

	toAdd := make([]attendance.Record, 0, len(incoming))
	duplicates := make([]attendance.Record, 0)
	for _, candidate := range incoming {
		if _, exists := keys[candidate.Key()]; exists {
			duplicates = append(duplicates, candidate)
			continue
		}
		toAdd = append(toAdd, candidate)
	}

	return toAdd, duplicates
}
