package calendar

import "iter"

// Resolve returns the candidate slots that overlap none of the busy
// intervals, preserving the generator's chronological order. Busy intervals
// come from a single synchronous free/busy fetch; falling back to the raw
// candidate sequence when that fetch is impossible is the caller's policy,
// not the resolver's.
func Resolve(candidates iter.Seq[Slot], busy []Interval) ([]Slot, error) {
	available := []Slot{}
	for slot := range candidates {
		free := true
		for _, b := range busy {
			overlaps, err := Overlaps(slot, b)
			if err != nil {
				return nil, err
			}
			if overlaps {
				free = false
				break
			}
		}
		if free {
			available = append(available, slot)
		}
	}
	return available, nil
}
