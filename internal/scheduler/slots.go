package scheduler

import "sort"

// Interval is a half-open [Start, End) range in minutes since midnight.
type Interval struct {
	Start int
	End   int
}

// Overlaps reports whether two half-open intervals share at least one minute.
// Adjacent intervals do not overlap.
func Overlaps(a, b Interval) bool {
	return a.Start < b.End && a.End > b.Start
}

// Slot is a maximal free interval inside business hours.
type Slot struct {
	Start     string  `json:"start"`
	End       string  `json:"end"`
	StartHour float64 `json:"start_hour"`
	EndHour   float64 `json:"end_hour"`
}

func newSlot(start, end int) Slot {
	return Slot{
		Start:     FormatClock(start),
		End:       FormatClock(end),
		StartHour: Hours(start),
		EndHour:   Hours(end),
	}
}

// IntervalFromClock builds an interval from two HH:MM values.
func IntervalFromClock(start, end string) (Interval, error) {
	s, err := ParseClock(start)
	if err != nil {
		return Interval{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return Interval{}, err
	}
	return Interval{Start: s, End: e}, nil
}

// AvailableSlots computes the free intervals of a business day given the
// confirmed bookings of one room. Bookings are expected not to overlap each
// other; the input slice is left untouched.
func AvailableSlots(bookings []Interval) []Slot {
	sorted := make([]Interval, len(bookings))
	copy(sorted, bookings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	slots := make([]Slot, 0, len(sorted)+1)
	current := BusinessStart
	for _, b := range sorted {
		if current+SlotMinutes <= b.Start {
			slots = append(slots, newSlot(current, b.Start))
		}
		if b.End > current {
			current = b.End
		}
	}
	if current+SlotMinutes <= BusinessEnd {
		slots = append(slots, newSlot(current, BusinessEnd))
	}
	return slots
}

// FindConflict returns the first existing interval overlapping candidate.
func FindConflict(existing []Interval, candidate Interval) (Interval, bool) {
	for _, iv := range existing {
		if Overlaps(iv, candidate) {
			return iv, true
		}
	}
	return Interval{}, false
}
