package calendar

import (
	"iter"
	"time"
)

// Slot is a candidate meeting window produced by the generator.
type Slot = Interval

// SlotOptions control candidate slot generation.
type SlotOptions struct {
	// HorizonDays is how far ahead of the reference time to generate.
	HorizonDays int
	// Duration is the fixed length of each slot.
	Duration time.Duration
	// StartHour and EndHour bound the working window [StartHour, EndHour).
	StartHour int
	EndHour   int
}

// DefaultSlotOptions returns the standard 7-day, 60-minute, 9-to-5 window.
func DefaultSlotOptions() SlotOptions {
	return SlotOptions{
		HorizonDays: 7,
		Duration:    time.Hour,
		StartHour:   9,
		EndHour:     17,
	}
}

func (o SlotOptions) withDefaults() SlotOptions {
	if o.Duration <= 0 {
		o.Duration = time.Hour
	}
	if o.StartHour == 0 && o.EndHour == 0 {
		o.StartHour, o.EndHour = 9, 17
	}
	return o
}

// Slots returns a lazy, finite, restartable sequence of candidate slots
// walking forward from now. A slot is emitted only when its start hour lies
// in [StartHour, EndHour), its weekday is Monday-Friday, and it ends at or
// before the same day's EndHour. If now is already past today's window
// start, generation begins at the next hour boundary after now; at or past
// the window end it begins the next day. The walk stops at now + HorizonDays.
func (o SlotOptions) Slots(now time.Time) iter.Seq[Slot] {
	o = o.withDefaults()
	return func(yield func(Slot) bool) {
		if o.HorizonDays <= 0 {
			return
		}
		horizon := now.AddDate(0, 0, o.HorizonDays)

		cur := time.Date(now.Year(), now.Month(), now.Day(), o.StartHour, 0, 0, 0, now.Location())
		if now.After(cur) {
			// Round up to the next full hour after now.
			cur = time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), 0, 0, 0, now.Location())
			if cur.Before(now) {
				cur = cur.Add(time.Hour)
			}
		}
		if cur.Hour() >= o.EndHour {
			cur = nextWindowStart(cur, o.StartHour)
		}

		for cur.Before(horizon) {
			windowEnd := time.Date(cur.Year(), cur.Month(), cur.Day(), o.EndHour, 0, 0, 0, cur.Location())
			slotEnd := cur.Add(o.Duration)

			if isWeekday(cur) && cur.Hour() >= o.StartHour && cur.Hour() < o.EndHour && !slotEnd.After(windowEnd) {
				if !yield(Slot{Start: cur, End: slotEnd}) {
					return
				}
			}

			cur = cur.Add(o.Duration)
			if cur.Hour() >= o.EndHour || cur.Hour() < o.StartHour {
				cur = nextWindowStart(cur, o.StartHour)
			}
		}
	}
}

// Generate collects the slot sequence into a slice.
func (o SlotOptions) Generate(now time.Time) []Slot {
	var slots []Slot
	for slot := range o.Slots(now) {
		slots = append(slots, slot)
	}
	return slots
}

func isWeekday(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

func nextWindowStart(t time.Time, startHour int) time.Time {
	next := t
	if t.Hour() >= startHour {
		next = t.AddDate(0, 0, 1)
	}
	return time.Date(next.Year(), next.Month(), next.Day(), startHour, 0, 0, 0, next.Location())
}
