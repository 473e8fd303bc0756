package calendar

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mnoushir/portfolio-assistant/pkg/logging"
)

// ErrSlotUnavailable is returned when a booking request does not match any
// currently available slot.
var ErrSlotUnavailable = errors.New("calendar: the requested time slot is not available")

// ErrBadTimeFormat is returned when booking timestamps are not RFC3339.
var ErrBadTimeFormat = errors.New("calendar: booking times must be RFC3339 timestamps")

// ErrBookingNotFound is returned when cancelling an unknown demo booking.
var ErrBookingNotFound = errors.New("calendar: no booking with that id")

// BookingRequest is a request to reserve a slot.
type BookingRequest struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Reason    string `json:"reason"`
}

// BookingRecord is a committed booking.
type BookingRecord struct {
	ID       string
	Name     string
	Email    string
	Reason   string
	Interval Interval
	Link     string
}

// Scheduler owns availability and booking. With a connected Backend it
// delegates to the external calendar; otherwise it serves an in-memory demo
// slot list. All mutable state (demo slots, bookings, mode flags) is guarded
// by a single mutex so concurrent bookings of the same slot cannot both
// succeed. Delegated backend calls run outside the critical section; only
// local state transitions hold the lock.
type Scheduler struct {
	opts   SlotOptions
	logger *logging.Logger
	now    func() time.Time

	mu         sync.Mutex
	backend    Backend
	demoMode   bool
	downgraded bool
	demoSlots  []Slot
	bookings   []BookingRecord
}

// NewScheduler creates a scheduler. A nil backend starts in demo mode with
// a freshly generated slot list; the list then lives for the process
// lifetime, shrinking as slots are booked.
func NewScheduler(backend Backend, opts SlotOptions, logger *logging.Logger, now func() time.Time) *Scheduler {
	if logger == nil {
		logger = logging.Default()
	}
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	s := &Scheduler{
		opts:    opts.withDefaults(),
		logger:  logger,
		now:     now,
		backend: backend,
	}
	if backend == nil {
		s.demoMode = true
		s.demoSlots = s.opts.Generate(now())
		s.logger.Warn("no calendar backend connected, serving demo slots", "slots", len(s.demoSlots))
	}
	return s
}

// DemoMode reports whether the scheduler is serving the in-memory fallback.
func (s *Scheduler) DemoMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.demoMode
}

// EnableBackend connects (or reconnects) the external calendar, leaving
// demo mode. Called after a successful OAuth exchange.
func (s *Scheduler) EnableBackend(backend Backend) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.backend = backend
	s.demoMode = false
	s.downgraded = false
	s.logger.Info("calendar backend connected")
}

// Availability returns the free slots for the next `days` days. A zero
// horizon yields an empty list; negative values fall back to the configured
// default. Backed mode subtracts the calendar's busy intervals from
// generated candidates; demo mode returns the unbooked demo slots within
// the horizon. A backend failure downgrades to demo mode for the remainder
// of the agent lifetime. The free/busy fetch runs without holding the
// state lock.
func (s *Scheduler) Availability(ctx context.Context, days int) ([]Slot, error) {
	if days < 0 {
		days = s.opts.HorizonDays
	}
	if days == 0 {
		return []Slot{}, nil
	}
	now := s.now()

	s.mu.Lock()
	backend, demo := s.backend, s.demoMode
	s.mu.Unlock()

	if !demo {
		opts := s.opts
		opts.HorizonDays = days
		busy, err := backend.BusyIntervals(ctx, now, now.AddDate(0, 0, days))
		if err == nil {
			var available []Slot
			available, err = Resolve(opts.Slots(now), busy)
			if err == nil {
				return available, nil
			}
		}
		s.logger.Error("calendar availability failed, falling back to demo slots", "error", err)
		s.mu.Lock()
		s.downgradeLocked(now)
		s.mu.Unlock()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	horizon := now.AddDate(0, 0, days)
	available := []Slot{}
	for _, slot := range s.demoSlots {
		if slot.Start.Before(horizon) {
			available = append(available, slot)
		}
	}
	return available, nil
}

// Book validates and commits a booking. In backed mode creation is
// delegated to the external calendar (which emails the attendee); if that
// delegated call fails, the scheduler downgrades to demo mode once per
// lifetime and retries validation against the local list rather than
// surfacing the upstream error.
func (s *Scheduler) Book(ctx context.Context, req BookingRequest) (*BookingRecord, error) {
	reason := req.Reason
	if reason == "" {
		reason = fmt.Sprintf("Meeting with %s", req.Name)
	}

	s.mu.Lock()
	backend, demo := s.backend, s.demoMode
	s.mu.Unlock()

	if !demo {
		start, errStart := time.Parse(time.RFC3339, req.StartTime)
		end, errEnd := time.Parse(time.RFC3339, req.EndTime)
		if errStart != nil || errEnd != nil {
			return nil, ErrBadTimeFormat
		}

		result, err := backend.CreateEvent(ctx, EventRequest{
			Start:         start,
			End:           end,
			AttendeeEmail: req.Email,
			Summary:       fmt.Sprintf("Meeting: %s", req.Name),
			Description:   fmt.Sprintf("Meeting with %s (%s)\n\nReason: %s", req.Name, req.Email, reason),
		})
		if err == nil {
			record := BookingRecord{
				ID:       result.EventID,
				Name:     req.Name,
				Email:    req.Email,
				Reason:   reason,
				Interval: Interval{Start: start, End: end},
				Link:     result.Link,
			}
			s.logger.Info("booking committed via calendar", "event_id", record.ID, "name", req.Name)
			return &record, nil
		}

		s.logger.Error("calendar booking failed, falling back to demo booking", "error", err, "name", req.Name, "start", req.StartTime)
		s.mu.Lock()
		s.downgradeLocked(s.now())
		s.mu.Unlock()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Demo validation: byte-for-byte RFC3339 match against the slot list.
	idx := -1
	for i, slot := range s.demoSlots {
		if slot.Start.Format(time.RFC3339) == req.StartTime && slot.End.Format(time.RFC3339) == req.EndTime {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrSlotUnavailable
	}

	slot := s.demoSlots[idx]
	s.demoSlots = slices.Delete(s.demoSlots, idx, idx+1)

	record := BookingRecord{
		ID:       uuid.NewString()[:8],
		Name:     req.Name,
		Email:    req.Email,
		Reason:   reason,
		Interval: slot,
	}
	s.bookings = append(s.bookings, record)
	s.logger.Info("booking committed in demo mode", "booking_id", record.ID, "name", req.Name)
	return &record, nil
}

// Cancel removes a booking. Backed mode delegates to the external calendar;
// demo mode returns the slot to the available pool.
func (s *Scheduler) Cancel(ctx context.Context, eventID string) error {
	s.mu.Lock()
	backend, demo := s.backend, s.demoMode
	s.mu.Unlock()

	if !demo {
		if err := backend.CancelEvent(ctx, eventID); err != nil {
			return err
		}
		s.logger.Info("booking cancelled via calendar", "event_id", eventID)
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, rec := range s.bookings {
		if rec.ID != eventID {
			continue
		}
		s.bookings = slices.Delete(s.bookings, i, i+1)
		pos, _ := slices.BinarySearchFunc(s.demoSlots, rec.Interval, func(a, b Slot) int {
			return a.Start.Compare(b.Start)
		})
		s.demoSlots = slices.Insert(s.demoSlots, pos, rec.Interval)
		s.logger.Info("demo booking cancelled", "booking_id", eventID)
		return nil
	}
	return ErrBookingNotFound
}

// downgradeLocked flips to demo mode after an upstream failure. The flag is
// per agent lifetime: once demo, later requests stay demo until a new OAuth
// exchange reconnects the backend. Callers must hold s.mu.
func (s *Scheduler) downgradeLocked(now time.Time) {
	s.demoMode = true
	if s.downgraded {
		return
	}
	s.downgraded = true
	if len(s.demoSlots) == 0 {
		s.demoSlots = s.opts.Generate(now)
	}
	s.logger.Warn("downgraded to demo calendar for remainder of agent lifetime", "slots", len(s.demoSlots))
}
