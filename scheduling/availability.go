package scheduling

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"bookingpro-backend/apperror"
)

// BufferPolicy decides on which side of an existing booking the buffer
// applies.
type BufferPolicy string

const (
	// BufferAfter requires idle time only after a booking ends.
	BufferAfter BufferPolicy = "after"
	// BufferSymmetric requires idle time before and after a booking.
	BufferSymmetric BufferPolicy = "symmetric"
)

func (p BufferPolicy) Valid() bool {
	return p == BufferAfter || p == BufferSymmetric
}

// Slot is a bookable interval for one resource on one day.
type Slot struct {
	ResourceID uuid.UUID `json:"resourceId"`
	Date       Date      `json:"date"`
	Start      Minute    `json:"startTime"`
	End        Minute    `json:"endTime"`
}

func (s Slot) StartTime(loc *time.Location) time.Time {
	return s.Date.At(s.Start, loc)
}

func (s Slot) EndTime(loc *time.Location) time.Time {
	return s.Date.At(s.End, loc)
}

// Booking is an existing appointment occupying a resource.
type Booking struct {
	ResourceID uuid.UUID
	Start      time.Time
	End        time.Time
}

// SlotQuery is the input of ComputeSlots.
type SlotQuery struct {
	Schedule           WeeklySchedule
	Resources          []uuid.UUID
	DurationMinutes    int
	BufferMinutes      int
	BufferPolicy       BufferPolicy
	GranularityMinutes int
	Bookings           []Booking
	Range              DateRange
	Location           *time.Location

	// Now and IncludePast control whether slots starting before Now are
	// returned. Public booking pages leave IncludePast unset.
	Now         time.Time
	IncludePast bool
}

// ComputeSlots returns every bookable slot of the query's resources inside
// the date range, ordered by date, start time and resource ID.
func ComputeSlots(q SlotQuery) ([]Slot, error) {
	if q.DurationMinutes <= 0 {
		return nil, apperror.NewValidationError("service duration must be positive")
	}
	if q.GranularityMinutes <= 0 {
		return nil, apperror.NewValidationError("slot granularity must be positive")
	}
	if q.BufferMinutes < 0 {
		return nil, apperror.NewValidationError("buffer must not be negative")
	}
	policy := q.BufferPolicy
	if policy == "" {
		policy = BufferAfter
	}
	if !policy.Valid() {
		return nil, apperror.NewValidationError("unknown buffer policy", string(policy))
	}
	loc := q.Location
	if loc == nil {
		loc = time.UTC
	}

	slots := make([]Slot, 0)
	if q.Range.IsEmpty() || len(q.Resources) == 0 {
		return slots, nil
	}

	resources := make([]uuid.UUID, len(q.Resources))
	copy(resources, q.Resources)
	sort.Slice(resources, func(i, j int) bool { return resources[i].String() < resources[j].String() })

	occupied := blockedIntervals(q.Bookings, time.Duration(q.BufferMinutes)*time.Minute, policy)
	duration := Minute(q.DurationMinutes)
	step := Minute(q.GranularityMinutes)

	for day := q.Range.Start; day.Before(q.Range.End); day = day.AddDays(1) {
		window := q.Schedule.Day(day.Weekday())
		if !window.Open {
			continue
		}
		candidates := candidateIntervals(window, duration, step)
		if len(candidates) == 0 {
			continue
		}

		busy := make(map[uuid.UUID][]Interval, len(resources))
		for _, id := range resources {
			busy[id] = projectOnDay(occupied[id], day, loc)
		}

		for _, c := range candidates {
			for _, id := range resources {
				if overlapsAny(c, busy[id]) {
					continue
				}
				slot := Slot{ResourceID: id, Date: day, Start: c.Start, End: c.End}
				if !q.IncludePast && slot.StartTime(loc).Before(q.Now) {
					continue
				}
				slots = append(slots, slot)
			}
		}
	}
	return slots, nil
}

// ConflictsWithBookings reports whether [start, end) on a resource clashes
// with any existing booking once the buffer is applied.
func ConflictsWithBookings(resourceID uuid.UUID, start, end time.Time, bookings []Booking, bufferMinutes int, policy BufferPolicy) bool {
	if policy == "" {
		policy = BufferAfter
	}
	blocked := blockedIntervals(bookings, time.Duration(bufferMinutes)*time.Minute, policy)
	for _, b := range blocked[resourceID] {
		if start.Before(b.End) && end.After(b.Start) {
			return true
		}
	}
	return false
}

// candidateIntervals steps through opening hours and drops candidates that
// touch a break.
func candidateIntervals(window DayWindow, duration, step Minute) []Interval {
	var out []Interval
	for start := window.Hours.Start; start+duration <= window.Hours.End; start += step {
		c := Interval{Start: start, End: start + duration}
		if overlapsAny(c, window.Breaks) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// blockedIntervals extends every booking by the buffer and groups them by
// resource.
func blockedIntervals(bookings []Booking, buffer time.Duration, policy BufferPolicy) map[uuid.UUID][]Booking {
	out := make(map[uuid.UUID][]Booking)
	for _, b := range bookings {
		if !b.End.After(b.Start) {
			continue
		}
		blocked := Booking{ResourceID: b.ResourceID, Start: b.Start, End: b.End.Add(buffer)}
		if policy == BufferSymmetric {
			blocked.Start = b.Start.Add(-buffer)
		}
		out[b.ResourceID] = append(out[b.ResourceID], blocked)
	}
	return out
}

// projectOnDay clips absolute intervals to the given day and converts them
// to minutes since local midnight.
func projectOnDay(bookings []Booking, day Date, loc *time.Location) []Interval {
	dayStart := day.Midnight(loc)
	dayEnd := day.AddDays(1).Midnight(loc)

	var out []Interval
	for _, b := range bookings {
		if !b.End.After(dayStart) || !b.Start.Before(dayEnd) {
			continue
		}
		iv := Interval{Start: 0, End: MinutesPerDay}
		if b.Start.After(dayStart) {
			iv.Start = minuteOfDay(b.Start.In(loc))
		}
		if b.End.Before(dayEnd) {
			iv.End = minuteOfDay(b.End.In(loc))
			if b.End.In(loc).Second() > 0 || b.End.In(loc).Nanosecond() > 0 {
				iv.End++
			}
		}
		out = append(out, iv)
	}
	return out
}

func minuteOfDay(t time.Time) Minute {
	return Minute(t.Hour()*60 + t.Minute())
}

func overlapsAny(c Interval, intervals []Interval) bool {
	for _, iv := range intervals {
		if c.Overlaps(iv) {
			return true
		}
	}
	return false
}
