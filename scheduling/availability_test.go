package scheduling

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookingpro-backend/apperror"
)

// 2026-10-19 is a Monday.
var monday = Date{Year: 2026, Month: time.October, Day: 19}

func mustWeek(t *testing.T, hours BusinessHours) WeeklySchedule {
	t.Helper()
	week, err := Validate(hours)
	require.NoError(t, err)
	return week
}

func nineToFive(t *testing.T) WeeklySchedule {
	return mustWeek(t, BusinessHours{
		"monday": {IsOpen: true, OpenTime: "09:00", CloseTime: "17:00"},
	})
}

func at(d Date, clock string) time.Time {
	m, err := ParseClock(clock)
	if err != nil {
		panic(err)
	}
	return d.At(m, time.UTC)
}

func hasSlotAt(slots []Slot, resource uuid.UUID, clock string) bool {
	m, _ := ParseClock(clock)
	for _, s := range slots {
		if s.ResourceID == resource && s.Start == m {
			return true
		}
	}
	return false
}

func TestComputeSlots_OpenDayNoBookings(t *testing.T) {
	resource := uuid.New()
	slots, err := ComputeSlots(SlotQuery{
		Schedule:           nineToFive(t),
		Resources:          []uuid.UUID{resource},
		DurationMinutes:    60,
		BufferMinutes:      15,
		GranularityMinutes: 30,
		Range:              NewDateRange(monday, 1),
		IncludePast:        true,
	})
	require.NoError(t, err)
	require.Len(t, slots, 15)

	assert.Equal(t, Slot{ResourceID: resource, Date: monday, Start: 540, End: 600}, slots[0])
	assert.Equal(t, Slot{ResourceID: resource, Date: monday, Start: 960, End: 1020}, slots[len(slots)-1])
}

func TestComputeSlots_BufferAfterExistingBooking(t *testing.T) {
	resource := uuid.New()
	slots, err := ComputeSlots(SlotQuery{
		Schedule:           nineToFive(t),
		Resources:          []uuid.UUID{resource},
		DurationMinutes:    60,
		BufferMinutes:      15,
		GranularityMinutes: 15,
		Bookings: []Booking{
			{ResourceID: resource, Start: at(monday, "10:00"), End: at(monday, "11:00")},
		},
		Range:       NewDateRange(monday, 1),
		IncludePast: true,
	})
	require.NoError(t, err)

	assert.True(t, hasSlotAt(slots, resource, "09:00"), "slot ending when the booking starts stays valid")
	assert.False(t, hasSlotAt(slots, resource, "09:15"))
	assert.False(t, hasSlotAt(slots, resource, "11:00"), "buffer zone after the booking")

	var afterNine []Slot
	for _, s := range slots {
		if s.Start > 540 {
			afterNine = append(afterNine, s)
		}
	}
	require.NotEmpty(t, afterNine)
	assert.Equal(t, Minute(675), afterNine[0].Start, "next valid slot starts at 11:15")
}

func TestComputeSlots_SymmetricBuffer(t *testing.T) {
	resource := uuid.New()
	slots, err := ComputeSlots(SlotQuery{
		Schedule:           nineToFive(t),
		Resources:          []uuid.UUID{resource},
		DurationMinutes:    60,
		BufferMinutes:      15,
		BufferPolicy:       BufferSymmetric,
		GranularityMinutes: 15,
		Bookings: []Booking{
			{ResourceID: resource, Start: at(monday, "11:00"), End: at(monday, "12:00")},
		},
		Range:       NewDateRange(monday, 1),
		IncludePast: true,
	})
	require.NoError(t, err)

	assert.True(t, hasSlotAt(slots, resource, "09:45"))
	assert.False(t, hasSlotAt(slots, resource, "10:00"), "needs idle time before the booking")
	assert.True(t, hasSlotAt(slots, resource, "12:15"))
}

func TestComputeSlots_BookingOnOtherResourceIgnored(t *testing.T) {
	busy, free := uuid.New(), uuid.New()
	slots, err := ComputeSlots(SlotQuery{
		Schedule:           nineToFive(t),
		Resources:          []uuid.UUID{busy, free},
		DurationMinutes:    60,
		GranularityMinutes: 60,
		Bookings: []Booking{
			{ResourceID: busy, Start: at(monday, "09:00"), End: at(monday, "17:00")},
		},
		Range:       NewDateRange(monday, 1),
		IncludePast: true,
	})
	require.NoError(t, err)
	require.Len(t, slots, 8)
	for _, s := range slots {
		assert.Equal(t, free, s.ResourceID)
	}
}

func TestComputeSlots_SkipsBreaks(t *testing.T) {
	resource := uuid.New()
	week := mustWeek(t, BusinessHours{
		"monday": {
			IsOpen: true, OpenTime: "09:00", CloseTime: "17:00",
			Breaks: []Break{{StartTime: "12:00", EndTime: "13:00"}},
		},
	})
	slots, err := ComputeSlots(SlotQuery{
		Schedule:           week,
		Resources:          []uuid.UUID{resource},
		DurationMinutes:    60,
		GranularityMinutes: 30,
		Range:              NewDateRange(monday, 1),
		IncludePast:        true,
	})
	require.NoError(t, err)

	assert.True(t, hasSlotAt(slots, resource, "11:00"))
	assert.False(t, hasSlotAt(slots, resource, "11:30"))
	assert.False(t, hasSlotAt(slots, resource, "12:00"))
	assert.False(t, hasSlotAt(slots, resource, "12:30"))
	assert.True(t, hasSlotAt(slots, resource, "13:00"))
}

func TestComputeSlots_SlotsStayInsideHoursAndOutsideBreaks(t *testing.T) {
	week := mustWeek(t, BusinessHours{
		"monday":    {IsOpen: true, OpenTime: "08:15", CloseTime: "18:40", Breaks: []Break{{StartTime: "10:10", EndTime: "10:25"}, {StartTime: "13:00", EndTime: "14:00"}}},
		"tuesday":   {IsOpen: true, OpenTime: "07:00", CloseTime: "11:00"},
		"wednesday": {IsOpen: true, OpenTime: "12:00", CloseTime: "23:45", Breaks: []Break{{StartTime: "18:00", EndTime: "18:45"}}},
	})
	resources := []uuid.UUID{uuid.New(), uuid.New()}

	for _, duration := range []int{15, 25, 45, 90} {
		for _, step := range []int{5, 10, 30} {
			slots, err := ComputeSlots(SlotQuery{
				Schedule:           week,
				Resources:          resources,
				DurationMinutes:    duration,
				BufferMinutes:      10,
				GranularityMinutes: step,
				Range:              NewDateRange(monday, 7),
				IncludePast:        true,
			})
			require.NoError(t, err)
			require.NotEmpty(t, slots)

			for _, s := range slots {
				day := week.Day(s.Date.Weekday())
				require.True(t, day.Open)
				iv := Interval{Start: s.Start, End: s.End}
				assert.True(t, day.Hours.Contains(iv), "slot %v outside opening hours", s)
				for _, br := range day.Breaks {
					assert.False(t, iv.Overlaps(br), "slot %v overlaps break %v", s, br)
				}
				assert.Equal(t, Minute(duration), s.End-s.Start)
			}
		}
	}
}

func TestComputeSlots_BufferSpacingWhenStepCoversBuffer(t *testing.T) {
	resource := uuid.New()
	slots, err := ComputeSlots(SlotQuery{
		Schedule:           nineToFive(t),
		Resources:          []uuid.UUID{resource},
		DurationMinutes:    45,
		BufferMinutes:      15,
		GranularityMinutes: 60,
		Range:              NewDateRange(monday, 1),
		IncludePast:        true,
	})
	require.NoError(t, err)
	require.NotEmpty(t, slots)
	for i := 1; i < len(slots); i++ {
		assert.LessOrEqual(t, slots[i-1].End+15, slots[i].Start)
	}
}

func TestComputeSlots_ClosedDaysAndRange(t *testing.T) {
	resource := uuid.New()
	slots, err := ComputeSlots(SlotQuery{
		Schedule:           nineToFive(t),
		Resources:          []uuid.UUID{resource},
		DurationMinutes:    60,
		GranularityMinutes: 60,
		Range:              NewDateRange(monday, 14),
		IncludePast:        true,
	})
	require.NoError(t, err)
	require.Len(t, slots, 16, "two mondays of eight slots")
	assert.Equal(t, monday, slots[0].Date)
	assert.Equal(t, monday.AddDays(7), slots[8].Date)
}

func TestComputeSlots_ZeroLengthRange(t *testing.T) {
	slots, err := ComputeSlots(SlotQuery{
		Schedule:           nineToFive(t),
		Resources:          []uuid.UUID{uuid.New()},
		DurationMinutes:    60,
		GranularityMinutes: 30,
		Range:              DateRange{Start: monday, End: monday},
	})
	require.NoError(t, err)
	assert.Empty(t, slots)
	assert.NotNil(t, slots)
}

func TestComputeSlots_InvalidInput(t *testing.T) {
	base := SlotQuery{
		Schedule:           nineToFive(t),
		Resources:          []uuid.UUID{uuid.New()},
		DurationMinutes:    60,
		GranularityMinutes: 30,
		Range:              NewDateRange(monday, 1),
	}

	tests := []struct {
		name   string
		mutate func(q *SlotQuery)
	}{
		{"zero duration", func(q *SlotQuery) { q.DurationMinutes = 0 }},
		{"negative duration", func(q *SlotQuery) { q.DurationMinutes = -30 }},
		{"zero granularity", func(q *SlotQuery) { q.GranularityMinutes = 0 }},
		{"negative buffer", func(q *SlotQuery) { q.BufferMinutes = -5 }},
		{"unknown policy", func(q *SlotQuery) { q.BufferPolicy = "before" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := base
			tt.mutate(&q)
			_, err := ComputeSlots(q)
			require.Error(t, err)
			assert.True(t, apperror.IsValidation(err))
		})
	}
}

func TestComputeSlots_PastSlotsFilteredUnlessRequested(t *testing.T) {
	resource := uuid.New()
	q := SlotQuery{
		Schedule:           nineToFive(t),
		Resources:          []uuid.UUID{resource},
		DurationMinutes:    60,
		GranularityMinutes: 60,
		Range:              NewDateRange(monday, 1),
		Now:                at(monday, "12:30"),
	}

	public, err := ComputeSlots(q)
	require.NoError(t, err)
	require.NotEmpty(t, public)
	assert.Equal(t, Minute(780), public[0].Start)

	q.IncludePast = true
	admin, err := ComputeSlots(q)
	require.NoError(t, err)
	assert.Equal(t, Minute(540), admin[0].Start)
	assert.Len(t, admin, 8)
}

func TestComputeSlots_OrderedByStartThenResource(t *testing.T) {
	a := uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	b := uuid.MustParse("00000000-0000-0000-0000-00000000000b")
	slots, err := ComputeSlots(SlotQuery{
		Schedule:           nineToFive(t),
		Resources:          []uuid.UUID{b, a},
		DurationMinutes:    60,
		GranularityMinutes: 60,
		Range:              NewDateRange(monday, 1),
		IncludePast:        true,
	})
	require.NoError(t, err)
	require.Len(t, slots, 16)
	assert.Equal(t, a, slots[0].ResourceID)
	assert.Equal(t, b, slots[1].ResourceID)
	assert.Equal(t, slots[0].Start, slots[1].Start)
	for i := 1; i < len(slots); i++ {
		assert.LessOrEqual(t, slots[i-1].Start, slots[i].Start)
	}
}

func TestComputeSlots_ProjectsBookingsIntoOrganizationTimezone(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	resource := uuid.New()

	// 14:00 UTC is 10:00 in New York (EDT) on this date.
	start := time.Date(2026, time.October, 19, 14, 0, 0, 0, time.UTC)
	slots, err := ComputeSlots(SlotQuery{
		Schedule:           nineToFive(t),
		Resources:          []uuid.UUID{resource},
		DurationMinutes:    60,
		GranularityMinutes: 60,
		Bookings:           []Booking{{ResourceID: resource, Start: start, End: start.Add(time.Hour)}},
		Range:              NewDateRange(monday, 1),
		Location:           loc,
		IncludePast:        true,
	})
	require.NoError(t, err)

	assert.True(t, hasSlotAt(slots, resource, "09:00"))
	assert.False(t, hasSlotAt(slots, resource, "10:00"))
	assert.True(t, hasSlotAt(slots, resource, "11:00"))
	assert.Equal(t, start.Add(-time.Hour), slots[0].StartTime(loc).UTC())
}

func TestComputeSlots_BookingSpanningMidnight(t *testing.T) {
	resource := uuid.New()
	week := mustWeek(t, BusinessHours{
		"monday": {IsOpen: true, OpenTime: "00:00", CloseTime: "04:00"},
	})
	slots, err := ComputeSlots(SlotQuery{
		Schedule:           week,
		Resources:          []uuid.UUID{resource},
		DurationMinutes:    60,
		GranularityMinutes: 60,
		Bookings: []Booking{{
			ResourceID: resource,
			Start:      at(monday.AddDays(-1), "23:00"),
			End:        at(monday, "01:00"),
		}},
		Range:       NewDateRange(monday, 1),
		IncludePast: true,
	})
	require.NoError(t, err)
	assert.False(t, hasSlotAt(slots, resource, "00:00"))
	assert.True(t, hasSlotAt(slots, resource, "01:00"))
}

func TestConflictsWithBookings(t *testing.T) {
	resource := uuid.New()
	bookings := []Booking{{ResourceID: resource, Start: at(monday, "10:00"), End: at(monday, "11:00")}}

	assert.False(t, ConflictsWithBookings(resource, at(monday, "09:00"), at(monday, "10:00"), bookings, 15, BufferAfter))
	assert.True(t, ConflictsWithBookings(resource, at(monday, "11:00"), at(monday, "12:00"), bookings, 15, BufferAfter))
	assert.False(t, ConflictsWithBookings(resource, at(monday, "11:15"), at(monday, "12:15"), bookings, 15, ""))
	assert.True(t, ConflictsWithBookings(resource, at(monday, "09:00"), at(monday, "10:00"), bookings, 15, BufferSymmetric))
	assert.False(t, ConflictsWithBookings(uuid.New(), at(monday, "10:00"), at(monday, "11:00"), bookings, 15, BufferAfter))
}
