// Package scheduling holds the booking rules of an organization: weekly
// business hours, slot generation, booking validation, plan limits and the
// onboarding state machine. Everything here is a pure function of its
// inputs; loading and persisting state is the caller's job.
package scheduling

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"bookingpro-backend/apperror"
)

// Minute is a wall-clock time of day expressed as minutes since local
// midnight in the organization's timezone.
type Minute int

const MinutesPerDay Minute = 24 * 60

// ParseClock parses "HH:MM" (24h). "24:00" is accepted as end of day.
func ParseClock(s string) (Minute, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || len(hh) == 0 || len(hh) > 2 || len(mm) != 2 {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	if h < 0 || m < 0 || m > 59 || h > 24 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("time %q out of range", s)
	}
	return Minute(h*60 + m), nil
}

// String formats the minute as "HH:MM".
func (m Minute) String() string {
	return fmt.Sprintf("%02d:%02d", int(m)/60, int(m)%60)
}

func (m Minute) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Minute) UnmarshalText(b []byte) error {
	v, err := ParseClock(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Interval is a half-open range [Start, End) of minutes within a day.
type Interval struct {
	Start Minute
	End   Minute
}

func (i Interval) Overlaps(o Interval) bool {
	return i.Start < o.End && o.Start < i.End
}

func (i Interval) Contains(o Interval) bool {
	return i.Start <= o.Start && o.End <= i.End
}

// Break is a pause inside an open day, in wire form.
type Break struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// DaySchedule is one weekday of BusinessHours, in wire form.
type DaySchedule struct {
	IsOpen    bool    `json:"isOpen"`
	OpenTime  string  `json:"openTime,omitempty"`
	CloseTime string  `json:"closeTime,omitempty"`
	Breaks    []Break `json:"breaks,omitempty"`
}

// BusinessHours maps lower-case weekday names ("monday" ... "sunday") to
// the schedule of that day. Days that are not present are closed.
type BusinessHours map[string]DaySchedule

var weekdayKeys = [7]string{
	time.Sunday:    "sunday",
	time.Monday:    "monday",
	time.Tuesday:   "tuesday",
	time.Wednesday: "wednesday",
	time.Thursday:  "thursday",
	time.Friday:    "friday",
	time.Saturday:  "saturday",
}

// WeekdayKey returns the BusinessHours key of a weekday.
func WeekdayKey(d time.Weekday) string {
	return weekdayKeys[d]
}

// ParseWeekday maps a BusinessHours key back to a time.Weekday.
func ParseWeekday(key string) (time.Weekday, bool) {
	for d, k := range weekdayKeys {
		if k == key {
			return time.Weekday(d), true
		}
	}
	return 0, false
}

// DayWindow is a validated day: opening hours and sorted breaks in minutes.
type DayWindow struct {
	Open   bool
	Hours  Interval
	Breaks []Interval
}

// WeeklySchedule is normalized BusinessHours indexed by time.Weekday.
type WeeklySchedule [7]DayWindow

// Day returns the window for the given weekday.
func (w WeeklySchedule) Day(d time.Weekday) DayWindow {
	return w[d]
}

// Validate checks business hours and returns them normalized. Open days
// must close after they open; breaks must be non-empty, lie within opening
// hours and not overlap each other. A break may start at opening time or
// end at closing time.
func Validate(hours BusinessHours) (WeeklySchedule, error) {
	var week WeeklySchedule

	unknown := make([]string, 0)
	for key := range hours {
		if _, ok := ParseWeekday(key); !ok {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return WeeklySchedule{}, apperror.NewValidationError("unknown weekday in business hours", strings.Join(unknown, ", "))
	}

	for d, key := range weekdayKeys {
		day, ok := hours[key]
		if !ok || !day.IsOpen {
			continue
		}
		window, err := normalizeDay(day)
		if err != nil {
			return WeeklySchedule{}, apperror.NewValidationError("invalid business hours", key+": "+err.Error())
		}
		week[d] = window
	}
	return week, nil
}

func normalizeDay(day DaySchedule) (DayWindow, error) {
	open, err := ParseClock(day.OpenTime)
	if err != nil {
		return DayWindow{}, fmt.Errorf("openTime: %w", err)
	}
	closing, err := ParseClock(day.CloseTime)
	if err != nil {
		return DayWindow{}, fmt.Errorf("closeTime: %w", err)
	}
	if open >= closing {
		return DayWindow{}, fmt.Errorf("openTime %s must be before closeTime %s", open, closing)
	}
	hours := Interval{Start: open, End: closing}

	breaks := make([]Interval, 0, len(day.Breaks))
	for _, b := range day.Breaks {
		start, err := ParseClock(b.StartTime)
		if err != nil {
			return DayWindow{}, fmt.Errorf("break startTime: %w", err)
		}
		end, err := ParseClock(b.EndTime)
		if err != nil {
			return DayWindow{}, fmt.Errorf("break endTime: %w", err)
		}
		br := Interval{Start: start, End: end}
		if start >= end {
			return DayWindow{}, fmt.Errorf("break %s-%s is empty", start, end)
		}
		if !hours.Contains(br) {
			return DayWindow{}, fmt.Errorf("break %s-%s outside opening hours %s-%s", start, end, open, closing)
		}
		breaks = append(breaks, br)
	}

	sort.Slice(breaks, func(i, j int) bool { return breaks[i].Start < breaks[j].Start })
	for i := 1; i < len(breaks); i++ {
		if breaks[i].Start < breaks[i-1].End {
			return DayWindow{}, fmt.Errorf("breaks %s-%s and %s-%s overlap",
				breaks[i-1].Start, breaks[i-1].End, breaks[i].Start, breaks[i].End)
		}
	}

	return DayWindow{Open: true, Hours: hours, Breaks: breaks}, nil
}

// DefaultBusinessHours is the week applied to newly registered organizations.
func DefaultBusinessHours() BusinessHours {
	weekday := DaySchedule{IsOpen: true, OpenTime: "09:00", CloseTime: "20:00"}
	return BusinessHours{
		"monday":    weekday,
		"tuesday":   weekday,
		"wednesday": weekday,
		"thursday":  weekday,
		"friday":    weekday,
		"saturday":  {IsOpen: true, OpenTime: "09:00", CloseTime: "21:00"},
		"sunday":    {IsOpen: false, OpenTime: "10:00", CloseTime: "19:00"},
	}
}
