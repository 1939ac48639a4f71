package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the ISO calendar date format used for every schedule date.
const DateLayout = "2006-01-02"

type Kind string

const (
	KindRegular Kind = "regular"
	KindCustom  Kind = "custom"
)

type Frequency string

const (
	FrequencyDaily    Frequency = "daily"
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyMonthly  Frequency = "monthly"
)

type ScheduleType string

const (
	ScheduleTypeOneOff    ScheduleType = "one_off"
	ScheduleTypeRecurring ScheduleType = "recurring"
)

var (
	ErrInvalidSchedule  = errors.New("invalid schedule")
	ErrMissingPattern   = errors.New("recurring schedule has no pattern")
	ErrMissingStartDate = errors.New("custom schedule has no start date")
	ErrInvalidDate      = errors.New("invalid schedule date")
)

// Pattern is the repetition rule of a custom recurring schedule.
type Pattern struct {
	Frequency  Frequency `json:"frequency" yaml:"frequency"`
	Interval   int       `json:"interval,omitempty" yaml:"interval,omitempty"`
	DaysOfWeek []string  `json:"daysOfWeek,omitempty" yaml:"days_of_week,omitempty"`
	DayOfMonth int       `json:"dayOfMonth,omitempty" yaml:"day_of_month,omitempty"`
}

func (p Pattern) interval() int {
	if p.Interval < 1 {
		return 1
	}
	return p.Interval
}

// Schedule describes when a gathering meets. Regular schedules use DayOfWeek
// and Frequency; custom schedules use ScheduleType, the dates and Pattern.
type Schedule struct {
	Kind         Kind         `json:"kind"`
	DayOfWeek    string       `json:"dayOfWeek,omitempty"`
	Frequency    Frequency    `json:"frequency,omitempty"`
	ScheduleType ScheduleType `json:"scheduleType,omitempty"`
	StartDate    string       `json:"startDate,omitempty"`
	EndDate      string       `json:"endDate,omitempty"`
	Pattern      *Pattern     `json:"pattern,omitempty"`
}

// Occurrence is one concrete meeting date.
type Occurrence struct {
	Date      string `json:"date"`
	CanDelete bool   `json:"canDelete"`
}

// Time returns the occurrence date at midnight in loc.
func (o Occurrence) Time(loc *time.Location) (time.Time, error) {
	return ParseDate(o.Date, loc)
}

// Validate reports configuration problems strictly. Generate is more lenient
// and only fails on the errors a caller cannot recover from.
func (s Schedule) Validate() error {
	switch s.Kind {
	case KindRegular:
		if _, ok := ParseWeekday(s.DayOfWeek); !ok {
			return fmt.Errorf("%w: unknown day of week %q", ErrInvalidSchedule, s.DayOfWeek)
		}
		switch s.Frequency {
		case FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly:
		default:
			return fmt.Errorf("%w: unsupported frequency %q", ErrInvalidSchedule, s.Frequency)
		}
		return nil
	case KindCustom:
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidSchedule, s.Kind)
	}

	if strings.TrimSpace(s.StartDate) == "" {
		return ErrMissingStartDate
	}
	start, err := ParseDate(s.StartDate, time.UTC)
	if err != nil {
		return err
	}

	switch s.ScheduleType {
	case ScheduleTypeOneOff:
		return nil
	case ScheduleTypeRecurring:
	default:
		return fmt.Errorf("%w: unknown schedule type %q", ErrInvalidSchedule, s.ScheduleType)
	}

	if s.Pattern == nil {
		return ErrMissingPattern
	}
	if s.EndDate != "" {
		end, err := ParseDate(s.EndDate, time.UTC)
		if err != nil {
			return err
		}
		if end.Before(start) {
			return fmt.Errorf("%w: end date %s is before start date %s", ErrInvalidSchedule, s.EndDate, s.StartDate)
		}
	}
	if s.Pattern.Interval < 0 {
		return fmt.Errorf("%w: interval must be positive", ErrInvalidSchedule)
	}

	switch s.Pattern.Frequency {
	case FrequencyDaily:
	case FrequencyWeekly:
		if len(s.Pattern.DaysOfWeek) == 0 {
			return fmt.Errorf("%w: weekly pattern needs days of week", ErrInvalidSchedule)
		}
		for _, name := range s.Pattern.DaysOfWeek {
			if _, ok := ParseWeekday(name); !ok {
				return fmt.Errorf("%w: unknown day of week %q", ErrInvalidSchedule, name)
			}
		}
	case FrequencyMonthly:
		if s.Pattern.DayOfMonth < 1 || s.Pattern.DayOfMonth > 31 {
			return fmt.Errorf("%w: day of month must be 1..31", ErrInvalidSchedule)
		}
	default:
		return fmt.Errorf("%w: unsupported pattern frequency %q", ErrInvalidSchedule, s.Pattern.Frequency)
	}

	return nil
}

// ParseDate parses an ISO calendar date at midnight in loc.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(value), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	return t, nil
}

// FormatDate renders t as an ISO calendar date.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseWeekday maps a day name like "Sunday" to its weekday, ignoring case.
func ParseWeekday(name string) (time.Weekday, bool) {
	wd, ok := weekdays[strings.ToLower(strings.TrimSpace(name))]
	return wd, ok
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

// addMonths moves t by n calendar months, clamping the day to the last day of
// the target month instead of rolling over.
func addMonths(t time.Time, n int) time.Time {
	return monthDay(t, n, t.Day())
}

// monthDay returns the given day in the month n months after t, clamped.
func monthDay(t time.Time, n, day int) time.Time {
	first := time.Date(t.Year(), t.Month()+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	if last := daysIn(first.Year(), first.Month(), first.Location()); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, first.Location())
}
