package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// DefaultHorizonMonths bounds generation when the caller passes no horizon.
const DefaultHorizonMonths = 3

// MaxHorizonMonths is the longest window callers outside this package may request.
const MaxHorizonMonths = 24

var rruleWeekdays = map[time.Weekday]rrule.Weekday{
	time.Sunday:    rrule.SU,
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
}

// Generate returns the dates on which s occurs between today and
// today+horizonMonths, ascending. One-off schedules always yield their start
// date. Unknown kinds, days or frequencies yield an empty slice; missing
// required fields and malformed dates are returned as errors.
func Generate(s Schedule, today time.Time, horizonMonths int) ([]Occurrence, error) {
	if horizonMonths <= 0 {
		horizonMonths = DefaultHorizonMonths
	}
	today = truncateDay(today)
	horizon := addMonths(today, horizonMonths)

	switch s.Kind {
	case KindCustom:
		return generateCustom(s, today, horizon)
	case KindRegular:
		return generateRegular(s, today, horizon)
	}
	return []Occurrence{}, nil
}

func generateCustom(s Schedule, today, horizon time.Time) ([]Occurrence, error) {
	if strings.TrimSpace(s.StartDate) == "" {
		return nil, ErrMissingStartDate
	}
	start, err := ParseDate(s.StartDate, today.Location())
	if err != nil {
		return nil, err
	}

	switch s.ScheduleType {
	case ScheduleTypeOneOff:
		return []Occurrence{newOccurrence(start)}, nil
	case ScheduleTypeRecurring:
	default:
		return []Occurrence{}, nil
	}

	if s.Pattern == nil {
		return nil, ErrMissingPattern
	}

	end := horizon
	if strings.TrimSpace(s.EndDate) != "" {
		endDate, err := ParseDate(s.EndDate, today.Location())
		if err != nil {
			return nil, err
		}
		if endDate.Before(end) {
			end = endDate
		}
	}
	if end.Before(start) {
		return []Occurrence{}, nil
	}

	var dates []time.Time
	p := s.Pattern
	switch p.Frequency {
	case FrequencyDaily:
		dates, err = expand(rrule.ROption{
			Freq:     rrule.DAILY,
			Interval: p.interval(),
			Dtstart:  start,
			Until:    end,
		})
	case FrequencyWeekly:
		// Each day is checked on its own; interval does not apply here.
		days := byWeekday(p.DaysOfWeek)
		if len(days) == 0 {
			return []Occurrence{}, nil
		}
		dates, err = expand(rrule.ROption{
			Freq:      rrule.DAILY,
			Dtstart:   start,
			Until:     end,
			Byweekday: days,
		})
	case FrequencyMonthly:
		dates = monthlyByDay(start, end, p.DayOfMonth, p.interval())
	}
	if err != nil {
		return nil, err
	}

	return upcoming(dates, today), nil
}

func generateRegular(s Schedule, today, horizon time.Time) ([]Occurrence, error) {
	wd, ok := ParseWeekday(s.DayOfWeek)
	if !ok {
		return []Occurrence{}, nil
	}

	first := today
	for first.Weekday() != wd {
		first = first.AddDate(0, 0, 1)
	}

	var dates []time.Time
	switch s.Frequency {
	case FrequencyWeekly, FrequencyBiweekly:
		interval := 1
		if s.Frequency == FrequencyBiweekly {
			interval = 2
		}
		var err error
		dates, err = expand(rrule.ROption{
			Freq:     rrule.WEEKLY,
			Interval: interval,
			Dtstart:  first,
			Until:    horizon,
		})
		if err != nil {
			return nil, err
		}
	case FrequencyMonthly:
		for i := 0; ; i++ {
			d := addMonths(first, i)
			if d.After(horizon) {
				break
			}
			dates = append(dates, d)
		}
	}

	return upcoming(dates, today), nil
}

// monthlyByDay walks month by month from start and keeps the cursor only when
// it lands exactly on day. The cursor is clamped to the month length, so
// months without that day are skipped rather than spilling into the next one.
func monthlyByDay(start, end time.Time, day, interval int) []time.Time {
	if day < 1 || day > 31 {
		return nil
	}

	var dates []time.Time
	cursor := start
	for step := 1; !cursor.After(end); step++ {
		if cursor.Day() == day {
			dates = append(dates, cursor)
		}
		cursor = monthDay(start, step*interval, day)
	}
	return dates
}

func expand(opt rrule.ROption) ([]time.Time, error) {
	r, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, fmt.Errorf("expand recurrence: %w", err)
	}
	return r.All(), nil
}

func byWeekday(names []string) []rrule.Weekday {
	seen := make(map[time.Weekday]bool, len(names))
	days := make([]rrule.Weekday, 0, len(names))
	for _, name := range names {
		wd, ok := ParseWeekday(name)
		if !ok || seen[wd] {
			continue
		}
		seen[wd] = true
		days = append(days, rruleWeekdays[wd])
	}
	return days
}

func upcoming(dates []time.Time, today time.Time) []Occurrence {
	out := make([]Occurrence, 0, len(dates))
	for _, d := range dates {
		d = truncateDay(d)
		if d.Before(today) {
			continue
		}
		out = append(out, newOccurrence(d))
	}
	return out
}

func newOccurrence(d time.Time) Occurrence {
	return Occurrence{Date: FormatDate(d), CanDelete: true}
}
