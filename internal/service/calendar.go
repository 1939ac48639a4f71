package service

import (
	"fmt"
	"time"

	"church-attendance/internal/models"
	"church-attendance/internal/schedule"

	ics "github.com/arran4/golang-ical"
)

// CalendarService renders gathering occurrences as an iCalendar feed.
type CalendarService struct {
	gatherings *GatheringService
	productID  string
}

func NewCalendarService(gatherings *GatheringService) *CalendarService {
	return &CalendarService{
		gatherings: gatherings,
		productID:  "-//church-attendance//gatherings//EN",
	}
}

// Feed builds a calendar with one all-day event per upcoming occurrence.
func (s *CalendarService) Feed(id uint, today time.Time, months int) (string, error) {
	gathering, err := s.gatherings.Get(id)
	if err != nil {
		return "", err
	}
	occurrences, err := s.gatherings.Occurrences(id, today, months)
	if err != nil {
		return "", err
	}
	return s.build(gathering, occurrences, today)
}

func (s *CalendarService) build(gathering *models.Gathering, occurrences []schedule.Occurrence, stamp time.Time) (string, error) {
	loc := s.gatherings.Location()

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(s.productID)
	cal.SetXWRCalName(gathering.Name)

	for _, o := range occurrences {
		day, err := o.Time(loc)
		if err != nil {
			return "", fmt.Errorf("failed to parse occurrence %q: %w", o.Date, err)
		}
		event := cal.AddEvent(fmt.Sprintf("%s-%d@church-attendance", o.Date, gathering.ID))
		event.SetSummary(gathering.Name)
		if gathering.Description != "" {
			event.SetDescription(gathering.Description)
		}
		event.SetDtStampTime(stamp.UTC())
		event.SetAllDayStartAt(day)
		event.SetAllDayEndAt(day.AddDate(0, 0, 1))
	}

	return cal.Serialize(), nil
}
