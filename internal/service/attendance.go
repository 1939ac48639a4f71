package service

import (
	"fmt"
	"strings"

	"church-attendance/internal/models"
	"church-attendance/internal/report"
	"church-attendance/internal/repository"
	"church-attendance/internal/schedule"

	"github.com/sirupsen/logrus"
)

type AttendanceInput struct {
	IndividualID uint
	Present      bool
}

type VisitorInput struct {
	Key     string
	Name    string
	Present bool
}

type AttendanceService struct {
	gatherings *GatheringService
	repo       repository.AttendanceRepository
	logger     *logrus.Logger
}

func NewAttendanceService(gatherings *GatheringService, repo repository.AttendanceRepository) *AttendanceService {
	return &AttendanceService{
		gatherings: gatherings,
		repo:       repo,
		logger:     newLogger(),
	}
}

// Record stores the attendance for one gathering date, replacing whatever was
// recorded before. Every individual must be on the gathering roster.
func (s *AttendanceService) Record(gatheringID uint, date string, entries []AttendanceInput, visitors []VisitorInput, recordedBy *uint) (*models.AttendanceSession, error) {
	day, err := schedule.ParseDate(date, s.gatherings.Location())
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date %q", ErrInvalidInput, date)
	}

	gathering, err := s.gatherings.Get(gatheringID)
	if err != nil {
		return nil, err
	}

	session := &models.AttendanceSession{
		GatheringID: gatheringID,
		Date:        schedule.FormatDate(day),
		RecordedBy:  recordedBy,
	}

	seen := make(map[uint]bool, len(entries))
	for _, e := range entries {
		if !gathering.HasMember(e.IndividualID) {
			return nil, fmt.Errorf("%w: individual %d is not on the roster of %q", ErrInvalidInput, e.IndividualID, gathering.Name)
		}
		if seen[e.IndividualID] {
			return nil, fmt.Errorf("%w: individual %d listed twice", ErrInvalidInput, e.IndividualID)
		}
		seen[e.IndividualID] = true
		session.Records = append(session.Records, models.AttendanceRecord{
			IndividualID: e.IndividualID,
			Present:      e.Present,
		})
	}

	for _, v := range visitors {
		name := strings.TrimSpace(v.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: visitor name is required", ErrInvalidInput)
		}
		session.Visitors = append(session.Visitors, models.VisitorRecord{
			VisitorKey: strings.TrimSpace(v.Key),
			Name:       name,
			Present:    v.Present,
		})
	}

	if err := s.repo.SaveSession(session); err != nil {
		return nil, fmt.Errorf("failed to save attendance: %w", err)
	}

	return session, nil
}

// Session returns the attendance for one gathering date in report form. Roster
// members without a record count as absent. A date with nothing recorded
// yields ErrNotFound.
func (s *AttendanceService) Session(gatheringID uint, date string) (*report.Session, error) {
	gathering, err := s.gatherings.Get(gatheringID)
	if err != nil {
		return nil, err
	}

	stored, err := s.repo.GetSession(gatheringID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance: %w", err)
	}
	if stored == nil {
		return nil, ErrNotFound
	}

	return buildSession(gathering, stored, true), nil
}

func (s *AttendanceService) SessionDates(gatheringID uint, limit int) ([]string, error) {
	return s.repo.ListSessionDates(gatheringID, limit)
}

// buildSession converts a stored session. With fillRoster every roster member
// is listed and a missing record reads as absent; without it only members with
// a stored record appear, so people added to the roster later have no history.
func buildSession(gathering *models.Gathering, stored *models.AttendanceSession, fillRoster bool) *report.Session {
	present := make(map[uint]bool, len(stored.Records))
	for _, r := range stored.Records {
		present[r.IndividualID] = r.Present
	}

	session := &report.Session{
		GatheringID: gathering.ID,
		Date:        stored.Date,
		Attendance:  make([]report.AttendanceEntry, 0, len(gathering.Members)),
		Visitors:    make([]report.VisitorEntry, 0, len(stored.Visitors)),
	}

	for _, m := range gathering.Members {
		if _, recorded := present[m.ID]; !recorded && !fillRoster {
			continue
		}
		entry := report.AttendanceEntry{
			IndividualID: m.ID,
			FirstName:    m.FirstName,
			LastName:     m.LastName,
			FamilyID:     m.FamilyKey(),
			Present:      present[m.ID],
		}
		if m.Family != nil {
			entry.FamilyName = m.Family.Name
		}
		session.Attendance = append(session.Attendance, entry)
	}

	for _, v := range stored.Visitors {
		session.Visitors = append(session.Visitors, report.VisitorEntry{
			ID:      v.VisitorKey,
			Name:    v.Name,
			Present: v.Present,
		})
	}

	return session
}
