package service

import (
	"fmt"
	"strings"
	"time"

	"church-attendance/internal/models"
	"church-attendance/internal/repository"
	"church-attendance/internal/schedule"

	"github.com/sirupsen/logrus"
)

type GatheringInput struct {
	Name        string
	Description string
	Schedule    schedule.Schedule
	IsActive    *bool
}

type GatheringService struct {
	repo          repository.GatheringRepository
	location      *time.Location
	horizonMonths int
	logger        *logrus.Logger
}

func NewGatheringService(repo repository.GatheringRepository, location *time.Location, horizonMonths int) *GatheringService {
	if location == nil {
		location = time.Local
	}
	if horizonMonths <= 0 {
		horizonMonths = schedule.DefaultHorizonMonths
	}
	if horizonMonths > schedule.MaxHorizonMonths {
		horizonMonths = schedule.MaxHorizonMonths
	}
	return &GatheringService{
		repo:          repo,
		location:      location,
		horizonMonths: horizonMonths,
		logger:        newLogger(),
	}
}

// Today returns the current calendar date in the configured location.
func (s *GatheringService) Today() time.Time {
	now := time.Now().In(s.location)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.location)
}

func (s *GatheringService) Location() *time.Location {
	return s.location
}

func (s *GatheringService) HorizonMonths() int {
	return s.horizonMonths
}

// Create validates the schedule up front so misconfigured gatherings never get stored.
func (s *GatheringService) Create(in GatheringInput) (*models.Gathering, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if err := in.Schedule.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	existing, err := s.repo.GetByName(name)
	if err != nil {
		return nil, fmt.Errorf("failed to check gathering name: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: gathering %q", ErrConflict, name)
	}

	gathering := &models.Gathering{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		IsActive:    true,
	}
	if in.IsActive != nil {
		gathering.IsActive = *in.IsActive
	}
	gathering.SetSchedule(in.Schedule)

	if err := s.repo.Create(gathering); err != nil {
		return nil, fmt.Errorf("failed to create gathering: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"id":   gathering.ID,
		"name": gathering.Name,
	}).Info("Gathering created")

	return gathering, nil
}

func (s *GatheringService) Get(id uint) (*models.Gathering, error) {
	gathering, err := s.repo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get gathering: %w", err)
	}
	if gathering == nil {
		return nil, ErrNotFound
	}
	return gathering, nil
}

func (s *GatheringService) List(activeOnly bool) ([]*models.Gathering, error) {
	return s.repo.List(activeOnly)
}

func (s *GatheringService) Update(id uint, in GatheringInput) (*models.Gathering, error) {
	gathering, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if err := in.Schedule.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	if name := strings.TrimSpace(in.Name); name != "" && name != gathering.Name {
		existing, err := s.repo.GetByName(name)
		if err != nil {
			return nil, fmt.Errorf("failed to check gathering name: %w", err)
		}
		if existing != nil {
			return nil, fmt.Errorf("%w: gathering %q", ErrConflict, name)
		}
		gathering.Name = name
	}
	gathering.Description = strings.TrimSpace(in.Description)
	if in.IsActive != nil {
		gathering.IsActive = *in.IsActive
	}
	gathering.SetSchedule(in.Schedule)

	if err := s.repo.Update(gathering); err != nil {
		return nil, notFound(err)
	}

	return gathering, nil
}

func (s *GatheringService) Delete(id uint) error {
	if err := s.repo.Delete(id); err != nil {
		return notFound(err)
	}
	return nil
}

func (s *GatheringService) SetRoster(id uint, individualIDs []uint) (*models.Gathering, error) {
	if err := s.repo.SetRoster(id, individualIDs); err != nil {
		return nil, notFound(err)
	}
	return s.Get(id)
}

// Occurrences lists upcoming dates for the gathering. months <= 0 uses the
// configured horizon. Schedule configuration errors are returned as is.
func (s *GatheringService) Occurrences(id uint, today time.Time, months int) ([]schedule.Occurrence, error) {
	if months > schedule.MaxHorizonMonths {
		return nil, fmt.Errorf("%w: horizon of %d months exceeds %d", ErrInvalidInput, months, schedule.MaxHorizonMonths)
	}
	gathering, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if months <= 0 {
		months = s.horizonMonths
	}

	occurrences, err := schedule.Generate(gathering.Schedule(), today.In(s.location), months)
	if err != nil {
		s.logger.WithError(err).WithField("id", id).Warn("Gathering schedule is misconfigured")
		return nil, err
	}
	return occurrences, nil
}

// FormatGatherings renders the gathering list for chat output.
func (s *GatheringService) FormatGatherings(gatherings []*models.Gathering) string {
	if len(gatherings) == 0 {
		return "📭 No gatherings yet."
	}

	var sb strings.Builder
	sb.WriteString("⛪ Gatherings:\n\n")
	for _, g := range gatherings {
		status := "🟢"
		if !g.IsActive {
			status = "⚪"
		}
		sb.WriteString(fmt.Sprintf("%s %d. %s - %s\n", status, g.ID, g.Name, describeSchedule(g.Schedule())))
	}
	return sb.String()
}

// FormatOccurrences renders upcoming dates for chat output.
func (s *GatheringService) FormatOccurrences(gathering *models.Gathering, occurrences []schedule.Occurrence) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📅 Upcoming: %s\n\n", gathering.Name))
	if len(occurrences) == 0 {
		sb.WriteString("No upcoming dates.")
		return sb.String()
	}
	for _, o := range occurrences {
		d, err := o.Time(s.location)
		if err != nil {
			sb.WriteString("• " + o.Date + "\n")
			continue
		}
		sb.WriteString(fmt.Sprintf("• %s (%s)\n", o.Date, d.Weekday()))
	}
	return sb.String()
}

func describeSchedule(sch schedule.Schedule) string {
	switch sch.Kind {
	case schedule.KindRegular:
		return fmt.Sprintf("%s, %s", sch.DayOfWeek, sch.Frequency)
	case schedule.KindCustom:
		if sch.ScheduleType == schedule.ScheduleTypeOneOff {
			return "once on " + sch.StartDate
		}
		if sch.Pattern != nil {
			desc := fmt.Sprintf("%s from %s", sch.Pattern.Frequency, sch.StartDate)
			if sch.EndDate != "" {
				desc += " to " + sch.EndDate
			}
			return desc
		}
	}
	return "no schedule"
}
