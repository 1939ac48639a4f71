// Package seed loads families and gatherings from a YAML file at startup.
package seed

import (
	"errors"
	"fmt"
	"os"

	"church-attendance/internal/schedule"
	"church-attendance/internal/service"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

type File struct {
	Families   []Family    `yaml:"families"`
	Gatherings []Gathering `yaml:"gatherings"`
}

type Family struct {
	Name    string   `yaml:"name"`
	Members []Member `yaml:"members"`
}

type Member struct {
	FirstName   string `yaml:"first_name"`
	LastName    string `yaml:"last_name"`
	MainContact string `yaml:"main_contact"`
}

type Gathering struct {
	Name         string            `yaml:"name"`
	Description  string            `yaml:"description"`
	Kind         string            `yaml:"kind"`
	DayOfWeek    string            `yaml:"day_of_week"`
	Frequency    string            `yaml:"frequency"`
	ScheduleType string            `yaml:"schedule_type"`
	StartDate    string            `yaml:"start_date"`
	EndDate      string            `yaml:"end_date"`
	Pattern      *schedule.Pattern `yaml:"pattern"`
	Active       *bool             `yaml:"active"`
	Members      []string          `yaml:"members"`
}

func (g Gathering) Schedule() schedule.Schedule {
	return schedule.Schedule{
		Kind:         schedule.Kind(g.Kind),
		DayOfWeek:    g.DayOfWeek,
		Frequency:    schedule.Frequency(g.Frequency),
		ScheduleType: schedule.ScheduleType(g.ScheduleType),
		StartDate:    g.StartDate,
		EndDate:      g.EndDate,
		Pattern:      g.Pattern,
	}
}

func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return &f, nil
}

// Result counts what Apply created and skipped.
type Result struct {
	FamiliesCreated   int
	FamiliesSkipped   int
	GatheringsCreated int
	GatheringsSkipped int
}

type Seeder struct {
	people     *service.PeopleService
	gatherings *service.GatheringService
	logger     *logrus.Logger
}

func NewSeeder(people *service.PeopleService, gatherings *service.GatheringService) *Seeder {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logger.SetLevel(logrus.GetLevel())

	return &Seeder{people: people, gatherings: gatherings, logger: logger}
}

// Apply creates missing families and gatherings. Existing ones, matched by
// name, are left untouched, so running it twice is harmless.
func (s *Seeder) Apply(f *File) (Result, error) {
	var res Result

	for _, fam := range f.Families {
		members := make([]service.FamilyMemberInput, 0, len(fam.Members))
		for _, m := range fam.Members {
			contact, ok := service.ParseMainContact(m.MainContact)
			if !ok {
				return res, fmt.Errorf("family %q: unknown main contact %q", fam.Name, m.MainContact)
			}
			members = append(members, service.FamilyMemberInput{
				FirstName:   m.FirstName,
				LastName:    m.LastName,
				MainContact: contact,
			})
		}

		_, err := s.people.ImportFamily(service.ImportFamilyRequest{Name: fam.Name, Members: members})
		switch {
		case errors.Is(err, service.ErrConflict):
			res.FamiliesSkipped++
		case err != nil:
			return res, fmt.Errorf("family %q: %w", fam.Name, err)
		default:
			res.FamiliesCreated++
		}
	}

	for _, g := range f.Gatherings {
		gathering, err := s.gatherings.Create(service.GatheringInput{
			Name:        g.Name,
			Description: g.Description,
			Schedule:    g.Schedule(),
			IsActive:    g.Active,
		})
		if errors.Is(err, service.ErrConflict) {
			res.GatheringsSkipped++
			continue
		}
		if err != nil {
			return res, fmt.Errorf("gathering %q: %w", g.Name, err)
		}
		res.GatheringsCreated++

		if len(g.Members) == 0 {
			continue
		}
		ids := make([]uint, 0, len(g.Members))
		for _, name := range g.Members {
			individual, err := s.people.FindByName(name)
			if err != nil {
				return res, fmt.Errorf("gathering %q: member %q: %w", g.Name, name, err)
			}
			ids = append(ids, individual.ID)
		}
		if _, err := s.gatherings.SetRoster(gathering.ID, ids); err != nil {
			return res, fmt.Errorf("gathering %q: roster: %w", g.Name, err)
		}
	}

	s.logger.WithFields(logrus.Fields{
		"families_created":   res.FamiliesCreated,
		"families_skipped":   res.FamiliesSkipped,
		"gatherings_created": res.GatheringsCreated,
		"gatherings_skipped": res.GatheringsSkipped,
	}).Info("Seed applied")

	return res, nil
}
