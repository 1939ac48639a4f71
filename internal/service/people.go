package service

import (
	"fmt"
	"strings"

	"church-attendance/internal/models"
	"church-attendance/internal/repository"

	"github.com/sirupsen/logrus"
)

// MainContact marks a family member as a contact. Toggling cycles
// none → primary → secondary → none.
type MainContact int

const (
	MainContactNone MainContact = iota
	MainContactPrimary
	MainContactSecondary
)

func (c MainContact) Next() MainContact {
	switch c {
	case MainContactNone:
		return MainContactPrimary
	case MainContactPrimary:
		return MainContactSecondary
	}
	return MainContactNone
}

func (c MainContact) String() string {
	switch c {
	case MainContactPrimary:
		return models.ContactRolePrimary
	case MainContactSecondary:
		return models.ContactRoleSecondary
	}
	return models.ContactRoleNone
}

func ParseMainContact(value string) (MainContact, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", models.ContactRoleNone:
		return MainContactNone, true
	case models.ContactRolePrimary:
		return MainContactPrimary, true
	case models.ContactRoleSecondary:
		return MainContactSecondary, true
	}
	return MainContactNone, false
}

type FamilyMemberInput struct {
	FirstName   string
	LastName    string
	MainContact MainContact
}

type ImportFamilyRequest struct {
	Name    string
	Members []FamilyMemberInput
}

type IndividualInput struct {
	FirstName string
	LastName  string
	FamilyID  *uint
	IsActive  *bool
}

type PeopleService struct {
	repo   repository.PeopleRepository
	logger *logrus.Logger
}

func NewPeopleService(repo repository.PeopleRepository) *PeopleService {
	return &PeopleService{
		repo:   repo,
		logger: newLogger(),
	}
}

// ImportFamily stores a family with its members. A family may have at most
// one primary and one secondary contact.
func (s *PeopleService) ImportFamily(req ImportFamilyRequest) (*models.Family, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: family name is required", ErrInvalidInput)
	}
	if len(req.Members) == 0 {
		return nil, fmt.Errorf("%w: family %q has no members", ErrInvalidInput, name)
	}

	existing, err := s.repo.GetFamilyByName(name)
	if err != nil {
		return nil, fmt.Errorf("failed to check family name: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: family %q", ErrConflict, name)
	}

	var primaries, secondaries int
	family := &models.Family{Name: name}
	for _, m := range req.Members {
		first := strings.TrimSpace(m.FirstName)
		if first == "" {
			return nil, fmt.Errorf("%w: member first name is required", ErrInvalidInput)
		}
		switch m.MainContact {
		case MainContactPrimary:
			primaries++
		case MainContactSecondary:
			secondaries++
		}
		family.Members = append(family.Members, models.Individual{
			FirstName:   first,
			LastName:    strings.TrimSpace(m.LastName),
			ContactRole: m.MainContact.String(),
			IsActive:    true,
		})
	}
	if primaries > 1 || secondaries > 1 {
		return nil, fmt.Errorf("%w: at most one primary and one secondary contact per family", ErrInvalidInput)
	}

	if err := s.repo.CreateFamily(family); err != nil {
		return nil, fmt.Errorf("failed to import family: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"family":  family.Name,
		"members": len(family.Members),
	}).Info("Family imported")

	return family, nil
}

func (s *PeopleService) GetFamily(id uint) (*models.Family, error) {
	family, err := s.repo.GetFamily(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get family: %w", err)
	}
	if family == nil {
		return nil, ErrNotFound
	}
	return family, nil
}

func (s *PeopleService) ListFamilies() ([]*models.Family, error) {
	return s.repo.ListFamilies()
}

func (s *PeopleService) CreateIndividual(in IndividualInput) (*models.Individual, error) {
	first := strings.TrimSpace(in.FirstName)
	if first == "" {
		return nil, fmt.Errorf("%w: first name is required", ErrInvalidInput)
	}
	if in.FamilyID != nil {
		if _, err := s.GetFamily(*in.FamilyID); err != nil {
			return nil, err
		}
	}

	individual := &models.Individual{
		FirstName:   first,
		LastName:    strings.TrimSpace(in.LastName),
		FamilyID:    in.FamilyID,
		ContactRole: models.ContactRoleNone,
		IsActive:    true,
	}
	if in.IsActive != nil {
		individual.IsActive = *in.IsActive
	}

	if err := s.repo.CreateIndividual(individual); err != nil {
		return nil, fmt.Errorf("failed to create individual: %w", err)
	}
	return individual, nil
}

func (s *PeopleService) GetIndividual(id uint) (*models.Individual, error) {
	individual, err := s.repo.GetIndividual(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get individual: %w", err)
	}
	if individual == nil {
		return nil, ErrNotFound
	}
	return individual, nil
}

func (s *PeopleService) ListIndividuals(activeOnly bool) ([]*models.Individual, error) {
	return s.repo.ListIndividuals(activeOnly)
}

// FindByName resolves a "First Last" name, as used in seed rosters.
func (s *PeopleService) FindByName(fullName string) (*models.Individual, error) {
	first, last, _ := strings.Cut(strings.TrimSpace(fullName), " ")
	individual, err := s.repo.FindIndividualByName(strings.TrimSpace(first), strings.TrimSpace(last))
	if err != nil {
		return nil, err
	}
	if individual == nil {
		return nil, ErrNotFound
	}
	return individual, nil
}

// ToggleMainContact advances the individual's contact role to the next state.
// Moving to primary or secondary fails when another family member already holds it.
func (s *PeopleService) ToggleMainContact(id uint) (*models.Individual, error) {
	individual, err := s.GetIndividual(id)
	if err != nil {
		return nil, err
	}
	if individual.FamilyID == nil {
		return nil, fmt.Errorf("%w: individual has no family", ErrInvalidInput)
	}

	current, _ := ParseMainContact(individual.ContactRole)
	next := current.Next()

	if next != MainContactNone {
		family, err := s.GetFamily(*individual.FamilyID)
		if err != nil {
			return nil, err
		}
		for _, m := range family.Members {
			if m.ID != individual.ID && m.ContactRole == next.String() {
				return nil, fmt.Errorf("%w: family already has a %s contact", ErrConflict, next)
			}
		}
	}

	individual.ContactRole = next.String()
	if err := s.repo.UpdateIndividual(individual); err != nil {
		return nil, notFound(err)
	}
	return individual, nil
}
