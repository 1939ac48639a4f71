package api

import (
	"church-attendance/internal/service"

	"github.com/gofiber/fiber/v2"
)

func (s *Server) listFamilies(c *fiber.Ctx) error {
	families, err := s.svc.People.ListFamilies()
	if err != nil {
		return ServiceError(c, err)
	}
	return Success(c, "Families loaded", families)
}

func (s *Server) importFamily(c *fiber.Ctx) error {
	var req FamilyImportRequest
	if ok, err := s.bind(c, &req); !ok {
		return err
	}

	members := make([]service.FamilyMemberInput, 0, len(req.Members))
	for _, m := range req.Members {
		contact, _ := service.ParseMainContact(m.MainContact)
		members = append(members, service.FamilyMemberInput{
			FirstName:   m.FirstName,
			LastName:    m.LastName,
			MainContact: contact,
		})
	}

	family, err := s.svc.People.ImportFamily(service.ImportFamilyRequest{Name: req.Name, Members: members})
	if err != nil {
		return ServiceError(c, err)
	}
	return SuccessWithCode(c, fiber.StatusCreated, "Family imported", family)
}

func (s *Server) listIndividuals(c *fiber.Ctx) error {
	individuals, err := s.svc.People.ListIndividuals(c.QueryBool("active", false))
	if err != nil {
		return ServiceError(c, err)
	}
	return Success(c, "Individuals loaded", individuals)
}

func (s *Server) createIndividual(c *fiber.Ctx) error {
	var req IndividualRequest
	if ok, err := s.bind(c, &req); !ok {
		return err
	}

	individual, err := s.svc.People.CreateIndividual(service.IndividualInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		FamilyID:  req.FamilyID,
		IsActive:  req.IsActive,
	})
	if err != nil {
		return ServiceError(c, err)
	}
	return SuccessWithCode(c, fiber.StatusCreated, "Individual created", individual)
}

// toggleContact cycles the individual's main contact role.
func (s *Server) toggleContact(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return Error(c, fiber.StatusBadRequest, "Invalid individual id")
	}
	individual, err := s.svc.People.ToggleMainContact(id)
	if err != nil {
		return ServiceError(c, err)
	}
	return Success(c, "Main contact updated", individual)
}
