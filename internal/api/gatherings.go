package api

import (
	"fmt"
	"strconv"

	"church-attendance/internal/schedule"
	"church-attendance/internal/service"

	"github.com/gofiber/fiber/v2"
)

func parseID(c *fiber.Ctx) (uint, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// parseMonths reads ?months=; 0 means the configured horizon.
func parseMonths(c *fiber.Ctx) (int, bool) {
	months := c.QueryInt("months", 0)
	return months, months >= 0 && months <= schedule.MaxHorizonMonths
}

func monthsError(c *fiber.Ctx) error {
	return Error(c, fiber.StatusBadRequest, fmt.Sprintf("months must be between 0 and %d", schedule.MaxHorizonMonths))
}

func (s *Server) listGatherings(c *fiber.Ctx) error {
	activeOnly := c.QueryBool("active", false)
	gatherings, err := s.svc.Gatherings.List(activeOnly)
	if err != nil {
		return ServiceError(c, err)
	}
	return Success(c, "Gatherings loaded", gatherings)
}

func (s *Server) createGathering(c *fiber.Ctx) error {
	var req GatheringRequest
	if ok, err := s.bind(c, &req); !ok {
		return err
	}

	gathering, err := s.svc.Gatherings.Create(service.GatheringInput{
		Name:        req.Name,
		Description: req.Description,
		Schedule:    req.Schedule,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return ServiceError(c, err)
	}
	return SuccessWithCode(c, fiber.StatusCreated, "Gathering created", gathering)
}

func (s *Server) getGathering(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return Error(c, fiber.StatusBadRequest, "Invalid gathering id")
	}
	gathering, err := s.svc.Gatherings.Get(id)
	if err != nil {
		return ServiceError(c, err)
	}
	return Success(c, "Gathering loaded", gathering)
}

func (s *Server) updateGathering(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return Error(c, fiber.StatusBadRequest, "Invalid gathering id")
	}
	var req GatheringRequest
	if ok, err := s.bind(c, &req); !ok {
		return err
	}

	gathering, err := s.svc.Gatherings.Update(id, service.GatheringInput{
		Name:        req.Name,
		Description: req.Description,
		Schedule:    req.Schedule,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return ServiceError(c, err)
	}
	return Success(c, "Gathering updated", gathering)
}

func (s *Server) deleteGathering(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return Error(c, fiber.StatusBadRequest, "Invalid gathering id")
	}
	if err := s.svc.Gatherings.Delete(id); err != nil {
		return ServiceError(c, err)
	}
	return Success(c, "Gathering deleted", nil)
}

func (s *Server) setRoster(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return Error(c, fiber.StatusBadRequest, "Invalid gathering id")
	}
	var req RosterRequest
	if ok, err := s.bind(c, &req); !ok {
		return err
	}

	gathering, err := s.svc.Gatherings.SetRoster(id, req.IndividualIDs)
	if err != nil {
		return ServiceError(c, err)
	}
	return Success(c, "Roster updated", gathering)
}

func (s *Server) occurrences(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return Error(c, fiber.StatusBadRequest, "Invalid gathering id")
	}

	today := s.svc.Gatherings.Today()
	if v := c.Query("today"); v != "" {
		d, err := schedule.ParseDate(v, s.location)
		if err != nil {
			return Error(c, fiber.StatusBadRequest, "Invalid today date, use YYYY-MM-DD")
		}
		today = d
	}
	months, ok := parseMonths(c)
	if !ok {
		return monthsError(c)
	}

	occurrences, err := s.svc.Gatherings.Occurrences(id, today, months)
	if err != nil {
		return ServiceError(c, err)
	}
	return Success(c, "Occurrences generated", occurrences)
}

func (s *Server) calendar(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return Error(c, fiber.StatusBadRequest, "Invalid gathering id")
	}

	months, ok := parseMonths(c)
	if !ok {
		return monthsError(c)
	}

	feed, err := s.svc.Calendar.Feed(id, s.svc.Gatherings.Today(), months)
	if err != nil {
		return ServiceError(c, err)
	}

	c.Set(fiber.HeaderContentType, "text/calendar; charset=utf-8")
	return c.SendString(feed)
}
