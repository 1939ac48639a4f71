package api

import (
	"church-attendance/internal/schedule"
	"church-attendance/internal/service"

	"github.com/gofiber/fiber/v2"
)

func (s *Server) getAttendance(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return Error(c, fiber.StatusBadRequest, "Invalid gathering id")
	}
	date := c.Params("date")
	if _, err := schedule.ParseDate(date, s.location); err != nil {
		return Error(c, fiber.StatusBadRequest, "Invalid date, use YYYY-MM-DD")
	}

	session, err := s.svc.Attendance.Session(id, date)
	if err != nil {
		return ServiceError(c, err)
	}
	return Success(c, "Attendance loaded", session)
}

func (s *Server) recordAttendance(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return Error(c, fiber.StatusBadRequest, "Invalid gathering id")
	}
	var req AttendanceRequest
	if ok, err := s.bind(c, &req); !ok {
		return err
	}

	entries := make([]service.AttendanceInput, 0, len(req.Attendance))
	for _, a := range req.Attendance {
		entries = append(entries, service.AttendanceInput{IndividualID: a.IndividualID, Present: a.Present})
	}
	visitors := make([]service.VisitorInput, 0, len(req.Visitors))
	for _, v := range req.Visitors {
		visitors = append(visitors, service.VisitorInput{Key: v.ID, Name: v.Name, Present: v.Present})
	}

	stored, err := s.svc.Attendance.Record(id, c.Params("date"), entries, visitors, req.RecordedBy)
	if err != nil {
		return ServiceError(c, err)
	}

	session, err := s.svc.Attendance.Session(id, stored.Date)
	if err != nil {
		return ServiceError(c, err)
	}
	return Success(c, "Attendance recorded", session)
}
