package api

import (
	"strconv"
	"strings"
	"time"

	"church-attendance/internal/schedule"

	"github.com/gofiber/fiber/v2"
)

func (s *Server) summary(c *fiber.Ctx) error {
	var ids []uint
	if raw := strings.TrimSpace(c.Query("gatherings")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64)
			if err != nil || id == 0 {
				return Error(c, fiber.StatusBadRequest, "Invalid gathering id "+strconv.Quote(part))
			}
			ids = append(ids, uint(id))
		}
	}

	now := time.Now().In(s.location)
	if v := c.Query("now"); v != "" {
		d, err := schedule.ParseDate(v, s.location)
		if err != nil {
			return Error(c, fiber.StatusBadRequest, "Invalid now date, use YYYY-MM-DD")
		}
		now = d
	}

	summary, err := s.svc.Reports.Summary(c.UserContext(), ids, now)
	if err != nil {
		return ServiceError(c, err)
	}
	return Success(c, "Summary computed", summary)
}
