package api

import (
	"errors"

	"church-attendance/internal/schedule"
	"church-attendance/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

func Success(c *fiber.Ctx, message string, data interface{}) error {
	return SuccessWithCode(c, fiber.StatusOK, message, data)
}

func SuccessWithCode(c *fiber.Ctx, code int, message string, data interface{}) error {
	return c.Status(code).JSON(fiber.Map{
		"code":    code,
		"status":  "success",
		"message": message,
		"data":    data,
	})
}

func Error(c *fiber.Ctx, code int, message string) error {
	return c.Status(code).JSON(fiber.Map{
		"code":    code,
		"status":  "error",
		"message": message,
	})
}

func ErrorWithDetails(c *fiber.Ctx, code int, message string, details interface{}) error {
	return c.Status(code).JSON(fiber.Map{
		"code":    code,
		"status":  "error",
		"message": message,
		"errors":  details,
	})
}

// ValidationError reports validator failures as field → tag.
func ValidationError(c *fiber.Ctx, err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return Error(c, fiber.StatusBadRequest, "Invalid input")
	}

	fields := make(map[string]string, len(ve))
	for _, fieldErr := range ve {
		fields[fieldErr.Field()] = fieldErr.Tag()
	}

	return ErrorWithDetails(c, fiber.StatusBadRequest, "Validation failed", fields)
}

// ServiceError maps service and schedule errors onto HTTP statuses.
func ServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, schedule.ErrInvalidSchedule),
		errors.Is(err, schedule.ErrMissingPattern),
		errors.Is(err, schedule.ErrMissingStartDate),
		errors.Is(err, schedule.ErrInvalidDate):
		return Error(c, fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrNotFound):
		return Error(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrForbidden):
		return Error(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrInvalidInput):
		return Error(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrConflict):
		return Error(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvitationExpired):
		return Error(c, fiber.StatusGone, err.Error())
	}
	return Error(c, fiber.StatusInternalServerError, "Internal server error")
}
