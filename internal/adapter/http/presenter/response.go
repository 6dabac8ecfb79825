package presenter

import (
	"errors"

	"cv-generator/internal/domain"

	"github.com/gofiber/fiber/v2"
)

type ErrorResponse struct {
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

func JSON(c *fiber.Ctx, status int, v any) error {
	return c.Status(status).JSON(v)
}

func Error(c *fiber.Ctx, status int, message string) error {
	return JSON(c, status, ErrorResponse{Message: message})
}

// StatusFor maps a domain error to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrValidation):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrLimitExceeded):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrMalformedJSON), errors.Is(err, domain.ErrInvalidFormat):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrPDFGeneration):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// Fail writes err with its mapped status. Validation failures list every
// message; internal failures do not leak their cause.
func Fail(c *fiber.Ctx, err error) error {
	status := StatusFor(err)
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return JSON(c, status, ErrorResponse{Message: domain.ErrValidation.Error(), Errors: verr.Messages})
	}
	if status == fiber.StatusInternalServerError {
		return Error(c, status, "internal error")
	}
	return Error(c, status, err.Error())
}
