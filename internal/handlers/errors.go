package handlers

import (
	"errors"
	"fmt"

	"katalog/internal/apperrors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// statusFromError maps a service error to an HTTP status code. Anything
// outside the shared taxonomy is a server error.
func statusFromError(err error) int {
	var notFound *apperrors.NotFoundError
	if errors.As(err, &notFound) {
		return fiber.StatusNotFound
	}
	var conflict *apperrors.ConflictError
	if errors.As(err, &conflict) {
		return fiber.StatusConflict
	}
	var businessRule *apperrors.BusinessRuleError
	if errors.As(err, &businessRule) {
		return fiber.StatusUnprocessableEntity
	}
	return fiber.StatusInternalServerError
}

// errorJSON writes the standard error body for a failed operation.
func errorJSON(c *fiber.Ctx, err error, message string) error {
	return c.Status(statusFromError(err)).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}

// validationJSON writes a 400 with one message per failed field. Errors
// that carry no field details (e.g. validating a non-struct) still get a
// plain 400.
func validationJSON(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}
	errorMessages := make(map[string]string)
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  errorMessages,
	})
}
