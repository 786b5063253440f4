package api

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"fieldexplorer/internal/storage"
	"fieldexplorer/internal/validation"
)

// jsonSuccess returns a 200 response with data wrapped in the standard envelope.
func jsonSuccess(c fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{
		"status": "ok",
		"data":   data,
	})
}

// jsonDegraded returns a 200 response for a read that fell back to an empty result.
func jsonDegraded(c fiber.Ctx, data any, err error) error {
	return c.JSON(fiber.Map{
		"status":   "ok",
		"data":     data,
		"degraded": true,
		"error":    storage.Outcome(err),
	})
}

// jsonError returns an error response with the given HTTP status code.
func jsonError(c fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"status": "error",
		"error":  message,
	})
}

// jsonStoreError maps a validation or store error to a status code.
func jsonStoreError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, validation.ErrInvalid):
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	case storage.IsUnavailable(err):
		return jsonError(c, fiber.StatusServiceUnavailable, "storage unavailable")
	default:
		return jsonError(c, fiber.StatusInternalServerError, "query failed")
	}
}

// jsonRows writes the result of a degradable read. Query failures still
// answer 200 with the empty rows and a degraded flag.
func jsonRows[T any](c fiber.Ctx, rows []T, err error) error {
	if err == nil {
		return jsonSuccess(c, rows)
	}
	if rows != nil && !storage.IsUnavailable(err) && storage.IsClassified(err) {
		return jsonDegraded(c, rows, err)
	}
	return jsonStoreError(c, err)
}
