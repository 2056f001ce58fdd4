package utils

import (
	"log"

	apperrors "fintrivox/internal/errors"

	"github.com/gofiber/fiber/v2"
)

// Respond sends a JSON response with the specified status code.
func Respond(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(data)
}

// Success sends a successful JSON response.
func Success(c *fiber.Ctx, data interface{}) error {
	return Respond(c, fiber.StatusOK, data)
}

// Created sends a JSON response with status 201.
func Created(c *fiber.Ctx, data interface{}) error {
	return Respond(c, fiber.StatusCreated, data)
}

// BadRequest sends a JSON error response with status 400.
func BadRequest(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusBadRequest, fiber.Map{"error": message, "code": apperrors.CodeValidation})
}

// Unauthorized sends a JSON error response with status 401.
func Unauthorized(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusUnauthorized, fiber.Map{"error": message, "code": apperrors.CodeUnauthorized})
}

// Forbidden sends a JSON error response with status 403.
func Forbidden(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusForbidden, fiber.Map{"error": message, "code": apperrors.CodeForbidden})
}

// Error maps err onto a status code and an {"error","code"} body. Errors
// that are not domain errors are logged and reported as a generic 500.
func Error(c *fiber.Ctx, err error) error {
	if de, ok := apperrors.As(err); ok {
		return Respond(c, apperrors.HTTPStatus(err), fiber.Map{"error": de.Message, "code": de.Code})
	}
	log.Printf("%s %s: %v", c.Method(), c.Path(), err)
	return Respond(c, fiber.StatusInternalServerError, fiber.Map{"error": "internal server error", "code": "INTERNAL"})
}
