package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/relieflink/disaster-response-api/internal/config"
	"gorm.io/gorm"
)

// Envelope is the uniform response wrapper for every endpoint.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Meta    any    `json:"meta,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// NewErrorHandler builds the Fiber error handler. Internal detail is
// exposed only in development mode.
func NewErrorHandler(cfg *config.Config) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal Server Error"

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			code = fiberErr.Code
			message = fiberErr.Message
		} else if cfg.IsDevelopment() {
			message = err.Error()
		}

		return c.Status(code).JSON(Envelope{
			Success: false,
			Error:   message,
		})
	}
}

func respondData(c *fiber.Ctx, data any) error {
	return c.JSON(Envelope{Success: true, Data: data})
}

func respondDataMeta(c *fiber.Ctx, data, meta any) error {
	return c.JSON(Envelope{Success: true, Data: data, Meta: meta})
}

func respondCreated(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(Envelope{Success: true, Data: data})
}

func respondMessage(c *fiber.Ctx, message string) error {
	return c.JSON(Envelope{Success: true, Message: message})
}

func respondError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(Envelope{Success: false, Error: message})
}

// storageError maps a GORM error to the envelope: missing rows become
// 404s, anything else is a 500 for this request (primary data has no
// fallback).
func storageError(c *fiber.Ctx, err error, notFoundMessage, failureMessage string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return respondError(c, fiber.StatusNotFound, notFoundMessage)
	}
	return respondError(c, fiber.StatusInternalServerError, failureMessage)
}
