package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/access"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/dto"
)

// ErrorHandler renders every error as dto.ErrorResponse. Server errors are
// logged with their cause and reported to Sentry; the body only carries
// the client-safe message.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"

	var fe *fiber.Error
	if e, ok := apperr.As(err); ok {
		code = e.Kind.Status()
		message = e.Message
	} else if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}

	if code >= fiber.StatusInternalServerError {
		slog.ErrorContext(c.UserContext(), "request failed",
			"method", c.Method(),
			"path", c.Path(),
			"status", code,
			"request_id", c.Locals("requestid"),
			"error", err.Error(),
		)
		if hub := sentryfiber.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		} else {
			sentry.CaptureException(err)
		}
		if _, ok := apperr.As(err); !ok {
			message = "Internal server error"
		}
	}

	return c.Status(code).JSON(dto.ErrorResponse{
		StatusCode: code,
		Message:    message,
		Error:      http.StatusText(code),
	})
}

func bindJSON(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperr.Validation("Invalid request body")
	}
	return nil
}

func bindQuery(c *fiber.Ctx, out any) error {
	if err := c.QueryParser(out); err != nil {
		return apperr.Validation("Invalid query parameters")
	}
	return nil
}

func paramID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, apperr.Validation("Invalid id")
	}
	return id, nil
}

func currentUser(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := access.GetUserID(c)
	if err != nil {
		return uuid.Nil, apperr.Unauthenticated("Invalid or expired token")
	}
	return id, nil
}
