package httpapi

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/dmitrijs2005/recipeapi/internal/common"
	"github.com/dmitrijs2005/recipeapi/internal/server/models"
)

const (
	msgNotFound          = "Not found."
	msgNotAuthenticated  = "Authentication credentials were not provided."
	msgInvalidToken      = "Invalid token."
	msgMalformedBody     = "Malformed request body."
	msgInternal          = "internal error"
	msgInvalidPrice      = "A valid number is required."
	msgUnableToLogin     = "Unable to authenticate with provided credentials"
	msgEmailTaken        = "user with this email already exists."
	msgNoFile            = "No file was submitted."
	msgInvalidIDListItem = "A valid integer is required."
)

func detail(msg string) fiber.Map {
	return fiber.Map{"detail": msg}
}

// handleError renders err as a JSON response.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	var verr *common.ValidationError
	var ferr *fiber.Error

	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(verr.Fields)
	case errors.Is(err, common.ErrorNotFound):
		return c.Status(fiber.StatusNotFound).JSON(detail(msgNotFound))
	case errors.Is(err, errNotAuthenticated):
		c.Set(fiber.HeaderWWWAuthenticate, common.TokenScheme)
		return c.Status(fiber.StatusUnauthorized).JSON(detail(msgNotAuthenticated))
	case errors.Is(err, errBadToken):
		c.Set(fiber.HeaderWWWAuthenticate, common.TokenScheme)
		return c.Status(fiber.StatusUnauthorized).JSON(detail(msgInvalidToken))
	case errors.As(err, &ferr):
		return c.Status(ferr.Code).JSON(detail(ferr.Message))
	}

	s.logger.Error(c.UserContext(), "request failed", "method", c.Method(), "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(detail(msgInternal))
}

// bindJSON decodes the request body into out.
func bindJSON(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		if errors.Is(err, models.ErrInvalidPrice) {
			return common.NewValidationError("price", msgInvalidPrice)
		}
		return fiber.NewError(fiber.StatusBadRequest, msgMalformedBody)
	}
	return nil
}
