package httpapi

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/dmitrijs2005/recipeapi/internal/common"
	"github.com/dmitrijs2005/recipeapi/internal/server/serializers"
	"github.com/dmitrijs2005/recipeapi/internal/server/services"
)

func (s *Server) createUser(c *fiber.Ctx) error {
	var req serializers.UserCreate
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return err
	}

	ctx := c.UserContext()
	user, err := s.users.CreateUser(ctx, req.Email, req.Password, services.UserFields{Name: req.Name})
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorAlreadyExists):
			return common.NewValidationError("email", msgEmailTaken)
		case errors.Is(err, common.ErrorEmailRequired):
			return common.NewValidationError("email", err.Error())
		}
		return err
	}

	s.logger.Info(ctx, "Registered", "user_id", user.ID)
	return c.Status(fiber.StatusCreated).JSON(serializers.NewUser(user))
}

// obtainToken exchanges credentials for a token. Failures never reveal which
// of the two values was wrong.
func (s *Server) obtainToken(c *fiber.Ctx) error {
	var req serializers.AuthToken
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return err
	}

	token, err := s.users.ObtainToken(c.UserContext(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			return common.NewValidationError(common.NonFieldErrorsKey, msgUnableToLogin)
		}
		return err
	}

	return c.JSON(serializers.Token{Token: token})
}

func (s *Server) getMe(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	user, err := s.users.GetUser(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(serializers.NewUser(user))
}

func (s *Server) updateMe(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req serializers.UserUpdate
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return err
	}

	user, err := s.users.UpdateUser(c.UserContext(), userID, req.Name, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(serializers.NewUser(user))
}
