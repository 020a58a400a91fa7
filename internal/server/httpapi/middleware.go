package httpapi

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/dmitrijs2005/recipeapi/internal/common"
	"github.com/dmitrijs2005/recipeapi/internal/server/auth"
)

type localsKey string

const userIDKey localsKey = "userID"

var (
	errNotAuthenticated = errors.New("authentication credentials were not provided")
	errBadToken         = errors.New("invalid token")
)

// requireAuth resolves the caller from the Authorization header. Both the
// "Token" and "Bearer" schemes are accepted.
func (s *Server) requireAuth(c *fiber.Ctx) error {
	header := strings.TrimSpace(c.Get(common.AuthorizationHeaderName))
	if header == "" {
		return errNotAuthenticated
	}

	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || token == "" {
		return errBadToken
	}
	if !strings.EqualFold(scheme, common.TokenScheme) && !strings.EqualFold(scheme, common.BearerScheme) {
		return errNotAuthenticated
	}

	userID, err := s.users.UserIDFromToken(token)
	if err != nil {
		s.logger.Debug(c.UserContext(), "token rejected", "error", err)
		return errBadToken
	}

	c.Locals(userIDKey, userID)
	c.SetUserContext(auth.WithUserID(c.UserContext(), userID))

	return c.Next()
}

// currentUserID returns the caller resolved by requireAuth.
func currentUserID(c *fiber.Ctx) (int64, error) {
	if id, ok := c.Locals(userIDKey).(int64); ok {
		return id, nil
	}
	id, err := auth.UserIDFromContext(c.UserContext())
	if err != nil {
		return 0, errNotAuthenticated
	}
	return id, nil
}

func (s *Server) logRequests(c *fiber.Ctx) error {
	start := time.Now()

	if err := c.Next(); err != nil {
		if herr := s.handleError(c, err); herr != nil {
			_ = c.SendStatus(fiber.StatusInternalServerError)
		}
	}

	s.logger.Info(c.UserContext(), "request",
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
		"latency", time.Since(start).String(),
	)
	return nil
}

// pathID parses the :id route parameter. Malformed ids behave as missing rows.
func pathID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, common.ErrorNotFound
	}
	return id, nil
}
