package httpapi

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/dmitrijs2005/recipeapi/internal/common"
	"github.com/dmitrijs2005/recipeapi/internal/server/serializers"
)

// labelRoutes mounts the CRUD endpoints of one label kind on r.
func (s *Server) labelRoutes(r fiber.Router, svc LabelService) {
	r.Get("/", s.listLabels(svc))
	r.Post("/", s.createLabel(svc))
	r.Get("/:id/", s.getLabel(svc))
	r.Put("/:id/", s.updateLabel(svc, false))
	r.Patch("/:id/", s.updateLabel(svc, true))
	r.Delete("/:id/", s.deleteLabel(svc))
}

func (s *Server) listLabels(svc LabelService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := currentUserID(c)
		if err != nil {
			return err
		}

		assignedOnly := false
		if v := c.Query("assigned_only"); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return common.NewValidationError("assigned_only", "Must be a valid boolean.")
			}
			assignedOnly = b
		}

		items, err := svc.List(c.UserContext(), userID, assignedOnly)
		if err != nil {
			return err
		}
		return c.JSON(serializers.NewLabels(items))
	}
}

func (s *Server) createLabel(svc LabelService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := currentUserID(c)
		if err != nil {
			return err
		}

		var req serializers.LabelWrite
		if err := bindJSON(c, &req); err != nil {
			return err
		}
		if err := req.Validate(false); err != nil {
			return err
		}

		label, err := svc.Create(c.UserContext(), userID, *req.Name)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(serializers.NewLabel(label))
	}
}

func (s *Server) getLabel(svc LabelService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := currentUserID(c)
		if err != nil {
			return err
		}
		id, err := pathID(c)
		if err != nil {
			return err
		}

		label, err := svc.Get(c.UserContext(), userID, id)
		if err != nil {
			return err
		}
		return c.JSON(serializers.NewLabel(label))
	}
}

func (s *Server) updateLabel(svc LabelService, partial bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := currentUserID(c)
		if err != nil {
			return err
		}
		id, err := pathID(c)
		if err != nil {
			return err
		}

		var req serializers.LabelWrite
		if err := bindJSON(c, &req); err != nil {
			return err
		}
		if err := req.Validate(partial); err != nil {
			return err
		}

		label, err := svc.Update(c.UserContext(), userID, id, req.Name)
		if err != nil {
			return err
		}
		return c.JSON(serializers.NewLabel(label))
	}
}

func (s *Server) deleteLabel(svc LabelService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := currentUserID(c)
		if err != nil {
			return err
		}
		id, err := pathID(c)
		if err != nil {
			return err
		}

		if err := svc.Delete(c.UserContext(), userID, id); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
