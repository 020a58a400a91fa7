package httpapi

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/dmitrijs2005/recipeapi/internal/common"
	"github.com/dmitrijs2005/recipeapi/internal/server/models"
	"github.com/dmitrijs2005/recipeapi/internal/server/serializers"
)

const imageFormField = "image"

func (s *Server) listRecipes(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	verr := &common.ValidationError{}
	filter := models.RecipeFilter{
		TagIDs:        parseIDList(c.Query("tags"), "tags", verr),
		IngredientIDs: parseIDList(c.Query("ingredients"), "ingredients", verr),
	}
	if !verr.Empty() {
		return verr
	}

	ctx := c.UserContext()
	items, err := s.recipes.List(ctx, userID, filter)
	if err != nil {
		return err
	}

	out := make([]serializers.Recipe, 0, len(items))
	for _, r := range items {
		image, err := s.imageURL(ctx, r)
		if err != nil {
			return err
		}
		out = append(out, serializers.NewRecipe(r, image))
	}
	return c.JSON(out)
}

func (s *Server) createRecipe(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req serializers.RecipeWrite
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	fillOmitted(&req)
	if err := req.Validate(false); err != nil {
		return err
	}

	ctx := c.UserContext()
	recipe, err := s.recipes.Create(ctx, userID, req.Input())
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(serializers.NewRecipe(recipe, nil))
}

func (s *Server) getRecipe(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}

	ctx := c.UserContext()
	recipe, err := s.recipes.Get(ctx, userID, id)
	if err != nil {
		return err
	}

	image, err := s.imageURL(ctx, recipe)
	if err != nil {
		return err
	}
	return c.JSON(serializers.NewRecipeDetail(recipe, image))
}

// updateRecipe handles PUT (full replacement) and PATCH (partial).
func (s *Server) updateRecipe(partial bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := currentUserID(c)
		if err != nil {
			return err
		}
		id, err := pathID(c)
		if err != nil {
			return err
		}

		var req serializers.RecipeWrite
		if err := bindJSON(c, &req); err != nil {
			return err
		}
		if !partial {
			fillOmitted(&req)
		}
		if err := req.Validate(partial); err != nil {
			return err
		}

		ctx := c.UserContext()
		recipe, err := s.recipes.Update(ctx, userID, id, req.Input())
		if err != nil {
			return err
		}

		image, err := s.imageURL(ctx, recipe)
		if err != nil {
			return err
		}
		return c.JSON(serializers.NewRecipe(recipe, image))
	}
}

func (s *Server) deleteRecipe(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}

	if err := s.recipes.Delete(c.UserContext(), userID, id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) uploadRecipeImage(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}

	fh, err := c.FormFile(imageFormField)
	if err != nil {
		return common.NewValidationError(imageFormField, msgNoFile)
	}

	f, err := fh.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	ctx := c.UserContext()
	recipe, err := s.recipes.UploadImage(ctx, userID, id, fh.Filename, f, fh.Size, fh.Header.Get(fiber.HeaderContentType))
	if err != nil {
		return err
	}

	image, err := s.imageURL(ctx, recipe)
	if err != nil {
		return err
	}
	return c.JSON(serializers.RecipeImage{ID: recipe.ID, Image: image})
}

func (s *Server) imageURL(ctx context.Context, r *models.Recipe) (*string, error) {
	if r.Image == nil {
		return nil, nil
	}
	u, err := s.recipes.ImageURL(ctx, *r.Image)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// fillOmitted gives optional fields their empty value so that a full write
// replaces them.
func fillOmitted(req *serializers.RecipeWrite) {
	if req.Link == nil {
		empty := ""
		req.Link = &empty
	}
	if req.Ingredients == nil {
		req.Ingredients = &[]int64{}
	}
	if req.Tags == nil {
		req.Tags = &[]int64{}
	}
}

// parseIDList parses a comma separated list of ids such as "1,2,3".
func parseIDList(raw, field string, verr *common.ValidationError) []int64 {
	if raw == "" {
		return nil
	}

	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			verr.Add(field, msgInvalidIDListItem)
			return nil
		}
		ids = append(ids, id)
	}
	return ids
}
