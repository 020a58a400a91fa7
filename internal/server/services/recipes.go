package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/dmitrijs2005/recipeapi/internal/common"
	"github.com/dmitrijs2005/recipeapi/internal/dbx"
	"github.com/dmitrijs2005/recipeapi/internal/server/models"
	"github.com/dmitrijs2005/recipeapi/internal/server/repositories/labels"
	"github.com/dmitrijs2005/recipeapi/internal/server/repositories/recipes"
	"github.com/dmitrijs2005/recipeapi/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/recipeapi/internal/server/storage"
)

const msgInvalidPk = `Invalid pk "%s" - object does not exist.`

// referenceFields maps junction columns to the payload fields that set them.
var referenceFields = map[string]string{
	"ingredient_id": "ingredients",
	"tag_id":        "tags",
}

// ImageStore keeps uploaded recipe images and hands out links to them.
type ImageStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	URL(ctx context.Context, key string) (string, error)
}

// RecipeInput holds the writable recipe fields. Nil fields are left unchanged
// on update; on create the write payload guarantees the required ones.
type RecipeInput struct {
	Title         *string
	TimeMinutes   *int
	Price         *models.Price
	Link          *string
	IngredientIDs *[]int64
	TagIDs        *[]int64
}

type RecipeService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	images      ImageStore
}

func NewRecipeService(db *sql.DB, m repomanager.RepositoryManager, images ImageStore) *RecipeService {
	return &RecipeService{
		db:          db,
		repomanager: m,
		images:      images,
	}
}

func (s *RecipeService) List(ctx context.Context, userID int64, filter models.RecipeFilter) ([]*models.Recipe, error) {
	return s.repomanager.Recipes(s.db).List(ctx, userID, filter)
}

// Get returns the recipe with its ingredients and tags expanded.
func (s *RecipeService) Get(ctx context.Context, userID, id int64) (*models.Recipe, error) {
	recipe, err := s.repomanager.Recipes(s.db).GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if err := s.expand(ctx, s.db, recipe); err != nil {
		return nil, err
	}
	return recipe, nil
}

func (s *RecipeService) Create(ctx context.Context, userID int64, in RecipeInput) (*models.Recipe, error) {
	recipe := &models.Recipe{UserID: userID}
	applyInput(recipe, in)

	var created *models.Recipe
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.resolveReferences(ctx, tx, userID, in); err != nil {
			return err
		}

		repo := s.repomanager.Recipes(tx)
		r, err := repo.Create(ctx, recipe)
		if err != nil {
			return err
		}

		created, err = repo.GetByID(ctx, userID, r.ID)
		return err
	})
	if err != nil {
		return nil, referenceViolation(err)
	}

	return created, nil
}

// Update applies the non-nil fields of in. Reference sets given in the input
// replace the stored ones as a whole.
func (s *RecipeService) Update(ctx context.Context, userID, id int64, in RecipeInput) (*models.Recipe, error) {
	var updated *models.Recipe
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Recipes(tx)

		recipe, err := repo.GetByID(ctx, userID, id)
		if err != nil {
			return err
		}

		if err := s.resolveReferences(ctx, tx, userID, in); err != nil {
			return err
		}

		applyInput(recipe, in)
		if err := repo.Update(ctx, recipe); err != nil {
			return err
		}
		if in.IngredientIDs != nil {
			if err := repo.SetIngredients(ctx, recipe.ID, *in.IngredientIDs); err != nil {
				return err
			}
		}
		if in.TagIDs != nil {
			if err := repo.SetTags(ctx, recipe.ID, *in.TagIDs); err != nil {
				return err
			}
		}

		updated, err = repo.GetByID(ctx, userID, id)
		return err
	})
	if err != nil {
		return nil, referenceViolation(err)
	}

	return updated, nil
}

func (s *RecipeService) Delete(ctx context.Context, userID, id int64) error {
	return s.repomanager.Recipes(s.db).Delete(ctx, userID, id)
}

// UploadImage stores the file under a freshly generated key and links it to
// the recipe.
func (s *RecipeService) UploadImage(ctx context.Context, userID, id int64, filename string, body io.Reader, size int64, contentType string) (*models.Recipe, error) {
	repo := s.repomanager.Recipes(s.db)

	recipe, err := repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	key := storage.RecipeImageKey(filename)
	if err := s.images.Put(ctx, key, body, size, contentType); err != nil {
		return nil, fmt.Errorf("error storing image: %w", err)
	}

	if err := repo.SetImage(ctx, userID, id, key); err != nil {
		return nil, err
	}

	recipe.Image = &key
	return recipe, nil
}

// ImageURL returns a client-facing link for a stored image key.
func (s *RecipeService) ImageURL(ctx context.Context, key string) (string, error) {
	return s.images.URL(ctx, key)
}

func applyInput(recipe *models.Recipe, in RecipeInput) {
	if in.Title != nil {
		recipe.Title = *in.Title
	}
	if in.TimeMinutes != nil {
		recipe.TimeMinutes = *in.TimeMinutes
	}
	if in.Price != nil {
		recipe.Price = *in.Price
	}
	if in.Link != nil {
		recipe.Link = *in.Link
	}
	if in.IngredientIDs != nil {
		recipe.IngredientIDs = *in.IngredientIDs
	}
	if in.TagIDs != nil {
		recipe.TagIDs = *in.TagIDs
	}
}

// resolveReferences checks that every referenced ingredient and tag exists and
// belongs to userID.
func (s *RecipeService) resolveReferences(ctx context.Context, db dbx.DBTX, userID int64, in RecipeInput) error {
	verr := &common.ValidationError{}

	if in.IngredientIDs != nil {
		if err := s.checkOwned(ctx, db, labels.Ingredients, userID, "ingredients", *in.IngredientIDs, verr); err != nil {
			return err
		}
	}
	if in.TagIDs != nil {
		if err := s.checkOwned(ctx, db, labels.Tags, userID, "tags", *in.TagIDs, verr); err != nil {
			return err
		}
	}

	if !verr.Empty() {
		return verr
	}
	return nil
}

func (s *RecipeService) checkOwned(ctx context.Context, db dbx.DBTX, kind labels.Kind, userID int64, field string, ids []int64, verr *common.ValidationError) error {
	if len(ids) == 0 {
		return nil
	}

	found, err := s.repomanager.Labels(db, kind).FindByIDs(ctx, userID, ids)
	if err != nil {
		return err
	}

	known := make(map[int64]struct{}, len(found))
	for _, l := range found {
		known[l.ID] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			verr.Add(field, fmt.Sprintf(msgInvalidPk, strconv.FormatInt(id, 10)))
			// one message per field
			break
		}
	}
	return nil
}

// referenceViolation turns a reference that vanished after checkOwned ran into
// the same field error checkOwned would have produced.
func referenceViolation(err error) error {
	var refErr *recipes.ReferenceError
	if !errors.As(err, &refErr) {
		return err
	}
	field, ok := referenceFields[refErr.Column]
	if !ok {
		return err
	}
	return common.NewValidationError(field, fmt.Sprintf(msgInvalidPk, refErr.ID))
}

func (s *RecipeService) expand(ctx context.Context, db dbx.DBTX, recipe *models.Recipe) error {
	ingredients, err := s.repomanager.Labels(db, labels.Ingredients).FindByIDs(ctx, recipe.UserID, recipe.IngredientIDs)
	if err != nil {
		return err
	}
	tags, err := s.repomanager.Labels(db, labels.Tags).FindByIDs(ctx, recipe.UserID, recipe.TagIDs)
	if err != nil {
		return err
	}

	recipe.Ingredients = ingredients
	recipe.Tags = tags
	return nil
}
