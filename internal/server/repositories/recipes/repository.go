package recipes

import (
	"context"

	"github.com/dmitrijs2005/recipeapi/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, recipe *models.Recipe) (*models.Recipe, error)
	GetByID(ctx context.Context, userID, id int64) (*models.Recipe, error)
	List(ctx context.Context, userID int64, filter models.RecipeFilter) ([]*models.Recipe, error)
	Update(ctx context.Context, recipe *models.Recipe) error
	SetIngredients(ctx context.Context, recipeID int64, ids []int64) error
	SetTags(ctx context.Context, recipeID int64, ids []int64) error
	SetImage(ctx context.Context, userID, id int64, key string) error
	Delete(ctx context.Context, userID, id int64) error
}
