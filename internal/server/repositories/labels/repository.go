package labels

import (
	"context"

	"github.com/dmitrijs2005/recipeapi/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, label *models.Label) (*models.Label, error)
	GetByID(ctx context.Context, userID, id int64) (*models.Label, error)
	List(ctx context.Context, userID int64, assignedOnly bool) ([]*models.Label, error)
	FindByIDs(ctx context.Context, userID int64, ids []int64) ([]*models.Label, error)
	Update(ctx context.Context, label *models.Label) error
	Delete(ctx context.Context, userID, id int64) error
}
