package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/recipeapi/internal/server/models"
	"github.com/dmitrijs2005/recipeapi/internal/server/repositories/labels"
	"github.com/dmitrijs2005/recipeapi/internal/server/repositories/repomanager"
)

// LabelService manages one kind of recipe label (tags or ingredients) on
// behalf of its owner.
type LabelService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	kind        labels.Kind
}

func NewLabelService(db *sql.DB, m repomanager.RepositoryManager, kind labels.Kind) *LabelService {
	return &LabelService{
		db:          db,
		repomanager: m,
		kind:        kind,
	}
}

func (s *LabelService) repo() labels.Repository {
	return s.repomanager.Labels(s.db, s.kind)
}

// List returns the owner's labels, name descending. With assignedOnly set only
// labels attached to at least one recipe are returned.
func (s *LabelService) List(ctx context.Context, userID int64, assignedOnly bool) ([]*models.Label, error) {
	return s.repo().List(ctx, userID, assignedOnly)
}

func (s *LabelService) Create(ctx context.Context, userID int64, name string) (*models.Label, error) {
	return s.repo().Create(ctx, &models.Label{UserID: userID, Name: name})
}

func (s *LabelService) Get(ctx context.Context, userID, id int64) (*models.Label, error) {
	return s.repo().GetByID(ctx, userID, id)
}

// Update renames the label; a nil name leaves it unchanged.
func (s *LabelService) Update(ctx context.Context, userID, id int64, name *string) (*models.Label, error) {
	repo := s.repo()

	label, err := repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if name == nil {
		return label, nil
	}

	label.Name = *name
	if err := repo.Update(ctx, label); err != nil {
		return nil, err
	}
	return label, nil
}

func (s *LabelService) Delete(ctx context.Context, userID, id int64) error {
	return s.repo().Delete(ctx, userID, id)
}
