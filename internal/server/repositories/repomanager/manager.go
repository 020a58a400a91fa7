package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/recipeapi/internal/dbx"
	"github.com/dmitrijs2005/recipeapi/internal/server/repositories/labels"
	"github.com/dmitrijs2005/recipeapi/internal/server/repositories/recipes"
	"github.com/dmitrijs2005/recipeapi/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Labels(db dbx.DBTX, kind labels.Kind) labels.Repository
	Recipes(db dbx.DBTX) recipes.Repository
}
