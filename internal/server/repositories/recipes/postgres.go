// Package recipes provides PostgreSQL-backed recipe storage. Ingredient and
// tag references live in the recipe_ingredients and recipe_tags junction
// tables.
package recipes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/recipeapi/internal/common"
	"github.com/dmitrijs2005/recipeapi/internal/dbx"
	"github.com/dmitrijs2005/recipeapi/internal/server/models"
)

const recipeColumns = `id, user_id, title, time_minutes, price, link, image`

// ReferenceError reports a junction row pointing at an ingredient or tag that
// does not exist.
type ReferenceError struct {
	Column string
	ID     string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s %q does not exist", e.Column, e.ID)
}

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts the recipe row and its references. Callers should run it
// inside a transaction.
func (r *PostgresRepository) Create(ctx context.Context, recipe *models.Recipe) (*models.Recipe, error) {
	query := `
		INSERT INTO recipes (user_id, title, time_minutes, price, link)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		recipe.UserID, recipe.Title, recipe.TimeMinutes, recipe.Price, recipe.Link).Scan(&recipe.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	if err := r.SetIngredients(ctx, recipe.ID, recipe.IngredientIDs); err != nil {
		return nil, err
	}
	if err := r.SetTags(ctx, recipe.ID, recipe.TagIDs); err != nil {
		return nil, err
	}

	return recipe, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, userID, id int64) (*models.Recipe, error) {
	query := `SELECT ` + recipeColumns + ` FROM recipes WHERE id = $1 AND user_id = $2`

	recipe, err := scanRecipe(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if err := r.loadReferences(ctx, []*models.Recipe{recipe}); err != nil {
		return nil, err
	}
	return recipe, nil
}

// List returns the user's recipes, newest first. A non-empty filter keeps
// recipes that reference any of the listed tags and any of the listed
// ingredients.
func (r *PostgresRepository) List(ctx context.Context, userID int64, filter models.RecipeFilter) ([]*models.Recipe, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + recipeColumns + ` FROM recipes WHERE user_id = $1`)
	args := []any{userID}

	if len(filter.TagIDs) > 0 {
		fmt.Fprintf(&sb, ` AND id IN (SELECT recipe_id FROM recipe_tags WHERE tag_id IN (%s))`,
			dbx.Placeholders(len(args)+1, len(filter.TagIDs)))
		args = append(args, dbx.Int64Args(filter.TagIDs)...)
	}
	if len(filter.IngredientIDs) > 0 {
		fmt.Fprintf(&sb, ` AND id IN (SELECT recipe_id FROM recipe_ingredients WHERE ingredient_id IN (%s))`,
			dbx.Placeholders(len(args)+1, len(filter.IngredientIDs)))
		args = append(args, dbx.Int64Args(filter.IngredientIDs)...)
	}
	sb.WriteString(` ORDER BY id DESC`)

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select recipes: %w", err)
	}
	defer rows.Close()

	result := []*models.Recipe{}
	for rows.Next() {
		recipe, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, recipe)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.loadReferences(ctx, result); err != nil {
		return nil, err
	}
	return result, nil
}

// Update writes the scalar fields. Ownership and the image are left alone.
func (r *PostgresRepository) Update(ctx context.Context, recipe *models.Recipe) error {
	query := `
		UPDATE recipes SET title = $1, time_minutes = $2, price = $3, link = $4
		WHERE id = $5 AND user_id = $6
	`
	res, err := r.db.ExecContext(ctx, query,
		recipe.Title, recipe.TimeMinutes, recipe.Price, recipe.Link, recipe.ID, recipe.UserID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOne(res)
}

// SetIngredients replaces the ingredient references of recipeID.
func (r *PostgresRepository) SetIngredients(ctx context.Context, recipeID int64, ids []int64) error {
	return r.replaceJunction(ctx, "recipe_ingredients", "ingredient_id", recipeID, ids)
}

// SetTags replaces the tag references of recipeID.
func (r *PostgresRepository) SetTags(ctx context.Context, recipeID int64, ids []int64) error {
	return r.replaceJunction(ctx, "recipe_tags", "tag_id", recipeID, ids)
}

func (r *PostgresRepository) SetImage(ctx context.Context, userID, id int64, key string) error {
	query := `UPDATE recipes SET image = $1 WHERE id = $2 AND user_id = $3`

	res, err := r.db.ExecContext(ctx, query, key, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOne(res)
}

// Delete removes the recipe; junction rows go with it through ON DELETE CASCADE.
func (r *PostgresRepository) Delete(ctx context.Context, userID, id int64) error {
	query := `DELETE FROM recipes WHERE id = $1 AND user_id = $2`

	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOne(res)
}

func (r *PostgresRepository) replaceJunction(ctx context.Context, table, column string, recipeID int64, ids []int64) error {
	del := fmt.Sprintf(`DELETE FROM %s WHERE recipe_id = $1`, table)
	if _, err := r.db.ExecContext(ctx, del, recipeID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	ids = unique(ids)
	if len(ids) == 0 {
		return nil
	}

	values := make([]string, len(ids))
	args := make([]any, 0, len(ids)+1)
	args = append(args, recipeID)
	for i, id := range ids {
		values[i] = fmt.Sprintf("($1, $%d)", i+2)
		args = append(args, id)
	}

	ins := fmt.Sprintf(`INSERT INTO %s (recipe_id, %s) VALUES %s`, table, column, strings.Join(values, ", "))
	if _, err := r.db.ExecContext(ctx, ins, args...); err != nil {
		if dbx.IsForeignKeyViolation(err) {
			col, key, _ := dbx.ViolatingKey(err)
			if col == "recipe_id" {
				return common.ErrorNotFound
			}
			return &ReferenceError{Column: column, ID: key}
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// loadReferences fills IngredientIDs and TagIDs of every recipe with two
// queries in total.
func (r *PostgresRepository) loadReferences(ctx context.Context, recipes []*models.Recipe) error {
	if len(recipes) == 0 {
		return nil
	}

	byID := make(map[int64]*models.Recipe, len(recipes))
	ids := make([]int64, 0, len(recipes))
	for _, rec := range recipes {
		rec.IngredientIDs = []int64{}
		rec.TagIDs = []int64{}
		byID[rec.ID] = rec
		ids = append(ids, rec.ID)
	}

	err := r.selectJunction(ctx, "recipe_ingredients", "ingredient_id", ids, func(recipeID, refID int64) {
		if rec, ok := byID[recipeID]; ok {
			rec.IngredientIDs = append(rec.IngredientIDs, refID)
		}
	})
	if err != nil {
		return err
	}

	return r.selectJunction(ctx, "recipe_tags", "tag_id", ids, func(recipeID, refID int64) {
		if rec, ok := byID[recipeID]; ok {
			rec.TagIDs = append(rec.TagIDs, refID)
		}
	})
}

func (r *PostgresRepository) selectJunction(ctx context.Context, table, column string, recipeIDs []int64, add func(recipeID, refID int64)) error {
	query := fmt.Sprintf(`SELECT recipe_id, %s FROM %s WHERE recipe_id IN (%s) ORDER BY recipe_id, %s`,
		column, table, dbx.Placeholders(1, len(recipeIDs)), column)

	rows, err := r.db.QueryContext(ctx, query, dbx.Int64Args(recipeIDs)...)
	if err != nil {
		return fmt.Errorf("failed to select %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var recipeID, refID int64
		if err := rows.Scan(&recipeID, &refID); err != nil {
			return err
		}
		add(recipeID, refID)
	}
	return rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecipe(row scanner) (*models.Recipe, error) {
	recipe := &models.Recipe{}
	var image sql.NullString
	if err := row.Scan(&recipe.ID, &recipe.UserID, &recipe.Title, &recipe.TimeMinutes,
		&recipe.Price, &recipe.Link, &image); err != nil {
		return nil, err
	}
	if image.Valid && image.String != "" {
		key := image.String
		recipe.Image = &key
	}
	return recipe, nil
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func unique(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
